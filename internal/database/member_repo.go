package database

import (
	"database/sql"
	"fmt"

	"github.com/syncfield/standup-bot/internal/domain/contract"
	"github.com/syncfield/standup-bot/internal/domain/entity"
)

type memberRepo struct {
	db dbConn
}

func newMemberRepo(db dbConn) contract.MemberRepo {
	return &memberRepo{db: db}
}

const memberColumns = `id, team_id, slack_user_id, display_name, is_active, joined_at`

func (r *memberRepo) Create(member *entity.TeamMember) error {
	query := `
		INSERT INTO team_members (team_id, slack_user_id, display_name, is_active)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		member.TeamID,
		member.SlackUserID,
		member.DisplayName,
		member.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	member.ID = id
	return nil
}

func (r *memberRepo) scanMember(row *sql.Row) (*entity.TeamMember, error) {
	member := &entity.TeamMember{}
	err := row.Scan(
		&member.ID,
		&member.TeamID,
		&member.SlackUserID,
		&member.DisplayName,
		&member.IsActive,
		&member.JoinedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

func (r *memberRepo) GetByID(id int64) (*entity.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE id = ?`
	return r.scanMember(r.db.QueryRow(query, id))
}

func (r *memberRepo) GetByTeamAndSlackID(teamID int64, slackUserID string) (*entity.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE team_id = ? AND slack_user_id = ?`
	return r.scanMember(r.db.QueryRow(query, teamID, slackUserID))
}

func (r *memberRepo) GetActiveByTeam(teamID int64) ([]*entity.TeamMember, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM team_members
		WHERE team_id = ? AND is_active = 1
		ORDER BY joined_at ASC
	`

	rows, err := r.db.Query(query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []*entity.TeamMember
	for rows.Next() {
		member := &entity.TeamMember{}
		err := rows.Scan(
			&member.ID,
			&member.TeamID,
			&member.SlackUserID,
			&member.DisplayName,
			&member.IsActive,
			&member.JoinedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	return members, nil
}

func (r *memberRepo) SetActive(memberID int64, active bool) error {
	query := `UPDATE team_members SET is_active = ? WHERE id = ?`
	_, err := r.db.Exec(query, active, memberID)
	if err != nil {
		return fmt.Errorf("failed to set member active flag: %w", err)
	}
	return nil
}
