package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/syncfield/standup-bot/internal/domain/contract"
	"github.com/syncfield/standup-bot/internal/domain/entity"
)

type teamRepo struct {
	db dbConn
}

func newTeamRepo(db dbConn) contract.TeamRepo {
	return &teamRepo{db: db}
}

const teamColumns = `id, org_id, slack_team_id, slack_channel_id, name, is_active, created_at, updated_at`

func (r *teamRepo) Create(team *entity.Team) error {
	query := `
		INSERT INTO teams (org_id, slack_team_id, slack_channel_id, name, is_active)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		team.OrgID,
		team.SlackTeamID,
		team.SlackChannelID,
		team.Name,
		team.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	team.ID = id
	return nil
}

func (r *teamRepo) scanTeam(row *sql.Row) (*entity.Team, error) {
	team := &entity.Team{}
	err := row.Scan(
		&team.ID,
		&team.OrgID,
		&team.SlackTeamID,
		&team.SlackChannelID,
		&team.Name,
		&team.IsActive,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

func (r *teamRepo) GetByID(id int64) (*entity.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = ?`
	return r.scanTeam(r.db.QueryRow(query, id))
}

func (r *teamRepo) GetBySlackChannelID(slackChannelID string) (*entity.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE slack_channel_id = ?`
	return r.scanTeam(r.db.QueryRow(query, slackChannelID))
}

func (r *teamRepo) Update(team *entity.Team) error {
	query := `
		UPDATE teams SET
			name = ?,
			is_active = ?,
			updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		team.Name,
		team.IsActive,
		time.Now(),
		team.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}

	return nil
}
