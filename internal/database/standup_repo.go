package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/syncfield/standup-bot/internal/domain/contract"
	"github.com/syncfield/standup-bot/internal/domain/entity"
)

type instanceRepo struct {
	db dbConn
}

func newInstanceRepo(db dbConn) contract.InstanceRepo {
	return &instanceRepo{db: db}
}

const instanceColumns = `id, team_id, target_date, state, config_snapshot,
	created_at, reminder_message_ref, summary_message_ref`

// CreateIfAbsent inserts the instance, relying on the (team_id, target_date)
// unique constraint to collapse concurrent materialization attempts. Returns
// false without error when another tick already created the row.
func (r *instanceRepo) CreateIfAbsent(inst *entity.StandupInstance) (bool, error) {
	snapshot, err := json.Marshal(inst.Snapshot)
	if err != nil {
		return false, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	query := `
		INSERT OR IGNORE INTO standup_instances (team_id, target_date, state, config_snapshot, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		inst.TeamID,
		inst.TargetDate,
		inst.State,
		string(snapshot),
		inst.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create instance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to get last insert id: %w", err)
	}

	inst.ID = id
	return true, nil
}

func (r *instanceRepo) scanInstance(scan func(dest ...interface{}) error) (*entity.StandupInstance, error) {
	inst := &entity.StandupInstance{}
	var snapshot string

	err := scan(
		&inst.ID,
		&inst.TeamID,
		&inst.TargetDate,
		&inst.State,
		&snapshot,
		&inst.CreatedAt,
		&inst.ReminderMessageRef,
		&inst.SummaryMessageRef,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get instance: %w", err)
	}

	if err := json.Unmarshal([]byte(snapshot), &inst.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return inst, nil
}

func (r *instanceRepo) GetByID(id int64) (*entity.StandupInstance, error) {
	query := `SELECT ` + instanceColumns + ` FROM standup_instances WHERE id = ?`
	return r.scanInstance(r.db.QueryRow(query, id).Scan)
}

func (r *instanceRepo) GetByTeamAndDate(teamID int64, targetDate string) (*entity.StandupInstance, error) {
	query := `SELECT ` + instanceColumns + ` FROM standup_instances WHERE team_id = ? AND target_date = ?`
	return r.scanInstance(r.db.QueryRow(query, teamID, targetDate).Scan)
}

func (r *instanceRepo) GetByState(state string) ([]*entity.StandupInstance, error) {
	query := `SELECT ` + instanceColumns + ` FROM standup_instances WHERE state = ? ORDER BY created_at ASC`

	rows, err := r.db.Query(query, state)
	if err != nil {
		return nil, fmt.Errorf("failed to get instances: %w", err)
	}
	defer rows.Close()

	var instances []*entity.StandupInstance
	for rows.Next() {
		inst, err := r.scanInstance(rows.Scan)
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}

	return instances, nil
}

func (r *instanceRepo) SetState(id int64, state string) error {
	query := `UPDATE standup_instances SET state = ? WHERE id = ?`
	_, err := r.db.Exec(query, state, id)
	if err != nil {
		return fmt.Errorf("failed to set instance state: %w", err)
	}
	return nil
}

func (r *instanceRepo) SetSummaryMessageRef(id int64, ref string) error {
	query := `UPDATE standup_instances SET summary_message_ref = ? WHERE id = ?`
	_, err := r.db.Exec(query, ref, id)
	if err != nil {
		return fmt.Errorf("failed to set summary message ref: %w", err)
	}
	return nil
}

func (r *instanceRepo) SetReminderMessageRef(id int64, ref string) error {
	query := `UPDATE standup_instances SET reminder_message_ref = ? WHERE id = ?`
	_, err := r.db.Exec(query, ref, id)
	if err != nil {
		return fmt.Errorf("failed to set reminder message ref: %w", err)
	}
	return nil
}
