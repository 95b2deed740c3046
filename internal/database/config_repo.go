package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/syncfield/standup-bot/internal/domain/contract"
	"github.com/syncfield/standup-bot/internal/domain/entity"
)

type configRepo struct {
	db dbConn
}

func newConfigRepo(db dbConn) contract.ConfigRepo {
	return &configRepo{db: db}
}

const configColumns = `id, team_id, questions, weekdays, time_of_day, timezone,
	reminder_lead_minutes, response_timeout_hours, delivery_mode, is_active,
	created_at, updated_at`

func (r *configRepo) Create(config *entity.StandupConfig) error {
	questions, weekdays, err := marshalConfigLists(config)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO standup_configs (team_id, questions, weekdays, time_of_day, timezone,
			reminder_lead_minutes, response_timeout_hours, delivery_mode, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		config.TeamID,
		questions,
		weekdays,
		config.TimeOfDay,
		config.Timezone,
		config.ReminderLeadMinutes,
		config.ResponseTimeoutHours,
		config.DeliveryMode,
		config.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	config.ID = id
	return nil
}

func marshalConfigLists(config *entity.StandupConfig) (questions, weekdays string, err error) {
	q, err := json.Marshal(config.Questions)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal questions: %w", err)
	}
	w, err := json.Marshal(config.Weekdays)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal weekdays: %w", err)
	}
	return string(q), string(w), nil
}

func (r *configRepo) scanConfig(scan func(dest ...interface{}) error) (*entity.StandupConfig, error) {
	config := &entity.StandupConfig{}
	var questions, weekdays string

	err := scan(
		&config.ID,
		&config.TeamID,
		&questions,
		&weekdays,
		&config.TimeOfDay,
		&config.Timezone,
		&config.ReminderLeadMinutes,
		&config.ResponseTimeoutHours,
		&config.DeliveryMode,
		&config.IsActive,
		&config.CreatedAt,
		&config.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	if err := json.Unmarshal([]byte(questions), &config.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	if err := json.Unmarshal([]byte(weekdays), &config.Weekdays); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weekdays: %w", err)
	}

	return config, nil
}

func (r *configRepo) GetByTeamID(teamID int64) (*entity.StandupConfig, error) {
	query := `SELECT ` + configColumns + ` FROM standup_configs WHERE team_id = ?`

	config, err := r.scanConfig(r.db.QueryRow(query, teamID).Scan)
	if err != nil || config == nil {
		return config, err
	}

	config.Participants, err = r.GetParticipants(config.ID)
	if err != nil {
		return nil, err
	}

	return config, nil
}

func (r *configRepo) Update(config *entity.StandupConfig) error {
	questions, weekdays, err := marshalConfigLists(config)
	if err != nil {
		return err
	}

	query := `
		UPDATE standup_configs SET
			questions = ?,
			weekdays = ?,
			time_of_day = ?,
			timezone = ?,
			reminder_lead_minutes = ?,
			response_timeout_hours = ?,
			delivery_mode = ?,
			is_active = ?,
			updated_at = ?
		WHERE id = ?
	`

	_, err = r.db.Exec(query,
		questions,
		weekdays,
		config.TimeOfDay,
		config.Timezone,
		config.ReminderLeadMinutes,
		config.ResponseTimeoutHours,
		config.DeliveryMode,
		config.IsActive,
		time.Now(),
		config.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update config: %w", err)
	}

	return nil
}

func (r *configRepo) GetActiveConfigs() ([]*entity.StandupConfig, error) {
	query := `SELECT ` + configColumns + ` FROM standup_configs WHERE is_active = 1`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active configs: %w", err)
	}
	defer rows.Close()

	var configs []*entity.StandupConfig
	for rows.Next() {
		config, err := r.scanConfig(rows.Scan)
		if err != nil {
			return nil, err
		}
		configs = append(configs, config)
	}

	for _, config := range configs {
		config.Participants, err = r.GetParticipants(config.ID)
		if err != nil {
			return nil, err
		}
	}

	return configs, nil
}

func (r *configRepo) UpsertParticipant(p *entity.ConfigParticipant) error {
	query := `
		INSERT INTO config_participants (config_id, member_id, included, role)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(config_id, member_id) DO UPDATE SET
			included = excluded.included,
			role = excluded.role
	`

	_, err := r.db.Exec(query, p.ConfigID, p.MemberID, p.Included, p.Role)
	if err != nil {
		return fmt.Errorf("failed to upsert participant: %w", err)
	}
	return nil
}

func (r *configRepo) RemoveParticipant(configID, memberID int64) error {
	query := `DELETE FROM config_participants WHERE config_id = ? AND member_id = ?`
	_, err := r.db.Exec(query, configID, memberID)
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	return nil
}

func (r *configRepo) GetParticipants(configID int64) ([]entity.ConfigParticipant, error) {
	query := `
		SELECT config_id, member_id, included, role
		FROM config_participants
		WHERE config_id = ?
		ORDER BY member_id ASC
	`

	rows, err := r.db.Query(query, configID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var participants []entity.ConfigParticipant
	for rows.Next() {
		p := entity.ConfigParticipant{}
		if err := rows.Scan(&p.ConfigID, &p.MemberID, &p.Included, &p.Role); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	return participants, nil
}
