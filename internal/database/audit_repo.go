package database

import (
	"encoding/json"
	"fmt"

	"github.com/syncfield/standup-bot/internal/domain/contract"
	"github.com/syncfield/standup-bot/internal/domain/entity"
)

type auditRepo struct {
	db dbConn
}

func newAuditRepo(db dbConn) contract.AuditRepo {
	return &auditRepo{db: db}
}

func (r *auditRepo) Append(event *entity.AuditEvent) error {
	tags, err := json.Marshal(event.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO audit_events (action, actor, org_id, tags)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Exec(query, event.Action, event.Actor, event.OrgID, string(tags))
	if err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	event.ID = id
	return nil
}
