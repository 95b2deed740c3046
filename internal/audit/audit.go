// Package audit appends structured engine events to the audit_events table.
// A failed append is logged and swallowed: the operation being described must
// never fail because its audit record could not be written.
package audit

import (
	"github.com/sirupsen/logrus"
	"github.com/syncfield/standup-bot/internal/domain/contract"
	"github.com/syncfield/standup-bot/internal/domain/entity"
)

type Logger struct {
	dm contract.DataManager
}

func New(dm contract.DataManager) *Logger {
	return &Logger{dm: dm}
}

func (l *Logger) Record(action, actor, orgID string, tags ...string) {
	event := &entity.AuditEvent{
		Action: action,
		Actor:  actor,
		OrgID:  orgID,
		Tags:   tags,
	}

	if err := l.dm.Audit().Append(event); err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "audit",
			"action":    action,
			"org_id":    orgID,
		}).WithError(err).Warn("failed to record audit event")
	}
}

// Nop discards all events. Useful where no store is wired, such as tests.
type Nop struct{}

func (Nop) Record(action, actor, orgID string, tags ...string) {}
