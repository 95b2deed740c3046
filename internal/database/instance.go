package database

import (
	"context"
	"fmt"

	"github.com/syncfield/standup-bot/internal/domain/contract"
)

// instance implements the DataManager interface
type instance struct {
	db           *DB
	teamRepo     contract.TeamRepo
	memberRepo   contract.MemberRepo
	configRepo   contract.ConfigRepo
	instanceRepo contract.InstanceRepo
	answerRepo   contract.AnswerRepo
	reminderRepo contract.ReminderRepo
	auditRepo    contract.AuditRepo
}

// NewInstance creates a new database instance with all repositories
func NewInstance(db *DB) contract.DataManager {
	i := &instance{db: db}
	i.assignRepos(repoInstancesWithConn(db.conn))
	return i
}

// repoInstancesWithConn creates repository instances bound to a dbConn, which
// may be the shared connection or an open transaction
func repoInstancesWithConn(db dbConn) *instance {
	return &instance{
		teamRepo:     newTeamRepo(db),
		memberRepo:   newMemberRepo(db),
		configRepo:   newConfigRepo(db),
		instanceRepo: newInstanceRepo(db),
		answerRepo:   newAnswerRepo(db),
		reminderRepo: newReminderRepo(db),
		auditRepo:    newAuditRepo(db),
	}
}

func (i *instance) assignRepos(src *instance) {
	i.teamRepo = src.teamRepo
	i.memberRepo = src.memberRepo
	i.configRepo = src.configRepo
	i.instanceRepo = src.instanceRepo
	i.answerRepo = src.answerRepo
	i.reminderRepo = src.reminderRepo
	i.auditRepo = src.auditRepo
}

func (i *instance) Team() contract.TeamRepo         { return i.teamRepo }
func (i *instance) Member() contract.MemberRepo     { return i.memberRepo }
func (i *instance) Config() contract.ConfigRepo     { return i.configRepo }
func (i *instance) Instance() contract.InstanceRepo { return i.instanceRepo }
func (i *instance) Answer() contract.AnswerRepo     { return i.answerRepo }
func (i *instance) Reminder() contract.ReminderRepo { return i.reminderRepo }
func (i *instance) Audit() contract.AuditRepo       { return i.auditRepo }

// WithTransaction executes a function within a database transaction
func (i *instance) WithTransaction(ctx context.Context, fn func(dm contract.DataManager) error) error {
	if i.db == nil {
		// Already inside a transaction; reuse it
		return fn(i)
	}

	tx, err := i.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txInstance := repoInstancesWithConn(tx)
	err = fn(txInstance)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v, original error: %w", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}
