package contract

import (
	"context"

	"github.com/syncfield/standup-bot/internal/domain/entity"
)

// DataManager aggregates all repository interfaces
type DataManager interface {
	WithTransaction(ctx context.Context, fn func(dm DataManager) error) error
	Team() TeamRepo
	Member() MemberRepo
	Config() ConfigRepo
	Instance() InstanceRepo
	Answer() AnswerRepo
	Reminder() ReminderRepo
	Audit() AuditRepo
}

// TeamRepo defines the contract for team persistence
type TeamRepo interface {
	Create(team *entity.Team) error
	GetByID(id int64) (*entity.Team, error)
	GetBySlackChannelID(slackChannelID string) (*entity.Team, error)
	Update(team *entity.Team) error
}

// MemberRepo defines the contract for team member persistence
type MemberRepo interface {
	Create(member *entity.TeamMember) error
	GetByID(id int64) (*entity.TeamMember, error)
	GetByTeamAndSlackID(teamID int64, slackUserID string) (*entity.TeamMember, error)
	GetActiveByTeam(teamID int64) ([]*entity.TeamMember, error)
	SetActive(memberID int64, active bool) error
}

// ConfigRepo defines the contract for recurring standup configuration
type ConfigRepo interface {
	Create(config *entity.StandupConfig) error
	GetByTeamID(teamID int64) (*entity.StandupConfig, error)
	Update(config *entity.StandupConfig) error
	GetActiveConfigs() ([]*entity.StandupConfig, error)
	UpsertParticipant(p *entity.ConfigParticipant) error
	RemoveParticipant(configID, memberID int64) error
	GetParticipants(configID int64) ([]entity.ConfigParticipant, error)
}

// InstanceRepo defines the contract for standup instance persistence.
// CreateIfAbsent must rely on the (team_id, target_date) uniqueness constraint
// as an atomic guarantee, never on a read-check-then-insert.
type InstanceRepo interface {
	CreateIfAbsent(instance *entity.StandupInstance) (created bool, err error)
	GetByID(id int64) (*entity.StandupInstance, error)
	GetByTeamAndDate(teamID int64, targetDate string) (*entity.StandupInstance, error)
	GetByState(state string) ([]*entity.StandupInstance, error)
	SetState(id int64, state string) error
	SetSummaryMessageRef(id int64, ref string) error
	SetReminderMessageRef(id int64, ref string) error
}

// AnswerRepo defines the contract for answer persistence. Upsert must be an
// atomic ON CONFLICT update keyed by (instance_id, member_id, question_index).
type AnswerRepo interface {
	Upsert(answer *entity.Answer) error
	GetByInstance(instanceID int64) ([]*entity.Answer, error)
	GetByInstanceAndMember(instanceID, memberID int64) ([]*entity.Answer, error)
	CountByInstanceAndMember(instanceID, memberID int64) (int, error)
	DistinctRespondents(instanceID int64) ([]int64, error)
}

// ReminderRepo tracks delivered reminder tiers for dedup across sweeps
type ReminderRepo interface {
	ClaimDelivery(d *entity.ReminderDelivery) (claimed bool, err error)
	HighestTierSent(instanceID, memberID int64) (string, error)
}

// AuditRepo appends structured audit events
type AuditRepo interface {
	Append(event *entity.AuditEvent) error
}
