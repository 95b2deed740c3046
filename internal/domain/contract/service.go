package contract

import (
	"context"
	"time"

	"github.com/syncfield/standup-bot/internal/domain/entity"
)

// StandupService is the team/config administration surface used by the
// slash-command handler.
type StandupService interface {
	SetupTeam(slackChannelID, channelName, slackTeamID, orgID string) (*entity.Team, bool, error)
	AddParticipant(teamID int64, slackUserID string) error
	RemoveParticipant(teamID int64, slackUserID string) error
	ListParticipants(teamID int64) ([]*entity.TeamMember, error)
	UpdateConfig(teamID int64, field, value string) error
	GetConfig(teamID int64) (*entity.StandupConfig, error)
	DescribeSchedule(teamID int64, now time.Time) (string, error)
	PauseStandup(teamID int64) error
	ResumeStandup(teamID int64) error
}

// LifecycleService materializes and closes standup instances. Ticks receive an
// explicit now so sweeps are deterministic under test.
type LifecycleService interface {
	MaterializeDue(ctx context.Context, now time.Time) error
	CloseDue(ctx context.Context, now time.Time) error
	GetInstance(instanceID int64) (*entity.StandupInstance, error)
}

// TokenService issues and validates magic response tokens.
type TokenService interface {
	Generate(instanceID, memberID int64, platformUserID, orgID string, ttl time.Duration) (*MagicToken, error)
	Validate(token string, now time.Time) (*TokenPayload, error)
	HasExistingResponses(instanceID, memberID int64) (bool, error)
}

// MagicToken is an issued credential plus its derived metadata.
type MagicToken struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	RespondURL string    `json:"respond_url"`
}

// TokenPayload is the verified content of a magic token.
type TokenPayload struct {
	InstanceID     int64  `json:"instance_id"`
	MemberID       int64  `json:"member_id"`
	PlatformUserID string `json:"platform_user_id"`
	OrgID          string `json:"org_id"`
}

// ReminderService runs the escalation sweep.
type ReminderService interface {
	SweepReminders(ctx context.Context, now time.Time) error
}

// AnswerInput is one answer in a submission.
type AnswerInput struct {
	QuestionIndex int    `json:"question_index"`
	Text          string `json:"text"`
}

// AnswerService records responses and derives participation.
type AnswerService interface {
	SubmitFullResponse(ctx context.Context, instanceID int64, answers []AnswerInput, memberID int64, orgID string, now time.Time) (int, error)
	GetAnswers(instanceID, memberID int64) ([]*entity.Answer, error)
	ParticipationSummary(instanceID int64) (*entity.ParticipationSummary, error)
}
