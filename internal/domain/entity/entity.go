package entity

import "time"

// Team is one Slack workspace channel that runs standups, owned by an org.
type Team struct {
	ID             int64     `json:"id" db:"id"`
	OrgID          string    `json:"org_id" db:"org_id"`
	SlackTeamID    string    `json:"slack_team_id" db:"slack_team_id"`
	SlackChannelID string    `json:"slack_channel_id" db:"slack_channel_id"`
	Name           string    `json:"name" db:"name"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type TeamMember struct {
	ID          int64     `json:"id" db:"id"`
	TeamID      int64     `json:"team_id" db:"team_id"`
	SlackUserID string    `json:"slack_user_id" db:"slack_user_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	JoinedAt    time.Time `json:"joined_at" db:"joined_at"`
}

// StandupConfig is the mutable recurring configuration for a team. Edits apply
// only to instances materialized afterwards; running instances keep their snapshot.
type StandupConfig struct {
	ID                   int64     `json:"id" db:"id"`
	TeamID               int64     `json:"team_id" db:"team_id"`
	Questions            []string  `json:"questions" db:"questions"`
	Weekdays             []int     `json:"weekdays" db:"weekdays"` // ISO 8601, 1=Monday
	TimeOfDay            string    `json:"time_of_day" db:"time_of_day"` // HH:MM wall clock
	Timezone             string    `json:"timezone" db:"timezone"`       // IANA name
	ReminderLeadMinutes  int       `json:"reminder_lead_minutes" db:"reminder_lead_minutes"`
	ResponseTimeoutHours int       `json:"response_timeout_hours" db:"response_timeout_hours"`
	DeliveryMode         string    `json:"delivery_mode" db:"delivery_mode"`
	IsActive             bool      `json:"is_active" db:"is_active"`
	Participants         []ConfigParticipant `json:"participants"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

type ConfigParticipant struct {
	ConfigID int64  `json:"config_id" db:"config_id"`
	MemberID int64  `json:"member_id" db:"member_id"`
	Included bool   `json:"included" db:"included"`
	Role     string `json:"role" db:"role"`
}

// SnapshotParticipant is a participant as resolved at materialization time.
type SnapshotParticipant struct {
	MemberID    int64  `json:"member_id"`
	DisplayName string `json:"display_name"`
	SlackUserID string `json:"slack_user_id"`
	Role        string `json:"role"`
}

// ConfigSnapshot is the frozen copy of a StandupConfig bound to one instance.
// It never changes after the instance is created.
type ConfigSnapshot struct {
	Questions            []string              `json:"questions"`
	Weekdays             []int                 `json:"weekdays"`
	TimeOfDay            string                `json:"time_of_day"`
	Timezone             string                `json:"timezone"`
	ReminderLeadMinutes  int                   `json:"reminder_lead_minutes"`
	ResponseTimeoutHours int                   `json:"response_timeout_hours"`
	DeliveryMode         string                `json:"delivery_mode"`
	Participants         []SnapshotParticipant `json:"participants"`
}

// StandupInstance is one materialized occurrence of a recurring standup for one
// team on one date. Immutable after creation except for state and message refs.
type StandupInstance struct {
	ID                 int64          `json:"id" db:"id"`
	TeamID             int64          `json:"team_id" db:"team_id"`
	TargetDate         string         `json:"target_date" db:"target_date"` // YYYY-MM-DD in team tz
	State              string         `json:"state" db:"state"`
	Snapshot           ConfigSnapshot `json:"config_snapshot" db:"config_snapshot"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	ReminderMessageRef string         `json:"reminder_message_ref,omitempty" db:"reminder_message_ref"`
	SummaryMessageRef  string         `json:"summary_message_ref,omitempty" db:"summary_message_ref"`
}

// TimeoutAt is the end of the instance's collection window.
func (i *StandupInstance) TimeoutAt() time.Time {
	return i.CreatedAt.Add(time.Duration(i.Snapshot.ResponseTimeoutHours) * time.Hour)
}

// Participant returns the snapshot participant for a member, or nil.
func (i *StandupInstance) Participant(memberID int64) *SnapshotParticipant {
	for idx := range i.Snapshot.Participants {
		if i.Snapshot.Participants[idx].MemberID == memberID {
			return &i.Snapshot.Participants[idx]
		}
	}
	return nil
}

type Answer struct {
	ID            int64     `json:"id" db:"id"`
	InstanceID    int64     `json:"instance_id" db:"instance_id"`
	MemberID      int64     `json:"member_id" db:"member_id"`
	QuestionIndex int       `json:"question_index" db:"question_index"`
	Text          string    `json:"answer_text" db:"answer_text"`
	SubmittedAt   time.Time `json:"submitted_at" db:"submitted_at"`
}

// ReminderDelivery records one tier sent to one member for one instance,
// claimed with insert-or-ignore so repeated sweeps do not re-send.
type ReminderDelivery struct {
	InstanceID int64     `json:"instance_id" db:"instance_id"`
	MemberID   int64     `json:"member_id" db:"member_id"`
	Tier       string    `json:"tier" db:"tier"`
	SentAt     time.Time `json:"sent_at" db:"sent_at"`
}

// AuditEvent is a structured record of an engine action.
type AuditEvent struct {
	ID        int64     `json:"id" db:"id"`
	Action    string    `json:"action" db:"action"`
	Actor     string    `json:"actor" db:"actor"`
	OrgID     string    `json:"org_id" db:"org_id"`
	Tags      []string  `json:"tags" db:"tags"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MemberParticipation is one member's row in the participation projection.
type MemberParticipation struct {
	MemberID    int64  `json:"member_id"`
	DisplayName string `json:"display_name"`
	Answered    int    `json:"answered"`
	Complete    bool   `json:"complete"`
}

// ParticipationSummary is the read-only dashboard projection for one instance.
// Counts are always derived against the snapshot roster, not the live one.
type ParticipationSummary struct {
	InstanceID       int64                 `json:"instance_id"`
	State            string                `json:"state"`
	ParticipantCount int                   `json:"participant_count"`
	Respondents      int                   `json:"respondents"`
	ResponseRate     float64               `json:"response_rate"`
	TimeoutAt        time.Time             `json:"timeout_at"`
	Members          []MemberParticipation `json:"members"`
}
