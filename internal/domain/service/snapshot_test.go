package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syncfield/standup-bot/internal/domain"
	"github.com/syncfield/standup-bot/internal/domain/entity"
)

func TestBuildSnapshot_FiltersRoster(t *testing.T) {
	config := &entity.StandupConfig{
		ID:                   1,
		Questions:            []string{"q0"},
		Weekdays:             []int{1, 3},
		TimeOfDay:            "09:00",
		Timezone:             "UTC",
		ReminderLeadMinutes:  40,
		ResponseTimeoutHours: 2,
		DeliveryMode:         domain.DeliveryDirect,
		Participants: []entity.ConfigParticipant{
			{ConfigID: 1, MemberID: 1, Included: true, Role: "lead"},
			{ConfigID: 1, MemberID: 2, Included: true},
			{ConfigID: 1, MemberID: 3, Included: false},
		},
	}
	members := []*entity.TeamMember{
		{ID: 1, SlackUserID: "U001", DisplayName: "Alice", IsActive: true},
		{ID: 2, SlackUserID: "U002", DisplayName: "Bob", IsActive: false},
		{ID: 3, SlackUserID: "U003", DisplayName: "Carol", IsActive: true},
		{ID: 4, SlackUserID: "U004", DisplayName: "Dave", IsActive: true},
	}

	snapshot := BuildSnapshot(config, members)

	// Bob is inactive, Carol is excluded, Dave has no participant entry
	require.Len(t, snapshot.Participants, 1)
	assert.Equal(t, int64(1), snapshot.Participants[0].MemberID)
	assert.Equal(t, "lead", snapshot.Participants[0].Role)
}

func TestBuildSnapshot_DefaultsRole(t *testing.T) {
	config := &entity.StandupConfig{
		Questions: []string{"q0"},
		Participants: []entity.ConfigParticipant{
			{MemberID: 1, Included: true},
		},
	}
	members := []*entity.TeamMember{
		{ID: 1, SlackUserID: "U001", DisplayName: "Alice", IsActive: true},
	}

	snapshot := BuildSnapshot(config, members)
	require.Len(t, snapshot.Participants, 1)
	assert.Equal(t, domain.DefaultRole, snapshot.Participants[0].Role)
}

func TestBuildSnapshot_CopiesSlices(t *testing.T) {
	config := &entity.StandupConfig{
		Questions: []string{"original"},
		Weekdays:  []int{1},
	}

	snapshot := BuildSnapshot(config, nil)

	config.Questions[0] = "mutated"
	config.Weekdays[0] = 7

	assert.Equal(t, "original", snapshot.Questions[0])
	assert.Equal(t, 1, snapshot.Weekdays[0])
}
