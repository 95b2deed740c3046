package service

import (
	"github.com/syncfield/standup-bot/internal/domain"
	"github.com/syncfield/standup-bot/internal/domain/entity"
)

// BuildSnapshot freezes a mutable recurring config into the immutable copy an
// instance carries. Only currently active members with an included participant
// entry make it in; later edits to the source config never reach the snapshot.
func BuildSnapshot(config *entity.StandupConfig, members []*entity.TeamMember) entity.ConfigSnapshot {
	snapshot := entity.ConfigSnapshot{
		Questions:            append([]string(nil), config.Questions...),
		Weekdays:             append([]int(nil), config.Weekdays...),
		TimeOfDay:            config.TimeOfDay,
		Timezone:             config.Timezone,
		ReminderLeadMinutes:  config.ReminderLeadMinutes,
		ResponseTimeoutHours: config.ResponseTimeoutHours,
		DeliveryMode:         config.DeliveryMode,
	}

	included := make(map[int64]string, len(config.Participants))
	for _, p := range config.Participants {
		if p.Included {
			role := p.Role
			if role == "" {
				role = domain.DefaultRole
			}
			included[p.MemberID] = role
		}
	}

	for _, member := range members {
		role, ok := included[member.ID]
		if !ok || !member.IsActive {
			continue
		}
		snapshot.Participants = append(snapshot.Participants, entity.SnapshotParticipant{
			MemberID:    member.ID,
			DisplayName: member.DisplayName,
			SlackUserID: member.SlackUserID,
			Role:        role,
		})
	}

	return snapshot
}
