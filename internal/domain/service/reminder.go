package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/syncfield/standup-bot/internal/domain"
	"github.com/syncfield/standup-bot/internal/domain/contract"
	"github.com/syncfield/standup-bot/internal/domain/entity"
	"github.com/syncfield/standup-bot/internal/domain/errs"
)

// finalGrace keeps an instance in the sweep window a little past its timeout
// so the final tier still goes out before the close sweep lands.
const finalGrace = 30 * time.Minute

type reminderService struct {
	dm      contract.DataManager
	gateway contract.DeliveryGateway
	audit   contract.AuditLogger
	token   *tokenService
	opts    Options
}

func newReminder(dm contract.DataManager, gateway contract.DeliveryGateway, audit contract.AuditLogger, token *tokenService, opts Options) *reminderService {
	return &reminderService{
		dm:      dm,
		gateway: gateway,
		audit:   audit,
		token:   token,
		opts:    opts,
	}
}

// TierFor classifies elapsed collection time into a reminder tier. It is a
// pure function of elapsed time against fixed thresholds, so repeated sweeps
// classify identically and the tier never decreases as time advances:
// gentle once the reminder lead starts, urgent at a quarter lead remaining,
// final once the window has closed.
func TierFor(elapsed, timeout, lead time.Duration) string {
	switch {
	case elapsed >= timeout:
		return domain.TierFinal
	case elapsed >= timeout-lead/4:
		return domain.TierUrgent
	case elapsed >= timeout-lead:
		return domain.TierGentle
	default:
		return domain.TierNone
	}
}

// SweepReminders classifies every non-responder of every collecting instance
// inside the escalation window and requests tier-appropriate deliveries. One
// member's delivery failure never blocks the rest; one instance's failure
// never blocks other instances.
func (s *reminderService) SweepReminders(ctx context.Context, now time.Time) error {
	instances, err := s.dm.Instance().GetByState(domain.StateCollecting)
	if err != nil {
		return errs.Dependency(fmt.Errorf("failed to load collecting instances: %w", err))
	}

	for _, inst := range instances {
		if err := s.sweepInstance(ctx, inst, now); err != nil {
			logrus.WithFields(logrus.Fields{
				"component":   "reminder",
				"instance_id": inst.ID,
			}).WithError(err).Error("reminder sweep failed for instance, continuing")
		}
	}

	return nil
}

func (s *reminderService) sweepInstance(ctx context.Context, inst *entity.StandupInstance, now time.Time) error {
	timeout := time.Duration(inst.Snapshot.ResponseTimeoutHours) * time.Hour
	lead := time.Duration(inst.Snapshot.ReminderLeadMinutes) * time.Minute
	elapsed := now.Sub(inst.CreatedAt)

	// Not in the reminder window: brand new, or long past the timeout
	if elapsed < timeout-lead || elapsed > timeout+finalGrace {
		return nil
	}

	tier := TierFor(elapsed, timeout, lead)
	if tier == domain.TierNone {
		return nil
	}

	respondents, err := s.dm.Answer().DistinctRespondents(inst.ID)
	if err != nil {
		return fmt.Errorf("failed to load respondents: %w", err)
	}
	responded := make(map[int64]bool, len(respondents))
	for _, id := range respondents {
		responded[id] = true
	}

	team, err := s.dm.Team().GetByID(inst.TeamID)
	if err != nil {
		return fmt.Errorf("failed to load team: %w", err)
	}
	if team == nil {
		return errs.NotFoundf("team %d", inst.TeamID)
	}

	outstanding := 0
	for _, p := range inst.Snapshot.Participants {
		if responded[p.MemberID] {
			continue
		}
		outstanding++
		s.remindMember(inst, team, p, tier, now)
	}

	if outstanding > 0 && inst.Snapshot.DeliveryMode == domain.DeliveryBroadcast {
		s.nudgeChannel(inst, team, tier, outstanding, now)
	}

	return nil
}

// remindMember delivers one tier-appropriate reminder with a fresh response
// link. With dedup enabled (the default) a tier goes out again only after a
// successful send was recorded, so a failed delivery is retried on the next
// sweep; in resend mode every sweep re-sends the current tier.
func (s *reminderService) remindMember(inst *entity.StandupInstance, team *entity.Team, p entity.SnapshotParticipant, tier string, now time.Time) {
	if !s.opts.ReminderResend {
		highest, err := s.dm.Reminder().HighestTierSent(inst.ID, p.MemberID)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"instance_id": inst.ID,
				"member_id":   p.MemberID,
			}).Error("failed to load sent reminder tiers")
			return
		}
		if domain.TierRank[highest] >= domain.TierRank[tier] {
			return
		}
	}

	token, err := s.token.Generate(inst.ID, p.MemberID, p.SlackUserID, team.OrgID, s.opts.TokenTTL)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"instance_id": inst.ID,
			"member_id":   p.MemberID,
		}).Error("failed to generate reminder token")
		return
	}

	text := tierMessage(tier, p.DisplayName, inst.TimeoutAt(), token.RespondURL)
	if _, err := s.gateway.SendDirect(p.SlackUserID, contract.MessageContent{Text: text}); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"instance_id": inst.ID,
			"member_id":   p.MemberID,
			"tier":        tier,
		}).Warn("failed to deliver reminder")
		return
	}

	// Record the send only after it succeeded; the primary key still collapses
	// a concurrent duplicate
	if !s.opts.ReminderResend {
		if _, err := s.dm.Reminder().ClaimDelivery(&entity.ReminderDelivery{
			InstanceID: inst.ID,
			MemberID:   p.MemberID,
			Tier:       tier,
			SentAt:     now,
		}); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"instance_id": inst.ID,
				"member_id":   p.MemberID,
			}).Error("failed to record reminder delivery")
		}
	}

	s.audit.Record("standup.reminder.sent", "scheduler", team.OrgID,
		"instance:"+strconv.FormatInt(inst.ID, 10),
		"member:"+strconv.FormatInt(p.MemberID, 10),
		"tier:"+tier)
}

// nudgeChannel posts one shared-channel nudge per tier per instance.
func (s *reminderService) nudgeChannel(inst *entity.StandupInstance, team *entity.Team, tier string, outstanding int, now time.Time) {
	if !s.opts.ReminderResend {
		// member_id 0 holds the channel-level nudge record for a tier
		highest, err := s.dm.Reminder().HighestTierSent(inst.ID, 0)
		if err != nil || domain.TierRank[highest] >= domain.TierRank[tier] {
			return
		}
	}

	text := fmt.Sprintf("%d standup response(s) still outstanding. The window closes at %s.",
		outstanding, inst.TimeoutAt().Format("15:04 MST"))
	if _, err := s.gateway.SendToChannel(team.SlackChannelID, contract.MessageContent{Text: text}); err != nil {
		logrus.WithError(err).WithField("instance_id", inst.ID).Warn("failed to post channel nudge")
		return
	}

	if !s.opts.ReminderResend {
		if _, err := s.dm.Reminder().ClaimDelivery(&entity.ReminderDelivery{
			InstanceID: inst.ID,
			MemberID:   0,
			Tier:       tier,
			SentAt:     now,
		}); err != nil {
			logrus.WithError(err).WithField("instance_id", inst.ID).Error("failed to record channel nudge")
		}
	}
}

func tierMessage(tier, displayName string, timeoutAt time.Time, respondURL string) string {
	deadline := timeoutAt.Format("15:04 MST")
	switch tier {
	case domain.TierGentle:
		return fmt.Sprintf("Hi %s, a gentle reminder: today's standup is still open until %s. %s", displayName, deadline, respondURL)
	case domain.TierUrgent:
		return fmt.Sprintf("%s, the standup window closes at %s and your answers are still missing. %s", displayName, deadline, respondURL)
	default:
		return fmt.Sprintf("Last call, %s: the standup is closing now. %s", displayName, respondURL)
	}
}
