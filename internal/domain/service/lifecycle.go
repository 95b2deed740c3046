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

type lifecycleService struct {
	dm      contract.DataManager
	gateway contract.DeliveryGateway
	audit   contract.AuditLogger
	token   *tokenService
	opts    Options
}

func newLifecycle(dm contract.DataManager, gateway contract.DeliveryGateway, audit contract.AuditLogger, token *tokenService, opts Options) *lifecycleService {
	return &lifecycleService{
		dm:      dm,
		gateway: gateway,
		audit:   audit,
		token:   token,
		opts:    opts,
	}
}

// MaterializeDue walks every active config and creates an instance for each
// team whose occurrence time has been reached today. Creation is insert-or-
// ignore on (team, target date), so concurrent ticks collapse to one instance.
// A failure for one team never blocks the rest of the sweep.
func (s *lifecycleService) MaterializeDue(ctx context.Context, now time.Time) error {
	configs, err := s.dm.Config().GetActiveConfigs()
	if err != nil {
		return errs.Dependency(fmt.Errorf("failed to load active configs: %w", err))
	}

	for _, config := range configs {
		if err := s.materializeOne(ctx, config, now); err != nil {
			entry := logrus.WithFields(logrus.Fields{
				"component": "lifecycle",
				"team_id":   config.TeamID,
			}).WithError(err)
			// Bad config data is the team's problem, not the sweep's
			if errs.IsExpected(err) {
				entry.Warn("materialization skipped, continuing sweep")
			} else {
				entry.Error("materialization failed, continuing sweep")
			}
		}
	}

	return nil
}

func (s *lifecycleService) materializeOne(ctx context.Context, config *entity.StandupConfig, now time.Time) error {
	team, err := s.dm.Team().GetByID(config.TeamID)
	if err != nil {
		return fmt.Errorf("failed to load team: %w", err)
	}
	if team == nil || !team.IsActive {
		return nil
	}

	due, targetDate, err := occurrenceReached(config, now)
	if err != nil {
		return err
	}
	if !due {
		return nil
	}

	members, err := s.dm.Member().GetActiveByTeam(config.TeamID)
	if err != nil {
		return fmt.Errorf("failed to load members: %w", err)
	}

	snapshot := BuildSnapshot(config, members)
	if len(snapshot.Participants) == 0 {
		// Nothing to collect
		return nil
	}

	inst := &entity.StandupInstance{
		TeamID:     config.TeamID,
		TargetDate: targetDate,
		State:      domain.StateCollecting,
		Snapshot:   snapshot,
		CreatedAt:  now,
	}

	created, err := s.dm.Instance().CreateIfAbsent(inst)
	if err != nil {
		return fmt.Errorf("failed to create instance: %w", err)
	}
	if !created {
		// Another tick won the race
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"component":   "lifecycle",
		"team_id":     team.ID,
		"instance_id": inst.ID,
		"target_date": targetDate,
	}).Info("standup instance opened for collection")

	s.audit.Record("standup.instance.opened", "scheduler", team.OrgID,
		"instance:"+strconv.FormatInt(inst.ID, 10), "date:"+targetDate)

	s.deliverPrompts(team, inst, now)
	return nil
}

// occurrenceReached reports whether the config's occurrence time for today (in
// the config's timezone) has arrived, and the target date it maps to.
func occurrenceReached(config *entity.StandupConfig, now time.Time) (bool, string, error) {
	hour, minute, err := parseTimeOfDay(config.TimeOfDay)
	if err != nil {
		return false, "", err
	}

	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return false, "", errs.Validationf("invalid timezone %q: %v", config.Timezone, err)
	}

	local := now.In(loc)
	active := false
	for _, day := range config.Weekdays {
		if day == isoWeekday(local) {
			active = true
			break
		}
	}
	if !active {
		return false, "", nil
	}

	occurrence := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if now.Before(occurrence) {
		return false, "", nil
	}

	return true, local.Format("2006-01-02"), nil
}

// deliverPrompts sends each snapshot participant their personal response link
// and, in broadcast mode, a kickoff message to the shared channel. Delivery is
// at-least-once; failures are logged and left for the reminder sweep.
func (s *lifecycleService) deliverPrompts(team *entity.Team, inst *entity.StandupInstance, now time.Time) {
	if inst.Snapshot.DeliveryMode == domain.DeliveryBroadcast {
		text := fmt.Sprintf("*Standup time!* %d questions today. Check your DMs for your personal response link.",
			len(inst.Snapshot.Questions))
		ref, err := s.gateway.SendToChannel(team.SlackChannelID, contract.MessageContent{Text: text})
		if err != nil {
			logrus.WithError(err).WithField("instance_id", inst.ID).Warn("failed to post kickoff message")
		} else if err := s.dm.Instance().SetReminderMessageRef(inst.ID, ref); err != nil {
			logrus.WithError(err).WithField("instance_id", inst.ID).Warn("failed to record kickoff message ref")
		}
	}

	for _, p := range inst.Snapshot.Participants {
		token, err := s.token.Generate(inst.ID, p.MemberID, p.SlackUserID, team.OrgID, s.opts.TokenTTL)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"instance_id": inst.ID,
				"member_id":   p.MemberID,
			}).Error("failed to generate response token")
			continue
		}

		text := fmt.Sprintf("Hi %s, it's standup time. Answer here: %s", p.DisplayName, token.RespondURL)
		if _, err := s.gateway.SendDirect(p.SlackUserID, contract.MessageContent{Text: text}); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"instance_id": inst.ID,
				"member_id":   p.MemberID,
			}).Warn("failed to deliver standup prompt")
		}
	}
}

// CloseDue transitions collecting instances whose response window has elapsed
// to posted and requests the summary delivery. The recorded summary message
// ref keeps retries from posting twice.
func (s *lifecycleService) CloseDue(ctx context.Context, now time.Time) error {
	instances, err := s.dm.Instance().GetByState(domain.StateCollecting)
	if err != nil {
		return errs.Dependency(fmt.Errorf("failed to load collecting instances: %w", err))
	}

	for _, inst := range instances {
		if now.Before(inst.TimeoutAt()) {
			continue
		}
		if err := s.closeAndPost(ctx, inst, now); err != nil {
			logrus.WithFields(logrus.Fields{
				"component":   "lifecycle",
				"instance_id": inst.ID,
			}).WithError(err).Error("close failed, continuing sweep")
		}
	}

	return nil
}

// CloseIfComplete closes an instance ahead of the timeout once every snapshot
// participant has answered every question. No-op unless the close-on-completion
// policy is enabled.
func (s *lifecycleService) CloseIfComplete(ctx context.Context, instanceID int64, now time.Time) error {
	if !s.opts.CloseOnCompletion {
		return nil
	}

	inst, err := s.dm.Instance().GetByID(instanceID)
	if err != nil {
		return errs.Dependency(err)
	}
	if inst == nil || inst.State != domain.StateCollecting {
		return nil
	}

	questionCount := len(inst.Snapshot.Questions)
	for _, p := range inst.Snapshot.Participants {
		count, err := s.dm.Answer().CountByInstanceAndMember(inst.ID, p.MemberID)
		if err != nil {
			return errs.Dependency(err)
		}
		if count < questionCount {
			return nil
		}
	}

	return s.closeAndPost(ctx, inst, now)
}

func (s *lifecycleService) closeAndPost(ctx context.Context, inst *entity.StandupInstance, now time.Time) error {
	team, err := s.dm.Team().GetByID(inst.TeamID)
	if err != nil {
		return fmt.Errorf("failed to load team: %w", err)
	}
	if team == nil {
		return errs.NotFoundf("team %d", inst.TeamID)
	}

	// Deliver the summary before the state flip: a failed post leaves the
	// instance collecting so the next sweep retries it. The recorded ref is
	// what keeps a retry from posting twice.
	if inst.SummaryMessageRef == "" {
		summary, err := s.buildSummary(inst)
		if err != nil {
			return err
		}

		ref, err := s.gateway.SendToChannel(team.SlackChannelID, contract.MessageContent{Text: summary})
		if err != nil {
			return errs.Dependency(fmt.Errorf("failed to post summary: %w", err))
		}

		if err := s.dm.Instance().SetSummaryMessageRef(inst.ID, ref); err != nil {
			return fmt.Errorf("failed to record summary ref: %w", err)
		}
	}

	if err := s.dm.Instance().SetState(inst.ID, domain.StatePosted); err != nil {
		return fmt.Errorf("failed to transition instance: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"component":   "lifecycle",
		"instance_id": inst.ID,
	}).Info("standup instance posted")

	s.audit.Record("standup.instance.posted", "scheduler", team.OrgID,
		"instance:"+strconv.FormatInt(inst.ID, 10))

	return nil
}

func (s *lifecycleService) buildSummary(inst *entity.StandupInstance) (string, error) {
	answers, err := s.dm.Answer().GetByInstance(inst.ID)
	if err != nil {
		return "", errs.Dependency(err)
	}

	byMember := make(map[int64]map[int]string)
	for _, a := range answers {
		if byMember[a.MemberID] == nil {
			byMember[a.MemberID] = make(map[int]string)
		}
		byMember[a.MemberID][a.QuestionIndex] = a.Text
	}

	out := fmt.Sprintf("*Standup summary for %s*\n", inst.TargetDate)
	for _, p := range inst.Snapshot.Participants {
		memberAnswers := byMember[p.MemberID]
		if len(memberAnswers) == 0 {
			out += fmt.Sprintf("\n*%s*: no response\n", p.DisplayName)
			continue
		}
		out += fmt.Sprintf("\n*%s*\n", p.DisplayName)
		for idx, question := range inst.Snapshot.Questions {
			text, ok := memberAnswers[idx]
			if !ok {
				text = "_(unanswered)_"
			}
			out += fmt.Sprintf("> %s\n%s\n", question, text)
		}
	}

	return out, nil
}

func (s *lifecycleService) GetInstance(instanceID int64) (*entity.StandupInstance, error) {
	inst, err := s.dm.Instance().GetByID(instanceID)
	if err != nil {
		return nil, errs.Dependency(err)
	}
	if inst == nil {
		return nil, errs.NotFoundf("instance %d", instanceID)
	}
	return inst, nil
}
