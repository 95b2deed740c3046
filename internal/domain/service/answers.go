package service

import (
	"context"
	"strconv"
	"time"

	"github.com/syncfield/standup-bot/internal/domain"
	"github.com/syncfield/standup-bot/internal/domain/contract"
	"github.com/syncfield/standup-bot/internal/domain/entity"
	"github.com/syncfield/standup-bot/internal/domain/errs"
)

type answerService struct {
	dm        contract.DataManager
	lifecycle *lifecycleService
	audit     contract.AuditLogger
	opts      Options
}

func newAnswer(dm contract.DataManager, lifecycle *lifecycleService, audit contract.AuditLogger, opts Options) *answerService {
	return &answerService{
		dm:        dm,
		lifecycle: lifecycle,
		audit:     audit,
		opts:      opts,
	}
}

// SubmitFullResponse records a member's answers against an instance. Each
// answer is an upsert on (instance, member, question index), so a double
// submission of the same question keeps exactly one row with the latest text.
// Partial submissions may be completed incrementally until the window closes;
// once a member has answered every question, further submissions conflict.
func (s *answerService) SubmitFullResponse(ctx context.Context, instanceID int64, answers []contract.AnswerInput, memberID int64, orgID string, now time.Time) (int, error) {
	if len(answers) == 0 {
		return 0, errs.Validationf("no answers provided")
	}

	inst, err := s.dm.Instance().GetByID(instanceID)
	if err != nil {
		return 0, errs.Dependency(err)
	}
	if inst == nil {
		return 0, errs.NotFoundf("instance %d", instanceID)
	}

	team, err := s.dm.Team().GetByID(inst.TeamID)
	if err != nil {
		return 0, errs.Dependency(err)
	}
	if team == nil || team.OrgID != orgID {
		return 0, errs.Unauthorized()
	}
	if inst.Participant(memberID) == nil {
		return 0, errs.Unauthorized()
	}

	if inst.State != domain.StateCollecting {
		return 0, errs.StateConflictf("no longer accepting responses")
	}
	if now.After(inst.TimeoutAt()) {
		return 0, errs.WindowClosedf("no longer accepting responses")
	}

	questionCount := len(inst.Snapshot.Questions)
	for _, a := range answers {
		if a.QuestionIndex < 0 || a.QuestionIndex >= questionCount {
			return 0, errs.Validationf("invalid question index %d", a.QuestionIndex)
		}
	}

	existing, err := s.dm.Answer().CountByInstanceAndMember(instanceID, memberID)
	if err != nil {
		return 0, errs.Dependency(err)
	}
	if existing >= questionCount {
		return 0, errs.StateConflictf("already submitted")
	}

	written := 0
	err = s.dm.WithTransaction(ctx, func(dm contract.DataManager) error {
		for _, a := range answers {
			answer := &entity.Answer{
				InstanceID:    instanceID,
				MemberID:      memberID,
				QuestionIndex: a.QuestionIndex,
				Text:          a.Text,
				SubmittedAt:   now,
			}
			if err := dm.Answer().Upsert(answer); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, errs.Dependency(err)
	}

	s.audit.Record("standup.answers.submitted", "member:"+strconv.FormatInt(memberID, 10), orgID,
		"instance:"+strconv.FormatInt(instanceID, 10),
		"count:"+strconv.Itoa(written))

	if err := s.lifecycle.CloseIfComplete(ctx, instanceID, now); err != nil {
		// The submission itself succeeded; closing retries on the next sweep
		return written, nil
	}

	return written, nil
}

func (s *answerService) GetAnswers(instanceID, memberID int64) ([]*entity.Answer, error) {
	answers, err := s.dm.Answer().GetByInstanceAndMember(instanceID, memberID)
	if err != nil {
		return nil, errs.Dependency(err)
	}
	return answers, nil
}

// ParticipationSummary derives the dashboard projection for one instance.
// Counts compare respondents against the snapshot roster; a roster edited
// after materialization never changes an existing instance's accounting.
func (s *answerService) ParticipationSummary(instanceID int64) (*entity.ParticipationSummary, error) {
	inst, err := s.dm.Instance().GetByID(instanceID)
	if err != nil {
		return nil, errs.Dependency(err)
	}
	if inst == nil {
		return nil, errs.NotFoundf("instance %d", instanceID)
	}

	questionCount := len(inst.Snapshot.Questions)
	summary := &entity.ParticipationSummary{
		InstanceID:       inst.ID,
		State:            inst.State,
		ParticipantCount: len(inst.Snapshot.Participants),
		TimeoutAt:        inst.TimeoutAt(),
	}

	for _, p := range inst.Snapshot.Participants {
		count, err := s.dm.Answer().CountByInstanceAndMember(inst.ID, p.MemberID)
		if err != nil {
			return nil, errs.Dependency(err)
		}
		if count > 0 {
			summary.Respondents++
		}
		summary.Members = append(summary.Members, entity.MemberParticipation{
			MemberID:    p.MemberID,
			DisplayName: p.DisplayName,
			Answered:    count,
			Complete:    count >= questionCount,
		})
	}

	if summary.ParticipantCount > 0 {
		summary.ResponseRate = float64(summary.Respondents) / float64(summary.ParticipantCount)
	}

	return summary, nil
}
