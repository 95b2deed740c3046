package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syncfield/standup-bot/internal/domain"
	"github.com/syncfield/standup-bot/internal/domain/contract"
	"github.com/syncfield/standup-bot/internal/domain/entity"
	"github.com/syncfield/standup-bot/internal/domain/errs"
)

type answerFixture struct {
	env   *testEnv
	team  *entity.Team
	alice *entity.TeamMember
	bob   *entity.TeamMember
	inst  *entity.StandupInstance
}

func setupAnswerFixture(t *testing.T, opts Options) *answerFixture {
	t.Helper()

	env := newTestEnv(t, opts)
	team := env.seedTeam(t, "org-1")
	alice := env.seedMember(t, team.ID, "U001", "Alice")
	bob := env.seedMember(t, team.ID, "U002", "Bob")
	env.seedConfig(t, team.ID, configSeed{}, alice, bob)

	require.NoError(t, env.svcs.Lifecycle.MaterializeDue(context.Background(), mondayMorning))
	inst, err := env.dm.Instance().GetByTeamAndDate(team.ID, "2024-01-08")
	require.NoError(t, err)
	require.NotNil(t, inst)

	return &answerFixture{env: env, team: team, alice: alice, bob: bob, inst: inst}
}

func (f *answerFixture) submit(answers []contract.AnswerInput, memberID int64, at time.Time) (int, error) {
	return f.env.svcs.Answer.SubmitFullResponse(context.Background(), f.inst.ID, answers, memberID, "org-1", at)
}

func TestSubmitFullResponse_RecordsAnswers(t *testing.T) {
	f := setupAnswerFixture(t, defaultOptions())

	written, err := f.submit(answersFor("Shipped the importer", "Review feedback", "None"),
		f.alice.ID, mondayMorning.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	answers, err := f.env.svcs.Answer.GetAnswers(f.inst.ID, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, answers, 3)
	assert.Equal(t, "Shipped the importer", answers[0].Text)
	assert.Equal(t, 2, answers[2].QuestionIndex)
}

func TestSubmitFullResponse_UpsertKeepsOneRow(t *testing.T) {
	f := setupAnswerFixture(t, defaultOptions())

	_, err := f.submit([]contract.AnswerInput{{QuestionIndex: 0, Text: "first draft"}},
		f.alice.ID, mondayMorning.Add(5*time.Minute))
	require.NoError(t, err)

	_, err = f.submit([]contract.AnswerInput{{QuestionIndex: 0, Text: "final answer"}},
		f.alice.ID, mondayMorning.Add(6*time.Minute))
	require.NoError(t, err)

	answers, err := f.env.svcs.Answer.GetAnswers(f.inst.ID, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "final answer", answers[0].Text)
}

func TestSubmitFullResponse_IncrementalCompletion(t *testing.T) {
	f := setupAnswerFixture(t, defaultOptions())

	_, err := f.submit([]contract.AnswerInput{{QuestionIndex: 0, Text: "yesterday"}},
		f.alice.ID, mondayMorning.Add(5*time.Minute))
	require.NoError(t, err)

	_, err = f.submit([]contract.AnswerInput{
		{QuestionIndex: 1, Text: "today"},
		{QuestionIndex: 2, Text: "no blockers"},
	}, f.alice.ID, mondayMorning.Add(15*time.Minute))
	require.NoError(t, err)

	answers, err := f.env.svcs.Answer.GetAnswers(f.inst.ID, f.alice.ID)
	require.NoError(t, err)
	assert.Len(t, answers, 3)

	// All three questions answered now; a further submission conflicts
	_, err = f.submit([]contract.AnswerInput{{QuestionIndex: 0, Text: "again"}},
		f.alice.ID, mondayMorning.Add(20*time.Minute))
	assert.ErrorIs(t, err, errs.ErrStateConflict)
}

func TestSubmitFullResponse_InvalidQuestionIndex(t *testing.T) {
	f := setupAnswerFixture(t, defaultOptions())

	_, err := f.submit([]contract.AnswerInput{{QuestionIndex: 3, Text: "out of range"}},
		f.alice.ID, mondayMorning.Add(5*time.Minute))
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.submit([]contract.AnswerInput{{QuestionIndex: -1, Text: "negative"}},
		f.alice.ID, mondayMorning.Add(5*time.Minute))
	assert.ErrorIs(t, err, errs.ErrValidation)

	// Nothing partially written
	answers, err := f.env.svcs.Answer.GetAnswers(f.inst.ID, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestSubmitFullResponse_EmptyPayload(t *testing.T) {
	f := setupAnswerFixture(t, defaultOptions())

	_, err := f.submit(nil, f.alice.ID, mondayMorning.Add(5*time.Minute))
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestSubmitFullResponse_UnknownInstance(t *testing.T) {
	f := setupAnswerFixture(t, defaultOptions())

	_, err := f.env.svcs.Answer.SubmitFullResponse(context.Background(), 99999,
		answersFor("hello"), f.alice.ID, "org-1", mondayMorning.Add(5*time.Minute))
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSubmitFullResponse_WrongOrg(t *testing.T) {
	f := setupAnswerFixture(t, defaultOptions())

	_, err := f.env.svcs.Answer.SubmitFullResponse(context.Background(), f.inst.ID,
		answersFor("hello"), f.alice.ID, "org-2", mondayMorning.Add(5*time.Minute))
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestSubmitFullResponse_NonParticipant(t *testing.T) {
	f := setupAnswerFixture(t, defaultOptions())

	dave := f.env.seedMember(t, f.team.ID, "U004", "Dave")

	_, err := f.submit(answersFor("hello"), dave.ID, mondayMorning.Add(5*time.Minute))
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestSubmitFullResponse_InstancePosted(t *testing.T) {
	f := setupAnswerFixture(t, defaultOptions())

	require.NoError(t, f.env.dm.Instance().SetState(f.inst.ID, domain.StatePosted))

	_, err := f.submit(answersFor("too late"), f.alice.ID, mondayMorning.Add(5*time.Minute))
	assert.ErrorIs(t, err, errs.ErrStateConflict)
}

func TestSubmitFullResponse_WindowClosed(t *testing.T) {
	f := setupAnswerFixture(t, defaultOptions())

	_, err := f.submit(answersFor("too late"), f.alice.ID, mondayMorning.Add(121*time.Minute))
	assert.ErrorIs(t, err, errs.ErrWindowClosed)
}

func TestSubmitFullResponse_CloseOnCompletion(t *testing.T) {
	opts := defaultOptions()
	opts.CloseOnCompletion = true
	f := setupAnswerFixture(t, opts)

	_, err := f.submit(answersFor("a", "b", "c"), f.alice.ID, mondayMorning.Add(10*time.Minute))
	require.NoError(t, err)

	inst, err := f.env.dm.Instance().GetByID(f.inst.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateCollecting, inst.State, "one of two participants is not complete")

	_, err = f.submit(answersFor("d", "e", "f"), f.bob.ID, mondayMorning.Add(20*time.Minute))
	require.NoError(t, err)

	inst, err = f.env.dm.Instance().GetByID(f.inst.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatePosted, inst.State)
	require.NotEmpty(t, f.env.gateway.ChannelMsgs)
	assert.Contains(t, f.env.gateway.ChannelMsgs[len(f.env.gateway.ChannelMsgs)-1].Text, "Alice")
}

func TestSubmitFullResponse_NoEarlyCloseWhenDisabled(t *testing.T) {
	opts := defaultOptions()
	opts.CloseOnCompletion = false
	f := setupAnswerFixture(t, opts)

	_, err := f.submit(answersFor("a", "b", "c"), f.alice.ID, mondayMorning.Add(10*time.Minute))
	require.NoError(t, err)
	_, err = f.submit(answersFor("d", "e", "f"), f.bob.ID, mondayMorning.Add(20*time.Minute))
	require.NoError(t, err)

	inst, err := f.env.dm.Instance().GetByID(f.inst.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateCollecting, inst.State)
}

func TestParticipationSummary(t *testing.T) {
	f := setupAnswerFixture(t, defaultOptions())

	_, err := f.submit([]contract.AnswerInput{{QuestionIndex: 0, Text: "partial"}},
		f.alice.ID, mondayMorning.Add(10*time.Minute))
	require.NoError(t, err)

	summary, err := f.env.svcs.Answer.ParticipationSummary(f.inst.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ParticipantCount)
	assert.Equal(t, 1, summary.Respondents)
	assert.InDelta(t, 0.5, summary.ResponseRate, 0.001)
	require.Len(t, summary.Members, 2)

	byName := map[string]entity.MemberParticipation{}
	for _, m := range summary.Members {
		byName[m.DisplayName] = m
	}
	assert.Equal(t, 1, byName["Alice"].Answered)
	assert.False(t, byName["Alice"].Complete)
	assert.Equal(t, 0, byName["Bob"].Answered)
}

func TestParticipationSummary_IgnoresRosterEdits(t *testing.T) {
	f := setupAnswerFixture(t, defaultOptions())

	// Carol joins after materialization; the snapshot roster stays at two
	carol := f.env.seedMember(t, f.team.ID, "U003", "Carol")
	config, err := f.env.dm.Config().GetByTeamID(f.team.ID)
	require.NoError(t, err)
	require.NoError(t, f.env.dm.Config().UpsertParticipant(&entity.ConfigParticipant{
		ConfigID: config.ID,
		MemberID: carol.ID,
		Included: true,
	}))

	summary, err := f.env.svcs.Answer.ParticipationSummary(f.inst.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ParticipantCount)
}
