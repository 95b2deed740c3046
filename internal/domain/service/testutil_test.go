package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/syncfield/standup-bot/internal/database"
	"github.com/syncfield/standup-bot/internal/domain"
	"github.com/syncfield/standup-bot/internal/domain/contract"
	"github.com/syncfield/standup-bot/internal/domain/entity"
)

type sentMessage struct {
	Target string
	Text   string
}

// fakeGateway records sends and can be told to fail for specific targets.
type fakeGateway struct {
	mu          sync.Mutex
	ChannelMsgs []sentMessage
	DirectMsgs  []sentMessage
	FailFor     map[string]bool
	refSeq      int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{FailFor: make(map[string]bool)}
}

func (f *fakeGateway) SendToChannel(channelRef string, content contract.MessageContent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailFor[channelRef] {
		return "", fmt.Errorf("send failed for %s", channelRef)
	}
	f.ChannelMsgs = append(f.ChannelMsgs, sentMessage{Target: channelRef, Text: content.Text})
	f.refSeq++
	return fmt.Sprintf("%s:%d", channelRef, f.refSeq), nil
}

func (f *fakeGateway) SendDirect(memberRef string, content contract.MessageContent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailFor[memberRef] {
		return "", fmt.Errorf("send failed for %s", memberRef)
	}
	f.DirectMsgs = append(f.DirectMsgs, sentMessage{Target: memberRef, Text: content.Text})
	f.refSeq++
	return fmt.Sprintf("dm-%s:%d", memberRef, f.refSeq), nil
}

func (f *fakeGateway) ValidateChannelAccess(channelRef string) error {
	return nil
}

func (f *fakeGateway) LookupDisplayName(memberRef string) (string, error) {
	return "User " + memberRef, nil
}

func (f *fakeGateway) directTo(target string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var msgs []sentMessage
	for _, m := range f.DirectMsgs {
		if m.Target == target {
			msgs = append(msgs, m)
		}
	}
	return msgs
}

// answersFor builds sequential answer inputs starting at question index 0
func answersFor(texts ...string) []contract.AnswerInput {
	var out []contract.AnswerInput
	for i, text := range texts {
		out = append(out, contract.AnswerInput{QuestionIndex: i, Text: text})
	}
	return out
}

type nopAudit struct{}

func (nopAudit) Record(action, actor, orgID string, tags ...string) {}

type testEnv struct {
	db      *database.DB
	dm      contract.DataManager
	gateway *fakeGateway
	svcs    *Services
}

func defaultOptions() Options {
	return Options{
		SigningKey: []byte("test-signing-key"),
		BaseURL:    "http://localhost:3000",
		TokenTTL:   24 * time.Hour,
	}
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	db := database.SetupTestDB(t)
	t.Cleanup(func() { database.CleanupTestDB(t, db) })

	dm := database.NewInstance(db)
	gateway := newFakeGateway()

	return &testEnv{
		db:      db,
		dm:      dm,
		gateway: gateway,
		svcs:    New(dm, gateway, nopAudit{}, opts),
	}
}

func (e *testEnv) seedTeam(t *testing.T, orgID string) *entity.Team {
	t.Helper()

	team := &entity.Team{
		OrgID:          orgID,
		SlackTeamID:    "T" + orgID,
		SlackChannelID: "C" + orgID,
		Name:           "engineering",
		IsActive:       true,
	}
	require.NoError(t, e.dm.Team().Create(team))
	return team
}

func (e *testEnv) seedMember(t *testing.T, teamID int64, slackUserID, displayName string) *entity.TeamMember {
	t.Helper()

	member := &entity.TeamMember{
		TeamID:      teamID,
		SlackUserID: slackUserID,
		DisplayName: displayName,
		IsActive:    true,
	}
	require.NoError(t, e.dm.Member().Create(member))
	return member
}

type configSeed struct {
	Questions            []string
	Weekdays             []int
	TimeOfDay            string
	Timezone             string
	ReminderLeadMinutes  int
	ResponseTimeoutHours int
	DeliveryMode         string
}

func (e *testEnv) seedConfig(t *testing.T, teamID int64, seed configSeed, participants ...*entity.TeamMember) *entity.StandupConfig {
	t.Helper()

	if seed.Questions == nil {
		seed.Questions = append([]string(nil), domain.DefaultQuestions...)
	}
	if seed.Weekdays == nil {
		seed.Weekdays = []int{1, 2, 3, 4, 5, 6, 7}
	}
	if seed.TimeOfDay == "" {
		seed.TimeOfDay = "09:00"
	}
	if seed.Timezone == "" {
		seed.Timezone = "UTC"
	}
	if seed.ReminderLeadMinutes == 0 {
		seed.ReminderLeadMinutes = 40
	}
	if seed.ResponseTimeoutHours == 0 {
		seed.ResponseTimeoutHours = 2
	}
	if seed.DeliveryMode == "" {
		seed.DeliveryMode = domain.DeliveryDirect
	}

	config := &entity.StandupConfig{
		TeamID:               teamID,
		Questions:            seed.Questions,
		Weekdays:             seed.Weekdays,
		TimeOfDay:            seed.TimeOfDay,
		Timezone:             seed.Timezone,
		ReminderLeadMinutes:  seed.ReminderLeadMinutes,
		ResponseTimeoutHours: seed.ResponseTimeoutHours,
		DeliveryMode:         seed.DeliveryMode,
		IsActive:             true,
	}
	require.NoError(t, e.dm.Config().Create(config))

	for _, m := range participants {
		require.NoError(t, e.dm.Config().UpsertParticipant(&entity.ConfigParticipant{
			ConfigID: config.ID,
			MemberID: m.ID,
			Included: true,
			Role:     domain.DefaultRole,
		}))
	}
	config.Participants, _ = e.dm.Config().GetParticipants(config.ID)

	return config
}
