package test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/syncfield/standup-bot/internal/database"
	"github.com/syncfield/standup-bot/internal/domain/contract"
	"github.com/syncfield/standup-bot/internal/domain/service"
	"github.com/syncfield/standup-bot/internal/handlers"
)

const SigningSecret = "test-signing-secret"

type SentMessage struct {
	Target string
	Text   string
}

// FakeGateway records deliveries instead of calling Slack.
type FakeGateway struct {
	mu          sync.Mutex
	ChannelMsgs []SentMessage
	DirectMsgs  []SentMessage
	refSeq      int
}

func (f *FakeGateway) SendToChannel(channelRef string, content contract.MessageContent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ChannelMsgs = append(f.ChannelMsgs, SentMessage{Target: channelRef, Text: content.Text})
	f.refSeq++
	return fmt.Sprintf("%s:%d", channelRef, f.refSeq), nil
}

func (f *FakeGateway) SendDirect(memberRef string, content contract.MessageContent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DirectMsgs = append(f.DirectMsgs, SentMessage{Target: memberRef, Text: content.Text})
	f.refSeq++
	return fmt.Sprintf("dm-%s:%d", memberRef, f.refSeq), nil
}

func (f *FakeGateway) ValidateChannelAccess(channelRef string) error { return nil }

func (f *FakeGateway) LookupDisplayName(memberRef string) (string, error) {
	return "User " + memberRef, nil
}

type nopAudit struct{}

func (nopAudit) Record(action, actor, orgID string, tags ...string) {}

// Env wires the handlers over real services and an in-memory database.
type Env struct {
	DM       contract.DataManager
	Gateway  *FakeGateway
	Services *service.Services
	Handler  *handlers.SlackHandler
	Respond  *handlers.RespondHandler
}

func GetHandlerTest(t *testing.T) *Env {
	t.Helper()

	db := database.SetupTestDB(t)
	t.Cleanup(func() { database.CleanupTestDB(t, db) })

	dm := database.NewInstance(db)
	gateway := &FakeGateway{}
	svcs := service.New(dm, gateway, nopAudit{}, service.Options{
		SigningKey: []byte("test-signing-key"),
		BaseURL:    "http://localhost:3000",
	})

	instanceLookup := func(teamID int64, targetDate string) (int64, bool, error) {
		inst, err := dm.Instance().GetByTeamAndDate(teamID, targetDate)
		if err != nil || inst == nil {
			return 0, false, err
		}
		return inst.ID, true, nil
	}

	instanceLoader := func(instanceID int64) ([]string, string, error) {
		inst, err := dm.Instance().GetByID(instanceID)
		if err != nil {
			return nil, "", err
		}
		return inst.Snapshot.Questions, inst.TargetDate, nil
	}

	return &Env{
		DM:       dm,
		Gateway:  gateway,
		Services: svcs,
		Handler:  handlers.NewSlackHandler(svcs.Standup, svcs.Answer, instanceLookup, SigningSecret),
		Respond:  handlers.NewRespondHandler(svcs.Token, svcs.Answer, instanceLoader),
	}
}

// CreateSlackRequest creates a properly signed Slack slash command request
func CreateSlackRequest(t *testing.T, command, text, channelID, channelName, userID, teamID, signingSecret string) *http.Request {
	t.Helper()

	form := url.Values{
		"token":        {"test-token"},
		"team_id":      {teamID},
		"team_domain":  {"test-team"},
		"channel_id":   {channelID},
		"channel_name": {channelName},
		"user_id":      {userID},
		"user_name":    {"test-user"},
		"command":      {command},
		"text":         {text},
		"response_url": {"https://hooks.slack.com/commands/test"},
		"trigger_id":   {"test-trigger-id"},
	}

	body := form.Encode()

	req, err := http.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader(body))
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)

	sig := generateSlackSignature(signingSecret, timestamp, body)
	req.Header.Set("X-Slack-Signature", sig)

	return req
}

func generateSlackSignature(signingSecret, timestamp, body string) string {
	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	signature := hex.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("v0=%s", signature)
}

func CreateTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}
