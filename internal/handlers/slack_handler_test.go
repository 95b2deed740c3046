package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syncfield/standup-bot/internal/handlers/test"
)

func runSlashCommand(t *testing.T, env *test.Env, text string) *httptest.ResponseRecorder {
	t.Helper()

	req := test.CreateSlackRequest(t, "/standup", text,
		"C123456789", "test-channel", "U987654321", "T123456789", test.SigningSecret)
	resp := test.CreateTestRecorder()
	env.Handler.HandleSlashCommand(resp, req)
	return resp
}

func decodeMsg(t *testing.T, resp *httptest.ResponseRecorder) slack.Msg {
	t.Helper()

	require.Equal(t, http.StatusOK, resp.Code)
	var msg slack.Msg
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &msg))
	return msg
}

func TestHandleSlashCommand_RejectsBadSignature(t *testing.T) {
	env := test.GetHandlerTest(t)

	req := test.CreateSlackRequest(t, "/standup", "setup",
		"C123456789", "test-channel", "U987654321", "T123456789", "wrong-secret")
	resp := test.CreateTestRecorder()
	env.Handler.HandleSlashCommand(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestHandleSlashCommand_Setup(t *testing.T) {
	env := test.GetHandlerTest(t)

	msg := decodeMsg(t, runSlashCommand(t, env, "setup"))
	assert.Equal(t, slack.ResponseTypeInChannel, msg.ResponseType)
	assert.Contains(t, msg.Text, "Standup created")

	team, err := env.DM.Team().GetBySlackChannelID("C123456789")
	require.NoError(t, err)
	require.NotNil(t, team)

	config, err := env.DM.Config().GetByTeamID(team.ID)
	require.NoError(t, err)
	require.NotNil(t, config, "setup seeds a default config")

	// Second setup reports the existing standup
	msg = decodeMsg(t, runSlashCommand(t, env, "setup"))
	assert.Equal(t, slack.ResponseTypeEphemeral, msg.ResponseType)
	assert.Contains(t, msg.Text, "already exists")
}

func TestHandleSlashCommand_AddAndListParticipants(t *testing.T) {
	env := test.GetHandlerTest(t)
	decodeMsg(t, runSlashCommand(t, env, "setup"))

	msg := decodeMsg(t, runSlashCommand(t, env, "add <@U123456789|alice>"))
	assert.Equal(t, slack.ResponseTypeInChannel, msg.ResponseType)
	assert.Contains(t, msg.Text, "<@U123456789>")

	msg = decodeMsg(t, runSlashCommand(t, env, "list"))
	assert.Contains(t, msg.Text, "User U123456789")
}

func TestHandleSlashCommand_AddWithoutMention(t *testing.T) {
	env := test.GetHandlerTest(t)

	msg := decodeMsg(t, runSlashCommand(t, env, "add"))
	assert.Contains(t, msg.Text, "❌")
}

func TestHandleSlashCommand_RemoveParticipant(t *testing.T) {
	env := test.GetHandlerTest(t)
	decodeMsg(t, runSlashCommand(t, env, "setup"))
	decodeMsg(t, runSlashCommand(t, env, "add <@U123456789|alice>"))

	msg := decodeMsg(t, runSlashCommand(t, env, "remove <@U123456789|alice>"))
	assert.Contains(t, msg.Text, "removed from future standups")

	msg = decodeMsg(t, runSlashCommand(t, env, "list"))
	assert.Contains(t, msg.Text, "No participants yet")
}

func TestHandleSlashCommand_ConfigUpdate(t *testing.T) {
	env := test.GetHandlerTest(t)
	decodeMsg(t, runSlashCommand(t, env, "setup"))

	msg := decodeMsg(t, runSlashCommand(t, env, "config time 10:30"))
	assert.Contains(t, msg.Text, "Configuration updated")

	msg = decodeMsg(t, runSlashCommand(t, env, "config days mon,wed,fri"))
	assert.Contains(t, msg.Text, "Configuration updated")

	team, err := env.DM.Team().GetBySlackChannelID("C123456789")
	require.NoError(t, err)
	config, err := env.DM.Config().GetByTeamID(team.ID)
	require.NoError(t, err)
	assert.Equal(t, "10:30", config.TimeOfDay)
	assert.Equal(t, []int{1, 3, 5}, config.Weekdays)
}

func TestHandleSlashCommand_ConfigRejectsInvalidValue(t *testing.T) {
	env := test.GetHandlerTest(t)
	decodeMsg(t, runSlashCommand(t, env, "setup"))

	msg := decodeMsg(t, runSlashCommand(t, env, "config time 25:99"))
	assert.Contains(t, msg.Text, "❌")

	msg = decodeMsg(t, runSlashCommand(t, env, "config timezone Mars/Olympus"))
	assert.Contains(t, msg.Text, "❌")
}

func TestHandleSlashCommand_ConfigShow(t *testing.T) {
	env := test.GetHandlerTest(t)
	decodeMsg(t, runSlashCommand(t, env, "setup"))

	msg := decodeMsg(t, runSlashCommand(t, env, "config show"))
	assert.Contains(t, msg.Text, "Standup configuration")
	assert.Contains(t, msg.Text, "09:00")
	assert.Contains(t, msg.Text, "Schedule:")
}

func TestHandleSlashCommand_PauseAndResume(t *testing.T) {
	env := test.GetHandlerTest(t)
	decodeMsg(t, runSlashCommand(t, env, "setup"))

	msg := decodeMsg(t, runSlashCommand(t, env, "pause"))
	assert.Contains(t, msg.Text, "paused")

	team, err := env.DM.Team().GetBySlackChannelID("C123456789")
	require.NoError(t, err)
	config, err := env.DM.Config().GetByTeamID(team.ID)
	require.NoError(t, err)
	assert.False(t, config.IsActive)

	msg = decodeMsg(t, runSlashCommand(t, env, "resume"))
	assert.Contains(t, msg.Text, "resumed")

	config, err = env.DM.Config().GetByTeamID(team.ID)
	require.NoError(t, err)
	assert.True(t, config.IsActive)
}

func TestHandleSlashCommand_StatusWithoutInstance(t *testing.T) {
	env := test.GetHandlerTest(t)
	decodeMsg(t, runSlashCommand(t, env, "setup"))

	msg := decodeMsg(t, runSlashCommand(t, env, "status"))
	assert.Contains(t, msg.Text, "No standup instance for today")
}

func TestHandleSlashCommand_UnknownCommand(t *testing.T) {
	env := test.GetHandlerTest(t)

	msg := decodeMsg(t, runSlashCommand(t, env, "destroy"))
	assert.Contains(t, msg.Text, "unknown command")
}

func TestHandleSlashCommand_Help(t *testing.T) {
	env := test.GetHandlerTest(t)

	msg := decodeMsg(t, runSlashCommand(t, env, "help"))
	assert.Equal(t, slack.ResponseTypeEphemeral, msg.ResponseType)
	assert.Contains(t, msg.Text, "/standup config")
}
