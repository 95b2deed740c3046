package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"github.com/syncfield/standup-bot/internal/domain/contract"
)

type SlackHandler struct {
	standupService contract.StandupService
	answerService  contract.AnswerService
	instanceLookup InstanceLookup
	signingSecret  string
}

// InstanceLookup finds today's instance for a team, for the status command.
type InstanceLookup func(teamID int64, targetDate string) (int64, bool, error)

func NewSlackHandler(standupService contract.StandupService, answerService contract.AnswerService, instanceLookup InstanceLookup, signingSecret string) *SlackHandler {
	return &SlackHandler{
		standupService: standupService,
		answerService:  answerService,
		instanceLookup: instanceLookup,
		signingSecret:  signingSecret,
	}
}

func (h *SlackHandler) HandleSlashCommand(w http.ResponseWriter, r *http.Request) {
	// Verify request from Slack
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if _, err := verifier.Write(body); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := verifier.Ensure(); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	s, err := slack.SlashCommandParse(r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	cmd, err := ParseCommand(s.Text)
	if err != nil {
		h.respondWithError(w, err.Error())
		return
	}

	response := h.handleCommand(cmd, &s)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *SlackHandler) handleCommand(cmd *Command, slashCmd *slack.SlashCommand) *slack.Msg {
	switch cmd.Type {
	case CmdSetup:
		return h.handleSetup(slashCmd)
	case CmdAdd:
		return h.handleAddParticipant(cmd, slashCmd)
	case CmdRemove:
		return h.handleRemoveParticipant(cmd, slashCmd)
	case CmdList:
		return h.handleListParticipants(slashCmd)
	case CmdConfig:
		return h.handleConfig(cmd, slashCmd)
	case CmdStatus:
		return h.handleStatus(slashCmd)
	case CmdPause:
		return h.handlePause(slashCmd)
	case CmdResume:
		return h.handleResume(slashCmd)
	case CmdHelp:
		return h.handleHelp()
	default:
		return h.createErrorResponse("Unknown command")
	}
}

// teamForCommand finds or creates the team behind the channel the command came
// from. The Slack workspace ID doubles as the tenant (org) identifier.
func (h *SlackHandler) teamForCommand(slashCmd *slack.SlashCommand) (int64, error) {
	team, _, err := h.standupService.SetupTeam(slashCmd.ChannelID, slashCmd.ChannelName, slashCmd.TeamID, slashCmd.TeamID)
	if err != nil {
		return 0, err
	}
	return team.ID, nil
}

func (h *SlackHandler) handleSetup(slashCmd *slack.SlashCommand) *slack.Msg {
	team, created, err := h.standupService.SetupTeam(slashCmd.ChannelID, slashCmd.ChannelName, slashCmd.TeamID, slashCmd.TeamID)
	if err != nil {
		return h.createErrorResponse(fmt.Sprintf("Setup failed: %v", err))
	}

	if !created {
		return &slack.Msg{
			ResponseType: slack.ResponseTypeEphemeral,
			Text:         fmt.Sprintf("A standup already exists for *%s*. Use `/standup config` to adjust it.", team.Name),
		}
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Text:         "✅ Standup created! Add participants with `/standup add @user`, then adjust `/standup config` as needed.",
	}
}

func parseUserMention(arg string) string {
	userID := strings.TrimSpace(arg)
	userID = strings.TrimPrefix(userID, "<@")
	userID = strings.TrimSuffix(userID, ">")
	// Mentions may carry a |username suffix
	if idx := strings.Index(userID, "|"); idx >= 0 {
		userID = userID[:idx]
	}
	return userID
}

func (h *SlackHandler) handleAddParticipant(cmd *Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if len(cmd.Args) == 0 {
		return h.createErrorResponse("Please mention the user: `/standup add @user`")
	}

	teamID, err := h.teamForCommand(slashCmd)
	if err != nil {
		return h.createErrorResponse("Could not resolve this channel's standup")
	}

	userID := parseUserMention(cmd.Args[0])
	if err := h.standupService.AddParticipant(teamID, userID); err != nil {
		return h.createErrorResponse(fmt.Sprintf("Could not add user: %v", err))
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Text:         fmt.Sprintf("✅ <@%s> joins the standup from the next occurrence.", userID),
	}
}

func (h *SlackHandler) handleRemoveParticipant(cmd *Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if len(cmd.Args) == 0 {
		return h.createErrorResponse("Please mention the user: `/standup remove @user`")
	}

	teamID, err := h.teamForCommand(slashCmd)
	if err != nil {
		return h.createErrorResponse("Could not resolve this channel's standup")
	}

	userID := parseUserMention(cmd.Args[0])
	if err := h.standupService.RemoveParticipant(teamID, userID); err != nil {
		return h.createErrorResponse(fmt.Sprintf("Could not remove user: %v", err))
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Text:         fmt.Sprintf("✅ <@%s> removed from future standups.", userID),
	}
}

func (h *SlackHandler) handleListParticipants(slashCmd *slack.SlashCommand) *slack.Msg {
	teamID, err := h.teamForCommand(slashCmd)
	if err != nil {
		return h.createErrorResponse("Could not resolve this channel's standup")
	}

	participants, err := h.standupService.ListParticipants(teamID)
	if err != nil {
		return h.createErrorResponse("Could not list participants")
	}

	if len(participants) == 0 {
		return &slack.Msg{
			ResponseType: slack.ResponseTypeEphemeral,
			Text:         "No participants yet. Use `/standup add @user` to add team members.",
		}
	}

	var list strings.Builder
	list.WriteString("*Standup participants:*\n")
	for i, member := range participants {
		list.WriteString(fmt.Sprintf("%d. %s\n", i+1, member.DisplayName))
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         list.String(),
	}
}

func (h *SlackHandler) handleConfig(cmd *Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if len(cmd.Args) == 0 {
		return h.createErrorResponse("Use: `/standup config <field> <value>`. See `/standup help`")
	}

	teamID, err := h.teamForCommand(slashCmd)
	if err != nil {
		return h.createErrorResponse("Could not resolve this channel's standup")
	}

	if cmd.Args[0] == "show" {
		return h.showConfig(teamID)
	}

	if len(cmd.Args) < 2 {
		return h.createErrorResponse("Use: `/standup config <field> <value>`. See `/standup help`")
	}

	field := cmd.Args[0]
	value := strings.Join(cmd.Args[1:], " ")

	if err := h.standupService.UpdateConfig(teamID, field, value); err != nil {
		return h.createErrorResponse(fmt.Sprintf("Could not update configuration: %v", err))
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("✅ Configuration updated: %s = %s (applies from the next occurrence)", field, value),
	}
}

func (h *SlackHandler) showConfig(teamID int64) *slack.Msg {
	config, err := h.standupService.GetConfig(teamID)
	if err != nil {
		return h.createErrorResponse("Could not load configuration")
	}

	var out strings.Builder
	out.WriteString("*Standup configuration:*\n")
	out.WriteString(fmt.Sprintf("• Time: %s (%s)\n", config.TimeOfDay, config.Timezone))
	out.WriteString(fmt.Sprintf("• Response window: %dh, reminder lead %dm\n", config.ResponseTimeoutHours, config.ReminderLeadMinutes))
	out.WriteString(fmt.Sprintf("• Delivery: %s\n", config.DeliveryMode))
	out.WriteString("• Questions:\n")
	for i, q := range config.Questions {
		out.WriteString(fmt.Sprintf("    %d. %s\n", i+1, q))
	}

	if schedule, err := h.standupService.DescribeSchedule(teamID, time.Now()); err == nil {
		out.WriteString(fmt.Sprintf("• Schedule: %s\n", schedule))
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         out.String(),
	}
}

func (h *SlackHandler) handleStatus(slashCmd *slack.SlashCommand) *slack.Msg {
	teamID, err := h.teamForCommand(slashCmd)
	if err != nil {
		return h.createErrorResponse("Could not resolve this channel's standup")
	}

	today := time.Now().UTC().Format("2006-01-02")
	instanceID, found, err := h.instanceLookup(teamID, today)
	if err != nil {
		return h.createErrorResponse("Could not check today's standup")
	}
	if !found {
		return &slack.Msg{
			ResponseType: slack.ResponseTypeEphemeral,
			Text:         "No standup instance for today.",
		}
	}

	summary, err := h.answerService.ParticipationSummary(instanceID)
	if err != nil {
		return h.createErrorResponse("Could not load participation")
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("*Today's standup* (%s)\n", summary.State))
	out.WriteString(fmt.Sprintf("Responses: %d/%d (%.0f%%)\n", summary.Respondents, summary.ParticipantCount, summary.ResponseRate*100))
	for _, m := range summary.Members {
		mark := "✅"
		if !m.Complete {
			mark = "⏳"
		}
		out.WriteString(fmt.Sprintf("%s %s (%d answered)\n", mark, m.DisplayName, m.Answered))
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         out.String(),
	}
}

func (h *SlackHandler) handlePause(slashCmd *slack.SlashCommand) *slack.Msg {
	teamID, err := h.teamForCommand(slashCmd)
	if err != nil {
		return h.createErrorResponse("Could not resolve this channel's standup")
	}

	if err := h.standupService.PauseStandup(teamID); err != nil {
		return h.createErrorResponse("Could not pause the standup")
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Text:         "⏸️ Standup paused. Already-open instances keep collecting; no new ones will start.",
	}
}

func (h *SlackHandler) handleResume(slashCmd *slack.SlashCommand) *slack.Msg {
	teamID, err := h.teamForCommand(slashCmd)
	if err != nil {
		return h.createErrorResponse("Could not resolve this channel's standup")
	}

	if err := h.standupService.ResumeStandup(teamID); err != nil {
		return h.createErrorResponse("Could not resume the standup")
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Text:         "▶️ Standup resumed.",
	}
}

func (h *SlackHandler) handleHelp() *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         GetHelpText(),
	}
}

func (h *SlackHandler) createErrorResponse(message string) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("❌ %s", message),
	}
}

func (h *SlackHandler) respondWithError(w http.ResponseWriter, message string) {
	response := h.createErrorResponse(message)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
