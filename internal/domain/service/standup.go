package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/syncfield/standup-bot/internal/domain"
	"github.com/syncfield/standup-bot/internal/domain/contract"
	"github.com/syncfield/standup-bot/internal/domain/entity"
	"github.com/syncfield/standup-bot/internal/domain/errs"
)

// standupService is the team/config administration surface behind the slash
// commands. It only ever touches the mutable recurring config; instances that
// already exist keep their snapshot regardless of what happens here.
type standupService struct {
	dm      contract.DataManager
	gateway contract.DeliveryGateway
	audit   contract.AuditLogger
}

func newStandup(dm contract.DataManager, gateway contract.DeliveryGateway, audit contract.AuditLogger) *standupService {
	return &standupService{
		dm:      dm,
		gateway: gateway,
		audit:   audit,
	}
}

// SetupTeam finds or creates the team for a channel, with a default recurring
// config. Returns whether the team was newly created.
func (s *standupService) SetupTeam(slackChannelID, channelName, slackTeamID, orgID string) (*entity.Team, bool, error) {
	team, err := s.dm.Team().GetBySlackChannelID(slackChannelID)
	if err != nil {
		return nil, false, errs.Dependency(fmt.Errorf("failed to check team: %w", err))
	}

	if team != nil {
		// Channel renames come through as a changed name on setup
		if team.Name != channelName && channelName != "" {
			team.Name = channelName
			if err := s.dm.Team().Update(team); err != nil {
				return nil, false, errs.Dependency(err)
			}
		}
		return team, false, nil
	}

	if err := s.gateway.ValidateChannelAccess(slackChannelID); err != nil {
		return nil, false, errs.Validationf("bot cannot post to this channel: %v", err)
	}

	team = &entity.Team{
		OrgID:          orgID,
		SlackTeamID:    slackTeamID,
		SlackChannelID: slackChannelID,
		Name:           channelName,
		IsActive:       true,
	}

	config := &entity.StandupConfig{
		Questions:            append([]string(nil), domain.DefaultQuestions...),
		Weekdays:             append([]int(nil), domain.DefaultActiveDays...),
		TimeOfDay:            domain.DefaultTimeOfDay,
		Timezone:             domain.DefaultTimezone,
		ReminderLeadMinutes:  domain.DefaultReminderLeadMinutes,
		ResponseTimeoutHours: domain.DefaultResponseTimeoutHours,
		DeliveryMode:         domain.DeliveryDirect,
		IsActive:             true,
	}
	if err := validateConfig(config); err != nil {
		return nil, false, err
	}

	err = s.dm.WithTransaction(context.Background(), func(dm contract.DataManager) error {
		if err := dm.Team().Create(team); err != nil {
			return err
		}
		config.TeamID = team.ID
		return dm.Config().Create(config)
	})
	if err != nil {
		return nil, false, errs.Dependency(fmt.Errorf("failed to create team: %w", err))
	}

	s.audit.Record("standup.team.created", "slash-command", orgID, "team:"+strconv.FormatInt(team.ID, 10))

	return team, true, nil
}

// AddParticipant adds (or reactivates) a member and includes them in the
// recurring config. Effective from the next materialized instance onward.
func (s *standupService) AddParticipant(teamID int64, slackUserID string) error {
	config, err := s.dm.Config().GetByTeamID(teamID)
	if err != nil {
		return errs.Dependency(err)
	}
	if config == nil {
		return errs.NotFoundf("no standup configured for team %d", teamID)
	}

	member, err := s.dm.Member().GetByTeamAndSlackID(teamID, slackUserID)
	if err != nil {
		return errs.Dependency(err)
	}

	if member == nil {
		displayName, err := s.gateway.LookupDisplayName(slackUserID)
		if err != nil {
			return errs.Dependency(fmt.Errorf("failed to look up user: %w", err))
		}

		member = &entity.TeamMember{
			TeamID:      teamID,
			SlackUserID: slackUserID,
			DisplayName: displayName,
			IsActive:    true,
		}
		if err := s.dm.Member().Create(member); err != nil {
			return errs.Dependency(err)
		}
	} else if !member.IsActive {
		if err := s.dm.Member().SetActive(member.ID, true); err != nil {
			return errs.Dependency(err)
		}
	}

	participant := &entity.ConfigParticipant{
		ConfigID: config.ID,
		MemberID: member.ID,
		Included: true,
		Role:     domain.DefaultRole,
	}
	if err := s.dm.Config().UpsertParticipant(participant); err != nil {
		return errs.Dependency(err)
	}

	return nil
}

// RemoveParticipant excludes a member from future instances. The member row
// stays so past instances and answers keep their identity.
func (s *standupService) RemoveParticipant(teamID int64, slackUserID string) error {
	config, err := s.dm.Config().GetByTeamID(teamID)
	if err != nil {
		return errs.Dependency(err)
	}
	if config == nil {
		return errs.NotFoundf("no standup configured for team %d", teamID)
	}

	member, err := s.dm.Member().GetByTeamAndSlackID(teamID, slackUserID)
	if err != nil {
		return errs.Dependency(err)
	}
	if member == nil {
		return errs.NotFoundf("member not in this standup")
	}

	if err := s.dm.Config().RemoveParticipant(config.ID, member.ID); err != nil {
		return errs.Dependency(err)
	}

	return nil
}

func (s *standupService) ListParticipants(teamID int64) ([]*entity.TeamMember, error) {
	config, err := s.dm.Config().GetByTeamID(teamID)
	if err != nil {
		return nil, errs.Dependency(err)
	}
	if config == nil {
		return nil, errs.NotFoundf("no standup configured for team %d", teamID)
	}

	members, err := s.dm.Member().GetActiveByTeam(teamID)
	if err != nil {
		return nil, errs.Dependency(err)
	}

	included := make(map[int64]bool, len(config.Participants))
	for _, p := range config.Participants {
		if p.Included {
			included[p.MemberID] = true
		}
	}

	var participants []*entity.TeamMember
	for _, m := range members {
		if included[m.ID] {
			participants = append(participants, m)
		}
	}

	return participants, nil
}

// UpdateConfig applies one `/standup config <field> <value>` edit. The edit is
// validated as a whole config so a bad value never lands, and it only affects
// occurrences materialized after this call.
func (s *standupService) UpdateConfig(teamID int64, field, value string) error {
	config, err := s.dm.Config().GetByTeamID(teamID)
	if err != nil {
		return errs.Dependency(err)
	}
	if config == nil {
		return errs.NotFoundf("no standup configured for team %d", teamID)
	}

	switch field {
	case "time":
		config.TimeOfDay = value
	case "days":
		days, err := parseWeekdayList(value)
		if err != nil {
			return err
		}
		config.Weekdays = days
	case "timezone":
		config.Timezone = value
	case "timeout":
		hours, err := strconv.Atoi(value)
		if err != nil {
			return errs.Validationf("timeout must be a number of hours")
		}
		config.ResponseTimeoutHours = hours
	case "lead":
		minutes, err := strconv.Atoi(value)
		if err != nil {
			return errs.Validationf("lead must be a number of minutes")
		}
		config.ReminderLeadMinutes = minutes
	case "mode":
		config.DeliveryMode = value
	case "questions":
		config.Questions = parseQuestionList(value)
	default:
		return errs.Validationf("unknown config field %q", field)
	}

	if err := validateConfig(config); err != nil {
		return err
	}

	if err := s.dm.Config().Update(config); err != nil {
		return errs.Dependency(err)
	}

	return nil
}

func (s *standupService) GetConfig(teamID int64) (*entity.StandupConfig, error) {
	config, err := s.dm.Config().GetByTeamID(teamID)
	if err != nil {
		return nil, errs.Dependency(err)
	}
	if config == nil {
		return nil, errs.NotFoundf("no standup configured for team %d", teamID)
	}
	return config, nil
}

// DescribeSchedule renders the recurring schedule and the next occurrence for
// status output, in the team's own timezone.
func (s *standupService) DescribeSchedule(teamID int64, now time.Time) (string, error) {
	config, err := s.GetConfig(teamID)
	if err != nil {
		return "", err
	}

	next, err := NextOccurrence(config.Weekdays, config.TimeOfDay, config.Timezone, now)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s at %s (%s), next on %s",
		formatWeekdays(config.Weekdays),
		config.TimeOfDay,
		config.Timezone,
		next.Format("Mon Jan 2 15:04 MST"),
	), nil
}

func (s *standupService) PauseStandup(teamID int64) error {
	return s.setConfigActive(teamID, false)
}

func (s *standupService) ResumeStandup(teamID int64) error {
	return s.setConfigActive(teamID, true)
}

func (s *standupService) setConfigActive(teamID int64, active bool) error {
	config, err := s.dm.Config().GetByTeamID(teamID)
	if err != nil {
		return errs.Dependency(err)
	}
	if config == nil {
		return errs.NotFoundf("no standup configured for team %d", teamID)
	}

	config.IsActive = active
	if err := s.dm.Config().Update(config); err != nil {
		return errs.Dependency(err)
	}

	return nil
}

// parseWeekdayList turns "mon,tue,thu" into ISO weekday numbers
func parseWeekdayList(value string) ([]int, error) {
	var days []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(value, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		day, ok := domain.WeekdayNumbers[name]
		if !ok {
			return nil, errs.Validationf("unknown weekday %q, use mon..sun", name)
		}
		if seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, errs.Validationf("at least one weekday is required")
	}
	return days, nil
}

// parseQuestionList splits "q1 | q2 | q3" into the question slice
func parseQuestionList(value string) []string {
	var questions []string
	for _, part := range strings.Split(value, "|") {
		q := strings.TrimSpace(part)
		if q != "" {
			questions = append(questions, q)
		}
	}
	return questions
}
