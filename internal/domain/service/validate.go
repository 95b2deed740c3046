package service

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/syncfield/standup-bot/internal/domain/entity"
	"github.com/syncfield/standup-bot/internal/domain/errs"
)

var validate = validator.New()

// configRules mirrors entity.StandupConfig for struct-tag validation of the
// fields commands can set.
type configRules struct {
	Questions            []string `validate:"required,min=1,max=10,dive,min=1,max=500"`
	Weekdays             []int    `validate:"required,min=1,max=7,unique,dive,min=1,max=7"`
	TimeOfDay            string   `validate:"required"`
	Timezone             string   `validate:"required"`
	ReminderLeadMinutes  int      `validate:"min=5,max=720"`
	ResponseTimeoutHours int      `validate:"min=1,max=72"`
	DeliveryMode         string   `validate:"oneof=broadcast-to-channel direct-to-each-member"`
}

// validateConfig rejects malformed recurring configuration before any state
// change. Checks the struct tags cannot express (HH:MM shape, resolvable IANA
// zone, lead shorter than the window) run after.
func validateConfig(config *entity.StandupConfig) error {
	rules := configRules{
		Questions:            config.Questions,
		Weekdays:             config.Weekdays,
		TimeOfDay:            config.TimeOfDay,
		Timezone:             config.Timezone,
		ReminderLeadMinutes:  config.ReminderLeadMinutes,
		ResponseTimeoutHours: config.ResponseTimeoutHours,
		DeliveryMode:         config.DeliveryMode,
	}

	if err := validate.Struct(rules); err != nil {
		return errs.Validationf("invalid standup configuration: %v", err)
	}

	if _, _, err := parseTimeOfDay(config.TimeOfDay); err != nil {
		return err
	}
	if _, err := time.LoadLocation(config.Timezone); err != nil {
		return errs.Validationf("invalid timezone %q", config.Timezone)
	}
	if time.Duration(config.ReminderLeadMinutes)*time.Minute >= time.Duration(config.ResponseTimeoutHours)*time.Hour {
		return errs.Validationf("reminder lead must be shorter than the response window")
	}

	return nil
}
