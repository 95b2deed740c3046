package service

import (
	"time"

	"github.com/syncfield/standup-bot/internal/domain/contract"
)

// Options carries the engine policy knobs resolved from the environment.
type Options struct {
	// SigningKey signs magic response tokens
	SigningKey []byte

	// BaseURL is the public base for respond links
	BaseURL string

	// TokenTTL is the default magic token lifetime (24h when zero)
	TokenTTL time.Duration

	// CloseOnCompletion closes an instance as soon as every snapshot
	// participant has answered every question, ahead of the timeout
	CloseOnCompletion bool

	// ReminderResend re-sends the current tier on every sweep instead of
	// delivering each tier at most once per member (insistent mode)
	ReminderResend bool
}

type Services struct {
	Standup   *standupService
	Lifecycle *lifecycleService
	Token     *tokenService
	Reminder  *reminderService
	Answer    *answerService
}

func New(dm contract.DataManager, gateway contract.DeliveryGateway, audit contract.AuditLogger, opts Options) *Services {
	if opts.TokenTTL == 0 {
		opts.TokenTTL = 24 * time.Hour
	}

	token := newToken(dm, opts)
	lifecycle := newLifecycle(dm, gateway, audit, token, opts)
	reminder := newReminder(dm, gateway, audit, token, opts)
	answer := newAnswer(dm, lifecycle, audit, opts)
	standup := newStandup(dm, gateway, audit)

	return &Services{
		Standup:   standup,
		Lifecycle: lifecycle,
		Token:     token,
		Reminder:  reminder,
		Answer:    answer,
	}
}
