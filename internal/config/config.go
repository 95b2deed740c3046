package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	SlackBotToken      string
	SlackSigningSecret string
	DatabasePath       string
	Port               string
	BaseURL            string
	LogFormat          string

	// TokenSigningKey signs magic response tokens
	TokenSigningKey string
	TokenTTL        time.Duration

	// CloseOnCompletion closes an instance as soon as everyone has answered
	CloseOnCompletion bool

	// ReminderResend re-sends the current tier on every sweep
	ReminderResend bool

	MaterializeSweepEvery time.Duration
	ReminderSweepEvery    time.Duration
}

func Load() *Config {
	return &Config{
		SlackBotToken:      getEnv("SLACK_BOT_TOKEN", ""),
		SlackSigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		DatabasePath:       getEnv("DATABASE_PATH", "./standup.db"),
		Port:               getEnv("PORT", "3000"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:3000"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),

		TokenSigningKey: getEnv("TOKEN_SIGNING_KEY", ""),
		TokenTTL:        time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,

		CloseOnCompletion: getEnvBool("CLOSE_ON_COMPLETION", true),
		ReminderResend:    getEnvBool("REMINDER_RESEND", false),

		MaterializeSweepEvery: time.Duration(getEnvInt("MATERIALIZE_SWEEP_MINUTES", 1)) * time.Minute,
		ReminderSweepEvery:    time.Duration(getEnvInt("REMINDER_SWEEP_MINUTES", 15)) * time.Minute,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
