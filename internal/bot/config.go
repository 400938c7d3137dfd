package bot

import (
	"time"
)

// Config represents the configuration for the bot
type Config struct {
	// Telegram ids that get the teacher role when their account is created
	AdminUserIDs []int64
	// Reminder hour given to new accounts
	DefaultNotificationHour int
	// Unfinished quizzes are dropped after this much inactivity
	SessionTTL time.Duration
	// Long polling timeout in seconds
	UpdateTimeout int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() Config {
	return Config{
		DefaultNotificationHour: 9,
		SessionTTL:              time.Hour,
		UpdateTimeout:           60,
	}
}
