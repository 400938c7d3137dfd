package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Defaults for settings that are not provided through the environment
const (
	DefaultDBType                = "sqlite"
	DefaultSQLiteDSN             = "file:data/wordquiz.db?_foreign_keys=on&_busy_timeout=5000"
	DefaultHTTPAddr              = ":8080"
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 20
	DefaultMaxQuizLength         = 12
	DefaultCorrectAnswerPts      = 10
	DefaultOriginIcon            = "🇬🇧"
	DefaultTargetIcon            = "🇪🇸"
)

// Config holds all runtime settings of the service
type Config struct {
	// Database
	DBType string // DB_TYPE: sqlite or postgres
	DBDSN  string // DB_DSN

	// HTTP API
	HTTPAddr           string   // HTTP_ADDR
	AuthSecret         string   // AUTH_HMAC_SECRET
	CORSAllowedOrigins []string // CORS_ALLOWED_ORIGINS, comma separated

	// Telegram
	TelegramToken string  // TELEGRAM_BOT_TOKEN
	AdminUserIDs  []int64 // ADMIN_USER_IDS, comma separated Telegram ids

	// Reminders
	EnableScheduler       bool // ENABLE_SCHEDULER
	NotificationStartHour int  // NOTIFICATION_START_HOUR
	NotificationEndHour   int  // NOTIFICATION_END_HOUR

	// Quiz
	MaxQuizLength    int    // MAX_QUIZ_LENGTH
	CorrectAnswerPts int    // CORRECT_ANSWER_PTS
	OriginIcon       string // ORIGIN_ICON
	TargetIcon       string // TARGET_ICON

	LogLevel slog.Level // LOG_LEVEL: debug, info, warn, error
}

// Load reads .env (if any) and the process environment
func Load() (*Config, error) {
	// A missing .env file is fine, the environment may already be populated
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env file")
	}

	cfg := &Config{}
	if err := cfg.FromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv populates cfg from environment variables, falling back to defaults
func (c *Config) FromEnv() error {
	c.DBType = strings.ToLower(getEnvOrDefault("DB_TYPE", DefaultDBType))
	switch c.DBType {
	case "sqlite", "postgres":
	default:
		return errors.Errorf("unsupported DB_TYPE %q", c.DBType)
	}
	c.DBDSN = getEnvOrDefault("DB_DSN", "")
	if c.DBDSN == "" && c.DBType == "sqlite" {
		c.DBDSN = DefaultSQLiteDSN
	}

	c.HTTPAddr = getEnvOrDefault("HTTP_ADDR", DefaultHTTPAddr)
	c.AuthSecret = os.Getenv("AUTH_HMAC_SECRET")
	c.CORSAllowedOrigins = splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*"))

	c.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	for _, raw := range splitList(os.Getenv("ADMIN_USER_IDS")) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid admin user id %q", raw)
		}
		c.AdminUserIDs = append(c.AdminUserIDs, id)
	}

	var err error
	if c.EnableScheduler, err = getBool("ENABLE_SCHEDULER", true); err != nil {
		return err
	}
	if c.NotificationStartHour, err = getHour("NOTIFICATION_START_HOUR", DefaultNotificationStartHour); err != nil {
		return err
	}
	if c.NotificationEndHour, err = getHour("NOTIFICATION_END_HOUR", DefaultNotificationEndHour); err != nil {
		return err
	}

	if c.MaxQuizLength, err = getPositiveInt("MAX_QUIZ_LENGTH", DefaultMaxQuizLength); err != nil {
		return err
	}
	if c.CorrectAnswerPts, err = getPositiveInt("CORRECT_ANSWER_PTS", DefaultCorrectAnswerPts); err != nil {
		return err
	}
	c.OriginIcon = getEnvOrDefault("ORIGIN_ICON", DefaultOriginIcon)
	c.TargetIcon = getEnvOrDefault("TARGET_ICON", DefaultTargetIcon)

	if err := c.LogLevel.UnmarshalText([]byte(getEnvOrDefault("LOG_LEVEL", "info"))); err != nil {
		return errors.Wrap(err, "invalid LOG_LEVEL")
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Wrapf(err, "invalid %s", key)
	}
	return v, nil
}

func getPositiveInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, errors.Errorf("invalid %s %q: must be a positive integer", key, raw)
	}
	return v, nil
}

func getHour(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	h, err := strconv.Atoi(raw)
	if err != nil || h < 0 || h > 23 {
		return 0, errors.Errorf("invalid %s %q: must be an hour between 0 and 23", key, raw)
	}
	return h, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
