package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Telegram  TelegramConfig
	Database  DatabaseConfig
	HTTP      HTTPConfig
	Scheduler SchedulerConfig
	Chat      ChatConfig
	LogMode   string
}

// TelegramConfig holds bot settings
type TelegramConfig struct {
	Token        string
	AdminUserIDs []int64
}

// DatabaseConfig selects the store backend
type DatabaseConfig struct {
	Type       string // memory, sqlite or postgres
	URL        string
	SQLitePath string
}

// HTTPConfig holds API server settings
type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
	JWTSecret      string
	TokenTTL       time.Duration
}

// SchedulerConfig holds the daily digest settings
type SchedulerConfig struct {
	Enabled               bool
	DigestHour            int
	NotificationStartHour int
	NotificationEndHour   int
}

// ChatConfig bounds the simulated typing delay of the assistant
type ChatConfig struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// DefaultConfig returns the configuration used when no variables are set
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Type:       "memory",
			SQLitePath: "data/skillbuilder.db",
		},
		HTTP: HTTPConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			TokenTTL:       24 * time.Hour,
		},
		Scheduler: SchedulerConfig{
			Enabled:               true,
			DigestHour:            9,
			NotificationStartHour: 8,
			NotificationEndHour:   22,
		},
		Chat: ChatConfig{
			MinDelay: time.Second,
			MaxDelay: 2 * time.Second,
		},
		LogMode: "dev",
	}
}

// Load reads a .env file when present and then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	def := DefaultConfig()
	admins, err := parseIDs(os.Getenv("ADMIN_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_USER_IDS: %w", err)
	}

	return &Config{
		Telegram: TelegramConfig{
			Token:        os.Getenv("TELEGRAM_BOT_TOKEN"),
			AdminUserIDs: admins,
		},
		Database: DatabaseConfig{
			Type:       getEnv("DB_TYPE", def.Database.Type),
			URL:        os.Getenv("DATABASE_URL"),
			SQLitePath: getEnv("SQLITE_PATH", def.Database.SQLitePath),
		},
		HTTP: HTTPConfig{
			Addr:           getEnv("HTTP_ADDR", def.HTTP.Addr),
			AllowedOrigins: getSliceEnv("ALLOWED_ORIGINS", def.HTTP.AllowedOrigins),
			JWTSecret:      getEnv("JWT_SECRET", def.HTTP.JWTSecret),
			TokenTTL:       getDurationEnv("JWT_TTL", def.HTTP.TokenTTL),
		},
		Scheduler: SchedulerConfig{
			Enabled:               getBoolEnv("ENABLE_SCHEDULER", def.Scheduler.Enabled),
			DigestHour:            getIntEnv("DIGEST_HOUR", def.Scheduler.DigestHour),
			NotificationStartHour: getIntEnv("NOTIFICATION_START_HOUR", def.Scheduler.NotificationStartHour),
			NotificationEndHour:   getIntEnv("NOTIFICATION_END_HOUR", def.Scheduler.NotificationEndHour),
		},
		Chat: ChatConfig{
			MinDelay: getDurationEnv("CHAT_MIN_DELAY", def.Chat.MinDelay),
			MaxDelay: getDurationEnv("CHAT_MAX_DELAY", def.Chat.MaxDelay),
		},
		LogMode: getEnv("LOG_MODE", def.LogMode),
	}, nil
}

// DSN returns the connection string for the configured store
func (c *Config) DSN() string {
	if c.Database.Type == "sqlite" {
		return c.Database.SQLitePath
	}
	return c.Database.URL
}

// IsAdmin reports whether a Telegram user may manage the catalog
func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.Telegram.AdminUserIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// ValidateHTTP checks the settings only the HTTP API needs. JWT_SECRET has
// no default.
func (c *Config) ValidateHTTP() error {
	if c.HTTP.JWTSecret == "" {
		return errors.New("JWT_SECRET is required to serve the HTTP API")
	}
	return nil
}

// Validate checks the configuration and reports every problem at once.
// The bot token is checked by the commands that need it.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Type {
	case "memory", "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_TYPE is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_TYPE must be 'memory', 'sqlite' or 'postgres', got '%s'", c.Database.Type))
	}

	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("HTTP_ADDR is required"))
	}
	if c.HTTP.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}

	for name, h := range map[string]int{
		"DIGEST_HOUR":             c.Scheduler.DigestHour,
		"NOTIFICATION_START_HOUR": c.Scheduler.NotificationStartHour,
		"NOTIFICATION_END_HOUR":   c.Scheduler.NotificationEndHour,
	} {
		if h < 0 || h > 23 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 23, got %d", name, h))
		}
	}

	if c.Chat.MinDelay < 0 || c.Chat.MaxDelay < c.Chat.MinDelay {
		errs = append(errs, errors.New("CHAT_MAX_DELAY must not be lower than CHAT_MIN_DELAY"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIDs(value string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
