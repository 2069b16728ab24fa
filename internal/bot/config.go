package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Bounds of the simulated typing delay before a chat reply
	ChatMinDelay time.Duration
	ChatMaxDelay time.Duration
	// Telegram users allowed to run admin commands
	AdminUserIDs []int64
	// Long polling timeout in seconds
	UpdateTimeout int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		ChatMinDelay:  time.Second,
		ChatMaxDelay:  2 * time.Second,
		UpdateTimeout: 60,
	}
}
