package bot

import (
	"time"
)

// Config represents the configuration for the bot
type Config struct {
	Token string
	Debug bool
	// Long polling timeout for getUpdates
	UpdateTimeout time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() Config {
	return Config{
		UpdateTimeout: 60 * time.Second,
	}
}
