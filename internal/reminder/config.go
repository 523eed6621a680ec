package reminder

import (
	"time"

	"github.com/smallbiznis/rechargedesk/internal/config"
)

// Config controls the reminder loop.
type Config struct {
	Enabled     bool
	RunInterval time.Duration
	JobTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		RunInterval: time.Hour,
		JobTimeout:  5 * time.Minute,
	}
}

// ProvideConfig reads the loop settings from the application config.
func ProvideConfig(cfg config.Config) Config {
	return Config{
		Enabled:     cfg.ReminderEnabled,
		RunInterval: cfg.ReminderInterval,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}
