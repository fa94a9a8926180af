package scheduler

import (
	"time"
)

// Config controls the retention loop.
type Config struct {
	RunInterval time.Duration
	// TamperRetention is how long tampering events are kept before the purge
	// removes them.
	TamperRetention time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval:     time.Hour,
		TamperRetention: 90 * 24 * time.Hour,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.TamperRetention <= 0 {
		c.TamperRetention = defaults.TamperRetention
	}
	return c
}
