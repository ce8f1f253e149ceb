package retry

import (
	"errors"
	"time"
)

// Config defines the configuration for the retry mechanism.
type Config struct {
	Attempts    int           `mapstructure:"attempts"`     // Total attempts, including the first
	Interval    time.Duration `mapstructure:"interval"`     // Wait before the second attempt
	MaxInterval time.Duration `mapstructure:"max_interval"` // Upper bound for the doubled wait
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *Config {
	return &Config{
		Attempts:    5,
		Interval:    time.Second,
		MaxInterval: 30 * time.Second,
	}
}

// Validate validates the retry configuration.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return nil
	}
	if cfg.Attempts <= 0 {
		return errors.New("attempts must be greater than zero")
	}
	if cfg.Interval < 0 || cfg.MaxInterval < 0 {
		return errors.New("intervals cannot be negative")
	}
	if cfg.MaxInterval > 0 && cfg.Interval > cfg.MaxInterval {
		return errors.New("max_interval must not be less than interval")
	}
	return nil
}
