package logger

import "fmt"

// Console formats
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config represents logging configuration
type Config struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // console or json, for stdout/stderr
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig returns console-only logging at info level
func DefaultConfig() *Config {
	return (&Config{}).SetDefaults()
}

// SetDefaults fills unset fields and returns the config
func (cfg *Config) SetDefaults() *Config {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = FormatConsole
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = 100
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 28
	}
	return cfg
}

// Validate validates logging configuration
func (cfg *Config) Validate() error {
	if cfg.MaxSize <= 0 {
		return fmt.Errorf("max_size must be positive")
	}
	if _, err := ParseLevel(cfg.Level); err != nil {
		return err
	}
	switch cfg.Format {
	case FormatConsole, FormatJSON:
	default:
		return fmt.Errorf("invalid log format: %s", cfg.Format)
	}
	return nil
}
