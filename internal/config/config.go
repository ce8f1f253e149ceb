package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wanwatch/internal/retry"
	"wanwatch/internal/types"
	"wanwatch/internal/validator"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

const (
	// DNSProviderResolver queries a DNS server for the hostname
	DNSProviderResolver = "resolver"
	// DNSProviderCloudflare reads the A record through the Cloudflare API
	DNSProviderCloudflare = "cloudflare"

	// StateBackendFile keeps the alert record in a lockfile
	StateBackendFile = "file"
	// StateBackendRedis keeps the alert record under a Redis key
	StateBackendRedis = "redis"
)

// Config represents the monitor configuration
type Config struct {
	Hostname  string          `mapstructure:"hostname" validate:"required,hostname"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Router    RouterConfig    `mapstructure:"router"`
	DNS       DNSConfig       `mapstructure:"dns"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Templates TemplatesConfig `mapstructure:"templates"`
	State     StateConfig     `mapstructure:"state"`
	API       APIConfig       `mapstructure:"api"`
	Log       LogConfig       `mapstructure:"log"`
}

// MonitorConfig represents poll loop configuration
type MonitorConfig struct {
	Interval        time.Duration `mapstructure:"interval" validate:"min=1s"`
	MilestoneCycles int           `mapstructure:"milestone_cycles" validate:"min=1"`
	InstanceID      string        `mapstructure:"instance_id"`
}

// RouterConfig represents the router management API
type RouterConfig struct {
	URL                string        `mapstructure:"url" validate:"required,url"`
	APIKey             string        `mapstructure:"api_key" validate:"required"`
	APISecret          string        `mapstructure:"api_secret" validate:"required"`
	Interface          string        `mapstructure:"interface" validate:"required"`
	Timeout            time.Duration `mapstructure:"timeout" validate:"min=1s"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
}

// DNSConfig represents how the published address is looked up
type DNSConfig struct {
	Provider        string        `mapstructure:"provider" validate:"oneof=resolver cloudflare"`
	Nameserver      string        `mapstructure:"nameserver" validate:"omitempty,hostname_port"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"min=1s"`
	CloudflareToken string        `mapstructure:"cloudflare_token" validate:"required_if=Provider cloudflare"`
}

// TelegramConfig represents the messaging endpoint
type TelegramConfig struct {
	BotToken string        `mapstructure:"bot_token" validate:"required"`
	ChatID   string        `mapstructure:"chat_id" validate:"required"`
	APIBase  string        `mapstructure:"api_base" validate:"required,url"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"min=1s"`
}

// TemplatesConfig overrides the notification texts
type TemplatesConfig struct {
	Mismatch  string `mapstructure:"mismatch"`
	Recovered string `mapstructure:"recovered"`
}

// StateConfig represents where the alert record is kept
type StateConfig struct {
	Backend string      `mapstructure:"backend" validate:"oneof=file redis"`
	Path    string      `mapstructure:"path"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig represents the Redis state backend
type RedisConfig struct {
	Addr        string        `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db" validate:"min=0"`
	Key         string        `mapstructure:"key"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Connect     retry.Config  `mapstructure:"connect"`
}

// APIConfig represents the optional status server
type APIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen" validate:"required_if=Enabled true,omitempty,hostname_port"`
}

// defaults holds every known key; viper only resolves environment
// overrides for keys it knows about.
var defaults = map[string]any{
	"hostname":                         "",
	"monitor.interval":                 10 * time.Second,
	"monitor.milestone_cycles":         180,
	"monitor.instance_id":              "",
	"router.url":                       "",
	"router.api_key":                   "",
	"router.api_secret":                "",
	"router.interface":                 "",
	"router.timeout":                   10 * time.Second,
	"router.insecure_skip_verify":      true,
	"dns.provider":                     DNSProviderResolver,
	"dns.nameserver":                   "8.8.8.8:53",
	"dns.timeout":                      10 * time.Second,
	"dns.cloudflare_token":             "",
	"telegram.bot_token":               "",
	"telegram.chat_id":                 "",
	"telegram.api_base":                "https://api.telegram.org",
	"telegram.timeout":                 10 * time.Second,
	"templates.mismatch":               "",
	"templates.recovered":              "",
	"state.backend":                    StateBackendFile,
	"state.path":                       "/tmp/telegram.lock",
	"state.redis.addr":                 "",
	"state.redis.username":             "",
	"state.redis.password":             "",
	"state.redis.db":                   0,
	"state.redis.key":                  AppName + ":alert",
	"state.redis.dial_timeout":         5 * time.Second,
	"state.redis.connect.attempts":     5,
	"state.redis.connect.interval":     time.Second,
	"state.redis.connect.max_interval": 30 * time.Second,
	"api.enabled":                      false,
	"api.listen":                       "127.0.0.1:8080",
	"log.level":                        "info",
	"log.format":                       "console",
	"log.file":                         "",
	"log.max_size":                     100,
	"log.max_backups":                  3,
	"log.max_age":                      28,
	"log.compress":                     false,
}

// LoadConfig loads configuration from path, or from the search paths when
// path is empty. A missing file is not an error in the latter case, so the
// monitor can be configured from the environment alone.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(AppName)
		v.AddConfigPath(InDot)
		v.AddConfigPath(InHome)
		v.AddConfigPath(InHomeDot)
		v.AddConfigPath(InEtc)
		if ex, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(ex))
		}
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindEnv binds WANWATCH_<KEY> and the legacy variable names for every key
func bindEnv(v *viper.Viper) error {
	for key := range defaults {
		names := []string{key, EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
		if legacy, ok := legacyEnv[key]; ok {
			names = append(names, legacy)
		}
		if err := v.BindEnv(names...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// setDefaults sets values that cannot be expressed as static defaults
func setDefaults(config *Config) {
	if config.Monitor.InstanceID == "" {
		config.Monitor.InstanceID = uuid.New().String()
	}
	config.Hostname = strings.TrimSuffix(strings.TrimSpace(config.Hostname), ".")
	config.Telegram.APIBase = strings.TrimSuffix(config.Telegram.APIBase, "/")
	config.Log.SetDefaults()
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidConfig, err)
	}

	switch c.State.Backend {
	case StateBackendFile:
		if c.State.Path == "" {
			return fmt.Errorf("%w: state.path is required for the file backend", types.ErrInvalidConfig)
		}
	case StateBackendRedis:
		if c.State.Redis.Addr == "" {
			return fmt.Errorf("%w: state.redis.addr is required for the redis backend", types.ErrInvalidConfig)
		}
		if c.State.Redis.Key == "" {
			return fmt.Errorf("%w: state.redis.key is required for the redis backend", types.ErrInvalidConfig)
		}
		if err := c.State.Redis.Connect.Validate(); err != nil {
			return fmt.Errorf("%w: state.redis.connect: %v", types.ErrInvalidConfig, err)
		}
	}

	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("%w: log: %v", types.ErrInvalidConfig, err)
	}

	return nil
}
