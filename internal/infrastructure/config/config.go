package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Policy    PolicyConfig
	History   HistoryConfig
	Probe     ProbeConfig
	Storage   StorageConfig
	Rules     RulesConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration. The shell service
// talks to a local renderer, so it binds loopback.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8090"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// PolicyConfig holds navigation interception configuration.
type PolicyConfig struct {
	// PendingTimeout bounds the auth-pending window per view.
	// Zero keeps views pending until a completing load.
	PendingTimeout time.Duration `envconfig:"POLICY_PENDING_TIMEOUT" default:"0s"`
	DenyNotice     string        `envconfig:"POLICY_DENY_NOTICE" default:""`
}

// HistoryConfig holds history ring configuration.
type HistoryConfig struct {
	Capacity int `envconfig:"HISTORY_CAPACITY" default:"10000"`
}

// ProbeConfig holds preflight probe configuration.
type ProbeConfig struct {
	Concurrency       int           `envconfig:"PROBE_CONCURRENCY" default:"4"`
	Timeout           time.Duration `envconfig:"PROBE_TIMEOUT" default:"10s"`
	RetryMax          int           `envconfig:"PROBE_RETRY_MAX" default:"2"`
	RequestsPerSecond float64       `envconfig:"PROBE_RPS" default:"5"`
	Burst             int           `envconfig:"PROBE_BURST" default:"10"`
	MaxHops           int           `envconfig:"PROBE_MAX_HOPS" default:"10"`
	UserAgent         string        `envconfig:"PROBE_USER_AGENT" default:""`
}

// StorageConfig holds data directory configuration. An empty DataDir
// falls back to the per-user config directory.
type StorageConfig struct {
	DataDir string `envconfig:"SHELL_DATA_DIR" default:""`
}

// RulesConfig holds classifier rules file configuration.
type RulesConfig struct {
	Watch    bool          `envconfig:"RULES_WATCH" default:"true"`
	Debounce time.Duration `envconfig:"RULES_DEBOUNCE" default:"500ms"`
}

// LogConfig holds logging configuration. File overrides the default
// rolling log file location under the data dir's logs directory.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
	File        string `envconfig:"LOG_FILE" default:""`
	MaxSizeMB   int    `envconfig:"LOG_MAX_SIZE_MB" default:"50"`
	MaxBackups  int    `envconfig:"LOG_MAX_BACKUPS" default:"3"`
	MaxAgeDays  int    `envconfig:"LOG_MAX_AGE_DAYS" default:"14"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8090",
			Host: "127.0.0.1",
		},
		Policy: PolicyConfig{
			PendingTimeout: 0,
		},
		History: HistoryConfig{
			Capacity: 10000,
		},
		Probe: ProbeConfig{
			Concurrency:       4,
			Timeout:           10 * time.Second,
			RetryMax:          2,
			RequestsPerSecond: 5,
			Burst:             10,
			MaxHops:           10,
		},
		Rules: RulesConfig{
			Watch:    true,
			Debounce: 500 * time.Millisecond,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
			MaxSizeMB:   50,
			MaxBackups:  3,
			MaxAgeDays:  14,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
