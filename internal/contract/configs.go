package contract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/huangsam/cryptofeed/schema"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Default values for configuration.
const (
	DefaultAPIURL         = "https://min-api.cryptocompare.com"
	DefaultFeedLimit      = 10
	MaxFeedLimit          = 100
	DefaultResultLimit    = 25
	MaxResultLimit        = 100
	DefaultPrecision      = 2
	DefaultRequestTimeout = 10 * time.Second
	DefaultRateLimit      = 1.0
	DefaultRateBurst      = 1
	DefaultSchedule       = "@every 5m"
	DefaultListenAddr     = ":8080"
	DefaultLogLevel       = "info"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	APIURL         string
	APIKey         string // Please use env var as this is plaintext
	FeedLimit      int
	RequestTimeout time.Duration
	RateLimit      float64
	RateBurst      int

	Schedule   string
	ListenAddr string

	LogLevel logrus.Level
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Limit          int    `mapstructure:"limit"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	LogLevel       string `mapstructure:"log-level"`

	// --- Remote feed source ---
	APIURL         string  `mapstructure:"api-url"`
	APIKey         string  `mapstructure:"api-key"`
	FeedLimit      int     `mapstructure:"feed-limit"`
	RequestTimeout string  `mapstructure:"request-timeout"`
	RateLimit      float64 `mapstructure:"rate-limit"`
	RateBurst      int     `mapstructure:"rate-burst"`

	// --- Fields from serveCmd.Flags() ---
	Schedule   string `mapstructure:"schedule"`
	ListenAddr string `mapstructure:"listen-addr"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate runs every validation step and populates cfg from input.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processRemoteSource(cfg, input); err != nil {
		return err
	}
	if err := processServeInputs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of connection strings
// for MySQL, PostgreSQL and Redis backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.MemoryBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("Redis connection string must be a redis:// or rediss:// URL")
		}
	}
	return nil
}

// validateBackendConfigs validates the feed store backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, memory, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	return ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect)
}

// validateSimpleInputs processes and validates all output and logging fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 0 || input.Precision > 8 {
		return fmt.Errorf("precision must be between 0 and 8 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml", input.Output)
	}

	levelStr := input.LogLevel
	if levelStr == "" {
		levelStr = DefaultLogLevel
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid --log-level value: %w", err)
	}
	cfg.LogLevel = level

	return nil
}

// processRemoteSource validates the upstream API settings.
func processRemoteSource(cfg *Config, input *ConfigRawInput) error {
	apiURL := strings.TrimRight(input.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	parsed, err := url.Parse(apiURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid api-url '%s'. must be an absolute http(s) URL", input.APIURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid api-url scheme '%s'. must be http or https", parsed.Scheme)
	}
	cfg.APIURL = apiURL
	cfg.APIKey = input.APIKey

	if input.FeedLimit <= 0 || input.FeedLimit > MaxFeedLimit {
		return fmt.Errorf("feed-limit must be greater than 0 and cannot exceed %d (received %d)", MaxFeedLimit, input.FeedLimit)
	}
	cfg.FeedLimit = input.FeedLimit

	cfg.RequestTimeout = DefaultRequestTimeout
	if input.RequestTimeout != "" {
		timeout, err := time.ParseDuration(input.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request-timeout '%s': %w", input.RequestTimeout, err)
		}
		if timeout <= 0 {
			return fmt.Errorf("request-timeout must be positive (received %s)", input.RequestTimeout)
		}
		cfg.RequestTimeout = timeout
	}

	if input.RateLimit <= 0 {
		return fmt.Errorf("rate-limit must be greater than 0 (received %v)", input.RateLimit)
	}
	cfg.RateLimit = input.RateLimit

	if input.RateBurst <= 0 {
		return fmt.Errorf("rate-burst must be greater than 0 (received %d)", input.RateBurst)
	}
	cfg.RateBurst = input.RateBurst

	return nil
}

// processServeInputs validates the refresh schedule and listen address.
func processServeInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Schedule = input.Schedule
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return fmt.Errorf("invalid schedule '%s': %w", cfg.Schedule, err)
	}

	cfg.ListenAddr = input.ListenAddr
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
