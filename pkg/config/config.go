// Package config holds the client configuration: API domain, proxy, pacing
// and retry knobs, locale defaults and logging. Values load from a yaml file
// with environment overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"igclient/pkg/logger"
)

const (
	// MaxRetriesCount bounds the public-channel retry count; exceeding it is
	// a configuration error, not a retryable condition.
	MaxRetriesCount = 10
	// MaxRetriesTimeout bounds the per-attempt retry sleep.
	MaxRetriesTimeout = 600 * time.Second
)

// Config holds all client configuration.
type Config struct {
	// API endpoints
	APIDomain string `yaml:"api_domain" json:"api_domain"`
	PublicURL string `yaml:"public_url" json:"public_url"`

	// Proxy is a single URL; scheme defaults to http:// when absent. It
	// propagates identically to both channels.
	Proxy string `yaml:"proxy" json:"proxy"`

	// DelayRange enables a uniform random pre-dispatch delay in seconds
	// ([min, max]) on both channels. Empty disables the jitter layer.
	DelayRange []float64 `yaml:"delay_range" json:"delay_range"`

	// ReadTimeout applies per HTTP call. There is deliberately no overall
	// deadline across retries; callers wanting one pass a deadline context.
	ReadTimeout time.Duration `yaml:"read_timeout" json:"read_timeout"`

	// RequestTimeout is the fixed pre-request sleep on non-login private
	// calls, emulating app pacing.
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`

	// RetriesCount and RetriesTimeout drive the public-channel retry loop.
	RetriesCount   int           `yaml:"retries_count" json:"retries_count"`
	RetriesTimeout time.Duration `yaml:"retries_timeout" json:"retries_timeout"`

	// Identity defaults applied when the settings blob has no value.
	Locale         string `yaml:"locale" json:"locale"`
	Country        string `yaml:"country" json:"country"`
	CountryCode    int    `yaml:"country_code" json:"country_code"`
	TimezoneOffset int    `yaml:"timezone_offset" json:"timezone_offset"`

	Logging logger.Config `yaml:"logging" json:"logging"`
}

// DefaultConfig returns a Config with working defaults.
func DefaultConfig() *Config {
	return &Config{
		APIDomain:      "i.instagram.com",
		PublicURL:      "https://www.instagram.com/",
		ReadTimeout:    25 * time.Second,
		RequestTimeout: 1 * time.Second,
		RetriesCount:   1,
		RetriesTimeout: 2 * time.Second,
		Locale:         "en_US",
		Country:        "US",
		CountryCode:    1,
		TimezoneOffset: -14400, // New York, GMT-4 in seconds
		Logging:        logger.Config{Level: "info"},
	}
}

// Load reads a yaml config file over the defaults, then applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as yaml.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadFromEnv overrides config values from IGCLIENT_* environment variables.
// A .env file in the working directory is honored when present.
func (c *Config) LoadFromEnv() error {
	_ = godotenv.Load() // missing .env is fine

	if v := os.Getenv("IGCLIENT_API_DOMAIN"); v != "" {
		c.APIDomain = v
	}
	if v := os.Getenv("IGCLIENT_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("IGCLIENT_LOCALE"); v != "" {
		c.Locale = v
	}
	if v := os.Getenv("IGCLIENT_COUNTRY"); v != "" {
		c.Country = v
	}
	if v := os.Getenv("IGCLIENT_RETRIES_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid IGCLIENT_RETRIES_COUNT: %w", err)
		}
		c.RetriesCount = n
	}
	if v := os.Getenv("IGCLIENT_RETRIES_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid IGCLIENT_RETRIES_TIMEOUT: %w", err)
		}
		c.RetriesTimeout = d
	}
	if v := os.Getenv("IGCLIENT_DELAY_RANGE"); v != "" {
		parts := strings.Split(v, ",")
		if len(parts) != 2 {
			return fmt.Errorf("invalid IGCLIENT_DELAY_RANGE: want min,max got %q", v)
		}
		min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return fmt.Errorf("invalid IGCLIENT_DELAY_RANGE: %w", err)
		}
		max, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return fmt.Errorf("invalid IGCLIENT_DELAY_RANGE: %w", err)
		}
		c.DelayRange = []float64{min, max}
	}
	if v := os.Getenv("IGCLIENT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate checks bounds that must fail fast rather than surface later as
// request errors.
func (c *Config) Validate() error {
	if c.RetriesCount < 0 || c.RetriesCount > MaxRetriesCount {
		return fmt.Errorf("retries_count %d out of range [0, %d]", c.RetriesCount, MaxRetriesCount)
	}
	if c.RetriesTimeout < 0 || c.RetriesTimeout > MaxRetriesTimeout {
		return fmt.Errorf("retries_timeout %s out of range [0, %s]", c.RetriesTimeout, MaxRetriesTimeout)
	}
	if len(c.DelayRange) != 0 {
		if len(c.DelayRange) != 2 || c.DelayRange[0] < 0 || c.DelayRange[1] < c.DelayRange[0] {
			return fmt.Errorf("delay_range must be [min, max] with 0 <= min <= max, got %v", c.DelayRange)
		}
	}
	if c.APIDomain == "" {
		return fmt.Errorf("api_domain must not be empty")
	}
	return nil
}
