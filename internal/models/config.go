// Package models - Client configuration and operational settings.
// This file defines the configuration structures for the client and its ambient components.
//
// Configuration Philosophy:
// - Hierarchical configuration with logical grouping (client, rate limit, logging, etc.)
// - Defaults that point at the production service and work out of the box
// - Validation to catch misconfigurations before the first request
// - Explicit "no rate limiter" rather than a zero-rpm sentinel
package models

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Service defaults
const (
	DefaultUserAgent = "hibp-go"
	DefaultBaseURL   = "https://haveibeenpwned.com/api/v3"
	DefaultRangeURL  = "https://api.pwnedpasswords.com/range"
)

// Rate limit strategy constants
const (
	RateLimitStrategyInterval    = "interval"
	RateLimitStrategyTokenBucket = "token_bucket"
)

// Config is the root configuration structure.
//
// Configuration Structure:
// - Client: API key, endpoints, user agent and HTTP timeout
// - RateLimit: client-side request pacing
// - Logging: structured logging and output configuration
// - Metrics: Prometheus metrics endpoint
// - Observability: tracing
type Config struct {
	Client        ClientConfig        `yaml:"client" json:"client"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit" json:"rate_limit"`
	Logging       LoggingConfig       `yaml:"logging" json:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics" json:"metrics"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

type ClientConfig struct {
	APIKey    string        `yaml:"api_key" json:"api_key"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	BaseURL   string        `yaml:"base_url" json:"base_url"`
	RangeURL  string        `yaml:"range_url" json:"range_url"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"` // 0 leaves the HTTP client without a timeout
}

// RateLimitConfig controls client-side pacing. When Auto is set the rpm is
// read from the subscription status endpoint and RequestsPerMinute is ignored.
type RateLimitConfig struct {
	Enabled           bool   `yaml:"enabled" json:"enabled"`
	Auto              bool   `yaml:"auto" json:"auto"`
	RequestsPerMinute int    `yaml:"requests_per_minute" json:"requests_per_minute"`
	Strategy          string `yaml:"strategy" json:"strategy"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	Port    int    `yaml:"port" json:"port"`
}

type ObservabilityConfig struct {
	ServiceName string        `yaml:"service_name" json:"service_name"`
	Tracing     TracingConfig `yaml:"tracing" json:"tracing"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Exporter     string  `yaml:"exporter" json:"exporter"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" json:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" json:"sample_rate"`
}

// NewDefaultConfig creates a configuration with production defaults.
//
// Default Values Rationale:
// - Production base and range URLs
// - Rate limiting off: callers opt in with an rpm or auto mode
// - Interval pacing: strict spacing between request starts
// - Logs to stderr so stdout stays clean for command output
// - Metrics and tracing off: a CLI invocation is short lived
func NewDefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			UserAgent: DefaultUserAgent,
			BaseURL:   DefaultBaseURL,
			RangeURL:  DefaultRangeURL,
			Timeout:   30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:  false,
			Strategy: RateLimitStrategyInterval,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Path:    "/metrics",
			Port:    9090,
		},
		Observability: ObservabilityConfig{
			ServiceName: "hibp",
			Tracing: TracingConfig{
				Enabled:    false,
				Exporter:   "stdout",
				SampleRate: 1.0,
			},
		},
	}
}

func (c *Config) Validate() error {
	if err := c.Client.Validate(); err != nil {
		return fmt.Errorf("invalid client config: %w", err)
	}

	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("invalid rate limit config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("invalid metrics config: %w", err)
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}

func (cc *ClientConfig) Validate() error {
	if cc.APIKey == "" {
		return errors.New("API key cannot be empty")
	}

	if cc.UserAgent == "" {
		return errors.New("user agent cannot be empty")
	}

	if err := validateURL(cc.BaseURL); err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	if err := validateURL(cc.RangeURL); err != nil {
		return fmt.Errorf("invalid range URL: %w", err)
	}

	if cc.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}

	return nil
}

func (rc *RateLimitConfig) Validate() error {
	if !rc.Enabled {
		return nil
	}

	if rc.Strategy != RateLimitStrategyInterval && rc.Strategy != RateLimitStrategyTokenBucket {
		return fmt.Errorf("invalid rate limit strategy: %s", rc.Strategy)
	}

	if !rc.Auto && rc.RequestsPerMinute <= 0 {
		return errors.New("requests per minute must be positive")
	}

	return nil
}

func (lc *LoggingConfig) Validate() error {
	validLevels := []string{"debug", "info", "warn", "error"}
	found := false
	for _, vl := range validLevels {
		if lc.Level == vl {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid log level: %s", lc.Level)
	}

	validFormats := []string{"json", "text"}
	found = false
	for _, vf := range validFormats {
		if lc.Format == vf {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid log format: %s", lc.Format)
	}

	validOutputs := []string{"stdout", "stderr", "file"}
	found = false
	for _, vo := range validOutputs {
		if lc.Output == vo {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid log output: %s", lc.Output)
	}

	if lc.Output == "file" && lc.FilePath == "" {
		return errors.New("file path is required when output is file")
	}

	return nil
}

func (mc *MetricsConfig) Validate() error {
	if !mc.Enabled {
		return nil
	}

	if mc.Path == "" {
		return errors.New("metrics path cannot be empty")
	}

	if mc.Port <= 0 || mc.Port > 65535 {
		return errors.New("metrics port must be between 1 and 65535")
	}

	return nil
}

func (oc *ObservabilityConfig) Validate() error {
	if !oc.Tracing.Enabled {
		return nil
	}

	if oc.ServiceName == "" {
		return errors.New("service name cannot be empty when tracing is enabled")
	}

	switch oc.Tracing.Exporter {
	case "stdout":
	case "otlp":
		if oc.Tracing.OTLPEndpoint == "" {
			return errors.New("OTLP endpoint is required when exporter is otlp")
		}
	default:
		return fmt.Errorf("invalid trace exporter: %s", oc.Tracing.Exporter)
	}

	if oc.Tracing.SampleRate < 0 || oc.Tracing.SampleRate > 1 {
		return errors.New("sample rate must be between 0 and 1")
	}

	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("URL host cannot be empty")
	}
	return nil
}
