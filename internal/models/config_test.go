package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	// Test client defaults
	assert.Empty(t, config.Client.APIKey)
	assert.Equal(t, "hibp-go", config.Client.UserAgent)
	assert.Equal(t, "https://haveibeenpwned.com/api/v3", config.Client.BaseURL)
	assert.Equal(t, "https://api.pwnedpasswords.com/range", config.Client.RangeURL)
	assert.Equal(t, 30*time.Second, config.Client.Timeout)

	// Test rate limit defaults
	assert.False(t, config.RateLimit.Enabled)
	assert.False(t, config.RateLimit.Auto)
	assert.Equal(t, RateLimitStrategyInterval, config.RateLimit.Strategy)

	// Test logging defaults
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "text", config.Logging.Format)
	assert.Equal(t, "stderr", config.Logging.Output)

	// Test metrics defaults
	assert.False(t, config.Metrics.Enabled)
	assert.Equal(t, "/metrics", config.Metrics.Path)
	assert.Equal(t, 9090, config.Metrics.Port)

	// Test observability defaults
	assert.Equal(t, "hibp", config.Observability.ServiceName)
	assert.False(t, config.Observability.Tracing.Enabled)
	assert.Equal(t, "stdout", config.Observability.Tracing.Exporter)
	assert.Equal(t, 1.0, config.Observability.Tracing.SampleRate)
}

func TestConfig_Validate_RequiresAPIKey(t *testing.T) {
	config := NewDefaultConfig()
	err := config.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "API key cannot be empty")

	config.Client.APIKey = "key"
	assert.NoError(t, config.Validate())
}

func TestClientConfig_Validate(t *testing.T) {
	valid := func() ClientConfig {
		return ClientConfig{
			APIKey:    "key",
			UserAgent: "ua",
			BaseURL:   DefaultBaseURL,
			RangeURL:  DefaultRangeURL,
		}
	}

	tests := []struct {
		name        string
		mutate      func(c *ClientConfig)
		expectError bool
		errorMsg    string
	}{
		{name: "valid", mutate: func(c *ClientConfig) {}},
		{name: "empty user agent", mutate: func(c *ClientConfig) { c.UserAgent = "" }, expectError: true, errorMsg: "user agent cannot be empty"},
		{name: "empty base URL", mutate: func(c *ClientConfig) { c.BaseURL = "" }, expectError: true, errorMsg: "invalid base URL"},
		{name: "ftp base URL", mutate: func(c *ClientConfig) { c.BaseURL = "ftp://example.com" }, expectError: true, errorMsg: "unsupported scheme"},
		{name: "range URL without host", mutate: func(c *ClientConfig) { c.RangeURL = "https://" }, expectError: true, errorMsg: "invalid range URL"},
		{name: "negative timeout", mutate: func(c *ClientConfig) { c.Timeout = -time.Second }, expectError: true, errorMsg: "timeout cannot be negative"},
		{name: "local test server", mutate: func(c *ClientConfig) { c.BaseURL = "http://127.0.0.1:8080/api/v3" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRateLimitConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      RateLimitConfig
		expectError bool
		errorMsg    string
	}{
		{
			name:   "disabled ignores rpm",
			config: RateLimitConfig{Enabled: false, RequestsPerMinute: -1},
		},
		{
			name:   "explicit rpm",
			config: RateLimitConfig{Enabled: true, RequestsPerMinute: 10, Strategy: RateLimitStrategyInterval},
		},
		{
			name:   "auto ignores rpm",
			config: RateLimitConfig{Enabled: true, Auto: true, Strategy: RateLimitStrategyTokenBucket},
		},
		{
			name:        "zero rpm",
			config:      RateLimitConfig{Enabled: true, RequestsPerMinute: 0, Strategy: RateLimitStrategyInterval},
			expectError: true,
			errorMsg:    "requests per minute must be positive",
		},
		{
			name:        "negative rpm",
			config:      RateLimitConfig{Enabled: true, RequestsPerMinute: -5, Strategy: RateLimitStrategyInterval},
			expectError: true,
			errorMsg:    "requests per minute must be positive",
		},
		{
			name:        "unknown strategy",
			config:      RateLimitConfig{Enabled: true, RequestsPerMinute: 10, Strategy: "leaky"},
			expectError: true,
			errorMsg:    "invalid rate limit strategy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoggingConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      LoggingConfig
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid config",
			config: LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
		},
		{
			name:        "invalid level",
			config:      LoggingConfig{Level: "trace", Format: "json", Output: "stdout"},
			expectError: true,
			errorMsg:    "invalid log level",
		},
		{
			name:        "invalid format",
			config:      LoggingConfig{Level: "info", Format: "xml", Output: "stdout"},
			expectError: true,
			errorMsg:    "invalid log format",
		},
		{
			name:        "invalid output",
			config:      LoggingConfig{Level: "info", Format: "json", Output: "syslog"},
			expectError: true,
			errorMsg:    "invalid log output",
		},
		{
			name:        "file output without path",
			config:      LoggingConfig{Level: "info", Format: "json", Output: "file"},
			expectError: true,
			errorMsg:    "file path is required",
		},
		{
			name:   "file output with path",
			config: LoggingConfig{Level: "debug", Format: "text", Output: "file", FilePath: "/tmp/hibp.log"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMetricsConfig_Validate(t *testing.T) {
	assert.NoError(t, (&MetricsConfig{Enabled: false}).Validate())
	assert.NoError(t, (&MetricsConfig{Enabled: true, Path: "/metrics", Port: 9090}).Validate())
	assert.Error(t, (&MetricsConfig{Enabled: true, Path: "", Port: 9090}).Validate())
	assert.Error(t, (&MetricsConfig{Enabled: true, Path: "/metrics", Port: 70000}).Validate())
}

func TestObservabilityConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      ObservabilityConfig
		expectError bool
	}{
		{
			name:   "tracing disabled",
			config: ObservabilityConfig{Tracing: TracingConfig{Enabled: false}},
		},
		{
			name: "stdout exporter",
			config: ObservabilityConfig{
				ServiceName: "hibp",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SampleRate: 0.5},
			},
		},
		{
			name: "otlp without endpoint",
			config: ObservabilityConfig{
				ServiceName: "hibp",
				Tracing:     TracingConfig{Enabled: true, Exporter: "otlp", SampleRate: 1},
			},
			expectError: true,
		},
		{
			name: "unknown exporter",
			config: ObservabilityConfig{
				ServiceName: "hibp",
				Tracing:     TracingConfig{Enabled: true, Exporter: "zipkin", SampleRate: 1},
			},
			expectError: true,
		},
		{
			name: "sample rate above one",
			config: ObservabilityConfig{
				ServiceName: "hibp",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SampleRate: 1.5},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
