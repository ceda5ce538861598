package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"hibp/internal/models"
)

var hibpEnvVars = []string{
	"HIBP_API_KEY", "HIBP_USER_AGENT", "HIBP_BASE_URL", "HIBP_RANGE_URL", "HIBP_TIMEOUT",
	"HIBP_RATE_LIMIT_ENABLED", "HIBP_RATE_LIMIT_RPM", "HIBP_RATE_LIMIT_AUTO", "HIBP_RATE_LIMIT_STRATEGY",
	"HIBP_LOG_LEVEL", "HIBP_LOG_FORMAT", "HIBP_LOG_OUTPUT", "HIBP_LOG_FILE_PATH",
	"HIBP_METRICS_ENABLED", "HIBP_METRICS_PATH", "HIBP_METRICS_PORT",
	"HIBP_TRACING_ENABLED", "HIBP_TRACING_EXPORTER", "HIBP_OTLP_ENDPOINT",
}

// clearEnv blanks every HIBP_* variable for the duration of the test.
// Empty values are ignored by the loader.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range hibpEnvVars {
		t.Setenv(name, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	clearEnv(t)

	configFile := writeFile(t, "test_config.yaml", `
client:
  api_key: "file-key"
  user_agent: "my-app/2.0"
  base_url: "https://hibp.internal.example/api/v3"
  range_url: "https://passwords.internal.example/range"
  timeout: 15s

rate_limit:
  enabled: true
  requests_per_minute: 50
  strategy: "token_bucket"

logging:
  level: "debug"
  format: "json"
  output: "stdout"

metrics:
  enabled: true
  path: "/prom"
  port: 9191

observability:
  service_name: "hibp-audit"
  tracing:
    enabled: true
    exporter: "otlp"
    otlp_endpoint: "localhost:4317"
    sample_rate: 0.5
`)

	config, err := LoadWithEnvFile(configFile, "")
	require.NoError(t, err)

	assert.Equal(t, "file-key", config.Client.APIKey)
	assert.Equal(t, "my-app/2.0", config.Client.UserAgent)
	assert.Equal(t, "https://hibp.internal.example/api/v3", config.Client.BaseURL)
	assert.Equal(t, "https://passwords.internal.example/range", config.Client.RangeURL)
	assert.Equal(t, 15*time.Second, config.Client.Timeout)

	assert.True(t, config.RateLimit.Enabled)
	assert.False(t, config.RateLimit.Auto)
	assert.Equal(t, 50, config.RateLimit.RequestsPerMinute)
	assert.Equal(t, models.RateLimitStrategyTokenBucket, config.RateLimit.Strategy)

	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
	assert.Equal(t, "stdout", config.Logging.Output)

	assert.True(t, config.Metrics.Enabled)
	assert.Equal(t, "/prom", config.Metrics.Path)
	assert.Equal(t, 9191, config.Metrics.Port)

	assert.Equal(t, "hibp-audit", config.Observability.ServiceName)
	assert.True(t, config.Observability.Tracing.Enabled)
	assert.Equal(t, "otlp", config.Observability.Tracing.Exporter)
	assert.Equal(t, "localhost:4317", config.Observability.Tracing.OTLPEndpoint)
	assert.Equal(t, 0.5, config.Observability.Tracing.SampleRate)
}

func TestLoad_WithDefaults(t *testing.T) {
	clearEnv(t)

	configFile := writeFile(t, "minimal_config.yaml", `
client:
  api_key: "minimal-key"
`)

	config, err := LoadWithEnvFile(configFile, "")
	require.NoError(t, err)

	assert.Equal(t, "minimal-key", config.Client.APIKey)
	assert.Equal(t, models.DefaultUserAgent, config.Client.UserAgent) // Default
	assert.Equal(t, models.DefaultBaseURL, config.Client.BaseURL)     // Default
	assert.Equal(t, models.DefaultRangeURL, config.Client.RangeURL)   // Default
	assert.Equal(t, 30*time.Second, config.Client.Timeout)            // Default

	assert.False(t, config.RateLimit.Enabled)                                     // Default
	assert.Equal(t, models.RateLimitStrategyInterval, config.RateLimit.Strategy) // Default

	assert.Equal(t, "info", config.Logging.Level)    // Default
	assert.Equal(t, "text", config.Logging.Format)   // Default
	assert.Equal(t, "stderr", config.Logging.Output) // Default

	assert.False(t, config.Metrics.Enabled)
	assert.False(t, config.Observability.Tracing.Enabled)
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	clearEnv(t)

	t.Setenv("HIBP_API_KEY", "env-key")
	t.Setenv("HIBP_USER_AGENT", "env-agent")
	t.Setenv("HIBP_BASE_URL", "http://localhost:8080/api/v3")
	t.Setenv("HIBP_RANGE_URL", "http://localhost:8080/range")
	t.Setenv("HIBP_TIMEOUT", "5s")
	t.Setenv("HIBP_RATE_LIMIT_ENABLED", "TRUE")
	t.Setenv("HIBP_RATE_LIMIT_RPM", "120")
	t.Setenv("HIBP_RATE_LIMIT_STRATEGY", "token_bucket")
	t.Setenv("HIBP_LOG_LEVEL", "warn")
	t.Setenv("HIBP_LOG_FORMAT", "json")
	t.Setenv("HIBP_METRICS_ENABLED", "true")
	t.Setenv("HIBP_METRICS_PORT", "9292")
	t.Setenv("HIBP_TRACING_ENABLED", "true")
	t.Setenv("HIBP_TRACING_EXPORTER", "otlp")
	t.Setenv("HIBP_OTLP_ENDPOINT", "collector:4317")

	config, err := LoadWithEnvFile("", "")
	require.NoError(t, err)

	assert.Equal(t, "env-key", config.Client.APIKey)
	assert.Equal(t, "env-agent", config.Client.UserAgent)
	assert.Equal(t, "http://localhost:8080/api/v3", config.Client.BaseURL)
	assert.Equal(t, "http://localhost:8080/range", config.Client.RangeURL)
	assert.Equal(t, 5*time.Second, config.Client.Timeout)
	assert.True(t, config.RateLimit.Enabled)
	assert.Equal(t, 120, config.RateLimit.RequestsPerMinute)
	assert.Equal(t, "token_bucket", config.RateLimit.Strategy)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
	assert.True(t, config.Metrics.Enabled)
	assert.Equal(t, 9292, config.Metrics.Port)
	assert.True(t, config.Observability.Tracing.Enabled)
	assert.Equal(t, "collector:4317", config.Observability.Tracing.OTLPEndpoint)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)

	configFile := writeFile(t, "config.yaml", `
client:
  api_key: "file-key"
logging:
  level: "debug"
`)
	t.Setenv("HIBP_API_KEY", "env-key")

	config, err := LoadWithEnvFile(configFile, "")
	require.NoError(t, err)

	assert.Equal(t, "env-key", config.Client.APIKey)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoad_InvalidEnvironmentValuesIgnored(t *testing.T) {
	clearEnv(t)

	t.Setenv("HIBP_API_KEY", "key")
	t.Setenv("HIBP_TIMEOUT", "soon")
	t.Setenv("HIBP_RATE_LIMIT_RPM", "lots")
	t.Setenv("HIBP_METRICS_PORT", "http")

	config, err := LoadWithEnvFile("", "")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, config.Client.Timeout)
	assert.Equal(t, 0, config.RateLimit.RequestsPerMinute)
	assert.Equal(t, 9090, config.Metrics.Port)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)

	// Only unset variables are taken from the file; clearEnv restores this one.
	require.NoError(t, os.Unsetenv("HIBP_API_KEY"))

	envFile := writeFile(t, ".env", "HIBP_API_KEY=dotenv-key\nHIBP_LOG_LEVEL=debug\n")
	// Real environment wins over the file.
	t.Setenv("HIBP_LOG_LEVEL", "error")

	config, err := LoadWithEnvFile("", envFile)
	require.NoError(t, err)

	assert.Equal(t, "dotenv-key", config.Client.APIKey)
	assert.Equal(t, "error", config.Logging.Level)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("HIBP_API_KEY", "key")

	_, err := LoadWithEnvFile("", filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)

	config, err := LoadWithEnvFile("", "", func(c *models.Config) {
		c.Client.APIKey = "flag-key"
	}, func(c *models.Config) {
		c.RateLimit.Enabled = true
		c.RateLimit.RequestsPerMinute = 30
	})
	require.NoError(t, err)

	assert.Equal(t, "flag-key", config.Client.APIKey)
	assert.Equal(t, 30, config.RateLimit.RequestsPerMinute)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := LoadWithEnvFile("", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "API key cannot be empty")
}

func TestLoad_NonExistentFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadWithEnvFile("/nonexistent/config.yaml", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)

	configFile := writeFile(t, "invalid.yaml", `
client:
  api_key: "key"
  timeout: [not, a, duration
`)

	_, err := LoadWithEnvFile(configFile, "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML config")
}

func TestLoad_UnsupportedKeysIgnored(t *testing.T) {
	clearEnv(t)

	configFile := writeFile(t, "legacy.yaml", `
client:
  api_key: "key"
  max_retries: 3
  cache:
    ttl: 60s
rate_limit:
  burst_size: 5
`)

	config, err := LoadWithEnvFile(configFile, "")
	require.NoError(t, err)
	assert.Equal(t, "key", config.Client.APIKey)
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	clearEnv(t)

	configFile := writeFile(t, "config.yaml", `
client:
  api_key: "key"
rate_limit:
  enabled: true
  requests_per_minute: 0
`)

	_, err := LoadWithEnvFile(configFile, "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requests per minute must be positive")
}

func TestLoad_AutoRateLimitNeedsNoRPM(t *testing.T) {
	clearEnv(t)
	t.Setenv("HIBP_API_KEY", "key")
	t.Setenv("HIBP_RATE_LIMIT_ENABLED", "true")
	t.Setenv("HIBP_RATE_LIMIT_AUTO", "true")

	config, err := LoadWithEnvFile("", "")
	require.NoError(t, err)
	assert.True(t, config.RateLimit.Auto)
}

func TestSaveExample(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveExample(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed models.Config
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	assert.Equal(t, "your-hibp-api-key-here", parsed.Client.APIKey)
	assert.True(t, parsed.RateLimit.Auto)

	// The example is itself a loadable configuration.
	config, err := LoadWithEnvFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultBaseURL, config.Client.BaseURL)
}
