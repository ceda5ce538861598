package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"hibp/internal/models"
)

// DefaultEnvFile is the dotenv file Load reads when present.
const DefaultEnvFile = ".env"

// Override adjusts the loaded configuration before validation, typically
// from command line flags.
type Override func(*models.Config)

// Load loads configuration from file, a .env file in the working directory
// and environment variables.
func Load(configPath string, overrides ...Override) (*models.Config, error) {
	return LoadWithEnvFile(configPath, DefaultEnvFile, overrides...)
}

// LoadWithEnvFile is Load with an explicit dotenv path. Variables already
// set in the process environment win over the file. A missing env file is
// not an error; an empty path skips it.
func LoadWithEnvFile(configPath, envFile string, overrides ...Override) (*models.Config, error) {
	// Start with default configuration
	config := models.NewDefaultConfig()

	// Load from file if provided and exists
	if configPath != "" {
		if err := loadFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := loadEnvFile(envFile); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	// Override with environment variables
	loadFromEnvironment(config)

	for _, override := range overrides {
		override(config)
	}

	// Validate the final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// unsupportedConfig mirrors keys users commonly carry over from other HIBP
// clients. They are accepted and ignored.
type unsupportedConfig struct {
	Client struct {
		MaxRetries interface{} `yaml:"max_retries"`
		Cache      interface{} `yaml:"cache"`
	} `yaml:"client"`
	RateLimit struct {
		BurstSize interface{} `yaml:"burst_size"`
	} `yaml:"rate_limit"`
}

// warnUnsupportedKeys logs a warning for each ignored key found in the YAML data.
func warnUnsupportedKeys(data []byte) {
	var u unsupportedConfig
	if err := yaml.Unmarshal(data, &u); err != nil {
		return
	}
	if u.Client.MaxRetries != nil {
		slog.Warn("Config key is not supported; requests are never retried.", "config_key", "client.max_retries")
	}
	if u.Client.Cache != nil {
		slog.Warn("Config key is not supported; responses are not cached.", "config_key", "client.cache")
	}
	if u.RateLimit.BurstSize != nil {
		slog.Warn("Config key is not supported; idle capacity is never banked.", "config_key", "rate_limit.burst_size")
	}
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(config *models.Config, filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", filePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	warnUnsupportedKeys(data)
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

// loadEnvFile exports the dotenv file's variables into the process
// environment without overriding ones already set.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// loadFromEnvironment loads configuration from environment variables
func loadFromEnvironment(config *models.Config) {
	// Client configuration
	if apiKey := os.Getenv("HIBP_API_KEY"); apiKey != "" {
		config.Client.APIKey = apiKey
	}

	if ua := os.Getenv("HIBP_USER_AGENT"); ua != "" {
		config.Client.UserAgent = ua
	}

	if baseURL := os.Getenv("HIBP_BASE_URL"); baseURL != "" {
		config.Client.BaseURL = baseURL
	}

	if rangeURL := os.Getenv("HIBP_RANGE_URL"); rangeURL != "" {
		config.Client.RangeURL = rangeURL
	}

	if timeout := os.Getenv("HIBP_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Client.Timeout = d
		}
	}

	// Rate limit configuration
	if enabled := os.Getenv("HIBP_RATE_LIMIT_ENABLED"); enabled != "" {
		config.RateLimit.Enabled = strings.ToLower(enabled) == "true"
	}

	if rpm := os.Getenv("HIBP_RATE_LIMIT_RPM"); rpm != "" {
		if n, err := strconv.Atoi(rpm); err == nil {
			config.RateLimit.RequestsPerMinute = n
		}
	}

	if auto := os.Getenv("HIBP_RATE_LIMIT_AUTO"); auto != "" {
		config.RateLimit.Auto = strings.ToLower(auto) == "true"
	}

	if strategy := os.Getenv("HIBP_RATE_LIMIT_STRATEGY"); strategy != "" {
		config.RateLimit.Strategy = strategy
	}

	// Logging configuration
	if level := os.Getenv("HIBP_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if format := os.Getenv("HIBP_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}

	if output := os.Getenv("HIBP_LOG_OUTPUT"); output != "" {
		config.Logging.Output = output
	}

	if filePath := os.Getenv("HIBP_LOG_FILE_PATH"); filePath != "" {
		config.Logging.FilePath = filePath
	}

	// Metrics configuration
	if metrics := os.Getenv("HIBP_METRICS_ENABLED"); metrics != "" {
		config.Metrics.Enabled = strings.ToLower(metrics) == "true"
	}

	if path := os.Getenv("HIBP_METRICS_PATH"); path != "" {
		config.Metrics.Path = path
	}

	if port := os.Getenv("HIBP_METRICS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Metrics.Port = p
		}
	}

	// Tracing configuration
	if tracing := os.Getenv("HIBP_TRACING_ENABLED"); tracing != "" {
		config.Observability.Tracing.Enabled = strings.ToLower(tracing) == "true"
	}

	if exporter := os.Getenv("HIBP_TRACING_EXPORTER"); exporter != "" {
		config.Observability.Tracing.Exporter = exporter
	}

	if endpoint := os.Getenv("HIBP_OTLP_ENDPOINT"); endpoint != "" {
		config.Observability.Tracing.OTLPEndpoint = endpoint
	}
}

// SaveExample saves an example configuration file
func SaveExample(filePath string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Get default config with some example values
	config := models.NewDefaultConfig()

	config.Client.APIKey = "your-hibp-api-key-here"

	// Example rate limit: pace to the subscription's quota
	config.RateLimit.Enabled = true
	config.RateLimit.Auto = true
	config.RateLimit.RequestsPerMinute = 10

	// Marshal to YAML
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// Write to file, readable only by the owner since it carries the key
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
