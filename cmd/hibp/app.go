package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"hibp/internal/client"
	"hibp/internal/config"
	"hibp/internal/logger"
	"hibp/internal/models"
	"hibp/internal/observability"
	"hibp/internal/version"
)

// app holds the per-invocation runtime. The API client and its ambient
// stack are built on first use so commands like version and init-config
// run without an API key.
type app struct {
	ctx    context.Context
	cli    *CLI
	stdin  io.Reader
	stdout io.Writer

	cfg      *models.Config
	api      client.API
	provider *observability.Provider
	metrics  *observability.MetricsServer
	logClose io.Closer
}

func newApp(ctx context.Context, cli *CLI, stdin io.Reader, stdout io.Writer) *app {
	return &app{ctx: ctx, cli: cli, stdin: stdin, stdout: stdout}
}

// overrides maps global flags onto the loaded configuration.
func (a *app) overrides() []config.Override {
	var out []config.Override
	if a.cli.APIKey != "" {
		key := a.cli.APIKey
		out = append(out, func(c *models.Config) { c.Client.APIKey = key })
	}
	if a.cli.RPM > 0 {
		rpm := a.cli.RPM
		out = append(out, func(c *models.Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.Auto = false
			c.RateLimit.RequestsPerMinute = rpm
		})
	}
	if a.cli.AutoRateLimit {
		out = append(out, func(c *models.Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.Auto = true
		})
	}
	if a.cli.RateLimitStrategy != "" {
		strategy := a.cli.RateLimitStrategy
		out = append(out, func(c *models.Config) { c.RateLimit.Strategy = strategy })
	}
	if a.cli.Metrics {
		out = append(out, func(c *models.Config) { c.Metrics.Enabled = true })
	}
	if a.cli.LogLevel != "" {
		level := a.cli.LogLevel
		out = append(out, func(c *models.Config) { c.Logging.Level = level })
	}
	return out
}

// client loads configuration and builds the API client on first call.
func (a *app) client() (client.API, error) {
	if a.api != nil {
		return a.api, nil
	}

	cfg, err := config.Load(a.cli.Config, a.overrides()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	ver := version.GetInfo()

	log, closer, err := logger.Setup(cfg.Logging, ver)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	a.logClose = closer
	slog.SetDefault(log)

	provider, err := observability.Setup(cfg.Metrics, cfg.Observability, ver)
	if err != nil {
		return nil, fmt.Errorf("failed to set up observability: %w", err)
	}
	a.provider = provider

	userAgent := cfg.Client.UserAgent
	if userAgent == models.DefaultUserAgent {
		userAgent = ver.UserAgent(userAgent)
	}

	opts := []client.Option{
		client.WithHTTPClient(&http.Client{Timeout: cfg.Client.Timeout}),
		client.WithUserAgent(userAgent),
		client.WithBaseURL(cfg.Client.BaseURL),
		client.WithRangeURL(cfg.Client.RangeURL),
		client.WithLogger(log),
	}

	var c *client.Client
	switch {
	case cfg.RateLimit.Enabled && cfg.RateLimit.Auto:
		opts = append(opts, client.WithRateLimitStrategy(cfg.RateLimit.Strategy))
		c, err = client.NewWithAutoRateLimit(a.ctx, cfg.Client.APIKey, opts...)
	case cfg.RateLimit.Enabled:
		opts = append(opts,
			client.WithRateLimitStrategy(cfg.RateLimit.Strategy),
			client.WithRateLimit(cfg.RateLimit.RequestsPerMinute),
		)
		c, err = client.New(cfg.Client.APIKey, opts...)
	default:
		c, err = client.New(cfg.Client.APIKey, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	log.Debug("HIBP client ready",
		"base_url", cfg.Client.BaseURL,
		"rate_limited", c.RateLimiter() != nil,
		"strategy", cfg.RateLimit.Strategy,
	)

	a.api = c
	if cfg.Metrics.Enabled || cfg.Observability.Tracing.Enabled {
		instrumented, err := observability.NewInstrumentedClient(c)
		if err != nil {
			return nil, fmt.Errorf("failed to instrument client: %w", err)
		}
		a.api = instrumented
	}

	if cfg.Metrics.Enabled {
		a.metrics = observability.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, provider)
		go func() {
			if err := a.metrics.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server error", "error", err)
			}
		}()
	}

	return a.api, nil
}

// print writes v to stdout as indented JSON.
func (a *app) print(v interface{}) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Close stops the metrics server, flushes telemetry and closes the log file.
func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if a.metrics != nil {
		if err := a.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}
	if a.provider != nil {
		if err := a.provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("observability shutdown: %w", err))
		}
	}
	if a.logClose != nil {
		if err := a.logClose.Close(); err != nil {
			errs = append(errs, fmt.Errorf("log file close: %w", err))
		}
	}
	return errors.Join(errs...)
}
