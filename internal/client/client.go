// Package client is a Go client for the Have I Been Pwned v3 API and the
// Pwned Passwords range API.
//
// A Client is cheap to copy and safe for concurrent use. When rate limited,
// every copy made with Clone shares one limiter, so the requests-per-minute
// quota is respected across all of them. Requests are never retried and the
// package applies no timeout of its own; cancellation comes from the
// caller's context and the configured *http.Client.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"hibp/internal/models"
	"hibp/internal/ratelimit"
)

const (
	headerAPIKey     = "hibp-api-key"
	headerUserAgent  = "User-Agent"
	headerAddPadding = "Add-Padding"
)

// Client issues requests against the HIBP endpoints. Configuration is fixed
// at construction; the limiter is the only shared mutable state.
type Client struct {
	apiKey    string
	userAgent string
	baseURL   string
	rangeURL  string

	httpClient *http.Client
	logger     *slog.Logger
	limiter    ratelimit.Limiter

	// rateLimited, rpm and strategy describe the limiter New should build.
	rateLimited bool
	rpm         int
	strategy    string
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit paces requests to rpm requests per minute. A non-positive
// rpm makes New fail.
func WithRateLimit(rpm int) Option {
	return func(c *Client) {
		c.rateLimited = true
		c.rpm = rpm
		c.limiter = nil
	}
}

// WithRateLimitStrategy selects the limiter implementation built for
// WithRateLimit and auto rate limiting ("interval" or "token_bucket").
func WithRateLimitStrategy(strategy string) Option {
	return func(c *Client) {
		c.strategy = strategy
	}
}

// WithLimiter shares an existing limiter, for example one already used by
// another client for the same API key.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
		c.rateLimited = false
		c.rpm = 0
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

func WithRangeURL(u string) Option {
	return func(c *Client) {
		c.rangeURL = strings.TrimRight(u, "/")
	}
}

// New creates a client for apiKey. Without WithRateLimit or WithLimiter the
// client is unthrottled.
func New(apiKey string, opts ...Option) (*Client, error) {
	c := &Client{
		apiKey:     apiKey,
		userAgent:  models.DefaultUserAgent,
		baseURL:    models.DefaultBaseURL,
		rangeURL:   models.DefaultRangeURL,
		httpClient: &http.Client{},
		logger:     slog.Default(),
		strategy:   models.RateLimitStrategyInterval,
	}

	for _, opt := range opts {
		opt(c)
	}

	if strings.TrimSpace(c.apiKey) == "" {
		return nil, NewValidationError("API key is required", nil)
	}
	if strings.TrimSpace(c.userAgent) == "" {
		return nil, NewValidationError("user agent cannot be empty", nil)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.rateLimited {
		limiter, err := ratelimit.New(c.strategy, c.rpm)
		if err != nil {
			return nil, NewValidationError("invalid rate limit", err)
		}
		c.limiter = limiter
	}

	return c, nil
}

// NewWithRateLimit creates a client paced to rpm requests per minute.
func NewWithRateLimit(apiKey string, rpm int, opts ...Option) (*Client, error) {
	if rpm <= 0 {
		return nil, NewValidationError("invalid rate limit", fmt.Errorf("%w: got %d", ratelimit.ErrInvalidRPM, rpm))
	}
	return New(apiKey, append(slices.Clip(opts), WithRateLimit(rpm))...)
}

// NewWithAutoRateLimit asks the service for the key's subscription and
// returns a client paced to the quota it reports. The status request itself
// is sent unthrottled. A subscription reporting no positive quota is a
// configuration error.
func NewWithAutoRateLimit(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	probe, err := New(apiKey, append(slices.Clip(opts), WithLimiter(nil))...)
	if err != nil {
		return nil, err
	}

	status, err := probe.SubscriptionStatus(ctx)
	if err != nil {
		return nil, err
	}
	if status.Rpm <= 0 {
		return nil, NewValidationError(
			fmt.Sprintf("subscription %q reports no usable rate limit", status.SubscriptionName),
			fmt.Errorf("%w: got %d", ratelimit.ErrInvalidRPM, status.Rpm),
		)
	}

	limiter, err := ratelimit.New(probe.strategy, status.Rpm)
	if err != nil {
		return nil, NewValidationError("invalid rate limit", err)
	}

	c := probe.Clone()
	c.limiter = limiter
	c.rateLimited = true
	c.rpm = status.Rpm

	c.logger.Debug("Configured rate limit from subscription",
		"subscription", status.SubscriptionName,
		"rpm", status.Rpm,
		"strategy", probe.strategy)

	return c, nil
}

// Clone returns a copy of the client that shares its limiter.
func (c *Client) Clone() *Client {
	clone := *c
	return &clone
}

// RateLimiter returns the shared limiter, or nil when unthrottled.
func (c *Client) RateLimiter() ratelimit.Limiter {
	return c.limiter
}

type requestIDKey struct{}

// WithRequestID attaches a request id to ctx. The client logs it with every
// request it sends under ctx and generates one when absent.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id attached to ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// response is a fully read HTTP response.
type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// send waits on the limiter, then issues a GET with the standard headers.
// The limiter is released before the request goes out.
func (c *Client) send(ctx context.Context, endpoint, rawURL string, header http.Header) (*response, error) {
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, NewTransportError(endpoint+": rate limiter wait aborted", err)
		}
		c.logger.DebugContext(ctx, "Rate limiter permit granted",
			"endpoint", endpoint,
			"request_id", requestID,
			"waited", time.Since(waitStart))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, NewTransportError(endpoint+": failed to build request", err)
	}
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set(headerUserAgent, c.userAgent)
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "HIBP request failed",
			"endpoint", endpoint,
			"request_id", requestID,
			"duration", time.Since(start),
			"error", err)
		return nil, NewTransportError(endpoint+": request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(endpoint+": failed to read response body", err)
	}

	c.logger.DebugContext(ctx, "HIBP request completed",
		"endpoint", endpoint,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	return &response{status: resp.StatusCode, body: body}, nil
}

// notFound selects how a 404 is reported by an endpoint.
type notFound int

const (
	// notFoundError reports a 404 like any other failure status.
	notFoundError notFound = iota
	// notFoundEmpty reports a 404 as "nothing recorded" (account and domain lookups).
	notFoundEmpty
	// notFoundMissing reports a 404 as a NOT_FOUND error (named resources).
	notFoundMissing
)

// getJSON fetches baseURL+path and decodes the body into a T. found is
// false when a 404 was mapped to an empty result.
func getJSON[T any](ctx context.Context, c *Client, endpoint, path string, mode notFound) (result T, found bool, err error) {
	resp, err := c.send(ctx, endpoint, c.baseURL+path, nil)
	if err != nil {
		return result, false, err
	}

	if resp.status == http.StatusNotFound {
		switch mode {
		case notFoundEmpty:
			return result, false, nil
		case notFoundMissing:
			return result, false, NewNotFoundError(endpoint + ": resource not found")
		}
	}
	if !resp.ok() {
		return result, false, NewStatusError(endpoint, resp.status)
	}

	if err := json.Unmarshal(resp.body, &result); err != nil {
		return result, false, NewParseError(endpoint+": failed to decode response", err)
	}
	return result, true, nil
}

// getList is getJSON for array endpoints; a mapped 404 and a JSON null both
// yield an empty, non-nil slice.
func getList[T any](ctx context.Context, c *Client, endpoint, path string, mode notFound) ([]T, error) {
	items, _, err := getJSON[[]T](ctx, c, endpoint, path, mode)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
