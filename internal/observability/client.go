package observability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"hibp/internal/client"
	"hibp/internal/models"
)

const instrumentationName = "hibp/client"

// InstrumentedClient wraps a client.API implementation with OpenTelemetry
// tracing and metrics instrumentation. Account names, emails and passwords
// are never recorded as attributes.
type InstrumentedClient struct {
	inner    client.API
	tracer   trace.Tracer
	duration metric.Float64Histogram
	errors   metric.Int64Counter
	matches  metric.Int64Counter
}

var _ client.API = (*InstrumentedClient)(nil)

// NewInstrumentedClient creates a client wrapper that records a trace span,
// a latency histogram sample and, on failure, an error count for every API
// call. Each call gets a request id that the wrapped client logs.
func NewInstrumentedClient(inner client.API) (*InstrumentedClient, error) {
	tracer := otel.Tracer(instrumentationName)
	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram(
		"hibp.request.duration",
		metric.WithDescription("Duration of HIBP API calls in seconds, including rate limiter waits"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errCounter, err := meter.Int64Counter(
		"hibp.request.errors",
		metric.WithDescription("Number of failed HIBP API calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	matches, err := meter.Int64Counter(
		"hibp.password.matches",
		metric.WithDescription("Number of password checks that found the password in the corpus"),
		metric.WithUnit("{password}"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedClient{
		inner:    inner,
		tracer:   tracer,
		duration: duration,
		errors:   errCounter,
		matches:  matches,
	}, nil
}

func (c *InstrumentedClient) startSpan(ctx context.Context, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	requestID := client.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = client.WithRequestID(ctx, requestID)
	}

	ctx, span := c.tracer.Start(ctx, "hibp."+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("hibp.method", method),
			attribute.String("hibp.request_id", requestID),
		}, attrs...)...),
	)
	return ctx, span
}

func (c *InstrumentedClient) record(ctx context.Context, span trace.Span, method string, start time.Time, err error) {
	elapsed := time.Since(start).Seconds()
	attrs := []attribute.KeyValue{attribute.String("method", method)}

	if err != nil {
		code := errorCode(err)
		attrs = append(attrs, attribute.String("error_code", code))
		if status := client.StatusCode(err); status != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", status))
		}
		span.SetAttributes(attribute.String("hibp.error_code", code))

		c.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	c.duration.Record(ctx, elapsed, metric.WithAttributes(attrs...))
	span.End()
}

func errorCode(err error) string {
	switch {
	case client.IsValidation(err):
		return models.ErrorCodeValidation
	case client.IsNotFound(err):
		return models.ErrorCodeNotFound
	case client.IsTransport(err):
		return models.ErrorCodeTransport
	case client.IsParse(err):
		return models.ErrorCodeParse
	default:
		return "UNKNOWN"
	}
}

func (c *InstrumentedClient) BreachesForAccount(ctx context.Context, account string) ([]models.Breach, error) {
	ctx, span := c.startSpan(ctx, "BreachesForAccount")
	start := time.Now()
	result, err := c.inner.BreachesForAccount(ctx, account)
	span.SetAttributes(attribute.Int("hibp.result_count", len(result)))
	c.record(ctx, span, "BreachesForAccount", start, err)
	return result, err
}

func (c *InstrumentedClient) AllBreaches(ctx context.Context) ([]models.Breach, error) {
	ctx, span := c.startSpan(ctx, "AllBreaches")
	start := time.Now()
	result, err := c.inner.AllBreaches(ctx)
	span.SetAttributes(attribute.Int("hibp.result_count", len(result)))
	c.record(ctx, span, "AllBreaches", start, err)
	return result, err
}

func (c *InstrumentedClient) BreachByName(ctx context.Context, name string) (*models.Breach, error) {
	ctx, span := c.startSpan(ctx, "BreachByName", attribute.String("hibp.breach_name", name))
	start := time.Now()
	result, err := c.inner.BreachByName(ctx, name)
	c.record(ctx, span, "BreachByName", start, err)
	return result, err
}

func (c *InstrumentedClient) LatestBreach(ctx context.Context) (*models.Breach, error) {
	ctx, span := c.startSpan(ctx, "LatestBreach")
	start := time.Now()
	result, err := c.inner.LatestBreach(ctx)
	c.record(ctx, span, "LatestBreach", start, err)
	return result, err
}

func (c *InstrumentedClient) PastesForAccount(ctx context.Context, account string) ([]models.Paste, error) {
	ctx, span := c.startSpan(ctx, "PastesForAccount")
	start := time.Now()
	result, err := c.inner.PastesForAccount(ctx, account)
	span.SetAttributes(attribute.Int("hibp.result_count", len(result)))
	c.record(ctx, span, "PastesForAccount", start, err)
	return result, err
}

func (c *InstrumentedClient) SubscriptionStatus(ctx context.Context) (*models.SubscriptionStatus, error) {
	ctx, span := c.startSpan(ctx, "SubscriptionStatus")
	start := time.Now()
	result, err := c.inner.SubscriptionStatus(ctx)
	c.record(ctx, span, "SubscriptionStatus", start, err)
	return result, err
}

func (c *InstrumentedClient) SubscribedDomains(ctx context.Context) ([]models.SubscribedDomain, error) {
	ctx, span := c.startSpan(ctx, "SubscribedDomains")
	start := time.Now()
	result, err := c.inner.SubscribedDomains(ctx)
	span.SetAttributes(attribute.Int("hibp.result_count", len(result)))
	c.record(ctx, span, "SubscribedDomains", start, err)
	return result, err
}

func (c *InstrumentedClient) StealerLogEmailsForDomain(ctx context.Context, domain string) ([]models.StealerLogEmail, error) {
	ctx, span := c.startSpan(ctx, "StealerLogEmailsForDomain", attribute.String("hibp.domain", domain))
	start := time.Now()
	result, err := c.inner.StealerLogEmailsForDomain(ctx, domain)
	span.SetAttributes(attribute.Int("hibp.result_count", len(result)))
	c.record(ctx, span, "StealerLogEmailsForDomain", start, err)
	return result, err
}

func (c *InstrumentedClient) StealerLogAliasesForDomain(ctx context.Context, domain string) ([]models.StealerLogAlias, error) {
	ctx, span := c.startSpan(ctx, "StealerLogAliasesForDomain", attribute.String("hibp.domain", domain))
	start := time.Now()
	result, err := c.inner.StealerLogAliasesForDomain(ctx, domain)
	span.SetAttributes(attribute.Int("hibp.result_count", len(result)))
	c.record(ctx, span, "StealerLogAliasesForDomain", start, err)
	return result, err
}

func (c *InstrumentedClient) StealerLogDomainsForEmail(ctx context.Context, email string) ([]models.StealerLogDomain, error) {
	ctx, span := c.startSpan(ctx, "StealerLogDomainsForEmail")
	start := time.Now()
	result, err := c.inner.StealerLogDomainsForEmail(ctx, email)
	span.SetAttributes(attribute.Int("hibp.result_count", len(result)))
	c.record(ctx, span, "StealerLogDomainsForEmail", start, err)
	return result, err
}

func (c *InstrumentedClient) SearchPasswordRange(ctx context.Context, prefix string) ([]models.PwnedPassword, error) {
	ctx, span := c.startSpan(ctx, "SearchPasswordRange",
		attribute.String("hibp.hash_prefix", prefix),
		attribute.Bool("hibp.padded", false),
	)
	start := time.Now()
	result, err := c.inner.SearchPasswordRange(ctx, prefix)
	span.SetAttributes(attribute.Int("hibp.result_count", len(result)))
	c.record(ctx, span, "SearchPasswordRange", start, err)
	return result, err
}

func (c *InstrumentedClient) SearchPasswordRangePadded(ctx context.Context, prefix string) ([]models.PwnedPassword, error) {
	ctx, span := c.startSpan(ctx, "SearchPasswordRangePadded",
		attribute.String("hibp.hash_prefix", prefix),
		attribute.Bool("hibp.padded", true),
	)
	start := time.Now()
	result, err := c.inner.SearchPasswordRangePadded(ctx, prefix)
	span.SetAttributes(attribute.Int("hibp.result_count", len(result)))
	c.record(ctx, span, "SearchPasswordRangePadded", start, err)
	return result, err
}

func (c *InstrumentedClient) CheckPassword(ctx context.Context, password string) (uint64, error) {
	ctx, span := c.startSpan(ctx, "CheckPassword", attribute.Bool("hibp.padded", false))
	start := time.Now()
	count, err := c.inner.CheckPassword(ctx, password)
	c.recordMatch(ctx, span, count, false)
	c.record(ctx, span, "CheckPassword", start, err)
	return count, err
}

func (c *InstrumentedClient) CheckPasswordPadded(ctx context.Context, password string) (uint64, error) {
	ctx, span := c.startSpan(ctx, "CheckPasswordPadded", attribute.Bool("hibp.padded", true))
	start := time.Now()
	count, err := c.inner.CheckPasswordPadded(ctx, password)
	c.recordMatch(ctx, span, count, true)
	c.record(ctx, span, "CheckPasswordPadded", start, err)
	return count, err
}

func (c *InstrumentedClient) recordMatch(ctx context.Context, span trace.Span, count uint64, padded bool) {
	span.SetAttributes(attribute.Bool("hibp.pwned", count > 0))
	if count > 0 {
		c.matches.Add(ctx, 1, metric.WithAttributes(attribute.Bool("padded", padded)))
	}
}
