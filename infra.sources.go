package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Default public endpoints of the upstream catalogs.
const (
	DefaultAppleURL       = "https://itunes.apple.com"
	DefaultGoogleBooksURL = "https://www.googleapis.com"
	DefaultOpenLibraryURL = "https://openlibrary.org"
	DefaultCoversURL      = "https://covers.openlibrary.org"
)

const tracerName = "github.com/jeamon/book-offers"

// OfferSource fetches purchasable offers for a term. Failures are
// absorbed and reported as an empty list.
type OfferSource interface {
	FetchOffers(ctx context.Context, term, country string) []Offer
}

// MetaSource fetches bibliographic data of an ISBN-13. Failures are
// absorbed and reported as metadata carrying only the isbn.
type MetaSource interface {
	FetchMeta(ctx context.Context, isbn13 string) BookMeta
}

// UpstreamStatusError reports a non-2xx answer from an upstream.
type UpstreamStatusError struct {
	Code int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// NewUpstreamHTTPClient provides the client shared by every source so
// that connections to upstreams are reused across requests.
func NewUpstreamHTTPClient(config *SourcesConfig) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   config.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   config.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}
}

// NewBreaker provides a circuit breaker which opens after the configured number
// of consecutive failures and lets a probe request go after the open timeout.
func NewBreaker(logger *zap.Logger, name string, config *BreakerConfig) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.Failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("source breaker state changed",
				zap.String("source", name),
				zap.String("breaker.from", from.String()),
				zap.String("breaker.to", to.String()),
			)
		},
		// a caller going away says nothing about the upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// upstream holds what every source needs to talk to its catalog.
type upstream struct {
	name      string
	baseURL   string
	userAgent string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
	tracer    trace.Tracer
}

func newUpstream(logger *zap.Logger, name, baseURL string, config *SourcesConfig, client *http.Client) *upstream {
	return &upstream{
		name:      name,
		baseURL:   baseURL,
		userAgent: config.UserAgent,
		client:    client,
		breaker:   NewBreaker(logger, name, &config.Breaker),
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
}

// getJSON performs a GET request through the breaker and decodes the body into target.
func (u *upstream) getJSON(ctx context.Context, rawURL string, target interface{}) error {
	_, err := u.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", u.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := u.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil, &UpstreamStatusError{Code: resp.StatusCode}
		}
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return nil, nil
	})
	return err
}

// startSpan opens the span of a single source call.
func (u *upstream) startSpan(ctx context.Context, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("source", u.name))
	return u.tracer.Start(ctx, "source."+u.name, trace.WithAttributes(attrs...))
}

// fail records a soft failure on both the span and the logs.
func (u *upstream) fail(ctx context.Context, span trace.Span, err error, fields ...zap.Field) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	fields = append(fields,
		zap.String("source", u.name),
		zap.String("request.id", GetValueFromContext(ctx, RequestIDContextKey)),
		zap.Error(err),
	)
	u.logger.Warn("source call failed", fields...)
}
