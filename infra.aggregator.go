package main

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Aggregator gathers offers and metadata from every source.
type Aggregator interface {
	Aggregate(ctx context.Context, term, isbn, country string) ([]Offer, BookMeta)
}

// OfferAggregator fans out one search to all sources concurrently.
type OfferAggregator struct {
	logger     *zap.Logger
	appleEbook OfferSource
	appleAudio OfferSource
	google     OfferSource
	meta       MetaSource
	timeout    time.Duration
	tracer     trace.Tracer
}

func NewOfferAggregator(logger *zap.Logger, appleEbook, appleAudio, google OfferSource, meta MetaSource, timeout time.Duration) *OfferAggregator {
	return &OfferAggregator{
		logger:     logger,
		appleEbook: appleEbook,
		appleAudio: appleAudio,
		google:     google,
		meta:       meta,
		timeout:    timeout,
		tracer:     otel.Tracer(tracerName),
	}
}

// Aggregate runs the Apple ebook and audiobook searches with term, the Google
// lookup and the Open Library lookup with isbn, each under its own timeout.
// Failing sources contribute nothing. Offers come back sorted by price with
// unpriced ones last.
func (oa *OfferAggregator) Aggregate(ctx context.Context, term, isbn, country string) ([]Offer, BookMeta) {
	ctx, span := oa.tracer.Start(ctx, "aggregate", trace.WithAttributes(
		attribute.String("term", term),
		attribute.String("isbn", isbn),
		attribute.String("country", country),
	))
	defer span.End()

	calls := [...]struct {
		source OfferSource
		term   string
	}{
		{oa.appleEbook, term},
		{oa.appleAudio, term},
		{oa.google, isbn},
	}

	var (
		g     errgroup.Group
		slots [len(calls)][]Offer
		meta  BookMeta
	)

	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			slots[i] = within(ctx, oa.timeout, nil, func(ctx context.Context) []Offer {
				return call.source.FetchOffers(ctx, call.term, country)
			})
			return nil
		})
	}
	g.Go(func() error {
		meta = within(ctx, oa.timeout, BookMeta{ISBN13: isbn}, func(ctx context.Context) BookMeta {
			return oa.meta.FetchMeta(ctx, isbn)
		})
		return nil
	})
	// sources never report errors.
	_ = g.Wait()

	offers := make([]Offer, 0, len(slots[0])+len(slots[1])+len(slots[2]))
	for _, slot := range slots {
		offers = append(offers, slot...)
	}
	SortOffers(offers)

	span.SetAttributes(attribute.Int("offers.count", len(offers)))
	oa.logger.Debug("search aggregated",
		zap.String("request.id", GetValueFromContext(ctx, RequestIDContextKey)),
		zap.String("term", term),
		zap.Int("offers.count", len(offers)),
	)
	return offers, meta
}

// SortOffers orders offers by ascending price. Offers without a price go last
// and offers with equal keys keep their relative order.
func SortOffers(offers []Offer) {
	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].sortKey() < offers[j].sortKey()
	})
}

// within bounds call to d. On expiry fallback is returned without waiting
// for call, which still sees its context cancelled.
func within[T any](ctx context.Context, d time.Duration, fallback T, call func(context.Context) T) T {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan T, 1)
	go func() {
		done <- call(ctx)
	}()

	select {
	case v := <-done:
		return v
	case <-ctx.Done():
		return fallback
	}
}
