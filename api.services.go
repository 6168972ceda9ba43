package main

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

type SearchServiceProvider interface {
	Search(ctx context.Context, rawISBN, q string) (*SearchResult, error)
}

type SearchService struct {
	logger     *zap.Logger
	config     *Config
	clock      Clocker
	aggregator Aggregator
	cache      ResultCache
}

func NewSearchService(logger *zap.Logger, config *Config, clock Clocker, aggregator Aggregator, cache ResultCache) SearchServiceProvider {
	if cache == nil {
		cache = noopCache{}
	}
	return &SearchService{
		logger:     logger,
		config:     config,
		clock:      clock,
		aggregator: aggregator,
		cache:      cache,
	}
}

// Search answers a lookup by isbn, by keywords or by both. When an isbn is
// given it drives every source and the retailer links while the keywords
// are only echoed back.
func (ss *SearchService) Search(ctx context.Context, rawISBN, q string) (*SearchResult, error) {
	rawISBN, q = strings.TrimSpace(rawISBN), strings.TrimSpace(q)
	if rawISBN == "" && q == "" {
		return nil, ErrMissingQuery
	}

	var isbn string
	if rawISBN != "" {
		isbn = NormalizeISBN(rawISBN)
	}

	key := CacheKey(isbn, q)
	if result, ok := ss.fromCache(ctx, key); ok {
		return result, nil
	}

	term := isbn
	if term == "" {
		term = q
	}

	offers, meta := ss.aggregator.Aggregate(ctx, term, isbn, ss.config.Sources.Country)
	if offers == nil {
		offers = []Offer{}
	}
	result := &SearchResult{
		Query:         NewQuery(isbn, q),
		Book:          meta,
		Offers:        offers,
		PhysicalLinks: BuildPhysicalLinks(term),
		TS:            Timestamp(ss.clock),
	}

	// results gathered under an expired request may be truncated.
	if ctx.Err() == nil {
		ss.toCache(ctx, key, result)
	}
	return result, nil
}

func (ss *SearchService) fromCache(ctx context.Context, key string) (*SearchResult, bool) {
	body, err := ss.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			ss.logger.Warn("service: failed to read cached search",
				zap.String("request.id", GetValueFromContext(ctx, RequestIDContextKey)),
				zap.String("cache.key", key),
				zap.Error(err),
			)
		}
		return nil, false
	}

	result := &SearchResult{}
	if err := json.Unmarshal(body, result); err != nil {
		ss.logger.Warn("service: failed to decode cached search", zap.String("cache.key", key), zap.Error(err))
		return nil, false
	}
	if result.Offers == nil {
		result.Offers = []Offer{}
	}
	return result, true
}

func (ss *SearchService) toCache(ctx context.Context, key string, result *SearchResult) {
	body, err := json.Marshal(result)
	if err == nil {
		err = ss.cache.Set(ctx, key, body, ss.config.Cache.TTL)
	}
	if err != nil {
		ss.logger.Warn("service: failed to cache search",
			zap.String("request.id", GetValueFromContext(ctx, RequestIDContextKey)),
			zap.String("cache.key", key),
			zap.Error(err),
		)
	}
}
