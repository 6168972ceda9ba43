package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrCacheMiss is returned when no fresh entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// ResultCache keeps assembled search responses for a short freshness window.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// CacheKey returns the key of a search made of a normalized isbn and a keyword.
func CacheKey(isbn, q string) string {
	return "search:" + isbn + "|" + q
}

// noopCache never holds anything.
type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]byte, error) {
	return nil, ErrCacheMiss
}

func (noopCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (noopCache) Close() error {
	return nil
}

// NewResultCache connects the configured cache backend.
func NewResultCache(logger *zap.Logger, config *Config, clock Clocker) (ResultCache, error) {
	switch config.Cache.Backend {
	case CacheBackendRedis:
		client, err := GetRedisClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis server: %w", err)
		}
		return NewRedisResultCache(logger, client), nil
	case CacheBackendBolt:
		client, err := GetBoltDBClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to open boltdb database: %w", err)
		}
		return NewBoltResultCache(logger, &config.BoltDB, client, clock), nil
	default:
		return noopCache{}, nil
	}
}
