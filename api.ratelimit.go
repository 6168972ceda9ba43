package main

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per client address. Buckets of
// clients idle for longer than the cleanup period are dropped.
type RateLimiter struct {
	mu       sync.Mutex
	clock    TickerClocker
	limiters map[string]*clientLimiter
	trusted  bool
	rate     rate.Limit
	burst    int
	cleanup  time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(config *RateLimitConfig, clock TickerClocker) *RateLimiter {
	cleanup := config.Cleanup
	if cleanup <= 0 {
		cleanup = 5 * time.Minute
	}
	rl := &RateLimiter{
		clock:    clock,
		limiters: make(map[string]*clientLimiter),
		trusted:  config.TrustProxyHeaders,
		rate:     rate.Limit(config.RPS),
		burst:    config.Burst,
		cleanup:  cleanup,
		done:     make(chan struct{}),
	}
	go rl.cleanupLimiters()
	return rl
}

// ClientKey names the bucket of the request. It is the connection peer
// address unless the service is configured to sit behind a trusted proxy.
func (rl *RateLimiter) ClientKey(r *http.Request) string {
	if rl.trusted {
		return GetProxiedClientIP(r)
	}
	return GetRemoteAddrIP(r)
}

// Allow reports whether the client identified by key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).AllowN(rl.clock.Now(), 1)
}

// Stop ends the background cleanup.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	cl, exists := rl.limiters[key]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

func (rl *RateLimiter) cleanupLimiters() {
	ticker := rl.clock.NewTicker(rl.cleanup)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.clock.Now()
	for key, cl := range rl.limiters {
		if now.Sub(cl.lastSeen) > rl.cleanup {
			delete(rl.limiters, key)
		}
	}
}
