package main

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"
)

// This file contains mocks definitions needed to perform unit tests.

// MockClocker implements a fake TickerClocker.
type MockClocker struct {
	mu      sync.Mutex
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func NewMockClocker() *MockClocker {
	return &MockClocker{MockNow: time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns the mocked time.
func (mck *MockClocker) Now() time.Time {
	mck.mu.Lock()
	defer mck.mu.Unlock()
	return mck.MockNow
}

// Advance moves the mocked time forward.
func (mck *MockClocker) Advance(d time.Duration) {
	mck.mu.Lock()
	defer mck.mu.Unlock()
	mck.MockNow = mck.MockNow.Add(d)
}

func (mck *MockClocker) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}

// MockSearchService mocks the search service used by handlers.
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, rawISBN, q string) (*SearchResult, error) {
	args := m.Called(ctx, rawISBN, q)
	result, _ := args.Get(0).(*SearchResult)
	return result, args.Error(1)
}

// MockAggregator mocks the sources fan-out used by the search service.
type MockAggregator struct {
	mock.Mock
}

func (m *MockAggregator) Aggregate(ctx context.Context, term, isbn, country string) ([]Offer, BookMeta) {
	args := m.Called(ctx, term, isbn, country)
	offers, _ := args.Get(0).([]Offer)
	return offers, args.Get(1).(BookMeta)
}

// fakeOfferSource returns canned offers after an optional delay. It honors
// the context unless stubborn is set.
type fakeOfferSource struct {
	offers   []Offer
	delay    time.Duration
	stubborn bool
	calls    atomic.Int32
	mu       sync.Mutex
	terms    []string
}

func (f *fakeOfferSource) FetchOffers(ctx context.Context, term, _ string) []Offer {
	f.calls.Add(1)
	f.mu.Lock()
	f.terms = append(f.terms, term)
	f.mu.Unlock()
	if f.delay > 0 {
		if f.stubborn {
			time.Sleep(f.delay)
		} else {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return []Offer{}
			}
		}
	}
	out := make([]Offer, len(f.offers))
	copy(out, f.offers)
	return out
}

func (f *fakeOfferSource) lastTerm() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.terms) == 0 {
		return ""
	}
	return f.terms[len(f.terms)-1]
}

// fakeMetaSource returns canned metadata after an optional delay.
type fakeMetaSource struct {
	meta  BookMeta
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeMetaSource) FetchMeta(ctx context.Context, isbn13 string) BookMeta {
	f.calls.Add(1)
	if isbn13 == "" {
		return BookMeta{}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return BookMeta{ISBN13: isbn13}
		}
	}
	return f.meta
}

// memoryCache is an in-memory ResultCache recording its usage.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (mc *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.getErr != nil {
		return nil, mc.getErr
	}
	v, ok := mc.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (mc *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.setErr != nil {
		return mc.setErr
	}
	mc.entries[key] = value
	mc.ttls[key] = ttl
	return nil
}

func (mc *memoryCache) Close() error {
	return nil
}

// newTestConfig provides a valid configuration with defaults applied.
func newTestConfig() *Config {
	config := &Config{
		Server: ServerConfig{Host: "localhost", Port: "8080"},
		Cache:  CacheConfig{StaleWhileRevalidate: 60 * time.Second},
	}
	if err := InitConfig(config, "", "", ""); err != nil {
		panic(err)
	}
	return config
}
