package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestSearchService(agg Aggregator, cache ResultCache) (SearchServiceProvider, *MockClocker) {
	clock := NewMockClocker()
	return NewSearchService(zap.NewNop(), newTestConfig(), clock, agg, cache), clock
}

func TestSearchService_MissingQuery(t *testing.T) {
	agg := &MockAggregator{}
	ss, _ := newTestSearchService(agg, nil)

	for _, in := range [][2]string{{"", ""}, {"   ", ""}, {"", " \t "}} {
		result, err := ss.Search(context.Background(), in[0], in[1])
		assert.ErrorIs(t, err, ErrMissingQuery)
		assert.Nil(t, result)
	}
	agg.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchService_ByISBN(t *testing.T) {
	offers := []Offer{priced(SourceGoogle, "google", 4)}
	meta := BookMeta{Title: "Signals", ISBN13: "9780306406157"}

	agg := &MockAggregator{}
	agg.On("Aggregate", mock.Anything, "9780306406157", "9780306406157", "US").Return(offers, meta).Once()

	ss, _ := newTestSearchService(agg, nil)
	result, err := ss.Search(context.Background(), " 0-306-40615-2 ", "")
	require.NoError(t, err)
	agg.AssertExpectations(t)

	require.NotNil(t, result.Query.ISBN)
	assert.Equal(t, "9780306406157", *result.Query.ISBN)
	assert.Nil(t, result.Query.Q)
	assert.Equal(t, meta, result.Book)
	assert.Equal(t, offers, result.Offers)
	assert.Equal(t, BuildPhysicalLinks("9780306406157"), result.PhysicalLinks)
	assert.Equal(t, "2023-07-02T00:00:00.000Z", result.TS)
}

func TestSearchService_ByKeyword(t *testing.T) {
	agg := &MockAggregator{}
	agg.On("Aggregate", mock.Anything, "dune", "", "US").Return(nil, BookMeta{}).Once()

	ss, _ := newTestSearchService(agg, nil)
	result, err := ss.Search(context.Background(), "", "dune")
	require.NoError(t, err)
	agg.AssertExpectations(t)

	assert.Nil(t, result.Query.ISBN)
	require.NotNil(t, result.Query.Q)
	assert.Equal(t, "dune", *result.Query.Q)
	assert.NotNil(t, result.Offers)
	assert.Empty(t, result.Offers)
	assert.Equal(t, BuildPhysicalLinks("dune"), result.PhysicalLinks)

	body, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"offers":[]`)
	assert.Contains(t, string(body), `"book":{}`)
}

func TestSearchService_ISBNWinsOverKeyword(t *testing.T) {
	agg := &MockAggregator{}
	agg.On("Aggregate", mock.Anything, "9780306406157", "9780306406157", "US").Return([]Offer{}, BookMeta{}).Once()

	ss, _ := newTestSearchService(agg, nil)
	result, err := ss.Search(context.Background(), "9780306406157", "signals")
	require.NoError(t, err)
	agg.AssertExpectations(t)

	require.NotNil(t, result.Query.Q)
	assert.Equal(t, "signals", *result.Query.Q)
	assert.Equal(t, "https://www.amazon.com/s?k=9780306406157", result.PhysicalLinks["amazon"])
}

func TestSearchService_TimestampFollowsClock(t *testing.T) {
	agg := &MockAggregator{}
	agg.On("Aggregate", mock.Anything, "go", "", "US").Return([]Offer{}, BookMeta{})

	ss, clock := newTestSearchService(agg, nil)
	clock.Advance(90*time.Minute + 1500*time.Millisecond)

	result, err := ss.Search(context.Background(), "", "go")
	require.NoError(t, err)
	assert.Equal(t, "2023-07-02T01:30:01.500Z", result.TS)
}

func TestSearchService_CachesResults(t *testing.T) {
	agg := &MockAggregator{}
	agg.On("Aggregate", mock.Anything, "9780306406157", "9780306406157", "US").
		Return([]Offer{priced(SourceApple, "ebook", 3)}, BookMeta{Title: "Signals"}).Once()

	cache := newMemoryCache()
	ss, _ := newTestSearchService(agg, cache)

	first, err := ss.Search(context.Background(), "0306406152", "")
	require.NoError(t, err)
	second, err := ss.Search(context.Background(), "9780306406157", "")
	require.NoError(t, err)

	agg.AssertNumberOfCalls(t, "Aggregate", 1)
	assert.Equal(t, first, second)

	key := CacheKey("9780306406157", "")
	assert.Contains(t, cache.entries, key)
	assert.Equal(t, 600*time.Second, cache.ttls[key])
}

func TestSearchService_CacheFailuresAreIgnored(t *testing.T) {
	agg := &MockAggregator{}
	agg.On("Aggregate", mock.Anything, "go", "", "US").Return([]Offer{}, BookMeta{}).Twice()

	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	cache.setErr = errors.New("connection refused")

	core, logs := observer.New(zapcore.WarnLevel)
	ss := NewSearchService(zap.New(core), newTestConfig(), NewMockClocker(), agg, cache)

	for i := 0; i < 2; i++ {
		result, err := ss.Search(context.Background(), "", "go")
		require.NoError(t, err)
		assert.NotNil(t, result)
	}
	agg.AssertExpectations(t)
	assert.Equal(t, 4, logs.Len())
}

func TestSearchService_CorruptedEntryIsRefetched(t *testing.T) {
	agg := &MockAggregator{}
	agg.On("Aggregate", mock.Anything, "go", "", "US").Return([]Offer{}, BookMeta{}).Once()

	cache := newMemoryCache()
	cache.entries[CacheKey("", "go")] = []byte("{not json")

	ss, _ := newTestSearchService(agg, cache)
	_, err := ss.Search(context.Background(), "", "go")
	require.NoError(t, err)
	agg.AssertExpectations(t)
}

func TestSearchService_CancelledRequestIsNotCached(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	agg := &MockAggregator{}
	agg.On("Aggregate", mock.Anything, "go", "", "US").
		Run(func(mock.Arguments) { cancel() }).
		Return([]Offer{}, BookMeta{}).Once()

	cache := newMemoryCache()
	ss, _ := newTestSearchService(agg, cache)

	result, err := ss.Search(ctx, "", "go")
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, cache.entries)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "search:9780306406157|", CacheKey("9780306406157", ""))
	assert.Equal(t, "search:|dune", CacheKey("", "dune"))
}
