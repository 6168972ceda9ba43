package main

import (
	"time"
)

var (
	_ Clocker       = (*Clock)(nil)
	_ TickerClocker = (*TickClock)(nil)
)

// TimestampLayout renders UTC instants with millisecond precision,
// the format of the `ts` field of search results.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Clocker is the time source of log entries, cache expiries,
// maintenance dates and search results timestamps.
type Clocker interface {
	Now() time.Time
}

// TickerClocker is a Clocker able to drive periodic jobs such
// as the log flusher and the rate limiter cleanup.
type TickerClocker interface {
	Clocker
	NewTicker(time.Duration) *time.Ticker
}

// Clock reads the wall time in a fixed location.
type Clock struct {
	tz *time.Location
}

// NewClock uses UTC in production and the host local zone otherwise
// so development logs read naturally.
func NewClock(isProd bool) *Clock {
	if isProd {
		return &Clock{time.UTC}
	}
	return &Clock{time.Local}
}

func (ck *Clock) Now() time.Time {
	return time.Now().In(ck.tz)
}

// TickClock adds real tickers to any Clocker.
type TickClock struct {
	Clocker
}

func NewTickClock(ck Clocker) *TickClock {
	return &TickClock{ck}
}

func (tc *TickClock) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// Timestamp formats the current instant of ck in UTC.
func Timestamp(ck Clocker) string {
	return ck.Now().UTC().Format(TimestampLayout)
}
