package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDsHandler(t *testing.T) {
	idh := NewIDsHandler()
	id := idh.Generate(RequestIDPrefix)
	require.True(t, strings.HasPrefix(id, "r:"))
	assert.True(t, idh.IsValid(id, RequestIDPrefix))
	assert.NotEqual(t, id, idh.Generate(RequestIDPrefix))
	assert.False(t, idh.IsValid("r:not-a-uuid", RequestIDPrefix))
}

func TestGetRequestSourceIP(t *testing.T) {
	testCases := []struct {
		name      string
		realIP    string
		forwarded string
		remote    string
		expected  string
	}{
		{"real ip header wins", "10.0.0.1", "10.0.0.2", "10.0.0.3:80", "10.0.0.1"},
		{"first valid forwarded address", "", "garbage, 10.0.0.2, 10.0.0.4", "10.0.0.3:80", "10.0.0.2"},
		{"remote address", "", "", "10.0.0.3:80", "10.0.0.3"},
		{"invalid remote address", "", "", "nowhere", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("X-Real-IP", tc.realIP)
			r.Header.Set("X-Forwarded-For", tc.forwarded)
			r.RemoteAddr = tc.remote
			assert.Equal(t, tc.expected, GetRequestSourceIP(r))
		})
	}
}

func TestGetProxiedClientIP(t *testing.T) {
	testCases := []struct {
		name      string
		realIP    string
		forwarded string
		remote    string
		expected  string
	}{
		{"right-most forwarded hop", "10.0.0.1", "198.51.100.9, 10.0.0.2, 10.0.0.4", "10.0.0.3:80", "10.0.0.4"},
		{"single forwarded hop", "", "10.0.0.2", "10.0.0.3:80", "10.0.0.2"},
		{"invalid last hop uses real ip", "10.0.0.1", "10.0.0.2, garbage", "10.0.0.3:80", "10.0.0.1"},
		{"no headers", "", "", "10.0.0.3:80", "10.0.0.3"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("X-Real-IP", tc.realIP)
			r.Header.Set("X-Forwarded-For", tc.forwarded)
			r.RemoteAddr = tc.remote
			assert.Equal(t, tc.expected, GetProxiedClientIP(r))
		})
	}
}

func TestCustomResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := NewCustomResponseWriter(rec)
	assert.Equal(t, http.StatusOK, cw.Status())

	cw.WriteHeader(http.StatusAccepted)
	cw.WriteHeader(http.StatusTeapot)
	n, err := cw.Write([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusAccepted, cw.Status())
	assert.Equal(t, 5, cw.Bytes())
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Same(t, rec, cw.Unwrap())
}

func TestWriteJSON_SkipsDoneRequests(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cw := NewCustomResponseWriter(httptest.NewRecorder())
	err := WriteJSON(ctx, cw, http.StatusOK, map[string]string{"a": "b"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusClientClosedRequest, cw.Status())
	assert.Zero(t, cw.Bytes())

	ctx, cancel = context.WithTimeout(context.Background(), 0)
	defer cancel()
	cw = NewCustomResponseWriter(httptest.NewRecorder())
	err = WriteJSON(ctx, cw, http.StatusOK, map[string]string{"a": "b"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, http.StatusGatewayTimeout, cw.Status())
}

func TestTimestamp(t *testing.T) {
	clock := &MockClocker{MockNow: time.Date(2023, 7, 2, 9, 15, 30, 250_000_000, time.FixedZone("UTC+2", 2*60*60))}
	assert.Equal(t, "2023-07-02T07:15:30.250Z", Timestamp(clock))

	tc := NewTickClock(clock)
	assert.Equal(t, clock.Now(), tc.Now())
	ticker := tc.NewTicker(time.Hour)
	ticker.Stop()
}
