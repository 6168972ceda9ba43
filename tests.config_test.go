package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitConfig_Defaults(t *testing.T) {
	config := &Config{Server: ServerConfig{Host: "localhost", Port: "8080"}}
	require.NoError(t, InitConfig(config, "abc123", "v1.0.0", "2023-07-02"))

	assert.Equal(t, "abc123", config.GitCommit)
	assert.Equal(t, "v1.0.0", config.GitTag)
	assert.Equal(t, "2023-07-02", config.BuildTime)
	assert.Equal(t, 30*time.Second, config.Server.RequestTimeout)
	assert.Equal(t, 10*time.Second, config.Server.ShutdownTimeout)
	assert.Equal(t, "./logs", config.LogFolder)
	assert.Equal(t, 10, config.LogMaxSize)

	assert.Equal(t, "US", config.Sources.Country)
	assert.Equal(t, 5*time.Second, config.Sources.Timeout)
	assert.Equal(t, "book-offers-api/1.0", config.Sources.UserAgent)
	assert.Equal(t, DefaultAppleURL, config.Sources.AppleURL)
	assert.Equal(t, DefaultGoogleBooksURL, config.Sources.GoogleBooksURL)
	assert.Equal(t, DefaultOpenLibraryURL, config.Sources.OpenLibraryURL)
	assert.Equal(t, DefaultCoversURL, config.Sources.CoversURL)
	assert.Equal(t, uint32(5), config.Sources.Breaker.Failures)

	assert.Equal(t, 600*time.Second, config.Cache.MaxAge)
	assert.Equal(t, 600*time.Second, config.Cache.TTL)
	assert.Equal(t, CacheBackendNone, config.Cache.Backend)
}

func TestInitConfig_KeepsBuildInfosWhenEmpty(t *testing.T) {
	config := &Config{GitCommit: "file", Server: ServerConfig{Host: "localhost", Port: "8080"}}
	require.NoError(t, InitConfig(config, "", "", ""))
	assert.Equal(t, "file", config.GitCommit)
}

func TestInitConfig_CacheTTLNeverExceedsMaxAge(t *testing.T) {
	config := &Config{
		Server: ServerConfig{Host: "localhost", Port: "8080"},
		Cache:  CacheConfig{MaxAge: time.Minute, TTL: time.Hour},
	}
	require.NoError(t, InitConfig(config, "", "", ""))
	assert.Equal(t, time.Minute, config.Cache.TTL)

	config.Cache.TTL = 30 * time.Second
	require.NoError(t, InitConfig(config, "", "", ""))
	assert.Equal(t, 30*time.Second, config.Cache.TTL)
}

func TestInitConfig_Errors(t *testing.T) {
	testCases := map[string]func(*Config){
		"missing host":            func(c *Config) { c.Server.Host = "" },
		"missing port":            func(c *Config) { c.Server.Port = "" },
		"unknown cache backend":   func(c *Config) { c.Cache.Backend = "memcached" },
		"redis without address":   func(c *Config) { c.Cache.Backend = CacheBackendRedis },
		"bolt without file":       func(c *Config) { c.Cache.Backend = CacheBackendBolt },
		"ratelimit without rps":   func(c *Config) { c.RateLimit = RateLimitConfig{Enabled: true, Burst: 1} },
		"ratelimit without burst": func(c *Config) { c.RateLimit = RateLimitConfig{Enabled: true, RPS: 1} },
		"tracing without target":  func(c *Config) { c.Tracing.Enabled = true },
		"request timeout below sources timeout": func(c *Config) {
			c.Server.RequestTimeout = 2 * time.Second
			c.Sources.Timeout = 5 * time.Second
		},
		"request timeout without margin": func(c *Config) {
			c.Server.RequestTimeout = 5 * time.Second
			c.Sources.Timeout = 5 * time.Second
		},
	}
	for name, mutate := range testCases {
		t.Run(name, func(t *testing.T) {
			config := &Config{Server: ServerConfig{Host: "localhost", Port: "8080"}}
			mutate(config)
			assert.Error(t, InitConfig(config, "", "", ""))
		})
	}
}

func TestInitConfig_RequestTimeoutOutlivesSources(t *testing.T) {
	config := &Config{
		Server:  ServerConfig{Host: "localhost", Port: "8080", RequestTimeout: 6 * time.Second},
		Sources: SourcesConfig{Timeout: 5 * time.Second},
	}
	require.NoError(t, InitConfig(config, "", "", ""))
	assert.Equal(t, 6*time.Second, config.Server.RequestTimeout)

	// the default request timeout is checked against a long sources timeout too.
	config = &Config{
		Server:  ServerConfig{Host: "localhost", Port: "8080"},
		Sources: SourcesConfig{Timeout: time.Minute},
	}
	assert.Error(t, InitConfig(config, "", "", ""))
}

func TestInitConfig_TracingSampleRatio(t *testing.T) {
	config := &Config{
		Server:  ServerConfig{Host: "localhost", Port: "8080"},
		Tracing: TracingConfig{Enabled: true, Endpoint: "localhost:4318", SampleRatio: 3},
	}
	require.NoError(t, InitConfig(config, "", "", ""))
	assert.Equal(t, 1.0, config.Tracing.SampleRatio)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
log_level: debug
server:
  host: 127.0.0.1
  port: "9000"
sources:
  country: GB
  timeout: 2s
cache:
  max_age: 120s
  stale_while_revalidate: 30s
  backend: bolt
boltdb:
  filepath: ./data/test.db
  bucket_name: searches
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	config, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, config.LogLevel)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, "9000", config.Server.Port)
	assert.Equal(t, "GB", config.Sources.Country)
	assert.Equal(t, 2*time.Second, config.Sources.Timeout)
	assert.Equal(t, 120*time.Second, config.Cache.MaxAge)
	require.NoError(t, InitConfig(config, "", "", ""))
	assert.Equal(t, "s-maxage=120, stale-while-revalidate=30", CacheControlValue(&config.Cache))

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoadConfigEnvs(t *testing.T) {
	t.Setenv("BOAP_SERVER_PORT", "9090")
	t.Setenv("BOAP_SOURCES_COUNTRY", "FR")
	t.Setenv("BOAP_CACHE_MAX_AGE", "5m")
	t.Setenv("BOAP_RATELIMIT_ENABLED", "true")

	config := &Config{Server: ServerConfig{Host: "localhost", Port: "8080"}}
	require.NoError(t, LoadConfigEnvs("BOAP", config))
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, "9090", config.Server.Port)
	assert.Equal(t, "FR", config.Sources.Country)
	assert.Equal(t, 5*time.Minute, config.Cache.MaxAge)
	assert.True(t, config.RateLimit.Enabled)
}
