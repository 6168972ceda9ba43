package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Supported backends of the search results cache.
const (
	CacheBackendNone  = "none"
	CacheBackendRedis = "redis"
	CacheBackendBolt  = "bolt"
)

// MinRequestTimeoutMargin is the time left to a request once every
// upstream call timed out.
const MinRequestTimeoutMargin = time.Second

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit               string          `yaml:"git_commit" envconfig:"BOAP_GIT_COMMIT"`
	GitTag                  string          `yaml:"git_tag" envconfig:"BOAP_GIT_TAG"`
	BuildTime               string          `yaml:"build_time" envconfig:"BOAP_BUILD_TIME"`
	IsProduction            bool            `yaml:"is_production" envconfig:"BOAP_IS_PRODUCTION"`
	LogLevel                zapcore.Level   `yaml:"log_level" envconfig:"BOAP_LOG_LEVEL"`
	LogFolder               string          `yaml:"log_folder" envconfig:"BOAP_LOG_FOLDER"`
	LogMaxSize              int             `yaml:"log_max_size" envconfig:"BOAP_LOG_MAX_SIZE"`
	OpsEndpointsEnable      bool            `yaml:"ops_endpoints_enable" envconfig:"BOAP_OPS_ENDPOINTS_ENABLE"`
	ProfilerEndpointsEnable bool            `yaml:"profiler_endpoints_enable" envconfig:"BOAP_PROFILER_ENDPOINTS_ENABLE"`
	Server                  ServerConfig    `yaml:"server"`
	Sources                 SourcesConfig   `yaml:"sources"`
	Cache                   CacheConfig     `yaml:"cache"`
	Redis                   RedisConfig     `yaml:"redis"`
	BoltDB                  BoltDBConfig    `yaml:"boltdb"`
	RateLimit               RateLimitConfig `yaml:"ratelimit"`
	Tracing                 TracingConfig   `yaml:"tracing"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"BOAP_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"BOAP_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"BOAP_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"BOAP_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"BOAP_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"BOAP_SERVER_SHUTDOWN_TIMEOUT"`
}

// SourcesConfig holds the settings shared by the upstream book catalogs.
type SourcesConfig struct {
	Country        string        `yaml:"country" envconfig:"BOAP_SOURCES_COUNTRY"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"BOAP_SOURCES_TIMEOUT"` // Bound of each single upstream call
	UserAgent      string        `yaml:"user_agent" envconfig:"BOAP_SOURCES_USER_AGENT"`
	AppleURL       string        `yaml:"apple_url" envconfig:"BOAP_SOURCES_APPLE_URL"`
	GoogleBooksURL string        `yaml:"google_books_url" envconfig:"BOAP_SOURCES_GOOGLE_BOOKS_URL"`
	OpenLibraryURL string        `yaml:"open_library_url" envconfig:"BOAP_SOURCES_OPEN_LIBRARY_URL"`
	CoversURL      string        `yaml:"covers_url" envconfig:"BOAP_SOURCES_COVERS_URL"`
	Breaker        BreakerConfig `yaml:"breaker"`
}

type BreakerConfig struct {
	Failures    uint32        `yaml:"failures" envconfig:"BOAP_SOURCES_BREAKER_FAILURES"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"BOAP_SOURCES_BREAKER_TIMEOUT"`
	Interval    time.Duration `yaml:"interval" envconfig:"BOAP_SOURCES_BREAKER_INTERVAL"`
	MaxRequests uint32        `yaml:"max_requests" envconfig:"BOAP_SOURCES_BREAKER_MAX_REQUESTS"`
}

type CacheConfig struct {
	MaxAge               time.Duration `yaml:"max_age" envconfig:"BOAP_CACHE_MAX_AGE"`
	StaleWhileRevalidate time.Duration `yaml:"stale_while_revalidate" envconfig:"BOAP_CACHE_STALE_WHILE_REVALIDATE"`
	Backend              string        `yaml:"backend" envconfig:"BOAP_CACHE_BACKEND"`
	TTL                  time.Duration `yaml:"ttl" envconfig:"BOAP_CACHE_TTL"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"BOAP_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"BOAP_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"BOAP_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"BOAP_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"BOAP_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"BOAP_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"BOAP_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"BOAP_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"BOAP_REDIS_PASSWORD"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"BOAP_REDIS_DATABASE_INDEX"`
}

type BoltDBConfig struct {
	FilePath   string        `yaml:"filepath" envconfig:"BOAP_BOLTDB_FILE_PATH"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"BOAP_BOLTDB_TIMEOUT"`
	BucketName string        `yaml:"bucket_name" envconfig:"BOAP_BOLTDB_BUCKET_NAME"`
}

type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled" envconfig:"BOAP_RATELIMIT_ENABLED"`
	RPS               float64       `yaml:"rps" envconfig:"BOAP_RATELIMIT_RPS"`
	Burst             int           `yaml:"burst" envconfig:"BOAP_RATELIMIT_BURST"`
	Cleanup           time.Duration `yaml:"cleanup" envconfig:"BOAP_RATELIMIT_CLEANUP"`
	TrustProxyHeaders bool          `yaml:"trust_proxy_headers" envconfig:"BOAP_RATELIMIT_TRUST_PROXY_HEADERS"` // Key clients on the right-most X-Forwarded-For hop
}

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" envconfig:"BOAP_TRACING_ENABLED"`
	Endpoint    string  `yaml:"endpoint" envconfig:"BOAP_TRACING_ENDPOINT"`
	Insecure    bool    `yaml:"insecure" envconfig:"BOAP_TRACING_INSECURE"`
	SampleRatio float64 `yaml:"sample_ratio" envconfig:"BOAP_TRACING_SAMPLE_RATIO"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if config.Server.RequestTimeout <= 0 {
		config.Server.RequestTimeout = 30 * time.Second
	}

	if config.Server.ShutdownTimeout <= 0 {
		config.Server.ShutdownTimeout = 10 * time.Second
	}

	if len(config.LogFolder) == 0 {
		config.LogFolder = "./logs"
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = 10
	}

	if err := initSourcesConfig(&config.Sources); err != nil {
		return err
	}

	// a request must outlive its slowest upstream call so the aggregation
	// can still answer with whatever the other sources returned.
	if config.Server.RequestTimeout < config.Sources.Timeout+MinRequestTimeoutMargin {
		return fmt.Errorf("make sure the server request timeout exceeds the sources timeout by at least %s", MinRequestTimeoutMargin)
	}

	if config.RateLimit.Enabled && (config.RateLimit.RPS <= 0 || config.RateLimit.Burst <= 0) {
		return errors.New("make sure to set positive ratelimit rps and burst in configuration file")
	}

	if config.Tracing.Enabled {
		if len(config.Tracing.Endpoint) == 0 {
			return errors.New("make sure to set the tracing endpoint in configuration file")
		}
		if config.Tracing.SampleRatio <= 0 || config.Tracing.SampleRatio > 1 {
			config.Tracing.SampleRatio = 1
		}
	}

	return initCacheConfig(config)
}

func initSourcesConfig(sc *SourcesConfig) error {
	if len(sc.Country) == 0 {
		sc.Country = "US"
	}
	if sc.Timeout <= 0 {
		sc.Timeout = 5 * time.Second
	}
	if len(sc.UserAgent) == 0 {
		sc.UserAgent = "book-offers-api/1.0"
	}
	if len(sc.AppleURL) == 0 {
		sc.AppleURL = DefaultAppleURL
	}
	if len(sc.GoogleBooksURL) == 0 {
		sc.GoogleBooksURL = DefaultGoogleBooksURL
	}
	if len(sc.OpenLibraryURL) == 0 {
		sc.OpenLibraryURL = DefaultOpenLibraryURL
	}
	if len(sc.CoversURL) == 0 {
		sc.CoversURL = DefaultCoversURL
	}
	if sc.Breaker.Failures == 0 {
		sc.Breaker.Failures = 5
	}
	if sc.Breaker.Timeout <= 0 {
		sc.Breaker.Timeout = 30 * time.Second
	}
	if sc.Breaker.MaxRequests == 0 {
		sc.Breaker.MaxRequests = 1
	}
	return nil
}

func initCacheConfig(config *Config) error {
	cc := &config.Cache
	if cc.MaxAge <= 0 {
		cc.MaxAge = 600 * time.Second
	}
	if cc.StaleWhileRevalidate < 0 {
		cc.StaleWhileRevalidate = 0
	}
	if cc.TTL <= 0 || cc.TTL > cc.MaxAge {
		cc.TTL = cc.MaxAge
	}

	switch cc.Backend {
	case "", CacheBackendNone:
		cc.Backend = CacheBackendNone
	case CacheBackendRedis:
		if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
			return errors.New("make sure to set valid redis address and port in configuration file")
		}
	case CacheBackendBolt:
		if len(config.BoltDB.FilePath) == 0 || len(config.BoltDB.BucketName) == 0 {
			return errors.New("make sure to set valid boltdb file path and bucket name in configuration file")
		}
	default:
		return fmt.Errorf("unsupported cache backend %q", cc.Backend)
	}
	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %w", err)
	}

	// Set the environment configuration. The env file is optional.
	err = godotenv.Load("./config.env")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("failed to set environment configurations: %w", err)
	}

	// Use environment variables with prefix `BOAP`.
	err = LoadConfigEnvs("BOAP", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %w", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %w", err)
	}
	return config, nil
}
