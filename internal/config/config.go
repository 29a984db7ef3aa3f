// Package config loads gridiron settings from the environment (and an
// optional .env file).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

// Cache backends
const (
	CacheBackendRedis    = "redis"
	CacheBackendPostgres = "postgres"
	CacheBackendMemory   = "memory"
)

// HTML source fetch modes
const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Config holds all application configuration
type Config struct {
	RESTPort  string
	LogLevel  string
	LogFormat string

	CacheBackend string
	CacheTTL     time.Duration
	RedisURL     string
	DatabaseURL  string

	ESPNAPIBase          string
	PFRBaseURL           string
	PFRFetchMode         string
	PFRRequestsPerMinute int
	FetchTimeout         time.Duration

	RetryMaxAttempts  int
	RetryBaseDelay    time.Duration
	FanoutConcurrency int

	EnableWarmer bool
	WarmInterval time.Duration

	CORSAllowOrigins []string
	APIRateLimitRPS  float64
}

// Load reads configuration from environment variables with defaults.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		RESTPort:  getEnv("REST_PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		CacheBackend: strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendMemory)),
		CacheTTL:     getDuration("CACHE_TTL", 10*time.Minute),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		ESPNAPIBase:          getEnv("ESPN_API_BASE", "https://site.api.espn.com/apis/site/v2/sports/football/nfl"),
		PFRBaseURL:           getEnv("PFR_BASE_URL", "https://www.pro-football-reference.com"),
		PFRFetchMode:         strings.ToLower(getEnv("PFR_FETCH_MODE", FetchModeHTTP)),
		PFRRequestsPerMinute: getInt("PFR_REQUESTS_PER_MINUTE", 18),
		FetchTimeout:         getDuration("FETCH_TIMEOUT", 15*time.Second),

		RetryMaxAttempts:  getInt("RETRY_MAX_ATTEMPTS", 3),
		RetryBaseDelay:    getDuration("RETRY_BASE_DELAY", 500*time.Millisecond),
		FanoutConcurrency: getInt("FANOUT_CONCURRENCY", 6),

		EnableWarmer: getEnv("ENABLE_WARMER", "true") == "true",
		WarmInterval: getDuration("WARM_INTERVAL", 5*time.Minute),

		CORSAllowOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
		APIRateLimitRPS:  getFloat("API_RATE_LIMIT_RPS", 20),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the process cannot start with.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case CacheBackendRedis, CacheBackendMemory:
	case CacheBackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when CACHE_BACKEND=postgres")
		}
	default:
		return errors.Newf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}

	switch c.PFRFetchMode {
	case FetchModeHTTP, FetchModeBrowser:
	default:
		return errors.Newf("unknown PFR_FETCH_MODE %q", c.PFRFetchMode)
	}

	if c.CacheTTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	if c.RetryMaxAttempts < 1 {
		c.RetryMaxAttempts = 1
	}
	if c.FanoutConcurrency < 1 {
		c.FanoutConcurrency = 1
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return defaultValue
}

// getDuration accepts Go durations ("90s") or bare milliseconds ("600000").
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
