// Package config defines service configuration and its loading layers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Session store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json records.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RosterSource is a file path or http(s) URL of the player roster.
	RosterSource string `koanf:"roster_source"`
	// RosterCacheTTLSeconds bounds how long a fetched roster is reused.
	RosterCacheTTLSeconds int `koanf:"roster_cache_ttl_s"`

	// ExplicitListThreshold is the candidate count at or below which names are listed.
	ExplicitListThreshold int `koanf:"explicit_list_threshold"`

	// SessionStore is "memory" or "redis".
	SessionStore string `koanf:"session_store"`
	// SessionTTLSeconds expires idle sessions.
	SessionTTLSeconds int `koanf:"session_ttl_s"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisPrefix   string `koanf:"redis_prefix"`

	// OutcomeQueueSize bounds the in-memory outcome queue.
	OutcomeQueueSize int `koanf:"outcome_queue_size"`
	// OutcomeWorkers sets the number of tally workers.
	OutcomeWorkers int `koanf:"outcome_workers"`

	// DedupeSize caps remembered answer idempotency keys.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxTopLimit caps GET /players/top?limit.
	MaxTopLimit int `koanf:"max_top_limit"`

	// CORSOrigins is a comma-separated list of allowed browser origins.
	CORSOrigins string `koanf:"cors_origins"`
	// RateLimitRequests caps API requests per IP per window; 0 disables.
	RateLimitRequests int `koanf:"rate_limit_requests"`
	RateLimitWindowS  int `koanf:"rate_limit_window_s"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		RosterSource:          "data/players.json",
		RosterCacheTTLSeconds: 3600,
		ExplicitListThreshold: 5,
		SessionStore:          StoreMemory,
		SessionTTLSeconds:     3600,
		RedisAddr:             "localhost:6379",
		RedisPrefix:           "legend:session:",
		OutcomeQueueSize:      1024,
		OutcomeWorkers:        4,
		DedupeSize:            50_000,
		MaxTopLimit:           100,
		RateLimitRequests:     600,
		RateLimitWindowS:      60,
	}
}

// AllowedOrigins splits CORSOrigins, dropping blanks.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// RateLimitWindow returns the rate limit window as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowS) * time.Second
}

// SessionTTL returns the session expiry as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// RosterCacheTTL returns the roster cache lifetime as a duration.
func (c *Config) RosterCacheTTL() time.Duration {
	return time.Duration(c.RosterCacheTTLSeconds) * time.Second
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.RosterSource) == "":
		return fmt.Errorf("%w: roster_source must not be empty", ErrInvalidConfig)
	case c.ExplicitListThreshold < 1:
		return fmt.Errorf("%w: explicit_list_threshold must be positive, got %d", ErrInvalidConfig, c.ExplicitListThreshold)
	case c.SessionStore != StoreMemory && c.SessionStore != StoreRedis:
		return fmt.Errorf("%w: session_store must be %q or %q, got %q", ErrInvalidConfig, StoreMemory, StoreRedis, c.SessionStore)
	case c.SessionStore == StoreRedis && strings.TrimSpace(c.RedisAddr) == "":
		return fmt.Errorf("%w: redis_addr is required for the redis store", ErrInvalidConfig)
	case c.SessionTTLSeconds < 0 || c.RosterCacheTTLSeconds < 0:
		return fmt.Errorf("%w: ttl values must not be negative", ErrInvalidConfig)
	case c.OutcomeQueueSize < 1 || c.OutcomeWorkers < 1:
		return fmt.Errorf("%w: outcome_queue_size and outcome_workers must be positive", ErrInvalidConfig)
	case c.MaxTopLimit < 1:
		return fmt.Errorf("%w: max_top_limit must be positive, got %d", ErrInvalidConfig, c.MaxTopLimit)
	case c.RateLimitRequests < 0 || (c.RateLimitRequests > 0 && c.RateLimitWindowS < 1):
		return fmt.Errorf("%w: rate_limit_requests needs a positive rate_limit_window_s", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
