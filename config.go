package authcore

import (
	"errors"
	"time"
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Validation ValidationConfig
	RateLimit  RateLimitConfig
	Breaker    BreakerConfig
	Request    RequestConfig
	Session    SessionConfig
	Sync       SyncConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
VALIDATION CONFIG
====================================
*/

// ValidationConfig defines a public type used by authcore APIs.
//
// ValidationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ValidationConfig struct {
	MinTokenLength   int
	MaxTokenLength   int
	MinEntropyBits   float64
	MinEntropySample int
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig defines a public type used by authcore APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	MaxAttempts int
	Window      time.Duration
}

/*
====================================
CIRCUIT BREAKER CONFIG
====================================
*/

// BreakerConfig defines a public type used by authcore APIs.
//
// BreakerConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BreakerConfig struct {
	MaxRecursion  int
	ResetInterval time.Duration
}

/*
====================================
REQUEST CONFIG
====================================
*/

// RequestConfig holds per-operation timeouts. These are policy constants,
// not hard requirements; deployments tune them to their network profile.
type RequestConfig struct {
	LoginTimeout   time.Duration
	ProfileTimeout time.Duration
	RefreshTimeout time.Duration
	LogoutTimeout  time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by authcore APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// FreshnessWindow is the debounce interval: an Authenticated session
	// whose last successful check is younger than this skips the remote
	// round-trip on CheckAuth.
	FreshnessWindow time.Duration
}

/*
====================================
SYNC CONFIG
====================================
*/

// SyncConfig defines a public type used by authcore APIs.
//
// SyncConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SyncConfig struct {
	Enabled    bool
	BufferSize int
	// Channel names the Redis channel when a Redis broadcaster is wired
	// via [Builder.WithRedis]. Empty selects the package default.
	Channel string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by authcore APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by authcore APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline policy: 8 to 4096 char tokens, 3.0-bit
// entropy floor over 16+ char samples, 10 attempts per 60s window, 3
// recursive checks per 5s, login 15s / profile 8s / refresh 5s timeouts,
// and a 30s freshness window.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Validation: ValidationConfig{
			MinTokenLength:   8,
			MaxTokenLength:   4096,
			MinEntropyBits:   3.0,
			MinEntropySample: 16,
		},
		RateLimit: RateLimitConfig{
			MaxAttempts: 10,
			Window:      60 * time.Second,
		},
		Breaker: BreakerConfig{
			MaxRecursion:  3,
			ResetInterval: 5 * time.Second,
		},
		Request: RequestConfig{
			LoginTimeout:   15 * time.Second,
			ProfileTimeout: 8 * time.Second,
			RefreshTimeout: 5 * time.Second,
			LogoutTimeout:  5 * time.Second,
		},
		Session: SessionConfig{
			FreshnessWindow: 30 * time.Second,
		},
		Sync: SyncConfig{
			Enabled:    true,
			BufferSize: 16,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; the clone exists so future
	// reference-typed fields cannot leak shared state through the Builder.
	return cfg
}

func validateConfig(cfg Config) error {
	if cfg.Validation.MinTokenLength < 0 || cfg.Validation.MaxTokenLength < 0 {
		return errors.New("negative token length bound")
	}
	if cfg.Validation.MaxTokenLength > 0 && cfg.Validation.MinTokenLength > cfg.Validation.MaxTokenLength {
		return errors.New("MinTokenLength exceeds MaxTokenLength")
	}
	if cfg.RateLimit.MaxAttempts < 0 {
		return errors.New("negative rate limit budget")
	}
	if cfg.RateLimit.Window < 0 {
		return errors.New("negative rate limit window")
	}
	if cfg.Breaker.MaxRecursion < 0 {
		return errors.New("negative breaker recursion bound")
	}
	if cfg.Breaker.ResetInterval < 0 {
		return errors.New("negative breaker reset interval")
	}
	if cfg.Request.LoginTimeout < 0 || cfg.Request.ProfileTimeout < 0 ||
		cfg.Request.RefreshTimeout < 0 || cfg.Request.LogoutTimeout < 0 {
		return errors.New("negative request timeout")
	}
	if cfg.Session.FreshnessWindow < 0 {
		return errors.New("negative freshness window")
	}
	if cfg.Sync.BufferSize < 0 {
		return errors.New("negative sync buffer size")
	}
	if cfg.Audit.Enabled && cfg.Audit.BufferSize < 0 {
		return errors.New("negative audit buffer size")
	}
	return nil
}
