package authcore

import (
	"testing"
	"time"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Validation.MinTokenLength != 8 || cfg.Validation.MaxTokenLength != 4096 {
		t.Fatalf("unexpected token length bounds: %d..%d",
			cfg.Validation.MinTokenLength, cfg.Validation.MaxTokenLength)
	}
	if cfg.Validation.MinEntropyBits != 3.0 || cfg.Validation.MinEntropySample != 16 {
		t.Fatalf("unexpected entropy policy: %v/%d",
			cfg.Validation.MinEntropyBits, cfg.Validation.MinEntropySample)
	}
	if cfg.RateLimit.MaxAttempts != 10 || cfg.RateLimit.Window != 60*time.Second {
		t.Fatalf("unexpected rate limit: %d per %v", cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window)
	}
	if cfg.Breaker.MaxRecursion != 3 || cfg.Breaker.ResetInterval != 5*time.Second {
		t.Fatalf("unexpected breaker policy: %d per %v", cfg.Breaker.MaxRecursion, cfg.Breaker.ResetInterval)
	}
	if cfg.Request.LoginTimeout != 15*time.Second ||
		cfg.Request.ProfileTimeout != 8*time.Second ||
		cfg.Request.RefreshTimeout != 5*time.Second ||
		cfg.Request.LogoutTimeout != 5*time.Second {
		t.Fatalf("unexpected request timeouts: %+v", cfg.Request)
	}
	if cfg.Session.FreshnessWindow != 30*time.Second {
		t.Fatalf("unexpected freshness window: %v", cfg.Session.FreshnessWindow)
	}
	if !cfg.Sync.Enabled || cfg.Sync.BufferSize != 16 {
		t.Fatalf("unexpected sync defaults: %+v", cfg.Sync)
	}
	if cfg.Audit.Enabled {
		t.Fatal("audit must be opt-in")
	}
	if !cfg.Metrics.Enabled {
		t.Fatal("metrics must default on")
	}
}

func TestValidateConfigRejectsBadBounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative min length", func(c *Config) { c.Validation.MinTokenLength = -1 }},
		{"min above max", func(c *Config) {
			c.Validation.MinTokenLength = 100
			c.Validation.MaxTokenLength = 10
		}},
		{"negative attempts", func(c *Config) { c.RateLimit.MaxAttempts = -1 }},
		{"negative window", func(c *Config) { c.RateLimit.Window = -time.Second }},
		{"negative recursion", func(c *Config) { c.Breaker.MaxRecursion = -1 }},
		{"negative reset interval", func(c *Config) { c.Breaker.ResetInterval = -time.Second }},
		{"negative timeout", func(c *Config) { c.Request.ProfileTimeout = -time.Second }},
		{"negative freshness", func(c *Config) { c.Session.FreshnessWindow = -time.Second }},
		{"negative sync buffer", func(c *Config) { c.Sync.BufferSize = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := validateConfig(cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateConfigAcceptsDefaults(t *testing.T) {
	if err := validateConfig(DefaultConfig()); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}
