package authcore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rodaquino-OMNI/authcore/broadcast"
	"github.com/rodaquino-OMNI/authcore/internal/breaker"
	"github.com/rodaquino-OMNI/authcore/internal/rate"
	"github.com/rodaquino-OMNI/authcore/internal/requests"
	"github.com/rodaquino-OMNI/authcore/session"
	"github.com/rodaquino-OMNI/authcore/token"
)

// Builder defines a public type used by authcore APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	api          APIClient
	broadcaster  broadcast.Broadcaster[SessionEvent]
	redis        redis.UniversalClient
	auditSink    AuditSink
	sessionStore *session.Store
	deviceKey    string

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithAPIClient describes the withapiclient operation and its observable behavior.
//
// WithAPIClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAPIClient(api APIClient) *Builder {
	b.api = api
	return b
}

// WithBroadcaster describes the withbroadcaster operation and its observable behavior.
//
// WithBroadcaster does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithBroadcaster(bc broadcast.Broadcaster[SessionEvent]) *Builder {
	b.broadcaster = bc
	return b
}

// WithRedis wires a Redis pub/sub broadcaster for cross-instance session
// sync. An explicit WithBroadcaster takes precedence. The client is
// borrowed; Close leaves it open.
//
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithSessionStore wires snapshot persistence. A built engine restores the
// last snapshot saved under deviceKey before serving its first call, and
// keeps the stored snapshot in step with every later transition. The
// restored identity is treated as stale: the first CheckAuth always goes to
// the network.
//
// WithSessionStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithSessionStore(store *session.Store, deviceKey string) *Builder {
	b.sessionStore = store
	b.deviceKey = deviceKey
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.api == nil {
		return nil, errors.New("api client required")
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	engine := &Engine{
		config:     cfg,
		api:        b.api,
		instanceID: uuid.NewString(),
	}

	engine.validator = token.NewValidator(token.Config{
		MinLength:        cfg.Validation.MinTokenLength,
		MaxLength:        cfg.Validation.MaxTokenLength,
		MinEntropyBits:   cfg.Validation.MinEntropyBits,
		MinEntropySample: cfg.Validation.MinEntropySample,
		RateLimit: rate.Config{
			MaxAttempts: cfg.RateLimit.MaxAttempts,
			Window:      cfg.RateLimit.Window,
		},
	})
	engine.loginLimiter = rate.New(rate.Config{
		MaxAttempts: cfg.RateLimit.MaxAttempts,
		Window:      cfg.RateLimit.Window,
	})
	engine.breaker = breaker.New(breaker.Config{
		MaxRecursion:  cfg.Breaker.MaxRecursion,
		ResetInterval: cfg.Breaker.ResetInterval,
	})
	engine.requests = requests.New()
	engine.observers = broadcast.NewMemory[Session](cfg.Sync.BufferSize)
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	if b.sessionStore != nil && b.deviceKey != "" {
		engine.store = b.sessionStore
		engine.storeKey = b.deviceKey
		engine.restoreSnapshot()
		engine.startPersist()
	}

	if cfg.Sync.Enabled {
		bc := b.broadcaster
		if bc == nil && b.redis != nil {
			bc = broadcast.NewRedis[SessionEvent](b.redis, cfg.Sync.Channel, cfg.Sync.BufferSize)
			engine.ownsSync = true
		}
		if bc != nil {
			engine.sync = bc
			engine.startSync()
		}
	}

	b.built = true

	return engine, nil
}

func (e *Engine) startSync() {
	ctx, cancel := context.WithCancel(context.Background())
	e.syncStop = cancel
	e.syncSub = e.sync.Subscribe(ctx, e.instanceID)

	e.syncWg.Add(1)
	go e.runSync(ctx)
}
