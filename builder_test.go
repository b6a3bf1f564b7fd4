package authcore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestBuildRequiresAPIClient(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected error without api client")
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit.MaxAttempts = -1

	if _, err := New().WithConfig(cfg).WithAPIClient(&fakeAPI{}).Build(); err == nil {
		t.Fatal("expected config validation error")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().WithAPIClient(&fakeAPI{})

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := b.Build(); err == nil {
		t.Fatal("expected error on builder reuse")
	}
}

func TestBuildAssignsInstanceID(t *testing.T) {
	a := newTestEngine(t, &fakeAPI{})
	b := newTestEngine(t, &fakeAPI{})

	if a.InstanceID() == "" {
		t.Fatal("expected instance id")
	}
	if a.InstanceID() == b.InstanceID() {
		t.Fatal("instance ids must be unique")
	}
}

func TestWithRedisWiresSync(t *testing.T) {
	_, client := newTestRedis(t)

	apiA := &fakeAPI{
		loginResp: &LoginResponse{User: *testUser(), Token: validTestToken},
	}
	engineA, err := New().WithAPIClient(apiA).WithRedis(client).Build()
	if err != nil {
		t.Fatalf("Build A failed: %v", err)
	}
	t.Cleanup(engineA.Close)

	engineB, err := New().WithAPIClient(&fakeAPI{}).WithRedis(client).Build()
	if err != nil {
		t.Fatalf("Build B failed: %v", err)
	}
	t.Cleanup(engineB.Close)

	// Give the asynchronous SUBSCRIBE a moment to register.
	time.Sleep(100 * time.Millisecond)

	_, _ = engineA.Login(context.Background(), Credentials{Email: "a@b.c", Password: "pw"})

	waitFor(t, func() bool {
		return engineB.State().Phase == PhaseAuthenticated
	})
}

func TestCloseIdempotent(t *testing.T) {
	engine := newTestEngine(t, &fakeAPI{})
	engine.Close()
	engine.Close()
}

func TestCloseCancelsInFlight(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	api := &fakeAPI{
		profileResp: testUser(),
		profileGate: gate,
	}
	engine := newTestEngine(t, api)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = engine.CheckAuth(context.Background())
	}()

	waitFor(t, func() bool {
		_, profile, _, _ := api.calls()
		return profile == 1
	})

	engine.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close must cancel in-flight requests")
	}
}
