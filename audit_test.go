package authcore

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type captureSink struct {
	events chan AuditEvent
}

func newCaptureSink(buffer int) *captureSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &captureSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *captureSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func buildAuditTestEngine(t *testing.T, sink AuditSink, api APIClient) *Engine {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Sync.Enabled = false
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 16
	cfg.Audit.DropIfFull = true

	engine, err := New().
		WithConfig(cfg).
		WithAPIClient(api).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	sink := &countingSink{}
	api := &fakeAPI{loginErr: ErrUnauthorized}

	cfg := DefaultConfig()
	cfg.Sync.Enabled = false
	cfg.Audit.Enabled = false

	engine, err := New().WithConfig(cfg).WithAPIClient(api).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	_, _ = engine.Login(context.Background(), Credentials{Email: "a@b.c", Password: "bad"})
	engine.Close()

	if sink.Count() != 0 {
		t.Fatalf("expected no audit calls when disabled, got %d", sink.Count())
	}
}

func TestAuditLoginFailureEventSanitized(t *testing.T) {
	sink := newCaptureSink(8)
	api := &fakeAPI{loginErr: ErrUnauthorized}
	engine := buildAuditTestEngine(t, sink, api)

	const secret = "super-secret-password"
	ctx := WithClientKey(context.Background(), "198.51.100.33")
	_, _ = engine.Login(ctx, Credentials{Email: "alice@example.test", Password: secret})

	select {
	case ev := <-sink.events:
		if ev.EventType != auditEventLoginFailure {
			t.Fatalf("expected login failure event, got %q", ev.EventType)
		}
		if ev.ClientKey != "198.51.100.33" {
			t.Fatalf("expected client key, got %q", ev.ClientKey)
		}
		if ev.Error != string(auditErrInvalidCredentials) {
			t.Fatalf("expected invalid_credentials code, got %q", ev.Error)
		}
		if strings.Contains(ev.Error, secret) {
			t.Fatal("password leaked into audit error")
		}
		for _, v := range ev.Metadata {
			if strings.Contains(v, secret) {
				t.Fatal("password leaked into audit metadata")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected audit event")
	}
}

func TestAuditLoginSuccessEvent(t *testing.T) {
	sink := newCaptureSink(8)
	api := &fakeAPI{
		loginResp: &LoginResponse{User: *testUser(), Token: validTestToken},
	}
	engine := buildAuditTestEngine(t, sink, api)

	_, _ = engine.Login(context.Background(), Credentials{Email: "a@b.c", Password: "pw"})

	select {
	case ev := <-sink.events:
		if ev.EventType != auditEventLoginSuccess {
			t.Fatalf("expected login success event, got %q", ev.EventType)
		}
		if !ev.Success {
			t.Fatal("expected success flag")
		}
		if ev.UserID != "u1" {
			t.Fatalf("expected user id, got %q", ev.UserID)
		}
		if ev.Phase != PhaseAuthenticated.String() {
			t.Fatalf("expected authenticated phase, got %q", ev.Phase)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected audit event")
	}
}

func TestAuditDispatcherDropIfFullDoesNotBlock(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	start := time.Now()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking emit when DropIfFull is true")
	}

	if dispatcher.Dropped() == 0 {
		t.Fatal("expected dropped counter to advance")
	}
}

func TestAuditDispatcherDrainsOnClose(t *testing.T) {
	sink := &countingSink{}
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 32,
		DropIfFull: true,
	}, sink)

	for i := 0; i < 10; i++ {
		dispatcher.Emit(context.Background(), AuditEvent{EventType: "e"})
	}
	dispatcher.Close()

	if got := sink.Count(); got != 10 {
		t.Fatalf("expected all queued events delivered on close, got %d", got)
	}
}

func TestAuditDispatcherDisabledIsNil(t *testing.T) {
	dispatcher := newAuditDispatcher(AuditConfig{Enabled: false}, &countingSink{})
	if dispatcher != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	dispatcher.Emit(context.Background(), AuditEvent{})
	dispatcher.Close()
	if dispatcher.Dropped() != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
}

func TestJSONWriterSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		EventType: "logout",
		Success:   true,
	})

	line := strings.TrimSpace(buf.String())
	var decoded AuditEvent
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("invalid JSON line: %v", err)
	}
	if decoded.EventType != "logout" || !decoded.Success {
		t.Fatalf("unexpected decoded event: %+v", decoded)
	}
}

func TestChannelSinkDelivers(t *testing.T) {
	sink := NewChannelSink(4)
	sink.Emit(context.Background(), AuditEvent{EventType: "check_success"})

	select {
	case ev := <-sink.Events():
		if ev.EventType != "check_success" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("expected buffered event")
	}
}
