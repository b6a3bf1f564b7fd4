//go:build integration
// +build integration

package test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authcore "github.com/rodaquino-OMNI/authcore"
)

// wellFormedToken passes length, shape, threat, and entropy checks.
const wellFormedToken = "a1B2c3D4e5F6g7H8i9J0k1L2m3N4o5P6"

// memoryAPI is a black-box backend stub shared by the integration tests. It
// accepts a single email/password pair and mirrors server-side session state
// so GetProfile answers consistently after login and logout.
type memoryAPI struct {
	mu       sync.Mutex
	email    string
	password string
	user     authcore.UserSnapshot
	active   bool

	loginCalls   int
	profileCalls int
}

func newMemoryAPI() *memoryAPI {
	return &memoryAPI{
		email:    "alice@example.com",
		password: "correct-horse",
		user: authcore.UserSnapshot{
			ID:    "user-1",
			Name:  "Alice",
			Email: "alice@example.com",
			Roles: []string{"admin"},
		},
	}
}

func (m *memoryAPI) Login(ctx context.Context, creds authcore.Credentials) (*authcore.LoginResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginCalls++
	if creds.Email != m.email || creds.Password != m.password {
		return nil, authcore.ErrUnauthorized
	}
	m.active = true
	return &authcore.LoginResponse{User: m.user, Token: wellFormedToken}, nil
}

func (m *memoryAPI) GetProfile(ctx context.Context) (*authcore.UserSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profileCalls++
	if !m.active {
		return nil, authcore.ErrUnauthorized
	}
	user := m.user
	return &user, nil
}

func (m *memoryAPI) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
	return nil
}

func (m *memoryAPI) Refresh(ctx context.Context) (*authcore.RefreshResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return nil, authcore.ErrUnauthorized
	}
	return &authcore.RefreshResponse{Token: wellFormedToken}, nil
}

func (m *memoryAPI) counts() (login, profile int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginCalls, m.profileCalls
}

func newMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr
}

// clientFor returns a fresh client bound to mr. Engines sharing a sync
// channel each need their own connection.
func clientFor(t *testing.T, mr *miniredis.Miniredis) *redis.Client {
	t.Helper()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
