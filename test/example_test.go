package test

import (
	"context"

	"github.com/redis/go-redis/v9"

	authcore "github.com/rodaquino-OMNI/authcore"
)

// ExampleNew demonstrates engine construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	api := &exampleAPIClient{}

	engine, _ := authcore.New().
		WithAPIClient(api).
		WithRedis(rdb).
		Build()
	_ = engine
}

// ExampleEngine_Login shows a typical login entrypoint call and structured error handling.
func ExampleEngine_Login() {
	var engine *authcore.Engine
	result, err := engine.Login(context.Background(), authcore.Credentials{
		Email:    "alice@example.com",
		Password: "password",
	})
	if err != nil {
		// result.Error is safe to show; err carries the structured cause.
		_ = result.Error
	}
}

// ExampleEngine_Subscribe shows how to observe session transitions.
func ExampleEngine_Subscribe() {
	var engine *authcore.Engine
	sub := engine.Subscribe(context.Background())
	if sub != nil {
		for msg := range sub.Receive() {
			_ = msg.Payload.Phase
		}
	}
}

// ExampleEngine_MetricsSnapshot shows how to read in-process metrics counters.
func ExampleEngine_MetricsSnapshot() {
	var engine *authcore.Engine
	snapshot := engine.MetricsSnapshot()
	_ = snapshot.Counters[authcore.MetricLoginSuccess]
}

type exampleAPIClient struct{}

func (e *exampleAPIClient) Login(ctx context.Context, creds authcore.Credentials) (*authcore.LoginResponse, error) {
	return &authcore.LoginResponse{}, nil
}

func (e *exampleAPIClient) GetProfile(ctx context.Context) (*authcore.UserSnapshot, error) {
	return &authcore.UserSnapshot{}, nil
}

func (e *exampleAPIClient) Logout(ctx context.Context) error { return nil }

func (e *exampleAPIClient) Refresh(ctx context.Context) (*authcore.RefreshResponse, error) {
	return &authcore.RefreshResponse{}, nil
}
