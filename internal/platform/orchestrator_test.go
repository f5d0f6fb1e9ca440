package platform

import (
	"context"
	"errors"
	"testing"
	"time"
)

type blockingComponent struct {
	name    string
	healthy bool
	fail    error
}

func (c *blockingComponent) Name() string { return c.name }

func (c *blockingComponent) Run(ctx context.Context) error {
	if c.fail != nil {
		return c.fail
	}
	<-ctx.Done()
	return ctx.Err()
}

func (c *blockingComponent) Healthy() bool { return c.healthy }

func TestRunStopsCleanlyOnCancel(t *testing.T) {
	o := New(&blockingComponent{name: "a", healthy: true}, &blockingComponent{name: "b", healthy: true})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() after cancel = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestComponentFailureStopsPlatform(t *testing.T) {
	boom := errors.New("boom")
	o := New(
		&blockingComponent{name: "healthy", healthy: true},
		&blockingComponent{name: "broken", fail: boom},
	)

	done := make(chan error, 1)
	go func() { done <- o.Run(context.Background()) }()

	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Errorf("Run() = %v, want the component failure", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("component failure did not stop the platform")
	}
}

func TestHealthAggregation(t *testing.T) {
	o := New(
		&blockingComponent{name: "up", healthy: true},
		&blockingComponent{name: "down", healthy: false},
	)

	health := o.Health()
	if !health["up"] || health["down"] {
		t.Errorf("Health() = %v, want up=true down=false", health)
	}
}
