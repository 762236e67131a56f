package governance

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewTimeoutManagerDefaults(t *testing.T) {
	tm := NewTimeoutManager(TimeoutConfig{})
	cfg := tm.Config()

	if cfg.TextGeneration != 25*time.Second {
		t.Errorf("Expected 25s text budget, got %v", cfg.TextGeneration)
	}
	if cfg.ImageGeneration != 60*time.Second {
		t.Errorf("Expected 60s image budget, got %v", cfg.ImageGeneration)
	}
}

func TestTimeoutManagerConfigure(t *testing.T) {
	tm := NewTimeoutManager(DefaultTimeoutConfig())

	if err := tm.Configure(TimeoutConfig{TextGeneration: time.Second, ImageGeneration: 2 * time.Second}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tm.Config().TextGeneration != time.Second {
		t.Errorf("Expected 1s text budget, got %v", tm.Config().TextGeneration)
	}

	if err := tm.Configure(TimeoutConfig{TextGeneration: 0, ImageGeneration: time.Second}); err == nil {
		t.Error("Expected error for zero text budget")
	}
	if err := tm.Configure(TimeoutConfig{TextGeneration: time.Second, ImageGeneration: -1}); err == nil {
		t.Error("Expected error for negative image budget")
	}
}

func TestWithTextTimeoutArmsDeadline(t *testing.T) {
	tm := NewTimeoutManager(TimeoutConfig{TextGeneration: 10 * time.Millisecond, ImageGeneration: time.Minute})

	ctx, cancel := tm.WithTextTimeout(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("Expected context deadline")
	}
	if until := time.Until(deadline); until > 10*time.Millisecond {
		t.Errorf("Deadline too far out: %v", until)
	}

	<-ctx.Done()
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", ctx.Err())
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(context.DeadlineExceeded) {
		t.Error("Expected deadline exceeded to count as timeout")
	}
	if !IsTimeout(ErrRequestTimeout) {
		t.Error("Expected ErrRequestTimeout to count as timeout")
	}
	if IsTimeout(errors.New("connection refused")) {
		t.Error("Expected unrelated error to not count as timeout")
	}
	if IsTimeout(nil) {
		t.Error("Expected nil to not count as timeout")
	}
}
