package governance

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRequestTimeout is returned when an upstream call exceeds its budget.
var ErrRequestTimeout = errors.New("request timeout exceeded")

// TimeoutConfig defines the upstream call budgets per request variant.
// Image generation is given a longer budget than text because the upstream
// model is slower per request.
type TimeoutConfig struct {
	// TextGeneration is the maximum duration for a text-generation call.
	TextGeneration time.Duration
	// ImageGeneration is the maximum duration for an image-generation call.
	ImageGeneration time.Duration
}

// DefaultTimeoutConfig returns the standard budgets.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		TextGeneration:  25 * time.Second,
		ImageGeneration: 60 * time.Second,
	}
}

// TimeoutManager arms cancellation for upstream calls.
type TimeoutManager struct {
	config TimeoutConfig
}

// NewTimeoutManager creates a timeout manager with the given configuration,
// falling back to defaults for non-positive budgets.
func NewTimeoutManager(config TimeoutConfig) *TimeoutManager {
	defaults := DefaultTimeoutConfig()
	if config.TextGeneration <= 0 {
		config.TextGeneration = defaults.TextGeneration
	}
	if config.ImageGeneration <= 0 {
		config.ImageGeneration = defaults.ImageGeneration
	}
	return &TimeoutManager{config: config}
}

// Config returns a copy of the current timeout configuration.
func (tm *TimeoutManager) Config() TimeoutConfig {
	return tm.config
}

// Configure replaces the budgets after validating them.
func (tm *TimeoutManager) Configure(config TimeoutConfig) error {
	if config.TextGeneration <= 0 {
		return fmt.Errorf("text generation timeout must be positive")
	}
	if config.ImageGeneration <= 0 {
		return fmt.Errorf("image generation timeout must be positive")
	}
	tm.config = config
	return nil
}

// WithTextTimeout arms the text-generation budget on the context.
func (tm *TimeoutManager) WithTextTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, tm.config.TextGeneration)
}

// WithImageTimeout arms the image-generation budget on the context.
func (tm *TimeoutManager) WithImageTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, tm.config.ImageGeneration)
}

// IsTimeout reports whether an upstream call failed by exhausting its budget.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrRequestTimeout)
}
