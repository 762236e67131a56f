package telemetry

import (
	"context"
	"testing"
)

func TestSetupProviderWithoutEndpoint(t *testing.T) {
	shutdown, err := SetupProvider(context.Background(), Config{ServiceName: "test"})
	if err != nil {
		t.Fatalf("Expected no-op setup without endpoint, got %v", err)
	}
	if shutdown == nil {
		t.Fatal("Expected a shutdown function")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("No-op shutdown returned error: %v", err)
	}
}
