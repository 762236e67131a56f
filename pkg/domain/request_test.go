package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestGenerateRequestValidate(t *testing.T) {
	allowlist := DefaultFeatures()
	allowed := NewFeatureSet(allowlist)

	valid := GenerateRequest{
		Feature:  FeatureChefCopilot,
		Contents: json.RawMessage(`[{"role":"user","parts":[{"text":"hi"}]}]`),
	}
	if err := valid.Validate(allowed, allowlist); err != nil {
		t.Fatalf("Expected valid request to pass, got %v", err)
	}

	tests := []struct {
		name    string
		req     GenerateRequest
		wantMsg string
	}{
		{
			name:    "unknown feature",
			req:     GenerateRequest{Feature: "crypto_mining", Contents: json.RawMessage(`[]`)},
			wantMsg: `Invalid feature "crypto_mining"`,
		},
		{
			name:    "empty feature",
			req:     GenerateRequest{Contents: json.RawMessage(`[]`)},
			wantMsg: "Invalid feature",
		},
		{
			name:    "missing contents",
			req:     GenerateRequest{Feature: FeatureChefCopilot},
			wantMsg: "Invalid contents: must be an array",
		},
		{
			name:    "contents not an array",
			req:     GenerateRequest{Feature: FeatureChefCopilot, Contents: json.RawMessage(`{"role":"user"}`)},
			wantMsg: "Invalid contents: must be an array",
		},
		{
			name: "model with path traversal",
			req: GenerateRequest{
				Feature:  FeatureChefCopilot,
				Model:    "../../../etc/passwd",
				Contents: json.RawMessage(`[]`),
			},
			wantMsg: "Invalid model name",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate(allowed, allowlist)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !errors.Is(err, ErrValidationFailed) {
				t.Errorf("Expected error to unwrap to ErrValidationFailed, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("Expected message containing %q, got %q", tc.wantMsg, err.Error())
			}
		})
	}
}

func TestGenerateRequestValidateListsPermittedFeatures(t *testing.T) {
	allowlist := []string{"recipe_generation", "menu_planning"}
	allowed := NewFeatureSet(allowlist)

	req := GenerateRequest{Feature: "bogus", Contents: json.RawMessage(`[]`)}
	err := req.Validate(allowed, allowlist)
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}
	// The rejection names every permitted feature so the client can
	// self-correct without consulting docs.
	for _, feature := range allowlist {
		if !strings.Contains(err.Error(), feature) {
			t.Errorf("Expected message to list %q, got %q", feature, err.Error())
		}
	}
}

func TestImageRequestValidate(t *testing.T) {
	t.Run("empty prompt", func(t *testing.T) {
		req := ImageRequest{Prompt: "   "}
		err := req.Validate()
		if err == nil {
			t.Fatal("Expected validation error, got nil")
		}
		if err.Error() != "Invalid prompt: must be a non-empty string" {
			t.Errorf("Unexpected message: %q", err.Error())
		}
	})

	t.Run("zero images defaults to one", func(t *testing.T) {
		req := ImageRequest{Prompt: "a plated risotto"}
		if err := req.Validate(); err != nil {
			t.Fatalf("Expected valid request, got %v", err)
		}
		if req.NumberOfImages != 1 {
			t.Errorf("Expected NumberOfImages to default to 1, got %d", req.NumberOfImages)
		}
	})

	t.Run("too many images", func(t *testing.T) {
		req := ImageRequest{Prompt: "a plated risotto", NumberOfImages: MaxImagesPerRequest + 1}
		err := req.Validate()
		if err == nil {
			t.Fatal("Expected validation error, got nil")
		}
		if !strings.Contains(err.Error(), "Invalid numberOfImages") {
			t.Errorf("Unexpected message: %q", err.Error())
		}
	})

	t.Run("negative images", func(t *testing.T) {
		req := ImageRequest{Prompt: "a plated risotto", NumberOfImages: -1}
		if err := req.Validate(); err == nil {
			t.Fatal("Expected validation error, got nil")
		}
	})

	t.Run("max is valid", func(t *testing.T) {
		req := ImageRequest{Prompt: "a plated risotto", NumberOfImages: MaxImagesPerRequest}
		if err := req.Validate(); err != nil {
			t.Fatalf("Expected valid request, got %v", err)
		}
	})
}

func TestIsJSONArray(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`[]`, true},
		{`  [1,2]`, true},
		{"\n\t[{}]", true},
		{`{}`, false},
		{`"array"`, false},
		{``, false},
		{`   `, false},
	}
	for _, tc := range tests {
		if got := isJSONArray(json.RawMessage(tc.raw)); got != tc.want {
			t.Errorf("isJSONArray(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
