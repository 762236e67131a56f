package domain

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// MaxImagesPerRequest bounds how many images a single request may produce.
// Responses are truncated to this count even if upstream returns more.
const MaxImagesPerRequest = 2

// modelNamePattern restricts the optional model override to characters that
// are safe to interpolate into the upstream URL path.
var modelNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// GenerateRequest is the client body for the text-generation proxy.
// Contents and GenerationConfig are kept opaque: the proxy validates their
// shape but relays them to upstream untouched, and never logs them.
type GenerateRequest struct {
	Feature          string          `json:"feature"`
	Model            string          `json:"model,omitempty"`
	Contents         json.RawMessage `json:"contents,omitempty"`
	GenerationConfig json.RawMessage `json:"generationConfig,omitempty"`
}

// Validate checks the request against the feature allowlist and the contents
// shape. Error messages are safe to relay to the client.
func (r *GenerateRequest) Validate(allowed FeatureSet, allowlist []string) error {
	feature := strings.TrimSpace(r.Feature)
	if feature == "" || !allowed.Contains(feature) {
		return Validationf("Invalid feature %q. Permitted features: %s",
			r.Feature, strings.Join(allowlist, ", "))
	}
	if !isJSONArray(r.Contents) {
		return Validationf("Invalid contents: must be an array")
	}
	if r.Model != "" && !modelNamePattern.MatchString(r.Model) {
		return Validationf("Invalid model name")
	}
	return nil
}

// ImageRequest is the client body for the image-generation proxy.
type ImageRequest struct {
	Prompt         string `json:"prompt"`
	NumberOfImages int    `json:"numberOfImages,omitempty"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
	NegativePrompt string `json:"negativePrompt,omitempty"`
}

// Validate normalises defaults and rejects out-of-range parameters.
func (r *ImageRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return Validationf("Invalid prompt: must be a non-empty string")
	}
	if r.NumberOfImages == 0 {
		r.NumberOfImages = 1
	}
	if r.NumberOfImages < 1 || r.NumberOfImages > MaxImagesPerRequest {
		return Validationf("Invalid numberOfImages: must be between 1 and %d", MaxImagesPerRequest)
	}
	return nil
}

// isJSONArray reports whether raw holds a JSON array. An empty array is
// accepted here; feature-level semantics decide what to do with it.
func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
