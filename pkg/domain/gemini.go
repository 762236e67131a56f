package domain

import "encoding/json"

// Minimal Gemini wire DTOs. Only the fields the proxy reads or writes are
// modelled; everything else passes through as raw JSON.

// GenerateContentRequest is the upstream body for text generation.
type GenerateContentRequest struct {
	Contents         json.RawMessage `json:"contents"`
	GenerationConfig json.RawMessage `json:"generationConfig,omitempty"`
}

// PredictRequest is the upstream body for Imagen image generation.
type PredictRequest struct {
	Instances  []PredictInstance `json:"instances"`
	Parameters PredictParameters `json:"parameters"`
}

// PredictInstance carries the prompt for one prediction.
type PredictInstance struct {
	Prompt string `json:"prompt"`
}

// PredictParameters tunes the Imagen prediction call.
type PredictParameters struct {
	SampleCount    int    `json:"sampleCount"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
	NegativePrompt string `json:"negativePrompt,omitempty"`
}

// PredictResponse is the upstream Imagen response envelope.
type PredictResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// Prediction is one generated image as returned by Imagen.
type Prediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

// GeneratedImage is the normalised image entry returned to clients.
type GeneratedImage struct {
	ImageBytes string `json:"imageBytes"`
	MimeType   string `json:"mimeType"`
}

// ImageResponse is the client-facing image-generation response.
type ImageResponse struct {
	GeneratedImages []GeneratedImage `json:"generatedImages"`
}
