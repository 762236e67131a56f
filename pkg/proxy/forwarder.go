package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chefstack/ai-proxy/internal/governance"
	"github.com/chefstack/ai-proxy/pkg/config"
	"github.com/chefstack/ai-proxy/pkg/domain"
)

// maxUpstreamBody caps how much of an upstream response the proxy buffers.
// Two base64-encoded images fit comfortably under this.
const maxUpstreamBody = 32 << 20

// UpstreamResult is the buffered upstream response relayed to the caller.
type UpstreamResult struct {
	Status int
	Body   []byte
}

// Forwarder issues the single, timeout-bounded upstream call per request.
// The API key lives here and in the environment only; it is injected as a
// request header and never reaches the client.
type Forwarder struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	textModel  string
	imageModel string
	timeouts   *governance.TimeoutManager
	logger     *slog.Logger
}

// NewForwarder creates a forwarder for the configured upstream provider.
func NewForwarder(cfg config.UpstreamConfig, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}

	return &Forwarder{
		client:     &http.Client{Transport: http.DefaultTransport},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		timeouts: governance.NewTimeoutManager(governance.TimeoutConfig{
			TextGeneration:  cfg.TextTimeout,
			ImageGeneration: cfg.ImageTimeout,
		}),
		logger: logger,
	}
}

// GenerateContent forwards a text-generation payload to the model endpoint.
// An empty model selects the configured default. The upstream status and
// body are returned as-is for relaying.
func (f *Forwarder) GenerateContent(ctx context.Context, model string, req domain.GenerateContentRequest) (*UpstreamResult, error) {
	if model == "" {
		model = f.textModel
	}

	ctx, cancel := f.timeouts.WithTextTimeout(ctx)
	defer cancel()

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", f.baseURL, model)
	return f.post(ctx, url, req)
}

// GenerateImages forwards an image-generation request to the Imagen predict
// endpoint. The model is fixed server-side; clients cannot select it.
func (f *Forwarder) GenerateImages(ctx context.Context, req domain.ImageRequest) (*UpstreamResult, error) {
	ctx, cancel := f.timeouts.WithImageTimeout(ctx)
	defer cancel()

	payload := domain.PredictRequest{
		Instances: []domain.PredictInstance{{Prompt: req.Prompt}},
		Parameters: domain.PredictParameters{
			SampleCount:    req.NumberOfImages,
			AspectRatio:    req.AspectRatio,
			NegativePrompt: req.NegativePrompt,
		},
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:predict", f.baseURL, f.imageModel)
	return f.post(ctx, url, payload)
}

func (f *Forwarder) post(ctx context.Context, url string, payload any) (*UpstreamResult, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("%w: upstream API key is not configured", domain.ErrConfigInvalid)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal upstream payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, domain.ErrUpstreamTimeout
		}
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, domain.ErrUpstreamTimeout
		}
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	return &UpstreamResult{Status: resp.StatusCode, Body: respBody}, nil
}
