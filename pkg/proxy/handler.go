// Package proxy implements the AI request proxy: two HTTP handlers that
// authenticate, validate, and forward browser requests to the generative-AI
// upstream. Each request runs a single linear pipeline — CORS, method, auth,
// size, parse, validate, forward — and every exit path emits exactly one
// access-log line.
package proxy

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/chefstack/ai-proxy/pkg/auth"
	"github.com/chefstack/ai-proxy/pkg/config"
	"github.com/chefstack/ai-proxy/pkg/domain"
)

// Handler names used in access-log lines and metrics labels.
const (
	HandlerGeminiProxy = "gemini-proxy"
	HandlerImageProxy  = "image-proxy"
)

// maxErrorDetail bounds how much upstream diagnostic text is relayed to
// clients on error responses.
const maxErrorDetail = 512

// Handler serves the proxy endpoints. It holds no per-request state; the
// runtime provider is consulted once per request so config reloads never
// affect an in-flight pipeline.
type Handler struct {
	verifier  auth.Verifier
	runtime   config.RuntimeProvider
	forwarder *Forwarder
	limits    config.LimitsConfig
	access    *AccessLogger
	metrics   *Metrics
	logger    *slog.Logger
}

// HandlerConfig holds the dependencies for creating a Handler.
type HandlerConfig struct {
	Verifier  auth.Verifier
	Runtime   config.RuntimeProvider
	Forwarder *Forwarder
	Limits    config.LimitsConfig
	Logger    *slog.Logger
	Metrics   *Metrics
}

// NewHandler constructs the proxy handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Verifier == nil {
		panic("proxy: verifier is required")
	}
	if cfg.Runtime == nil {
		panic("proxy: runtime provider is required")
	}
	if cfg.Forwarder == nil {
		panic("proxy: forwarder is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	return &Handler{
		verifier:  cfg.Verifier,
		runtime:   cfg.Runtime,
		forwarder: cfg.Forwarder,
		limits:    cfg.Limits,
		access:    NewAccessLogger(logger),
		metrics:   metrics,
		logger:    logger,
	}
}

// HandleGenerate serves the text-generation endpoint.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := newStatusRecorder(w)
	entry := domain.NewAccessEntry(HandlerGeminiProxy, uuid.NewString())
	defer func() {
		entry.Status = rec.status
		entry.Duration = time.Since(start)
		h.access.Log(entry)
		h.metrics.RecordRequest(entry.Handler, entry.Feature, entry.Status, entry.Duration)
	}()

	snapshot := h.runtime.Current()

	body, ok := h.prelude(rec, r, &entry, snapshot, h.limits.TextBodyBytes)
	if !ok {
		return
	}

	var req domain.GenerateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(rec, http.StatusBadRequest, "Invalid JSON body", "")
		return
	}
	if req.Feature != "" {
		entry.Feature = req.Feature
	}

	if err := req.Validate(snapshot.FeatureSet, snapshot.Features); err != nil {
		h.writeError(rec, http.StatusBadRequest, err.Error(), "")
		return
	}

	upstreamStart := time.Now()
	result, err := h.forwarder.GenerateContent(r.Context(), req.Model, domain.GenerateContentRequest{
		Contents:         req.Contents,
		GenerationConfig: req.GenerationConfig,
	})
	h.metrics.RecordUpstream(HandlerGeminiProxy, time.Since(upstreamStart))
	if err != nil {
		h.writeForwardError(rec, err)
		return
	}

	// Relay the upstream status and body unchanged.
	rec.Header().Set("Content-Type", "application/json")
	rec.WriteHeader(result.Status)
	if _, err := rec.Write(result.Body); err != nil {
		h.logger.Debug("Failed to write response", "handler", HandlerGeminiProxy, "error", err)
	}
}

// prelude runs the stages shared by both endpoints: CORS headers, preflight,
// method guard, auth, and the bounded body read. It writes the error
// response itself and returns ok=false when the pipeline must stop.
func (h *Handler) prelude(rec *statusRecorder, r *http.Request, entry *domain.AccessEntry, snapshot config.Runtime, limit int64) ([]byte, bool) {
	applyCORSHeaders(rec.Header(), r.Header.Get("Origin"), snapshot.AllowedOrigins)

	if r.Method == http.MethodOptions {
		rec.WriteHeader(http.StatusNoContent)
		return nil, false
	}

	if r.Method != http.MethodPost {
		h.writeError(rec, http.StatusMethodNotAllowed, "Method not allowed", "")
		return nil, false
	}

	token, err := auth.BearerToken(r)
	if err != nil {
		h.writeError(rec, http.StatusUnauthorized, "Unauthorized", "")
		return nil, false
	}
	identity, err := h.verifier.Verify(r.Context(), token)
	if err != nil {
		h.logger.Debug("Token verification failed", "handler", entry.Handler, "error", err)
		h.writeError(rec, http.StatusUnauthorized, "Unauthorized", "")
		return nil, false
	}
	entry.UserID = identity.UserID

	// Content-Length is a fast check only; the read below re-measures the
	// actual body in case the header is missing or wrong.
	if r.ContentLength > limit {
		h.writeError(rec, http.StatusRequestEntityTooLarge, "Request body too large", "")
		return nil, false
	}

	body, err := readBounded(r.Body, limit)
	if err != nil {
		if errors.Is(err, domain.ErrPayloadTooLarge) {
			h.writeError(rec, http.StatusRequestEntityTooLarge, "Request body too large", "")
		} else {
			h.writeError(rec, http.StatusInternalServerError, "Internal error", "")
		}
		return nil, false
	}

	return body, true
}

// writeForwardError maps forwarder errors to responses. Timeout gets an
// explicit 504; everything else is a generic 500 with the specific error
// kept out of the response.
func (h *Handler) writeForwardError(rec *statusRecorder, err error) {
	switch {
	case errors.Is(err, domain.ErrUpstreamTimeout):
		h.writeError(rec, http.StatusGatewayTimeout, "Upstream request timed out", "")
	case errors.Is(err, domain.ErrConfigInvalid):
		h.logger.Error("Upstream call rejected by configuration", "error", err)
		h.writeError(rec, http.StatusInternalServerError, "Internal error", "")
	default:
		h.logger.Error("Upstream call failed", "error", err)
		h.writeError(rec, http.StatusInternalServerError, "Internal error", "")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(domain.ErrorResponse{Error: message, Detail: detail}); err != nil {
		h.logger.Debug("Failed to encode error response", "error", err)
	}
}
