package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/chefstack/ai-proxy/pkg/domain"
)

// HandleImages serves the image-generation endpoint.
func (h *Handler) HandleImages(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := newStatusRecorder(w)
	entry := domain.NewAccessEntry(HandlerImageProxy, uuid.NewString())
	defer func() {
		entry.Status = rec.status
		entry.Duration = time.Since(start)
		h.access.Log(entry)
		h.metrics.RecordRequest(entry.Handler, entry.Feature, entry.Status, entry.Duration)
	}()

	snapshot := h.runtime.Current()

	body, ok := h.prelude(rec, r, &entry, snapshot, h.limits.ImageBodyBytes)
	if !ok {
		return
	}

	var req domain.ImageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(rec, http.StatusBadRequest, "Invalid JSON body", "")
		return
	}
	entry.Feature = domain.FeatureImageGeneration

	if err := req.Validate(); err != nil {
		h.writeError(rec, http.StatusBadRequest, err.Error(), "")
		return
	}
	if req.NumberOfImages > h.limits.MaxImages {
		req.NumberOfImages = h.limits.MaxImages
	}

	upstreamStart := time.Now()
	result, err := h.forwarder.GenerateImages(r.Context(), req)
	h.metrics.RecordUpstream(HandlerImageProxy, time.Since(upstreamStart))
	if err != nil {
		h.writeForwardError(rec, err)
		return
	}

	if result.Status < 200 || result.Status > 299 {
		h.logger.Warn("Upstream image generation failed", "status", result.Status)
		h.writeError(rec, result.Status, "Image generation failed", truncateDetail(result.Body))
		return
	}

	var predict domain.PredictResponse
	if err := json.Unmarshal(result.Body, &predict); err != nil {
		h.logger.Error("Failed to decode upstream predictions", "error", err)
		h.writeError(rec, http.StatusInternalServerError, "Internal error", "")
		return
	}

	// Never return more images than the configured ceiling, regardless of
	// what upstream produced.
	images := make([]domain.GeneratedImage, 0, h.limits.MaxImages)
	for _, p := range predict.Predictions {
		if len(images) == h.limits.MaxImages {
			break
		}
		if p.BytesBase64Encoded == "" {
			continue
		}
		mimeType := p.MimeType
		if mimeType == "" {
			mimeType = "image/png"
		}
		images = append(images, domain.GeneratedImage{
			ImageBytes: p.BytesBase64Encoded,
			MimeType:   mimeType,
		})
	}

	entry.Images = len(images)
	h.metrics.RecordImages(len(images))

	rec.Header().Set("Content-Type", "application/json")
	rec.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(rec).Encode(domain.ImageResponse{GeneratedImages: images}); err != nil {
		h.logger.Debug("Failed to write response", "handler", HandlerImageProxy, "error", err)
	}
}

// readBounded reads at most limit bytes, reporting ErrPayloadTooLarge when
// the source holds more.
func readBounded(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, domain.ErrPayloadTooLarge
	}
	return data, nil
}

// truncateDetail bounds upstream diagnostics before relaying them.
func truncateDetail(body []byte) string {
	if len(body) > maxErrorDetail {
		body = body[:maxErrorDetail]
	}
	return string(body)
}
