package proxy

import (
	"context"
	"log/slog"

	"github.com/chefstack/ai-proxy/pkg/domain"
)

// AccessLogger emits the one-line operational breadcrumb for each request.
// Prompt text, contents, and generated payloads never appear in these lines.
type AccessLogger struct {
	logger *slog.Logger
}

// NewAccessLogger creates an access logger writing through the given slog
// logger.
func NewAccessLogger(logger *slog.Logger) *AccessLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccessLogger{logger: logger}
}

// Log flushes one structured line for the request. Callers must invoke this
// exactly once per request, on every exit path.
func (a *AccessLogger) Log(entry domain.AccessEntry) {
	attrs := []slog.Attr{
		slog.String("handler", entry.Handler),
		slog.String("request_id", entry.RequestID),
		slog.String("user", entry.UserID),
		slog.String("feature", entry.Feature),
		slog.Int("status", entry.Status),
		slog.Int64("duration_ms", entry.Duration.Milliseconds()),
	}
	if entry.Handler == HandlerImageProxy {
		attrs = append(attrs, slog.Int("images", entry.Images))
	}

	a.logger.LogAttrs(context.Background(), slog.LevelInfo, "access", attrs...)
}
