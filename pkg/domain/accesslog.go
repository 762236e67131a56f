package domain

import "time"

// Placeholder values used when a request fails before the corresponding
// field could be determined.
const (
	AnonymousUser  = "anonymous"
	UnknownFeature = "unknown"
)

// AccessEntry is the operational breadcrumb emitted exactly once per
// request, at every exit point. It deliberately carries no prompt text or
// generated content.
type AccessEntry struct {
	Handler   string
	RequestID string
	UserID    string
	Feature   string
	Status    int
	Duration  time.Duration
	Images    int
}

// NewAccessEntry seeds an entry with the placeholder user and feature so
// early-exit paths still log complete lines.
func NewAccessEntry(handler, requestID string) AccessEntry {
	return AccessEntry{
		Handler:   handler,
		RequestID: requestID,
		UserID:    AnonymousUser,
		Feature:   UnknownFeature,
	}
}
