package notify

import (
	"context"
	"time"
)

// EventType represents the type of review-workflow event.
type EventType string

// Event type constants.
const (
	EventProjectCreated    EventType = "project_created"
	EventDraftReady        EventType = "draft_ready"
	EventArtifactApproved  EventType = "artifact_approved"
	EventArtifactRejected  EventType = "artifact_rejected"
	EventArtifactReopened  EventType = "artifact_reopened"
	EventStageBlocked      EventType = "stage_blocked"
	EventStageFailed       EventType = "stage_failed"
	EventSearchesCompleted EventType = "searches_completed"
)

// Severity constants for notifications.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event describes a review-workflow event for notification.
type Event struct {
	Type         EventType      `json:"type"`
	Project      string         `json:"project"`
	Stage        string         `json:"stage,omitempty"`
	ArtifactType string         `json:"artifact_type,omitempty"`
	Message      string         `json:"message"`
	Severity     string         `json:"severity"`
	Timestamp    time.Time      `json:"timestamp"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Notifier sends notifications about review-workflow events.
type Notifier interface {
	// Notify sends a notification. Implementations should be non-blocking
	// and handle errors gracefully (log, don't crash).
	Notify(ctx context.Context, event Event) error
}

type serviceContextKey string

const notifierServiceKey serviceContextKey = "slrflow.notifier"

// WithNotifier adds a Notifier to the context.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierServiceKey, n)
}

// NotifierFromContext extracts the Notifier from context.
// Returns nil if no notifier is configured.
func NotifierFromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(notifierServiceKey).(Notifier); ok {
		return n
	}
	return nil
}

// MustNotifierFromContext extracts the Notifier or panics.
func MustNotifierFromContext(ctx context.Context) Notifier {
	n := NotifierFromContext(ctx)
	if n == nil {
		panic("slrflow: Notifier not found in context")
	}
	return n
}
