package signage

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// AllowAllGate is a CapabilityGate that permits every operation. Useful for
// tests and single-user deployments.
type AllowAllGate struct{}

// NewAllowAllGate creates a gate that allows everything.
func NewAllowAllGate() *AllowAllGate { return &AllowAllGate{} }

// Allows always returns true.
func (AllowAllGate) Allows(ctx context.Context, actorID uuid.UUID, op Capability, resource any) bool {
	return true
}

// NoopEventSink is an EventSink that does nothing.
type NoopEventSink struct{}

// NewNoopEventSink creates an event sink that discards all events.
func NewNoopEventSink() *NoopEventSink { return &NoopEventSink{} }

func (NoopEventSink) ContentCreated(ctx context.Context, content *Content) error { return nil }
func (NoopEventSink) ContentUpdated(ctx context.Context, content *Content) error { return nil }
func (NoopEventSink) ContentDeleted(ctx context.Context, contentID uuid.UUID) error {
	return nil
}

// LogEventSink is an EventSink that writes structured log lines.
type LogEventSink struct{}

// NewLogEventSink creates an event sink backed by slog.
func NewLogEventSink() *LogEventSink { return &LogEventSink{} }

func (LogEventSink) ContentCreated(ctx context.Context, content *Content) error {
	slog.Info("content created", "content_id", content.ID.String(), "kind", content.Kind, "owner_id", content.OwnerID.String())
	return nil
}

func (LogEventSink) ContentUpdated(ctx context.Context, content *Content) error {
	slog.Info("content updated", "content_id", content.ID.String(), "kind", content.Kind)
	return nil
}

func (LogEventSink) ContentDeleted(ctx context.Context, contentID uuid.UUID) error {
	slog.Info("content deleted", "content_id", contentID.String())
	return nil
}
