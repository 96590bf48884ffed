package signage

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// CapabilityGate answers allow/deny for an (actor, operation, resource)
// triple. The core never encodes authorization policy, only where it is
// checked; implementations live with the host application.
type CapabilityGate interface {
	Allows(ctx context.Context, actorID uuid.UUID, op Capability, resource any) bool
}

// Repository defines the interface for content, feed and submission
// persistence. GetContent and ListContent return contents with their owned
// submissions attached.
type Repository interface {
	// Content operations
	CreateContent(ctx context.Context, content *Content) error
	GetContent(ctx context.Context, id uuid.UUID) (*Content, error)
	UpdateContent(ctx context.Context, content *Content) error
	DeleteContent(ctx context.Context, id uuid.UUID) error
	ListContent(ctx context.Context, filter ContentFilter) ([]*Content, error)

	// SaveContentWithSubmissions persists the content attributes and applies
	// a submission reconciliation result (kept updated, created inserted,
	// removed deleted) in a single transactional boundary.
	SaveContentWithSubmissions(ctx context.Context, content *Content, result ReconcileResult) error

	// Feed operations
	CreateFeed(ctx context.Context, feed *Feed) error
	GetFeed(ctx context.Context, id uuid.UUID) (*Feed, error)
	ListFeeds(ctx context.Context) ([]*Feed, error)
}

// ContentFilter defines filtering options for listing content.
type ContentFilter struct {
	OwnerID *uuid.UUID
	Kind    *string
	FeedID  *uuid.UUID
}

// MediaStore defines the interface for media byte storage backends.
type MediaStore interface {
	// Upload stores media bytes under the given object key
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// Download retrieves media bytes for the given object key
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes the media bytes for the given object key
	Delete(ctx context.Context, objectKey string) error
}

// EventSink defines the interface for lifecycle event notification.
type EventSink interface {
	// ContentCreated is fired after a content item is created
	ContentCreated(ctx context.Context, content *Content) error

	// ContentUpdated is fired after a content item is updated
	ContentUpdated(ctx context.Context, content *Content) error

	// ContentDeleted is fired after a content item is deleted
	ContentDeleted(ctx context.Context, contentID uuid.UUID) error
}
