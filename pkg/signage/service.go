package signage

import (
	"context"

	"github.com/google/uuid"
)

// Service orchestrates the content lifecycle: kind resolution,
// authorization, field binding, submission reconciliation and render/action
// dispatch.
type Service interface {
	// NewContent returns a blank content item of the requested kind (or the
	// configured default) for a creation form.
	NewContent(ctx context.Context, kind string, actorID uuid.UUID) (*Content, error)

	// CreateContent creates a content item and reconciles its feed
	// submissions in one unit of work.
	CreateContent(ctx context.Context, req CreateContentRequest) (*Content, error)

	// GetContent loads a content item with its submissions.
	GetContent(ctx context.Context, id, actorID uuid.UUID) (*Content, error)

	// ListContent lists content items matching the filter.
	ListContent(ctx context.Context, req ListContentRequest) ([]*Content, error)

	// UpdateContent updates a content item's attributes and reconciles its
	// feed submissions in one unit of work.
	UpdateContent(ctx context.Context, req UpdateContentRequest) (*Content, error)

	// DeleteContent deletes a content item together with its submissions.
	DeleteContent(ctx context.Context, id, actorID uuid.UUID) error

	// DisplayContent renders a content item, short-circuiting on a fresh
	// token. The returned string is the current freshness token.
	DisplayContent(ctx context.Context, req DisplayContentRequest) (*RenderedFile, string, error)

	// PerformAction dispatches a named custom action on a content item.
	PerformAction(ctx context.Context, req PerformActionRequest) (string, error)

	// PreviewContent returns an advisory HTML fragment for content data.
	// Unrecognized kinds yield a literal message, not an error.
	PreviewContent(ctx context.Context, req PreviewContentRequest) (string, error)

	// SubmittableFeeds lists the feeds the actor may submit content to.
	SubmittableFeeds(ctx context.Context, actorID uuid.UUID) ([]*Feed, error)
}
