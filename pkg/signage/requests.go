package signage

import "github.com/google/uuid"

// CreateContentRequest contains parameters for creating a content item.
// Attributes are bound through the kind's field allow-list; unknown keys are
// rejected, not ignored.
type CreateContentRequest struct {
	Kind       string
	OwnerID    uuid.UUID
	Attributes map[string]string
	Media      []Media
	FeedIDs    []uuid.UUID
}

// UpdateContentRequest contains parameters for updating a content item.
// Attributes are bound through the kind's narrower update allow-list; feed
// associations travel in FeedIDs, never through the attribute binder.
type UpdateContentRequest struct {
	ID         uuid.UUID
	ActorID    uuid.UUID
	Attributes map[string]string
	FeedIDs    []uuid.UUID
}

// DisplayContentRequest contains parameters for rendering a content item.
type DisplayContentRequest struct {
	ID      uuid.UUID
	ActorID uuid.UUID
	Params  RenderParams

	// FreshnessToken is the entity tag the caller already holds, if any
	FreshnessToken string
}

// PerformActionRequest contains parameters for dispatching a custom action.
type PerformActionRequest struct {
	ID      uuid.UUID
	ActorID uuid.UUID
	Action  string
	Values  map[string]string
}

// PreviewContentRequest contains parameters for previewing content data.
// Data takes precedence; when absent, the data of the persisted content
// identified by ID is used.
type PreviewContentRequest struct {
	Kind string
	Data string
	ID   *uuid.UUID
}

// ListContentRequest contains filtering options for listing content.
type ListContentRequest struct {
	OwnerID *uuid.UUID
	Kind    *string
	FeedID  *uuid.UUID
}
