package signage

import (
	"time"

	"github.com/google/uuid"
)

// ModerationStatus is the domain type for submission moderation states.
type ModerationStatus string

// Moderation status constants (typed).
const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// Capability names an operation checked against the CapabilityGate.
type Capability string

// Capability constants (typed).
const (
	CapabilityRead   Capability = "read"
	CapabilityCreate Capability = "create"
	CapabilityUpdate Capability = "update"
	CapabilityDelete Capability = "delete"
	CapabilitySubmit Capability = "submit"
)

// Content represents a distributable content item. Its concrete behavior
// (rendering, actions, preview) is determined by Kind, resolved through a
// KindRegistry.
type Content struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	Kind      string     `json:"kind"`
	Name      string     `json:"name,omitempty"`
	Duration  int        `json:"duration"`
	Data      string     `json:"data,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Media     []Media    `json:"media,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Submissions owned by this content. A submission never outlives its
	// content.
	Submissions []*Submission `json:"submissions,omitempty"`
}

// Media represents a file attached to a content item. Bytes are held in Data
// only until they are written to a MediaStore; afterwards ObjectKey locates
// them.
type Media struct {
	FileName  string `json:"file_name,omitempty"`
	FileType  string `json:"file_type,omitempty"`
	FileSize  int64  `json:"file_size,omitempty"`
	ObjectKey string `json:"object_key,omitempty"`
	Data      []byte `json:"data,omitempty"`
}

// Blank reports whether the media entry carries no information at all.
// Form frontends routinely post one empty media row; those are stripped
// before persisting.
func (m Media) Blank() bool {
	return m.FileName == "" && m.FileType == "" && m.FileSize == 0 &&
		m.ObjectKey == "" && len(m.Data) == 0
}

// Feed is a distribution channel to which content is submitted for display.
// Moderation policy is not stored here; whether an actor may moderate a feed
// is a CapabilityGate question.
type Feed struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Submission associates a content item with a feed, carrying tri-state
// moderation. Duration is copied from the content at creation time.
type Submission struct {
	ID          uuid.UUID        `json:"id"`
	ContentID   uuid.UUID        `json:"content_id"`
	FeedID      uuid.UUID        `json:"feed_id"`
	Duration    int              `json:"duration"`
	Moderation  ModerationStatus `json:"moderation_flag"`
	ModeratorID *uuid.UUID       `json:"moderator_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Approved reports whether the submission has been approved by a moderator.
func (s *Submission) Approved() bool {
	return s.Moderation == ModerationApproved
}

// RenderedFile is the product of rendering a content item: display bytes plus
// the metadata needed to serve them inline.
type RenderedFile struct {
	FileName string
	FileType string
	Data     []byte
}
