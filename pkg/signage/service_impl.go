package signage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repo            Repository
	kinds           *KindRegistry
	gate            CapabilityGate
	events          EventSink
	media           MediaStore
	defaultDuration int
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repo = repo
	}
}

// WithKindRegistry sets the content kind registry for the service
func WithKindRegistry(kinds *KindRegistry) Option {
	return func(s *service) {
		s.kinds = kinds
	}
}

// WithCapabilityGate sets the authorization collaborator for the service
func WithCapabilityGate(gate CapabilityGate) Option {
	return func(s *service) {
		s.gate = gate
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.events = sink
	}
}

// WithMediaStore sets the media byte store for the service
func WithMediaStore(store MediaStore) Option {
	return func(s *service) {
		s.media = store
	}
}

// WithDefaultDuration sets the process-wide default display duration in
// seconds for newly created content
func WithDefaultDuration(seconds int) Option {
	return func(s *service) {
		s.defaultDuration = seconds
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		defaultDuration: 10,
	}

	for _, option := range options {
		option(s)
	}

	if s.repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.kinds == nil {
		return nil, fmt.Errorf("kind registry is required")
	}
	if s.gate == nil {
		s.gate = NewAllowAllGate()
	}
	if s.events == nil {
		s.events = NewNoopEventSink()
	}

	return s, nil
}

func (s *service) NewContent(ctx context.Context, kind string, actorID uuid.UUID) (*Content, error) {
	desc, err := s.kinds.ResolveOrDefault(kind)
	if err != nil {
		return nil, err
	}

	content := desc.New()
	content.Kind = desc.Name
	if content.Duration == 0 {
		content.Duration = s.defaultDuration
	}

	if !s.gate.Allows(ctx, actorID, CapabilityCreate, content) {
		return nil, ErrNotAuthorized
	}
	return content, nil
}

func (s *service) CreateContent(ctx context.Context, req CreateContentRequest) (*Content, error) {
	desc, err := s.kinds.ResolveOrDefault(req.Kind)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	content := desc.New()
	content.ID = uuid.New()
	content.Kind = desc.Name
	content.OwnerID = req.OwnerID
	content.CreatedAt = now
	content.UpdatedAt = now
	if content.Duration == 0 {
		content.Duration = s.defaultDuration
	}

	if !s.gate.Allows(ctx, req.OwnerID, CapabilityCreate, content) {
		return nil, ErrNotAuthorized
	}

	if verr := bindAttributes(content, req.Attributes, desc.Fields); verr != nil {
		return nil, verr
	}
	if verr := validateContent(content); verr != nil {
		return nil, verr
	}
	if verr := s.checkFeedsExist(ctx, req.FeedIDs); verr != nil {
		return nil, verr
	}

	content.Media = stripBlankMedia(req.Media)
	if err := s.storeMedia(ctx, content); err != nil {
		return nil, &ContentError{ContentID: content.ID, Op: "store_media", Err: err}
	}

	result := ReconcileSubmissions(nil, req.FeedIDs, content.Duration, req.OwnerID, s.canModerate(ctx, req.OwnerID))
	for _, sub := range result.Create {
		sub.ContentID = content.ID
	}

	if err := s.repo.SaveContentWithSubmissions(ctx, content, result); err != nil {
		return nil, &ContentError{ContentID: content.ID, Op: "create", Err: err}
	}
	content.Submissions = append(result.Keep, result.Create...)

	if err := s.events.ContentCreated(ctx, content); err != nil {
		slog.Warn("content created event failed", "content_id", content.ID.String(), "error", err)
	}

	return content, nil
}

func (s *service) GetContent(ctx context.Context, id, actorID uuid.UUID) (*Content, error) {
	content, err := s.repo.GetContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gate.Allows(ctx, actorID, CapabilityRead, content) {
		return nil, ErrNotAuthorized
	}
	return content, nil
}

func (s *service) ListContent(ctx context.Context, req ListContentRequest) ([]*Content, error) {
	return s.repo.ListContent(ctx, ContentFilter{
		OwnerID: req.OwnerID,
		Kind:    req.Kind,
		FeedID:  req.FeedID,
	})
}

func (s *service) UpdateContent(ctx context.Context, req UpdateContentRequest) (*Content, error) {
	content, err := s.repo.GetContent(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if !s.gate.Allows(ctx, req.ActorID, CapabilityUpdate, content) {
		return nil, ErrNotAuthorized
	}

	// The kind of a persisted content must always resolve.
	desc, err := s.kinds.Resolve(content.Kind)
	if err != nil {
		return nil, &ContentError{ContentID: content.ID, Op: "update", Err: err}
	}

	if verr := bindAttributes(content, req.Attributes, desc.UpdateFields); verr != nil {
		return nil, verr
	}
	if verr := validateContent(content); verr != nil {
		return nil, verr
	}
	if verr := s.checkFeedsExist(ctx, req.FeedIDs); verr != nil {
		return nil, verr
	}

	content.UpdatedAt = time.Now().UTC()

	result := ReconcileSubmissions(content.Submissions, req.FeedIDs, content.Duration, req.ActorID, s.canModerate(ctx, req.ActorID))
	for _, sub := range result.Create {
		sub.ContentID = content.ID
	}

	if err := s.repo.SaveContentWithSubmissions(ctx, content, result); err != nil {
		return nil, &ContentError{ContentID: content.ID, Op: "update", Err: err}
	}
	content.Submissions = append(result.Keep, result.Create...)

	if err := s.events.ContentUpdated(ctx, content); err != nil {
		slog.Warn("content updated event failed", "content_id", content.ID.String(), "error", err)
	}

	return content, nil
}

func (s *service) DeleteContent(ctx context.Context, id, actorID uuid.UUID) error {
	content, err := s.repo.GetContent(ctx, id)
	if err != nil {
		return err
	}
	if !s.gate.Allows(ctx, actorID, CapabilityDelete, content) {
		return ErrNotAuthorized
	}

	if err := s.repo.DeleteContent(ctx, id); err != nil {
		return &ContentError{ContentID: id, Op: "delete", Err: err}
	}

	if s.media != nil {
		for _, m := range content.Media {
			if m.ObjectKey == "" {
				continue
			}
			if err := s.media.Delete(ctx, m.ObjectKey); err != nil {
				slog.Warn("media delete failed", "content_id", id.String(), "object_key", m.ObjectKey, "error", err)
			}
		}
	}

	if err := s.events.ContentDeleted(ctx, id); err != nil {
		slog.Warn("content deleted event failed", "content_id", id.String(), "error", err)
	}
	return nil
}

func (s *service) DisplayContent(ctx context.Context, req DisplayContentRequest) (*RenderedFile, string, error) {
	content, err := s.repo.GetContent(ctx, req.ID)
	if err != nil {
		return nil, "", err
	}
	if !s.gate.Allows(ctx, req.ActorID, CapabilityRead, content) {
		return nil, "", ErrNotAuthorized
	}

	desc, err := s.kinds.Resolve(content.Kind)
	if err != nil {
		return nil, "", &ContentError{ContentID: content.ID, Op: "display", Err: err}
	}

	return RenderContent(ctx, desc, content, req.Params, req.FreshnessToken)
}

func (s *service) PerformAction(ctx context.Context, req PerformActionRequest) (string, error) {
	content, err := s.repo.GetContent(ctx, req.ID)
	if err != nil {
		return "", err
	}
	if !s.gate.Allows(ctx, req.ActorID, CapabilityRead, content) {
		return "", ErrNotAuthorized
	}

	desc, err := s.kinds.Resolve(content.Kind)
	if err != nil {
		return "", &ContentError{ContentID: content.ID, Op: "act", Err: err}
	}

	return PerformAction(ctx, desc, content, req.Action, ActionParams{
		ActorID: req.ActorID,
		Values:  req.Values,
	})
}

const unrecognizedKindPreview = "Unrecognized content type"

func (s *service) PreviewContent(ctx context.Context, req PreviewContentRequest) (string, error) {
	data := req.Data
	if data == "" && req.ID != nil {
		if content, err := s.repo.GetContent(ctx, *req.ID); err == nil {
			data = content.Data
		}
	}

	// Preview is advisory: an unresolved kind yields a literal message, not
	// a failure.
	desc, err := s.kinds.Resolve(req.Kind)
	if err != nil || desc.Preview == nil {
		return unrecognizedKindPreview, nil
	}
	return desc.Preview(data), nil
}

func (s *service) SubmittableFeeds(ctx context.Context, actorID uuid.UUID) ([]*Feed, error) {
	feeds, err := s.repo.ListFeeds(ctx)
	if err != nil {
		return nil, err
	}

	submittable := make([]*Feed, 0, len(feeds))
	for _, feed := range feeds {
		if s.gate.Allows(ctx, actorID, CapabilitySubmit, feed) {
			submittable = append(submittable, feed)
		}
	}
	return submittable, nil
}

// canModerate returns the per-feed moderation check used by submission
// reconciliation: whether the actor may update (moderate) the feed.
func (s *service) canModerate(ctx context.Context, actorID uuid.UUID) func(uuid.UUID) bool {
	return func(feedID uuid.UUID) bool {
		feed, err := s.repo.GetFeed(ctx, feedID)
		if err != nil {
			return false
		}
		return s.gate.Allows(ctx, actorID, CapabilityUpdate, feed)
	}
}

func (s *service) checkFeedsExist(ctx context.Context, feedIDs []uuid.UUID) *ValidationError {
	verr := NewValidationError()
	seen := make(map[uuid.UUID]bool, len(feedIDs))
	for _, id := range feedIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.repo.GetFeed(ctx, id); err != nil {
			verr.Add("feed_id", fmt.Sprintf("feed %s does not exist", id))
		}
	}
	if verr.Any() {
		return verr
	}
	return nil
}

// storeMedia writes inline media bytes to the media store and replaces them
// with object keys. Without a configured store the bytes stay inline.
func (s *service) storeMedia(ctx context.Context, content *Content) error {
	if s.media == nil {
		return nil
	}
	for i := range content.Media {
		m := &content.Media[i]
		if len(m.Data) == 0 {
			continue
		}
		key := fmt.Sprintf("contents/%s/media/%d", content.ID, i)
		if err := s.media.Upload(ctx, key, bytes.NewReader(m.Data)); err != nil {
			return fmt.Errorf("upload media %d: %w", i, err)
		}
		m.ObjectKey = key
		if m.FileSize == 0 {
			m.FileSize = int64(len(m.Data))
		}
		m.Data = nil
	}
	return nil
}

func stripBlankMedia(media []Media) []Media {
	kept := make([]Media, 0, len(media))
	for _, m := range media {
		if m.Blank() {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}
