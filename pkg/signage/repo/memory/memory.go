// Package memory provides an in-memory signage.Repository, used for tests
// and single-process deployments.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/placard/placard/pkg/signage"
)

var errAlreadyExists = errors.New("already exists")

// Repository is an in-memory implementation of signage.Repository. Content
// aggregates are copied on the way in and out, so callers can mutate what
// they hold without corrupting the store.
type Repository struct {
	mu       sync.RWMutex
	contents map[uuid.UUID]*signage.Content
	feeds    map[uuid.UUID]*signage.Feed
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		contents: make(map[uuid.UUID]*signage.Content),
		feeds:    make(map[uuid.UUID]*signage.Feed),
	}
}

func (r *Repository) CreateContent(ctx context.Context, content *signage.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[content.ID]; exists {
		return &signage.ContentError{ContentID: content.ID, Op: "create", Err: errAlreadyExists}
	}
	r.contents[content.ID] = copyContent(content)
	return nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*signage.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, exists := r.contents[id]
	if !exists {
		return nil, signage.ErrContentNotFound
	}
	return copyContent(content), nil
}

func (r *Repository) UpdateContent(ctx context.Context, content *signage.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[content.ID]; !exists {
		return signage.ErrContentNotFound
	}
	r.contents[content.ID] = copyContent(content)
	return nil
}

func (r *Repository) DeleteContent(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[id]; !exists {
		return signage.ErrContentNotFound
	}
	delete(r.contents, id)
	return nil
}

func (r *Repository) ListContent(ctx context.Context, filter signage.ContentFilter) ([]*signage.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*signage.Content
	for _, content := range r.contents {
		if filter.OwnerID != nil && content.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Kind != nil && content.Kind != signage.NormalizeKind(*filter.Kind) {
			continue
		}
		if filter.FeedID != nil && !submittedTo(content, *filter.FeedID) {
			continue
		}
		result = append(result, copyContent(content))
	}
	return result, nil
}

// SaveContentWithSubmissions replaces the stored aggregate with the content
// and the reconciliation outcome in one critical section: kept and created
// submissions become the owned set, removed ones disappear.
func (r *Repository) SaveContentWithSubmissions(ctx context.Context, content *signage.Content, result signage.ReconcileResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := copyContent(content)
	saved.Submissions = nil
	for _, sub := range result.Keep {
		saved.Submissions = append(saved.Submissions, copySubmission(sub))
	}
	for _, sub := range result.Create {
		saved.Submissions = append(saved.Submissions, copySubmission(sub))
	}

	r.contents[content.ID] = saved
	return nil
}

func (r *Repository) CreateFeed(ctx context.Context, feed *signage.Feed) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.feeds[feed.ID]; exists {
		return errAlreadyExists
	}
	copied := *feed
	r.feeds[feed.ID] = &copied
	return nil
}

func (r *Repository) GetFeed(ctx context.Context, id uuid.UUID) (*signage.Feed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	feed, exists := r.feeds[id]
	if !exists {
		return nil, signage.ErrFeedNotFound
	}
	copied := *feed
	return &copied, nil
}

func (r *Repository) ListFeeds(ctx context.Context) ([]*signage.Feed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*signage.Feed, 0, len(r.feeds))
	for _, feed := range r.feeds {
		copied := *feed
		result = append(result, &copied)
	}
	return result, nil
}

func submittedTo(content *signage.Content, feedID uuid.UUID) bool {
	for _, sub := range content.Submissions {
		if sub.FeedID == feedID {
			return true
		}
	}
	return false
}

func copyContent(content *signage.Content) *signage.Content {
	copied := *content
	copied.Media = append([]signage.Media(nil), content.Media...)
	copied.Submissions = make([]*signage.Submission, 0, len(content.Submissions))
	for _, sub := range content.Submissions {
		copied.Submissions = append(copied.Submissions, copySubmission(sub))
	}
	return &copied
}

func copySubmission(sub *signage.Submission) *signage.Submission {
	copied := *sub
	if sub.ModeratorID != nil {
		moderator := *sub.ModeratorID
		copied.ModeratorID = &moderator
	}
	return &copied
}
