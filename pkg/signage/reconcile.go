package signage

import (
	"time"

	"github.com/google/uuid"
)

// ReconcileResult is the three-way outcome of diffing a content item's
// existing submissions against a desired feed set. The orchestrator applies
// it atomically at the end of the request.
type ReconcileResult struct {
	// Keep holds existing submissions whose feed stays desired, with their
	// moderation reset to pending
	Keep []*Submission

	// Create holds new submissions for feeds not previously covered
	Create []*Submission

	// Remove holds existing submissions whose feed is no longer desired
	Remove []*Submission
}

// FeedIDs returns the feed ids covered by kept and created submissions.
func (r ReconcileResult) FeedIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Keep)+len(r.Create))
	for _, s := range r.Keep {
		ids = append(ids, s.FeedID)
	}
	for _, s := range r.Create {
		ids = append(ids, s.FeedID)
	}
	return ids
}

// ReconcileSubmissions diffs existing submissions against the desired feed
// set. Kept submissions have their moderation reset to pending: editing a
// content item re-queues every still-associated feed for moderation review,
// even previously approved ones. Newly created submissions copy the
// content's duration and are auto-approved with the actor's imprimatur when
// canModerate allows it.
//
// The kept and created feed ids together equal exactly the desired set with
// no duplicates; removed feed ids are disjoint from it.
func ReconcileSubmissions(existing []*Submission, desiredFeedIDs []uuid.UUID, duration int, actorID uuid.UUID, canModerate func(feedID uuid.UUID) bool) ReconcileResult {
	desired := make(map[uuid.UUID]bool, len(desiredFeedIDs))
	for _, id := range desiredFeedIDs {
		desired[id] = true
	}

	var result ReconcileResult
	now := time.Now().UTC()

	covered := make(map[uuid.UUID]bool, len(existing))
	for _, sub := range existing {
		if desired[sub.FeedID] && !covered[sub.FeedID] {
			sub.Moderation = ModerationPending
			sub.ModeratorID = nil
			sub.UpdatedAt = now
			covered[sub.FeedID] = true
			result.Keep = append(result.Keep, sub)
		} else {
			result.Remove = append(result.Remove, sub)
		}
	}

	for _, feedID := range desiredFeedIDs {
		if covered[feedID] {
			continue
		}
		covered[feedID] = true

		sub := &Submission{
			ID:         uuid.New(),
			FeedID:     feedID,
			Duration:   duration,
			Moderation: ModerationPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if canModerate != nil && canModerate(feedID) {
			moderator := actorID
			sub.Moderation = ModerationApproved
			sub.ModeratorID = &moderator
		}
		result.Create = append(result.Create, sub)
	}

	return result
}
