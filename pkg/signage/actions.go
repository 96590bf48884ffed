package signage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// ActionParams is the parameter bag handed to an action handler. Values is
// untyped routing: each handler documents which keys it reads, and the
// dispatcher performs no validation beyond resolving the action name.
type ActionParams struct {
	ActorID uuid.UUID
	Values  map[string]string
}

// PerformAction dispatches a named custom action through the content kind's
// action table. Action names are open-ended; new actions are added per kind
// without touching the dispatcher. An unknown name, or a handler that
// declines, yields a uniform ErrActionNotSupported so callers never see a
// lower-level error.
func PerformAction(ctx context.Context, desc *KindDescriptor, content *Content, name string, params ActionParams) (string, error) {
	fn, ok := desc.Actions[name]
	if !ok {
		return "", fmt.Errorf("action %q not defined for kind %s: %w", name, desc.Name, ErrActionNotSupported)
	}

	result, err := fn(ctx, content, params)
	if err != nil {
		slog.Warn("action handler declined",
			"content_id", content.ID.String(),
			"kind", desc.Name,
			"action", name,
			"error", err)
		return "", fmt.Errorf("action %q on kind %s: %w", name, desc.Name, ErrActionNotSupported)
	}
	return result, nil
}
