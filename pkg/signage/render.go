package signage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// RenderParams carries the request parameters handed to a renderer.
type RenderParams map[string]string

// FreshnessToken derives an entity tag from the request parameters and the
// content's last-modified time. Equal tokens mean an equally fresh
// rendering already exists and recomputation can be skipped.
func FreshnessToken(params RenderParams, updatedAt time.Time) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%s;", k, params[k])
	}
	fmt.Fprintf(h, "@%d", updatedAt.UTC().UnixNano())
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// RenderContent renders a content item through its kind's renderer, guarded
// by a freshness check. When the caller's token matches the current one the
// expensive render is skipped and ErrNotModified is returned alongside the
// token. Renderer failures are wrapped in a RenderError and propagated,
// never swallowed.
func RenderContent(ctx context.Context, desc *KindDescriptor, content *Content, params RenderParams, token string) (*RenderedFile, string, error) {
	current := FreshnessToken(params, content.UpdatedAt)
	if token != "" && token == current {
		return nil, current, ErrNotModified
	}

	start := time.Now()
	file, err := desc.Render(ctx, content, params)
	if err != nil {
		return nil, current, &RenderError{ContentID: content.ID, Kind: content.Kind, Err: err}
	}
	if file == nil {
		return nil, current, &RenderError{ContentID: content.ID, Kind: content.Kind, Err: errors.New("renderer returned no output")}
	}
	slog.Debug("content rendered",
		"content_id", content.ID.String(),
		"kind", content.Kind,
		"elapsed", time.Since(start))

	return file, current, nil
}
