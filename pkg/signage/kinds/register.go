// Package kinds provides the built-in content kinds registered with a
// KindRegistry at process start: Image, Ticker, HtmlText and RssFeed.
package kinds

import (
	"net/http"
	"time"

	"github.com/placard/placard/pkg/signage"
)

// Config carries the collaborators the built-in kinds need.
type Config struct {
	// Media resolves stored media bytes for image rendering
	Media signage.MediaStore

	// HTTPClient fetches remote feeds. Left nil, a client with a sane
	// timeout is used.
	HTTPClient *http.Client
}

// RegisterBuiltins registers all built-in content kinds. Registration
// failures are configuration bugs; callers should treat them as fatal.
func RegisterBuiltins(reg *signage.KindRegistry, cfg Config) error {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}

	descriptors := []signage.KindDescriptor{
		imageKind(cfg.Media),
		tickerKind(),
		htmlTextKind(),
		rssFeedKind(cfg.HTTPClient),
	}
	for _, d := range descriptors {
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}
