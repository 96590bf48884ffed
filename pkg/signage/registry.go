package signage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Renderer produces the display output of a content item for a set of
// request parameters.
type Renderer func(ctx context.Context, content *Content, params RenderParams) (*RenderedFile, error)

// ActionFunc handles a named custom action on a content item. A non-nil
// error signals inability to act; the dispatcher maps it to a uniform
// failure.
type ActionFunc func(ctx context.Context, content *Content, params ActionParams) (string, error)

// PreviewFunc renders an advisory HTML fragment from raw content data.
type PreviewFunc func(data string) string

// Constructor builds a blank content item of the kind with its defaults set.
type Constructor func() *Content

// KindDescriptor bundles the behavior of one content kind. Descriptors are
// immutable after registration.
type KindDescriptor struct {
	Name string

	// New constructs a blank content of this kind
	New Constructor

	// Fields is the allow-list of attribute names accepted on create
	Fields []string

	// UpdateFields is the narrower allow-list accepted on update. Left nil,
	// it defaults to name, duration, start_time, end_time.
	UpdateFields []string

	// Render produces display output
	Render Renderer

	// Actions maps action names to handlers
	Actions map[string]ActionFunc

	// Preview renders an advisory HTML fragment
	Preview PreviewFunc
}

var defaultUpdateFields = []string{"name", "duration", "start_time", "end_time"}

// KindRegistry maps normalized kind names to descriptors. It replaces
// runtime symbol lookup with an explicit, testable registration step:
// whether a name is a valid content kind is a total query.
type KindRegistry struct {
	mu          sync.RWMutex
	kinds       map[string]*KindDescriptor
	defaultKind string
}

// NewKindRegistry creates a registry with the process-wide default kind
// used when a requested kind is absent or unresolvable. An empty
// defaultKind is permitted but makes ResolveOrDefault fail with
// ErrNoDefaultKind.
func NewKindRegistry(defaultKind string) *KindRegistry {
	return &KindRegistry{
		kinds:       make(map[string]*KindDescriptor),
		defaultKind: NormalizeKind(defaultKind),
	}
}

// Register adds a descriptor to the registry. Descriptors that do not
// conform to the content contract (missing constructor or renderer) are
// rejected, as are duplicate names. Registration happens at process start;
// failures here are configuration bugs and should be treated as fatal.
func (r *KindRegistry) Register(d KindDescriptor) error {
	d.Name = NormalizeKind(d.Name)
	if d.Name == "" {
		return fmt.Errorf("register kind: name is required")
	}
	if d.New == nil || d.Render == nil {
		return fmt.Errorf("register kind %q: descriptor does not conform to the content contract", d.Name)
	}
	if d.UpdateFields == nil {
		d.UpdateFields = defaultUpdateFields
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.kinds[d.Name]; exists {
		return fmt.Errorf("register kind %q: already registered", d.Name)
	}
	r.kinds[d.Name] = &d
	return nil
}

// Resolve looks up a descriptor by kind name. The lookup is normalization
// insensitive and total: it returns the descriptor or ErrKindNotFound,
// never panics.
func (r *KindRegistry) Resolve(name string) (*KindDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.kinds[NormalizeKind(name)]
	if !ok {
		return nil, fmt.Errorf("kind %q: %w", name, ErrKindNotFound)
	}
	return d, nil
}

// ResolveOrDefault resolves the requested kind, falling back to the
// process-wide default when the request is absent or does not resolve.
// A configured default that itself fails to resolve yields ErrKindNotFound;
// a missing default setting is a fatal configuration error surfaced as
// ErrNoDefaultKind, since the system cannot serve new-content requests at
// all.
func (r *KindRegistry) ResolveOrDefault(name string) (*KindDescriptor, error) {
	if name != "" {
		if d, err := r.Resolve(name); err == nil {
			return d, nil
		}
	}

	r.mu.RLock()
	defaultKind := r.defaultKind
	r.mu.RUnlock()

	if defaultKind == "" {
		return nil, ErrNoDefaultKind
	}
	d, err := r.Resolve(defaultKind)
	if err != nil {
		return nil, fmt.Errorf("default kind %q: %w", defaultKind, ErrKindNotFound)
	}
	return d, nil
}

// Names returns the registered kind names in sorted order.
func (r *KindRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
