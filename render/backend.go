// Package render is the boundary between the graph core and its rendering
// backends. Backends are swappable layout/drawing engines behind one
// capability interface; the core hands them snapshots and viewport
// commands, and receives raw input events back. Backends never mutate the
// store.
package render

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/planograph/planograph/errors"
	"github.com/planograph/planograph/graph"
)

// EventType tags an input event coming back from a backend or going out to
// clients.
type EventType string

const (
	EventNodeClick    EventType = "node-click"
	EventEdgeClick    EventType = "edge-click"
	EventLayoutChange EventType = "layout-change"
	EventDataUpdate   EventType = "data-update"
)

// Event is one record on the push-based event channel.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent stamps a new event record.
func NewEvent(kind EventType, data interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      kind,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// Backend is the capability interface every rendering backend implements.
// The core dispatches through this interface only; it never branches on
// backend identity.
type Backend interface {
	// Initialize prepares the backend. May involve asynchronous engine
	// start-up, hence the context.
	Initialize(ctx context.Context) error

	// ApplyData hands the backend a fresh snapshot to draw.
	ApplyData(doc graph.Document) error

	// ApplyLayout pushes externally computed positions to the backend.
	ApplyLayout(positions map[string]graph.Position) error

	// Teardown releases backend resources.
	Teardown() error
}

// Registry holds the available backends by name. Constructed explicitly
// and passed down; not a process global.
type Registry struct {
	backends map[string]Backend
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// Register adds a backend under a name. Re-registering a name replaces the
// previous backend.
func (r *Registry) Register(name string, b Backend) {
	r.backends[name] = b
}

// Get returns the backend registered under name.
func (r *Registry) Get(name string) (Backend, error) {
	b, ok := r.backends[name]
	if !ok {
		return nil, errors.NotFoundf("rendering backend %q", name)
	}
	return b, nil
}

// Names lists the registered backend names.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.backends))
	for name := range r.backends {
		out = append(out, name)
	}
	return out
}

// Headless is a backend that draws nothing and records what it was given.
// It serves as the reference implementation and as a test double.
type Headless struct {
	Initialized bool
	LastData    *graph.Document
	LastLayout  map[string]graph.Position
	TornDown    bool
}

// NewHeadless creates a headless backend.
func NewHeadless() *Headless { return &Headless{} }

func (h *Headless) Initialize(ctx context.Context) error {
	h.Initialized = true
	return nil
}

func (h *Headless) ApplyData(doc graph.Document) error {
	if !h.Initialized {
		return errors.Validationf("backend not initialized")
	}
	cp := doc.Clone()
	h.LastData = &cp
	return nil
}

func (h *Headless) ApplyLayout(positions map[string]graph.Position) error {
	if !h.Initialized {
		return errors.Validationf("backend not initialized")
	}
	h.LastLayout = positions
	return nil
}

func (h *Headless) Teardown() error {
	h.TornDown = true
	return nil
}
