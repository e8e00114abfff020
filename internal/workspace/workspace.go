// Package workspace holds the organizer's in-memory event collection and
// mediates listing and creation against the FaceShot API.
package workspace

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/mpolasek/faceshot/internal/faceshot"
)

// Identity is the authenticated organizer context. It is passed in
// explicitly at construction instead of being read from ambient storage;
// the name is used for presentation only.
type Identity struct {
	Name  string
	Token string
}

// EventService is the subset of the FaceShot API the workspace needs.
// Implemented by *faceshot.FaceShot.
type EventService interface {
	GetEvents(ctx context.Context) ([]faceshot.Event, error)
	CreateEvent(ctx context.Context, draft faceshot.EventDraft) (*faceshot.Event, error)
}

// LoadFailure signals that fetching the event collection failed. The
// previously loaded collection stays untouched; the call is retryable.
type LoadFailure struct {
	Err error
}

func (e *LoadFailure) Error() string { return "failed to load events: " + e.Err.Error() }
func (e *LoadFailure) Unwrap() error { return e.Err }

// CreateFailure signals that event creation failed. The collection is
// unchanged and the draft is preserved so the user can retry without
// re-entering data.
type CreateFailure struct {
	Err error
}

func (e *CreateFailure) Error() string { return "failed to create event: " + e.Err.Error() }
func (e *CreateFailure) Unwrap() error { return e.Err }

// Workspace owns one organizer's event collection and creation form state.
// Events are visible iff they came back from a successful list fetch or
// were the immediate result of a successful create call; the workspace
// never fabricates or drops events on its own.
type Workspace struct {
	identity Identity
	service  EventService

	mu     sync.RWMutex
	events []faceshot.Event
	loaded bool
	draft  faceshot.EventDraft
}

// New creates a workspace for the given organizer.
func New(identity Identity, service EventService) *Workspace {
	return &Workspace{identity: identity, service: service}
}

// Identity returns the organizer context the workspace was built with.
func (w *Workspace) Identity() Identity {
	return w.identity
}

// LoadEvents fetches the full event collection. On success the in-memory
// collection is replaced in server-returned order. On failure the previous
// collection (possibly empty) stays usable and a *LoadFailure is returned.
func (w *Workspace) LoadEvents(ctx context.Context) error {
	events, err := w.service.GetEvents(ctx)
	if err != nil {
		return &LoadFailure{Err: err}
	}

	w.mu.Lock()
	w.events = events
	w.loaded = true
	w.mu.Unlock()
	return nil
}

// Loaded reports whether at least one list fetch has succeeded.
func (w *Workspace) Loaded() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loaded
}

// Events returns a copy of the collection in server order.
func (w *Workspace) Events() []faceshot.Event {
	w.mu.RLock()
	defer w.mu.RUnlock()
	events := make([]faceshot.Event, len(w.events))
	copy(events, w.events)
	return events
}

// Len returns the number of events in the collection.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.events)
}

// Empty reports whether the collection holds no events, driving the
// empty-state affordance in UIs.
func (w *Workspace) Empty() bool {
	return w.Len() == 0
}

// SetDraft stores the creation form state.
func (w *Workspace) SetDraft(draft faceshot.EventDraft) {
	w.mu.Lock()
	w.draft = draft
	w.mu.Unlock()
}

// Draft returns the current creation form state.
func (w *Workspace) Draft() faceshot.EventDraft {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.draft
}

// CreateEvent submits the current draft. On success the server-returned
// event is prepended to the collection and the draft is cleared. On any
// failure the collection and the draft are both left unchanged and a
// *CreateFailure is returned - the form is only cleared after a successful
// create.
func (w *Workspace) CreateEvent(ctx context.Context) (*faceshot.Event, error) {
	w.mu.RLock()
	draft := w.draft
	w.mu.RUnlock()

	if strings.TrimSpace(draft.Title) == "" {
		return nil, &CreateFailure{Err: ErrTitleRequired}
	}

	event, err := w.service.CreateEvent(ctx, draft)
	if err != nil {
		return nil, &CreateFailure{Err: err}
	}

	w.mu.Lock()
	w.events = append([]faceshot.Event{*event}, w.events...)
	w.draft = faceshot.EventDraft{}
	w.mu.Unlock()
	return event, nil
}

// ErrTitleRequired is the draft validation failure for a missing title.
var ErrTitleRequired = errors.New("event title is required")
