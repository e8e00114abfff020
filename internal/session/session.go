// Package session drives the attendee capture-and-search flow as an
// explicit state machine: one captured frame at a time, one in-flight
// search at a time, and every failed or empty attempt returning to idle
// with the frame released.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mpolasek/faceshot/internal/capture"
	"github.com/mpolasek/faceshot/internal/faceshot"
)

// Phase is the position of a session in the capture/search lifecycle.
type Phase string

// Phases of a capture session. Found is terminal; empty results and
// submission failures both return to idle.
const (
	PhaseIdle      Phase = "idle"
	PhaseCaptured  Phase = "captured"
	PhaseSearching Phase = "searching"
	PhaseFound     Phase = "found"
)

// Transition errors. A Search call during PhaseSearching is deliberately
// NOT an error - it is a silent no-op, see Search.
var (
	ErrSessionClosed    = errors.New("session closed")
	ErrSessionFinished  = errors.New("session already finished")
	ErrAlreadyCaptured  = errors.New("image already captured")
	ErrNoCapturedImage  = errors.New("no captured image")
	ErrSearchInProgress = errors.New("search in progress")
)

// Searcher submits one captured frame against an event's photo pool.
// Implemented by *faceshot.FaceShot.
type Searcher interface {
	SearchSelfie(ctx context.Context, eventID string, image []byte, mimeType string) ([]faceshot.MatchRef, error)
}

// OutcomeKind classifies how a search attempt resolved.
type OutcomeKind string

// Search outcomes. Empty and Failed must surface distinct user messages
// ("no photos found" vs "search failed") even though both re-arm the
// session.
const (
	OutcomeFound  OutcomeKind = "found"
	OutcomeEmpty  OutcomeKind = "empty"
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the resolution of one search attempt, delivered to listeners
// and readable from Status.
type Outcome struct {
	Kind    OutcomeKind         `json:"kind"`
	EventID string              `json:"event_id"`
	Results []faceshot.MatchRef `json:"results,omitempty"`
	Reason  string              `json:"reason,omitempty"`
}

// Session is one attendee's ephemeral capture-and-search state, scoped to a
// single event. Created via Manager.Create or New; torn down via Close.
type Session struct {
	ID        string
	EventID   string
	StartedAt time.Time

	device   capture.Device
	searcher Searcher

	mu        sync.RWMutex
	phase     Phase
	frame     *capture.Frame
	lastError string
	results   []faceshot.MatchRef
	closed    bool
	listeners []chan Outcome
}

// New creates a session for the given event. The event ID is required; the
// device feed must be started by the caller (see Manager).
func New(eventID string, device capture.Device, searcher Searcher) (*Session, error) {
	if eventID == "" {
		return nil, errors.New("event ID is required")
	}
	return &Session{
		ID:        uuid.NewString(),
		EventID:   eventID,
		StartedAt: time.Now(),
		device:    device,
		searcher:  searcher,
		phase:     PhaseIdle,
	}, nil
}

// Capture takes exactly one still frame from the live feed and moves the
// session from idle to captured. No network activity is started. Device
// errors (capture.ErrNoActiveFeed, capture.ErrDeviceUnavailable) leave the
// session idle.
func (s *Session) Capture(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPhase(PhaseIdle, ErrAlreadyCaptured); err != nil {
		return err
	}

	frame, err := s.device.TakeSnapshot(ctx)
	if err != nil {
		s.lastError = err.Error()
		return err
	}

	s.frame = frame
	s.phase = PhaseCaptured
	s.lastError = ""
	return nil
}

// Retake discards the held frame unconditionally and returns the session to
// idle. No network call is ever made for a discarded frame. Idempotent when
// already idle; rejected while a search is in flight or after a hit.
func (s *Session) Retake() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return ErrSessionClosed
	case s.phase == PhaseSearching:
		return ErrSearchInProgress
	case s.phase == PhaseFound:
		return ErrSessionFinished
	}

	s.frame = nil
	s.phase = PhaseIdle
	return nil
}

// Search submits the held frame to the search service. Requires a captured
// frame; starts exactly one submission. Calling Search while a submission
// is already in flight is a no-op - the second trigger is ignored, never
// queued or raced. The submission runs detached from ctx and always
// resolves; a session closed in the meantime discards the result silently.
func (s *Session) Search(ctx context.Context) error {
	s.mu.Lock()

	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrSessionClosed
	case s.phase == PhaseSearching:
		// At most one in-flight submission per session.
		s.mu.Unlock()
		return nil
	case s.phase == PhaseFound:
		s.mu.Unlock()
		return ErrSessionFinished
	case s.phase != PhaseCaptured || s.frame == nil:
		s.mu.Unlock()
		return ErrNoCapturedImage
	}

	frame := s.frame
	s.phase = PhaseSearching
	s.mu.Unlock()

	go func() {
		// Detached context: an outstanding submission runs to completion
		// even if the triggering request has gone away.
		results, err := s.searcher.SearchSelfie(context.Background(), s.EventID, frame.Data, frame.MIME)
		s.resolve(results, err)
	}()

	return nil
}

// resolve applies the result of one submission. Every path releases the
// held frame before the session becomes re-enterable.
func (s *Session) resolve(results []faceshot.MatchRef, err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.frame = nil

	var outcome Outcome
	switch {
	case err != nil:
		s.phase = PhaseIdle
		s.lastError = err.Error()
		outcome = Outcome{Kind: OutcomeFailed, EventID: s.EventID, Reason: err.Error()}
	case len(results) == 0:
		s.phase = PhaseIdle
		s.lastError = ""
		outcome = Outcome{Kind: OutcomeEmpty, EventID: s.EventID}
	default:
		s.phase = PhaseFound
		s.lastError = ""
		s.results = copyResults(results)
		outcome = Outcome{Kind: OutcomeFound, EventID: s.EventID, Results: results}
	}
	s.mu.Unlock()

	// RemoveListener and Close only close channels under the write lock, so
	// holding the read lock keeps every channel in the slice open for the
	// duration of the sends.
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	for _, listener := range s.listeners {
		select {
		case listener <- outcome:
		default:
			// Listener buffer full, skip.
		}
	}
}

// checkPhase validates a transition precondition while holding the lock.
func (s *Session) checkPhase(want Phase, mismatch error) error {
	switch {
	case s.closed:
		return ErrSessionClosed
	case s.phase == PhaseSearching:
		return ErrSearchInProgress
	case s.phase == PhaseFound:
		return ErrSessionFinished
	case s.phase != want:
		return mismatch
	}
	return nil
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Frame returns the currently held frame, or nil outside PhaseCaptured.
func (s *Session) Frame() *capture.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

// Results returns a copy of the matched photo references once the session
// reached PhaseFound, paired with the originating event via s.EventID.
func (s *Session) Results() []faceshot.MatchRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyResults(s.results)
}

// copyResults clones a result slice so callers cannot mutate session state.
func copyResults(results []faceshot.MatchRef) []faceshot.MatchRef {
	if results == nil {
		return nil
	}
	out := make([]faceshot.MatchRef, len(results))
	copy(out, results)
	return out
}

// Status is a read-only snapshot of a session for API responses.
type Status struct {
	ID        string              `json:"id"`
	EventID   string              `json:"event_id"`
	Phase     Phase               `json:"phase"`
	HasImage  bool                `json:"has_image"`
	LastError string              `json:"last_error,omitempty"`
	Results   []faceshot.MatchRef `json:"results,omitempty"`
}

// Status returns a consistent snapshot of the session state.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		ID:        s.ID,
		EventID:   s.EventID,
		Phase:     s.phase,
		HasImage:  s.frame != nil,
		LastError: s.lastError,
		Results:   copyResults(s.results),
	}
}

// AddListener registers a channel that receives search outcomes.
func (s *Session) AddListener() chan Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Outcome, 4)
	s.listeners = append(s.listeners, ch)
	return ch
}

// RemoveListener unregisters and closes an outcome channel.
func (s *Session) RemoveListener(ch chan Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, listener := range s.listeners {
		if listener == ch {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// Close tears the session down. The held frame is released, listeners are
// closed, and any submission still in flight will discard its result
// silently.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.frame = nil
	listeners := s.listeners
	s.listeners = nil
	s.mu.Unlock()

	for _, listener := range listeners {
		close(listener)
	}
}

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
