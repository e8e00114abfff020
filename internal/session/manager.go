package session

import (
	"context"
	"errors"
	"sync"

	"github.com/mpolasek/faceshot/internal/capture"
)

// ErrSessionActive is returned when a new session is requested while
// another one still owns the camera feed.
var ErrSessionActive = errors.New("another capture session is active")

// Manager owns the station's capture sessions. The camera feed is exclusive:
// at most one session that has not yet finished may exist at a time.
type Manager struct {
	device   capture.Device
	searcher Searcher

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager sharing one device and one search
// client across sessions.
func NewManager(device capture.Device, searcher Searcher) *Manager {
	return &Manager{
		device:   device,
		searcher: searcher,
		sessions: make(map[string]*Session),
	}
}

// Create starts the camera feed and opens a new session for the event.
// Fails with ErrSessionActive while an unfinished session exists; sessions
// in PhaseFound have handed off and no longer block new attendees.
func (m *Manager) Create(ctx context.Context, eventID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.sessions {
		if !existing.Closed() && existing.Phase() != PhaseFound {
			return nil, ErrSessionActive
		}
	}

	sess, err := New(eventID, m.device, m.searcher)
	if err != nil {
		return nil, err
	}

	if err := m.device.StartFeed(ctx); err != nil {
		return nil, err
	}

	m.sessions[sess.ID] = sess
	return sess, nil
}

// Get retrieves a session by ID, nil when unknown.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Remove tears a session down and releases the camera feed, unless an
// unfinished session still owns it. Removing a finished session after the
// gallery hand-off must not break the attendee currently at the camera.
// A search still in flight discards its result silently.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	feedOwned := false
	for _, other := range m.sessions {
		if !other.Closed() && other.Phase() != PhaseFound {
			feedOwned = true
		}
	}
	m.mu.Unlock()

	if ok {
		sess.Close()
		if !feedOwned {
			m.device.StopFeed()
		}
	}
}

// Shutdown closes all sessions and stops the feed.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, sess := range m.sessions {
		sessions = append(sessions, sess)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
	m.device.StopFeed()
}
