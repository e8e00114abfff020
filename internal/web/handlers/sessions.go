package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mpolasek/faceshot/internal/capture"
	"github.com/mpolasek/faceshot/internal/session"
)

// SessionsHandler exposes the attendee capture-and-search flow.
type SessionsHandler struct {
	manager *session.Manager
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(m *session.Manager) *SessionsHandler {
	return &SessionsHandler{manager: m}
}

// createSessionRequest starts a capture session for one event.
type createSessionRequest struct {
	EventID string `json:"event_id"`
}

// Create opens a new capture session. The camera feed is exclusive, so a
// second attendee gets 409 until the active session finishes.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.EventID == "" {
		respondError(w, http.StatusBadRequest, "event_id is required")
		return
	}

	sess, err := h.manager.Create(r.Context(), req.EventID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionActive):
			respondError(w, http.StatusConflict, "another capture session is active")
		case errors.Is(err, capture.ErrDeviceUnavailable):
			respondError(w, http.StatusServiceUnavailable, "camera unavailable")
		default:
			respondError(w, http.StatusInternalServerError, "failed to create session")
		}
		return
	}

	respondJSON(w, http.StatusCreated, sess.Status())
}

// lookup finds the session from the URL or responds with an error.
func (h *SessionsHandler) lookup(w http.ResponseWriter, r *http.Request) *session.Session {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing session ID")
		return nil
	}
	sess := h.manager.Get(id)
	if sess == nil {
		respondError(w, http.StatusNotFound, "session not found")
		return nil
	}
	return sess
}

// Get returns a snapshot of the session state, including results once the
// search found matches.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := h.lookup(w, r)
	if sess == nil {
		return
	}
	respondJSON(w, http.StatusOK, sess.Status())
}

// Capture takes one still frame from the live feed.
func (h *SessionsHandler) Capture(w http.ResponseWriter, r *http.Request) {
	sess := h.lookup(w, r)
	if sess == nil {
		return
	}

	if err := sess.Capture(r.Context()); err != nil {
		switch {
		case errors.Is(err, capture.ErrNoActiveFeed), errors.Is(err, capture.ErrDeviceUnavailable):
			respondError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, session.ErrAlreadyCaptured), errors.Is(err, session.ErrSearchInProgress), errors.Is(err, session.ErrSessionFinished):
			respondError(w, http.StatusConflict, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "capture failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, sess.Status())
}

// Retake discards the held frame and returns the session to idle.
func (h *SessionsHandler) Retake(w http.ResponseWriter, r *http.Request) {
	sess := h.lookup(w, r)
	if sess == nil {
		return
	}

	if err := sess.Retake(); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, sess.Status())
}

// Search starts the selfie submission. Returns 202 immediately; the
// resolution arrives via the status endpoint or the SSE stream. A search
// trigger while one is already in flight is accepted and ignored.
func (h *SessionsHandler) Search(w http.ResponseWriter, r *http.Request) {
	sess := h.lookup(w, r)
	if sess == nil {
		return
	}

	if err := sess.Search(r.Context()); err != nil {
		switch {
		case errors.Is(err, session.ErrNoCapturedImage):
			respondError(w, http.StatusConflict, "no captured image to search with")
		case errors.Is(err, session.ErrSessionFinished):
			respondError(w, http.StatusConflict, "session already finished")
		default:
			respondError(w, http.StatusInternalServerError, "search failed to start")
		}
		return
	}

	respondJSON(w, http.StatusAccepted, sess.Status())
}

// Delete tears the session down. A search still in flight discards its
// result silently.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing session ID")
		return
	}

	h.manager.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

// Events streams search outcomes over SSE until the session finds matches,
// the session is torn down, or the client disconnects. Empty and failed
// outcomes keep the stream open so the attendee can retry on the same
// connection.
func (h *SessionsHandler) Events(w http.ResponseWriter, r *http.Request) {
	sess := h.lookup(w, r)
	if sess == nil {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	eventCh := sess.AddListener()
	defer sess.RemoveListener(eventCh)

	sendSSEEvent(w, flusher, "status", sess.Status())

	for {
		select {
		case <-r.Context().Done():
			return
		case outcome, ok := <-eventCh:
			if !ok {
				// Session torn down.
				return
			}
			sendSSEEvent(w, flusher, string(outcome.Kind), outcome)
			if outcome.Kind == session.OutcomeFound {
				return
			}
		}
	}
}

// sendSSEEvent writes one server-sent event and flushes it.
func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	w.Write([]byte("event: " + eventType + "\n"))
	w.Write([]byte("data: " + string(payload) + "\n\n"))
	flusher.Flush()
}
