package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mpolasek/faceshot/internal/faceshot"
	"github.com/mpolasek/faceshot/internal/workspace"
)

// EventsHandler exposes the organizer's event workspace to kiosk frontends.
type EventsHandler struct {
	workspace *workspace.Workspace
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(ws *workspace.Workspace) *EventsHandler {
	return &EventsHandler{workspace: ws}
}

// List refreshes and returns the event collection in server order. A failed
// refresh keeps the previously loaded collection usable: when one exists it
// is returned with a 200 and a notice header, otherwise the load failure
// surfaces as 502.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := h.workspace.LoadEvents(r.Context()); err != nil {
		log.Printf("event list refresh failed: %v", err)
		if !h.workspace.Loaded() {
			respondError(w, http.StatusBadGateway, "failed to load events")
			return
		}
		w.Header().Set("X-Events-Stale", "true")
	}

	respondJSON(w, http.StatusOK, h.workspace.Events())
}

// Create creates a new event from the posted draft. The draft becomes the
// workspace form state, so a failed create preserves it for retry.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft faceshot.EventDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	h.workspace.SetDraft(draft)

	event, err := h.workspace.CreateEvent(r.Context())
	if err != nil {
		if errors.Is(err, workspace.ErrTitleRequired) {
			respondError(w, http.StatusBadRequest, "title is required")
			return
		}
		log.Printf("event creation failed: %v", err)
		respondError(w, http.StatusBadGateway, "failed to create event")
		return
	}

	respondJSON(w, http.StatusCreated, event)
}

// Me returns the organizer's display name for presentation.
func (h *EventsHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"name": h.workspace.Identity().Name,
	})
}
