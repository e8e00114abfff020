package faceshot

import (
	"context"
	"errors"
	"strings"
)

// GetEvents retrieves the organizer's events. The server decides the order
// (most recent first); it is preserved as-is and never re-sorted locally.
func (fs *FaceShot) GetEvents(ctx context.Context) ([]Event, error) {
	result, err := doGetJSON[[]Event](ctx, fs, "events")
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// CreateEvent creates a new event. The server assigns the id, the shareable
// event code, the default status and a zero photo count.
func (fs *FaceShot) CreateEvent(ctx context.Context, draft EventDraft) (*Event, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, errors.New("event title is required")
	}
	return doPostJSON[Event](ctx, fs, "events", draft)
}
