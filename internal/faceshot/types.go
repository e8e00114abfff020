package faceshot

// Event represents a photo-sharing event owned by an organizer
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	EventCode   string `json:"event_code"`
	Status      string `json:"status"`
	TotalPhotos int    `json:"total_photos"`
}

// Event status values reported by the API. The lifecycle is owned entirely
// by the server; clients only render these.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// EventDraft is the payload for creating an event. Title is required,
// empty optional fields are omitted from the request.
type EventDraft struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
}

// MatchRef points to a photo the matching service judged similar to a
// submitted selfie. The structure is passed through to gallery consumers
// untouched.
type MatchRef struct {
	PhotoID string  `json:"photo_id"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
}

// User is the authenticated organizer. The name is used for presentation
// only.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
