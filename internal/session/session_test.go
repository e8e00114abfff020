package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mpolasek/faceshot/internal/capture"
	"github.com/mpolasek/faceshot/internal/faceshot"
)

// fakeDevice is an in-memory capture device for tests.
type fakeDevice struct {
	mu        sync.Mutex
	active    bool
	snapshots int
	startErr  error
	snapErr   error
	stops     int
}

func (d *fakeDevice) StartFeed(ctx context.Context) error {
	if d.startErr != nil {
		return d.startErr
	}
	d.mu.Lock()
	d.active = true
	d.mu.Unlock()
	return nil
}

func (d *fakeDevice) StopFeed() {
	d.mu.Lock()
	d.active = false
	d.stops++
	d.mu.Unlock()
}

func (d *fakeDevice) TakeSnapshot(ctx context.Context) (*capture.Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snapErr != nil {
		return nil, d.snapErr
	}
	if !d.active {
		return nil, capture.ErrNoActiveFeed
	}
	d.snapshots++
	return &capture.Frame{Data: []byte("fake-jpeg"), MIME: "image/jpeg"}, nil
}

// fakeSearcher counts submissions and can block until released.
type fakeSearcher struct {
	mu      sync.Mutex
	calls   int
	results []faceshot.MatchRef
	err     error
	block   chan struct{}
}

func (s *fakeSearcher) SearchSelfie(ctx context.Context, eventID string, image []byte, mimeType string) ([]faceshot.MatchRef, error) {
	s.mu.Lock()
	s.calls++
	block := s.block
	results, err := s.results, s.err
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	return results, err
}

func (s *fakeSearcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestSession(t *testing.T, searcher *fakeSearcher) (*Session, *fakeDevice) {
	t.Helper()
	device := &fakeDevice{active: true}
	sess, err := New("event-1", device, searcher)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return sess, device
}

func waitOutcome(t *testing.T, ch chan Outcome) Outcome {
	t.Helper()
	select {
	case outcome, ok := <-ch:
		if !ok {
			t.Fatal("outcome channel closed before an outcome arrived")
		}
		return outcome
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for search outcome")
	}
	return Outcome{}
}

func TestNewRequiresEventID(t *testing.T) {
	_, err := New("", &fakeDevice{}, &fakeSearcher{})
	if err == nil {
		t.Fatal("expected error for empty event ID")
	}
}

func TestCaptureMovesToCaptured(t *testing.T) {
	sess, device := newTestSession(t, &fakeSearcher{})

	if err := sess.Capture(context.Background()); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if sess.Phase() != PhaseCaptured {
		t.Errorf("expected phase %s, got %s", PhaseCaptured, sess.Phase())
	}
	if sess.Frame() == nil {
		t.Error("expected a held frame after capture")
	}
	if device.snapshots != 1 {
		t.Errorf("expected exactly 1 snapshot, got %d", device.snapshots)
	}
}

func TestCaptureTwiceRejected(t *testing.T) {
	sess, device := newTestSession(t, &fakeSearcher{})

	if err := sess.Capture(context.Background()); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if err := sess.Capture(context.Background()); !errors.Is(err, ErrAlreadyCaptured) {
		t.Errorf("expected ErrAlreadyCaptured, got %v", err)
	}
	if device.snapshots != 1 {
		t.Errorf("expected 1 snapshot, got %d", device.snapshots)
	}
}

func TestCaptureWithoutFeedStaysIdle(t *testing.T) {
	sess, device := newTestSession(t, &fakeSearcher{})
	device.StopFeed()

	err := sess.Capture(context.Background())
	if !errors.Is(err, capture.ErrNoActiveFeed) {
		t.Fatalf("expected ErrNoActiveFeed, got %v", err)
	}

	if sess.Phase() != PhaseIdle {
		t.Errorf("expected phase to stay %s, got %s", PhaseIdle, sess.Phase())
	}
	status := sess.Status()
	if status.LastError == "" {
		t.Error("expected last error to be recorded")
	}
}

func TestRetakeIsIdempotent(t *testing.T) {
	sess, _ := newTestSession(t, &fakeSearcher{})

	if err := sess.Capture(context.Background()); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	// From captured and again from idle - both must land in idle with no
	// held frame.
	for i := 0; i < 2; i++ {
		if err := sess.Retake(); err != nil {
			t.Fatalf("Retake #%d failed: %v", i+1, err)
		}
		if sess.Phase() != PhaseIdle {
			t.Errorf("Retake #%d: expected phase %s, got %s", i+1, PhaseIdle, sess.Phase())
		}
		if sess.Frame() != nil {
			t.Errorf("Retake #%d: expected no held frame", i+1)
		}
	}
}

func TestRetakeNeverTriggersSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	sess, _ := newTestSession(t, searcher)

	if err := sess.Capture(context.Background()); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if err := sess.Retake(); err != nil {
		t.Fatalf("Retake failed: %v", err)
	}

	if searcher.callCount() != 0 {
		t.Errorf("expected no submissions for a discarded frame, got %d", searcher.callCount())
	}
}

func TestSearchRequiresCapturedImage(t *testing.T) {
	sess, _ := newTestSession(t, &fakeSearcher{})

	if err := sess.Search(context.Background()); !errors.Is(err, ErrNoCapturedImage) {
		t.Errorf("expected ErrNoCapturedImage, got %v", err)
	}
}

func TestSearchSingleInFlight(t *testing.T) {
	block := make(chan struct{})
	searcher := &fakeSearcher{block: block}
	sess, _ := newTestSession(t, searcher)

	outcomes := sess.AddListener()
	defer sess.RemoveListener(outcomes)

	if err := sess.Capture(context.Background()); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if err := sess.Search(context.Background()); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	// Second and third triggers while the submission is outstanding must
	// be ignored, not queued.
	if err := sess.Search(context.Background()); err != nil {
		t.Errorf("expected no-op, got %v", err)
	}
	if err := sess.Search(context.Background()); err != nil {
		t.Errorf("expected no-op, got %v", err)
	}

	close(block)
	waitOutcome(t, outcomes)

	if searcher.callCount() != 1 {
		t.Errorf("expected exactly 1 submission, got %d", searcher.callCount())
	}
}

func TestSearchFoundHandsOffResults(t *testing.T) {
	refs := []faceshot.MatchRef{
		{PhotoID: "ref1", URL: "https://example.com/ref1.jpg"},
		{PhotoID: "ref2", URL: "https://example.com/ref2.jpg"},
	}
	searcher := &fakeSearcher{results: refs}
	sess, _ := newTestSession(t, searcher)

	outcomes := sess.AddListener()
	defer sess.RemoveListener(outcomes)

	if err := sess.Capture(context.Background()); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if err := sess.Search(context.Background()); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	outcome := waitOutcome(t, outcomes)
	if outcome.Kind != OutcomeFound {
		t.Fatalf("expected outcome %s, got %s", OutcomeFound, outcome.Kind)
	}
	if outcome.EventID != "event-1" {
		t.Errorf("expected event ID 'event-1', got '%s'", outcome.EventID)
	}
	if len(outcome.Results) != 2 || outcome.Results[0].PhotoID != "ref1" || outcome.Results[1].PhotoID != "ref2" {
		t.Errorf("expected exactly [ref1 ref2], got %+v", outcome.Results)
	}

	if sess.Phase() != PhaseFound {
		t.Errorf("expected phase %s, got %s", PhaseFound, sess.Phase())
	}
	if sess.Frame() != nil {
		t.Error("expected held frame to be released after resolution")
	}

	// The session is finished - no further transitions.
	if err := sess.Capture(context.Background()); !errors.Is(err, ErrSessionFinished) {
		t.Errorf("expected ErrSessionFinished, got %v", err)
	}
	if err := sess.Retake(); !errors.Is(err, ErrSessionFinished) {
		t.Errorf("expected ErrSessionFinished, got %v", err)
	}
}

func TestSearchEmptyResultReturnsToIdle(t *testing.T) {
	searcher := &fakeSearcher{results: nil}
	sess, _ := newTestSession(t, searcher)

	outcomes := sess.AddListener()
	defer sess.RemoveListener(outcomes)

	if err := sess.Capture(context.Background()); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if err := sess.Search(context.Background()); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	outcome := waitOutcome(t, outcomes)
	if outcome.Kind != OutcomeEmpty {
		t.Fatalf("expected outcome %s, got %s", OutcomeEmpty, outcome.Kind)
	}

	if sess.Phase() != PhaseIdle {
		t.Errorf("expected phase %s, got %s", PhaseIdle, sess.Phase())
	}
	if sess.Frame() != nil {
		t.Error("expected held frame to be released")
	}

	// Re-armed: the attendee can try another selfie.
	if err := sess.Capture(context.Background()); err != nil {
		t.Errorf("expected capture to work after empty result, got %v", err)
	}
}

func TestSearchFailureSurfacesReason(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("Network error")}
	sess, _ := newTestSession(t, searcher)

	outcomes := sess.AddListener()
	defer sess.RemoveListener(outcomes)

	if err := sess.Capture(context.Background()); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if err := sess.Search(context.Background()); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	outcome := waitOutcome(t, outcomes)
	if outcome.Kind != OutcomeFailed {
		t.Fatalf("expected outcome %s, got %s", OutcomeFailed, outcome.Kind)
	}
	if outcome.Reason != "Network error" {
		t.Errorf("expected reason 'Network error', got '%s'", outcome.Reason)
	}

	if sess.Phase() != PhaseIdle {
		t.Errorf("expected phase %s, got %s", PhaseIdle, sess.Phase())
	}
	if sess.Frame() != nil {
		t.Error("expected held frame to be released")
	}
	if sess.Status().LastError != "Network error" {
		t.Errorf("expected last error 'Network error', got '%s'", sess.Status().LastError)
	}
}

func TestRetakeDuringSearchRejected(t *testing.T) {
	block := make(chan struct{})
	searcher := &fakeSearcher{block: block}
	sess, _ := newTestSession(t, searcher)

	outcomes := sess.AddListener()
	defer sess.RemoveListener(outcomes)

	if err := sess.Capture(context.Background()); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if err := sess.Search(context.Background()); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if err := sess.Retake(); !errors.Is(err, ErrSearchInProgress) {
		t.Errorf("expected ErrSearchInProgress, got %v", err)
	}

	close(block)
	waitOutcome(t, outcomes)
}

func TestCloseDiscardsLateOutcome(t *testing.T) {
	block := make(chan struct{})
	refs := []faceshot.MatchRef{{PhotoID: "ref1"}}
	searcher := &fakeSearcher{results: refs, block: block}
	sess, _ := newTestSession(t, searcher)

	outcomes := sess.AddListener()

	if err := sess.Capture(context.Background()); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if err := sess.Search(context.Background()); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	sess.Close()
	close(block)

	// The listener channel was closed by teardown; the late resolution
	// must not deliver an outcome or resurrect the session.
	select {
	case outcome, ok := <-outcomes:
		if ok {
			t.Errorf("expected no outcome after teardown, got %+v", outcome)
		}
	case <-time.After(time.Second):
		t.Fatal("expected listener channel to be closed")
	}

	if sess.Results() != nil {
		t.Error("expected late results to be discarded silently")
	}
}

func TestTeardownRacingResolutionDoesNotPanic(t *testing.T) {
	// A resolution landing while the session is torn down and its listener
	// channels are closed must never send on a closed channel.
	for i := 0; i < 200; i++ {
		block := make(chan struct{})
		searcher := &fakeSearcher{results: []faceshot.MatchRef{{PhotoID: "ref1"}}, block: block}
		sess, _ := newTestSession(t, searcher)
		outcomes := sess.AddListener()

		if err := sess.Capture(context.Background()); err != nil {
			t.Fatalf("Capture failed: %v", err)
		}
		if err := sess.Search(context.Background()); err != nil {
			t.Fatalf("Search failed: %v", err)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			close(block)
		}()
		go func() {
			defer wg.Done()
			sess.RemoveListener(outcomes)
			sess.Close()
		}()
		wg.Wait()
	}

	// Let detached resolutions still in flight finish inside the test binary.
	time.Sleep(50 * time.Millisecond)
}

func TestResultsReturnsCopy(t *testing.T) {
	refs := []faceshot.MatchRef{{PhotoID: "ref1"}, {PhotoID: "ref2"}}
	sess, _ := newTestSession(t, &fakeSearcher{results: refs})

	outcomes := sess.AddListener()
	defer sess.RemoveListener(outcomes)

	if err := sess.Capture(context.Background()); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if err := sess.Search(context.Background()); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	waitOutcome(t, outcomes)

	results := sess.Results()
	results[0].PhotoID = "mangled"

	if again := sess.Results(); again[0].PhotoID != "ref1" {
		t.Errorf("expected session state to be immune to caller mutation, got %+v", again)
	}

	status := sess.Status()
	status.Results[1].PhotoID = "mangled"
	if again := sess.Status(); again.Results[1].PhotoID != "ref2" {
		t.Errorf("expected status snapshot to be detached, got %+v", again.Results)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	sess, _ := newTestSession(t, &fakeSearcher{})
	sess.Close()
	sess.Close()

	if err := sess.Capture(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}
