// Package capture wraps physical and simulated camera devices behind a
// common feed/snapshot interface for the selfie flow.
package capture

import (
	"context"
	"errors"
)

var (
	// ErrDeviceUnavailable means the camera could not be opened at all
	// (missing device, missing grabber binary, missing permission).
	ErrDeviceUnavailable = errors.New("capture device unavailable")

	// ErrNoActiveFeed means a snapshot was requested before the feed was
	// started or after it was stopped.
	ErrNoActiveFeed = errors.New("no active camera feed")
)

// Frame is a single still image taken from a device feed.
type Frame struct {
	Data []byte
	MIME string
}

// Device produces still frames from a live camera feed. Implementations
// hold no search-related state and are reusable across any number of
// capture attempts within one session.
type Device interface {
	// StartFeed activates the camera. Fails with ErrDeviceUnavailable if
	// no usable device exists.
	StartFeed(ctx context.Context) error

	// StopFeed releases the camera. Safe to call when no feed is active.
	StopFeed()

	// TakeSnapshot returns exactly one still frame from the live feed.
	// Fails with ErrNoActiveFeed when called without an active feed.
	TakeSnapshot(ctx context.Context) (*Frame, error)
}
