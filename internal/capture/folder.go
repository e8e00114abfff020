package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// isImageFile checks if a file has a supported image extension.
func isImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".bmp":
		return true
	}
	return false
}

// FolderDevice simulates a camera by serving image files from a directory
// in filename order, wrapping around when exhausted. Used by photo-booth
// rigs fed from a watch folder and by development setups without a camera.
type FolderDevice struct {
	dir     string
	maxEdge int

	mu     sync.Mutex
	files  []string
	next   int
	active bool
}

// NewFolderDevice creates a folder-backed device. maxEdge bounds the longer
// edge of returned frames.
func NewFolderDevice(dir string, maxEdge int) *FolderDevice {
	return &FolderDevice{dir: dir, maxEdge: maxEdge}
}

// StartFeed scans the directory for image files. Fails with
// ErrDeviceUnavailable when the directory is missing or holds no images.
func (d *FolderDevice) StartFeed(ctx context.Context) error {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrDeviceUnavailable, d.dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(d.dir, entry.Name()))
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no images in %s", ErrDeviceUnavailable, d.dir)
	}
	sort.Strings(files)

	d.mu.Lock()
	d.files = files
	d.next = 0
	d.active = true
	d.mu.Unlock()
	return nil
}

// StopFeed deactivates the device.
func (d *FolderDevice) StopFeed() {
	d.mu.Lock()
	d.active = false
	d.mu.Unlock()
}

// TakeSnapshot returns the next image from the folder as a normalized frame.
func (d *FolderDevice) TakeSnapshot(ctx context.Context) (*Frame, error) {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return nil, ErrNoActiveFeed
	}
	path := d.files[d.next]
	d.next = (d.next + 1) % len(d.files)
	d.mu.Unlock()

	data, err := os.ReadFile(path) //nolint:gosec // path collected from the configured folder
	if err != nil {
		return nil, fmt.Errorf("could not read frame %s: %w", path, err)
	}

	return NormalizeFrame(data, d.maxEdge)
}
