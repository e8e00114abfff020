package capture

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// outPlaceholder marks where the snapshot output path goes in a grabber
// command template.
const outPlaceholder = "{out}"

// ExecDevice captures frames by running an external grabber binary
// (fswebcam, imagesnap, libcamera-jpeg) once per snapshot. The command
// template must contain the {out} placeholder for the output file.
type ExecDevice struct {
	command []string
	maxEdge int

	mu     sync.Mutex
	active bool
}

// NewExecDevice creates a device backed by a grabber command template.
func NewExecDevice(command []string, maxEdge int) *ExecDevice {
	return &ExecDevice{command: command, maxEdge: maxEdge}
}

// StartFeed verifies the grabber binary exists. Fails with
// ErrDeviceUnavailable when it cannot be found in PATH.
func (d *ExecDevice) StartFeed(ctx context.Context) error {
	if len(d.command) == 0 {
		return fmt.Errorf("%w: empty capture command", ErrDeviceUnavailable)
	}
	if _, err := exec.LookPath(d.command[0]); err != nil {
		return fmt.Errorf("%w: %s not found", ErrDeviceUnavailable, d.command[0])
	}

	d.mu.Lock()
	d.active = true
	d.mu.Unlock()
	return nil
}

// StopFeed deactivates the device.
func (d *ExecDevice) StopFeed() {
	d.mu.Lock()
	d.active = false
	d.mu.Unlock()
}

// TakeSnapshot runs the grabber once and returns the normalized frame.
func (d *ExecDevice) TakeSnapshot(ctx context.Context) (*Frame, error) {
	d.mu.Lock()
	active := d.active
	d.mu.Unlock()
	if !active {
		return nil, ErrNoActiveFeed
	}

	outPath := filepath.Join(os.TempDir(), "faceshot-"+strconv.FormatInt(time.Now().UnixNano(), 10)+".jpg")
	defer os.Remove(outPath)

	args := make([]string, 0, len(d.command)-1)
	for _, arg := range d.command[1:] {
		if arg == outPlaceholder {
			arg = outPath
		}
		args = append(args, arg)
	}

	cmd := exec.CommandContext(ctx, d.command[0], args...) //nolint:gosec // command comes from operator config
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("capture command failed: %w: %s", err, string(output))
	}

	data, err := os.ReadFile(outPath) //nolint:gosec // temp file created above
	if err != nil {
		return nil, fmt.Errorf("could not read captured frame: %w", err)
	}

	return NormalizeFrame(data, d.maxEdge)
}
