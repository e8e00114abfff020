package cmd

import (
	"errors"

	"github.com/mpolasek/faceshot/internal/capture"
	"github.com/mpolasek/faceshot/internal/config"
	"github.com/mpolasek/faceshot/internal/faceshot"
)

// newClient builds a FaceShot API client from config. Prefers an existing
// token over credential login.
func newClient(cfg *config.Config) (*faceshot.FaceShot, error) {
	if cfg.API.URL == "" {
		return nil, errors.New("FACESHOT_API_URL environment variable is required")
	}
	if cfg.API.Token != "" {
		return faceshot.NewFaceShotFromToken(cfg.API.URL, cfg.API.Token)
	}
	if cfg.API.Email != "" && cfg.API.Password != "" {
		return faceshot.NewFaceShot(cfg.API.URL, cfg.API.Email, cfg.API.Password)
	}
	return nil, errors.New("set FACESHOT_TOKEN or FACESHOT_EMAIL and FACESHOT_PASSWORD")
}

// newDevice builds the configured capture device. CAPTURE_DEVICE selects
// either the folder device (reading frames from CAPTURE_SOURCE) or a
// grabber preset from devices.yaml.
func newDevice(cfg *config.Config) (capture.Device, error) {
	switch cfg.Capture.Device {
	case "", "folder":
		if cfg.Capture.Source == "" {
			return nil, errors.New("CAPTURE_SOURCE environment variable is required for the folder device")
		}
		return capture.NewFolderDevice(cfg.Capture.Source, cfg.Capture.MaxEdge), nil
	default:
		preset, ok := cfg.GetDevicePreset(cfg.Capture.Device)
		if !ok {
			return nil, errors.New("unknown capture device: " + cfg.Capture.Device)
		}
		maxEdge := preset.MaxEdge
		if maxEdge == 0 {
			maxEdge = cfg.Capture.MaxEdge
		}
		return capture.NewExecDevice(preset.Command, maxEdge), nil
	}
}
