package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed devices.yaml
var devicesYAML []byte

type Config struct {
	API     APIConfig
	Capture CaptureConfig
	Station StationConfig
	Devices DevicesConfig
}

type APIConfig struct {
	URL      string
	Token    string
	Email    string
	Password string
	Domain   string // public domain for generating attend links (e.g. https://faceshot.example.com)
}

// AttendLink returns an OSC 8 hyperlink for terminal emulators (iTerm2, etc.)
// Displays the event code but makes it clickable to open the attendee flow.
// Returns empty string if Domain is not set.
func (c *APIConfig) AttendLink(eventCode string) string {
	if c.Domain == "" {
		return ""
	}
	url := c.Domain + "/attend?code=" + eventCode
	// OSC 8 hyperlink format: \e]8;;URL\e\\TEXT\e]8;;\e\\
	return "\x1b]8;;" + url + "\x1b\\" + eventCode + "\x1b]8;;\x1b\\"
}

type CaptureConfig struct {
	Device  string // "folder" or a preset name from devices.yaml
	Source  string // directory for the folder device
	MaxEdge int    // longest edge of submitted frames (default 1280)
}

type StationConfig struct {
	Name  string // display name shown by kiosk frontends
	Token string // bearer token required by the station API (empty disables auth)
}

type DevicesConfig struct {
	Presets map[string]DevicePreset `yaml:"presets"`
}

// DevicePreset describes a grabber-backed capture device. The command
// template must contain the {out} placeholder for the snapshot path.
type DevicePreset struct {
	Command []string `yaml:"command"`
	MaxEdge int      `yaml:"max_edge"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func Load() *Config {
	var devices DevicesConfig
	if err := yaml.Unmarshal(devicesYAML, &devices); err != nil {
		// Embedded file, this should never happen in practice.
		panic("failed to unmarshal embedded devices.yaml: " + err.Error())
	}

	return &Config{
		API: APIConfig{
			URL:      os.Getenv("FACESHOT_API_URL"),
			Token:    os.Getenv("FACESHOT_TOKEN"),
			Email:    os.Getenv("FACESHOT_EMAIL"),
			Password: os.Getenv("FACESHOT_PASSWORD"),
			Domain:   os.Getenv("FACESHOT_DOMAIN"),
		},
		Capture: CaptureConfig{
			Device:  os.Getenv("CAPTURE_DEVICE"),
			Source:  os.Getenv("CAPTURE_SOURCE"),
			MaxEdge: envInt("CAPTURE_MAX_EDGE", 1280),
		},
		Station: StationConfig{
			Name:  os.Getenv("STATION_NAME"),
			Token: os.Getenv("STATION_TOKEN"),
		},
		Devices: devices,
	}
}

// GetDevicePreset returns the capture preset for a device name.
func (c *Config) GetDevicePreset(name string) (DevicePreset, bool) {
	preset, ok := c.Devices.Presets[name]
	return preset, ok
}
