// Package config provides configuration loading and management for volumeslices.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the application configuration loaded from YAML
type Config struct {
	// Window parameters
	Window struct {
		// Width and Height are the initial framebuffer size in pixels
		Width  int `yaml:"width"`
		Height int `yaml:"height"`

		Title string `yaml:"title"`

		// VSync enables swap interval 1
		VSync bool `yaml:"vsync"`
	} `yaml:"window"`

	// Dataset parameters
	Dataset struct {
		// Path is the volume file to load at startup
		Path string `yaml:"path"`
	} `yaml:"dataset"`

	// Camera parameters
	Camera struct {
		// FieldOfView is the vertical field of view in degrees
		FieldOfView float64 `yaml:"fieldOfView"`

		Near float64 `yaml:"near"`
		Far  float64 `yaml:"far"`

		// Azimuth and Altitude are the initial orbit angles in degrees
		Azimuth  float64 `yaml:"azimuth"`
		Altitude float64 `yaml:"altitude"`

		// Distance is the initial orbit radius in world units
		Distance float64 `yaml:"distance"`

		// RotateSpeed is radians per pixel of mouse drag
		RotateSpeed float64 `yaml:"rotateSpeed"`

		// ZoomSpeed is world units per scroll step
		ZoomSpeed float64 `yaml:"zoomSpeed"`
	} `yaml:"camera"`

	// Render parameters
	Render struct {
		// ModelScale is the uniform scale of the slice cube
		ModelScale float64 `yaml:"modelScale"`

		// ClearColor is the RGBA background
		ClearColor [4]float32 `yaml:"clearColor,flow"`
	} `yaml:"render"`

	// Export parameters
	Export struct {
		// OutputDir is where slice image sequences are written
		OutputDir string `yaml:"outputDir"`

		// Format is one of png, jpeg, tiff or bmp
		Format string `yaml:"format"`

		// Quality is the JPEG quality
		Quality int `yaml:"quality"`
	} `yaml:"export"`

	// Remote control parameters
	Remote struct {
		Enabled bool `yaml:"enabled"`

		// Address is the listen address of the websocket server
		Address string `yaml:"address"`
	} `yaml:"remote"`

	// Logging parameters
	Logging struct {
		// Level is one of debug, info, warn or error
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Window.Width = 1280
	cfg.Window.Height = 720
	cfg.Window.Title = "Volume Slices"
	cfg.Window.VSync = true

	cfg.Camera.FieldOfView = 60
	cfg.Camera.Near = 0.01
	cfg.Camera.Far = 1000
	cfg.Camera.Azimuth = 90
	cfg.Camera.Altitude = 60
	cfg.Camera.Distance = 15
	cfg.Camera.RotateSpeed = 0.01
	cfg.Camera.ZoomSpeed = 0.5

	cfg.Render.ModelScale = 4
	cfg.Render.ClearColor = [4]float32{0, 0, 0, 1}

	cfg.Export.OutputDir = "slices"
	cfg.Export.Format = "png"
	cfg.Export.Quality = 90

	cfg.Remote.Enabled = false
	cfg.Remote.Address = "127.0.0.1:8089"

	cfg.Logging.Level = "info"

	return cfg
}

// LoadConfig loads configuration from a YAML file on top of the defaults and
// validates the result. A missing file yields the defaults; any other read,
// parse or validation failure is returned.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig validates cfg and writes it to a YAML file, creating parent
// directories as needed.
func SaveConfig(cfg *Config, configPath string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Camera.FieldOfView <= 0 || c.Camera.FieldOfView >= 180:
		return fmt.Errorf("%w: field of view %g must be in (0, 180)", ErrInvalid, c.Camera.FieldOfView)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: clip planes near=%g far=%g", ErrInvalid, c.Camera.Near, c.Camera.Far)
	case c.Camera.Distance <= 0:
		return fmt.Errorf("%w: camera distance %g", ErrInvalid, c.Camera.Distance)
	case c.Render.ModelScale <= 0:
		return fmt.Errorf("%w: model scale %g", ErrInvalid, c.Render.ModelScale)
	case c.Export.Quality < 1 || c.Export.Quality > 100:
		return fmt.Errorf("%w: jpeg quality %d", ErrInvalid, c.Export.Quality)
	case c.Remote.Enabled && c.Remote.Address == "":
		return fmt.Errorf("%w: remote control enabled without an address", ErrInvalid)
	}

	switch c.Export.Format {
	case "png", "jpeg", "jpg", "tiff", "tif", "bmp":
	default:
		return fmt.Errorf("%w: export format %q", ErrInvalid, c.Export.Format)
	}
	return nil
}
