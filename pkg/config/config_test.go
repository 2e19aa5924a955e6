package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}
	if cfg.Render.ModelScale != 4 {
		t.Errorf("Expected default model scale 4, got %f", cfg.Render.ModelScale)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for a missing file, got %v", err)
	}
	if cfg.Window.Width != DefaultConfig().Window.Width {
		t.Errorf("Expected default width, got %d", cfg.Window.Width)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Dataset.Path = "data/head.vol"
	cfg.Camera.Distance = 22.5
	cfg.Render.ClearColor = [4]float32{0.1, 0.2, 0.3, 1}
	cfg.Remote.Enabled = true

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Dataset.Path != cfg.Dataset.Path {
		t.Errorf("Expected dataset path %q, got %q", cfg.Dataset.Path, loaded.Dataset.Path)
	}
	if loaded.Camera.Distance != cfg.Camera.Distance {
		t.Errorf("Expected distance %f, got %f", cfg.Camera.Distance, loaded.Camera.Distance)
	}
	if loaded.Render.ClearColor != cfg.Render.ClearColor {
		t.Errorf("Expected clear color %v, got %v", cfg.Render.ClearColor, loaded.Render.ClearColor)
	}
	if !loaded.Remote.Enabled {
		t.Error("Expected remote control to stay enabled")
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("dataset:\n  path: foo.vol\nlogging:\n  level: debug\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Dataset.Path != "foo.vol" || cfg.Logging.Level != "debug" {
		t.Errorf("Expected file values, got path=%q level=%q", cfg.Dataset.Path, cfg.Logging.Level)
	}
	if cfg.Camera.FieldOfView != 60 {
		t.Errorf("Expected default field of view to survive, got %f", cfg.Camera.FieldOfView)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("window: [unterminated"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected a parse error, got nil")
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("CreateDefaultConfigFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected config file to exist: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"flat field of view", func(c *Config) { c.Camera.FieldOfView = 180 }},
		{"far before near", func(c *Config) { c.Camera.Far = c.Camera.Near / 2 }},
		{"zero scale", func(c *Config) { c.Render.ModelScale = 0 }},
		{"quality", func(c *Config) { c.Export.Quality = 101 }},
		{"format", func(c *Config) { c.Export.Format = "gif" }},
		{"remote without address", func(c *Config) { c.Remote.Enabled = true; c.Remote.Address = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestValidateAcceptsFormatAliases(t *testing.T) {
	for _, format := range []string{"png", "jpg", "jpeg", "tif", "tiff", "bmp"} {
		cfg := DefaultConfig()
		cfg.Export.Format = format
		if err := cfg.Validate(); err != nil {
			t.Errorf("Expected format %q to validate, got %v", format, err)
		}
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("render:\n  modelScale: -1\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid, got %v", err)
	}
}

func TestLoadConfigUnreadablePath(t *testing.T) {
	// A directory exists but cannot be read as a file; that is not "missing".
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Error("Expected an error for a directory path, got nil")
	}
}

func TestSaveConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Window.Height = 0
	if err := SaveConfig(cfg, path); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Expected ErrInvalid, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected nothing written for an invalid config")
	}
}
