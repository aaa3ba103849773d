package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"overtimer/internal/core/model"
)

// BoundsFileName is the placement document inside the config directory.
const BoundsFileName = "window-state.yaml"

type boundsDocument struct {
	WindowBounds map[string]model.Bounds `yaml:"window_bounds"`
}

// BoundsFile persists per-preset window bounds as a YAML document.
type BoundsFile struct {
	path string
}

// NewBoundsFile stores bounds at path.
func NewBoundsFile(path string) *BoundsFile {
	return &BoundsFile{path: path}
}

// DefaultBoundsPath returns the document path under the user config dir.
func DefaultBoundsPath(appName string) (string, error) {
	configDir, err := ConfigDir(appName)
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, BoundsFileName), nil
}

// ConfigDir returns the per-user directory for appName.
func ConfigDir(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName), nil
}

// Path returns the document location.
func (file *BoundsFile) Path() string {
	return file.path
}

// Load reads the saved bounds. A missing file is an empty document.
func (file *BoundsFile) Load() (map[string]model.Bounds, error) {
	rawData, err := os.ReadFile(file.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]model.Bounds{}, nil
		}
		return map[string]model.Bounds{}, fmt.Errorf("read bounds file: %w", err)
	}

	var document boundsDocument
	if err := yaml.Unmarshal(rawData, &document); err != nil {
		return map[string]model.Bounds{}, fmt.Errorf("parse bounds yaml: %w", err)
	}
	if document.WindowBounds == nil {
		document.WindowBounds = map[string]model.Bounds{}
	}
	return document.WindowBounds, nil
}

// Save replaces the document with bounds. The file is swapped in atomically
// so a crash never leaves a truncated document behind.
func (file *BoundsFile) Save(bounds map[string]model.Bounds) error {
	dir := filepath.Dir(file.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(boundsDocument{WindowBounds: bounds})
	if err != nil {
		return fmt.Errorf("marshal bounds yaml: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "window-state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp bounds file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cleanup := true
	defer func() {
		if cleanup {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(serialized); err != nil {
		return fmt.Errorf("write temp bounds file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp bounds file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp bounds file: %w", err)
	}
	if err := os.Rename(tmpPath, file.path); err != nil {
		return fmt.Errorf("replace bounds file: %w", err)
	}

	cleanup = false
	return nil
}
