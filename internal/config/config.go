// Package config persists user preferences for the session manager.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hadar/agent-session-manager/internal/session"
)

// EnvConfigDir overrides the directory holding config.json
const EnvConfigDir = "AGENT_CONFIG_DIR"

// DefaultExportPath is used until the user picks another export directory
const DefaultExportPath = "~/claude-exports"

const fileName = "config.json"

// ErrInvalidExportPath marks a rejected export path
var ErrInvalidExportPath = fmt.Errorf("invalid export path: %w", session.ErrValidation)

// AppConfig represents user preferences
type AppConfig struct {
	ExportPath string `json:"export_path"`
	Theme      string `json:"theme,omitempty"` // Color theme name
}

// Default returns the configuration used when nothing is stored
func Default() AppConfig {
	return AppConfig{ExportPath: DefaultExportPath}
}

// Dir returns the directory holding the config file
func Dir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(base, "agent-session-manager"), nil
}

// Path returns the path to the config file
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the config at path. A missing file yields the defaults; a
// corrupt file yields the defaults together with the decode error.
func Load(path string) (AppConfig, error) {
	cfg := Default()

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var stored AppConfig
	if err := json.Unmarshal(content, &stored); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if stored.ExportPath == "" {
		stored.ExportPath = DefaultExportPath
	}
	return stored, nil
}

// Save writes the whole config to path
func Save(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	content, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	// Written beside the target and renamed over it so readers never see a partial file
	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(append(content, '\n'))
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpPath, 0o644)
	}
	if err == nil {
		err = os.Rename(tmpPath, path)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ExpandPath replaces a leading ~ with the home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ValidateExportPath trims and checks a settings buffer. It returns the
// value to store, which keeps a leading ~ as typed.
func ValidateExportPath(buf string) (string, error) {
	value := strings.TrimSpace(buf)
	if value == "" {
		return "", fmt.Errorf("%w: path is empty", ErrInvalidExportPath)
	}

	expanded, err := ExpandPath(value)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(expanded) {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidExportPath, value)
	}
	return value, nil
}

// ResolvedExportPath returns the export directory with ~ expanded
func (c AppConfig) ResolvedExportPath() (string, error) {
	path := c.ExportPath
	if path == "" {
		path = DefaultExportPath
	}
	return ExpandPath(path)
}
