// Package settings provides storage for i18nedit user settings.
//
// Settings live in the XDG config directory:
//
//	$XDG_CONFIG_HOME/i18nedit/settings.yaml  (default: ~/.config/i18nedit/)
//
// The file keeps output preferences, the update-check configuration, the
// most recently opened resource directories and the last selected and
// expanded keys. Environment variables override file values for the
// current process only:
//
//	I18NEDIT_MINIFY            minify JSON output
//	I18NEDIT_NO_UPDATE_CHECK   skip the release check
//	I18NEDIT_UPDATE_TIMEOUT    release check timeout (e.g. "10s")
//	I18NEDIT_RELEASES_URL      release endpoint
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	configDirName = "i18nedit"
	fileName      = "settings.yaml"

	// MaxHistory is the number of recent directories remembered.
	MaxHistory = 5
	// DefaultUpdateTimeout bounds the release check.
	DefaultUpdateTimeout = 30 * time.Second
	// DefaultReleasesURL is the GitHub endpoint for the latest release.
	DefaultReleasesURL = "https://api.github.com/repos/minios-linux/i18nedit/releases/latest"
)

// Settings are the persisted user preferences.
type Settings struct {
	// MinifyOutput writes JSON resources without indentation.
	MinifyOutput bool `yaml:"minify_output" env:"I18NEDIT_MINIFY"`
	// NoUpdateCheck disables the background release check.
	NoUpdateCheck bool `yaml:"no_update_check" env:"I18NEDIT_NO_UPDATE_CHECK"`
	// UpdateTimeout bounds the release check.
	UpdateTimeout time.Duration `yaml:"update_timeout" env:"I18NEDIT_UPDATE_TIMEOUT"`
	// ReleasesURL is queried for the latest release.
	ReleasesURL string `yaml:"releases_url" env:"I18NEDIT_RELEASES_URL"`

	// History holds recently opened directories, most recent first.
	History []string `yaml:"history,omitempty"`
	// LastSelectedKey is the key selected when the session was closed.
	LastSelectedKey string `yaml:"last_selected_key,omitempty"`
	// LastExpandedKeys are the groups that were expanded.
	LastExpandedKeys []string `yaml:"last_expanded_keys,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() *Settings {
	return &Settings{
		UpdateTimeout: DefaultUpdateTimeout,
		ReleasesURL:   DefaultReleasesURL,
	}
}

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// Dir returns the i18nedit config directory.
// Respects $XDG_CONFIG_HOME (falls back to ~/.config).
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, configDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", configDirName), nil
}

// FilePath returns the settings file path for display purposes.
func FilePath() string {
	dir, err := Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, fileName)
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the settings file and applies environment overrides.
func Load() (*Settings, error) {
	s, err := LoadFile()
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(s); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile reads the settings file without environment overrides.
// Returns the defaults if the file doesn't exist.
func LoadFile() (*Settings, error) {
	s := Default()
	path := FilePath()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	s.normalize()
	return s, nil
}

// ApplyEnv overrides fields of s from I18NEDIT_* environment variables.
func ApplyEnv(s *Settings) error {
	if err := env.Parse(s); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	s.normalize()
	return nil
}

func (s *Settings) normalize() {
	if s.UpdateTimeout <= 0 {
		s.UpdateTimeout = DefaultUpdateTimeout
	}
	if s.ReleasesURL == "" {
		s.ReleasesURL = DefaultReleasesURL
	}
	if len(s.History) > MaxHistory {
		s.History = s.History[:MaxHistory]
	}
}

// Save writes s to the settings file, creating the directory if needed.
func Save(s *Settings) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Update loads the settings file, applies fn and saves the result.
// Environment overrides are not persisted.
func Update(fn func(*Settings)) error {
	s, err := LoadFile()
	if err != nil {
		return err
	}
	fn(s)
	return Save(s)
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

// AddHistory puts dir at the front of the history, removing an earlier
// occurrence and dropping the oldest entries beyond MaxHistory.
func (s *Settings) AddHistory(dir string) {
	s.History = slices.DeleteFunc(s.History, func(d string) bool { return d == dir })
	s.History = slices.Insert(s.History, 0, dir)
	if len(s.History) > MaxHistory {
		s.History = s.History[:MaxHistory]
	}
}

// LastDir returns the most recently opened directory.
func (s *Settings) LastDir() (string, bool) {
	if len(s.History) == 0 {
		return "", false
	}
	return s.History[0], true
}
