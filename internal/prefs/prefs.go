// Package prefs persists the viewer settings a user changes from inside the
// TUI: the colour theme and the booking window size. The file lives at
// ~/.config/fars/prefs.toml unless a path is given.
//
// Loading never fails. A missing, unreadable or malformed file yields the
// defaults so a broken prefs file cannot keep fars from starting.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultPrefsPath = "~/.config/fars/prefs.toml"
	defaultTheme     = "Nightfox"
)

// Prefs is the saved viewer state.
type Prefs struct {
	Theme string `toml:"theme"`
	// Days is the booking window chosen in the UI; nil defers to config.
	Days *int `toml:"days,omitempty"`
}

// WindowDays returns the saved window or fallback when none was saved.
func (p Prefs) WindowDays(fallback int) int {
	if p.Days == nil {
		return fallback
	}
	return *p.Days
}

// WithDays returns a copy of p with the window set to days.
func (p Prefs) WithDays(days int) Prefs {
	p.Days = &days
	return p
}

// DefaultPath returns the prefs file used when none is given.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load returns the prefs stored at path (empty means DefaultPath). The error
// is always nil; it is kept so callers treat prefs like config.
func Load(path string) (Prefs, error) {
	defaults := Prefs{Theme: defaultTheme}

	file, err := locate(path)
	if err != nil {
		return defaults, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return defaults, nil
	}

	var saved Prefs
	if err := toml.Unmarshal(data, &saved); err != nil {
		return defaults, nil
	}
	if strings.TrimSpace(saved.Theme) == "" {
		saved.Theme = defaultTheme
	}
	return saved, nil
}

// Save stores p at path (empty means DefaultPath). The file is replaced via
// rename so a crash mid-write leaves the previous prefs in place.
func Save(path string, p Prefs) error {
	file, err := locate(path)
	if err != nil {
		return fmt.Errorf("resolve prefs path: %w", err)
	}
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("create temp prefs: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), file); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

// locate expands a leading ~ and makes path absolute.
func locate(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultPrefsPath
	}
	if rest, ok := strings.CutPrefix(path, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, rest)
	}
	return filepath.Abs(path)
}
