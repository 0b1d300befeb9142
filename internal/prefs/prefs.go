// Package prefs stores the small per-user choices the terminal UI remembers between runs.
package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const prefsFile = "prefs.toml"

// Prefs is the on-disk preference set.
type Prefs struct {
	EnabledAgents []string `toml:"enabled_agents"`
	DebtStrategy  string   `toml:"debt_strategy"`
	SessionID     string   `toml:"session_id"`
}

// DefaultPath returns prefs.toml under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "smartsavernet", prefsFile), nil
}

// Load reads prefs from path. A missing file yields zero prefs and no error.
func Load(path string) (Prefs, error) {
	var p Prefs
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read prefs: %w", err)
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return Prefs{}, fmt.Errorf("parse prefs %s: %w", path, err)
	}
	return p, nil
}

// Save writes prefs atomically via a temp file and rename.
func Save(path string, p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(p); err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
