// Package config resolves the files a migration run reads and writes.
//
// Values come from, in order of precedence: command-line flags, the process
// environment (optionally seeded from a .env file), an optional settings
// file, and built-in defaults.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// AppName names the settings directory under the XDG config home.
const AppName = "codex-mcp-migrate"

// Settings is the optional settings file. Empty fields fall through to the
// defaults.
type Settings struct {
	Source    string `toml:"source"`
	Target    string `toml:"target"`
	BackupDir string `toml:"backup_dir"`

	// Backup is nil when the file does not mention it.
	Backup *bool `toml:"backup"`
}

// Load reads settings from the standard path.
// Search order:
//  1. $XDG_CONFIG_HOME/codex-mcp-migrate/config.toml
//  2. ~/.config/codex-mcp-migrate/config.toml
//
// If no file exists, returns empty Settings.
func Load() (*Settings, error) {
	for _, p := range settingsSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	return &Settings{}, nil
}

// LoadFromFile reads settings from a specific file path.
func LoadFromFile(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, err
	}
	defer f.Close()

	s, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// LoadFromReader reads settings from an io.Reader.
func LoadFromReader(r io.Reader) (*Settings, error) {
	s := &Settings{}
	md, err := toml.NewDecoder(r).Decode(s)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown setting %q", undecoded[0].String())
	}
	return s, nil
}

// settingsSearchPaths returns the ordered list of settings paths to try.
func settingsSearchPaths() []string {
	home, _ := os.UserHomeDir()
	var paths []string

	xdg := xdgConfigHome(home)
	paths = append(paths, filepath.Join(xdg, AppName, "config.toml"))

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, AppName, "config.toml"))
	}

	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}
