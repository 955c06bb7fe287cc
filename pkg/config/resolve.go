package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by Resolve.
const (
	EnvCodexHome = "CODEX_HOME"
	EnvSource    = "CODEX_MCP_MIGRATE_JSON"
	EnvTarget    = "CODEX_MCP_MIGRATE_TOML"
	EnvBackupDir = "CODEX_MCP_MIGRATE_BACKUP_DIR"
)

// Source file names tried in the working directory, in order.
var defaultSourceNames = []string{"mcp-config.json", "mcpconfig.json"}

// Flags carries the values given on the command line. Empty strings and a
// nil Backup mean "not given".
type Flags struct {
	Source    string
	Target    string
	BackupDir string
	Backup    *bool

	// Settings overrides the settings file search.
	Settings string

	// WorkDir is where .env and the default files are looked up. Empty
	// means the process working directory.
	WorkDir string
}

// Paths is the resolved input of a run.
type Paths struct {
	Source    string
	Target    string
	BackupDir string
	Backup    bool

	// CodexHome is the Codex state directory the defaults hang off.
	CodexHome string
}

// Resolve merges flags, environment, settings file and defaults.
func Resolve(flags Flags) (*Paths, error) {
	wd := flags.WorkDir
	if wd == "" {
		wd = "."
	}

	if err := loadDotEnv(filepath.Join(wd, ".env")); err != nil {
		return nil, err
	}

	var (
		settings *Settings
		err      error
	)
	if flags.Settings != "" {
		settings, err = LoadFromFile(flags.Settings)
	} else {
		settings, err = Load()
	}
	if err != nil {
		return nil, err
	}

	codexHome, err := ExpandHome(firstNonEmpty(os.Getenv(EnvCodexHome), "~/.codex"))
	if err != nil {
		return nil, err
	}

	p := &Paths{CodexHome: codexHome, Backup: true}
	if settings.Backup != nil {
		p.Backup = *settings.Backup
	}
	if flags.Backup != nil {
		p.Backup = *flags.Backup
	}

	src := firstNonEmpty(flags.Source, os.Getenv(EnvSource), settings.Source)
	if src == "" {
		src = defaultSource(wd)
	}
	if p.Source, err = ExpandHome(src); err != nil {
		return nil, err
	}

	target := firstNonEmpty(flags.Target, os.Getenv(EnvTarget), settings.Target)
	if target == "" {
		target = defaultTarget(wd, codexHome)
	}
	if p.Target, err = ExpandHome(target); err != nil {
		return nil, err
	}

	backupDir := firstNonEmpty(flags.BackupDir, os.Getenv(EnvBackupDir), settings.BackupDir)
	if backupDir == "" {
		backupDir = filepath.Join(codexHome, "backups")
	}
	if p.BackupDir, err = ExpandHome(backupDir); err != nil {
		return nil, err
	}

	return p, nil
}

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
// Other paths, including "~user", are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", path, err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// loadDotEnv seeds unset environment variables from path. The real
// environment always wins; a missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

func defaultSource(wd string) string {
	for _, name := range defaultSourceNames {
		p := filepath.Join(wd, name)
		if fileExists(p) {
			return p
		}
	}
	return filepath.Join(wd, defaultSourceNames[0])
}

func defaultTarget(wd, codexHome string) string {
	local := filepath.Join(wd, "config.toml")
	if fileExists(local) {
		return local
	}
	return filepath.Join(codexHome, "config.toml")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
