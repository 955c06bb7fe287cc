package terminal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// termEnvVars lists all environment variables inspected during detection.
// Tests clear these before each case to ensure isolation.
var termEnvVars = []string{
	"TERM_PROGRAM", "TERM", "COLORTERM", "NO_COLOR", "COLUMNS",
}

// clearTermEnv unsets all terminal-related env vars for test isolation.
// Uses t.Setenv under the hood (via save/restore) so cleanup is automatic.
func clearTermEnv(t *testing.T) {
	t.Helper()
	for _, v := range termEnvVars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func tmpFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

// --- Colour Level Tests ---

func TestColorFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want ColorLevel
	}{
		{"colorterm truecolor", map[string]string{"COLORTERM": "truecolor"}, ColorTrueColor},
		{"colorterm 24bit", map[string]string{"COLORTERM": "24BIT"}, ColorTrueColor},
		{"kitty term", map[string]string{"TERM": "xterm-kitty"}, ColorTrueColor},
		{"ghostty term", map[string]string{"TERM": "xterm-ghostty"}, ColorTrueColor},
		{"direct term", map[string]string{"TERM": "xterm-direct"}, ColorTrueColor},
		{"256 term", map[string]string{"TERM": "screen-256color"}, ColorANSI256},
		{"wezterm program", map[string]string{"TERM": "xterm", "TERM_PROGRAM": "WezTerm"}, ColorTrueColor},
		{"apple terminal", map[string]string{"TERM_PROGRAM": "Apple_Terminal"}, ColorANSI256},
		{"plain xterm", map[string]string{"TERM": "xterm"}, ColorANSI},
		{"nothing set", nil, ColorANSI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTermEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := colorFromEnv(); got != tt.want {
				t.Errorf("colorFromEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColorLevel_String(t *testing.T) {
	tests := []struct {
		level ColorLevel
		want  string
	}{
		{ColorNone, "none"},
		{ColorANSI, "ansi"},
		{ColorANSI256, "ansi256"},
		{ColorTrueColor, "truecolor"},
		{ColorLevel(99), "unknown"},
		{ColorLevel(-1), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("ColorLevel(%d).String() = %q, want %q", int(tt.level), got, tt.want)
		}
	}
}

// --- Output Handle Tests ---

func TestColorEnabled_NotATerminal(t *testing.T) {
	clearTermEnv(t)
	t.Setenv("COLORTERM", "truecolor")

	if ColorEnabled(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
	if ColorEnabled(tmpFile(t)) {
		t.Error("a regular file is not a terminal")
	}
	if got := DetectColor(&bytes.Buffer{}); got != ColorNone {
		t.Errorf("DetectColor(buffer) = %v, want none", got)
	}
}

func TestColorEnabled_NoColorAndDumb(t *testing.T) {
	// Both checks run before the terminal check, so they hold for any w.
	clearTermEnv(t)
	t.Setenv("NO_COLOR", "1")
	if ColorEnabled(os.Stdout) {
		t.Error("NO_COLOR should disable colour")
	}

	clearTermEnv(t)
	t.Setenv("TERM", "dumb")
	if ColorEnabled(os.Stdout) {
		t.Error("TERM=dumb should disable colour")
	}
}

func TestIsTerminal_Pipe(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	if IsTerminal(w) {
		t.Error("a pipe is not a terminal")
	}
}

// --- Width Tests ---

func TestWidth_FromEnv(t *testing.T) {
	clearTermEnv(t)
	t.Setenv("COLUMNS", "132")

	if got := Width(&bytes.Buffer{}); got != 132 {
		t.Errorf("Width() = %d, want 132", got)
	}
	if got := Width(tmpFile(t)); got != 132 {
		t.Errorf("Width(file) = %d, want 132", got)
	}
}

func TestWidth_Fallback(t *testing.T) {
	for _, v := range []string{"", "abc", "-5", "0"} {
		clearTermEnv(t)
		t.Setenv("COLUMNS", v)
		if got := Width(&bytes.Buffer{}); got != DefaultWidth {
			t.Errorf("COLUMNS=%q: Width() = %d, want %d", v, got, DefaultWidth)
		}
	}
}
