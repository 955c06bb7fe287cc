// Package terminal decides how much styling command output may use.
//
// Detection only inspects the output handle and environment variables; it
// never writes query sequences to the terminal.
package terminal

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ColorLevel is the richest colour encoding an output can show.
type ColorLevel int

const (
	ColorNone      ColorLevel = iota // plain text only
	ColorANSI                        // 16 colours
	ColorANSI256                     // 256-colour palette
	ColorTrueColor                   // 24-bit colour
)

// colorLevelNames maps ColorLevel values to human-readable strings.
var colorLevelNames = [...]string{
	ColorNone:      "none",
	ColorANSI:      "ansi",
	ColorANSI256:   "ansi256",
	ColorTrueColor: "truecolor",
}

// String returns the human-readable name of the level.
func (c ColorLevel) String() string {
	if c >= 0 && int(c) < len(colorLevelNames) {
		return colorLevelNames[c]
	}
	return "unknown"
}

// IsTerminal reports whether w is a file descriptor attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ColorEnabled reports whether styled output may be written to w: w must be
// a terminal, NO_COLOR must be empty, and TERM must not be "dumb".
func ColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return IsTerminal(w)
}

// DetectColor returns the colour level to use for w. It is ColorNone
// whenever ColorEnabled is false.
func DetectColor(w io.Writer) ColorLevel {
	if !ColorEnabled(w) {
		return ColorNone
	}
	return colorFromEnv()
}

// colorFromEnv infers the colour level from environment variables, most
// reliable signal first:
//
//  1. COLORTERM=truecolor|24bit
//  2. TERM naming a direct-colour or known true-colour emulator
//  3. TERM with a 256color suffix
//  4. TERM_PROGRAM of a known emulator
//  5. Fallback to 16 colours
func colorFromEnv() ColorLevel {
	switch strings.ToLower(os.Getenv("COLORTERM")) {
	case "truecolor", "24bit":
		return ColorTrueColor
	}

	term := os.Getenv("TERM")
	switch {
	case term == "xterm-ghostty", term == "xterm-kitty", strings.HasSuffix(term, "-direct"):
		return ColorTrueColor
	case strings.Contains(term, "256color"):
		return ColorANSI256
	}

	switch strings.ToLower(os.Getenv("TERM_PROGRAM")) {
	case "ghostty", "wezterm", "iterm.app", "vscode":
		return ColorTrueColor
	case "apple_terminal":
		return ColorANSI256
	}

	return ColorANSI
}
