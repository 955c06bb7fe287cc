package terminal

import (
	"io"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// DefaultWidth is used when the width of an output cannot be determined.
const DefaultWidth = 80

// Width returns the column count of the terminal behind w. It tries:
//  1. TIOCGWINSZ ioctl on w's file descriptor
//  2. COLUMNS environment variable
//  3. Fallback to DefaultWidth
func Width(w io.Writer) int {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		if cols := widthFromIoctl(f.Fd()); cols > 0 {
			return cols
		}
	}
	return envInt("COLUMNS", DefaultWidth)
}

// widthFromIoctl queries the terminal width via TIOCGWINSZ ioctl.
// Returns 0 on failure.
func widthFromIoctl(fd uintptr) int {
	ws, err := unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ)
	if err != nil {
		return 0
	}
	return int(ws.Col)
}

// envInt reads an integer from the named environment variable. Returns
// the fallback value if the variable is unset, empty, or not a valid
// positive integer.
func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
