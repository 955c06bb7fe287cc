// Package source decodes MCP server definition files into plain Go values.
//
// Decoding keeps mapping keys in document order (see Object) so that callers
// can report servers in the order the operator wrote them. Two syntaxes are
// supported: JSON (the mcp-config.json convention) and YAML.
//
// Decoded values are one of: nil, bool, string, int64, float64, []any,
// *Object. YAML sources may also produce time.Time and []byte.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies the syntax of a source document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

var formatNames = [...]string{
	FormatJSON: "json",
	FormatYAML: "yaml",
}

// String returns the lowercase name of the format.
func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// FormatForPath picks the format from the file extension. Anything that is
// not .yaml or .yml is treated as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseError reports source bytes that are not valid in their syntax.
type ParseError struct {
	// Path is the file the bytes came from, empty for in-memory input.
	Path   string
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("ERROR [invalid_%s] %v", e.Format, e.Err)
	}
	return fmt.Sprintf("ERROR [invalid_%s] failed to parse %s: %v", e.Format, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Decode parses data in the given format.
func Decode(data []byte, format Format) (any, error) {
	var (
		v   any
		err error
	)
	switch format {
	case FormatYAML:
		v, err = decodeYAML(data)
	default:
		v, err = decodeJSON(data)
	}
	if err != nil {
		return nil, &ParseError{Format: format, Err: err}
	}
	return v, nil
}

// ReadFile reads path and decodes it using the format implied by its
// extension. Read failures are returned wrapped; syntax failures are
// *ParseError.
func ReadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source %s: %w", path, err)
	}
	v, err := Decode(data, FormatForPath(path))
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = path
		}
		return nil, err
	}
	return v, nil
}
