// Package persist reads and writes the Codex config.toml target.
//
// Every write goes through a sibling temp file followed by a rename, so a
// crash leaves either the old file or the new one on disk, never a mix.
// Backups are plain verbatim copies named <base>.<YYYYMMDD-HHMMSS>.bak.
package persist

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DecodeError reports an existing target that is not valid TOML.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ERROR [invalid_toml] failed to parse %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// WriteError reports a failed backup, write, or restore.
type WriteError struct {
	// Op is the step that failed, e.g. "backup" or "rename".
	Op   string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("ERROR [write_failure] %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// LoadTarget decodes the TOML document at path. A missing file yields an
// empty document; any other read failure is returned as is.
func LoadTarget(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("reading target %s: %w", path, err)
	}
	return DecodeTarget(path, data)
}

// DecodeTarget decodes TOML bytes; path is only used for error messages.
func DecodeTarget(path string, data []byte) (map[string]any, error) {
	doc := map[string]any{}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return doc, nil
}

// Encode serializes doc as TOML with unindented nested tables.
func Encode(doc map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding toml: %w", err)
	}
	return buf.Bytes(), nil
}

// dirOf returns the directory portion of a path.
func dirOf(path string) string {
	d := filepath.Dir(path)
	if d == "" {
		return "."
	}
	return d
}
