package persist

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// defaultPerm is used when the destination does not exist yet.
const defaultPerm os.FileMode = 0o644

// WriteAtomic replaces path with data. The bytes go to a temp file in the
// same directory which is synced and renamed over path; on any failure the
// temp file is removed and path is left as it was. An existing file keeps
// its permission bits.
func WriteAtomic(path string, data []byte) error {
	perm := defaultPerm
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return writeAtomic(path, data, perm, false)
}

// writeAtomic writes data through a synced temp file with the given mode.
// With noReplace set an existing path is left alone and the returned error
// matches fs.ErrExist.
func writeAtomic(path string, data []byte, perm os.FileMode, noReplace bool) (err error) {
	dir := dirOf(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &WriteError{Op: "create temp", Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return &WriteError{Op: "write", Path: tmpPath, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &WriteError{Op: "sync", Path: tmpPath, Err: err}
	}
	if err = tmp.Chmod(perm); err != nil {
		return &WriteError{Op: "chmod", Path: tmpPath, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &WriteError{Op: "close", Path: tmpPath, Err: err}
	}
	if noReplace {
		if err = linkNoReplace(tmpPath, path); err != nil {
			return &WriteError{Op: "link", Path: path, Err: err}
		}
		os.Remove(tmpPath)
		return nil
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return &WriteError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// linkNoReplace publishes oldpath at newpath unless newpath exists.
func linkNoReplace(oldpath, newpath string) error {
	err := os.Link(oldpath, newpath)
	if err == nil || errors.Is(err, fs.ErrExist) {
		return err
	}
	// Filesystems without hard links get a checked rename.
	if _, statErr := os.Lstat(newpath); statErr == nil {
		return fs.ErrExist
	}
	return os.Rename(oldpath, newpath)
}
