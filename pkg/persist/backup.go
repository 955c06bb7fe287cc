package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// TimestampLayout is the local-time stamp embedded in backup names.
const TimestampLayout = "20060102-150405"

// maxBackupSeq bounds the same-second disambiguation counter.
const maxBackupSeq = 1000

// BackupInfo describes an existing backup file.
type BackupInfo struct {
	// Path is the full path to the backup file.
	Path string

	// Base is the basename of the file that was backed up.
	Base string

	// Timestamp is when the backup was created, second granularity.
	Timestamp time.Time

	// Seq disambiguates backups taken within the same second; 0 for the first.
	Seq int
}

// backupPattern matches config.toml.20060102-150405.bak and
// config.toml.20060102-150405-2.bak.
var backupPattern = regexp.MustCompile(`^(.+)\.(\d{8}-\d{6})(?:-(\d+))?\.bak$`)

// BackupName returns the backup filename for base at t with the given
// collision counter.
func BackupName(base string, t time.Time, seq int) string {
	ts := t.Format(TimestampLayout)
	if seq > 0 {
		return fmt.Sprintf("%s.%s-%d.bak", base, ts, seq)
	}
	return fmt.Sprintf("%s.%s.bak", base, ts)
}

// Backup copies the file at path verbatim into destDir and returns the
// backup path. It returns "" with no error when path does not exist. An
// existing backup is never overwritten: a same-second collision appends a
// counter to the timestamp. The backup keeps the permission bits of path.
func Backup(path, destDir string, now time.Time) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", &WriteError{Op: "backup", Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &WriteError{Op: "backup", Path: path, Err: err}
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", &WriteError{Op: "mkdir", Path: destDir, Err: err}
	}

	base := filepath.Base(path)
	for seq := 0; seq < maxBackupSeq; seq++ {
		backupPath := filepath.Join(destDir, BackupName(base, now, seq))
		err := writeAtomic(backupPath, data, info.Mode().Perm(), true)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		return backupPath, nil
	}
	return "", &WriteError{
		Op:   "backup",
		Path: filepath.Join(destDir, BackupName(base, now, 0)),
		Err:  fmt.Errorf("more than %d backups in one second", maxBackupSeq),
	}
}

// ListBackups returns the backups of base found in dir, newest first. A
// missing dir yields no backups.
func ListBackups(dir, base string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		m := backupPattern.FindStringSubmatch(entry.Name())
		if m == nil || (base != "" && m[1] != base) {
			continue
		}

		ts, err := time.ParseInLocation(TimestampLayout, m[2], time.Local)
		if err != nil {
			continue
		}
		seq := 0
		if m[3] != "" {
			seq, _ = strconv.Atoi(m[3])
		}

		backups = append(backups, BackupInfo{
			Path:      filepath.Join(dir, entry.Name()),
			Base:      m[1],
			Timestamp: ts,
			Seq:       seq,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].Seq > backups[j].Seq
	})

	return backups, nil
}

// Restore copies a backup back over targetPath atomically.
func Restore(backupPath, targetPath string) error {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("reading backup: %w", err)
	}
	return WriteAtomic(targetPath, data)
}
