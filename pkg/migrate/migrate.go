// Package migrate merges MCP server definitions into a Codex config.toml.
//
// The pipeline is: read source -> validate -> load target -> merge -> encode
// -> backup -> atomic write. Every step that can fail runs before the first
// write, so a rejected run leaves the target exactly as it was.
package migrate

import (
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/persist"
	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/schema"
	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/source"
)

// Options configures one migration run.
type Options struct {
	// SourcePath is the JSON (or YAML) server definition file.
	SourcePath string

	// TargetPath is the config.toml to merge into. It may not exist yet.
	TargetPath string

	// DryRun computes the result without touching the filesystem.
	DryRun bool

	// Backup copies an existing target into BackupDir before writing.
	Backup    bool
	BackupDir string

	// Logger receives progress and warnings. Nil discards.
	Logger *slog.Logger

	// Now stamps backup names. Nil means time.Now.
	Now func() time.Time
}

// Result holds the outcome of a run.
type Result struct {
	Stats *Stats

	// Document is the merged target as written (or as it would be).
	Document Document

	// Encoded is the TOML serialization of Document.
	Encoded []byte

	// BackupPath is the backup created for this run, empty if none.
	BackupPath string

	// Written reports whether the target file was replaced.
	Written bool
}

// Run performs a full migration. On error the returned Result is nil unless
// the failure happened while writing, in which case it carries the stats and
// any backup path so callers can point at the recovery copy.
func Run(opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	logger.Info("reading source", "path", opts.SourcePath)
	raw, err := source.ReadFile(opts.SourcePath)
	if err != nil {
		return nil, err
	}

	servers, err := schema.Validate(raw)
	if err != nil {
		return nil, err
	}
	logger.Debug("source validated", "servers", len(servers))

	logger.Info("reading target", "path", opts.TargetPath)
	target, err := persist.LoadTarget(opts.TargetPath)
	if err != nil {
		return nil, err
	}

	merged, stats, err := Merge(servers, target)
	if err != nil {
		return nil, err
	}
	logger.Debug("merged",
		"added", len(stats.Added), "updated", len(stats.Updated),
		"unchanged", len(stats.Unchanged), "changed", stats.Changed())
	for _, w := range stats.Warnings {
		logger.Warn(w.String())
	}

	encoded, err := persist.Encode(merged)
	if err != nil {
		return nil, err
	}

	res := &Result{Stats: stats, Document: merged, Encoded: encoded}
	if opts.DryRun {
		logger.Info("dry run, target not written", "path", opts.TargetPath)
		return res, nil
	}

	if opts.Backup {
		backupPath, err := persist.Backup(opts.TargetPath, opts.BackupDir, now())
		if err != nil {
			return res, err
		}
		res.BackupPath = backupPath
		if backupPath != "" {
			logger.Info("backup created", "path", backupPath)
		}
	}

	if err := persist.WriteAtomic(opts.TargetPath, encoded); err != nil {
		return res, err
	}
	res.Written = true
	logger.Debug("target written", "path", opts.TargetPath, "bytes", len(encoded))

	return res, nil
}
