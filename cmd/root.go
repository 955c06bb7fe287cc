// Package cmd implements the codex-mcp-migrate CLI using cobra.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/config"
	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/migrate"
	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/report"
)

const version = "0.3.0"

// cli holds flag values and output streams for one invocation.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time

	source    string
	target    string
	backupDir string
	settings  string
	dryRun    bool
	backup    bool
	noBackup  bool
	verbose   bool
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(&cli{stdout: stdout, stderr: stderr, now: time.Now})
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return migrate.ExitCode(err)
	}
	return migrate.ExitOK
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "codex-mcp-migrate",
		Short: "Merge MCP server definitions into a Codex config.toml",
		Long: "codex-mcp-migrate reads MCP server definitions from a JSON (or YAML)\n" +
			"file in the {\"mcpServers\": {...}} layout and merges them into the\n" +
			"[mcp_servers] table of a Codex config.toml. Unrelated settings and\n" +
			"servers are kept; the previous file is backed up before it is replaced.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runMigrate(cmd)
		},
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&c.target, "toml", "", "target config.toml (default ./config.toml if present, else $CODEX_HOME/config.toml)")
	pf.StringVar(&c.backupDir, "backup-dir", "", "backup directory (default $CODEX_HOME/backups)")
	pf.StringVar(&c.settings, "settings", "", "settings file (default $XDG_CONFIG_HOME/codex-mcp-migrate/config.toml)")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&c.backup, "backup", true, "back up the existing target before writing")
	pf.BoolVar(&c.noBackup, "no-backup", false, "do not back up the existing target")
	root.MarkFlagsMutuallyExclusive("backup", "no-backup")

	f := root.Flags()
	f.StringVar(&c.source, "json", "", "source server definitions (default ./mcp-config.json or ./mcpconfig.json)")
	f.BoolVar(&c.dryRun, "dry-run", false, "show the migration summary without writing files")

	root.AddCommand(newBackupsCmd(c))
	root.AddCommand(newRestoreCmd(c))
	return root
}

// resolve turns flags into paths. Only flags the user actually set take
// part, so environment and settings values are not masked by defaults.
func (c *cli) resolve(cmd *cobra.Command) (*config.Paths, error) {
	flags := config.Flags{
		Source:    c.source,
		Target:    c.target,
		BackupDir: c.backupDir,
		Settings:  c.settings,
	}
	switch {
	case cmd.Flags().Changed("no-backup"):
		b := !c.noBackup
		flags.Backup = &b
	case cmd.Flags().Changed("backup"):
		b := c.backup
		flags.Backup = &b
	}
	return config.Resolve(flags)
}

func (c *cli) logger() *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func (c *cli) runMigrate(cmd *cobra.Command) error {
	paths, err := c.resolve(cmd)
	if err != nil {
		return err
	}
	logger := c.logger()
	logger.Debug("resolved paths",
		"source", paths.Source,
		"target", paths.Target,
		"backup_dir", paths.BackupDir,
		"backup", paths.Backup,
	)

	res, err := migrate.Run(migrate.Options{
		SourcePath: paths.Source,
		TargetPath: paths.Target,
		DryRun:     c.dryRun,
		Backup:     paths.Backup,
		BackupDir:  paths.BackupDir,
		Logger:     logger,
		Now:        c.now,
	})
	if res == nil {
		return err
	}

	p := report.NewPrinter(c.stdout, report.OptionsFor(c.stdout))
	if perr := p.Summary(res.Stats); perr != nil && err == nil {
		err = perr
	}
	if res.BackupPath != "" {
		p.Line("Backup created:", res.BackupPath)
	}
	if err != nil {
		return err
	}

	if c.dryRun {
		return p.Note("Dry-run mode: no file changes were made.")
	}
	return p.Line("Migration complete:", paths.Target)
}
