package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/persist"
	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/report"
)

func newRestoreCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "restore [backup-path]",
		Short: "Restore a backup over the target config (newest if none given)",
		Long: "restore copies a backup back over the target config.toml atomically.\n" +
			"The current target is backed up first unless --no-backup is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRestore(cmd, args)
		},
	}
}

func (c *cli) runRestore(cmd *cobra.Command, args []string) error {
	paths, err := c.resolve(cmd)
	if err != nil {
		return err
	}
	logger := c.logger()

	var backupPath string
	if len(args) == 1 {
		backupPath = args[0]
	} else {
		backups, err := persist.ListBackups(paths.BackupDir, filepath.Base(paths.Target))
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			return fmt.Errorf("no backups of %s in %s", filepath.Base(paths.Target), paths.BackupDir)
		}
		backupPath = backups[0].Path
	}

	p := report.NewPrinter(c.stdout, report.OptionsFor(c.stdout))
	if paths.Backup {
		saved, err := persist.Backup(paths.Target, paths.BackupDir, c.now())
		if err != nil {
			return err
		}
		if saved != "" {
			logger.Info("backed up current target", "path", saved)
			p.Line("Backup created:", saved)
		}
	}

	logger.Debug("restoring", "backup", backupPath, "target", paths.Target)
	if err := persist.Restore(backupPath, paths.Target); err != nil {
		return err
	}
	return p.Line("Restored:", backupPath+" -> "+paths.Target)
}
