package cmd

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/persist"
)

func newBackupsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List backups of the target config, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runBackups(cmd)
		},
	}
}

func (c *cli) runBackups(cmd *cobra.Command) error {
	paths, err := c.resolve(cmd)
	if err != nil {
		return err
	}

	backups, err := persist.ListBackups(paths.BackupDir, filepath.Base(paths.Target))
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Fprintf(c.stdout, "No backups found in %s\n", paths.BackupDir)
		return nil
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
	for _, b := range backups {
		fmt.Fprintf(tw, "%s\t%s\n", b.Timestamp.Format("2006-01-02 15:04:05"), b.Path)
	}
	return tw.Flush()
}
