// codex-mcp-migrate merges MCP server definitions from a Claude/Cursor style
// JSON file into the [mcp_servers] table of a Codex config.toml.
//
// Usage:
//
//	codex-mcp-migrate [flags]
//	codex-mcp-migrate backups
//	codex-mcp-migrate restore [backup-path]
//
// Flags:
//
//	--json string        Source server definitions (default ./mcp-config.json)
//	--toml string        Target config.toml (default $CODEX_HOME/config.toml)
//	--dry-run            Show the migration summary without writing files
//	--backup             Back up the existing target before writing (default true)
//	--no-backup          Do not back up the existing target
//	--backup-dir string  Backup directory (default $CODEX_HOME/backups)
//	--settings string    Settings file
//	--verbose            Enable debug logging
//
// Exit codes: 0 success, 1 unreadable or unparsable input, 2 schema or
// merge validation failure, 3 write failure.
package main

import (
	"os"

	"gitlab.com/tinyland/lab/codex-mcp-migrate/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
