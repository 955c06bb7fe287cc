package migrate

import (
	"errors"

	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/persist"
	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/schema"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitSource     = 1
	ExitValidation = 2
	ExitWrite      = 3
)

// ExitCode maps a Run error to the process exit code. Unreadable or
// unparsable input and anything unexpected map to ExitSource.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		schemaErr *schema.Error
		normErr   *NormalizationError
		validErr  *ValidationError
		writeErr  *persist.WriteError
	)
	switch {
	case errors.As(err, &schemaErr), errors.As(err, &normErr), errors.As(err, &validErr):
		return ExitValidation
	case errors.As(err, &writeErr):
		return ExitWrite
	default:
		return ExitSource
	}
}
