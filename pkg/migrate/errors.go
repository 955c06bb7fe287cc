package migrate

import (
	"fmt"
	"strings"

	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/schema"
)

// NormalizationError reports source values the TOML target cannot
// represent. It lists every offending path across all servers of a run.
type NormalizationError struct {
	Issues []schema.Issue
}

func (e *NormalizationError) Error() string {
	return "ERROR [normalize] " + joinIssues(e.Issues)
}

func (e *NormalizationError) add(path, format string, args ...any) {
	e.Issues = append(e.Issues, schema.Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

// ValidationError reports merge input that is well-formed but unusable,
// such as an empty server name or a target whose server table is not a
// table.
type ValidationError struct {
	Issues []schema.Issue
}

func (e *ValidationError) Error() string {
	return "ERROR [validation] " + joinIssues(e.Issues)
}

func (e *ValidationError) add(path, format string, args ...any) {
	e.Issues = append(e.Issues, schema.Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func joinIssues(issues []schema.Issue) string {
	parts := make([]string, len(issues))
	for i, is := range issues {
		parts[i] = is.String()
	}
	return strings.Join(parts, "; ")
}
