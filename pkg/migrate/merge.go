package migrate

import (
	"errors"
	"strings"

	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/schema"
)

// ServersTable is the key of the server table in the Codex config.
const ServersTable = "mcp_servers"

// Document is a decoded TOML target.
type Document map[string]any

// Stats records what a merge did. Added, Updated and Unchanged partition
// the source server names and keep source order.
type Stats struct {
	Added     []string
	Updated   []string
	Unchanged []string
	Warnings  []Warning
}

// Changed reports whether the merge added or updated anything.
func (s *Stats) Changed() bool {
	return len(s.Added) > 0 || len(s.Updated) > 0
}

// Merge folds servers into the server table of target and returns a new
// document. target is not modified. Entries only present in target are kept
// as they are and not reported. An entry equal to its normalized source is
// left untouched, so its decoded form survives exactly.
//
// Every empty name, unrepresentable value, and a non-table server table are
// collected before failing; on error no document is returned.
func Merge(servers []schema.Server, target Document) (Document, *Stats, error) {
	verr := &ValidationError{}

	existing := map[string]any{}
	if raw, ok := target[ServersTable]; ok {
		table, ok := raw.(map[string]any)
		if !ok {
			verr.add(ServersTable, "expected table, got %s", schema.TypeName(raw))
			return nil, nil, verr
		}
		existing = table
	}

	next := make(map[string]any, len(existing)+len(servers))
	for k, v := range existing {
		next[k] = v
	}

	stats := &Stats{}
	nerr := &NormalizationError{}

	for _, s := range servers {
		if strings.TrimSpace(s.Name) == "" {
			verr.add(schema.ServersKey+"."+s.Name, "server name must be non-empty")
			continue
		}

		rec, warnings, err := Normalize(s)
		stats.Warnings = append(stats.Warnings, warnings...)
		if err != nil {
			var ne *NormalizationError
			if !errors.As(err, &ne) {
				return nil, nil, err
			}
			nerr.Issues = append(nerr.Issues, ne.Issues...)
			continue
		}

		current, ok := next[s.Name]
		switch {
		case !ok:
			next[s.Name] = rec
			stats.Added = append(stats.Added, s.Name)
		case Equal(current, rec):
			stats.Unchanged = append(stats.Unchanged, s.Name)
		default:
			next[s.Name] = rec
			stats.Updated = append(stats.Updated, s.Name)
		}
	}

	if len(verr.Issues) > 0 {
		return nil, nil, verr
	}
	if len(nerr.Issues) > 0 {
		return nil, nil, nerr
	}

	merged := make(Document, len(target)+1)
	for k, v := range target {
		merged[k] = v
	}
	merged[ServersTable] = next
	return merged, stats, nil
}
