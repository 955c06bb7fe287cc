package migrate

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/persist"
	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/schema"
)

// ---------- helpers ----------

func mgTarget(t *testing.T, doc string) Document {
	t.Helper()
	m, err := persist.DecodeTarget("config.toml", []byte(doc))
	require.NoError(t, err)
	return m
}

func mgTable(t *testing.T, doc Document) map[string]any {
	t.Helper()
	table, ok := doc[ServersTable].(map[string]any)
	require.True(t, ok, "server table missing or wrong type:\n%s", spew.Sdump(doc))
	return table
}

// ---------- examples ----------

func TestMerge_AddsIntoEmptyTarget(t *testing.T) {
	servers := mgServers(t, `{"mcpServers": {"a": {"command": "npx", "args": ["x"]}}}`)

	merged, stats, err := Merge(servers, Document{})
	require.NoError(t, err)

	want := Document{ServersTable: map[string]any{
		"a": map[string]any{"command": "npx", "args": []any{"x"}},
	}}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Errorf("merged document mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"a"}, stats.Added)
	assert.Empty(t, stats.Updated)
	assert.Empty(t, stats.Unchanged)
	assert.True(t, stats.Changed())
}

func TestMerge_EqualEntryUnchanged(t *testing.T) {
	servers := mgServers(t, `{"mcpServers": {"a": {"command": "npx", "args": ["x"]}}}`)
	target := mgTarget(t, "[mcp_servers.a]\ncommand = \"npx\"\nargs = [\"x\"]\n")

	merged, stats, err := Merge(servers, target)
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, stats.Unchanged)
	assert.False(t, stats.Changed())
	if diff := cmp.Diff(target, merged); diff != "" {
		t.Errorf("unchanged merge altered the document (-target +merged):\n%s", diff)
	}
}

func TestMerge_MixedTransportKeepsBoth(t *testing.T) {
	servers := mgServers(t, `{"mcpServers": {"m": {"command": "npx", "url": "https://example.com/mcp"}}}`)

	merged, stats, err := Merge(servers, Document{})
	require.NoError(t, err)

	entry := mgTable(t, merged)["m"].(map[string]any)
	assert.Equal(t, "npx", entry["command"])
	assert.Equal(t, "https://example.com/mcp", entry["url"])
	require.Len(t, stats.Warnings, 1)
	assert.Equal(t, WarnMixedTransport, stats.Warnings[0].Kind)
	assert.Equal(t, "m", stats.Warnings[0].Server)
}

func TestMerge_NullValueFails(t *testing.T) {
	servers := mgServers(t, `{"mcpServers": {"a": {"command": "npx", "timeout": null}}}`)

	merged, stats, err := Merge(servers, Document{})
	assert.Nil(t, merged)
	assert.Nil(t, stats)

	var nerr *NormalizationError
	require.True(t, errors.As(err, &nerr), "expected *NormalizationError, got %T", err)
	assert.Equal(t, []string{"mcpServers.a.timeout"}, mgIssuePaths(nerr.Issues))
}

func TestMerge_UpdatePreservesOthers(t *testing.T) {
	target := mgTarget(t, `model = "gpt-5.3-codex"

[mcp_servers.builder-proj]
command = "old"

[mcp_servers.another]
command = "keep-me"
args = ["--flag"]
`)
	servers := mgServers(t, `{"mcpServers": {
		"builder-proj": {"command": "npx", "args": ["-y", "@acme/builder"], "env": {"NODE_ENV": "production"}}
	}}`)

	merged, stats, err := Merge(servers, target)
	require.NoError(t, err)

	assert.Equal(t, []string{"builder-proj"}, stats.Updated)
	assert.Equal(t, "gpt-5.3-codex", merged["model"])

	table := mgTable(t, merged)
	assert.Equal(t, map[string]any{
		"command": "npx",
		"args":    []any{"-y", "@acme/builder"},
		"env":     map[string]any{"NODE_ENV": "production"},
	}, table["builder-proj"])
	if diff := cmp.Diff(mgTable(t, target)["another"], table["another"]); diff != "" {
		t.Errorf("untouched entry changed (-want +got):\n%s", diff)
	}
}

func TestMerge_HTTPServerExtendedFields(t *testing.T) {
	servers := mgServers(t, `{"mcpServers": {"httpSrv": {
		"url": "https://mcp.example.com/v1",
		"bearerTokenEnvVar": "MCP_TOKEN",
		"headers": {"X-Team": "infra"},
		"startup_timeout_sec": 30,
		"enabled_tools": ["search", "fetch"]
	}}}`)

	merged, _, err := Merge(servers, Document{})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"url":                  "https://mcp.example.com/v1",
		"bearer_token_env_var": "MCP_TOKEN",
		"headers":              map[string]any{"X-Team": "infra"},
		"startup_timeout_sec":  int64(30),
		"enabled_tools":        []any{"search", "fetch"},
	}, mgTable(t, merged)["httpSrv"])
}

func TestMerge_IntFloatNotAChange(t *testing.T) {
	servers := mgServers(t, `{"mcpServers": {"a": {"command": "x", "timeout": 10}}}`)
	target := mgTarget(t, "[mcp_servers.a]\ncommand = \"x\"\ntimeout = 10.0\n")

	_, stats, err := Merge(servers, target)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, stats.Unchanged)
}

func TestMerge_StatsFollowSourceOrder(t *testing.T) {
	servers := mgServers(t, `{"mcpServers": {"zeta": {"command": "z"}, "alpha": {"command": "a"}, "mid": {"command": "m"}}}`)

	_, stats, err := Merge(servers, Document{})
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, stats.Added)
}

// ---------- errors ----------

func TestMerge_EmptyNameIsValidationError(t *testing.T) {
	servers := []schema.Server{
		{Name: "ok", Command: strPtr("x")},
		{Name: "  ", Command: strPtr("y")},
	}

	_, _, err := Merge(servers, Document{})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, "server name must be non-empty", verr.Issues[0].Message)
}

func TestMerge_ServerTableNotATable(t *testing.T) {
	servers := []schema.Server{{Name: "a", Command: strPtr("x")}}

	_, _, err := Merge(servers, Document{ServersTable: "oops"})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
	assert.Equal(t, ServersTable, verr.Issues[0].Path)
}

func TestMerge_CollectsAcrossServers(t *testing.T) {
	servers := mgServers(t, `{"mcpServers": {
		"one": {"command": "x", "a": null},
		"fine": {"command": "y"},
		"two": {"command": "z", "b": [null]}
	}}`)

	_, _, err := Merge(servers, Document{})

	var nerr *NormalizationError
	require.True(t, errors.As(err, &nerr), "expected *NormalizationError, got %T", err)
	assert.Equal(t, []string{"mcpServers.one.a", "mcpServers.two.b[0]"}, mgIssuePaths(nerr.Issues))
}

func TestMerge_DoesNotMutateTarget(t *testing.T) {
	target := mgTarget(t, "model = \"m\"\n[mcp_servers.a]\ncommand = \"old\"\n")
	snapshot := mgTarget(t, "model = \"m\"\n[mcp_servers.a]\ncommand = \"old\"\n")
	servers := mgServers(t, `{"mcpServers": {"a": {"command": "new"}, "b": {"command": "b"}}}`)

	_, _, err := Merge(servers, target)
	require.NoError(t, err)

	if diff := cmp.Diff(snapshot, target); diff != "" {
		t.Errorf("Merge mutated its input (-before +after):\n%s", diff)
	}
}

// ---------- properties ----------

var mgNames = []string{"alpha", "beta", "gamma", "delta", "eps", "zeta", "eta", "theta"}

func mgRandomValue(r *rand.Rand, depth int) any {
	n := 5
	if depth > 0 {
		n = 7
	}
	switch r.IntN(n) {
	case 0:
		return fmt.Sprintf("s%d", r.IntN(5))
	case 1:
		return int64(r.IntN(100))
	case 2:
		return r.IntN(2) == 0
	case 3:
		return float64(r.IntN(8)) + 0.25
	case 4:
		return []any{}
	case 5:
		items := make([]any, r.IntN(3))
		for i := range items {
			items[i] = mgRandomValue(r, depth-1)
		}
		return items
	default:
		m := map[string]any{}
		for i := 0; i < r.IntN(3); i++ {
			m[fmt.Sprintf("k%d", i)] = mgRandomValue(r, depth-1)
		}
		return m
	}
}

func mgRandomServer(r *rand.Rand, name string) schema.Server {
	s := schema.Server{Name: name}
	if r.IntN(3) > 0 {
		s.Command = strPtr(fmt.Sprintf("cmd-%d", r.IntN(3)))
		s.Args = make([]string, r.IntN(3))
		for i := range s.Args {
			s.Args[i] = fmt.Sprintf("arg%d", r.IntN(3))
		}
	} else {
		s.URL = strPtr(fmt.Sprintf("https://h%d.example.com", r.IntN(3)))
		s.Headers = map[string]string{"X-N": fmt.Sprint(r.IntN(2))}
	}
	if r.IntN(2) == 0 {
		s.Env = map[string]string{"K": fmt.Sprint(r.IntN(2))}
	}
	for i := 0; i < r.IntN(3); i++ {
		s.Extra = append(s.Extra, schema.Field{Key: fmt.Sprintf("x%d", i), Value: mgRandomValue(r, 2)})
	}
	return s
}

// mgRandomCase builds a source list and a target that shares some names
// with it, has target-only entries, and carries unrelated top-level keys.
func mgRandomCase(r *rand.Rand) ([]schema.Server, Document) {
	var servers []schema.Server
	table := map[string]any{}
	for _, name := range mgNames {
		switch r.IntN(4) {
		case 0:
			s := mgRandomServer(r, name)
			servers = append(servers, s)
			if r.IntN(2) == 0 {
				rec, _, err := Normalize(s)
				if err == nil {
					table[name] = rec
				}
			}
		case 1:
			servers = append(servers, mgRandomServer(r, name))
			table[name] = map[string]any{"command": "stale"}
		case 2:
			servers = append(servers, mgRandomServer(r, name))
		default:
			table[name] = map[string]any{"command": "target-only", "n": int64(r.IntN(10))}
		}
	}
	return servers, Document{
		"model":         "gpt-5.3-codex",
		"approval_mode": "never",
		ServersTable:    table,
	}
}

func TestMergeProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(2026, 3))

	for i := 0; i < 200; i++ {
		servers, target := mgRandomCase(r)
		targetTable := target[ServersTable].(map[string]any)

		merged, stats, err := Merge(servers, target)
		require.NoError(t, err, "case %d:\n%s", i, spew.Sdump(servers))

		// Partition: every source name lands in exactly one bucket.
		seen := map[string]int{}
		for _, list := range [][]string{stats.Added, stats.Updated, stats.Unchanged} {
			for _, n := range list {
				seen[n]++
			}
		}
		sourceNames := map[string]bool{}
		for _, s := range servers {
			sourceNames[s.Name] = true
			if seen[s.Name] != 1 {
				t.Fatalf("case %d: %q appears %d times in stats:\n%s", i, s.Name, seen[s.Name], spew.Sdump(stats))
			}
		}
		if len(seen) != len(sourceNames) {
			t.Fatalf("case %d: stats name servers not in the source:\n%s", i, spew.Sdump(stats))
		}

		// Non-destructiveness: target-only entries are carried as they were.
		mergedTable := merged[ServersTable].(map[string]any)
		for name, v := range targetTable {
			if sourceNames[name] {
				continue
			}
			if diff := cmp.Diff(v, mergedTable[name]); diff != "" {
				t.Fatalf("case %d: target-only %q changed (-want +got):\n%s", i, name, diff)
			}
		}

		// Pass-through of unrelated top-level keys.
		assert.Equal(t, "gpt-5.3-codex", merged["model"])
		assert.Equal(t, "never", merged["approval_mode"])

		// Idempotence across an encode/decode round trip.
		encoded, err := persist.Encode(merged)
		require.NoError(t, err, "case %d:\n%s", i, spew.Sdump(merged))
		reloaded := mgTarget(t, string(encoded))

		_, again, err := Merge(servers, reloaded)
		require.NoError(t, err)
		if len(again.Added) != 0 || len(again.Updated) != 0 || len(again.Unchanged) != len(servers) {
			t.Fatalf("case %d: second run not idempotent:\n%s\nencoded:\n%s", i, spew.Sdump(again), encoded)
		}
	}
}
