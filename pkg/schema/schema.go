// Package schema checks that a decoded source document has the shape of an
// MCP server definition file and converts it into typed Server records.
//
// The expected shape is
//
//	{"mcpServers": {"<name>": {"command": "...", "args": [...], ...}}}
//
// Records are open: keys outside the recognized set are carried in
// Server.Extra with whatever value they had.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/source"
)

// ServersKey is the required top-level key of a source document.
const ServersKey = "mcpServers"

// Recognized record keys.
const (
	KeyCommand           = "command"
	KeyArgs              = "args"
	KeyEnv               = "env"
	KeyCwd               = "cwd"
	KeyURL               = "url"
	KeyBearerTokenEnvVar = "bearer_token_env_var"
	KeyHeaders           = "headers"

	// keyBearerTokenEnvVarCamel is the camelCase spelling some clients write.
	keyBearerTokenEnvVarCamel = "bearerTokenEnvVar"
)

// Server is one validated source record. Optional fields are nil when the
// source did not set them; an explicitly empty list or map is non-nil.
type Server struct {
	Name string

	Command           *string
	Args              []string
	Env               map[string]string
	Cwd               *string
	URL               *string
	BearerTokenEnvVar *string
	Headers           map[string]string

	// Extra holds unrecognized keys in document order. Values are unchecked.
	Extra []Field
}

// Field is an unrecognized key/value pair of a record.
type Field struct {
	Key   string
	Value any
}

// Issue is a single schema violation.
type Issue struct {
	// Path locates the offending value, e.g. "mcpServers.foo.args[1]".
	Path    string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Error reports every violation found in a document.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.String()
	}
	return "ERROR [schema] " + strings.Join(parts, "; ")
}

func (e *Error) add(path, format string, args ...any) {
	e.Issues = append(e.Issues, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

// Validate checks v and returns the servers in document order. It either
// returns every server or a *Error listing every violation; never both.
func Validate(v any) ([]Server, error) {
	res := &Error{}

	root, ok := asMapping(v)
	if !ok {
		res.add("", "expected object, got %s", TypeName(v))
		return nil, res
	}

	raw, ok := root.values[ServersKey]
	if !ok {
		res.add(ServersKey, "required")
		return nil, res
	}
	table, ok := asMapping(raw)
	if !ok {
		res.add(ServersKey, "expected object, got %s", TypeName(raw))
		return nil, res
	}

	servers := make([]Server, 0, len(table.keys))
	for _, name := range table.keys {
		s, ok := validateServer(res, name, table.values[name])
		if ok {
			servers = append(servers, s)
		}
	}

	if len(res.Issues) > 0 {
		return nil, res
	}
	return servers, nil
}

func validateServer(res *Error, name string, v any) (Server, bool) {
	path := ServersKey + "." + name
	rec, ok := asMapping(v)
	if !ok {
		res.add(path, "expected object, got %s", TypeName(v))
		return Server{}, false
	}

	before := len(res.Issues)
	s := Server{Name: name}
	var bearerKey string

	for _, key := range rec.keys {
		val := rec.values[key]
		fp := path + "." + key
		switch key {
		case KeyCommand:
			s.Command = nonEmptyString(res, fp, val)
		case KeyCwd:
			s.Cwd = nonEmptyString(res, fp, val)
		case KeyURL:
			s.URL = nonEmptyString(res, fp, val)
		case KeyBearerTokenEnvVar, keyBearerTokenEnvVarCamel:
			if bearerKey != "" {
				res.add(fp, "conflicts with %s; set only one", bearerKey)
				continue
			}
			bearerKey = key
			s.BearerTokenEnvVar = nonEmptyString(res, fp, val)
		case KeyArgs:
			s.Args = stringList(res, fp, val)
		case KeyEnv:
			s.Env = stringMap(res, fp, val)
		case KeyHeaders:
			s.Headers = stringMap(res, fp, val)
		default:
			s.Extra = append(s.Extra, Field{Key: key, Value: val})
		}
	}

	return s, len(res.Issues) == before
}

func nonEmptyString(res *Error, path string, v any) *string {
	s, ok := v.(string)
	if !ok {
		res.add(path, "expected string, got %s", TypeName(v))
		return nil
	}
	if s == "" {
		res.add(path, "must be a non-empty string")
		return nil
	}
	return &s
}

func stringList(res *Error, path string, v any) []string {
	switch items := v.(type) {
	case []string:
		return append([]string{}, items...)
	case []any:
		out := make([]string, 0, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				res.add(fmt.Sprintf("%s[%d]", path, i), "expected string, got %s", TypeName(item))
				continue
			}
			out = append(out, s)
		}
		return out
	default:
		res.add(path, "expected array of strings, got %s", TypeName(v))
		return nil
	}
}

func stringMap(res *Error, path string, v any) map[string]string {
	if m, ok := v.(map[string]string); ok {
		out := make(map[string]string, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out
	}
	m, ok := asMapping(v)
	if !ok {
		res.add(path, "expected object of strings, got %s", TypeName(v))
		return nil
	}
	out := make(map[string]string, len(m.keys))
	for _, k := range m.keys {
		s, ok := m.values[k].(string)
		if !ok {
			res.add(path+"."+k, "expected string, got %s", TypeName(m.values[k]))
			continue
		}
		out[k] = s
	}
	return out
}

// mapping is an ordered view over the mapping types Validate accepts.
type mapping struct {
	keys   []string
	values map[string]any
}

// asMapping accepts *source.Object (document order) and map[string]any
// (sorted key order, for callers that build input in memory).
func asMapping(v any) (mapping, bool) {
	switch m := v.(type) {
	case *source.Object:
		if m == nil {
			return mapping{}, false
		}
		keys := m.Keys()
		values := make(map[string]any, len(keys))
		for _, k := range keys {
			values[k], _ = m.Get(k)
		}
		return mapping{keys: keys, values: values}, true
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return mapping{keys: keys, values: m}, true
	}
	return mapping{}, false
}

// TypeName describes v for error messages using JSON vocabulary.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	case []any, []string:
		return "array"
	case *source.Object, map[string]any, map[string]string:
		return "object"
	case []byte:
		return "binary"
	default:
		return fmt.Sprintf("%T", v)
	}
}
