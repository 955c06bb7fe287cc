package migrate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/schema"
	"gitlab.com/tinyland/lab/codex-mcp-migrate/pkg/source"
)

// WarningKind classifies a non-fatal finding.
type WarningKind string

// WarnMixedTransport flags a server that sets both command and url.
const WarnMixedTransport WarningKind = "mixed_transport"

// Warning is a non-fatal issue surfaced to the operator.
type Warning struct {
	Kind    WarningKind
	Server  string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("WARN [%s] server=%s %s", w.Kind, w.Server, w.Message)
}

// Normalize converts a validated server into TOML-ready values. Recognized
// fields are copied only when set. Unrecognized fields are converted
// recursively; every value TOML cannot hold is reported in the returned
// *NormalizationError.
func Normalize(s schema.Server) (map[string]any, []Warning, error) {
	out := make(map[string]any)

	if s.Command != nil {
		out[schema.KeyCommand] = *s.Command
	}
	if s.Args != nil {
		out[schema.KeyArgs] = stringsToAny(s.Args)
	}
	if s.Env != nil {
		out[schema.KeyEnv] = stringMapToAny(s.Env)
	}
	if s.Cwd != nil {
		out[schema.KeyCwd] = *s.Cwd
	}
	if s.URL != nil {
		out[schema.KeyURL] = *s.URL
	}
	if s.BearerTokenEnvVar != nil {
		out[schema.KeyBearerTokenEnvVar] = *s.BearerTokenEnvVar
	}
	if s.Headers != nil {
		out[schema.KeyHeaders] = stringMapToAny(s.Headers)
	}

	var warnings []Warning
	if s.Command != nil && s.URL != nil {
		warnings = append(warnings, Warning{
			Kind:    WarnMixedTransport,
			Server:  s.Name,
			Message: "has both command and url; keeping both for compatibility",
		})
	}

	nerr := &NormalizationError{}
	base := schema.ServersKey + "." + s.Name
	for _, f := range s.Extra {
		if v, ok := toTOML(nerr, base+"."+f.Key, f.Value); ok {
			out[f.Key] = v
		}
	}
	if len(nerr.Issues) > 0 {
		return nil, warnings, nerr
	}
	return out, warnings, nil
}

// toTOML converts v into string, int64, float64, bool, []any or
// map[string]any. It never approximates: anything else is recorded on nerr
// and reported as not ok.
func toTOML(nerr *NormalizationError, path string, v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		nerr.add(path, "unsupported null")
		return nil, false
	case string, bool, int64, float64, time.Time:
		return x, true
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case uint:
		return fromUint(nerr, path, uint64(x))
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return fromUint(nerr, path, x)
	case float32:
		return float64(x), true
	case []string:
		return stringsToAny(x), true
	case []any:
		out := make([]any, 0, len(x))
		ok := true
		for i, item := range x {
			if cv, itemOK := toTOML(nerr, fmt.Sprintf("%s[%d]", path, i), item); itemOK {
				out = append(out, cv)
			} else {
				ok = false
			}
		}
		return out, ok
	case *source.Object:
		out := make(map[string]any, x.Len())
		ok := true
		for _, k := range x.Keys() {
			item, _ := x.Get(k)
			if cv, itemOK := toTOML(nerr, path+"."+k, item); itemOK {
				out[k] = cv
			} else {
				ok = false
			}
		}
		return out, ok
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(x))
		ok := true
		for _, k := range keys {
			item := x[k]
			if cv, itemOK := toTOML(nerr, path+"."+k, item); itemOK {
				out[k] = cv
			} else {
				ok = false
			}
		}
		return out, ok
	case map[string]string:
		return stringMapToAny(x), true
	default:
		nerr.add(path, "unsupported type %s", schema.TypeName(v))
		return nil, false
	}
}

func fromUint(nerr *NormalizationError, path string, u uint64) (any, bool) {
	if u > math.MaxInt64 {
		nerr.add(path, "integer %d exceeds the TOML integer range", u)
		return nil, false
	}
	return int64(u), true
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func stringMapToAny(in map[string]string) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
