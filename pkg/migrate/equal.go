package migrate

import (
	"math"
	"time"
)

// Equal reports whether a and b hold the same TOML data. Sequences compare
// element-wise in order; tables compare key-wise regardless of iteration
// order; integers and floats compare numerically; times by instant.
//
// Both the generic containers produced by Normalize and the typed ones the
// TOML decoder returns ([]map[string]any for arrays of tables) are accepted,
// so no serialization round trip is needed to diff an entry.
func Equal(a, b any) bool {
	if at, ok := asTable(a); ok {
		bt, ok := asTable(b)
		if !ok || len(at) != len(bt) {
			return false
		}
		for k, av := range at {
			bv, ok := bt[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}

	if al, ok := asList(a); ok {
		bl, ok := asList(b)
		if !ok || len(al) != len(bl) {
			return false
		}
		for i := range al {
			if !Equal(al[i], bl[i]) {
				return false
			}
		}
		return true
	}

	if an, ok := asNumber(a); ok {
		bn, ok := asNumber(b)
		return ok && an.equal(bn)
	}

	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	}
	return false
}

func asTable(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		return stringMapToAny(m), true
	}
	return nil, false
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		return stringsToAny(l), true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

type number struct {
	isInt bool
	i     int64
	f     float64
}

func asNumber(v any) (number, bool) {
	switch n := v.(type) {
	case int64:
		return number{isInt: true, i: n}, true
	case int:
		return number{isInt: true, i: int64(n)}, true
	case int32:
		return number{isInt: true, i: int64(n)}, true
	case float64:
		return number{f: n}, true
	case float32:
		return number{f: float64(n)}, true
	}
	return number{}, false
}

func (n number) equal(o number) bool {
	switch {
	case n.isInt && o.isInt:
		return n.i == o.i
	case n.isInt:
		return intEqualsFloat(n.i, o.f)
	case o.isInt:
		return intEqualsFloat(o.i, n.f)
	}
	// NaN is stored as nan and must not read as a change on every run.
	if math.IsNaN(n.f) && math.IsNaN(o.f) {
		return true
	}
	return n.f == o.f
}

// intEqualsFloat compares exactly: f must be integral and inside the int64
// range, so values above 2^53 do not collapse onto their float neighbours.
func intEqualsFloat(i int64, f float64) bool {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return false
	}
	return int64(f) == i
}
