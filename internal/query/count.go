package query

import (
	"strconv"
	"strings"
)

// Count is a per-value quantity constraint on a countable field, parsed
// from a ":N" style value suffix. The default is "at least 1".
type Count struct {
	Op  Operator
	N   float64
	Max float64
	// Two reports the two-sided "N-M" form; Op is OpEq and Max is valid.
	Two bool
}

// DefaultCount is the implicit constraint when no suffix is given.
var DefaultCount = Count{Op: OpGte, N: 1}

// Satisfies reports whether an observed quantity meets the constraint.
func (c Count) Satisfies(n int) bool {
	v := float64(n)
	if c.Two {
		return v >= c.N && v <= c.Max
	}
	switch c.Op {
	case OpEq:
		return v == c.N
	case OpNeq:
		return v != c.N
	case OpGt:
		return v > c.N
	case OpLt:
		return v < c.N
	case OpLte:
		return v <= c.N
	default:
		return v >= c.N
	}
}

// SplitCount separates a countable value into its name and quantity
// constraint. Recognized suffixes after the last colon: "N", ">N", ">=N",
// "<N", "<=N", "!=N", "=N", "N-M". Anything else leaves the value intact
// with the default constraint and explicit=false.
func SplitCount(v string) (name string, c Count, explicit bool) {
	idx := strings.LastIndexByte(v, ':')
	if idx < 0 || idx == len(v)-1 {
		return v, DefaultCount, false
	}
	suffix := v[idx+1:]
	if c, ok := parseCount(suffix); ok {
		return v[:idx], c, true
	}
	return v, DefaultCount, false
}

func parseCount(s string) (Count, bool) {
	if lo, hi, ok := ParseRange(s); ok {
		return Count{Op: OpEq, N: lo, Max: hi, Two: true}, true
	}
	op := OpGte
	for _, cand := range []Operator{OpNeq, OpGte, OpLte, OpEq, OpGt, OpLt} {
		if strings.HasPrefix(s, string(cand)) {
			op = cand
			s = s[len(cand):]
			break
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Count{}, false
	}
	return Count{Op: op, N: n}, true
}
