package query

import (
	"regexp"
	"strconv"
	"strings"
)

// ParseValues splits a raw value string into discrete values. Commas outside
// of quotes separate values; both `"` and `'` quote, and inside quotes a
// backslash escapes the quote character or a backslash. Empty and
// whitespace-only segments are dropped. Duplicates are preserved.
func ParseValues(s string) []string {
	var (
		out   []string
		cur   strings.Builder
		quote byte
	)
	flush := func() {
		v := strings.TrimSpace(cur.String())
		if v != "" {
			out = append(out, v)
		}
		cur.Reset()
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == '\\' && i+1 < len(s) && (s[i+1] == quote || s[i+1] == '\\') {
				i++
				cur.WriteByte(s[i])
				continue
			}
			if ch == quote {
				quote = 0
				continue
			}
			cur.WriteByte(ch)
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == ',':
			flush()
		default:
			cur.WriteByte(ch)
		}
	}
	flush()
	return out
}

var rangePattern = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)-(-?\d+(?:\.\d+)?)$`)

// ParseRange recognizes a two-sided numeric range "min-max" (either side may
// be negative or fractional) and returns it normalized so min <= max. A bare
// negative number such as "-5" is not a range.
func ParseRange(s string) (min, max float64, ok bool) {
	m := rangePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	lo, err1 := strconv.ParseFloat(m[1], 64)
	hi, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, true
}

// WildcardToRegexp compiles a `*`-wildcard pattern into an anchored,
// case-insensitive regexp. All other regexp metacharacters are literal.
func WildcardToRegexp(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.Compile("(?i)^" + strings.Join(parts, ".*") + "$")
}

// IsWildcard reports whether a value uses `*` wildcard syntax.
func IsWildcard(v string) bool { return strings.Contains(v, "*") }
