package filterstate

import (
	"sort"
	"strings"

	"github.com/mekbench/mekbench/internal/domain/schema"
	"github.com/mekbench/mekbench/internal/query"
)

// SemanticText serializes interacted fields back into query text. The
// output is semantically equivalent to the state, not byte-faithful to any
// original query: re-parsing it yields the same evaluator behavior.
func SemanticText(state State, reg *schema.Registry, game string, totals Totals) string {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		cfg, ok := reg.Lookup(key, game)
		if !ok {
			continue
		}
		parts = append(parts, FieldClauses(key, state[key], cfg, totals[key])...)
	}
	return strings.Join(parts, " ")
}

// UpdateFilterText replaces only one field's tokens within existing query
// text: free text and other fields' clauses keep their original raw text
// byte-for-byte, so user-authored formatting on unrelated fields never
// drifts. The changed field's clauses are appended after them.
func UpdateFilterText(text, fieldKey string, fs *FieldState, reg *schema.Registry, game string, totals Totals) string {
	res := query.Parse(text, reg, game)

	var parts []string
	if res.TextSearch != "" {
		parts = append(parts, res.TextSearch)
	}
	for _, t := range res.Tokens {
		if tokenCovers(t, fieldKey, reg) {
			continue
		}
		parts = append(parts, t.RawText)
	}
	if fs != nil && fs.Interacted {
		if cfg, ok := reg.Lookup(fieldKey, game); ok {
			parts = append(parts, FieldClauses(fieldKey, fs, cfg, totals[fieldKey])...)
		}
	}
	return strings.Join(parts, " ")
}

// tokenCovers reports whether a token constrains the given field, directly
// or through a virtual alias expansion.
func tokenCovers(t *query.Token, fieldKey string, reg *schema.Registry) bool {
	for _, k := range reg.Expand(t.Field) {
		if k == fieldKey {
			return true
		}
	}
	return false
}

// FieldClauses serializes one field's state to zero or more clauses:
// exclusions first, then the include constraint under the narrowest correct
// operator. A value equal to the field's full available range emits nothing.
func FieldClauses(key string, fs *FieldState, cfg schema.FieldConfig, total schema.Span) []string {
	if fs == nil || !fs.Interacted {
		return nil
	}
	switch cfg.Kind {
	case schema.Range:
		return rangeClauses(key, fs, total)
	case schema.MultiStateDropdown:
		return multiClauses(key, fs, cfg)
	default:
		return simpleClauses(key, fs)
	}
}

func rangeClauses(key string, fs *FieldState, total schema.Span) []string {
	var out []string
	for _, ex := range fs.Exclude {
		out = append(out, key+string(query.OpNeq)+spanText(ex))
	}

	include := fs.Include
	if len(include) == 0 {
		// Simple UI state carries only the overall range.
		include = []schema.Span{fs.Range}
	}
	if len(include) > 1 {
		texts := make([]string, len(include))
		for i, s := range include {
			texts[i] = spanText(s)
		}
		return append(out, key+string(query.OpEq)+strings.Join(texts, ","))
	}

	span := include[0]
	minDiff := span.Min != total.Min
	maxDiff := span.Max != total.Max
	switch {
	case minDiff && maxDiff:
		out = append(out, key+string(query.OpEq)+spanText(span))
	case minDiff:
		out = append(out, key+string(query.OpGte)+formatNum(span.Min))
	case maxDiff:
		out = append(out, key+string(query.OpLte)+formatNum(span.Max))
	}
	// Neither bound differs: the value equals the unconstrained default and
	// contributes nothing.
	return out
}

func spanText(s schema.Span) string {
	if s.Point() {
		return formatNum(s.Min)
	}
	return formatNum(s.Min) + "-" + formatNum(s.Max)
}

// multiClauses emits up to three independent clauses per field: or-state
// values under `=`, and-state under `&=`, not-state under `!=`.
func multiClauses(key string, fs *FieldState, cfg schema.FieldConfig) []string {
	groups := map[ValueState][]string{}
	names := make([]string, 0, len(fs.Multi))
	for name := range fs.Multi {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e := fs.Multi[name]
		for _, v := range entryValues(e, cfg.Countable) {
			groups[e.State] = append(groups[e.State], v)
		}
	}

	var out []string
	if vs := groups[StateOr]; len(vs) > 0 {
		out = append(out, key+string(query.OpEq)+strings.Join(vs, ","))
	}
	if vs := groups[StateAnd]; len(vs) > 0 {
		out = append(out, key+string(query.OpAndEq)+strings.Join(vs, ","))
	}
	if vs := groups[StateNot]; len(vs) > 0 {
		out = append(out, key+string(query.OpNeq)+strings.Join(vs, ","))
	}
	return out
}

// entryValues renders one multistate entry as serialized values, expanding
// a merged disjoint count constraint into one value per segment.
func entryValues(e *MultiStateEntry, countable bool) []string {
	name := quoteValue(e.Name)
	if !countable {
		return []string{name}
	}
	if len(e.CountInclude) > 0 {
		out := make([]string, 0, len(e.CountInclude))
		for _, s := range e.CountInclude {
			out = append(out, name+":"+countSpanText(s))
		}
		return out
	}
	if suffix := simpleCountText(e); suffix != "" {
		return []string{name + ":" + suffix}
	}
	return []string{name}
}

func countSpanText(s schema.Span) string {
	if s.Max == s.Min {
		return "=" + formatNum(s.Min)
	}
	if s.Max > 1e17 { // open upper bound
		return formatNum(s.Min)
	}
	if s.Min == 0 {
		return "<=" + formatNum(s.Max)
	}
	return formatNum(s.Min) + "-" + formatNum(s.Max)
}

// simpleCountText renders the simple count fields; empty for the "at least
// one" default. A bare ":N" suffix reads as at-least-N.
func simpleCountText(e *MultiStateEntry) string {
	op := query.Operator(e.CountOp)
	if e.CountMax > 0 {
		return formatNum(float64(e.Count)) + "-" + formatNum(float64(e.CountMax))
	}
	switch {
	case op == query.OpGte && e.Count == 1:
		return ""
	case op == query.OpGte || op == "":
		return formatNum(float64(e.Count))
	default:
		return string(op) + formatNum(float64(e.Count))
	}
}

func simpleClauses(key string, fs *FieldState) []string {
	if len(fs.Selected) == 0 {
		return nil
	}
	vs := make([]string, len(fs.Selected))
	for i, v := range fs.Selected {
		vs[i] = quoteValue(v)
	}
	return []string{key + string(query.OpEq) + strings.Join(vs, ",")}
}

// quoteValue wraps a value in double quotes when it contains characters the
// lexer would otherwise treat as structure, escaping inner quotes.
func quoteValue(v string) string {
	if !strings.ContainsAny(v, " \t\n\r,=!<>") {
		return v
	}
	escaped := strings.ReplaceAll(v, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}
