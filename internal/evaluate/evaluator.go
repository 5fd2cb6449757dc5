// Package evaluate runs parsed query ASTs against the in-memory unit
// catalog. Evaluation is pure and synchronous: every query change re-filters
// the whole catalog, sized in the low thousands of records.
package evaluate

import (
	"strconv"
	"strings"

	"github.com/mekbench/mekbench/internal/domain/schema"
	"github.com/mekbench/mekbench/internal/domain/unit"
	"github.com/mekbench/mekbench/internal/query"
)

// Context supplies everything a filter needs beyond the unit itself.
type Context struct {
	Registry *schema.Registry
	Game     string
	// Resolver performs property lookup, including the virtual keys.
	Resolver *unit.Resolver
	// Adjusted overrides raw numeric lookup for fields whose stored value
	// must be transformed by session parameters before comparison.
	Adjusted map[string]func(unit.Unit) (float64, bool)
	// TextMatch decides whether a text AST leaf matches a unit. Nil means
	// text leaves pass for every unit.
	TextMatch func(unit.Unit, string) bool
}

// Filter returns the subset of units the AST accepts.
func Filter(units []unit.Unit, ast *query.Node, ctx *Context) []unit.Unit {
	out := make([]unit.Unit, 0, len(units))
	for _, u := range units {
		if Matches(u, ast, ctx) {
			out = append(out, u)
		}
	}
	return out
}

// Matches evaluates one AST node against one unit. An empty group is
// vacuously true.
func Matches(u unit.Unit, n *query.Node, ctx *Context) bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case query.NodeText:
		if ctx.TextMatch == nil {
			return true
		}
		return ctx.TextMatch(u, n.Text)
	case query.NodeFilter:
		return matchesFilter(u, n.Filter, ctx)
	case query.NodeGroup:
		if n.Op == query.GroupOr {
			for _, c := range n.Children {
				if Matches(u, c, ctx) {
					return true
				}
			}
			return len(n.Children) == 0
		}
		for _, c := range n.Children {
			if !Matches(u, c, ctx) {
				return false
			}
		}
		return true
	}
	return true
}

// MatchingText returns the free text responsible for a unit matching, for
// relevance scoring. AND groups concatenate every matching child's text; OR
// groups contribute only the first matching child's text, because only one
// branch need be true and only that branch explains the match.
func MatchingText(u unit.Unit, n *query.Node, ctx *Context) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case query.NodeText:
		if ctx.TextMatch == nil || ctx.TextMatch(u, n.Text) {
			return n.Text
		}
		return ""
	case query.NodeGroup:
		if n.Op == query.GroupOr {
			for _, c := range n.Children {
				if Matches(u, c, ctx) {
					return MatchingText(u, c, ctx)
				}
			}
			return ""
		}
		var parts []string
		for _, c := range n.Children {
			if t := MatchingText(u, c, ctx); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// matchesFilter dispatches on field kind. A field absent from the registry
// is a pass-through: favors visibility over silently empty results. A
// virtual alias matches when any of its expansions does.
func matchesFilter(u unit.Unit, tok *query.Token, ctx *Context) bool {
	keys := ctx.Registry.Expand(tok.Field)
	known := false
	for _, key := range keys {
		cfg, ok := ctx.Registry.Lookup(key, ctx.Game)
		if !ok {
			continue
		}
		known = true
		if matchesField(u, tok, key, cfg, ctx) {
			return true
		}
	}
	return !known
}

func matchesField(u unit.Unit, tok *query.Token, key string, cfg schema.FieldConfig, ctx *Context) bool {
	if cfg.Kind == schema.Range {
		return matchesRange(u, tok, key, cfg, ctx)
	}
	return matchesDropdown(u, tok, cfg, ctx)
}

// matchesRange compares the unit's numeric property against every value,
// OR-across-values. Equality values may carry embedded range syntax. A
// sentinel property value passes unconditionally; a missing property never
// matches.
func matchesRange(u unit.Unit, tok *query.Token, key string, cfg schema.FieldConfig, ctx *Context) bool {
	val, ok := numericProp(u, key, cfg, ctx)
	if !ok {
		return false
	}
	if cfg.Ignored(val) {
		return true
	}

	matched := false
	for _, v := range tok.Values {
		if lo, hi, isRange := query.ParseRange(v); isRange {
			if tok.Op == query.OpEq || tok.Op == query.OpNeq {
				if val >= lo && val <= hi {
					matched = true
				}
			}
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue // NaN values are skipped, not fatal
		}
		if compareValue(val, n, tok.Op) {
			matched = true
		}
	}
	if tok.Op == query.OpNeq {
		return !matched
	}
	return matched
}

func compareValue(val, n float64, op query.Operator) bool {
	switch op {
	case query.OpGt:
		return val > n
	case query.OpLt:
		return val < n
	case query.OpGte:
		return val >= n
	case query.OpLte:
		return val <= n
	default: // = and != share the membership test; != inverts afterward
		return val == n
	}
}

func numericProp(u unit.Unit, key string, cfg schema.FieldConfig, ctx *Context) (float64, bool) {
	if adj, ok := ctx.Adjusted[key]; ok {
		return adj(u)
	}
	raw, ok := ctx.Resolver.Get(u, cfg.CanonicalKey)
	if !ok {
		return 0, false
	}
	return toFloat(raw)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		n, err := strconv.ParseFloat(t, 64)
		return n, err == nil
	}
	return 0, false
}

// matchesDropdown handles exact, substring (textMatch), and wildcard value
// matching, count constraints on countable fields, and `!=` inversion. A
// missing property matches only `!=`.
func matchesDropdown(u unit.Unit, tok *query.Token, cfg schema.FieldConfig, ctx *Context) bool {
	if cfg.Countable {
		return matchesCountable(u, tok, ctx)
	}

	entries := propStrings(u, cfg.CanonicalKey, ctx)
	if len(entries) == 0 {
		return tok.Op == query.OpNeq
	}

	matchOne := func(v string) bool {
		m := valueMatcher(v, cfg.TextMatch)
		for _, e := range entries {
			if m(e) {
				return true
			}
		}
		return false
	}

	switch tok.Op {
	case query.OpAndEq:
		for _, v := range tok.Values {
			if !matchOne(v) {
				return false
			}
		}
		return true
	case query.OpNeq:
		for _, v := range tok.Values {
			if matchOne(v) {
				return false
			}
		}
		return true
	default:
		for _, v := range tok.Values {
			if matchOne(v) {
				return true
			}
		}
		return false
	}
}

// matchesCountable checks per-value quantity constraints against the unit's
// aggregated components. The default constraint is "at least one".
func matchesCountable(u unit.Unit, tok *query.Token, ctx *Context) bool {
	satisfied := func(v string) bool {
		name, count, _ := query.SplitCount(v)
		n := ctx.Resolver.Count(u, valueMatcher(name, false))
		return count.Satisfies(n)
	}

	switch tok.Op {
	case query.OpAndEq:
		for _, v := range tok.Values {
			if !satisfied(v) {
				return false
			}
		}
		return true
	case query.OpNeq:
		for _, v := range tok.Values {
			if satisfied(v) {
				return false
			}
		}
		return true
	default:
		for _, v := range tok.Values {
			if satisfied(v) {
				return true
			}
		}
		return false
	}
}

func propStrings(u unit.Unit, canonical string, ctx *Context) []string {
	raw, ok := ctx.Resolver.Get(u, canonical)
	if !ok {
		return nil
	}
	switch t := raw.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case float64:
		return []string{strconv.FormatFloat(t, 'f', -1, 64)}
	}
	return nil
}

// valueMatcher builds the match predicate for one dropdown value: wildcard
// patterns compile to anchored case-insensitive regexps, textMatch fields
// use substring comparison, everything else is case-insensitive equality.
func valueMatcher(v string, textMatch bool) func(string) bool {
	if query.IsWildcard(v) {
		if re, err := query.WildcardToRegexp(v); err == nil {
			return re.MatchString
		}
	}
	lower := strings.ToLower(v)
	if textMatch {
		return func(s string) bool { return strings.Contains(strings.ToLower(s), lower) }
	}
	return func(s string) bool { return strings.ToLower(s) == lower }
}
