package filterstate

import (
	"math"
	"strconv"
	"strings"

	"github.com/mekbench/mekbench/internal/domain/schema"
	"github.com/mekbench/mekbench/internal/query"
)

// Totals maps field key to its full available numeric range over the
// catalog. The translator needs it to interpret boundary semantics: a value
// equal to the unconstrained default serializes to nothing.
type Totals map[string]schema.Span

// FromTokens derives structured filter state from parsed semantic tokens.
// It is a total function: malformed numeric values are skipped per-value,
// never rejected wholesale.
func FromTokens(tokens []*query.Token, reg *schema.Registry, game string, totals Totals) State {
	state := State{}
	byField := map[string][]*query.Token{}
	var order []string
	for _, t := range tokens {
		for _, key := range reg.Expand(t.Field) {
			if _, seen := byField[key]; !seen {
				order = append(order, key)
			}
			byField[key] = append(byField[key], t)
		}
	}
	for _, key := range order {
		cfg, ok := reg.Lookup(key, game)
		if !ok {
			continue
		}
		switch cfg.Kind {
		case schema.Range:
			state[key] = rangeState(byField[key], totals[key])
		case schema.MultiStateDropdown:
			state[key] = multiState(byField[key], cfg)
		case schema.SimpleDropdown:
			if fs := simpleState(byField[key]); fs != nil {
				state[key] = fs
			}
		}
	}
	return state
}

// rangeState folds a field's tokens into merged include segments minus
// merged exclusions. Equality values contribute include ranges, inequality
// values exclude ranges, and comparison operators tighten a running
// [comparisonMin, comparisonMax] window that all includes intersect.
func rangeState(tokens []*query.Token, total schema.Span) *FieldState {
	var include, exclude []schema.Span
	cmpMin, cmpMax := math.Inf(-1), math.Inf(1)
	hasCmp := false

	for _, t := range tokens {
		for _, v := range t.Values {
			switch t.Op {
			case query.OpEq, query.OpNeq:
				span, ok := valueSpan(v)
				if !ok {
					continue
				}
				if t.Op == query.OpEq {
					include = append(include, span)
				} else {
					exclude = append(exclude, span)
				}
			default:
				n, err := strconv.ParseFloat(v, 64)
				if err != nil {
					continue
				}
				hasCmp = true
				switch t.Op {
				case query.OpGte:
					cmpMin = math.Max(cmpMin, n)
				case query.OpGt:
					cmpMin = math.Max(cmpMin, n+1)
				case query.OpLte:
					cmpMax = math.Min(cmpMax, n)
				case query.OpLt:
					cmpMax = math.Min(cmpMax, n-1)
				}
			}
		}
	}

	if hasCmp {
		window := schema.Span{
			Min: math.Max(cmpMin, total.Min),
			Max: math.Min(cmpMax, total.Max),
		}
		if math.IsInf(cmpMin, -1) {
			window.Min = total.Min
		}
		if math.IsInf(cmpMax, 1) {
			window.Max = total.Max
		}
		if len(include) == 0 {
			include = []schema.Span{window}
		} else {
			include = clipSpans(include, window)
		}
	}

	// Exclusion-only constraints subtract from the full available range.
	if len(include) == 0 && len(exclude) > 0 {
		include = []schema.Span{total}
	}

	merged := mergeSpans(include)
	excluded := mergeSpans(exclude)
	effective := subtractSpans(merged, excluded)

	fs := &FieldState{
		Interacted: true,
		Include:    merged,
		Exclude:    excluded,
		Range:      spanBounds(effective),
	}
	if len(effective) > 1 || len(excluded) > 0 {
		fs.SemanticOnly = true
		fs.DisplayText = formatSpans(effective)
	}
	return fs
}

func clipSpans(spans []schema.Span, window schema.Span) []schema.Span {
	var out []schema.Span
	for _, s := range spans {
		if s.Max < window.Min || s.Min > window.Max {
			continue
		}
		out = append(out, schema.Span{
			Min: math.Max(s.Min, window.Min),
			Max: math.Min(s.Max, window.Max),
		})
	}
	return out
}

// valueSpan interprets one equality value: embedded range syntax or a bare
// number (a single-point span).
func valueSpan(v string) (schema.Span, bool) {
	if lo, hi, ok := query.ParseRange(v); ok {
		return schema.Span{Min: lo, Max: hi}, true
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return schema.Span{}, false
	}
	return schema.Span{Min: n, Max: n}, true
}

// multiState folds tokens into a per-value or/and/not selection. `!=` maps
// to not, `&=` to and, `=` to or. A later not overrides an earlier or; an
// or never downgrades an existing not.
func multiState(tokens []*query.Token, cfg schema.FieldConfig) *FieldState {
	sel := MultiStateSelection{}
	for _, t := range tokens {
		st := StateOr
		switch t.Op {
		case query.OpNeq:
			st = StateNot
		case query.OpAndEq:
			st = StateAnd
		}
		for _, v := range t.Values {
			name := v
			count := query.DefaultCount
			explicit := false
			if cfg.Countable {
				name, count, explicit = query.SplitCount(v)
			}
			key := strings.ToLower(name)
			entry, ok := sel[key]
			if !ok {
				entry = &MultiStateEntry{Name: name, State: st, Count: 1, CountOp: string(query.OpGte)}
				sel[key] = entry
			} else if st == StateNot || entry.State != StateNot && st == StateAnd {
				entry.State = st
			}
			if explicit {
				applyCount(entry, count)
			}
		}
	}
	if len(sel) == 0 {
		return nil
	}
	return &FieldState{Interacted: true, Multi: sel}
}

// applyCount folds a quantity constraint into an entry. A repeated value
// with a different constraint unions the count spans; when the union is no
// longer a single simple range it moves into CountInclude.
func applyCount(e *MultiStateEntry, c query.Count) {
	span := countSpan(c)
	if len(e.CountInclude) == 0 && e.Count == 1 && e.CountOp == string(query.OpGte) && e.CountMax == 0 {
		// First explicit constraint replaces the default.
		e.Count = int(c.N)
		e.CountOp = string(c.Op)
		if c.Two {
			e.CountOp = string(query.OpEq)
			e.CountMax = int(c.Max)
		}
		return
	}
	prev := e.CountInclude
	if len(prev) == 0 {
		prev = []schema.Span{simpleCountSpan(e)}
	}
	merged := mergeSpans(append(prev, span))
	if len(merged) == 1 && collapseSimple(e, merged[0]) {
		e.CountInclude = nil
		return
	}
	e.CountInclude = merged
}

func countSpan(c query.Count) schema.Span {
	if c.Two {
		return schema.Span{Min: c.N, Max: c.Max}
	}
	switch c.Op {
	case query.OpEq:
		return schema.Span{Min: c.N, Max: c.N}
	case query.OpGt:
		return schema.Span{Min: c.N + 1, Max: math.Inf(1)}
	case query.OpLt:
		return schema.Span{Min: 0, Max: c.N - 1}
	case query.OpLte:
		return schema.Span{Min: 0, Max: c.N}
	default:
		return schema.Span{Min: c.N, Max: math.Inf(1)}
	}
}

func simpleCountSpan(e *MultiStateEntry) schema.Span {
	c := query.Count{Op: query.Operator(e.CountOp), N: float64(e.Count)}
	if e.CountMax > 0 {
		c.Two = true
		c.Max = float64(e.CountMax)
	}
	return countSpan(c)
}

// collapseSimple writes a single merged span back into the simple count
// fields when it is expressible there.
func collapseSimple(e *MultiStateEntry, s schema.Span) bool {
	switch {
	case math.IsInf(s.Max, 1):
		e.Count = int(s.Min)
		e.CountOp = string(query.OpGte)
		e.CountMax = 0
	case s.Min == 0:
		e.Count = int(s.Max)
		e.CountOp = string(query.OpLte)
		e.CountMax = 0
	case s.Point():
		e.Count = int(s.Min)
		e.CountOp = string(query.OpEq)
		e.CountMax = 0
	default:
		e.Count = int(s.Min)
		e.CountOp = string(query.OpEq)
		e.CountMax = int(s.Max)
	}
	return true
}

// simpleState unions `=` values for a non-multistate dropdown. `!=` has no
// UI representation for simple dropdowns and is silently dropped.
func simpleState(tokens []*query.Token) *FieldState {
	var selected []string
	seen := map[string]bool{}
	for _, t := range tokens {
		if t.Op != query.OpEq {
			continue
		}
		for _, v := range t.Values {
			key := strings.ToLower(v)
			if seen[key] {
				continue
			}
			seen[key] = true
			selected = append(selected, v)
		}
	}
	if len(selected) == 0 {
		return nil
	}
	return &FieldState{Interacted: true, Selected: selected}
}
