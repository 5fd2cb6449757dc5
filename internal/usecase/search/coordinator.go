// Package search hosts the search-filter coordinator: the session object
// that keeps query text, structured filter state, and filtered results in
// sync. Semantic text is the source of truth; structured state for any
// field the text mentions is re-derived on every text change.
package search

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mekbench/mekbench/internal/domain/schema"
	"github.com/mekbench/mekbench/internal/domain/unit"
	"github.com/mekbench/mekbench/internal/evaluate"
	"github.com/mekbench/mekbench/internal/filterstate"
	"github.com/mekbench/mekbench/internal/metrics"
	"github.com/mekbench/mekbench/internal/query"
)

// Coordinator owns one session's filter state. Mutating methods re-parse
// and re-derive eagerly; reads serve the last derived snapshot.
type Coordinator struct {
	reg     *schema.Registry
	catalog Catalog
	game    string
	logger  *zap.Logger

	mu        sync.Mutex
	queryText string
	parsed    *query.Result
	state     filterstate.State
	// syncing guards the text-sync feedback loop: a filter edit rewrites
	// the query text, which must not be observed as a fresh user edit.
	syncing bool

	optCache   map[string][]Option
	optVersion uint64
}

// New creates a coordinator with empty state.
func New(reg *schema.Registry, catalog Catalog, game string, logger *zap.Logger) *Coordinator {
	c := &Coordinator{
		reg:      reg,
		catalog:  catalog,
		game:     game,
		logger:   logger,
		optCache: map[string][]Option{},
	}
	c.setQueryLocked("")
	return c
}

// SetQuery replaces the query text and re-derives filter state.
func (c *Coordinator) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setQueryLocked(q)
}

func (c *Coordinator) setQueryLocked(q string) {
	c.queryText = q
	c.parsed = query.Parse(q, c.reg, c.game)
	c.state = filterstate.FromTokens(c.parsed.Tokens, c.reg, c.game, c.totals())
	c.optCache = map[string][]Option{}

	metrics.QueriesTotal.Inc()
	if n := len(c.parsed.Errors); n > 0 {
		metrics.ParseErrorsTotal.Add(float64(n))
		c.logger.Debug("query parsed with errors",
			zap.String("q", q),
			zap.Int("errors", n),
		)
	}
}

// SetFilter applies one field's UI edit by rewriting only that field's
// tokens in the query text, then re-deriving. Re-entrant calls (triggered
// by observing the rewritten text) are ignored.
func (c *Coordinator) SetFilter(field string, fs *filterstate.FieldState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.syncing {
		return
	}
	c.syncing = true
	defer func() { c.syncing = false }()

	fs = elideFullRange(field, fs, c.totals())
	text := filterstate.UpdateFilterText(c.queryText, field, fs, c.reg, c.game, c.totals())
	c.setQueryLocked(text)
}

// elideFullRange drops a range constraint equal to the field's full
// available span: it constrains nothing, so the field reads as
// not-interacted and its token disappears from the text.
func elideFullRange(field string, fs *filterstate.FieldState, totals filterstate.Totals) *filterstate.FieldState {
	if fs == nil || !fs.Interacted {
		return fs
	}
	total, ok := totals[field]
	if !ok || len(fs.Include) > 0 || len(fs.Exclude) > 0 {
		return fs
	}
	if fs.Range == total && fs.Selected == nil && fs.Multi == nil {
		return nil
	}
	return fs
}

// Reset clears all state.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setQueryLocked("")
}

// Query returns the current query text.
func (c *Coordinator) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queryText
}

// State returns a deep copy of the derived filter state.
func (c *Coordinator) State() filterstate.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Errors returns the positional diagnostics of the last parse.
func (c *Coordinator) Errors() []query.ParseError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parsed.Errors
}

// Complex reports whether the current query cannot be round-tripped through
// flat UI controls (OR operators or deep nesting anywhere).
func (c *Coordinator) Complex() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return query.IsComplex(c.parsed.AST)
}

// Results evaluates the current AST over the catalog and scores hits by
// free-text relevance. Hits sort by score descending, then name.
func (c *Coordinator) Results() []Scored {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	ctx := c.evalContext()
	units := evaluate.Filter(c.catalog.Units(), c.parsed.AST, ctx)

	out := make([]Scored, 0, len(units))
	for _, u := range units {
		out = append(out, Scored{Unit: u, Score: relevance(u, c.parsed.AST, ctx)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Unit.Name() < out[j].Unit.Name()
	})

	metrics.EvalDuration.Observe(time.Since(start).Seconds())
	return out
}

// Options lists the distinct values of a dropdown field across the units
// matching every other active constraint, with counts. Results are memoized
// per field + context unit count + current selection until the query text
// or the catalog version changes.
func (c *Coordinator) Options(field string) []Option {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg, ok := c.reg.Lookup(field, c.game)
	if !ok || cfg.Kind == schema.Range {
		return nil
	}

	if v := c.catalog.Version(); v != c.optVersion {
		c.optVersion = v
		c.optCache = map[string][]Option{}
	}
	key := c.optCacheKey(field)
	if cached, ok := c.optCache[key]; ok {
		metrics.OptionCacheHits.Inc()
		return cached
	}

	// Context = the query with this field's own constraints removed.
	text := filterstate.UpdateFilterText(c.queryText, field, nil, c.reg, c.game, c.totals())
	res := query.Parse(text, c.reg, c.game)
	ctx := c.evalContext()
	units := evaluate.Filter(c.catalog.Units(), res.AST, ctx)

	counts := map[string]int{}
	var order []string
	for _, u := range units {
		for _, v := range unitValues(u, cfg, ctx.Resolver) {
			k := strings.ToLower(v)
			if _, seen := counts[k]; !seen {
				order = append(order, v)
			}
			counts[k]++
		}
	}
	sort.Strings(order)

	opts := make([]Option, 0, len(order))
	for _, v := range order {
		opts = append(opts, Option{Value: v, Count: counts[strings.ToLower(v)]})
	}
	c.optCache[key] = opts
	return opts
}

func (c *Coordinator) optCacheKey(field string) string {
	var sel string
	if fs, ok := c.state[field]; ok {
		sel = strings.Join(fs.Selected, ",")
		for name := range fs.Multi {
			sel += "|" + name
		}
	}
	return fmt.Sprintf("%s:%d:%s", field, len(c.catalog.Units()), sel)
}

func (c *Coordinator) totals() filterstate.Totals {
	return c.catalog.Totals(c.reg, c.game)
}

func (c *Coordinator) evalContext() *evaluate.Context {
	return &evaluate.Context{
		Registry:  c.reg,
		Game:      c.game,
		Resolver:  c.catalog.Resolver(),
		TextMatch: textMatcher,
	}
}

func unitValues(u unit.Unit, cfg schema.FieldConfig, r *unit.Resolver) []string {
	if cfg.Countable {
		comps := r.Components(u)
		out := make([]string, 0, len(comps))
		for _, comp := range comps {
			out = append(out, comp.Name)
		}
		return out
	}
	raw, ok := r.Get(u, cfg.CanonicalKey)
	if !ok {
		return nil
	}
	switch t := raw.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		var out []string
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// textMatcher decides whether a free-text fragment matches a unit: every
// whitespace-separated word must appear in the unit name.
func textMatcher(u unit.Unit, text string) bool {
	name := strings.ToLower(u.Name())
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if !strings.Contains(name, word) {
			return false
		}
	}
	return true
}

// relevance scores a hit by how the free text matched: exact word hits on
// the name outrank prefix hits, which outrank substring hits. The matching
// text comes from the OR-aware AST walk, so only the branch that actually
// matched contributes.
func relevance(u unit.Unit, ast *query.Node, ctx *evaluate.Context) float64 {
	matched := evaluate.MatchingText(u, ast, ctx)
	if matched == "" {
		return 0
	}
	name := strings.ToLower(u.Name())
	words := strings.Fields(name)
	score := 0.0
	for _, w := range strings.Fields(strings.ToLower(matched)) {
		switch {
		case name == w:
			score += 4
		case containsWord(words, w):
			score += 3
		case strings.HasPrefix(name, w):
			score += 2
		case strings.Contains(name, w):
			score++
		}
	}
	return score
}

func containsWord(words []string, w string) bool {
	for _, cand := range words {
		if cand == w {
			return true
		}
	}
	return false
}
