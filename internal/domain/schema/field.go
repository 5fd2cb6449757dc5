// Package schema defines the filter field table the query language is
// parameterized over: field kinds, per-field flags, and the game-scoped
// registry used by the lexer, translator, and evaluator.
package schema

import "fmt"

// Kind is the closed set of filter field kinds.
type Kind string

// Field kind constants.
const (
	// Range is a numeric field constrained by ranges and comparisons.
	Range Kind = "range"
	// SimpleDropdown is a single-union selection field.
	SimpleDropdown Kind = "dropdown"
	// MultiStateDropdown supports per-value or/and/not selection.
	MultiStateDropdown Kind = "multistate"
)

// Span is an inclusive numeric interval.
type Span struct {
	Min float64
	Max float64
}

// Contains reports whether v falls inside the span.
func (s Span) Contains(v float64) bool { return v >= s.Min && v <= s.Max }

// Point reports whether the span covers a single value.
func (s Span) Point() bool { return s.Min == s.Max }

// FieldConfig declares one filterable field. Configs are immutable and
// defined once at startup. Several configs may share a semantic Key when
// scoped to different Game values; the registry resolves first-match-wins
// for the active game.
type FieldConfig struct {
	// Key is the short semantic alias used in query text, e.g. "pv".
	Key string
	// CanonicalKey is the dotted path into a unit record, e.g. "as.pv".
	CanonicalKey string
	Kind         Kind
	// Countable fields support per-value quantity constraints ("ac/2:2").
	Countable bool
	// TextMatch switches dropdown matching from exact to substring.
	TextMatch bool
	// Invisible marks a semantic-only field never shown as a UI control.
	Invisible bool
	// Game restricts the config to one ruleset; empty means any.
	Game string
	// IgnoreValues are sentinels (e.g. -1) excluded from range statistics.
	IgnoreValues []float64
}

// Dropdown reports whether the field kind is dropdown-like.
func (c FieldConfig) Dropdown() bool {
	return c.Kind == SimpleDropdown || c.Kind == MultiStateDropdown
}

// Ignored reports whether v is one of the field's sentinel values.
func (c FieldConfig) Ignored(v float64) bool {
	for _, iv := range c.IgnoreValues {
		if iv == v {
			return true
		}
	}
	return false
}

// Validate checks a config for internal consistency.
func (c FieldConfig) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("field key is required")
	}
	if c.CanonicalKey == "" {
		return fmt.Errorf("canonical key is required for %q", c.Key)
	}
	switch c.Kind {
	case Range, SimpleDropdown, MultiStateDropdown:
	default:
		return fmt.Errorf("invalid kind %q for field %q", c.Kind, c.Key)
	}
	if c.Countable && c.Kind != MultiStateDropdown {
		return fmt.Errorf("countable field %q must be multistate", c.Key)
	}
	return nil
}
