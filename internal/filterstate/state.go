// Package filterstate holds the structured per-field representation of
// active constraints and the bidirectional translation between it and
// semantic query text. Semantic text is the source of truth: state for any
// field mentioned in the text is re-derived on every text change, and
// UI-only edits are overwritten if synced back into text.
package filterstate

import (
	"github.com/mekbench/mekbench/internal/domain/schema"
)

// ValueState is the boolean combination mode of one multistate value.
type ValueState string

// Multistate value states.
const (
	StateOr  ValueState = "or"
	StateAnd ValueState = "and"
	StateNot ValueState = "not"
)

// MultiStateEntry is one selected value of a multistate dropdown, with an
// optional quantity constraint. The default constraint is "at least 1".
// When CountInclude/CountExclude are set they override the simple count
// fields and carry a merged, possibly-disjoint constraint that no single
// UI-editable range can express.
type MultiStateEntry struct {
	Name  string     `json:"name"`
	State ValueState `json:"state"`

	Count        int             `json:"count"`
	CountOp      string          `json:"countOperator,omitempty"`
	CountMax     int             `json:"countMax,omitempty"`
	CountInclude []schema.Span   `json:"countIncludeRanges,omitempty"`
	CountExclude []schema.Span   `json:"countExcludeRanges,omitempty"`
}

// MultiStateSelection maps value name to its entry.
type MultiStateSelection map[string]*MultiStateEntry

// FieldState is the structured constraint of one field.
type FieldState struct {
	// Interacted false means "not actively constraining": UI controls show
	// the default/full range.
	Interacted bool `json:"interactedWith"`
	// SemanticOnly marks a constraint expressible in query text but not by
	// the field's simple UI control (disjoint ranges, exclusions).
	SemanticOnly bool `json:"semanticOnly,omitempty"`

	// Range is the overall [min,max] span across all effective segments,
	// for Range fields, so a slider can show bounding handles even when
	// the true constraint is more complex.
	Range schema.Span `json:"range,omitzero"`
	// Include and Exclude are merged [min,max] segments, OR'd together.
	Include []schema.Span `json:"includeRanges,omitempty"`
	Exclude []schema.Span `json:"excludeRanges,omitempty"`

	// Selected is the deduplicated value union for simple dropdowns.
	Selected []string `json:"selected,omitempty"`
	// Multi is the per-value selection for multistate dropdowns.
	Multi MultiStateSelection `json:"multi,omitempty"`

	// DisplayText is a precomputed human-readable summary used when the
	// true state cannot be shown by a simple UI control.
	DisplayText string `json:"displayText,omitempty"`
}

// State maps semantic field key to its structured constraint. Created empty
// at session start, re-derived from semantic text on every query change.
type State map[string]*FieldState

// Field returns the state for a key, creating it on first use.
func (s State) Field(key string) *FieldState {
	fs, ok := s[key]
	if !ok {
		fs = &FieldState{}
		s[key] = fs
	}
	return fs
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, fs := range s {
		c := *fs
		c.Include = append([]schema.Span(nil), fs.Include...)
		c.Exclude = append([]schema.Span(nil), fs.Exclude...)
		c.Selected = append([]string(nil), fs.Selected...)
		if fs.Multi != nil {
			c.Multi = make(MultiStateSelection, len(fs.Multi))
			for name, e := range fs.Multi {
				ec := *e
				ec.CountInclude = append([]schema.Span(nil), e.CountInclude...)
				ec.CountExclude = append([]schema.Span(nil), e.CountExclude...)
				c.Multi[name] = &ec
			}
		}
		out[k] = &c
	}
	return out
}
