// Package bookmark models saved searches.
package bookmark

import (
	"fmt"

	"github.com/mekbench/mekbench/internal/filterstate"
)

// Saved is one persisted search: the raw semantic query text plus a
// snapshot of UI-only (non-semantic) filter entries and pilot skill
// settings. The query text is applied verbatim; the filters replay through
// the normal single-field update path.
type Saved struct {
	ID       string                             `json:"id"`
	Name     string                             `json:"name"`
	Query    string                             `json:"q,omitempty"`
	Sort     string                             `json:"sort,omitempty"`
	SortDir  string                             `json:"sortDir,omitempty"`
	Filters  map[string]*filterstate.FieldState `json:"filters,omitempty"`
	Gunnery  int                                `json:"gunnery,omitempty"`
	Piloting int                                `json:"piloting,omitempty"`
}

// Validate checks the fields a caller must supply.
func (s Saved) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("saved search name is required")
	}
	if s.SortDir != "" && s.SortDir != "asc" && s.SortDir != "desc" {
		return fmt.Errorf("sortDir must be asc or desc, got %q", s.SortDir)
	}
	return nil
}
