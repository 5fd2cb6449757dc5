package search

import (
	"github.com/mekbench/mekbench/internal/domain/schema"
	"github.com/mekbench/mekbench/internal/domain/unit"
	"github.com/mekbench/mekbench/internal/filterstate"
)

// Catalog supplies the flat unit list the coordinator evaluates against,
// plus the caches keyed off its version counter.
type Catalog interface {
	Units() []unit.Unit
	Version() uint64
	Resolver() *unit.Resolver
	Totals(reg *schema.Registry, game string) filterstate.Totals
}

// Scored is one search hit with its relevance score.
type Scored struct {
	Unit  unit.Unit
	Score float64
}

// Option is one available dropdown value with its unit count in the current
// context.
type Option struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}
