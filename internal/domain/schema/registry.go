package schema

import (
	"fmt"
	"strings"
)

// Registry is the ordered field table supplied by the host application.
// Lookups are keyed by semantic key plus the active game; the first config
// whose game scope admits the active game wins. Virtual alias keys expand
// to several underlying fields and are recognized by the lexer like real
// fields but carry no config of their own.
type Registry struct {
	configs []FieldConfig
	aliases map[string][]string
}

// NewRegistry validates and creates a registry from an ordered config table.
func NewRegistry(configs []FieldConfig) (*Registry, error) {
	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid field config: %w", err)
		}
	}
	return &Registry{
		configs: configs,
		aliases: map[string][]string{},
	}, nil
}

// MustRegistry creates a registry or panics. For static tables.
func MustRegistry(configs []FieldConfig) *Registry {
	r, err := NewRegistry(configs)
	if err != nil {
		panic(err)
	}
	return r
}

// WithAlias registers a virtual key expanding to the given underlying
// semantic keys. Returns the registry for chaining.
func (r *Registry) WithAlias(name string, fields ...string) *Registry {
	r.aliases[strings.ToLower(name)] = fields
	return r
}

// Lookup resolves a semantic key for the active game. An alias resolves to
// its first underlying field's config (all expansions of one alias share a
// kind). First match wins.
func (r *Registry) Lookup(key, game string) (FieldConfig, bool) {
	key = strings.ToLower(key)
	if under, ok := r.aliases[key]; ok && len(under) > 0 {
		return r.Lookup(under[0], game)
	}
	for _, c := range r.configs {
		if c.Key == key && (c.Game == "" || c.Game == game) {
			return c, true
		}
	}
	return FieldConfig{}, false
}

// Known reports whether key names a real field or an alias for the game.
func (r *Registry) Known(key, game string) bool {
	_, ok := r.Lookup(key, game)
	return ok
}

// Expand returns the underlying semantic keys for a key: the alias
// expansion, or the key itself when it is not an alias.
func (r *Registry) Expand(key string) []string {
	key = strings.ToLower(key)
	if under, ok := r.aliases[key]; ok {
		return under
	}
	return []string{key}
}

// Fields returns the configs applicable to the given game, in table order,
// excluding invisible (semantic-only) fields.
func (r *Registry) Fields(game string) []FieldConfig {
	var out []FieldConfig
	seen := map[string]bool{}
	for _, c := range r.configs {
		if c.Game != "" && c.Game != game {
			continue
		}
		if c.Invisible || seen[c.Key] {
			continue
		}
		seen[c.Key] = true
		out = append(out, c)
	}
	return out
}
