package unit

import (
	"strings"
	"sync"
)

// Component is one aggregated piece of unit equipment.
type Component struct {
	Name  string
	Count int
}

// Resolver answers property lookups the raw record cannot: the merged tag
// set and the aggregated component list. Aggregation results are memoized
// per unit identity; Invalidate drops every cached entry by bumping the
// version counter when the data set changes.
type Resolver struct {
	mu      sync.Mutex
	version uint64
	comps   map[string][]Component
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{comps: map[string][]Component{}}
}

// Invalidate discards all derived-property caches.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.version++
	r.comps = map[string][]Component{}
}

// Get resolves a canonical key for a unit, handling the virtual keys.
func (r *Resolver) Get(u Unit, key string) (any, bool) {
	switch key {
	case "tags":
		tags := append(u.Strings("factions"), u.Strings("as.specials")...)
		if len(tags) == 0 {
			return nil, false
		}
		return tags, true
	case "components":
		comps := r.Components(u)
		if len(comps) == 0 {
			return nil, false
		}
		names := make([]string, len(comps))
		for i, c := range comps {
			names[i] = c.Name
		}
		return names, true
	}
	return u.Get(key)
}

// Components aggregates the unit's equipment entries by name.
func (r *Resolver) Components(u Unit) []Component {
	r.mu.Lock()
	if cached, ok := r.comps[u.ID()]; ok {
		r.mu.Unlock()
		return cached
	}
	r.mu.Unlock()

	raw, _ := u.Get("equipment")
	items, _ := raw.([]any)
	counts := map[string]int{}
	var order []string
	for _, it := range items {
		var name string
		n := 1
		switch t := it.(type) {
		case string:
			name = t
		case map[string]any:
			name, _ = t["name"].(string)
			if q, ok := t["count"].(float64); ok && q > 0 {
				n = int(q)
			}
		}
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, seen := counts[key]; !seen {
			order = append(order, name)
		}
		counts[key] += n
	}
	comps := make([]Component, 0, len(order))
	for _, name := range order {
		comps = append(comps, Component{Name: name, Count: counts[strings.ToLower(name)]})
	}

	r.mu.Lock()
	r.comps[u.ID()] = comps
	r.mu.Unlock()
	return comps
}

// Count sums the counts of components whose name satisfies match.
func (r *Resolver) Count(u Unit, match func(string) bool) int {
	total := 0
	for _, c := range r.Components(u) {
		if match(c.Name) {
			total += c.Count
		}
	}
	return total
}
