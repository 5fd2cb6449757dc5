// Package unit models catalog unit records. A record is an opaque property
// bag reached through dotted-path lookup; a handful of virtual properties
// (merged tag set, aggregated component list) are derived on demand.
package unit

import "strings"

// Unit is one catalog record.
type Unit struct {
	id   string
	name string
	data map[string]any
}

// New creates a unit from its decoded JSON object. The "id" and "name"
// properties are lifted for cheap access; everything else stays in the bag.
func New(data map[string]any) Unit {
	u := Unit{data: data}
	if v, ok := data["id"].(string); ok {
		u.id = v
	}
	if v, ok := data["name"].(string); ok {
		u.name = v
	}
	return u
}

// ID returns the unit identity.
func (u Unit) ID() string { return u.id }

// Name returns the display name.
func (u Unit) Name() string { return u.name }

// Get resolves a dotted path into the record, e.g. "as.dmg.s".
func (u Unit) Get(path string) (any, bool) {
	var cur any = u.data
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Strings returns a property as a string list: a scalar string becomes a
// one-element list, a JSON array keeps its string elements.
func (u Unit) Strings(path string) []string {
	v, ok := u.Get(path)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
