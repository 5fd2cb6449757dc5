package filterstate

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/mekbench/mekbench/internal/domain/schema"
	"github.com/mekbench/mekbench/internal/query"
)

// EncodeCompact serializes filter state into the compact URL form consumed
// by bookmarking hosts: `key:value|key2:v1,v2`. Multi-values are
// comma-separated, `~N` appends a quantity, and a `.` or `!` suffix marks
// AND or NOT state. Values are percent-encoded.
func EncodeCompact(state State, reg *schema.Registry, game string) string {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		fs := state[key]
		cfg, ok := reg.Lookup(key, game)
		if !ok || !fs.Interacted {
			continue
		}
		if v := encodeField(fs, cfg); v != "" {
			parts = append(parts, key+":"+v)
		}
	}
	return strings.Join(parts, "|")
}

func encodeField(fs *FieldState, cfg schema.FieldConfig) string {
	switch cfg.Kind {
	case schema.Range:
		spans := fs.Include
		if len(spans) == 0 {
			spans = []schema.Span{fs.Range}
		}
		vs := make([]string, len(spans))
		for i, s := range spans {
			vs[i] = spanText(s)
		}
		return strings.Join(vs, ",")
	case schema.MultiStateDropdown:
		names := make([]string, 0, len(fs.Multi))
		for name := range fs.Multi {
			names = append(names, name)
		}
		sort.Strings(names)
		vs := make([]string, 0, len(names))
		for _, name := range names {
			vs = append(vs, encodeEntry(fs.Multi[name]))
		}
		return strings.Join(vs, ",")
	default:
		vs := make([]string, len(fs.Selected))
		for i, v := range fs.Selected {
			vs[i] = url.QueryEscape(v)
		}
		return strings.Join(vs, ",")
	}
}

func encodeEntry(e *MultiStateEntry) string {
	v := url.QueryEscape(e.Name)
	if e.Count > 1 || query.Operator(e.CountOp) != query.OpGte && e.CountOp != "" {
		v += "~" + strconv.Itoa(e.Count)
	}
	switch e.State {
	case StateAnd:
		v += "."
	case StateNot:
		v += "!"
	}
	return v
}
