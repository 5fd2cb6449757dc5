package filterstate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mekbench/mekbench/internal/domain/schema"
)

// mergeSpans sorts and coalesces overlapping or integer-adjacent spans.
func mergeSpans(spans []schema.Span) []schema.Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := append([]schema.Span(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Min != sorted[j].Min {
			return sorted[i].Min < sorted[j].Min
		}
		return sorted[i].Max < sorted[j].Max
	})
	out := []schema.Span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &out[len(out)-1]
		if s.Min <= last.Max+1 {
			if s.Max > last.Max {
				last.Max = s.Max
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// subtractSpans removes the excluded segments from each include span,
// splitting around holes with integer step. Both inputs must be merged.
func subtractSpans(include, exclude []schema.Span) []schema.Span {
	if len(exclude) == 0 {
		return include
	}
	var out []schema.Span
	for _, in := range include {
		cur := in
		dead := false
		for _, ex := range exclude {
			if ex.Max < cur.Min || ex.Min > cur.Max {
				continue
			}
			if ex.Min <= cur.Min && ex.Max >= cur.Max {
				dead = true
				break
			}
			if ex.Min > cur.Min {
				out = append(out, schema.Span{Min: cur.Min, Max: ex.Min - 1})
			}
			if ex.Max < cur.Max {
				cur = schema.Span{Min: ex.Max + 1, Max: cur.Max}
			} else {
				dead = true
				break
			}
		}
		if !dead {
			out = append(out, cur)
		}
	}
	return out
}

// formatSpans renders segments as "0-3, 5-99"; single-point spans render as
// a bare number.
func formatSpans(spans []schema.Span) string {
	parts := make([]string, 0, len(spans))
	for _, s := range spans {
		if s.Point() {
			parts = append(parts, formatNum(s.Min))
			continue
		}
		parts = append(parts, formatNum(s.Min)+"-"+formatNum(s.Max))
	}
	return strings.Join(parts, ", ")
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// spanBounds returns the overall [min,max] across merged segments.
func spanBounds(spans []schema.Span) schema.Span {
	if len(spans) == 0 {
		return schema.Span{}
	}
	return schema.Span{Min: spans[0].Min, Max: spans[len(spans)-1].Max}
}
