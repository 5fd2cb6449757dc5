package filterstate

import (
	"reflect"
	"testing"

	"github.com/mekbench/mekbench/internal/domain/schema"
	"github.com/mekbench/mekbench/internal/query"
)

func testRegistry() *schema.Registry {
	return schema.MustRegistry([]schema.FieldConfig{
		{Key: "pv", CanonicalKey: "as.pv", Kind: schema.Range},
		{Key: "type", CanonicalKey: "type", Kind: schema.SimpleDropdown},
		{Key: "faction", CanonicalKey: "factions", Kind: schema.MultiStateDropdown},
		{Key: "equipment", CanonicalKey: "components", Kind: schema.MultiStateDropdown, Countable: true},
		{Key: "dmgs", CanonicalKey: "as.dmg.s", Kind: schema.Range},
		{Key: "dmgm", CanonicalKey: "as.dmg.m", Kind: schema.Range},
	}).WithAlias("dmg", "dmgs", "dmgm")
}

func testTotals() Totals {
	return Totals{
		"pv":   {Min: 0, Max: 99},
		"dmgs": {Min: 0, Max: 10},
		"dmgm": {Min: 0, Max: 10},
	}
}

func stateFor(t *testing.T, q string) State {
	t.Helper()
	res := query.Parse(q, testRegistry(), "as")
	if len(res.Errors) != 0 {
		t.Fatalf("parse %q: %v", q, res.Errors)
	}
	return FromTokens(res.Tokens, testRegistry(), "as", testTotals())
}

func TestFromTokens_RangeExclusion(t *testing.T) {
	fs := stateFor(t, "pv!=4")["pv"]
	if fs == nil {
		t.Fatal("no pv state")
	}
	if !fs.Interacted || !fs.SemanticOnly {
		t.Errorf("flags = %+v", fs)
	}
	if fs.Range != (schema.Span{Min: 0, Max: 99}) {
		t.Errorf("range = %+v", fs.Range)
	}
	if fs.DisplayText != "0-3, 5-99" {
		t.Errorf("displayText = %q, want %q", fs.DisplayText, "0-3, 5-99")
	}
	if !reflect.DeepEqual(fs.Exclude, []schema.Span{{Min: 4, Max: 4}}) {
		t.Errorf("exclude = %+v", fs.Exclude)
	}
}

func TestFromTokens_ComparisonWindow(t *testing.T) {
	fs := stateFor(t, "pv>=10 pv<=20")["pv"]
	if fs.Range != (schema.Span{Min: 10, Max: 20}) {
		t.Errorf("range = %+v, want 10-20", fs.Range)
	}
	if fs.SemanticOnly {
		t.Error("single contiguous span must not be semantic-only")
	}
}

func TestFromTokens_StrictComparisons(t *testing.T) {
	fs := stateFor(t, "pv>10 pv<20")["pv"]
	if fs.Range != (schema.Span{Min: 11, Max: 19}) {
		t.Errorf("range = %+v, want 11-19", fs.Range)
	}
}

func TestFromTokens_ComparisonClipsEquality(t *testing.T) {
	fs := stateFor(t, "pv=5-50 pv>=10")["pv"]
	if !reflect.DeepEqual(fs.Include, []schema.Span{{Min: 10, Max: 50}}) {
		t.Errorf("include = %+v, want clipped 10-50", fs.Include)
	}
}

func TestFromTokens_DisjointIncludes(t *testing.T) {
	fs := stateFor(t, "pv=1-3,7-9")["pv"]
	want := []schema.Span{{Min: 1, Max: 3}, {Min: 7, Max: 9}}
	if !reflect.DeepEqual(fs.Include, want) {
		t.Errorf("include = %+v, want %+v", fs.Include, want)
	}
	if !fs.SemanticOnly || fs.DisplayText != "1-3, 7-9" {
		t.Errorf("semanticOnly=%v displayText=%q", fs.SemanticOnly, fs.DisplayText)
	}
	if fs.Range != (schema.Span{Min: 1, Max: 9}) {
		t.Errorf("range = %+v, want 1-9", fs.Range)
	}
}

func TestFromTokens_AdjacentIncludesMerge(t *testing.T) {
	fs := stateFor(t, "pv=1-3,4-6")["pv"]
	if !reflect.DeepEqual(fs.Include, []schema.Span{{Min: 1, Max: 6}}) {
		t.Errorf("include = %+v, want merged 1-6", fs.Include)
	}
	if fs.SemanticOnly {
		t.Error("merged single span must not be semantic-only")
	}
}

func TestFromTokens_AliasFansOut(t *testing.T) {
	state := stateFor(t, "dmg>=3")
	for _, key := range []string{"dmgs", "dmgm"} {
		fs := state[key]
		if fs == nil || fs.Range.Min != 3 {
			t.Errorf("%s = %+v, want min 3", key, fs)
		}
	}
	if _, ok := state["dmg"]; ok {
		t.Error("virtual alias key must not own state")
	}
}

func TestFromTokens_MultiStates(t *testing.T) {
	fs := stateFor(t, "faction=Liao,Davion faction&=Marik faction!=Davion")["faction"]
	if got := fs.Multi["liao"].State; got != StateOr {
		t.Errorf("liao = %s, want or", got)
	}
	if got := fs.Multi["marik"].State; got != StateAnd {
		t.Errorf("marik = %s, want and", got)
	}
	// A later not overrides an earlier or.
	if got := fs.Multi["davion"].State; got != StateNot {
		t.Errorf("davion = %s, want not", got)
	}
}

func TestFromTokens_NotNeverDowngrades(t *testing.T) {
	fs := stateFor(t, "faction!=Liao faction=Liao")["faction"]
	if got := fs.Multi["liao"].State; got != StateNot {
		t.Errorf("liao = %s, want not to stick", got)
	}
}

func TestFromTokens_CountDefaults(t *testing.T) {
	fs := stateFor(t, "equipment=ac/2")["equipment"]
	e := fs.Multi["ac/2"]
	if e.Count != 1 || e.CountOp != ">=" || e.CountMax != 0 {
		t.Errorf("entry = %+v, want default at-least-1", e)
	}
}

func TestFromTokens_ExplicitCount(t *testing.T) {
	fs := stateFor(t, "equipment=ac/2:2")["equipment"]
	e := fs.Multi["ac/2"]
	if e.Count != 2 || e.CountOp != ">=" {
		t.Errorf("entry = %+v, want at-least-2", e)
	}
}

func TestFromTokens_CountRangeValue(t *testing.T) {
	fs := stateFor(t, "equipment=ac/2:2-4")["equipment"]
	e := fs.Multi["ac/2"]
	if e.Count != 2 || e.CountOp != "=" || e.CountMax != 4 {
		t.Errorf("entry = %+v, want 2-4", e)
	}
}

func TestFromTokens_DisjointCountsUnion(t *testing.T) {
	fs := stateFor(t, "equipment=ac/2:=2,ac/2:=5")["equipment"]
	e := fs.Multi["ac/2"]
	want := []schema.Span{{Min: 2, Max: 2}, {Min: 5, Max: 5}}
	if !reflect.DeepEqual(e.CountInclude, want) {
		t.Errorf("countInclude = %+v, want %+v", e.CountInclude, want)
	}
}

func TestFromTokens_AdjacentCountsCollapse(t *testing.T) {
	fs := stateFor(t, "equipment=ac/2:=2,ac/2:=3")["equipment"]
	e := fs.Multi["ac/2"]
	if len(e.CountInclude) != 0 {
		t.Fatalf("countInclude = %+v, want collapsed simple form", e.CountInclude)
	}
	if e.Count != 2 || e.CountOp != "=" || e.CountMax != 3 {
		t.Errorf("entry = %+v, want 2-3", e)
	}
}

func TestFromTokens_SimpleDropdown(t *testing.T) {
	fs := stateFor(t, "type=Mek,Vehicle,MEK")["type"]
	if !reflect.DeepEqual(fs.Selected, []string{"Mek", "Vehicle"}) {
		t.Errorf("selected = %v, want case-insensitive dedup", fs.Selected)
	}
}

func TestFromTokens_SimpleDropdownNeqDropped(t *testing.T) {
	// != has no simple-dropdown UI form and produces no state at all.
	if state := stateFor(t, "type!=Mek"); state["type"] != nil {
		t.Errorf("state = %+v, want none", state["type"])
	}
}

func TestFromTokens_BadNumericValueSkipped(t *testing.T) {
	fs := stateFor(t, "pv=abc,7")["pv"]
	if !reflect.DeepEqual(fs.Include, []schema.Span{{Min: 7, Max: 7}}) {
		t.Errorf("include = %+v, want only the numeric value", fs.Include)
	}
}

func TestStateClone(t *testing.T) {
	state := stateFor(t, "pv=1-3 equipment=ac/2:2")
	clone := state.Clone()
	clone["pv"].Include[0].Min = 50
	clone["equipment"].Multi["ac/2"].Count = 9
	if state["pv"].Include[0].Min != 1 {
		t.Error("clone shares include spans")
	}
	if state["equipment"].Multi["ac/2"].Count != 2 {
		t.Error("clone shares multistate entries")
	}
}

func TestSpanHelpers(t *testing.T) {
	merged := mergeSpans([]schema.Span{{Min: 5, Max: 9}, {Min: 0, Max: 3}, {Min: 4, Max: 4}})
	if !reflect.DeepEqual(merged, []schema.Span{{Min: 0, Max: 9}}) {
		t.Errorf("mergeSpans = %+v", merged)
	}
	sub := subtractSpans([]schema.Span{{Min: 0, Max: 99}}, []schema.Span{{Min: 4, Max: 4}})
	want := []schema.Span{{Min: 0, Max: 3}, {Min: 5, Max: 99}}
	if !reflect.DeepEqual(sub, want) {
		t.Errorf("subtractSpans = %+v, want %+v", sub, want)
	}
	if got := formatSpans(sub); got != "0-3, 5-99" {
		t.Errorf("formatSpans = %q", got)
	}
	if got := formatSpans([]schema.Span{{Min: 7, Max: 7}}); got != "7" {
		t.Errorf("point span = %q, want bare number", got)
	}
}
