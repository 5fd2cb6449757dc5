package query

import (
	"reflect"
	"testing"

	"github.com/mekbench/mekbench/internal/domain/schema"
)

func testRegistry() *schema.Registry {
	return schema.MustRegistry([]schema.FieldConfig{
		{Key: "pv", CanonicalKey: "as.pv", Kind: schema.Range},
		{Key: "bv", CanonicalKey: "bt.bv", Kind: schema.Range, Game: "bt"},
		{Key: "type", CanonicalKey: "type", Kind: schema.SimpleDropdown},
		{Key: "field", CanonicalKey: "field", Kind: schema.SimpleDropdown},
		{Key: "faction", CanonicalKey: "factions", Kind: schema.MultiStateDropdown},
		{Key: "equipment", CanonicalKey: "components", Kind: schema.MultiStateDropdown, Countable: true},
		{Key: "dmgs", CanonicalKey: "as.dmg.s", Kind: schema.Range},
		{Key: "dmgm", CanonicalKey: "as.dmg.m", Kind: schema.Range},
	}).WithAlias("dmg", "dmgs", "dmgm")
}

func parseAS(t *testing.T, q string) *Result {
	t.Helper()
	return Parse(q, testRegistry(), "as")
}

func TestParse_SingleFilter(t *testing.T) {
	res := parseAS(t, "pv=3")
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Tokens) != 1 {
		t.Fatalf("tokens = %d, want 1", len(res.Tokens))
	}
	tok := res.Tokens[0]
	if tok.Field != "pv" || tok.Op != OpEq || !reflect.DeepEqual(tok.Values, []string{"3"}) {
		t.Errorf("token = %+v", tok)
	}
	if tok.RawText != "pv=3" {
		t.Errorf("raw = %q", tok.RawText)
	}
}

func TestParse_AndBindsTighterThanOr(t *testing.T) {
	// "a=1 b=2 OR c=3" must parse as OR(AND(a,b), c).
	res := parseAS(t, "pv=1 type=Mek OR faction=Liao")
	root := res.AST
	if root.Op != GroupOr || len(root.Children) != 2 {
		t.Fatalf("root = %v op=%s children=%d, want OR with 2", root.Kind, root.Op, len(root.Children))
	}
	left := root.Children[0]
	if left.Kind != NodeGroup || left.Op != GroupAnd || len(left.Children) != 2 {
		t.Fatalf("left = %+v, want AND group of 2", left)
	}
	if root.Children[1].Kind != NodeFilter || root.Children[1].Filter.Field != "faction" {
		t.Errorf("right = %+v, want faction filter", root.Children[1])
	}
}

func TestParse_Grouping(t *testing.T) {
	// "(a=1 OR b=2) c=3" must parse as AND(OR(a,b), c).
	res := parseAS(t, "(pv=1 OR type=Mek) faction=Liao")
	root := res.AST
	if root.Op != GroupAnd || len(root.Children) != 2 {
		t.Fatalf("root op=%s children=%d, want AND with 2", root.Op, len(root.Children))
	}
	inner := root.Children[0]
	if inner.Kind != NodeGroup || inner.Op != GroupOr || len(inner.Children) != 2 {
		t.Fatalf("inner = %+v, want OR group of 2", inner)
	}
}

func TestParse_ImplicitAnd(t *testing.T) {
	res := parseAS(t, "pv=1 type=Mek")
	if res.AST.Op != GroupAnd || len(res.AST.Children) != 2 {
		t.Errorf("root = %s/%d, want AND/2", res.AST.Op, len(res.AST.Children))
	}
}

func TestParse_EmptyQuery(t *testing.T) {
	res := parseAS(t, "")
	if res.AST == nil || res.AST.Kind != NodeGroup || len(res.AST.Children) != 0 {
		t.Fatalf("empty query root = %+v, want empty group", res.AST)
	}
	if res.TextSearch != "" || len(res.Tokens) != 0 || len(res.Errors) != 0 {
		t.Errorf("empty query result = %+v", res)
	}
}

func TestParse_QuotedValue(t *testing.T) {
	res := parseAS(t, `field="Draconis Combine"`)
	if len(res.Tokens) != 1 {
		t.Fatalf("tokens = %d, want 1", len(res.Tokens))
	}
	if !reflect.DeepEqual(res.Tokens[0].Values, []string{"Draconis Combine"}) {
		t.Errorf("values = %v, want one quoted value", res.Tokens[0].Values)
	}
}

func TestParse_TextSearch(t *testing.T) {
	res := parseAS(t, "atlas pv=3 warhammer")
	if res.TextSearch != "atlas warhammer" {
		t.Errorf("textSearch = %q, want %q", res.TextSearch, "atlas warhammer")
	}
	if len(res.Tokens) != 1 {
		t.Errorf("tokens = %d, want 1", len(res.Tokens))
	}
}

func TestParse_KeywordInsideIdentifier(t *testing.T) {
	// "android" must not lex OR out of its middle; "orca" must not start with OR.
	res := parseAS(t, "android orca")
	if res.TextSearch != "android orca" {
		t.Errorf("textSearch = %q, want %q", res.TextSearch, "android orca")
	}
	if HasOrOperators(res.AST) {
		t.Error("no OR operator expected")
	}
}

func TestParse_FilterInsideTextRun(t *testing.T) {
	// The text scan re-probes at word boundaries so "foo,pv=3" splits.
	res := parseAS(t, "foo,pv=3")
	if res.TextSearch != "foo," {
		t.Errorf("textSearch = %q, want %q", res.TextSearch, "foo,")
	}
	if len(res.Tokens) != 1 || res.Tokens[0].Field != "pv" {
		t.Errorf("tokens = %+v, want pv filter", res.Tokens)
	}
}

func TestParse_UnknownFieldIsText(t *testing.T) {
	res := parseAS(t, "zzz=3")
	if len(res.Tokens) != 0 {
		t.Fatalf("tokens = %+v, want none", res.Tokens)
	}
	if res.TextSearch != "zzz=3" {
		t.Errorf("textSearch = %q", res.TextSearch)
	}
}

func TestParse_GameScopedField(t *testing.T) {
	// bv is a bt-only field: under as it lexes as text.
	if res := Parse("bv=100", testRegistry(), "as"); len(res.Tokens) != 0 {
		t.Errorf("as tokens = %+v, want none", res.Tokens)
	}
	if res := Parse("bv=100", testRegistry(), "bt"); len(res.Tokens) != 1 {
		t.Errorf("bt tokens = %+v, want one", res.Tokens)
	}
}

func TestParse_OperatorLegality(t *testing.T) {
	// &= on a range field is rejected: the attempt degrades to text.
	res := parseAS(t, "pv&=3")
	if len(res.Tokens) != 0 {
		t.Errorf("tokens = %+v, want none", res.Tokens)
	}
	// comparison on a dropdown field is rejected too.
	res = parseAS(t, "type>=Mek")
	if len(res.Tokens) != 0 {
		t.Errorf("tokens = %+v, want none", res.Tokens)
	}
	// &= on a multistate dropdown is fine.
	res = parseAS(t, "equipment&=ac/2,ac/5")
	if len(res.Tokens) != 1 || res.Tokens[0].Op != OpAndEq {
		t.Errorf("tokens = %+v, want one &= token", res.Tokens)
	}
}

func TestParse_EmptyValueFilterDropped(t *testing.T) {
	// An operator with no parseable value is not a filter.
	res := parseAS(t, `pv= type=Mek`)
	if len(res.Tokens) != 1 || res.Tokens[0].Field != "type" {
		t.Errorf("tokens = %+v, want only type", res.Tokens)
	}
}

func TestParse_UnmatchedClosingParen(t *testing.T) {
	res := parseAS(t, "pv=3) type=Mek")
	if len(res.Errors) != 1 || res.Errors[0].Message != "Unexpected closing parenthesis" {
		t.Fatalf("errors = %+v", res.Errors)
	}
	if res.Errors[0].Start != 4 {
		t.Errorf("error start = %d, want 4", res.Errors[0].Start)
	}
	if len(res.Tokens) != 2 {
		t.Errorf("tokens = %d, want 2", len(res.Tokens))
	}
}

func TestParse_MissingClosingParenRecovery(t *testing.T) {
	res := parseAS(t, "(type=Mek pv>1000")
	if len(res.Errors) != 1 || res.Errors[0].Message != "Missing closing parenthesis" {
		t.Fatalf("errors = %+v", res.Errors)
	}
	if res.Errors[0].Start != 0 {
		t.Errorf("error start = %d, want 0", res.Errors[0].Start)
	}
	// The AST is still usable: equivalent to AND(type=Mek, pv>1000).
	if len(res.Tokens) != 2 {
		t.Fatalf("tokens = %d, want 2", len(res.Tokens))
	}
	if res.Tokens[0].Field != "type" || res.Tokens[1].Field != "pv" {
		t.Errorf("tokens = %+v", res.Tokens)
	}
}

func TestParse_StrayOperatorsSkipped(t *testing.T) {
	res := parseAS(t, "OR pv=3 OR")
	if len(res.Errors) != 0 {
		t.Fatalf("errors = %+v, want none", res.Errors)
	}
	if len(res.Tokens) != 1 {
		t.Errorf("tokens = %d, want 1", len(res.Tokens))
	}
	if HasOrOperators(res.AST) {
		t.Error("stray OR must not create an OR group")
	}
}

func TestParse_AliasField(t *testing.T) {
	res := parseAS(t, "dmg=3")
	if len(res.Tokens) != 1 || res.Tokens[0].Field != "dmg" {
		t.Fatalf("tokens = %+v, want dmg filter", res.Tokens)
	}
}

func TestParse_Positions(t *testing.T) {
	input := "atlas pv=3"
	res := parseAS(t, input)
	var text, filter *Node
	for _, c := range res.AST.Children {
		switch c.Kind {
		case NodeText:
			text = c
		case NodeFilter:
			filter = c
		}
	}
	if text == nil || input[text.Start:text.End] != "atlas" {
		t.Errorf("text node = %+v", text)
	}
	if filter == nil || input[filter.Start:filter.End] != "pv=3" {
		t.Errorf("filter node = %+v", filter)
	}
}

func TestIsComplex(t *testing.T) {
	tests := []struct {
		q    string
		want bool
	}{
		{"pv=3 type=Mek", false},
		{"pv=3 OR type=Mek", true},
		{"(pv=3 type=Mek)", false},
		{"((pv=1 (type=Mek)))", true}, // deep nesting
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			res := parseAS(t, tt.q)
			if got := IsComplex(res.AST); got != tt.want {
				t.Errorf("IsComplex(%q) = %v, want %v", tt.q, got, tt.want)
			}
		})
	}
}
