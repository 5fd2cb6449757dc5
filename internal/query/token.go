// Package query implements the semantic filter mini-language: value
// parsing, the lexer, and the recursive-descent AST parser. The language is
// free text interleaved with field clauses (`pv=3-5`, `faction!=liao`),
// grouped by parentheses and combined with AND/OR, AND binding tighter.
//
// Parsing never fails: malformed syntax degrades to plain text or is
// dropped, with positional errors collected for optional UI highlighting.
package query

import "github.com/mekbench/mekbench/internal/domain/schema"

// Operator is a filter clause comparison operator.
type Operator string

// Operators, longest first where prefixes overlap.
const (
	OpNeq    Operator = "!="
	OpAndEq  Operator = "&="
	OpGte    Operator = ">="
	OpLte    Operator = "<="
	OpEq     Operator = "="
	OpGt     Operator = ">"
	OpLt     Operator = "<"
)

// operators in longest-match-first probe order.
var operators = []Operator{OpNeq, OpAndEq, OpGte, OpLte, OpEq, OpGt, OpLt}

// Comparison reports whether the operator is an ordering comparison.
func (o Operator) Comparison() bool {
	switch o {
	case OpGt, OpLt, OpGte, OpLte:
		return true
	}
	return false
}

// legalFor reports whether the operator may be applied to a field kind.
// Dropdown fields accept only = != &=; &= is dropdown-only.
func (o Operator) legalFor(cfg schema.FieldConfig) bool {
	if cfg.Dropdown() {
		return o == OpEq || o == OpNeq || o == OpAndEq
	}
	return o != OpAndEq
}

// Token is one parsed filter clause. Values is never empty: a clause with
// no parseable values is dropped during lexing instead of being retained.
type Token struct {
	// Field is the lowercased semantic key.
	Field string
	// Op is the clause operator.
	Op Operator
	// Values holds the unquoted, unescaped value list in source order.
	Values []string
	// RawText is the source substring, kept for byte-exact reassembly.
	RawText string
}

// lexKind classifies lexer output tokens.
type lexKind int

const (
	lexEOF lexKind = iota
	lexLParen
	lexRParen
	lexAnd
	lexOr
	lexFilter
	lexText
)

// lexToken is a positioned lexer token. Start/End are byte offsets into the
// original input and are never mutated after creation.
type lexToken struct {
	kind   lexKind
	start  int
	end    int
	text   string
	filter *Token
}
