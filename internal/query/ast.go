package query

import "strings"

// NodeKind tags the AST node union.
type NodeKind int

// AST node kinds.
const (
	NodeText NodeKind = iota
	NodeFilter
	NodeGroup
)

// GroupOp is the boolean operator of a group node.
type GroupOp string

// Group operators.
const (
	GroupAnd GroupOp = "AND"
	GroupOr  GroupOp = "OR"
)

// Node is a tagged-union AST node: a raw text fragment, a filter clause, or
// an AND/OR group. Start/End are byte offsets into the original input,
// preserved for UI error highlighting and never mutated after creation.
type Node struct {
	Kind  NodeKind
	Start int
	End   int

	// Text is set for NodeText.
	Text string
	// Filter is set for NodeFilter.
	Filter *Token
	// Op and Children are set for NodeGroup. The parse root is always a
	// group; an empty query yields a group with zero children.
	Op       GroupOp
	Children []*Node
}

// Tokens flattens the tree into its filter-leaf tokens in pre-order, for
// consumers that do not care about boolean structure.
func (n *Node) Tokens() []*Token {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case NodeFilter:
		return []*Token{n.Filter}
	case NodeGroup:
		var out []*Token
		for _, c := range n.Children {
			out = append(out, c.Tokens()...)
		}
		return out
	}
	return nil
}

// textFragments collects text-leaf values in pre-order.
func (n *Node) textFragments() []string {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case NodeText:
		return []string{n.Text}
	case NodeGroup:
		var out []string
		for _, c := range n.Children {
			out = append(out, c.textFragments()...)
		}
		return out
	}
	return nil
}

// TextSearch concatenates all text leaves with single spaces, trimmed.
func (n *Node) TextSearch() string {
	return strings.TrimSpace(strings.Join(n.textFragments(), " "))
}

// HasOrOperators reports whether any group anywhere in the tree uses OR.
func HasOrOperators(n *Node) bool {
	if n == nil || n.Kind != NodeGroup {
		return false
	}
	if n.Op == GroupOr {
		return true
	}
	for _, c := range n.Children {
		if HasOrOperators(c) {
			return true
		}
	}
	return false
}

// HasNestedGroups reports whether any group directly contains a child group
// that itself contains a child group.
func HasNestedGroups(n *Node) bool {
	if n == nil || n.Kind != NodeGroup {
		return false
	}
	for _, c := range n.Children {
		if c.Kind != NodeGroup {
			continue
		}
		for _, gc := range c.Children {
			if gc.Kind == NodeGroup {
				return true
			}
		}
		if HasNestedGroups(c) {
			return true
		}
	}
	return false
}

// IsComplex reports whether the query cannot be round-tripped through flat
// UI filter controls: any OR anywhere, or deep group nesting. Complex
// queries stay display-only in semantic text.
func IsComplex(n *Node) bool {
	return HasOrOperators(n) || HasNestedGroups(n)
}
