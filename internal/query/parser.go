package query

import "github.com/mekbench/mekbench/internal/domain/schema"

// ParseError is a non-fatal, positional parse diagnostic. A search box must
// never become unusable because of a typo: malformed syntax degrades to
// text or is dropped, and the error list exists only for UI highlighting.
type ParseError struct {
	Message string
	Start   int
	End     int
}

// Result is the full output of a parse pass.
type Result struct {
	// AST is the parse tree; the root is always a group.
	AST *Node
	// TextSearch is every text leaf joined with single spaces, trimmed.
	TextSearch string
	// Tokens is the pre-order flattened filter-token list.
	Tokens []*Token
	// Errors holds positional diagnostics; parsing itself never fails.
	Errors []ParseError
}

// Parse lexes and parses query text against the field registry for the
// active game. AND binds tighter than OR; adjacent expressions with no
// explicit operator are implicitly AND'd.
func Parse(input string, reg *schema.Registry, game string) *Result {
	p := &parser{toks: tokenize(input, reg, game)}
	root := p.parseGroup(0, len(input), true)
	return &Result{
		AST:        root,
		TextSearch: root.TextSearch(),
		Tokens:     root.Tokens(),
		Errors:     p.errors,
	}
}

type parser struct {
	toks   []lexToken
	pos    int
	errors []ParseError
}

func (p *parser) peek() lexToken { return p.toks[p.pos] }

// parseGroup collects sibling expressions until `)` or EOF, then partitions
// them into OR-separated AND-runs. orBreaks records, by child index, where
// an OR token fell between two collected siblings; stray OR/AND tokens that
// do not sit between two expressions contribute nothing and are skipped
// without error.
func (p *parser) parseGroup(start, inputEnd int, topLevel bool) *Node {
	var (
		children []*Node
		orBreaks = map[int]bool{}
		pendingOr bool
		end       = inputEnd
	)
	add := func(n *Node) {
		if pendingOr && len(children) > 0 {
			orBreaks[len(children)] = true
		}
		pendingOr = false
		children = append(children, n)
	}

loop:
	for {
		tok := p.peek()
		switch tok.kind {
		case lexEOF:
			if !topLevel {
				p.errors = append(p.errors, ParseError{
					Message: "Missing closing parenthesis",
					Start:   start,
					End:     start + 1,
				})
			}
			break loop
		case lexRParen:
			if topLevel {
				p.errors = append(p.errors, ParseError{
					Message: "Unexpected closing parenthesis",
					Start:   tok.start,
					End:     tok.end,
				})
				p.pos++
				continue
			}
			end = tok.end
			p.pos++
			break loop
		case lexLParen:
			p.pos++
			add(p.parseGroup(tok.start, inputEnd, false))
		case lexOr:
			pendingOr = true
			p.pos++
		case lexAnd:
			p.pos++
		case lexFilter:
			add(&Node{Kind: NodeFilter, Start: tok.start, End: tok.end, Filter: tok.filter})
			p.pos++
		case lexText:
			add(&Node{Kind: NodeText, Start: tok.start, End: tok.end, Text: tok.text})
			p.pos++
		}
	}

	return buildGroup(children, orBreaks, start, end)
}

// buildGroup applies AND-tighter-than-OR precedence: the sibling list is
// split into maximal AND-runs at the OR breakpoints. One run yields a plain
// AND group; several runs wrap each multi-node run in an AND group under an
// OR group.
func buildGroup(children []*Node, orBreaks map[int]bool, start, end int) *Node {
	group := func(op GroupOp, kids []*Node) *Node {
		s, e := start, end
		if len(kids) > 0 {
			s, e = kids[0].Start, kids[len(kids)-1].End
		}
		return &Node{Kind: NodeGroup, Op: op, Children: kids, Start: s, End: e}
	}

	var runs [][]*Node
	runStart := 0
	for i := 1; i < len(children); i++ {
		if orBreaks[i] {
			runs = append(runs, children[runStart:i])
			runStart = i
		}
	}
	runs = append(runs, children[runStart:])

	if len(runs) == 1 {
		return &Node{Kind: NodeGroup, Op: GroupAnd, Children: children, Start: start, End: end}
	}

	orKids := make([]*Node, 0, len(runs))
	for _, run := range runs {
		if len(run) == 1 {
			orKids = append(orKids, run[0])
			continue
		}
		orKids = append(orKids, group(GroupAnd, run))
	}
	return &Node{Kind: NodeGroup, Op: GroupOr, Children: orKids, Start: start, End: end}
}
