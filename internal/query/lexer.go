package query

import (
	"strings"

	"github.com/mekbench/mekbench/internal/domain/schema"
)

// lexer walks the input left to right, longest-match-first at each
// position. It is parameterized over the field registry so that only known
// field names lex as filter clauses; everything else degrades to text.
type lexer struct {
	input string
	pos   int
	reg   *schema.Registry
	game  string
}

// tokenize converts raw query text into a token stream terminated by an EOF
// token positioned at len(input). It never fails.
func tokenize(input string, reg *schema.Registry, game string) []lexToken {
	lx := &lexer{input: input, reg: reg, game: game}
	var out []lexToken
	for lx.pos < len(lx.input) {
		lx.skipSpace()
		if lx.pos >= len(lx.input) {
			break
		}
		start := lx.pos
		switch ch := lx.input[lx.pos]; {
		case ch == '(':
			lx.pos++
			out = append(out, lexToken{kind: lexLParen, start: start, end: lx.pos, text: "("})
		case ch == ')':
			lx.pos++
			out = append(out, lexToken{kind: lexRParen, start: start, end: lx.pos, text: ")"})
		case lx.keywordAt(start, "or"):
			lx.pos += 2
			out = append(out, lexToken{kind: lexOr, start: start, end: lx.pos, text: lx.input[start:lx.pos]})
		case lx.keywordAt(start, "and"):
			lx.pos += 3
			out = append(out, lexToken{kind: lexAnd, start: start, end: lx.pos, text: lx.input[start:lx.pos]})
		default:
			if tok, end, ok := lx.tryFilter(start); ok {
				lx.pos = end
				out = append(out, lexToken{kind: lexFilter, start: start, end: end, text: lx.input[start:end], filter: tok})
				continue
			}
			if end := lx.scanText(start); end > start {
				lx.pos = end
				out = append(out, lexToken{kind: lexText, start: start, end: end, text: lx.input[start:end]})
				continue
			}
			// Lenient recovery: a single stray character is skipped.
			lx.pos++
		}
	}
	return append(out, lexToken{kind: lexEOF, start: len(input), end: len(input)})
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.input) && isSpace(lx.input[lx.pos]) {
		lx.pos++
	}
}

// keywordAt matches a case-insensitive AND/OR keyword at pos, only when
// followed by whitespace, a parenthesis, or end of input. This keeps "or"
// inside identifiers like "android" from lexing as an operator.
func (lx *lexer) keywordAt(pos int, kw string) bool {
	end := pos + len(kw)
	if end > len(lx.input) || !strings.EqualFold(lx.input[pos:end], kw) {
		return false
	}
	if end == len(lx.input) {
		return true
	}
	next := lx.input[end]
	return isSpace(next) || next == '(' || next == ')'
}

// tryFilter attempts to lex a filter clause at pos: a known field name, the
// longest matching operator, then a quote-aware value span. Returns ok=false
// when anything disqualifies the attempt; the caller falls through to text.
func (lx *lexer) tryFilter(pos int) (*Token, int, bool) {
	i := pos
	for i < len(lx.input) && isWord(lx.input[i]) {
		i++
	}
	if i == pos {
		return nil, 0, false
	}
	field := strings.ToLower(lx.input[pos:i])
	cfg, known := lx.reg.Lookup(field, lx.game)
	if !known {
		return nil, 0, false
	}

	var op Operator
	for _, cand := range operators {
		if strings.HasPrefix(lx.input[i:], string(cand)) {
			op = cand
			break
		}
	}
	if op == "" || !op.legalFor(cfg) {
		return nil, 0, false
	}
	i += len(op)

	end := scanValue(lx.input, i)
	values := ParseValues(lx.input[i:end])
	if len(values) == 0 {
		return nil, 0, false
	}
	tok := &Token{
		Field:   field,
		Op:      op,
		Values:  values,
		RawText: lx.input[pos:end],
	}
	return tok, end, true
}

// scanValue returns the end of a value span starting at pos: characters up
// to unescaped whitespace or a parenthesis. A `"` or `'` opens a quoted
// region in which whitespace and parens do not terminate the scan, and a
// backslash escapes the quote character or a backslash.
func scanValue(input string, pos int) int {
	var quote byte
	i := pos
	for i < len(input) {
		ch := input[i]
		if quote != 0 {
			if ch == '\\' && i+1 < len(input) && (input[i+1] == quote || input[i+1] == '\\') {
				i += 2
				continue
			}
			if ch == quote {
				quote = 0
			}
			i++
			continue
		}
		if isSpace(ch) || ch == '(' || ch == ')' {
			break
		}
		if ch == '"' || ch == '\'' {
			quote = ch
		}
		i++
	}
	return i
}

// scanText accumulates plain text from pos, stopping at whitespace, a
// parenthesis, or any word boundary where a filter clause would lex. The
// re-probe keeps "foo pv=3" from collapsing into one text blob.
func (lx *lexer) scanText(pos int) int {
	i := pos
	for i < len(lx.input) {
		ch := lx.input[i]
		if isSpace(ch) || ch == '(' || ch == ')' {
			break
		}
		if i > pos && isWord(ch) && !isWord(lx.input[i-1]) {
			if _, _, ok := lx.tryFilter(i); ok {
				break
			}
		}
		i++
	}
	return i
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isWord(ch byte) bool {
	return ch == '_' || ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}
