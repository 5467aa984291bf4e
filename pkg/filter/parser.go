package filter

import (
	"strings"

	"github.com/bascanada/proposalviewer/pkg/filter/operator"
)

type options struct {
	rangeField func(field string) bool
}

// Option customises how clauses are parsed.
type Option func(*options)

// WithRangeFields restricts range detection ("min-max" values) to the fields
// accepted by isRange. Values with a hyphen on other fields stay plain
// contains clauses.
func WithRangeFields(isRange func(field string) bool) Option {
	return func(o *options) {
		o.rangeField = isRange
	}
}

// WithLegacyRange reads any hyphenated value without a comparison prefix as a
// range, whatever its field.
func WithLegacyRange() Option {
	return func(o *options) {
		o.rangeField = nil
	}
}

// Parser builds a Filter AST from lexer tokens.
// Grammar:
//
//	query  = or_expr
//	or_expr  = and_expr ("OR" and_expr)*
//	and_expr = not_expr ("AND"? not_expr)*
//	not_expr = "NOT" not_expr | primary
//	primary  = "(" query ")"? | clause
//	clause   = word (word | "NOT")*
//
// The parser never fails. Dangling AND/OR are dropped, a NOT with nothing to
// negate is read as the word "not", a missing ")" is closed at the end of
// input and a stray ")" is skipped.
type Parser struct {
	input  string
	tokens []Token
	pos    int
	depth  int
	opts   options
}

// NewParser creates a new parser over the tokens of input.
func NewParser(input string, tokens []Token, opts ...Option) *Parser {
	p := &Parser{input: input, tokens: tokens}
	for _, opt := range opts {
		opt(&p.opts)
	}
	return p
}

// ParseQuery parses the complete token stream.
func (p *Parser) ParseQuery() *Filter {
	var filters []Filter

	for p.current().Type != TokenEOF {
		if p.current().Type == TokenRParen {
			p.advance()
			continue
		}
		if f := p.parseOrExpr(); f != nil {
			filters = append(filters, *f)
		}
	}

	switch len(filters) {
	case 0:
		return &Filter{}
	case 1:
		return &filters[0]
	}
	return &Filter{Logic: LogicAnd, Filters: filters}
}

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF, Pos: len(p.input), End: len(p.input)}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF, Pos: len(p.input), End: len(p.input)}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

// startsFactor reports whether t can begin a not_expr.
func startsFactor(t Token) bool {
	return t.Type == TokenWord || t.Type == TokenNot || t.Type == TokenLParen
}

// parseOrExpr parses: and_expr ("OR" and_expr)*
func (p *Parser) parseOrExpr() *Filter {
	var filters []Filter

	if left := p.parseAndExpr(); left != nil {
		filters = append(filters, *left)
	}

	for p.current().Type == TokenOr {
		p.advance() // consume OR

		if right := p.parseAndExpr(); right != nil {
			filters = append(filters, *right)
		}
	}

	switch len(filters) {
	case 0:
		return nil
	case 1:
		return &filters[0]
	}
	return &Filter{Logic: LogicOr, Filters: filters}
}

// parseAndExpr parses: not_expr ("AND"? not_expr)*
// Two factors side by side, like "(uk OR usa) hospital", are ANDed.
func (p *Parser) parseAndExpr() *Filter {
	var filters []Filter

	for {
		for p.current().Type == TokenAnd || p.strayParen() {
			p.advance() // consume AND, dropping it when nothing precedes it
		}
		if !startsFactor(p.current()) {
			break
		}
		filters = append(filters, *p.parseNotExpr())
	}

	switch len(filters) {
	case 0:
		return nil
	case 1:
		return &filters[0]
	}
	return &Filter{Logic: LogicAnd, Filters: filters}
}

// strayParen reports whether the current token is a ")" closing no group.
// It is skipped so the operator after it still applies, as in "a) or b".
func (p *Parser) strayParen() bool {
	return p.depth == 0 && p.current().Type == TokenRParen
}

// parseNotExpr parses: "NOT" not_expr | primary
func (p *Parser) parseNotExpr() *Filter {
	if p.current().Type == TokenNot {
		if !startsFactor(p.peek()) {
			return p.parseClause()
		}
		p.advance() // consume NOT

		inner := p.parseNotExpr()
		return &Filter{Logic: LogicNot, Filters: []Filter{*inner}}
	}

	return p.parsePrimary()
}

// parsePrimary parses: "(" query ")"? | clause
func (p *Parser) parsePrimary() *Filter {
	if p.current().Type == TokenLParen {
		p.advance() // consume (

		p.depth++
		inner := p.parseOrExpr()
		p.depth--

		if p.current().Type == TokenRParen {
			p.advance() // consume )
		}

		if inner == nil {
			return &Filter{}
		}
		return inner
	}

	return p.parseClause()
}

// parseClause joins consecutive words into one clause, keeping the original
// spacing between them, so "name:hospital tower" is a single clause.
func (p *Parser) parseClause() *Filter {
	first := p.current()
	last := first
	p.advance()

	for p.current().Type == TokenWord || p.current().Type == TokenNot {
		last = p.current()
		p.advance()
	}

	return p.newClause(p.input[first.Pos:last.End])
}

// newClause splits "field:value" on its first colon and detects the operator.
// Text without a colon after its first character is a bare term.
func (p *Parser) newClause(text string) *Filter {
	text = strings.TrimSpace(text)

	idx := strings.Index(text, ":")
	if idx <= 0 {
		return &Filter{Bare: true, Op: operator.Contains, Value: text}
	}

	field := strings.ToLower(strings.TrimSpace(text[:idx]))
	value := strings.TrimSpace(text[idx+1:])

	for _, prefix := range operator.Prefixes {
		if strings.HasPrefix(value, prefix.Symbol) {
			return &Filter{
				Field: field,
				Op:    prefix.Op,
				Value: strings.TrimSpace(value[len(prefix.Symbol):]),
			}
		}
	}

	op := operator.Contains
	if strings.Contains(value, "-") && (p.opts.rangeField == nil || p.opts.rangeField(field)) {
		op = operator.Range
	}

	return &Filter{Field: field, Op: op, Value: value}
}

// Parse turns filter text into a Filter. Empty text yields an empty filter
// that matches everything.
func Parse(text string, opts ...Option) *Filter {
	tokens := NewLexer(text).Tokenize()
	return NewParser(text, tokens, opts...).ParseQuery()
}
