package filter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenWord
	TokenAnd
	TokenOr
	TokenNot
	TokenLParen
	TokenRParen
)

func (t TokenType) String() string {
	switch t {
	case TokenWord:
		return "WORD"
	case TokenAnd:
		return "AND"
	case TokenOr:
		return "OR"
	case TokenNot:
		return "NOT"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	default:
		return "EOF"
	}
}

// Token represents a lexical token. Pos and End are byte offsets into the
// lexer input so the parser can recover the original spacing of a clause.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
	End   int
}

// Lexer splits a filter expression into words, keywords and parentheses.
// Keywords are matched case-insensitively and only as whole words.
// Tokenize never fails: every byte of input ends up in some token.
type Lexer struct {
	input  string
	pos    int
	tokens []Token
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize converts the input string into a slice of tokens ending with TokenEOF.
func (l *Lexer) Tokenize() []Token {
	l.tokens = nil
	l.pos = 0

	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if unicode.IsSpace(r) {
			l.pos += size
			continue
		}

		switch r {
		case '(':
			l.emit(TokenLParen, l.pos, l.pos+1)
			l.pos++
			continue
		case ')':
			l.emit(TokenRParen, l.pos, l.pos+1)
			l.pos++
			continue
		}

		start := l.pos
		l.readWord()
		l.emit(keywordType(l.input[start:l.pos]), start, l.pos)
	}

	l.tokens = append(l.tokens, Token{Type: TokenEOF, Pos: l.pos, End: l.pos})
	return l.tokens
}

func (l *Lexer) emit(t TokenType, start, end int) {
	l.tokens = append(l.tokens, Token{Type: t, Value: l.input[start:end], Pos: start, End: end})
}

// readWord advances past a run of runes up to whitespace or a parenthesis.
func (l *Lexer) readWord() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if unicode.IsSpace(r) || r == '(' || r == ')' {
			return
		}
		l.pos += size
	}
}

func keywordType(word string) TokenType {
	switch strings.ToUpper(word) {
	case "AND":
		return TokenAnd
	case "OR":
		return TokenOr
	case "NOT":
		return TokenNot
	}
	return TokenWord
}
