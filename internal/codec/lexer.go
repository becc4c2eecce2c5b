package codec

import (
	"fmt"
	"strings"
	"unicode"
)

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// SyntaxError reports malformed input at a position.
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d col %d: %s", e.Pos.Line, e.Pos.Col, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLBrace
	tokRBrace
	tokEquals
	tokString
	tokWord
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokEquals:
		return "'='"
	case tokString:
		return "string"
	default:
		return "word"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Pos
}

// lexer splits text into braces, equals signs, quoted strings and bare
// words. '#' starts a comment that runs to the end of the line.
type lexer struct {
	src  []rune
	i    int
	line int
	col  int
}

func newLexer(text string) *lexer {
	return &lexer{src: []rune(text), line: 1, col: 1}
}

func (l *lexer) advance() rune {
	r := l.src[l.i]
	l.i++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) skipSpace() {
	for l.i < len(l.src) {
		switch r := l.src[l.i]; {
		case unicode.IsSpace(r):
			l.advance()
		case r == '#':
			for l.i < len(l.src) && l.src[l.i] != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	pos := Pos{l.line, l.col}
	if l.i >= len(l.src) {
		return token{kind: tokEOF, pos: pos}, nil
	}
	switch r := l.src[l.i]; r {
	case '{':
		l.advance()
		return token{kind: tokLBrace, text: "{", pos: pos}, nil
	case '}':
		l.advance()
		return token{kind: tokRBrace, text: "}", pos: pos}, nil
	case '=':
		l.advance()
		return token{kind: tokEquals, text: "=", pos: pos}, nil
	case '"':
		l.advance()
		var b strings.Builder
		for l.i < len(l.src) {
			c := l.advance()
			if c == '"' {
				return token{kind: tokString, text: b.String(), pos: pos}, nil
			}
			b.WriteRune(c)
		}
		return token{}, &SyntaxError{Pos: pos, Msg: "unterminated string"}
	}

	start := l.i
	for l.i < len(l.src) && !isDelim(l.src[l.i]) {
		l.advance()
	}
	return token{kind: tokWord, text: string(l.src[start:l.i]), pos: pos}, nil
}

func isDelim(r rune) bool {
	return unicode.IsSpace(r) || r == '{' || r == '}' || r == '=' || r == '"' || r == '#'
}
