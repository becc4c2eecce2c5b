package codec

import (
	"fmt"
	"math"
	"strconv"
)

// Kind classifies a parsed value.
type Kind int

const (
	KindWord   Kind = iota // bare token: number, yes/no, identifier
	KindString             // quoted text
	KindBlock              // { ... }
	KindTyped              // name { ... }, e.g. rgb { 255 0 0 }
)

// Value is one right-hand side or list item.
type Value struct {
	Kind  Kind
	Text  string // word, string contents, or the type name of a typed block
	Block *Block // set for KindBlock and KindTyped
	Pos   Pos
}

// Entry is one key = value pair. Keys may repeat.
type Entry struct {
	Key   string
	Value Value
}

// Block holds key = value entries and bare list items in source order.
type Block struct {
	Entries []Entry
	Items   []Value
}

// Get returns the first value stored under key.
func (b *Block) Get(key string) (Value, bool) {
	for _, e := range b.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// All returns every value stored under key, in order.
func (b *Block) All(key string) []Value {
	var out []Value
	for _, e := range b.Entries {
		if e.Key == key {
			out = append(out, e.Value)
		}
	}
	return out
}

// Has reports whether key appears at least once.
func (b *Block) Has(key string) bool {
	_, ok := b.Get(key)
	return ok
}

// Numbers converts every list item to a float.
func (b *Block) Numbers() ([]float64, error) {
	out := make([]float64, len(b.Items))
	for i, it := range b.Items {
		f, err := it.Float()
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// Float parses a word or string as a finite number.
func (v Value) Float() (float64, error) {
	if v.Kind != KindWord && v.Kind != KindString {
		return 0, &SyntaxError{Pos: v.Pos, Msg: "expected a number"}
	}
	f, err := strconv.ParseFloat(v.Text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &SyntaxError{Pos: v.Pos, Msg: fmt.Sprintf("expected a number, got %q", v.Text)}
	}
	return f, nil
}

// Bool reads yes/no.
func (v Value) Bool() (bool, error) {
	switch v.Text {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	return false, &SyntaxError{Pos: v.Pos, Msg: fmt.Sprintf("expected yes or no, got %q", v.Text)}
}

// parseTree reads the whole input as the contents of an implicit root
// block.
func parseTree(text string) (*Block, error) {
	p := &parser{lex: newLexer(text)}
	if err := p.shift(); err != nil {
		return nil, err
	}
	root, err := p.block(tokEOF)
	if err != nil {
		return nil, err
	}
	return root, nil
}

type parser struct {
	lex *lexer
	tok token
	// One token of lookahead beyond tok.
	peeked *token
}

func (p *parser) shift() error {
	if p.peeked != nil {
		p.tok, p.peeked = *p.peeked, nil
		return nil
	}
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) peek() (token, error) {
	if p.peeked == nil {
		t, err := p.lex.next()
		if err != nil {
			return token{}, err
		}
		p.peeked = &t
	}
	return *p.peeked, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Pos: p.tok.pos, Msg: fmt.Sprintf(format, args...)}
}

// block reads entries and items until the closing token, which is
// consumed.
func (p *parser) block(end tokenKind) (*Block, error) {
	b := &Block{}
	for p.tok.kind != end {
		switch p.tok.kind {
		case tokEOF:
			return nil, p.errorf("unexpected end of input, missing '}'")
		case tokRBrace, tokEquals:
			return nil, p.errorf("unexpected %s", p.tok.kind)
		}

		if p.tok.kind == tokWord {
			next, err := p.peek()
			if err != nil {
				return nil, err
			}
			if next.kind == tokEquals {
				key := p.tok.text
				if err := p.shift(); err != nil { // key
					return nil, err
				}
				if err := p.shift(); err != nil { // =
					return nil, err
				}
				v, err := p.value()
				if err != nil {
					return nil, fmt.Errorf("%s: %w", key, err)
				}
				b.Entries = append(b.Entries, Entry{Key: key, Value: v})
				continue
			}
		}

		v, err := p.value()
		if err != nil {
			return nil, err
		}
		b.Items = append(b.Items, v)
	}
	if end != tokEOF {
		return b, p.shift()
	}
	return b, nil
}

func (p *parser) value() (Value, error) {
	t := p.tok
	switch t.kind {
	case tokString:
		return Value{Kind: KindString, Text: t.text, Pos: t.pos}, p.shift()
	case tokLBrace:
		if err := p.shift(); err != nil {
			return Value{}, err
		}
		b, err := p.block(tokRBrace)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindBlock, Block: b, Pos: t.pos}, nil
	case tokWord:
		next, err := p.peek()
		if err != nil {
			return Value{}, err
		}
		if next.kind != tokLBrace {
			return Value{Kind: KindWord, Text: t.text, Pos: t.pos}, p.shift()
		}
		if err := p.shift(); err != nil { // type name
			return Value{}, err
		}
		if err := p.shift(); err != nil { // {
			return Value{}, err
		}
		b, err := p.block(tokRBrace)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindTyped, Text: t.text, Block: b, Pos: t.pos}, nil
	}
	return Value{}, p.errorf("expected a value, got %s", t.kind)
}
