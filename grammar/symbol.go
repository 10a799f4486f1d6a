package grammar

import (
	"strings"

	"github.com/nihei9/tenkan/token"
)

type symbolKind string

const (
	symbolKindNonTerminal = symbolKind("non-terminal")
	symbolKindTerminal    = symbolKind("terminal")
)

// Symbol is either a terminal, which is one of the predefined token kinds, or a non-terminal identified by its name.
// Symbols are comparable and can be used as map keys.
type Symbol struct {
	kind symbolKind
	term token.Kind
	name string
}

func NewTerminal(kind token.Kind) Symbol {
	return Symbol{
		kind: symbolKindTerminal,
		term: kind,
	}
}

func NewNonTerminal(name string) Symbol {
	return Symbol{
		kind: symbolKindNonTerminal,
		name: name,
	}
}

func (s Symbol) IsTerminal() bool {
	return s.kind == symbolKindTerminal
}

func (s Symbol) IsNonTerminal() bool {
	return s.kind == symbolKindNonTerminal
}

// Kind returns the token kind of a terminal symbol.
func (s Symbol) Kind() token.Kind {
	return s.term
}

// Name returns the name of a non-terminal symbol.
func (s Symbol) Name() string {
	return s.name
}

// String returns the spelling of the symbol in a grammar description. A terminal with a fixed spelling is
// written as it is, e.g. `(`, and others by their names, e.g. `ID`.
func (s Symbol) String() string {
	if s.IsNonTerminal() {
		return s.name
	}
	if r, ok := s.term.Repr(); ok {
		return r
	}
	return s.term.String()
}

// Alternative is a sequence of symbols. An empty alternative denotes an epsilon.
type Alternative []Symbol

// Alt is a shorthand for building an alternative from its spelling in a grammar description.
// A text naming a predefined token kind becomes a terminal; any other text becomes a non-terminal.
func Alt(texts ...string) Alternative {
	alt := make(Alternative, 0, len(texts))
	for _, text := range texts {
		alt = append(alt, symbolOf(text))
	}
	return alt
}

func symbolOf(text string) Symbol {
	if k, ok := token.Lookup(text); ok {
		return NewTerminal(k)
	}
	return NewNonTerminal(text)
}

func (a Alternative) IsEmpty() bool {
	return len(a) == 0
}

func (a Alternative) Equal(b Alternative) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (a Alternative) clone() Alternative {
	c := make(Alternative, len(a))
	copy(c, a)
	return c
}

func (a Alternative) String() string {
	if a.IsEmpty() {
		return "ε"
	}
	var b strings.Builder
	b.WriteString(a[0].String())
	for _, sym := range a[1:] {
		b.WriteString(" ")
		b.WriteString(sym.String())
	}
	return b.String()
}

type Production struct {
	LHS          string
	Alternatives []Alternative
}

func (p *Production) clone() *Production {
	alts := make([]Alternative, len(p.Alternatives))
	for i, alt := range p.Alternatives {
		alts[i] = alt.clone()
	}
	return &Production{
		LHS:          p.LHS,
		Alternatives: alts,
	}
}
