package spec

import (
	"io"

	verr "github.com/nihei9/tenkan/error"
)

type RootNode struct {
	Productions []*ProductionNode
}

type ProductionNode struct {
	LHS string
	RHS []*AlternativeNode
	Pos Position
}

// AlternativeNode is a sequence of symbols. An alternative without elements denotes an epsilon.
type AlternativeNode struct {
	Elements []*ElementNode
	Pos      Position
}

// ElementNode is an identifier or a fixed spelling of a terminal such as `(`.
type ElementNode struct {
	ID  string
	Pos Position
}

func raiseSyntaxError(pos Position, synErr *SyntaxError) {
	panic(&verr.SpecError{
		Cause: synErr,
		Row:   pos.Row,
		Col:   pos.Col,
	})
}

// Parse reads a grammar description. Syntax errors don't stop the parsing immediately; the parser skips
// to the next line and continues so that it can report as many errors as possible at once.
func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	return root, nil
}

type parser struct {
	lex        *lexer
	peekedToks []*token
	lastTok    *token
	eofTok     *token
	errs       verr.SpecErrors
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (root *RootNode, retErr error) {
	root = p.parseRoot()
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return root, nil
}

func (p *parser) parseRoot() *RootNode {
	defer func() {
		err := recover()
		if err == nil {
			return
		}
		specErr, ok := err.(*verr.SpecError)
		if !ok {
			panic(err)
		}
		p.errs = append(p.errs, specErr)
	}()

	p.consume(tokenKindNewline)
	var prods []*ProductionNode
	for {
		prod, end := p.parseProductionOrSkip()
		if prod != nil {
			prods = append(prods, prod)
		}
		if end {
			break
		}
	}
	if len(prods) == 0 && len(p.errs) == 0 {
		raiseSyntaxError(newPosition(1, 1), synErrNoProduction)
	}
	return &RootNode{
		Productions: prods,
	}
}

// parseProductionOrSkip parses a production. When a syntax error occurs, it records the error and skips
// tokens until the next newline. The second return value is true when the parser reached the end of input.
func (p *parser) parseProductionOrSkip() (prod *ProductionNode, end bool) {
	defer func() {
		err := recover()
		if err == nil {
			return
		}
		specErr, ok := err.(*verr.SpecError)
		if !ok {
			panic(err)
		}
		p.errs = append(p.errs, specErr)
		prod = nil
		end = p.skipOverNextNewline()
	}()

	if p.consume(tokenKindEOF) {
		return nil, true
	}
	prod = p.parseProduction()
	if p.consume(tokenKindEOF) {
		return prod, true
	}
	if !p.consume(tokenKindNewline) {
		raiseSyntaxError(p.peek().pos, synErrProdNoNewline)
	}
	return prod, false
}

func (p *parser) parseProduction() *ProductionNode {
	if !p.consume(tokenKindID) {
		raiseSyntaxError(p.peek().pos, synErrNoProductionName)
	}
	lhs := p.lastTok
	if !p.consume(tokenKindArrow) {
		raiseSyntaxError(p.peek().pos, synErrNoArrow)
	}
	rhs := []*AlternativeNode{p.parseAlternative()}
	for {
		if p.consume(tokenKindOr) {
			rhs = append(rhs, p.parseAlternative())
			continue
		}

		// A line beginning with `|` continues the production.
		if p.peek().kind == tokenKindNewline && p.peekAt(1).kind == tokenKindOr {
			p.next()
			continue
		}
		break
	}
	return &ProductionNode{
		LHS: lhs.text,
		RHS: rhs,
		Pos: lhs.pos,
	}
}

func (p *parser) parseAlternative() *AlternativeNode {
	pos := p.peek().pos
	elems := []*ElementNode{}
	var epsilon *token
	for {
		switch {
		case p.consume(tokenKindID), p.consume(tokenKindTerminal):
			elems = append(elems, &ElementNode{
				ID:  p.lastTok.text,
				Pos: p.lastTok.pos,
			})
			continue
		case p.consume(tokenKindEpsilon):
			if epsilon == nil {
				epsilon = p.lastTok
			}
			continue
		}
		break
	}
	if epsilon != nil && len(elems) > 0 {
		raiseSyntaxError(epsilon.pos, synErrEpsilonWithSymbols)
	}
	return &AlternativeNode{
		Elements: elems,
		Pos:      pos,
	}
}

// skipOverNextNewline discards tokens up to and including the next newline that isn't followed by `|`.
func (p *parser) skipOverNextNewline() (end bool) {
	defer func() {
		// Errors while skipping are dropped; the first error in the line was already recorded.
		if err := recover(); err != nil {
			end = true
		}
	}()
	for {
		tok := p.next()
		switch tok.kind {
		case tokenKindEOF:
			return true
		case tokenKindNewline:
			switch p.peek().kind {
			case tokenKindEOF:
				return true
			case tokenKindOr:
				continue
			}
			return false
		}
	}
}

func (p *parser) peek() *token {
	return p.peekAt(0)
}

func (p *parser) peekAt(n int) *token {
	for len(p.peekedToks) <= n {
		p.peekedToks = append(p.peekedToks, p.read())
	}
	return p.peekedToks[n]
}

func (p *parser) next() *token {
	tok := p.peek()
	p.peekedToks = p.peekedToks[1:]
	return tok
}

func (p *parser) read() *token {
	if p.eofTok != nil {
		return p.eofTok
	}
	tok, err := p.lex.next()
	if err != nil {
		if specErr, ok := err.(*verr.SpecError); ok {
			panic(specErr)
		}
		panic(&verr.SpecError{
			Cause: err,
		})
	}
	if tok.kind == tokenKindEOF {
		p.eofTok = tok
	}
	return tok
}

func (p *parser) consume(expected tokenKind) bool {
	tok := p.peek()
	if tok.kind == tokenKindInvalid {
		raiseSyntaxError(tok.pos, synErrInvalidToken)
	}
	if tok.kind == expected {
		p.lastTok = p.next()
		return true
	}
	return false
}
