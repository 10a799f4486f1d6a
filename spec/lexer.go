package spec

import (
	"fmt"
	"io"
	"strings"
	"sync"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
	verr "github.com/nihei9/tenkan/error"
	tktoken "github.com/nihei9/tenkan/token"
)

type tokenKind string

const (
	tokenKindID       = tokenKind("id")
	tokenKindTerminal = tokenKind("terminal")
	tokenKindArrow    = tokenKind("->")
	tokenKindOr       = tokenKind("|")
	tokenKindEpsilon  = tokenKind("epsilon")
	tokenKindNewline  = tokenKind("newline")
	tokenKindEOF      = tokenKind("eof")
	tokenKindInvalid  = tokenKind("invalid")
)

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func newSymbolToken(kind tokenKind, pos Position) *token {
	return &token{
		kind: kind,
		pos:  pos,
	}
}

func newTextToken(kind tokenKind, text string, pos Position) *token {
	return &token{
		kind: kind,
		text: text,
		pos:  pos,
	}
}

func newEOFToken(pos Position) *token {
	return &token{
		kind: tokenKindEOF,
		pos:  pos,
	}
}

var (
	lexSpecOnce sync.Once
	lexSpec     *mlspec.CompiledLexSpec
	lexSpecErr  error
)

func genLexSpec() *mlspec.LexSpec {
	var terms []string
	for _, k := range tktoken.Kinds() {
		r, ok := k.Repr()
		if !ok || k.Keyword() {
			continue
		}
		terms = append(terms, mlspec.EscapePattern(r))
	}

	return &mlspec.LexSpec{
		Name: "tenkan_grammar",
		Entries: []*mlspec.LexEntry{
			{Kind: "newline", Pattern: `\u{000A}`},
			{Kind: "white_space", Pattern: `[\u{0009}\u{000D}\u{0020}]+`},
			{Kind: "line_comment", Pattern: `//[^\u{000A}]*`},
			{Kind: "arrow", Pattern: mlspec.LexPattern(mlspec.EscapePattern("->"))},
			{Kind: "or", Pattern: mlspec.LexPattern(mlspec.EscapePattern("|"))},
			{Kind: "epsilon", Pattern: mlspec.LexPattern(mlspec.EscapePattern("ε"))},
			{Kind: "identifier", Pattern: `[A-Za-z_][0-9A-Za-z_]*`},
			{Kind: "terminal", Pattern: mlspec.LexPattern(strings.Join(terms, "|"))},
		},
	}
}

func compiledLexSpec() (*mlspec.CompiledLexSpec, error) {
	lexSpecOnce.Do(func() {
		var cErrs []*mlcompiler.CompileError
		lexSpec, lexSpecErr, cErrs = mlcompiler.Compile(genLexSpec(), mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
		if lexSpecErr != nil && len(cErrs) > 0 {
			lexSpecErr = fmt.Errorf("%v: %v: %v", cErrs[0].Kind, cErrs[0].Cause, cErrs[0].Detail)
		}
	})
	return lexSpec, lexSpecErr
}

type lexer struct {
	s   *mlspec.CompiledLexSpec
	d   *mldriver.Lexer
	buf *token
}

func newLexer(src io.Reader) (*lexer, error) {
	s, err := compiledLexSpec()
	if err != nil {
		return nil, err
	}
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(s), src)
	if err != nil {
		return nil, err
	}
	return &lexer{
		s: s,
		d: d,
	}, nil
}

// next returns the next token. Consecutive newlines are reduced to a single newline token.
func (l *lexer) next() (*token, error) {
	if l.buf != nil {
		tok := l.buf
		l.buf = nil
		return tok, nil
	}

	var newline *token
	for {
		tok, err := l.lexAndSkipWSs()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenKindNewline {
			if newline == nil {
				newline = tok
			}
			continue
		}

		if newline != nil {
			l.buf = tok
			return newline, nil
		}
		return tok, nil
	}
}

func (l *lexer) lexAndSkipWSs() (*token, error) {
	var tok *mldriver.Token
	var kindName string
	for {
		var err error
		tok, err = l.d.Next()
		if err != nil {
			return nil, err
		}
		if tok.Invalid {
			return newTextToken(tokenKindInvalid, string(tok.Lexeme), newPosition(tok.Row+1, tok.Col+1)), nil
		}
		if tok.EOF {
			return newEOFToken(newPosition(tok.Row+1, tok.Col+1)), nil
		}
		kindName = l.s.KindNames[tok.KindID].String()
		switch kindName {
		case "white_space":
			continue
		case "line_comment":
			continue
		}

		break
	}

	pos := newPosition(tok.Row+1, tok.Col+1)
	text := string(tok.Lexeme)
	switch kindName {
	case "newline":
		return newSymbolToken(tokenKindNewline, pos), nil
	case "arrow":
		return newSymbolToken(tokenKindArrow, pos), nil
	case "or":
		return newSymbolToken(tokenKindOr, pos), nil
	case "epsilon":
		return newSymbolToken(tokenKindEpsilon, pos), nil
	case "identifier":
		if text == "EPSILON" {
			return newSymbolToken(tokenKindEpsilon, pos), nil
		}
		if strings.Contains(text, "__") {
			return nil, &verr.SpecError{
				Cause:  synErrReservedName,
				Detail: text,
				Row:    pos.Row,
				Col:    pos.Col,
			}
		}
		return newTextToken(tokenKindID, text, pos), nil
	case "terminal":
		return newTextToken(tokenKindTerminal, text, pos), nil
	}

	return nil, fmt.Errorf("unknown lexical kind: %v", kindName)
}
