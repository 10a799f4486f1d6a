package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nihei9/tenkan/token"
)

var (
	ErrUnexpectedToken      = errors.New("unexpected token")
	ErrUnexpectedEndOfInput = errors.New("unexpected end of input")
	ErrResourceExhausted    = errors.New("resource exhausted")
	ErrNotBacktrackFree     = errors.New("the grammar is not backtrack-free")
)

// SyntaxError is a parse failure at a position. Token is nil when the input ended too early.
type SyntaxError struct {
	Cause    error
	Row      int
	Col      int
	Token    *token.Token
	Expected []token.Kind
}

func newSyntaxError(toks []*token.Token, pos int, expected []token.Kind) *SyntaxError {
	if pos < len(toks) {
		tok := toks[pos]
		return &SyntaxError{
			Cause:    ErrUnexpectedToken,
			Row:      tok.Row,
			Col:      tok.Col,
			Token:    tok,
			Expected: expected,
		}
	}
	synErr := &SyntaxError{
		Cause:    ErrUnexpectedEndOfInput,
		Expected: expected,
	}
	if len(toks) > 0 {
		last := toks[len(toks)-1]
		synErr.Row = last.Row
		synErr.Col = last.Col + len([]rune(last.Lexeme))
	}
	return synErr
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	if e.Row != 0 {
		fmt.Fprintf(&b, "%v:%v: ", e.Row, e.Col)
	}
	fmt.Fprintf(&b, "%v", e.Cause)
	if e.Token != nil {
		fmt.Fprintf(&b, " %v %q", e.Token.Kind, e.Token.Lexeme)
	}
	if len(e.Expected) > 0 {
		fmt.Fprintf(&b, "; expected: %v", e.Expected[0])
		for _, k := range e.Expected[1:] {
			fmt.Fprintf(&b, ", %v", k)
		}
	}
	return b.String()
}

func (e *SyntaxError) Unwrap() error {
	return e.Cause
}
