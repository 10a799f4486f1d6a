package spec

import "fmt"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

var (
	// lexical errors
	synErrReservedName = newSyntaxError("identifiers containing '__' are reserved for auto-generated names")

	// syntax errors
	synErrInvalidToken       = newSyntaxError("invalid token")
	synErrNoProduction       = newSyntaxError("a grammar must have at least one production")
	synErrNoProductionName   = newSyntaxError("a production name is missing")
	synErrNoArrow            = newSyntaxError("the arrow (->) must precede alternatives")
	synErrProdNoNewline      = newSyntaxError("a production must be followed by a newline")
	synErrEpsilonWithSymbols = newSyntaxError("an epsilon cannot appear with other symbols in an alternative")
)
