package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	ErrUndefinedNonTerminal   = newSemanticError("undefined non-terminal")
	ErrUnfixableLeftRecursion = newSemanticError("left recursion cannot be eliminated")
	ErrIncompleteFactoring    = newSemanticError("left factoring didn't reach a backtrack-free grammar")
	ErrGrammarTooLarge        = newSemanticError("the rewritten grammar exceeds the size limit")

	semErrNoProduction          = newSemanticError("a grammar needs at least one production")
	semErrUndefinedStart        = newSemanticError("the start symbol has no production")
	semErrReservedName          = newSemanticError("names containing '__' are reserved for auto-generated non-terminals")
	semErrTerminalLHS           = newSemanticError("a terminal cannot be the left-hand side of a production")
	semErrSpellingInconsistency = newSemanticError("the identifiers are treated as the same. please use the same spelling")
	semErrEBNFNameCollision     = newSemanticError("the non-terminals have the same name in EBNF")
)
