package token

import "fmt"

// Kind is a predefined token kind of the toy language. Terminal symbols of a grammar are drawn from this set.
type Kind int

const (
	Invalid Kind = iota
	ID
	Fn
	Return
	Integer
	String
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	Semicolon
	Comma
	Equal
	Slash
	Star
	Minus
	Plus

	// EOF is not produced by a lexer. It appears in FOLLOW sets and expected-kind lists to denote the end of input.
	EOF
)

type kindInfo struct {
	name  string
	repr  string
	snake string
}

var kinds = [...]kindInfo{
	Invalid:      {name: "ERROR", snake: "error"},
	ID:           {name: "ID", snake: "id"},
	Fn:           {name: "FN", repr: "fn", snake: "kw_fn"},
	Return:       {name: "RETURN", repr: "return", snake: "kw_return"},
	Integer:      {name: "INTEGER", snake: "integer"},
	String:       {name: "STRING", snake: "string"},
	LeftParen:    {name: "LEFT_PAREN", repr: "(", snake: "left_paren"},
	RightParen:   {name: "RIGHT_PAREN", repr: ")", snake: "right_paren"},
	LeftBrace:    {name: "LEFT_BRACE", repr: "{", snake: "left_brace"},
	RightBrace:   {name: "RIGHT_BRACE", repr: "}", snake: "right_brace"},
	LeftBracket:  {name: "LEFT_BRACKET", repr: "[", snake: "left_bracket"},
	RightBracket: {name: "RIGHT_BRACKET", repr: "]", snake: "right_bracket"},
	Semicolon:    {name: "SEMICOLON", repr: ";", snake: "semicolon"},
	Comma:        {name: "COMMA", repr: ",", snake: "comma"},
	Equal:        {name: "EQUAL", repr: "=", snake: "equal"},
	Slash:        {name: "SLASH", repr: "/", snake: "slash"},
	Star:         {name: "STAR", repr: "*", snake: "star"},
	Minus:        {name: "MINUS", repr: "-", snake: "minus"},
	Plus:         {name: "PLUS", repr: "+", snake: "plus"},
	EOF:          {name: "<eof>", snake: "eof"},
}

var aliases = map[string]Kind{
	"FUN":          Fn,
	"FUNCTION":     Fn,
	"INT":          Integer,
	"TXT":          String,
	"LEFT_BRACES":  LeftBrace,
	"RIGHT_BRACES": RightBrace,
}

// Kinds returns the kinds a lexer can produce, in declaration order. Invalid and EOF are not included.
func Kinds() []Kind {
	ks := make([]Kind, 0, EOF-ID)
	for k := ID; k < EOF; k++ {
		ks = append(ks, k)
	}
	return ks
}

func (k Kind) valid() bool {
	return k >= Invalid && k <= EOF
}

// String returns the upper-case name of the kind, e.g. `LEFT_PAREN`.
func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kinds[k].name
}

// Repr returns the fixed spelling of the kind, e.g. `(` or `fn`. Kinds whose lexemes vary, such as ID, have none.
func (k Kind) Repr() (string, bool) {
	if !k.valid() || kinds[k].repr == "" {
		return "", false
	}
	return kinds[k].repr, true
}

// Keyword reports whether the kind is spelled like an identifier.
func (k Kind) Keyword() bool {
	return k == Fn || k == Return
}

// SnakeName returns the name used for the kind in lexical specifications.
func (k Kind) SnakeName() string {
	if !k.valid() {
		return ""
	}
	return kinds[k].snake
}

// Lookup finds a kind by its upper-case name, an alias, or its fixed spelling.
func Lookup(s string) (Kind, bool) {
	for k := ID; k < EOF; k++ {
		if kinds[k].name == s || (kinds[k].repr != "" && kinds[k].repr == s) {
			return k, true
		}
	}
	if k, ok := aliases[s]; ok {
		return k, true
	}
	return Invalid, false
}

// LookupSnakeName is the inverse of SnakeName.
func LookupSnakeName(s string) (Kind, bool) {
	for k := Invalid; k <= EOF; k++ {
		if kinds[k].snake == s {
			return k, true
		}
	}
	return Invalid, false
}

type Token struct {
	Kind   Kind
	Lexeme string

	// Row and Col are 1-based.
	Row int
	Col int
}

func (t *Token) String() string {
	return fmt.Sprintf("%v:%v: %v %q", t.Row, t.Col, t.Kind, t.Lexeme)
}
