package grammar

import (
	"bytes"
	"errors"
	"testing"

	"golang.org/x/exp/ebnf"
)

func TestGrammar_WriteEBNF(t *testing.T) {
	tests := []struct {
		caption  string
		src      string
		expected string
	}{
		{
			caption: "terminals with fixed spellings become tokens and an epsilon makes the body optional",
			src: `
args -> arg , args | arg | ε
arg -> ( args )
`,
			expected: `Args = [ Arg "," Args | Arg ] .
Arg = "(" Args ")" .
`,
		},
		{
			caption: "token kinds without fixed spellings refer to lexical productions",
			src: `
s -> ID = INTEGER | return STRING
`,
			expected: `S = id "=" integer | "return" string .
`,
		},
		{
			caption: "a production deriving only the empty string has an empty body",
			src: `
s -> e ;
e -> ε
`,
			expected: `S = E ";" .
E = .
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			g := parseTestGrammar(t, tt.src)
			var b bytes.Buffer
			err := g.WriteEBNF(&b)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.HasPrefix(b.Bytes(), []byte(tt.expected)) {
				t.Fatalf("unexpected EBNF\nwant:\n%v\ngot:\n%v", tt.expected, b.String())
			}

			exp, err := g.EBNF()
			if err != nil {
				t.Fatal(err)
			}
			parsed, err := ebnf.Parse("", &b)
			if err != nil {
				t.Fatalf("failed to parse the EBNF: %v", err)
			}
			err = ebnf.Verify(parsed, exp.Start)
			if err != nil {
				t.Fatalf("failed to verify the EBNF: %v", err)
			}
			if len(parsed) != len(exp.Order) {
				t.Fatalf("unexpected production count; want: %v, got: %v", len(exp.Order), len(parsed))
			}
		})
	}
}

func TestGrammar_EBNF_NameCollision(t *testing.T) {
	b := NewBuilder("s")
	b.AddAlternative("s", Alt("foo", "Foo"))
	b.AddAlternative("foo", Alt("ID"))
	b.AddAlternative("Foo", Alt("INTEGER"))
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	_, err = g.EBNF()
	if !errors.Is(err, semErrEBNFNameCollision) {
		t.Fatalf("unexpected error; want: %v, got: %v", semErrEBNFNameCollision, err)
	}
}

func TestGrammar_EBNF_Unreachable(t *testing.T) {
	g := parseTestGrammar(t, `
s -> ID
unused -> INTEGER
`)
	exp, err := g.EBNF()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := exp.Grammar["Unused"]; ok {
		t.Fatalf("an unreachable non-terminal must not be exported")
	}
}
