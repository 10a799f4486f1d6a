package driver

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nihei9/tenkan/token"
)

func TestPredictiveParser_Parse(t *testing.T) {
	tests := []struct {
		caption string
		specSrc string
		src     string
		tree    *Node
	}{
		{
			caption: "the parser selects an alternative by its FIRST set",
			specSrc: `
s -> ID = INTEGER ; | return INTEGER ;
`,
			src: `return 1;`,
			tree: nonTermNode("s",
				termNode(token.Return, "return"),
				termNode(token.Integer, "1"),
				termNode(token.Semicolon, ";"),
			),
		},
		{
			caption: "the parser selects a nullable alternative by the FOLLOW set",
			specSrc: `
s -> ( args ) ;
args -> ID rest | ε
rest -> , ID rest | ε
`,
			src: `(a, b);`,
			tree: nonTermNode("s",
				termNode(token.LeftParen, "("),
				nonTermNode("args",
					termNode(token.ID, "a"),
					nonTermNode("rest",
						termNode(token.Comma, ","),
						termNode(token.ID, "b"),
						nonTermNode("rest"),
					),
				),
				termNode(token.RightParen, ")"),
				termNode(token.Semicolon, ";"),
			),
		},
		{
			caption: "empty input matches an epsilon alternative and makes a node without children",
			specSrc: `
s -> ID | ε
`,
			src:  ``,
			tree: nonTermNode("s"),
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.caption), func(t *testing.T) {
			g := parseTestGrammar(t, tt.specSrc)
			p, err := NewPredictiveParser(g)
			if err != nil {
				t.Fatal(err)
			}
			tree, err := p.Parse(tokenize(t, tt.src))
			if err != nil {
				t.Fatal(err)
			}
			testTree(t, tree, tt.tree)
		})
	}
}

func TestPredictiveParser_Parse_SyntaxError(t *testing.T) {
	specSrc := `
s -> ID = INTEGER ; | return INTEGER ;
`
	tests := []struct {
		caption  string
		src      string
		cause    error
		expected []token.Kind
	}{
		{
			caption:  "the parser fails when a terminal doesn't match",
			src:      `x = ;`,
			cause:    ErrUnexpectedToken,
			expected: []token.Kind{token.Integer},
		},
		{
			caption:  "the parser fails when no alternative is selected",
			src:      `;`,
			cause:    ErrUnexpectedToken,
			expected: []token.Kind{token.ID, token.Return},
		},
		{
			caption:  "the parser fails at the end of input when no alternative is selected",
			src:      ``,
			cause:    ErrUnexpectedEndOfInput,
			expected: []token.Kind{token.ID, token.Return},
		},
		{
			caption:  "the parser fails when tokens remain after the start symbol",
			src:      `x = 1; ;`,
			cause:    ErrUnexpectedToken,
			expected: []token.Kind{token.EOF},
		},
	}
	g := parseTestGrammar(t, specSrc)
	p, err := NewPredictiveParser(g)
	if err != nil {
		t.Fatal(err)
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.caption), func(t *testing.T) {
			_, err := p.Parse(tokenize(t, tt.src))
			var synErr *SyntaxError
			if !errors.As(err, &synErr) {
				t.Fatalf("unexpected error; want: *SyntaxError, got: %v", err)
			}
			if !errors.Is(err, tt.cause) {
				t.Fatalf("unexpected cause; want: %v, got: %v", tt.cause, synErr.Cause)
			}
			if len(synErr.Expected) != len(tt.expected) {
				t.Fatalf("unexpected expected kinds; want: %v, got: %v", tt.expected, synErr.Expected)
			}
			for i, k := range tt.expected {
				if synErr.Expected[i] != k {
					t.Fatalf("unexpected expected kinds; want: %v, got: %v", tt.expected, synErr.Expected)
				}
			}
		})
	}
}

func TestNewPredictiveParser_Conflicts(t *testing.T) {
	g := parseTestGrammar(t, `
s -> a | b
a -> ID
b -> ID ;
`)

	_, err := NewPredictiveParser(g)
	if !errors.Is(err, ErrNotBacktrackFree) {
		t.Fatalf("unexpected error; want: %v, got: %v", ErrNotBacktrackFree, err)
	}

	p, err := NewPredictiveParser(g, AllowConflicts())
	if err != nil {
		t.Fatal(err)
	}
	tree, err := p.Parse(tokenize(t, `x`))
	if err != nil {
		t.Fatal(err)
	}
	testTree(t, tree, nonTermNode("s",
		nonTermNode("a",
			termNode(token.ID, "x"),
		),
	))

	// The first alternative wins, so the parser never tries the second one.
	_, err = p.Parse(tokenize(t, `x;`))
	if !errors.Is(err, ErrUnexpectedToken) {
		t.Fatalf("unexpected error; want: %v, got: %v", ErrUnexpectedToken, err)
	}
}

func TestPredictiveParser_Parse_ResourceExhausted(t *testing.T) {
	g := parseTestGrammar(t, `
s -> a
a -> ID
`)
	p, err := NewPredictiveParser(g, MaxDepth(1))
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Parse(tokenize(t, `x`))
	if !errors.Is(err, ErrResourceExhausted) {
		t.Fatalf("unexpected error; want: %v, got: %v", ErrResourceExhausted, err)
	}
}

// For a backtrack-free grammar, both parsers accept the same strings.
func TestPredictiveParser_AgreesWithBacktrackingParser(t *testing.T) {
	tests := []struct {
		caption string
		specSrc string
		srcs    []string
	}{
		{
			caption: "expressions",
			specSrc: `
expr -> expr + term | expr - term | term
term -> term * factor | factor
factor -> ( expr ) | ID | INTEGER
`,
			srcs: []string{
				`a`,
				`a + 1 * (b - c)`,
				`((a))`,
				``,
				`a +`,
				`a b`,
				`(a + b`,
				`* a`,
			},
		},
		{
			caption: "statements",
			specSrc: `
stmts -> stmt stmts | ε
stmt -> ID ID ; | ID ID = INTEGER ; | ID = INTEGER ; | return ID ;
`,
			srcs: []string{
				``,
				`int x;`,
				`int x = 1; x = 2; return x;`,
				`int x`,
				`x = ;`,
				`return;`,
			},
		},
		{
			caption: "the sample language",
			specSrc: sampleGrammar,
			srcs: []string{
				sampleProgram,
				``,
				`f();`,
				`f(1, "a", g(x)), fn h(int a, int b) { return a; }`,
				`f(1,);`,
				`fn h() { x = ; }`,
				`fn h() {}, `,
			},
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.caption), func(t *testing.T) {
			g := parseTestGrammar(t, tt.specSrc)
			transformed := transformTestGrammar(t, g)
			bp, err := NewBacktrackingParser(g)
			if err != nil {
				t.Fatal(err)
			}
			tbp, err := NewBacktrackingParser(transformed)
			if err != nil {
				t.Fatal(err)
			}
			pp, err := NewPredictiveParser(transformed)
			if err != nil {
				t.Fatal(err)
			}
			for _, src := range tt.srcs {
				toks := tokenize(t, src)
				_, bErr := bp.Parse(toks)
				_, tbErr := tbp.Parse(toks)
				_, pErr := pp.Parse(toks)
				if (bErr == nil) != (tbErr == nil) || (tbErr == nil) != (pErr == nil) {
					t.Fatalf("the parsers disagree on %#v\noriginal: %v\ntransformed: %v\npredictive: %v", src, bErr, tbErr, pErr)
				}
			}
		})
	}
}

func TestPrintTree(t *testing.T) {
	g := parseTestGrammar(t, `
s -> ID = e ;
e -> INTEGER
`)
	p, err := NewPredictiveParser(g)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := p.Parse(tokenize(t, `x = 1;`))
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	PrintTree(&b, tree)
	expected := `s
├─ ID "x"
├─ EQUAL "="
├─ e
│  └─ INTEGER "1"
└─ SEMICOLON ";"
`
	if b.String() != expected {
		t.Fatalf("unexpected output\nwant:\n%v\ngot:\n%v", expected, b.String())
	}
}
