package spec

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/tenkan/error"
)

func TestParse(t *testing.T) {
	production := func(lhs string, alts ...*AlternativeNode) *ProductionNode {
		return &ProductionNode{
			LHS: lhs,
			RHS: alts,
		}
	}
	alternative := func(ids ...string) *AlternativeNode {
		elems := []*ElementNode{}
		for _, id := range ids {
			elems = append(elems, &ElementNode{
				ID: id,
			})
		}
		return &AlternativeNode{
			Elements: elems,
		}
	}

	tests := []struct {
		caption string
		src     string
		ast     *RootNode
		synErrs []*SyntaxError
	}{
		{
			caption: "single production is a valid grammar",
			src:     `a -> ID`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					production("a", alternative("ID")),
				},
			},
		},
		{
			caption: "alternatives are separated by `|`, and an `ε` denotes an empty alternative",
			src:     `S -> fn_call_or_decl , S | fn_call_or_decl | ε`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					production("S",
						alternative("fn_call_or_decl", ",", "S"),
						alternative("fn_call_or_decl"),
						alternative(),
					),
				},
			},
		},
		{
			caption: "an alternative without symbols and `EPSILON` are also epsilon",
			src: `
a -> | b
b -> EPSILON
`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					production("a", alternative(), alternative("b")),
					production("b", alternative()),
				},
			},
		},
		{
			caption: "a production can continue on lines beginning with `|`, and comments and blank lines are ignored",
			src: `
// expressions
expression -> expression + term
            | expression - term

            | term   // the base case
term -> ( expression ) | INTEGER | ID
`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					production("expression",
						alternative("expression", "+", "term"),
						alternative("expression", "-", "term"),
						alternative("term"),
					),
					production("term",
						alternative("(", "expression", ")"),
						alternative("INTEGER"),
						alternative("ID"),
					),
				},
			},
		},
		{
			caption: "keywords and punctuation are passed as they are",
			src:     `fn_declaration -> fn ID ( params ) { statements } ; [ ] = / * return`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					production("fn_declaration",
						alternative("fn", "ID", "(", "params", ")", "{", "statements", "}", ";", "[", "]", "=", "/", "*", "return"),
					),
				},
			},
		},
		{
			caption: "an empty source is invalid",
			src:     "\n\n",
			synErrs: []*SyntaxError{synErrNoProduction},
		},
		{
			caption: "a production needs an arrow",
			src:     `a ID`,
			synErrs: []*SyntaxError{synErrNoArrow},
		},
		{
			caption: "a production needs a name",
			src:     `-> ID`,
			synErrs: []*SyntaxError{synErrNoProductionName},
		},
		{
			caption: "an epsilon cannot appear with other symbols",
			src:     `a -> ID ε`,
			synErrs: []*SyntaxError{synErrEpsilonWithSymbols},
		},
		{
			caption: "the parser reports errors of multiple lines at once",
			src: `
a -> b
b ID
c -> ID ε
d -> ID
`,
			synErrs: []*SyntaxError{synErrNoArrow, synErrEpsilonWithSymbols},
		},
		{
			caption: "an arrow cannot appear twice",
			src:     `a -> b -> c`,
			synErrs: []*SyntaxError{synErrProdNoNewline},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			ast, err := Parse(strings.NewReader(tt.src))
			if len(tt.synErrs) > 0 {
				var specErrs verr.SpecErrors
				if !errors.As(err, &specErrs) {
					t.Fatalf("unexpected error; want: %v, got: %v", tt.synErrs, err)
				}
				if len(specErrs) != len(tt.synErrs) {
					t.Fatalf("unexpected error count; want: %v, got: %v (%v)", len(tt.synErrs), len(specErrs), specErrs)
				}
				for i, synErr := range tt.synErrs {
					if specErrs[i].Cause != synErr {
						t.Fatalf("unexpected error; want: %v, got: %v", synErr, specErrs[i].Cause)
					}
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			testRootNode(t, ast, tt.ast)
		})
	}
}

func TestParse_ReservedName(t *testing.T) {
	_, err := Parse(strings.NewReader(`a -> b__1`))
	if !errors.Is(err, synErrReservedName) {
		t.Fatalf("unexpected error; want: %v, got: %v", synErrReservedName, err)
	}
}

func TestParse_Position(t *testing.T) {
	ast, err := Parse(strings.NewReader("\na -> ID\n  | b c\nb -> ε\nc -> ID"))
	if err != nil {
		t.Fatal(err)
	}
	a := ast.Productions[0]
	if a.Pos != newPosition(2, 1) {
		t.Fatalf("unexpected position of the production: %+v", a.Pos)
	}
	c := a.RHS[1].Elements[1]
	if c.ID != "c" || c.Pos != newPosition(3, 7) {
		t.Fatalf("unexpected element: %+v", c)
	}
}

func testRootNode(t *testing.T, root, expected *RootNode) {
	t.Helper()
	if len(root.Productions) != len(expected.Productions) {
		t.Fatalf("unexpected length of productions; want: %v, got: %v", len(expected.Productions), len(root.Productions))
	}
	for i, prod := range root.Productions {
		testProductionNode(t, prod, expected.Productions[i])
	}
}

func testProductionNode(t *testing.T, prod, expected *ProductionNode) {
	t.Helper()
	if prod.LHS != expected.LHS {
		t.Fatalf("unexpected LHS; want: %v, got: %v", expected.LHS, prod.LHS)
	}
	if len(prod.RHS) != len(expected.RHS) {
		t.Fatalf("unexpected length of an RHS of %v; want: %v, got: %v", prod.LHS, len(expected.RHS), len(prod.RHS))
	}
	for i, alt := range prod.RHS {
		testAlternativeNode(t, alt, expected.RHS[i])
	}
}

func testAlternativeNode(t *testing.T, alt, expected *AlternativeNode) {
	t.Helper()
	if len(alt.Elements) != len(expected.Elements) {
		t.Fatalf("unexpected length of elements; want: %v, got: %v", len(expected.Elements), len(alt.Elements))
	}
	for i, elem := range alt.Elements {
		if elem.ID != expected.Elements[i].ID {
			t.Fatalf("unexpected element; want: %v, got: %v", expected.Elements[i].ID, elem.ID)
		}
	}
}
