package driver

import (
	"strings"
	"testing"

	"github.com/nihei9/tenkan/grammar"
	"github.com/nihei9/tenkan/lexer"
	"github.com/nihei9/tenkan/token"
)

const sampleGrammar = `
S -> fn_call_or_decl , S | fn_call_or_decl | ε
fn_call_or_decl -> fn_call | fn_declaration
fn_call -> ID ( args ) ;
args -> arg , args | arg | ε
arg -> expression | STRING
fn_declaration -> fn ID ( params ) { statements }
params -> param , params | param | ε
param -> ID ID
statements -> statement statements | ε
statement -> ID ID ;
    | ID ID = expression ;
    | ID = expression ;
    | ID ( args ) ;
    | return expression ;
expression -> expression + term | expression - term | term
term -> term * factor | term / factor | factor
factor -> ( expression ) | INTEGER | ID | ID ( args )
`

const sampleProgram = `
fn my_thing42(int j) {
    int x0;
    x0 = 2 * 30;
    x0 = x0 / 10;
    int y = x0 + 2;
    print("foo\"bar some thing");
    int z = x0 * y;
}
`

func parseTestGrammar(t *testing.T, src string) *grammar.Grammar {
	t.Helper()

	g, err := grammar.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("failed to parse a grammar: %v", err)
	}
	return g
}

func transformTestGrammar(t *testing.T, g *grammar.Grammar) *grammar.Grammar {
	t.Helper()

	g, err := grammar.EliminateLeftRecursion(g)
	if err != nil {
		t.Fatalf("failed to eliminate left recursion: %v", err)
	}
	g, report, err := grammar.LeftFactor(g)
	if err != nil {
		t.Fatalf("failed to factor a grammar: %v", err)
	}
	if !report.Complete {
		t.Fatalf("the factoring is incomplete: %v", report.Warning())
	}
	return g
}

func tokenize(t *testing.T, src string) []*token.Token {
	t.Helper()

	toks, err := lexer.Tokenize(strings.NewReader(src))
	if err != nil {
		t.Fatalf("failed to tokenize a source: %v", err)
	}
	return toks
}

func termNode(kind token.Kind, lexeme string) *Node {
	return &Node{
		KindName: kind.String(),
		Token: &token.Token{
			Kind:   kind,
			Lexeme: lexeme,
		},
	}
}

func nonTermNode(name string, children ...*Node) *Node {
	return &Node{
		KindName: name,
		Children: children,
	}
}

func testTree(t *testing.T, actual, expected *Node) {
	t.Helper()

	if Equivalent(actual, expected) {
		return
	}
	var want, got strings.Builder
	PrintTree(&want, expected)
	PrintTree(&got, actual)
	t.Fatalf("unexpected tree\nwant:\n%v\ngot:\n%v", want.String(), got.String())
}
