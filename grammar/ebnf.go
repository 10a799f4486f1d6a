package grammar

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	verr "github.com/nihei9/tenkan/error"
	"github.com/nihei9/tenkan/token"
	"golang.org/x/exp/ebnf"
)

// In EBNF, a production whose name begins with an upper-case letter is syntactic and the others are lexical.
// Non-terminals are therefore capitalized, and token kinds without fixed spellings refer to the lexical
// productions below.
var lexicalProductions = []struct {
	name string
	deps []string
	expr func() ebnf.Expression
}{
	{
		name: "letter",
		expr: func() ebnf.Expression {
			return ebnf.Alternative{
				charRange("A", "Z"),
				charRange("a", "z"),
				&ebnf.Token{String: "_"},
			}
		},
	},
	{
		name: "decimal_digit",
		expr: func() ebnf.Expression {
			return charRange("0", "9")
		},
	},
	{
		name: "id",
		deps: []string{"letter", "decimal_digit"},
		expr: func() ebnf.Expression {
			return ebnf.Sequence{
				&ebnf.Name{String: "letter"},
				&ebnf.Repetition{
					Body: ebnf.Alternative{
						&ebnf.Name{String: "letter"},
						&ebnf.Name{String: "decimal_digit"},
					},
				},
			}
		},
	},
	{
		name: "integer",
		deps: []string{"decimal_digit"},
		expr: func() ebnf.Expression {
			return ebnf.Sequence{
				&ebnf.Name{String: "decimal_digit"},
				&ebnf.Repetition{
					Body: &ebnf.Name{String: "decimal_digit"},
				},
			}
		},
	},
	{
		name: "string",
		deps: []string{"letter", "decimal_digit"},
		expr: func() ebnf.Expression {
			return ebnf.Sequence{
				&ebnf.Token{String: `"`},
				&ebnf.Repetition{
					Body: ebnf.Alternative{
						&ebnf.Name{String: "letter"},
						&ebnf.Name{String: "decimal_digit"},
						&ebnf.Token{String: " "},
						ebnf.Sequence{
							&ebnf.Token{String: `\`},
							&ebnf.Token{String: `"`},
						},
					},
				},
				&ebnf.Token{String: `"`},
			}
		},
	},
}

func charRange(begin, end string) *ebnf.Range {
	return &ebnf.Range{
		Begin: &ebnf.Token{String: begin},
		End:   &ebnf.Token{String: end},
	}
}

func lexicalName(kind token.Kind) (string, bool) {
	switch kind {
	case token.ID:
		return "id", true
	case token.Integer:
		return "integer", true
	case token.String:
		return "string", true
	}
	return "", false
}

// ebnfName capitalizes a non-terminal name so that EBNF treats it as a syntactic production.
func ebnfName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == '_' {
		return "N" + name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// EBNFExport is a grammar converted into EBNF with the order of its productions.
type EBNFExport struct {
	Grammar ebnf.Grammar
	Start   string
	Order   []string
}

// EBNF converts the part of the grammar reachable from the start symbol into EBNF and verifies the result.
// An epsilon alternative makes the rest of the alternatives optional.
func (g *Grammar) EBNF() (*EBNFExport, error) {
	reachable := g.reachableNonTerminals()

	names := map[string]string{}
	owners := map[string]string{}
	var errs verr.SpecErrors
	for _, name := range reachable {
		n := ebnfName(name)
		if owner, ok := owners[n]; ok {
			errs = append(errs, &verr.SpecError{
				Cause:  semErrEBNFNameCollision,
				Detail: fmt.Sprintf("%v, %v", owner, name),
			})
			continue
		}
		owners[n] = name
		names[name] = n
	}
	if len(errs) > 0 {
		return nil, errs
	}

	exp := &EBNFExport{
		Grammar: ebnf.Grammar{},
		Start:   names[g.start],
	}
	usedLexical := map[string]struct{}{}
	for _, name := range reachable {
		var nonEmpty []ebnf.Expression
		nullable := false
		for _, alt := range g.prods[name].Alternatives {
			if alt.IsEmpty() {
				nullable = true
				continue
			}
			seq := make(ebnf.Sequence, 0, len(alt))
			for _, sym := range alt {
				if sym.IsNonTerminal() {
					seq = append(seq, &ebnf.Name{String: names[sym.Name()]})
					continue
				}
				if repr, ok := sym.Kind().Repr(); ok {
					seq = append(seq, &ebnf.Token{String: repr})
					continue
				}
				lexName, ok := lexicalName(sym.Kind())
				if !ok {
					return nil, fmt.Errorf("a token kind %v cannot be represented in EBNF", sym.Kind())
				}
				usedLexical[lexName] = struct{}{}
				seq = append(seq, &ebnf.Name{String: lexName})
			}
			if len(seq) == 1 {
				nonEmpty = append(nonEmpty, seq[0])
			} else {
				nonEmpty = append(nonEmpty, seq)
			}
		}

		var expr ebnf.Expression
		switch len(nonEmpty) {
		case 0:
		case 1:
			expr = nonEmpty[0]
		default:
			expr = ebnf.Alternative(nonEmpty)
		}
		if nullable && expr != nil {
			expr = &ebnf.Option{Body: expr}
		}

		n := names[name]
		exp.Grammar[n] = &ebnf.Production{
			Name: &ebnf.Name{String: n},
			Expr: expr,
		}
		exp.Order = append(exp.Order, n)
	}

	for _, lex := range lexicalProductions {
		if _, ok := usedLexical[lex.name]; !ok {
			continue
		}
		for _, dep := range lex.deps {
			usedLexical[dep] = struct{}{}
		}
	}
	for _, lex := range lexicalProductions {
		if _, ok := usedLexical[lex.name]; !ok {
			continue
		}
		exp.Grammar[lex.name] = &ebnf.Production{
			Name: &ebnf.Name{String: lex.name},
			Expr: lex.expr(),
		}
		exp.Order = append(exp.Order, lex.name)
	}

	err := ebnf.Verify(exp.Grammar, exp.Start)
	if err != nil {
		return nil, err
	}
	return exp, nil
}

// WriteEBNF writes the grammar in EBNF. The output can be read by ebnf.Parse.
func (g *Grammar) WriteEBNF(w io.Writer) error {
	exp, err := g.EBNF()
	if err != nil {
		return err
	}
	for _, name := range exp.Order {
		prod := exp.Grammar[name]
		if prod.Expr == nil {
			fmt.Fprintf(w, "%v = .\n", name)
			continue
		}
		fmt.Fprintf(w, "%v = %v .\n", name, formatEBNFExpr(prod.Expr))
	}
	return nil
}

func formatEBNFExpr(expr ebnf.Expression) string {
	switch x := expr.(type) {
	case ebnf.Alternative:
		alts := make([]string, len(x))
		for i, e := range x {
			alts[i] = formatEBNFExpr(e)
		}
		return strings.Join(alts, " | ")
	case ebnf.Sequence:
		elems := make([]string, len(x))
		for i, e := range x {
			if _, ok := e.(ebnf.Alternative); ok {
				elems[i] = "( " + formatEBNFExpr(e) + " )"
				continue
			}
			elems[i] = formatEBNFExpr(e)
		}
		return strings.Join(elems, " ")
	case *ebnf.Name:
		return x.String
	case *ebnf.Token:
		return strconv.Quote(x.String)
	case *ebnf.Range:
		return fmt.Sprintf("%v … %v", strconv.Quote(x.Begin.String), strconv.Quote(x.End.String))
	case *ebnf.Group:
		return "( " + formatEBNFExpr(x.Body) + " )"
	case *ebnf.Option:
		return "[ " + formatEBNFExpr(x.Body) + " ]"
	case *ebnf.Repetition:
		return "{ " + formatEBNFExpr(x.Body) + " }"
	}
	return ""
}

func (g *Grammar) reachableNonTerminals() []string {
	reached := map[string]struct{}{}
	var visit func(name string)
	visit = func(name string) {
		if _, ok := reached[name]; ok {
			return
		}
		reached[name] = struct{}{}
		for _, alt := range g.prods[name].Alternatives {
			for _, sym := range alt {
				if sym.IsNonTerminal() {
					visit(sym.Name())
				}
			}
		}
	}
	visit(g.start)

	var nts []string
	for _, name := range g.order {
		if _, ok := reached[name]; ok {
			nts = append(nts, name)
		}
	}
	return nts
}
