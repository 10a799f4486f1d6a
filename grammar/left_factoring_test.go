package grammar

import (
	"errors"
	"strings"
	"testing"
)

func TestLeftFactor(t *testing.T) {
	tests := []struct {
		caption    string
		src        string
		opts       []FactorOption
		expected   string
		complete   bool
		iterations int
		inlined    []string
	}{
		{
			caption: "a common first symbol is factored out",
			src: `
s -> ID ( ) | ID ;
`,
			expected: `s -> ID s__1
s__1 -> ( ) | ;
`,
			complete:   true,
			iterations: 1,
		},
		{
			caption: "new non-terminals are factored again",
			src: `
s -> ID ( ID ) | ID ( ) | ID ; | INTEGER
`,
			expected: `s -> ID s__1 | INTEGER
s__1 -> ( s__2 | ;
s__2 -> ID ) | )
`,
			complete:   true,
			iterations: 1,
		},
		{
			caption: "the longest common prefix is factored out at once",
			src: `
s -> fn ID ( ) | fn ID ;
`,
			expected: `s -> fn ID s__1
s__1 -> ( ) | ;
`,
			complete:   true,
			iterations: 1,
		},
		{
			caption: "a prefix that is a whole alternative leaves an epsilon",
			src: `
s -> ID | ID ( )
`,
			expected: `s -> ID s__1
s__1 -> ε | ( )
`,
			complete:   true,
			iterations: 1,
		},
		{
			caption: "a prefix hidden behind non-terminals is exposed by inlining",
			src: `
s -> a | b
a -> ID =
b -> ID ;
`,
			expected: `s -> ID s__1
s__1 -> = | ;
`,
			complete:   true,
			iterations: 2,
			inlined:    []string{"a", "b"},
		},
		{
			caption: "repeated alternatives are merged",
			src: `
s -> ID | ID
`,
			expected: `s -> ID
`,
			complete:   true,
			iterations: 1,
		},
		{
			caption: "a FIRST/FOLLOW conflict cannot be factored",
			src: `
s -> opt ID
opt -> ID | ε
`,
			expected: `s -> opt ID
opt -> ID | ε
`,
			complete:   false,
			iterations: 1,
		},
		{
			caption: "the factoring stops when the iteration budget runs out",
			src: `
s -> a | b
a -> ID =
b -> ID ;
`,
			opts: []FactorOption{MaxIterations(1)},
			expected: `s -> a | b
a -> ID =
b -> ID ;
`,
			complete:   false,
			iterations: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			g := parseTestGrammar(t, tt.src)
			h, report, err := LeftFactor(g, tt.opts...)
			if err != nil {
				t.Fatal(err)
			}
			if h.String() != tt.expected {
				t.Fatalf("unexpected grammar\nwant:\n%v\ngot:\n%v", tt.expected, h)
			}
			if report.Complete != tt.complete || report.Iterations != tt.iterations {
				t.Fatalf("unexpected report: %+v", report)
			}
			if strings.Join(report.Inlined, " ") != strings.Join(tt.inlined, " ") {
				t.Fatalf("unexpected inlined non-terminals; want: %v, got: %v", tt.inlined, report.Inlined)
			}

			warn := report.Warning()
			if tt.complete {
				if warn != nil || len(report.Conflicts) != 0 {
					t.Fatalf("a complete factoring must not have a warning: %v", warn)
				}
			} else {
				if !errors.Is(warn, ErrIncompleteFactoring) {
					t.Fatalf("unexpected warning; want: %v, got: %v", ErrIncompleteFactoring, warn)
				}
				if len(report.Conflicts) == 0 {
					t.Fatalf("an incomplete factoring must report the remaining conflicts")
				}
			}

			testSameLanguage(t, g, h, 6)
		})
	}
}

func TestLeftFactor_Origin(t *testing.T) {
	h, _, err := LeftFactor(parseTestGrammar(t, `s -> ID ( ) | ID ;`))
	if err != nil {
		t.Fatal(err)
	}
	o, ok := h.Origin("s__1")
	if !ok || o.Kind != OriginLeftFactoring || o.Base != "s" {
		t.Fatalf("unexpected origin: %+v", o)
	}
}

func TestEliminateAndFactor_Expression(t *testing.T) {
	g := parseTestGrammar(t, `
statement -> ID ID ; | ID ID = expression ; | ID = expression ; | ID ( args ) ; | return expression ;
args -> expression , args | expression | ε
expression -> expression + term | expression - term | term
term -> term * factor | term / factor | factor
factor -> ( expression ) | INTEGER | ID | ID ( args )
`)
	h, err := EliminateLeftRecursion(g)
	if err != nil {
		t.Fatal(err)
	}
	testNoLeftRecursion(t, h)

	f, report, err := LeftFactor(h)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Complete {
		t.Fatalf("the factoring must be complete: %v\n%v", report.Warning(), f)
	}
	testNoLeftRecursion(t, f)

	a, err := Analyze(f)
	if err != nil {
		t.Fatal(err)
	}
	if !a.BacktrackFree() {
		t.Fatalf("the grammar must be backtrack-free: %v", a.Conflicts())
	}

	testSameLanguage(t, g, f, 5)
}

func TestLeftFactor_SizeLimit(t *testing.T) {
	g := parseTestGrammar(t, `
a -> ID b | ID c | c ID
b -> ε | ID c ID
c -> ID ID b | ID b | c a
`)
	h, err := EliminateLeftRecursion(g)
	if err != nil {
		t.Fatal(err)
	}

	const limit = 300
	f, report, err := LeftFactor(h, MaxFactoringSize(limit))
	if err != nil {
		t.Fatal(err)
	}
	// The iterations rewrite grammars within the limit, and factoring adds at most one symbol per symbol.
	if f.Size() > 2*limit {
		t.Fatalf("the grammar grew beyond the limit; size: %v, limit: %v", f.Size(), limit)
	}
	if !report.Complete {
		if !errors.Is(report.Warning(), ErrIncompleteFactoring) {
			t.Fatalf("unexpected warning; want: %v, got: %v", ErrIncompleteFactoring, report.Warning())
		}
		if len(report.Conflicts) == 0 {
			t.Fatalf("an incomplete factoring must report the remaining conflicts")
		}
	}
	testSameLanguage(t, g, f, 5)
}

func TestLeftFactor_StopsAtSizeLimit(t *testing.T) {
	g := parseTestGrammar(t, `
s -> a | b
a -> ID =
b -> ID ;
`)
	// Inlining a and b needs more room than the input grammar occupies.
	h, report, err := LeftFactor(g, MaxFactoringSize(g.Size()))
	if err != nil {
		t.Fatal(err)
	}
	if report.Complete || !report.SizeLimitReached || report.Iterations != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if !errors.Is(report.Warning(), ErrIncompleteFactoring) {
		t.Fatalf("unexpected warning; want: %v, got: %v", ErrIncompleteFactoring, report.Warning())
	}
	if len(report.Inlined) != 0 {
		t.Fatalf("non-terminals that weren't inlined are reported: %v", report.Inlined)
	}
	if h.String() != g.String() {
		t.Fatalf("the last factored grammar must be returned\nwant:\n%v\ngot:\n%v", g, h)
	}
}

func TestLeftFactor_CompleteReportHasNoConflicts(t *testing.T) {
	_, report, err := LeftFactor(parseTestGrammar(t, `
s -> a | b
a -> ID =
b -> ID ;
`))
	if err != nil {
		t.Fatal(err)
	}
	if !report.Complete || report.Iterations != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Conflicts) != 0 || report.Warning() != nil {
		t.Fatalf("the conflicts of earlier iterations must not remain in the report: %v", report.Conflicts)
	}
}
