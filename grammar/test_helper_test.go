package grammar

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nihei9/tenkan/token"
)

func parseTestGrammar(t *testing.T, src string) *Grammar {
	t.Helper()

	g, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("failed to parse a grammar: %v", err)
	}
	return g
}

func genKinds(t *testing.T, texts ...string) []token.Kind {
	t.Helper()

	kinds := make([]token.Kind, 0, len(texts))
	for _, text := range texts {
		k, ok := token.Lookup(text)
		if !ok {
			t.Fatalf("a token kind was not found: %v", text)
		}
		kinds = append(kinds, k)
	}
	return kinds
}

func testKinds(t *testing.T, actual, expected []token.Kind) {
	t.Helper()

	if len(actual) != len(expected) {
		t.Fatalf("unexpected kinds\nwant: %v\ngot: %v", expected, actual)
	}
	for i, k := range expected {
		if actual[i] != k {
			t.Fatalf("unexpected kinds\nwant: %v\ngot: %v", expected, actual)
		}
	}
}

// languageUpTo returns every sentence of at most n tokens the grammar derives. A sentence is encoded as a string
// with one rune per token kind.
func languageUpTo(g *Grammar, n int) map[string]struct{} {
	lang := map[string]map[string]struct{}{}
	for _, nt := range g.NonTerminals() {
		lang[nt] = map[string]struct{}{}
	}
	for changed := true; changed; {
		changed = false
		for _, nt := range g.NonTerminals() {
			for _, alt := range g.Alternatives(nt) {
				for s := range deriveUpTo(alt, lang, n) {
					if _, ok := lang[nt][s]; ok {
						continue
					}
					lang[nt][s] = struct{}{}
					changed = true
				}
			}
		}
	}
	return lang[g.Start()]
}

func deriveUpTo(alt Alternative, lang map[string]map[string]struct{}, n int) map[string]struct{} {
	cur := map[string]struct{}{"": {}}
	for _, sym := range alt {
		var strs map[string]struct{}
		if sym.IsTerminal() {
			strs = map[string]struct{}{
				string(rune(0x100 + int(sym.Kind()))): {},
			}
		} else {
			strs = lang[sym.Name()]
		}
		next := map[string]struct{}{}
		for a := range cur {
			for b := range strs {
				if utf8.RuneCountInString(a)+utf8.RuneCountInString(b) > n {
					continue
				}
				next[a+b] = struct{}{}
			}
		}
		cur = next
	}
	return cur
}

func testSameLanguage(t *testing.T, g1, g2 *Grammar, n int) {
	t.Helper()

	l1 := languageUpTo(g1, n)
	l2 := languageUpTo(g2, n)
	if len(l1) != len(l2) {
		t.Fatalf("languages differ in size; want: %v, got: %v\n%v\n%v", len(l1), len(l2), g1, g2)
	}
	for s := range l1 {
		if _, ok := l2[s]; !ok {
			t.Fatalf("a sentence is missing: %v\n%v", decodeSentence(s), g2)
		}
	}
}

func decodeSentence(s string) []token.Kind {
	var kinds []token.Kind
	for _, r := range s {
		kinds = append(kinds, token.Kind(r-0x100))
	}
	return kinds
}

// testNoLeftRecursion checks that no non-terminal derives a sentential form beginning with itself, including
// through nullable prefixes.
func testNoLeftRecursion(t *testing.T, g *Grammar) {
	t.Helper()

	a, err := Analyze(g)
	if err != nil {
		t.Fatal(err)
	}
	nullable := func(name string) bool {
		_, empty := a.First(name)
		return empty
	}
	for _, nt := range g.NonTerminals() {
		visited := map[string]struct{}{}
		stack := []string{nt}
		for len(stack) > 0 {
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, alt := range g.Alternatives(name) {
				for _, sym := range alt {
					if sym.IsTerminal() {
						break
					}
					if sym.Name() == nt {
						t.Fatalf("%v is left-recursive\n%v", nt, g)
					}
					if _, ok := visited[sym.Name()]; !ok {
						visited[sym.Name()] = struct{}{}
						stack = append(stack, sym.Name())
					}
					if !nullable(sym.Name()) {
						break
					}
				}
			}
		}
	}
}
