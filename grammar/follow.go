package grammar

import (
	"fmt"

	"github.com/nihei9/tenkan/token"
)

// followEntry is the FOLLOW set of a non-terminal. The end of input is kept apart from the token kinds; a
// predictive parser selects a nullable alternative on it although no token carries it.
type followEntry struct {
	symbols map[token.Kind]struct{}
	eof     bool
}

func newFollowEntry() *followEntry {
	return &followEntry{
		symbols: map[token.Kind]struct{}{},
	}
}

func (e *followEntry) add(kind token.Kind) bool {
	if _, ok := e.symbols[kind]; ok {
		return false
	}
	e.symbols[kind] = struct{}{}
	return true
}

func (e *followEntry) addEOF() bool {
	if e.eof {
		return false
	}
	e.eof = true
	return true
}

// addFirst adds the kinds of a FIRST entry and reports whether the entry grew. Nullability isn't carried over.
func (e *followEntry) addFirst(fst *firstEntry) bool {
	grew := false
	for kind := range fst.symbols {
		if e.add(kind) {
			grew = true
		}
	}
	return grew
}

// addFollow adds another FOLLOW entry, the end of input included, and reports whether the entry grew.
func (e *followEntry) addFollow(flw *followEntry) bool {
	grew := false
	for kind := range flw.symbols {
		if e.add(kind) {
			grew = true
		}
	}
	if flw.eof && e.addEOF() {
		grew = true
	}
	return grew
}

func (e *followEntry) has(kind token.Kind) bool {
	if kind == token.EOF {
		return e.eof
	}
	_, ok := e.symbols[kind]
	return ok
}

// kinds returns the kinds in the entry. The end of input appears as token.EOF at the end.
func (e *followEntry) kinds() []token.Kind {
	kinds := sortKinds(e.symbols)
	if e.eof {
		kinds = append(kinds, token.EOF)
	}
	return kinds
}

type followSet struct {
	set map[string]*followEntry
}

func newFollow(g *Grammar) *followSet {
	flw := &followSet{
		set: map[string]*followEntry{},
	}
	for _, name := range g.order {
		flw.set[name] = newFollowEntry()
	}
	return flw
}

func (flw *followSet) find(name string) (*followEntry, error) {
	e, ok := flw.set[name]
	if !ok {
		return nil, fmt.Errorf("an entry of FOLLOW was not found; symbol: %s", name)
	}
	return e, nil
}

// occurrence is a non-terminal appearing in an alternative of lhs at the end or before nullable symbols only.
type occurrence struct {
	lhs         string
	nonTerminal string
}

// genFollowSet computes the FOLLOW sets. FIRST of the symbols following each occurrence is fixed, so it is added
// once. Only the occurrences whose rest can vanish pass the FOLLOW set of their left-hand side, and those are
// repeated until no entry grows.
func genFollowSet(g *Grammar, first *firstSet) (*followSet, error) {
	follow := newFollow(g)
	start, err := follow.find(g.start)
	if err != nil {
		return nil, err
	}
	start.addEOF()

	var passing []occurrence
	for _, lhs := range g.order {
		for _, alt := range g.prods[lhs].Alternatives {
			for i, sym := range alt {
				if !sym.IsNonTerminal() {
					continue
				}
				e, err := follow.find(sym.Name())
				if err != nil {
					return nil, err
				}
				rest, err := first.find(alt, i+1)
				if err != nil {
					return nil, err
				}
				e.addFirst(rest)
				if rest.empty && lhs != sym.Name() {
					passing = append(passing, occurrence{
						lhs:         lhs,
						nonTerminal: sym.Name(),
					})
				}
			}
		}
	}

	for grew := true; grew; {
		grew = false
		for _, o := range passing {
			if follow.set[o.nonTerminal].addFollow(follow.set[o.lhs]) {
				grew = true
			}
		}
	}

	return follow, nil
}
