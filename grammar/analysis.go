package grammar

import (
	"fmt"
	"strings"

	log "github.com/golang/glog"
	gspec "github.com/nihei9/tenkan/spec/grammar"
	"github.com/nihei9/tenkan/token"
)

type ConflictKind string

const (
	// ConflictFirstFirst means two alternatives can begin with the same token kind.
	ConflictFirstFirst = ConflictKind("FIRST/FIRST")

	// ConflictFirstFollow means a nullable alternative competes with another alternative that can begin with
	// a token kind that may follow the non-terminal.
	ConflictFirstFollow = ConflictKind("FIRST/FOLLOW")

	// ConflictEmptyEmpty means two alternatives can derive the empty string.
	ConflictEmptyEmpty = ConflictKind("EMPTY/EMPTY")
)

// Conflict is a pair of alternatives of a non-terminal that a single token of lookahead can't tell apart.
type Conflict struct {
	Kind        ConflictKind
	NonTerminal string

	// Alternatives holds the 0-based indices of the alternatives in conflict. For a FIRST/FOLLOW conflict,
	// the first one is the nullable alternative.
	Alternatives [2]int

	// Kinds holds the overlapping token kinds. It is empty for an EMPTY/EMPTY conflict.
	Kinds []token.Kind
}

func (c *Conflict) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %v conflict between alternatives %v and %v", c.NonTerminal, c.Kind, c.Alternatives[0]+1, c.Alternatives[1]+1)
	if len(c.Kinds) > 0 {
		fmt.Fprintf(&b, " on %v", c.Kinds[0])
		for _, k := range c.Kinds[1:] {
			fmt.Fprintf(&b, ", %v", k)
		}
	}
	return b.String()
}

// Analysis holds the FIRST and FOLLOW sets of a grammar and the conflicts found with them.
// An Analysis is immutable and can be shared between goroutines.
type Analysis struct {
	g         *Grammar
	first     *firstSet
	follow    *followSet
	altFirst  map[string][]*firstEntry
	conflicts []*Conflict
}

func Analyze(g *Grammar) (*Analysis, error) {
	first, err := genFirstSet(g)
	if err != nil {
		return nil, err
	}
	follow, err := genFollowSet(g, first)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		g:        g,
		first:    first,
		follow:   follow,
		altFirst: map[string][]*firstEntry{},
	}
	for _, name := range g.order {
		alts := g.prods[name].Alternatives
		entries := make([]*firstEntry, len(alts))
		for i, alt := range alts {
			e, err := first.find(alt, 0)
			if err != nil {
				return nil, err
			}
			entries[i] = e
		}
		a.altFirst[name] = entries
	}
	for _, name := range g.order {
		a.conflicts = append(a.conflicts, a.findConflicts(name)...)
	}

	log.V(1).Infof("analyzed a grammar; non-terminals: %v, conflicts: %v", len(g.order), len(a.conflicts))
	return a, nil
}

func (a *Analysis) findConflicts(name string) []*Conflict {
	var conflicts []*Conflict
	entries := a.altFirst[name]
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if kinds := intersect(entries[i].symbols, entries[j].has); len(kinds) > 0 {
				conflicts = append(conflicts, &Conflict{
					Kind:         ConflictFirstFirst,
					NonTerminal:  name,
					Alternatives: [2]int{i, j},
					Kinds:        kinds,
				})
			}
			if entries[i].empty && entries[j].empty {
				conflicts = append(conflicts, &Conflict{
					Kind:         ConflictEmptyEmpty,
					NonTerminal:  name,
					Alternatives: [2]int{i, j},
				})
			}
		}
	}

	flw := a.follow.set[name]
	for i, e := range entries {
		if !e.empty {
			continue
		}
		for j, other := range entries {
			if j == i {
				continue
			}
			if kinds := intersect(other.symbols, flw.has); len(kinds) > 0 {
				conflicts = append(conflicts, &Conflict{
					Kind:         ConflictFirstFollow,
					NonTerminal:  name,
					Alternatives: [2]int{i, j},
					Kinds:        kinds,
				})
			}
		}
	}
	return conflicts
}

func intersect(set map[token.Kind]struct{}, has func(token.Kind) bool) []token.Kind {
	common := map[token.Kind]struct{}{}
	for k := range set {
		if has(k) {
			common[k] = struct{}{}
		}
	}
	return sortKinds(common)
}

func (a *Analysis) Grammar() *Grammar {
	return a.g
}

// First returns the FIRST set of a non-terminal and whether it is nullable.
func (a *Analysis) First(name string) ([]token.Kind, bool) {
	e := a.first.findByName(name)
	if e == nil {
		return nil, false
	}
	return e.kinds(), e.empty
}

// AlternativeFirst returns the FIRST set of the i-th alternative of a non-terminal and whether it is nullable.
func (a *Analysis) AlternativeFirst(name string, i int) ([]token.Kind, bool) {
	entries, ok := a.altFirst[name]
	if !ok || i < 0 || i >= len(entries) {
		return nil, false
	}
	return entries[i].kinds(), entries[i].empty
}

// Follow returns the FOLLOW set of a non-terminal. The end of input is token.EOF.
func (a *Analysis) Follow(name string) []token.Kind {
	e, ok := a.follow.set[name]
	if !ok {
		return nil
	}
	return e.kinds()
}

func (a *Analysis) Conflicts() []*Conflict {
	cs := make([]*Conflict, len(a.conflicts))
	copy(cs, a.conflicts)
	return cs
}

// BacktrackFree reports whether every choice between alternatives is decided by a single token of lookahead.
func (a *Analysis) BacktrackFree() bool {
	return len(a.conflicts) == 0
}

func kindNames(kinds []token.Kind) []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}

func (a *Analysis) Report() *gspec.Report {
	used := map[token.Kind]struct{}{}
	for _, name := range a.g.order {
		for _, alt := range a.g.prods[name].Alternatives {
			for _, sym := range alt {
				if sym.IsTerminal() {
					used[sym.Kind()] = struct{}{}
				}
			}
		}
	}
	var terms []*gspec.Terminal
	for _, k := range sortKinds(used) {
		repr, _ := k.Repr()
		terms = append(terms, &gspec.Terminal{
			Number: int(k),
			Name:   k.String(),
			Repr:   repr,
		})
	}

	var nonTerms []*gspec.NonTerminal
	var prods []*gspec.Production
	for i, name := range a.g.order {
		fst, nullable := a.First(name)
		nt := &gspec.NonTerminal{
			Number:   i + 1,
			Name:     name,
			First:    kindNames(fst),
			Nullable: nullable,
			Follow:   kindNames(a.Follow(name)),
		}
		if o, ok := a.g.Origin(name); ok {
			nt.Origin = string(o.Kind)
			nt.Base = o.Base
		}
		nonTerms = append(nonTerms, nt)

		for j, alt := range a.g.prods[name].Alternatives {
			rhs := make([]string, len(alt))
			for k, sym := range alt {
				rhs[k] = sym.String()
			}
			altFst, altNullable := a.AlternativeFirst(name, j)
			prods = append(prods, &gspec.Production{
				Number:      len(prods) + 1,
				LHS:         name,
				Alternative: j,
				RHS:         rhs,
				First:       kindNames(altFst),
				Nullable:    altNullable,
			})
		}
	}

	var conflicts []*gspec.Conflict
	for _, c := range a.conflicts {
		conflicts = append(conflicts, &gspec.Conflict{
			Kind:         string(c.Kind),
			NonTerminal:  c.NonTerminal,
			Alternatives: []int{c.Alternatives[0], c.Alternatives[1]},
			Symbols:      kindNames(c.Kinds),
		})
	}

	return &gspec.Report{
		Start:         a.g.start,
		BacktrackFree: a.BacktrackFree(),
		Terminals:     terms,
		NonTerminals:  nonTerms,
		Productions:   prods,
		Conflicts:     conflicts,
	}
}
