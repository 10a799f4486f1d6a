package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/tenkan/token"
)

type firstEntry struct {
	symbols map[token.Kind]struct{}
	empty   bool
}

func newFirstEntry() *firstEntry {
	return &firstEntry{
		symbols: map[token.Kind]struct{}{},
		empty:   false,
	}
}

func (e *firstEntry) add(kind token.Kind) bool {
	if _, ok := e.symbols[kind]; ok {
		return false
	}
	e.symbols[kind] = struct{}{}
	return true
}

func (e *firstEntry) addEmpty() bool {
	if !e.empty {
		e.empty = true
		return true
	}
	return false
}

func (e *firstEntry) mergeExceptEmpty(target *firstEntry) bool {
	if target == nil {
		return false
	}
	changed := false
	for kind := range target.symbols {
		added := e.add(kind)
		if added {
			changed = true
		}
	}
	return changed
}

func (e *firstEntry) has(kind token.Kind) bool {
	_, ok := e.symbols[kind]
	return ok
}

func (e *firstEntry) kinds() []token.Kind {
	return sortKinds(e.symbols)
}

func sortKinds(set map[token.Kind]struct{}) []token.Kind {
	kinds := make([]token.Kind, 0, len(set))
	for k := range set {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i] < kinds[j]
	})
	return kinds
}

type firstSet struct {
	set map[string]*firstEntry
}

func newFirstSet(g *Grammar) *firstSet {
	fst := &firstSet{
		set: map[string]*firstEntry{},
	}
	for _, name := range g.order {
		fst.set[name] = newFirstEntry()
	}
	return fst
}

// find returns the FIRST set of the suffix of an alternative beginning at head.
func (fst *firstSet) find(alt Alternative, head int) (*firstEntry, error) {
	entry := newFirstEntry()
	if len(alt) <= head {
		entry.addEmpty()
		return entry, nil
	}
	for _, sym := range alt[head:] {
		if sym.IsTerminal() {
			entry.add(sym.Kind())
			return entry, nil
		}

		e := fst.findByName(sym.Name())
		if e == nil {
			return nil, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
		}
		for k := range e.symbols {
			entry.add(k)
		}
		if !e.empty {
			return entry, nil
		}
	}
	entry.addEmpty()
	return entry, nil
}

func (fst *firstSet) findByName(name string) *firstEntry {
	return fst.set[name]
}

func genFirstSet(g *Grammar) (*firstSet, error) {
	first := newFirstSet(g)
	for {
		more := false
		for _, name := range g.order {
			e := first.findByName(name)
			for _, alt := range g.prods[name].Alternatives {
				changed, err := genAltFirstEntry(first, e, alt)
				if err != nil {
					return nil, err
				}
				if changed {
					more = true
				}
			}
		}
		if !more {
			break
		}
	}
	return first, nil
}

func genAltFirstEntry(first *firstSet, acc *firstEntry, alt Alternative) (bool, error) {
	if alt.IsEmpty() {
		return acc.addEmpty(), nil
	}

	changed := false
	for _, sym := range alt {
		if sym.IsTerminal() {
			if acc.add(sym.Kind()) {
				changed = true
			}
			return changed, nil
		}

		e := first.findByName(sym.Name())
		if e == nil {
			return false, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
		}
		if acc.mergeExceptEmpty(e) {
			changed = true
		}
		if !e.empty {
			return changed, nil
		}
	}
	if acc.addEmpty() {
		changed = true
	}
	return changed, nil
}
