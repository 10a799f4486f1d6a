package driver

import (
	"fmt"

	log "github.com/golang/glog"
	"github.com/nihei9/tenkan/grammar"
	"github.com/nihei9/tenkan/token"
)

type Parser interface {
	Parse(toks []*token.Token) (*Node, error)
}

// recursionTails holds the token kinds that can begin what a left-recursive cycle leaves to match after
// the recursive occurrence. Every nested re-entry of the cycle at the same position must consume one of them
// later, so their count bounds the useful nesting. When a cycle may consume nothing, the bound falls back to
// the number of remaining tokens.
type recursionTails struct {
	kinds     map[token.Kind]struct{}
	unbounded bool
}

// BacktrackingParser matches tokens against any grammar, including left-recursive and ambiguous ones.
// It explores alternatives in declared order and returns the first complete derivation it finds.
// A BacktrackingParser is immutable and can be used by multiple goroutines at once.
type BacktrackingParser struct {
	g      *grammar.Grammar
	alts   map[string][]grammar.Alternative
	tails  map[string]*recursionTails
	config *parserConfig
}

func NewBacktrackingParser(g *grammar.Grammar, opts ...ParserOption) (*BacktrackingParser, error) {
	config, err := newParserConfig(opts)
	if err != nil {
		return nil, err
	}
	a, err := grammar.Analyze(g)
	if err != nil {
		return nil, err
	}

	alts := map[string][]grammar.Alternative{}
	for _, nt := range g.NonTerminals() {
		alts[nt] = g.Alternatives(nt)
	}

	return &BacktrackingParser{
		g:      g,
		alts:   alts,
		tails:  genRecursionTails(a, alts),
		config: config,
	}, nil
}

type leftEdge struct {
	from string
	to   string
	rest grammar.Alternative
}

// genRecursionTails finds the left-recursive non-terminals. A symbol is at the left of an alternative when
// only nullable symbols precede it.
func genRecursionTails(a *grammar.Analysis, alts map[string][]grammar.Alternative) map[string]*recursionTails {
	nts := a.Grammar().NonTerminals()
	nullable := func(name string) bool {
		_, empty := a.First(name)
		return empty
	}

	var edges []*leftEdge
	for _, nt := range nts {
		for _, alt := range alts[nt] {
			for i, sym := range alt {
				if sym.IsTerminal() {
					break
				}
				edges = append(edges, &leftEdge{
					from: nt,
					to:   sym.Name(),
					rest: alt[i+1:],
				})
				if !nullable(sym.Name()) {
					break
				}
			}
		}
	}

	reach := func(from string, follow func(e *leftEdge) bool) map[string]struct{} {
		reached := map[string]struct{}{}
		stack := []string{from}
		for len(stack) > 0 {
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, e := range edges {
				if e.from != name || !follow(e) {
					continue
				}
				if _, ok := reached[e.to]; ok {
					continue
				}
				reached[e.to] = struct{}{}
				stack = append(stack, e.to)
			}
		}
		return reached
	}
	reachable := map[string]map[string]struct{}{}
	for _, nt := range nts {
		reachable[nt] = reach(nt, func(e *leftEdge) bool {
			return true
		})
	}

	tails := map[string]*recursionTails{}
	for _, nt := range nts {
		if _, ok := reachable[nt][nt]; !ok {
			continue
		}
		inCycle := func(name string) bool {
			if name == nt {
				return true
			}
			_, there := reachable[nt][name]
			_, back := reachable[name][nt]
			return there && back
		}

		t := &recursionTails{
			kinds: map[token.Kind]struct{}{},
		}
		for _, e := range edges {
			if !inCycle(e.from) || !inCycle(e.to) {
				continue
			}
			for _, k := range firstOfSequence(a, e.rest) {
				t.kinds[k] = struct{}{}
			}
		}
		emptyCycle := reach(nt, func(e *leftEdge) bool {
			if !inCycle(e.from) || !inCycle(e.to) {
				return false
			}
			for _, sym := range e.rest {
				if sym.IsTerminal() || !nullable(sym.Name()) {
					return false
				}
			}
			return true
		})
		if _, ok := emptyCycle[nt]; ok {
			t.unbounded = true
		}
		tails[nt] = t

		log.V(2).Infof("%v is left-recursive; tail kinds: %v, unbounded: %v", nt, len(t.kinds), t.unbounded)
	}
	return tails
}

func firstOfSequence(a *grammar.Analysis, seq grammar.Alternative) []token.Kind {
	var kinds []token.Kind
	for _, sym := range seq {
		if sym.IsTerminal() {
			return append(kinds, sym.Kind())
		}
		fst, nullable := a.First(sym.Name())
		kinds = append(kinds, fst...)
		if !nullable {
			return kinds
		}
	}
	return kinds
}

// attempt is the outcome of matching a symbol together with everything that follows it. A failed attempt carries
// the furthest position where a terminal failed to match, or -1 when no terminal was tried.
type attempt struct {
	accepted bool
	furthest int
}

func failed() attempt {
	return attempt{
		furthest: -1,
	}
}

func (a attempt) merge(b attempt) attempt {
	if b.accepted {
		return b
	}
	if b.furthest > a.furthest {
		a.furthest = b.furthest
	}
	return a
}

// choicePoint is an alternative being tried at a position. The parser keeps a trail of the choice points it can
// still resume, including those of completed non-terminals preceding the current symbol.
type choicePoint struct {
	nonTerminal string
	pos         int
	alt         int
}

type activeKey struct {
	nonTerminal string
	pos         int
}

type backtrackingState struct {
	p          *BacktrackingParser
	toks       []*token.Token
	trail      []choicePoint
	depth      int
	active     map[activeKey]int
	tailCounts map[string][]int
	steps      int
	furthest   int
	expected   map[token.Kind]struct{}
	err        error
}

func (p *BacktrackingParser) Parse(toks []*token.Token) (*Node, error) {
	s := &backtrackingState{
		p:          p,
		toks:       toks,
		active:     map[activeKey]int{},
		tailCounts: map[string][]int{},
		furthest:   -1,
		expected:   map[token.Kind]struct{}{},
	}

	var tree *Node
	result := s.matchNonTerminal(p.g.Start(), 0, func(node *Node, end int) attempt {
		if end < len(toks) {
			return s.fail(end, token.EOF)
		}
		tree = node
		return attempt{
			accepted: true,
		}
	})
	if s.err != nil {
		return nil, s.err
	}

	log.V(1).Infof("backtracking parser finished; tokens: %v, steps: %v, accepted: %v", len(toks), s.steps, result.accepted)

	if !result.accepted {
		pos := result.furthest
		if pos < 0 {
			pos = 0
		}
		return nil, newSyntaxError(toks, pos, sortKinds(s.expected))
	}
	return tree, nil
}

func (s *backtrackingState) fail(pos int, expected token.Kind) attempt {
	if pos > s.furthest {
		s.furthest = pos
		s.expected = map[token.Kind]struct{}{}
	}
	if pos == s.furthest {
		s.expected[expected] = struct{}{}
	}
	return attempt{
		furthest: pos,
	}
}

func (s *backtrackingState) step() bool {
	if s.err != nil {
		return false
	}
	s.steps++
	if s.steps > s.p.config.maxSteps {
		s.err = fmt.Errorf("%w: the parser tried more than %v steps", ErrResourceExhausted, s.p.config.maxSteps)
		return false
	}
	return true
}

// curtailed reports whether a left-recursive non-terminal is already nested at a position as deeply as
// any derivation of the remaining tokens can use.
func (s *backtrackingState) curtailed(name string, pos int) bool {
	t, ok := s.p.tails[name]
	if !ok {
		return false
	}
	var bound int
	if t.unbounded {
		bound = len(s.toks) - pos + 1
	} else {
		counts, ok := s.tailCounts[name]
		if !ok {
			counts = make([]int, len(s.toks)+1)
			for i := len(s.toks) - 1; i >= 0; i-- {
				counts[i] = counts[i+1]
				if _, ok := t.kinds[s.toks[i].Kind]; ok {
					counts[i]++
				}
			}
			s.tailCounts[name] = counts
		}
		bound = counts[pos] + 1
	}
	return s.active[activeKey{name, pos}] >= bound
}

// matchNonTerminal tries the alternatives of a non-terminal in order. k receives each match and decides
// whether the whole parse succeeds; when it doesn't, the search resumes with the next way to match.
func (s *backtrackingState) matchNonTerminal(name string, pos int, k func(node *Node, end int) attempt) attempt {
	if !s.step() {
		return failed()
	}
	if s.curtailed(name, pos) {
		log.V(3).Infof("curtailed %v at %v", name, pos)
		return failed()
	}
	if s.depth >= s.p.config.maxDepth {
		s.err = fmt.Errorf("%w: the nesting exceeded %v", ErrResourceExhausted, s.p.config.maxDepth)
		return failed()
	}

	key := activeKey{name, pos}
	s.active[key]++
	s.depth++
	result := failed()
	for i, alt := range s.p.alts[name] {
		s.trail = append(s.trail, choicePoint{
			nonTerminal: name,
			pos:         pos,
			alt:         i,
		})
		log.V(3).Infof("try %v alternative %v at %v; depth: %v, choice points: %v", name, i, pos, s.depth, len(s.trail))

		att := s.matchSequence(alt, 0, pos, nil, func(children []*Node, end int) attempt {
			// The non-terminal is complete here. The continuation matches its siblings and the symbols after
			// its ancestors, which aren't nested in it.
			s.active[key]--
			s.depth--
			att := k(&Node{
				KindName: name,
				Children: children,
			}, end)
			s.depth++
			s.active[key]++
			return att
		})
		s.trail = s.trail[:len(s.trail)-1]
		result = result.merge(att)
		if result.accepted || s.err != nil {
			break
		}
	}
	s.depth--
	s.active[key]--
	return result
}

func (s *backtrackingState) matchSequence(alt grammar.Alternative, i int, pos int, children []*Node, k func(children []*Node, end int) attempt) attempt {
	if i >= len(alt) {
		return k(children, pos)
	}
	if !s.step() {
		return failed()
	}

	sym := alt[i]
	if sym.IsTerminal() {
		if pos >= len(s.toks) || s.toks[pos].Kind != sym.Kind() {
			return s.fail(pos, sym.Kind())
		}
		return s.matchSequence(alt, i+1, pos+1, appendChild(children, newLeaf(s.toks[pos])), k)
	}
	return s.matchNonTerminal(sym.Name(), pos, func(node *Node, end int) attempt {
		return s.matchSequence(alt, i+1, end, appendChild(children, node), k)
	})
}

// appendChild doesn't share the backing array with children because sibling branches of the search extend
// the same prefix.
func appendChild(children []*Node, node *Node) []*Node {
	c := make([]*Node, len(children), len(children)+1)
	copy(c, children)
	return append(c, node)
}
