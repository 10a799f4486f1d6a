package driver

import (
	"fmt"
	"sort"

	log "github.com/golang/glog"
	"github.com/nihei9/tenkan/compressor"
	"github.com/nihei9/tenkan/grammar"
	"github.com/nihei9/tenkan/token"
)

// PredictiveParser parses a backtrack-free grammar with a single token of lookahead. It never retries, so
// parsing takes time linear in the number of tokens.
// A PredictiveParser is immutable and can be used by multiple goroutines at once.
type PredictiveParser struct {
	g      *grammar.Grammar
	ntNums map[string]int
	alts   [][]grammar.Alternative

	// table maps a pair of a non-terminal number and a lookahead kind to an alternative number + 1.
	// 0 means no alternative can be selected.
	table  compressor.Table
	config *parserConfig
}

const noAlternative = 0

// kindCount is the column count of a parsing table. The columns cover every kind including EOF.
const kindCount = int(token.EOF) + 1

func NewPredictiveParser(g *grammar.Grammar, opts ...ParserOption) (*PredictiveParser, error) {
	config, err := newParserConfig(opts)
	if err != nil {
		return nil, err
	}
	a, err := grammar.Analyze(g)
	if err != nil {
		return nil, err
	}
	if !a.BacktrackFree() {
		conflicts := a.Conflicts()
		if !config.allowConflicts {
			return nil, fmt.Errorf("%w: %v conflict(s); the first one is %v", ErrNotBacktrackFree, len(conflicts), conflicts[0])
		}
		for _, c := range conflicts {
			log.Warningf("the first alternative wins; %v", c)
		}
	}

	nts := g.NonTerminals()
	orig, err := compressor.NewOriginalTable(len(nts), kindCount, noAlternative)
	if err != nil {
		return nil, err
	}
	p := &PredictiveParser{
		g:      g,
		ntNums: make(map[string]int, len(nts)),
		alts:   make([][]grammar.Alternative, len(nts)),
		config: config,
	}
	for num, nt := range nts {
		p.ntNums[nt] = num
		p.alts[num] = g.Alternatives(nt)
		for k, alt := range genPredictiveRow(a, nt, len(p.alts[num])) {
			orig.Set(num, int(k), alt+1)
		}
	}
	p.table = compressor.Compress(orig)

	if log.V(1) {
		rowCount, colCount := p.table.OriginalTableSize()
		log.Infof("generated a predictive parsing table; non-terminals: %v, entries: %v (compressed: %v, %T)",
			rowCount, rowCount*colCount, p.table.StoredSize(), p.table)
	}

	return p, nil
}

// genPredictiveRow maps each lookahead kind to the alternative it selects. A token kind in the FIRST set of an
// alternative selects it. Otherwise, a nullable alternative is selected by the kinds that may follow
// the non-terminal and by the end of input. When entries collide, the alternative declared first keeps them.
func genPredictiveRow(a *grammar.Analysis, nt string, altCount int) map[token.Kind]int {
	row := map[token.Kind]int{}
	set := func(k token.Kind, alt int) {
		if _, ok := row[k]; ok {
			return
		}
		row[k] = alt
	}

	for i := 0; i < altCount; i++ {
		fst, _ := a.AlternativeFirst(nt, i)
		for _, k := range fst {
			set(k, i)
		}
	}
	for i := 0; i < altCount; i++ {
		_, nullable := a.AlternativeFirst(nt, i)
		if !nullable {
			continue
		}
		for _, k := range a.Follow(nt) {
			set(k, i)
		}
		set(token.EOF, i)
	}
	return row
}

func (p *PredictiveParser) Parse(toks []*token.Token) (*Node, error) {
	s := &predictiveState{
		p:    p,
		toks: toks,
	}
	tree, err := s.parseNonTerminal(p.g.Start(), 0)
	if err != nil {
		return nil, err
	}
	if s.pos < len(toks) {
		return nil, newSyntaxError(toks, s.pos, []token.Kind{token.EOF})
	}
	return tree, nil
}

type predictiveState struct {
	p    *PredictiveParser
	toks []*token.Token
	pos  int
}

func (s *predictiveState) peek() token.Kind {
	if s.pos >= len(s.toks) {
		return token.EOF
	}
	return s.toks[s.pos].Kind
}

func (s *predictiveState) parseNonTerminal(name string, depth int) (*Node, error) {
	if depth >= s.p.config.maxDepth {
		return nil, fmt.Errorf("%w: the nesting exceeded %v", ErrResourceExhausted, s.p.config.maxDepth)
	}

	ntNum := s.p.ntNums[name]
	entry, err := s.p.table.Lookup(ntNum, int(s.peek()))
	if err != nil {
		return nil, err
	}
	if entry == noAlternative {
		return nil, newSyntaxError(s.toks, s.pos, s.p.selectableKinds(ntNum))
	}

	alt := s.p.alts[ntNum][entry-1]
	node := &Node{
		KindName: name,
		Children: make([]*Node, 0, len(alt)),
	}
	for _, sym := range alt {
		if sym.IsTerminal() {
			if s.peek() != sym.Kind() {
				return nil, newSyntaxError(s.toks, s.pos, []token.Kind{sym.Kind()})
			}
			node.Children = append(node.Children, newLeaf(s.toks[s.pos]))
			s.pos++
			continue
		}
		child, err := s.parseNonTerminal(sym.Name(), depth+1)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// selectableKinds returns the lookahead kinds that select some alternative of a non-terminal, in ascending order.
func (p *PredictiveParser) selectableKinds(ntNum int) []token.Kind {
	var kinds []token.Kind
	for k := 0; k < kindCount; k++ {
		entry, err := p.table.Lookup(ntNum, k)
		if err != nil || entry == noAlternative {
			continue
		}
		kinds = append(kinds, token.Kind(k))
	}
	return kinds
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
