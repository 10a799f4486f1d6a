package grammar

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/golang/glog"
	verr "github.com/nihei9/tenkan/error"
)

const defaultMaxFactoringIterations = 16

type factorConfig struct {
	maxIterations int
	maxSize       int
}

type FactorOption func(config *factorConfig)

// MaxIterations limits how many times LeftFactor repeats the factoring. A value less than 1 is ignored.
func MaxIterations(n int) FactorOption {
	return func(config *factorConfig) {
		if n < 1 {
			return
		}
		config.maxIterations = n
	}
}

// MaxFactoringSize limits the size of the grammar the inlining and the elimination of reappearing left recursion
// may build (see Grammar.Size). When the next iteration would exceed it, LeftFactor stops. By default, the limit is
// proportional to the size of the input grammar. A value less than 1 is ignored.
func MaxFactoringSize(n int) FactorOption {
	return func(config *factorConfig) {
		if n < 1 {
			return
		}
		config.maxSize = n
	}
}

// FactorReport describes the outcome of LeftFactor.
type FactorReport struct {
	// Complete is true when the resulting grammar is backtrack-free.
	Complete bool

	Iterations int

	// Conflicts holds the conflicts remaining in the resulting grammar.
	Conflicts []*Conflict

	// Inlined holds the non-terminals substituted into the alternatives beginning with them.
	Inlined []string

	// Pruned holds the non-terminals removed because the start symbol no longer reaches them.
	Pruned []string

	// SizeLimitReached is true when LeftFactor stopped because the next iteration would exceed the size limit.
	SizeLimitReached bool
}

// Warning returns an error wrapping ErrIncompleteFactoring when the factoring is incomplete, and nil otherwise.
func (r *FactorReport) Warning() error {
	if r.Complete {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%v conflict(s) remain after %v iteration(s)", len(r.Conflicts), r.Iterations)
	if r.SizeLimitReached {
		fmt.Fprintf(&b, "; the grammar reached the size limit")
	}
	for _, c := range r.Conflicts {
		fmt.Fprintf(&b, "\n  %v", c)
	}
	return &verr.SpecError{
		Cause:  ErrIncompleteFactoring,
		Detail: b.String(),
	}
}

// LeftFactor returns an equivalent grammar in which no two alternatives of a non-terminal share a prefix.
// A group of alternatives sharing a first symbol is replaced with `π T`, where π is the longest common prefix
// of the group and T is a new non-terminal whose alternatives are the remainders.
//
// Common prefixes hidden behind non-terminals are exposed by inlining the leading non-terminals of conflicting
// alternatives, and the factoring is repeated until the grammar becomes backtrack-free, an iteration changes
// nothing, the iteration budget runs out, or the next iteration would exceed the size limit. The input must not be
// left-recursive; left recursion appearing through inlining is eliminated again. When it cannot be eliminated,
// the factoring stops. In every case, the result is the last factored grammar, and the returned report tells
// whether the factoring is complete.
func LeftFactor(g *Grammar, opts ...FactorOption) (*Grammar, *FactorReport, error) {
	config := &factorConfig{
		maxIterations: defaultMaxFactoringIterations,
	}
	for _, opt := range opts {
		opt(config)
	}

	limit := config.maxSize
	if limit == 0 {
		limit = defaultSizeLimit(g.Size())
	}

	report := &FactorReport{}
	inlined := map[string]struct{}{}
	cur := g
	for {
		b := cur.Builder()
		factorAll(b)
		next, err := b.Build()
		if err != nil {
			return nil, nil, err
		}
		report.Iterations++

		a, err := Analyze(next)
		if err != nil {
			return nil, nil, err
		}
		if a.BacktrackFree() {
			report.Complete = true
			report.Conflicts = nil
			log.V(1).Infof("left factoring completed; iterations: %v", report.Iterations)
			return next, report, nil
		}
		report.Conflicts = a.Conflicts()
		if report.Iterations >= config.maxIterations {
			log.Warningf("left factoring reached the iteration limit; iterations: %v, conflicts: %v", report.Iterations, len(report.Conflicts))
			return next, report, nil
		}

		b = next.Builder()
		names, ok := inlineConflictingHeads(b, a, limit)
		if !ok {
			report.SizeLimitReached = true
			log.Warningf("left factoring reached the size limit; iterations: %v, size: %v, limit: %v", report.Iterations, next.Size(), limit)
			return next, report, nil
		}
		if len(names) == 0 {
			log.V(1).Infof("left factoring cannot make progress; conflicts: %v", len(report.Conflicts))
			return next, report, nil
		}
		pruned := b.prune()
		recursive := hasLeftRecursion(b)
		inlinedGrammar, err := b.Build()
		if err != nil {
			return nil, nil, err
		}
		if recursive {
			inlinedGrammar, err = EliminateLeftRecursion(inlinedGrammar, MaxEliminationSize(limit))
			if err != nil {
				if errors.Is(err, ErrGrammarTooLarge) {
					report.SizeLimitReached = true
					log.Warningf("left factoring reached the size limit; iterations: %v, limit: %v", report.Iterations, limit)
					return next, report, nil
				}
				if errors.Is(err, ErrUnfixableLeftRecursion) {
					log.Warningf("left factoring cannot make progress; the inlining makes left recursion that cannot be eliminated: %v", err)
					return next, report, nil
				}
				return nil, nil, err
			}
		}

		for _, name := range names {
			if _, ok := inlined[name]; ok {
				continue
			}
			inlined[name] = struct{}{}
			report.Inlined = append(report.Inlined, name)
		}
		report.Pruned = append(report.Pruned, pruned...)
		cur = inlinedGrammar
	}
}

// factorAll factors every non-terminal, including those it creates, until no two alternatives of
// a non-terminal share a first symbol.
func factorAll(b *Builder) {
	worklist := b.nonTerminals()
	for len(worklist) > 0 {
		name := worklist[0]
		worklist = worklist[1:]
		worklist = append(worklist, factorNonTerminal(b, name)...)
	}
}

// factorNonTerminal factors the alternatives of a non-terminal once and returns the non-terminals it creates.
func factorNonTerminal(b *Builder, name string) []string {
	alts := dedupAlternatives(b.alternatives(name))

	var keys []Symbol
	groups := map[Symbol][]Alternative{}
	var newAlts []Alternative
	for _, alt := range alts {
		if alt.IsEmpty() {
			continue
		}
		if _, ok := groups[alt[0]]; !ok {
			keys = append(keys, alt[0])
		}
		groups[alt[0]] = append(groups[alt[0]], alt)
	}

	var created []string
	factored := map[Symbol]Alternative{}
	for _, key := range keys {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		prefix := commonPrefix(group)
		tail := b.FreshNonTerminal(name)
		b.SetOrigin(tail, Origin{
			Kind: OriginLeftFactoring,
			Base: name,
		})
		tailAlts := make([]Alternative, 0, len(group))
		for _, alt := range group {
			tailAlts = append(tailAlts, alt[len(prefix):])
		}
		alt := make(Alternative, 0, len(prefix)+1)
		alt = append(alt, prefix...)
		alt = append(alt, NewNonTerminal(tail))
		factored[key] = alt
		b.SetProduction(tail, tailAlts)
		created = append(created, tail)

		log.V(2).Infof("factored %v out of %v; tail: %v", Alternative(prefix), name, tail)
	}
	if len(created) == 0 && len(alts) == len(b.alternatives(name)) {
		return nil
	}

	placed := map[Symbol]struct{}{}
	for _, alt := range alts {
		if alt.IsEmpty() {
			newAlts = append(newAlts, alt)
			continue
		}
		f, ok := factored[alt[0]]
		if !ok {
			newAlts = append(newAlts, alt)
			continue
		}
		if _, ok := placed[alt[0]]; ok {
			continue
		}
		placed[alt[0]] = struct{}{}
		newAlts = append(newAlts, f)
	}
	b.SetProduction(name, newAlts)
	return created
}

func commonPrefix(alts []Alternative) Alternative {
	prefix := alts[0]
	for _, alt := range alts[1:] {
		n := 0
		for n < len(prefix) && n < len(alt) && prefix[n] == alt[n] {
			n++
		}
		prefix = prefix[:n]
	}
	return prefix
}

// dedupAlternatives removes repeated alternatives. They add nothing to the language but ambiguity.
func dedupAlternatives(alts []Alternative) []Alternative {
	var deduped []Alternative
	for _, alt := range alts {
		dup := false
		for _, d := range deduped {
			if d.Equal(alt) {
				dup = true
				break
			}
		}
		if !dup {
			deduped = append(deduped, alt)
		}
	}
	return deduped
}

// inlineConflictingHeads expands the leading non-terminals of alternatives involved in FIRST/FIRST conflicts
// and returns the expanded non-terminals. When the expansions would make the grammar larger than limit, it
// changes nothing and returns false.
func inlineConflictingHeads(b *Builder, a *Analysis, limit int) ([]string, bool) {
	targets := map[string]map[int]struct{}{}
	for _, c := range a.conflicts {
		if c.Kind != ConflictFirstFirst {
			continue
		}
		alts := b.alternatives(c.NonTerminal)
		for _, i := range c.Alternatives {
			alt := alts[i]
			if alt.IsEmpty() || !alt[0].IsNonTerminal() || alt[0].Name() == c.NonTerminal {
				continue
			}
			if _, ok := targets[c.NonTerminal]; !ok {
				targets[c.NonTerminal] = map[int]struct{}{}
			}
			targets[c.NonTerminal][i] = struct{}{}
		}
	}

	size := b.size()
	for name, indices := range targets {
		alts := b.alternatives(name)
		for i := range indices {
			alt := alts[i]
			for _, headAlt := range a.g.prods[alt[0].Name()].Alternatives {
				size += len(headAlt) + len(alt)
			}
			size -= len(alt) + 1
		}
	}
	if size > limit {
		return nil, false
	}

	var inlined []string
	seen := map[string]struct{}{}
	for _, name := range b.nonTerminals() {
		indices, ok := targets[name]
		if !ok {
			continue
		}
		var newAlts []Alternative
		for i, alt := range b.alternatives(name) {
			if _, ok := indices[i]; !ok {
				newAlts = append(newAlts, alt)
				continue
			}
			head := alt[0].Name()
			for _, headAlt := range a.g.prods[head].Alternatives {
				expanded := make(Alternative, 0, len(headAlt)+len(alt)-1)
				expanded = append(expanded, headAlt...)
				expanded = append(expanded, alt[1:]...)
				newAlts = append(newAlts, expanded)
			}
			if _, ok := seen[head]; !ok {
				seen[head] = struct{}{}
				inlined = append(inlined, head)
			}
			log.V(2).Infof("inlined %v into %v", head, name)
		}
		b.SetProduction(name, newAlts)
	}
	return inlined, true
}
