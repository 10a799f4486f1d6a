package grammar

import (
	"fmt"
	"strings"

	log "github.com/golang/glog"
	verr "github.com/nihei9/tenkan/error"
)

// maxEliminationRounds limits how many times the ordered substitution runs over the grammar.
const maxEliminationRounds = 8

type eliminationConfig struct {
	eager   bool
	maxSize int
}

type EliminationOption func(config *eliminationConfig)

// MaxEliminationSize limits the size of the grammar EliminateLeftRecursion builds (see Grammar.Size). By default,
// the limit is proportional to the size of the input grammar. A value less than 1 is ignored.
func MaxEliminationSize(n int) EliminationOption {
	return func(config *eliminationConfig) {
		if n < 1 {
			return
		}
		config.maxSize = n
	}
}

// EagerSubstitution makes EliminateLeftRecursion substitute every earlier non-terminal appearing at the head of
// an alternative, as the textbook algorithm does. By default, a non-terminal is substituted only when it can
// derive a sentential form beginning with the non-terminal being processed, which keeps the rest of the grammar
// as the user wrote it.
func EagerSubstitution() EliminationOption {
	return func(config *eliminationConfig) {
		config.eager = true
	}
}

// EliminateLeftRecursion returns an equivalent grammar without left recursion.
//
// The non-terminals are processed in declaration order. For each A_i, alternatives beginning with an earlier
// A_j are expanded by A_j's alternatives, and then the direct recursion
//
//	A -> A β1 | ... | A βn | α1 | ... | αm
//
// is rewritten into
//
//	A  -> α1 A' | ... | αm A'
//	A' -> β1 A' | ... | βn A' | ε
//
// An alternative `A -> A` derives nothing new and is dropped. When A has recursive alternatives but no
// non-recursive one, the language of A is empty and the function fails with ErrUnfixableLeftRecursion.
//
// When a base α is ε, the alternatives of A' may begin with an earlier non-terminal, and left recursion can
// reappear through A'. The ordered substitution then runs again over all non-terminals, including the new
// ones, until no non-terminal begins with itself. If that doesn't happen within a few rounds, the function
// fails with ErrUnfixableLeftRecursion. It fails with ErrGrammarTooLarge when the substitutions make the grammar
// larger than the size limit.
func EliminateLeftRecursion(g *Grammar, opts ...EliminationOption) (*Grammar, error) {
	config := &eliminationConfig{}
	for _, opt := range opts {
		opt(config)
	}

	b := g.Builder()
	limit := config.maxSize
	if limit == 0 {
		limit = defaultSizeLimit(b.size())
	}
	for round := 1; ; round++ {
		order := b.nonTerminals()
		for i, ai := range order {
			for _, aj := range order[:i] {
				if !config.eager && !leftReaches(b, aj, ai) {
					continue
				}
				err := substituteHead(b, ai, aj, limit)
				if err != nil {
					return nil, err
				}
			}
			err := eliminateDirectLeftRecursion(b, ai)
			if err != nil {
				return nil, err
			}
			if size := b.size(); size > limit {
				return nil, &verr.SpecError{
					Cause:  ErrGrammarTooLarge,
					Detail: fmt.Sprintf("eliminating the left recursion of %v; size: %v, limit: %v", ai, size, limit),
				}
			}
		}

		remaining := leftRecursiveNonTerminals(b)
		if len(remaining) == 0 {
			break
		}
		if round >= maxEliminationRounds {
			return nil, &verr.SpecError{
				Cause:  ErrUnfixableLeftRecursion,
				Detail: fmt.Sprintf("left recursion remains after %v rounds: %v", round, strings.Join(remaining, ", ")),
			}
		}
		log.V(1).Infof("left recursion reappeared; round: %v, non-terminals: %v", round+1, strings.Join(remaining, ", "))
	}
	return b.Build()
}

// leftReaches reports whether from derives a sentential form beginning with to.
func leftReaches(b *Builder, from, to string) bool {
	visited := map[string]struct{}{}
	stack := []string{from}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[name]; ok {
			continue
		}
		visited[name] = struct{}{}
		for _, alt := range b.alternatives(name) {
			if alt.IsEmpty() || !alt[0].IsNonTerminal() {
				continue
			}
			head := alt[0].Name()
			if head == to {
				return true
			}
			stack = append(stack, head)
		}
	}
	return false
}

// leftRecursiveNonTerminals returns the non-terminals deriving a sentential form beginning with themselves.
func leftRecursiveNonTerminals(b *Builder) []string {
	var names []string
	for _, name := range b.nonTerminals() {
		if leftReaches(b, name, name) {
			names = append(names, name)
		}
	}
	return names
}

func hasLeftRecursion(b *Builder) bool {
	return len(leftRecursiveNonTerminals(b)) > 0
}

// substituteHead expands the alternatives of lhs beginning with head. The expansions take the place of the
// original alternative. It fails without changing anything when the grammar would grow beyond limit.
func substituteHead(b *Builder, lhs, head string, limit int) error {
	alts := b.alternatives(lhs)
	headAlts := b.alternatives(head)
	growth := 0
	for _, alt := range alts {
		if alt.IsEmpty() || alt[0] != NewNonTerminal(head) {
			continue
		}
		for _, headAlt := range headAlts {
			growth += len(headAlt) + len(alt)
		}
		growth -= len(alt) + 1
	}
	if growth > 0 {
		if size := b.size(); size+growth > limit {
			return &verr.SpecError{
				Cause:  ErrGrammarTooLarge,
				Detail: fmt.Sprintf("substituting %v into %v; size: %v, limit: %v", head, lhs, size+growth, limit),
			}
		}
	}

	replaced := false
	var newAlts []Alternative
	for _, alt := range alts {
		if alt.IsEmpty() || alt[0] != NewNonTerminal(head) {
			newAlts = append(newAlts, alt)
			continue
		}
		for _, headAlt := range headAlts {
			expanded := make(Alternative, 0, len(headAlt)+len(alt)-1)
			expanded = append(expanded, headAlt...)
			expanded = append(expanded, alt[1:]...)
			newAlts = append(newAlts, expanded)
		}
		replaced = true
	}
	if !replaced {
		return nil
	}
	log.V(2).Infof("substituted %v into %v", head, lhs)
	b.SetProduction(lhs, newAlts)
	return nil
}

func eliminateDirectLeftRecursion(b *Builder, name string) error {
	self := NewNonTerminal(name)
	var recursive []Alternative
	var others []Alternative
	selfLoops := 0
	for _, alt := range b.alternatives(name) {
		if alt.IsEmpty() || alt[0] != self {
			others = append(others, alt)
			continue
		}
		if len(alt) == 1 {
			selfLoops++
			continue
		}
		recursive = append(recursive, alt[1:])
	}
	if len(recursive) == 0 && selfLoops == 0 {
		return nil
	}
	if len(others) == 0 {
		return &verr.SpecError{
			Cause:  ErrUnfixableLeftRecursion,
			Detail: fmt.Sprintf("%v has no non-recursive alternative", name),
		}
	}
	if selfLoops > 0 {
		log.V(1).Infof("dropped %v alternative(s) `%v -> %v`", selfLoops, name, name)
	}
	if len(recursive) == 0 {
		b.SetProduction(name, others)
		return nil
	}

	tail := b.FreshNonTerminal(name)
	b.SetOrigin(tail, Origin{
		Kind: OriginLeftRecursion,
		Base: name,
	})
	tailSym := NewNonTerminal(tail)

	newAlts := make([]Alternative, 0, len(others))
	for _, alpha := range others {
		alt := make(Alternative, 0, len(alpha)+1)
		alt = append(alt, alpha...)
		alt = append(alt, tailSym)
		newAlts = append(newAlts, alt)
	}
	tailAlts := make([]Alternative, 0, len(recursive)+1)
	for _, beta := range recursive {
		alt := make(Alternative, 0, len(beta)+1)
		alt = append(alt, beta...)
		alt = append(alt, tailSym)
		tailAlts = append(tailAlts, alt)
	}
	tailAlts = append(tailAlts, Alternative{})

	b.SetProduction(name, newAlts)
	b.SetProduction(tail, tailAlts)

	log.V(1).Infof("eliminated left recursion of %v; tail: %v", name, tail)
	return nil
}
