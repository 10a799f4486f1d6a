package grammar

import (
	"fmt"
	"io"
	"strings"

	log "github.com/golang/glog"
	mlspec "github.com/nihei9/maleeni/spec"
	verr "github.com/nihei9/tenkan/error"
	"github.com/nihei9/tenkan/spec"
	"github.com/nihei9/tenkan/token"
)

type OriginKind string

const (
	OriginLeftRecursion = OriginKind("left-recursion")
	OriginLeftFactoring = OriginKind("left-factoring")
)

// Origin tells which transformation synthesized a non-terminal and the non-terminal it was split off from.
type Origin struct {
	Kind OriginKind
	Base string
}

// Grammar is a context-free grammar whose terminals are token kinds. A Grammar is immutable; transformations
// derive a new grammar through Builder.
type Grammar struct {
	start   string
	order   []string
	prods   map[string]*Production
	origins map[string]Origin
	fresh   int
}

func (g *Grammar) Start() string {
	return g.start
}

// NonTerminals returns the non-terminals in declaration order. Synthesized non-terminals follow the ones
// they were derived from in the order they were created.
func (g *Grammar) NonTerminals() []string {
	nts := make([]string, len(g.order))
	copy(nts, g.order)
	return nts
}

func (g *Grammar) IsNonTerminal(name string) bool {
	_, ok := g.prods[name]
	return ok
}

// Alternatives returns a copy of the alternatives of a non-terminal. It returns nil for an unknown name.
func (g *Grammar) Alternatives(name string) []Alternative {
	prod, ok := g.prods[name]
	if !ok {
		return nil
	}
	return prod.clone().Alternatives
}

// StrictAlternatives is the same as Alternatives except it fails for an unknown name.
func (g *Grammar) StrictAlternatives(name string) ([]Alternative, error) {
	prod, ok := g.prods[name]
	if !ok {
		return nil, &verr.SpecError{
			Cause:  ErrUndefinedNonTerminal,
			Detail: name,
		}
	}
	return prod.clone().Alternatives, nil
}

// Productions returns copies of all productions in declaration order.
func (g *Grammar) Productions() []*Production {
	prods := make([]*Production, 0, len(g.order))
	for _, name := range g.order {
		prods = append(prods, g.prods[name].clone())
	}
	return prods
}

// Size returns the number of symbols in the productions, counting each alternative as one more symbol.
func (g *Grammar) Size() int {
	n := 0
	for _, prod := range g.prods {
		n += productionSize(prod)
	}
	return n
}

// Origin returns how a synthesized non-terminal was made. The second return value is false for a
// non-terminal written by a user.
func (g *Grammar) Origin(name string) (Origin, bool) {
	o, ok := g.origins[name]
	return o, ok
}

// Builder returns a builder initialized with a deep copy of the grammar.
func (g *Grammar) Builder() *Builder {
	b := NewBuilder(g.start)
	for _, name := range g.order {
		b.SetProduction(name, g.prods[name].Alternatives)
	}
	for name, o := range g.origins {
		b.origins[name] = o
		b.generated[name] = struct{}{}
	}
	b.fresh = g.fresh
	return b
}

func (g *Grammar) String() string {
	var b strings.Builder
	g.write(&b)
	return b.String()
}

func (g *Grammar) write(w io.Writer) {
	for _, name := range g.order {
		prod := g.prods[name]
		fmt.Fprintf(w, "%v -> %v", name, prod.Alternatives[0])
		for _, alt := range prod.Alternatives[1:] {
			fmt.Fprintf(w, " | %v", alt)
		}
		fmt.Fprintf(w, "\n")
	}
}

// Builder assembles a grammar. The first occurrence of a non-terminal, either as a left-hand side or in an
// alternative, fixes its position in the declaration order.
type Builder struct {
	start     string
	order     []string
	declared  map[string]struct{}
	prods     map[string]*Production
	origins   map[string]Origin
	generated map[string]struct{}
	fresh     int
}

func NewBuilder(start string) *Builder {
	return &Builder{
		start:     start,
		declared:  map[string]struct{}{},
		prods:     map[string]*Production{},
		origins:   map[string]Origin{},
		generated: map[string]struct{}{},
	}
}

func (b *Builder) declare(name string) {
	if _, ok := b.declared[name]; ok {
		return
	}
	b.declared[name] = struct{}{}
	b.order = append(b.order, name)
}

func (b *Builder) declareAlternative(alt Alternative) {
	for _, sym := range alt {
		if sym.IsNonTerminal() {
			b.declare(sym.Name())
		}
	}
}

// AddAlternative appends an alternative to the production of lhs.
func (b *Builder) AddAlternative(lhs string, alt Alternative) {
	b.declare(lhs)
	b.declareAlternative(alt)
	prod, ok := b.prods[lhs]
	if !ok {
		prod = &Production{
			LHS: lhs,
		}
		b.prods[lhs] = prod
	}
	prod.Alternatives = append(prod.Alternatives, alt.clone())
}

// SetProduction replaces all alternatives of lhs.
func (b *Builder) SetProduction(lhs string, alts []Alternative) {
	b.declare(lhs)
	prod := &Production{
		LHS:          lhs,
		Alternatives: make([]Alternative, 0, len(alts)),
	}
	for _, alt := range alts {
		b.declareAlternative(alt)
		prod.Alternatives = append(prod.Alternatives, alt.clone())
	}
	b.prods[lhs] = prod
}

func (b *Builder) alternatives(lhs string) []Alternative {
	prod, ok := b.prods[lhs]
	if !ok {
		return nil
	}
	return prod.Alternatives
}

// nonTerminals returns the defined non-terminals in declaration order.
func (b *Builder) nonTerminals() []string {
	var nts []string
	for _, name := range b.order {
		if _, ok := b.prods[name]; ok {
			nts = append(nts, name)
		}
	}
	return nts
}

// size returns the number of symbols in the productions. Each alternative counts as one more symbol so that
// ε alternatives count too.
func (b *Builder) size() int {
	n := 0
	for _, prod := range b.prods {
		n += productionSize(prod)
	}
	return n
}

func productionSize(prod *Production) int {
	n := len(prod.Alternatives)
	for _, alt := range prod.Alternatives {
		n += len(alt)
	}
	return n
}

const (
	minSizeLimit    = 4096
	sizeLimitFactor = 32
)

// defaultSizeLimit returns how large a transformation may make a grammar of a given size.
func defaultSizeLimit(size int) int {
	return max(minSizeLimit, size*sizeLimitFactor)
}

// FreshNonTerminal returns a name `<base>__<n>` that no non-terminal of the builder uses. n comes from a counter
// shared by the whole grammar, so names made by successive transformations never clash. When base is itself a
// generated name, its user-written part is used.
func (b *Builder) FreshNonTerminal(base string) string {
	if i := strings.Index(base, "__"); i > 0 {
		base = base[:i]
	}
	for {
		b.fresh++
		name := fmt.Sprintf("%v__%v", base, b.fresh)
		if _, ok := b.declared[name]; ok {
			continue
		}
		b.generated[name] = struct{}{}
		return name
	}
}

// SetOrigin records how a non-terminal made by FreshNonTerminal was derived.
func (b *Builder) SetOrigin(name string, o Origin) {
	b.origins[name] = o
}

// prune removes non-terminals that the start symbol cannot reach.
func (b *Builder) prune() []string {
	reachable := map[string]struct{}{}
	var visit func(name string)
	visit = func(name string) {
		if _, ok := reachable[name]; ok {
			return
		}
		reachable[name] = struct{}{}
		for _, alt := range b.alternatives(name) {
			for _, sym := range alt {
				if sym.IsNonTerminal() {
					visit(sym.Name())
				}
			}
		}
	}
	visit(b.start)

	var removed []string
	order := make([]string, 0, len(b.order))
	for _, name := range b.order {
		if _, ok := reachable[name]; ok {
			order = append(order, name)
			continue
		}
		if _, ok := b.prods[name]; ok {
			removed = append(removed, name)
		}
		delete(b.prods, name)
		delete(b.origins, name)
		delete(b.declared, name)
	}
	b.order = order
	return removed
}

// Build validates the productions and returns the grammar. Every referenced non-terminal must have a production,
// and so must the start symbol. User-declared non-terminals must be spelled consistently; `fn_call` and `fnCall`
// cannot appear in the same grammar.
func (b *Builder) Build() (*Grammar, error) {
	var errs verr.SpecErrors
	if len(b.prods) == 0 {
		errs = append(errs, &verr.SpecError{
			Cause: semErrNoProduction,
		})
		return nil, errs
	}
	if _, ok := b.prods[b.start]; !ok {
		errs = append(errs, &verr.SpecError{
			Cause:  semErrUndefinedStart,
			Detail: b.start,
		})
	}

	referenced := map[string]struct{}{}
	for _, name := range b.order {
		for _, alt := range b.alternatives(name) {
			for _, sym := range alt {
				if sym.IsNonTerminal() {
					referenced[sym.Name()] = struct{}{}
				}
			}
		}
	}
	for _, name := range b.order {
		if _, ok := b.generated[name]; !ok && strings.Contains(name, "__") {
			errs = append(errs, &verr.SpecError{
				Cause:  semErrReservedName,
				Detail: name,
			})
		}
		if _, ok := b.prods[name]; ok {
			if len(b.prods[name].Alternatives) == 0 {
				errs = append(errs, &verr.SpecError{
					Cause:  ErrUndefinedNonTerminal,
					Detail: fmt.Sprintf("%v has no alternatives", name),
				})
			}
			continue
		}
		if _, ok := referenced[name]; ok {
			errs = append(errs, &verr.SpecError{
				Cause:  ErrUndefinedNonTerminal,
				Detail: name,
			})
		}
	}
	var userDeclared []string
	for _, name := range b.nonTerminals() {
		if _, ok := b.generated[name]; !ok {
			userDeclared = append(userDeclared, name)
		}
	}
	errs = append(errs, findSpellingInconsistencies(userDeclared)...)
	if len(errs) > 0 {
		return nil, errs
	}

	nts := b.nonTerminals()
	g := &Grammar{
		start:   b.start,
		order:   nts,
		prods:   make(map[string]*Production, len(nts)),
		origins: map[string]Origin{},
		fresh:   b.fresh,
	}
	for _, name := range nts {
		g.prods[name] = b.prods[name].clone()
		if o, ok := b.origins[name]; ok {
			g.origins[name] = o
		}
	}
	return g, nil
}

// GrammarBuilder makes a grammar from the AST of a grammar description. The LHS of the first production is
// the start symbol.
type GrammarBuilder struct {
	AST *spec.RootNode

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build() (*Grammar, error) {
	if len(b.AST.Productions) == 0 {
		return nil, verr.SpecErrors{
			{
				Cause: semErrNoProduction,
			},
		}
	}

	b.checkSpellingInconsistenciesOfUserDefinedIDs(b.AST)
	b.checkProductions(b.AST)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	gb := NewBuilder(b.AST.Productions[0].LHS)
	for _, prod := range b.AST.Productions {
		for _, altNode := range prod.RHS {
			alt := make(Alternative, 0, len(altNode.Elements))
			for _, elem := range altNode.Elements {
				alt = append(alt, symbolOf(elem.ID))
			}
			gb.AddAlternative(prod.LHS, alt)
		}
	}
	g, err := gb.Build()
	if err != nil {
		return nil, err
	}

	log.V(1).Infof("built a grammar; start: %v, non-terminals: %v", g.start, len(g.order))
	return g, nil
}

// checkProductions reports terminals used as a left-hand side and references to undefined non-terminals,
// with their positions.
func (b *GrammarBuilder) checkProductions(root *spec.RootNode) {
	defined := map[string]struct{}{}
	for _, prod := range root.Productions {
		if _, ok := token.Lookup(prod.LHS); ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrTerminalLHS,
				Detail: prod.LHS,
				Row:    prod.Pos.Row,
				Col:    prod.Pos.Col,
			})
			continue
		}
		defined[prod.LHS] = struct{}{}
	}
	for _, prod := range root.Productions {
		for _, alt := range prod.RHS {
			for _, elem := range alt.Elements {
				sym := symbolOf(elem.ID)
				if sym.IsTerminal() {
					continue
				}
				if _, ok := defined[elem.ID]; ok {
					continue
				}
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  ErrUndefinedNonTerminal,
					Detail: elem.ID,
					Row:    elem.Pos.Row,
					Col:    elem.Pos.Col,
				})
			}
		}
	}
}

func (b *GrammarBuilder) checkSpellingInconsistenciesOfUserDefinedIDs(root *spec.RootNode) {
	var ids []string
	seen := map[string]struct{}{}
	for _, prod := range root.Productions {
		if _, ok := seen[prod.LHS]; ok {
			continue
		}
		seen[prod.LHS] = struct{}{}
		ids = append(ids, prod.LHS)
	}
	b.errs = append(b.errs, findSpellingInconsistencies(ids)...)
}

// findSpellingInconsistencies reports names that differ only in spelling, such as `fn_call` and `fnCall`.
func findSpellingInconsistencies(ids []string) verr.SpecErrors {
	var errs verr.SpecErrors
	for _, dup := range mlspec.FindSpellingInconsistencies(ids) {
		var b strings.Builder
		fmt.Fprintf(&b, "%+v", dup[0])
		for _, id := range dup[1:] {
			fmt.Fprintf(&b, ", %+v", id)
		}
		errs = append(errs, &verr.SpecError{
			Cause:  semErrSpellingInconsistency,
			Detail: b.String(),
		})
	}
	return errs
}

// Parse reads a grammar description and builds the grammar.
func Parse(src io.Reader) (*Grammar, error) {
	ast, err := spec.Parse(src)
	if err != nil {
		return nil, err
	}
	b := &GrammarBuilder{
		AST: ast,
	}
	return b.Build()
}
