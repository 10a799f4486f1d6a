package driver

import (
	"github.com/nihei9/tenkan/grammar"
)

// Fold converts a tree parsed with a grammar made by EliminateLeftRecursion and LeftFactor back into the shape
// the original grammar gives. g is the grammar the tree was parsed with; its origins tell which non-terminals
// the transformations introduced.
//
// A node of a non-terminal made by left factoring is replaced with its children. A chain of left recursion tails
//
//	(A α (A' β1 (A' β2 (A')))
//
// turns into left-nested nodes
//
//	(A (A α β1) β2)
//
// Non-terminals inlined during the transformations don't come back.
func Fold(g *grammar.Grammar, n *Node) *Node {
	if n == nil || n.IsLeaf() {
		return n
	}

	children := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		folded := Fold(g, c)
		if isGenerated(g, folded, grammar.OriginLeftFactoring) {
			children = append(children, folded.Children...)
			continue
		}
		children = append(children, folded)
	}
	folded := &Node{
		KindName: n.KindName,
		Children: children,
	}
	if isGenerated(g, folded, grammar.OriginLeftRecursion) {
		return folded
	}
	return reassociate(g, folded)
}

func isGenerated(g *grammar.Grammar, n *Node, kind grammar.OriginKind) bool {
	if n.IsLeaf() {
		return false
	}
	o, ok := g.Origin(n.KindName)
	return ok && o.Kind == kind
}

func reassociate(g *grammar.Grammar, n *Node) *Node {
	if len(n.Children) == 0 {
		return n
	}
	tail := n.Children[len(n.Children)-1]
	if !isGenerated(g, tail, grammar.OriginLeftRecursion) {
		return n
	}
	if o, _ := g.Origin(tail.KindName); o.Base != n.KindName {
		return n
	}

	cur := &Node{
		KindName: n.KindName,
		Children: n.Children[:len(n.Children)-1],
	}
	for tail != nil {
		beta := tail.Children
		var next *Node
		if len(beta) > 0 {
			if last := beta[len(beta)-1]; !last.IsLeaf() && last.KindName == tail.KindName {
				next = last
				beta = beta[:len(beta)-1]
			}
		}
		if len(beta) > 0 {
			children := make([]*Node, 0, len(beta)+1)
			children = append(children, cur)
			children = append(children, beta...)
			cur = &Node{
				KindName: n.KindName,
				Children: children,
			}
		}
		tail = next
	}
	return cur
}
