package driver

import (
	"fmt"
	"io"

	"github.com/nihei9/tenkan/token"
)

// Node is a node of a parse tree. A leaf holds a token, and KindName is the name of its kind.
// Otherwise, KindName is the name of a non-terminal and Children holds the matched symbols.
type Node struct {
	KindName string
	Token    *token.Token
	Children []*Node
}

func newLeaf(tok *token.Token) *Node {
	return &Node{
		KindName: tok.Kind.String(),
		Token:    tok,
	}
}

func (n *Node) IsLeaf() bool {
	return n.Token != nil
}

func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	if node.Token != nil {
		fmt.Fprintf(w, "%v%v %#v\n", ruledLine, node.KindName, node.Token.Lexeme)
	} else {
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)
	}

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

// Equivalent reports whether two trees have the same shape: every pair of corresponding nodes has the same
// kind name and the same number of children, and corresponding leaves have the same lexeme.
func Equivalent(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.KindName != b.KindName || a.IsLeaf() != b.IsLeaf() || len(a.Children) != len(b.Children) {
		return false
	}
	if a.IsLeaf() && a.Token.Lexeme != b.Token.Lexeme {
		return false
	}
	for i := range a.Children {
		if !Equivalent(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}
