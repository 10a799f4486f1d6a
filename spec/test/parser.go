package test

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/nihei9/tenkan/driver"
	"github.com/nihei9/tenkan/grammar"
	"github.com/nihei9/tenkan/lexer"
)

type TreeDiff struct {
	ExpectedPath string
	ActualPath   string
	Message      string
}

func newTreeDiff(expected, actual *Tree, message string) *TreeDiff {
	return &TreeDiff{
		ExpectedPath: expected.path(),
		ActualPath:   actual.path(),
		Message:      message,
	}
}

// Tree is a parse tree written in a test case, or a parse tree converted to compare with one.
// A terminal node has a lexeme and no children.
type Tree struct {
	Parent   *Tree
	Offset   int
	Kind     string
	Children []*Tree
	Lexeme   string
}

func NewNonTerminalTree(kind string, children ...*Tree) *Tree {
	return &Tree{
		Kind:     kind,
		Children: children,
	}
}

func NewTerminalNode(kind string, lexeme string) *Tree {
	return &Tree{
		Kind:   kind,
		Lexeme: lexeme,
	}
}

// ConvertParseTree converts a tree returned by a parser into a Tree.
func ConvertParseTree(node *driver.Node) *Tree {
	if node.IsLeaf() {
		return NewTerminalNode(node.KindName, node.Token.Lexeme)
	}
	var children []*Tree
	if len(node.Children) > 0 {
		children = make([]*Tree, len(node.Children))
		for i, c := range node.Children {
			children[i] = ConvertParseTree(c)
		}
	}
	return NewNonTerminalTree(node.KindName, children...)
}

// Fill sets the parent and the offset of every node.
func (t *Tree) Fill() *Tree {
	for i, c := range t.Children {
		c.Parent = t
		c.Offset = i
		c.Fill()
	}
	return t
}

func (t *Tree) path() string {
	if t.Parent == nil {
		return t.Kind
	}
	return fmt.Sprintf("%v.[%v]%v", t.Parent.path(), t.Offset, t.Kind)
}

// Format writes the tree in the notation test cases use.
func (t *Tree) Format() []byte {
	var b bytes.Buffer
	t.format(&b, 0)
	return b.Bytes()
}

func (t *Tree) format(buf *bytes.Buffer, depth int) {
	buf.WriteString(strings.Repeat("    ", depth))
	buf.WriteString("(")
	buf.WriteString(t.Kind)
	if t.Lexeme != "" {
		fmt.Fprintf(buf, " %v", quote(t.Lexeme))
	}
	for _, c := range t.Children {
		buf.WriteString("\n")
		c.format(buf, depth+1)
	}
	buf.WriteString(")")
}

// DiffTree compares an expected tree with an actual one. A node whose kind is `_` in the expected tree matches
// a node of any kind.
func DiffTree(expected, actual *Tree) []*TreeDiff {
	if expected == nil || actual == nil {
		if expected == actual {
			return nil
		}
		return []*TreeDiff{
			{
				Message: "either tree is missing",
			},
		}
	}
	if expected.Kind != "_" && actual.Kind != expected.Kind {
		msg := fmt.Sprintf("unexpected kind: expected '%v' but got '%v'", expected.Kind, actual.Kind)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if expected.Lexeme != actual.Lexeme {
		msg := fmt.Sprintf("unexpected lexeme: expected '%v' but got '%v'", expected.Lexeme, actual.Lexeme)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if len(actual.Children) != len(expected.Children) {
		msg := fmt.Sprintf("unexpected node count: expected %v but got %v", len(expected.Children), len(actual.Children))
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	var diffs []*TreeDiff
	for i, exp := range expected.Children {
		diffs = append(diffs, DiffTree(exp, actual.Children[i])...)
	}
	return diffs
}

// TestCase consists of a description, a source text, and the tree the source text is expected to be parsed into.
type TestCase struct {
	Description string
	Source      []byte
	Output      *Tree
}

// ParseTestCase reads a test case. The three parts of a test case are separated by lines consisting of `---`.
// The expected tree is written like `(s (ID "x") (_ (SEMICOLON ";")))`.
func ParseTestCase(r io.Reader) (*TestCase, error) {
	parts, err := splitIntoParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("a test case consists of just three parts, but %v part(s) were found", len(parts))
	}

	tp := &treeParser{
		lineOffset: parts[0].lineCount + parts[1].lineCount + 2,
	}
	tree, err := tp.parseTree(bytes.NewReader(parts[2].buf))
	if err != nil {
		return nil, err
	}

	return &TestCase{
		Description: string(parts[0].buf),
		Source:      parts[1].buf,
		Output:      tree,
	}, nil
}

type testCasePart struct {
	buf       []byte
	lineCount int
}

func splitIntoParts(r io.Reader) ([]*testCasePart, error) {
	var parts []*testCasePart
	s := bufio.NewScanner(r)
	for {
		buf, lineCount, err := readPart(s)
		if err != nil {
			return nil, err
		}
		if buf == nil {
			break
		}
		parts = append(parts, &testCasePart{
			buf:       buf,
			lineCount: lineCount,
		})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return parts, nil
}

var reDelim = regexp.MustCompile(`^\s*---+\s*$`)

// readPart returns nil at the end of input. An empty part is an empty non-nil slice.
func readPart(s *bufio.Scanner) ([]byte, int, error) {
	if !s.Scan() {
		return nil, 0, s.Err()
	}
	if reDelim.Match(s.Bytes()) {
		return []byte{}, 0, nil
	}
	lines := []string{s.Text()}
	for s.Scan() {
		if reDelim.Match(s.Bytes()) {
			break
		}
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, 0, err
	}
	return []byte(strings.Join(lines, "\n")), len(lines), nil
}

const treeGrammarSrc = `
tree -> ( ID body )
body -> STRING | trees
trees -> tree trees | ε
`

var (
	treeParserOnce sync.Once
	treeParserP    *driver.PredictiveParser
	treeParserErr  error
)

// newTreeParser parses expected trees with a predictive parser for the tree notation.
func newTreeParser() (*driver.PredictiveParser, error) {
	treeParserOnce.Do(func() {
		g, err := grammar.Parse(strings.NewReader(treeGrammarSrc))
		if err != nil {
			treeParserErr = err
			return
		}
		treeParserP, treeParserErr = driver.NewPredictiveParser(g)
	})
	return treeParserP, treeParserErr
}

type treeParser struct {
	lineOffset int
}

func (tp *treeParser) parseTree(src io.Reader) (*Tree, error) {
	p, err := newTreeParser()
	if err != nil {
		return nil, fmt.Errorf("cannot generate a parser for trees: %w", err)
	}
	toks, err := lexer.Tokenize(src)
	if err != nil {
		var lexErr *lexer.Error
		if errors.As(err, &lexErr) {
			return nil, &lexer.Error{
				Row:    tp.lineOffset + lexErr.Row,
				Col:    lexErr.Col,
				Lexeme: lexErr.Lexeme,
			}
		}
		return nil, err
	}
	node, err := p.Parse(toks)
	if err != nil {
		var synErr *driver.SyntaxError
		if errors.As(err, &synErr) {
			shifted := *synErr
			shifted.Row += tp.lineOffset
			return nil, &shifted
		}
		return nil, err
	}
	return tp.genTree(node).Fill(), nil
}

// genTree converts a node of the tree notation, `( ID body )`, into a Tree.
func (tp *treeParser) genTree(node *driver.Node) *Tree {
	kind := node.Children[1].Token.Lexeme
	body := node.Children[2].Children[0]
	if body.IsLeaf() {
		return NewTerminalNode(kind, unquote(body.Token.Lexeme))
	}

	var children []*Tree
	for trees := body; len(trees.Children) > 0; trees = trees.Children[1] {
		children = append(children, tp.genTree(trees.Children[0]))
	}
	return NewNonTerminalTree(kind, children...)
}

// unquote removes the quotes around a string and a backslash before each escaped character.
func unquote(lexeme string) string {
	var b strings.Builder
	escaped := false
	for _, r := range lexeme[1 : len(lexeme)-1] {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

func quote(s string) string {
	var b strings.Builder
	b.WriteRune('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	b.WriteRune('"')
	return b.String()
}
