package lexer

import (
	"fmt"
	"io"
	"strings"
	"sync"

	log "github.com/golang/glog"
	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
	"github.com/nihei9/tenkan/token"
)

const (
	kindWhiteSpace  = "white_space"
	kindLineComment = "line_comment"
)

type Error struct {
	Row    int
	Col    int
	Lexeme string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v:%v: invalid token: %q", e.Row, e.Col, e.Lexeme)
}

// compiledSpec pairs a compiled lexical specification with a table mapping maleeni kind IDs to token kinds.
type compiledSpec struct {
	spec  *mlspec.CompiledLexSpec
	kinds []token.Kind
	skip  []bool
}

var (
	specOnce sync.Once
	spec     *compiledSpec
	specErr  error
)

func genLexSpec() *mlspec.LexSpec {
	var entries []*mlspec.LexEntry
	add := func(kind string, pattern string) {
		entries = append(entries, &mlspec.LexEntry{
			Kind:    mlspec.LexKindName(kind),
			Pattern: mlspec.LexPattern(pattern),
		})
	}

	// Keywords must precede the identifier so that they win when the lengths of the matched texts are equal.
	for _, k := range token.Kinds() {
		if !k.Keyword() {
			continue
		}
		r, _ := k.Repr()
		add(k.SnakeName(), mlspec.EscapePattern(r))
	}
	add(token.ID.SnakeName(), `[A-Za-z_][0-9A-Za-z_]*`)
	add(token.Integer.SnakeName(), `[0-9]+`)
	add(token.String.SnakeName(), `"([^"\\\u{000A}]|\\[^\u{000A}])*"`)
	for _, k := range token.Kinds() {
		r, ok := k.Repr()
		if !ok || k.Keyword() {
			continue
		}
		add(k.SnakeName(), mlspec.EscapePattern(r))
	}
	add(kindWhiteSpace, `[\u{0009}\u{000A}\u{000D}\u{0020}]+`)
	add(kindLineComment, `//[^\u{000A}]*`)

	return &mlspec.LexSpec{
		Name:    "toylang",
		Entries: entries,
	}
}

func compileSpec() (*compiledSpec, error) {
	specOnce.Do(func() {
		spec, specErr = compile(genLexSpec())
	})
	return spec, specErr
}

func compile(lspec *mlspec.LexSpec) (*compiledSpec, error) {
	clspec, err, cErrs := mlcompiler.Compile(lspec, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			writeCompileError(&b, cErrs[0])
			for _, cerr := range cErrs[1:] {
				fmt.Fprintf(&b, "\n")
				writeCompileError(&b, cerr)
			}
			return nil, fmt.Errorf("%v", b.String())
		}
		return nil, err
	}

	kinds := make([]token.Kind, len(clspec.KindNames))
	skip := make([]bool, len(clspec.KindNames))
	for i, name := range clspec.KindNames {
		if name == mlspec.LexKindNameNil {
			kinds[i] = token.Invalid
			continue
		}
		switch name.String() {
		case kindWhiteSpace, kindLineComment:
			skip[i] = true
			continue
		}
		k, ok := token.LookupSnakeName(name.String())
		if !ok {
			return nil, fmt.Errorf("a lexical kind '%v' has no corresponding token kind", name)
		}
		kinds[i] = k
	}
	log.V(1).Infof("compiled the lexical specification %v; %v kinds", lspec.Name, len(clspec.KindNames))

	return &compiledSpec{
		spec:  clspec,
		kinds: kinds,
		skip:  skip,
	}, nil
}

func writeCompileError(w io.Writer, cErr *mlcompiler.CompileError) {
	if cErr.Fragment {
		fmt.Fprintf(w, "fragment ")
	}
	fmt.Fprintf(w, "%v: %v", cErr.Kind, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(w, ": %v", cErr.Detail)
	}
}

// Tokenize reads a whole source text and returns its tokens, skipping white spaces and comments.
// An end-of-input token is not appended; the end of the slice is the end of input.
func Tokenize(src io.Reader) ([]*token.Token, error) {
	s, err := compileSpec()
	if err != nil {
		return nil, fmt.Errorf("cannot compile the lexical specification: %w", err)
	}
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(s.spec), src)
	if err != nil {
		return nil, err
	}

	var toks []*token.Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			break
		}
		if tok.Invalid {
			return nil, &Error{
				Row:    tok.Row + 1,
				Col:    tok.Col + 1,
				Lexeme: string(tok.Lexeme),
			}
		}
		if s.skip[tok.KindID] {
			continue
		}
		toks = append(toks, &token.Token{
			Kind:   s.kinds[tok.KindID],
			Lexeme: string(tok.Lexeme),
			Row:    tok.Row + 1,
			Col:    tok.Col + 1,
		})
	}
	log.V(2).Infof("tokenized %v tokens", len(toks))

	return toks, nil
}
