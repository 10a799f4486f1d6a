package main

import (
	"fmt"
	"os"

	"github.com/nihei9/tenkan/driver"
	"github.com/nihei9/tenkan/grammar"
	"github.com/nihei9/tenkan/lexer"
	"github.com/spf13/cobra"
)

const (
	parserBacktracking = "backtracking"
	parserPredictive   = "predictive"
)

type parserOptions struct {
	parser         *string
	allowConflicts *bool
	maxDepth       *int
	maxSteps       *int
}

func addParserFlags(cmd *cobra.Command, opts *parserOptions) {
	opts.parser = cmd.Flags().String("parser", parserBacktracking, "parser type (backtracking|predictive)")
	opts.allowConflicts = cmd.Flags().Bool("allow-conflicts", false, "let the predictive parser accept a grammar that isn't backtrack-free")
	opts.maxDepth = cmd.Flags().Int("max-depth", 10000, "the maximum nesting of non-terminals")
	opts.maxSteps = cmd.Flags().Int("max-steps", 5000000, "the maximum number of steps the backtracking parser tries")
}

func newParser(g *grammar.Grammar, opts *parserOptions) (driver.Parser, error) {
	pOpts := []driver.ParserOption{
		driver.MaxDepth(*opts.maxDepth),
		driver.MaxSteps(*opts.maxSteps),
	}
	if *opts.allowConflicts {
		pOpts = append(pOpts, driver.AllowConflicts())
	}
	switch *opts.parser {
	case parserBacktracking:
		return driver.NewBacktrackingParser(g, pOpts...)
	case parserPredictive:
		return driver.NewPredictiveParser(g, pOpts...)
	}
	return nil, fmt.Errorf("unknown parser type: %v", *opts.parser)
}

var parseFlags = struct {
	transformOptions
	parserOptions
	source    *string
	transform *bool
	fold      *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "parse <grammar file path>",
		Short: "Parse a source text of the toy language",
		Example: `  cat src | tenkan parse grammar.txt
  tenkan parse grammar.txt -s src --parser predictive --transform --fold`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}
	addTransformFlags(cmd, &parseFlags.transformOptions)
	addParserFlags(cmd, &parseFlags.parserOptions)
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.transform = cmd.Flags().Bool("transform", false, "parse with the transformed grammar")
	parseFlags.fold = cmd.Flags().Bool("fold", false, "fold the tree into the shape of the original grammar")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	g, err := readGrammar(args[0])
	if err != nil {
		return err
	}
	if *parseFlags.transform {
		g, err = transformGrammar(g, &parseFlags.transformOptions)
		if err != nil {
			return err
		}
	}
	p, err := newParser(g, &parseFlags.parserOptions)
	if err != nil {
		return err
	}

	src, closeSrc, err := openSource(*parseFlags.source)
	if err != nil {
		return err
	}
	defer closeSrc()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return err
	}

	tree, err := p.Parse(toks)
	if err != nil {
		return err
	}
	if *parseFlags.fold {
		tree = driver.Fold(g, tree)
	}
	driver.PrintTree(os.Stdout, tree)

	return nil
}
