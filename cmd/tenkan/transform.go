package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/golang/glog"
	verr "github.com/nihei9/tenkan/error"
	"github.com/nihei9/tenkan/grammar"
	"github.com/spf13/cobra"
)

type transformOptions struct {
	noEliminate   *bool
	noFactor      *bool
	eager         *bool
	maxIterations *int
}

func addTransformFlags(cmd *cobra.Command, opts *transformOptions) {
	opts.noEliminate = cmd.Flags().Bool("no-eliminate", false, "don't eliminate left recursion")
	opts.noFactor = cmd.Flags().Bool("no-factor", false, "don't left-factor the grammar")
	opts.eager = cmd.Flags().Bool("eager", false, "substitute every earlier non-terminal at the head of an alternative while eliminating left recursion")
	opts.maxIterations = cmd.Flags().Int("max-iterations", 16, "the maximum number of iterations of left factoring")
}

var transformFlags = struct {
	transformOptions
	ebnf   *bool
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "transform <grammar file path>",
		Short: "Eliminate left recursion from a grammar and left-factor it",
		Example: `  tenkan transform grammar.txt
  tenkan transform grammar.txt --ebnf -o grammar.ebnf`,
		Args: cobra.ExactArgs(1),
		RunE: runTransform,
	}
	addTransformFlags(cmd, &transformFlags.transformOptions)
	transformFlags.ebnf = cmd.Flags().Bool("ebnf", false, "print the grammar in EBNF")
	transformFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	rootCmd.AddCommand(cmd)
}

func runTransform(cmd *cobra.Command, args []string) error {
	g, err := readGrammar(args[0])
	if err != nil {
		return err
	}
	g, err = transformGrammar(g, &transformFlags.transformOptions)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *transformFlags.output != "" {
		f, err := os.OpenFile(*transformFlags.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("Cannot open the output file %s: %w", *transformFlags.output, err)
		}
		defer f.Close()
		w = f
	}

	if *transformFlags.ebnf {
		return g.WriteEBNF(w)
	}
	_, err = fmt.Fprint(w, g)
	return err
}

func readGrammar(path string) (*grammar.Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
	}
	defer f.Close()

	g, err := grammar.Parse(f)
	if err != nil {
		if specErrs, ok := err.(verr.SpecErrors); ok {
			for _, e := range specErrs {
				e.FilePath = path
				e.SourceName = path
			}
		}
		return nil, err
	}
	return g, nil
}

// transformGrammar applies the transformations the options enable. An incomplete factoring isn't an error;
// it is reported as a warning.
func transformGrammar(g *grammar.Grammar, opts *transformOptions) (*grammar.Grammar, error) {
	if !*opts.noEliminate {
		var elimOpts []grammar.EliminationOption
		if *opts.eager {
			elimOpts = append(elimOpts, grammar.EagerSubstitution())
		}
		var err error
		g, err = grammar.EliminateLeftRecursion(g, elimOpts...)
		if err != nil {
			return nil, err
		}
	}
	if !*opts.noFactor {
		var report *grammar.FactorReport
		var err error
		g, report, err = grammar.LeftFactor(g, grammar.MaxIterations(*opts.maxIterations))
		if err != nil {
			return nil, err
		}
		if len(report.Inlined) > 0 {
			log.V(1).Infof("inlined non-terminals: %v", report.Inlined)
		}
		if warn := report.Warning(); warn != nil {
			log.Warningf("%v", warn)
			fmt.Fprintf(os.Stderr, "warning: %v\n", warn)
		}
	}
	return g, nil
}
