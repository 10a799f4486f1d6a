package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nihei9/tenkan/grammar"
	"github.com/nihei9/tenkan/tester"
	"github.com/spf13/cobra"
)

var testFlags = struct {
	transformOptions
	parserOptions
	transform *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "test <grammar file path> <test file path>|<test directory path>",
		Short: "Test a grammar",
		Long: `Test a grammar with expected trees.
When the grammar is transformed, trees are folded into the shape of the original grammar before the comparison.`,
		Example: `  tenkan test grammar.txt test
  tenkan test grammar.txt test --parser predictive --transform`,
		Args: cobra.ExactArgs(2),
		RunE: runTest,
	}
	addTransformFlags(cmd, &testFlags.transformOptions)
	addParserFlags(cmd, &testFlags.parserOptions)
	testFlags.transform = cmd.Flags().Bool("transform", false, "parse with the transformed grammar")
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	g, err := readGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a grammar: %w", err)
	}
	var foldGrammar *grammar.Grammar
	if *testFlags.transform {
		g, err = transformGrammar(g, &testFlags.transformOptions)
		if err != nil {
			return err
		}
		foldGrammar = g
	}
	p, err := newParser(g, &testFlags.parserOptions)
	if err != nil {
		return err
	}

	var cs []*tester.TestCaseWithMetadata
	{
		cs = tester.ListTestCases(args[1])
		errOccurred := false
		for _, c := range cs {
			if c.Error != nil {
				fmt.Fprintf(os.Stderr, "Failed to read a test case or a directory: %v\n%v\n", c.FilePath, c.Error)
				errOccurred = true
			}
		}
		if errOccurred {
			return errors.New("Cannot run test")
		}
	}

	t := &tester.Tester{
		Parser:      p,
		FoldGrammar: foldGrammar,
		Cases:       cs,
	}
	rs := t.Run()
	testFailed := false
	for _, r := range rs {
		fmt.Fprintln(os.Stdout, r)
		if r.Error != nil {
			testFailed = true
		}
	}
	if testFailed {
		return errors.New("Test failed")
	}
	return nil
}
