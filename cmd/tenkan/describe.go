package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nihei9/tenkan/grammar"
	"github.com/spf13/cobra"
)

var describeFlags = struct {
	transformOptions
	transform *bool
	output    *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "describe <grammar file path>",
		Short: "Analyze a grammar and write a report",
		Example: `  tenkan describe grammar.txt -o grammar-report.json
  tenkan describe grammar.txt --transform | tenkan show /dev/stdin`,
		Args: cobra.ExactArgs(1),
		RunE: runDescribe,
	}
	addTransformFlags(cmd, &describeFlags.transformOptions)
	describeFlags.transform = cmd.Flags().Bool("transform", false, "analyze the transformed grammar")
	describeFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	g, err := readGrammar(args[0])
	if err != nil {
		return err
	}
	if *describeFlags.transform {
		g, err = transformGrammar(g, &describeFlags.transformOptions)
		if err != nil {
			return err
		}
	}

	a, err := grammar.Analyze(g)
	if err != nil {
		return err
	}
	b, err := json.Marshal(a.Report())
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *describeFlags.output != "" {
		f, err := os.OpenFile(*describeFlags.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("Cannot open the output file %s: %w", *describeFlags.output, err)
		}
		defer f.Close()
		w = f
	}
	_, err = fmt.Fprintf(w, "%v\n", string(b))
	return err
}
