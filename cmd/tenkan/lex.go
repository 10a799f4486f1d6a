package main

import (
	"fmt"
	"io"
	"os"

	"github.com/nihei9/tenkan/lexer"
	"github.com/spf13/cobra"
)

var lexFlags = struct {
	source *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "lex",
		Short:   "Tokenize a source text of the toy language",
		Example: `  cat src | tenkan lex`,
		Args:    cobra.NoArgs,
		RunE:    runLex,
	}
	lexFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	rootCmd.AddCommand(cmd)
}

func runLex(cmd *cobra.Command, args []string) error {
	src, closeSrc, err := openSource(*lexFlags.source)
	if err != nil {
		return err
	}
	defer closeSrc()

	toks, err := lexer.Tokenize(src)
	if err != nil {
		return err
	}
	for _, tok := range toks {
		fmt.Fprintln(os.Stdout, tok)
	}
	return nil
}

func openSource(path string) (io.Reader, func(), error) {
	if path == "" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("Cannot open the source file %s: %w", path, err)
	}
	return f, func() {
		f.Close()
	}, nil
}
