package main

import (
	"flag"

	log "github.com/golang/glog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tenkan",
	Short: "Transform a grammar for top-down parsing",
	Long: `tenkan provides the following features:
- Eliminates left recursion from a grammar and left-factors it so that a predictive parser can parse it.
- Analyzes a grammar and reports the FIRST/FOLLOW sets and the conflicts.
- Parses a source text of the toy language with a backtracking parser or a predictive parser.
  These features are primarily aimed at debugging the grammar.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// glog complains about logging before the Go flag set is parsed. The values were already set through cobra.
		return flag.CommandLine.Parse(nil)
	},
}

func init() {
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.PersistentFlags().Lookup("logtostderr").DefValue = "true"
}

func Execute() error {
	defer log.Flush()
	if err := flag.Set("logtostderr", "true"); err != nil {
		return err
	}
	return rootCmd.Execute()
}
