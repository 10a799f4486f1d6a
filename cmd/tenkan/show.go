package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	spec "github.com/nihei9/tenkan/spec/grammar"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show <report file path>",
		Short:   "Print a report in a readable format",
		Example: `  tenkan show grammar-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}

	err = writeReport(os.Stdout, report)
	if err != nil {
		return err
	}

	return nil
}

func readReport(path string) (*spec.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the report %s: %w", path, err)
	}
	defer f.Close()

	d, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	report := &spec.Report{}
	err = json.Unmarshal(d, report)
	if err != nil {
		return nil, err
	}

	return report, nil
}

const reportTemplate = `# Conflicts

{{ printConflictSummary . }}
{{ range .Conflicts -}}
{{ printConflict . }}
{{ end }}
# Terminals

{{ range .Terminals -}}
{{ printTerminal . }}
{{ end }}
# Non-terminals

{{ range .NonTerminals -}}
{{ printNonTerminal . }}
{{ end }}
# Productions

{{ range .Productions -}}
{{ printProduction . }}
{{ end }}`

func writeReport(w io.Writer, report *spec.Report) error {
	set := func(syms []string) string {
		if len(syms) == 0 {
			return "{}"
		}
		return "{" + strings.Join(syms, ", ") + "}"
	}

	fns := template.FuncMap{
		"printConflictSummary": func(report *spec.Report) string {
			switch count := len(report.Conflicts); {
			case count == 1:
				return "1 conflict was detected."
			case count > 1:
				return fmt.Sprintf("%v conflicts were detected.", count)
			}
			return fmt.Sprintf("No conflict was detected. %v is backtrack-free.", report.Start)
		},
		"printConflict": func(c *spec.Conflict) string {
			var b strings.Builder
			fmt.Fprintf(&b, "%v conflict in %v between alternatives %v and %v", c.Kind, c.NonTerminal, c.Alternatives[0]+1, c.Alternatives[1]+1)
			if len(c.Symbols) > 0 {
				fmt.Fprintf(&b, " on %v", strings.Join(c.Symbols, ", "))
			}
			return b.String()
		},
		"printTerminal": func(term *spec.Terminal) string {
			if term.Repr != "" {
				return fmt.Sprintf("%4v %v (%v)", term.Number, term.Name, term.Repr)
			}
			return fmt.Sprintf("%4v %v", term.Number, term.Name)
		},
		"printNonTerminal": func(nonTerm *spec.NonTerminal) string {
			var b strings.Builder
			fmt.Fprintf(&b, "%4v %v", nonTerm.Number, nonTerm.Name)
			if nonTerm.Origin != "" {
				fmt.Fprintf(&b, " (%v of %v)", nonTerm.Origin, nonTerm.Base)
			}
			if nonTerm.Nullable {
				fmt.Fprintf(&b, " nullable")
			}
			fmt.Fprintf(&b, "\n       FIRST:  %v", set(nonTerm.First))
			fmt.Fprintf(&b, "\n       FOLLOW: %v", set(nonTerm.Follow))
			return b.String()
		},
		"printProduction": func(prod *spec.Production) string {
			var b strings.Builder
			fmt.Fprintf(&b, "%v →", prod.LHS)
			if len(prod.RHS) > 0 {
				for _, e := range prod.RHS {
					fmt.Fprintf(&b, " %v", e)
				}
			} else {
				fmt.Fprintf(&b, " ε")
			}
			first := set(prod.First)
			if prod.Nullable {
				first += " ε"
			}
			return fmt.Sprintf("%4v %v    FIRST: %v", prod.Number, b.String(), first)
		},
	}

	tmpl, err := template.New("").Funcs(fns).Parse(reportTemplate)
	if err != nil {
		return err
	}

	err = tmpl.Execute(w, report)
	if err != nil {
		return err
	}

	return nil
}
