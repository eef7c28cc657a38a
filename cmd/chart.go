package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sgallant/tfsa"
	"github.com/sgallant/tfsa/renderer"
)

// chartCmd holds the flags for the 'chart' subcommand.
type chartCmd struct {
	date    string
	jsonOut bool
	update  bool
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "display the weekly benchmark comparison series" }
func (*chartCmd) Usage() string {
	return `tfw chart [-d <date>] [-json]

  Composes the weekly series of portfolio value against the HISA and S&P 500
  DCA benchmarks, overall and per book. With -json the raw chart payload is
  printed instead of the table.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Last date of the series (YYYY-MM-DD). Defaults to today.")
	f.BoolVar(&c.jsonOut, "json", false, "Print the chart payload as JSON.")
	f.BoolVar(&c.update, "update", false, "Fetch fresh quotes before composing.")
}

func (c *chartCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sys, err := LoadSystem()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.update {
		if err := updateQuotes(sys); err != nil {
			fmt.Fprintf(os.Stderr, "Error updating quotes: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	on := today()
	if c.date != "" {
		if on, err = tfsa.ParseDate(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	series, err := sys.Chart(on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error composing chart: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(series.Points); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding chart: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.RenderChart(renderer.NewChart(series)))
	return subcommands.ExitSuccess
}
