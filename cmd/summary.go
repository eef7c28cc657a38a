package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sgallant/tfsa"
	"github.com/sgallant/tfsa/renderer"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	date         string
	week         int
	update       bool
	noBenchmarks bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the performance summary card" }
func (*summaryCmd) Usage() string {
	return `tfw summary [-d <date>] [-w <week>] [-update]

  Displays the summary card: contributions, current value, IRR, TWR and the
  deltas against the HISA and S&P 500 DCA benchmarks. With -w the summary is
  recomputed as of that week's cutoff.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date for the summary (YYYY-MM-DD). Defaults to today.")
	f.IntVar(&c.week, "w", 0, "Recompute as of this week's cutoff instead of a date.")
	f.BoolVar(&c.update, "update", false, "Fetch fresh quotes before computing.")
	f.BoolVar(&c.noBenchmarks, "no-benchmarks", false, "Skip the benchmark comparison section.")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	var m *tfsa.MetricsSnapshot
	if c.week > 0 {
		m, err = sys.MetricsAsOfWeek(c.week)
	} else {
		on := today()
		if c.date != "" {
			on, err = tfsa.ParseDate(c.date)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
				return subcommands.ExitUsageError
			}
		}
		m, err = sys.Metrics(on)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing summary: %v\n", err)
		return subcommands.ExitFailure
	}

	opts := renderer.SummaryRenderOptions{SkipBenchmarks: c.noBenchmarks}
	printMarkdown(renderer.RenderSummary(renderer.NewSummary(m), opts))
	return subcommands.ExitSuccess
}
