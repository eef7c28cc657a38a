package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sgallant/tfsa"
)

// updateQuotes fetches today's quotes for every held position plus the index
// level and records them into the system's market.
func updateQuotes(sys *tfsa.System) error {
	book, err := tfsa.Normalize(sys.Stock, sys.Crypto, sys.Classify)
	if err != nil {
		return err
	}
	client := tfsa.NewQuoteClient()
	return client.UpdateMarket(sys.Market, book, today())
}

// updateCmd holds the flags for the 'update' subcommand.
type updateCmd struct{}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "fetch fresh quotes and record them" }
func (*updateCmd) Usage() string {
	return `tfw update

  Fetches today's price for every held position plus the S&P 500 level,
  converts USD quotes to CAD, and saves the observations to the market file.
  Symbols that fail to quote are skipped and reported.
`
}

func (*updateCmd) SetFlags(f *flag.FlagSet) {}

func (c *updateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sys, err := LoadSystem()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := updateQuotes(sys); err != nil {
		fmt.Fprintf(os.Stderr, "Error updating quotes: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := saveMarket(sys.Market); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", marketPath(), err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded quotes for %s in %s\n", today(), marketPath())
	return subcommands.ExitSuccess
}
