package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sgallant/tfsa"
)

// fmtCmd holds the flags for the 'fmt' subcommand.
type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validate the entry files and rebuild the derived holdings"
}
func (*fmtCmd) Usage() string {
	return `tfw fmt

  Reads both entry files, validates them, writes them back in canonical
  indented form and rebuilds the holdings files from scratch. Use it after
  editing the entries by hand.
`
}

func (*fmtCmd) SetFlags(f *flag.FlagSet) {}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sys, err := LoadSystem()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	book, err := tfsa.Normalize(sys.Stock, sys.Crypto, sys.Classify)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if len(sys.Stock) > 0 {
		if err := saveEntries(entriesPath(), sys.Stock); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", entriesPath(), err)
			return subcommands.ExitFailure
		}
	}
	if len(sys.Crypto) > 0 {
		if err := saveEntries(cryptoEntriesPath(), sys.Crypto); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", cryptoEntriesPath(), err)
			return subcommands.ExitFailure
		}
	}
	if err := saveHoldings(book); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing holdings: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Formatted %d stock and %d crypto entries, holdings rebuilt.\n", len(sys.Stock), len(sys.Crypto))
	return subcommands.ExitSuccess
}
