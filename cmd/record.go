package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"
	"github.com/sgallant/tfsa"
	"github.com/sgallant/tfsa/renderer"
)

// tradeSpecs collects repeated -t flags.
type tradeSpecs []string

func (t *tradeSpecs) String() string     { return strings.Join(*t, ", ") }
func (t *tradeSpecs) Set(v string) error { *t = append(*t, v); return nil }

// recordCmd holds the flags for the 'record' subcommand.
type recordCmd struct {
	book    string
	date    string
	deposit float64
	note    string
	trades  tradeSpecs
}

func (*recordCmd) Name() string     { return "record" }
func (*recordCmd) Synopsis() string { return "record one weekly entry into a book" }
func (*recordCmd) Usage() string {
	return `tfw record -book <stock|crypto> [-d <date>] [-deposit <cad>] [-t <trade>]... [-note <text>]

  Appends this week's entry to the chosen book and rewrites the derived
  holdings files. A trade spec reads action:symbol:qty:price[:currency],
  for example -t buy:XEQT:0.30:33.25:CAD or -t buy:BTC:0.0001:91500.
  The deposit defaults to the scheduled amount for the week.
`
}

func (c *recordCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.book, "book", "stock", "Book to record into: stock or crypto.")
	f.StringVar(&c.date, "d", "", "Any date inside the week to record. Defaults to today.")
	f.Float64Var(&c.deposit, "deposit", -1, "Deposit in CAD. Defaults to the scheduled amount.")
	f.StringVar(&c.note, "note", "", "Free-form note attached to the entry.")
	f.Var(&c.trades, "t", "Trade spec, repeatable.")
}

func parseTradeSpec(spec string, crypto bool) (tfsa.Trade, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 4 || len(parts) > 5 {
		return tfsa.Trade{}, fmt.Errorf("trade spec %q must read action:symbol:qty:price[:currency]", spec)
	}
	action, err := tfsa.ParseTradeAction(parts[0])
	if err != nil {
		return tfsa.Trade{}, err
	}
	qty, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return tfsa.Trade{}, fmt.Errorf("bad qty in %q: %v", spec, err)
	}
	price, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return tfsa.Trade{}, fmt.Errorf("bad price in %q: %v", spec, err)
	}

	t := tfsa.Trade{Action: action, Qty: tfsa.Q(qty), RawPrice: price}
	if crypto {
		if len(parts) == 5 {
			return tfsa.Trade{}, fmt.Errorf("crypto trade %q cannot carry a currency, fills are CAD", spec)
		}
		t.Symbol = parts[1]
	} else {
		t.Ticker = parts[1]
		t.Currency = "CAD"
		if len(parts) == 5 {
			t.Currency = strings.ToUpper(parts[4])
		}
	}
	return t, nil
}

func (c *recordCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.book != "stock" && c.book != "crypto" {
		fmt.Fprintf(os.Stderr, "Unknown book %q, want stock or crypto\n", c.book)
		return subcommands.ExitUsageError
	}
	crypto := c.book == "crypto"

	sys, err := LoadSystem()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	on := today()
	if c.date != "" {
		if on, err = tfsa.ParseDate(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	week, err := sys.Schedule.WeekOf(on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	entry := tfsa.Entry{
		WeekStart:  sys.Schedule.StartOfWeek(week),
		DepositCAD: c.deposit,
		Notes:      c.note,
	}
	if c.deposit < 0 {
		entry.DepositCAD = sys.Schedule.Contribution(week).AsFloat()
	}
	for _, spec := range c.trades {
		t, err := parseTradeSpec(spec, crypto)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		entry.Trades = append(entry.Trades, t)
	}

	entries, path := sys.Stock, entriesPath()
	if crypto {
		entries, path = sys.Crypto, cryptoEntriesPath()
	}
	for _, e := range entries {
		if e.WeekStart == entry.WeekStart {
			fmt.Fprintf(os.Stderr, "Error: week of %s is already recorded in the %s book\n", entry.WeekStart, c.book)
			return subcommands.ExitFailure
		}
	}
	entries = append(entries, entry)
	if err := tfsa.ValidateEntries(entries); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if crypto {
		sys.Crypto = entries
	} else {
		sys.Stock = entries
	}

	// The sells and oversells surface here, before anything is written.
	book, err := tfsa.Normalize(sys.Stock, sys.Crypto, sys.Classify)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := saveEntries(path, entries); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
		return subcommands.ExitFailure
	}
	if err := saveHoldings(book); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing holdings: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderWeek(renderer.NewWeek(c.book, week, entry)))
	return subcommands.ExitSuccess
}
