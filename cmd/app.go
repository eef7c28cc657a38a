// Package cmd implements the CLI application over the weekly ledger.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/sgallant/tfsa"
)

// Commands lists the subcommands a main package registers.
var Commands = []subcommands.Command{
	&summaryCmd{},
	&chartCmd{},
	&recordCmd{},
	&updateCmd{},
	&fmtCmd{},
	&assistCmd{},
	&topicCmd{},
}

// As a CLI application it is short lived, so global path flags are fine.

var dataDir = flag.String("data-dir", "data", "Path to the folder holding the entry and market files")
var holdingsFile = flag.String("holdings-file", "holdings.csv", "Path to the equity holdings file")
var cryptoHoldingsFile = flag.String("crypto-holdings-file", "crypto_holdings.csv", "Path to the crypto holdings file")

func entriesPath() string       { return filepath.Join(*dataDir, "entries.json") }
func cryptoEntriesPath() string { return filepath.Join(*dataDir, "crypto_entries.json") }
func marketPath() string        { return filepath.Join(*dataDir, "market.json") }

// decodeEntryFile reads one entry ledger. A missing file is an empty ledger.
func decodeEntryFile(path string) ([]tfsa.Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := tfsa.DecodeEntries(f)
	if err != nil {
		return nil, fmt.Errorf("in %s: %w", path, err)
	}
	return entries, nil
}

// decodeMarketFile reads the recorded market observations. A missing file is
// an empty market.
func decodeMarketFile() (*tfsa.Market, error) {
	f, err := os.Open(marketPath())
	if errors.Is(err, fs.ErrNotExist) {
		return tfsa.NewMarket(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := tfsa.DecodeMarket(f)
	if err != nil {
		return nil, fmt.Errorf("in %s: %w", marketPath(), err)
	}
	return m, nil
}

// LoadSystem assembles the full computation input from the app's files.
func LoadSystem() (*tfsa.System, error) {
	stock, err := decodeEntryFile(entriesPath())
	if err != nil {
		return nil, err
	}
	crypto, err := decodeEntryFile(cryptoEntriesPath())
	if err != nil {
		return nil, err
	}
	market, err := decodeMarketFile()
	if err != nil {
		return nil, err
	}
	return tfsa.NewSystem(stock, crypto, market), nil
}

// encodeToFile writes through a closure, creating parent folders as needed.
func encodeToFile(path string, encode func(f *os.File) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return encode(f)
}

func saveEntries(path string, entries []tfsa.Entry) error {
	return encodeToFile(path, func(f *os.File) error { return tfsa.EncodeEntries(f, entries) })
}

func saveMarket(m *tfsa.Market) error {
	return encodeToFile(marketPath(), func(f *os.File) error { return tfsa.EncodeMarket(f, m) })
}

// saveHoldings derives both holdings files from the books.
func saveHoldings(book *tfsa.Book) error {
	err := encodeToFile(*holdingsFile, func(f *os.File) error {
		return tfsa.EncodeHoldings(f, book.PositionsInClass(tfsa.StockClass), tfsa.StockClass)
	})
	if err != nil {
		return err
	}
	return encodeToFile(*cryptoHoldingsFile, func(f *os.File) error {
		return tfsa.EncodeHoldings(f, book.PositionsInClass(tfsa.CryptoClass), tfsa.CryptoClass)
	})
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when the renderer is unavailable (e.g. output is piped).
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		if out, rerr := r.Render(md); rerr == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
