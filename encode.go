package tfsa

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sgallant/tfsa/date"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// This file contains the codecs for the ledger's on-disk formats, kept
// human-readable and git-friendly:
//
//	data/entries.json          JSON array of weekly stock entries
//	data/crypto_entries.json   same, crypto book
//	holdings.csv               ticker,shares,avg_cost,currency
//	crypto_holdings.csv        symbol,amount,avg_cost_cad
//	data/market.json           price and index level observations by date

// DecodeEntries reads a JSON array of weekly entries and validates it.
func DecodeEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: cannot parse entries: %v", ErrInputData, err)
	}
	if err := ValidateEntries(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EncodeEntries writes entries as an indented JSON array, the original
// site's format.
func EncodeEntries(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// DecodeHoldings reads a holdings CSV. Equity files carry the header
// "ticker,shares,avg_cost,currency" and crypto files
// "symbol,amount,avg_cost_cad"; the header decides the class.
func DecodeHoldings(r io.Reader) ([]Position, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read holdings header: %v", ErrInputData, err)
	}

	var crypto bool
	switch {
	case len(header) == 4 && header[0] == "ticker":
		crypto = false
	case len(header) == 3 && header[0] == "symbol":
		crypto = true
	default:
		return nil, fmt.Errorf("%w: unexpected holdings header %v", ErrInputData, header)
	}

	var out []Position
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: cannot read holdings row: %v", ErrInputData, err)
		}
		qty, err := decimal.NewFromString(rec[1])
		if err != nil {
			return nil, fmt.Errorf("%w: bad quantity %q for %s: %v", ErrInputData, rec[1], rec[0], err)
		}
		cost, err := decimal.NewFromString(rec[2])
		if err != nil {
			return nil, fmt.Errorf("%w: bad avg cost %q for %s: %v", ErrInputData, rec[2], rec[0], err)
		}
		p := Position{Symbol: rec[0], Quantity: Q(qty)}
		if crypto {
			p.Class = CryptoClass
			p.AvgCost = M(cost, "CAD")
			p.Currency = "CAD"
		} else {
			p.Class = StockClass
			p.AvgCost = M(cost, rec[3])
			p.Currency = rec[3]
		}
		out = append(out, p)
	}
	return out, nil
}

// EncodeHoldings writes positions back in the holdings CSV format, sorted by
// symbol. All positions must be of the same class.
func EncodeHoldings(w io.Writer, positions []Position, class AssetClass) error {
	cw := csv.NewWriter(w)
	if class == CryptoClass {
		if err := cw.Write([]string{"symbol", "amount", "avg_cost_cad"}); err != nil {
			return err
		}
	} else {
		if err := cw.Write([]string{"ticker", "shares", "avg_cost", "currency"}); err != nil {
			return err
		}
	}

	sorted := make([]Position, len(positions))
	copy(sorted, positions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })

	for _, p := range sorted {
		var rec []string
		if class == CryptoClass {
			rec = []string{p.Symbol, p.Quantity.String(), p.AvgCost.Decimal().String()}
		} else {
			rec = []string{p.Symbol, p.Quantity.String(), p.AvgCost.Decimal().String(), p.Currency}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// jmarket is the market.json document layout.
type jmarket struct {
	Index  map[string]float64            `json:"index"`
	Prices map[string]map[string]float64 `json:"prices"`
}

// DecodeMarket reads recorded price and index observations.
func DecodeMarket(r io.Reader) (*Market, error) {
	var doc jmarket
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: cannot parse market data: %v", ErrInputData, err)
	}
	m := NewMarket()
	for day, level := range doc.Index {
		on, err := date.Parse(day)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInputData, err)
		}
		if err := m.SetIndexLevel(on, level); err != nil {
			return nil, err
		}
	}
	for symbol, days := range doc.Prices {
		for day, price := range days {
			on, err := date.Parse(day)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInputData, err)
			}
			if err := m.SetPrice(symbol, on, price); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// EncodeMarket writes the market snapshot with sorted keys so the file stays
// diff-friendly.
func EncodeMarket(w io.Writer, m *Market) error {
	doc := jmarket{
		Index:  make(map[string]float64),
		Prices: make(map[string]map[string]float64),
	}
	for on, level := range m.index.Values() {
		doc.Index[on.String()] = level
	}
	for symbol, h := range m.prices {
		days := make(map[string]float64)
		for on, price := range h.Values() {
			days[on.String()] = price
		}
		doc.Prices[symbol] = days
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
