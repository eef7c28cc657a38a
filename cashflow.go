package tfsa

import (
	"fmt"
	"sort"
)

// CashFlow is a dated, signed amount of money crossing the boundary of the
// measured strategy. Positive amounts enter the portfolio (contributions),
// negative amounts leave it (withdrawals).
type CashFlow struct {
	Date   Date
	Amount Money
}

// AssetClass splits the ledger into its two books.
type AssetClass int

const (
	StockClass AssetClass = iota
	CryptoClass
)

func (c AssetClass) String() string {
	switch c {
	case StockClass:
		return "stock"
	case CryptoClass:
		return "crypto"
	default:
		return "unknown"
	}
}

// Classifier decides whether a symbol is a crypto instrument. Anything not in
// the set classifies as a stock or ETF. The table is injected rather than
// hardcoded in the calculators so it can grow without touching them.
type Classifier map[string]bool

// Class returns the asset class of a symbol.
func (c Classifier) Class(symbol string) AssetClass {
	if c[symbol] {
		return CryptoClass
	}
	return StockClass
}

// DefaultClassifier lists the coins the crypto book has ever held.
func DefaultClassifier() Classifier {
	return Classifier{
		"BTC": true, "ETH": true, "SOL": true, "XRP": true, "ADA": true,
		"DOGE": true, "DOT": true, "LTC": true, "LINK": true, "AVAX": true,
	}
}

// Position is the closing holding of one symbol, built by folding fills
// chronologically with weighted-average cost. It lives only for the duration
// of a computation pass; nothing persists it.
type Position struct {
	Symbol   string
	Class    AssetClass
	Quantity Quantity
	AvgCost  Money // per-unit weighted-average cost
	Currency string
}

// CostBasis returns the total capital attributed to the position.
func (p Position) CostBasis() Money { return p.AvgCost.Mul(p.Quantity) }

// Book is the normalized form of the ledger: the benchmark cash-flow streams
// and the closing positions. It is the single input of the simulators and
// the valuation engine.
type Book struct {
	Combined []CashFlow // both sub-portfolios, chronological
	Stock    []CashFlow // stock book only
	Crypto   []CashFlow // crypto book only

	Positions []Position // closing positions, sorted by symbol
}

// Contributed returns the sum of all positive flows in the combined stream.
func (b *Book) Contributed() Money {
	total := CAD(0)
	for _, f := range b.Combined {
		if f.Amount.IsPositive() {
			total = total.Add(f.Amount)
		}
	}
	return total
}

// PositionsInClass returns the closing positions of one asset class.
func (b *Book) PositionsInClass(class AssetClass) []Position {
	var out []Position
	for _, p := range b.Positions {
		if p.Class == class {
			out = append(out, p)
		}
	}
	return out
}

// Normalize folds the two entry ledgers into a Book.
//
// Only the weekly deposit of each entry becomes a benchmark cash flow: the
// benchmarks answer "what if the same weekly deposit had gone into X", so
// trade-level buys and sells feed positions only, never the flow streams.
func Normalize(stock, crypto []Entry, classify Classifier) (*Book, error) {
	if err := ValidateEntries(stock); err != nil {
		return nil, fmt.Errorf("stock entries: %w", err)
	}
	if err := ValidateEntries(crypto); err != nil {
		return nil, fmt.Errorf("crypto entries: %w", err)
	}
	if classify == nil {
		classify = DefaultClassifier()
	}

	book := &Book{}
	positions := make(map[string]*Position)

	fold := func(entries []Entry, class AssetClass) error {
		for _, e := range entries {
			if e.DepositCAD > 0 {
				flow := CashFlow{Date: e.WeekStart, Amount: e.Deposit()}
				if class == CryptoClass {
					book.Crypto = append(book.Crypto, flow)
				} else {
					book.Stock = append(book.Stock, flow)
				}
				book.Combined = append(book.Combined, flow)
			}
			for _, t := range e.Trades {
				if err := applyTrade(positions, t, classify); err != nil {
					return fmt.Errorf("entry %s: %w", e.WeekStart, err)
				}
			}
		}
		return nil
	}
	if err := fold(stock, StockClass); err != nil {
		return nil, err
	}
	if err := fold(crypto, CryptoClass); err != nil {
		return nil, err
	}

	// Simulators consume the streams strictly in date order. Entries are
	// already validated as sorted per book, but the merged stream is not.
	sortFlows(book.Combined)
	sortFlows(book.Stock)
	sortFlows(book.Crypto)

	for _, p := range positions {
		book.Positions = append(book.Positions, *p)
	}
	sort.Slice(book.Positions, func(i, j int) bool {
		return book.Positions[i].Symbol < book.Positions[j].Symbol
	})
	return book, nil
}

func sortFlows(flows []CashFlow) {
	sort.SliceStable(flows, func(i, j int) bool {
		return flows[i].Date.Before(flows[j].Date)
	})
}

// applyTrade folds one fill into the running positions using weighted-average
// cost: quantities are kept at six decimal places and per-unit costs at four,
// the precision the holdings files persist.
func applyTrade(positions map[string]*Position, t Trade, classify Classifier) error {
	symbol := t.Instrument()
	pos := positions[symbol]

	switch t.Action {
	case Buy:
		if pos == nil {
			positions[symbol] = &Position{
				Symbol:   symbol,
				Class:    classify.Class(symbol),
				Quantity: t.Qty.Round(),
				AvgCost:  roundPrice(t.Price),
				Currency: t.Price.Currency(),
			}
			return nil
		}
		if pos.Currency != t.Price.Currency() {
			return fmt.Errorf("%w: currency mismatch for %s", ErrInputData, symbol)
		}
		newQty := pos.Quantity.Add(t.Qty)
		newCost := pos.AvgCost.Mul(pos.Quantity).Add(t.Cost()).Div(newQty)
		pos.Quantity = newQty.Round()
		pos.AvgCost = roundPrice(newCost)
	case Sell:
		if pos == nil {
			return fmt.Errorf("%w: selling non-existent holding %s", ErrInputData, symbol)
		}
		if t.Qty.GreaterThan(pos.Quantity) {
			return fmt.Errorf("%w: sell qty %s exceeds holding %s for %s", ErrInputData, t.Qty, pos.Quantity, symbol)
		}
		pos.Quantity = pos.Quantity.Sub(t.Qty).Round()
		// Sells reduce quantity only; the average cost of what remains is unchanged.
		if pos.Quantity.IsZero() {
			delete(positions, symbol)
		}
	default:
		return fmt.Errorf("%w: unknown trade action %q", ErrInputData, t.Action)
	}
	return nil
}

// roundPrice rounds a per-unit cost to the four decimal places of the
// holdings files.
func roundPrice(m Money) Money {
	return M(m.Decimal().Round(4), m.Currency())
}

// CashAt derives the CAD cash balance of the ledger at a date: weekly
// deposits in, buy settlements out, sell proceeds back in. The ledger only
// records fill prices, so a fill quoted in another currency settles at the
// market's CAD price for the symbol on the fill date; without such a price
// the balance is undefined and the error says which symbol is missing.
func CashAt(stock, crypto []Entry, market *Market, on Date) (Money, error) {
	cash := CAD(0)
	fold := func(entries []Entry) error {
		for _, e := range entries {
			if e.WeekStart.After(on) {
				continue
			}
			cash = cash.Add(e.Deposit())
			for _, t := range e.Trades {
				settled, err := settleCAD(t, market, e.WeekStart)
				if err != nil {
					return fmt.Errorf("entry %s: %w", e.WeekStart, err)
				}
				if t.Action == Sell {
					cash = cash.Add(settled)
				} else {
					cash = cash.Sub(settled)
				}
			}
		}
		return nil
	}
	if err := fold(stock); err != nil {
		return Money{}, err
	}
	if err := fold(crypto); err != nil {
		return Money{}, err
	}
	return cash, nil
}

// settleCAD returns the CAD amount one fill moved through the cash balance.
func settleCAD(t Trade, market *Market, on Date) (Money, error) {
	if t.Currency == "" || t.Currency == "CAD" {
		return CAD(t.RawPrice).Mul(t.Qty), nil
	}
	price, ok := market.PriceAsOf(t.Instrument(), on)
	if !ok {
		return Money{}, fmt.Errorf("%w: no CAD settlement price for %s on %s", ErrPriceUnavailable, t.Instrument(), on)
	}
	return price.Mul(t.Qty), nil
}
