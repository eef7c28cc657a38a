package tfsa

import (
	"fmt"

	"github.com/sgallant/tfsa/date"
)

// Market holds the price observations a computation reads from: per-symbol
// price histories and the benchmark index level history. All prices are in
// CAD; the quote layer converts before recording.
//
// Market is a plain data snapshot. The engine never fetches; an external
// collaborator fills the market and hands it in.
type Market struct {
	prices map[string]*date.History[float64]
	index  *date.History[float64]
}

// NewMarket returns an empty market snapshot.
func NewMarket() *Market {
	return &Market{
		prices: make(map[string]*date.History[float64]),
		index:  new(date.History[float64]),
	}
}

// SetPrice records a CAD price observation for a symbol on a date.
func (m *Market) SetPrice(symbol string, on Date, price float64) error {
	if price <= 0 {
		return fmt.Errorf("%w: price %v for %s on %s is not positive", ErrInputData, price, symbol, on)
	}
	h, ok := m.prices[symbol]
	if !ok {
		h = new(date.History[float64])
		m.prices[symbol] = h
	}
	h.Append(on, price)
	return nil
}

// PriceAsOf returns the nearest price observation at or before the date.
// A missing price is an explicit absence, never zero.
func (m *Market) PriceAsOf(symbol string, on Date) (Money, bool) {
	h, ok := m.prices[symbol]
	if !ok {
		return Money{}, false
	}
	p, ok := h.ValueAsOf(on)
	if !ok {
		return Money{}, false
	}
	return CAD(p), true
}

// SetIndexLevel records a benchmark index level observation.
func (m *Market) SetIndexLevel(on Date, level float64) error {
	if level <= 0 {
		return fmt.Errorf("%w: index level %v on %s is not positive", ErrInputData, level, on)
	}
	m.index.Append(on, level)
	return nil
}

// IndexLevels exposes the benchmark index history for the DCA simulator.
func (m *Market) IndexLevels() *date.History[float64] { return m.index }

// Symbols returns the symbols with at least one price observation.
func (m *Market) Symbols() []string {
	out := make([]string, 0, len(m.prices))
	for s := range m.prices {
		out = append(out, s)
	}
	return out
}
