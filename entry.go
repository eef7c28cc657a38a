package tfsa

import (
	"fmt"
	"strings"

	"github.com/sgallant/tfsa/date"
)

// TradeAction is the side of an executed fill.
type TradeAction string

const (
	Buy  TradeAction = "buy"
	Sell TradeAction = "sell"
)

// ParseTradeAction parses a string into a TradeAction.
func ParseTradeAction(s string) (TradeAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return "", fmt.Errorf("%w: unknown trade action %q", ErrInputData, s)
	}
}

// Trade is a single executed fill inside a weekly entry.
//
// Equity fills carry Ticker and Currency; crypto fills carry Symbol and are
// always priced in CAD. Exactly one of Ticker/Symbol is set.
type Trade struct {
	Action   TradeAction `json:"action"`
	Ticker   string      `json:"ticker,omitempty"`
	Symbol   string      `json:"symbol,omitempty"`
	Qty      Quantity    `json:"qty"`
	Price    Money       `json:"-"`
	Currency string      `json:"currency,omitempty"`

	// RawPrice mirrors the ledger file, where prices are stored as plain
	// numbers in the fill's currency.
	RawPrice float64 `json:"price"`
}

// Instrument returns the traded symbol regardless of asset class.
func (t Trade) Instrument() string {
	if t.Ticker != "" {
		return t.Ticker
	}
	return t.Symbol
}

// Cost returns the capital consumed (buy) or freed (sell) by the fill.
func (t Trade) Cost() Money { return t.Price.Mul(t.Qty) }

// Validate checks the fill for the fields the engine requires.
func (t *Trade) Validate() error {
	if _, err := ParseTradeAction(string(t.Action)); err != nil {
		return err
	}
	if t.Instrument() == "" {
		return fmt.Errorf("%w: trade has neither ticker nor symbol", ErrInputData)
	}
	if !t.Qty.IsPositive() {
		return fmt.Errorf("%w: non-positive qty for %s", ErrInputData, t.Instrument())
	}
	if t.RawPrice <= 0 {
		return fmt.Errorf("%w: non-positive price for %s", ErrInputData, t.Instrument())
	}
	cur := t.Currency
	if cur == "" {
		cur = "CAD" // crypto fills are quoted in CAD
	}
	t.Price = M(t.RawPrice, cur)
	return nil
}

// Entry is one calendar week of the ledger: the deposit made that week and
// the fills executed with it. Entries are appended once per week by the
// recording tool and never mutated by the engine.
type Entry struct {
	WeekStart  date.Date `json:"week_start"`
	DepositCAD float64   `json:"deposit_cad"`
	Trades     []Trade   `json:"trades"`
	Notes      string    `json:"notes,omitempty"`
}

// Deposit returns the week's contribution as Money.
func (e Entry) Deposit() Money { return CAD(e.DepositCAD) }

// Validate checks the entry and all its fills.
func (e *Entry) Validate() error {
	if e.WeekStart == (date.Date{}) {
		return fmt.Errorf("%w: entry has no week_start", ErrInputData)
	}
	if e.DepositCAD < 0 {
		return fmt.Errorf("%w: negative deposit_cad on %s", ErrInputData, e.WeekStart)
	}
	for i := range e.Trades {
		if err := e.Trades[i].Validate(); err != nil {
			return fmt.Errorf("entry %s trade %d: %w", e.WeekStart, i, err)
		}
	}
	return nil
}

// ValidateEntries validates a whole ledger slice and checks that the weeks
// are chronologically ordered, the property every simulator relies on.
func ValidateEntries(entries []Entry) error {
	var last date.Date
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return err
		}
		if entries[i].WeekStart.Before(last) {
			return fmt.Errorf("%w: entry %s is out of order", ErrInputData, entries[i].WeekStart)
		}
		last = entries[i].WeekStart
	}
	return nil
}
