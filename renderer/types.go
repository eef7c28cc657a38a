package renderer

import (
	"fmt"

	"github.com/sgallant/tfsa"
)

// Summary is the view model of the summary card: every figure already
// formatted, so the templates stay free of logic.
type Summary struct {
	Date string

	TotalContributed string
	CurrentValue     string
	UnrealizedPL     string

	IRR string
	TWR string

	HISAValue    string
	SP500Value   string
	DeltaVsHISA  string
	DeltaVsSP500 string

	StockValue  string
	CryptoValue string
	CashValue   string

	Excluded []string
	Issues   []string
}

// NewSummary formats a metrics snapshot for rendering. Unavailable return
// metrics render as "n/a" with the reason carried into Issues.
func NewSummary(m *tfsa.MetricsSnapshot) *Summary {
	s := &Summary{
		Date:             m.Date.String(),
		TotalContributed: m.TotalContributed.String(),
		CurrentValue:     m.CurrentValue.String(),
		UnrealizedPL:     m.UnrealizedPL.SignedString(),
		HISAValue:        m.HISAValue.String(),
		SP500Value:       m.SP500Value.String(),
		DeltaVsHISA:      m.DeltaVsHISA.SignedString(),
		DeltaVsSP500:     m.DeltaVsSP500.SignedString(),
		StockValue:       m.StockValue.String(),
		CryptoValue:      m.CryptoValue.String(),
		CashValue:        m.CashValue.String(),
		Excluded:         m.Excluded,
		Issues:           m.Issues,
	}
	if m.IRRErr != nil {
		s.IRR = "n/a"
		s.Issues = append(s.Issues, fmt.Sprintf("irr: %v", m.IRRErr))
	} else {
		s.IRR = m.IRR.SignedString()
	}
	if m.TWRErr != nil {
		s.TWR = "n/a"
		s.Issues = append(s.Issues, fmt.Sprintf("twr: %v", m.TWRErr))
	} else {
		s.TWR = m.TWR.SignedString()
	}
	return s
}

// ChartRow is one rendered week of the comparison table.
type ChartRow struct {
	Date      string
	Portfolio string
	HISA      string
	SP500     string
	Stock     string
	Crypto    string
}

// Chart is the view model of the weekly comparison table.
type Chart struct {
	From   string
	To     string
	Rows   []ChartRow
	Issues []string
}

// NewChart formats a composed series for rendering.
func NewChart(s tfsa.Series) *Chart {
	c := &Chart{Issues: s.Issues}
	for _, p := range s.Points {
		c.Rows = append(c.Rows, ChartRow{
			Date:      p.Date.String(),
			Portfolio: p.Portfolio.String(),
			HISA:      p.HISA.String(),
			SP500:     p.SP500.String(),
			Stock:     p.StockPortfolio.String(),
			Crypto:    p.CryptoPortfolio.String(),
		})
	}
	if len(s.Points) > 0 {
		c.From = s.Points[0].Date.String()
		c.To = s.Points[len(s.Points)-1].Date.String()
	}
	return c
}

// WeekTrade is one rendered fill of a recorded week.
type WeekTrade struct {
	Action     string
	Instrument string
	Qty        string
	Price      string
	Cost       string
}

// Week is the view model of the recording confirmation.
type Week struct {
	Number  int
	Start   string
	Book    string
	Deposit string
	Trades  []WeekTrade
	Notes   string
}

// NewWeek formats a freshly recorded entry for confirmation output.
func NewWeek(book string, number int, e tfsa.Entry) *Week {
	w := &Week{
		Number:  number,
		Start:   e.WeekStart.String(),
		Book:    book,
		Deposit: e.Deposit().String(),
		Notes:   e.Notes,
	}
	for _, t := range e.Trades {
		w.Trades = append(w.Trades, WeekTrade{
			Action:     string(t.Action),
			Instrument: t.Instrument(),
			Qty:        t.Qty.String(),
			Price:      t.Price.String(),
			Cost:       t.Cost().String(),
		})
	}
	return w
}
