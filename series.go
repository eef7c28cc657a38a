package tfsa

import (
	"fmt"
	"sort"

	"github.com/sgallant/tfsa/date"
)

// SeriesPoint is one dated portfolio snapshot supplied by a collaborator:
// the observed total value and its sub-portfolio split.
type SeriesPoint struct {
	Date   Date
	Total  Money // stock + crypto + cash
	Stock  Money
	Crypto Money
}

// ChartPoint is one row of the chart payload: the portfolio value and both
// benchmark values, overall and per sub-portfolio, on one date.
type ChartPoint struct {
	Date Date

	Portfolio Money
	HISA      Money
	SP500     Money

	StockPortfolio Money
	StockHISA      Money
	StockSP500     Money

	CryptoPortfolio Money
	CryptoHISA      Money
	CryptoSP500     Money
}

func (p ChartPoint) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", p.Date)
	w.Append("portfolio", p.Portfolio)
	w.Append("hisa", p.HISA)
	w.Append("sp500", p.SP500)
	w.Append("stockPortfolio", p.StockPortfolio)
	w.Append("stockHisa", p.StockHISA)
	w.Append("stockSP500", p.StockSP500)
	w.Append("cryptoPortfolio", p.CryptoPortfolio)
	w.Append("cryptoHisa", p.CryptoHISA)
	w.Append("cryptoSP500", p.CryptoSP500)
	return w.MarshalJSON()
}

// Series is the composed chart payload. A benchmark column that failed
// mid-stream keeps its values up to the failure and discloses the gap in
// Issues; one broken column never aborts the whole composition.
type Series struct {
	Points []ChartPoint
	Issues []string
}

// ComposeSeries merges the supplied snapshots with six benchmark simulator
// runs (HISA and index-DCA, for the combined stream and for each
// sub-portfolio's own stream) into one date-ordered sequence.
//
// Snapshots are sorted before merging; callers need not order them. Sparse
// snapshots yield a sparse series; the composer never interpolates between
// provided points.
func ComposeSeries(snapshots []SeriesPoint, book *Book, levels *date.History[float64], annualRate float64) Series {
	points := make([]SeriesPoint, len(snapshots))
	copy(points, snapshots)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	dates := make([]Date, len(points))
	for i, p := range points {
		dates[i] = p.Date
	}

	var s Series
	hisa := s.hisaColumn("hisa", book.Combined, dates, annualRate)
	stockHisa := s.hisaColumn("stockHisa", book.Stock, dates, annualRate)
	cryptoHisa := s.hisaColumn("cryptoHisa", book.Crypto, dates, annualRate)
	sp500 := s.dcaColumn("sp500", book.Combined, dates, levels)
	stockSP500 := s.dcaColumn("stockSP500", book.Stock, dates, levels)
	cryptoSP500 := s.dcaColumn("cryptoSP500", book.Crypto, dates, levels)

	s.Points = make([]ChartPoint, len(points))
	for i, p := range points {
		s.Points[i] = ChartPoint{
			Date:            p.Date,
			Portfolio:       p.Total,
			HISA:            hisa[i],
			SP500:           sp500[i],
			StockPortfolio:  p.Stock,
			StockHISA:       stockHisa[i],
			StockSP500:      stockSP500[i],
			CryptoPortfolio: p.Crypto,
			CryptoHISA:      cryptoHisa[i],
			CryptoSP500:     cryptoSP500[i],
		}
	}
	return s
}

// hisaColumn replays a flow stream through a fresh HISA simulator, sampling
// the value at each requested date.
func (s *Series) hisaColumn(name string, flows []CashFlow, dates []Date, annualRate float64) []Money {
	sim := NewHISA(annualRate)
	out := make([]Money, len(dates))
	next := 0
	failed := false
	for i, on := range dates {
		for !failed && next < len(flows) && !flows[next].Date.After(on) {
			if err := sim.Flow(flows[next]); err != nil {
				s.Issues = append(s.Issues, fmt.Sprintf("%s: %v", name, err))
				failed = true
				break
			}
			next++
		}
		out[i] = sim.ValueAsOf(on)
	}
	return out
}

// dcaColumn replays a flow stream through a fresh index-DCA simulator,
// sampling the value at each requested date. A flow with no resolvable index
// level fails the column from that flow on; earlier values are kept.
func (s *Series) dcaColumn(name string, flows []CashFlow, dates []Date, levels *date.History[float64]) []Money {
	sim := NewIndexDCA(levels)
	out := make([]Money, len(dates))
	next := 0
	failed := false
	for i, on := range dates {
		for !failed && next < len(flows) && !flows[next].Date.After(on) {
			if err := sim.Flow(flows[next]); err != nil {
				s.Issues = append(s.Issues, fmt.Sprintf("%s: %v", name, err))
				failed = true
				break
			}
			next++
		}
		value, err := sim.ValueAsOf(on)
		if err != nil {
			// No level at this sampling date: an explicit gap, not a zero.
			s.Issues = append(s.Issues, fmt.Sprintf("%s on %s: %v", name, on, err))
			continue
		}
		out[i] = value
	}
	return out
}
