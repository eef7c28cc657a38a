package tfsa

import (
	"fmt"
)

// System bundles the static inputs of a computation: the contribution
// schedule, the two entry ledgers, the market snapshot, the cash balance and
// the classification table. It is read-only once built; every computation
// derives fresh simulator state, so concurrent calls are independent.
type System struct {
	Schedule Schedule
	Classify Classifier
	HISARate float64
	Market   *Market

	Stock  []Entry
	Crypto []Entry

	// Cash is a reconciliation adjustment from the holdings record
	// (interest, rounding), added on top of the balance derived from the
	// ledger itself.
	Cash Money
}

// NewSystem builds a System with the ledger's default schedule, classifier
// and savings rate.
func NewSystem(stock, crypto []Entry, market *Market) *System {
	return &System{
		Schedule: DefaultSchedule(),
		Classify: DefaultClassifier(),
		HISARate: HISAAnnualRate,
		Market:   market,
		Stock:    stock,
		Crypto:   crypto,
		Cash:     CAD(0),
	}
}

// MetricsSnapshot is the point-in-time summary for the dashboard cards.
// It is a value object: immutable once produced, one per request.
//
// The return metrics carry their own failure: a diverging IRR or a
// degenerate TWR leaves its field unset and its error recorded, without
// touching any other metric.
type MetricsSnapshot struct {
	Date Date

	TotalContributed Money
	CurrentValue     Money
	UnrealizedPL     Money

	IRR    Percent
	IRRErr error
	TWR    Percent
	TWRErr error

	HISAValue    Money
	SP500Value   Money
	DeltaVsHISA  Money
	DeltaVsSP500 Money

	StockValue  Money
	CryptoValue Money
	CashValue   Money

	// Excluded lists symbols left out of the valuation for lack of a price.
	Excluded []string
	// Issues lists benchmark gaps disclosed by the simulators.
	Issues []string
}

func (m *MetricsSnapshot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", m.Date)
	w.Append("totalContributed", m.TotalContributed)
	w.Append("currentValue", m.CurrentValue)
	w.Append("unrealizedPL", m.UnrealizedPL)
	if m.IRRErr == nil {
		w.Append("irr", float64(m.IRR))
	} else {
		w.Append("irrError", m.IRRErr.Error())
	}
	if m.TWRErr == nil {
		w.Append("twr", float64(m.TWR))
	} else {
		w.Append("twrError", m.TWRErr.Error())
	}
	w.Append("hisaValue", m.HISAValue)
	w.Append("sp500Value", m.SP500Value)
	w.Append("deltaVsHisa", m.DeltaVsHISA)
	w.Append("deltaVsSP500", m.DeltaVsSP500)
	w.Append("stockValue", m.StockValue)
	w.Append("cryptoValue", m.CryptoValue)
	w.Append("cashValue", m.CashValue)
	w.Optional("excluded", m.Excluded)
	w.Optional("issues", m.Issues)
	return w.MarshalJSON()
}

// Metrics computes the summary as of a date, usually Today().
func (s *System) Metrics(on Date) (*MetricsSnapshot, error) {
	return s.metrics(s.Stock, s.Crypto, on)
}

// MetricsAsOfWeek recomputes the summary using only cash flows and prices
// known up to the given week cutoff. The valuation date is the first day of
// that week, the moment its contribution lands.
func (s *System) MetricsAsOfWeek(week int) (*MetricsSnapshot, error) {
	if week < 1 {
		return nil, fmt.Errorf("%w: week cutoff %d is before week 1", ErrDegenerateInput, week)
	}
	on := s.Schedule.StartOfWeek(week)
	stock, crypto, err := s.entriesThrough(week)
	if err != nil {
		return nil, err
	}
	return s.metrics(stock, crypto, on)
}

// entriesThrough trims both ledgers to the entries of weeks 1..week.
func (s *System) entriesThrough(week int) (stock, crypto []Entry, err error) {
	cut := func(entries []Entry) ([]Entry, error) {
		var out []Entry
		for _, e := range entries {
			w, err := s.Schedule.WeekOf(e.WeekStart)
			if err != nil {
				return nil, err
			}
			if w <= week {
				out = append(out, e)
			}
		}
		return out, nil
	}
	if stock, err = cut(s.Stock); err != nil {
		return nil, nil, err
	}
	if crypto, err = cut(s.Crypto); err != nil {
		return nil, nil, err
	}
	return stock, crypto, nil
}

func (s *System) metrics(stock, crypto []Entry, on Date) (*MetricsSnapshot, error) {
	book, err := Normalize(stock, crypto, s.Classify)
	if err != nil {
		return nil, err
	}

	cash, err := CashAt(stock, crypto, s.Market, on)
	if err != nil {
		return nil, err
	}
	valuation := Value(book, s.Market, cash.Add(s.Cash), on)
	current := valuation.Total()
	contributed := book.Contributed()

	m := &MetricsSnapshot{
		Date:             on,
		TotalContributed: contributed,
		CurrentValue:     current,
		UnrealizedPL:     current.Sub(contributed),
		StockValue:       valuation.Stock,
		CryptoValue:      valuation.Crypto,
		CashValue:        valuation.Cash,
		Excluded:         valuation.Excluded,
	}

	// Benchmarks replay the combined stream. A HISA replay only fails on
	// out-of-order flows, which Normalize already rules out.
	hisa := NewHISA(s.HISARate)
	if err := hisa.Replay(book.Combined); err != nil {
		return nil, err
	}
	m.HISAValue = hisa.ValueAsOf(on)
	m.DeltaVsHISA = current.Sub(m.HISAValue)

	dca := NewIndexDCA(s.Market.IndexLevels())
	if err := dca.Replay(book.Combined); err != nil {
		m.Issues = append(m.Issues, fmt.Sprintf("sp500: %v", err))
	} else if value, err := dca.ValueAsOf(on); err != nil {
		m.Issues = append(m.Issues, fmt.Sprintf("sp500 on %s: %v", on, err))
	} else {
		m.SP500Value = value
		m.DeltaVsSP500 = current.Sub(value)
	}

	// Return metrics are isolated: a failure lands in the error field and
	// the rest of the snapshot stands.
	irrFlows := append(append([]CashFlow{}, book.Combined...), CashFlow{Date: on, Amount: current.Neg()})
	if rate, err := IRR(irrFlows); err != nil {
		m.IRRErr = err
	} else {
		m.IRR = Percent(rate * 100)
	}

	points, err := s.valuePoints(book, on)
	if err != nil {
		m.TWRErr = err
	} else if rate, err := TWR(points, book.Combined); err != nil {
		m.TWRErr = err
	} else {
		m.TWR = Percent(rate * 100)
	}

	return m, nil
}

// valuePoints builds the valuation timeline the TWR chains over: the
// portfolio value at each flow date and at the final valuation date.
func (s *System) valuePoints(book *Book, on Date) ([]ValuePoint, error) {
	snapshots, err := s.snapshots(book, on)
	if err != nil {
		return nil, err
	}
	points := make([]ValuePoint, len(snapshots))
	for i, sp := range snapshots {
		points[i] = ValuePoint{Date: sp.Date, Value: sp.Total}
	}
	return points, nil
}

// snapshots derives the portfolio value series at every flow date up to and
// including 'on'. Positions and the cash balance are re-folded from scratch
// for each date; the ledger is a few hundred entries at most and the pass
// stays well under a millisecond.
func (s *System) snapshots(book *Book, on Date) ([]SeriesPoint, error) {
	var dates []Date
	seen := make(map[Date]bool)
	for _, f := range book.Combined {
		if f.Date.After(on) {
			continue
		}
		if !seen[f.Date] {
			seen[f.Date] = true
			dates = append(dates, f.Date)
		}
	}
	if !seen[on] {
		dates = append(dates, on)
	}

	out := make([]SeriesPoint, 0, len(dates))
	for _, d := range dates {
		window := NewRange(s.Schedule.Epoch, d)
		stock, crypto := entriesIn(s.Stock, window), entriesIn(s.Crypto, window)
		b, err := Normalize(stock, crypto, s.Classify)
		if err != nil {
			return nil, err
		}
		cash, err := CashAt(stock, crypto, s.Market, d)
		if err != nil {
			return nil, err
		}
		v := Value(b, s.Market, cash.Add(s.Cash), d)
		out = append(out, SeriesPoint{
			Date:   d,
			Total:  v.Total(),
			Stock:  v.Stock,
			Crypto: v.Crypto,
		})
	}
	return out, nil
}

// entriesIn returns the entries whose week start falls inside the window.
func entriesIn(entries []Entry, window Range) []Entry {
	var out []Entry
	for _, e := range entries {
		if window.Contains(e.WeekStart) {
			out = append(out, e)
		}
	}
	return out
}

// Chart composes the full chart payload: one point per recorded week plus
// the valuation date.
func (s *System) Chart(on Date) (Series, error) {
	book, err := Normalize(s.Stock, s.Crypto, s.Classify)
	if err != nil {
		return Series{}, err
	}
	snapshots, err := s.snapshots(book, on)
	if err != nil {
		return Series{}, err
	}
	return ComposeSeries(snapshots, book, s.Market.IndexLevels(), s.HISARate), nil
}
