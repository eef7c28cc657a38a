package tfsa

import (
	"strings"
	"testing"

	"github.com/sgallant/tfsa/date"
)

func flatLevels(level float64, on ...Date) *date.History[float64] {
	h := new(date.History[float64])
	for _, d := range on {
		h.Append(d, level)
	}
	return h
}

func TestComposeSeriesSortsSnapshots(t *testing.T) {
	d1, d2, d3 := week(1), week(2), week(3)
	book := &Book{Combined: []CashFlow{{Date: d1, Amount: CAD(20)}}}
	shuffled := []SeriesPoint{
		{Date: d3, Total: CAD(26)},
		{Date: d1, Total: CAD(20)},
		{Date: d2, Total: CAD(22)},
	}

	s := ComposeSeries(shuffled, book, flatLevels(100, d1), HISAAnnualRate)
	if len(s.Points) != 3 {
		t.Fatalf("len(Points) = %d want 3", len(s.Points))
	}
	for i, want := range []Date{d1, d2, d3} {
		if s.Points[i].Date != want {
			t.Errorf("Points[%d].Date = %s want %s", i, s.Points[i].Date, want)
		}
	}
}

func TestComposeSeriesPortfolioColumnIsPassthrough(t *testing.T) {
	// The composer never interpolates; it carries the supplied values as-is.
	d1, d2 := week(1), week(4) // a sparse pair, weeks 2 and 3 unsampled
	book := &Book{Combined: []CashFlow{{Date: d1, Amount: CAD(20)}}}
	snapshots := []SeriesPoint{
		{Date: d1, Total: CAD(20), Stock: CAD(12), Crypto: CAD(8)},
		{Date: d2, Total: CAD(21.50), Stock: CAD(13), Crypto: CAD(8.50)},
	}

	s := ComposeSeries(snapshots, book, flatLevels(100, d1), HISAAnnualRate)
	if len(s.Points) != 2 {
		t.Fatalf("len(Points) = %d want 2", len(s.Points))
	}
	for i, snap := range snapshots {
		p := s.Points[i]
		if !p.Portfolio.Equal(snap.Total) || !p.StockPortfolio.Equal(snap.Stock) || !p.CryptoPortfolio.Equal(snap.Crypto) {
			t.Errorf("Points[%d] portfolio columns = %s/%s/%s want %s/%s/%s",
				i, p.Portfolio, p.StockPortfolio, p.CryptoPortfolio, snap.Total, snap.Stock, snap.Crypto)
		}
	}
}

func TestComposeSeriesHISAColumn(t *testing.T) {
	d1, d2 := week(1), week(2)
	book := &Book{Combined: []CashFlow{{Date: d1, Amount: CAD(100)}}}
	snapshots := []SeriesPoint{{Date: d1, Total: CAD(100)}, {Date: d2, Total: CAD(100)}}

	s := ComposeSeries(snapshots, book, flatLevels(100, d1), HISAAnnualRate)
	if got, want := s.Points[0].HISA, CAD(100); !got.Equal(want) {
		t.Errorf("HISA on deposit date = %s want %s", got, want)
	}
	if got := s.Points[1].HISA; !got.GreaterThan(CAD(100)) || !got.LessThan(CAD(100.10)) {
		t.Errorf("HISA a week later = %s want a few cents over $100.00", got)
	}
}

func TestComposeSeriesDCAColumn(t *testing.T) {
	d1, d2 := week(1), week(2)
	book := &Book{Combined: []CashFlow{
		{Date: d1, Amount: CAD(100)},
		{Date: d2, Amount: CAD(100)},
	}}
	levels := new(date.History[float64])
	levels.Append(d1, 100)
	levels.Append(d2, 110)

	snapshots := []SeriesPoint{{Date: d1, Total: CAD(100)}, {Date: d2, Total: CAD(200)}}
	s := ComposeSeries(snapshots, book, levels, HISAAnnualRate)

	// Week 1: one unit at 100 is worth $100. Week 2: 1 + 100/110 units at
	// 110 is worth 110 + 100 = $210, up to the division's finite precision.
	if got, want := s.Points[0].SP500, CAD(100); !got.Equal(want) {
		t.Errorf("SP500 week 1 = %s want %s", got, want)
	}
	if got, want := s.Points[1].SP500, CAD(210); !moneyNear(got, want) {
		t.Errorf("SP500 week 2 = %s want %s", got, want)
	}
}

func TestComposeSeriesBrokenColumnIsDisclosed(t *testing.T) {
	// The second deposit predates every index observation, so the sp500
	// column fails at that flow. Earlier values survive and the gap is
	// reported; the HISA columns are untouched.
	d1, d2 := week(1), week(2)
	book := &Book{Combined: []CashFlow{
		{Date: d1, Amount: CAD(100)},
		{Date: d2, Amount: CAD(100)},
	}}
	levels := new(date.History[float64])
	levels.Append(d2.Add(1), 100) // first observation after both flows

	snapshots := []SeriesPoint{{Date: d1, Total: CAD(100)}, {Date: d2, Total: CAD(200)}}
	s := ComposeSeries(snapshots, book, levels, HISAAnnualRate)

	if len(s.Issues) == 0 {
		t.Fatal("want at least one disclosed issue for the sp500 column")
	}
	found := false
	for _, issue := range s.Issues {
		if strings.Contains(issue, "sp500") {
			found = true
		}
	}
	if !found {
		t.Errorf("Issues = %v want one mentioning the sp500 column", s.Issues)
	}
	if got := s.Points[1].HISA; !got.GreaterThan(CAD(200)) {
		t.Errorf("HISA column = %s want it unaffected by the sp500 failure", got)
	}
}

func TestChartPointJSONKeyOrder(t *testing.T) {
	p := ChartPoint{
		Date:      week(1),
		Portfolio: CAD(20), HISA: CAD(20), SP500: CAD(20),
		StockPortfolio: CAD(10), StockHISA: CAD(10), StockSP500: CAD(10),
		CryptoPortfolio: CAD(10), CryptoHISA: CAD(10), CryptoSP500: CAD(10),
	}
	b, err := p.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	got := string(b)
	keys := []string{"date", "portfolio", "hisa", "sp500", "stockPortfolio", "stockHisa", "stockSP500", "cryptoPortfolio", "cryptoHisa", "cryptoSP500"}
	last := -1
	for _, k := range keys {
		i := strings.Index(got, `"`+k+`"`)
		if i < 0 {
			t.Fatalf("key %q missing from %s", k, got)
		}
		if i < last {
			t.Errorf("key %q out of order in %s", k, got)
		}
		last = i
	}
}
