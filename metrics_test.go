package tfsa

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// testSystem builds a three-week system: both ledgers follow the default
// schedule, week 1 carries one fill each, and the market prices everything
// from week 1 on.
func testSystem(t *testing.T) *System {
	t.Helper()
	stock := []Entry{
		{WeekStart: week(1), DepositCAD: 10, Trades: []Trade{buyTrade("XEQT", 0.3, 30, "CAD")}},
		deposit(week(2), 11),
		deposit(week(3), 12),
	}
	crypto := []Entry{
		{WeekStart: week(1), DepositCAD: 10, Trades: []Trade{cryptoBuy("BTC", 0.0001, 80000)}},
		deposit(week(2), 11),
		deposit(week(3), 12),
	}
	market := NewMarket()
	if err := market.SetPrice("XEQT", week(1), 100); err != nil {
		t.Fatal(err)
	}
	if err := market.SetPrice("BTC", week(1), 400000); err != nil {
		t.Fatal(err)
	}
	for i, level := range []float64{100, 105, 110} {
		if err := market.SetIndexLevel(week(i+1), level); err != nil {
			t.Fatal(err)
		}
	}
	return NewSystem(stock, crypto, market)
}

func TestMetricsEndToEnd(t *testing.T) {
	s := testSystem(t)
	m, err := s.Metrics(week(3))
	if err != nil {
		t.Fatalf("Metrics() error = %v", err)
	}

	if m.Date != week(3) {
		t.Errorf("Date = %s want %s", m.Date, week(3))
	}
	if got, want := m.TotalContributed, CAD(66); !got.Equal(want) {
		t.Errorf("TotalContributed = %s want %s", got, want)
	}
	// 0.3 XEQT at $100, 0.0001 BTC at $400000, and the $49 of deposits the
	// fills never spent ($66 in, $9 + $8 out).
	if got, want := m.CurrentValue, CAD(119); !got.Equal(want) {
		t.Errorf("CurrentValue = %s want %s", got, want)
	}
	if got, want := m.UnrealizedPL, CAD(53); !got.Equal(want) {
		t.Errorf("UnrealizedPL = %s want %s", got, want)
	}
	if got, want := m.StockValue, CAD(30); !got.Equal(want) {
		t.Errorf("StockValue = %s want %s", got, want)
	}
	if got, want := m.CryptoValue, CAD(40); !got.Equal(want) {
		t.Errorf("CryptoValue = %s want %s", got, want)
	}
	if got, want := m.CashValue, CAD(49); !got.Equal(want) {
		t.Errorf("CashValue = %s want %s", got, want)
	}

	// Deposits total $66 over two weeks; a 3% account barely moves it.
	if !m.HISAValue.GreaterThan(CAD(66)) || !m.HISAValue.LessThan(CAD(66.20)) {
		t.Errorf("HISAValue = %s want a touch over $66.00", m.HISAValue)
	}
	if !m.DeltaVsHISA.IsPositive() {
		t.Errorf("DeltaVsHISA = %s want positive, portfolio beats the account", m.DeltaVsHISA)
	}

	// DCA units: 20/100 + 22/105 + 24/110, valued at 110 = $69.0476...
	if !m.SP500Value.GreaterThan(CAD(69)) || !m.SP500Value.LessThan(CAD(69.10)) {
		t.Errorf("SP500Value = %s want ≈ $69.05", m.SP500Value)
	}
	if !m.DeltaVsSP500.IsPositive() {
		t.Errorf("DeltaVsSP500 = %s want positive", m.DeltaVsSP500)
	}

	if m.IRRErr != nil {
		t.Fatalf("IRRErr = %v want defined IRR", m.IRRErr)
	}
	if m.IRR <= 0 {
		t.Errorf("IRR = %s want positive, the two-week gain annualizes far above zero", m.IRR)
	}
	// Every price is flat across the window and uninvested deposits sit as
	// cash in each historical valuation, so once the flows are stripped out
	// the time-weighted chain is exactly flat.
	if m.TWRErr != nil {
		t.Fatalf("TWRErr = %v want defined TWR", m.TWRErr)
	}
	if m.TWR != 0 {
		t.Errorf("TWR = %s want exactly zero on flat prices", m.TWR)
	}

	if len(m.Excluded) != 0 || len(m.Issues) != 0 {
		t.Errorf("Excluded = %v Issues = %v want none", m.Excluded, m.Issues)
	}
}

func TestMetricsAsOfWeekTrimsLedgers(t *testing.T) {
	s := testSystem(t)
	m, err := s.MetricsAsOfWeek(2)
	if err != nil {
		t.Fatalf("MetricsAsOfWeek(2) error = %v", err)
	}
	if m.Date != week(2) {
		t.Errorf("Date = %s want %s", m.Date, week(2))
	}
	// Week 3 deposits must not leak into the cutoff view.
	if got, want := m.TotalContributed, CAD(42); !got.Equal(want) {
		t.Errorf("TotalContributed = %s want %s", got, want)
	}

	if _, err := s.MetricsAsOfWeek(0); !errors.Is(err, ErrDegenerateInput) {
		t.Errorf("MetricsAsOfWeek(0) error = %v want ErrDegenerateInput", err)
	}
}

func TestMetricsIRRFailureIsIsolated(t *testing.T) {
	// Both deposits are fully spent on positions no price can resolve: the
	// ending value is zero, every cash flow has one sign, and no
	// money-weighted rate exists. The snapshot must still come back with
	// everything else filled in.
	stock := []Entry{{WeekStart: week(1), DepositCAD: 10, Trades: []Trade{buyTrade("XEQT", 1, 10, "CAD")}}}
	crypto := []Entry{{WeekStart: week(1), DepositCAD: 10, Trades: []Trade{cryptoBuy("BTC", 0.0001, 100000)}}}
	market := NewMarket()
	market.SetIndexLevel(week(1), 100)
	s := NewSystem(stock, crypto, market)

	m, err := s.Metrics(week(2))
	if err != nil {
		t.Fatalf("Metrics() error = %v", err)
	}
	if !errors.Is(m.IRRErr, ErrDegenerateInput) {
		t.Errorf("IRRErr = %v want ErrDegenerateInput", m.IRRErr)
	}
	if !m.HISAValue.GreaterThan(CAD(20)) {
		t.Errorf("HISAValue = %s want it computed despite the IRR failure", m.HISAValue)
	}
	if got, want := m.TotalContributed, CAD(20); !got.Equal(want) {
		t.Errorf("TotalContributed = %s want %s", got, want)
	}
}

func TestMetricsDisclosesMissingIndexLevels(t *testing.T) {
	s := testSystem(t)
	s.Market = NewMarket() // prices gone too, so positions are excluded
	s.Market.SetPrice("XEQT", week(1), 100)
	s.Market.SetPrice("BTC", week(1), 300000)

	m, err := s.Metrics(week(3))
	if err != nil {
		t.Fatalf("Metrics() error = %v", err)
	}
	if len(m.Issues) == 0 {
		t.Fatal("want a disclosed sp500 issue when no index level exists")
	}
	if !strings.Contains(m.Issues[0], "sp500") {
		t.Errorf("Issues[0] = %q want it naming the sp500 benchmark", m.Issues[0])
	}
	if !m.SP500Value.IsZero() {
		t.Errorf("SP500Value = %s want unset", m.SP500Value)
	}
	// Everything else still stands: $60 of priced positions plus the $49 of
	// unspent deposits.
	if got, want := m.CurrentValue, CAD(109); !got.Equal(want) {
		t.Errorf("CurrentValue = %s want %s", got, want)
	}
}

func TestMetricsSnapshotJSON(t *testing.T) {
	s := testSystem(t)
	m, err := s.Metrics(week(3))
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	got := string(b)
	for _, key := range []string{`"date"`, `"totalContributed"`, `"currentValue"`, `"irr"`, `"twr"`, `"hisaValue"`, `"sp500Value"`} {
		if !strings.Contains(got, key) {
			t.Errorf("marshaled snapshot missing %s: %s", key, got)
		}
	}
	if strings.Contains(got, `"irrError"`) {
		t.Errorf("marshaled snapshot carries irrError despite a defined IRR: %s", got)
	}

	m.IRRErr = ErrDivergence
	b, err = json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"irrError"`) || strings.Contains(string(b), `"irr":`) {
		t.Errorf("marshaled snapshot = %s want irrError in place of irr", b)
	}
}

func TestChartOnePointPerWeek(t *testing.T) {
	s := testSystem(t)
	series, err := s.Chart(week(3))
	if err != nil {
		t.Fatalf("Chart() error = %v", err)
	}
	// Three flow dates, the last doubling as the valuation date.
	if len(series.Points) != 3 {
		t.Fatalf("len(Points) = %d want 3", len(series.Points))
	}
	for i := range series.Points {
		if series.Points[i].Date != week(i+1) {
			t.Errorf("Points[%d].Date = %s want %s", i, series.Points[i].Date, week(i+1))
		}
	}
	// Each point carries the cash balance of its own date: $3 uninvested on
	// top of $70 of positions in week 1, growing by each later deposit.
	if got, want := series.Points[0].Portfolio, CAD(73); !got.Equal(want) {
		t.Errorf("week 1 Portfolio = %s want %s", got, want)
	}
	if got, want := series.Points[2].Portfolio, CAD(119); !got.Equal(want) {
		t.Errorf("final Portfolio = %s want %s", got, want)
	}
	if len(series.Issues) != 0 {
		t.Errorf("Issues = %v want none", series.Issues)
	}
}
