package tfsa

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMemoryCacheExpiry(t *testing.T) {
	clock := time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(15 * time.Minute).WithClock(func() time.Time { return clock })

	c.Put("k", []byte("doc"))
	if _, ok := c.Get("k"); !ok {
		t.Fatal("Get right after Put = miss, want hit")
	}

	clock = clock.Add(14 * time.Minute)
	if doc, ok := c.Get("k"); !ok || string(doc) != "doc" {
		t.Errorf("Get within ttl = %q, %v want doc hit", doc, ok)
	}

	clock = clock.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("Get past ttl = hit, want miss")
	}
}

// chartBody is the slice of the chart endpoint response the client reads.
func chartBody(price float64, currency string) string {
	return fmt.Sprintf(`{"chart": {"result": [{"meta": {"regularMarketPrice": %v, "currency": %q}}]}}`, price, currency)
}

func quoteServer(t *testing.T, quotes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Path[len("/"):]
		body, ok := quotes[symbol]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(srv *httptest.Server) *QuoteClient {
	c := NewQuoteClient()
	c.HTTP = srv.Client()
	c.BaseURL = srv.URL + "/"
	return c
}

func TestQuote(t *testing.T) {
	srv := quoteServer(t, map[string]string{
		"XEQT.TO": chartBody(33.25, "CAD"),
	})
	c := testClient(srv)

	price, currency, err := c.Quote("XEQT.TO")
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if price != 33.25 || currency != "CAD" {
		t.Errorf("Quote() = %v, %q want 33.25, CAD", price, currency)
	}

	if _, _, err := c.Quote("NOPE"); err == nil {
		t.Error("Quote(unknown) error = nil want error")
	}
}

func TestQuoteRejectsNonPositivePrice(t *testing.T) {
	srv := quoteServer(t, map[string]string{"BAD": chartBody(0, "CAD")})
	if _, _, err := testClient(srv).Quote("BAD"); err == nil {
		t.Error("Quote(zero price) error = nil want error")
	}
}

func TestQuoteReadsThroughCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, chartBody(100, "CAD"))
	}))
	t.Cleanup(srv.Close)
	c := testClient(srv)

	for i := 0; i < 3; i++ {
		if _, _, err := c.Quote("XEQT.TO"); err != nil {
			t.Fatalf("Quote() error = %v", err)
		}
	}
	if hits != 1 {
		t.Errorf("server hits = %d want 1, later reads come from the cache", hits)
	}
}

func TestUpdateMarket(t *testing.T) {
	srv := quoteServer(t, map[string]string{
		"CAD=X":   chartBody(1.35, "CAD"),
		"VOO":     chartBody(512.40, "USD"),
		"XEQT.TO": chartBody(33.25, "CAD"),
		"BTC-CAD": chartBody(91500, "CAD"),
		"^GSPC":   chartBody(5500.25, "USD"),
	})
	c := testClient(srv)

	book := &Book{Positions: []Position{
		{Symbol: "BTC", Class: CryptoClass, Quantity: Q(0.001), AvgCost: CAD(90000), Currency: "CAD"},
		{Symbol: "GONE", Class: StockClass, Quantity: Q(1), AvgCost: CAD(1), Currency: "CAD"},
		{Symbol: "VOO", Class: StockClass, Quantity: Q(0.1), AvgCost: M(500, "USD"), Currency: "USD"},
		{Symbol: "XEQT.TO", Class: StockClass, Quantity: Q(1), AvgCost: CAD(30), Currency: "CAD"},
	}}
	m := NewMarket()
	on := NewDate(2025, 9, 14)
	if err := c.UpdateMarket(m, book, on); err != nil {
		t.Fatalf("UpdateMarket() error = %v", err)
	}

	// USD quotes convert at the fetched rate.
	price, ok := m.PriceAsOf("VOO", on)
	if !ok {
		t.Fatal("PriceAsOf(VOO) = not found")
	}
	if want := CAD(512.40 * 1.35); !price.Equal(want) {
		t.Errorf("PriceAsOf(VOO) = %s want %s", price, want)
	}

	// Crypto symbols quote against their CAD pair.
	price, ok = m.PriceAsOf("BTC", on)
	if !ok || !price.Equal(CAD(91500)) {
		t.Errorf("PriceAsOf(BTC) = %s, %v want $91,500.00", price, ok)
	}

	// An unquotable symbol is skipped, not fatal.
	if _, ok := m.PriceAsOf("GONE", on); ok {
		t.Error("PriceAsOf(GONE) = found, want skipped")
	}

	level, ok := m.IndexLevels().Get(on)
	if !ok || level != 5500.25 {
		t.Errorf("index level = %v, %v want 5500.25", level, ok)
	}
}
