package tfsa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

// QuoteCache caches fetched quote documents under an explicit expiry policy.
// It is injected into the client instead of living as package state, so
// computations stay deterministic and tests control time.
type QuoteCache interface {
	Get(key string) ([]byte, bool)
	Put(key string, doc []byte)
}

type cacheEntry struct {
	doc    []byte
	stored time.Time
}

// MemoryCache is an in-memory QuoteCache with a time-to-live per entry.
type MemoryCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewMemoryCache returns a cache whose entries expire after ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now, entries: make(map[string]cacheEntry)}
}

// WithClock substitutes the time source, for tests.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.stored) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.doc, true
}

func (c *MemoryCache) Put(key string, doc []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{doc: doc, stored: c.now()}
}

// QuoteClient fetches current prices from a Yahoo-style chart endpoint.
// It is a thin collaborator of the engine: it only fills a Market snapshot.
type QuoteClient struct {
	HTTP    *http.Client
	Cache   QuoteCache
	BaseURL string // chart endpoint, overridable in tests
}

const defaultQuoteURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// NewQuoteClient returns a client with a 15-minute quote cache.
func NewQuoteClient() *QuoteClient {
	return &QuoteClient{
		HTTP:    new(http.Client),
		Cache:   NewMemoryCache(15 * time.Minute),
		BaseURL: defaultQuoteURL,
	}
}

// jwget performs an HTTP GET and unmarshals the JSON response, reading
// through the injected cache first.
func (c *QuoteClient) jwget(addr string, data any) error {
	if c.Cache != nil {
		if doc, ok := c.Cache.Get(addr); ok {
			return json.Unmarshal(doc, data)
		}
	}
	resp, err := c.HTTP.Get(addr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	if c.Cache != nil {
		c.Cache.Put(addr, buf.Bytes())
	}
	return json.Unmarshal(buf.Bytes(), data)
}

// Quote returns the latest market price and quote currency of a symbol.
func (c *QuoteClient) Quote(symbol string) (price float64, currency string, err error) {
	addr := c.BaseURL + url.PathEscape(symbol) + "?interval=1d&range=1d"
	var jobj any
	if err := c.jwget(addr, &jobj); err != nil {
		return 0, "", fmt.Errorf("error in wget %q: %w", symbol, err)
	}

	price, err = jsonFloat(jobj, "$.chart.result[0].meta.regularMarketPrice", symbol)
	if err != nil {
		return 0, "", err
	}
	jcur, err := jsonpath.Get("$.chart.result[0].meta.currency", jobj)
	if err != nil {
		return 0, "", fmt.Errorf("error parsing %q currency: %w", symbol, err)
	}
	currency, _ = jcur.(string)
	if price <= 0 {
		return 0, "", fmt.Errorf("%w: quote %v for %s", ErrInputData, price, symbol)
	}
	return price, currency, nil
}

// jsonFloat extracts one float from a parsed JSON document.
func jsonFloat(jobj any, path, what string) (float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("error parsing %q: %q %w", what, path, err)
	}
	// jsonpath is never clear about whether it returns a list of 1 answer or
	// a single answer: keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("error parsing %q: %q not a float: %v", what, path, jval)
	}
	return val, nil
}

// USDCAD returns the current USD to CAD exchange rate.
func (c *QuoteClient) USDCAD() (float64, error) {
	rate, _, err := c.Quote("CAD=X")
	return rate, err
}

// sp500Symbol is the chart symbol of the benchmark index.
const sp500Symbol = "^GSPC"

// UpdateMarket fetches today's quote for every position of the book plus the
// benchmark index level, converts to CAD and records them in the market.
// A symbol that fails to quote is logged and skipped; its position will show
// up in the valuation's Excluded list instead of aborting the update.
func (c *QuoteClient) UpdateMarket(m *Market, book *Book, on Date) error {
	usdcad, err := c.USDCAD()
	if err != nil {
		return fmt.Errorf("cannot fetch USD/CAD rate: %w", err)
	}

	for _, p := range book.Positions {
		symbol := p.Symbol
		if p.Class == CryptoClass {
			symbol = p.Symbol + "-CAD"
		}
		price, currency, err := c.Quote(symbol)
		if err != nil {
			log.Printf("skipping %s: %v", p.Symbol, err)
			continue
		}
		if currency == "USD" {
			price *= usdcad
		}
		if err := m.SetPrice(p.Symbol, on, price); err != nil {
			return err
		}
	}

	level, _, err := c.Quote(sp500Symbol)
	if err != nil {
		return fmt.Errorf("cannot fetch index level: %w", err)
	}
	return m.SetIndexLevel(on, level)
}
