package tfsa

import "sort"

// Valuation is the point-in-time market value of the portfolio, split by
// asset class. Cash is supplied by the caller, normally the ledger-derived
// balance from CashAt.
type Valuation struct {
	Date   Date
	Stock  Money
	Crypto Money
	Cash   Money

	// Excluded lists symbols held but left out of the value because no price
	// could be resolved. The exclusion is disclosed, never folded into zero.
	Excluded []string
}

// Total returns stock + crypto + cash.
func (v Valuation) Total() Money {
	return v.Stock.Add(v.Crypto).Add(v.Cash)
}

// Value prices the book's closing positions with the market snapshot as of a
// date. Positions with no resolvable price are collected in Excluded and the
// valuation proceeds without them.
func Value(book *Book, market *Market, cash Money, on Date) Valuation {
	v := Valuation{Date: on, Stock: CAD(0), Crypto: CAD(0), Cash: cash}
	for _, p := range book.Positions {
		price, ok := market.PriceAsOf(p.Symbol, on)
		if !ok {
			v.Excluded = append(v.Excluded, p.Symbol)
			continue
		}
		value := price.Mul(p.Quantity)
		if p.Class == CryptoClass {
			v.Crypto = v.Crypto.Add(value)
		} else {
			v.Stock = v.Stock.Add(value)
		}
	}
	sort.Strings(v.Excluded)
	return v
}
