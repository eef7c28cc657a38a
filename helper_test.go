package tfsa

// helpers shared by the package tests.

// epoch is the first day of week 1 in all tests.
var epoch = NewDate(2025, 9, 7)

// week returns the start of the n-th schedule week.
func week(n int) Date { return epoch.Add((n - 1) * 7) }

// deposit builds a deposit-only weekly entry.
func deposit(on Date, cad float64) Entry {
	return Entry{WeekStart: on, DepositCAD: cad}
}

// buyTrade builds a validated equity buy fill.
func buyTrade(ticker string, qty, price float64, currency string) Trade {
	return Trade{Action: Buy, Ticker: ticker, Qty: Q(qty), RawPrice: price, Currency: currency}
}

// cryptoBuy builds a validated crypto buy fill (always CAD).
func cryptoBuy(symbol string, qty, price float64) Trade {
	return Trade{Action: Buy, Symbol: symbol, Qty: Q(qty), RawPrice: price}
}

// moneyNear reports whether two amounts agree to within a tenth of a cent.
// Unit accounting divides at finite precision, so derived values can miss an
// exact decimal by a sliver.
func moneyNear(got, want Money) bool {
	diff := got.Sub(want)
	if diff.IsNegative() {
		diff = diff.Neg()
	}
	return diff.LessThan(CAD(0.001))
}
