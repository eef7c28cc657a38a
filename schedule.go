package tfsa

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Schedule is the deterministic weekly contribution plan: week 1 starts at
// Epoch and each sub-portfolio (stock, crypto) receives Base on week 1,
// Base+1 on week 2, and so on. There is no calendar logic; a week is exactly
// seven days.
type Schedule struct {
	Epoch Date  // first day of week 1
	Base  Money // per-portfolio deposit of week 1
}

// DefaultSchedule is the plan the ledger started with: CAD 10 per book on
// the week of 2025-09-07, increasing by one dollar every week.
func DefaultSchedule() Schedule {
	return Schedule{Epoch: NewDate(2025, 9, 7), Base: CAD(10)}
}

// WeekOf maps a calendar date to its 1-based week index.
// Dates before the epoch are outside the schedule's domain.
func (s Schedule) WeekOf(on Date) (int, error) {
	days := on.Sub(s.Epoch)
	if days < 0 {
		return 0, fmt.Errorf("%w: %s is before the schedule epoch %s", ErrDegenerateInput, on, s.Epoch)
	}
	return days/7 + 1, nil
}

// StartOfWeek returns the first day of the given 1-based week.
func (s Schedule) StartOfWeek(week int) Date {
	return s.Epoch.Add((week - 1) * 7)
}

// Contribution returns the per-portfolio deposit for the given week:
// Base + (week - 1).
func (s Schedule) Contribution(week int) Money {
	if week < 1 {
		return CAD(0)
	}
	return s.Base.Add(CAD(week - 1))
}

// Combined returns the contribution across both sub-portfolios for the week:
// 2 * (Base + week - 1).
func (s Schedule) Combined(week int) Money {
	return s.Contribution(week).Add(s.Contribution(week))
}

// TotalThrough returns the cumulative combined contribution of weeks 1..n-1,
// the historical total before week n. The triangular sum is computed in
// closed form on decimals, so it stays exact over any number of weeks:
//
//	Σ_{k=1}^{n-1} 2*(Base + k - 1) = 2*(n-1)*Base + (n-1)*(n-2)
func (s Schedule) TotalThrough(week int) Money {
	if week <= 1 {
		return CAD(0)
	}
	n := int64(week)
	deposits := s.Base.Decimal().Mul(decimal.NewFromInt(2 * (n - 1)))
	increments := decimal.NewFromInt((n - 1) * (n - 2))
	return M(deposits.Add(increments), "CAD")
}
