package tfsa

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/sgallant/tfsa/date"
)

// HISAAnnualRate is the fixed yearly rate of the savings-account benchmark.
const HISAAnnualRate = 0.03

// HISA simulates the savings-account benchmark: every cash flow becomes
// principal that compounds daily at a fixed annual rate.
//
// The state is a single accrued principal carried forward from the last flow
// date; growing it before each new flow is arithmetically identical to
// compounding every deposit independently from its own date, because daily
// growth factors multiply.
type HISA struct {
	annual    float64
	principal float64
	last      Date
	accruing  bool
}

// NewHISA returns a fresh simulator. State is never shared across runs.
func NewHISA(annualRate float64) *HISA {
	return &HISA{annual: annualRate}
}

// dailyRate derives the day-over-day factor from the annual rate:
// (1 + annual)^(1/365) - 1.
func (h *HISA) dailyRate() float64 {
	return math.Pow(1+h.annual, 1.0/365) - 1
}

// grow compounds an amount over n whole days.
func (h *HISA) grow(amount float64, days int) float64 {
	return amount * math.Pow(1+h.dailyRate(), float64(days))
}

// Flow accrues the principal up to the flow date and adds the flow amount as
// new principal. Flows must arrive in non-decreasing date order.
func (h *HISA) Flow(f CashFlow) error {
	if h.accruing {
		days := f.Date.Sub(h.last)
		if days < 0 {
			return fmt.Errorf("%w: flow on %s is before the previous flow on %s", ErrInputData, f.Date, h.last)
		}
		h.principal = h.grow(h.principal, days)
	}
	h.principal += f.Amount.AsFloat()
	h.last = f.Date
	h.accruing = true
	return nil
}

// Replay feeds a whole chronological stream through the simulator.
func (h *HISA) Replay(flows []CashFlow) error {
	for _, f := range flows {
		if err := h.Flow(f); err != nil {
			return err
		}
	}
	return nil
}

// ValueAsOf accrues the principal forward to an arbitrary date and reports
// it, without mutating the simulator. Days before the last flow truncate to
// the principal as recorded.
func (h *HISA) ValueAsOf(on Date) Money {
	if !h.accruing {
		return CAD(0)
	}
	days := on.Sub(h.last)
	if days <= 0 {
		return CAD(h.principal)
	}
	return CAD(h.grow(h.principal, days))
}

// IndexDCA simulates the index-fund benchmark: every positive cash flow buys
// units at the index level in force on the flow date, and the holding is
// valued at the level in force on the valuation date. Levels come from a
// history of observations; the nearest observation at or before the date is
// used.
type IndexDCA struct {
	levels *date.History[float64]
	units  decimal.Decimal
}

// NewIndexDCA returns a fresh simulator over the given index level history.
func NewIndexDCA(levels *date.History[float64]) *IndexDCA {
	return &IndexDCA{levels: levels}
}

// Units returns the units held so far.
func (s *IndexDCA) Units() Quantity { return Quantity{value: s.units} }

// level returns the index level in force on a date.
func (s *IndexDCA) level(on Date) (decimal.Decimal, error) {
	l, ok := s.levels.ValueAsOf(on)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no index level at or before %s", ErrPriceUnavailable, on)
	}
	if l <= 0 {
		return decimal.Zero, fmt.Errorf("%w: index level %v on %s is not positive", ErrInputData, l, on)
	}
	return decimal.NewFromFloat(l), nil
}

// Flow acquires (or disposes of, for withdrawals) amount/level units.
// A missing or non-positive level fails the flow rather than minting
// infinite or negative units.
func (s *IndexDCA) Flow(f CashFlow) error {
	level, err := s.level(f.Date)
	if err != nil {
		return err
	}
	s.units = s.units.Add(f.Amount.Decimal().Div(level))
	return nil
}

// Replay feeds a whole chronological stream through the simulator.
func (s *IndexDCA) Replay(flows []CashFlow) error {
	for _, f := range flows {
		if err := s.Flow(f); err != nil {
			return err
		}
	}
	return nil
}

// ValueAsOf prices the units held at the level in force on the given date.
func (s *IndexDCA) ValueAsOf(on Date) (Money, error) {
	if s.units.IsZero() {
		return CAD(0), nil
	}
	level, err := s.level(on)
	if err != nil {
		return Money{}, err
	}
	return M(s.units.Mul(level), "CAD"), nil
}
