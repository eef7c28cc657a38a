package tfsa

import (
	"fmt"
	"math"
)

// Numerical contract shared by both IRR phases: a candidate rate is accepted
// when the absolute NPV falls under npvTolerance (currency-scale precision),
// and every loop is iteration-capped so a pathological stream fails instead
// of hanging.
const (
	npvTolerance   = 1e-6
	newtonMaxIter  = 60
	bisectMaxIter  = 200
	bracketLo      = -0.99
	bracketHi      = 10.0
	bracketMaxGrow = 20 // doublings of the upper bound while hunting a sign change
)

// npvFunc is the net present value of a dated cash-flow stream as a function
// of the annual rate: Σ CF_i / (1+r)^(days_i/365).
type npvFunc func(rate float64) float64

// IRR computes the money-weighted annual return of a chronological cash-flow
// stream. The stream must end with a final liquidation flow equal to the
// current portfolio value, negated convention-wise: contributions positive,
// ending value negative, or the inverse; only the sign mix matters.
//
// The solver is a two-phase strategy: Newton-Raphson on the NPV function
// first, and bisection over an outward-growing bracket when Newton diverges.
// Both phases share the same convergence tolerance.
func IRR(flows []CashFlow) (float64, error) {
	if len(flows) < 2 {
		return 0, fmt.Errorf("%w: need at least two cash flows, got %d", ErrDegenerateInput, len(flows))
	}

	t0 := flows[0].Date
	var positive, negative bool
	years := make([]float64, len(flows))
	amounts := make([]float64, len(flows))
	for i, f := range flows {
		years[i] = float64(f.Date.Sub(t0)) / 365
		amounts[i] = f.Amount.AsFloat()
		if amounts[i] > 0 {
			positive = true
		}
		if amounts[i] < 0 {
			negative = true
		}
	}
	if !positive || !negative {
		return 0, fmt.Errorf("%w: all cash flows have the same sign, no real rate exists", ErrDegenerateInput)
	}
	if years[len(years)-1] == 0 {
		return 0, fmt.Errorf("%w: zero total duration", ErrDegenerateInput)
	}

	npv := func(rate float64) float64 {
		var sum float64
		for i := range amounts {
			sum += amounts[i] / math.Pow(1+rate, years[i])
		}
		return sum
	}

	if rate, ok := newtonPhase(npv); ok {
		return rate, nil
	}
	return bisectPhase(npv)
}

// newtonPhase attempts Newton-Raphson with a numerically differenced
// derivative. It reports ok=false on a flat derivative, a step outside the
// (-1, +inf) domain, or the iteration cap, leaving the decision to the
// fallback.
func newtonPhase(npv npvFunc) (rate float64, ok bool) {
	const h = 1e-7
	rate = 0.1 // starting guess
	for i := 0; i < newtonMaxIter; i++ {
		v := npv(rate)
		if math.Abs(v) < npvTolerance {
			return rate, true
		}
		derivative := (npv(rate+h) - npv(rate-h)) / (2 * h)
		if math.Abs(derivative) < 1e-12 || math.IsNaN(derivative) || math.IsInf(derivative, 0) {
			return 0, false
		}
		next := rate - v/derivative
		if math.IsNaN(next) || next <= -1 || next > 1e6 {
			return 0, false // overshot the meaningful domain
		}
		rate = next
	}
	return 0, false
}

// bisectPhase brackets a sign change of the NPV starting from a conservative
// interval, doubling the upper bound a limited number of times, then bisects.
func bisectPhase(npv npvFunc) (float64, error) {
	lo, hi := bracketLo, bracketHi
	flo, fhi := npv(lo), npv(hi)
	for i := 0; flo*fhi > 0 && i < bracketMaxGrow; i++ {
		hi *= 2
		fhi = npv(hi)
	}
	if flo*fhi > 0 {
		return 0, fmt.Errorf("%w: no sign change of NPV in [%g, %g]", ErrDivergence, lo, hi)
	}

	for i := 0; i < bisectMaxIter; i++ {
		mid := (lo + hi) / 2
		fmid := npv(mid)
		if math.Abs(fmid) < npvTolerance || (hi-lo)/2 < 1e-12 {
			return mid, nil
		}
		if flo*fmid < 0 {
			hi = mid
		} else {
			lo, flo = mid, fmid
		}
	}
	return 0, fmt.Errorf("%w: bisection exceeded %d iterations", ErrDivergence, bisectMaxIter)
}

// ValuePoint is one observation of the portfolio's total value.
type ValuePoint struct {
	Date  Date
	Value Money
}

// TWR computes the time-weighted return over a valuation timeline. The
// timeline is partitioned into sub-periods bounded by cash-flow events;
// flows are assumed to land exactly at period boundaries, so the flow at the
// end of a period is removed from that period's performance:
//
//	r_p = (V_end - flow_at_end) / V_start - 1
//
// and the sub-periods chain multiplicatively. A period starting from a zero
// value (the first ever) contributes a clean factor of 1.
func TWR(values []ValuePoint, flows []CashFlow) (float64, error) {
	if len(values) < 2 {
		return 0, fmt.Errorf("%w: need at least two valuation points, got %d", ErrDegenerateInput, len(values))
	}

	flowOn := make(map[Date]float64, len(flows))
	for _, f := range flows {
		flowOn[f.Date] += f.Amount.AsFloat()
	}

	product := 1.0
	for i := 1; i < len(values); i++ {
		start := values[i-1].Value.AsFloat()
		end := values[i].Value.AsFloat()
		flow := flowOn[values[i].Date]
		if start == 0 {
			continue // compounding starts clean
		}
		product *= (end - flow) / start
	}
	return product - 1, nil
}
