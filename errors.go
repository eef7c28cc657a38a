package tfsa

import "errors"

// The engine's failure taxonomy. Callers branch with errors.Is; detail is
// carried by wrapping (fmt.Errorf with %w).
var (
	// ErrInputData reports a malformed or missing required field in an entry
	// or price record. It is never silently coerced to zero.
	ErrInputData = errors.New("invalid input data")

	// ErrPriceUnavailable reports that a symbol has no resolvable price at
	// the needed date. Valuation excludes the position and discloses it.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrDivergence reports that the IRR root-finding failed to bracket or
	// converge. It affects only the money-weighted return field.
	ErrDivergence = errors.New("root-finding did not converge")

	// ErrDegenerateInput reports a cash-flow list with no defined return:
	// empty, zero total duration, or all flows of the same sign.
	ErrDegenerateInput = errors.New("degenerate cash-flow input")
)
