// Package tfsa computes the performance of a small weekly-funded TFSA
// portfolio (stocks, crypto and cash) and compares it against two synthetic
// benchmarks: a daily-compounding high-interest savings account and a
// dollar-cost-averaged index fund.
//
// The engine is pure: it folds immutable weekly Entry records into cash-flow
// streams and positions, replays those streams through the benchmark
// simulators, values the portfolio from a Market snapshot, and derives the
// money-weighted (IRR) and time-weighted (TWR) returns. Each computation
// builds fresh state from its inputs, so concurrent runs for different
// cutoffs need no locking.
package tfsa
