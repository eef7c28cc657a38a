package tfsa

import (
	"time"

	"github.com/sgallant/tfsa/date"
)

// Date is the calendar date type used throughout the engine.
type Date = date.Date

// Range is an inclusive range of dates.
type Range = date.Range

// NewRange builds an inclusive date range, swapping reversed bounds.
func NewRange(from, to Date) Range { return date.NewRange(from, to) }

// NewDate returns a normalized Date for the given year, month, and day.
func NewDate(year int, month time.Month, day int) Date { return date.New(year, month, day) }

// Today returns the current date.
func Today() Date { return date.Today() }

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) { return date.Parse(s) }
