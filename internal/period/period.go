// Package period resolves the inclusive date ranges the attendance grid,
// payroll and transaction history screens fetch their data for.
//
// A range is derived from a period type plus a reference month, or from
// explicit bounds for CUSTOM. Resolution is pure calendar arithmetic.
package period

import (
	"errors"
	"fmt"
	"time"
)

// Type selects how a reference month is cut into a range.
type Type string

const (
	FirstHalf  Type = "FIRST_HALF"  // day 1 - 15
	SecondHalf Type = "SECOND_HALF" // day 16 - end of month
	FullMonth  Type = "FULL_MONTH"  // day 1 - end of month
	Custom     Type = "CUSTOM"      // explicit bounds
)

// Valid reports whether t is a known period type.
func (t Type) Valid() bool {
	switch t {
	case FirstHalf, SecondHalf, FullMonth, Custom:
		return true
	}
	return false
}

// halfMonthSplit is the last day of the first half of any month.
const halfMonthSplit = 15

var (
	ErrUnknownType    = errors.New("unknown period type")
	ErrMissingBounds  = errors.New("custom period requires both dateFrom and dateTo")
	ErrInvertedPeriod = errors.New("invalid period: dateFrom after dateTo")
	ErrInvalidMonth   = errors.New("invalid reference month")
)

// Resolved is an inclusive calendar range, From <= To.
type Resolved struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

// Contains reports whether d falls inside [From, To].
func (r Resolved) Contains(d Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// Days returns the number of calendar days in the range.
func (r Resolved) Days() int {
	return int(r.To.t.Sub(r.From.t).Hours()/24) + 1
}

func (r Resolved) String() string {
	return "[" + r.From.String() + ", " + r.To.String() + "]"
}

// Resolve turns a period type and reference month into a concrete range.
// customFrom and customTo are only read for CUSTOM, where both are required
// and must not be inverted.
func Resolve(t Type, ref Month, customFrom, customTo *Date) (Resolved, error) {
	if t == Custom {
		if customFrom == nil || customTo == nil || customFrom.IsZero() || customTo.IsZero() {
			return Resolved{}, ErrMissingBounds
		}
		if customFrom.After(*customTo) {
			return Resolved{}, fmt.Errorf("%w: %s > %s", ErrInvertedPeriod, customFrom, customTo)
		}
		return Resolved{From: *customFrom, To: *customTo}, nil
	}

	if err := ref.validate(); err != nil {
		return Resolved{}, err
	}

	switch t {
	case FirstHalf:
		return Resolved{From: ref.Day(1), To: ref.Day(halfMonthSplit)}, nil
	case SecondHalf:
		return Resolved{From: ref.Day(halfMonthSplit + 1), To: ref.Last()}, nil
	case FullMonth:
		return Resolved{From: ref.First(), To: ref.Last()}, nil
	default:
		return Resolved{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

// DefaultType is the period type pre-selected on first render: the half of
// the month today falls in.
func DefaultType(today time.Time) Type {
	if today.Day() <= halfMonthSplit {
		return FirstHalf
	}
	return SecondHalf
}

// ParseType parses a period type tag, case-sensitively.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}
