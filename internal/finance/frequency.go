// Package finance computes the derived budget figures shown to users: monthly
// income, per-category variance, cash flow and an overall health score.
//
// Everything in this package is a pure function of its arguments. Amounts are
// whatever unit the caller supplies (the API passes cents) and are never
// rounded here; rounding belongs to the presentation layer.
package finance

import (
	"errors"
	"fmt"
)

// Frequency is the cadence at which an income or expense recurs.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiWeekly Frequency = "bi-weekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyYearly   Frequency = "yearly"
	FrequencyOneTime  Frequency = "one-time"
)

// Monthly multipliers. One-time amounts are excluded from recurring totals.
const (
	WeeksPerMonth   = 4.33
	BiWeeksPerMonth = 2.17
	MonthsPerYear   = 12.0
)

// ErrInvalidFrequency is matched by every *InvalidFrequencyError.
var ErrInvalidFrequency = errors.New("invalid frequency")

// InvalidFrequencyError reports a frequency value outside the known set.
type InvalidFrequencyError struct {
	Value string
}

func (e *InvalidFrequencyError) Error() string {
	return fmt.Sprintf("invalid frequency %q", e.Value)
}

// Is lets errors.Is(err, ErrInvalidFrequency) succeed.
func (e *InvalidFrequencyError) Is(target error) bool {
	return target == ErrInvalidFrequency
}

// Frequencies lists every recognised cadence.
func Frequencies() []Frequency {
	return []Frequency{FrequencyWeekly, FrequencyBiWeekly, FrequencyMonthly, FrequencyYearly, FrequencyOneTime}
}

// Valid reports whether f is one of the recognised cadences.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiWeekly, FrequencyMonthly, FrequencyYearly, FrequencyOneTime:
		return true
	}
	return false
}

// ParseFrequency converts s into a Frequency or returns an *InvalidFrequencyError.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if !f.Valid() {
		return "", &InvalidFrequencyError{Value: s}
	}
	return f, nil
}

// Normalize converts amount paid at frequency f into its monthly equivalent.
// Zero and negative amounts pass through unchanged.
func Normalize(amount float64, f Frequency) (float64, error) {
	switch f {
	case FrequencyWeekly:
		return amount * WeeksPerMonth, nil
	case FrequencyBiWeekly:
		return amount * BiWeeksPerMonth, nil
	case FrequencyMonthly:
		return amount, nil
	case FrequencyYearly:
		return amount / MonthsPerYear, nil
	case FrequencyOneTime:
		return 0, nil
	default:
		return 0, &InvalidFrequencyError{Value: string(f)}
	}
}
