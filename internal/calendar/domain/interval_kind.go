package domain

import (
	"fmt"

	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
)

// IntervalKind is the cadence a series repeats with.
type IntervalKind int

const (
	IntervalNone IntervalKind = iota
	IntervalWeekly
	IntervalBiweekly
	IntervalMonthly
)

// ParseIntervalKind maps the stored recurrency code onto an IntervalKind.
// Codes: 0 none, 1 weekly, 2 biweekly, 4 monthly.
func ParseIntervalKind(code int) (IntervalKind, error) {
	switch code {
	case 0:
		return IntervalNone, nil
	case 1:
		return IntervalWeekly, nil
	case 2:
		return IntervalBiweekly, nil
	case 4:
		return IntervalMonthly, nil
	default:
		return IntervalNone, sharedDomain.NewValidationError("recurrency", fmt.Sprintf("unknown code %d", code))
	}
}

// Code returns the recurrency code stored and sent over the wire.
func (k IntervalKind) Code() int {
	switch k {
	case IntervalWeekly:
		return 1
	case IntervalBiweekly:
		return 2
	case IntervalMonthly:
		return 4
	default:
		return 0
	}
}

// Weeks is the step between two occurrences of the same slot. Monthly is a
// fixed four week step, not a calendar month.
func (k IntervalKind) Weeks() int {
	switch k {
	case IntervalWeekly:
		return 1
	case IntervalBiweekly:
		return 2
	case IntervalMonthly:
		return 4
	default:
		return 0
	}
}

// Recurs is false for one-off templates.
func (k IntervalKind) Recurs() bool {
	return k.Weeks() > 0
}

func (k IntervalKind) String() string {
	switch k {
	case IntervalWeekly:
		return "weekly"
	case IntervalBiweekly:
		return "biweekly"
	case IntervalMonthly:
		return "monthly"
	default:
		return "none"
	}
}
