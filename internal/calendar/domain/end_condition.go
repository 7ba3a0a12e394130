package domain

import (
	"encoding/json"
	"fmt"
	"time"

	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
)

// EndKind tags the variant held by an EndCondition.
type EndKind string

const (
	EndsNever      EndKind = "never"
	EndsOnDate     EndKind = "on_date"
	EndsAfterCount EndKind = "after_count"
)

const dateLayout = "2006-01-02"

// EndCondition bounds how long a series keeps producing occurrences.
// The zero value is Never.
type EndCondition struct {
	kind  EndKind
	date  time.Time
	count int
}

// EndNever never stops; only the viewing window bounds expansion.
func EndNever() EndCondition {
	return EndCondition{kind: EndsNever}
}

// EndOnDate excludes occurrences on calendar dates after d.
func EndOnDate(d time.Time) EndCondition {
	return EndCondition{kind: EndsOnDate, date: DateOf(d)}
}

// EndAfterCount keeps the first n occurrences of the whole series.
func EndAfterCount(n int) (EndCondition, error) {
	if n < 1 {
		return EndCondition{}, sharedDomain.NewValidationError("end_series", fmt.Sprintf("count must be positive, got %d", n))
	}
	return EndCondition{kind: EndsAfterCount, count: n}, nil
}

func (c EndCondition) Kind() EndKind {
	if c.kind == "" {
		return EndsNever
	}
	return c.kind
}

// Date returns the last valid date for OnDate conditions.
func (c EndCondition) Date() (time.Time, bool) {
	return c.date, c.kind == EndsOnDate
}

// Count returns n for AfterCount conditions.
func (c EndCondition) Count() (int, bool) {
	return c.count, c.kind == EndsAfterCount
}

// Validate checks the variant payload.
func (c EndCondition) Validate() error {
	switch c.Kind() {
	case EndsNever:
		return nil
	case EndsOnDate:
		if c.date.IsZero() {
			return sharedDomain.NewValidationError("end_series", "on_date requires a date")
		}
		return nil
	case EndsAfterCount:
		if c.count < 1 {
			return sharedDomain.NewValidationError("end_series", "after_count requires a positive count")
		}
		return nil
	default:
		return sharedDomain.NewValidationError("end_series", fmt.Sprintf("unknown type %q", c.kind))
	}
}

type endConditionJSON struct {
	Type       EndKind `json:"type,omitempty"`
	Date       string  `json:"date,omitempty"`
	Count      int     `json:"count,omitempty"`
	EndingType *int    `json:"ending_type,omitempty"`
}

func (c EndCondition) MarshalJSON() ([]byte, error) {
	out := endConditionJSON{Type: c.Kind()}
	switch c.Kind() {
	case EndsOnDate:
		out.Date = c.date.Format(dateLayout)
	case EndsAfterCount:
		out.Count = c.count
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the tagged form and the legacy {"ending_type":0}
// which only ever meant Never.
func (c *EndCondition) UnmarshalJSON(data []byte) error {
	var in endConditionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	if in.Type == "" && in.EndingType != nil {
		if *in.EndingType != 0 {
			return sharedDomain.NewValidationError("end_series", fmt.Sprintf("unsupported ending_type %d", *in.EndingType))
		}
		*c = EndNever()
		return nil
	}

	switch in.Type {
	case "", EndsNever:
		*c = EndNever()
	case EndsOnDate:
		d, err := time.Parse(dateLayout, in.Date)
		if err != nil {
			return sharedDomain.NewValidationError("end_series", fmt.Sprintf("date %q is not YYYY-MM-DD", in.Date))
		}
		*c = EndOnDate(d)
	case EndsAfterCount:
		ec, err := EndAfterCount(in.Count)
		if err != nil {
			return err
		}
		*c = ec
	default:
		return sharedDomain.NewValidationError("end_series", fmt.Sprintf("unknown type %q", in.Type))
	}
	return nil
}

// DateOf truncates t to midnight of its calendar date, keeping the location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
