package domain

import (
	"encoding/json"
	"fmt"
	"time"

	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
)

// TimeOfDay is a wall clock time expressed in minutes after midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, sharedDomain.NewValidationError("time", fmt.Sprintf("%q is not HH:MM", s))
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// MustTimeOfDay is ParseTimeOfDay for literals known to be valid.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On places the time of day on the calendar date of d, in d's location.
func (t TimeOfDay) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, d.Location())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ScheduleSlot is one weekly visit slot. Weekday 0 is Sunday.
type ScheduleSlot struct {
	Weekday   int       `json:"weekday"`
	StartTime TimeOfDay `json:"start_time"`
	EndTime   TimeOfDay `json:"end_time"`
}

// NewScheduleSlot parses and validates a slot.
func NewScheduleSlot(weekday int, start, end string) (ScheduleSlot, error) {
	st, err := ParseTimeOfDay(start)
	if err != nil {
		return ScheduleSlot{}, sharedDomain.NewValidationError("start_time", fmt.Sprintf("%q is not HH:MM", start))
	}
	et, err := ParseTimeOfDay(end)
	if err != nil {
		return ScheduleSlot{}, sharedDomain.NewValidationError("end_time", fmt.Sprintf("%q is not HH:MM", end))
	}
	slot := ScheduleSlot{Weekday: weekday, StartTime: st, EndTime: et}
	return slot, slot.Validate()
}

// Validate rejects slots that cannot produce a sensible occurrence.
func (s ScheduleSlot) Validate() error {
	if s.Weekday < 0 || s.Weekday > 6 {
		return sharedDomain.NewValidationError("weekday", fmt.Sprintf("%d is outside 0..6", s.Weekday))
	}
	if s.StartTime < 0 || s.EndTime >= 24*60 {
		return sharedDomain.NewValidationError("schedule", "times must be within one day")
	}
	if s.EndTime <= s.StartTime {
		return sharedDomain.NewValidationError("end_time", fmt.Sprintf("%s is not after %s", s.EndTime, s.StartTime))
	}
	return nil
}

func (s ScheduleSlot) Day() time.Weekday { return time.Weekday(s.Weekday) }

// Schedule is the ordered set of slots of a series. Order is significant:
// it breaks ties between occurrences starting at the same instant.
type Schedule []ScheduleSlot

// Validate checks every slot and reports the first failing index.
func (s Schedule) Validate() error {
	for i, slot := range s {
		if err := slot.Validate(); err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
	}
	return nil
}
