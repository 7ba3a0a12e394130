package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

var weekdays = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

// ParseDate parses a YYYY-MM-DD flag value.
func ParseDate(flag, value string) (time.Time, error) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q, use YYYY-MM-DD", flag, value)
	}
	return d, nil
}

// ParseInstant accepts RFC 3339 or a plain date meaning midnight UTC.
func ParseInstant(flag, value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if d, err := time.Parse(dateLayout, value); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("invalid --%s %q, use RFC 3339 or YYYY-MM-DD", flag, value)
}

// ParseWindow resolves --from/--to. An empty from is today in UTC, an
// empty to is from plus def.
func ParseWindow(from, to string, def time.Duration, now time.Time) (domain.Window, error) {
	start := domain.DateOf(now.UTC())
	if from != "" {
		t, err := ParseInstant("from", from)
		if err != nil {
			return domain.Window{}, err
		}
		start = t
	}

	end := start.Add(def)
	if to != "" {
		t, err := ParseInstant("to", to)
		if err != nil {
			return domain.Window{}, err
		}
		end = t
	}
	return domain.Window{From: start, To: end}, nil
}

// ParseID parses a full uuid argument.
func ParseID(what, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q", what, value)
	}
	return id, nil
}

// ParseSlot parses "mon 09:00-10:00". The weekday may also be given as
// 0..6 with 0 meaning Sunday.
func ParseSlot(value string) (domain.ScheduleSlot, error) {
	fields := strings.Fields(value)
	if len(fields) != 2 {
		return domain.ScheduleSlot{}, fmt.Errorf("invalid slot %q, use \"mon 09:00-10:00\"", value)
	}

	day, ok := weekdays[strings.ToLower(fields[0])[:min(3, len(fields[0]))]]
	if !ok {
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return domain.ScheduleSlot{}, fmt.Errorf("invalid weekday %q", fields[0])
		}
		day = n
	}

	start, end, found := strings.Cut(fields[1], "-")
	if !found {
		return domain.ScheduleSlot{}, fmt.Errorf("invalid slot %q, use \"mon 09:00-10:00\"", value)
	}
	return domain.NewScheduleSlot(day, start, end)
}

// ParseSchedule parses every --slot value in order.
func ParseSchedule(values []string) (domain.Schedule, error) {
	schedule := make(domain.Schedule, 0, len(values))
	for _, v := range values {
		slot, err := ParseSlot(v)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, slot)
	}
	return schedule, nil
}

// ParseEnd builds the end condition from --until and --count. Both empty
// means the series never ends.
func ParseEnd(until string, count int) (domain.EndCondition, error) {
	switch {
	case until != "" && count > 0:
		return domain.EndCondition{}, fmt.Errorf("--until and --count are mutually exclusive")
	case until != "":
		d, err := ParseDate("until", until)
		if err != nil {
			return domain.EndCondition{}, err
		}
		return domain.EndOnDate(d), nil
	case count > 0:
		return domain.EndAfterCount(count)
	default:
		return domain.EndNever(), nil
	}
}

// ParseRecurrency maps none, weekly, biweekly or monthly onto the stored
// recurrency code.
func ParseRecurrency(value string) (int, error) {
	for _, kind := range []domain.IntervalKind{
		domain.IntervalNone, domain.IntervalWeekly, domain.IntervalBiweekly, domain.IntervalMonthly,
	} {
		if strings.EqualFold(value, kind.String()) {
			return kind.Code(), nil
		}
	}
	return 0, fmt.Errorf("invalid --every %q, use none, weekly, biweekly or monthly", value)
}
