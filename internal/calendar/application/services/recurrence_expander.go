package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/teambition/rrule-go"
)

var rruleWeekdays = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// RecurrenceExpander turns series definitions into concrete occurrences for
// a viewing window. It reads no clock and holds no mutable state, so one
// instance is shared across goroutines.
type RecurrenceExpander struct {
	maxSpan time.Duration
}

// NewRecurrenceExpander creates an expander that rejects windows longer than
// maxSpan. A non-positive maxSpan uses domain.DefaultMaxWindowSpan.
func NewRecurrenceExpander(maxSpan time.Duration) *RecurrenceExpander {
	if maxSpan <= 0 {
		maxSpan = domain.DefaultMaxWindowSpan
	}
	return &RecurrenceExpander{maxSpan: maxSpan}
}

// MaxSpan is the largest window Expand accepts.
func (e *RecurrenceExpander) MaxSpan() time.Duration { return e.maxSpan }

// ValidateWindow checks a window before any series is loaded.
func (e *RecurrenceExpander) ValidateWindow(window domain.Window) error {
	return window.Validate(e.maxSpan)
}

type slotOccurrence struct {
	start time.Time
	end   time.Time
}

// Expand returns the occurrences of series that start inside window, in
// ascending start order. Equal starts keep slot declaration order and the
// same (series, start) pair is never emitted twice.
func (e *RecurrenceExpander) Expand(series *domain.EventSeries, window domain.Window) ([]domain.Occurrence, error) {
	if !series.Recurrency().Recurs() {
		return []domain.Occurrence{}, nil
	}
	if err := e.ValidateWindow(window); err != nil {
		return nil, err
	}

	schedule := series.Schedule()
	if err := schedule.Validate(); err != nil {
		return nil, fmt.Errorf("series %s: %w", series.ID(), err)
	}
	if err := series.End().Validate(); err != nil {
		return nil, fmt.Errorf("series %s: %w", series.ID(), err)
	}

	var all []slotOccurrence
	for i, slot := range schedule {
		starts, err := slotStarts(series, slot, window)
		if err != nil {
			return nil, fmt.Errorf("series %s slot %d: %w", series.ID(), i, err)
		}
		for _, start := range starts {
			all = append(all, slotOccurrence{start: start, end: slot.EndTime.On(start)})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].start.Before(all[j].start)
	})

	unique := all[:0]
	for i, so := range all {
		if i > 0 && so.start.Equal(unique[len(unique)-1].start) {
			continue
		}
		unique = append(unique, so)
	}

	if n, ok := series.End().Count(); ok && len(unique) > n {
		unique = unique[:n]
	}

	out := make([]domain.Occurrence, 0, len(unique))
	for _, so := range unique {
		if window.Contains(so.start) {
			out = append(out, domain.NewOccurrence(series, so.start, so.end))
		}
	}
	return out, nil
}

// slotStarts steps one slot from the week of the series start date. For
// AfterCount series the prefix from the series start up to window.To is
// produced so the count can be applied across slots before the window
// filter. Nothing after window.To can change what the window shows.
func slotStarts(series *domain.EventSeries, slot domain.ScheduleSlot, window domain.Window) ([]time.Time, error) {
	dtstart := slot.StartTime.On(series.StartDate())

	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Interval:  series.Recurrency().Weeks(),
		Wkst:      rrule.MO,
		Byweekday: []rrule.Weekday{rruleWeekdays[slot.Weekday]},
		Dtstart:   dtstart,
	}

	end := series.End()
	if d, ok := end.Date(); ok {
		opt.Until = time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, dtstart.Location())
	}
	if n, ok := end.Count(); ok {
		opt.Count = n
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, err
	}

	if _, ok := end.Count(); ok {
		return r.Between(dtstart, window.To, true), nil
	}
	return r.Between(window.From, window.To, true), nil
}

// Occurrences is Expand behind the context-aware signature shared with the
// cache. ctx is unused.
func (e *RecurrenceExpander) Occurrences(_ context.Context, series *domain.EventSeries, window domain.Window) ([]domain.Occurrence, error) {
	return e.Expand(series, window)
}
