package icalendar

import (
	"errors"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/services"
)

const productID = "-//carecal//Home Care Calendar//EN"

// ErrEmptyCalendar is returned for an empty listing; a VCALENDAR needs at
// least one component.
var ErrEmptyCalendar = errors.New("calendar has no items")

// Encode writes the merged calendar as one VCALENDAR with a VEVENT per
// item. Occurrence UIDs are their composite keys, so re-exporting the same
// window yields the same UIDs.
func Encode(w io.Writer, name string, items []services.CalendarItem, stamp time.Time) error {
	if len(items) == 0 {
		return ErrEmptyCalendar
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	if name != "" {
		cal.Props.SetText(ical.PropName, name)
	}

	for _, item := range items {
		cal.Children = append(cal.Children, vevent(item, stamp).Component)
	}

	return ical.NewEncoder(w).Encode(cal)
}

func vevent(item services.CalendarItem, stamp time.Time) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, item.ID+"@carecal")
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, item.Start.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, item.End.UTC())
	event.Props.SetText(ical.PropSummary, item.Title)
	if item.Description != "" {
		event.Props.SetText(ical.PropDescription, item.Description)
	}
	if item.TextColor != "" {
		event.Props.SetText(ical.PropColor, item.TextColor)
	}
	event.Props.SetText(ical.PropCategories, string(item.Kind))
	if item.SeriesID != nil {
		event.Props.SetText(ical.PropRelatedTo, item.SeriesID.String()+"@carecal")
	}
	return event
}
