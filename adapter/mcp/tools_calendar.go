package mcp

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/queries"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/services"
	"github.com/felixgeelhaar/carecal/internal/calendar/infrastructure/icalendar"
	"github.com/felixgeelhaar/mcp-go"
)

type calendarListInput struct {
	From string `json:"from,omitempty"` // RFC 3339 or YYYY-MM-DD, default today
	To   string `json:"to,omitempty"`   // exclusive
}

type calendarTools struct {
	app *cli.App
	now func() time.Time
}

func registerCalendarTools(srv *mcp.Server, deps ToolDependencies) {
	t := &calendarTools{app: deps.App, now: time.Now}

	srv.Tool("calendar.list").
		Description("List one-off events and recurring visit occurrences in a window, ordered by start.").
		Handler(t.list)

	srv.Tool("calendar.export").
		Description("Export a window of the calendar as iCalendar (RFC 5545) text.").
		Handler(t.export)
}

func (t *calendarTools) items(ctx context.Context, in calendarListInput) ([]services.CalendarItem, error) {
	if t.app.ListCalendarHandler == nil {
		return nil, errNotInitialized
	}
	window, err := resolveWindow(t.app, in.From, in.To, t.now())
	if err != nil {
		return nil, err
	}
	return t.app.ListCalendarHandler.Handle(ctx, queries.ListCalendarQuery{
		Principal: t.app.Principal,
		From:      window.From,
		To:        window.To,
	})
}

func (t *calendarTools) list(ctx context.Context, input calendarListInput) (map[string]any, error) {
	items, err := t.items(ctx, input)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"items": items,
		"count": len(items),
	}, nil
}

func (t *calendarTools) export(ctx context.Context, input calendarListInput) (map[string]any, error) {
	items, err := t.items(ctx, input)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = icalendar.Encode(&buf, "carecal", items, t.now())
	if errors.Is(err, icalendar.ErrEmptyCalendar) {
		return map[string]any{"count": 0, "ics": ""}, nil
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"count": len(items),
		"ics":   buf.String(),
	}, nil
}
