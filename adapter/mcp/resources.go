package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/application/queries"
	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers read-only views of the calendar.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	srv.Resource("carecal://calendar/week").
		Name("This Week").
		Description("Events and visit occurrences for the next seven days").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.ListCalendarHandler == nil {
				return nil, errNotInitialized
			}

			from := domain.DateOf(time.Now().UTC())
			items, err := app.ListCalendarHandler.Handle(ctx, queries.ListCalendarQuery{
				Principal: app.Principal,
				From:      from,
				To:        from.AddDate(0, 0, 7),
			})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, items)
		})

	srv.Resource("carecal://series").
		Name("Series").
		Description("Recurring series definitions on visible calendars").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.ListSeriesHandler == nil {
				return nil, errNotInitialized
			}

			series, err := app.ListSeriesHandler.Handle(ctx, queries.ListSeriesQuery{Principal: app.Principal})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, series)
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
