package mcp

import (
	"context"
	"time"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/commands"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/queries"
	"github.com/felixgeelhaar/mcp-go"
)

type seriesExpandInput struct {
	SeriesID string `json:"series_id" jsonschema:"required"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
}

type seriesCreateInput struct {
	Owner       string      `json:"owner" jsonschema:"required"`
	OwnerType   string      `json:"owner_type,omitempty"` // health_unit (default) or collaborator
	Title       string      `json:"title" jsonschema:"required"`
	StartDate   string      `json:"start_date" jsonschema:"required"` // YYYY-MM-DD
	Every       string      `json:"every,omitempty"`                  // none, weekly, biweekly, monthly
	Slots       []slotInput `json:"slots" jsonschema:"required"`
	Until       string      `json:"until,omitempty"` // YYYY-MM-DD
	Count       int         `json:"count,omitempty"`
	Description string      `json:"description,omitempty"`
	TextColor   string      `json:"text_color,omitempty"`
}

type seriesTools struct {
	app *cli.App
	now func() time.Time
}

func registerSeriesTools(srv *mcp.Server, deps ToolDependencies) {
	t := &seriesTools{app: deps.App, now: time.Now}

	srv.Tool("series.list").
		Description("List the recurring series definitions on visible calendars.").
		Handler(t.list)

	srv.Tool("series.expand").
		Description("Preview the occurrences of one series within a window.").
		Handler(t.expand)

	srv.Tool("series.create").
		Description("Create a recurring series that is not linked to an order.").
		Handler(t.create)
}

func (t *seriesTools) list(ctx context.Context, input struct{}) (map[string]any, error) {
	if t.app.ListSeriesHandler == nil {
		return nil, errNotInitialized
	}
	series, err := t.app.ListSeriesHandler.Handle(ctx, queries.ListSeriesQuery{Principal: t.app.Principal})
	if err != nil {
		return nil, err
	}
	return map[string]any{"series": series, "count": len(series)}, nil
}

func (t *seriesTools) expand(ctx context.Context, input seriesExpandInput) (map[string]any, error) {
	if t.app.ExpandSeriesHandler == nil {
		return nil, errNotInitialized
	}
	seriesID, err := cli.ParseID("series", input.SeriesID)
	if err != nil {
		return nil, err
	}
	window, err := resolveWindow(t.app, input.From, input.To, t.now())
	if err != nil {
		return nil, err
	}

	items, err := t.app.ExpandSeriesHandler.Handle(ctx, queries.ExpandSeriesQuery{
		Principal: t.app.Principal,
		SeriesID:  seriesID,
		From:      window.From,
		To:        window.To,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"items": items, "count": len(items)}, nil
}

func (t *seriesTools) create(ctx context.Context, input seriesCreateInput) (map[string]any, error) {
	if t.app.CreateSeriesHandler == nil {
		return nil, errNotInitialized
	}
	ownerID, err := cli.ParseID("owner", input.Owner)
	if err != nil {
		return nil, err
	}
	start, err := cli.ParseDate("start_date", input.StartDate)
	if err != nil {
		return nil, err
	}
	recurrency, err := recurrencyOrDefault(input.Every)
	if err != nil {
		return nil, err
	}
	schedule, err := parseSlots(input.Slots)
	if err != nil {
		return nil, err
	}
	end, err := cli.ParseEnd(input.Until, input.Count)
	if err != nil {
		return nil, err
	}
	ownerType := input.OwnerType
	if ownerType == "" {
		ownerType = "health_unit"
	}

	result, err := t.app.CreateSeriesHandler.Handle(ctx, commands.CreateSeriesCommand{
		Principal:   t.app.Principal,
		OwnerID:     ownerID,
		OwnerType:   ownerType,
		StartDate:   start,
		Recurrency:  recurrency,
		Schedule:    schedule,
		End:         end,
		Title:       input.Title,
		Description: input.Description,
		TextColor:   input.TextColor,
	})
	if err != nil {
		return nil, err
	}
	if err := t.app.AfterWrite(ctx); err != nil {
		return nil, err
	}
	return map[string]any{"series_id": result.SeriesID.String()}, nil
}
