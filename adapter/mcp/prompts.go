package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common calendar workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("weekly_visits").
		Description("Review next week's home-care visits and spot gaps or double bookings.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Weekly Visit Review",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Review the home-care visits for the coming week.

1. Read carecal://calendar/week for the visits and appointments.
2. Read carecal://series for the recurring definitions behind them.

Then:
- List the visits per day in start order.
- Point out visits that overlap on the same calendar.
- Point out series whose slots produced no visit this week.`,
						},
					},
				},
			}, nil
		})

	srv.Prompt("accept_order").
		Description("Walk through accepting a home-care order and checking its visits.").
		Argument("order_id", "Id of the order to accept", true).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			orderID := args["order_id"]
			if orderID == "" {
				return nil, fmt.Errorf("order_id is required")
			}
			return &mcp.PromptResult{
				Description: "Accept Order",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`Accept home-care order %s.

1. Show it with order.get and confirm the status is new.
2. Accept it with order.transition using action "accept".
3. Find the new series with series.list and preview its next four weeks with series.expand.`, orderID),
						},
					},
				},
			}, nil
		})

	return nil
}
