package mcp

import (
	"context"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/carecal/internal/orders/application/commands"
	"github.com/felixgeelhaar/carecal/internal/orders/application/queries"
	"github.com/felixgeelhaar/mcp-go"
	"github.com/google/uuid"
)

type orderGetInput struct {
	OrderID string `json:"order_id" jsonschema:"required"`
}

type orderCreateInput struct {
	HealthUnitID string      `json:"health_unit_id" jsonschema:"required"`
	PatientID    string      `json:"patient_id,omitempty"`
	PatientName  string      `json:"patient_name" jsonschema:"required"`
	StartDate    string      `json:"start_date" jsonschema:"required"` // YYYY-MM-DD
	Every        string      `json:"every,omitempty"`                  // none, weekly, biweekly, monthly
	Slots        []slotInput `json:"slots" jsonschema:"required"`
}

type orderTransitionInput struct {
	OrderID string `json:"order_id" jsonschema:"required"`
	Action  string `json:"action" jsonschema:"required"` // accept, decline, cancel, complete
}

type orderTools struct {
	app *cli.App
}

func registerOrderTools(srv *mcp.Server, deps ToolDependencies) {
	t := &orderTools{app: deps.App}

	srv.Tool("order.get").
		Description("Show a home-care order and its status.").
		Handler(t.get)

	srv.Tool("order.create").
		Description("Place a home-care order with a health unit.").
		Handler(t.create)

	srv.Tool("order.transition").
		Description("Accept, decline, cancel or complete an order. Accepting creates its visit series.").
		Handler(t.transition)
}

func (t *orderTools) get(ctx context.Context, input orderGetInput) (*queries.OrderDTO, error) {
	if t.app.GetOrderHandler == nil {
		return nil, errNotInitialized
	}
	orderID, err := cli.ParseID("order", input.OrderID)
	if err != nil {
		return nil, err
	}
	return t.app.GetOrderHandler.Handle(ctx, queries.GetOrderQuery{
		Principal: t.app.Principal,
		OrderID:   orderID,
	})
}

func (t *orderTools) create(ctx context.Context, input orderCreateInput) (map[string]any, error) {
	if t.app.CreateOrderHandler == nil {
		return nil, errNotInitialized
	}
	unitID, err := cli.ParseID("health unit", input.HealthUnitID)
	if err != nil {
		return nil, err
	}
	patientID := uuid.New()
	if input.PatientID != "" {
		if patientID, err = cli.ParseID("patient", input.PatientID); err != nil {
			return nil, err
		}
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

	result, err := t.app.CreateOrderHandler.Handle(ctx, commands.CreateOrderCommand{
		Principal:    t.app.Principal,
		HealthUnitID: unitID,
		PatientID:    patientID,
		PatientName:  input.PatientName,
		StartDate:    start,
		Recurrency:   recurrency,
		Schedule:     schedule,
	})
	if err != nil {
		return nil, err
	}
	if err := t.app.AfterWrite(ctx); err != nil {
		return nil, err
	}
	return map[string]any{"order_id": result.OrderID.String()}, nil
}

func (t *orderTools) transition(ctx context.Context, input orderTransitionInput) (map[string]any, error) {
	if t.app.TransitionOrderHandler == nil {
		return nil, errNotInitialized
	}
	orderID, err := cli.ParseID("order", input.OrderID)
	if err != nil {
		return nil, err
	}

	result, err := t.app.TransitionOrderHandler.Handle(ctx, commands.TransitionOrderCommand{
		Principal: t.app.Principal,
		OrderID:   orderID,
		Action:    input.Action,
	})
	if err != nil {
		return nil, err
	}
	if err := t.app.AfterWrite(ctx); err != nil {
		return nil, err
	}
	return map[string]any{
		"order_id": result.OrderID.String(),
		"from":     result.From,
		"to":       result.To,
	}, nil
}
