package api

import (
	"context"
	"log/slog"
	"net/http"

	calendarDomain "github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/felixgeelhaar/carecal/internal/orders/application/commands"
	"github.com/felixgeelhaar/carecal/internal/orders/application/queries"
	"github.com/google/uuid"
)

// OrderHandler serves home-care order writes.
type OrderHandler struct {
	createOrder     *commands.CreateOrderHandler
	transitionOrder *commands.TransitionOrderHandler
	getOrder        *queries.GetOrderHandler
	afterWrite      func(ctx context.Context) error
	logger          *slog.Logger
}

// OrderHandlerConfig holds dependencies for the order handler.
type OrderHandlerConfig struct {
	CreateOrder     *commands.CreateOrderHandler
	TransitionOrder *commands.TransitionOrderHandler
	GetOrder        *queries.GetOrderHandler
	// AfterWrite runs after a successful write, e.g. to drain the outbox
	// in local mode. Its failure is logged, not returned.
	AfterWrite func(ctx context.Context) error
	Logger     *slog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(cfg OrderHandlerConfig) *OrderHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &OrderHandler{
		createOrder:     cfg.CreateOrder,
		transitionOrder: cfg.TransitionOrder,
		getOrder:        cfg.GetOrder,
		afterWrite:      cfg.AfterWrite,
		logger:          cfg.Logger,
	}
}

type createOrderRequest struct {
	HealthUnitID uuid.UUID `json:"health_unit_id"`
	Patient      struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	} `json:"patient"`
	Schedule struct {
		StartDate  string                  `json:"start_date"`
		Recurrency int                     `json:"recurrency"`
		Schedule   calendarDomain.Schedule `json:"schedule"`
	} `json:"schedule_information"`
}

// CreateOrder handles POST /api/v1/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	startDate, err := parseDate("start_date", req.Schedule.StartDate)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	result, err := h.createOrder.Handle(r.Context(), commands.CreateOrderCommand{
		Principal:    principalFrom(r.Context()),
		HealthUnitID: req.HealthUnitID,
		PatientID:    req.Patient.ID,
		PatientName:  req.Patient.Name,
		StartDate:    startDate,
		Recurrency:   req.Schedule.Recurrency,
		Schedule:     req.Schedule.Schedule,
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	h.runAfterWrite(r)
	writeJSON(w, http.StatusCreated, map[string]string{"id": result.OrderID.String()})
}

// GetOrder handles GET /api/v1/orders/{orderID}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathUUID(r, "orderID")
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	order, err := h.getOrder.Handle(r.Context(), queries.GetOrderQuery{
		Principal: principalFrom(r.Context()),
		OrderID:   orderID,
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// TransitionOrder handles POST /api/v1/orders/{orderID}/{transition} where
// transition is accept, decline, cancel or complete.
func (h *OrderHandler) TransitionOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathUUID(r, "orderID")
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	result, err := h.transitionOrder.Handle(r.Context(), commands.TransitionOrderCommand{
		Principal: principalFrom(r.Context()),
		OrderID:   orderID,
		Action:    r.PathValue("transition"),
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	h.runAfterWrite(r)
	writeJSON(w, http.StatusOK, map[string]string{
		"order_id": result.OrderID.String(),
		"from":     string(result.From),
		"to":       string(result.To),
	})
}

func (h *OrderHandler) runAfterWrite(r *http.Request) {
	if h.afterWrite == nil {
		return
	}
	if err := h.afterWrite(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "post-write hook failed", "error", err)
	}
}
