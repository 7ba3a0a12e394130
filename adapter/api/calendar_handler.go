package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/application/commands"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/queries"
	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/felixgeelhaar/carecal/internal/calendar/infrastructure/icalendar"
	"github.com/google/uuid"
)

// CalendarHandler serves calendar listings and series/event writes.
type CalendarHandler struct {
	listCalendar  *queries.ListCalendarHandler
	listSeries    *queries.ListSeriesHandler
	expandSeries  *queries.ExpandSeriesHandler
	createSeries  *commands.CreateSeriesHandler
	createEvent   *commands.CreateEventHandler
	defaultWindow time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// CalendarHandlerConfig holds dependencies for the calendar handler.
type CalendarHandlerConfig struct {
	ListCalendar *queries.ListCalendarHandler
	ListSeries   *queries.ListSeriesHandler
	ExpandSeries *queries.ExpandSeriesHandler
	CreateSeries *commands.CreateSeriesHandler
	CreateEvent  *commands.CreateEventHandler
	// DefaultWindow is the span used when a listing gives from but omits to.
	DefaultWindow time.Duration
	Logger        *slog.Logger
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(cfg CalendarHandlerConfig) *CalendarHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.DefaultWindow <= 0 {
		cfg.DefaultWindow = 30 * 24 * time.Hour
	}
	return &CalendarHandler{
		listCalendar:  cfg.ListCalendar,
		listSeries:    cfg.ListSeries,
		expandSeries:  cfg.ExpandSeries,
		createSeries:  cfg.CreateSeries,
		createEvent:   cfg.CreateEvent,
		defaultWindow: cfg.DefaultWindow,
		logger:        cfg.Logger,
		now:           time.Now,
	}
}

// ListCalendar handles GET /api/v1/calendar. An empty listing is 204.
func (h *CalendarHandler) ListCalendar(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r, h.defaultWindow)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	items, err := h.listCalendar.Handle(r.Context(), queries.ListCalendarQuery{
		Principal: principalFrom(r.Context()),
		From:      window.From,
		To:        window.To,
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	if len(items) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ExportCalendar handles GET /api/v1/calendar.ics.
func (h *CalendarHandler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	window, err := parseWindow(r, h.defaultWindow)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	items, err := h.listCalendar.Handle(r.Context(), queries.ListCalendarQuery{
		Principal: principalFrom(r.Context()),
		From:      window.From,
		To:        window.To,
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	var buf bytes.Buffer
	err = icalendar.Encode(&buf, "carecal", items, now)
	if errors.Is(err, icalendar.ErrEmptyCalendar) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="carecal.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ListSeries handles GET /api/v1/series
func (h *CalendarHandler) ListSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.listSeries.Handle(r.Context(), queries.ListSeriesQuery{
		Principal: principalFrom(r.Context()),
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// ExpandSeries handles GET /api/v1/series/{seriesID}/occurrences
func (h *CalendarHandler) ExpandSeries(w http.ResponseWriter, r *http.Request) {
	seriesID, err := pathUUID(r, "seriesID")
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	window, err := parseWindow(r, h.defaultWindow)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	items, err := h.expandSeries.Handle(r.Context(), queries.ExpandSeriesQuery{
		Principal: principalFrom(r.Context()),
		SeriesID:  seriesID,
		From:      window.From,
		To:        window.To,
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type createSeriesRequest struct {
	OwnerID     uuid.UUID           `json:"owner"`
	OwnerType   string              `json:"owner_type"`
	StartDate   string              `json:"start_date"`
	Recurrency  int                 `json:"recurrency"`
	Schedule    domain.Schedule     `json:"schedule"`
	End         domain.EndCondition `json:"end_series"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	TextColor   string              `json:"textColor"`
}

// CreateSeries handles POST /api/v1/series
func (h *CalendarHandler) CreateSeries(w http.ResponseWriter, r *http.Request) {
	var req createSeriesRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	startDate, err := parseDate("start_date", req.StartDate)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	result, err := h.createSeries.Handle(r.Context(), commands.CreateSeriesCommand{
		Principal:   principalFrom(r.Context()),
		OwnerID:     req.OwnerID,
		OwnerType:   req.OwnerType,
		StartDate:   startDate,
		Recurrency:  req.Recurrency,
		Schedule:    req.Schedule,
		End:         req.End,
		Title:       req.Title,
		Description: req.Description,
		TextColor:   req.TextColor,
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": result.SeriesID.String()})
}

type createEventRequest struct {
	OwnerID     uuid.UUID `json:"owner"`
	OwnerType   string    `json:"owner_type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TextColor   string    `json:"textColor"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// CreateEvent handles POST /api/v1/events
func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	result, err := h.createEvent.Handle(r.Context(), commands.CreateEventCommand{
		Principal:   principalFrom(r.Context()),
		OwnerID:     req.OwnerID,
		OwnerType:   req.OwnerType,
		Title:       req.Title,
		Description: req.Description,
		TextColor:   req.TextColor,
		Start:       req.Start,
		End:         req.End,
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": result.EventID.String()})
}
