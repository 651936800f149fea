package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gardenlog/core/internal/application/services"
	"github.com/gardenlog/core/internal/domain/entities"
	"github.com/gardenlog/core/internal/infrastructure/logger"
	"github.com/gardenlog/core/internal/ports"
)

// EventHandler handles lifecycle event requests
type EventHandler struct {
	eventService *services.EventService
	logger       *logger.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService, logger *logger.Logger) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		logger:       logger,
	}
}

// CreateEvent handles event creation
func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req services.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	event, err := h.eventService.CreateEvent(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create event failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, newEventResponse(event))
}

// GetEvent handles getting an event by ID
func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	event, err := h.eventService.GetEvent(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, newEventResponse(event))
}

// UpdateEvent handles partial event updates
func (h *EventHandler) UpdateEvent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req services.UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	event, err := h.eventService.UpdateEvent(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update event failed", "error", err, "event_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, newEventResponse(event))
}

// DeleteEvent handles event deletion
func (h *EventHandler) DeleteEvent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.eventService.DeleteEvent(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete event failed", "error", err, "event_id", id)
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListEvents handles listing events
func (h *EventHandler) ListEvents(c echo.Context) error {
	filter := ports.EventFilter{}

	cycleID, err := queryInt(c, "cycle")
	if err != nil {
		return err
	}
	filter.CycleID = cycleID

	if eventType := c.QueryParam("type"); eventType != "" {
		et := entities.EventType(eventType)
		filter.Type = &et
	}

	dateFrom, err := queryDate(c, "date_from")
	if err != nil {
		return err
	}
	filter.DateFrom = dateFrom

	dateTo, err := queryDate(c, "date_to")
	if err != nil {
		return err
	}
	filter.DateTo = dateTo

	events, err := h.eventService.ListEvents(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("List events failed", "error", err)
		return httpError(err)
	}

	responses := make([]EventResponse, len(events))
	for i, event := range events {
		responses[i] = newEventResponse(event)
	}

	return c.JSON(http.StatusOK, responses)
}
