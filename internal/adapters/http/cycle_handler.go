package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gardenlog/core/internal/application/services"
	"github.com/gardenlog/core/internal/domain/entities"
	"github.com/gardenlog/core/internal/infrastructure/logger"
	"github.com/gardenlog/core/internal/ports"
)

// CycleHandler handles planting cycle requests, including the add_event
// and add_task actions
type CycleHandler struct {
	cycleService *services.CycleService
	eventService *services.EventService
	taskService  *services.TaskService
	logger       *logger.Logger
}

// NewCycleHandler creates a new planting cycle handler
func NewCycleHandler(cycleService *services.CycleService, eventService *services.EventService, taskService *services.TaskService, logger *logger.Logger) *CycleHandler {
	return &CycleHandler{
		cycleService: cycleService,
		eventService: eventService,
		taskService:  taskService,
		logger:       logger,
	}
}

// CreateCycle handles planting cycle creation
func (h *CycleHandler) CreateCycle(c echo.Context) error {
	var req services.CreateCycleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	cycle, err := h.cycleService.CreateCycle(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create cycle failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, newCycleResponse(cycle))
}

// GetCycle handles getting a cycle by ID with events and tasks nested
func (h *CycleHandler) GetCycle(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	cycle, err := h.cycleService.GetCycle(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, newCycleResponse(cycle))
}

// UpdateCycle handles partial cycle updates
func (h *CycleHandler) UpdateCycle(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req services.UpdateCycleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	cycle, err := h.cycleService.UpdateCycle(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update cycle failed", "error", err, "cycle_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, newCycleResponse(cycle))
}

// DeleteCycle handles cycle deletion, cascading to its events and tasks
func (h *CycleHandler) DeleteCycle(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.cycleService.DeleteCycle(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete cycle failed", "error", err, "cycle_id", id)
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListCycles handles listing cycles with their events and tasks nested
func (h *CycleHandler) ListCycles(c echo.Context) error {
	filter := ports.CycleFilter{}

	year, err := queryInt(c, "year")
	if err != nil {
		return err
	}
	filter.Year = year

	if status := c.QueryParam("status"); status != "" {
		cs := entities.CycleStatus(status)
		filter.Status = &cs
	}

	plant, err := queryInt(c, "plant")
	if err != nil {
		return err
	}
	filter.PlantID = plant

	cycles, err := h.cycleService.ListCycles(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("List cycles failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, newCycleResponses(cycles))
}

// AddEvent handles the add_event action: creates an event under the cycle
// in the path, ignoring any cycle id in the body
func (h *CycleHandler) AddEvent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req services.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	event, err := h.eventService.CreateForCycle(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Add event failed", "error", err, "cycle_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, newEventResponse(event))
}

// AddTask handles the add_task action: creates a task under the cycle in
// the path, ignoring any cycle id in the body
func (h *CycleHandler) AddTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req services.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	task, err := h.taskService.CreateForCycle(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Add task failed", "error", err, "cycle_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, newTaskResponse(task))
}
