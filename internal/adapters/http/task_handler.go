package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gardenlog/core/internal/application/services"
	"github.com/gardenlog/core/internal/domain/entities"
	"github.com/gardenlog/core/internal/infrastructure/logger"
	"github.com/gardenlog/core/internal/ports"
)

// TaskHandler handles task requests, including the toggle_complete action
type TaskHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// CreateTask handles task creation
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req services.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create task failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, newTaskResponse(task))
}

// GetTask handles getting a task by ID
func (h *TaskHandler) GetTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.GetTask(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, newTaskResponse(task))
}

// UpdateTask handles partial task updates
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req services.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update task failed", "error", err, "task_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, newTaskResponse(task))
}

// DeleteTask handles task deletion
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete task failed", "error", err, "task_id", id)
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ToggleComplete handles the toggle_complete action: flips the completed
// flag and returns the updated task
func (h *TaskHandler) ToggleComplete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.ToggleComplete(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("Toggle task failed", "error", err, "task_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, newTaskResponse(task))
}

// ListTasks handles listing tasks
func (h *TaskHandler) ListTasks(c echo.Context) error {
	filter := ports.TaskFilter{}

	// completed filters whenever the parameter is present; any non-truthy
	// value, empty included, means false
	if raw, ok := c.QueryParams()["completed"]; ok {
		completed := len(raw) > 0 && truthy(raw[0])
		filter.Completed = &completed
	}

	cycleID, err := queryInt(c, "cycle")
	if err != nil {
		return err
	}
	filter.CycleID = cycleID

	if priority := c.QueryParam("priority"); priority != "" {
		tp := entities.TaskPriority(priority)
		filter.Priority = &tp
	}

	if raw := c.QueryParam("overdue"); raw != "" {
		filter.Overdue = truthy(raw)
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("List tasks failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, newTaskResponses(tasks))
}
