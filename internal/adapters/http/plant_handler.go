package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gardenlog/core/internal/application/services"
	"github.com/gardenlog/core/internal/infrastructure/logger"
	"github.com/gardenlog/core/internal/ports"
)

// PlantHandler handles plant-related requests
type PlantHandler struct {
	plantService *services.PlantService
	logger       *logger.Logger
}

// NewPlantHandler creates a new plant handler
func NewPlantHandler(plantService *services.PlantService, logger *logger.Logger) *PlantHandler {
	return &PlantHandler{
		plantService: plantService,
		logger:       logger,
	}
}

// CreatePlant handles plant creation
func (h *PlantHandler) CreatePlant(c echo.Context) error {
	var req services.CreatePlantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	plant, err := h.plantService.CreatePlant(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create plant failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, newPlantResponse(plant))
}

// GetPlant handles getting a plant by ID with its cycles expanded
func (h *PlantHandler) GetPlant(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	plant, err := h.plantService.GetPlant(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, newPlantResponse(plant))
}

// UpdatePlant handles partial plant updates
func (h *PlantHandler) UpdatePlant(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req services.UpdatePlantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	plant, err := h.plantService.UpdatePlant(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update plant failed", "error", err, "plant_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, newPlantResponse(plant))
}

// DeletePlant handles plant deletion, cascading to cycles, events and tasks
func (h *PlantHandler) DeletePlant(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.plantService.DeletePlant(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete plant failed", "error", err, "plant_id", id)
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListPlants handles listing plants in summary shape
func (h *PlantHandler) ListPlants(c echo.Context) error {
	filter := ports.PlantFilter{}

	if search := c.QueryParam("search"); search != "" {
		filter.Search = &search
	}

	year, err := queryInt(c, "year")
	if err != nil {
		return err
	}
	filter.Year = year

	plants, err := h.plantService.ListPlants(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("List plants failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, newPlantListItems(plants))
}

// GetPlantCycles handles the cycles_detail action: every cycle of the
// plant in detail shape, newest year first
func (h *PlantHandler) GetPlantCycles(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	cycles, err := h.plantService.GetPlantCycles(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, newCycleResponses(cycles))
}
