package services

import (
	"context"
	"fmt"

	"github.com/gardenlog/core/internal/domain/entities"
	"github.com/gardenlog/core/internal/infrastructure/logger"
	"github.com/gardenlog/core/internal/ports"
)

// PlantService handles plant-related operations.
type PlantService struct {
	plantRepo ports.PlantRepository
	cycleRepo ports.CycleRepository
	eventRepo ports.EventRepository
	taskRepo  ports.TaskRepository
	logger    *logger.Logger
}

// NewPlantService creates a new plant service.
func NewPlantService(plantRepo ports.PlantRepository, cycleRepo ports.CycleRepository, eventRepo ports.EventRepository, taskRepo ports.TaskRepository, logger *logger.Logger) *PlantService {
	return &PlantService{
		plantRepo: plantRepo,
		cycleRepo: cycleRepo,
		eventRepo: eventRepo,
		taskRepo:  taskRepo,
		logger:    logger,
	}
}

// CreatePlantRequest carries the fields for creating a plant.
type CreatePlantRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Variety    string `json:"variety" validate:"max=200"`
	SeedSource string `json:"seed_source"`
	Notes      string `json:"notes"`
}

// UpdatePlantRequest carries partial updates for a plant; nil fields are
// left unchanged.
type UpdatePlantRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=200"`
	Variety    *string `json:"variety" validate:"omitempty,max=200"`
	SeedSource *string `json:"seed_source"`
	Notes      *string `json:"notes"`
}

// CreatePlant creates a new plant.
func (s *PlantService) CreatePlant(ctx context.Context, req CreatePlantRequest) (*entities.Plant, error) {
	plant := &entities.Plant{
		Name:       req.Name,
		Variety:    req.Variety,
		SeedSource: req.SeedSource,
		Notes:      req.Notes,
		Cycles:     []entities.PlantingCycle{},
	}

	if verr := plant.Validate(); verr != nil {
		return nil, verr
	}

	if err := s.plantRepo.Create(ctx, plant); err != nil {
		return nil, fmt.Errorf("failed to create plant: %w", err)
	}

	s.logger.Info("Plant created", "plant_id", plant.ID, "name", plant.Name)

	return plant, nil
}

// GetPlant retrieves a plant with its cycles fully expanded.
func (s *PlantService) GetPlant(ctx context.Context, id int) (*entities.Plant, error) {
	plant, err := s.plantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cycles, err := s.GetPlantCycles(ctx, id)
	if err != nil {
		return nil, err
	}

	plant.Cycles = make([]entities.PlantingCycle, len(cycles))
	for i, cycle := range cycles {
		plant.Cycles[i] = *cycle
	}

	return plant, nil
}

// GetPlantCycles returns all of a plant's cycles in detail shape, newest
// year first.
func (s *PlantService) GetPlantCycles(ctx context.Context, plantID int) ([]*entities.PlantingCycle, error) {
	if _, err := s.plantRepo.GetByID(ctx, plantID); err != nil {
		return nil, err
	}

	cycles, err := s.cycleRepo.ListByPlant(ctx, plantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plant cycles: %w", err)
	}

	for _, cycle := range cycles {
		if err := loadCycleChildren(ctx, s.eventRepo, s.taskRepo, cycle); err != nil {
			return nil, err
		}
	}

	return cycles, nil
}

// UpdatePlant applies a partial update to a plant.
func (s *PlantService) UpdatePlant(ctx context.Context, id int, req UpdatePlantRequest) (*entities.Plant, error) {
	plant, err := s.plantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		plant.Name = *req.Name
	}
	if req.Variety != nil {
		plant.Variety = *req.Variety
	}
	if req.SeedSource != nil {
		plant.SeedSource = *req.SeedSource
	}
	if req.Notes != nil {
		plant.Notes = *req.Notes
	}

	if verr := plant.Validate(); verr != nil {
		return nil, verr
	}

	if err := s.plantRepo.Update(ctx, plant); err != nil {
		return nil, fmt.Errorf("failed to update plant: %w", err)
	}

	s.logger.Info("Plant updated", "plant_id", plant.ID, "name", plant.Name)

	return s.GetPlant(ctx, id)
}

// DeletePlant removes a plant and, through the cascade, its cycles with
// their events and tasks.
func (s *PlantService) DeletePlant(ctx context.Context, id int) error {
	if err := s.plantRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Plant deleted", "plant_id", id)

	return nil
}

// ListPlants returns plant summaries matching the filter.
func (s *PlantService) ListPlants(ctx context.Context, filter ports.PlantFilter) ([]*entities.PlantSummary, error) {
	plants, err := s.plantRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", err)
	}

	return plants, nil
}
