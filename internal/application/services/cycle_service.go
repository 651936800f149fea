package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gardenlog/core/internal/domain/entities"
	"github.com/gardenlog/core/internal/infrastructure/logger"
	"github.com/gardenlog/core/internal/ports"
)

// CycleService handles planting cycle operations.
type CycleService struct {
	cycleRepo ports.CycleRepository
	plantRepo ports.PlantRepository
	eventRepo ports.EventRepository
	taskRepo  ports.TaskRepository
	logger    *logger.Logger
}

// NewCycleService creates a new planting cycle service.
func NewCycleService(cycleRepo ports.CycleRepository, plantRepo ports.PlantRepository, eventRepo ports.EventRepository, taskRepo ports.TaskRepository, logger *logger.Logger) *CycleService {
	return &CycleService{
		cycleRepo: cycleRepo,
		plantRepo: plantRepo,
		eventRepo: eventRepo,
		taskRepo:  taskRepo,
		logger:    logger,
	}
}

// CreateCycleRequest carries the fields for creating a planting cycle. Year
// defaults to the current calendar year, status to planning.
type CreateCycleRequest struct {
	Plant          int     `json:"plant" validate:"required"`
	Year           *int    `json:"year"`
	Status         *string `json:"status"`
	SeedSaved      *bool   `json:"seed_saved"`
	SeedSavedNotes string  `json:"seed_saved_notes"`
}

// UpdateCycleRequest carries partial updates for a planting cycle.
type UpdateCycleRequest struct {
	Plant          *int    `json:"plant"`
	Year           *int    `json:"year"`
	Status         *string `json:"status"`
	SeedSaved      *bool   `json:"seed_saved"`
	SeedSavedNotes *string `json:"seed_saved_notes"`
}

// CreateCycle creates a planting cycle, enforcing the one-cycle-per-plant-
// per-year invariant.
func (s *CycleService) CreateCycle(ctx context.Context, req CreateCycleRequest) (*entities.PlantingCycle, error) {
	cycle := &entities.PlantingCycle{
		PlantID:        req.Plant,
		Year:           time.Now().Year(),
		Status:         entities.CycleStatusPlanning,
		SeedSavedNotes: req.SeedSavedNotes,
	}
	if req.Year != nil {
		cycle.Year = *req.Year
	}
	if req.Status != nil {
		cycle.Status = entities.CycleStatus(*req.Status)
	}
	if req.SeedSaved != nil {
		cycle.SeedSaved = *req.SeedSaved
	}

	if verr := cycle.Validate(); verr != nil {
		return nil, verr
	}

	if _, err := s.plantRepo.GetByID(ctx, cycle.PlantID); err != nil {
		if errors.Is(err, entities.ErrPlantNotFound) {
			verr := entities.NewValidationError()
			verr.Add("plant", "plant not found")
			return nil, verr
		}
		return nil, err
	}

	// Pre-check keeps the common case friendly; the unique index catches a
	// losing racer and the repository maps it to the same conflict error.
	if _, err := s.cycleRepo.GetByPlantYear(ctx, cycle.PlantID, cycle.Year); err == nil {
		return nil, &entities.ConflictError{PlantID: cycle.PlantID, Year: cycle.Year}
	} else if !errors.Is(err, entities.ErrCycleNotFound) {
		return nil, err
	}

	if err := s.cycleRepo.Create(ctx, cycle); err != nil {
		return nil, err
	}

	s.logger.Info("Planting cycle created", "cycle_id", cycle.ID, "plant_id", cycle.PlantID, "year", cycle.Year)

	cycle.Events = []entities.Event{}
	cycle.Tasks = []entities.Task{}

	return cycle, nil
}

// GetCycle retrieves a planting cycle with its events and tasks.
func (s *CycleService) GetCycle(ctx context.Context, id int) (*entities.PlantingCycle, error) {
	cycle, err := s.cycleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := loadCycleChildren(ctx, s.eventRepo, s.taskRepo, cycle); err != nil {
		return nil, err
	}

	return cycle, nil
}

// UpdateCycle applies a partial update to a planting cycle.
func (s *CycleService) UpdateCycle(ctx context.Context, id int, req UpdateCycleRequest) (*entities.PlantingCycle, error) {
	cycle, err := s.cycleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Plant != nil {
		cycle.PlantID = *req.Plant
	}
	if req.Year != nil {
		cycle.Year = *req.Year
	}
	if req.Status != nil {
		cycle.Status = entities.CycleStatus(*req.Status)
	}
	if req.SeedSaved != nil {
		cycle.SeedSaved = *req.SeedSaved
	}
	if req.SeedSavedNotes != nil {
		cycle.SeedSavedNotes = *req.SeedSavedNotes
	}

	if verr := cycle.Validate(); verr != nil {
		return nil, verr
	}

	if req.Plant != nil {
		if _, err := s.plantRepo.GetByID(ctx, cycle.PlantID); err != nil {
			if errors.Is(err, entities.ErrPlantNotFound) {
				verr := entities.NewValidationError()
				verr.Add("plant", "plant not found")
				return nil, verr
			}
			return nil, err
		}
	}

	if req.Plant != nil || req.Year != nil {
		if existing, err := s.cycleRepo.GetByPlantYear(ctx, cycle.PlantID, cycle.Year); err == nil && existing.ID != cycle.ID {
			return nil, &entities.ConflictError{PlantID: cycle.PlantID, Year: cycle.Year}
		} else if err != nil && !errors.Is(err, entities.ErrCycleNotFound) {
			return nil, err
		}
	}

	if err := s.cycleRepo.Update(ctx, cycle); err != nil {
		return nil, err
	}

	s.logger.Info("Planting cycle updated", "cycle_id", cycle.ID, "year", cycle.Year, "status", cycle.Status)

	return s.GetCycle(ctx, id)
}

// DeleteCycle removes a cycle and, through the cascade, its events and tasks.
func (s *CycleService) DeleteCycle(ctx context.Context, id int) error {
	if err := s.cycleRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Planting cycle deleted", "cycle_id", id)

	return nil
}

// ListCycles returns cycles matching the filter, each with nested events
// and tasks.
func (s *CycleService) ListCycles(ctx context.Context, filter ports.CycleFilter) ([]*entities.PlantingCycle, error) {
	cycles, err := s.cycleRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list planting cycles: %w", err)
	}

	for _, cycle := range cycles {
		if err := loadCycleChildren(ctx, s.eventRepo, s.taskRepo, cycle); err != nil {
			return nil, err
		}
	}

	return cycles, nil
}

// loadCycleChildren expands a cycle with its events and tasks, keeping the
// nested slices non-nil so they serialize as empty arrays.
func loadCycleChildren(ctx context.Context, eventRepo ports.EventRepository, taskRepo ports.TaskRepository, cycle *entities.PlantingCycle) error {
	events, err := eventRepo.ListByCycle(ctx, cycle.ID)
	if err != nil {
		return fmt.Errorf("failed to load cycle events: %w", err)
	}
	if events == nil {
		events = []entities.Event{}
	}
	cycle.Events = events

	tasks, err := taskRepo.ListByCycle(ctx, cycle.ID)
	if err != nil {
		return fmt.Errorf("failed to load cycle tasks: %w", err)
	}
	if tasks == nil {
		tasks = []entities.Task{}
	}
	cycle.Tasks = tasks

	return nil
}
