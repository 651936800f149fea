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

// TaskService handles task operations. Every persistence path runs
// Task.Normalize first, so the completed/completed_at coupling holds no
// matter which entry point wrote the task.
type TaskService struct {
	taskRepo  ports.TaskRepository
	cycleRepo ports.CycleRepository
	logger    *logger.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(taskRepo ports.TaskRepository, cycleRepo ports.CycleRepository, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		cycleRepo: cycleRepo,
		logger:    logger,
	}
}

// CreateTaskRequest carries the fields for creating a task. Priority
// defaults to medium.
type CreateTaskRequest struct {
	PlantingCycle *int           `json:"planting_cycle"`
	Title         string         `json:"title" validate:"required,max=200"`
	Description   string         `json:"description"`
	DueDate       *entities.Date `json:"due_date"`
	Priority      *string        `json:"priority"`
	Completed     *bool          `json:"completed"`
}

// UpdateTaskRequest carries partial updates for a task. The nullable fields
// are Optionals so an explicit null clears them instead of reading as absent.
type UpdateTaskRequest struct {
	PlantingCycle Optional[int]           `json:"planting_cycle"`
	Title         *string                 `json:"title" validate:"omitempty,max=200"`
	Description   *string                 `json:"description"`
	DueDate       Optional[entities.Date] `json:"due_date"`
	Priority      *string                 `json:"priority"`
	Completed     *bool                   `json:"completed"`
}

// CreateTask creates a task bound to the cycle named in the request body,
// if any.
func (s *TaskService) CreateTask(ctx context.Context, req CreateTaskRequest) (*entities.Task, error) {
	return s.create(ctx, req.PlantingCycle, req)
}

// CreateForCycle creates a task under the given cycle, ignoring any cycle
// id in the request body. The cycle must exist.
func (s *TaskService) CreateForCycle(ctx context.Context, cycleID int, req CreateTaskRequest) (*entities.Task, error) {
	if _, err := s.cycleRepo.GetByID(ctx, cycleID); err != nil {
		return nil, err
	}
	return s.create(ctx, &cycleID, req)
}

func (s *TaskService) create(ctx context.Context, cycleID *int, req CreateTaskRequest) (*entities.Task, error) {
	task := &entities.Task{
		CycleID:     cycleID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    entities.TaskPriorityMedium,
	}
	if req.Priority != nil {
		task.Priority = entities.TaskPriority(*req.Priority)
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	if verr := task.Validate(); verr != nil {
		return nil, verr
	}

	if task.CycleID != nil {
		if _, err := s.cycleRepo.GetByID(ctx, *task.CycleID); err != nil {
			if errors.Is(err, entities.ErrCycleNotFound) {
				verr := entities.NewValidationError()
				verr.Add("planting_cycle", "planting cycle not found")
				return nil, verr
			}
			return nil, err
		}
	}

	task.Normalize(time.Now())

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("Task created", "task_id", task.ID, "title", task.Title)

	return task, nil
}

// GetTask retrieves a task by ID.
func (s *TaskService) GetTask(ctx context.Context, id int) (*entities.Task, error) {
	return s.taskRepo.GetByID(ctx, id)
}

// UpdateTask applies a partial update to a task.
func (s *TaskService) UpdateTask(ctx context.Context, id int, req UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PlantingCycle.Set {
		task.CycleID = req.PlantingCycle.Value
	}
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.DueDate.Set {
		task.DueDate = req.DueDate.Value
	}
	if req.Priority != nil {
		task.Priority = entities.TaskPriority(*req.Priority)
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	if verr := task.Validate(); verr != nil {
		return nil, verr
	}

	if req.PlantingCycle.Set && task.CycleID != nil {
		if _, err := s.cycleRepo.GetByID(ctx, *task.CycleID); err != nil {
			if errors.Is(err, entities.ErrCycleNotFound) {
				verr := entities.NewValidationError()
				verr.Add("planting_cycle", "planting cycle not found")
				return nil, verr
			}
			return nil, err
		}
	}

	task.Normalize(time.Now())

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("Task updated", "task_id", task.ID, "title", task.Title)

	return task, nil
}

// ToggleComplete flips the task's completed flag. Each call flips the
// current state; completed_at is stamped or cleared by Normalize.
func (s *TaskService) ToggleComplete(ctx context.Context, id int) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Completed = !task.Completed
	task.Normalize(time.Now())

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("Task toggled", "task_id", task.ID, "completed", task.Completed)

	return task, nil
}

// DeleteTask removes a task.
func (s *TaskService) DeleteTask(ctx context.Context, id int) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Task deleted", "task_id", id)

	return nil
}

// ListTasks returns tasks matching the filter. When the overdue flag is set
// the evaluation date is stamped here so all predicates see the same "today".
func (s *TaskService) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	if filter.Overdue {
		filter.Today = entities.Today()
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}
