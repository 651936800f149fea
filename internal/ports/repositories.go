package ports

import (
	"context"

	"github.com/gardenlog/core/internal/domain/entities"
)

// PlantRepository defines the interface for plant data operations.
type PlantRepository interface {
	Create(ctx context.Context, plant *entities.Plant) error
	GetByID(ctx context.Context, id int) (*entities.Plant, error)
	Update(ctx context.Context, plant *entities.Plant) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter PlantFilter) ([]*entities.PlantSummary, error)
	Count(ctx context.Context) (int, error)
}

// CycleRepository defines the interface for planting cycle data operations.
// Create and Update return *entities.ConflictError when the (plant, year)
// uniqueness invariant is violated.
type CycleRepository interface {
	Create(ctx context.Context, cycle *entities.PlantingCycle) error
	GetByID(ctx context.Context, id int) (*entities.PlantingCycle, error)
	GetByPlantYear(ctx context.Context, plantID, year int) (*entities.PlantingCycle, error)
	Update(ctx context.Context, cycle *entities.PlantingCycle) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter CycleFilter) ([]*entities.PlantingCycle, error)
	ListByPlant(ctx context.Context, plantID int) ([]*entities.PlantingCycle, error)
	ListCurrent(ctx context.Context, year int) ([]*entities.PlantingCycle, error)
	CountCurrent(ctx context.Context, year int) (int, error)
}

// EventRepository defines the interface for event data operations.
type EventRepository interface {
	Create(ctx context.Context, event *entities.Event) error
	GetByID(ctx context.Context, id int) (*entities.Event, error)
	Update(ctx context.Context, event *entities.Event) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter EventFilter) ([]*entities.Event, error)
	ListByCycle(ctx context.Context, cycleID int) ([]entities.Event, error)
	CountSince(ctx context.Context, since entities.Date) (int, error)
	HarvestTotals(ctx context.Context, since entities.Date) (count int, total float64, err error)
}

// TaskRepository defines the interface for task data operations.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id int) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter TaskFilter) ([]*entities.Task, error)
	ListByCycle(ctx context.Context, cycleID int) ([]entities.Task, error)
	CountOpen(ctx context.Context) (int, error)
	CountOverdue(ctx context.Context, today entities.Date) (int, error)
	ListOverdue(ctx context.Context, today entities.Date, limit int) ([]*entities.Task, error)
	ListUpcoming(ctx context.Context, from, to entities.Date, limit int) ([]*entities.Task, error)
}

// Filter types for repository queries. A nil field means the dimension is
// not filtered at all, not a filter on the zero value.

type PlantFilter struct {
	Search *string
	Year   *int
}

type CycleFilter struct {
	Year    *int
	Status  *entities.CycleStatus
	PlantID *int
}

type EventFilter struct {
	CycleID  *int
	Type     *entities.EventType
	DateFrom *entities.Date
	DateTo   *entities.Date
}

// TaskFilter composes the task list predicates. Overdue restricts the result
// to incomplete tasks due strictly before Today; it is ANDed with a Completed
// filter even when the combination is unsatisfiable.
type TaskFilter struct {
	Completed *bool
	CycleID   *int
	Priority  *entities.TaskPriority
	Overdue   bool
	Today     entities.Date
}
