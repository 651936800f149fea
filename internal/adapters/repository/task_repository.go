package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gardenlog/core/internal/domain/entities"
	"github.com/gardenlog/core/internal/ports"
)

// Default task ordering: incomplete first, then priority high to low, then
// due date ascending with undated tasks last.
const taskOrder = ` ORDER BY completed,
	CASE priority WHEN 'high' THEN 2 WHEN 'medium' THEN 1 ELSE 0 END DESC,
	due_date ASC NULLS LAST`

// TaskRepositoryImpl implements the TaskRepository interface on Postgres.
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	query := `
		INSERT INTO tasks (planting_cycle_id, title, description, due_date, completed, completed_at, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		task.CycleID, task.Title, task.Description, task.DueDate,
		task.Completed, task.CompletedAt, task.Priority,
	).Scan(&task.ID, &task.CreatedAt)

	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id int) (*entities.Task, error) {
	query := `
		SELECT id, planting_cycle_id, title, description, due_date, completed, completed_at, priority, created_at
		FROM tasks
		WHERE id = $1`

	var task entities.Task
	err := r.db.GetContext(ctx, &task, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return &task, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.Task) error {
	query := `
		UPDATE tasks
		SET planting_cycle_id = $2, title = $3, description = $4, due_date = $5,
			completed = $6, completed_at = $7, priority = $8
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		task.ID, task.CycleID, task.Title, task.Description, task.DueDate,
		task.Completed, task.CompletedAt, task.Priority)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tasks WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepositoryImpl) List(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	query := `
		SELECT id, planting_cycle_id, title, description, due_date, completed, completed_at, priority, created_at
		FROM tasks
		WHERE 1=1`

	args := []interface{}{}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		query += fmt.Sprintf(" AND completed = $%d", len(args))
	}

	if filter.CycleID != nil {
		args = append(args, *filter.CycleID)
		query += fmt.Sprintf(" AND planting_cycle_id = $%d", len(args))
	}

	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		query += fmt.Sprintf(" AND priority = $%d", len(args))
	}

	if filter.Overdue {
		args = append(args, filter.Today)
		query += fmt.Sprintf(" AND completed = false AND due_date < $%d", len(args))
	}

	query += taskOrder

	var tasks []*entities.Task
	err := r.db.SelectContext(ctx, &tasks, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) ListByCycle(ctx context.Context, cycleID int) ([]entities.Task, error) {
	query := `
		SELECT id, planting_cycle_id, title, description, due_date, completed, completed_at, priority, created_at
		FROM tasks
		WHERE planting_cycle_id = $1` + taskOrder

	var tasks []entities.Task
	err := r.db.SelectContext(ctx, &tasks, query, cycleID)
	if err != nil {
		return nil, fmt.Errorf("list tasks by cycle: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) CountOpen(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tasks WHERE completed = false`)
	if err != nil {
		return 0, fmt.Errorf("count open tasks: %w", err)
	}

	return count, nil
}

func (r *TaskRepositoryImpl) CountOverdue(ctx context.Context, today entities.Date) (int, error) {
	query := `SELECT COUNT(*) FROM tasks WHERE completed = false AND due_date < $1`

	var count int
	err := r.db.GetContext(ctx, &count, query, today)
	if err != nil {
		return 0, fmt.Errorf("count overdue tasks: %w", err)
	}

	return count, nil
}

func (r *TaskRepositoryImpl) ListOverdue(ctx context.Context, today entities.Date, limit int) ([]*entities.Task, error) {
	query := `
		SELECT id, planting_cycle_id, title, description, due_date, completed, completed_at, priority, created_at
		FROM tasks
		WHERE completed = false AND due_date < $1` + taskOrder + ` LIMIT $2`

	var tasks []*entities.Task
	err := r.db.SelectContext(ctx, &tasks, query, today, limit)
	if err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) ListUpcoming(ctx context.Context, from, to entities.Date, limit int) ([]*entities.Task, error) {
	query := `
		SELECT id, planting_cycle_id, title, description, due_date, completed, completed_at, priority, created_at
		FROM tasks
		WHERE completed = false AND due_date >= $1 AND due_date <= $2` + taskOrder + ` LIMIT $3`

	var tasks []*entities.Task
	err := r.db.SelectContext(ctx, &tasks, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming tasks: %w", err)
	}

	return tasks, nil
}
