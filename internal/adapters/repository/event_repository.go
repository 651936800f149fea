package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gardenlog/core/internal/domain/entities"
	"github.com/gardenlog/core/internal/ports"
)

// EventRepositoryImpl implements the EventRepository interface on Postgres.
type EventRepositoryImpl struct {
	db *sqlx.DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *sqlx.DB) ports.EventRepository {
	return &EventRepositoryImpl{db: db}
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *entities.Event) error {
	query := `
		INSERT INTO events (planting_cycle_id, event_type, event_date, location, quantity, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		event.CycleID, event.Type, event.Date, event.Location, event.Quantity, event.Notes,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	return nil
}

func (r *EventRepositoryImpl) GetByID(ctx context.Context, id int) (*entities.Event, error) {
	query := `
		SELECT id, planting_cycle_id, event_type, event_date, location, quantity, notes, created_at
		FROM events
		WHERE id = $1`

	var event entities.Event
	err := r.db.GetContext(ctx, &event, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event by id: %w", err)
	}

	return &event, nil
}

func (r *EventRepositoryImpl) Update(ctx context.Context, event *entities.Event) error {
	query := `
		UPDATE events
		SET planting_cycle_id = $2, event_type = $3, event_date = $4,
			location = $5, quantity = $6, notes = $7
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		event.ID, event.CycleID, event.Type, event.Date, event.Location, event.Quantity, event.Notes)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrEventNotFound
	}

	return nil
}

func (r *EventRepositoryImpl) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM events WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrEventNotFound
	}

	return nil
}

func (r *EventRepositoryImpl) List(ctx context.Context, filter ports.EventFilter) ([]*entities.Event, error) {
	query := `
		SELECT id, planting_cycle_id, event_type, event_date, location, quantity, notes, created_at
		FROM events
		WHERE 1=1`

	args := []interface{}{}

	if filter.CycleID != nil {
		args = append(args, *filter.CycleID)
		query += fmt.Sprintf(" AND planting_cycle_id = $%d", len(args))
	}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		query += fmt.Sprintf(" AND event_type = $%d", len(args))
	}

	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += fmt.Sprintf(" AND event_date >= $%d", len(args))
	}

	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += fmt.Sprintf(" AND event_date <= $%d", len(args))
	}

	query += " ORDER BY event_date DESC, created_at DESC"

	var events []*entities.Event
	err := r.db.SelectContext(ctx, &events, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return events, nil
}

func (r *EventRepositoryImpl) ListByCycle(ctx context.Context, cycleID int) ([]entities.Event, error) {
	query := `
		SELECT id, planting_cycle_id, event_type, event_date, location, quantity, notes, created_at
		FROM events
		WHERE planting_cycle_id = $1
		ORDER BY event_date DESC, created_at DESC`

	var events []entities.Event
	err := r.db.SelectContext(ctx, &events, query, cycleID)
	if err != nil {
		return nil, fmt.Errorf("list events by cycle: %w", err)
	}

	return events, nil
}

func (r *EventRepositoryImpl) CountSince(ctx context.Context, since entities.Date) (int, error) {
	query := `SELECT COUNT(*) FROM events WHERE event_date >= $1`

	var count int
	err := r.db.GetContext(ctx, &count, query, since)
	if err != nil {
		return 0, fmt.Errorf("count recent events: %w", err)
	}

	return count, nil
}

// HarvestTotals counts harvest events since the given date and sums their
// quantities. NULL quantities are excluded from the sum, which defaults to 0.
func (r *EventRepositoryImpl) HarvestTotals(ctx context.Context, since entities.Date) (int, float64, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(quantity), 0)
		FROM events
		WHERE event_type = $1 AND event_date >= $2`

	var count int
	var total float64
	err := r.db.QueryRowContext(ctx, query, entities.EventTypeHarvest, since).Scan(&count, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("harvest totals: %w", err)
	}

	return count, total, nil
}
