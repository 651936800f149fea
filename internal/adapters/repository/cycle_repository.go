package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gardenlog/core/internal/domain/entities"
	"github.com/gardenlog/core/internal/ports"
)

const cycleColumns = `
	c.id, c.plant_id, p.name AS plant_name, p.variety AS plant_variety,
	c.year, c.status, c.seed_saved, c.seed_saved_notes, c.created_at`

// CycleRepositoryImpl implements the CycleRepository interface on Postgres.
type CycleRepositoryImpl struct {
	db *sqlx.DB
}

// NewCycleRepository creates a new planting cycle repository.
func NewCycleRepository(db *sqlx.DB) ports.CycleRepository {
	return &CycleRepositoryImpl{db: db}
}

func (r *CycleRepositoryImpl) Create(ctx context.Context, cycle *entities.PlantingCycle) error {
	query := `
		INSERT INTO planting_cycles (plant_id, year, status, seed_saved, seed_saved_notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		cycle.PlantID, cycle.Year, cycle.Status, cycle.SeedSaved, cycle.SeedSavedNotes,
	).Scan(&cycle.ID, &cycle.CreatedAt)

	if err != nil {
		return r.mapConflict(err, cycle, "create planting cycle")
	}

	return nil
}

func (r *CycleRepositoryImpl) GetByID(ctx context.Context, id int) (*entities.PlantingCycle, error) {
	query := `
		SELECT ` + cycleColumns + `
		FROM planting_cycles c
		JOIN plants p ON p.id = c.plant_id
		WHERE c.id = $1`

	var cycle entities.PlantingCycle
	err := r.db.GetContext(ctx, &cycle, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrCycleNotFound
		}
		return nil, fmt.Errorf("get planting cycle by id: %w", err)
	}

	return &cycle, nil
}

func (r *CycleRepositoryImpl) GetByPlantYear(ctx context.Context, plantID, year int) (*entities.PlantingCycle, error) {
	query := `
		SELECT ` + cycleColumns + `
		FROM planting_cycles c
		JOIN plants p ON p.id = c.plant_id
		WHERE c.plant_id = $1 AND c.year = $2`

	var cycle entities.PlantingCycle
	err := r.db.GetContext(ctx, &cycle, query, plantID, year)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrCycleNotFound
		}
		return nil, fmt.Errorf("get planting cycle by plant and year: %w", err)
	}

	return &cycle, nil
}

func (r *CycleRepositoryImpl) Update(ctx context.Context, cycle *entities.PlantingCycle) error {
	query := `
		UPDATE planting_cycles
		SET plant_id = $2, year = $3, status = $4, seed_saved = $5, seed_saved_notes = $6
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		cycle.ID, cycle.PlantID, cycle.Year, cycle.Status, cycle.SeedSaved, cycle.SeedSavedNotes)
	if err != nil {
		return r.mapConflict(err, cycle, "update planting cycle")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrCycleNotFound
	}

	return nil
}

func (r *CycleRepositoryImpl) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM planting_cycles WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete planting cycle: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrCycleNotFound
	}

	return nil
}

func (r *CycleRepositoryImpl) List(ctx context.Context, filter ports.CycleFilter) ([]*entities.PlantingCycle, error) {
	query := `
		SELECT ` + cycleColumns + `
		FROM planting_cycles c
		JOIN plants p ON p.id = c.plant_id
		WHERE 1=1`

	args := []interface{}{}

	if filter.Year != nil {
		args = append(args, *filter.Year)
		query += fmt.Sprintf(" AND c.year = $%d", len(args))
	}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND c.status = $%d", len(args))
	}

	if filter.PlantID != nil {
		args = append(args, *filter.PlantID)
		query += fmt.Sprintf(" AND c.plant_id = $%d", len(args))
	}

	query += " ORDER BY c.year DESC, p.name"

	var cycles []*entities.PlantingCycle
	err := r.db.SelectContext(ctx, &cycles, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list planting cycles: %w", err)
	}

	return cycles, nil
}

func (r *CycleRepositoryImpl) ListByPlant(ctx context.Context, plantID int) ([]*entities.PlantingCycle, error) {
	query := `
		SELECT ` + cycleColumns + `
		FROM planting_cycles c
		JOIN plants p ON p.id = c.plant_id
		WHERE c.plant_id = $1
		ORDER BY c.year DESC, p.name`

	var cycles []*entities.PlantingCycle
	err := r.db.SelectContext(ctx, &cycles, query, plantID)
	if err != nil {
		return nil, fmt.Errorf("list planting cycles by plant: %w", err)
	}

	return cycles, nil
}

func (r *CycleRepositoryImpl) ListCurrent(ctx context.Context, year int) ([]*entities.PlantingCycle, error) {
	query := `
		SELECT ` + cycleColumns + `
		FROM planting_cycles c
		JOIN plants p ON p.id = c.plant_id
		WHERE c.year = $1 AND c.status <> $2
		ORDER BY c.year DESC, p.name`

	var cycles []*entities.PlantingCycle
	err := r.db.SelectContext(ctx, &cycles, query, year, entities.CycleStatusFinished)
	if err != nil {
		return nil, fmt.Errorf("list current planting cycles: %w", err)
	}

	return cycles, nil
}

func (r *CycleRepositoryImpl) CountCurrent(ctx context.Context, year int) (int, error) {
	query := `SELECT COUNT(*) FROM planting_cycles WHERE year = $1 AND status <> $2`

	var count int
	err := r.db.GetContext(ctx, &count, query, year, entities.CycleStatusFinished)
	if err != nil {
		return 0, fmt.Errorf("count current planting cycles: %w", err)
	}

	return count, nil
}

// mapConflict translates a unique violation on (plant_id, year) into the
// domain conflict error so a losing racer still gets a 409.
func (r *CycleRepositoryImpl) mapConflict(err error, cycle *entities.PlantingCycle, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return &entities.ConflictError{PlantID: cycle.PlantID, Year: cycle.Year}
	}
	return fmt.Errorf("%s: %w", op, err)
}
