package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gardenlog/core/internal/domain/entities"
	"github.com/gardenlog/core/internal/ports"
)

// PlantRepositoryImpl implements the PlantRepository interface on Postgres.
type PlantRepositoryImpl struct {
	db *sqlx.DB
}

// NewPlantRepository creates a new plant repository.
func NewPlantRepository(db *sqlx.DB) ports.PlantRepository {
	return &PlantRepositoryImpl{db: db}
}

func (r *PlantRepositoryImpl) Create(ctx context.Context, plant *entities.Plant) error {
	query := `
		INSERT INTO plants (name, variety, seed_source, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		plant.Name, plant.Variety, plant.SeedSource, plant.Notes,
	).Scan(&plant.ID, &plant.CreatedAt)

	if err != nil {
		return fmt.Errorf("create plant: %w", err)
	}

	return nil
}

func (r *PlantRepositoryImpl) GetByID(ctx context.Context, id int) (*entities.Plant, error) {
	query := `
		SELECT id, name, variety, seed_source, notes, created_at
		FROM plants
		WHERE id = $1`

	var plant entities.Plant
	err := r.db.GetContext(ctx, &plant, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrPlantNotFound
		}
		return nil, fmt.Errorf("get plant by id: %w", err)
	}

	return &plant, nil
}

func (r *PlantRepositoryImpl) Update(ctx context.Context, plant *entities.Plant) error {
	query := `
		UPDATE plants
		SET name = $2, variety = $3, seed_source = $4, notes = $5
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		plant.ID, plant.Name, plant.Variety, plant.SeedSource, plant.Notes)
	if err != nil {
		return fmt.Errorf("update plant: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrPlantNotFound
	}

	return nil
}

func (r *PlantRepositoryImpl) Delete(ctx context.Context, id int) error {
	// Cycles, events and tasks go with the plant via ON DELETE CASCADE.
	query := `DELETE FROM plants WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete plant: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrPlantNotFound
	}

	return nil
}

// List returns plant summaries with query-time aggregates: the cycle count
// and the year/status of the cycle with the highest year.
func (r *PlantRepositoryImpl) List(ctx context.Context, filter ports.PlantFilter) ([]*entities.PlantSummary, error) {
	query := `
		SELECT p.id, p.name, p.variety, p.created_at,
			(SELECT COUNT(*) FROM planting_cycles c WHERE c.plant_id = p.id) AS cycle_count,
			lc.year AS latest_cycle_year,
			lc.status AS latest_cycle_status
		FROM plants p
		LEFT JOIN LATERAL (
			SELECT year, status FROM planting_cycles
			WHERE plant_id = p.id
			ORDER BY year DESC
			LIMIT 1
		) lc ON true
		WHERE 1=1`

	args := []interface{}{}

	if filter.Search != nil {
		args = append(args, "%"+*filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.variety ILIKE $%d OR p.seed_source ILIKE $%d)", n, n, n)
	}

	if filter.Year != nil {
		args = append(args, *filter.Year)
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM planting_cycles c WHERE c.plant_id = p.id AND c.year = $%d)", len(args))
	}

	query += " ORDER BY p.name, p.variety"

	var plants []*entities.PlantSummary
	err := r.db.SelectContext(ctx, &plants, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}

	return plants, nil
}

func (r *PlantRepositoryImpl) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM plants`)
	if err != nil {
		return 0, fmt.Errorf("count plants: %w", err)
	}

	return count, nil
}
