package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
)

// PositionRepository - журнал GPS-отметок, только добавление
type PositionRepository struct {
	db *pgxpool.Pool
}

func NewPositionRepository(db *pgxpool.Pool) *PositionRepository {
	return &PositionRepository{db: db}
}

func (r *PositionRepository) Append(ctx context.Context, position *models.Position) error {
	ensureID(&position.ID)
	query := `
		INSERT INTO unit_positions (id, unit_id, latitude, longitude, speed_kmh, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.db.Exec(ctx, query,
		position.ID,
		position.UnitID,
		position.Latitude,
		position.Longitude,
		position.SpeedKmh,
		position.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append position: %w", err)
	}
	return nil
}

// Latest возвращает последнюю отметку каждого экипажа из списка
func (r *PositionRepository) Latest(ctx context.Context, unitIDs []uuid.UUID) (map[uuid.UUID]*models.Position, error) {
	result := make(map[uuid.UUID]*models.Position, len(unitIDs))
	if len(unitIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT DISTINCT ON (unit_id) id, unit_id, latitude, longitude, speed_kmh, recorded_at
		FROM unit_positions
		WHERE unit_id = ANY($1::uuid[])
		ORDER BY unit_id, recorded_at DESC;
	`
	rows, err := r.db.Query(ctx, query, idStrings(unitIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load latest positions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		position := &models.Position{}
		err := rows.Scan(
			&position.ID,
			&position.UnitID,
			&position.Latitude,
			&position.Longitude,
			&position.SpeedKmh,
			&position.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position row: %w", err)
		}
		result[position.UnitID] = position
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error position iteration: %w", err)
	}
	return result, nil
}
