package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
)

const unitColumns = `id, plate, call_sign, type, status, department_id, created_at, updated_at`

type UnitRepository struct {
	db *pgxpool.Pool
}

func NewUnitRepository(db *pgxpool.Pool) *UnitRepository {
	return &UnitRepository{db: db}
}

func scanUnit(row pgx.Row) (*models.Unit, error) {
	unit := &models.Unit{}
	var departmentID uuid.NullUUID
	err := row.Scan(
		&unit.ID,
		&unit.Plate,
		&unit.CallSign,
		&unit.Type,
		&unit.Status,
		&departmentID,
		&unit.CreatedAt,
		&unit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if departmentID.Valid {
		unit.DepartmentID = departmentID.UUID
	}
	return unit, nil
}

// Create регистрирует экипаж; повтор номера или позывного дает models.ErrDuplicate
func (r *UnitRepository) Create(ctx context.Context, unit *models.Unit) error {
	ensureID(&unit.ID)
	query := `
		INSERT INTO units (id, plate, call_sign, type, status, department_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		unit.ID,
		unit.Plate,
		unit.CallSign,
		unit.Type,
		unit.Status,
		nullableID(unit.DepartmentID),
	).Scan(&unit.CreatedAt, &unit.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("unit %s: %w", unit.Plate, models.ErrDuplicate)
		}
		return fmt.Errorf("failed to create unit: %w", err)
	}
	return nil
}

func (r *UnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE id = $1;`
	unit, err := scanUnit(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("unit with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get unit by id: %w", err)
	}
	return unit, nil
}

// List фильтрует по статусу и подразделению; нулевые значения фильтра игнорируются
func (r *UnitRepository) List(ctx context.Context, filter models.UnitFilter) ([]*models.Unit, error) {
	query := `
		SELECT ` + unitColumns + `
		FROM units
		WHERE ($1 = '' OR status = $1)
			AND ($2::uuid IS NULL OR department_id = $2)
			AND ($3::uuid IS NULL OR department_id IS DISTINCT FROM $3)
		ORDER BY id;
	`
	rows, err := r.db.Query(ctx, query,
		string(filter.Status),
		nullableID(filter.DepartmentID),
		nullableID(filter.ExcludeDepartmentID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	units := make([]*models.Unit, 0)
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unit row: %w", err)
		}
		units = append(units, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error unit iteration: %w", err)
	}
	return units, nil
}

// UpdateStatus - compare-and-swap: меняет статус только если текущий равен from
func (r *UnitRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.UnitStatus) (*models.Unit, error) {
	query := `
		UPDATE units SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + unitColumns + `;
	`
	unit, err := scanUnit(r.db.QueryRow(ctx, query, id, string(from), string(to)))
	if err == nil {
		return unit, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update unit status: %w", err)
	}
	found, existsErr := exists(ctx, r.db, "units", id)
	if existsErr != nil {
		return nil, fmt.Errorf("failed to check unit: %w", existsErr)
	}
	if !found {
		return nil, fmt.Errorf("unit with id %s: %w", id, models.ErrNotFound)
	}
	return nil, fmt.Errorf("unit %s is no longer %s: %w", id, from, models.ErrStatusConflict)
}
