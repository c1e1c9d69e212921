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

type DepartmentRepository struct {
	db *pgxpool.Pool
}

func NewDepartmentRepository(db *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	ensureID(&department.ID)
	query := `INSERT INTO departments (id, code, name, kind) VALUES ($1, $2, $3, $4);`
	if _, err := r.db.Exec(ctx, query, department.ID, department.Code, department.Name, department.Kind); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("department %s: %w", department.Code, models.ErrDuplicate)
		}
		return fmt.Errorf("failed to create department: %w", err)
	}
	return nil
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Department, error) {
	return r.get(ctx, `SELECT id, code, name, kind FROM departments WHERE id = $1;`, id)
}

func (r *DepartmentRepository) GetByCode(ctx context.Context, code string) (*models.Department, error) {
	return r.get(ctx, `SELECT id, code, name, kind FROM departments WHERE code = $1;`, code)
}

func (r *DepartmentRepository) get(ctx context.Context, query string, arg any) (*models.Department, error) {
	department := &models.Department{}
	err := r.db.QueryRow(ctx, query, arg).Scan(&department.ID, &department.Code, &department.Name, &department.Kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("department %v: %w", arg, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return department, nil
}
