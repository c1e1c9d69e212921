package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
)

// HomicideRepository хранит чек-лист, состав группы и периметр места преступления
type HomicideRepository struct {
	db *pgxpool.Pool
}

func NewHomicideRepository(db *pgxpool.Pool) *HomicideRepository {
	return &HomicideRepository{db: db}
}

// AddChecklist пишет шаги одной транзакцией, сохраняя порядок
func (r *HomicideRepository) AddChecklist(ctx context.Context, items []*models.ChecklistItem) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for i, item := range items {
			ensureID(&item.ID)
			err := tx.QueryRow(ctx, `
				INSERT INTO homicide_checklist (id, incident_id, step, status, position)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING created_at;
			`, item.ID, item.IncidentID, item.Step, item.Status, i).Scan(&item.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to add checklist item: %w", err)
			}
		}
		return nil
	})
}

func (r *HomicideRepository) ListChecklist(ctx context.Context, incidentID uuid.UUID) ([]*models.ChecklistItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, incident_id, step, status, created_at
		FROM homicide_checklist
		WHERE incident_id = $1
		ORDER BY position ASC;
	`, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist: %w", err)
	}
	defer rows.Close()

	items := make([]*models.ChecklistItem, 0)
	for rows.Next() {
		item := &models.ChecklistItem{}
		if err := rows.Scan(&item.ID, &item.IncidentID, &item.Step, &item.Status, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checklist row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error checklist iteration: %w", err)
	}
	return items, nil
}

func (r *HomicideRepository) AddTeamRequests(ctx context.Context, requests []*models.TeamRequest) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for i, request := range requests {
			ensureID(&request.ID)
			err := tx.QueryRow(ctx, `
				INSERT INTO team_requests (id, incident_id, role, priority, status, position)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING created_at;
			`, request.ID, request.IncidentID, request.Role, request.Priority, request.Status, i).Scan(&request.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to add team request: %w", err)
			}
		}
		return nil
	})
}

func (r *HomicideRepository) ListTeamRequests(ctx context.Context, incidentID uuid.UUID) ([]*models.TeamRequest, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, incident_id, role, priority, status, created_at
		FROM team_requests
		WHERE incident_id = $1
		ORDER BY position ASC;
	`, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.TeamRequest, 0)
	for rows.Next() {
		request := &models.TeamRequest{}
		if err := rows.Scan(&request.ID, &request.IncidentID, &request.Role, &request.Priority, &request.Status, &request.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team request row: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error team request iteration: %w", err)
	}
	return requests, nil
}

func (r *HomicideRepository) SavePerimeter(ctx context.Context, perimeter *models.ScenePerimeter) error {
	ensureID(&perimeter.ID)
	err := r.db.QueryRow(ctx, `
		INSERT INTO scene_perimeters (id, incident_id, latitude, longitude, radius_meters)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at;
	`, perimeter.ID, perimeter.IncidentID, perimeter.Latitude, perimeter.Longitude, perimeter.RadiusMeters).Scan(&perimeter.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save scene perimeter: %w", err)
	}
	return nil
}
