package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
)

const reinforcementColumns = `
	id,
	incident_id,
	requester_id,
	urgency,
	category,
	notes,
	status,
	requested_at,
	fulfilled_at,
	assigned_unit_id,
	dispatch_id,
	fulfilled_by,
	response_minutes,
	cancelled_at,
	cancel_reason,
	cancelled_by`

type ReinforcementRepository struct {
	db *pgxpool.Pool
}

func NewReinforcementRepository(db *pgxpool.Pool) *ReinforcementRepository {
	return &ReinforcementRepository{db: db}
}

func scanReinforcement(row pgx.Row) (*models.ReinforcementRequest, error) {
	request := &models.ReinforcementRequest{}
	err := row.Scan(
		&request.ID,
		&request.IncidentID,
		&request.RequesterID,
		&request.Urgency,
		&request.Category,
		&request.Notes,
		&request.Status,
		&request.RequestedAt,
		&request.FulfilledAt,
		&request.AssignedUnitID,
		&request.DispatchID,
		&request.FulfilledBy,
		&request.ResponseMinutes,
		&request.CancelledAt,
		&request.CancelReason,
		&request.CancelledBy,
	)
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (r *ReinforcementRepository) Create(ctx context.Context, request *models.ReinforcementRequest) error {
	ensureID(&request.ID)
	query := `
		INSERT INTO reinforcement_requests (id, incident_id, requester_id, urgency, category, notes, status, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db.Exec(ctx, query,
		request.ID,
		request.IncidentID,
		request.RequesterID,
		request.Urgency,
		request.Category,
		request.Notes,
		request.Status,
		request.RequestedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reinforcement request: %w", err)
	}
	return nil
}

func (r *ReinforcementRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReinforcementRequest, error) {
	query := `SELECT ` + reinforcementColumns + ` FROM reinforcement_requests WHERE id = $1;`
	request, err := scanReinforcement(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reinforcement with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reinforcement by id: %w", err)
	}
	return request, nil
}

// List - срочные первыми, при равной срочности самые свежие
func (r *ReinforcementRepository) List(ctx context.Context, filter models.ReinforcementFilter) ([]*models.ReinforcementRequest, error) {
	query := `
		SELECT ` + reinforcementColumns + `
		FROM reinforcement_requests
		WHERE ($1 = '' OR status = $1)
			AND ($2::uuid IS NULL OR incident_id = $2)
			AND urgency >= $3
		ORDER BY urgency DESC, requested_at DESC;
	`
	rows, err := r.db.Query(ctx, query, string(filter.Status), nullableID(filter.IncidentID), filter.MinUrgency)
	if err != nil {
		return nil, fmt.Errorf("failed to list reinforcements: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.ReinforcementRequest, 0)
	for rows.Next() {
		request, err := scanReinforcement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reinforcement row: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reinforcement iteration: %w", err)
	}
	return requests, nil
}

// MarkFulfilled закрепляет экипаж, только пока запрос в статусе pending
func (r *ReinforcementRepository) MarkFulfilled(ctx context.Context, id, unitID, dispatchID uuid.UUID, by string, responseMinutes int, at time.Time) (*models.ReinforcementRequest, error) {
	return r.conditional(ctx, id, `
		UPDATE reinforcement_requests SET
			status = 'fulfilled',
			fulfilled_at = $2,
			assigned_unit_id = $3,
			dispatch_id = $4,
			fulfilled_by = $5,
			response_minutes = $6
		WHERE id = $1 AND status = 'pending'
		RETURNING `+reinforcementColumns+`;
	`, at, unitID, dispatchID, by, responseMinutes)
}

func (r *ReinforcementRepository) MarkCancelled(ctx context.Context, id uuid.UUID, reason, by string, at time.Time) (*models.ReinforcementRequest, error) {
	return r.conditional(ctx, id, `
		UPDATE reinforcement_requests SET
			status = 'cancelled',
			cancelled_at = $2,
			cancel_reason = $3,
			cancelled_by = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING `+reinforcementColumns+`;
	`, at, reason, by)
}

func (r *ReinforcementRepository) conditional(ctx context.Context, id uuid.UUID, query string, args ...any) (*models.ReinforcementRequest, error) {
	request, err := scanReinforcement(r.db.QueryRow(ctx, query, append([]any{id}, args...)...))
	if err == nil {
		return request, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update reinforcement: %w", err)
	}
	found, existsErr := exists(ctx, r.db, "reinforcement_requests", id)
	if existsErr != nil {
		return nil, fmt.Errorf("failed to check reinforcement: %w", existsErr)
	}
	if !found {
		return nil, fmt.Errorf("reinforcement with id %s: %w", id, models.ErrNotFound)
	}
	return nil, fmt.Errorf("reinforcement %s is no longer pending: %w", id, models.ErrStatusConflict)
}
