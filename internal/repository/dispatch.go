package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
)

const dispatchColumns = `
	id,
	incident_id,
	unit_id,
	kind,
	status,
	dispatched_at,
	accepted_at,
	arrived_at,
	attendance_started_at,
	completed_at,
	actions,
	distance_km,
	notes,
	reinforcement_id,
	updated_at`

// активный выезд - не завершен и не отменен
const activeDispatch = `status NOT IN ('completed', 'cancelled')`

type DispatchRepository struct {
	db *pgxpool.Pool
}

func NewDispatchRepository(db *pgxpool.Pool) *DispatchRepository {
	return &DispatchRepository{db: db}
}

func scanDispatch(row pgx.Row) (*models.Dispatch, error) {
	dispatch := &models.Dispatch{}
	var actions []byte
	err := row.Scan(
		&dispatch.ID,
		&dispatch.IncidentID,
		&dispatch.UnitID,
		&dispatch.Kind,
		&dispatch.Status,
		&dispatch.DispatchedAt,
		&dispatch.AcceptedAt,
		&dispatch.ArrivedAt,
		&dispatch.AttendanceStartedAt,
		&dispatch.CompletedAt,
		&actions,
		&dispatch.DistanceKm,
		&dispatch.Notes,
		&dispatch.ReinforcementID,
		&dispatch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	dispatch.Actions = []models.ActionEntry{}
	if len(actions) > 0 {
		if err := json.Unmarshal(actions, &dispatch.Actions); err != nil {
			return nil, fmt.Errorf("failed to decode dispatch actions: %w", err)
		}
	}
	return dispatch, nil
}

// CreateWithUnitClaim занимает экипаж (available -> en_route) и создает выезд в одной транзакции
func (r *DispatchRepository) CreateWithUnitClaim(ctx context.Context, dispatch *models.Dispatch) error {
	ensureID(&dispatch.ID)
	if dispatch.Actions == nil {
		dispatch.Actions = []models.ActionEntry{}
	}
	actions, err := json.Marshal(dispatch.Actions)
	if err != nil {
		return fmt.Errorf("failed to encode dispatch actions: %w", err)
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE units SET status = 'en_route', updated_at = NOW()
			WHERE id = $1 AND status = 'available';
		`, dispatch.UnitID)
		if err != nil {
			return fmt.Errorf("failed to claim unit: %w", err)
		}
		if tag.RowsAffected() == 0 {
			found, existsErr := exists(ctx, tx, "units", dispatch.UnitID)
			if existsErr != nil {
				return fmt.Errorf("failed to check unit: %w", existsErr)
			}
			if !found {
				return fmt.Errorf("unit with id %s: %w", dispatch.UnitID, models.ErrNotFound)
			}
			return fmt.Errorf("unit %s is not available: %w", dispatch.UnitID, models.ErrStatusConflict)
		}

		query := `
			INSERT INTO dispatches (id, incident_id, unit_id, kind, status, dispatched_at, actions,
				distance_km, notes, reinforcement_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING updated_at;
		`
		err = tx.QueryRow(ctx, query,
			dispatch.ID,
			dispatch.IncidentID,
			dispatch.UnitID,
			dispatch.Kind,
			dispatch.Status,
			dispatch.DispatchedAt,
			actions,
			dispatch.DistanceKm,
			dispatch.Notes,
			dispatch.ReinforcementID,
		).Scan(&dispatch.UpdatedAt)
		if err != nil {
			// второй активный выезд на экипаж запрещен частичным уникальным индексом
			if isUniqueViolation(err) {
				return fmt.Errorf("unit %s already has an active dispatch: %w", dispatch.UnitID, models.ErrStatusConflict)
			}
			return fmt.Errorf("failed to create dispatch: %w", err)
		}
		return nil
	})
}

func (r *DispatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispatch, error) {
	query := `SELECT ` + dispatchColumns + ` FROM dispatches WHERE id = $1;`
	dispatch, err := scanDispatch(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("dispatch with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get dispatch by id: %w", err)
	}
	return dispatch, nil
}

func (r *DispatchRepository) ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]*models.Dispatch, error) {
	query := `
		SELECT ` + dispatchColumns + `
		FROM dispatches
		WHERE incident_id = $1
		ORDER BY dispatched_at ASC, id ASC;
	`
	rows, err := r.db.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dispatches: %w", err)
	}
	defer rows.Close()

	dispatches := make([]*models.Dispatch, 0)
	for rows.Next() {
		dispatch, err := scanDispatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dispatch row: %w", err)
		}
		dispatches = append(dispatches, dispatch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error dispatch iteration: %w", err)
	}
	return dispatches, nil
}

func (r *DispatchRepository) ActiveByUnit(ctx context.Context, unitID uuid.UUID) (*models.Dispatch, error) {
	query := `SELECT ` + dispatchColumns + ` FROM dispatches WHERE unit_id = $1 AND ` + activeDispatch + `;`
	dispatch, err := scanDispatch(r.db.QueryRow(ctx, query, unitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("active dispatch for unit %s: %w", unitID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get active dispatch: %w", err)
	}
	return dispatch, nil
}

func (r *DispatchRepository) Accept(ctx context.Context, id uuid.UUID, at time.Time) (*models.Dispatch, error) {
	return r.conditional(ctx, r.db, id, `
		UPDATE dispatches SET status = 'in_field', accepted_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'sent'
		RETURNING `+dispatchColumns+`;
	`, at)
}

// RecordArrival переводит выезд в on_scene и экипаж туда же
func (r *DispatchRepository) RecordArrival(ctx context.Context, id uuid.UUID, at time.Time) (*models.Dispatch, error) {
	var dispatch *models.Dispatch
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		updated, err := r.conditional(ctx, tx, id, `
			UPDATE dispatches SET status = 'on_scene', arrived_at = $2, updated_at = NOW()
			WHERE id = $1 AND status IN ('sent', 'in_field')
			RETURNING `+dispatchColumns+`;
		`, at)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE units SET status = 'on_scene', updated_at = $2 WHERE id = $1;`, updated.UnitID, at); err != nil {
			return fmt.Errorf("failed to update unit on arrival: %w", err)
		}
		dispatch = updated
		return nil
	})
	return dispatch, err
}

// MarkAttendanceStarted ставит отметку один раз; повторный вызов ее не меняет
func (r *DispatchRepository) MarkAttendanceStarted(ctx context.Context, id uuid.UUID, at time.Time) (*models.Dispatch, error) {
	return r.conditional(ctx, r.db, id, `
		UPDATE dispatches SET attendance_started_at = COALESCE(attendance_started_at, $2), updated_at = NOW()
		WHERE id = $1 AND `+activeDispatch+`
		RETURNING `+dispatchColumns+`;
	`, at)
}

// AppendActions дописывает действия в конец jsonb-массива
func (r *DispatchRepository) AppendActions(ctx context.Context, id uuid.UUID, actions []models.ActionEntry) (*models.Dispatch, error) {
	encoded, err := json.Marshal(actions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dispatch actions: %w", err)
	}
	return r.conditional(ctx, r.db, id, `
		UPDATE dispatches SET actions = actions || $2::jsonb, updated_at = NOW()
		WHERE id = $1 AND `+activeDispatch+`
		RETURNING `+dispatchColumns+`;
	`, string(encoded))
}

// CompleteWithUnitRelease закрывает выезд, только если есть хотя бы одно действие
func (r *DispatchRepository) CompleteWithUnitRelease(ctx context.Context, id uuid.UUID, notes string, at time.Time) (*models.Dispatch, error) {
	return r.finish(ctx, id, `
		UPDATE dispatches SET
			status = 'completed',
			completed_at = $2,
			notes = COALESCE(NULLIF($3, ''), notes),
			updated_at = NOW()
		WHERE id = $1 AND `+activeDispatch+` AND jsonb_array_length(actions) > 0
		RETURNING `+dispatchColumns+`;
	`, notes, at)
}

func (r *DispatchRepository) CancelWithUnitRelease(ctx context.Context, id uuid.UUID, notes string, at time.Time) (*models.Dispatch, error) {
	return r.finish(ctx, id, `
		UPDATE dispatches SET
			status = 'cancelled',
			completed_at = $2,
			notes = COALESCE(NULLIF($3, ''), notes),
			updated_at = NOW()
		WHERE id = $1 AND `+activeDispatch+`
		RETURNING `+dispatchColumns+`;
	`, notes, at)
}

// finish завершает выезд и возвращает экипаж в available в одной транзакции
func (r *DispatchRepository) finish(ctx context.Context, id uuid.UUID, query, notes string, at time.Time) (*models.Dispatch, error) {
	var dispatch *models.Dispatch
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		updated, err := r.conditional(ctx, tx, id, query, at, notes)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE units SET status = 'available', updated_at = $2
			WHERE id = $1 AND status IN ('en_route', 'on_scene');
		`, updated.UnitID, at)
		if err != nil {
			return fmt.Errorf("failed to release unit: %w", err)
		}
		dispatch = updated
		return nil
	})
	return dispatch, err
}

// conditional выполняет UPDATE ... RETURNING; ноль строк - ErrNotFound или ErrStatusConflict
func (r *DispatchRepository) conditional(ctx context.Context, q querier, id uuid.UUID, query string, args ...any) (*models.Dispatch, error) {
	dispatch, err := scanDispatch(q.QueryRow(ctx, query, append([]any{id}, args...)...))
	if err == nil {
		return dispatch, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update dispatch: %w", err)
	}
	found, existsErr := exists(ctx, q, "dispatches", id)
	if existsErr != nil {
		return nil, fmt.Errorf("failed to check dispatch: %w", existsErr)
	}
	if !found {
		return nil, fmt.Errorf("dispatch with id %s: %w", id, models.ErrNotFound)
	}
	return nil, fmt.Errorf("dispatch %s is not in the expected state: %w", id, models.ErrStatusConflict)
}
