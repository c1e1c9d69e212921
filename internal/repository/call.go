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

const callColumns = `id, caller_name, caller_phone, caller_address, received_at, notes, source_system, external_protocol, created_at`

// CallRepository - обращения, принятые центром вызовов
type CallRepository struct {
	db *pgxpool.Pool
}

func NewCallRepository(db *pgxpool.Pool) *CallRepository {
	return &CallRepository{db: db}
}

func scanCall(row pgx.Row) (*models.Call, error) {
	call := &models.Call{}
	err := row.Scan(
		&call.ID,
		&call.CallerName,
		&call.CallerPhone,
		&call.CallerAddress,
		&call.ReceivedAt,
		&call.Notes,
		&call.SourceSystem,
		&call.ExternalProtocol,
		&call.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return call, nil
}

// Create сохраняет обращение; повтор внешнего протокола дает models.ErrDuplicate
func (r *CallRepository) Create(ctx context.Context, call *models.Call) error {
	ensureID(&call.ID)
	query := `
		INSERT INTO calls (id, caller_name, caller_phone, caller_address, received_at, notes, source_system, external_protocol)
		VALUES ($1, $2, $3, $4, COALESCE($5::timestamptz, NOW()), $6, $7, $8)
		RETURNING received_at, created_at;
	`
	var receivedAt any
	if !call.ReceivedAt.IsZero() {
		receivedAt = call.ReceivedAt
	}
	err := r.db.QueryRow(ctx, query,
		call.ID,
		call.CallerName,
		call.CallerPhone,
		call.CallerAddress,
		receivedAt,
		call.Notes,
		call.SourceSystem,
		call.ExternalProtocol,
	).Scan(&call.ReceivedAt, &call.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("call %s/%s: %w", call.SourceSystem, call.ExternalProtocol, models.ErrDuplicate)
		}
		return fmt.Errorf("failed to create call: %w", err)
	}
	return nil
}

func (r *CallRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Call, error) {
	query := `SELECT ` + callColumns + ` FROM calls WHERE id = $1;`
	call, err := scanCall(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("call with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get call by id: %w", err)
	}
	return call, nil
}

func (r *CallRepository) List(ctx context.Context, filter models.CallFilter) ([]*models.Call, error) {
	query := `
		SELECT ` + callColumns + `
		FROM calls
		WHERE ($1::timestamptz IS NULL OR received_at >= $1)
		  AND ($2::timestamptz IS NULL OR received_at <= $2)
		ORDER BY received_at DESC, id ASC;
	`
	rows, err := r.db.Query(ctx, query, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}
	defer rows.Close()

	calls := make([]*models.Call, 0)
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call row: %w", err)
		}
		calls = append(calls, call)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error call iteration: %w", err)
	}
	return calls, nil
}
