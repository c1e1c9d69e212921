package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
)

// TransitionRepository читает журнал переходов; запись идет из IncidentRepository.ApplyTransition
type TransitionRepository struct {
	db *pgxpool.Pool
}

func NewTransitionRepository(db *pgxpool.Pool) *TransitionRepository {
	return &TransitionRepository{db: db}
}

// listTransitionsQuery - равные отметки времени упорядочиваются по seq (порядок вставки)
const listTransitionsQuery = `
	SELECT id, incident_id, from_status, to_status, note, at
	FROM transition_logs
	WHERE incident_id = $1
	ORDER BY at ASC, seq ASC;
`

// ListByIncident возвращает журнал в порядке возрастания времени
func (r *TransitionRepository) ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]*models.TransitionLogEntry, error) {
	rows, err := r.db.Query(ctx, listTransitionsQuery, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.TransitionLogEntry, 0)
	for rows.Next() {
		entry := &models.TransitionLogEntry{}
		if err := rows.Scan(&entry.ID, &entry.IncidentID, &entry.From, &entry.To, &entry.Note, &entry.At); err != nil {
			return nil, fmt.Errorf("failed to scan transition row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error transition iteration: %w", err)
	}
	return entries, nil
}
