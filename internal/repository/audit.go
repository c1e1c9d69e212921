package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
)

// AuditRepository - журнал бизнес-аудита, только добавление
type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	ensureID(&entry.ID)
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode audit payload: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO audit_logs (id, kind, incident_id, payload, at)
		VALUES ($1, $2, $3, $4, $5);
	`, entry.ID, entry.Kind, entry.IncidentID, payload, entry.At)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]*models.AuditEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, kind, incident_id, payload, at
		FROM audit_logs
		WHERE incident_id = $1
		ORDER BY at ASC, id ASC;
	`, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.AuditEntry, 0)
	for rows.Next() {
		entry := &models.AuditEntry{}
		var payload []byte
		if err := rows.Scan(&entry.ID, &entry.Kind, &entry.IncidentID, &payload, &entry.At); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		if err := json.Unmarshal(payload, &entry.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode audit payload: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error audit iteration: %w", err)
	}
	return entries, nil
}
