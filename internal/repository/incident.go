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
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
)

const incidentColumns = `
	id,
	protocol,
	type,
	description,
	location,
	latitude,
	longitude,
	status,
	priority,
	registered_at,
	closed_at,
	department_id,
	call_id,
	notes,
	last_transition_at,
	created_at,
	updated_at`

type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

// NewIncidentRepository; redisClient может быть nil, тогда кеш отключен
func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) *IncidentRepository {
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	incident := &models.Incident{}
	var departmentID uuid.NullUUID
	err := row.Scan(
		&incident.ID,
		&incident.Protocol,
		&incident.Type,
		&incident.Description,
		&incident.Location,
		&incident.Latitude,
		&incident.Longitude,
		&incident.Status,
		&incident.Priority,
		&incident.RegisteredAt,
		&incident.ClosedAt,
		&departmentID,
		&incident.CallID,
		&incident.Notes,
		&incident.LastTransitionAt,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if departmentID.Valid {
		incident.DepartmentID = departmentID.UUID
	}
	return incident, nil
}

// Create создает новую запись об инциденте в бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	ensureID(&incident.ID)
	query := `
		INSERT INTO incidents (id, protocol, type, description, location, latitude, longitude, status,
			priority, registered_at, department_id, call_id, notes, last_transition_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		incident.ID,
		incident.Protocol,
		incident.Type,
		incident.Description,
		incident.Location,
		incident.Latitude,
		incident.Longitude,
		incident.Status,
		incident.Priority,
		incident.RegisteredAt,
		nullableID(incident.DepartmentID),
		incident.CallID,
		incident.Notes,
		incident.LastTransitionAt,
	).Scan(&incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("incident protocol %s: %w", incident.Protocol, models.ErrDuplicate)
		}
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его UUID
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1;`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// Update меняет описательные поля; статус меняется только через ApplyTransition
func (r *IncidentRepository) Update(ctx context.Context, incident *models.Incident) error {
	query := `
		UPDATE incidents SET
			type = $1,
			description = $2,
			location = $3,
			latitude = $4,
			longitude = $5,
			priority = $6,
			department_id = $7,
			notes = $8,
			updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		incident.Type,
		incident.Description,
		incident.Location,
		incident.Latitude,
		incident.Longitude,
		incident.Priority,
		nullableID(incident.DepartmentID),
		incident.Notes,
		incident.ID,
	).Scan(&incident.UpdatedAt)
	if err != nil {
		// Если строк нет, значит инцидента с таким id не существует
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("incident with id %s not found for update: %w", incident.ID, models.ErrNotFound)
		}
		return fmt.Errorf("failed to update incident: %w", err)
	}
	r.invalidate(ctx, incident.ID)
	return nil
}

// List возвращает список инцидентов с пагинацией, новые первыми
func (r *IncidentRepository) List(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	// рассчитываем смещение
	offset := (page - 1) * pageSize

	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE ($1 = '' OR status = $1)
		  AND ($4::uuid IS NULL OR call_id = $4)
		ORDER BY registered_at DESC, protocol DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, string(filter.Status), pageSize, offset, filter.CallID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

// ApplyTransition меняет статус только если текущий равен from; запись журнала в той же транзакции
func (r *IncidentRepository) ApplyTransition(ctx context.Context, id uuid.UUID, from, to models.IncidentStatus, note string, at time.Time) (*models.Incident, error) {
	var incident *models.Incident
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE incidents SET
				status = $3,
				last_transition_at = $4,
				closed_at = CASE WHEN $3 = 'finalized' THEN $4 ELSE closed_at END,
				updated_at = $4
			WHERE id = $1 AND status = $2
			RETURNING ` + incidentColumns + `;
		`
		updated, err := scanIncident(tx.QueryRow(ctx, query, id, string(from), string(to), at))
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("failed to apply transition: %w", err)
			}
			found, existsErr := exists(ctx, tx, "incidents", id)
			if existsErr != nil {
				return fmt.Errorf("failed to check incident: %w", existsErr)
			}
			if !found {
				return fmt.Errorf("incident with id %s: %w", id, models.ErrNotFound)
			}
			return fmt.Errorf("incident %s is no longer %s: %w", id, from, models.ErrStatusConflict)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO transition_logs (incident_id, from_status, to_status, note, at)
			VALUES ($1, $2, $3, $4, $5);
		`, id, string(from), string(to), note, at)
		if err != nil {
			return fmt.Errorf("failed to write transition log: %w", err)
		}
		incident = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return incident, nil
}

// NextProtocolSequence атомарно увеличивает счетчик года
func (r *IncidentRepository) NextProtocolSequence(ctx context.Context, year int) (int, error) {
	query := `
		INSERT INTO protocol_sequences (year, last_value) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = protocol_sequences.last_value + 1
		RETURNING last_value;
	`
	var seq int
	if err := r.db.QueryRow(ctx, query, year).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to allocate protocol sequence: %w", err)
	}
	return seq, nil
}

func incidentCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("incident:%s", id.String())
}

// invalidate - ошибка кеша не отменяет записанное в бд изменение
func (r *IncidentRepository) invalidate(ctx context.Context, id uuid.UUID) {
	_ = r.InvalidateIncidentCache(ctx, id)
}

// GetIncidentFromCache пытается получить инцидент из Redis
func (r *IncidentRepository) GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	if r.redisClient == nil {
		return nil, nil
	}
	val, err := r.redisClient.Get(ctx, incidentCacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

// SetIncidentCache сохраняет инцидент в Redis
func (r *IncidentRepository) SetIncidentCache(ctx context.Context, incident *models.Incident) error {
	if r.redisClient == nil {
		return nil
	}
	val, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, incidentCacheKey(incident.ID), val, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return nil
}

// InvalidateIncidentCache удаляет инцидент из Redis кэша
func (r *IncidentRepository) InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error {
	if r.redisClient == nil {
		return nil
	}
	if err := r.redisClient.Del(ctx, incidentCacheKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}
