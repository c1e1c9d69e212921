package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/dispatch_orchestrator/internal/repository/memory"
	"github.com/shenikar/dispatch_orchestrator/internal/service"
)

// querier - общее подмножество pgxpool.Pool и pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewRepositories собирает все хранилища поверх PostgreSQL.
// Хранилище инцидентов также служит кешем чтения в Redis.
func NewRepositories(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) (service.Repositories, *IncidentRepository) {
	incidents := NewIncidentRepository(db, redisClient, cacheTTL)
	return service.Repositories{
		Incidents:      incidents,
		Transitions:    NewTransitionRepository(db),
		Units:          NewUnitRepository(db),
		Positions:      NewPositionRepository(db),
		Dispatches:     NewDispatchRepository(db),
		Reinforcements: NewReinforcementRepository(db),
		Departments:    NewDepartmentRepository(db),
		Homicide:       NewHomicideRepository(db),
		Audit:          NewAuditRepository(db),
		Calls:          NewCallRepository(db),
	}, incidents
}

// NewMemoryRepositories - тот же набор поверх хранилища в памяти (STORE_DRIVER=memory)
func NewMemoryRepositories(store *memory.Store) service.Repositories {
	return service.Repositories{
		Incidents:      store.Incidents(),
		Transitions:    store.Transitions(),
		Units:          store.Units(),
		Positions:      store.Positions(),
		Dispatches:     store.Dispatches(),
		Reinforcements: store.Reinforcements(),
		Departments:    store.Departments(),
		Homicide:       store.Homicide(),
		Audit:          store.Audit(),
		Calls:          store.Calls(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// exists отличает отсутствие строки от конфликта условного обновления
func exists(ctx context.Context, q querier, table string, id uuid.UUID) (bool, error) {
	var found bool
	err := q.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM "+table+" WHERE id = $1)", id).Scan(&found)
	return found, err
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// nullableID пишет uuid.Nil как NULL
func nullableID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

func idStrings(ids []uuid.UUID) []string {
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		result = append(result, id.String())
	}
	return result
}
