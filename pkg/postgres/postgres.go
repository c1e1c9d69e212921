package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/dispatch_orchestrator/internal/config"
)

// NewPostgresDB создает пул соединений PostgreSQL с размерами из конфигурации
func NewPostgresDB(ctx context.Context, appCfg *config.Config) (*pgxpool.Pool, error) {
	cfgPool, err := pgxpool.ParseConfig(appCfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при разборе конфигурации postgres: %w", err)
	}
	if appCfg.DBMaxConns > 0 {
		cfgPool.MaxConns = appCfg.DBMaxConns
	}
	cfgPool.MinConns = appCfg.DBMinConns
	if appCfg.DBMaxConnIdleTime > 0 {
		cfgPool.MaxConnIdleTime = appCfg.DBMaxConnIdleTime
	}

	connectCtx := ctx
	if appCfg.DBConnectTimeoutSec > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, time.Duration(appCfg.DBConnectTimeoutSec)*time.Second)
		defer cancel()
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, cfgPool)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул соединений: %w", err)
	}

	// Проверяем соединение; выезды без БД невозможны, поэтому ждем не дольше таймаута
	if err := dbpool.Ping(connectCtx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("не удалось выполнить ping к postgres: %w", err)
	}

	return dbpool, nil
}
