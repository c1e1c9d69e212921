package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shenikar/dispatch_orchestrator/internal/config"
	v1 "github.com/shenikar/dispatch_orchestrator/internal/handler/http/v1"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/shenikar/dispatch_orchestrator/internal/repository"
	"github.com/shenikar/dispatch_orchestrator/internal/repository/memory"
	"github.com/shenikar/dispatch_orchestrator/internal/service"
	"github.com/shenikar/dispatch_orchestrator/internal/webhook"
	"github.com/shenikar/dispatch_orchestrator/pkg/logger"
	"github.com/shenikar/dispatch_orchestrator/pkg/postgres"
	redisclient "github.com/shenikar/dispatch_orchestrator/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/dispatch_orchestrator/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Dispatch Orchestrator API
// @version 1.0
// @description Incident lifecycle, unit dispatch and reinforcement API.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(cfg.MigrationsPath, migrationURL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

// seedMemoryDepartments создает подразделения по умолчанию для режима без БД
func seedMemoryDepartments(ctx context.Context, store *memory.Store, cfg *config.Config) error {
	departments := []*models.Department{
		{Code: cfg.StandardDepartmentCode, Name: "Polícia Militar", Kind: models.DepartmentStandard},
		{Code: cfg.HomicideDepartmentCode, Name: "Homicídios e Proteção à Pessoa", Kind: models.DepartmentHomicide},
	}
	for _, department := range departments {
		if err := store.Departments().Create(ctx, department); err != nil {
			return fmt.Errorf("could not seed department %s: %w", department.Code, err)
		}
	}
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)
	if len(cfg.APIKeys) == 0 {
		log.Warn("API_KEYS is empty: every protected route will answer 401")
	}

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		repos     service.Repositories
		publisher webhook.WebhookPublisher
		cache     service.IncidentCache
	)

	switch cfg.StoreDriver {
	case "memory":
		log.Warn("Using in-memory store: data is lost on restart")
		store := memory.New()
		if err := seedMemoryDepartments(ctx, store, cfg); err != nil {
			log.Fatalf("Failed to seed departments: %v", err)
		}
		repos = repository.NewMemoryRepositories(store)
		publisher = webhook.NopPublisher{}

	default:
		// Запуск миграций
		if err := runMigrations(cfg, log); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}

		// Подключение к PostgreSQL
		dbpool, err := postgres.NewPostgresDB(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer dbpool.Close()
		log.Info("Successfully connected to PostgreSQL")

		// Инициализация Redis клиента
		redisClient, err := redisclient.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Info("Successfully connected to Redis")

		// Инициализация издателя и воркера вебхуков
		publisher = webhook.NewRedisWebhookPublisher(redisClient)
		webhook.NewWebhookWorker(redisClient, log, cfg).Start(ctx)

		// Инициализация репозиториев; хранилище инцидентов служит и кешем
		var incidents *repository.IncidentRepository
		repos, incidents = repository.NewRepositories(dbpool, redisClient, cfg.IncidentCacheTTL)
		cache = incidents
	}

	// Инициализация ядра
	core := service.NewCore(repos, publisher, cfg, log, service.CoreOptions{Cache: cache})

	// Повторный подбор экипажей для ожидающих инцидентов
	if cfg.PendingSweepSchedule != "" {
		sweeper, err := service.NewSweeper(core.Flow, cfg.PendingSweepSchedule, log)
		if err != nil {
			log.Fatalf("Failed to create sweeper: %v", err)
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(v1.ServicesFromCore(core), log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Метрики Prometheus и Swagger UI
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	cancel()

	log.Info("Server gracefully stopped")
}
