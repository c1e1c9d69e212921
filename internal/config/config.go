package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL    string `env:"DATABASE_URL"`
	StoreDriver    string `env:"STORE_DRIVER" envDefault:"postgres"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"file://migrations"`
	HTTPPort       string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`

	// Postgres pool
	DBMaxConns          int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns          int32         `env:"DB_MIN_CONNS" envDefault:"1"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DBConnectTimeoutSec int           `env:"DB_CONNECT_TIMEOUT_SEC" envDefault:"5"`

	// Redis Config
	RedisAddr        string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass        string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	RedisPoolSize    int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	IncidentCacheTTL time.Duration `env:"INCIDENT_CACHE_TTL" envDefault:"5m"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"500ms"`

	// Dispatch Config
	DispatchRadiusKm       float64 `env:"DISPATCH_RADIUS_KM" envDefault:"10"`
	SceneNotifyRadiusKm    float64 `env:"SCENE_NOTIFY_RADIUS_KM" envDefault:"1"`
	ScenePerimeterMeters   int     `env:"SCENE_PERIMETER_METERS" envDefault:"100"`
	AutoDispatchUrgency    int     `env:"AUTO_DISPATCH_URGENCY" envDefault:"4"`
	StandardDepartmentCode string  `env:"STANDARD_DEPARTMENT_CODE" envDefault:"PMMG"`
	HomicideDepartmentCode string  `env:"HOMICIDE_DEPARTMENT_CODE" envDefault:"DHPP"`
	PendingSweepSchedule   string  `env:"PENDING_SWEEP_SCHEDULE" envDefault:"@every 1m"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS" envSeparator:","`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	keys := cfg.APIKeys[:0]
	for _, key := range cfg.APIKeys {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	cfg.APIKeys = keys

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	if c.StoreDriver != "postgres" && c.StoreDriver != "memory" {
		return fmt.Errorf("STORE_DRIVER must be postgres or memory, got %q", c.StoreDriver)
	}
	if c.StoreDriver == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if c.AutoDispatchUrgency < 1 || c.AutoDispatchUrgency > 5 {
		return fmt.Errorf("AUTO_DISPATCH_URGENCY must be between 1 and 5, got %d", c.AutoDispatchUrgency)
	}
	if c.DispatchRadiusKm <= 0 {
		return fmt.Errorf("DISPATCH_RADIUS_KM must be positive")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.StandardDepartmentCode == c.HomicideDepartmentCode {
		return fmt.Errorf("standard and homicide department codes must differ")
	}
	return nil
}

// Default возвращает конфигурацию со значениями по умолчанию (для тестов и memory-режима)
func Default() *Config {
	return &Config{
		StoreDriver:            "memory",
		HTTPPort:               "8080",
		LogLevel:               "info",
		DBMaxConns:             10,
		DBMinConns:             1,
		DBMaxConnIdleTime:      5 * time.Minute,
		DBConnectTimeoutSec:    5,
		RedisPoolSize:          10,
		IncidentCacheTTL:       5 * time.Minute,
		WebhookTimeout:         5 * time.Second,
		WebhookMaxRetries:      3,
		WebhookBaseDelay:       500 * time.Millisecond,
		DispatchRadiusKm:       10,
		SceneNotifyRadiusKm:    1,
		ScenePerimeterMeters:   100,
		AutoDispatchUrgency:    4,
		StandardDepartmentCode: "PMMG",
		HomicideDepartmentCode: "DHPP",
	}
}
