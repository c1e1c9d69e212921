package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	webhookQueueKey = "webhook_events"
)

// Типы событий, которые ядро отправляет во внешний канал уведомлений
const (
	EventIncidentCreated        = "incident.created"
	EventDispatchCreated        = "dispatch.created"
	EventDispatchCompleted      = "dispatch.completed"
	EventDispatchCancelled      = "dispatch.cancelled"
	EventReinforcementRequested = "reinforcement.requested"
	EventReinforcementFulfilled = "reinforcement.fulfilled"
	EventReinforcementCancelled = "reinforcement.cancelled"
	EventSceneIsolation         = "scene.isolation"
	EventUnitPosition           = "unit.position"
)

// WebhookEvent - структура для данных вебхука
type WebhookEvent struct {
	Type      string    `json:"type"`
	Topic     string    `json:"topic,omitempty"` // Необязательный адресат, например "unit:<id>"
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event WebhookEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event WebhookEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// Используем LPUSH для добавления события в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}

// NopPublisher отбрасывает события; используется без Redis (STORE_DRIVER=memory)
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, WebhookEvent) error { return nil }
