package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event is one user-facing notification. Delivery is fire and forget:
// notification failures never roll back the business operation that
// produced them.
type Event struct {
	Type     string            `json:"type"`
	UserID   uuid.UUID         `json:"user_id"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
	SentAt   time.Time         `json:"sent_at"`
}

// Notifier delivers events to users
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// LogNotifier writes notifications to the application log. Used in
// development and as the fallback when no broker is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier
func (n *LogNotifier) Notify(_ context.Context, event Event) {
	n.logger.Info("notification",
		zap.String("type", event.Type),
		zap.String("user_id", event.UserID.String()),
		zap.String("title", event.Title),
		zap.String("message", event.Message))
}

// channelPrefix namespaces per-user notification channels in Redis
const channelPrefix = "notifications:user:"

// RedisNotifier publishes notifications to per-user Redis channels for
// delivery by the realtime gateway.
type RedisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisNotifier creates a Redis-backed notifier
func NewRedisNotifier(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger}
}

// Notify implements Notifier. Errors are logged, never propagated.
func (n *RedisNotifier) Notify(ctx context.Context, event Event) {
	if event.SentAt.IsZero() {
		event.SentAt = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("notification marshal failed", zap.Error(err))
		return
	}
	channel := channelPrefix + event.UserID.String()
	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		n.logger.Warn("notification publish failed",
			zap.String("channel", channel),
			zap.Error(err))
	}
}

var (
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*RedisNotifier)(nil)
)
