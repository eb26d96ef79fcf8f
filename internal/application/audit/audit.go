package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Record is one audited action: who did what to which resource. Recording
// is fire and forget: audit failures never roll back the business
// operation that produced them.
type Record struct {
	Action     string            `json:"action"`
	Resource   string            `json:"resource"`
	ResourceID string            `json:"resource_id,omitempty"`
	ActorID    uuid.UUID         `json:"actor_id"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	At         time.Time         `json:"at"`
}

// Logger captures audit records for sensitive operations
type Logger interface {
	Log(ctx context.Context, record Record)
}

// ZapLogger writes audit records to the application log as structured
// entries, queryable by the log pipeline.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger creates a log-backed audit logger
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger.Named("audit")}
}

// Log implements Logger
func (l *ZapLogger) Log(_ context.Context, record Record) {
	if record.At.IsZero() {
		record.At = time.Now()
	}
	fields := []zap.Field{
		zap.String("action", record.Action),
		zap.String("resource", record.Resource),
		zap.String("actor_id", record.ActorID.String()),
		zap.Time("at", record.At),
	}
	if record.ResourceID != "" {
		fields = append(fields, zap.String("resource_id", record.ResourceID))
	}
	for k, v := range record.Metadata {
		fields = append(fields, zap.String("meta_"+k, v))
	}
	l.logger.Info("audit", fields...)
}

var _ Logger = (*ZapLogger)(nil)
