package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/chorale-app/chorale/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditPurge is the task type for trimming old audit entries.
	TaskAuditPurge = "audit:purge"
)

// AuditPurgePayload describes the retention window for an audit purge run.
type AuditPurgePayload struct {
	Retention time.Duration `json:"retention"`
}

// NewAuditPurgeTask constructs an Asynq task.
func NewAuditPurgeTask(payload AuditPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPurge, data), nil
}

// NewAuditPurgeHandler returns the handler for TaskAuditPurge tasks.
func NewAuditPurgeHandler(audit *shared.AuditLogger, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AuditPurgePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.Retention <= 0 {
			return asynq.SkipRetry
		}
		cutoff := time.Now().Add(-payload.Retention)
		removed, err := audit.PurgeBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		if logger != nil {
			logger.Info("audit purge complete",
				slog.Time("cutoff", cutoff),
				slog.Int64("removed", removed))
		}
		return nil
	}
}
