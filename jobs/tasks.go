package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/orgdesk/orgdesk/internal/jobs"
	"github.com/orgdesk/orgdesk/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAuditRecord persists one audit event.
	TaskTypeAuditRecord = "audit:record"
	// TaskTypeAuditPrune trims audit rows past the retention window.
	TaskTypeAuditPrune = "audit:prune"
)

// AuditPrunePayload configures one prune run.
type AuditPrunePayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewAuditRecordTask constructs an Asynq task carrying the event.
func NewAuditRecordTask(event shared.AuditEvent) (*asynq.Task, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditRecord, data), nil
}

// NewAuditPruneTask constructs a prune task.
func NewAuditPruneTask(payload AuditPrunePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditPrune, data), nil
}

// HandleAuditRecordTask returns the handler that writes events to audit_logs.
// A malformed payload is dropped rather than retried.
func HandleAuditRecordTask(auditLogger *shared.AuditLogger, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("audit_record")
		var event shared.AuditEvent
		if err := json.Unmarshal(t.Payload(), &event); err != nil {
			logger.Warn("audit record payload", slog.Any("error", err))
			_ = tracker.End(err)
			return asynq.SkipRetry
		}
		return tracker.End(auditLogger.Record(ctx, event))
	}
}

// HandleAuditPruneTask returns the handler that deletes audit rows older
// than the retention window.
func HandleAuditPruneTask(pool *pgxpool.Pool, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("audit_prune")
		var payload AuditPrunePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			_ = tracker.End(err)
			return asynq.SkipRetry
		}
		if payload.RetentionDays <= 0 {
			payload.RetentionDays = 365
		}
		cutoff := time.Now().UTC().AddDate(0, 0, -payload.RetentionDays)
		tag, err := pool.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
		if err == nil {
			logger.Info("audit prune", slog.Int64("deleted", tag.RowsAffected()))
		}
		return tracker.End(err)
	}
}
