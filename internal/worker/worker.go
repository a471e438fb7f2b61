// Package worker consumes queued audit events and enforces audit retention.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/attendix/backend/internal/audit"
	"github.com/attendix/backend/pkg/queue"
)

// AuditWriter drains the audit queue into PostgreSQL so login handlers never
// block on the database.
type AuditWriter struct {
	repo   *audit.Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewAuditWriter creates an audit event processor.
func NewAuditWriter(repo *audit.Repository, q *queue.Queue, logger *zap.Logger) *AuditWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditWriter{repo: repo, queue: q, logger: logger}
}

// Process executes one audit job.
func (w *AuditWriter) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeAudit {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.AuditPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	entry := audit.Entry{
		RegisterNo: payload.RegisterNo,
		Event:      payload.Event,
		ClientIP:   payload.ClientIP,
		UserAgent:  payload.UserAgent,
		OccurredAt: payload.OccurredAt,
	}
	if err := w.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (w *AuditWriter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("audit worker stopping")
			return
		default:
		}

		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Warn("dequeue error", zap.Error(err))
			if !w.backoff(ctx) {
				return
			}
			continue
		}
		if job == nil {
			continue
		}

		w.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := w.Process(ctx, job); err != nil {
			w.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := w.queue.Retry(ctx, job); reErr != nil {
				w.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			if !w.backoff(ctx) {
				return
			}
		}
	}
}

// backoff waits out RetryBackoff unless ctx is cancelled first.
func (w *AuditWriter) backoff(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		w.logger.Info("audit worker stopping")
		return false
	case <-time.After(queue.RetryBackoff):
		return true
	}
}

// Pruner periodically deletes audit rows past the retention window.
type Pruner struct {
	repo      *audit.Repository
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger
}

// NewPruner creates a retention pruner.
func NewPruner(repo *audit.Repository, retention, interval time.Duration, logger *zap.Logger) *Pruner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pruner{repo: repo, retention: retention, interval: interval, logger: logger}
}

// Run prunes on a ticker until ctx is done.
func (p *Pruner) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("audit pruner stopping")
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-p.retention)
			removed, err := p.repo.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				p.logger.Error("prune audit entries", zap.Error(err))
				continue
			}
			if removed > 0 {
				p.logger.Info("pruned audit entries", zap.Int64("removed", removed))
			}
		}
	}
}
