package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
	"github.com/noah-isme/teamsp-admin-api/pkg/jobs"
)

const auditWriteTimeout = 5 * time.Second

// AuditDispatcher moves audit writes off the request path onto a worker queue.
type AuditDispatcher struct {
	store  auditWriter
	queue  *jobs.Queue[models.AuditLog]
	logger *zap.Logger
}

// NewAuditDispatcher wraps store with a queue of the given worker count.
func NewAuditDispatcher(store auditWriter, workers int, logger *zap.Logger) *AuditDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &AuditDispatcher{store: store, logger: logger}
	d.queue = jobs.New("audit", d.write, jobs.Config{
		Workers:    workers,
		MaxRetries: 2,
		Logger:     logger,
	})
	return d
}

// Start launches the workers.
func (d *AuditDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop flushes pending entries and stops the workers.
func (d *AuditDispatcher) Stop() {
	d.queue.Stop()
}

// Create queues the entry. When the queue is saturated the entry is written inline.
func (d *AuditDispatcher) Create(ctx context.Context, log *models.AuditLog) error {
	if log == nil {
		return nil
	}
	if err := d.queue.TryEnqueue(*log); err != nil {
		d.logger.Debug("audit queue unavailable, writing inline", zap.Error(err))
		return d.store.Create(ctx, log)
	}
	return nil
}

func (d *AuditDispatcher) write(ctx context.Context, log models.AuditLog) error {
	ctx, cancel := context.WithTimeout(ctx, auditWriteTimeout)
	defer cancel()
	return d.store.Create(ctx, &log)
}
