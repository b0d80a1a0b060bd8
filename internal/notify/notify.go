// Package notify delivers inbox notifications to principals without blocking the caller.
package notify

import (
	"context"
	"crimereport/backend/internal/config"
	"crimereport/backend/internal/localization"
	"crimereport/backend/internal/metrics"
	"crimereport/backend/internal/models"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Payload carries the case facts a notification is rendered from.
type Payload struct {
	CaseID    string
	CaseTitle string
	Status    models.Status
}

// Notifier is the fire-and-forget notification sink. Notify must never block.
type Notifier interface {
	Notify(ctx context.Context, recipientID string, kind models.NotificationKind, payload Payload)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(context.Context, string, models.NotificationKind, Payload) {}

// Store is the part of the Case Store the dispatcher writes to.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SaveNotification(ctx context.Context, n *models.Notification) error
	PublishNotification(ctx context.Context, n *models.Notification) error
}

type job struct {
	recipientID string
	kind        models.NotificationKind
	payload     Payload
}

// ErrStopped is returned by Start on a dispatcher that was already stopped.
var ErrStopped = errors.New("dispatcher stopped")

// Dispatcher queues notifications on a bounded channel and lets a fixed set of workers
// persist them to the recipient's inbox and publish them on Redis.
type Dispatcher struct {
	store     Store
	localizer *localization.Localizer
	metrics   *metrics.Collector
	logger    *zap.Logger

	queue   chan job
	workers int

	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

func NewDispatcher(
	store Store,
	localizer *localization.Localizer,
	collector *metrics.Collector,
	logger *zap.Logger,
	cfg config.NotifyConfig,
) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Dispatcher{
		store:     store,
		localizer: localizer,
		metrics:   collector,
		logger:    logger.Named("notify"),
		queue:     make(chan job, cfg.QueueSize),
		workers:   cfg.Workers,
	}
}

// Notify enqueues a notification. A full queue or a stopped dispatcher drops it.
func (d *Dispatcher) Notify(_ context.Context, recipientID string, kind models.NotificationKind, payload Payload) {
	if recipientID == "" {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("Notification dropped, dispatcher stopped",
			zap.String("recipient", recipientID), zap.String("kind", string(kind)))
		d.metrics.NotificationDropped("stopped")
		return
	}

	select {
	case d.queue <- job{recipientID: recipientID, kind: kind, payload: payload}:
		d.metrics.SetQueueDepth(len(d.queue))
	default:
		d.logger.Warn("Notification dropped, queue full",
			zap.String("recipient", recipientID), zap.String("kind", string(kind)))
		d.metrics.NotificationDropped("queue_full")
	}
}

// Start launches the workers. Deliveries outlive ctx cancellation so Stop can drain the queue.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrStopped
	}
	if d.started {
		return nil
	}
	d.started = true

	deliverCtx := context.WithoutCancel(ctx)
	d.logger.Info("Starting notification dispatcher", zap.Int("workers", d.workers))
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(deliverCtx, i)
	}
	return nil
}

// Stop rejects new notifications, drains the queue and waits for the workers.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		for range d.queue {
			d.metrics.NotificationDropped("stopped")
		}
	}
	d.wg.Wait()
	d.logger.Info("Notification dispatcher stopped")
}

// Run starts the dispatcher and stops it once ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()

	d.logger.Debug("Starting notification worker", zap.Int("worker_id", id))
	for j := range d.queue {
		d.metrics.SetQueueDepth(len(d.queue))
		d.deliver(ctx, j)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, j job) {
	lang := localization.DefaultLanguage
	if user, err := d.store.GetUserByID(ctx, j.recipientID); err == nil && user.PreferredLanguage != "" {
		lang = user.PreferredLanguage
	} else if err != nil {
		d.logger.Debug("Recipient language unavailable, using default",
			zap.String("recipient", j.recipientID), zap.Error(err))
	}

	n := d.render(lang, j)
	if err := d.store.SaveNotification(ctx, n); err != nil {
		d.logger.Error("Failed to save notification",
			zap.String("recipient", j.recipientID), zap.String("kind", string(j.kind)), zap.Error(err))
		d.metrics.NotificationDropped("store_failed")
		return
	}
	d.metrics.NotificationDelivered(string(j.kind))

	if err := d.store.PublishNotification(ctx, n); err != nil {
		d.logger.Warn("Failed to publish notification",
			zap.Uint("notification_id", n.ID), zap.Error(err))
	}
}

func (d *Dispatcher) render(lang string, j job) *models.Notification {
	n := &models.Notification{
		UserID: j.recipientID,
		Kind:   j.kind,
		CaseID: j.payload.CaseID,
	}

	switch j.kind {
	case models.NotificationReportStatus:
		status := d.localizer.GetString(lang, "status."+string(j.payload.Status))
		n.Title = d.localizer.GetString(lang, "notification.status.title")
		n.Body = d.localizer.Format(lang, "notification.status.body", j.payload.CaseTitle, status)
	case models.NotificationNewMessage:
		n.Title = d.localizer.GetString(lang, "notification.message.title")
		n.Body = d.localizer.Format(lang, "notification.message.body", j.payload.CaseTitle)
	default:
		n.Kind = models.NotificationSystem
		n.Title = j.payload.CaseTitle
	}
	return n
}

var _ Notifier = (*Dispatcher)(nil)
var _ Notifier = Nop{}
