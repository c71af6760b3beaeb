package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/uniformorders/internal/adapter/notify"
	"github.com/polkiloo/uniformorders/internal/domain/model"
)

// UniformFacade exposes the subset of application functionality required by the worker.
type UniformFacade interface {
	PendingNotifications(ctx context.Context, limit int) ([]model.Notification, error)
	Deliver(ctx context.Context, n model.Notification) error
	MarkNotified(ctx context.Context, id int64) error
}

// NotificationDispatcher drains the notification outbox concurrently.
// Delivery is at least once: a notification that fails is picked up again
// on a later tick until storage stops offering it.
type NotificationDispatcher struct {
	facade    UniformFacade
	interval  time.Duration
	batchSize int
	workers   int
	logger    *slog.Logger

	wg       sync.WaitGroup
	cancel   context.CancelFunc
	mu       sync.Mutex
	inflight map[int64]struct{}
}

// NewNotificationDispatcher constructs dispatcher worker pool.
func NewNotificationDispatcher(facade UniformFacade, interval time.Duration, batchSize, workers int, logger *slog.Logger) *NotificationDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &NotificationDispatcher{
		facade:    facade,
		interval:  interval,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
		inflight:  make(map[int64]struct{}),
	}
}

// Start launches background dispatching. It does nothing while a previous
// Start is still running; after Stop the dispatcher may be started again.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	jobs := make(chan model.Notification, d.batchSize*d.workers)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx, jobs)
	}

	d.wg.Add(1)
	go d.dispatch(runCtx, jobs)
}

// Stop waits for all workers to finish.
func (d *NotificationDispatcher) Stop() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *NotificationDispatcher) dispatch(ctx context.Context, jobs chan<- model.Notification) {
	defer d.wg.Done()
	defer close(jobs)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.fetchAndDispatch(ctx, jobs)
		}
	}
}

func (d *NotificationDispatcher) fetchAndDispatch(ctx context.Context, jobs chan<- model.Notification) {
	batch, err := d.facade.PendingNotifications(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("fetch pending notifications failed", slog.String("error", err.Error()))
		return
	}
	for _, n := range batch {
		if !d.claim(n.ID) {
			continue
		}
		select {
		case <-ctx.Done():
			d.release(n.ID)
			return
		case jobs <- n:
		}
	}
}

func (d *NotificationDispatcher) claim(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inflight[id]; busy {
		return false
	}
	d.inflight[id] = struct{}{}
	return true
}

func (d *NotificationDispatcher) release(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inflight, id)
}

func (d *NotificationDispatcher) worker(ctx context.Context, jobs <-chan model.Notification) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-jobs:
			if !ok {
				return
			}
			d.handle(ctx, n)
			d.release(n.ID)
		}
	}
}

func (d *NotificationDispatcher) handle(ctx context.Context, n model.Notification) {
	if err := d.facade.Deliver(ctx, n); err != nil {
		var tm notify.TooManyRequestsError
		if errors.As(err, &tm) {
			d.logger.Warn("notification receiver rate limited", slog.Duration("retry_after", tm.RetryAfter))
			select {
			case <-ctx.Done():
			case <-time.After(tm.RetryAfter):
			}
			return
		}
		d.logger.Error("notification delivery failed",
			slog.Int64("id", n.ID),
			slog.String("order", n.OrderID),
			slog.Int("attempts", n.Attempts),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := d.facade.MarkNotified(ctx, n.ID); err != nil {
		d.logger.Error("mark notification dispatched failed", slog.Int64("id", n.ID), slog.String("error", err.Error()))
	}
}
