package notification

import (
	"context"
	"fmt"
	"time"

	"quickbook/models"
	"quickbook/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// inlineTimeout bounds a detached in-process delivery: four attempts with
// the largest jittered delays still fit.
const inlineTimeout = 3 * time.Minute

// InlineDispatcher delivers in a background goroutine of this process.
type InlineDispatcher struct {
	svc    NotificationService
	logger *zap.Logger
}

// NewInlineDispatcher returns a dispatcher that never touches a queue.
func NewInlineDispatcher(svc NotificationService, logger *zap.Logger) *InlineDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InlineDispatcher{svc: svc, logger: logger}
}

// Dispatch returns immediately. Delivery is detached from the request so a
// finished HTTP response does not cancel it.
func (d *InlineDispatcher) Dispatch(ctx context.Context, n models.IntentNotification) error {
	if d.svc == nil {
		return fmt.Errorf("notification service is nil")
	}
	go func() {
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), inlineTimeout)
		defer cancel()
		d.svc.NotifyIntent(bg, n)
	}()
	return nil
}

// taskEnqueuer is the part of *asynq.Client used here.
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueDispatcher enqueues staff alerts on asynq and falls back to inline
// delivery when the queue is unreachable, so an alert is never dropped.
type QueueDispatcher struct {
	client   taskEnqueuer
	fallback *InlineDispatcher
	logger   *zap.Logger
}

// NewQueueDispatcher wires an asynq client with an inline fallback.
func NewQueueDispatcher(client *asynq.Client, fallback *InlineDispatcher, logger *zap.Logger) *QueueDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueDispatcher{client: client, fallback: fallback, logger: logger}
}

// Dispatch implements booking.Dispatcher.
func (d *QueueDispatcher) Dispatch(ctx context.Context, n models.IntentNotification) error {
	task, opts, err := tasks.NewIntentNotifyTask(n)
	if err != nil {
		return fmt.Errorf("failed to build notification task: %w", err)
	}

	enqCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	info, err := d.client.EnqueueContext(enqCtx, task, opts...)
	if err == nil {
		d.logger.Debug("staff notification queued",
			zap.String("intentId", n.IntentID), zap.String("taskId", info.ID))
		return nil
	}

	d.logger.Warn("failed to queue staff notification, delivering inline",
		zap.String("intentId", n.IntentID), zap.Error(err))
	if d.fallback == nil {
		return fmt.Errorf("failed to queue notification: %w", err)
	}
	return d.fallback.Dispatch(ctx, n)
}
