package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"decorbook/services/notification"
	"decorbook/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Deliverer sends one rendered message.
type Deliverer interface {
	Deliver(ctx context.Context, msg notification.Message) error
}

// NotificationWorker consumes queued emails.
type NotificationWorker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

func NewNotificationWorker(redisOpt asynq.RedisConnOpt, queue string, concurrency int, d Deliverer, logger *zap.Logger) *NotificationWorker {
	if queue == "" {
		queue = "notifications"
	}
	if concurrency < 1 {
		concurrency = 5
	}
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     concurrency,
		Queues:          map[string]int{queue: 1},
		Logger:          logger.Named("asynq").Sugar(),
		ShutdownTimeout: 10 * time.Second,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeEmailDeliver, handleEmailTask(d, logger))
	return &NotificationWorker{srv: srv, mux: mux, logger: logger}
}

// Start launches the worker, retrying with backoff while Redis is not
// reachable. It returns once the worker runs or attempts are exhausted.
func (w *NotificationWorker) Start(ctx context.Context) error {
	const maxAttempts = 5
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = w.srv.Start(w.mux); err == nil {
			w.logger.Info("notification worker started")
			return nil
		}
		w.logger.Warn("notification worker failed to start",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*2) * time.Second):
		}
	}
	return fmt.Errorf("notification worker: %w", err)
}

// Shutdown waits for running tasks up to the configured timeout.
func (w *NotificationWorker) Shutdown() {
	w.srv.Shutdown()
}

func handleEmailTask(d Deliverer, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseEmailTask(task)
		if err != nil {
			logger.Error("invalid email task payload", zap.Error(err))
			return errors.Join(err, asynq.SkipRetry)
		}
		if err := d.Deliver(ctx, notification.MessageFromPayload(p)); err != nil {
			// asynq retries with backoff until MaxRetry
			return err
		}
		return nil
	}
}
