package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Completer moves elapsed confirmed bookings to completed.
type Completer interface {
	CompletePastEvents(ctx context.Context) (int, error)
}

// Scheduler runs periodic maintenance jobs in the reference timezone.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration
}

func NewScheduler(loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{logger.Named("cron")}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		timeout: 5 * time.Minute,
	}
}

// Every registers job under name on spec (standard five-field or a
// descriptor such as "@daily").
func (s *Scheduler) Every(spec, name string, job func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		start := time.Now()
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.logger.Debug("scheduled job finished", zap.String("job", name), zap.Duration("elapsed", time.Since(start)))
	})
	return err
}

// CompletionSweep is the job that closes out past events.
func CompletionSweep(c Completer, logger *zap.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		n, err := c.CompletePastEvents(ctx)
		if n > 0 {
			logger.Info("completed past events", zap.Int("count", n))
		}
		return err
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running ones or ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes robfig/cron's logging to zap.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
