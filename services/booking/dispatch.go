package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"decorbook/models"

	"go.uber.org/zap"
)

// dispatch runs fn off the request path. The attempt outlives the request
// context but not notifyTimeout; its outcome is only logged.
func (s *Service) dispatch(ctx context.Context, kind string, b *models.Booking, fn func(Notifier, context.Context, *models.Booking) error) {
	if s.notifier == nil {
		return
	}
	snapshot := *b
	ctx = context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
		defer cancel()

		start := time.Now()
		errc := make(chan error, 1)
		go func() { errc <- safeCall(func() error { return fn(s.notifier, ctx, &snapshot) }) }()

		var err error
		select {
		case err = <-errc:
		case <-ctx.Done():
			// deadline hit; fn may still be running
			err = ctx.Err()
		}
		fields := []zap.Field{
			zap.String("notification", kind),
			zap.String("booking_id", snapshot.ID),
			zap.Duration("elapsed", time.Since(start)),
		}
		switch {
		case err == nil:
			s.logger.Debug("notification dispatched", fields...)
		case errors.Is(err, context.DeadlineExceeded):
			s.logger.Warn("notification timed out", append(fields, zap.Error(err))...)
		default:
			s.logger.Warn("notification failed", append(fields, zap.Error(err))...)
		}
	}()
}

func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()
	return fn()
}
