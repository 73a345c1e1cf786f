package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"decorbook/models"

	"go.uber.org/zap"
)

// EmailNotifier renders domain events and hands each message to a Mailer.
type EmailNotifier struct {
	composer *Composer
	mailer   Mailer
	logger   *zap.Logger
}

var _ NotificationService = (*EmailNotifier)(nil)

func NewEmailNotifier(composer *Composer, mailer Mailer, logger *zap.Logger) (*EmailNotifier, error) {
	if composer == nil || mailer == nil {
		return nil, errors.New("email notifier needs a composer and a mailer")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailNotifier{composer: composer, mailer: mailer, logger: logger}, nil
}

func (n *EmailNotifier) BookingCreated(ctx context.Context, b *models.Booking) error {
	msgs, err := n.composer.BookingCreated(b)
	if err != nil {
		return err
	}
	return n.deliverAll(ctx, msgs)
}

func (n *EmailNotifier) BookingStatusChanged(ctx context.Context, b *models.Booking) error {
	msgs, err := n.composer.StatusChanged(b)
	if err != nil {
		return err
	}
	return n.deliverAll(ctx, msgs)
}

func (n *EmailNotifier) ContactReceived(ctx context.Context, m *models.ContactMessage) error {
	msgs, err := n.composer.ContactReceived(m)
	if err != nil {
		return err
	}
	return n.deliverAll(ctx, msgs)
}

// Deliver sends one message and logs the outcome.
func (n *EmailNotifier) Deliver(ctx context.Context, msg Message) error {
	start := time.Now()
	err := n.mailer.Send(ctx, msg)
	fields := []zap.Field{
		zap.String("kind", msg.Kind),
		zap.String("ref", msg.Ref),
		zap.String("to", msg.To),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		n.logger.Warn("email delivery failed", append(fields, zap.Error(err))...)
		return fmt.Errorf("%s to %s: %w", msg.Kind, msg.To, err)
	}
	n.logger.Info("email delivered", fields...)
	return nil
}

// deliverAll sends messages concurrently; one failure does not stop the rest.
func (n *EmailNotifier) deliverAll(ctx context.Context, msgs []Message) error {
	errs := make([]error, len(msgs))
	var wg sync.WaitGroup
	for i, msg := range msgs {
		wg.Add(1)
		go func(i int, msg Message) {
			defer wg.Done()
			errs[i] = n.Deliver(ctx, msg)
		}(i, msg)
	}
	wg.Wait()
	return errors.Join(errs...)
}
