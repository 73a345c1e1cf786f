package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer only records what would have been sent. Used when no SMTP relay
// is configured.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.logger.Info("email suppressed (no smtp configured)",
		zap.String("kind", msg.Kind),
		zap.String("ref", msg.Ref),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
