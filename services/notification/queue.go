package notification

import (
	"context"
	"fmt"
	"time"

	"decorbook/services/tasks"

	"github.com/hibiken/asynq"
)

// Enqueuer is the slice of *asynq.Client the queue mailer uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueMailer defers delivery to the notification worker.
type QueueMailer struct {
	client   Enqueuer
	queue    string
	maxRetry int
	timeout  time.Duration
}

func NewQueueMailer(client Enqueuer, queue string) *QueueMailer {
	if queue == "" {
		queue = "notifications"
	}
	return &QueueMailer{client: client, queue: queue, maxRetry: 5, timeout: time.Minute}
}

func (m *QueueMailer) Send(ctx context.Context, msg Message) error {
	task, err := tasks.NewEmailTask(tasks.EmailPayload{
		Kind:    msg.Kind,
		Ref:     msg.Ref,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}, asynq.Queue(m.queue), asynq.MaxRetry(m.maxRetry), asynq.Timeout(m.timeout))
	if err != nil {
		return err
	}
	if _, err := m.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", msg.Kind, err)
	}
	return nil
}

// MessageFromPayload rebuilds a message a worker pulled off the queue.
func MessageFromPayload(p tasks.EmailPayload) Message {
	return Message{Kind: p.Kind, Ref: p.Ref, To: p.To, Subject: p.Subject, HTML: p.HTML}
}
