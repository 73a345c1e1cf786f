package tasks

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
)

const TypeEmailDeliver = "notification:email"

// EmailPayload is one rendered message waiting for delivery.
type EmailPayload struct {
	Kind    string `json:"kind"`
	Ref     string `json:"ref"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// NewEmailTask wraps payload into a queue task.
func NewEmailTask(payload EmailPayload, opts ...asynq.Option) (*asynq.Task, error) {
	if payload.To == "" {
		return nil, errors.New("email task needs a recipient")
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal email payload: %w", err)
	}
	return asynq.NewTask(TypeEmailDeliver, b, opts...), nil
}

// ParseEmailTask reverses NewEmailTask.
func ParseEmailTask(task *asynq.Task) (EmailPayload, error) {
	var p EmailPayload
	if task.Type() != TypeEmailDeliver {
		return p, fmt.Errorf("unexpected task type %q", task.Type())
	}
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("decode email payload: %w", err)
	}
	return p, nil
}
