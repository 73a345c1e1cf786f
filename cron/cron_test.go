package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"decorbook/services/notification"
	"decorbook/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeDeliverer struct {
	got []notification.Message
	err error
}

func (f *fakeDeliverer) Deliver(_ context.Context, msg notification.Message) error {
	f.got = append(f.got, msg)
	return f.err
}

func TestHandleEmailTask(t *testing.T) {
	d := &fakeDeliverer{}
	h := handleEmailTask(d, zap.NewNop())

	task, err := tasks.NewEmailTask(tasks.EmailPayload{Kind: notification.KindAdminAlert, Ref: "b-1", To: "owner@example.com", Subject: "New"})
	require.NoError(t, err)

	require.NoError(t, h.ProcessTask(context.Background(), task))
	require.Len(t, d.got, 1)
	assert.Equal(t, "owner@example.com", d.got[0].To)
	assert.Equal(t, notification.KindAdminAlert, d.got[0].Kind)

	d.err = errors.New("smtp 451")
	err = h.ProcessTask(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry), "delivery failures are retried")
}

func TestHandleEmailTask_BadPayloadSkipsRetry(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := handleEmailTask(&fakeDeliverer{}, zap.New(core))

	err := h.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeEmailDeliver, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Equal(t, 1, logs.FilterMessage("invalid email task payload").Len())
}

type countingCompleter struct {
	calls atomic.Int32
	n     int
	err   error
}

func (c *countingCompleter) CompletePastEvents(context.Context) (int, error) {
	c.calls.Add(1)
	return c.n, c.err
}

func TestCompletionSweep(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	c := &countingCompleter{n: 2}

	require.NoError(t, CompletionSweep(c, zap.New(core))(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("completed past events").Len())

	c.err = errors.New("store down")
	c.n = 0
	assert.Error(t, CompletionSweep(c, zap.New(core))(context.Background()))
}

func TestScheduler_RunsAndStops(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewScheduler(time.FixedZone("IST", 5*3600+1800), zap.New(core))
	c := &countingCompleter{err: errors.New("store down")}

	require.NoError(t, s.Every("@every 1s", "completion-sweep", CompletionSweep(c, zap.New(core))))
	assert.Error(t, s.Every("not a spec", "broken", func(context.Context) error { return nil }))

	s.Start()
	require.Eventually(t, func() bool { return c.calls.Load() > 0 }, 3*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.GreaterOrEqual(t, logs.FilterMessage("scheduled job failed").Len(), 1)
}
