package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DayLocker serializes reservations for one event day. It narrows the race
// window before the store's own uniqueness guarantee is hit; a failed lock
// never decides the outcome on its own.
type DayLocker interface {
	Lock(ctx context.Context, day string) (unlock func(), err error)
}

// LocalDayLocker is a keyed mutex for a single process.
type LocalDayLocker struct {
	mu    sync.Mutex
	locks map[string]*dayLock
}

type dayLock struct {
	slot chan struct{}
	refs int
}

func NewLocalDayLocker() *LocalDayLocker {
	return &LocalDayLocker{locks: make(map[string]*dayLock)}
}

func (l *LocalDayLocker) Lock(ctx context.Context, day string) (func(), error) {
	l.mu.Lock()
	dl, ok := l.locks[day]
	if !ok {
		dl = &dayLock{slot: make(chan struct{}, 1)}
		l.locks[day] = dl
	}
	dl.refs++
	l.mu.Unlock()

	select {
	case dl.slot <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-dl.slot
				l.release(day, dl)
			})
		}, nil
	case <-ctx.Done():
		l.release(day, dl)
		return nil, ctx.Err()
	}
}

func (l *LocalDayLocker) release(day string, dl *dayLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	dl.refs--
	if dl.refs == 0 {
		delete(l.locks, day)
	}
}

// Deletes the key only if it still holds our token.
var releaseDayLock = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// RedisDayLocker shares day locks between instances through SET NX PX.
type RedisDayLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	prefix string
	logger *zap.Logger
}

func NewRedisDayLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisDayLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RedisDayLocker{
		client: client,
		ttl:    ttl,
		retry:  25 * time.Millisecond,
		prefix: "decor:lock:day:",
		logger: logger,
	}
}

// Lock waits at most one TTL for the key.
func (l *RedisDayLocker) Lock(ctx context.Context, day string) (func(), error) {
	key := l.prefix + day
	token := uuid.New().String()

	waitCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	for {
		ok, err := l.client.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire day lock %s: %w", day, err)
		}
		if ok {
			break
		}
		select {
		case <-waitCtx.Done():
			return nil, fmt.Errorf("acquire day lock %s: %w", day, waitCtx.Err())
		case <-time.After(l.retry):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			rctx, rcancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer rcancel()
			if err := releaseDayLock.Run(rctx, l.client, []string{key}, token).Err(); err != nil {
				l.logger.Warn("failed to release day lock", zap.String("event_day", day), zap.Error(err))
			}
		})
	}, nil
}
