package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionLocker serializes turns for one session id. The returned release func must be
// called exactly once.
type SessionLocker interface {
	Lock(ctx context.Context, sessionID string) (release func(), err error)
}

// LocalLocker is an in-process keyed mutex whose waits honour context cancellation.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localLock
}

type localLock struct {
	held chan struct{}
	refs int
}

// NewLocalLocker returns an empty keyed locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, sessionID string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[sessionID]
	if !ok {
		entry = &localLock{held: make(chan struct{}, 1)}
		l.locks[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.held <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-entry.held
				l.unref(sessionID, entry)
			})
		}, nil
	case <-ctx.Done():
		l.unref(sessionID, entry)
		return nil, ctx.Err()
	}
}

func (l *LocalLocker) unref(sessionID string, entry *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, sessionID)
	}
}

// releaseScript deletes the lock only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ErrLockNotAcquired is returned when the context ends before a held lock frees up.
var ErrLockNotAcquired = errors.New("session lock not acquired")

// RedisLocker holds a leased SET NX lock per session so replicas serialize turns.
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	poll   time.Duration
	logger *zap.Logger
}

// NewRedisLocker builds a locker using keys "<prefix>:lock:<id>".
func NewRedisLocker(client redis.UniversalClient, prefix string, ttl, poll time.Duration, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{client: client, prefix: prefix, ttl: ttl, poll: poll, logger: logger}
}

func (r *RedisLocker) Lock(ctx context.Context, sessionID string) (func(), error) {
	key := r.prefix + ":lock:" + sessionID
	token := uuid.NewString()

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()
	for {
		acquired, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock session: %w", err)
		}
		if acquired {
			var once sync.Once
			return func() { once.Do(func() { r.release(key, token) }) }, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockNotAcquired, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (r *RedisLocker) release(key, token string) {
	// the turn's context may already be cancelled; the release must still run
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	deleted, err := releaseScript.Run(ctx, r.client, []string{key}, token).Int64()
	if err != nil {
		r.logger.Warn("release session lock", zap.String("key", key), zap.Error(err))
		return
	}
	if deleted == 0 {
		r.logger.Warn("session lock lease expired before release", zap.String("key", key), zap.Duration("ttl", r.ttl))
	}
}
