package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/enrollment-service/internal/domain"
)

// ErrSessionNotFound is returned by Load for an unseen session id.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore maps a session id to the latest serialized session state.
type SessionStore interface {
	Load(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
}

type redisSessionStore struct {
	client redis.UniversalClient
	codec  SessionCodec
	prefix string
	ttl    time.Duration
}

// NewRedisSessionStore keeps sessions as codec-encoded blobs under "<prefix>:session:<id>".
// A zero ttl keeps sessions until deleted externally.
func NewRedisSessionStore(client redis.UniversalClient, codec SessionCodec, prefix string, ttl time.Duration) SessionStore {
	return &redisSessionStore{client: client, codec: codec, prefix: prefix, ttl: ttl}
}

func (r *redisSessionStore) key(id string) string {
	return r.prefix + ":session:" + id
}

func (r *redisSessionStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	return r.codec.Decode(data)
}

func (r *redisSessionStore) Save(ctx context.Context, session *domain.Session) error {
	data, err := r.codec.Encode(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// MemorySessionStore keeps encoded sessions in process memory. Sessions go through the codec
// so callers never share state with the store.
type MemorySessionStore struct {
	mu    sync.RWMutex
	codec SessionCodec
	blobs map[string][]byte
}

// NewMemorySessionStore returns an empty in-memory store; a nil codec means JSON.
func NewMemorySessionStore(codec SessionCodec) *MemorySessionStore {
	if codec == nil {
		codec = jsonCodec{}
	}
	return &MemorySessionStore{codec: codec, blobs: make(map[string][]byte)}
}

func (m *MemorySessionStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	data, ok := m.blobs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return m.codec.Decode(data)
}

func (m *MemorySessionStore) Save(ctx context.Context, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := m.codec.Encode(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	m.mu.Lock()
	m.blobs[session.ID] = data
	m.mu.Unlock()
	return nil
}

// Len reports how many sessions are stored.
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
