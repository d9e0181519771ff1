package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ikkim/vitrine-backend/internal/app/model"
	"github.com/ikkim/vitrine-backend/pkg/logger"
	"github.com/ikkim/vitrine-backend/pkg/redis"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository stores opaque session snapshots. Save refreshes the
// idle deadline.
type SessionRepository interface {
	Find(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id string) error
	// DeleteIdle removes sessions not saved since before. Backends that
	// expire keys on their own return 0.
	DeleteIdle(ctx context.Context, before time.Time) (int, error)
}

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
}

func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{sessions: make(map[string]model.Session)}
}

func (r *memorySessionRepository) Find(ctx context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.Data = append(json.RawMessage(nil), s.Data...)
	return &s, nil
}

func (r *memorySessionRepository) Save(ctx context.Context, session *model.Session) error {
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	stored := *session
	stored.Data = append(json.RawMessage(nil), session.Data...)

	r.mu.Lock()
	r.sessions[session.ID] = stored
	r.mu.Unlock()
	return nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

func (r *memorySessionRepository) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.UpdatedAt.Before(before) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

type redisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionRepository keeps each session under its own key; redis
// expires keys idle for longer than ttl.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{client: client, ttl: ttl}
}

func (r *redisSessionRepository) Find(ctx context.Context, id string) (*model.Session, error) {
	raw, err := r.client.Get(ctx, r.client.SessionKey(id))
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		logger.Error("Failed to read session from redis", err, map[string]interface{}{
			"session_id": id,
		})
		return nil, err
	}

	var s model.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

func (r *redisSessionRepository) Save(ctx context.Context, session *model.Session) error {
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	if err := r.client.Set(ctx, r.client.SessionKey(session.ID), payload, r.ttl); err != nil {
		logger.Error("Failed to write session to redis", err, map[string]interface{}{
			"session_id": session.ID,
		})
		return err
	}
	return nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.client.SessionKey(id))
}

func (r *redisSessionRepository) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	return 0, nil
}
