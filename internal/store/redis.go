package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voyago/voyago/internal/domain"
)

const (
	sessionKeyPrefix = "session:"
	userSetKeyPrefix = "user-sessions:"
)

// RedisStore implements SessionStore on Redis. Sessions are JSON blobs with
// a native key TTL; a per-user set indexes session ids for
// DeleteAllForUser. The user set carries its own expiry so abandoned users
// do not accumulate forever.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedis creates a Redis-backed session store and verifies connectivity.
func NewRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func userSetKey(userID string) string {
	return userSetKeyPrefix + userID
}

// Get retrieves a session. An expired or missing key yields (nil, nil).
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get session %s: %v", ErrUnavailable, sessionID, err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &session, nil
}

// Put stores a session with the idle TTL and indexes it for its user.
func (s *RedisStore) Put(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), data, ttl)
	if session.UserID != "" {
		pipe.SAdd(ctx, userSetKey(session.UserID), session.ID)
		// Keep the index alive at least as long as its newest session.
		pipe.Expire(ctx, userSetKey(session.UserID), 2*ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: put session %s: %v", ErrUnavailable, session.ID, err)
	}
	return nil
}

// Delete removes a session. The user index entry is left to expire; stale
// members are tolerated by DeleteAllForUser.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: delete session %s: %v", ErrUnavailable, sessionID, err)
	}
	return nil
}

// DeleteAllForUser removes every session indexed for a user.
func (s *RedisStore) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	ids, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: list sessions for user %s: %v", ErrUnavailable, userID, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}

	deleted, err := s.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: delete sessions for user %s: %v", ErrUnavailable, userID, err)
	}
	if err := s.rdb.Del(ctx, userSetKey(userID)).Err(); err != nil {
		return deleted, fmt.Errorf("%w: delete user index %s: %v", ErrUnavailable, userID, err)
	}
	return deleted, nil
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
