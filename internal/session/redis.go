package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/metrica/internal/form"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "metrica:session:"

// RedisStore is a Store shared by all bot replicas. Each session is a JSON value whose expiry is the idle timeout.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore on top of client.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, chatID)
}

// Load returns the chat's session, if any.
func (s *RedisStore) Load(ctx context.Context, chatID int64) (form.Session, bool, error) {
	raw, err := s.client.Get(ctx, sessionKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return form.Session{}, false, nil
	}
	if err != nil {
		return form.Session{}, false, fmt.Errorf("failed to load session: %w", err)
	}

	var session form.Session
	if err = json.Unmarshal(raw, &session); err != nil {
		return form.Session{}, false, fmt.Errorf("failed to decode session: %w", err)
	}
	return session, true, nil
}

// Save stores the session and restarts its idle timer.
func (s *RedisStore) Save(ctx context.Context, session form.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err = s.client.Set(ctx, sessionKey(session.ChatID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete forgets the chat's session.
func (s *RedisStore) Delete(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, sessionKey(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
