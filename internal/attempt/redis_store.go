package attempt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists attempt sessions in Redis so a reconstructed session
// survives process restarts the way client-local storage survives reloads.
// Keys expire a day after the attempt's end time.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) key(sessionKey string) string {
	return "attempt:" + sessionKey
}

func (r *RedisStore) Load(ctx context.Context, sessionKey string) (*Session, error) {
	raw, err := r.client.Get(ctx, r.key(sessionKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis load: %w", err)
	}
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("redis load: decode session: %w", err)
	}
	return &session, nil
}

func (r *RedisStore) Save(ctx context.Context, sessionKey string, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis save: encode session: %w", err)
	}
	ttl := time.Until(time.UnixMilli(session.EndTime).Add(24 * time.Hour))
	if ttl <= 0 {
		ttl = time.Hour
	}
	if err := r.client.Set(ctx, r.key(sessionKey), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis save: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, sessionKey string) error {
	if err := r.client.Del(ctx, r.key(sessionKey)).Err(); err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}
