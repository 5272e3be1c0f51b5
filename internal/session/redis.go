// internal/session/redis.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shopping-agent/internal/models"
)

const redisKeyPrefix = "session:"

// RedisStore keeps conversation state in Redis with the TTL applied as
// key expiry, so eviction is the server's job.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (models.ConversationState, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ConversationState{}, false, nil
	}
	if err != nil {
		return models.ConversationState{}, false, fmt.Errorf("session get failed: %w", err)
	}

	var state models.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.ConversationState{}, false, fmt.Errorf("session decode failed: %w", err)
	}
	return state, true, nil
}

func (s *RedisStore) Put(ctx context.Context, state models.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("session encode failed: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+state.SessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session put failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("session delete failed: %w", err)
	}
	return nil
}
