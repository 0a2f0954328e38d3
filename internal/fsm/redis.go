package fsm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps conversations in redis with a TTL. Expiry doubles as
// session abandonment: a user who goes silent simply restarts from scratch
// after the TTL.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

func conversationKey(telegramID int64) string {
	return fmt.Sprintf("conversation:%d", telegramID)
}

func (s *RedisStorage) Get(ctx context.Context, telegramID int64) (*Conversation, error) {
	data, err := s.client.Get(ctx, conversationKey(telegramID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation state: %w", err)
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to decode conversation state: %w", err)
	}
	return &conv, nil
}

func (s *RedisStorage) Set(ctx context.Context, telegramID int64, conv *Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to encode conversation state: %w", err)
	}
	if err := s.client.Set(ctx, conversationKey(telegramID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store conversation state: %w", err)
	}
	return nil
}

func (s *RedisStorage) Clear(ctx context.Context, telegramID int64) error {
	if err := s.client.Del(ctx, conversationKey(telegramID)).Err(); err != nil {
		return fmt.Errorf("failed to clear conversation state: %w", err)
	}
	return nil
}
