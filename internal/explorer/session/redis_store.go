package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"map_explorer/internal/explorer/state"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "explorer:session:"

// RedisStore keeps sessions as JSON in Redis. Every read extends the TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient parses redisURL and verifies the server is reachable.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(id uuid.UUID) string {
	return redisKeyPrefix + id.String()
}

func (r *RedisStore) Get(ctx context.Context, id uuid.UUID) (state.State, error) {
	data, err := r.client.GetEx(ctx, redisKey(id), r.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return state.State{}, errSessionNotFound()
	}
	if err != nil {
		return state.State{}, fmt.Errorf("get session: %w", err)
	}

	var s state.State
	if err := json.Unmarshal(data, &s); err != nil {
		return state.State{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

func (r *RedisStore) Put(ctx context.Context, id uuid.UUID, s state.State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(id), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.client.Del(ctx, redisKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return errSessionNotFound()
	}
	return nil
}
