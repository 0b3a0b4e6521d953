package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

const redisKeyPrefix = "leandrose:tab:"

// RedisClient is the subset of go-redis used by RedisSessionStore.
type RedisClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisSessionStore keeps tab sessions in Redis. Idle eviction is delegated to key expiry.
type RedisSessionStore struct {
	client RedisClient
}

// NewRedisSessionStore constructs a store over client.
func NewRedisSessionStore(client RedisClient) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// NewRedisClient parses redisURL and verifies the server answers.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, key string, sess session.Session, ttl time.Duration) error {
	payload, err := sealSession(key, sess)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, redisKey(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set tab session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Find(ctx context.Context, key string) (session.Session, error) {
	payload, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Session{}, session.ErrSessionNotFound
		}
		return session.Session{}, fmt.Errorf("redis get tab session: %w", err)
	}

	return openSession(key, payload)
}

func (s *RedisSessionStore) Touch(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ok, err := s.client.Expire(ctx, redisKey(key), ttl).Result()
	if err != nil {
		return fmt.Errorf("redis expire tab session: %w", err)
	}
	if !ok {
		return session.ErrSessionNotFound
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, redisKey(key)).Result()
	if err != nil {
		return fmt.Errorf("redis delete tab session: %w", err)
	}
	if n == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

func redisKey(key string) string {
	return redisKeyPrefix + keyDigestHex(key)
}

var _ session.Store = (*RedisSessionStore)(nil)
