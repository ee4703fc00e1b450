package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/prebid/prebid-mobileads/config"
)

// RedisStore shares device state between sandbox hosts.
type RedisStore struct {
	client    *redis.Client
	timeout   time.Duration
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore builds a Redis-backed Store. A zero ttl keeps keys forever.
func NewRedisStore(cfg config.Redis, ttl time.Duration) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("store.redis.addr is required when store.type is redis")
	}

	opts := &redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		Password:     cfg.Password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	}

	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout == 0 {
		timeout = 200 * time.Millisecond
	}

	return &RedisStore{
		client:    redis.NewClient(opts),
		timeout:   timeout,
		keyPrefix: cfg.KeyPrefix,
		ttl:       ttl,
	}, nil
}

func (s *RedisStore) key(deviceID string) string {
	return s.keyPrefix + deviceID
}

func (s *RedisStore) Load(ctx context.Context, deviceID string) (State, error) {
	if deviceID == "" {
		return State{}, ErrNoDevice
	}

	readCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	val, err := s.client.Get(readCtx, s.key(deviceID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("redis get failed: %w", err)
	}

	var state State
	if err := json.Unmarshal(val, &state); err != nil {
		return State{}, fmt.Errorf("failed to unmarshal device state: %w", err)
	}
	return state, nil
}

func (s *RedisStore) Save(ctx context.Context, deviceID string, state State) error {
	if deviceID == "" {
		return ErrNoDevice
	}

	val, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal device state: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Set(writeCtx, s.key(deviceID), val, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Close releases Redis resources.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Ping(pingCtx).Err()
}
