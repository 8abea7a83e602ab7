package statestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/persistence"
)

// RedisConfig describes the redis connection for the state store
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix namespaces every key so the store can share a database
	KeyPrefix string
}

// RedisStore is a StateStore on a shared redis instance
type RedisStore struct {
	client *redis.Client
	prefix string
	logger core.Logger
}

// NewRedisStore connects to redis and verifies the connection with a ping
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger core.Logger) (persistence.StateStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("%w: ping redis at %s: %v", errs.ErrStateStore, cfg.Addr, err)
	}
	logger.Info("redis state store connected", map[string]any{"addr": cfg.Addr, "db": cfg.DB})
	return &RedisStore{client: client, prefix: cfg.KeyPrefix, logger: logger}, nil
}

func (s *RedisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Get returns the value under key, or ErrStateNotFound
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, redis.Nil):
		return nil, fmt.Errorf("%w: %s", errs.ErrStateNotFound, key)
	default:
		return nil, fmt.Errorf("%w: get %s: %v", errs.ErrStateStore, key, err)
	}
}

// Set writes the value under key, overwriting any previous value
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", errs.ErrStateStore, key, err)
	}
	return nil
}

// Delete removes the key; deleting a missing key is not an error
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: delete %s: %v", errs.ErrStateStore, key, err)
	}
	return nil
}

// Close releases the underlying resources
func (s *RedisStore) Close() error {
	return s.client.Close()
}
