package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wanwatch/internal/config"
	"wanwatch/internal/retry"
	"wanwatch/internal/types"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps the alert record under a single Redis key, for
// deployments without a persistent local filesystem.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	logger *zap.Logger
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, fmt.Errorf("redis configuration is nil or empty")
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	rc := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
		PoolSize:    2,
	})

	connect := cfg.Connect
	if connect.Attempts <= 0 {
		connect = *retry.DefaultRetryConfig()
	}

	err := retry.Execute(ctx, &connect, logger, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()
		return rc.Ping(pingCtx).Err()
	})
	if err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis connect error: %w", err)
	}

	return NewRedisStoreWithClient(rc, cfg.Key, logger), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client redis.UniversalClient, key string, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client: client,
		key:    key,
		logger: logger,
	}
}

// Read implements Store
func (s *RedisStore) Read(ctx context.Context) (types.AlertState, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return types.Inactive(), nil
		}
		return types.Inactive(), fmt.Errorf("failed to read alert record %s: %w", s.key, err)
	}

	raisedAt, err := ParseTimestamp(raw)
	if err != nil {
		s.logger.Warn("Alert record is corrupt, treating alert as inactive",
			zap.String("key", s.key),
			zap.Error(err))
		return types.Inactive(), nil
	}

	return types.ActiveSince(raisedAt), nil
}

// Write implements Store. SET replaces the value in one command.
func (s *RedisStore) Write(ctx context.Context, raisedAt time.Time) error {
	if err := s.client.Set(ctx, s.key, FormatTimestamp(raisedAt), 0).Err(); err != nil {
		return fmt.Errorf("failed to write alert record: %w", err)
	}
	s.logger.Info("Alert record written",
		zap.String("key", s.key),
		zap.Time("raised_at", raisedAt))
	return nil
}

// Clear implements Store
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to remove alert record: %w", err)
	}
	s.logger.Info("Alert record removed", zap.String("key", s.key))
	return nil
}

// Close releases the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
