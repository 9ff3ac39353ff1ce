// Package cache stores resolved nutrition targets in Redis.
package cache

import (
	"baisics/coach-api/internal/config"
	"baisics/coach-api/internal/domain"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TargetCache caches resolved targets per user and UTC day.
type TargetCache interface {
	// Get reports a miss as (nil, nil).
	Get(ctx context.Context, userID primitive.ObjectID, day time.Time) (*domain.ResolvedTargets, error)
	Set(ctx context.Context, userID primitive.ObjectID, day time.Time, targets domain.ResolvedTargets) error
	// InvalidateUser drops every cached day of the user.
	InvalidateUser(ctx context.Context, userID primitive.ObjectID) error
}

type redisTargetCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect opens the redis client and pings it.
func Connect(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("redis_connection_failed", zap.Error(err), zap.String("addr", cfg.Addr))
		_ = client.Close()
		return nil, err
	}
	logger.Info("redis_connected", zap.String("addr", cfg.Addr))
	return client, nil
}

func NewRedisTargetCache(client *redis.Client, ttl time.Duration) TargetCache {
	return &redisTargetCache{client: client, ttl: ttl}
}

// TargetKey is targets:<userId>:<days since epoch>.
func TargetKey(userID primitive.ObjectID, day time.Time) string {
	return fmt.Sprintf("targets:%s:%d", userID.Hex(), day.UTC().Unix()/86400)
}

func (c *redisTargetCache) Get(ctx context.Context, userID primitive.ObjectID, day time.Time) (*domain.ResolvedTargets, error) {
	val, err := c.client.Get(ctx, TargetKey(userID, day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get failed: %w", err)
	}

	var targets domain.ResolvedTargets
	if err := json.Unmarshal(val, &targets); err != nil {
		return nil, fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return &targets, nil
}

func (c *redisTargetCache) Set(ctx context.Context, userID primitive.ObjectID, day time.Time, targets domain.ResolvedTargets) error {
	data, err := json.Marshal(targets)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return c.client.Set(ctx, TargetKey(userID, day), data, c.ttl).Err()
}

func (c *redisTargetCache) InvalidateUser(ctx context.Context, userID primitive.ObjectID) error {
	pattern := fmt.Sprintf("targets:%s:*", userID.Hex())
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete keys failed: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Noop is used when redis is disabled. Every lookup misses.
type Noop struct{}

func (Noop) Get(context.Context, primitive.ObjectID, time.Time) (*domain.ResolvedTargets, error) {
	return nil, nil
}

func (Noop) Set(context.Context, primitive.ObjectID, time.Time, domain.ResolvedTargets) error {
	return nil
}

func (Noop) InvalidateUser(context.Context, primitive.ObjectID) error {
	return nil
}
