package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisConfig configures a Redis-backed cache.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// Redis implements Cache on a Redis client. Errors degrade to misses and
// are logged at debug level so a flapping cache cannot take requests down
// with it.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(cfg *RedisConfig, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Redis{
		client: client,
		logger: logger.Named("redis_cache"),
	}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		r.logger.Debug("cache get failed, treating as miss", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key, value string) {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		r.logger.Debug("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *Redis) Del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Debug("cache del failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (r *Redis) FlushAll(ctx context.Context) {
	if err := r.client.FlushAll(ctx).Err(); err != nil {
		r.logger.Debug("cache flush failed", zap.Error(err))
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
