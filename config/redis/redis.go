package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/joy095/settlement/logger"
	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisErr    error
	redisOnce   sync.Once
)

// GetRedisClient returns the singleton client for redisURL. The URL of the first call wins.
func GetRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	redisOnce.Do(func() {
		if redisURL == "" {
			redisErr = fmt.Errorf("REDIS_URL not set")
			return
		}

		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			redisErr = fmt.Errorf("invalid REDIS_URL: %w", err)
			return
		}

		client := redis.NewClient(opt)
		if _, err := client.Ping(ctx).Result(); err != nil {
			_ = client.Close()
			redisErr = fmt.Errorf("failed to connect to redis: %w", err)
			return
		}

		redisClient = client
		logger.InfoLogger.Info("Connected to Redis")
	})

	if redisClient == nil {
		return nil, redisErr
	}
	return redisClient, nil
}

// CloseRedis closes the Redis connection
func CloseRedis() {
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.ErrorLogger.Errorf("Error closing Redis connection: %v", err)
		}
		logger.InfoLogger.Info("Redis connection closed")
	}
}
