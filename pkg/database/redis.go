package database

import (
	"context"
	"fmt"

	"training_tracker/internal/config"
	"training_tracker/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// InitRedis returns nil without error when no Redis host is configured.
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		logger.Log.Info("Redis not configured, session revocation disabled")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 2,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}

	logger.Log.Info("Redis connection established")
	return rdb, nil
}
