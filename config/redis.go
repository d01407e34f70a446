package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when Redis is not configured or unreachable;
// callers fall back to in-process locking.
func ConnectRedis(ctx context.Context) *redis.Client {
	var opt *redis.Options
	switch {
	case AppConfig.RedisURL != "":
		parsed, err := redis.ParseURL(AppConfig.RedisURL)
		if err != nil {
			slog.Warn("failed to parse Redis URL, running without Redis", slog.Any("err", err))
			return nil
		}
		opt = parsed
	case AppConfig.RedisAddr != "":
		opt = &redis.Options{
			Addr:     AppConfig.RedisAddr,
			Password: AppConfig.RedisPassword,
			DB:       0,
		}
	default:
		return nil
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("Redis connection failed, running without Redis", slog.Any("err", err))
		_ = client.Close()
		return nil
	}

	slog.Info("redis connected", slog.String("addr", opt.Addr))
	return client
}
