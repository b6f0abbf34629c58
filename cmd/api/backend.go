package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/ishtml5-service/internal/adapter/bolt"
	"github.com/user/ishtml5-service/internal/adapter/leveldb"
	"github.com/user/ishtml5-service/internal/adapter/memory"
	"github.com/user/ishtml5-service/internal/adapter/postgres"
	redis_adapter "github.com/user/ishtml5-service/internal/adapter/redis"
	"github.com/user/ishtml5-service/internal/repository"
	"github.com/user/ishtml5-service/pkg/config"
)

// cacheBackend is an opened cache plus whatever releases it.
type cacheBackend struct {
	repo  repository.TestedURLRepository
	close func() error
}

// pinger returns the backend's health check, or nil for local stores.
func (b *cacheBackend) pinger() repository.Pinger {
	if p, ok := b.repo.(repository.Pinger); ok {
		return p
	}
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*cacheBackend, error) {
	switch cfg.CacheBackend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("Redis connection established", zap.String("addr", cfg.RedisAddr))
		return &cacheBackend{repo: redis_adapter.NewTestedURLRepo(rdb), close: rdb.Close}, nil

	case config.BackendPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		logger.Info("PostgreSQL connection pool established")
		return &cacheBackend{repo: store, close: store.Close}, nil

	case config.BackendBolt:
		if err := os.MkdirAll(filepath.Dir(cfg.BoltPath), 0o755); err != nil {
			return nil, fmt.Errorf("create bolt directory: %w", err)
		}
		repo, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Bolt database opened", zap.String("path", cfg.BoltPath))
		return &cacheBackend{repo: repo, close: repo.Close}, nil

	case config.BackendLevelDB:
		if err := os.MkdirAll(cfg.LevelDBPath, 0o755); err != nil {
			return nil, fmt.Errorf("create leveldb directory: %w", err)
		}
		repo, err := leveldb.Open(cfg.LevelDBPath)
		if err != nil {
			return nil, err
		}
		logger.Info("LevelDB opened", zap.String("path", cfg.LevelDBPath))
		return &cacheBackend{repo: repo, close: repo.Close}, nil

	case config.BackendMemory:
		logger.Warn("Using in-memory cache; verdicts are lost on restart")
		return &cacheBackend{repo: memory.NewTestedURLRepo(), close: func() error { return nil }}, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
}
