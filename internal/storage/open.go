package storage

import (
	"context"
	"crimereport/backend/internal/config"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects the storage selected by cfg.StorageDriver. For PostgreSQL it also runs the
// migrations and, when REDIS_ADDR is set, connects the Redis client used for publishing.
func Open(ctx context.Context, cfg *config.Config) (Storage, error) {
	if cfg.StorageDriver == "memory" {
		return NewMemory(), nil
	}

	gormCfg := &gorm.Config{}
	if cfg.IsProduction() {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect PostgreSQL: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			return nil, fmt.Errorf("failed to connect Redis: %w", err)
		}
	}

	return NewStorageService(db, rdb), nil
}
