package persistence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/solaros/solar-os/internal/config"
	"github.com/solaros/solar-os/internal/database"
	"go.uber.org/zap"
)

// OpenSlot creates the slot selected by the persistence driver
func OpenSlot(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Slot, error) {
	switch cfg.Persistence.Driver {
	case "memory":
		return NewMemorySlot(), nil

	case "file":
		return NewFileSlot(cfg.Persistence.FilePath)

	case "sqlite", "postgres":
		db, err := database.Open(cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("SQL snapshot slot ready",
			zap.String("driver", cfg.Persistence.Driver),
			zap.String("slot_key", cfg.Persistence.SlotKey),
		)
		return NewGormSlot(db, cfg.Persistence.SlotKey), nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("Redis snapshot slot ready",
			zap.String("addr", cfg.Redis.Addr),
			zap.String("slot_key", cfg.Persistence.SlotKey),
		)
		return NewRedisSlot(client, cfg.Persistence.SlotKey), nil

	default:
		return nil, fmt.Errorf("unsupported persistence driver: %s", cfg.Persistence.Driver)
	}
}
