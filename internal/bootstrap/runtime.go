// Package bootstrap assembles the process-wide dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"

	"fbclone/internal/cache"
	"fbclone/internal/config"
	"fbclone/internal/database"
	"fbclone/internal/media"
	"fbclone/internal/middleware"
	"fbclone/internal/seed"
	"fbclone/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty database with the default demo graph.
	SeedDemo bool
}

// Runtime holds the connected backends.
type Runtime struct {
	DB     *gorm.DB
	ReadDB *gorm.DB
	Redis  *redis.Client
	Media  *media.Service
}

// InitRuntime connects to the database and Redis, applies the schema policy,
// builds the media backend and optionally seeds demo data.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	rdb, err := cache.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	cache.SetClient(rdb)

	store, err := storage.New(ctx, cfg)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("media storage: %w", err)
	}

	rt := &Runtime{
		DB:     db,
		ReadDB: database.ConnectRead(cfg, db),
		Redis:  rdb,
		Media:  media.NewService(store, cfg.MediaMaxUploadSizeMB, cfg.MediaURLTTL()),
	}

	if opts.SeedDemo {
		if err := seedIfEmpty(ctx, db); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}
	return rt, nil
}

func seedIfEmpty(ctx context.Context, db *gorm.DB) error {
	var users int64
	if err := db.WithContext(ctx).Table("users").Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	s, err := seed.NewSeeder(db, seed.DefaultOptions())
	if err != nil {
		return err
	}
	res, err := s.Run(ctx)
	if err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "demo data seeded", "result", res.String())
	return nil
}
