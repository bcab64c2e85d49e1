// Package database opens the postgres pools and owns the schema: embedded SQL
// migrations, the GORM AutoMigrate model set and the policy choosing between them.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fbclone/internal/config"
	"fbclone/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	connectAttempts = 5
	connectBackoff  = time.Second
)

// ConnectOptions tunes ConnectWithOptions.
type ConnectOptions struct {
	// ApplySchema runs ApplySchema after the pool is up.
	ApplySchema bool
}

func dsn(cfg *config.Config, host, port string) string {
	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, cfg.DBUser, cfg.DBPassword, cfg.DBName, sslMode)
}

// Connect opens the primary pool and brings the schema up to date.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return ConnectWithOptions(cfg, ConnectOptions{ApplySchema: true})
}

// ConnectWithOptions opens the primary pool, retrying while postgres is
// still starting.
func ConnectWithOptions(cfg *config.Config, opts ConnectOptions) (*gorm.DB, error) {
	ctx := context.Background()
	db, err := open(ctx, cfg, cfg.DBHost, cfg.DBPort, connectAttempts)
	if err != nil {
		return nil, err
	}
	middleware.Logger.Info("database connected", slog.String("host", cfg.DBHost))

	if opts.ApplySchema {
		if err := ApplySchema(ctx, db, cfg); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// ConnectRead opens the read replica used by feed and listing queries. With
// no DB_READ_HOST, or a replica that does not answer, reads go to primary.
func ConnectRead(cfg *config.Config, primary *gorm.DB) *gorm.DB {
	if cfg.DBReadHost == "" {
		return primary
	}
	db, err := open(context.Background(), cfg, cfg.DBReadHost, cfg.DBReadPort, 1)
	if err != nil {
		middleware.Logger.Warn("read replica unavailable, using primary", slog.String("error", err.Error()))
		return primary
	}
	middleware.Logger.Info("read replica connected", slog.String("host", cfg.DBReadHost))
	return db
}

func open(ctx context.Context, cfg *config.Config, host, port string, attempts int) (*gorm.DB, error) {
	var lastErr error
	wait := connectBackoff
	for i := 1; i <= attempts; i++ {
		db, err := gorm.Open(postgres.Open(dsn(cfg, host, port)), &gorm.Config{
			Logger: NewGormLogger(middleware.Logger),
		})
		if err == nil {
			if err = configurePool(db, cfg); err == nil {
				return db, nil
			}
		}
		lastErr = err
		if i == attempts {
			break
		}
		middleware.Logger.Warn("database not ready, retrying",
			slog.String("host", host), slog.Int("attempt", i), slog.Duration("wait", wait))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return nil, fmt.Errorf("connect %s:%s: %w", host, port, lastErr)
}

func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	if cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
	if cfg.DBConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeMinutes) * time.Minute)
	}
	return nil
}

// Ping checks the pool for readiness probes.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
