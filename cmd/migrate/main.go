// Command migrate applies, inspects and rolls back the database schema.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"fbclone/internal/config"
	"fbclone/internal/database"
	"fbclone/internal/middleware"
)

var errUsage = errors.New("usage: migrate <up|auto|status|list|reset|down <version>>")

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		middleware.Logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errUsage
	}
	cmd := strings.ToLower(strings.TrimSpace(fs.Arg(0)))

	// list needs no database.
	if cmd == "list" {
		for _, m := range database.GetMigrations() {
			fmt.Println(m.String())
		}
		return nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	middleware.SetLogLevel(cfg.LogLevel)

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	log := middleware.Logger
	switch cmd {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
		log.Info("sql migrations applied")
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("automigrations applied")
	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status: %w", err)
		}
		log.Info("schema status",
			"mode", status.Mode,
			"env", status.Environment,
			"run_sql", status.WillRunSQL,
			"run_auto", status.WillRunAutoMigrate,
			"applied", len(status.AppliedVersions),
			"pending", len(status.PendingMigrations),
		)
		for _, m := range status.PendingMigrations {
			log.Info("pending migration", "migration", m.String())
		}
	case "down":
		if fs.NArg() < 2 {
			return errUsage
		}
		version, err := strconv.Atoi(fs.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", fs.Arg(1), err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback %d: %w", version, err)
		}
		log.Info("migration rolled back", "version", version)
	case "reset":
		if cfg.IsProduction() {
			return errors.New("refusing to reset a production database")
		}
		if err := db.WithContext(ctx).Exec("DROP SCHEMA public CASCADE; CREATE SCHEMA public; GRANT ALL ON SCHEMA public TO public;").Error; err != nil {
			return fmt.Errorf("reset schema: %w", err)
		}
		log.Warn("public schema dropped and recreated")
	default:
		return errUsage
	}
	return nil
}
