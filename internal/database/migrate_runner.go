package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"fbclone/internal/middleware"

	"gorm.io/gorm"
)

// schemaMigration is one row of the applied-migrations ledger.
type schemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	Checksum  string    `gorm:"size:64;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (schemaMigration) TableName() string { return "schema_migrations" }

func checksum(script string) string {
	sum := sha256.Sum256([]byte(script))
	return hex.EncodeToString(sum[:])
}

// Migrator applies a fixed, version-ordered migration set and records each
// step with the checksum of its up script. Editing an applied script is
// reported as drift instead of being silently skipped.
type Migrator struct {
	db  *gorm.DB
	set []Migration
}

// NewMigrator binds set to db. set must be sorted by version.
func NewMigrator(db *gorm.DB, set []Migration) *Migrator {
	return &Migrator{db: db, set: set}
}

func (m *Migrator) ensureLedger(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}

// Applied lists recorded migrations in version order. A missing ledger
// table reads as an empty history.
func (m *Migrator) Applied(ctx context.Context) ([]schemaMigration, error) {
	var rows []schemaMigration
	err := m.db.WithContext(ctx).Order("version").Find(&rows).Error
	if err != nil {
		if isMissingTableError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	return rows, nil
}

func isMissingTableError(err error) bool {
	msg := err.Error()
	return (strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")) ||
		strings.Contains(msg, "no such table")
}

// Pending returns the migrations not yet recorded.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}
	var out []Migration
	for _, mig := range m.set {
		if !done[mig.Version] {
			out = append(out, mig)
		}
	}
	return out, nil
}

// Up verifies the recorded history and applies every pending migration,
// each in its own transaction. It returns how many were applied.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.ensureLedger(ctx); err != nil {
		return 0, err
	}
	applied, err := m.Applied(ctx)
	if err != nil {
		return 0, err
	}
	if err := verifyHistory(applied, m.set); err != nil {
		return 0, err
	}

	done := make(map[int]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}

	count := 0
	for _, mig := range m.set {
		if done[mig.Version] {
			continue
		}
		middleware.Logger.InfoContext(ctx, "applying migration", slog.String("migration", mig.String()))
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.UpScript).Error; err != nil {
				return fmt.Errorf("apply %s: %w", mig.String(), err)
			}
			return tx.Create(&schemaMigration{
				Version:  mig.Version,
				Name:     mig.Name,
				Checksum: checksum(mig.UpScript),
			}).Error
		})
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Down runs the down script of an applied migration and forgets it.
func (m *Migrator) Down(ctx context.Context, version int) error {
	idx := slices.IndexFunc(m.set, func(mig Migration) bool { return mig.Version == version })
	if idx < 0 {
		return fmt.Errorf("migration version %d not found", version)
	}
	mig := m.set[idx]

	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(applied, func(a schemaMigration) bool { return a.Version == version }) {
		return fmt.Errorf("migration %s has not been applied", mig.String())
	}

	middleware.Logger.InfoContext(ctx, "rolling back migration", slog.String("migration", mig.String()))
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(mig.DownScript).Error; err != nil {
			return fmt.Errorf("roll back %s: %w", mig.String(), err)
		}
		return tx.Where("version = ?", version).Delete(&schemaMigration{}).Error
	})
}

// verifyHistory rejects a ledger that mentions versions this build does not
// know, or whose checksums no longer match the embedded scripts.
func verifyHistory(applied []schemaMigration, registered []Migration) error {
	known := make(map[int]Migration, len(registered))
	for _, mig := range registered {
		known[mig.Version] = mig
	}

	var unknown, drifted []string
	for _, a := range applied {
		mig, ok := known[a.Version]
		switch {
		case !ok:
			unknown = append(unknown, fmt.Sprintf("%06d", a.Version))
		case a.Checksum != "" && a.Checksum != checksum(mig.UpScript):
			drifted = append(drifted, mig.String())
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("schema_migrations has versions unknown to this build: %s", strings.Join(unknown, ", "))
	}
	if len(drifted) > 0 {
		return fmt.Errorf("applied migrations changed since they ran: %s", strings.Join(drifted, ", "))
	}
	return nil
}

// RunMigrations applies the embedded migrations.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	n, err := NewMigrator(db, migrations).Up(ctx)
	if err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "sql migrations up to date", slog.Int("applied", n))
	return nil
}

// RollbackMigration reverts one embedded migration.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	return NewMigrator(db, migrations).Down(ctx, version)
}
