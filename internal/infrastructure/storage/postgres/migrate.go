package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/pressly/goose/v3"

	"datacatalog/internal/infrastructure/storage/postgres/migrations"
	"datacatalog/pkg/logger"
)

// MigrationStatus describes one migration as reported by goose.
type MigrationStatus struct {
	Version int64
	Source  string
	Applied bool
}

// Migrator applies the embedded schema migrations.
type Migrator struct {
	db       *sql.DB
	provider *goose.Provider
}

// NewMigrator opens a database/sql handle on dsn for goose.
func NewMigrator(dsn string) (*Migrator, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("goose new provider: %w", err)
	}
	return &Migrator{db: db, provider: provider}, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		logger.Info(ctx, "migration applied",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration", r.Duration)
	}
	return nil
}

// Status reports every known migration.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	results, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose status: %w", err)
	}
	out := make([]MigrationStatus, 0, len(results))
	for _, r := range results {
		out = append(out, MigrationStatus{
			Version: r.Source.Version,
			Source:  r.Source.Path,
			Applied: r.State == goose.StateApplied,
		})
	}
	return out, nil
}

// Close releases the database handle.
func (m *Migrator) Close() error {
	return m.db.Close()
}
