package db

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"

	"resume-scorer/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrations applies embedded SQL migrations via goose. A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, database, "migrations"); err != nil {
		return err
	}
	version, err := goose.GetDBVersion(database)
	if err != nil {
		return err
	}
	telemetry.Info("db.migrated", map[string]any{"version": version})
	return nil
}
