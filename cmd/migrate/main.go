package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"resume-scorer/internal/shared/config"
	"resume-scorer/internal/shared/storage/db"
	"resume-scorer/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultOptions(db.ProfileMigrate)))
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", nil)
}
