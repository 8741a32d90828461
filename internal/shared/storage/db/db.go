package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"resume-scorer/internal/shared/telemetry"
)

// Profile selects pool defaults for the kind of process opening the database.
type Profile int

const (
	ProfileServer Profile = iota
	ProfileLambda
	ProfileMigrate
)

// Options controls database pool and connectivity behavior.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var (
	openDB = sql.Open

	sharedMu sync.Mutex
	sharedDB *sql.DB
)

// IsLambdaRuntime reports whether the current process is running in AWS Lambda.
func IsLambdaRuntime() bool {
	return strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != ""
}

// DefaultOptions returns pool defaults for p.
func DefaultOptions(p Profile) Options {
	switch p {
	case ProfileLambda:
		return Options{MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxIdleTime: 30 * time.Second, ConnMaxLifetime: 15 * time.Minute, PingTimeout: 3 * time.Second}
	case ProfileMigrate:
		return Options{MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxIdleTime: 2 * time.Minute, ConnMaxLifetime: time.Hour, PingTimeout: 5 * time.Second}
	default:
		return Options{MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxIdleTime: 2 * time.Minute, ConnMaxLifetime: time.Hour, PingTimeout: 5 * time.Second}
	}
}

// OptionsFromEnv overrides defaults with DB_* env vars if present.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	if v, ok := readEnvInt("DB_MAX_OPEN_CONNS"); ok {
		opts.MaxOpenConns = v
	}
	if v, ok := readEnvInt("DB_MAX_IDLE_CONNS"); ok {
		opts.MaxIdleConns = v
	}
	if v, ok := readEnvDuration("DB_CONN_MAX_LIFETIME"); ok {
		opts.ConnMaxLifetime = v
	}
	if v, ok := readEnvDuration("DB_CONN_MAX_IDLE_TIME"); ok {
		opts.ConnMaxIdleTime = v
	}
	if v, ok := readEnvDuration("DB_PING_TIMEOUT"); ok {
		opts.PingTimeout = v
	}
	return opts
}

// Connect opens a *sql.DB for databaseURL and verifies connectivity.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	applyOptions(db, opts)

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := db.Stats()
	telemetry.Info("db.connected", map[string]any{
		"max_open": stats.MaxOpenConnections,
		"open":     stats.OpenConnections,
		"idle":     stats.Idle,
	})
	return db, nil
}

// Shared returns a process-wide *sql.DB. Warm Lambda invocations reuse it;
// a failed attempt leaves nothing cached so the next call retries.
func Shared(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedDB != nil {
		return sharedDB, nil
	}
	db, err := Connect(ctx, databaseURL, opts)
	if err != nil {
		return nil, err
	}
	sharedDB = db
	return sharedDB, nil
}

func applyOptions(db *sql.DB, opts Options) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 5
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func readEnvInt(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err})
		return 0, false
	}
	return val, true
}

func readEnvDuration(key string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err})
		return 0, false
	}
	return val, true
}
