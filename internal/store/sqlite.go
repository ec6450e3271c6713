package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// builder uses ? placeholders, which is what SQLite expects.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Options tunes the SQLite store.
type Options struct {
	// MaxRetries bounds attempts of a transaction that hits SQLITE_BUSY.
	MaxRetries int
	// RetryBaseDelay is doubled after each busy attempt.
	RetryBaseDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = 50 * time.Millisecond
	}
	return o
}

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	opts Options
}

var _ Repository = (*SQLiteStore)(nil)

// NewSQLite opens the database file, applies pending migrations and returns the store.
func NewSQLite(ctx context.Context, dbPath string, opts Options) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL for concurrent readers; IMMEDIATE transactions take the write lock
	// at BEGIN so check-then-update sequences cannot interleave.
	dsn := "file:" + dbPath +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db, opts: opts.withDefaults()}
	if _, err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

// Migrate applies all pending migrations and returns the versions applied.
func (s *SQLiteStore) Migrate(ctx context.Context) ([]int64, error) {
	provider, err := s.migrationProvider()
	if err != nil {
		return nil, err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose up: %w", err)
	}

	applied := make([]int64, 0, len(results))
	for _, r := range results {
		applied = append(applied, r.Source.Version)
		slog.Debug("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return applied, nil
}

// SchemaVersion returns the latest applied migration version.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int64, error) {
	provider, err := s.migrationProvider()
	if err != nil {
		return 0, err
	}
	v, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("goose version: %w", err)
	}
	return v, nil
}

func (s *SQLiteStore) migrationProvider() (*goose.Provider, error) {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations sub filesystem: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, sub)
	if err != nil {
		return nil, fmt.Errorf("goose new provider: %w", err)
	}
	return provider, nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// closeRows closes rows and logs the failure; the caller already has its result.
func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Warn("failed to close rows", "query", what, "error", err)
	}
}
