// Package sqldb provides a database/sql implementation of the storage.Store
// interface for SQLite (single-site installs, tests) and PostgreSQL (several
// branches sharing one customer database).
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/poinku/internal/storage"
)

// Ensure DB implements storage.Store
var _ storage.Store = (*DB)(nil)

// DB implements storage.Store on top of database/sql.
type DB struct {
	db *sql.DB
	d  dialect
}

// Options configures Open.
type Options struct {
	// Driver is "sqlite" or "postgres".
	Driver string

	// DSN is a file path for sqlite or a connection string for postgres.
	DSN string

	// BusyTimeout bounds how long sqlite waits on a locked database.
	BusyTimeout time.Duration

	// MaxOpenConns limits the connection pool. Zero leaves the driver default.
	MaxOpenConns int
}

// Open connects to the configured database and runs migrations.
func Open(ctx context.Context, opts Options) (*DB, error) {
	var d dialect
	switch opts.Driver {
	case "", "sqlite":
		d = sqliteDialect{busyTimeout: opts.BusyTimeout}
	case "postgres":
		d = postgresDialect{}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}

	db, err := d.open(opts.DSN)
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := runMigrations(ctx, db, d); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{db: db, d: d}, nil
}

// NewSQLite opens a SQLite database at dbPath, creating parent directories as needed.
func NewSQLite(dbPath string) (*DB, error) {
	return Open(context.Background(), Options{Driver: "sqlite", DSN: dbPath})
}

// Ping checks the database is reachable.
func (s *DB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Driver returns the dialect name, "sqlite" or "postgres".
func (s *DB) Driver() string {
	return s.d.name()
}

// Close closes the database connection.
func (s *DB) Close() error {
	return s.db.Close()
}

// q rewrites a query written with ? placeholders for the active dialect.
func (s *DB) q(query string) string {
	return s.d.rebind(query)
}

// fail wraps err with msg and, when the dialect recognises it, the matching
// classification sentinel (errUnique, errForeignKey, storage.ErrTransient...).
func (s *DB) fail(msg string, err error) error {
	if kind := s.d.classify(err); kind != nil {
		return fmt.Errorf("%s: %w: %w", msg, kind, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// inTx runs fn inside a database transaction, committing on success.
func (s *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.fail("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return s.fail("failed to commit transaction", err)
	}
	return nil
}

// Classification sentinels returned (wrapped) by fail.
var (
	errUnique     = errors.New("unique constraint violated")
	errForeignKey = errors.New("foreign key constraint violated")
	errCheck      = errors.New("check constraint violated")
)

// nullString maps "" to SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func fromNullMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}

func now() time.Time {
	return time.Now().UTC()
}
