package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/poinku/internal/storage"
)

const defaultBusyTimeout = 5 * time.Second

type sqliteDialect struct {
	busyTimeout time.Duration
}

func (sqliteDialect) name() string { return "sqlite" }

func (d sqliteDialect) open(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite database path is required")
	}

	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", d.dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// dsn applies the per-connection pragmas. Every pooled connection needs
// foreign keys and a busy timeout; WAL lets readers proceed during writes;
// immediate transactions take the write lock at BEGIN so two writers never
// deadlock trying to upgrade a read lock.
func (d sqliteDialect) dsn(dbPath string) string {
	timeout := d.busyTimeout
	if timeout <= 0 {
		timeout = defaultBusyTimeout
	}

	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", timeout.Milliseconds()))
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_txlock", "immediate")

	return "file:" + dbPath + "?" + params.Encode()
}

func (sqliteDialect) schema() string { return sqliteSchema }

func (sqliteDialect) rebind(query string) string { return query }

func (sqliteDialect) classify(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return nil
	}

	code := se.Code()
	switch code & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return storage.ErrTransient
	case sqlite3.SQLITE_CONSTRAINT:
		msg := se.Error()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE,
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
			strings.Contains(msg, "UNIQUE constraint failed"):
			return errUnique
		case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY,
			strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return errForeignKey
		case code == sqlite3.SQLITE_CONSTRAINT_CHECK,
			strings.Contains(msg, "CHECK constraint failed"):
			return errCheck
		}
	}
	return nil
}
