package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// sqliteSchema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: stores must be created first, every other table references it.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS stores (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    code TEXT NOT NULL UNIQUE,
    address TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    phone TEXT NOT NULL UNIQUE,
    pin_hash TEXT NOT NULL,
    balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
    store_id TEXT REFERENCES stores(id) ON DELETE SET NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    member_id TEXT NOT NULL REFERENCES members(id),
    kind TEXT NOT NULL CHECK (kind IN ('earning', 'redeem')),
    points INTEGER NOT NULL CHECK (points >= 0),
    description TEXT NOT NULL,
    store_id TEXT REFERENCES stores(id),
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS rewards (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    point_cost INTEGER NOT NULL CHECK (point_cost > 0),
    value TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS vouchers (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    member_id TEXT NOT NULL REFERENCES members(id),
    reward_id TEXT NOT NULL REFERENCES rewards(id),
    status TEXT NOT NULL CHECK (status IN ('active', 'used', 'expired')),
    point_cost INTEGER NOT NULL,
    claim_request_id TEXT,
    created_at INTEGER NOT NULL,
    used_at INTEGER,
    redeem_store_id TEXT REFERENCES stores(id),
    expired_at INTEGER,
    UNIQUE (member_id, claim_request_id)
);

CREATE TABLE IF NOT EXISTS staff (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('admin', 'staff')),
    store_id TEXT REFERENCES stores(id) ON DELETE SET NULL,
    active INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_member ON transactions(member_id, created_at);
CREATE INDEX IF NOT EXISTS idx_transactions_store ON transactions(store_id, created_at);
CREATE INDEX IF NOT EXISTS idx_vouchers_member ON vouchers(member_id);
CREATE INDEX IF NOT EXISTS idx_vouchers_redeem_store ON vouchers(redeem_store_id, used_at);
`

// postgresSchema mirrors sqliteSchema with PostgreSQL column types.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS stores (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    code TEXT NOT NULL UNIQUE,
    address TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    phone TEXT NOT NULL UNIQUE,
    pin_hash TEXT NOT NULL,
    balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
    store_id TEXT REFERENCES stores(id) ON DELETE SET NULL,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    member_id TEXT NOT NULL REFERENCES members(id),
    kind TEXT NOT NULL CHECK (kind IN ('earning', 'redeem')),
    points BIGINT NOT NULL CHECK (points >= 0),
    description TEXT NOT NULL,
    store_id TEXT REFERENCES stores(id),
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS rewards (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    point_cost BIGINT NOT NULL CHECK (point_cost > 0),
    value TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS vouchers (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    member_id TEXT NOT NULL REFERENCES members(id),
    reward_id TEXT NOT NULL REFERENCES rewards(id),
    status TEXT NOT NULL CHECK (status IN ('active', 'used', 'expired')),
    point_cost BIGINT NOT NULL,
    claim_request_id TEXT,
    created_at BIGINT NOT NULL,
    used_at BIGINT,
    redeem_store_id TEXT REFERENCES stores(id),
    expired_at BIGINT,
    UNIQUE (member_id, claim_request_id)
);

CREATE TABLE IF NOT EXISTS staff (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('admin', 'staff')),
    store_id TEXT REFERENCES stores(id) ON DELETE SET NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_member ON transactions(member_id, created_at);
CREATE INDEX IF NOT EXISTS idx_transactions_store ON transactions(store_id, created_at);
CREATE INDEX IF NOT EXISTS idx_vouchers_member ON vouchers(member_id);
CREATE INDEX IF NOT EXISTS idx_vouchers_redeem_store ON vouchers(redeem_store_id, used_at);
`

// runMigrations executes the schema setup one statement at a time.
func runMigrations(ctx context.Context, db *sql.DB, d dialect) error {
	for _, stmt := range strings.Split(d.schema(), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s migration failed: %w", d.name(), err)
		}
	}
	return nil
}
