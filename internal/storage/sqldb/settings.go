package sqldb

import (
	"context"
	"database/sql"
	"errors"
)

// GetSetting returns the stored value for key and whether it exists.
func (s *DB) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.q("SELECT value FROM settings WHERE key = ?"), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.fail("failed to get setting", err)
	}
	return value, true, nil
}

// PutSetting upserts a setting.
func (s *DB) PutSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, s.q(query), key, value, toMillis(now())); err != nil {
		return s.fail("failed to put setting", err)
	}
	return nil
}
