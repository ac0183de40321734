package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/poinku/internal/models"
)

// CreateStaff inserts a staff account.
func (s *DB) CreateStaff(ctx context.Context, staff *models.Staff) error {
	if staff.ID == "" {
		staff.ID = uuid.New().String()
	}
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = now()
	}

	query := `
		INSERT INTO staff (id, username, password_hash, role, store_id, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, s.q(query),
		staff.ID,
		staff.Username,
		staff.PasswordHash,
		string(staff.Role),
		nullString(staff.StoreID),
		staff.Active,
		toMillis(staff.CreatedAt),
	)
	if err != nil {
		switch s.d.classify(err) {
		case errUnique:
			return models.ErrUsernameTaken
		case errForeignKey:
			return fmt.Errorf("staff store %q: %w", staff.StoreID, models.ErrStoreNotFound)
		}
		return s.fail("failed to create staff", err)
	}
	return nil
}

const staffSelect = "SELECT id, username, password_hash, role, store_id, active, created_at FROM staff"

// GetStaff retrieves a staff account by ID.
func (s *DB) GetStaff(ctx context.Context, id string) (*models.Staff, error) {
	return s.getStaff(ctx, "id", id)
}

// GetStaffByUsername retrieves a staff account by username.
func (s *DB) GetStaffByUsername(ctx context.Context, username string) (*models.Staff, error) {
	return s.getStaff(ctx, "username", username)
}

func (s *DB) getStaff(ctx context.Context, column, value string) (*models.Staff, error) {
	row := s.db.QueryRowContext(ctx, s.q(staffSelect+" WHERE "+column+" = ?"), value)
	staff, err := scanStaff(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrStaffNotFound
	}
	if err != nil {
		return nil, s.fail("failed to get staff", err)
	}
	return staff, nil
}

// ListStaff returns every staff account ordered by username.
func (s *DB) ListStaff(ctx context.Context) ([]*models.Staff, error) {
	rows, err := s.db.QueryContext(ctx, staffSelect+" ORDER BY username")
	if err != nil {
		return nil, s.fail("failed to list staff", err)
	}
	defer rows.Close()

	var list []*models.Staff
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		list = append(list, staff)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate staff: %w", err)
	}
	return list, nil
}

// SetStaffActive enables or disables a staff account.
func (s *DB) SetStaffActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, s.q("UPDATE staff SET active = ? WHERE id = ?"), active, id)
	if err != nil {
		return s.fail("failed to update staff status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrStaffNotFound
	}
	return nil
}

func scanStaff(row rowScanner) (*models.Staff, error) {
	var (
		staff     models.Staff
		role      string
		storeID   sql.NullString
		createdAt int64
	)
	err := row.Scan(
		&staff.ID,
		&staff.Username,
		&staff.PasswordHash,
		&role,
		&storeID,
		&staff.Active,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	staff.Role = models.Role(role)
	staff.StoreID = storeID.String
	staff.CreatedAt = fromMillis(createdAt)
	return &staff, nil
}

// UpdateStaffPassword replaces the stored password hash.
func (s *DB) UpdateStaffPassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, s.q("UPDATE staff SET password_hash = ? WHERE id = ?"), passwordHash, id)
	if err != nil {
		return s.fail("failed to update staff password", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrStaffNotFound
	}
	return nil
}
