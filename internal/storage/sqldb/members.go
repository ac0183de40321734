package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/poinku/internal/models"
)

// CreateMember inserts a new member with a zero balance.
func (s *DB) CreateMember(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = now()
	}

	query := `
		INSERT INTO members (id, name, phone, pin_hash, balance, store_id, created_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, s.q(query),
		member.ID,
		member.Name,
		member.Phone,
		member.PINHash,
		nullString(member.StoreID),
		toMillis(member.CreatedAt),
	)
	if err != nil {
		switch s.d.classify(err) {
		case errUnique:
			return models.ErrPhoneTaken
		case errForeignKey:
			return fmt.Errorf("member store %q: %w", member.StoreID, models.ErrStoreNotFound)
		}
		return s.fail("failed to create member", err)
	}

	member.Balance = 0
	return nil
}

// GetMember retrieves a member by ID.
func (s *DB) GetMember(ctx context.Context, id string) (*models.Member, error) {
	return s.getMember(ctx, "id", id)
}

// GetMemberByPhone retrieves a member by normalized phone number.
func (s *DB) GetMemberByPhone(ctx context.Context, phone string) (*models.Member, error) {
	return s.getMember(ctx, "phone", phone)
}

const memberSelect = "SELECT id, name, phone, pin_hash, balance, store_id, created_at FROM members"

func (s *DB) getMember(ctx context.Context, column, value string) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx, s.q(memberSelect+" WHERE "+column+" = ?"), value)
	member, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrMemberNotFound
	}
	if err != nil {
		return nil, s.fail("failed to get member", err)
	}
	return member, nil
}

// ListMembers returns members newest first. A non-empty storeID keeps only
// members registered at that store.
func (s *DB) ListMembers(ctx context.Context, storeID string, limit int) ([]*models.Member, error) {
	query := memberSelect
	var args []any
	if storeID != "" {
		query += " WHERE store_id = ?"
		args = append(args, storeID)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, s.fail("failed to list members", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

func scanMember(row rowScanner) (*models.Member, error) {
	var (
		member    models.Member
		storeID   sql.NullString
		createdAt int64
	)
	err := row.Scan(
		&member.ID,
		&member.Name,
		&member.Phone,
		&member.PINHash,
		&member.Balance,
		&storeID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	member.StoreID = storeID.String
	member.CreatedAt = fromMillis(createdAt)
	return &member, nil
}

// UpdateMemberPIN replaces the stored PIN hash.
func (s *DB) UpdateMemberPIN(ctx context.Context, id, pinHash string) error {
	res, err := s.db.ExecContext(ctx, s.q("UPDATE members SET pin_hash = ? WHERE id = ?"), pinHash, id)
	if err != nil {
		return s.fail("failed to update member PIN", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrMemberNotFound
	}
	return nil
}
