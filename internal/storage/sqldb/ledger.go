package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/poinku/internal/models"
)

// Credit adds entry.Points to the member balance and appends the journal entry.
func (s *DB) Credit(ctx context.Context, entry *models.Transaction) (int64, error) {
	prepareEntry(entry)

	var balance int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			s.q("UPDATE members SET balance = balance + ? WHERE id = ? RETURNING balance"),
			entry.Points, entry.MemberID,
		).Scan(&balance)
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrMemberNotFound
		}
		if err != nil {
			return s.fail("failed to credit member", err)
		}

		return s.insertEntry(ctx, tx, entry)
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// Debit subtracts entry.Points from the member balance if and only if the
// balance covers it. The guard is part of the UPDATE itself, so two concurrent
// debits can never both pass a check against a stale balance.
func (s *DB) Debit(ctx context.Context, entry *models.Transaction, voucher *models.Voucher) (int64, error) {
	prepareEntry(entry)

	var balance int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			s.q("UPDATE members SET balance = balance - ? WHERE id = ? AND balance >= ? RETURNING balance"),
			entry.Points, entry.MemberID, entry.Points,
		).Scan(&balance)
		if errors.Is(err, sql.ErrNoRows) {
			return s.explainFailedDebit(ctx, tx, entry.MemberID)
		}
		if err != nil {
			if errors.Is(s.d.classify(err), errCheck) {
				return models.ErrInsufficientBalance
			}
			return s.fail("failed to debit member", err)
		}

		if err := s.insertEntry(ctx, tx, entry); err != nil {
			return err
		}

		if voucher != nil {
			return s.insertVoucher(ctx, tx, voucher)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// explainFailedDebit distinguishes a missing member from an insufficient balance
// after the conditional update matched no rows.
func (s *DB) explainFailedDebit(ctx context.Context, tx *sql.Tx, memberID string) error {
	var exists int
	err := tx.QueryRowContext(ctx, s.q("SELECT 1 FROM members WHERE id = ?"), memberID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrMemberNotFound
	}
	if err != nil {
		return s.fail("failed to check member existence", err)
	}
	return models.ErrInsufficientBalance
}

func (s *DB) insertEntry(ctx context.Context, tx *sql.Tx, entry *models.Transaction) error {
	_, err := tx.ExecContext(ctx,
		s.q(`INSERT INTO transactions (id, member_id, kind, points, description, store_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		entry.ID, entry.MemberID, string(entry.Kind), entry.Points, entry.Description,
		nullString(entry.StoreID), toMillis(entry.CreatedAt),
	)
	if err != nil {
		if errors.Is(s.d.classify(err), errForeignKey) {
			return fmt.Errorf("transaction store %q: %w", entry.StoreID, models.ErrStoreNotFound)
		}
		return s.fail("failed to insert transaction", err)
	}
	return nil
}

func prepareEntry(entry *models.Transaction) {
	// Generate ID if not set
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now()
	}
}

// GetBalance returns the cached balance for a member.
func (s *DB) GetBalance(ctx context.Context, memberID string) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx, s.q("SELECT balance FROM members WHERE id = ?"), memberID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrMemberNotFound
	}
	if err != nil {
		return 0, s.fail("failed to get balance", err)
	}
	return balance, nil
}

// ListTransactions returns journal entries matching filter, newest first.
func (s *DB) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if filter.MemberID != "" {
		where = append(where, "member_id = ?")
		args = append(args, filter.MemberID)
	}
	if filter.StoreID != "" {
		where = append(where, "store_id = ?")
		args = append(args, filter.StoreID)
	}
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(filter.Kind))
	}

	query := "SELECT id, member_id, kind, points, description, store_id, created_at FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, s.fail("failed to list transactions", err)
	}
	defer rows.Close()

	var entries []*models.Transaction
	for rows.Next() {
		var (
			entry     models.Transaction
			kind      string
			storeID   sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&entry.ID, &entry.MemberID, &kind, &entry.Points, &entry.Description, &storeID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		entry.Kind = models.TransactionKind(kind)
		entry.StoreID = storeID.String
		entry.CreatedAt = fromMillis(createdAt)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return entries, nil
}
