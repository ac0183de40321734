package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/poinku/internal/models"
)

const voucherDetailsSelect = `
	SELECT v.id, v.code, v.member_id, v.reward_id, v.status, v.point_cost,
	       v.claim_request_id, v.created_at, v.used_at, v.redeem_store_id, v.expired_at,
	       r.name, r.value, m.name, m.phone, s.name
	FROM vouchers v
	JOIN rewards r ON r.id = v.reward_id
	JOIN members m ON m.id = v.member_id
	LEFT JOIN stores s ON s.id = v.redeem_store_id`

// insertVoucher writes a freshly issued voucher inside the debit transaction.
// A unique violation means either the code or the member's claim request id is
// already taken; the caller decides which by looking up the request id.
func (s *DB) insertVoucher(ctx context.Context, tx *sql.Tx, v *models.Voucher) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now()
	}
	if v.Status == "" {
		v.Status = models.VoucherActive
	}

	_, err := tx.ExecContext(ctx,
		s.q(`INSERT INTO vouchers (id, code, member_id, reward_id, status, point_cost, claim_request_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		v.ID, v.Code, v.MemberID, v.RewardID, string(v.Status), v.PointCost,
		nullString(v.ClaimRequestID), toMillis(v.CreatedAt),
	)
	if err != nil {
		switch s.d.classify(err) {
		case errUnique:
			return fmt.Errorf("voucher %s: %w", v.Code, models.ErrVoucherCodeTaken)
		case errForeignKey:
			return fmt.Errorf("voucher reward %q: %w", v.RewardID, models.ErrRewardNotFound)
		}
		return s.fail("failed to insert voucher", err)
	}
	return nil
}

// VoucherCodeExists reports whether code is already assigned.
func (s *DB) VoucherCodeExists(ctx context.Context, code string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, s.q("SELECT 1 FROM vouchers WHERE code = ?"), code).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, s.fail("failed to check voucher code", err)
	}
	return true, nil
}

// GetVoucherByClaimRequest returns the voucher a member already obtained with
// requestID, or models.ErrVoucherNotFound.
func (s *DB) GetVoucherByClaimRequest(ctx context.Context, memberID, requestID string) (*models.Voucher, error) {
	query := `
		SELECT id, code, member_id, reward_id, status, point_cost, claim_request_id,
		       created_at, used_at, redeem_store_id, expired_at
		FROM vouchers
		WHERE member_id = ? AND claim_request_id = ?
	`

	var (
		v                 models.Voucher
		status            string
		claimID, redeemAt sql.NullString
		createdAt         int64
		usedAt, expiredAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, s.q(query), memberID, requestID).Scan(
		&v.ID, &v.Code, &v.MemberID, &v.RewardID, &status, &v.PointCost, &claimID,
		&createdAt, &usedAt, &redeemAt, &expiredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrVoucherNotFound
	}
	if err != nil {
		return nil, s.fail("failed to get voucher by claim request", err)
	}

	v.Status = models.VoucherStatus(status)
	v.ClaimRequestID = claimID.String
	v.CreatedAt = fromMillis(createdAt)
	v.UsedAt = fromNullMillis(usedAt)
	v.RedeemStoreID = redeemAt.String
	v.ExpiredAt = fromNullMillis(expiredAt)
	return &v, nil
}

// GetVoucherDetails returns the voucher with reward, member and redeem store
// information joined in.
func (s *DB) GetVoucherDetails(ctx context.Context, code string) (*models.VoucherDetails, error) {
	row := s.db.QueryRowContext(ctx, s.q(voucherDetailsSelect+" WHERE v.code = ?"), code)
	d, err := scanVoucherDetails(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrVoucherNotFound
	}
	if err != nil {
		return nil, s.fail("failed to get voucher", err)
	}
	return d, nil
}

// MarkVoucherUsed flips an active voucher to used. The status guard in the
// WHERE clause makes concurrent redemptions of one code race on a single row
// update: exactly one of them sees a row affected.
func (s *DB) MarkVoucherUsed(ctx context.Context, code, storeID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		s.q("UPDATE vouchers SET status = ?, used_at = ?, redeem_store_id = ? WHERE code = ? AND status = ?"),
		string(models.VoucherUsed), toMillis(at), nullString(storeID), code, string(models.VoucherActive),
	)
	if err != nil {
		if errors.Is(s.d.classify(err), errForeignKey) {
			return fmt.Errorf("redeem store %q: %w", storeID, models.ErrStoreNotFound)
		}
		return s.fail("failed to mark voucher used", err)
	}
	return s.checkTransition(ctx, res, code)
}

// MarkVoucherExpired flips an active voucher to expired.
func (s *DB) MarkVoucherExpired(ctx context.Context, code string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		s.q("UPDATE vouchers SET status = ?, expired_at = ? WHERE code = ? AND status = ?"),
		string(models.VoucherExpired), toMillis(at), code, string(models.VoucherActive),
	)
	if err != nil {
		return s.fail("failed to mark voucher expired", err)
	}
	return s.checkTransition(ctx, res, code)
}

func (s *DB) checkTransition(ctx context.Context, res sql.Result, code string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	exists, err := s.VoucherCodeExists(ctx, code)
	if err != nil {
		return err
	}
	if !exists {
		return models.ErrVoucherNotFound
	}
	return models.ErrVoucherNotActive
}

// ListVouchersByMember returns a member's vouchers, newest first.
func (s *DB) ListVouchersByMember(ctx context.Context, memberID string) ([]*models.VoucherDetails, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(voucherDetailsSelect+" WHERE v.member_id = ? ORDER BY v.created_at DESC, v.id DESC"),
		memberID,
	)
	if err != nil {
		return nil, s.fail("failed to list member vouchers", err)
	}
	return collectVoucherDetails(rows)
}

// ListVouchersRedeemedAt returns the vouchers most recently used at storeID.
func (s *DB) ListVouchersRedeemedAt(ctx context.Context, storeID string, limit int) ([]*models.VoucherDetails, error) {
	query := voucherDetailsSelect + " WHERE v.redeem_store_id = ? AND v.status = ? ORDER BY v.used_at DESC, v.id DESC"
	args := []any{storeID, string(models.VoucherUsed)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, s.fail("failed to list store redemptions", err)
	}
	return collectVoucherDetails(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVoucherDetails(row rowScanner) (*models.VoucherDetails, error) {
	var (
		d                 models.VoucherDetails
		status            string
		claimID, redeemAt sql.NullString
		storeName         sql.NullString
		createdAt         int64
		usedAt, expiredAt sql.NullInt64
	)
	err := row.Scan(
		&d.Voucher.ID, &d.Voucher.Code, &d.Voucher.MemberID, &d.Voucher.RewardID, &status,
		&d.Voucher.PointCost, &claimID, &createdAt, &usedAt, &redeemAt, &expiredAt,
		&d.RewardName, &d.RewardValue, &d.MemberName, &d.MemberPhone, &storeName,
	)
	if err != nil {
		return nil, err
	}

	d.Voucher.Status = models.VoucherStatus(status)
	d.Voucher.ClaimRequestID = claimID.String
	d.Voucher.CreatedAt = fromMillis(createdAt)
	d.Voucher.UsedAt = fromNullMillis(usedAt)
	d.Voucher.RedeemStoreID = redeemAt.String
	d.Voucher.ExpiredAt = fromNullMillis(expiredAt)
	d.RedeemStoreName = storeName.String
	return &d, nil
}

func collectVoucherDetails(rows *sql.Rows) ([]*models.VoucherDetails, error) {
	defer rows.Close()

	var out []*models.VoucherDetails
	for rows.Next() {
		d, err := scanVoucherDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voucher: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vouchers: %w", err)
	}
	return out, nil
}
