package sqldb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/poinku/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type fixture struct {
	store  *models.Store
	member *models.Member
	reward *models.Reward
}

func seed(t *testing.T, db *DB) fixture {
	t.Helper()
	ctx := context.Background()

	store := &models.Store{Name: "Bandung Pusat", Code: "BP01"}
	if err := db.CreateStore(ctx, store); err != nil {
		t.Fatalf("CreateStore failed: %v", err)
	}

	member := &models.Member{Name: "Sari", Phone: "+628111", PINHash: "hash", StoreID: store.ID}
	if err := db.CreateMember(ctx, member); err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}

	reward := &models.Reward{Name: "Free Coffee", PointCost: 3, Value: decimal.NewFromInt(25000)}
	if err := db.CreateReward(ctx, reward); err != nil {
		t.Fatalf("CreateReward failed: %v", err)
	}

	return fixture{store: store, member: member, reward: reward}
}

func earning(memberID, storeID string, points int64) *models.Transaction {
	return &models.Transaction{
		MemberID:    memberID,
		Kind:        models.TransactionEarning,
		Points:      points,
		Description: "Purchase",
		StoreID:     storeID,
	}
}

func redeem(memberID, storeID string, points int64) *models.Transaction {
	return &models.Transaction{
		MemberID:    memberID,
		Kind:        models.TransactionRedeem,
		Points:      points,
		Description: "Redeem",
		StoreID:     storeID,
	}
}

func TestLedger(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	ctx := context.Background()

	t.Run("Credit increases balance and journals", func(t *testing.T) {
		balance, err := db.Credit(ctx, earning(f.member.ID, f.store.ID, 5))
		if err != nil {
			t.Fatalf("Credit failed: %v", err)
		}
		if balance != 5 {
			t.Errorf("balance = %d, want 5", balance)
		}

		entries, err := db.ListTransactions(ctx, models.TransactionFilter{MemberID: f.member.ID})
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(entries))
		}
		if entries[0].StoreID != f.store.ID {
			t.Errorf("entry store = %q, want %q", entries[0].StoreID, f.store.ID)
		}
	})

	t.Run("Debit beyond balance is rejected without a journal entry", func(t *testing.T) {
		_, err := db.Debit(ctx, redeem(f.member.ID, f.store.ID, 6), nil)
		if !errors.Is(err, models.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}

		entries, _ := db.ListTransactions(ctx, models.TransactionFilter{MemberID: f.member.ID})
		if len(entries) != 1 {
			t.Errorf("got %d entries, want 1", len(entries))
		}
		balance, _ := db.GetBalance(ctx, f.member.ID)
		if balance != 5 {
			t.Errorf("balance = %d, want 5", balance)
		}
	})

	t.Run("Debit exact balance reaches zero", func(t *testing.T) {
		balance, err := db.Debit(ctx, redeem(f.member.ID, f.store.ID, 5), nil)
		if err != nil {
			t.Fatalf("Debit failed: %v", err)
		}
		if balance != 0 {
			t.Errorf("balance = %d, want 0", balance)
		}
	})

	t.Run("unknown member", func(t *testing.T) {
		if _, err := db.Credit(ctx, earning("nope", "", 1)); !errors.Is(err, models.ErrMemberNotFound) {
			t.Errorf("Credit: expected ErrMemberNotFound, got %v", err)
		}
		if _, err := db.Debit(ctx, redeem("nope", "", 1), nil); !errors.Is(err, models.ErrMemberNotFound) {
			t.Errorf("Debit: expected ErrMemberNotFound, got %v", err)
		}
		if _, err := db.GetBalance(ctx, "nope"); !models.IsNotFound(err) {
			t.Errorf("GetBalance: expected not found, got %v", err)
		}
	})

	t.Run("unknown store rolls back the credit", func(t *testing.T) {
		_, err := db.Credit(ctx, earning(f.member.ID, "missing-store", 10))
		if !errors.Is(err, models.ErrStoreNotFound) {
			t.Fatalf("expected ErrStoreNotFound, got %v", err)
		}
		balance, _ := db.GetBalance(ctx, f.member.ID)
		if balance != 0 {
			t.Errorf("balance = %d, want 0 after rollback", balance)
		}
	})

	t.Run("ListTransactions filters by kind", func(t *testing.T) {
		entries, err := db.ListTransactions(ctx, models.TransactionFilter{MemberID: f.member.ID, Kind: models.TransactionRedeem})
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if len(entries) != 1 || entries[0].Kind != models.TransactionRedeem {
			t.Errorf("unexpected entries: %+v", entries)
		}
	})
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	ctx := context.Background()

	if _, err := db.Credit(ctx, earning(f.member.ID, f.store.ID, 10)); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.Debit(ctx, redeem(f.member.ID, f.store.ID, 3), nil)
			if err == nil {
				succeeded.Add(1)
				return
			}
			if !errors.Is(err, models.ErrInsufficientBalance) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := succeeded.Load(); got != 3 {
		t.Errorf("successful debits = %d, want 3", got)
	}
	balance, _ := db.GetBalance(ctx, f.member.ID)
	if balance != 1 {
		t.Errorf("balance = %d, want 1", balance)
	}
}

func TestVouchers(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	ctx := context.Background()

	if _, err := db.Credit(ctx, earning(f.member.ID, f.store.ID, 10)); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}

	voucher := &models.Voucher{
		Code:           "VOU-ABC234",
		MemberID:       f.member.ID,
		RewardID:       f.reward.ID,
		PointCost:      f.reward.PointCost,
		ClaimRequestID: "req-1",
	}

	t.Run("Debit with voucher issues it atomically", func(t *testing.T) {
		balance, err := db.Debit(ctx, redeem(f.member.ID, "", 3), voucher)
		if err != nil {
			t.Fatalf("Debit failed: %v", err)
		}
		if balance != 7 {
			t.Errorf("balance = %d, want 7", balance)
		}

		d, err := db.GetVoucherDetails(ctx, "VOU-ABC234")
		if err != nil {
			t.Fatalf("GetVoucherDetails failed: %v", err)
		}
		if d.Voucher.Status != models.VoucherActive {
			t.Errorf("status = %s, want active", d.Voucher.Status)
		}
		if d.RewardName != "Free Coffee" || !d.RewardValue.Equal(decimal.NewFromInt(25000)) {
			t.Errorf("unexpected reward projection: %s %s", d.RewardName, d.RewardValue)
		}
		if d.MemberPhone != "+628111" {
			t.Errorf("member phone = %s", d.MemberPhone)
		}
	})

	t.Run("duplicate code rolls back the debit", func(t *testing.T) {
		dup := &models.Voucher{Code: "VOU-ABC234", MemberID: f.member.ID, RewardID: f.reward.ID, PointCost: 3}
		_, err := db.Debit(ctx, redeem(f.member.ID, "", 3), dup)
		if !errors.Is(err, models.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
		balance, _ := db.GetBalance(ctx, f.member.ID)
		if balance != 7 {
			t.Errorf("balance = %d, want 7", balance)
		}
	})

	t.Run("GetVoucherByClaimRequest", func(t *testing.T) {
		v, err := db.GetVoucherByClaimRequest(ctx, f.member.ID, "req-1")
		if err != nil {
			t.Fatalf("GetVoucherByClaimRequest failed: %v", err)
		}
		if v.Code != "VOU-ABC234" {
			t.Errorf("code = %s", v.Code)
		}
		if _, err := db.GetVoucherByClaimRequest(ctx, f.member.ID, "req-2"); !errors.Is(err, models.ErrVoucherNotFound) {
			t.Errorf("expected ErrVoucherNotFound, got %v", err)
		}
	})

	t.Run("MarkVoucherUsed once", func(t *testing.T) {
		at := time.Now()
		if err := db.MarkVoucherUsed(ctx, "VOU-ABC234", f.store.ID, at); err != nil {
			t.Fatalf("MarkVoucherUsed failed: %v", err)
		}
		err := db.MarkVoucherUsed(ctx, "VOU-ABC234", f.store.ID, at)
		if !errors.Is(err, models.ErrVoucherNotActive) {
			t.Errorf("second redeem: expected ErrVoucherNotActive, got %v", err)
		}
		if err := db.MarkVoucherExpired(ctx, "VOU-ABC234", at); !errors.Is(err, models.ErrInvalidState) {
			t.Errorf("expire used voucher: expected ErrInvalidState, got %v", err)
		}
		if err := db.MarkVoucherUsed(ctx, "VOU-ZZZZZZ", f.store.ID, at); !errors.Is(err, models.ErrVoucherNotFound) {
			t.Errorf("unknown code: expected ErrVoucherNotFound, got %v", err)
		}

		d, _ := db.GetVoucherDetails(ctx, "VOU-ABC234")
		if d.Voucher.UsedAt == nil || d.Voucher.RedeemStoreID != f.store.ID || d.RedeemStoreName != "Bandung Pusat" {
			t.Errorf("redeem not recorded: %+v", d)
		}
	})

	t.Run("listings", func(t *testing.T) {
		byMember, err := db.ListVouchersByMember(ctx, f.member.ID)
		if err != nil {
			t.Fatalf("ListVouchersByMember failed: %v", err)
		}
		if len(byMember) != 1 {
			t.Errorf("member vouchers = %d, want 1", len(byMember))
		}

		atStore, err := db.ListVouchersRedeemedAt(ctx, f.store.ID, 10)
		if err != nil {
			t.Fatalf("ListVouchersRedeemedAt failed: %v", err)
		}
		if len(atStore) != 1 {
			t.Errorf("store redemptions = %d, want 1", len(atStore))
		}
	})

	t.Run("reward with vouchers cannot be deleted", func(t *testing.T) {
		if err := db.DeleteReward(ctx, f.reward.ID); !errors.Is(err, models.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})
}

func TestConcurrentRedeemExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	ctx := context.Background()

	if _, err := db.Credit(ctx, earning(f.member.ID, f.store.ID, 3)); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	v := &models.Voucher{Code: "VOU-RACE22", MemberID: f.member.ID, RewardID: f.reward.ID, PointCost: 3}
	if _, err := db.Debit(ctx, redeem(f.member.ID, "", 3), v); err != nil {
		t.Fatalf("Debit failed: %v", err)
	}

	var (
		wg  sync.WaitGroup
		won atomic.Int64
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.MarkVoucherUsed(ctx, "VOU-RACE22", f.store.ID, time.Now())
			if err == nil {
				won.Add(1)
				return
			}
			if !errors.Is(err, models.ErrVoucherNotActive) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := won.Load(); got != 1 {
		t.Errorf("successful redemptions = %d, want 1", got)
	}
}

func TestDirectory(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	ctx := context.Background()

	t.Run("phone is unique", func(t *testing.T) {
		err := db.CreateMember(ctx, &models.Member{Name: "Other", Phone: "+628111", PINHash: "x"})
		if !errors.Is(err, models.ErrPhoneTaken) {
			t.Errorf("expected ErrPhoneTaken, got %v", err)
		}
	})

	t.Run("member lookups", func(t *testing.T) {
		m, err := db.GetMemberByPhone(ctx, "+628111")
		if err != nil {
			t.Fatalf("GetMemberByPhone failed: %v", err)
		}
		if m.ID != f.member.ID || m.StoreID != f.store.ID {
			t.Errorf("unexpected member: %+v", m)
		}
		if err := db.UpdateMemberPIN(ctx, m.ID, "new"); err != nil {
			t.Fatalf("UpdateMemberPIN failed: %v", err)
		}
		m, _ = db.GetMember(ctx, m.ID)
		if m.PINHash != "new" {
			t.Errorf("pin hash = %q, want new", m.PINHash)
		}
	})

	t.Run("store code is unique", func(t *testing.T) {
		err := db.CreateStore(ctx, &models.Store{Name: "Dup", Code: "BP01"})
		if !errors.Is(err, models.ErrStoreCodeTaken) {
			t.Errorf("expected ErrStoreCodeTaken, got %v", err)
		}
	})

	t.Run("staff", func(t *testing.T) {
		staff := &models.Staff{Username: "kasir1", PasswordHash: "pw", Role: models.RoleStaff, StoreID: f.store.ID, Active: true}
		if err := db.CreateStaff(ctx, staff); err != nil {
			t.Fatalf("CreateStaff failed: %v", err)
		}
		got, err := db.GetStaffByUsername(ctx, "kasir1")
		if err != nil {
			t.Fatalf("GetStaffByUsername failed: %v", err)
		}
		if !got.Active || got.Role != models.RoleStaff || got.StoreID != f.store.ID {
			t.Errorf("unexpected staff: %+v", got)
		}
		if err := db.CreateStaff(ctx, &models.Staff{Username: "kasir1", PasswordHash: "pw", Role: models.RoleStaff}); !errors.Is(err, models.ErrUsernameTaken) {
			t.Errorf("expected ErrUsernameTaken, got %v", err)
		}

		if err := db.SetStaffActive(ctx, staff.ID, false); err != nil {
			t.Fatalf("SetStaffActive failed: %v", err)
		}
		got, err = db.GetStaff(ctx, staff.ID)
		if err != nil {
			t.Fatalf("GetStaff failed: %v", err)
		}
		if got.Active || got.Username != "kasir1" {
			t.Errorf("unexpected staff after deactivation: %+v", got)
		}
		if err := db.SetStaffActive(ctx, "missing", true); !errors.Is(err, models.ErrStaffNotFound) {
			t.Errorf("expected ErrStaffNotFound, got %v", err)
		}
		if _, err := db.GetStaff(ctx, "missing"); !errors.Is(err, models.ErrStaffNotFound) {
			t.Errorf("expected ErrStaffNotFound, got %v", err)
		}

		admin := &models.Staff{Username: "admin", PasswordHash: "pw", Role: models.RoleAdmin, Active: true}
		if err := db.CreateStaff(ctx, admin); err != nil {
			t.Fatalf("CreateStaff failed: %v", err)
		}
		list, err := db.ListStaff(ctx)
		if err != nil {
			t.Fatalf("ListStaff failed: %v", err)
		}
		if len(list) != 2 || list[0].Username != "admin" || list[1].Active {
			t.Errorf("unexpected staff list: %+v", list)
		}
	})

	t.Run("members by store", func(t *testing.T) {
		walkIn := &models.Member{Name: "Walk-in", Phone: "+628222", PINHash: "x", CreatedAt: time.Now().Add(time.Minute)}
		if err := db.CreateMember(ctx, walkIn); err != nil {
			t.Fatalf("CreateMember failed: %v", err)
		}

		all, err := db.ListMembers(ctx, "", 0)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		if len(all) != 2 || all[0].ID != walkIn.ID {
			t.Errorf("expected newest first, got %+v", all)
		}

		atStore, err := db.ListMembers(ctx, f.store.ID, 0)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		if len(atStore) != 1 || atStore[0].ID != f.member.ID {
			t.Errorf("unexpected store members: %+v", atStore)
		}

		limited, _ := db.ListMembers(ctx, "", 1)
		if len(limited) != 1 {
			t.Errorf("limit ignored: %d members", len(limited))
		}
	})

	t.Run("rewards ordered by cost", func(t *testing.T) {
		cheap := &models.Reward{Name: "Sticker", PointCost: 1, Value: decimal.Zero}
		if err := db.CreateReward(ctx, cheap); err != nil {
			t.Fatalf("CreateReward failed: %v", err)
		}
		rewards, err := db.ListRewards(ctx)
		if err != nil {
			t.Fatalf("ListRewards failed: %v", err)
		}
		if len(rewards) != 2 || rewards[0].Name != "Sticker" {
			t.Errorf("unexpected order: %+v", rewards)
		}

		cheap.PointCost = 5
		cheap.Value = decimal.RequireFromString("1500.50")
		if err := db.UpdateReward(ctx, cheap); err != nil {
			t.Fatalf("UpdateReward failed: %v", err)
		}
		got, _ := db.GetReward(ctx, cheap.ID)
		if got.PointCost != 5 || !got.Value.Equal(decimal.RequireFromString("1500.5")) {
			t.Errorf("unexpected reward after update: %+v", got)
		}

		if err := db.DeleteReward(ctx, cheap.ID); err != nil {
			t.Fatalf("DeleteReward failed: %v", err)
		}
		if _, err := db.GetReward(ctx, cheap.ID); !errors.Is(err, models.ErrRewardNotFound) {
			t.Errorf("expected ErrRewardNotFound, got %v", err)
		}
	})

	t.Run("settings upsert", func(t *testing.T) {
		if _, ok, _ := db.GetSetting(ctx, "poin_divisor"); ok {
			t.Fatal("expected no setting")
		}
		for _, v := range []string{"25000", "10000"} {
			if err := db.PutSetting(ctx, "poin_divisor", v); err != nil {
				t.Fatalf("PutSetting failed: %v", err)
			}
		}
		v, ok, err := db.GetSetting(ctx, "poin_divisor")
		if err != nil || !ok || v != "10000" {
			t.Errorf("GetSetting = %q, %v, %v", v, ok, err)
		}
	})
}

// TestPostgres runs the ledger checks against a real PostgreSQL when
// POINKU_TEST_PG_DSN is set.
func TestPostgres(t *testing.T) {
	dsn := os.Getenv("POINKU_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("POINKU_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	db, err := Open(ctx, Options{Driver: "postgres", DSN: dsn})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	member := &models.Member{Name: "PG", Phone: "+62" + time.Now().Format("150405.000000"), PINHash: "x"}
	if err := db.CreateMember(ctx, member); err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}
	if _, err := db.Credit(ctx, earning(member.ID, "", 4)); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if _, err := db.Debit(ctx, redeem(member.ID, "", 5), nil); !errors.Is(err, models.ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
	balance, err := db.GetBalance(ctx, member.ID)
	if err != nil || balance != 4 {
		t.Errorf("balance = %d, %v", balance, err)
	}
}

func TestRebindDollar(t *testing.T) {
	got := rebindDollar("UPDATE t SET a = ? WHERE b = ? AND c >= ?")
	want := "UPDATE t SET a = $1 WHERE b = $2 AND c >= $3"
	if got != want {
		t.Errorf("rebindDollar = %q, want %q", got, want)
	}
}
