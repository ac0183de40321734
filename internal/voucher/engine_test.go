package voucher

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/poinku/internal/conversion"
	"github.com/mmynk/poinku/internal/ledger"
	"github.com/mmynk/poinku/internal/models"
	"github.com/mmynk/poinku/internal/storage"
	"github.com/mmynk/poinku/internal/storage/sqldb"
)

type env struct {
	db     *sqldb.DB
	ledger *ledger.Ledger
	engine *Engine
	storeA *models.Store
	storeB *models.Store
	member *models.Member
	reward *models.Reward
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	db, err := sqldb.NewSQLite(filepath.Join(t.TempDir(), "voucher.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	storeA := &models.Store{Name: "Store A", Code: "STA"}
	storeB := &models.Store{Name: "Store B", Code: "STB"}
	require.NoError(t, db.CreateStore(ctx, storeA))
	require.NoError(t, db.CreateStore(ctx, storeB))

	member := &models.Member{Name: "Sari", Phone: "+628111", PINHash: "x", StoreID: storeA.ID}
	require.NoError(t, db.CreateMember(ctx, member))

	reward := &models.Reward{Name: "Tote Bag", PointCost: 60, Value: decimal.NewFromInt(50000)}
	require.NoError(t, db.CreateReward(ctx, reward))

	// One point per currency unit keeps balances easy to set up.
	policy := conversion.NewPolicy(db, 1)
	l := ledger.New(db, policy, ledger.Options{})
	e := NewEngine(db, db, l, Options{})

	return &env{db: db, ledger: l, engine: e, storeA: storeA, storeB: storeB, member: member, reward: reward}
}

func (e *env) fund(t *testing.T, points int64) {
	t.Helper()
	_, err := e.ledger.RecordEarning(context.Background(), ledger.EarnRequest{
		MemberID: e.member.ID,
		Spent:    decimal.NewFromInt(points),
		StoreID:  e.storeA.ID,
	})
	require.NoError(t, err)
}

func TestIssueAndRedeemEndToEnd(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.fund(t, 100)

	issued, err := e.engine.Issue(ctx, IssueRequest{MemberID: e.member.ID, RewardID: e.reward.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(40), issued.Balance)
	assert.Equal(t, models.VoucherActive, issued.Voucher.Status)
	assert.False(t, issued.Replayed)

	code := issued.Voucher.Code

	// The cashier inspects before redeeming; case and spacing don't matter.
	d, err := e.engine.Lookup(ctx, " "+lower(code)+" ")
	require.NoError(t, err)
	assert.Equal(t, "Tote Bag", d.RewardName)
	assert.Equal(t, "Sari", d.MemberName)
	assert.Equal(t, models.VoucherActive, d.Voucher.Status)

	res, err := e.engine.Redeem(ctx, code, e.storeB.ID)
	require.NoError(t, err)
	assert.Equal(t, e.storeB.ID, res.StoreID)
	assert.False(t, res.RedeemedAt.IsZero())

	d, err = e.engine.Lookup(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, models.VoucherUsed, d.Voucher.Status)
	assert.Equal(t, e.storeB.ID, d.Voucher.RedeemStoreID)
	assert.Equal(t, "Store B", d.RedeemStoreName)

	_, err = e.engine.Redeem(ctx, code, e.storeA.ID)
	assert.ErrorIs(t, err, models.ErrInvalidState)

	_, err = e.engine.Redeem(ctx, "VOU-NOPE22", e.storeA.ID)
	assert.ErrorIs(t, err, models.ErrVoucherNotFound)

	entries, err := e.ledger.History(ctx, models.TransactionFilter{MemberID: e.member.ID, Kind: models.TransactionRedeem})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Claim: Tote Bag", entries[0].Description)
	assert.Equal(t, int64(60), entries[0].Points)

	history, err := e.engine.ListRedeemedAtStore(ctx, e.storeB.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, code, history[0].Voucher.Code)

	wallet, err := e.engine.ListByMember(ctx, e.member.ID)
	require.NoError(t, err)
	assert.Len(t, wallet, 1)
}

func TestIssueInsufficientBalanceCreatesNothing(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.fund(t, 59)

	_, err := e.engine.Issue(ctx, IssueRequest{MemberID: e.member.ID, RewardID: e.reward.ID})
	assert.ErrorIs(t, err, models.ErrInsufficientBalance)

	wallet, err := e.engine.ListByMember(ctx, e.member.ID)
	require.NoError(t, err)
	assert.Empty(t, wallet)

	redeems, err := e.ledger.History(ctx, models.TransactionFilter{MemberID: e.member.ID, Kind: models.TransactionRedeem})
	require.NoError(t, err)
	assert.Empty(t, redeems)

	balance, _ := e.ledger.Balance(ctx, e.member.ID)
	assert.Equal(t, int64(59), balance)
}

func TestIssueUnknownReward(t *testing.T) {
	e := setup(t)
	_, err := e.engine.Issue(context.Background(), IssueRequest{MemberID: e.member.ID, RewardID: "missing"})
	assert.ErrorIs(t, err, models.ErrRewardNotFound)
}

func TestIssueIsIdempotentPerRequestID(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.fund(t, 150)

	req := IssueRequest{MemberID: e.member.ID, RewardID: e.reward.ID, RequestID: "till-7-0001"}
	first, err := e.engine.Issue(ctx, req)
	require.NoError(t, err)

	second, err := e.engine.Issue(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Voucher.Code, second.Voucher.Code)
	assert.Equal(t, int64(90), second.Balance)

	other := &models.Reward{Name: "Sticker", PointCost: 5, Value: decimal.Zero}
	require.NoError(t, e.db.CreateReward(ctx, other))
	_, err = e.engine.Issue(ctx, IssueRequest{MemberID: e.member.ID, RewardID: other.ID, RequestID: "till-7-0001"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestConcurrentIssueWithSameRequestID(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.fund(t, 600)

	var codes [8]string
	g, gctx := errgroup.WithContext(ctx)
	for i := range codes {
		g.Go(func() error {
			res, err := e.engine.Issue(gctx, IssueRequest{MemberID: e.member.ID, RewardID: e.reward.ID, RequestID: "double-tap"})
			if err != nil {
				return err
			}
			codes[i] = res.Voucher.Code
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, c := range codes {
		assert.Equal(t, codes[0], c)
	}
	balance, _ := e.ledger.Balance(ctx, e.member.ID)
	assert.Equal(t, int64(540), balance, "only one debit for one request id")
}

func TestConcurrentRedeemExactlyOneWins(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.fund(t, 60)

	issued, err := e.engine.Issue(ctx, IssueRequest{MemberID: e.member.ID, RewardID: e.reward.ID})
	require.NoError(t, err)

	var won, lost atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 10; i++ {
		store := e.storeA.ID
		if i%2 == 1 {
			store = e.storeB.ID
		}
		g.Go(func() error {
			_, err := e.engine.Redeem(gctx, issued.Voucher.Code, store)
			switch {
			case err == nil:
				won.Add(1)
			case errors.Is(err, models.ErrVoucherNotActive):
				lost.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(1), won.Load())
	assert.Equal(t, int64(9), lost.Load())
}

func TestExpire(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.fund(t, 60)

	issued, err := e.engine.Issue(ctx, IssueRequest{MemberID: e.member.ID, RewardID: e.reward.ID})
	require.NoError(t, err)

	at, err := e.engine.Expire(ctx, issued.Voucher.Code)
	require.NoError(t, err)
	assert.False(t, at.IsZero())

	_, err = e.engine.Redeem(ctx, issued.Voucher.Code, e.storeA.ID)
	assert.ErrorIs(t, err, models.ErrInvalidState)

	_, err = e.engine.Expire(ctx, issued.Voucher.Code)
	assert.ErrorIs(t, err, models.ErrInvalidState)

	d, err := e.engine.Lookup(ctx, issued.Voucher.Code)
	require.NoError(t, err)
	assert.Equal(t, models.VoucherExpired, d.Voucher.Status)
	assert.NotNil(t, d.Voucher.ExpiredAt)
}

func TestCodeCollisionIsRetried(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.fund(t, 120)

	// The second claim first draws the code the first claim already holds.
	gen := NewCodeGenerator("VOU", 6)
	gen.rand = bytes.NewReader(append(make([]byte, 12), 1, 1, 1, 1, 1, 1))
	engine := NewEngine(e.db, e.db, e.ledger, Options{Codes: gen})

	first, err := engine.Issue(ctx, IssueRequest{MemberID: e.member.ID, RewardID: e.reward.ID})
	require.NoError(t, err)
	assert.Equal(t, "VOU-AAAAAA", first.Voucher.Code)

	second, err := engine.Issue(ctx, IssueRequest{MemberID: e.member.ID, RewardID: e.reward.ID})
	require.NoError(t, err)
	assert.Equal(t, "VOU-BBBBBB", second.Voucher.Code)
}

// blindStore hides existing codes so collisions surface at insert time.
type blindStore struct {
	storage.VoucherStore
}

func (blindStore) VoucherCodeExists(context.Context, string) (bool, error) { return false, nil }

func TestInsertCollisionRollsBackAndRetries(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.fund(t, 120)

	gen := NewCodeGenerator("VOU", 6)
	gen.rand = bytes.NewReader(append(append(make([]byte, 6), make([]byte, 6)...), 2, 2, 2, 2, 2, 2))
	engine := NewEngine(blindStore{e.db}, e.db, e.ledger, Options{Codes: gen})

	_, err := engine.Issue(ctx, IssueRequest{MemberID: e.member.ID, RewardID: e.reward.ID})
	require.NoError(t, err)

	second, err := engine.Issue(ctx, IssueRequest{MemberID: e.member.ID, RewardID: e.reward.ID})
	require.NoError(t, err)
	assert.Equal(t, "VOU-CCCCCC", second.Voucher.Code)

	balance, _ := e.ledger.Balance(ctx, e.member.ID)
	assert.Equal(t, int64(0), balance, "the rolled back attempt must not debit")
}

func TestValidation(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.engine.Issue(ctx, IssueRequest{RewardID: e.reward.ID})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = e.engine.Lookup(ctx, "   ")
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = e.engine.Redeem(ctx, "VOU-AAAAAA", "")
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = e.engine.ListRedeemedAtStore(ctx, "", 5)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func lower(s string) string {
	return string(bytes.ToLower([]byte(s)))
}
