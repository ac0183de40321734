package directory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/poinku/internal/models"
	"github.com/mmynk/poinku/internal/storage/sqldb"
)

func newDirectory(t *testing.T) (*Directory, *sqldb.DB) {
	t.Helper()
	db, err := sqldb.NewSQLite(filepath.Join(t.TempDir(), "directory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, nil), db
}

func TestNormalizeStoreCode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "bp01", want: "BP01"},
		{in: " b p 0 1 ", want: "BP01"},
		{in: "jkt", want: "JKT"},
		{in: "ab", wantErr: true},
		{in: "abcdef", wantErr: true},
		{in: "bp-1", wantErr: true},
		{in: "bé01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeStoreCode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	d, _ := newDirectory(t)

	jkt, err := d.CreateStore(ctx, StoreInput{Name: "Jakarta", Code: "jkt01", Address: " Jl. Sudirman 1 "})
	require.NoError(t, err)
	assert.Equal(t, "JKT01", jkt.Code)
	assert.Equal(t, "Jl. Sudirman 1", jkt.Address)

	_, err = d.CreateStore(ctx, StoreInput{Name: "Bandung", Code: "BDG"})
	require.NoError(t, err)

	_, err = d.CreateStore(ctx, StoreInput{Name: "Jakarta 2", Code: "JKT01"})
	assert.ErrorIs(t, err, models.ErrDuplicate)

	_, err = d.CreateStore(ctx, StoreInput{Name: " ", Code: "XYZ"})
	assert.ErrorIs(t, err, models.ErrValidation)

	stores, err := d.ListStores(ctx)
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, "BDG", stores[0].Code)
	assert.Equal(t, "JKT01", stores[1].Code)

	got, err := d.GetStore(ctx, jkt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jakarta", got.Name)

	_, err = d.GetStore(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRewards(t *testing.T) {
	ctx := context.Background()
	d, db := newDirectory(t)

	tumbler, err := d.CreateReward(ctx, RewardInput{Name: "Tumbler", PointCost: 40, Value: decimal.NewFromInt(75000)})
	require.NoError(t, err)
	coffee, err := d.CreateReward(ctx, RewardInput{Name: "Coffee", PointCost: 10, Value: decimal.NewFromInt(25000)})
	require.NoError(t, err)

	rewards, err := d.ListRewards(ctx)
	require.NoError(t, err)
	require.Len(t, rewards, 2)
	assert.Equal(t, coffee.ID, rewards[0].ID)
	assert.Equal(t, tumbler.ID, rewards[1].ID)

	t.Run("validation", func(t *testing.T) {
		_, err := d.CreateReward(ctx, RewardInput{Name: "Free", PointCost: 0})
		assert.ErrorIs(t, err, models.ErrValidation)

		_, err = d.CreateReward(ctx, RewardInput{Name: "Neg", PointCost: 1, Value: decimal.NewFromInt(-1)})
		assert.ErrorIs(t, err, models.ErrValidation)

		_, err = d.CreateReward(ctx, RewardInput{PointCost: 1})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("update", func(t *testing.T) {
		updated, err := d.UpdateReward(ctx, coffee.ID, RewardInput{Name: "Large Coffee", PointCost: 12, Value: decimal.RequireFromString("27500.50")})
		require.NoError(t, err)
		assert.Equal(t, int64(12), updated.PointCost)

		got, err := d.GetReward(ctx, coffee.ID)
		require.NoError(t, err)
		assert.Equal(t, "Large Coffee", got.Name)
		assert.True(t, got.Value.Equal(decimal.RequireFromString("27500.5")))

		_, err = d.UpdateReward(ctx, "missing", RewardInput{Name: "X", PointCost: 1})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, d.DeleteReward(ctx, tumbler.ID))
		_, err := d.GetReward(ctx, tumbler.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)

		err = d.DeleteReward(ctx, tumbler.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("delete claimed reward", func(t *testing.T) {
		member := &models.Member{Name: "Sari", Phone: "+628111", PINHash: "x"}
		require.NoError(t, db.CreateMember(ctx, member))
		_, err := db.Credit(ctx, &models.Transaction{MemberID: member.ID, Kind: models.TransactionEarning, Points: 20})
		require.NoError(t, err)
		_, err = db.Debit(ctx,
			&models.Transaction{MemberID: member.ID, Kind: models.TransactionRedeem, Points: 12},
			&models.Voucher{Code: "VOU-AAAAAA", MemberID: member.ID, RewardID: coffee.ID, PointCost: 12},
		)
		require.NoError(t, err)

		err = d.DeleteReward(ctx, coffee.ID)
		assert.ErrorIs(t, err, models.ErrInvalidState)
	})
}
