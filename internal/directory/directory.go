// Package directory manages the store and reward catalog.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/mmynk/poinku/internal/models"
	"github.com/mmynk/poinku/internal/storage"
)

// Directory validates and persists stores and rewards.
type Directory struct {
	store  storage.CatalogStore
	logger *slog.Logger
}

// New creates a Directory.
func New(store storage.CatalogStore, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{store: store, logger: logger}
}

// NormalizeStoreCode upper-cases the code and strips whitespace. The result
// must be 3 to 5 letters or digits.
func NormalizeStoreCode(code string) (string, error) {
	code = strings.ToUpper(strings.Join(strings.Fields(code), ""))
	if len(code) < 3 || len(code) > 5 {
		return "", models.Invalid("code", "must be 3 to 5 characters")
	}
	for _, r := range code {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return "", models.Invalid("code", "must contain only letters and digits")
		}
	}
	return code, nil
}

// StoreInput describes a new store.
type StoreInput struct {
	Name    string
	Code    string
	Address string
}

// CreateStore adds a branch.
func (d *Directory) CreateStore(ctx context.Context, in StoreInput) (*models.Store, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.Invalid("name", "is required")
	}
	code, err := NormalizeStoreCode(in.Code)
	if err != nil {
		return nil, err
	}

	store := &models.Store{Name: name, Code: code, Address: strings.TrimSpace(in.Address)}
	if err := d.store.CreateStore(ctx, store); err != nil {
		return nil, err
	}

	d.logger.Info("Store created", "store_id", store.ID, "code", store.Code)
	return store, nil
}

// GetStore returns a store by ID.
func (d *Directory) GetStore(ctx context.Context, id string) (*models.Store, error) {
	return d.store.GetStore(ctx, id)
}

// ListStores returns every store ordered by code.
func (d *Directory) ListStores(ctx context.Context) ([]*models.Store, error) {
	return d.store.ListStores(ctx)
}

// RewardInput describes a reward's editable fields.
type RewardInput struct {
	Name      string
	PointCost int64
	Value     decimal.Decimal
}

func (in RewardInput) validate() (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", models.Invalid("name", "is required")
	}
	if in.PointCost <= 0 {
		return "", models.Invalid("point_cost", "must be positive")
	}
	if in.Value.IsNegative() {
		return "", models.Invalid("value", "must not be negative")
	}
	return name, nil
}

// CreateReward adds a catalog item.
func (d *Directory) CreateReward(ctx context.Context, in RewardInput) (*models.Reward, error) {
	name, err := in.validate()
	if err != nil {
		return nil, err
	}

	reward := &models.Reward{Name: name, PointCost: in.PointCost, Value: in.Value}
	if err := d.store.CreateReward(ctx, reward); err != nil {
		return nil, err
	}

	d.logger.Info("Reward created", "reward_id", reward.ID, "point_cost", reward.PointCost)
	return reward, nil
}

// UpdateReward replaces a reward's fields. Vouchers already issued keep the
// point cost that was debited for them.
func (d *Directory) UpdateReward(ctx context.Context, id string, in RewardInput) (*models.Reward, error) {
	name, err := in.validate()
	if err != nil {
		return nil, err
	}

	reward, err := d.store.GetReward(ctx, id)
	if err != nil {
		return nil, err
	}
	reward.Name = name
	reward.PointCost = in.PointCost
	reward.Value = in.Value

	if err := d.store.UpdateReward(ctx, reward); err != nil {
		return nil, err
	}

	d.logger.Info("Reward updated", "reward_id", reward.ID, "point_cost", reward.PointCost)
	return reward, nil
}

// DeleteReward removes a reward that has never been claimed.
func (d *Directory) DeleteReward(ctx context.Context, id string) error {
	if err := d.store.DeleteReward(ctx, id); err != nil {
		return fmt.Errorf("failed to delete reward %s: %w", id, err)
	}
	d.logger.Info("Reward deleted", "reward_id", id)
	return nil
}

// GetReward returns a reward by ID.
func (d *Directory) GetReward(ctx context.Context, id string) (*models.Reward, error) {
	return d.store.GetReward(ctx, id)
}

// ListRewards returns the catalog ordered by point cost.
func (d *Directory) ListRewards(ctx context.Context) ([]*models.Reward, error) {
	return d.store.ListRewards(ctx)
}
