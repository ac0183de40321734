package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/poinku/internal/models"
)

// CreateStore inserts a store. Codes are unique.
func (s *DB) CreateStore(ctx context.Context, store *models.Store) error {
	if store.ID == "" {
		store.ID = uuid.New().String()
	}
	if store.CreatedAt.IsZero() {
		store.CreatedAt = now()
	}

	_, err := s.db.ExecContext(ctx,
		s.q("INSERT INTO stores (id, name, code, address, created_at) VALUES (?, ?, ?, ?, ?)"),
		store.ID, store.Name, store.Code, store.Address, toMillis(store.CreatedAt),
	)
	if err != nil {
		if errors.Is(s.d.classify(err), errUnique) {
			return models.ErrStoreCodeTaken
		}
		return s.fail("failed to create store", err)
	}
	return nil
}

// GetStore retrieves a store by ID.
func (s *DB) GetStore(ctx context.Context, id string) (*models.Store, error) {
	var (
		store     models.Store
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		s.q("SELECT id, name, code, address, created_at FROM stores WHERE id = ?"), id,
	).Scan(&store.ID, &store.Name, &store.Code, &store.Address, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrStoreNotFound
	}
	if err != nil {
		return nil, s.fail("failed to get store", err)
	}
	store.CreatedAt = fromMillis(createdAt)
	return &store, nil
}

// ListStores returns all stores ordered by code.
func (s *DB) ListStores(ctx context.Context) ([]*models.Store, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, code, address, created_at FROM stores ORDER BY code")
	if err != nil {
		return nil, s.fail("failed to list stores", err)
	}
	defer rows.Close()

	var stores []*models.Store
	for rows.Next() {
		var (
			store     models.Store
			createdAt int64
		)
		if err := rows.Scan(&store.ID, &store.Name, &store.Code, &store.Address, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		store.CreatedAt = fromMillis(createdAt)
		stores = append(stores, &store)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stores: %w", err)
	}
	return stores, nil
}

// CreateReward inserts a catalog reward.
func (s *DB) CreateReward(ctx context.Context, reward *models.Reward) error {
	if reward.ID == "" {
		reward.ID = uuid.New().String()
	}
	if reward.CreatedAt.IsZero() {
		reward.CreatedAt = now()
	}

	_, err := s.db.ExecContext(ctx,
		s.q("INSERT INTO rewards (id, name, point_cost, value, created_at) VALUES (?, ?, ?, ?, ?)"),
		reward.ID, reward.Name, reward.PointCost, reward.Value.String(), toMillis(reward.CreatedAt),
	)
	if err != nil {
		return s.fail("failed to create reward", err)
	}
	return nil
}

// GetReward retrieves a reward by ID.
func (s *DB) GetReward(ctx context.Context, id string) (*models.Reward, error) {
	var (
		reward    models.Reward
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		s.q("SELECT id, name, point_cost, value, created_at FROM rewards WHERE id = ?"), id,
	).Scan(&reward.ID, &reward.Name, &reward.PointCost, &reward.Value, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrRewardNotFound
	}
	if err != nil {
		return nil, s.fail("failed to get reward", err)
	}
	reward.CreatedAt = fromMillis(createdAt)
	return &reward, nil
}

// UpdateReward changes name, cost and value. Issued vouchers keep the cost
// that was debited for them.
func (s *DB) UpdateReward(ctx context.Context, reward *models.Reward) error {
	res, err := s.db.ExecContext(ctx,
		s.q("UPDATE rewards SET name = ?, point_cost = ?, value = ? WHERE id = ?"),
		reward.Name, reward.PointCost, reward.Value.String(), reward.ID,
	)
	if err != nil {
		return s.fail("failed to update reward", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrRewardNotFound
	}
	return nil
}

// DeleteReward removes a reward that no voucher references.
func (s *DB) DeleteReward(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q("DELETE FROM rewards WHERE id = ?"), id)
	if err != nil {
		if errors.Is(s.d.classify(err), errForeignKey) {
			return fmt.Errorf("reward has issued vouchers: %w", models.ErrInvalidState)
		}
		return s.fail("failed to delete reward", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrRewardNotFound
	}
	return nil
}

// ListRewards returns the catalog ordered by point cost.
func (s *DB) ListRewards(ctx context.Context) ([]*models.Reward, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, point_cost, value, created_at FROM rewards ORDER BY point_cost, name")
	if err != nil {
		return nil, s.fail("failed to list rewards", err)
	}
	defer rows.Close()

	var rewards []*models.Reward
	for rows.Next() {
		var (
			reward    models.Reward
			createdAt int64
		)
		if err := rows.Scan(&reward.ID, &reward.Name, &reward.PointCost, &reward.Value, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		reward.CreatedAt = fromMillis(createdAt)
		rewards = append(rewards, &reward)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rewards: %w", err)
	}
	return rewards, nil
}
