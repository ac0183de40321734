// Package conversion holds the earn-rate setting: the currency amount that
// buys one loyalty point.
package conversion

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mmynk/poinku/internal/models"
	"github.com/mmynk/poinku/internal/storage"
)

// SettingKey is the settings row that stores the divisor.
const SettingKey = "poin_divisor"

// DefaultDivisor applies until an administrator stores a divisor.
const DefaultDivisor int64 = 25000

// Policy reads and writes the divisor. It keeps no in-process copy, so every
// Divisor call sees the most recent committed value.
type Policy struct {
	settings storage.SettingsStore
	fallback int64
}

// NewPolicy creates a Policy backed by settings. A non-positive fallback
// selects DefaultDivisor.
func NewPolicy(settings storage.SettingsStore, fallback int64) *Policy {
	if fallback <= 0 {
		fallback = DefaultDivisor
	}
	return &Policy{settings: settings, fallback: fallback}
}

// Divisor returns a snapshot of the current divisor.
func (p *Policy) Divisor(ctx context.Context) (int64, error) {
	raw, ok, err := p.settings.GetSetting(ctx, SettingKey)
	if err != nil {
		return 0, fmt.Errorf("failed to read divisor: %w", err)
	}
	if !ok {
		return p.fallback, nil
	}

	divisor, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || divisor <= 0 {
		slog.Warn("Ignoring malformed stored divisor", "value", raw, "fallback", p.fallback)
		return p.fallback, nil
	}
	return divisor, nil
}

// SetDivisor stores a new divisor. The most recent write wins.
func (p *Policy) SetDivisor(ctx context.Context, divisor int64) error {
	if divisor <= 0 {
		return models.Invalid("divisor", "must be a positive integer")
	}
	if err := p.settings.PutSetting(ctx, SettingKey, strconv.FormatInt(divisor, 10)); err != nil {
		return fmt.Errorf("failed to store divisor: %w", err)
	}
	slog.Info("Conversion divisor updated", "divisor", divisor)
	return nil
}
