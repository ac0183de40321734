package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies PINs and staff passwords with bcrypt.
//
// Accounts migrated from the legacy system may still store the secret in
// plaintext. While legacy mode is on, a plaintext match is accepted and
// reported as needing an upgrade; the caller must rehash and persist before
// completing the login. With legacy mode off, plaintext rows never match.
type Hasher struct {
	cost   int
	legacy bool
}

// NewHasher creates a Hasher. A cost outside bcrypt's range selects bcrypt.DefaultCost.
func NewHasher(cost int, legacyPlaintext bool) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost, legacy: legacyPlaintext}
}

// Hash returns the bcrypt hash of secret.
func (h *Hasher) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash credential: %w", err)
	}
	return string(hashed), nil
}

// Verify compares secret with the stored credential. upgrade is true when the
// match came from a legacy plaintext row.
func (h *Hasher) Verify(stored, secret string) (ok, upgrade bool) {
	if IsHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(secret)) == nil, false
	}
	if !h.legacy || stored == "" {
		return false, false
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(secret)) == 1 {
		return true, true
	}
	return false, false
}

// IsHashed reports whether stored looks like a bcrypt hash.
func IsHashed(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}
