package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/mmynk/poinku/internal/models"
	"github.com/mmynk/poinku/internal/tenant"
)

// MemberStorage defines the member persistence the authenticator needs.
type MemberStorage interface {
	CreateMember(ctx context.Context, member *models.Member) error
	GetMemberByPhone(ctx context.Context, phone string) (*models.Member, error)
	UpdateMemberPIN(ctx context.Context, id, pinHash string) error
	ListMembers(ctx context.Context, storeID string, limit int) ([]*models.Member, error)
}

// MemberAuthenticator registers members and logs them in by phone + PIN.
type MemberAuthenticator struct {
	storage MemberStorage
	hasher  *Hasher
	minPIN  int
	logger  *slog.Logger
}

// NewMemberAuthenticator creates a member authenticator.
func NewMemberAuthenticator(storage MemberStorage, hasher *Hasher, minPIN int, logger *slog.Logger) *MemberAuthenticator {
	if minPIN <= 0 {
		minPIN = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemberAuthenticator{storage: storage, hasher: hasher, minPIN: minPIN, logger: logger}
}

// NormalizePhone keeps digits and a leading '+', dropping spaces, dashes
// and other punctuation.
func NormalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	digits := 0
	for i, r := range phone {
		switch {
		case r == '+' && i == 0:
			b.WriteRune(r)
		case unicode.IsDigit(r):
			b.WriteRune(r)
			digits++
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return "", models.Invalid("phone", fmt.Sprintf("unexpected character %q", r))
		}
	}
	if digits < 6 || digits > 15 {
		return "", models.Invalid("phone", "must contain 6 to 15 digits")
	}
	return b.String(), nil
}

// ValidatePIN checks the PIN meets the minimum length.
func (a *MemberAuthenticator) ValidatePIN(pin string) error {
	if len(pin) < a.minPIN {
		return models.Invalid("pin", fmt.Sprintf("must be at least %d characters", a.minPIN))
	}
	return nil
}

// RegisterInput describes a new member.
type RegisterInput struct {
	Name    string
	Phone   string
	PIN     string
	StoreID string
}

// Register creates a member with a hashed PIN, stamped with the registering store.
func (a *MemberAuthenticator) Register(ctx context.Context, in RegisterInput) (*models.Member, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.Invalid("name", "is required")
	}
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}
	if err := a.ValidatePIN(in.PIN); err != nil {
		return nil, err
	}

	hashed, err := a.hasher.Hash(in.PIN)
	if err != nil {
		return nil, err
	}

	member := &models.Member{
		Name:    name,
		Phone:   phone,
		PINHash: hashed,
		StoreID: in.StoreID,
	}
	if err := a.storage.CreateMember(ctx, member); err != nil {
		return nil, err
	}

	a.logger.Info("Member registered", "member_id", member.ID, "store_id", member.StoreID)
	return member, nil
}

// Authenticate verifies phone + PIN. A legacy plaintext PIN is rehashed and
// stored before the login succeeds.
func (a *MemberAuthenticator) Authenticate(ctx context.Context, phone, pin string) (*Identity, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, models.ErrInvalidCredential
	}

	member, err := a.storage.GetMemberByPhone(ctx, normalized)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredential
	}
	if err != nil {
		return nil, err
	}

	ok, upgrade := a.hasher.Verify(member.PINHash, pin)
	if !ok {
		return nil, models.ErrInvalidCredential
	}
	if upgrade {
		hashed, err := a.hasher.Hash(pin)
		if err != nil {
			return nil, err
		}
		if err := a.storage.UpdateMemberPIN(ctx, member.ID, hashed); err != nil {
			return nil, fmt.Errorf("failed to upgrade legacy PIN: %w", err)
		}
		a.logger.Info("Upgraded legacy member PIN", "member_id", member.ID)
	}

	return &Identity{
		Subject: member.ID,
		Kind:    tenant.KindMember,
		StoreID: member.StoreID,
		Name:    member.Name,
	}, nil
}

// Lookup finds a member by phone number in any formatting, for the till.
func (a *MemberAuthenticator) Lookup(ctx context.Context, phone string) (*models.Member, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	return a.storage.GetMemberByPhone(ctx, normalized)
}

// List returns members newest first. An empty storeID lists every store.
func (a *MemberAuthenticator) List(ctx context.Context, storeID string, limit int) ([]*models.Member, error) {
	if limit < 0 {
		return nil, models.Invalid("limit", "must not be negative")
	}
	return a.storage.ListMembers(ctx, storeID, limit)
}
