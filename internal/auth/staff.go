package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/poinku/internal/models"
	"github.com/mmynk/poinku/internal/tenant"
)

// StaffStorage defines the staff persistence the authenticator needs.
type StaffStorage interface {
	CreateStaff(ctx context.Context, staff *models.Staff) error
	GetStaff(ctx context.Context, id string) (*models.Staff, error)
	GetStaffByUsername(ctx context.Context, username string) (*models.Staff, error)
	ListStaff(ctx context.Context) ([]*models.Staff, error)
	UpdateStaffPassword(ctx context.Context, id, passwordHash string) error
	SetStaffActive(ctx context.Context, id string, active bool) error
}

// minPasswordLength applies to staff passwords.
const minPasswordLength = 6

// StaffAuthenticator creates staff accounts and logs them in.
type StaffAuthenticator struct {
	storage StaffStorage
	hasher  *Hasher
	logger  *slog.Logger
}

// NewStaffAuthenticator creates a staff authenticator.
func NewStaffAuthenticator(storage StaffStorage, hasher *Hasher, logger *slog.Logger) *StaffAuthenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &StaffAuthenticator{storage: storage, hasher: hasher, logger: logger}
}

// StaffInput describes a new staff account.
type StaffInput struct {
	Username string
	Password string
	Role     models.Role
	StoreID  string
}

// Create adds an active staff account with a hashed password. Cashiers must
// belong to a store; admins may not.
func (a *StaffAuthenticator) Create(ctx context.Context, in StaffInput) (*models.Staff, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" {
		return nil, models.Invalid("username", "is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, models.Invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if !in.Role.Valid() {
		return nil, models.Invalid("role", fmt.Sprintf("unknown role %q", in.Role))
	}
	if in.Role == models.RoleStaff && in.StoreID == "" {
		return nil, models.Invalid("store_id", "is required for staff accounts")
	}

	hashed, err := a.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	staff := &models.Staff{
		Username:     username,
		PasswordHash: hashed,
		Role:         in.Role,
		StoreID:      in.StoreID,
		Active:       true,
	}
	if err := a.storage.CreateStaff(ctx, staff); err != nil {
		return nil, err
	}

	a.logger.Info("Staff account created", "staff_id", staff.ID, "role", staff.Role, "store_id", staff.StoreID)
	return staff, nil
}

// Authenticate verifies username + password. Inactive accounts are rejected
// the same way as a wrong password.
func (a *StaffAuthenticator) Authenticate(ctx context.Context, username, password string) (*Identity, error) {
	staff, err := a.storage.GetStaffByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredential
	}
	if err != nil {
		return nil, err
	}
	if !staff.Active {
		return nil, models.ErrInvalidCredential
	}

	ok, upgrade := a.hasher.Verify(staff.PasswordHash, password)
	if !ok {
		return nil, models.ErrInvalidCredential
	}
	if upgrade {
		hashed, err := a.hasher.Hash(password)
		if err != nil {
			return nil, err
		}
		if err := a.storage.UpdateStaffPassword(ctx, staff.ID, hashed); err != nil {
			return nil, fmt.Errorf("failed to upgrade legacy password: %w", err)
		}
		a.logger.Info("Upgraded legacy staff password", "staff_id", staff.ID)
	}

	return &Identity{
		Subject: staff.ID,
		Kind:    tenant.KindStaff,
		Role:    staff.Role,
		StoreID: staff.StoreID,
		Name:    staff.Username,
	}, nil
}

// List returns every staff account.
func (a *StaffAuthenticator) List(ctx context.Context) ([]*models.Staff, error) {
	return a.storage.ListStaff(ctx)
}

// Get returns a staff account by ID.
func (a *StaffAuthenticator) Get(ctx context.Context, id string) (*models.Staff, error) {
	return a.storage.GetStaff(ctx, id)
}

// SetActive enables or disables an account. A disabled account can no
// longer log in, and its open sessions are refused on their next request.
func (a *StaffAuthenticator) SetActive(ctx context.Context, id string, active bool) (*models.Staff, error) {
	if err := a.storage.SetStaffActive(ctx, id, active); err != nil {
		return nil, err
	}
	staff, err := a.storage.GetStaff(ctx, id)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Staff account status changed", "staff_id", staff.ID, "active", staff.Active)
	return staff, nil
}
