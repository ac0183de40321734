package auth

import (
	"context"

	"github.com/mmynk/poinku/internal/models"
	"github.com/mmynk/poinku/internal/tenant"
)

// Identity is the result of a successful login. It becomes the session claims.
type Identity struct {
	Subject string
	Kind    tenant.Kind
	Role    models.Role
	StoreID string

	// Name is the member name or staff username, for display only.
	Name string
}

// Actor converts the identity into the request-scoped actor.
func (i *Identity) Actor() tenant.Actor {
	return tenant.Actor{Subject: i.Subject, Kind: i.Kind, Role: i.Role, StoreID: i.StoreID}
}

// Authenticator defines the interface for login implementations.
// Members log in with phone + PIN and staff with username + password; both
// sit behind this interface so the RPC layer issues sessions the same way.
type Authenticator interface {
	// Authenticate verifies the identifier and secret. Any mismatch, including
	// an unknown identifier, returns an error wrapping models.ErrInvalidCredential.
	Authenticate(ctx context.Context, identifier, secret string) (*Identity, error)
}
