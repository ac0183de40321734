// Package tenant carries the acting identity and store through a request.
//
// Store identity stamps journal entries and redemptions for audit. It never
// decides which member may be served: members are global.
package tenant

import (
	"context"

	"github.com/mmynk/poinku/internal/models"
)

// Kind distinguishes members from staff sessions.
type Kind string

const (
	KindMember Kind = "member"
	KindStaff  Kind = "staff"
)

// Actor is the authenticated caller.
type Actor struct {
	// Subject is the member ID or staff ID.
	Subject string
	Kind    Kind

	// Role is set for staff only.
	Role models.Role

	// StoreID is the store the staff member works at, or the store a member
	// registered at. Empty for admins without a home store.
	StoreID string
}

// IsAdmin reports whether the actor is an administrator.
func (a Actor) IsAdmin() bool {
	return a.Kind == KindStaff && a.Role == models.RoleAdmin
}

// IsStaff reports whether the actor is any staff account, including admins.
func (a Actor) IsStaff() bool {
	return a.Kind == KindStaff
}

// IsMember reports whether the actor is the given member.
func (a Actor) IsMember(memberID string) bool {
	return a.Kind == KindMember && a.Subject == memberID
}

type contextKey struct{}

// WithActor returns a context carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// FromContext returns the actor installed by the auth interceptor.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(contextKey{}).(Actor)
	return a, ok
}

// StoreID returns the acting store, preferring an explicit override.
// Staff may act on behalf of a different store only when they are admins.
func StoreID(ctx context.Context, override string) string {
	a, ok := FromContext(ctx)
	if !ok {
		return override
	}
	if override != "" && (a.IsAdmin() || a.StoreID == "") {
		return override
	}
	if a.StoreID != "" {
		return a.StoreID
	}
	return override
}
