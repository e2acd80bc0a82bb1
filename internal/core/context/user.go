// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Role values carried in the user context.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleWorker     = "worker"
)

// UserContext contains authenticated user information.
type UserContext struct {
	UserID string
	// ShopID is the shop (admin account) the principal operates on.
	// For admins it equals UserID; for workers it is the owning admin's ID.
	ShopID    string
	Email     string
	Role      string
	SessionID string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetShopID returns shop ID from context or empty string.
func GetShopID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.ShopID
	}
	return ""
}

// IsSuperAdmin reports whether the context principal is a super admin.
func IsSuperAdmin(ctx context.Context) bool {
	u := GetUser(ctx)
	return u != nil && u.Role == RoleSuperAdmin
}

// HasRole checks if user has specific role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	return u != nil && u.Role == role
}
