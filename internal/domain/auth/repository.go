package auth

import (
	"context"

	"shopdesk/internal/core/id"
)

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update modifies an existing user (with optimistic locking).
	Update(ctx context.Context, user *User) error

	// ListWorkers returns the workers of an admin's shop.
	ListWorkers(ctx context.Context, adminID id.ID) ([]User, error)

	// ListAdmins returns all shop admins (super-admin console).
	ListAdmins(ctx context.Context) ([]User, error)
}
