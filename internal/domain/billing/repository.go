package billing

import (
	"context"

	"shopdesk/internal/core/id"
	"shopdesk/internal/core/security"
)

// PlanRepository persists plans (super-admin managed).
type PlanRepository interface {
	Create(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, planID id.ID) (*Plan, error)
	GetByCode(ctx context.Context, code string) (*Plan, error)

	// Update modifies an existing plan (with optimistic locking).
	Update(ctx context.Context, plan *Plan) error

	// SetDeletionMark soft-deletes or restores a plan. Marked plans stay
	// referenced by existing subscriptions but cannot be newly assigned.
	SetDeletionMark(ctx context.Context, planID id.ID, marked bool) error

	List(ctx context.Context, includeDeleted bool) ([]Plan, error)
}

// SubscriptionRepository persists plan bindings.
type SubscriptionRepository interface {
	// Create inserts a fresh binding. Assignment is always a new row,
	// never a mutation of the previous one.
	Create(ctx context.Context, sub *Subscription) error

	// GetCurrentByAdmin returns the latest binding for an admin, or
	// (nil, nil) when the admin has never been assigned a plan.
	GetCurrentByAdmin(ctx context.Context, adminID id.ID) (*Subscription, error)

	ListByAdmin(ctx context.Context, adminID id.ID) ([]Subscription, error)
	List(ctx context.Context, status SubscriptionStatus) ([]Subscription, error)

	// UpdateStatus persists an explicit status change (cancel, expire sweep).
	UpdateStatus(ctx context.Context, subID id.ID, status SubscriptionStatus) error
}

// GrantRepository persists per-admin feature grants.
type GrantRepository interface {
	ListByAdmin(ctx context.Context, adminID id.ID) ([]FeatureGrant, error)

	// ReplaceForAdmin atomically swaps the admin's entire grant set:
	// delete all existing rows, insert the new ones, in one transaction.
	// Callers must treat an error as "nothing replaced" and retry the
	// whole operation; partial grant sets are never valid.
	ReplaceForAdmin(ctx context.Context, adminID id.ID, grants []FeatureGrant) error
}

// WorkerPermissionRepository persists per-worker permission rows.
type WorkerPermissionRepository interface {
	ListByWorker(ctx context.Context, workerID id.ID) ([]WorkerPermission, error)
	Upsert(ctx context.Context, perm *WorkerPermission) error
	Delete(ctx context.Context, workerID id.ID, feature security.Feature) error
}
