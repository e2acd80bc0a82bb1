package billing

import (
	"context"
	"time"

	appctx "shopdesk/internal/core/context"
	"shopdesk/internal/core/id"
	"shopdesk/internal/core/security"
	"shopdesk/pkg/logger"
)

// Principal is the subject of an entitlement check.
type Principal struct {
	ID   id.ID
	Role string // appctx.RoleAdmin or appctx.RoleWorker
}

// Evaluate answers "can principal P perform action A on feature F" as a pure
// function of the already-fetched permission state. No I/O, no clock reads.
//
// Resolution order for admins:
//  1. expired subscription (and not free) denies everything;
//  2. if any grant rows exist, the row for the feature decides (absent row
//     denies);
//  3. no grants configured at all means full default access.
//
// Workers are decided solely by their permission rows; no row denies.
// Unknown roles deny.
func Evaluate(
	role string,
	sub *Subscription,
	grants []FeatureGrant,
	workerPerms []WorkerPermission,
	now time.Time,
	feature security.Feature,
	action security.Action,
) bool {
	switch role {
	case appctx.RoleAdmin:
		if sub != nil && sub.IsExpired(now) {
			return false
		}
		if len(grants) > 0 {
			for _, g := range grants {
				if g.Feature == feature {
					return g.Allows(action)
				}
			}
			return false
		}
		// Admin was never assigned a plan: default-open.
		return true

	case appctx.RoleWorker:
		for _, p := range workerPerms {
			if p.Feature == feature {
				return p.Allows(action)
			}
		}
		return false
	}

	return false
}

// EntitlementReader supplies the permission state the resolver needs.
// Implemented by the postgres billing repositories.
type EntitlementReader interface {
	// GetCurrentSubscription returns the admin's subscription, or nil when
	// the admin has none.
	GetCurrentSubscription(ctx context.Context, adminID id.ID) (*Subscription, error)

	// ListFeatureGrants returns all grant rows for an admin.
	ListFeatureGrants(ctx context.Context, adminID id.ID) ([]FeatureGrant, error)

	// ListWorkerPermissions returns all permission rows for a worker.
	ListWorkerPermissions(ctx context.Context, workerID id.ID) ([]WorkerPermission, error)
}

// Resolver fetches permission state and evaluates entitlement checks.
//
// Lookups are performed on every call; results are never cached, so a plan
// reassignment or expiry takes effect on the next request.
type Resolver struct {
	reader EntitlementReader
	now    func() time.Time
}

// NewResolver creates a resolver over the given reader.
func NewResolver(reader EntitlementReader) *Resolver {
	return &Resolver{reader: reader, now: time.Now}
}

// Allowed reports whether the principal may perform action on feature.
//
// Any lookup failure denies: entitlement is security-sensitive, so the
// resolver fails closed and logs the cause instead of propagating it.
func (r *Resolver) Allowed(ctx context.Context, principal Principal, feature security.Feature, action security.Action) bool {
	switch principal.Role {
	case appctx.RoleAdmin:
		sub, err := r.reader.GetCurrentSubscription(ctx, principal.ID)
		if err != nil {
			logger.Warn(ctx, "entitlement denied: subscription lookup failed",
				"admin_id", principal.ID, "error", err)
			return false
		}
		grants, err := r.reader.ListFeatureGrants(ctx, principal.ID)
		if err != nil {
			logger.Warn(ctx, "entitlement denied: grant lookup failed",
				"admin_id", principal.ID, "error", err)
			return false
		}
		return Evaluate(principal.Role, sub, grants, nil, r.now(), feature, action)

	case appctx.RoleWorker:
		perms, err := r.reader.ListWorkerPermissions(ctx, principal.ID)
		if err != nil {
			logger.Warn(ctx, "entitlement denied: worker permission lookup failed",
				"worker_id", principal.ID, "error", err)
			return false
		}
		return Evaluate(principal.Role, nil, nil, perms, r.now(), feature, action)
	}

	return false
}
