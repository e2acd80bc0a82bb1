package billing

import (
	"context"

	"shopdesk/internal/core/id"
)

// repoReader adapts the persistence repositories to EntitlementReader.
type repoReader struct {
	subs        SubscriptionRepository
	grants      GrantRepository
	workerPerms WorkerPermissionRepository
}

// NewRepositoryReader builds an EntitlementReader over the repositories.
func NewRepositoryReader(subs SubscriptionRepository, grants GrantRepository, workerPerms WorkerPermissionRepository) EntitlementReader {
	return &repoReader{subs: subs, grants: grants, workerPerms: workerPerms}
}

func (r *repoReader) GetCurrentSubscription(ctx context.Context, adminID id.ID) (*Subscription, error) {
	return r.subs.GetCurrentByAdmin(ctx, adminID)
}

func (r *repoReader) ListFeatureGrants(ctx context.Context, adminID id.ID) ([]FeatureGrant, error) {
	return r.grants.ListByAdmin(ctx, adminID)
}

func (r *repoReader) ListWorkerPermissions(ctx context.Context, workerID id.ID) ([]WorkerPermission, error) {
	return r.workerPerms.ListByWorker(ctx, workerID)
}
