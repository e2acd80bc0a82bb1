package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "shopdesk/internal/core/context"
	"shopdesk/internal/core/id"
	"shopdesk/internal/core/security"
)

func grantFor(adminID id.ID, feature security.Feature, ps security.PermissionSet) FeatureGrant {
	return FeatureGrant{
		ID:            id.New(),
		AdminID:       adminID,
		Feature:       feature,
		PermissionSet: ps,
	}
}

func TestEvaluate_Admin(t *testing.T) {
	adminID := id.New()
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		sub     *Subscription
		grants  []FeatureGrant
		feature security.Feature
		action  security.Action
		want    bool
	}{
		{
			name:    "no subscription and no grants defaults open",
			feature: security.FeatureSales,
			action:  security.ActionCreate,
			want:    true,
		},
		{
			name: "expired subscription denies everything",
			sub: &Subscription{
				Status:  StatusActive,
				EndDate: &past,
			},
			grants:  []FeatureGrant{grantFor(adminID, security.FeatureSales, security.FullAccess())},
			feature: security.FeatureSales,
			action:  security.ActionView,
			want:    false,
		},
		{
			name: "free subscription with past end date still allows",
			sub: &Subscription{
				Status:  StatusFree,
				EndDate: &past,
			},
			grants:  []FeatureGrant{grantFor(adminID, security.FeatureSales, security.FullAccess())},
			feature: security.FeatureSales,
			action:  security.ActionView,
			want:    true,
		},
		{
			name: "nil end date means lifetime access",
			sub: &Subscription{
				Status: StatusActive,
			},
			grants:  []FeatureGrant{grantFor(adminID, security.FeatureSales, security.FullAccess())},
			feature: security.FeatureSales,
			action:  security.ActionDelete,
			want:    true,
		},
		{
			name: "grant row decides the action bit",
			sub: &Subscription{
				Status:  StatusActive,
				EndDate: &future,
			},
			grants:  []FeatureGrant{grantFor(adminID, security.FeatureSales, security.ViewOnly())},
			feature: security.FeatureSales,
			action:  security.ActionCreate,
			want:    false,
		},
		{
			name: "feature absent from grants denies when grants exist",
			sub: &Subscription{
				Status:  StatusActive,
				EndDate: &future,
			},
			grants:  []FeatureGrant{grantFor(adminID, security.FeatureSales, security.FullAccess())},
			feature: security.FeatureReports,
			action:  security.ActionView,
			want:    false,
		},
		{
			name: "cancelled with future end date retains access",
			sub: &Subscription{
				Status:  StatusCancelled,
				EndDate: &future,
			},
			grants:  []FeatureGrant{grantFor(adminID, security.FeatureSales, security.FullAccess())},
			feature: security.FeatureSales,
			action:  security.ActionView,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(appctx.RoleAdmin, tt.sub, tt.grants, nil, now, tt.feature, tt.action)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_Worker(t *testing.T) {
	now := time.Now()
	perms := []WorkerPermission{
		{
			ID:            id.New(),
			WorkerID:      id.New(),
			Feature:       security.FeatureSales,
			PermissionSet: security.PermissionSet{CanView: true, CanCreate: true},
		},
	}

	assert.True(t, Evaluate(appctx.RoleWorker, nil, nil, perms, now, security.FeatureSales, security.ActionCreate))
	assert.False(t, Evaluate(appctx.RoleWorker, nil, nil, perms, now, security.FeatureSales, security.ActionDelete))

	// No row for the feature denies, unlike admin default-open.
	assert.False(t, Evaluate(appctx.RoleWorker, nil, nil, perms, now, security.FeatureInventory, security.ActionView))
	assert.False(t, Evaluate(appctx.RoleWorker, nil, nil, nil, now, security.FeatureSales, security.ActionView))
}

func TestEvaluate_UnknownRoleDenies(t *testing.T) {
	now := time.Now()
	assert.False(t, Evaluate("", nil, nil, nil, now, security.FeatureSales, security.ActionView))
	assert.False(t, Evaluate(appctx.RoleSuperAdmin, nil, nil, nil, now, security.FeatureSales, security.ActionView))
}

// --- Resolver ---

type stubReader struct {
	sub     *Subscription
	subErr  error
	grants  []FeatureGrant
	grantsE error
	perms   []WorkerPermission
	permsE  error
}

func (s *stubReader) GetCurrentSubscription(ctx context.Context, adminID id.ID) (*Subscription, error) {
	return s.sub, s.subErr
}

func (s *stubReader) ListFeatureGrants(ctx context.Context, adminID id.ID) ([]FeatureGrant, error) {
	return s.grants, s.grantsE
}

func (s *stubReader) ListWorkerPermissions(ctx context.Context, workerID id.ID) ([]WorkerPermission, error) {
	return s.perms, s.permsE
}

func TestResolver_FailsClosedOnLookupError(t *testing.T) {
	ctx := context.Background()
	adminID := id.New()

	r := NewResolver(&stubReader{subErr: errors.New("db down")})
	allowed := r.Allowed(ctx, Principal{ID: adminID, Role: appctx.RoleAdmin},
		security.FeatureSales, security.ActionView)
	assert.False(t, allowed)

	r = NewResolver(&stubReader{grantsE: errors.New("db down")})
	allowed = r.Allowed(ctx, Principal{ID: adminID, Role: appctx.RoleAdmin},
		security.FeatureSales, security.ActionView)
	assert.False(t, allowed)

	r = NewResolver(&stubReader{permsE: errors.New("db down")})
	allowed = r.Allowed(ctx, Principal{ID: id.New(), Role: appctx.RoleWorker},
		security.FeatureSales, security.ActionView)
	assert.False(t, allowed)
}

func TestResolver_AdminHappyPath(t *testing.T) {
	ctx := context.Background()
	adminID := id.New()
	future := time.Now().Add(24 * time.Hour)

	reader := &stubReader{
		sub: &Subscription{Status: StatusActive, EndDate: &future},
		grants: []FeatureGrant{
			grantFor(adminID, security.FeatureSales, security.FullAccess()),
		},
	}
	r := NewResolver(reader)

	require.True(t, r.Allowed(ctx, Principal{ID: adminID, Role: appctx.RoleAdmin},
		security.FeatureSales, security.ActionCreate))
	require.False(t, r.Allowed(ctx, Principal{ID: adminID, Role: appctx.RoleAdmin},
		security.FeatureReports, security.ActionView))
}

func TestResolver_ExpiryTakesEffectImmediately(t *testing.T) {
	ctx := context.Background()
	adminID := id.New()
	end := time.Now().Add(time.Minute)

	reader := &stubReader{
		sub: &Subscription{Status: StatusActive, EndDate: &end},
		grants: []FeatureGrant{
			grantFor(adminID, security.FeatureSales, security.FullAccess()),
		},
	}
	r := NewResolver(reader)
	principal := Principal{ID: adminID, Role: appctx.RoleAdmin}

	assert.True(t, r.Allowed(ctx, principal, security.FeatureSales, security.ActionView))

	// Advance the resolver's clock past the end date. No caching: the very
	// next check denies.
	r.now = func() time.Time { return end.Add(time.Second) }
	assert.False(t, r.Allowed(ctx, principal, security.FeatureSales, security.ActionView))
}
