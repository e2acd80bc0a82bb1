package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopdesk/internal/core/id"
	"shopdesk/internal/core/security"
	"shopdesk/internal/core/types"
)

func TestSubscription_EffectiveStatus(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name   string
		status SubscriptionStatus
		end    *time.Time
		want   SubscriptionStatus
	}{
		{"active with future end", StatusActive, &future, StatusActive},
		{"active past end expires", StatusActive, &past, StatusExpired},
		{"trial past end expires", StatusTrial, &past, StatusExpired},
		{"cancelled past end expires", StatusCancelled, &past, StatusExpired},
		{"cancelled with future end stays cancelled", StatusCancelled, &future, StatusCancelled},
		{"free never expires", StatusFree, &past, StatusFree},
		{"nil end date is lifetime", StatusActive, nil, StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &Subscription{Status: tt.status, EndDate: tt.end}
			assert.Equal(t, tt.want, sub.EffectiveStatus(now))
		})
	}
}

func TestPlan_Validate(t *testing.T) {
	ctx := context.Background()

	plan := NewPlan("Standard", "standard")
	plan.DurationDays = 30
	require.NoError(t, plan.Validate(ctx))

	noName := NewPlan("", "x")
	noName.DurationDays = 30
	assert.Error(t, noName.Validate(ctx))

	negative := NewPlan("Bad", "bad")
	negative.DurationDays = 30
	negative.MonthlyPrice = types.MustMoney("-1")
	assert.Error(t, negative.Validate(ctx))

	noDuration := NewPlan("Short", "short")
	assert.Error(t, noDuration.Validate(ctx))

	lifetime := NewPlan("Forever", "forever")
	lifetime.IsLifetime = true
	assert.NoError(t, lifetime.Validate(ctx))
}

func TestSubscription_Validate(t *testing.T) {
	ctx := context.Background()
	start := time.Now()
	before := start.Add(-time.Hour)

	sub := &Subscription{
		AdminID:   id.New(),
		PlanID:    id.New(),
		StartDate: start,
		EndDate:   &before,
	}
	assert.Error(t, sub.Validate(ctx))

	sub.EndDate = nil
	assert.NoError(t, sub.Validate(ctx))
}

func TestGrantsFromPlan(t *testing.T) {
	adminID := id.New()
	plan := NewPlan("Standard", "standard")
	plan.Features = FeatureMatrix{
		security.FeatureSales:     security.FullAccess(),
		security.FeatureDashboard: security.ViewOnly(),
	}

	grants := GrantsFromPlan(adminID, plan)
	require.Len(t, grants, 2)

	byFeature := make(map[security.Feature]FeatureGrant)
	for _, g := range grants {
		assert.Equal(t, adminID, g.AdminID)
		assert.Equal(t, plan.ID, g.PlanID)
		byFeature[g.Feature] = g
	}

	assert.True(t, byFeature[security.FeatureSales].CanDelete)
	assert.True(t, byFeature[security.FeatureDashboard].CanView)
	assert.False(t, byFeature[security.FeatureDashboard].CanCreate)

	// Features absent from the matrix produce no row.
	_, ok := byFeature[security.FeatureReports]
	assert.False(t, ok)
}

func TestPlan_PriceFor(t *testing.T) {
	plan := NewPlan("Standard", "standard")
	plan.MonthlyPrice = types.MustMoney("24.99")
	plan.YearlyPrice = types.MustMoney("249.00")

	assert.True(t, plan.PriceFor(CycleMonthly).Equal(types.MustMoney("24.99")))
	assert.True(t, plan.PriceFor(CycleYearly).Equal(types.MustMoney("249.00")))
}
