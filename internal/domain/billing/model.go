// Package billing provides subscription plans, plan assignment and the
// entitlement resolution logic that gates every shop-level action.
package billing

import (
	"context"
	"time"

	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/id"
	"shopdesk/internal/core/security"
	"shopdesk/internal/core/types"
)

// BillingCycle selects which plan price applies to an assignment.
type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

// FeatureMatrix maps each licensed feature to its permission tuple.
// Stored as JSONB on the plans table.
type FeatureMatrix map[security.Feature]security.PermissionSet

// Clone returns a deep copy of the matrix.
func (m FeatureMatrix) Clone() FeatureMatrix {
	out := make(FeatureMatrix, len(m))
	for f, ps := range m {
		out[f] = ps
	}
	return out
}

// Plan is a purchasable feature bundle with pricing and duration.
type Plan struct {
	ID           id.ID         `db:"id" json:"id"`
	Name         string        `db:"name" json:"name"`
	Code         string        `db:"code" json:"code"`
	Description  string        `db:"description" json:"description,omitempty"`
	MonthlyPrice types.Money   `db:"monthly_price" json:"monthlyPrice"`
	YearlyPrice  types.Money   `db:"yearly_price" json:"yearlyPrice"`
	DurationDays int           `db:"duration_days" json:"durationDays"`
	IsLifetime   bool          `db:"is_lifetime" json:"isLifetime"`
	Features     FeatureMatrix `db:"features" json:"features"`
	DeletionMark bool          `db:"deletion_mark" json:"deletionMark"`
	Version      int           `db:"version" json:"version"`
	CreatedAt    time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updatedAt"`
}

// NewPlan creates a plan with generated ID and timestamps.
func NewPlan(name, code string) *Plan {
	now := time.Now().UTC()
	return &Plan{
		ID:        id.New(),
		Name:      name,
		Code:      code,
		Features:  make(FeatureMatrix),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks plan invariants.
func (p *Plan) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("plan name is required").WithDetail("field", "name")
	}
	if p.MonthlyPrice.IsNegative() || p.YearlyPrice.IsNegative() {
		return apperror.NewValidation("plan prices must not be negative")
	}
	if !p.IsLifetime && p.DurationDays <= 0 {
		return apperror.NewValidation("non-lifetime plan requires a positive duration")
	}
	return nil
}

// PriceFor returns the plan price for a billing cycle.
func (p *Plan) PriceFor(cycle BillingCycle) types.Money {
	if cycle == CycleYearly {
		return p.YearlyPrice
	}
	return p.MonthlyPrice
}

// SubscriptionStatus is the stored lifecycle state of a subscription.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusTrial     SubscriptionStatus = "trial"
	StatusExpired   SubscriptionStatus = "expired"
	StatusFree      SubscriptionStatus = "free"
	StatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription binds one admin to one plan instance with a validity window.
// A nil EndDate means lifetime access.
type Subscription struct {
	ID        id.ID              `db:"id" json:"id"`
	AdminID   id.ID              `db:"admin_id" json:"adminId"`
	PlanID    id.ID              `db:"plan_id" json:"planId"`
	Status    SubscriptionStatus `db:"status" json:"status"`
	IsTrial   bool               `db:"is_trial" json:"isTrial"`
	Cycle     BillingCycle       `db:"cycle" json:"cycle"`
	Price     types.Money        `db:"price" json:"price"`
	StartDate time.Time          `db:"start_date" json:"startDate"`
	EndDate   *time.Time         `db:"end_date" json:"endDate,omitempty"`
	CreatedAt time.Time          `db:"created_at" json:"createdAt"`
}

// EffectiveStatus derives the real lifecycle state at the given instant.
//
// An end date in the past means expired regardless of the stored status,
// with two exceptions: "free" subscriptions never expire (grandfather
// semantics carried over from the original product), and a nil end date
// means lifetime access.
func (s *Subscription) EffectiveStatus(now time.Time) SubscriptionStatus {
	if s.Status == StatusFree {
		return StatusFree
	}
	if s.EndDate != nil && s.EndDate.Before(now) {
		return StatusExpired
	}
	return s.Status
}

// IsExpired reports whether the subscription denies all access at the instant.
func (s *Subscription) IsExpired(now time.Time) bool {
	return s.EffectiveStatus(now) == StatusExpired
}

// Validate checks subscription invariants.
func (s *Subscription) Validate(ctx context.Context) error {
	if id.IsNil(s.AdminID) {
		return apperror.NewValidation("subscription requires an admin").WithDetail("field", "adminId")
	}
	if id.IsNil(s.PlanID) {
		return apperror.NewValidation("subscription requires a plan").WithDetail("field", "planId")
	}
	if s.EndDate != nil && s.EndDate.Before(s.StartDate) {
		return apperror.NewValidation("end date must not precede start date")
	}
	return nil
}

// FeatureGrant is a per-admin, per-feature permission row synced from the
// currently assigned plan. The whole set is replaced on every assignment,
// so grants never drift from the plan that produced them.
type FeatureGrant struct {
	ID      id.ID            `db:"id" json:"id"`
	AdminID id.ID            `db:"admin_id" json:"adminId"`
	Feature security.Feature `db:"feature" json:"feature"`
	security.PermissionSet
	PlanID    id.ID     `db:"plan_id" json:"planId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// WorkerPermission is a per-worker, per-feature permission row managed by
// the worker's admin. Independent of plans.
type WorkerPermission struct {
	ID       id.ID            `db:"id" json:"id"`
	WorkerID id.ID            `db:"worker_id" json:"workerId"`
	Feature  security.Feature `db:"feature" json:"feature"`
	security.PermissionSet
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// GrantsFromPlan builds the grant rows for an admin from a plan's matrix.
// One row per feature key; features absent from the matrix get no row,
// which the resolver treats as no access.
func GrantsFromPlan(adminID id.ID, plan *Plan) []FeatureGrant {
	now := time.Now().UTC()
	grants := make([]FeatureGrant, 0, len(plan.Features))
	for _, f := range security.AllFeatures() {
		ps, ok := plan.Features[f]
		if !ok {
			continue
		}
		grants = append(grants, FeatureGrant{
			ID:            id.New(),
			AdminID:       adminID,
			Feature:       f,
			PermissionSet: ps,
			PlanID:        plan.ID,
			CreatedAt:     now,
		})
	}
	return grants
}
