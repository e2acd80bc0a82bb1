package dto

import (
	"shopdesk/internal/core/security"
	"shopdesk/internal/core/types"
	"shopdesk/internal/domain/billing"
)

// PlanRequest for creating/updating plans (super-admin console).
type PlanRequest struct {
	Name         string                              `json:"name" binding:"required"`
	Code         string                              `json:"code"`
	Description  string                              `json:"description"`
	MonthlyPrice string                              `json:"monthlyPrice"`
	YearlyPrice  string                              `json:"yearlyPrice"`
	DurationDays int                                 `json:"durationDays"`
	IsLifetime   bool                                `json:"isLifetime"`
	Features     map[string]security.PermissionSet   `json:"features"`
	Version      int                                 `json:"version"` // required for update
}

// ToPlan applies the request onto a plan.
func (r PlanRequest) ToPlan(plan *billing.Plan) error {
	plan.Name = r.Name
	plan.Code = r.Code
	plan.Description = r.Description
	plan.DurationDays = r.DurationDays
	plan.IsLifetime = r.IsLifetime

	if r.MonthlyPrice != "" {
		m, err := types.NewMoneyFromString(r.MonthlyPrice)
		if err != nil {
			return err
		}
		plan.MonthlyPrice = m
	}
	if r.YearlyPrice != "" {
		y, err := types.NewMoneyFromString(r.YearlyPrice)
		if err != nil {
			return err
		}
		plan.YearlyPrice = y
	}

	plan.Features = make(billing.FeatureMatrix, len(r.Features))
	for name, ps := range r.Features {
		f, err := security.ParseFeature(name)
		if err != nil {
			return err
		}
		plan.Features[f] = ps
	}
	return nil
}

// AssignPlanRequest for POST /console/admins/:id/plan.
type AssignPlanRequest struct {
	PlanID    string `json:"planId" binding:"required"`
	Cycle     string `json:"cycle"` // monthly (default) or yearly
	IsTrial   bool   `json:"isTrial"`
	TrialDays int    `json:"trialDays"`
	Free      bool   `json:"free"`
}

// ToAssignOptions converts to domain options.
func (r AssignPlanRequest) ToAssignOptions() billing.AssignOptions {
	cycle := billing.CycleMonthly
	if r.Cycle == string(billing.CycleYearly) {
		cycle = billing.CycleYearly
	}
	return billing.AssignOptions{
		Cycle:     cycle,
		IsTrial:   r.IsTrial,
		TrialDays: r.TrialDays,
		Free:      r.Free,
	}
}

// WorkerPermissionRequest for PUT /workers/:id/permissions.
type WorkerPermissionRequest struct {
	Feature   string `json:"feature" binding:"required"`
	CanView   bool   `json:"canView"`
	CanCreate bool   `json:"canCreate"`
	CanEdit   bool   `json:"canEdit"`
	CanDelete bool   `json:"canDelete"`
}

// PermissionSet returns the request's permission tuple.
func (r WorkerPermissionRequest) PermissionSet() security.PermissionSet {
	return security.PermissionSet{
		CanView:   r.CanView,
		CanCreate: r.CanCreate,
		CanEdit:   r.CanEdit,
		CanDelete: r.CanDelete,
	}
}
