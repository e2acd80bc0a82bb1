package billing

import (
	"context"
	"fmt"
	"time"

	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/id"
	"shopdesk/internal/core/security"
	"shopdesk/internal/core/tx"
	"shopdesk/pkg/logger"
)

// Auditor records super-admin console mutations.
// Implemented by the postgres audit service; nil disables auditing.
type Auditor interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action string, changes any) error
}

// Service provides plan management and plan assignment.
type Service struct {
	plans       PlanRepository
	subs        SubscriptionRepository
	grants      GrantRepository
	workerPerms WorkerPermissionRepository
	txManager   tx.Manager
	auditor     Auditor
}

// ServiceConfig configures the billing service.
type ServiceConfig struct {
	Plans       PlanRepository
	Subs        SubscriptionRepository
	Grants      GrantRepository
	WorkerPerms WorkerPermissionRepository
	TxManager   tx.Manager
	Auditor     Auditor // optional
}

// NewService creates a billing service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		plans:       cfg.Plans,
		subs:        cfg.Subs,
		grants:      cfg.Grants,
		workerPerms: cfg.WorkerPerms,
		txManager:   cfg.TxManager,
		auditor:     cfg.Auditor,
	}
}

func (s *Service) audit(ctx context.Context, entityType string, entityID id.ID, action string, changes any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, entityType, entityID, action, changes); err != nil {
		// Audit is best-effort; the mutation itself already committed.
		logger.Warn(ctx, "audit record failed", "entity_type", entityType, "error", err)
	}
}

// --- Plan management (super-admin console) ---

// CreatePlan validates and stores a new plan.
func (s *Service) CreatePlan(ctx context.Context, plan *Plan) error {
	if err := plan.Validate(ctx); err != nil {
		return err
	}
	if plan.Code != "" {
		if existing, err := s.plans.GetByCode(ctx, plan.Code); err == nil && existing != nil {
			return apperror.NewDuplicate("plan", "code", plan.Code)
		}
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.plans.Create(ctx, plan)
	})
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	s.audit(ctx, "plan", plan.ID, "create", plan)
	return nil
}

// UpdatePlan modifies an existing plan. Does NOT touch grants of admins
// already on this plan; grants re-sync only on reassignment.
func (s *Service) UpdatePlan(ctx context.Context, plan *Plan) error {
	if err := plan.Validate(ctx); err != nil {
		return err
	}
	plan.UpdatedAt = time.Now().UTC()
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.plans.Update(ctx, plan)
	})
	if err != nil {
		return err
	}
	s.audit(ctx, "plan", plan.ID, "update", plan)
	return nil
}

// GetPlan retrieves a plan by ID.
func (s *Service) GetPlan(ctx context.Context, planID id.ID) (*Plan, error) {
	return s.plans.GetByID(ctx, planID)
}

// ListPlans lists plans, optionally including soft-deleted ones.
func (s *Service) ListPlans(ctx context.Context, includeDeleted bool) ([]Plan, error) {
	return s.plans.List(ctx, includeDeleted)
}

// DeletePlan soft-deletes a plan.
func (s *Service) DeletePlan(ctx context.Context, planID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.plans.SetDeletionMark(ctx, planID, true)
	})
	if err != nil {
		return err
	}
	s.audit(ctx, "plan", planID, "delete", nil)
	return nil
}

// --- Plan assignment ---

// AssignOptions tunes a plan assignment.
type AssignOptions struct {
	Cycle     BillingCycle
	IsTrial   bool
	TrialDays int
	// Free marks the subscription as perpetually non-expiring.
	Free bool
}

// AssignPlan binds an admin to a plan and syncs the admin's feature grants
// from the plan's matrix.
//
// The grant replacement is delete-then-insert inside one transaction with
// the subscription insert: either the admin ends up with exactly the new
// plan's rows, or the assignment fails as a whole and the previous state
// stands. Callers retry the full assignment on failure.
func (s *Service) AssignPlan(ctx context.Context, adminID, planID id.ID, opts AssignOptions) (*Subscription, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.DeletionMark {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "cannot assign a deleted plan").
			WithDetail("plan_id", planID.String())
	}

	now := time.Now().UTC()
	sub := &Subscription{
		ID:        id.New(),
		AdminID:   adminID,
		PlanID:    plan.ID,
		Status:    StatusActive,
		IsTrial:   opts.IsTrial,
		Cycle:     opts.Cycle,
		Price:     plan.PriceFor(opts.Cycle),
		StartDate: now,
		CreatedAt: now,
	}
	switch {
	case opts.Free:
		sub.Status = StatusFree
	case opts.IsTrial:
		sub.Status = StatusTrial
	}
	if !plan.IsLifetime {
		days := plan.DurationDays
		if opts.IsTrial && opts.TrialDays > 0 {
			days = opts.TrialDays
		}
		end := now.AddDate(0, 0, days)
		sub.EndDate = &end
	}
	if err := sub.Validate(ctx); err != nil {
		return nil, err
	}

	grants := GrantsFromPlan(adminID, plan)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.subs.Create(ctx, sub); err != nil {
			return fmt.Errorf("create subscription: %w", err)
		}
		if err := s.grants.ReplaceForAdmin(ctx, adminID, grants); err != nil {
			return fmt.Errorf("replace feature grants: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "plan assigned",
		"admin_id", adminID, "plan_id", plan.ID, "status", sub.Status, "grants", len(grants))
	s.audit(ctx, "subscription", sub.ID, "assign", sub)
	return sub, nil
}

// CancelSubscription marks the admin's current subscription cancelled.
// Access continues until the end date passes.
func (s *Service) CancelSubscription(ctx context.Context, adminID id.ID) error {
	sub, err := s.subs.GetCurrentByAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if sub == nil {
		return apperror.NewNotFound("subscription", adminID.String())
	}
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.subs.UpdateStatus(ctx, sub.ID, StatusCancelled)
	})
	if err != nil {
		return err
	}
	s.audit(ctx, "subscription", sub.ID, "cancel", nil)
	return nil
}

// CurrentSubscription returns the admin's current binding, nil when none.
func (s *Service) CurrentSubscription(ctx context.Context, adminID id.ID) (*Subscription, error) {
	return s.subs.GetCurrentByAdmin(ctx, adminID)
}

// ListSubscriptions lists bindings filtered by stored status ("" for all).
func (s *Service) ListSubscriptions(ctx context.Context, status SubscriptionStatus) ([]Subscription, error) {
	return s.subs.List(ctx, status)
}

// --- Worker permissions ---

// SetWorkerPermission creates or updates a worker's permission row for a feature.
func (s *Service) SetWorkerPermission(ctx context.Context, workerID id.ID, feature security.Feature, ps security.PermissionSet) error {
	perm := &WorkerPermission{
		ID:            id.New(),
		WorkerID:      workerID,
		Feature:       feature,
		PermissionSet: ps,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.workerPerms.Upsert(ctx, perm)
	})
}

// RevokeWorkerPermission removes a worker's row for a feature.
// The resolver treats a missing row as no access.
func (s *Service) RevokeWorkerPermission(ctx context.Context, workerID id.ID, feature security.Feature) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.workerPerms.Delete(ctx, workerID, feature)
	})
}
