package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/id"
	"shopdesk/internal/core/security"
	"shopdesk/internal/core/types"
)

// passthroughTx runs the function without a real transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memPlanRepo struct {
	plans map[id.ID]*Plan
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{plans: make(map[id.ID]*Plan)}
}

func (r *memPlanRepo) Create(ctx context.Context, plan *Plan) error {
	r.plans[plan.ID] = plan
	return nil
}

func (r *memPlanRepo) GetByID(ctx context.Context, planID id.ID) (*Plan, error) {
	p, ok := r.plans[planID]
	if !ok {
		return nil, apperror.NewNotFound("plan", planID.String())
	}
	return p, nil
}

func (r *memPlanRepo) GetByCode(ctx context.Context, code string) (*Plan, error) {
	for _, p := range r.plans {
		if p.Code == code && !p.DeletionMark {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("plan", code)
}

func (r *memPlanRepo) Update(ctx context.Context, plan *Plan) error {
	r.plans[plan.ID] = plan
	return nil
}

func (r *memPlanRepo) SetDeletionMark(ctx context.Context, planID id.ID, marked bool) error {
	p, ok := r.plans[planID]
	if !ok {
		return apperror.NewNotFound("plan", planID.String())
	}
	p.DeletionMark = marked
	return nil
}

func (r *memPlanRepo) List(ctx context.Context, includeDeleted bool) ([]Plan, error) {
	var out []Plan
	for _, p := range r.plans {
		if p.DeletionMark && !includeDeleted {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

type memSubRepo struct {
	subs []*Subscription
}

func (r *memSubRepo) Create(ctx context.Context, sub *Subscription) error {
	r.subs = append(r.subs, sub)
	return nil
}

func (r *memSubRepo) GetCurrentByAdmin(ctx context.Context, adminID id.ID) (*Subscription, error) {
	var latest *Subscription
	for _, s := range r.subs {
		if s.AdminID != adminID {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	return latest, nil
}

func (r *memSubRepo) ListByAdmin(ctx context.Context, adminID id.ID) ([]Subscription, error) {
	var out []Subscription
	for _, s := range r.subs {
		if s.AdminID == adminID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memSubRepo) List(ctx context.Context, status SubscriptionStatus) ([]Subscription, error) {
	var out []Subscription
	for _, s := range r.subs {
		if status == "" || s.Status == status {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memSubRepo) UpdateStatus(ctx context.Context, subID id.ID, status SubscriptionStatus) error {
	for _, s := range r.subs {
		if s.ID == subID {
			s.Status = status
			return nil
		}
	}
	return apperror.NewNotFound("subscription", subID.String())
}

type memGrantRepo struct {
	grants map[id.ID][]FeatureGrant
}

func newMemGrantRepo() *memGrantRepo {
	return &memGrantRepo{grants: make(map[id.ID][]FeatureGrant)}
}

func (r *memGrantRepo) ListByAdmin(ctx context.Context, adminID id.ID) ([]FeatureGrant, error) {
	return r.grants[adminID], nil
}

func (r *memGrantRepo) ReplaceForAdmin(ctx context.Context, adminID id.ID, grants []FeatureGrant) error {
	r.grants[adminID] = grants
	return nil
}

type memWorkerPermRepo struct {
	perms map[id.ID]map[security.Feature]WorkerPermission
}

func newMemWorkerPermRepo() *memWorkerPermRepo {
	return &memWorkerPermRepo{perms: make(map[id.ID]map[security.Feature]WorkerPermission)}
}

func (r *memWorkerPermRepo) ListByWorker(ctx context.Context, workerID id.ID) ([]WorkerPermission, error) {
	var out []WorkerPermission
	for _, p := range r.perms[workerID] {
		out = append(out, p)
	}
	return out, nil
}

func (r *memWorkerPermRepo) Upsert(ctx context.Context, perm *WorkerPermission) error {
	if r.perms[perm.WorkerID] == nil {
		r.perms[perm.WorkerID] = make(map[security.Feature]WorkerPermission)
	}
	r.perms[perm.WorkerID][perm.Feature] = *perm
	return nil
}

func (r *memWorkerPermRepo) Delete(ctx context.Context, workerID id.ID, feature security.Feature) error {
	delete(r.perms[workerID], feature)
	return nil
}

func newTestService() (*Service, *memPlanRepo, *memSubRepo, *memGrantRepo, *memWorkerPermRepo) {
	plans := newMemPlanRepo()
	subs := &memSubRepo{}
	grants := newMemGrantRepo()
	workerPerms := newMemWorkerPermRepo()
	svc := NewService(ServiceConfig{
		Plans:       plans,
		Subs:        subs,
		Grants:      grants,
		WorkerPerms: workerPerms,
		TxManager:   passthroughTx{},
	})
	return svc, plans, subs, grants, workerPerms
}

func standardPlan(t *testing.T, svc *Service) *Plan {
	t.Helper()
	plan := NewPlan("Standard", "standard")
	plan.DurationDays = 30
	plan.MonthlyPrice = types.MustMoney("24.99")
	plan.YearlyPrice = types.MustMoney("249.00")
	plan.Features = FeatureMatrix{
		security.FeatureSales:     security.FullAccess(),
		security.FeatureDashboard: security.ViewOnly(),
	}
	require.NoError(t, svc.CreatePlan(context.Background(), plan))
	return plan
}

func TestService_AssignPlan(t *testing.T) {
	ctx := context.Background()
	svc, _, _, grants, _ := newTestService()
	plan := standardPlan(t, svc)
	adminID := id.New()

	sub, err := svc.AssignPlan(ctx, adminID, plan.ID, AssignOptions{Cycle: CycleMonthly})
	require.NoError(t, err)

	assert.Equal(t, StatusActive, sub.Status)
	assert.True(t, sub.Price.Equal(types.MustMoney("24.99")))
	require.NotNil(t, sub.EndDate)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 30), *sub.EndDate, time.Minute)

	rows := grants.grants[adminID]
	require.Len(t, rows, 2)
	for _, g := range rows {
		assert.Equal(t, plan.ID, g.PlanID)
	}
}

func TestService_AssignPlan_ReassignReplacesGrants(t *testing.T) {
	ctx := context.Background()
	svc, _, subs, grants, _ := newTestService()
	adminID := id.New()

	first := standardPlan(t, svc)
	_, err := svc.AssignPlan(ctx, adminID, first.ID, AssignOptions{Cycle: CycleMonthly})
	require.NoError(t, err)

	second := NewPlan("Premium", "premium")
	second.IsLifetime = true
	second.Features = FeatureMatrix{
		security.FeatureReports: security.FullAccess(),
	}
	require.NoError(t, svc.CreatePlan(ctx, second))

	sub, err := svc.AssignPlan(ctx, adminID, second.ID, AssignOptions{Cycle: CycleYearly})
	require.NoError(t, err)
	assert.Nil(t, sub.EndDate)

	// The admin holds exactly the new plan's rows, nothing from the old one.
	rows := grants.grants[adminID]
	require.Len(t, rows, 1)
	assert.Equal(t, security.FeatureReports, rows[0].Feature)
	assert.Equal(t, second.ID, rows[0].PlanID)

	// Assignment is a new row; history is preserved.
	history, err := subs.ListByAdmin(ctx, adminID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestService_AssignPlan_TrialAndFree(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, _ := newTestService()
	plan := standardPlan(t, svc)

	trial, err := svc.AssignPlan(ctx, id.New(), plan.ID, AssignOptions{
		Cycle: CycleMonthly, IsTrial: true, TrialDays: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusTrial, trial.Status)
	require.NotNil(t, trial.EndDate)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 7), *trial.EndDate, time.Minute)

	free, err := svc.AssignPlan(ctx, id.New(), plan.ID, AssignOptions{
		Cycle: CycleMonthly, Free: true,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFree, free.Status)
}

func TestService_AssignPlan_DeletedPlanRejected(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, _ := newTestService()
	plan := standardPlan(t, svc)

	require.NoError(t, svc.DeletePlan(ctx, plan.ID))

	_, err := svc.AssignPlan(ctx, id.New(), plan.ID, AssignOptions{Cycle: CycleMonthly})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
}

func TestService_CreatePlan_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, _ := newTestService()
	standardPlan(t, svc)

	dup := NewPlan("Standard Again", "standard")
	dup.DurationDays = 30
	err := svc.CreatePlan(ctx, dup)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestService_CancelSubscription(t *testing.T) {
	ctx := context.Background()
	svc, _, subs, _, _ := newTestService()
	plan := standardPlan(t, svc)
	adminID := id.New()

	_, err := svc.AssignPlan(ctx, adminID, plan.ID, AssignOptions{Cycle: CycleMonthly})
	require.NoError(t, err)

	require.NoError(t, svc.CancelSubscription(ctx, adminID))

	current, err := subs.GetCurrentByAdmin(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, current.Status)

	// Nothing assigned for this admin.
	err = svc.CancelSubscription(ctx, id.New())
	require.Error(t, err)
}

func TestService_WorkerPermissions(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, workerPerms := newTestService()
	workerID := id.New()

	err := svc.SetWorkerPermission(ctx, workerID, security.FeatureSales,
		security.PermissionSet{CanView: true, CanCreate: true})
	require.NoError(t, err)

	perms, err := workerPerms.ListByWorker(ctx, workerID)
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.True(t, perms[0].CanCreate)
	assert.False(t, perms[0].CanDelete)

	// Upsert overwrites in place, no second row.
	err = svc.SetWorkerPermission(ctx, workerID, security.FeatureSales, security.ViewOnly())
	require.NoError(t, err)
	perms, _ = workerPerms.ListByWorker(ctx, workerID)
	require.Len(t, perms, 1)
	assert.False(t, perms[0].CanCreate)

	require.NoError(t, svc.RevokeWorkerPermission(ctx, workerID, security.FeatureSales))
	perms, _ = workerPerms.ListByWorker(ctx, workerID)
	assert.Empty(t, perms)
}
