// Package billing_repo provides PostgreSQL implementations for the billing
// repositories. All queries run through the shared TxManager so they take
// part in any transaction already open in the context.
package billing_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/id"
	"shopdesk/internal/domain/billing"
	"shopdesk/internal/infrastructure/storage/postgres"
)

const plansTable = "plans"

// Compile-time check.
var _ billing.PlanRepository = (*PlanRepo)(nil)

// PlanRepo persists subscription plans.
type PlanRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewPlanRepo creates a plan repository.
func NewPlanRepo(txManager *postgres.TxManager) *PlanRepo {
	return &PlanRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[billing.Plan](),
	}
}

func (r *PlanRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *PlanRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.selectCols...).From(plansTable)
}

// Create inserts a new plan.
func (r *PlanRepo) Create(ctx context.Context, plan *billing.Plan) error {
	q := r.builder().
		Insert(plansTable).
		SetMap(postgres.StructToMap(plan))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

// GetByID retrieves a plan by ID.
func (r *PlanRepo) GetByID(ctx context.Context, planID id.ID) (*billing.Plan, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": planID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var plan billing.Plan
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &plan, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(plansTable, planID.String())
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &plan, nil
}

// GetByCode retrieves a plan by its unique code.
func (r *PlanRepo) GetByCode(ctx context.Context, code string) (*billing.Plan, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var plan billing.Plan
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &plan, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(plansTable, code)
		}
		return nil, fmt.Errorf("get plan by code: %w", err)
	}
	return &plan, nil
}

// Update modifies an existing plan with optimistic locking.
func (r *PlanRepo) Update(ctx context.Context, plan *billing.Plan) error {
	data := postgres.StructToMap(plan)
	delete(data, "id")
	delete(data, "version")
	delete(data, "created_at")

	q := r.builder().
		Update(plansTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": plan.ID}).
		Where(squirrel.Eq{"version": plan.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(plansTable, plan.ID)
	}
	return nil
}

// SetDeletionMark soft-deletes or restores a plan.
func (r *PlanRepo) SetDeletionMark(ctx context.Context, planID id.ID, marked bool) error {
	q := r.builder().
		Update(plansTable).
		Set("deletion_mark", marked).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": planID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set deletion mark: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set deletion mark: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(plansTable, planID.String())
	}
	return nil
}

// List retrieves all plans, ordered by name.
func (r *PlanRepo) List(ctx context.Context, includeDeleted bool) ([]billing.Plan, error) {
	q := r.baseSelect().OrderBy("name ASC")
	if !includeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var plans []billing.Plan
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &plans, sql, args...); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}
