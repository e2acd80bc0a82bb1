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

const subscriptionsTable = "subscriptions"

// Compile-time check.
var _ billing.SubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo persists plan bindings. Assignments are append-only:
// the newest row per admin is the current binding.
type SubscriptionRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewSubscriptionRepo creates a subscription repository.
func NewSubscriptionRepo(txManager *postgres.TxManager) *SubscriptionRepo {
	return &SubscriptionRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[billing.Subscription](),
	}
}

func (r *SubscriptionRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *SubscriptionRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.selectCols...).From(subscriptionsTable)
}

// Create inserts a fresh plan binding.
func (r *SubscriptionRepo) Create(ctx context.Context, sub *billing.Subscription) error {
	q := r.builder().
		Insert(subscriptionsTable).
		SetMap(postgres.StructToMap(sub))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// GetCurrentByAdmin returns the latest binding for an admin, or (nil, nil)
// when the admin has never been assigned a plan.
func (r *SubscriptionRepo) GetCurrentByAdmin(ctx context.Context, adminID id.ID) (*billing.Subscription, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"admin_id": adminID}).
		OrderBy("created_at DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sub billing.Subscription
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &sub, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get current subscription: %w", err)
	}
	return &sub, nil
}

// ListByAdmin returns the full assignment history for an admin, newest first.
func (r *SubscriptionRepo) ListByAdmin(ctx context.Context, adminID id.ID) ([]billing.Subscription, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"admin_id": adminID}).
		OrderBy("created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var subs []billing.Subscription
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &subs, sql, args...); err != nil {
		return nil, fmt.Errorf("list subscriptions by admin: %w", err)
	}
	return subs, nil
}

// List returns subscriptions, optionally filtered by stored status.
func (r *SubscriptionRepo) List(ctx context.Context, status billing.SubscriptionStatus) ([]billing.Subscription, error) {
	q := r.baseSelect().OrderBy("created_at DESC")
	if status != "" {
		q = q.Where(squirrel.Eq{"status": status})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var subs []billing.Subscription
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &subs, sql, args...); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

// UpdateStatus persists an explicit status change.
func (r *SubscriptionRepo) UpdateStatus(ctx context.Context, subID id.ID, status billing.SubscriptionStatus) error {
	q := r.builder().
		Update(subscriptionsTable).
		Set("status", status).
		Where(squirrel.Eq{"id": subID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(subscriptionsTable, subID.String())
	}
	return nil
}
