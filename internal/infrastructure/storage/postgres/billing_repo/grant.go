package billing_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopdesk/internal/core/id"
	"shopdesk/internal/domain/billing"
	"shopdesk/internal/infrastructure/storage/postgres"
)

const featureGrantsTable = "feature_grants"

// Compile-time check.
var _ billing.GrantRepository = (*GrantRepo)(nil)

// GrantRepo persists per-admin feature grants.
type GrantRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewGrantRepo creates a grant repository.
func NewGrantRepo(txManager *postgres.TxManager) *GrantRepo {
	return &GrantRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[billing.FeatureGrant](),
	}
}

func (r *GrantRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ListByAdmin returns all grant rows for an admin, in feature order.
func (r *GrantRepo) ListByAdmin(ctx context.Context, adminID id.ID) ([]billing.FeatureGrant, error) {
	q := r.builder().
		Select(r.selectCols...).
		From(featureGrantsTable).
		Where(squirrel.Eq{"admin_id": adminID}).
		OrderBy("feature ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var grants []billing.FeatureGrant
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &grants, sql, args...); err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	return grants, nil
}

// ReplaceForAdmin atomically swaps the admin's entire grant set. The delete
// and inserts run inside one transaction; a failure rolls the whole swap
// back so the previous grant set stays intact.
func (r *GrantRepo) ReplaceForAdmin(ctx context.Context, adminID id.ID, grants []billing.FeatureGrant) error {
	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.txManager.GetQuerier(ctx)

		delQ := r.builder().
			Delete(featureGrantsTable).
			Where(squirrel.Eq{"admin_id": adminID})

		sql, args, err := delQ.ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete grants: %w", err)
		}

		if len(grants) == 0 {
			return nil
		}

		insQ := r.builder().
			Insert(featureGrantsTable).
			Columns("id", "admin_id", "feature", "can_view", "can_create", "can_edit", "can_delete", "plan_id", "created_at")
		for _, g := range grants {
			insQ = insQ.Values(g.ID, g.AdminID, g.Feature,
				g.CanView, g.CanCreate, g.CanEdit, g.CanDelete,
				g.PlanID, g.CreatedAt)
		}

		sql, args, err = insQ.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert grants: %w", err)
		}
		return nil
	})
}
