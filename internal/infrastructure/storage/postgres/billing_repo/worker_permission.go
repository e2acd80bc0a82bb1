package billing_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopdesk/internal/core/id"
	"shopdesk/internal/core/security"
	"shopdesk/internal/domain/billing"
	"shopdesk/internal/infrastructure/storage/postgres"
)

const workerPermissionsTable = "worker_permissions"

// Compile-time check.
var _ billing.WorkerPermissionRepository = (*WorkerPermissionRepo)(nil)

// WorkerPermissionRepo persists per-worker permission rows.
type WorkerPermissionRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewWorkerPermissionRepo creates a worker permission repository.
func NewWorkerPermissionRepo(txManager *postgres.TxManager) *WorkerPermissionRepo {
	return &WorkerPermissionRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[billing.WorkerPermission](),
	}
}

func (r *WorkerPermissionRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ListByWorker returns all permission rows for a worker.
func (r *WorkerPermissionRepo) ListByWorker(ctx context.Context, workerID id.ID) ([]billing.WorkerPermission, error) {
	q := r.builder().
		Select(r.selectCols...).
		From(workerPermissionsTable).
		Where(squirrel.Eq{"worker_id": workerID}).
		OrderBy("feature ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var perms []billing.WorkerPermission
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &perms, sql, args...); err != nil {
		return nil, fmt.Errorf("list worker permissions: %w", err)
	}
	return perms, nil
}

// Upsert inserts or updates the permission row for (worker, feature).
func (r *WorkerPermissionRepo) Upsert(ctx context.Context, perm *billing.WorkerPermission) error {
	q := r.builder().
		Insert(workerPermissionsTable).
		Columns("id", "worker_id", "feature", "can_view", "can_create", "can_edit", "can_delete", "created_at", "updated_at").
		Values(perm.ID, perm.WorkerID, perm.Feature,
			perm.CanView, perm.CanCreate, perm.CanEdit, perm.CanDelete,
			perm.CreatedAt, perm.UpdatedAt).
		Suffix(`ON CONFLICT (worker_id, feature) DO UPDATE SET
			can_view = EXCLUDED.can_view,
			can_create = EXCLUDED.can_create,
			can_edit = EXCLUDED.can_edit,
			can_delete = EXCLUDED.can_delete,
			updated_at = EXCLUDED.updated_at`)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert worker permission: %w", err)
	}
	return nil
}

// Delete removes the permission row for (worker, feature). Deleting a row
// the worker never had is a no-op.
func (r *WorkerPermissionRepo) Delete(ctx context.Context, workerID id.ID, feature security.Feature) error {
	q := r.builder().
		Delete(workerPermissionsTable).
		Where(squirrel.Eq{"worker_id": workerID}).
		Where(squirrel.Eq{"feature": feature})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete worker permission: %w", err)
	}
	return nil
}
