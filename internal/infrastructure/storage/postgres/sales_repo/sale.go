// Package sales_repo provides PostgreSQL implementations for the sales
// repositories.
package sales_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/id"
	"shopdesk/internal/domain/sales"
	"shopdesk/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "sales"
	saleItemsTable = "sale_items"
)

// Compile-time check.
var _ sales.SaleRepository = (*SaleRepo)(nil)

// SaleRepo persists sales and their lines.
type SaleRepo struct {
	txManager *postgres.TxManager
	saleCols  []string
	itemCols  []string
}

// NewSaleRepo creates a sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		txManager: txManager,
		saleCols:  postgres.ExtractDBColumns[sales.Sale](),
		itemCols:  postgres.ExtractDBColumns[sales.SaleItem](),
	}
}

func (r *SaleRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the sale header and all its lines in one transaction.
func (r *SaleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.txManager.GetQuerier(ctx)

		q := r.builder().
			Insert(salesTable).
			SetMap(postgres.StructToMap(sale))

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}

		if len(sale.Items) == 0 {
			return nil
		}

		insQ := r.builder().
			Insert(saleItemsTable).
			Columns(r.itemCols...)
		for _, item := range sale.Items {
			data := postgres.StructToMap(item)
			vals := make([]any, 0, len(r.itemCols))
			for _, col := range r.itemCols {
				vals = append(vals, data[col])
			}
			insQ = insQ.Values(vals...)
		}

		sql, args, err = insQ.ToSql()
		if err != nil {
			return fmt.Errorf("build items insert: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert sale items: %w", err)
		}
		return nil
	})
}

// GetByID loads a sale with its lines, owner-scoped.
func (r *SaleRepo) GetByID(ctx context.Context, ownerID, saleID id.ID) (*sales.Sale, error) {
	q := r.builder().
		Select(r.saleCols...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID}).
		Where(squirrel.Eq{"owner_id": ownerID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var sale sales.Sale
	if err := pgxscan.Get(ctx, querier, &sale, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(salesTable, saleID.String())
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	itemsQ := r.builder().
		Select(r.itemCols...).
		From(saleItemsTable).
		Where(squirrel.Eq{"sale_id": saleID})

	sql, args, err = itemsQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &sale.Items, sql, args...); err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}

	return &sale, nil
}

// Update modifies the sale header with optimistic locking.
func (r *SaleRepo) Update(ctx context.Context, sale *sales.Sale) error {
	data := postgres.StructToMap(sale)
	delete(data, "id")
	delete(data, "owner_id")
	delete(data, "version")
	delete(data, "created_at")

	q := r.builder().
		Update(salesTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": sale.ID}).
		Where(squirrel.Eq{"owner_id": sale.OwnerID}).
		Where(squirrel.Eq{"version": sale.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(salesTable, sale.ID)
	}
	return nil
}

// UpdateItem modifies one line.
func (r *SaleRepo) UpdateItem(ctx context.Context, item *sales.SaleItem) error {
	data := postgres.StructToMap(item)
	delete(data, "id")
	delete(data, "sale_id")

	q := r.builder().
		Update(saleItemsTable).
		SetMap(data).
		Where(squirrel.Eq{"id": item.ID}).
		Where(squirrel.Eq{"sale_id": item.SaleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build item update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update sale item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(saleItemsTable, item.ID.String())
	}
	return nil
}

// SoftDelete stamps the sale deleted. Already-deleted sales are left alone
// so the caller can surface the proper error.
func (r *SaleRepo) SoftDelete(ctx context.Context, ownerID, saleID id.ID, at time.Time) error {
	q := r.builder().
		Update(salesTable).
		Set("deleted_at", at).
		Set("updated_at", at).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": saleID}).
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.Eq{"deleted_at": nil})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("soft delete sale: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(salesTable, saleID.String())
	}
	return nil
}

// List retrieves sales with filtering, newest first. Lines are not loaded.
func (r *SaleRepo) List(ctx context.Context, ownerID id.ID, filter sales.ListFilter) ([]sales.Sale, error) {
	q := r.builder().
		Select(r.saleCols...).
		From(salesTable).
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("sold_at DESC")

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deleted_at": nil})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"sold_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"sold_at": *filter.To})
	}
	if filter.PaymentStatus != "" {
		q = q.Where(squirrel.Eq{"payment_status": filter.PaymentStatus})
	}
	if filter.CustomerSearch != "" {
		q = q.Where(squirrel.ILike{"customer_name": "%" + filter.CustomerSearch + "%"})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result []sales.Sale
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &result, sql, args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return result, nil
}
