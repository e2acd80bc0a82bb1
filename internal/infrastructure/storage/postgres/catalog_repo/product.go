// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/id"
	"shopdesk/internal/domain/catalogs/product"
	"shopdesk/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

// Compile-time check.
var _ product.Repository = (*ProductRepo)(nil)

// ProductRepo persists products.
type ProductRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewProductRepo creates a product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[product.Product](),
	}
}

func (r *ProductRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new product.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder().
		Insert(productsTable).
		SetMap(postgres.StructToMap(p))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a product, owner-scoped.
func (r *ProductRepo) GetByID(ctx context.Context, ownerID, productID id.ID) (*product.Product, error) {
	q := r.builder().
		Select(r.selectCols...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Eq{"owner_id": ownerID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(productsTable, productID.String())
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Update modifies an existing product with optimistic locking.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	data := postgres.StructToMap(p)
	delete(data, "id")
	delete(data, "owner_id")
	delete(data, "version")
	delete(data, "created_at")

	q := r.builder().
		Update(productsTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": p.ID}).
		Where(squirrel.Eq{"owner_id": p.OwnerID}).
		Where(squirrel.Eq{"version": p.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(productsTable, p.ID)
	}
	return nil
}

// SetDeletionMark soft-deletes or restores a product.
func (r *ProductRepo) SetDeletionMark(ctx context.Context, ownerID, productID id.ID, marked bool) error {
	q := r.builder().
		Update(productsTable).
		Set("deletion_mark", marked).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Eq{"owner_id": ownerID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set deletion mark: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set deletion mark: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(productsTable, productID.String())
	}
	return nil
}

// AdjustStock applies a relative stock change. The check constraint on
// stock_qty rejects drops below zero.
func (r *ProductRepo) AdjustStock(ctx context.Context, ownerID, productID id.ID, delta int) error {
	q := r.builder().
		Update(productsTable).
		Set("stock_qty", squirrel.Expr("stock_qty + ?", delta)).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Eq{"owner_id": ownerID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build stock adjust: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(productsTable, productID.String())
	}
	return nil
}

// List retrieves products with filtering.
func (r *ProductRepo) List(ctx context.Context, ownerID id.ID, filter product.ListFilter) ([]product.Product, error) {
	q := r.builder().
		Select(r.selectCols...).
		From(productsTable).
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("name ASC")

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"sku": pattern},
		})
	}
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
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

	var products []product.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}
