// Package report_repo provides the PostgreSQL data source for dashboard
// aggregation. It only materializes rows; the domain aggregator does the
// bucketing in memory.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopdesk/internal/core/id"
	"shopdesk/internal/domain/catalogs/product"
	"shopdesk/internal/domain/reports"
	"shopdesk/internal/domain/sales"
	"shopdesk/internal/infrastructure/storage/postgres"
)

// Compile-time check.
var _ reports.Repository = (*ReportRepo)(nil)

// ReportRepo reads the raw records the aggregator consumes.
type ReportRepo struct {
	txManager   *postgres.TxManager
	saleCols    []string
	itemCols    []string
	creditCols  []string
	productCols []string
}

// NewReportRepo creates a report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager:   txManager,
		saleCols:    postgres.ExtractDBColumns[sales.Sale](),
		itemCols:    postgres.ExtractDBColumns[sales.SaleItem](),
		creditCols:  postgres.ExtractDBColumns[sales.Credit](),
		productCols: postgres.ExtractDBColumns[product.Product](),
	}
}

func (r *ReportRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// SalesInRange returns non-deleted sales inside the range, owner-scoped.
func (r *ReportRepo) SalesInRange(ctx context.Context, ownerID id.ID, dr reports.DateRange) ([]sales.Sale, error) {
	q := r.builder().
		Select(r.saleCols...).
		From("sales").
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.Eq{"deleted_at": nil}).
		Where(squirrel.GtOrEq{"sold_at": dr.Start}).
		Where(squirrel.LtOrEq{"sold_at": dr.End}).
		OrderBy("sold_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result []sales.Sale
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &result, sql, args...); err != nil {
		return nil, fmt.Errorf("sales in range: %w", err)
	}
	return result, nil
}

// ItemsForSales returns all lines belonging to the given sales, including
// returned and deleted lines.
func (r *ReportRepo) ItemsForSales(ctx context.Context, saleIDs []id.ID) ([]sales.SaleItem, error) {
	if len(saleIDs) == 0 {
		return nil, nil
	}

	q := r.builder().
		Select(r.itemCols...).
		From("sale_items").
		Where(squirrel.Eq{"sale_id": saleIDs})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []sales.SaleItem
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("items for sales: %w", err)
	}
	return items, nil
}

// CashCreditsInRange returns cash credits created inside the range.
func (r *ReportRepo) CashCreditsInRange(ctx context.Context, ownerID id.ID, dr reports.DateRange) ([]sales.Credit, error) {
	q := r.builder().
		Select(r.creditCols...).
		From("credits").
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.Eq{"credit_type": sales.CreditCash}).
		Where(squirrel.GtOrEq{"created_at": dr.Start}).
		Where(squirrel.LtOrEq{"created_at": dr.End})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var credits []sales.Credit
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &credits, sql, args...); err != nil {
		return nil, fmt.Errorf("cash credits in range: %w", err)
	}
	return credits, nil
}

// ProductsByOwner returns the owner's non-deleted product catalog.
func (r *ReportRepo) ProductsByOwner(ctx context.Context, ownerID id.ID) ([]product.Product, error) {
	q := r.builder().
		Select(r.productCols...).
		From("products").
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []product.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("products by owner: %w", err)
	}
	return products, nil
}
