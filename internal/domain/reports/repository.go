package reports

import (
	"context"

	"shopdesk/internal/core/id"
	"shopdesk/internal/domain/catalogs/product"
	"shopdesk/internal/domain/sales"
)

// Repository supplies raw records for aggregation. The aggregator itself
// performs no I/O; it only consumes what the repository materialized.
type Repository interface {
	// SalesInRange returns non-deleted sales whose sold-at instant falls
	// inside the range, owner-scoped.
	SalesInRange(ctx context.Context, ownerID id.ID, r DateRange) ([]sales.Sale, error)

	// ItemsForSales returns all lines belonging to the given sales,
	// including returned/deleted lines (the aggregator filters them).
	ItemsForSales(ctx context.Context, saleIDs []id.ID) ([]sales.SaleItem, error)

	// CashCreditsInRange returns cash credits created inside the range,
	// owner-scoped.
	CashCreditsInRange(ctx context.Context, ownerID id.ID, r DateRange) ([]sales.Credit, error)

	// ProductsByOwner returns the owner's product catalog for category
	// bucketing.
	ProductsByOwner(ctx context.Context, ownerID id.ID) ([]product.Product, error)
}
