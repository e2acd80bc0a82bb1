package reports

import (
	"context"
	"fmt"
	"time"

	"shopdesk/internal/core/id"
)

// Service builds chart-ready dashboards from raw records.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Dashboard resolves the requested range and aggregates the owner's sales,
// profit, credits and catalog into chart buckets.
func (s *Service) Dashboard(ctx context.Context, ownerID id.ID, q RangeQuery) (*Dashboard, error) {
	now := s.now()
	r := ResolveRangeAt(ctx, q, now)

	saleRecs, err := s.repo.SalesInRange(ctx, ownerID, r)
	if err != nil {
		return nil, fmt.Errorf("fetch sales: %w", err)
	}

	saleIDs := make([]id.ID, 0, len(saleRecs))
	for i := range saleRecs {
		saleIDs = append(saleIDs, saleRecs[i].ID)
	}

	items, err := s.repo.ItemsForSales(ctx, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch sale items: %w", err)
	}

	credits, err := s.repo.CashCreditsInRange(ctx, ownerID, r)
	if err != nil {
		return nil, fmt.Errorf("fetch credits: %w", err)
	}

	products, err := s.repo.ProductsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}

	totalSales, totalProfit, count := Totals(saleRecs, items)

	return &Dashboard{
		Range:          r,
		Days:           BucketByDay(r, saleRecs, items),
		Weekly:         BucketWeekly(now, r.Location, saleRecs, items),
		Categories:     BucketByCategory(products),
		TotalSales:     totalSales,
		TotalProfit:    totalProfit,
		CreditExposure: CreditExposure(saleRecs, credits),
		SaleCount:      count,
	}, nil
}
