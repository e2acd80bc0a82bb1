package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopdesk/internal/core/id"
	"shopdesk/internal/core/types"
	"shopdesk/internal/domain/catalogs/product"
	"shopdesk/internal/domain/sales"
)

type stubRepo struct {
	sales    []sales.Sale
	items    []sales.SaleItem
	credits  []sales.Credit
	products []product.Product

	gotRange   DateRange
	gotSaleIDs []id.ID
}

func (s *stubRepo) SalesInRange(ctx context.Context, ownerID id.ID, r DateRange) ([]sales.Sale, error) {
	s.gotRange = r
	return s.sales, nil
}

func (s *stubRepo) ItemsForSales(ctx context.Context, saleIDs []id.ID) ([]sales.SaleItem, error) {
	s.gotSaleIDs = saleIDs
	return s.items, nil
}

func (s *stubRepo) CashCreditsInRange(ctx context.Context, ownerID id.ID, r DateRange) ([]sales.Credit, error) {
	return s.credits, nil
}

func (s *stubRepo) ProductsByOwner(ctx context.Context, ownerID id.ID) ([]product.Product, error) {
	return s.products, nil
}

func TestService_Dashboard(t *testing.T) {
	ctx := context.Background()
	ownerID := id.New()

	s1 := saleAt(ownerID, refNow.Add(-2*time.Hour), "100.00")
	s2 := saleAt(ownerID, refNow.Add(-26*time.Hour), "50.00")

	repo := &stubRepo{
		sales: []sales.Sale{s1, s2},
		items: []sales.SaleItem{
			itemFor(s1.ID, "30.00"),
			itemFor(s2.ID, "10.00"),
		},
		credits: []sales.Credit{
			*sales.NewCashCredit(ownerID, "Alice", types.MustMoney("40.00")),
		},
		products: []product.Product{
			*product.New(ownerID, "Widget"),
		},
	}

	svc := NewService(repo)
	svc.now = func() time.Time { return refNow }

	dash, err := svc.Dashboard(ctx, ownerID, RangeQuery{Selector: RangeWeek})
	require.NoError(t, err)

	assert.Equal(t, 2, dash.SaleCount)
	assert.True(t, dash.TotalSales.Equal(types.MustMoney("150.00")))
	assert.True(t, dash.TotalProfit.Equal(types.MustMoney("40.00")))
	assert.True(t, dash.CreditExposure.Equal(types.MustMoney("40.00")))
	assert.Len(t, dash.Days, 2)
	assert.Len(t, dash.Weekly, 7)
	require.Len(t, dash.Categories, 1)
	assert.Equal(t, UncategorizedLabel, dash.Categories[0].Category)

	// Range resolved against the service clock and handed to the repository.
	assert.Equal(t, dash.Range.Start, repo.gotRange.Start)
	assert.Equal(t, []id.ID{s1.ID, s2.ID}, repo.gotSaleIDs)
}
