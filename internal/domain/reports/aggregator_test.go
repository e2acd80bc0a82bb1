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

func saleAt(ownerID id.ID, at time.Time, final string) sales.Sale {
	return sales.Sale{
		ID:          id.New(),
		OwnerID:     ownerID,
		FinalAmount: types.MustMoney(final),
		SoldAt:      at,
	}
}

func itemFor(saleID id.ID, profit string) sales.SaleItem {
	return sales.SaleItem{
		ID:     id.New(),
		SaleID: saleID,
		Profit: types.MustMoney(profit),
	}
}

func TestBucketByDay_SumsMatchTotals(t *testing.T) {
	ctx := context.Background()
	ownerID := id.New()
	r := ResolveRangeAt(ctx, RangeQuery{Selector: RangeWeek}, refNow)

	day1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 12, 18, 30, 0, 0, time.UTC)

	s1 := saleAt(ownerID, day1, "100.50")
	s2 := saleAt(ownerID, day1, "49.50")
	s3 := saleAt(ownerID, day2, "200.00")
	saleRecs := []sales.Sale{s1, s2, s3}
	items := []sales.SaleItem{
		itemFor(s1.ID, "20.10"),
		itemFor(s2.ID, "9.90"),
		itemFor(s3.ID, "40.00"),
	}

	buckets := BucketByDay(r, saleRecs, items)
	require.Len(t, buckets, 2)

	// Ordered by date.
	assert.True(t, buckets[0].Date.Before(buckets[1].Date))
	assert.True(t, buckets[0].Sales.Equal(types.MustMoney("150.00")))
	assert.True(t, buckets[1].Sales.Equal(types.MustMoney("200.00")))

	salesTotal, profitTotal, count := Totals(saleRecs, items)
	assert.Equal(t, 3, count)

	bucketSales := types.Zero()
	bucketProfit := types.Zero()
	for _, b := range buckets {
		bucketSales = bucketSales.Add(b.Sales)
		bucketProfit = bucketProfit.Add(b.Profit)
	}
	assert.True(t, bucketSales.Equal(salesTotal))
	assert.True(t, bucketProfit.Equal(profitTotal))
}

func TestBucketByDay_SkipsDeletedAndZeroTimestamp(t *testing.T) {
	ctx := context.Background()
	ownerID := id.New()
	r := ResolveRangeAt(ctx, RangeQuery{Selector: RangeWeek}, refNow)

	good := saleAt(ownerID, time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC), "50.00")

	deletedAt := time.Now()
	deleted := saleAt(ownerID, good.SoldAt, "999.00")
	deleted.DeletedAt = &deletedAt

	noTimestamp := saleAt(ownerID, time.Time{}, "999.00")

	buckets := BucketByDay(r, []sales.Sale{good, deleted, noTimestamp}, nil)
	require.Len(t, buckets, 1)
	assert.True(t, buckets[0].Sales.Equal(types.MustMoney("50.00")))

	_, _, count := Totals([]sales.Sale{good, deleted, noTimestamp}, nil)
	assert.Equal(t, 1, count)
}

func TestBucketByDay_ExcludesReturnedAndDeletedLines(t *testing.T) {
	ctx := context.Background()
	ownerID := id.New()
	r := ResolveRangeAt(ctx, RangeQuery{Selector: RangeWeek}, refNow)

	s := saleAt(ownerID, time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC), "100.00")

	kept := itemFor(s.ID, "30.00")
	returned := itemFor(s.ID, "70.00")
	returned.IsReturn = true
	removed := itemFor(s.ID, "50.00")
	removed.IsDeleted = true

	buckets := BucketByDay(r, []sales.Sale{s}, []sales.SaleItem{kept, returned, removed})
	require.Len(t, buckets, 1)
	assert.True(t, buckets[0].Profit.Equal(types.MustMoney("30.00")))
}

func TestBucketWeekly_SevenZeroFilledBuckets(t *testing.T) {
	ownerID := id.New()

	// One sale three days ago, everything else empty.
	at := refNow.AddDate(0, 0, -3).Truncate(time.Hour)
	s := saleAt(ownerID, at, "75.00")

	buckets := BucketWeekly(refNow, time.UTC, []sales.Sale{s}, []sales.SaleItem{itemFor(s.ID, "15.00")})
	require.Len(t, buckets, 7)

	// Oldest bucket first, today last.
	assert.Equal(t, refNow.AddDate(0, 0, -6).Format("Mon"), buckets[0].Label)
	assert.Equal(t, refNow.Format("Mon"), buckets[6].Label)

	nonZero := 0
	for _, b := range buckets {
		if !b.Sales.IsZero() {
			nonZero++
			assert.True(t, b.Sales.Equal(types.MustMoney("75.00")))
			assert.True(t, b.Profit.Equal(types.MustMoney("15.00")))
		}
	}
	assert.Equal(t, 1, nonZero)
}

func TestBucketWeekly_IgnoresSalesOutsideWindow(t *testing.T) {
	ownerID := id.New()
	old := saleAt(ownerID, refNow.AddDate(0, 0, -10), "500.00")

	buckets := BucketWeekly(refNow, time.UTC, []sales.Sale{old}, nil)
	for _, b := range buckets {
		assert.True(t, b.Sales.IsZero())
	}
}

func TestBucketByCategory(t *testing.T) {
	ownerID := id.New()
	mk := func(category string) product.Product {
		p := product.New(ownerID, "p")
		p.Category = category
		return *p
	}

	products := []product.Product{
		mk("drinks"), mk("drinks"), mk("drinks"),
		mk("snacks"),
		mk(""), mk(""),
	}

	buckets := BucketByCategory(products)
	require.Len(t, buckets, 3)

	// Most populated first.
	assert.Equal(t, "drinks", buckets[0].Category)
	assert.Equal(t, 3, buckets[0].Count)
	assert.Equal(t, UncategorizedLabel, buckets[1].Category)
	assert.Equal(t, 2, buckets[1].Count)
	assert.Equal(t, "snacks", buckets[2].Category)
}

func TestCreditExposure(t *testing.T) {
	ownerID := id.New()
	customer := "Alice"

	unpaid := saleAt(ownerID, refNow, "100.00")
	unpaid.CustomerName = &customer
	unpaid.PaidAmount = types.MustMoney("40.00")
	unpaid.PaymentStatus = sales.PaymentPartial

	// Paid sales carry no exposure even with a named customer.
	paid := saleAt(ownerID, refNow, "50.00")
	paid.CustomerName = &customer
	paid.PaidAmount = types.MustMoney("50.00")
	paid.PaymentStatus = sales.PaymentPaid

	// Anonymous sales never count.
	anon := saleAt(ownerID, refNow, "30.00")
	anon.PaymentStatus = sales.PaymentUnpaid

	credit := sales.NewCashCredit(ownerID, "Bob", types.MustMoney("25.00"))

	total := CreditExposure([]sales.Sale{unpaid, paid, anon}, []sales.Credit{*credit})
	assert.True(t, total.Equal(types.MustMoney("85.00")), "got %s", total)
}

func TestCreditExposure_ClampsOverpayment(t *testing.T) {
	ownerID := id.New()
	customer := "Carol"

	over := saleAt(ownerID, refNow, "100.00")
	over.CustomerName = &customer
	over.PaidAmount = types.MustMoney("120.00")
	over.PaymentStatus = sales.PaymentPartial // stale status on purpose

	total := CreditExposure([]sales.Sale{over}, nil)
	assert.True(t, total.IsZero())
}
