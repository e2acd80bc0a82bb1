package reports

import (
	"sort"
	"time"

	"shopdesk/internal/core/id"
	"shopdesk/internal/core/types"
	"shopdesk/internal/domain/catalogs/product"
	"shopdesk/internal/domain/sales"
)

const dayKeyLayout = "2006-01-02"

// UncategorizedLabel groups products without a category.
const UncategorizedLabel = "Uncategorized"

// countableSale reports whether a sale participates in aggregation.
// Soft-deleted sales and sales with a missing/zero timestamp are skipped
// silently; a single bad record never aborts the batch.
func countableSale(s *sales.Sale) bool {
	return !s.IsDeleted() && !s.SoldAt.IsZero()
}

// BucketByDay groups sales into local calendar-day buckets within the range.
// Sales totals come from the sale header; profit totals join lines by sale
// ID, excluding returned and deleted lines. Buckets are ordered by date.
func BucketByDay(r DateRange, saleRecs []sales.Sale, items []sales.SaleItem) []DayBucket {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}

	profitBySale := sumProfitBySale(items)

	buckets := make(map[string]*DayBucket)
	for i := range saleRecs {
		s := &saleRecs[i]
		if !countableSale(s) || !r.Contains(s.SoldAt) {
			continue
		}
		local := s.SoldAt.In(loc)
		key := local.Format(dayKeyLayout)
		b, ok := buckets[key]
		if !ok {
			b = &DayBucket{
				Label:  local.Format("Jan 2"),
				Date:   startOfDay(local, loc),
				Sales:  types.Zero(),
				Profit: types.Zero(),
			}
			buckets[key] = b
		}
		b.Sales = b.Sales.Add(s.FinalAmount)
		b.Profit = b.Profit.Add(profitBySale[s.ID])
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]DayBucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, *buckets[k])
	}
	return out
}

// BucketWeekly returns exactly 7 buckets covering the trailing 7 local days
// ending today, zero-initialized so empty days still chart.
func BucketWeekly(now time.Time, loc *time.Location, saleRecs []sales.Sale, items []sales.SaleItem) []WeekdayBucket {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	first := startOfDay(local.AddDate(0, 0, -6), loc)

	buckets := make([]WeekdayBucket, 7)
	index := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		day := first.AddDate(0, 0, i)
		buckets[i] = WeekdayBucket{
			Label:  day.Format("Mon"),
			Date:   day,
			Sales:  types.Zero(),
			Profit: types.Zero(),
		}
		index[day.Format(dayKeyLayout)] = i
	}

	profitBySale := sumProfitBySale(items)

	for i := range saleRecs {
		s := &saleRecs[i]
		if !countableSale(s) {
			continue
		}
		key := s.SoldAt.In(loc).Format(dayKeyLayout)
		at, ok := index[key]
		if !ok {
			continue
		}
		buckets[at].Sales = buckets[at].Sales.Add(s.FinalAmount)
		buckets[at].Profit = buckets[at].Profit.Add(profitBySale[s.ID])
	}
	return buckets
}

// BucketByCategory counts products per category, most populated first.
// Products without a category land in "Uncategorized".
func BucketByCategory(products []product.Product) []CategoryBucket {
	counts := make(map[string]int)
	for i := range products {
		cat := products[i].Category
		if cat == "" {
			cat = UncategorizedLabel
		}
		counts[cat]++
	}

	out := make([]CategoryBucket, 0, len(counts))
	for cat, n := range counts {
		out = append(out, CategoryBucket{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// CreditExposure sums open customer balances: positive outstanding amounts
// on unpaid named-customer sales, plus positive remaining cash credits.
func CreditExposure(saleRecs []sales.Sale, cashCredits []sales.Credit) types.Money {
	total := types.Zero()
	for i := range saleRecs {
		s := &saleRecs[i]
		if s.IsDeleted() || !s.IsCustomerCredit() {
			continue
		}
		total = total.Add(s.Outstanding())
	}
	for i := range cashCredits {
		total = total.Add(types.PositiveOrZero(cashCredits[i].RemainingAmount))
	}
	return total
}

// Totals computes the flat (non-bucketed) sales and profit sums plus the
// countable sale count over the same records the buckets see. Per-day
// bucket sums must equal these exactly.
func Totals(saleRecs []sales.Sale, items []sales.SaleItem) (salesTotal, profitTotal types.Money, count int) {
	salesTotal = types.Zero()
	profitTotal = types.Zero()
	profitBySale := sumProfitBySale(items)
	for i := range saleRecs {
		s := &saleRecs[i]
		if !countableSale(s) {
			continue
		}
		salesTotal = salesTotal.Add(s.FinalAmount)
		profitTotal = profitTotal.Add(profitBySale[s.ID])
		count++
	}
	return salesTotal, profitTotal, count
}

// sumProfitBySale aggregates line profit per sale, excluding returned and
// deleted lines.
func sumProfitBySale(items []sales.SaleItem) map[id.ID]types.Money {
	out := make(map[id.ID]types.Money)
	for i := range items {
		it := &items[i]
		if !it.CountsTowardTotals() {
			continue
		}
		cur, ok := out[it.SaleID]
		if !ok {
			cur = types.Zero()
		}
		out[it.SaleID] = cur.Add(it.Profit)
	}
	return out
}
