// Package reports provides timezone-aware dashboard aggregation.
package reports

import (
	"time"

	"shopdesk/internal/core/types"
)

// RangeSelector is a symbolic date-range name supplied by the UI.
type RangeSelector string

const (
	RangeToday     RangeSelector = "today"
	RangeYesterday RangeSelector = "yesterday"
	RangeWeek      RangeSelector = "1week"
	RangeMonth     RangeSelector = "1month"
	RangeYear      RangeSelector = "1year"
	RangeGrand     RangeSelector = "grand"
	RangeCustom    RangeSelector = "custom"
)

// DateRange is a resolved pair of UTC instants plus the timezone the range
// was derived in. Start and End are inclusive: End is the last representable
// millisecond of the local day.
type DateRange struct {
	Start    time.Time      `json:"start"`
	End      time.Time      `json:"end"`
	Location *time.Location `json:"-"`
}

// Contains reports whether the instant falls inside the range (inclusive).
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// RangeQuery is the raw dashboard request from the UI layer.
type RangeQuery struct {
	Selector RangeSelector
	Timezone string
	// CustomStart / CustomEnd are "2006-01-02" local dates, used only
	// when Selector is RangeCustom.
	CustomStart string
	CustomEnd   string
}

// DayBucket is one calendar day's totals for charting.
type DayBucket struct {
	// Label is a short human date ("Jan 2").
	Label string `json:"label"`
	// Date is local midnight of the bucket's day.
	Date   time.Time   `json:"date"`
	Sales  types.Money `json:"sales"`
	Profit types.Money `json:"profit"`
}

// WeekdayBucket is one of the seven trailing-week buckets.
// Buckets exist even when empty; values default to zero.
type WeekdayBucket struct {
	// Label is the short weekday name ("Mon").
	Label  string      `json:"label"`
	Date   time.Time   `json:"date"`
	Sales  types.Money `json:"sales"`
	Profit types.Money `json:"profit"`
}

// CategoryBucket counts products per category.
type CategoryBucket struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Dashboard is the chart-ready aggregation result.
type Dashboard struct {
	Range          DateRange        `json:"range"`
	Days           []DayBucket      `json:"days"`
	Weekly         []WeekdayBucket  `json:"weekly"`
	Categories     []CategoryBucket `json:"categories"`
	TotalSales     types.Money      `json:"totalSales"`
	TotalProfit    types.Money      `json:"totalProfit"`
	CreditExposure types.Money      `json:"creditExposure"`
	SaleCount      int              `json:"saleCount"`
}
