package dto

import (
	"shopdesk/internal/domain/reports"
)

// DashboardRequest for GET /reports/dashboard.
type DashboardRequest struct {
	Range       string `form:"range"`
	Timezone    string `form:"tz"`
	CustomStart string `form:"from"`
	CustomEnd   string `form:"to"`
}

// ToRangeQuery converts to the domain query. Defaults to "today".
func (r DashboardRequest) ToRangeQuery() reports.RangeQuery {
	selector := reports.RangeSelector(r.Range)
	if r.Range == "" {
		selector = reports.RangeToday
	}
	return reports.RangeQuery{
		Selector:    selector,
		Timezone:    r.Timezone,
		CustomStart: r.CustomStart,
		CustomEnd:   r.CustomEnd,
	}
}
