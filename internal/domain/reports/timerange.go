package reports

import (
	"context"
	"time"

	"shopdesk/pkg/logger"
)

// DefaultTimezone is substituted when the requested timezone cannot be
// resolved. Aggregation must never abort on a bad timezone string.
const DefaultTimezone = "UTC"

const customDateLayout = "2006-01-02"

// loadLocation resolves an IANA timezone name against the tz database,
// failing closed to UTC. DST and historical offset rules come from the
// database; offsets are never derived by hand.
func loadLocation(ctx context.Context, name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn(ctx, "invalid timezone, falling back to default",
			"timezone", name, "default", DefaultTimezone)
		return time.UTC
	}
	return loc
}

// ResolveRange converts a symbolic selector plus timezone into concrete UTC
// instant bounds, evaluated against the current clock.
func ResolveRange(ctx context.Context, q RangeQuery) DateRange {
	return ResolveRangeAt(ctx, q, time.Now())
}

// ResolveRangeAt is ResolveRange with an explicit reference instant.
//
// Bounds are local midnight through 23:59:59.999 local, converted to UTC.
// "grand" starts at the Unix epoch. Unknown selectors and unparseable
// custom dates fall back to today.
func ResolveRangeAt(ctx context.Context, q RangeQuery, now time.Time) DateRange {
	loc := loadLocation(ctx, q.Timezone)
	local := now.In(loc)

	switch q.Selector {
	case RangeToday:
		return dayRange(local, local, loc)
	case RangeYesterday:
		y := local.AddDate(0, 0, -1)
		return dayRange(y, y, loc)
	case RangeWeek:
		return dayRange(local.AddDate(0, 0, -6), local, loc)
	case RangeMonth:
		return dayRange(local.AddDate(0, -1, 0), local, loc)
	case RangeYear:
		return dayRange(local.AddDate(-1, 0, 0), local, loc)
	case RangeGrand:
		return DateRange{
			Start:    time.Unix(0, 0).UTC(),
			End:      endOfDay(local, loc).UTC(),
			Location: loc,
		}
	case RangeCustom:
		from, errFrom := time.ParseInLocation(customDateLayout, q.CustomStart, loc)
		to, errTo := time.ParseInLocation(customDateLayout, q.CustomEnd, loc)
		if errFrom != nil || errTo != nil || to.Before(from) {
			logger.Warn(ctx, "invalid custom range, falling back to today",
				"from", q.CustomStart, "to", q.CustomEnd)
			return dayRange(local, local, loc)
		}
		return dayRange(from, to, loc)
	}

	// Unknown selector: today.
	return dayRange(local, local, loc)
}

// dayRange builds [local midnight of first .. end of day of last] in UTC.
func dayRange(first, last time.Time, loc *time.Location) DateRange {
	return DateRange{
		Start:    startOfDay(first, loc).UTC(),
		End:      endOfDay(last, loc).UTC(),
		Location: loc,
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	return startOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Millisecond)
}
