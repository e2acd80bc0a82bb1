package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reference instant: 2026-03-15 14:30 UTC
var refNow = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

func TestResolveRangeAt_Today(t *testing.T) {
	ctx := context.Background()
	r := ResolveRangeAt(ctx, RangeQuery{Selector: RangeToday}, refNow)

	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2026, 3, 15, 23, 59, 59, 999_000_000, time.UTC), r.End)
}

func TestResolveRangeAt_Yesterday(t *testing.T) {
	ctx := context.Background()
	r := ResolveRangeAt(ctx, RangeQuery{Selector: RangeYesterday}, refNow)

	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2026, 3, 14, 23, 59, 59, 999_000_000, time.UTC), r.End)
}

func TestResolveRangeAt_Week(t *testing.T) {
	ctx := context.Background()
	r := ResolveRangeAt(ctx, RangeQuery{Selector: RangeWeek}, refNow)

	// Trailing 7 days including today.
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2026, 3, 15, 23, 59, 59, 999_000_000, time.UTC), r.End)
}

func TestResolveRangeAt_Grand(t *testing.T) {
	ctx := context.Background()
	r := ResolveRangeAt(ctx, RangeQuery{Selector: RangeGrand}, refNow)

	assert.Equal(t, time.Unix(0, 0).UTC(), r.Start)
	assert.Equal(t, time.Date(2026, 3, 15, 23, 59, 59, 999_000_000, time.UTC), r.End)
}

func TestResolveRangeAt_TimezoneBoundaries(t *testing.T) {
	ctx := context.Background()

	// 14:30 UTC on Mar 15 is already Mar 16 in Auckland (UTC+13 during NZDT).
	r := ResolveRangeAt(ctx, RangeQuery{
		Selector: RangeToday,
		Timezone: "Pacific/Auckland",
	}, refNow)

	loc, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)

	localDay := refNow.In(loc)
	wantStart := time.Date(localDay.Year(), localDay.Month(), localDay.Day(), 0, 0, 0, 0, loc).UTC()
	assert.Equal(t, wantStart, r.Start)

	// Same instant, New York local day is still Mar 15.
	rNY := ResolveRangeAt(ctx, RangeQuery{
		Selector: RangeToday,
		Timezone: "America/New_York",
	}, refNow)
	assert.NotEqual(t, r.Start, rNY.Start)
}

func TestResolveRangeAt_InvalidTimezoneFallsBackToUTC(t *testing.T) {
	ctx := context.Background()

	got := ResolveRangeAt(ctx, RangeQuery{Selector: RangeToday, Timezone: "Not/AZone"}, refNow)
	want := ResolveRangeAt(ctx, RangeQuery{Selector: RangeToday}, refNow)

	assert.Equal(t, want.Start, got.Start)
	assert.Equal(t, want.End, got.End)
}

func TestResolveRangeAt_Custom(t *testing.T) {
	ctx := context.Background()

	r := ResolveRangeAt(ctx, RangeQuery{
		Selector:    RangeCustom,
		CustomStart: "2026-01-01",
		CustomEnd:   "2026-01-31",
	}, refNow)

	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2026, 1, 31, 23, 59, 59, 999_000_000, time.UTC), r.End)
}

func TestResolveRangeAt_CustomInvalidFallsBackToToday(t *testing.T) {
	ctx := context.Background()
	today := ResolveRangeAt(ctx, RangeQuery{Selector: RangeToday}, refNow)

	tests := []struct {
		name     string
		from, to string
	}{
		{"unparseable from", "garbage", "2026-01-31"},
		{"unparseable to", "2026-01-01", "31/01/2026"},
		{"end before start", "2026-01-31", "2026-01-01"},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ResolveRangeAt(ctx, RangeQuery{
				Selector:    RangeCustom,
				CustomStart: tt.from,
				CustomEnd:   tt.to,
			}, refNow)
			assert.Equal(t, today.Start, r.Start)
			assert.Equal(t, today.End, r.End)
		})
	}
}

func TestResolveRangeAt_UnknownSelectorFallsBackToToday(t *testing.T) {
	ctx := context.Background()
	today := ResolveRangeAt(ctx, RangeQuery{Selector: RangeToday}, refNow)
	got := ResolveRangeAt(ctx, RangeQuery{Selector: "fortnight"}, refNow)

	assert.Equal(t, today.Start, got.Start)
	assert.Equal(t, today.End, got.End)
}

func TestDateRange_Contains(t *testing.T) {
	ctx := context.Background()
	r := ResolveRangeAt(ctx, RangeQuery{Selector: RangeToday}, refNow)

	assert.True(t, r.Contains(r.Start))
	assert.True(t, r.Contains(r.End))
	assert.False(t, r.Contains(r.Start.Add(-time.Millisecond)))
	assert.False(t, r.Contains(r.End.Add(time.Millisecond)))
}
