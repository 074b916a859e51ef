package granularity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spanOf(t *testing.T, days int) DateRange {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rng, err := NewDateRange(start, start.AddDate(0, 0, days))
	require.NoError(t, err)
	return rng
}

func TestResolveBoundaries(t *testing.T) {
	testCases := []struct {
		days     int
		expected Granularity
	}{
		{0, ThirtyMinutes},
		{1, ThirtyMinutes},
		{2, TwoHours},
		{6, TwoHours},
		{7, TwoHours},
		{8, EightHours},
		{29, EightHours},
		{30, EightHours},
		{31, OneDay},
		{89, OneDay},
		{90, OneDay},
		{91, TwoDays},
		{179, TwoDays},
		{180, TwoDays},
		{181, OneWeek},
		{364, OneWeek},
		{365, OneWeek},
		{366, TwoWeeks},
		{2000, TwoWeeks},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Resolve(spanOf(t, tc.days)), "days=%d", tc.days)
	}
}

func TestResolveIsNonDecreasing(t *testing.T) {
	prev := time.Duration(0)
	for days := 0; days <= 800; days++ {
		d := Resolve(spanOf(t, days)).Duration()
		assert.GreaterOrEqual(t, d, prev, "days=%d", days)
		prev = d
	}
}

func TestResolveExampleMonth(t *testing.T) {
	rng, err := ParseRange("2025-03-01", "2025-04-01", DefaultLayout)
	require.NoError(t, err)

	assert.Equal(t, 31, rng.Days())
	assert.Equal(t, OneDay, Resolve(rng))
}

func TestPointCount(t *testing.T) {
	assert.Equal(t, 480, PointCount(ThirtyMinutes, 10))
	assert.Equal(t, 120, PointCount(TwoHours, 10))
	assert.Equal(t, 30, PointCount(EightHours, 10))
	assert.Equal(t, 10, PointCount(OneDay, 10))
	assert.Equal(t, 5, PointCount(TwoDays, 11))
	assert.Equal(t, 1, PointCount(OneWeek, 13))
	assert.Equal(t, 0, PointCount(TwoWeeks, 13))
}

func TestResolveBounded(t *testing.T) {
	testCases := []struct {
		name      string
		days      int
		maxPoints int
		expected  Granularity
		points    int
	}{
		{"natural fits", 40, 50, OneDay, 40},
		{"natural fits exactly", 5, 60, TwoHours, 60},
		{"single day downgrades", 1, 10, OneHour, 10},
		{"week band downgrades", 5, 50, OneHour, 50},
		{"month band downgrades", 20, 50, FourHours, 50},
		{"quarter band downgrades", 60, 50, TwelveHours, 50},
		{"dense count below budget", 400, 28, TwoWeeks, 28},
		{"multi year downgrades", 400, 10, OneWeek, 10},
		{"no budget", 20, 0, EightHours, 60},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, points := ResolveBounded(spanOf(t, tc.days), tc.maxPoints)
			assert.Equal(t, tc.expected, g)
			assert.Equal(t, tc.points, points)
			if tc.maxPoints > 0 {
				assert.LessOrEqual(t, points, tc.maxPoints)
			}
		})
	}
}

func TestIntervalsContiguous(t *testing.T) {
	for _, days := range []int{0, 1, 3, 7, 8, 31, 95, 200, 400} {
		rng := spanOf(t, days)
		intervals := Intervals(rng)
		require.NotEmpty(t, intervals, "days=%d", days)

		assert.True(t, intervals[0].Start.Equal(rng.Start), "days=%d", days)
		last := intervals[len(intervals)-1]
		assert.True(t, last.End.Equal(rng.DayEnd()), "days=%d", days)

		for i, iv := range intervals {
			assert.True(t, iv.Start.Before(iv.End), "days=%d interval=%d", days, i)
			assert.Equal(t, iv.Start.Unix(), iv.StartTS)
			assert.Equal(t, iv.End.Unix(), iv.EndTS)
			if i > 0 {
				assert.True(t, intervals[i-1].End.Equal(iv.Start), "days=%d interval=%d", days, i)
			}
		}
	}
}

func TestIntervalsSingleDay(t *testing.T) {
	rng, err := ParseRange("2025-03-01", "2025-03-01", DefaultLayout)
	require.NoError(t, err)

	intervals := Intervals(rng)
	require.Len(t, intervals, 48)
	assert.Equal(t, 30*time.Minute, intervals[0].End.Sub(intervals[0].Start))
	assert.Equal(t, time.Date(2025, 3, 1, 23, 59, 59, 0, time.UTC), intervals[47].End)
}

func TestParseRangeErrors(t *testing.T) {
	_, err := ParseRange("01-03-2025", "2025-04-01", DefaultLayout)
	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, "01-03-2025", formatErr.Value)

	_, err = ParseRange("2025-04-01", "2025-03-01", DefaultLayout)
	var rangeErr *RangeError
	assert.True(t, errors.As(err, &rangeErr))

	rng, err := ParseRange("01-03-2025", "02-03-2025", "02-01-2006")
	require.NoError(t, err)
	assert.Equal(t, 1, rng.Days())
}

func TestDateRangeNormalizes(t *testing.T) {
	a, err := NewDateRange(
		time.Date(2025, 3, 1, 15, 4, 5, 0, time.UTC),
		time.Date(2025, 3, 2, 23, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	b, err := ParseRange("2025-03-01", "2025-03-02", "")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, "2025-03-01/2025-03-02", a.Key())
}

func TestAllOrderedByDuration(t *testing.T) {
	all := All()
	require.Len(t, all, 10)
	for i, g := range all {
		assert.True(t, g.Valid(), "%s", g)
		parsed, err := Parse(g.String())
		require.NoError(t, err)
		assert.Equal(t, g, parsed)
		if i > 0 {
			assert.Greater(t, g.Duration(), all[i-1].Duration())
		}
	}
}

func TestResolveBoundedWithoutBudget(t *testing.T) {
	g, points := ResolveBounded(spanOf(t, 20), -5)
	assert.Equal(t, EightHours, g)
	assert.Equal(t, 60, points)
}
