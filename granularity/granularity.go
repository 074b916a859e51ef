package granularity

import (
	"fmt"
	"time"
)

// Granularity is the bucket width used to downsample a price series.
type Granularity string

const (
	ThirtyMinutes Granularity = "30min"
	OneHour       Granularity = "1h"
	TwoHours      Granularity = "2h"
	FourHours     Granularity = "4h"
	EightHours    Granularity = "8h"
	TwelveHours   Granularity = "12h"
	OneDay        Granularity = "1d"
	TwoDays       Granularity = "2d"
	OneWeek       Granularity = "1w"
	TwoWeeks      Granularity = "2w"
)

const day = 24 * time.Hour

var durations = map[Granularity]time.Duration{
	ThirtyMinutes: 30 * time.Minute,
	OneHour:       time.Hour,
	TwoHours:      2 * time.Hour,
	FourHours:     4 * time.Hour,
	EightHours:    8 * time.Hour,
	TwelveHours:   12 * time.Hour,
	OneDay:        day,
	TwoDays:       2 * day,
	OneWeek:       7 * day,
	TwoWeeks:      14 * day,
}

// All returns every granularity ordered by duration.
func All() []Granularity {
	return []Granularity{
		ThirtyMinutes, OneHour, TwoHours, FourHours, EightHours,
		TwelveHours, OneDay, TwoDays, OneWeek, TwoWeeks,
	}
}

// Duration returns the fixed bucket width. Unknown values fall back to one day.
func (g Granularity) Duration() time.Duration {
	if d, ok := durations[g]; ok {
		return d
	}
	return day
}

func (g Granularity) Valid() bool {
	_, ok := durations[g]
	return ok
}

func (g Granularity) String() string { return string(g) }

// Parse converts a label such as "8h" into a Granularity.
func Parse(s string) (Granularity, error) {
	g := Granularity(s)
	if !g.Valid() {
		return "", fmt.Errorf("unknown granularity %q", s)
	}
	return g, nil
}

// PointCount is the number of buckets g produces over days whole days.
// Buckets wider than a day use integer division, so partial buckets are dropped.
func PointCount(g Granularity, days int) int {
	width := g.Duration()
	if width <= day {
		return days * int(day/width)
	}
	return days / int(width/day)
}

// band maps an upper bound on the day span to its natural bucket and to the
// denser bucket used when the natural one exceeds a point budget.
type band struct {
	maxDays int
	natural Granularity
	dense   Granularity
}

// bands are checked in order; the upper bound of each band is inclusive.
// The last band has no upper bound.
var bands = []band{
	{maxDays: 1, natural: ThirtyMinutes, dense: OneHour},
	{maxDays: 7, natural: TwoHours, dense: OneHour},
	{maxDays: 30, natural: EightHours, dense: FourHours},
	{maxDays: 90, natural: OneDay, dense: TwelveHours},
	{maxDays: 180, natural: TwoDays, dense: OneDay},
	{maxDays: 365, natural: OneWeek, dense: TwoDays},
	{maxDays: -1, natural: TwoWeeks, dense: OneWeek},
}

func bandFor(days int) band {
	for _, b := range bands {
		if b.maxDays < 0 || days <= b.maxDays {
			return b
		}
	}
	return bands[len(bands)-1]
}

// resolve picks the bucket for a span of days. A budget <= 0 disables the
// point budget and the natural bucket is always returned.
func resolve(days, budget int) (Granularity, int) {
	b := bandFor(days)
	points := PointCount(b.natural, days)
	if budget <= 0 || points <= budget {
		return b.natural, points
	}
	return b.dense, min(PointCount(b.dense, days), budget)
}

// Resolve returns the natural granularity for the range.
func Resolve(rng DateRange) Granularity {
	g, _ := resolve(rng.Days(), 0)
	return g
}

// ResolveBounded returns a granularity and point count no larger than
// maxPoints. When the natural granularity already fits it is returned as is.
// A maxPoints <= 0 is treated as no budget and returns the natural
// granularity with its full count, rather than the dense one clamped to zero.
func ResolveBounded(rng DateRange, maxPoints int) (Granularity, int) {
	return resolve(rng.Days(), maxPoints)
}
