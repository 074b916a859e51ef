package granularity

import "time"

// Interval is one contiguous window of a generated schedule.
type Interval struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	StartTS int64     `json:"start_timestamp"`
	EndTS   int64     `json:"end_timestamp"`
}

// Contains reports whether ts (epoch seconds) falls inside [StartTS, EndTS).
// The final interval of a schedule also includes its end.
func (iv Interval) Contains(ts int64, last bool) bool {
	if last {
		return ts >= iv.StartTS && ts <= iv.EndTS
	}
	return ts >= iv.StartTS && ts < iv.EndTS
}

// Intervals splits the range into windows of its resolved granularity. The
// range is inclusive of its final day, so the last window ends at DayEnd.
func Intervals(rng DateRange) []Interval {
	return IntervalsOf(rng, Resolve(rng))
}

// IntervalsOf splits the range into windows of width g.
func IntervalsOf(rng DateRange, g Granularity) []Interval {
	step := g.Duration()
	end := rng.DayEnd()

	intervals := make([]Interval, 0, int(end.Sub(rng.Start)/step)+1)
	for cur := rng.Start; cur.Before(end); {
		next := cur.Add(step)
		if next.After(end) {
			next = end
		}
		intervals = append(intervals, Interval{
			Start:   cur,
			End:     next,
			StartTS: cur.Unix(),
			EndTS:   next.Unix(),
		})
		cur = next
	}
	return intervals
}
