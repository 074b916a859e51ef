package analysis

import (
	"sort"

	"github.com/delbyte/solana-news-analysis/granularity"
	"github.com/delbyte/solana-news-analysis/models"
)

// Resample keeps the last observation inside each interval and stamps it with
// the interval start. Intervals without observations produce no point.
func Resample(points []models.PricePoint, intervals []granularity.Interval) []models.PricePoint {
	sorted := make([]models.PricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	out := make([]models.PricePoint, 0, len(intervals))
	j := 0
	for i, iv := range intervals {
		last := i == len(intervals)-1
		for j < len(sorted) && sorted[j].Timestamp < iv.StartTS {
			j++
		}

		found := false
		var bucket models.PricePoint
		for j < len(sorted) && iv.Contains(sorted[j].Timestamp, last) {
			bucket = sorted[j]
			found = true
			j++
		}
		if found {
			bucket.Timestamp = iv.StartTS
			out = append(out, bucket)
		}
	}
	return out
}

func splitSeries(points []models.PricePoint) ([]models.PriceSample, []models.VolumeSample) {
	prices := make([]models.PriceSample, len(points))
	volumes := make([]models.VolumeSample, len(points))
	for i, p := range points {
		prices[i] = models.PriceSample{Timestamp: p.Timestamp, Price: p.Price}
		volumes[i] = models.VolumeSample{Timestamp: p.Timestamp, Volume: p.Volume}
	}
	return prices, volumes
}
