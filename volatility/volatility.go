package volatility

import (
	"math"

	"github.com/delbyte/solana-news-analysis/models"
)

// Spikes scores each price change against the spread of the preceding window
// of changes. The spike value is |r - mean| / stddev of those changes, where r
// is the percentage return into the point. Points without a full window, or
// whose window has no spread, score zero. The first price has no return and
// is omitted, so the result has len(prices)-1 samples.
func Spikes(prices []models.PriceSample, window int) []models.VolatilitySample {
	if len(prices) < 2 {
		return nil
	}
	if window < 2 {
		window = 2
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1].Price
		if prev != 0 {
			returns[i-1] = (prices[i].Price - prev) / prev
		}
	}

	out := make([]models.VolatilitySample, len(returns))
	for i, r := range returns {
		out[i] = models.VolatilitySample{Timestamp: prices[i+1].Timestamp}
		if i < window {
			continue
		}
		mean, std := meanStd(returns[i-window : i])
		if std == 0 {
			continue
		}
		out[i].SpikeValue = math.Abs(r-mean) / std
	}
	return out
}

func meanStd(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}
