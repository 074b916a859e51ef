package models

import (
	"fmt"
	"math"
)

// PriceSample is one point of the price graph.
type PriceSample struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

// VolumeSample is one point of the volume graph.
type VolumeSample struct {
	Timestamp int64   `json:"timestamp"`
	Volume    float64 `json:"volume"`
}

// VolatilitySample is one point of the volatility graph.
type VolatilitySample struct {
	Timestamp  int64   `json:"timestamp"`
	SpikeValue float64 `json:"spike_value"`
}

// Headline is a news record as returned to clients and stored with an analysis.
type Headline struct {
	Source         string  `json:"source"`
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	PublishedAt    int64   `json:"published_at"`
	Content        string  `json:"content"`
	SentimentScore float64 `json:"sentiment_score"`
}

// SeriesError describes the first invalid element of a series.
type SeriesError struct {
	Series string
	Index  int
	Reason string
}

func (e *SeriesError) Error() string {
	return fmt.Sprintf("invalid %s series at index %d: %s", e.Series, e.Index, e.Reason)
}

func checkPoint(series string, i int, ts, prev int64, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &SeriesError{Series: series, Index: i, Reason: "value is not finite"}
	}
	if i > 0 && ts <= prev {
		return &SeriesError{Series: series, Index: i, Reason: "timestamps must be strictly ascending"}
	}
	return nil
}

func ValidatePrices(samples []PriceSample) error {
	for i, s := range samples {
		var prev int64
		if i > 0 {
			prev = samples[i-1].Timestamp
		}
		if err := checkPoint("price", i, s.Timestamp, prev, s.Price); err != nil {
			return err
		}
	}
	return nil
}

func ValidateVolumes(samples []VolumeSample) error {
	for i, s := range samples {
		var prev int64
		if i > 0 {
			prev = samples[i-1].Timestamp
		}
		if err := checkPoint("volume", i, s.Timestamp, prev, s.Volume); err != nil {
			return err
		}
	}
	return nil
}

func ValidateVolatility(samples []VolatilitySample) error {
	for i, s := range samples {
		var prev int64
		if i > 0 {
			prev = samples[i-1].Timestamp
		}
		if err := checkPoint("volatility", i, s.Timestamp, prev, s.SpikeValue); err != nil {
			return err
		}
	}
	return nil
}

// ValidateHeadlines requires a title on every headline and publication times
// in ascending order. Equal timestamps are allowed.
func ValidateHeadlines(headlines []Headline) error {
	for i, h := range headlines {
		if h.Title == "" {
			return &SeriesError{Series: "news", Index: i, Reason: "title is empty"}
		}
		if math.IsNaN(h.SentimentScore) || math.IsInf(h.SentimentScore, 0) {
			return &SeriesError{Series: "news", Index: i, Reason: "sentiment score is not finite"}
		}
		if i > 0 && h.PublishedAt < headlines[i-1].PublishedAt {
			return &SeriesError{Series: "news", Index: i, Reason: "published_at must be ascending"}
		}
	}
	return nil
}
