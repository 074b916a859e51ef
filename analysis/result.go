package analysis

import (
	"time"

	"github.com/delbyte/solana-news-analysis/granularity"
	"github.com/delbyte/solana-news-analysis/models"
)

type Graphs struct {
	Price      []models.PriceSample      `json:"price"`
	Volume     []models.VolumeSample     `json:"volume"`
	Volatility []models.VolatilitySample `json:"volatility"`
}

// Result is the response for one analyzed range.
type Result struct {
	ID          uint              `json:"id"`
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	Granularity string            `json:"granularity"`
	Graphs      Graphs            `json:"graphs"`
	Headlines   []models.Headline `json:"headlines"`
	Insight     string            `json:"insight"`
	Cached      bool              `json:"cached"`
	CreatedAt   int64             `json:"created_at"`
}

func fromRecord(record *models.AnalysisRecord, cached bool) *Result {
	return &Result{
		ID:          record.ID,
		StartDate:   time.Unix(record.StartDate, 0).UTC().Format(granularity.DefaultLayout),
		EndDate:     time.Unix(record.EndDate, 0).UTC().Format(granularity.DefaultLayout),
		Granularity: record.Granularity,
		Graphs: Graphs{
			Price:      nonNil(record.PriceData),
			Volume:     nonNil(record.VolumeData),
			Volatility: nonNil(record.VolatilityData),
		},
		Headlines: nonNil(record.NewsData),
		Insight:   record.AnalysisResult,
		Cached:    cached,
		CreatedAt: record.CreatedAt,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
