package models

import (
	"gorm.io/datatypes"
)

// PricePoint is one observation of the asset's price, keyed by epoch seconds.
type PricePoint struct {
	Timestamp int64   `gorm:"primaryKey;autoIncrement:false" json:"timestamp"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
	MarketCap float64 `json:"market_cap"`
}

func (PricePoint) TableName() string { return "solana_price" }

// NewsItem is a stored headline. Items are append-only.
type NewsItem struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Source         string  `json:"source"`
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	PublishedAt    int64   `gorm:"index:idx_news_published_at" json:"published_at"`
	Content        string  `json:"content"`
	SentimentScore float64 `json:"sentiment_score"`
	CreatedAt      int64   `gorm:"autoCreateTime:false" json:"created_at"`
}

func (NewsItem) TableName() string { return "news" }

// Headline converts the stored item to its series record.
func (n NewsItem) Headline() Headline {
	return Headline{
		Source:         n.Source,
		Title:          n.Title,
		URL:            n.URL,
		PublishedAt:    n.PublishedAt,
		Content:        n.Content,
		SentimentScore: n.SentimentScore,
	}
}

// AnalysisRecord stores one completed analysis for a date range. StartDate
// and EndDate are the epoch seconds of the range's normalized endpoints.
type AnalysisRecord struct {
	ID             uint                                  `gorm:"primaryKey;autoIncrement" json:"id"`
	StartDate      int64                                 `json:"start_date"`
	EndDate        int64                                 `json:"end_date"`
	Granularity    string                                `gorm:"size:8" json:"granularity"`
	PriceData      datatypes.JSONSlice[PriceSample]      `gorm:"type:text" json:"price_data"`
	VolumeData     datatypes.JSONSlice[VolumeSample]     `gorm:"type:text" json:"volume_data"`
	VolatilityData datatypes.JSONSlice[VolatilitySample] `gorm:"type:text" json:"volatility_data"`
	NewsData       datatypes.JSONSlice[Headline]         `gorm:"type:text" json:"news_data"`
	AnalysisResult string                                `gorm:"type:text" json:"analysis_result"`
	CreatedAt      int64                                 `gorm:"autoCreateTime:false" json:"created_at"`
}

func (AnalysisRecord) TableName() string { return "analysis" }

// Validate checks every serialized series on the record.
func (a *AnalysisRecord) Validate() error {
	if err := ValidatePrices(a.PriceData); err != nil {
		return err
	}
	if err := ValidateVolumes(a.VolumeData); err != nil {
		return err
	}
	if err := ValidateVolatility(a.VolatilityData); err != nil {
		return err
	}
	return ValidateHeadlines(a.NewsData)
}
