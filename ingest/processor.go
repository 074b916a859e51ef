package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/delbyte/solana-news-analysis/granularity"
	"github.com/delbyte/solana-news-analysis/models"
	"github.com/sirupsen/logrus"
)

// PriceProvider returns the raw price series for a range, ordered by timestamp.
type PriceProvider interface {
	FetchPrices(ctx context.Context, rng granularity.DateRange, g granularity.Granularity) ([]models.PricePoint, error)
}

// NewsProvider returns headlines published within a range, oldest first.
type NewsProvider interface {
	FetchHeadlines(ctx context.Context, rng granularity.DateRange) ([]models.Headline, error)
}

// Scorer assigns a sentiment score to headline text.
type Scorer interface {
	Score(text string) float64
}

// Store is the write side of the analysis store used by ingestion.
type Store interface {
	UpsertPrices(ctx context.Context, points []models.PricePoint) error
	AppendNewsBatch(ctx context.Context, items []models.NewsItem) error
}

// Batch is everything one ingestion run fetched and persisted.
type Batch struct {
	Prices    []models.PricePoint
	Headlines []models.Headline
}

type Processor struct {
	store  Store
	prices PriceProvider
	news   NewsProvider
	scorer Scorer
	logger *logrus.Entry
}

func NewProcessor(store Store, prices PriceProvider, news NewsProvider, scorer Scorer, logger *logrus.Logger) *Processor {
	return &Processor{
		store:  store,
		prices: prices,
		news:   news,
		scorer: scorer,
		logger: logger.WithField("component", "ingest"),
	}
}

// Ingest fetches prices at g and headlines for rng, scores the headlines and
// persists both. Provider calls run sequentially; any failure aborts the run.
func (p *Processor) Ingest(ctx context.Context, rng granularity.DateRange, g granularity.Granularity) (*Batch, error) {
	startTime := time.Now()
	log := p.logger.WithFields(logrus.Fields{"range": rng.Key(), "granularity": g})

	log.Info("Fetching price data")
	points, err := p.prices.FetchPrices(ctx, rng, g)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	if err := p.store.UpsertPrices(ctx, points); err != nil {
		return nil, err
	}

	log.Info("Fetching headlines")
	headlines, err := p.news.FetchHeadlines(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("fetch headlines: %w", err)
	}

	items := make([]models.NewsItem, len(headlines))
	for i := range headlines {
		headlines[i].SentimentScore = p.scorer.Score(headlines[i].Title + " " + headlines[i].Content)
		items[i] = parseHeadline(headlines[i])
	}
	if err := p.store.AppendNewsBatch(ctx, items); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"prices":    len(points),
		"headlines": len(headlines),
		"took":      time.Since(startTime),
	}).Info("Ingestion completed")

	return &Batch{Prices: points, Headlines: headlines}, nil
}

func parseHeadline(h models.Headline) models.NewsItem {
	return models.NewsItem{
		Source:         h.Source,
		Title:          h.Title,
		URL:            h.URL,
		PublishedAt:    h.PublishedAt,
		Content:        h.Content,
		SentimentScore: h.SentimentScore,
	}
}
