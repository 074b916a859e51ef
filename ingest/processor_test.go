package ingest

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/delbyte/solana-news-analysis/config"
	"github.com/delbyte/solana-news-analysis/database"
	"github.com/delbyte/solana-news-analysis/granularity"
	"github.com/delbyte/solana-news-analysis/models"
	"github.com/delbyte/solana-news-analysis/providers"
	"github.com/delbyte/solana-news-analysis/sentiment"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrices struct {
	points []models.PricePoint
	err    error
	gotG   granularity.Granularity
}

func (f *fakePrices) FetchPrices(_ context.Context, _ granularity.DateRange, g granularity.Granularity) ([]models.PricePoint, error) {
	f.gotG = g
	return f.points, f.err
}

type fakeNews struct {
	headlines []models.Headline
	err       error
}

func (f *fakeNews) FetchHeadlines(context.Context, granularity.DateRange) ([]models.Headline, error) {
	out := make([]models.Headline, len(f.headlines))
	copy(out, f.headlines)
	return out, f.err
}

func setup(t *testing.T, prices *fakePrices, news *fakeNews) (*Processor, *database.Store) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := database.Open(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "ingest.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	scorer := sentiment.NewScorer(config.SentimentConfig{PositiveThreshold: 0.6, NegativeThreshold: 0.4})
	return NewProcessor(store, prices, news, scorer, logger), store
}

func TestIngestPersistsPricesAndScoredNews(t *testing.T) {
	prices := &fakePrices{points: []models.PricePoint{
		{Timestamp: 100, Price: 140, Volume: 1, MarketCap: 2},
		{Timestamp: 200, Price: 145, Volume: 1, MarketCap: 2},
	}}
	news := &fakeNews{headlines: []models.Headline{
		{Source: "A", Title: "SOL rallies to record high", PublishedAt: 150},
		{Source: "B", Title: "Validator outage", PublishedAt: 180},
	}}
	processor, store := setup(t, prices, news)
	ctx := context.Background()

	rng, err := granularity.ParseRange("2025-03-01", "2025-03-05", "")
	require.NoError(t, err)

	batch, err := processor.Ingest(ctx, rng, granularity.TwoHours)
	require.NoError(t, err)
	assert.Equal(t, granularity.TwoHours, prices.gotG)
	assert.Len(t, batch.Prices, 2)
	require.Len(t, batch.Headlines, 2)
	assert.Equal(t, 1.0, batch.Headlines[0].SentimentScore)
	assert.Equal(t, 0.0, batch.Headlines[1].SentimentScore)

	stored, err := store.PricesInRange(ctx, 0, 1000)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	items, err := store.NewsInRange(ctx, 0, 1000)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Source)
	assert.Equal(t, 1.0, items[0].SentimentScore)
}

func TestIngestProviderFailureStopsRun(t *testing.T) {
	providerErr := &providers.ProviderError{Provider: "gnews", Err: errors.New("boom")}
	prices := &fakePrices{points: []models.PricePoint{{Timestamp: 1, Price: 1}}}
	processor, store := setup(t, prices, &fakeNews{err: providerErr})

	rng, _ := granularity.ParseRange("2025-03-01", "2025-03-01", "")
	_, err := processor.Ingest(context.Background(), rng, granularity.ThirtyMinutes)

	var target *providers.ProviderError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "gnews", target.Provider)

	items, err := store.NewsInRange(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}
