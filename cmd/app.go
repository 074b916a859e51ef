package cmd

import (
	"context"

	"github.com/delbyte/solana-news-analysis/analysis"
	"github.com/delbyte/solana-news-analysis/database"
	"github.com/delbyte/solana-news-analysis/ingest"
	"github.com/delbyte/solana-news-analysis/llm"
	"github.com/delbyte/solana-news-analysis/providers/coingecko"
	"github.com/delbyte/solana-news-analysis/providers/gnews"
	"github.com/delbyte/solana-news-analysis/sentiment"
)

// app is the wired dependency graph shared by the subcommands.
type app struct {
	store     *database.Store
	processor *ingest.Processor
	service   *analysis.Service
}

func newApp(ctx context.Context) (*app, error) {
	logger.Info("Initializing database...")
	store, err := database.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	scorer := sentiment.NewScorer(cfg.Sentiment)
	processor := ingest.NewProcessor(
		store,
		coingecko.New(cfg.CoinGecko, cfg.Asset, logger),
		gnews.New(cfg.News, logger),
		scorer,
		logger,
	)

	gen, err := llm.New(ctx, cfg.LLM, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	service := analysis.NewService(store, processor, gen, analysis.Options{
		Asset:            cfg.Asset.Symbol,
		DateLayout:       cfg.Analysis.DateLayout,
		VolatilityWindow: cfg.Analysis.VolatilityWindow,
		MaxHeadlines:     cfg.Analysis.MaxHeadlines,
		Label:            func(score float64) string { return string(scorer.Label(score)) },
	}, logger)

	return &app{store: store, processor: processor, service: service}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close database")
	}
}
