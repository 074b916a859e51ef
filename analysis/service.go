package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/delbyte/solana-news-analysis/database"
	"github.com/delbyte/solana-news-analysis/granularity"
	"github.com/delbyte/solana-news-analysis/ingest"
	"github.com/delbyte/solana-news-analysis/llm"
	"github.com/delbyte/solana-news-analysis/models"
	"github.com/delbyte/solana-news-analysis/providers"
	"github.com/delbyte/solana-news-analysis/volatility"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Store is the part of the analysis store the orchestrator reads and writes.
type Store interface {
	CachedAnalysis(ctx context.Context, start, end int64) (*models.AnalysisRecord, error)
	AppendAnalysis(ctx context.Context, record *models.AnalysisRecord) error
	PricesInRange(ctx context.Context, start, end int64) ([]models.PricePoint, error)
	NewsInRange(ctx context.Context, start, end int64) ([]models.NewsItem, error)
}

// Ingester fetches and persists raw data for a range.
type Ingester interface {
	Ingest(ctx context.Context, rng granularity.DateRange, g granularity.Granularity) (*ingest.Batch, error)
}

// Generator produces the insight text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Options struct {
	Asset            string
	DateLayout       string
	VolatilityWindow int
	MaxHeadlines     int
	// Label names a sentiment score inside the prompt. Optional.
	Label func(float64) string
}

// Service runs the analysis pipeline. Identical ranges are answered from the
// store; concurrent misses for the same range share one pipeline run.
type Service struct {
	store    Store
	ingester Ingester
	llm      Generator
	opts     Options
	group    singleflight.Group
	logger   *logrus.Entry
}

func NewService(store Store, ingester Ingester, gen Generator, opts Options, logger *logrus.Logger) *Service {
	if opts.DateLayout == "" {
		opts.DateLayout = granularity.DefaultLayout
	}
	return &Service{
		store:    store,
		ingester: ingester,
		llm:      gen,
		opts:     opts,
		logger:   logger.WithField("component", "analysis"),
	}
}

// ParseRange validates caller-supplied dates with the configured layout.
func (s *Service) ParseRange(start, end string) (granularity.DateRange, error) {
	return granularity.ParseRange(start, end, s.opts.DateLayout)
}

// Analyze parses the dates and runs AnalyzeRange.
func (s *Service) Analyze(ctx context.Context, start, end string) (*Result, error) {
	rng, err := s.ParseRange(start, end)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeRange(ctx, rng)
}

// AnalyzeRange returns the cached analysis for rng when one exists. Otherwise
// it fetches data, asks the language model and stores a new record.
func (s *Service) AnalyzeRange(ctx context.Context, rng granularity.DateRange) (*Result, error) {
	if res, err := s.cached(ctx, rng); err != nil || res != nil {
		return res, err
	}

	// the shared run outlives any single caller; each caller stops waiting
	// when its own context ends
	runCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(rng.Key(), func() (any, error) {
		// a run for the same key may have finished since the first lookup
		if res, err := s.cached(runCtx, rng); err != nil || res != nil {
			return res, err
		}
		return s.run(runCtx, rng)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			s.logger.WithField("range", rng.Key()).Debug("Joined in-flight analysis")
		}
		return r.Val.(*Result), nil
	}
}

// cached returns nil, nil on a miss.
func (s *Service) cached(ctx context.Context, rng granularity.DateRange) (*Result, error) {
	record, err := s.store.CachedAnalysis(ctx, rng.Start.Unix(), rng.End.Unix())
	if errors.Is(err, database.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"range": rng.Key(), "id": record.ID}).Info("Serving cached analysis")
	return fromRecord(record, true), nil
}

func (s *Service) run(ctx context.Context, rng granularity.DateRange) (*Result, error) {
	startTime := time.Now()
	log := s.logger.WithFields(logrus.Fields{"run_id": uuid.NewString(), "range": rng.Key()})

	g := granularity.Resolve(rng)
	intervals := granularity.IntervalsOf(rng, g)
	log.WithFields(logrus.Fields{"granularity": g, "intervals": len(intervals)}).Info("Time granularity selected")

	batch, err := s.ingester.Ingest(ctx, rng, g)
	if err != nil {
		return nil, err
	}

	prices, volumes := splitSeries(Resample(batch.Prices, intervals))
	spikes := volatility.Spikes(prices, s.opts.VolatilityWindow)

	headlines := make([]models.Headline, len(batch.Headlines))
	copy(headlines, batch.Headlines)
	sort.SliceStable(headlines, func(i, j int) bool { return headlines[i].PublishedAt < headlines[j].PublishedAt })

	prompt, err := llm.BuildPrompt(llm.PromptInput{
		Asset:       s.opts.Asset,
		Start:       rng.Start,
		End:         rng.End,
		Granularity: g.String(),
		Prices:      prices,
		Volumes:     volumes,
		Volatility:  spikes,
		Headlines:   headlines,
		Label:       s.opts.Label,
	}, s.opts.MaxHeadlines)
	if err != nil {
		return nil, err
	}

	log.Info("Querying LLM for insights")
	insight, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, &providers.ProviderError{Provider: "llm", Err: err}
	}

	record := &models.AnalysisRecord{
		StartDate:      rng.Start.Unix(),
		EndDate:        rng.End.Unix(),
		Granularity:    g.String(),
		PriceData:      prices,
		VolumeData:     volumes,
		VolatilityData: spikes,
		NewsData:       headlines,
		AnalysisResult: insight,
	}
	if err := s.store.AppendAnalysis(ctx, record); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}

	log.WithFields(logrus.Fields{"id": record.ID, "took": time.Since(startTime)}).Info("Analysis completed")
	return fromRecord(record, false), nil
}

// Prices returns stored price points for the range's full days.
func (s *Service) Prices(ctx context.Context, rng granularity.DateRange) ([]models.PricePoint, error) {
	return s.store.PricesInRange(ctx, rng.Start.Unix(), rng.DayEnd().Unix())
}

// News returns stored news items published within the range's full days.
func (s *Service) News(ctx context.Context, rng granularity.DateRange) ([]models.NewsItem, error) {
	return s.store.NewsInRange(ctx, rng.Start.Unix(), rng.DayEnd().Unix())
}

// BoundedPrices returns stored prices for the range resampled to a
// granularity whose point count fits maxPoints. When the budget forces a
// clamp, the most recent points are kept.
func (s *Service) BoundedPrices(ctx context.Context, rng granularity.DateRange, maxPoints int) ([]models.PricePoint, granularity.Granularity, error) {
	g, count := granularity.ResolveBounded(rng, maxPoints)
	points, err := s.Prices(ctx, rng)
	if err != nil {
		return nil, g, err
	}
	out := Resample(points, granularity.IntervalsOf(rng, g))
	if maxPoints > 0 && len(out) > count {
		out = out[len(out)-count:]
	}
	return out, g, nil
}
