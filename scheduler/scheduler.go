package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/delbyte/solana-news-analysis/analysis"
	"github.com/delbyte/solana-news-analysis/granularity"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Analyzer runs or serves the analysis of one range.
type Analyzer interface {
	AnalyzeRange(ctx context.Context, rng granularity.DateRange) (*analysis.Result, error)
}

// Scheduler keeps the analysis of the trailing window warm so requests for it
// are answered from the store.
type Scheduler struct {
	cron         *cron.Cron
	analyzer     Analyzer
	lookbackDays int
	now          func() time.Time
	ctx          context.Context
	logger       *logrus.Entry
}

func New(ctx context.Context, analyzer Analyzer, lookbackDays int, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithLocation(time.UTC)),
		analyzer:     analyzer,
		lookbackDays: lookbackDays,
		now:          time.Now,
		ctx:          ctx,
		logger:       logger.WithField("component", "scheduler"),
	}
}

// Register adds the warm job on a standard five-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.warm); err != nil {
		return fmt.Errorf("register warm task: %w", err)
	}
	s.logger.WithField("cron", spec).Info("Warm task registered")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started")
}

// Stop halts the cron and waits for a running job to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunNow analyzes the trailing window immediately.
func (s *Scheduler) RunNow() (*analysis.Result, error) {
	rng, err := s.Window()
	if err != nil {
		return nil, err
	}
	return s.analyzer.AnalyzeRange(s.ctx, rng)
}

// Window is the last lookbackDays complete UTC days, ending yesterday.
func (s *Scheduler) Window() (granularity.DateRange, error) {
	now := s.now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return granularity.NewDateRange(end.AddDate(0, 0, -s.lookbackDays), end)
}

func (s *Scheduler) warm() {
	start := time.Now()
	res, err := s.RunNow()
	if err != nil {
		s.logger.WithError(err).Error("Warm analysis failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"range":  res.StartDate + "/" + res.EndDate,
		"cached": res.Cached,
		"took":   time.Since(start),
	}).Info("Warm analysis finished")
}
