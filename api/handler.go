package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/delbyte/solana-news-analysis/analysis"
	"github.com/delbyte/solana-news-analysis/database"
	"github.com/delbyte/solana-news-analysis/granularity"
	"github.com/delbyte/solana-news-analysis/models"
	"github.com/delbyte/solana-news-analysis/providers"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Service is the analysis surface exposed over HTTP.
type Service interface {
	Analyze(ctx context.Context, start, end string) (*analysis.Result, error)
	ParseRange(start, end string) (granularity.DateRange, error)
	Prices(ctx context.Context, rng granularity.DateRange) ([]models.PricePoint, error)
	BoundedPrices(ctx context.Context, rng granularity.DateRange, maxPoints int) ([]models.PricePoint, granularity.Granularity, error)
	News(ctx context.Context, rng granularity.DateRange) ([]models.NewsItem, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type AnalyzeRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

type RangeQuery struct {
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
}

// PriceQuery optionally caps the number of returned points. Without
// max_points the raw stored series is returned.
type PriceQuery struct {
	MaxPoints int `form:"max_points" binding:"omitempty,min=1"`
}

type Handler struct {
	svc    Service
	db     Pinger
	logger *logrus.Entry
}

func NewHandler(svc Service, db Pinger, logger *logrus.Logger) *Handler {
	return &Handler{svc: svc, db: db, logger: logger.WithField("component", "api")}
}

func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.svc.Analyze(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Prices(c *gin.Context) {
	var q PriceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rng, ok := h.bindRange(c)
	if !ok {
		return
	}

	body := gin.H{"start_date": rng.Start.Format(granularity.DefaultLayout), "end_date": rng.End.Format(granularity.DefaultLayout)}
	if q.MaxPoints > 0 {
		points, g, err := h.svc.BoundedPrices(c.Request.Context(), rng, q.MaxPoints)
		if err != nil {
			h.fail(c, err)
			return
		}
		body["granularity"] = g
		body["prices"] = nonNil(points)
		c.JSON(http.StatusOK, body)
		return
	}

	points, err := h.svc.Prices(c.Request.Context(), rng)
	if err != nil {
		h.fail(c, err)
		return
	}
	body["prices"] = nonNil(points)
	c.JSON(http.StatusOK, body)
}

func (h *Handler) News(c *gin.Context) {
	rng, ok := h.bindRange(c)
	if !ok {
		return
	}
	items, err := h.svc.News(c.Request.Context(), rng)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"start_date": rng.Start.Format(granularity.DefaultLayout), "end_date": rng.End.Format(granularity.DefaultLayout), "news": nonNil(items)})
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.logger.WithError(err).Warn("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) bindRange(c *gin.Context) (granularity.DateRange, bool) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return granularity.DateRange{}, false
	}
	rng, err := h.svc.ParseRange(q.StartDate, q.EndDate)
	if err != nil {
		h.fail(c, err)
		return granularity.DateRange{}, false
	}
	return rng, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	entry := h.logger.WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Info("Request rejected")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// StatusFor maps an error to its HTTP status: invalid input is 400, upstream
// failures are 502 and everything else is 500.
func StatusFor(err error) int {
	var (
		formatErr   *granularity.FormatError
		rangeErr    *granularity.RangeError
		providerErr *providers.ProviderError
		storeErr    *database.StoreError
	)
	switch {
	case errors.As(err, &formatErr), errors.As(err, &rangeErr):
		return http.StatusBadRequest
	case errors.As(err, &providerErr):
		return http.StatusBadGateway
	case errors.As(err, &storeErr):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
