package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/delbyte/solana-news-analysis/config"
	"github.com/delbyte/solana-news-analysis/granularity"
	"github.com/delbyte/solana-news-analysis/models"
	"github.com/delbyte/solana-news-analysis/providers"
	"github.com/sirupsen/logrus"
)

// MarketChart is the body of /coins/{id}/market_chart/range. Each entry is
// [unix milliseconds, value].
type MarketChart struct {
	Prices       [][]float64 `json:"prices"`
	MarketCaps   [][]float64 `json:"market_caps"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// Provider fetches the asset's price, volume and market cap history.
type Provider struct {
	client   *providers.Client
	baseURL  string
	apiKey   string
	coinID   string
	currency string
	logger   *logrus.Entry
}

func New(cfg config.CoinGeckoConfig, asset config.AssetConfig, logger *logrus.Logger, opts ...providers.ClientOption) *Provider {
	client := providers.NewClient("coingecko", cfg.Timeout, cfg.RequestsPerMinute, cfg.MaxRetries, logger, opts...)
	return &Provider{
		client:   client,
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		coinID:   asset.ID,
		currency: asset.Currency,
		logger:   logger.WithField("provider", client.Name()),
	}
}

// FetchPrices returns every observation CoinGecko holds for the range's full
// days, ordered by timestamp. CoinGecko picks its own sampling resolution
// from the span; callers bucket the result to g.
func (p *Provider) FetchPrices(ctx context.Context, rng granularity.DateRange, g granularity.Granularity) ([]models.PricePoint, error) {
	query := url.Values{}
	query.Set("vs_currency", p.currency)
	query.Set("from", fmt.Sprint(rng.Start.Unix()))
	query.Set("to", fmt.Sprint(rng.DayEnd().Unix()))
	endpoint := fmt.Sprintf("%s/coins/%s/market_chart/range?%s", p.baseURL, url.PathEscape(p.coinID), query.Encode())

	header := http.Header{}
	if p.apiKey != "" {
		header.Set("x-cg-demo-api-key", p.apiKey)
	}

	p.logger.WithFields(logrus.Fields{"range": rng.Key(), "granularity": g}).Info("Fetching market chart")

	var chart MarketChart
	if err := p.client.GetJSON(ctx, endpoint, header, &chart); err != nil {
		return nil, err
	}

	points := chart.Points()
	p.logger.WithField("points", len(points)).Debug("Fetched market chart")
	return points, nil
}

// Points merges the three parallel series by timestamp. Malformed entries are
// skipped.
func (m MarketChart) Points() []models.PricePoint {
	byTS := make(map[int64]*models.PricePoint, len(m.Prices))
	at := func(ms float64) *models.PricePoint {
		ts := int64(ms) / 1000
		p, ok := byTS[ts]
		if !ok {
			p = &models.PricePoint{Timestamp: ts}
			byTS[ts] = p
		}
		return p
	}

	for _, e := range m.Prices {
		if len(e) == 2 {
			at(e[0]).Price = e[1]
		}
	}
	for _, e := range m.TotalVolumes {
		if len(e) == 2 {
			at(e[0]).Volume = e[1]
		}
	}
	for _, e := range m.MarketCaps {
		if len(e) == 2 {
			at(e[0]).MarketCap = e[1]
		}
	}

	points := make([]models.PricePoint, 0, len(byTS))
	for _, p := range byTS {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })
	return points
}
