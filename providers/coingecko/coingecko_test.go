package coingecko

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/delbyte/solana-news-analysis/config"
	"github.com/delbyte/solana-news-analysis/granularity"
	"github.com/delbyte/solana-news-analysis/providers"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newProvider(baseURL string) *Provider {
	cfg := config.CoinGeckoConfig{BaseURL: baseURL, APIKey: "demo", Timeout: 5 * time.Second, MaxRetries: 2}
	asset := config.AssetConfig{ID: "solana", Symbol: "SOL", Currency: "usd"}
	return New(cfg, asset, quietLogger(), providers.WithRetryWait(time.Millisecond, time.Millisecond))
}

func TestFetchPrices(t *testing.T) {
	rng, err := granularity.ParseRange("2025-03-01", "2025-03-02", "")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/solana/market_chart/range", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, fmt.Sprint(rng.Start.Unix()), r.URL.Query().Get("from"))
		assert.Equal(t, fmt.Sprint(rng.DayEnd().Unix()), r.URL.Query().Get("to"))
		assert.Equal(t, "demo", r.Header.Get("x-cg-demo-api-key"))

		fmt.Fprint(w, `{
			"prices": [[1740830400000, 140.5], [1740787200000, 138.2]],
			"market_caps": [[1740787200000, 7.0e10], [1740830400000, 7.1e10]],
			"total_volumes": [[1740787200000, 3.1e9], [1740830400000, 3.3e9], [1]]
		}`)
	}))
	defer srv.Close()

	points, err := newProvider(srv.URL).FetchPrices(context.Background(), rng, granularity.ThirtyMinutes)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, int64(1740787200), points[0].Timestamp)
	assert.Equal(t, 138.2, points[0].Price)
	assert.Equal(t, 3.1e9, points[0].Volume)
	assert.Equal(t, 7.0e10, points[0].MarketCap)
	assert.Equal(t, 140.5, points[1].Price)
}

func TestFetchPricesRetriesRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"prices": [[1740787200000, 1]], "market_caps": [], "total_volumes": []}`)
	}))
	defer srv.Close()

	rng, _ := granularity.ParseRange("2025-03-01", "2025-03-01", "")
	points, err := newProvider(srv.URL).FetchPrices(context.Background(), rng, granularity.ThirtyMinutes)
	require.NoError(t, err)
	assert.Len(t, points, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchPricesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"coin not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	rng, _ := granularity.ParseRange("2025-03-01", "2025-03-01", "")
	_, err := newProvider(srv.URL).FetchPrices(context.Background(), rng, granularity.ThirtyMinutes)

	var providerErr *providers.ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, "coingecko", providerErr.Provider)
	assert.Equal(t, http.StatusNotFound, providerErr.Status)
}

func TestFetchPricesGivesUpAfterRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	rng, _ := granularity.ParseRange("2025-03-01", "2025-03-01", "")
	_, err := newProvider(srv.URL).FetchPrices(context.Background(), rng, granularity.ThirtyMinutes)

	var providerErr *providers.ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
