package gnews

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/delbyte/solana-news-analysis/config"
	"github.com/delbyte/solana-news-analysis/granularity"
	"github.com/delbyte/solana-news-analysis/models"
	"github.com/delbyte/solana-news-analysis/providers"
	"github.com/sirupsen/logrus"
)

const requestsPerMinute = 30

// SearchResponse is the body of GNews /search.
type SearchResponse struct {
	TotalArticles int       `json:"totalArticles"`
	Articles      []Article `json:"articles"`
}

type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

// Provider fetches headlines mentioning the configured query.
type Provider struct {
	client   *providers.Client
	baseURL  string
	apiKey   string
	query    string
	language string
	max      int
	logger   *logrus.Entry
}

func New(cfg config.NewsConfig, logger *logrus.Logger, opts ...providers.ClientOption) *Provider {
	client := providers.NewClient("gnews", cfg.Timeout, requestsPerMinute, 1, logger, opts...)
	return &Provider{
		client:   client,
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		query:    cfg.Query,
		language: cfg.Language,
		max:      cfg.MaxArticles,
		logger:   logger.WithField("provider", client.Name()),
	}
}

// FetchHeadlines returns articles published within the range's full days,
// oldest first. Sentiment is left at zero for the caller to score.
func (p *Provider) FetchHeadlines(ctx context.Context, rng granularity.DateRange) ([]models.Headline, error) {
	if p.apiKey == "" {
		return nil, &providers.ProviderError{Provider: p.client.Name(), Err: errors.New("api key is not configured")}
	}

	query := url.Values{}
	query.Set("q", p.query)
	query.Set("from", rng.Start.Format(time.RFC3339))
	query.Set("to", rng.DayEnd().Format(time.RFC3339))
	query.Set("max", fmt.Sprint(p.max))
	query.Set("sortby", "relevance")
	query.Set("apikey", p.apiKey)
	if p.language != "" {
		query.Set("lang", p.language)
	}

	p.logger.WithField("range", rng.Key()).Info("Fetching headlines")

	var resp SearchResponse
	if err := p.client.GetJSON(ctx, p.baseURL+"/search?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	headlines := make([]models.Headline, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		h, ok := a.headline()
		if !ok {
			p.logger.WithField("url", a.URL).Debug("Skipping article without title or date")
			continue
		}
		headlines = append(headlines, h)
	}
	sort.SliceStable(headlines, func(i, j int) bool { return headlines[i].PublishedAt < headlines[j].PublishedAt })
	return headlines, nil
}

func (a Article) headline() (models.Headline, bool) {
	published, err := time.Parse(time.RFC3339, a.PublishedAt)
	if err != nil || a.Title == "" {
		return models.Headline{}, false
	}
	content := a.Content
	if content == "" {
		content = a.Description
	}
	return models.Headline{
		Source:      a.Source.Name,
		Title:       a.Title,
		URL:         a.URL,
		PublishedAt: published.Unix(),
		Content:     content,
	}, true
}
