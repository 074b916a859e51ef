package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultRetryWait     = 5 * time.Second
	DefaultRateLimitWait = 60 * time.Second
)

var errRateLimited = errors.New("rate limited")

// Client performs paced JSON GET requests against one upstream API.
type Client struct {
	name          string
	httpClient    *http.Client
	limiter       *rate.Limiter
	maxRetries    int
	retryWait     time.Duration
	rateLimitWait time.Duration
	logger        *logrus.Entry
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithRetryWait sets the pause after a failed attempt and after a 429 response.
func WithRetryWait(retry, rateLimited time.Duration) ClientOption {
	return func(c *Client) {
		c.retryWait = retry
		c.rateLimitWait = rateLimited
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client allowing requestsPerMinute requests. A value <= 0
// disables pacing.
func NewClient(name string, timeout time.Duration, requestsPerMinute, maxRetries int, logger *logrus.Logger, opts ...ClientOption) *Client {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}
	c := &Client{
		name:          name,
		httpClient:    &http.Client{Timeout: timeout},
		limiter:       rate.NewLimiter(limit, 1),
		maxRetries:    maxRetries,
		retryWait:     DefaultRetryWait,
		rateLimitWait: DefaultRateLimitWait,
		logger:        logger.WithField("provider", name),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return c.name }

// GetJSON fetches url and decodes the body into out. Network errors, 429 and
// 5xx responses are retried up to maxRetries times; other statuses fail at once.
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header, out any) error {
	var lastErr error
	var lastStatus int

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{"attempt": attempt, "error": lastErr}).Warn("Retry")
			wait := c.retryWait
			if errors.Is(lastErr, errRateLimited) {
				wait = c.rateLimitWait
			}
			if err := sleep(ctx, wait); err != nil {
				return &ProviderError{Provider: c.name, Err: err}
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return &ProviderError{Provider: c.name, Err: err}
		}

		status, body, err := c.get(ctx, url, header)
		lastStatus = status
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		switch {
		case status == http.StatusTooManyRequests:
			lastErr = errRateLimited
			continue
		case status >= http.StatusInternalServerError:
			lastErr = fmt.Errorf("server error")
			continue
		case status != http.StatusOK:
			return &ProviderError{Provider: c.name, Status: status, Err: fmt.Errorf("unexpected response: %s", truncate(body, 200))}
		}

		if err := json.Unmarshal(body, out); err != nil {
			return &ProviderError{Provider: c.name, Status: status, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	}

	return &ProviderError{Provider: c.name, Status: lastStatus, Err: fmt.Errorf("max retries exceeded: %w", lastErr)}
}

func (c *Client) get(ctx context.Context, url string, header http.Header) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
