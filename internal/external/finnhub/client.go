// Package finnhub fetches company news from the Finnhub API.
package finnhub

import (
	"context"
	"fmt"
	"net/http"
	"time"

	finnhubgo "github.com/Finnhub-Stock-API/finnhub-go"

	"github.com/wonny/newsalpha/backend/pkg/httputil"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

const dayLayout = "2006-01-02"

// Article is one company news item.
type Article struct {
	Headline  string
	URL       string
	Published time.Time
	Source    string
	Summary   string
}

// NewsAPI is the part of the Finnhub SDK this package calls.
type NewsAPI interface {
	CompanyNews(ctx context.Context, symbol, from, to string) ([]finnhubgo.News, *http.Response, error)
}

// Client wraps the SDK's default API.
// ⭐ SSOT: Finnhub API 호출은 이 클라이언트에서만
type Client struct {
	api    NewsAPI
	apiKey string
	logger *logger.Logger
}

// NewClient builds an SDK client whose requests go through httpClient, so
// they share its pacing and rate limit.
func NewClient(httpClient *httputil.Client, apiKey string, log *logger.Logger) *Client {
	cfg := finnhubgo.NewConfiguration()
	cfg.HTTPClient = httpClient.StdClient()
	return NewClientWithAPI(finnhubgo.NewAPIClient(cfg).DefaultApi, apiKey, log)
}

// NewClientWithAPI wraps an existing NewsAPI implementation.
func NewClientWithAPI(api NewsAPI, apiKey string, log *logger.Logger) *Client {
	return &Client{
		api:    api,
		apiKey: apiKey,
		logger: log.Component("finnhub"),
	}
}

// CompanyNews returns the news the API lists for symbol on one calendar
// day. The API buckets by US time, so items may carry a neighbouring UTC
// date; they are returned as is and the caller filters by range.
func (c *Client) CompanyNews(ctx context.Context, symbol string, day time.Time) ([]Article, error) {
	auth := context.WithValue(ctx, finnhubgo.ContextAPIKey, finnhubgo.APIKey{Key: c.apiKey})
	d := day.UTC().Format(dayLayout)

	news, resp, err := c.api.CompanyNews(auth, symbol, d, d)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("company news %s %s: %w", symbol, d, err)
	}

	articles := make([]Article, 0, len(news))
	for _, n := range news {
		published := time.Unix(int64(n.Datetime), 0).UTC()
		articles = append(articles, Article{
			Headline:  n.Headline,
			URL:       n.Url,
			Published: published,
			Source:    n.Source,
			Summary:   n.Summary,
		})
	}

	c.logger.WithFields(map[string]any{
		"symbol":   symbol,
		"day":      d,
		"articles": len(articles),
	}).Debug("Fetched company news")
	return articles, nil
}
