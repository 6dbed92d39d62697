// Package yahoo fetches daily bars from the Yahoo Finance v8 chart API,
// authenticating with a session cookie and crumb.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/pkg/httputil"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

const (
	DefaultChartEndpoint = "https://query2.finance.yahoo.com/v8/finance/chart"
	DefaultCookieURL     = "https://fc.yahoo.com"
	DefaultCrumbURL      = "https://query1.finance.yahoo.com/v1/test/getcrumb"
)

// Endpoints groups the three URLs the handshake and download use.
type Endpoints struct {
	Chart  string
	Cookie string
	Crumb  string
}

// DefaultEndpoints points at the public Yahoo hosts.
func DefaultEndpoints() Endpoints {
	return Endpoints{Chart: DefaultChartEndpoint, Cookie: DefaultCookieURL, Crumb: DefaultCrumbURL}
}

// Client downloads daily OHLCV history.
// ⭐ SSOT: Yahoo 시세 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	endpoints  Endpoints

	mu    sync.Mutex
	crumb string
}

// NewClient enables the cookie jar on httpClient; the crumb is bound to the
// session cookie.
func NewClient(httpClient *httputil.Client, endpoints Endpoints, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient.WithCookieJar(),
		logger:     log.Component("yahoo"),
		endpoints:  endpoints,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []any `json:"open"`
					High   []any `json:"high"`
					Low    []any `json:"low"`
					Close  []any `json:"close"`
					Volume []any `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyBars returns one bar per trading day in [from, to], both inclusive.
// Days with a null in any price field are skipped.
func (c *Client) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]contracts.StockBar, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}

	crumb, err := c.ensureCrumb(ctx)
	if err != nil {
		return nil, fmt.Errorf("yahoo auth: %w", err)
	}

	params := url.Values{}
	params.Set("period1", strconv.FormatInt(contracts.Day(from).Unix(), 10))
	params.Set("period2", strconv.FormatInt(contracts.Day(to).AddDate(0, 0, 1).Unix(), 10))
	params.Set("interval", "1d")
	params.Set("crumb", crumb)
	reqURL := fmt.Sprintf("%s/%s?%s", c.endpoints.Chart, url.PathEscape(symbol), params.Encode())

	body, err := c.httpClient.GetBody(ctx, reqURL)
	if err != nil {
		c.resetCrumbOnAuthError(err)
		return nil, fmt.Errorf("fetch chart %s: %w", symbol, err)
	}

	bars, err := ParseChart(body)
	if err != nil {
		return nil, fmt.Errorf("parse chart %s: %w", symbol, err)
	}

	// the chart API may return a bar past period2 for the current session
	kept := bars[:0]
	for _, b := range bars {
		if !b.TradingDay.Before(contracts.Day(from)) && !b.TradingDay.After(contracts.Day(to)) {
			kept = append(kept, b)
		}
	}

	c.logger.WithFields(map[string]any{
		"symbol": symbol,
		"from":   from.Format(contracts.DateLayout),
		"to":     to.Format(contracts.DateLayout),
		"count":  len(kept),
	}).Debug("Fetched daily bars")
	return kept, nil
}

// ParseChart decodes a chart response into bars.
func ParseChart(body []byte) ([]contracts.StockBar, error) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error: %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := resp.Chart.Result[0]
	q := result.Indicators.Quote[0]
	n := min(len(result.Timestamp), len(q.Open), len(q.High), len(q.Low), len(q.Close), len(q.Volume))

	bars := make([]contracts.StockBar, 0, n)
	for i := 0; i < n; i++ {
		open, ok1 := toFloat64(q.Open[i])
		high, ok2 := toFloat64(q.High[i])
		low, ok3 := toFloat64(q.Low[i])
		closeVal, ok4 := toFloat64(q.Close[i])
		volume, ok5 := toFloat64(q.Volume[i])
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			continue
		}
		bars = append(bars, contracts.StockBar{
			TradingDay: contracts.Day(time.Unix(result.Timestamp[i], 0)),
			Open:       open,
			High:       high,
			Low:        low,
			Close:      closeVal,
			Volume:     volume,
		})
	}
	return bars, nil
}

func (c *Client) ensureCrumb(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crumb != "" {
		return c.crumb, nil
	}

	// fc.yahoo.com answers 404 but still sets the session cookie
	resp, err := c.httpClient.Get(ctx, c.endpoints.Cookie)
	if err != nil {
		return "", fmt.Errorf("fetch cookie: %w", err)
	}
	resp.Body.Close()

	body, err := c.httpClient.GetBody(ctx, c.endpoints.Crumb)
	if err != nil {
		return "", fmt.Errorf("fetch crumb: %w", err)
	}

	crumb := strings.TrimSpace(string(body))
	if crumb == "" {
		return "", fmt.Errorf("empty crumb received")
	}
	c.crumb = crumb
	return crumb, nil
}

func (c *Client) resetCrumbOnAuthError(err error) {
	var statusErr *httputil.StatusError
	if !errors.As(err, &statusErr) {
		return
	}
	if statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden {
		c.mu.Lock()
		c.crumb = ""
		c.mu.Unlock()
	}
}

func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
