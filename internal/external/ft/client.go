package ft

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/newsalpha/backend/pkg/config"
	"github.com/wonny/newsalpha/backend/pkg/httputil"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// DateLayout is the teaser timestamp format, e.g. "March 4, 2024".
const DateLayout = "January 2, 2006"

// Client scrapes the Financial Times stream page for one topic.
// ⭐ SSOT: FT 스트림 페이지 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	site       config.FTSite
}

// NewClient creates a new FT client. site comes from the secrets file.
func NewClient(httpClient *httputil.Client, site config.FTSite, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.Component("ft"),
		site:       site,
	}
}

// Teaser is one entry of the stream page.
type Teaser struct {
	Title      string
	Link       string
	Published  time.Time
	Standfirst string
}

// Page is a parsed stream page. Teasers keep page order, newest first.
type Page struct {
	Number    int
	Teasers   []Teaser
	Malformed int
}

// Empty reports whether the page had no teaser blocks at all.
func (p *Page) Empty() bool {
	return len(p.Teasers) == 0 && p.Malformed == 0
}

// PageURL builds the URL of page n (1-based). The first page carries no
// page parameter.
func (c *Client) PageURL(n int) string {
	if n <= 1 {
		return c.site.SiteURL + c.site.Suffix
	}
	return fmt.Sprintf("%s&page=%d%s", c.site.SiteURL, n, c.site.Suffix)
}

// FetchPage downloads and parses page n.
func (c *Client) FetchPage(ctx context.Context, n int) (*Page, error) {
	body, err := c.httpClient.GetBody(ctx, c.PageURL(n))
	if err != nil {
		return nil, fmt.Errorf("fetch ft page %d: %w", n, err)
	}

	page, err := ParsePage(bytes.NewReader(body), c.site.LinkPrefix)
	if err != nil {
		return nil, fmt.Errorf("parse ft page %d: %w", n, err)
	}
	page.Number = n

	c.logger.WithFields(map[string]any{
		"page":      n,
		"teasers":   len(page.Teasers),
		"malformed": page.Malformed,
	}).Debug("Fetched FT page")
	return page, nil
}

// ParsePage extracts teasers from a stream page. Teasers without a
// parseable date, a title or a link are counted as malformed and dropped.
func ParsePage(r io.Reader, linkPrefix string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	page := &Page{}
	doc.Find("div.o-teaser__content").Each(func(_ int, item *goquery.Selection) {
		dateText := strings.TrimSpace(item.Find("time.o-teaser__timestamp-date").First().Text())
		published, err := time.ParseInLocation(DateLayout, dateText, time.UTC)
		if err != nil {
			page.Malformed++
			return
		}

		heading := item.Find("a.js-teaser-heading-link").First()
		title := strings.TrimSpace(heading.Text())
		href, ok := heading.Attr("href")
		if title == "" || !ok || href == "" {
			page.Malformed++
			return
		}

		page.Teasers = append(page.Teasers, Teaser{
			Title:      title,
			Link:       linkPrefix + href,
			Published:  published,
			Standfirst: strings.TrimSpace(item.Find("p.o-teaser__standfirst").First().Text()),
		})
	})

	return page, nil
}
