package nvidia

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

// DateLayout is the listing date format, e.g. "March 18, 2024".
const DateLayout = "January 2, 2006"

// Client scrapes the NVIDIA newsroom listing and its articles.
// ⭐ SSOT: NVIDIA 뉴스룸 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	site       config.NvidiaSite
}

// NewClient creates a new newsroom client.
func NewClient(httpClient *httputil.Client, site config.NvidiaSite, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.Component("nvidia"),
		site:       site,
	}
}

// Item is one listing entry.
type Item struct {
	Title     string
	Link      string
	Published time.Time
}

// Page is a parsed listing page, newest first.
type Page struct {
	Number    int
	Items     []Item
	Malformed int
}

// Empty reports whether the page had no listing blocks.
func (p *Page) Empty() bool {
	return len(p.Items) == 0 && p.Malformed == 0
}

// PageURL builds the listing URL of page n.
func (c *Client) PageURL(n int) string {
	return fmt.Sprintf("%spage=%d", c.site.SiteURL, n)
}

// FetchPage downloads and parses listing page n.
func (c *Client) FetchPage(ctx context.Context, n int) (*Page, error) {
	body, err := c.httpClient.GetBody(ctx, c.PageURL(n))
	if err != nil {
		return nil, fmt.Errorf("fetch newsroom page %d: %w", n, err)
	}

	page, err := ParsePage(bytes.NewReader(body), c.site.RelativeURL)
	if err != nil {
		return nil, fmt.Errorf("parse newsroom page %d: %w", n, err)
	}
	page.Number = n

	c.logger.WithFields(map[string]any{
		"page":  n,
		"items": len(page.Items),
	}).Debug("Fetched newsroom page")
	return page, nil
}

// FetchArticleText downloads an article and returns the text of all its
// paragraphs joined by a single space.
func (c *Client) FetchArticleText(ctx context.Context, link string) (string, error) {
	body, err := c.httpClient.GetBody(ctx, link)
	if err != nil {
		return "", fmt.Errorf("fetch article: %w", err)
	}
	return ParseArticle(bytes.NewReader(body))
}

// ParsePage extracts listing items. Relative links are resolved against
// relativeBase.
func ParsePage(r io.Reader, relativeBase string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	page := &Page{}
	doc.Find("div.index-item-text").Each(func(_ int, item *goquery.Selection) {
		dateText := strings.TrimSpace(item.Find("span.index-item-text-info-date").First().Text())
		published, err := time.ParseInLocation(DateLayout, dateText, time.UTC)
		if err != nil {
			page.Malformed++
			return
		}

		anchor := item.Find("a").First()
		href, ok := anchor.Attr("href")
		title := strings.TrimSpace(anchor.Text())
		if !ok || href == "" || title == "" {
			page.Malformed++
			return
		}
		if strings.HasPrefix(href, "/") {
			href = relativeBase + href
		}

		page.Items = append(page.Items, Item{
			Title:     title,
			Link:      href,
			Published: published,
		})
	})

	return page, nil
}

// ParseArticle joins the text of every <p> element.
func ParseArticle(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	var parts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		parts = append(parts, p.Text())
	})
	return strings.Join(parts, " "), nil
}
