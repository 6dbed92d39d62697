package ft

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/newsalpha/backend/pkg/config"
	"github.com/wonny/newsalpha/backend/pkg/httputil"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

const streamPage = `
<html><body>
<ul>
  <li><div class="o-teaser__content">
    <div class="o-teaser__timestamp"><time class="o-teaser__timestamp-date">March 5, 2024</time></div>
    <a class="js-teaser-heading-link" href="/content/abc">Nvidia rally lifts chipmakers</a>
    <p class="o-teaser__standfirst">Shares surge after strong guidance</p>
  </div></li>
  <li><div class="o-teaser__content">
    <time class="o-teaser__timestamp-date">March 4, 2024</time>
    <a class="js-teaser-heading-link" href="/content/def">Export rules tighten</a>
  </div></li>
  <li><div class="o-teaser__content">
    <a class="js-teaser-heading-link" href="/content/nodate">Undated teaser</a>
  </div></li>
  <li><div class="o-teaser__content">
    <time class="o-teaser__timestamp-date">March 3, 2024</time>
  </div></li>
</ul>
</body></html>`

func TestParsePage(t *testing.T) {
	page, err := ParsePage(strings.NewReader(streamPage), "https://www.ft.com")
	require.NoError(t, err)

	require.Len(t, page.Teasers, 2)
	assert.Equal(t, 2, page.Malformed)
	assert.False(t, page.Empty())

	first := page.Teasers[0]
	assert.Equal(t, "Nvidia rally lifts chipmakers", first.Title)
	assert.Equal(t, "https://www.ft.com/content/abc", first.Link)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), first.Published)
	assert.Equal(t, "Shares surge after strong guidance", first.Standfirst)

	assert.Empty(t, page.Teasers[1].Standfirst)
}

func TestParsePage_Empty(t *testing.T) {
	page, err := ParsePage(strings.NewReader("<html><body><p>nothing</p></body></html>"), "")
	require.NoError(t, err)
	assert.True(t, page.Empty())
}

func TestClient_PageURL(t *testing.T) {
	c := &Client{site: config.FTSite{SiteURL: "https://ft.test/stream?q=nvidia", Suffix: "&sort=date"}}

	assert.Equal(t, "https://ft.test/stream?q=nvidia&sort=date", c.PageURL(1))
	assert.Equal(t, "https://ft.test/stream?q=nvidia&page=3&sort=date", c.PageURL(3))
}

func TestClient_FetchPage(t *testing.T) {
	var gotPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("page")
		if gotPage == "9" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(streamPage))
	}))
	defer srv.Close()

	cfg := &config.Config{}
	httpClient := httputil.New(cfg, logger.NewNop())
	c := NewClient(httpClient, config.FTSite{SiteURL: srv.URL + "/stream?q=nvidia", LinkPrefix: "https://www.ft.com"}, logger.NewNop())

	page, err := c.FetchPage(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "2", gotPage)
	assert.Equal(t, 2, page.Number)
	assert.Len(t, page.Teasers, 2)

	_, err = c.FetchPage(context.Background(), 9)
	var statusErr *httputil.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}
