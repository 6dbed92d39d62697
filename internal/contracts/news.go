package contracts

import (
	"fmt"
	"strings"
	"time"
)

// Source identifies one of the three news feeds. Each feed owns one table.
type Source string

const (
	SourceFT      Source = "ft"
	SourceNvidia  Source = "nvidia"
	SourceFinnhub Source = "finnhub"
)

// Sources lists the feeds in regression feature order.
var Sources = []Source{SourceFinnhub, SourceNvidia, SourceFT}

// Table returns the destination table of the feed.
func (s Source) Table() string {
	switch s {
	case SourceFT:
		return "nvidia_fintimes_scrape"
	case SourceNvidia:
		return "nvidia_originalsite_scrape"
	case SourceFinnhub:
		return "nvidia_news_api"
	default:
		return ""
	}
}

// Label is the constant source_label written by the scrapers. The API feed
// stores the upstream publisher instead, so it has no fixed label.
func (s Source) Label() string {
	switch s {
	case SourceFT:
		return "Financial Times"
	case SourceNvidia:
		return "NVIDIA"
	default:
		return ""
	}
}

// DisplayName is used in status messages.
func (s Source) DisplayName() string {
	switch s {
	case SourceFT:
		return "Financial Times"
	case SourceNvidia:
		return "NVIDIA newsroom"
	case SourceFinnhub:
		return "Finnhub company news"
	default:
		return string(s)
	}
}

// CorrelationKey is the top-level key of the correlation report.
func (s Source) CorrelationKey() string {
	switch s {
	case SourceFT:
		return "FT"
	case SourceNvidia:
		return "original"
	case SourceFinnhub:
		return "news api"
	default:
		return string(s)
	}
}

// FeatureName is the regression column holding the feed's daily sentiment.
func (s Source) FeatureName() string {
	switch s {
	case SourceFT:
		return "sentiment_ft"
	case SourceNvidia:
		return "sentiment_original"
	case SourceFinnhub:
		return "sentiment_api_news"
	default:
		return "sentiment_" + string(s)
	}
}

// ParseSource accepts the short names used by the API and CLI.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceFT:
		return SourceFT, nil
	case SourceNvidia:
		return SourceNvidia, nil
	case SourceFinnhub:
		return SourceFinnhub, nil
	}
	return "", fmt.Errorf("%w: unknown news source %q", ErrInvalidInput, s)
}

// Label is the coarse sentiment class.
type Label string

const (
	LabelPositive Label = "Positive"
	LabelNegative Label = "Negative"
	LabelNeutral  Label = "Neutral"
)

// LabelFor derives the label from a polarity score. It is the only place the
// threshold lives.
func LabelFor(score float64) Label {
	switch {
	case score > 0:
		return LabelPositive
	case score < 0:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// NewsRecord is one scraped or fetched article.
type NewsRecord struct {
	Title          string    `json:"title"`
	Link           string    `json:"link"`
	PublishedAt    time.Time `json:"published_at"`
	SourceLabel    string    `json:"source_label"`
	BodyText       string    `json:"body_text"`
	SentimentLabel Label     `json:"sentiment_label"`
	SentimentScore float64   `json:"sentiment_score"`
}

// NewNewsRecord builds a record whose label always agrees with its score.
func NewNewsRecord(title, link string, published time.Time, sourceLabel, body string, score float64) NewsRecord {
	return NewsRecord{
		Title:          title,
		Link:           link,
		PublishedAt:    published,
		SourceLabel:    sourceLabel,
		BodyText:       body,
		SentimentLabel: LabelFor(score),
		SentimentScore: score,
	}
}

// DatedScore is the bulk-read projection used by the aligner.
type DatedScore struct {
	PublishedAt time.Time
	Score       float64
}
