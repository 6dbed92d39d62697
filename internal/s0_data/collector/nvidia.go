package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/internal/external/nvidia"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// NewsroomPages fetches NVIDIA newsroom listings and articles.
type NewsroomPages interface {
	FetchPage(ctx context.Context, n int) (*nvidia.Page, error)
	FetchArticleText(ctx context.Context, link string) (string, error)
}

// NvidiaIngestor stores newsroom articles scored on their full text.
type NvidiaIngestor struct {
	base
	pages  NewsroomPages
	scorer Scorer
}

// NewNvidiaIngestor creates the "nvidia" ingestor.
func NewNvidiaIngestor(pages NewsroomPages, gateway contracts.Gateway, scorer Scorer, opts Options, log *logger.Logger) *NvidiaIngestor {
	return &NvidiaIngestor{
		base:   newBase("nvidia", contracts.SourceNvidia.DisplayName(), gateway, opts, log),
		pages:  pages,
		scorer: scorer,
	}
}

// Ingest walks the listing newest first until it passes r.Start.
func (i *NvidiaIngestor) Ingest(ctx context.Context, r contracts.DateRange) (contracts.IngestReport, error) {
	started := time.Now()
	report := i.newReport(r)
	if !i.begin(r) {
		return report, nil
	}

	err := i.gateway.Write(ctx, func(ctx context.Context, w contracts.Writer) error {
		if err := w.EnsureNewsTable(ctx, contracts.SourceNvidia); err != nil {
			return err
		}
		return i.walkPages(ctx, &report, func(ctx context.Context, n int) (pageOutcome, error) {
			return i.ingestPage(ctx, w, r, n)
		})
	})
	if err != nil {
		return report, fmt.Errorf("ingest nvidia: %w", err)
	}

	i.finish(&report, started)
	return report, nil
}

func (i *NvidiaIngestor) ingestPage(ctx context.Context, w contracts.Writer, r contracts.DateRange, n int) (pageOutcome, error) {
	page, err := i.pages.FetchPage(ctx, n)
	if err != nil {
		return pageOutcome{}, err
	}
	if page.Empty() {
		return pageOutcome{stop: true}, nil
	}

	out := pageOutcome{skipped: page.Malformed}
	for _, item := range page.Items {
		if item.Published.Before(r.Start) {
			out.stop = true
			break
		}
		if item.Published.After(r.End) {
			out.skipped++
			continue
		}

		text, err := i.pages.FetchArticleText(ctx, item.Link)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			i.logger.WithError(err).WithFields(map[string]any{
				"page": n,
				"link": item.Link,
			}).Warn("Article fetch failed, skipping")
			out.skipped++
			continue
		}

		score, _ := i.scorer.Score(text)
		rec := contracts.NewNewsRecord(item.Title, item.Link, item.Published, contracts.SourceNvidia.Label(), text, score)
		if err := w.InsertNews(ctx, contracts.SourceNvidia, rec); err != nil {
			return out, err
		}
		out.inserted++
	}
	return out, nil
}
