package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/internal/external/ft"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// FTPages fetches one Financial Times stream page.
type FTPages interface {
	FetchPage(ctx context.Context, n int) (*ft.Page, error)
}

// FTIngestor stores Financial Times teasers scored on their standfirst.
type FTIngestor struct {
	base
	pages  FTPages
	scorer Scorer
}

// NewFTIngestor creates the "ft" ingestor.
func NewFTIngestor(pages FTPages, gateway contracts.Gateway, scorer Scorer, opts Options, log *logger.Logger) *FTIngestor {
	return &FTIngestor{
		base:   newBase("ft", contracts.SourceFT.DisplayName(), gateway, opts, log),
		pages:  pages,
		scorer: scorer,
	}
}

// Ingest walks the stream newest first until it passes r.Start.
func (i *FTIngestor) Ingest(ctx context.Context, r contracts.DateRange) (contracts.IngestReport, error) {
	started := time.Now()
	report := i.newReport(r)
	if !i.begin(r) {
		return report, nil
	}

	err := i.gateway.Write(ctx, func(ctx context.Context, w contracts.Writer) error {
		if err := w.EnsureNewsTable(ctx, contracts.SourceFT); err != nil {
			return err
		}
		return i.walkPages(ctx, &report, func(ctx context.Context, n int) (pageOutcome, error) {
			return i.ingestPage(ctx, w, r, n)
		})
	})
	if err != nil {
		return report, fmt.Errorf("ingest ft: %w", err)
	}

	i.finish(&report, started)
	return report, nil
}

func (i *FTIngestor) ingestPage(ctx context.Context, w contracts.Writer, r contracts.DateRange, n int) (pageOutcome, error) {
	page, err := i.pages.FetchPage(ctx, n)
	if err != nil {
		return pageOutcome{}, err
	}
	if page.Empty() {
		return pageOutcome{stop: true}, nil
	}

	out := pageOutcome{skipped: page.Malformed}
	for _, t := range page.Teasers {
		if t.Published.Before(r.Start) {
			out.stop = true
			break
		}
		if t.Published.After(r.End) {
			out.skipped++
			continue
		}

		score, _ := i.scorer.Score(t.Standfirst)
		rec := contracts.NewNewsRecord(t.Title, t.Link, t.Published, contracts.SourceFT.Label(), t.Standfirst, score)
		if err := w.InsertNews(ctx, contracts.SourceFT, rec); err != nil {
			return out, err
		}
		out.inserted++
	}
	return out, nil
}
