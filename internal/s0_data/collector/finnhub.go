package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/internal/external/finnhub"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// CompanyNews returns one symbol's news for one day.
type CompanyNews interface {
	CompanyNews(ctx context.Context, symbol string, day time.Time) ([]finnhub.Article, error)
}

// FinnhubIngestor stores NVDA company news day by day, scored on the
// summary.
type FinnhubIngestor struct {
	base
	api    CompanyNews
	scorer Scorer
	symbol contracts.Symbol
}

// NewFinnhubIngestor creates the "finnhub" ingestor.
func NewFinnhubIngestor(api CompanyNews, gateway contracts.Gateway, scorer Scorer, opts Options, log *logger.Logger) *FinnhubIngestor {
	return &FinnhubIngestor{
		base:   newBase("finnhub", contracts.SourceFinnhub.DisplayName(), gateway, opts, log),
		api:    api,
		scorer: scorer,
		symbol: contracts.SymbolNVDA,
	}
}

// Ingest requests every day of r, oldest first. A failed day is logged
// and the walk continues with the next one. Items dated outside r are
// skipped, as are items an earlier day of the same run already stored.
func (i *FinnhubIngestor) Ingest(ctx context.Context, r contracts.DateRange) (contracts.IngestReport, error) {
	started := time.Now()
	report := i.newReport(r)
	if !i.begin(r) {
		return report, nil
	}

	err := i.gateway.Write(ctx, func(ctx context.Context, w contracts.Writer) error {
		if err := w.EnsureNewsTable(ctx, contracts.SourceFinnhub); err != nil {
			return err
		}

		// neighbouring day queries can list the same item
		seen := make(map[string]struct{})
		for _, day := range r.Days() {
			if err := ctx.Err(); err != nil {
				return err
			}

			inserted, skipped, err := i.ingestDay(ctx, w, r, day, seen)
			report.Inserted += inserted
			report.Skipped += skipped
			unit := day.Format(contracts.DateLayout)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				report.Failed++
				i.logger.WithError(err).WithField("day", unit).Warn("Day failed, moving on")
				i.publish(contracts.ProgressWarning, unit, report.Inserted, err.Error())
				continue
			}
			report.Succeeded++
			i.publish(contracts.ProgressPage, unit, report.Inserted, "")
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("ingest finnhub: %w", err)
	}

	i.finish(&report, started)
	return report, nil
}

func (i *FinnhubIngestor) ingestDay(ctx context.Context, w contracts.Writer, r contracts.DateRange, day time.Time, seen map[string]struct{}) (inserted, skipped int, err error) {
	articles, err := i.api.CompanyNews(ctx, string(i.symbol), day)
	if err != nil {
		return 0, 0, err
	}

	for _, a := range articles {
		if !r.Contains(a.Published) {
			skipped++
			continue
		}
		key := articleKey(a)
		if _, dup := seen[key]; dup {
			skipped++
			continue
		}
		score, _ := i.scorer.Score(a.Summary)
		rec := contracts.NewNewsRecord(a.Headline, a.URL, a.Published, a.Source, a.Summary, score)
		if err := w.InsertNews(ctx, contracts.SourceFinnhub, rec); err != nil {
			return inserted, skipped, err
		}
		seen[key] = struct{}{}
		inserted++
	}
	return inserted, skipped, nil
}

func articleKey(a finnhub.Article) string {
	if a.URL != "" {
		return a.URL
	}
	return a.Headline + "|" + a.Published.Format(time.RFC3339)
}
