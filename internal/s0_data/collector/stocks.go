package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// BarSource returns daily bars for an inclusive date range.
type BarSource interface {
	DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]contracts.StockBar, error)
}

// StockIngestor stores daily bars of every tracked symbol. Days already
// stored are left untouched.
type StockIngestor struct {
	base
	bars    BarSource
	symbols []contracts.Symbol
}

// NewStockIngestor creates the "stocks" ingestor.
func NewStockIngestor(bars BarSource, gateway contracts.Gateway, opts Options, log *logger.Logger) *StockIngestor {
	return &StockIngestor{
		base:    newBase("stocks", "Stock prices", gateway, opts, log),
		bars:    bars,
		symbols: contracts.Symbols,
	}
}

// Ingest makes one request per symbol.
func (i *StockIngestor) Ingest(ctx context.Context, r contracts.DateRange) (contracts.IngestReport, error) {
	started := time.Now()
	report := i.newReport(r)
	if !i.begin(r) {
		return report, nil
	}

	err := i.gateway.Write(ctx, func(ctx context.Context, w contracts.Writer) error {
		for _, sym := range i.symbols {
			if err := w.EnsureStockTable(ctx, sym); err != nil {
				return err
			}
		}

		for _, sym := range i.symbols {
			if err := ctx.Err(); err != nil {
				return err
			}

			inserted, skipped, err := i.ingestSymbol(ctx, w, r, sym)
			report.Inserted += inserted
			report.Skipped += skipped
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				report.Failed++
				i.logger.WithError(err).WithField("symbol", string(sym)).Warn("Symbol failed, moving on")
				i.publish(contracts.ProgressWarning, string(sym), report.Inserted, err.Error())
				continue
			}
			report.Succeeded++
			i.publish(contracts.ProgressPage, string(sym), report.Inserted, "")
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("ingest stocks: %w", err)
	}

	i.finish(&report, started)
	return report, nil
}

func (i *StockIngestor) ingestSymbol(ctx context.Context, w contracts.Writer, r contracts.DateRange, sym contracts.Symbol) (inserted, skipped int, err error) {
	bars, err := i.bars.DailyBars(ctx, string(sym), r.Start, r.End)
	if err != nil {
		return 0, 0, err
	}

	for _, bar := range bars {
		if !r.Contains(bar.TradingDay) {
			continue
		}
		ok, err := w.InsertBar(ctx, sym, bar)
		if err != nil {
			return inserted, skipped, err
		}
		if ok {
			inserted++
		} else {
			skipped++
		}
	}
	return inserted, skipped, nil
}
