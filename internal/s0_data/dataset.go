package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/newsalpha/backend/internal/contracts"
)

// DatasetLoader reads every score and bar the analysis routines use in a
// single Read.
type DatasetLoader struct {
	gateway contracts.Gateway
}

// NewDatasetLoader creates a loader over any gateway.
func NewDatasetLoader(gateway contracts.Gateway) *DatasetLoader {
	return &DatasetLoader{gateway: gateway}
}

// Load implements contracts.SeriesLoader.
func (l *DatasetLoader) Load(ctx context.Context) (*contracts.Dataset, error) {
	ds := &contracts.Dataset{
		Scores: make(map[contracts.Source][]contracts.DatedScore, len(contracts.Sources)),
		Bars:   make(map[contracts.Symbol][]contracts.StockBar, len(contracts.Symbols)),
	}

	err := l.gateway.Read(ctx, func(ctx context.Context, r contracts.Reader) error {
		for _, src := range contracts.Sources {
			scores, err := r.ListScores(ctx, src)
			if err != nil {
				return fmt.Errorf("load %s scores: %w", src, err)
			}
			ds.Scores[src] = scores
		}
		for _, sym := range contracts.Symbols {
			bars, err := r.ListBars(ctx, sym)
			if err != nil {
				return fmt.Errorf("load %s bars: %w", sym, err)
			}
			ds.Bars[sym] = bars
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ds.LoadedAt = time.Now()
	return ds, nil
}
