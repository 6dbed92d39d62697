package contracts

import (
	"context"
	"time"
)

// Writer is the write half of the persistence gateway. Calls made inside
// one Gateway.Write share a connection; each statement commits on its own.
type Writer interface {
	EnsureNewsTable(ctx context.Context, source Source) error
	InsertNews(ctx context.Context, source Source, rec NewsRecord) error
	EnsureStockTable(ctx context.Context, symbol Symbol) error
	// InsertBar returns false when a bar for that day already exists.
	InsertBar(ctx context.Context, symbol Symbol, bar StockBar) (bool, error)
}

// Reader is the read half. A table that does not exist reads as empty.
type Reader interface {
	ListScores(ctx context.Context, source Source) ([]DatedScore, error)
	ListBars(ctx context.Context, symbol Symbol) ([]StockBar, error)
	Coverage(ctx context.Context, table string) (TableCoverage, error)
}

// Gateway scopes a connection to one public operation. The connection is
// released when fn returns, whether or not it failed.
type Gateway interface {
	Write(ctx context.Context, fn func(ctx context.Context, w Writer) error) error
	Read(ctx context.Context, fn func(ctx context.Context, r Reader) error) error
}

// SeriesLoader loads everything the analysis routines need in one read.
type SeriesLoader interface {
	Load(ctx context.Context) (*Dataset, error)
}

// Dataset is the raw input of the analysis routines.
type Dataset struct {
	Scores   map[Source][]DatedScore
	Bars     map[Symbol][]StockBar
	LoadedAt time.Time
}
