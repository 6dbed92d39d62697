package contracts

import (
	"context"
	"errors"
)

var (
	// ErrInvalidInput marks malformed caller input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientData marks an analysis with too few aligned rows.
	ErrInsufficientData = errors.New("need more data to predict stock prices")
)

// Ingestor pulls one target over a date range and persists what it finds.
type Ingestor interface {
	Name() string
	Ingest(ctx context.Context, r DateRange) (IngestReport, error)
}

// ProgressSink receives ingestion progress. Publish must not block.
type ProgressSink interface {
	Publish(ev ProgressEvent)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(ProgressEvent)

func (f ProgressFunc) Publish(ev ProgressEvent) { f(ev) }

// QualityGate reports table coverage.
type QualityGate interface {
	Check(ctx context.Context) (*DataQualitySnapshot, error)
}
