package collector

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// Invalidator drops derived results once new rows land.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Collector dispatches ingestion runs by name.
// ⭐ SSOT: 데이터 수집 오케스트레이션은 이 패키지에서만
type Collector struct {
	order       []string
	ingestors   map[string]contracts.Ingestor
	invalidator Invalidator
	logger      *logger.Logger

	// runs of the same ingestor are serialized
	locks map[string]*sync.Mutex
}

// NewCollector registers ingestors in the order RunAll uses.
func NewCollector(log *logger.Logger, ingestors ...contracts.Ingestor) *Collector {
	c := &Collector{
		ingestors: make(map[string]contracts.Ingestor, len(ingestors)),
		locks:     make(map[string]*sync.Mutex, len(ingestors)),
		logger:    log.WithField("module", "collector"),
	}
	for _, ing := range ingestors {
		c.order = append(c.order, ing.Name())
		c.ingestors[ing.Name()] = ing
		c.locks[ing.Name()] = &sync.Mutex{}
	}
	return c
}

// WithInvalidator sets the cache to clear after every run that inserted
// rows, failed or not.
func (c *Collector) WithInvalidator(inv Invalidator) *Collector {
	c.invalidator = inv
	return c
}

// Names lists the registered ingestors.
func (c *Collector) Names() []string {
	return append([]string(nil), c.order...)
}

// Run executes one ingestor over r.
func (c *Collector) Run(ctx context.Context, name string, r contracts.DateRange) (contracts.IngestReport, error) {
	ing, ok := c.ingestors[name]
	if !ok {
		return contracts.IngestReport{}, fmt.Errorf("%w: unknown ingestion target %q", contracts.ErrInvalidInput, name)
	}

	lock := c.locks[name]
	lock.Lock()
	defer lock.Unlock()

	report, err := ing.Ingest(ctx, r)

	// rows are committed one by one, so a run that failed half way still
	// changed the tables
	if report.Inserted > 0 && c.invalidator != nil {
		if invErr := c.invalidator.Invalidate(context.WithoutCancel(ctx)); invErr != nil {
			c.logger.WithError(invErr).Warn("Failed to invalidate analysis cache")
		}
	}

	if err != nil {
		c.logger.WithError(err).WithFields(map[string]any{
			"source":   name,
			"inserted": report.Inserted,
		}).Error("Ingestion failed")
		return report, err
	}
	return report, nil
}

// RunAll executes every ingestor in registration order. A failing
// ingestor does not stop the others; the first error is returned with all
// reports.
func (c *Collector) RunAll(ctx context.Context, r contracts.DateRange) ([]contracts.IngestReport, error) {
	reports := make([]contracts.IngestReport, 0, len(c.order))
	var firstErr error

	for _, name := range c.order {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := c.Run(ctx, name, r)
		reports = append(reports, report)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return reports, firstErr
}
