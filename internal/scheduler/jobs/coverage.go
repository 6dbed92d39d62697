package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// CoverageReportJob logs what every table holds after the nightly run.
type CoverageReportJob struct {
	gate   contracts.QualityGate
	logger *logger.Logger
}

// NewCoverageReportJob creates a new coverage report job
func NewCoverageReportJob(gate contracts.QualityGate, log *logger.Logger) *CoverageReportJob {
	return &CoverageReportJob{
		gate:   gate,
		logger: log,
	}
}

// Name returns the job name
func (j *CoverageReportJob) Name() string {
	return "coverage_report"
}

// Schedule returns the cron schedule (weekdays, an hour after ingestion)
func (j *CoverageReportJob) Schedule() string {
	return "0 30 23 * * MON-FRI"
}

// Retryable reports true: the job only reads.
func (j *CoverageReportJob) Retryable() bool {
	return true
}

// Run logs one line per table and warns when a stock table is empty.
func (j *CoverageReportJob) Run(ctx context.Context) error {
	snapshot, err := j.gate.Check(ctx)
	if err != nil {
		return fmt.Errorf("coverage check: %w", err)
	}

	for _, tables := range [][]contracts.TableCoverage{snapshot.News, snapshot.Stocks} {
		for _, t := range tables {
			fields := map[string]any{
				"table":         t.Table,
				"rows":          t.Rows,
				"distinct_days": t.Distinct,
			}
			if t.Last != nil {
				fields["last"] = t.Last.Format(contracts.DateLayout)
			}
			j.logger.WithFields(fields).Info("Table coverage")
		}
	}

	if !snapshot.ReadyForRegression() {
		j.logger.Warn("Stock tables incomplete, regression will report insufficient data")
	}
	j.logger.WithField("coverage_rate", snapshot.CoverageRate()).Info("Coverage report completed")
	return nil
}
