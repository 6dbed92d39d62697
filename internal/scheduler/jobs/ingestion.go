package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/pkg/config"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// DefaultIngestionSchedule runs after the US close on weekdays.
const DefaultIngestionSchedule = "0 30 22 * * MON-FRI"

// Runner runs one named ingestor over a range.
type Runner interface {
	Names() []string
	Run(ctx context.Context, name string, r contracts.DateRange) (contracts.IngestReport, error)
}

// IngestionJob brings every table up to date.
// ⭐ SSOT: 데이터 수집 스케줄은 이 Job에서만
type IngestionJob struct {
	runner   Runner
	gate     contracts.QualityGate
	lookback int
	schedule string
	logger   *logger.Logger
	now      func() time.Time
}

// NewIngestionJob creates a new ingestion job from the schedule settings.
func NewIngestionJob(runner Runner, gate contracts.QualityGate, cfg config.ScheduleConfig, log *logger.Logger) *IngestionJob {
	lookback := cfg.LookbackDays
	if lookback <= 0 {
		lookback = 3
	}
	schedule := cfg.Cron
	if schedule == "" {
		schedule = DefaultIngestionSchedule
	}
	return &IngestionJob{
		runner:   runner,
		gate:     gate,
		lookback: lookback,
		schedule: schedule,
		logger:   log,
		now:      time.Now,
	}
}

// Name returns the job name
func (j *IngestionJob) Name() string {
	return "ingestion"
}

// Schedule returns the cron schedule (with seconds)
func (j *IngestionJob) Schedule() string {
	return j.schedule
}

// Window is the range the next run of target covers.
//
// News tables keep every insert, so each day is fetched once: from the day
// after the newest stored article, or lookback days back for an empty
// table, up to yesterday. Today is left for the next run so it is read
// complete. Stock bars skip conflicts, so their window simply overlaps the
// last lookback days and today.
func (j *IngestionJob) Window(target string, snapshot *contracts.DataQualitySnapshot) contracts.DateRange {
	today := contracts.Day(j.now())
	start := today.AddDate(0, 0, -j.lookback)

	src, err := contracts.ParseSource(target)
	if err != nil {
		return contracts.DateRange{Start: start, End: today}
	}

	if last := lastStored(snapshot, src.Table()); last != nil {
		start = contracts.Day(*last).AddDate(0, 0, 1)
	}
	return contracts.DateRange{Start: start, End: today.AddDate(0, 0, -1)}
}

func lastStored(snapshot *contracts.DataQualitySnapshot, table string) *time.Time {
	if snapshot == nil {
		return nil
	}
	for _, t := range snapshot.News {
		if t.Table == table {
			return t.Last
		}
	}
	return nil
}

// Run executes every ingestor over its own window. A failing ingestor does
// not stop the others; the first error is returned.
func (j *IngestionJob) Run(ctx context.Context) error {
	snapshot, err := j.gate.Check(ctx)
	if err != nil {
		return fmt.Errorf("coverage before ingestion: %w", err)
	}

	var firstErr error
	for _, name := range j.runner.Names() {
		if err := ctx.Err(); err != nil {
			return err
		}

		r := j.Window(name, snapshot)
		j.logger.WithFields(map[string]any{
			"target": name,
			"range":  r.String(),
		}).Info("Starting scheduled ingestion")

		rep, err := j.runner.Run(ctx, name, r)
		j.logger.WithFields(map[string]any{
			"target":   rep.Target,
			"inserted": rep.Inserted,
			"failed":   rep.Failed,
		}).Info(rep.Message())
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", name, err)
		}
	}
	if firstErr != nil {
		return fmt.Errorf("scheduled ingestion: %w", firstErr)
	}

	j.logger.Info("Scheduled ingestion completed successfully")
	return nil
}
