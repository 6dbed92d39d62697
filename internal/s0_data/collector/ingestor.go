package collector

import (
	"context"
	"strconv"
	"time"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/pkg/config"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// Scorer turns article text into a polarity and label.
type Scorer interface {
	Score(text string) (float64, contracts.Label)
}

// Options bounds the page walk of the two scrapers.
type Options struct {
	MaxPages               int
	MaxConsecutiveFailures int
	Progress               contracts.ProgressSink
}

// OptionsFromConfig reads scraper limits from cfg.
func OptionsFromConfig(cfg *config.Config, progress contracts.ProgressSink) Options {
	return Options{
		MaxPages:               cfg.Ingest.MaxPages,
		MaxConsecutiveFailures: cfg.Ingest.MaxConsecutiveFailures,
		Progress:               progress,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxPages <= 0 {
		o.MaxPages = 200
	}
	if o.MaxConsecutiveFailures <= 0 {
		o.MaxConsecutiveFailures = 3
	}
	return o
}

// base carries what every ingestor shares.
type base struct {
	name    string
	target  string
	gateway contracts.Gateway
	opts    Options
	logger  *logger.Logger
}

func newBase(name, target string, gateway contracts.Gateway, opts Options, log *logger.Logger) base {
	return base{
		name:    name,
		target:  target,
		gateway: gateway,
		opts:    opts.withDefaults(),
		logger:  log.Component("collector").WithField("source", name),
	}
}

func (b *base) Name() string { return b.name }

func (b *base) newReport(r contracts.DateRange) contracts.IngestReport {
	return contracts.IngestReport{Target: b.target, Range: r}
}

func (b *base) publish(kind contracts.ProgressKind, unit string, inserted int, msg string) {
	if b.opts.Progress == nil {
		return
	}
	b.opts.Progress.Publish(contracts.ProgressEvent{
		Kind:      kind,
		Target:    b.name,
		Unit:      unit,
		Inserted:  inserted,
		Message:   msg,
		Timestamp: time.Now(),
	})
}

// pageOutcome is what one scraped page contributed.
type pageOutcome struct {
	inserted int
	skipped  int
	// stop ends the walk after this page
	stop bool
}

// walkPages drives a reverse-chronological page walk. A page that fails is
// logged and counted; the walk ends after MaxConsecutiveFailures failed
// pages in a row, when a page asks to stop, or at MaxPages.
func (b *base) walkPages(ctx context.Context, report *contracts.IngestReport, fetch func(ctx context.Context, page int) (pageOutcome, error)) error {
	consecutive := 0

	for page := 1; page <= b.opts.MaxPages; page++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		out, err := fetch(ctx, page)
		report.Inserted += out.inserted
		report.Skipped += out.skipped

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			report.Failed++
			consecutive++
			b.logger.WithError(err).WithField("page", page).Warn("Page failed, moving on")
			b.publish(contracts.ProgressWarning, pageUnit(page), report.Inserted, err.Error())

			if consecutive >= b.opts.MaxConsecutiveFailures {
				b.logger.WithField("failures", consecutive).Warn("Too many consecutive page failures, stopping")
				return nil
			}
			continue
		}

		consecutive = 0
		report.Succeeded++
		b.publish(contracts.ProgressPage, pageUnit(page), report.Inserted, "")

		if out.stop {
			return nil
		}
		if page == b.opts.MaxPages {
			b.logger.WithField("max_pages", page).Warn("Page limit reached before start date")
		}
	}
	return nil
}

func pageUnit(page int) string {
	return "page " + strconv.Itoa(page)
}

// begin logs and announces a run. It reports false for an empty range,
// which is a successful no-op.
func (b *base) begin(r contracts.DateRange) bool {
	if r.Empty() {
		b.logger.WithField("range", r.String()).Info("Empty date range, nothing to ingest")
		return false
	}
	b.logger.WithField("range", r.String()).Info("Starting ingestion")
	b.publish(contracts.ProgressStarted, "", 0, r.String())
	return true
}

func (b *base) finish(report *contracts.IngestReport, started time.Time) {
	report.Duration = time.Since(started)
	b.logger.WithFields(map[string]any{
		"inserted":  report.Inserted,
		"skipped":   report.Skipped,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
		"duration":  report.Duration.String(),
	}).Info("Ingestion completed")
	b.publish(contracts.ProgressFinished, "", report.Inserted, report.Message())
}
