package contracts

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// DateRange is an inclusive span of calendar days. Start and End are
// midnight UTC.
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// ParseDateRange parses two YYYY-MM-DD dates. A start after the end is not
// an error: the range is simply empty.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.ParseInLocation(DateLayout, start, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start_date %q: expected YYYY-MM-DD", ErrInvalidInput, start)
	}
	e, err := time.ParseInLocation(DateLayout, end, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end_date %q: expected YYYY-MM-DD", ErrInvalidInput, end)
	}
	return DateRange{Start: s, End: e}, nil
}

// Empty reports whether the range covers no day.
func (r DateRange) Empty() bool {
	return r.Start.After(r.End)
}

// Contains reports whether t falls on a day inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days enumerates every calendar day of the range.
func (r DateRange) Days() []time.Time {
	if r.Empty() {
		return nil
	}
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IngestReport summarizes one ingestion run. A unit is a page, day or
// symbol; Failed counts units that were logged and skipped.
type IngestReport struct {
	Target    string        `json:"target"`
	Range     DateRange     `json:"range"`
	Inserted  int           `json:"inserted"`
	Skipped   int           `json:"skipped"`
	Succeeded int           `json:"units_succeeded"`
	Failed    int           `json:"units_failed"`
	Duration  time.Duration `json:"duration"`
}

// Message is the human-readable status line returned to clients.
func (r IngestReport) Message() string {
	msg := fmt.Sprintf("%s data has been updated (%d new rows)", r.Target, r.Inserted)
	if r.Failed > 0 {
		msg += fmt.Sprintf("; %d of %d units failed", r.Failed, r.Succeeded+r.Failed)
	}
	return msg
}

// ProgressKind tags a ProgressEvent.
type ProgressKind string

const (
	ProgressStarted  ProgressKind = "started"
	ProgressPage     ProgressKind = "page"
	ProgressWarning  ProgressKind = "warning"
	ProgressFinished ProgressKind = "finished"
)

// ProgressEvent is pushed to live subscribers while an ingestion runs.
type ProgressEvent struct {
	Kind      ProgressKind `json:"kind"`
	Target    string       `json:"target"`
	Unit      string       `json:"unit,omitempty"`
	Inserted  int          `json:"inserted"`
	Message   string       `json:"message,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// TableCoverage describes what one table holds.
type TableCoverage struct {
	Table    string     `json:"table"`
	Rows     int        `json:"rows"`
	First    *time.Time `json:"first,omitempty"`
	Last     *time.Time `json:"last,omitempty"`
	Exists   bool       `json:"exists"`
	Distinct int        `json:"distinct_days"`
}

// DataQualitySnapshot is the coverage view over all six tables.
type DataQualitySnapshot struct {
	CheckedAt time.Time       `json:"checked_at"`
	News      []TableCoverage `json:"news"`
	Stocks    []TableCoverage `json:"stocks"`
}

// ReadyForRegression reports whether every stock table has rows. Without
// closes for all three symbols the aligned frame is empty.
func (d *DataQualitySnapshot) ReadyForRegression() bool {
	if len(d.Stocks) == 0 {
		return false
	}
	for _, s := range d.Stocks {
		if s.Rows == 0 {
			return false
		}
	}
	return true
}

// CoverageRate is the share of the six tables holding at least one row.
func (d *DataQualitySnapshot) CoverageRate() float64 {
	total := len(d.News) + len(d.Stocks)
	if total == 0 {
		return 0.0
	}
	filled := 0
	for _, t := range d.News {
		if t.Rows > 0 {
			filled++
		}
	}
	for _, t := range d.Stocks {
		if t.Rows > 0 {
			filled++
		}
	}
	return float64(filled) / float64(total)
}
