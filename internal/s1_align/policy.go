package s1_align

import (
	"time"

	"github.com/wonny/newsalpha/backend/internal/contracts"
)

// GapFill decides what a day without records receives.
type GapFill int

const (
	// ZeroFill gives empty days 0.
	ZeroFill GapFill = iota
	// CarryFill carries the last known value forward, then fills a leading
	// gap with the first known value.
	CarryFill
)

func (g GapFill) String() string {
	switch g {
	case ZeroFill:
		return "zero"
	case CarryFill:
		return "carry"
	default:
		return "unknown"
	}
}

// Policy describes how a sentiment source becomes a daily series.
type Policy struct {
	Gap GapFill
	// ExcludeWeekends drops Saturdays and Sundays, records included.
	ExcludeWeekends bool
	// DenseCalendar emits every day between the first and last record.
	// Without it only days with records appear.
	DenseCalendar bool
}

var (
	// RegressionPolicy: every weekday of the observed span, 0 when empty.
	RegressionPolicy = Policy{Gap: ZeroFill, ExcludeWeekends: true, DenseCalendar: true}
	// CorrelationPolicy: observed days only, weekends kept. Gaps are
	// carried once the series is joined with the stock bars.
	CorrelationPolicy = Policy{Gap: CarryFill, ExcludeWeekends: false, DenseCalendar: false}
)

// BuildSentiment turns raw dated scores into a daily series under p. The
// span is the source's own first and last day.
func BuildSentiment(points []contracts.DatedScore, p Policy) Series {
	means := DailyMean(points)
	first, last, ok := means.Span()
	if !ok {
		return Series{}
	}

	var days []time.Time
	if p.DenseCalendar {
		days = Calendar(first, last, p.ExcludeWeekends)
	} else {
		for _, d := range means.Dates() {
			if p.ExcludeWeekends && IsWeekend(d) {
				continue
			}
			days = append(days, d)
		}
	}

	values := make([]float64, len(days))
	for i, d := range days {
		if v, ok := means[d]; ok {
			values[i] = v
		} else {
			values[i] = Missing
		}
	}
	FillValues(values, p.Gap)

	out := make(Series, len(days))
	for i, d := range days {
		out[d] = values[i]
	}
	return out
}

// FillValues replaces missing entries in place under g. CarryFill leaves an
// all-missing slice untouched.
func FillValues(values []float64, g GapFill) {
	switch g {
	case ZeroFill:
		for i, v := range values {
			if IsMissing(v) {
				values[i] = 0
			}
		}
	case CarryFill:
		last := Missing
		for i, v := range values {
			if IsMissing(v) {
				values[i] = last
			} else {
				last = v
			}
		}
		next := Missing
		for i := len(values) - 1; i >= 0; i-- {
			if IsMissing(values[i]) {
				values[i] = next
			} else {
				next = values[i]
			}
		}
	}
}
