// Package s1_align rebuilds daily time series from irregular dated records
// and joins them into date-keyed frames for the analysis routines.
package s1_align

import (
	"math"
	"sort"
	"time"

	"github.com/wonny/newsalpha/backend/internal/contracts"
)

// Missing marks an absent value in a Series or Frame column.
var Missing = math.NaN()

// IsMissing reports whether v is the missing marker.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Series maps a calendar day (midnight UTC) to a value.
type Series map[time.Time]float64

// Dates returns the series days in ascending order.
func (s Series) Dates() []time.Time {
	dates := make([]time.Time, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	sortDates(dates)
	return dates
}

// Span returns the first and last day. ok is false for an empty series.
func (s Series) Span() (first, last time.Time, ok bool) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}, false
	}
	dates := s.Dates()
	return dates[0], dates[len(dates)-1], true
}

// DailyMean averages all points that fall on the same calendar day.
func DailyMean(points []contracts.DatedScore) Series {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, p := range points {
		day := contracts.Day(p.PublishedAt)
		sums[day] += p.Score
		counts[day]++
	}

	out := make(Series, len(sums))
	for day, sum := range sums {
		out[day] = sum / float64(counts[day])
	}
	return out
}

// Calendar lists every day of [from, to]. With excludeWeekends, Saturdays
// and Sundays are left out.
func Calendar(from, to time.Time, excludeWeekends bool) []time.Time {
	from, to = contracts.Day(from), contracts.Day(to)
	if from.After(to) {
		return nil
	}

	days := make([]time.Time, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if excludeWeekends && IsWeekend(d) {
			continue
		}
		days = append(days, d)
	}
	return days
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}
