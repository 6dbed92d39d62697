package s2_analysis

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/internal/s1_align"
)

// MinMaxRescale maps values linearly onto [-1, 1]. A constant slice maps
// to all zeros.
func MinMaxRescale(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if hi == lo {
		return out
	}
	for i, v := range values {
		out[i] = 2*(v-lo)/(hi-lo) - 1
	}
	return out
}

// BuildTimeline lays the daily mean sentiment of each source next to the
// NVDA close. With rescale, each sentiment series is min-max rescaled on
// its own; the close is left as is.
func BuildTimeline(ds *contracts.Dataset, rescale bool) *contracts.Timeline {
	tl := &contracts.Timeline{
		Rescaled:  rescale,
		Sentiment: make(map[string][]contracts.TimelinePoint, len(contracts.Sources)),
	}

	for _, src := range contracts.Sources {
		means := s1_align.DailyMean(ds.Scores[src])
		dates := means.Dates()
		values := make([]float64, len(dates))
		for i, d := range dates {
			values[i] = means[d]
		}
		if rescale {
			values = MinMaxRescale(values)
		}

		points := make([]contracts.TimelinePoint, len(dates))
		for i, d := range dates {
			points[i] = contracts.TimelinePoint{Date: d, Value: values[i]}
		}
		tl.Sentiment[string(src)] = points
	}

	closes := s1_align.CloseSeries(ds.Bars[contracts.SymbolNVDA])
	for _, d := range closes.Dates() {
		tl.Close = append(tl.Close, contracts.TimelinePoint{Date: d, Value: closes[d]})
	}
	return tl
}

// BuildStockComparison lists every symbol's bars with the (high+low)/2 mean.
// Prices are rounded to cents; the mean is not.
func BuildStockComparison(ds *contracts.Dataset) contracts.StockComparison {
	out := make(contracts.StockComparison, len(contracts.Symbols))
	for _, sym := range contracts.Symbols {
		bars := append([]contracts.StockBar(nil), ds.Bars[sym]...)
		sort.Slice(bars, func(i, j int) bool { return bars[i].TradingDay.Before(bars[j].TradingDay) })

		rows := make([]contracts.ComparisonBar, len(bars))
		for i, b := range bars {
			rows[i] = contracts.ComparisonBar{
				Date:  contracts.Day(b.TradingDay),
				Mean:  b.Mean(),
				Open:  Round2(b.Open),
				High:  Round2(b.High),
				Low:   Round2(b.Low),
				Close: Round2(b.Close),
			}
		}
		out[string(sym)] = rows
	}
	return out
}
