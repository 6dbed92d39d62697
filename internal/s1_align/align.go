package s1_align

import (
	"fmt"
	"strings"
	"time"

	"github.com/wonny/newsalpha/backend/internal/contracts"
)

// Column names shared with the analysis routines.
const (
	ColOpen          = "open"
	ColHigh          = "high"
	ColLow           = "low"
	ColClose         = "close"
	ColMean          = "mean"
	ColSentiment     = "sentiment"
	ColPrevSentiment = "prev_sentiment"
)

// RegressionTarget is the column the regression predicts.
var RegressionTarget = CloseColumn(contracts.SymbolNVDA)

// RegressionFeatures lists the predictor columns in coefficient order.
func RegressionFeatures() []string {
	features := make([]string, 0, len(contracts.Sources)+2)
	for _, src := range contracts.Sources {
		features = append(features, src.FeatureName())
	}
	return append(features, CloseColumn(contracts.SymbolAMD), CloseColumn(contracts.SymbolAAPL))
}

// CloseColumn names a symbol's close column, e.g. close_nvda.
func CloseColumn(sym contracts.Symbol) string {
	return "close_" + strings.ToLower(string(sym))
}

// CloseSeries keys each bar's close by trading day.
func CloseSeries(bars []contracts.StockBar) Series {
	out := make(Series, len(bars))
	for _, b := range bars {
		out[contracts.Day(b.TradingDay)] = b.Close
	}
	return out
}

// barColumns are the BarsFrame columns in order.
var barColumns = []struct {
	name  string
	value func(contracts.StockBar) float64
}{
	{ColOpen, func(b contracts.StockBar) float64 { return b.Open }},
	{ColHigh, func(b contracts.StockBar) float64 { return b.High }},
	{ColLow, func(b contracts.StockBar) float64 { return b.Low }},
	{ColClose, func(b contracts.StockBar) float64 { return b.Close }},
	{ColMean, contracts.StockBar.Mean},
}

// BarsFrame lays out OHLC columns plus the (high+low)/2 mean, one row per
// trading day.
func BarsFrame(bars []contracts.StockBar) *Frame {
	byDay := make(map[time.Time]contracts.StockBar, len(bars))
	for _, b := range bars {
		byDay[contracts.Day(b.TradingDay)] = b
	}

	f := NewFrame()
	f.dates = make([]time.Time, 0, len(byDay))
	for d := range byDay {
		f.dates = append(f.dates, d)
	}
	sortDates(f.dates)

	for _, col := range barColumns {
		values := make([]float64, len(f.dates))
		for i, d := range f.dates {
			values[i] = col.value(byDay[d])
		}
		f.names = append(f.names, col.name)
		f.cols[col.name] = values
	}
	return f
}

// RegressionFrame aligns the three sentiment sources with the three closes.
// Each source spans its own weekdays with empty days at 0; the union is
// zero-filled and only days with all three closes are kept.
func RegressionFrame(ds *contracts.Dataset) (*Frame, error) {
	sentiment := make([]*Frame, 0, len(contracts.Sources))
	names := make([]string, 0, len(contracts.Sources))
	for _, src := range contracts.Sources {
		s := BuildSentiment(ds.Scores[src], RegressionPolicy)
		sentiment = append(sentiment, FromSeries(src.FeatureName(), s))
		names = append(names, src.FeatureName())
	}
	merged, err := JoinAll(sentiment...)
	if err != nil {
		return nil, fmt.Errorf("join sentiment: %w", err)
	}
	merged.Fill(ZeroFill, names...)

	closes := []string{RegressionTarget, CloseColumn(contracts.SymbolAMD), CloseColumn(contracts.SymbolAAPL)}
	for _, sym := range []contracts.Symbol{contracts.SymbolNVDA, contracts.SymbolAMD, contracts.SymbolAAPL} {
		merged, err = merged.OuterJoin(FromSeries(CloseColumn(sym), CloseSeries(ds.Bars[sym])))
		if err != nil {
			return nil, fmt.Errorf("join %s closes: %w", sym, err)
		}
	}

	out := merged.DropMissing(closes...)
	out.Fill(ZeroFill, names...)
	return out, nil
}

// CorrelationFrame joins one source's daily sentiment onto the NVDA bars.
// Rows without a bar are dropped, sentiment gaps are carried and
// prev_sentiment holds the previous row's sentiment.
func CorrelationFrame(scores []contracts.DatedScore, bars []contracts.StockBar) (*Frame, error) {
	sentiment := FromSeries(ColSentiment, BuildSentiment(scores, CorrelationPolicy))
	merged, err := BarsFrame(bars).OuterJoin(sentiment)
	if err != nil {
		return nil, err
	}

	out := merged.DropMissing(ColLow)
	out.Fill(CarryFill, ColSentiment)
	if err := out.Set(ColPrevSentiment, out.Shift(ColSentiment, 1)); err != nil {
		return nil, err
	}
	return out, nil
}
