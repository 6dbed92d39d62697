package s2_analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/newsalpha/backend/internal/contracts"
)

func TestMinMaxRescale(t *testing.T) {
	assert.Equal(t, []float64{-1, 0, 1}, MinMaxRescale([]float64{0, 5, 10}))
	assert.Equal(t, []float64{0, 0}, MinMaxRescale([]float64{0.4, 0.4}))
	assert.Empty(t, MinMaxRescale(nil))
}

func TestBuildTimeline(t *testing.T) {
	ds := &contracts.Dataset{
		Scores: map[contracts.Source][]contracts.DatedScore{
			contracts.SourceFT: {at("2024-01-02", 9, 0.2), at("2024-01-02", 15, 0.4), at("2024-01-04", 9, -0.6)},
		},
		Bars: map[contracts.Symbol][]contracts.StockBar{
			contracts.SymbolNVDA: {bar("2024-01-03", 101), bar("2024-01-02", 100)},
		},
	}

	raw := BuildTimeline(ds, false)
	assert.False(t, raw.Rescaled)
	require.Len(t, raw.Sentiment["ft"], 2)
	assert.InDelta(t, 0.3, raw.Sentiment["ft"][0].Value, 1e-9)
	assert.Empty(t, raw.Sentiment["finnhub"])
	require.Len(t, raw.Close, 2)
	assert.Equal(t, day("2024-01-02"), raw.Close[0].Date)

	scaled := BuildTimeline(ds, true)
	assert.True(t, scaled.Rescaled)
	assert.InDelta(t, 1, scaled.Sentiment["ft"][0].Value, 1e-9)
	assert.InDelta(t, -1, scaled.Sentiment["ft"][1].Value, 1e-9)
	assert.Equal(t, 100.0, scaled.Close[0].Value)
}

func TestBuildStockComparison(t *testing.T) {
	ds := &contracts.Dataset{
		Bars: map[contracts.Symbol][]contracts.StockBar{
			contracts.SymbolAMD: {
				{TradingDay: day("2024-01-03"), Open: 1.004, High: 2.006, Low: 0.5, Close: 1.555},
				{TradingDay: day("2024-01-02"), Open: 1, High: 2, Low: 1, Close: 1.5},
			},
		},
	}

	cmp := BuildStockComparison(ds)
	require.Len(t, cmp["AMD"], 2)
	assert.Equal(t, day("2024-01-02"), cmp["AMD"][0].Date)
	assert.Equal(t, 1.5, cmp["AMD"][0].Mean)

	last := cmp["AMD"][1]
	assert.Equal(t, 1.0, last.Open)
	assert.Equal(t, 2.01, last.High)
	assert.InDelta(t, 1.253, last.Mean, 1e-9)
	assert.Contains(t, cmp, "NVDA")
	assert.Empty(t, cmp["NVDA"])
}
