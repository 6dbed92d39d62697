package s1_align

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/newsalpha/backend/internal/contracts"
)

func bar(d string, close float64) contracts.StockBar {
	return contracts.StockBar{TradingDay: day(d), Open: close - 1, High: close + 1, Low: close - 2, Close: close}
}

func TestRegressionFrameZeroFillsMissingSource(t *testing.T) {
	ds := &contracts.Dataset{
		Scores: map[contracts.Source][]contracts.DatedScore{
			contracts.SourceFT:     {score("2024-01-02T09:00:00Z", 0.4), score("2024-01-04T09:00:00Z", 0.2)},
			contracts.SourceNvidia: {score("2024-01-03T09:00:00Z", -0.3)},
		},
		Bars: map[contracts.Symbol][]contracts.StockBar{
			contracts.SymbolNVDA: {bar("2024-01-02", 100), bar("2024-01-03", 101), bar("2024-01-04", 102)},
			contracts.SymbolAMD:  {bar("2024-01-02", 50), bar("2024-01-03", 51), bar("2024-01-04", 52)},
			contracts.SymbolAAPL: {bar("2024-01-02", 180), bar("2024-01-03", 181)},
		},
	}

	f, err := RegressionFrame(ds)
	require.NoError(t, err)

	// AAPL has no close on 2024-01-04
	assert.Equal(t, []time.Time{day("2024-01-02"), day("2024-01-03")}, f.Dates())
	assert.Equal(t, []float64{0, 0}, f.Column(contracts.SourceFinnhub.FeatureName()))
	assert.Equal(t, []float64{0, -0.3}, f.Column(contracts.SourceNvidia.FeatureName()))
	assert.Equal(t, []float64{0.4, 0}, f.Column(contracts.SourceFT.FeatureName()))
	assert.Equal(t, []float64{100, 101}, f.Column(RegressionTarget))

	for _, name := range RegressionFeatures() {
		assert.True(t, f.Has(name), name)
	}
}

func TestRegressionFeaturesOrder(t *testing.T) {
	assert.Equal(t, []string{
		"sentiment_api_news", "sentiment_original", "sentiment_ft", "close_amd", "close_aapl",
	}, RegressionFeatures())
}

func TestCorrelationFrameCarriesSentiment(t *testing.T) {
	bars := []contracts.StockBar{
		bar("2024-01-01", 100), bar("2024-01-02", 101), bar("2024-01-03", 102),
	}
	scores := []contracts.DatedScore{score("2024-01-01T12:00:00Z", 0.5)}

	f, err := CorrelationFrame(scores, bars)
	require.NoError(t, err)

	assert.Equal(t, []float64{100, 101, 102}, f.Column(ColClose))
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, f.Column(ColSentiment))
	assert.Equal(t, []float64{99.5, 100.5, 101.5}, f.Column(ColMean))

	prev := f.Column(ColPrevSentiment)
	assert.True(t, IsMissing(prev[0]))
	assert.Equal(t, []float64{0.5, 0.5}, prev[1:])
}

func TestCorrelationFrameGapFill(t *testing.T) {
	bars := []contracts.StockBar{
		bar("2024-01-01", 100), bar("2024-01-02", 101), bar("2024-01-03", 102), bar("2024-01-04", 103),
	}
	scores := []contracts.DatedScore{
		score("2024-01-02T12:00:00Z", 0.2),
		score("2024-01-04T12:00:00Z", 0.8),
		// weekend news without a bar is dropped with its row
		score("2024-01-06T12:00:00Z", -0.9),
	}

	f, err := CorrelationFrame(scores, bars)
	require.NoError(t, err)

	assert.Equal(t, 4, f.Len())
	assert.Equal(t, []float64{0.2, 0.2, 0.2, 0.8}, f.Column(ColSentiment))
}

func TestCorrelationFrameNoBars(t *testing.T) {
	f, err := CorrelationFrame([]contracts.DatedScore{score("2024-01-02T12:00:00Z", 0.2)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
}

func TestBarsFrame(t *testing.T) {
	f := BarsFrame([]contracts.StockBar{bar("2024-01-03", 101), bar("2024-01-02", 100)})

	assert.Equal(t, []time.Time{day("2024-01-02"), day("2024-01-03")}, f.Dates())
	assert.Equal(t, []string{ColOpen, ColHigh, ColLow, ColClose, ColMean}, f.Columns())
	assert.Equal(t, []float64{99, 100}, f.Column(ColOpen))
	assert.Equal(t, []float64{100, 101}, f.Column(ColClose))
	assert.Equal(t, []float64{100.5, 101.5}, f.Column(ColMean))

	assert.Zero(t, BarsFrame(nil).Len())
}
