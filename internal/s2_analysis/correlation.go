package s2_analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/internal/s1_align"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

type metric struct {
	label string
	price string
	score string
}

// correlationMetrics are computed per source, in report order.
var correlationMetrics = []metric{
	{"concurrent mean value - sentiment correlation", s1_align.ColMean, s1_align.ColSentiment},
	{"concurrent close value - sentiment correlation", s1_align.ColClose, s1_align.ColSentiment},
	{"preceding sentiment - mean value correlation", s1_align.ColMean, s1_align.ColPrevSentiment},
	{"preceding sentiment - open value correlation", s1_align.ColOpen, s1_align.ColPrevSentiment},
	{"preceding sentiment - close value correlation", s1_align.ColClose, s1_align.ColPrevSentiment},
}

// MetricName is the report key of one metric, e.g.
// "[FT] concurrent close value - sentiment correlation".
func MetricName(src contracts.Source, label string) string {
	return fmt.Sprintf("[%s] %s", src.CorrelationKey(), label)
}

// Pearson correlates x and y over the rows where both have a value. ok is
// false when fewer than two rows remain or either side has no variance.
func Pearson(x, y []float64) (r float64, ok bool) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if i >= len(y) {
			break
		}
		if s1_align.IsMissing(x[i]) || s1_align.IsMissing(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return 0, false
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return 0, false
	}

	r = stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// Round2 rounds half to even at two decimals.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// Correlate builds the five metrics of every source against the NVDA bars.
// An undefined coefficient is reported as 0 with Substituted set.
func Correlate(ds *contracts.Dataset, log *logger.Logger) (contracts.CorrelationReport, error) {
	report := make(contracts.CorrelationReport, len(contracts.Sources))
	bars := ds.Bars[contracts.SymbolNVDA]

	for _, src := range contracts.Sources {
		frame, err := s1_align.CorrelationFrame(ds.Scores[src], bars)
		if err != nil {
			return nil, fmt.Errorf("align %s: %w", src, err)
		}

		metrics := make(map[string]contracts.Correlation, len(correlationMetrics))
		for _, m := range correlationMetrics {
			name := MetricName(src, m.label)
			r, ok := Pearson(frame.Column(m.price), frame.Column(m.score))
			if !ok {
				log.WithFields(map[string]any{
					"source": string(src),
					"metric": name,
					"rows":   frame.Len(),
				}).Warn("Correlation undefined, substituting 0")
				metrics[name] = contracts.Correlation{Value: 0, Substituted: true}
				continue
			}
			metrics[name] = contracts.Correlation{Value: Round2(r)}
		}
		report[src.CorrelationKey()] = metrics
	}
	return report, nil
}
