package contracts

import "time"

// RegressionResult is the in-sample fit of NVDA close on daily sentiment and
// the peer closes. Predictions and Actual are parallel to Dates.
type RegressionResult struct {
	Features     []string    `json:"features"`
	Coefficients []float64   `json:"coefficients"`
	Intercept    float64     `json:"intercept"`
	Dates        []time.Time `json:"dates"`
	Predictions  []float64   `json:"train_predictions"`
	Actual       []float64   `json:"actual_train_data"`
	MSE          float64     `json:"mse_train"`
	RSquared     float64     `json:"r_squared_train"`
	InSample     bool        `json:"in_sample"`
}

// Correlation is one rounded Pearson coefficient. Substituted is set when
// the coefficient was undefined and replaced by zero.
type Correlation struct {
	Value       float64 `json:"value"`
	Substituted bool    `json:"substituted,omitempty"`
}

// CorrelationReport maps source key to metric label to coefficient.
type CorrelationReport map[string]map[string]Correlation

// TimelinePoint is one day of a timeline series.
type TimelinePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Timeline holds the daily sentiment of each source next to the NVDA close.
// When Rescaled is set each sentiment series was mapped onto [-1, 1].
type Timeline struct {
	Rescaled  bool                       `json:"rescaled"`
	Sentiment map[string][]TimelinePoint `json:"sentiment"`
	Close     []TimelinePoint            `json:"close"`
}

// ComparisonBar is one symbol's day with values rounded to cents.
type ComparisonBar struct {
	Date  time.Time `json:"date"`
	Mean  float64   `json:"mean"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// StockComparison holds per-symbol daily bars keyed by ticker.
type StockComparison map[string][]ComparisonBar
