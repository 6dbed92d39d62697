// Package s2_analysis computes the regression, correlation and chart series
// over the aligned frames.
package s2_analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/internal/s1_align"
)

const (
	minRegressionRows = 2
	// singular values below rankTolerance * s[0] are treated as zero
	rankTolerance = 1e-10
)

// Regress fits the NVDA close on the regression features by ordinary least
// squares with an intercept. Metrics are in-sample: the fit is evaluated on
// the rows it was trained on.
//
// Columns without variance get a zero coefficient (minimum-norm solution).
func Regress(f *s1_align.Frame) (*contracts.RegressionResult, error) {
	n := f.Len()
	if n < minRegressionRows {
		return nil, fmt.Errorf("%w: %d aligned trading days", contracts.ErrInsufficientData, n)
	}

	features := s1_align.RegressionFeatures()
	y := f.Column(s1_align.RegressionTarget)
	if floats.HasNaN(y) {
		return nil, fmt.Errorf("%w: target has gaps", contracts.ErrInsufficientData)
	}

	cols := make([][]float64, len(features))
	means := make([]float64, len(features))
	for j, name := range features {
		cols[j] = f.Column(name)
		if floats.HasNaN(cols[j]) {
			return nil, fmt.Errorf("%w: feature %s has gaps", contracts.ErrInsufficientData, name)
		}
		means[j] = stat.Mean(cols[j], nil)
	}

	// centre both sides so the intercept drops out of the solve
	x := mat.NewDense(n, len(features), nil)
	for j := range features {
		for i := 0; i < n; i++ {
			x.Set(i, j, cols[j][i]-means[j])
		}
	}
	yMean := stat.Mean(y, nil)
	yc := make([]float64, n)
	copy(yc, y)
	floats.AddConst(-yMean, yc)

	coef, err := solveMinNorm(x, yc)
	if err != nil {
		return nil, err
	}
	intercept := yMean - floats.Dot(coef, means)

	predictions := make([]float64, n)
	row := make([]float64, len(features))
	for i := 0; i < n; i++ {
		for j := range features {
			row[j] = cols[j][i]
		}
		predictions[i] = intercept + floats.Dot(coef, row)
	}

	result := &contracts.RegressionResult{
		Features:     features,
		Coefficients: coef,
		Intercept:    intercept,
		Dates:        f.Dates(),
		Predictions:  predictions,
		Actual:       y,
		MSE:          meanSquaredError(y, predictions),
		RSquared:     rSquared(y, predictions),
		InSample:     true,
	}
	if floats.HasNaN(result.Coefficients) || math.IsNaN(result.Intercept) || math.IsNaN(result.MSE) {
		return nil, fmt.Errorf("%w: fit is undefined", contracts.ErrInsufficientData)
	}
	return result, nil
}

func solveMinNorm(x *mat.Dense, y []float64) ([]float64, error) {
	_, k := x.Dims()
	coef := make([]float64, k)

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, fmt.Errorf("least squares: SVD factorization failed")
	}
	rank := svd.Rank(rankTolerance)
	if rank == 0 {
		// every feature is constant
		return coef, nil
	}

	var beta mat.VecDense
	svd.SolveVecTo(&beta, mat.NewVecDense(len(y), y), rank)
	for j := 0; j < k; j++ {
		coef[j] = beta.AtVec(j)
	}
	return coef, nil
}

func meanSquaredError(actual, predicted []float64) float64 {
	var sum float64
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return sum / float64(len(actual))
}

// rSquared is 1 for a perfect fit of a constant target and 0 for any other
// fit of one.
func rSquared(actual, predicted []float64) float64 {
	if stat.Variance(actual, nil) == 0 {
		if meanSquaredError(actual, predicted) == 0 {
			return 1
		}
		return 0
	}
	return stat.RSquaredFrom(predicted, actual, nil)
}
