package forecast

import (
	"gonum.org/v1/gonum/stat"

	"PairFeed/internal/model"
)

// LinearRegression projects an OLS trend fitted against index position.
// Bounds are the projection ± 1.96 residual standard deviations.
type LinearRegression struct{}

func (LinearRegression) Name() string { return model.ModelLinReg }

func (LinearRegression) Fit(series []float64, horizon int) ([]Estimate, error) {
	n := len(series)
	if n == 0 {
		return nil, ErrEmptySeries
	}
	if horizon < 1 {
		return nil, ErrBadHorizon
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	// A single point has no slope; project it flat.
	alpha, beta := series[0], 0.0
	if n > 1 {
		alpha, beta = stat.LinearRegression(xs, series, nil, false)
	}

	sigma := 0.0
	if n > 2 {
		resid := make([]float64, n)
		for i, y := range series {
			resid[i] = y - (alpha + beta*xs[i])
		}
		sigma = stat.StdDev(resid, nil)
	}

	out := make([]Estimate, horizon)
	for h := range out {
		yhat := alpha + beta*float64(n+h)
		out[h] = Estimate{Mean: yhat, Lower: yhat - z95*sigma, Upper: yhat + z95*sigma}
	}
	if !finite(out) {
		return nil, ErrNonFiniteEstimate
	}
	return out, nil
}
