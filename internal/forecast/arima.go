package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"PairFeed/internal/model"
)

// DefaultMinPoints is the sample size an ARIMA fit must exceed.
const DefaultMinPoints = 30

// ARIMA is an ARIMA(1,1,1) model without drift, fitted by conditional sum
// of squares on the first differences:
//
//	d[t] = phi*d[t-1] + e[t] + theta*e[t-1]
type ARIMA struct {
	MinPoints int
}

func NewARIMA(minPoints int) *ARIMA {
	if minPoints <= 0 {
		minPoints = DefaultMinPoints
	}
	return &ARIMA{MinPoints: minPoints}
}

func (a *ARIMA) Name() string { return model.ModelARIMA }

func (a *ARIMA) Fit(series []float64, horizon int) ([]Estimate, error) {
	if horizon < 1 {
		return nil, ErrBadHorizon
	}
	if len(series) <= a.MinPoints {
		return nil, fmt.Errorf("%w: have %d, need more than %d", ErrInsufficientData, len(series), a.MinPoints)
	}

	d := diff(series)
	sd := stat.StdDev(d, nil)
	if sd == 0 || math.IsNaN(sd) || math.IsInf(sd, 0) {
		return nil, ErrDegenerateSeries
	}

	// Fit on standardized differences; phi and theta are scale free.
	z := make([]float64, len(d))
	for i, v := range d {
		z[i] = v / sd
	}

	phi, theta, err := fitCSS(z)
	if err != nil {
		return nil, err
	}

	resid := residuals(d, phi, theta)
	var sse float64
	for _, e := range resid[1:] {
		sse += e * e
	}
	sigma2 := sse / float64(len(resid)-1)

	// Point forecasts on differences, integrated back to levels.
	last := series[len(series)-1]
	dPrev := phi*d[len(d)-1] + theta*resid[len(resid)-1]

	// psi weights of the ARMA part, accumulated for the integration.
	psi := 1.0
	cum := 1.0
	var variance float64

	out := make([]Estimate, horizon)
	level := last
	for h := 0; h < horizon; h++ {
		if h > 0 {
			dPrev = phi * dPrev
			if h == 1 {
				psi = phi + theta
			} else {
				psi = phi * psi
			}
			cum += psi
		}
		level += dPrev
		variance += sigma2 * cum * cum

		half := z95 * math.Sqrt(variance)
		out[h] = Estimate{Mean: level, Lower: level - half, Upper: level + half}
	}

	if !finite(out) {
		return nil, ErrNonFiniteEstimate
	}
	return out, nil
}

// fitCSS minimizes the conditional sum of squares over (phi, theta).
// Both are kept inside (-1, 1) through a tanh transform.
func fitCSS(z []float64) (phi, theta float64, err error) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			p, q := math.Tanh(x[0]), math.Tanh(x[1])
			var sse float64
			for _, e := range residuals(z, p, q)[1:] {
				sse += e * e
			}
			return sse
		},
	}

	res, err := optimize.Minimize(problem, []float64{0, 0}, nil, &optimize.NelderMead{})
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrNotConverged, err)
	}
	if math.IsNaN(res.F) || math.IsInf(res.F, 0) {
		return 0, 0, ErrNotConverged
	}
	return math.Tanh(res.X[0]), math.Tanh(res.X[1]), nil
}

// residuals runs the ARMA(1,1) recursion with e[0] = 0.
func residuals(d []float64, phi, theta float64) []float64 {
	e := make([]float64, len(d))
	for t := 1; t < len(d); t++ {
		e[t] = d[t] - phi*d[t-1] - theta*e[t-1]
	}
	return e
}

func diff(series []float64) []float64 {
	out := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		out[i-1] = series[i] - series[i-1]
	}
	return out
}

func finite(est []Estimate) bool {
	for _, e := range est {
		for _, v := range []float64{e.Mean, e.Lower, e.Upper} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
