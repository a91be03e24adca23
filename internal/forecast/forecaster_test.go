package forecast

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"PairFeed/internal/model"
)

var (
	fixedNow = time.Date(2025, 3, 14, 22, 0, 0, 0, time.UTC)
	// Friday afternoon UTC.
	lastObs = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
)

func testForecaster() *Forecaster {
	return NewForecaster(DefaultMinPoints, func() time.Time { return fixedNow }, zerolog.Nop())
}

// randomWalk returns a seeded AUD/USD-like series.
func randomWalk(n int, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	p := 0.66
	for i := range out {
		p += r.NormFloat64() * 0.004
		out[i] = p
	}
	return out
}

type failingModel struct{ calls int }

func (m *failingModel) Name() string { return "broken" }

func (m *failingModel) Fit([]float64, int) ([]Estimate, error) {
	m.calls++
	return nil, errors.New("singular matrix")
}

func TestForecast_UsesARIMAWithEnoughData(t *testing.T) {
	res, err := testForecaster().Forecast("AUDUSD=X", randomWalk(250, 7), lastObs, 5)
	require.NoError(t, err)

	assert.Equal(t, model.ModelARIMA, res.Model)
	assert.Equal(t, "AUDUSD=X", res.Symbol)
	assert.Equal(t, 5, res.HorizonDays)
	assert.Equal(t, fixedNow.UnixMilli(), res.Generated)
	require.Len(t, res.Points, 5)

	prevWidth := 0.0
	for _, p := range res.Points {
		assert.Less(t, p.YLower.Float64, p.YHat.Float64)
		assert.Greater(t, p.YUpper.Float64, p.YHat.Float64)
		width := p.YUpper.Float64 - p.YLower.Float64
		assert.GreaterOrEqual(t, width, prevWidth, "intervals widen with the horizon")
		prevWidth = width
	}
}

func TestForecast_FallsBackWhenSeriesTooShort(t *testing.T) {
	res, err := testForecaster().Forecast("AUDUSD=X", randomWalk(30, 3), lastObs, 4)
	require.NoError(t, err)

	assert.Equal(t, model.ModelLinReg, res.Model)
	assert.Len(t, res.Points, 4)
}

func TestForecast_FallsBackOnPrimaryFailure(t *testing.T) {
	f := testForecaster()
	broken := &failingModel{}
	f.Primary = broken

	res, err := f.Forecast("AUDUSD=X", randomWalk(120, 11), lastObs, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, model.ModelLinReg, res.Model)
	assert.Len(t, res.Points, 3)
}

func TestForecast_NoPrimary(t *testing.T) {
	f := testForecaster()
	f.Primary = nil

	res, err := f.Forecast("AUDUSD=X", randomWalk(120, 5), lastObs, 2)
	require.NoError(t, err)
	assert.Equal(t, model.ModelLinReg, res.Model)
}

func TestForecast_ConstantSeriesFallsBack(t *testing.T) {
	series := make([]float64, 60)
	for i := range series {
		series[i] = 0.65
	}

	res, err := testForecaster().Forecast("AUDUSD=X", series, lastObs, 3)
	require.NoError(t, err)

	assert.Equal(t, model.ModelLinReg, res.Model)
	for _, p := range res.Points {
		assert.InDelta(t, 0.65, p.YHat.Float64, 1e-9)
		assert.InDelta(t, 0.65, p.YLower.Float64, 1e-9)
		assert.InDelta(t, 0.65, p.YUpper.Float64, 1e-9)
	}
}

func TestForecast_BusinessDayTimestamps(t *testing.T) {
	res, err := testForecaster().Forecast("AUDUSD=X", randomWalk(90, 2), lastObs, 7)
	require.NoError(t, err)
	require.Len(t, res.Points, 7)

	want := []time.Time{
		time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 19, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC),
	}
	for i, p := range res.Points {
		ts := time.UnixMilli(p.TS).UTC()
		assert.Equal(t, want[i], ts)
		if i > 0 {
			assert.Greater(t, p.TS, res.Points[i-1].TS)
		}
	}
}

func TestForecast_Errors(t *testing.T) {
	f := testForecaster()

	_, err := f.Forecast("AUDUSD=X", nil, lastObs, 5)
	assert.ErrorIs(t, err, ErrEmptySeries)

	_, err = f.Forecast("AUDUSD=X", []float64{1, 2}, lastObs, 0)
	assert.ErrorIs(t, err, ErrBadHorizon)
}

func TestLinearRegression_ExactTrend(t *testing.T) {
	est, err := LinearRegression{}.Fit([]float64{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	require.Len(t, est, 2)

	assert.InDelta(t, 5.0, est[0].Mean, 1e-9)
	assert.InDelta(t, 6.0, est[1].Mean, 1e-9)
	assert.InDelta(t, est[0].Mean, est[0].Lower, 1e-9)
	assert.InDelta(t, est[0].Mean, est[0].Upper, 1e-9)
}

func TestLinearRegression_Bounds(t *testing.T) {
	series := []float64{1.0, 1.2, 0.9, 1.3, 1.1, 1.4}
	est, err := LinearRegression{}.Fit(series, 1)
	require.NoError(t, err)

	half := est[0].Upper - est[0].Mean
	assert.Greater(t, half, 0.0)
	assert.InDelta(t, half, est[0].Mean-est[0].Lower, 1e-12)
}

func TestLinearRegression_SinglePoint(t *testing.T) {
	est, err := LinearRegression{}.Fit([]float64{0.7}, 3)
	require.NoError(t, err)
	for _, e := range est {
		assert.Equal(t, Estimate{Mean: 0.7, Lower: 0.7, Upper: 0.7}, e)
	}
}

func TestARIMA_InsufficientData(t *testing.T) {
	_, err := NewARIMA(30).Fit(randomWalk(30, 1), 5)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

// simulateARMA returns n first differences of d[t] = phi*d[t-1] + e[t] + theta*e[t-1].
func simulateARMA(n int, phi, theta float64, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	const burn = 200
	d := make([]float64, n+burn)
	prevE := 0.0
	for t := 1; t < len(d); t++ {
		e := r.NormFloat64()
		d[t] = phi*d[t-1] + e + theta*prevE
		prevE = e
	}
	return d[burn:]
}

func standardize(d []float64) []float64 {
	sd := stat.StdDev(d, nil)
	z := make([]float64, len(d))
	for i, v := range d {
		z[i] = v / sd
	}
	return z
}

func TestFitCSS_RecoversARMAParameters(t *testing.T) {
	tests := []struct {
		name       string
		phi, theta float64
	}{
		{"positive", 0.6, 0.3},
		{"negative", -0.5, -0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := simulateARMA(3000, tt.phi, tt.theta, 42)

			phi, theta, err := fitCSS(standardize(d))
			require.NoError(t, err)
			assert.InDelta(t, tt.phi, phi, 0.08)
			assert.InDelta(t, tt.theta, theta, 0.08)
		})
	}
}

func TestARIMA_OneStepFollowsFittedRecursion(t *testing.T) {
	d := simulateARMA(400, 0.6, 0.3, 9)
	series := make([]float64, len(d)+1)
	series[0] = 0.66
	for i, v := range d {
		series[i+1] = series[i] + 0.001*v
	}

	est, err := NewARIMA(30).Fit(series, 1)
	require.NoError(t, err)
	require.Len(t, est, 1)

	diffs := diff(series)
	phi, theta, err := fitCSS(standardize(diffs))
	require.NoError(t, err)
	resid := residuals(diffs, phi, theta)
	var sse float64
	for _, e := range resid[1:] {
		sse += e * e
	}
	sigma := math.Sqrt(sse / float64(len(resid)-1))

	last := series[len(series)-1]
	want := last + phi*diffs[len(diffs)-1] + theta*resid[len(resid)-1]
	assert.InDelta(t, want, est[0].Mean, 1e-12)
	assert.InDelta(t, 1.96*sigma, est[0].Upper-est[0].Mean, 1e-12)
	assert.InDelta(t, 0.001, sigma, 0.0002, "innovation scale is recovered")
}

func TestNewForecaster_NilClockUsesWallClock(t *testing.T) {
	f := NewForecaster(DefaultMinPoints, nil, zerolog.Nop())
	require.NotNil(t, f.Now)

	before := time.Now().UnixMilli()
	res, err := f.Forecast("AUDUSD=X", randomWalk(10, 4), lastObs, 2)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Generated, before)
}

func TestInvertForecast_SwapsBounds(t *testing.T) {
	src := &model.ForecastResult{
		Symbol:      "AUDUSD=X",
		Generated:   99,
		HorizonDays: 2,
		Model:       model.ModelARIMA,
		Points: []model.ForecastPoint{
			{TS: 1, YHat: null.FloatFrom(1.50), YLower: null.FloatFrom(1.40), YUpper: null.FloatFrom(1.60)},
			{TS: 2, YHat: null.FloatFrom(0), YLower: null.Float{}, YUpper: null.FloatFrom(2)},
		},
	}

	inv := InvertForecast(src, "USDAUD (inverted)")

	assert.Equal(t, "USDAUD (inverted)", inv.Symbol)
	assert.Equal(t, int64(99), inv.Generated)
	assert.Equal(t, 2, inv.HorizonDays)
	assert.Equal(t, model.ModelARIMA, inv.Model)

	p := inv.Points[0]
	assert.Equal(t, int64(1), p.TS)
	assert.InDelta(t, 1/1.50, p.YHat.Float64, 1e-12)
	assert.InDelta(t, 1/1.60, p.YLower.Float64, 1e-12)
	assert.InDelta(t, 1/1.40, p.YUpper.Float64, 1e-12)

	q := inv.Points[1]
	assert.False(t, q.YHat.Valid)
	assert.InDelta(t, 0.5, q.YLower.Float64, 1e-12)
	assert.False(t, q.YUpper.Valid)

	assert.Equal(t, 1.50, src.Points[0].YHat.Float64, "source untouched")
}
