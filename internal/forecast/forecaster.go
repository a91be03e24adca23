package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog"

	"PairFeed/internal/model"
)

var (
	ErrEmptySeries       = errors.New("empty price series")
	ErrBadHorizon        = errors.New("horizon must be at least 1")
	ErrInsufficientData  = errors.New("not enough observations")
	ErrDegenerateSeries  = errors.New("series has no variance")
	ErrNotConverged      = errors.New("model fit did not converge")
	ErrNonFiniteEstimate = errors.New("non-finite forecast")
)

// z95 is the two-sided 95% normal quantile.
const z95 = 1.96

// Estimate is one forecast step before timestamps are attached.
type Estimate struct {
	Mean  float64
	Lower float64
	Upper float64
}

// Model fits a price series and projects it horizon steps ahead.
type Model interface {
	Name() string
	Fit(series []float64, horizon int) ([]Estimate, error)
}

// Forecaster tries Primary first and falls back to Baseline whenever the
// primary model is missing or returns an error.
type Forecaster struct {
	Primary  Model
	Baseline Model
	Now      func() time.Time

	logger zerolog.Logger
}

// NewForecaster wires an ARIMA(1,1,1) primary with a linear-trend baseline.
// minPoints is the sample size the ARIMA fit must exceed. A nil now uses
// the wall clock.
func NewForecaster(minPoints int, now func() time.Time, logger zerolog.Logger) *Forecaster {
	if now == nil {
		now = time.Now
	}
	return &Forecaster{
		Primary:  NewARIMA(minPoints),
		Baseline: LinearRegression{},
		Now:      now,
		logger:   logger.With().Str("component", "forecaster").Logger(),
	}
}

// Forecast projects closes forward horizon business days after last.
func (f *Forecaster) Forecast(symbol string, closes []float64, last time.Time, horizon int) (*model.ForecastResult, error) {
	if horizon < 1 {
		return nil, ErrBadHorizon
	}
	if len(closes) == 0 {
		return nil, ErrEmptySeries
	}

	name, est, err := f.fit(closes, horizon)
	if err != nil {
		return nil, err
	}

	days := BusinessDays(last, horizon)
	points := make([]model.ForecastPoint, horizon)
	for i, e := range est {
		points[i] = model.ForecastPoint{
			TS:     model.EpochMillis(days[i]),
			YHat:   null.FloatFrom(e.Mean),
			YLower: null.FloatFrom(e.Lower),
			YUpper: null.FloatFrom(e.Upper),
		}
	}

	return &model.ForecastResult{
		Symbol:      symbol,
		Generated:   model.EpochMillis(f.Now()),
		HorizonDays: horizon,
		Model:       name,
		Points:      points,
	}, nil
}

func (f *Forecaster) fit(closes []float64, horizon int) (string, []Estimate, error) {
	if f.Primary != nil {
		est, err := f.Primary.Fit(closes, horizon)
		if err == nil && len(est) == horizon {
			return f.Primary.Name(), est, nil
		}
		if err == nil {
			err = fmt.Errorf("expected %d estimates, got %d", horizon, len(est))
		}
		f.logger.Warn().
			Err(err).
			Str("model", f.Primary.Name()).
			Int("points", len(closes)).
			Msg("primary model unavailable, using baseline")
	}

	est, err := f.Baseline.Fit(closes, horizon)
	if err != nil {
		return "", nil, fmt.Errorf("%s fit: %w", f.Baseline.Name(), err)
	}
	return f.Baseline.Name(), est, nil
}
