package model

import "github.com/guregu/null/v6"

// Model tags carried by ForecastResult.Model.
const (
	ModelARIMA  = "arima(1,1,1)"
	ModelLinReg = "linreg"
)

// ForecastPoint is a single projected value with its 95% interval.
type ForecastPoint struct {
	TS     int64      `json:"ts"`
	YHat   null.Float `json:"yhat"`
	YLower null.Float `json:"yhat_lower"`
	YUpper null.Float `json:"yhat_upper"`
}

// ForecastResult is the JSON document written for one forecast direction.
type ForecastResult struct {
	Symbol      string          `json:"symbol"`
	Generated   int64           `json:"generated"`
	HorizonDays int             `json:"horizon_days"`
	Model       string          `json:"model"`
	Points      []ForecastPoint `json:"points"`
}
