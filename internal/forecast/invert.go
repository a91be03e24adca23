package forecast

import (
	"PairFeed/internal/model"
	"PairFeed/internal/payload"
)

// InvertForecast maps a forecast for X onto 1/X. Inversion reverses order,
// so the new lower bound comes from the old upper bound and vice versa.
func InvertForecast(res *model.ForecastResult, symbol string) *model.ForecastResult {
	points := make([]model.ForecastPoint, len(res.Points))
	for i, p := range res.Points {
		points[i] = model.ForecastPoint{
			TS:     p.TS,
			YHat:   payload.Reciprocal(p.YHat),
			YLower: payload.Reciprocal(p.YUpper),
			YUpper: payload.Reciprocal(p.YLower),
		}
	}
	return &model.ForecastResult{
		Symbol:      symbol,
		Generated:   res.Generated,
		HorizonDays: res.HorizonDays,
		Model:       res.Model,
		Points:      points,
	}
}
