package payload

import (
	"github.com/guregu/null/v6"

	"PairFeed/internal/model"
)

// Reciprocal returns 1/v, or null when v is null or zero.
func Reciprocal(v null.Float) null.Float {
	if !v.Valid || v.Float64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom(1 / v.Float64)
}

// invertOHLC maps an X quote to its 1/X equivalent. The high of 1/X comes
// from the low of X and vice versa.
func invertOHLC(o, h, l, c null.Float) (io, ih, il, ic null.Float) {
	return Reciprocal(o), Reciprocal(l), Reciprocal(h), Reciprocal(c)
}

// Invert derives the reciprocal-pair payload (e.g. AUD/USD -> USD/AUD).
// The source payload is not modified.
func Invert(src *model.Payload, symbol string) *model.Payload {
	candles := make([]model.Candle, len(src.Candles))
	var volumeSum float64
	for i, c := range src.Candles {
		o, h, l, cl := invertOHLC(c.Open, c.High, c.Low, c.Close)
		candles[i] = model.Candle{
			TS:     c.TS,
			Open:   o,
			High:   h,
			Low:    l,
			Close:  cl,
			Volume: c.Volume,
		}
		volumeSum += c.Volume
	}

	sess := src.Meta.SessionOHLC
	o, h, l, cl := invertOHLC(sess.Open, sess.High, sess.Low, sess.Close)

	meta := model.SessionMeta{
		Records:     len(candles),
		SessionOHLC: model.SessionOHLC{Open: o, High: h, Low: l, Close: cl},
		VolumeSum:   volumeSum,
	}
	if len(candles) > 0 {
		meta.FirstTS = null.IntFrom(candles[0].TS)
		meta.LastTS = null.IntFrom(candles[len(candles)-1].TS)
	}

	return &model.Payload{
		Symbol:   symbol,
		Interval: src.Interval,
		Updated:  src.Updated,
		TZ:       src.TZ,
		Meta:     meta,
		Candles:  candles,
	}
}
