package payload

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"PairFeed/internal/model"
)

// TZ is the only timezone payloads are written in.
const TZ = "UTC"

// Build converts provider rows into a normalized candle payload.
// Rows without a parseable close are dropped; nothing else fails.
func Build(rows []model.Row, symbol, interval string, now time.Time) *model.Payload {
	candles := make([]model.Candle, 0, len(rows))
	for _, r := range rows {
		c := toFloat(r.Close)
		if !c.Valid {
			continue
		}
		candles = append(candles, model.Candle{
			TS:     model.EpochMillis(r.Time.UTC()),
			Open:   toFloat(r.Open),
			High:   toFloat(r.High),
			Low:    toFloat(r.Low),
			Close:  c,
			Volume: toFloat(r.Volume).ValueOrZero(),
		})
	}

	return &model.Payload{
		Symbol:   symbol,
		Interval: interval,
		Updated:  model.EpochMillis(now),
		TZ:       TZ,
		Meta:     summarize(candles),
		Candles:  candles,
	}
}

// summarize computes the session meta block for an ordered candle list.
func summarize(candles []model.Candle) model.SessionMeta {
	meta := model.SessionMeta{Records: len(candles)}
	if len(candles) == 0 {
		return meta
	}

	first, last := candles[0], candles[len(candles)-1]
	meta.FirstTS = null.IntFrom(first.TS)
	meta.LastTS = null.IntFrom(last.TS)
	meta.SessionOHLC.Open = first.Open
	meta.SessionOHLC.Close = last.Close

	for _, c := range candles {
		if c.High.Valid && (!meta.SessionOHLC.High.Valid || c.High.Float64 > meta.SessionOHLC.High.Float64) {
			meta.SessionOHLC.High = c.High
		}
		if c.Low.Valid && (!meta.SessionOHLC.Low.Valid || c.Low.Float64 < meta.SessionOHLC.Low.Float64) {
			meta.SessionOHLC.Low = c.Low
		}
		meta.VolumeSum += c.Volume
	}
	return meta
}

// toFloat coerces a raw provider value to a nullable float.
// NaN and infinities are treated as absent since JSON cannot carry them.
func toFloat(v any) null.Float {
	var f float64
	switch n := v.(type) {
	case nil:
		return null.Float{}
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return null.Float{}
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return null.Float{}
		}
		f = parsed
	case null.Float:
		if !n.Valid {
			return null.Float{}
		}
		f = n.Float64
	default:
		return null.Float{}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float{}
	}
	return null.FloatFrom(f)
}
