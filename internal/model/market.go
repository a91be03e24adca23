package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// Row is a raw OHLCV row as returned by a market-data provider.
// Field values are untyped: numbers, numeric strings, nil or junk.
type Row struct {
	Time   time.Time
	Open   any
	High   any
	Low    any
	Close  any
	Volume any
}

// Candle is one normalized OHLCV record.
type Candle struct {
	TS     int64      `json:"ts"`
	Open   null.Float `json:"open"`
	High   null.Float `json:"high"`
	Low    null.Float `json:"low"`
	Close  null.Float `json:"close"`
	Volume float64    `json:"volume"`
}

// SessionOHLC aggregates open/high/low/close across a whole batch of candles.
type SessionOHLC struct {
	Open  null.Float `json:"open"`
	High  null.Float `json:"high"`
	Low   null.Float `json:"low"`
	Close null.Float `json:"close"`
}

// SessionMeta is the summary block of a Payload.
type SessionMeta struct {
	Records     int         `json:"records"`
	FirstTS     null.Int    `json:"first_ts"`
	LastTS      null.Int    `json:"last_ts"`
	SessionOHLC SessionOHLC `json:"session_ohlc"`
	VolumeSum   float64     `json:"volume_sum"`
}

// Payload is the JSON document written for one symbol and interval.
type Payload struct {
	Symbol   string      `json:"symbol"`
	Interval string      `json:"interval"`
	Updated  int64       `json:"updated"`
	TZ       string      `json:"tz"`
	Meta     SessionMeta `json:"meta"`
	Candles  []Candle    `json:"candles"`
}

// Closes returns the non-null closing prices in candle order.
func (p *Payload) Closes() []float64 {
	closes := make([]float64, 0, len(p.Candles))
	for _, c := range p.Candles {
		if c.Close.Valid {
			closes = append(closes, c.Close.Float64)
		}
	}
	return closes
}

// LastTime returns the timestamp of the last candle, or the zero time when empty.
func (p *Payload) LastTime() time.Time {
	if len(p.Candles) == 0 {
		return time.Time{}
	}
	return time.UnixMilli(p.Candles[len(p.Candles)-1].TS).UTC()
}

// EpochMillis converts t to integer epoch milliseconds.
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}
