package collector

import (
	"context"
	"fmt"
	"time"

	"PairFeed/internal/model"
)

// Window is a provider lookback (e.g. "2y") sampled at an interval (e.g. "1d").
type Window struct {
	Period   string
	Interval string
}

func (w Window) String() string { return w.Period + "/" + w.Interval }

// MockFetcher returns controllable fixed data for development and testing.
// Rows and Errs are keyed by interval; unknown intervals get generated bars
// around Price, or nothing when Price is zero.
type MockFetcher struct {
	Price float64
	Rows  map[string][]model.Row
	Errs  map[string]error
	Calls []Window
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, _ string, w Window) ([]model.Row, error) {
	m.Calls = append(m.Calls, w)
	if err, ok := m.Errs[w.Interval]; ok {
		return nil, err
	}
	if rows, ok := m.Rows[w.Interval]; ok {
		return rows, nil
	}
	if m.Price == 0 {
		return nil, nil
	}
	step, err := intervalStep(w.Interval)
	if err != nil {
		return nil, err
	}
	return generateMockRows(m.Price, 60, step), nil
}

func intervalStep(interval string) (time.Duration, error) {
	switch interval {
	case "1d":
		return 24 * time.Hour, nil
	case "1wk":
		return 7 * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(interval)
	if err != nil {
		return 0, fmt.Errorf("mock: unsupported interval %q", interval)
	}
	return d, nil
}

func generateMockRows(basePrice float64, count int, step time.Duration) []model.Row {
	rows := make([]model.Row, count)
	end := time.Now().UTC().Truncate(step)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		rows[i] = model.Row{
			Time:   end.Add(-time.Duration(count-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 0.0,
		}
	}
	return rows
}
