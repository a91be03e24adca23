package collector

import (
	"context"

	"PairFeed/internal/model"
)

// Fetcher defines the interface for fetching market data.
// Zero rows is a valid answer; errors are reserved for transport and API failures.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol string, w Window) ([]model.Row, error)
	Name() string
}
