package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"PairFeed/internal/model"
)

// RESTFetcher implements Fetcher against a self-hosted bars API that
// returns a JSON array of {timestamp, open, high, low, close, volume}
// objects, timestamps in Unix seconds.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

func (f *RESTFetcher) FetchBars(ctx context.Context, symbol string, w Window) ([]model.Row, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("range", w.Period)
	q.Set("interval", w.Interval)
	endpoint := fmt.Sprintf("%s/api/v1/bars?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read bars: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}

	doc := gjson.ParseBytes(body)
	if !gjson.ValidBytes(body) || !doc.IsArray() {
		return nil, fmt.Errorf("decode bars: expected a json array")
	}

	var rows []model.Row
	doc.ForEach(func(_, bar gjson.Result) bool {
		rows = append(rows, model.Row{
			Time:   time.Unix(bar.Get("timestamp").Int(), 0).UTC(),
			Open:   fieldValue(bar, "open"),
			High:   fieldValue(bar, "high"),
			Low:    fieldValue(bar, "low"),
			Close:  fieldValue(bar, "close"),
			Volume: fieldValue(bar, "volume"),
		})
		return true
	})
	return rows, nil
}

func fieldValue(obj gjson.Result, key string) any {
	v := obj.Get(key)
	return rawValue([]gjson.Result{v}, 0)
}
