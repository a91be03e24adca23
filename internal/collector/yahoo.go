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

// DefaultYahooBaseURL is the public Yahoo Finance API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(baseURL, proxyURL string) *YahooFetcher {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(proxyURL),
		SymbolMap: map[string]string{
			"AUDUSD":  "AUDUSD=X",
			"AUD/USD": "AUDUSD=X",
			"AUD_USD": "AUDUSD=X",
		},
	}
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// FetchBars downloads the chart for symbol over w. Rows keep the provider's
// order and JSON nulls stay nil.
func (f *YahooFetcher) FetchBars(ctx context.Context, symbol string, w Window) ([]model.Row, error) {
	q := url.Values{}
	q.Set("range", w.Period)
	q.Set("interval", w.Interval)
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("yahoo decode: invalid json")
	}

	chart := gjson.GetBytes(body, "chart")
	if e := chart.Get("error"); e.Exists() && e.Type != gjson.Null {
		return nil, fmt.Errorf("yahoo api error: %s", e.Get("description").String())
	}

	result := chart.Get("result.0")
	if !result.Exists() {
		return nil, nil
	}

	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	rows := make([]model.Row, 0, len(timestamps))
	for i, ts := range timestamps {
		rows = append(rows, model.Row{
			Time:   time.Unix(ts.Int(), 0).UTC(),
			Open:   rawValue(opens, i),
			High:   rawValue(highs, i),
			Low:    rawValue(lows, i),
			Close:  rawValue(closes, i),
			Volume: rawValue(volumes, i),
		})
	}
	return rows, nil
}

// rawValue unwraps a JSON array element without interpreting it; numeric
// coercion is the payload builder's job.
func rawValue(arr []gjson.Result, i int) any {
	if i >= len(arr) {
		return nil
	}
	switch v := arr[i]; v.Type {
	case gjson.Number:
		return v.Float()
	case gjson.String:
		return v.Str
	default:
		return nil
	}
}
