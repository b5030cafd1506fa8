// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/pdiddy/concierge-engine/internal/httputil"
	"github.com/pdiddy/concierge-engine/pkg/types"
)

// marketDataAPIURL is the daily time series endpoint. Package-level var
// for test substitution.
var marketDataAPIURL = "https://www.alphavantage.co/query"

// marketTickerCap bounds how many held tickers one snapshot covers; the
// free quote API rate-limits aggressively.
const marketTickerCap = 3

// recentSessions is how many trailing closes feed the price range summary.
const recentSessions = 5

// MarketData fetches recent daily closes per held ticker and summarizes
// them as price-context items.
type MarketData struct {
	apiKey string
	http   *http.Client
	agent  string
}

// NewMarketData builds the market snapshot provider from configuration.
func NewMarketData(cfg types.ProviderConfig) *MarketData {
	return &MarketData{
		apiKey: cfg.MarketDataAPIKey,
		http:   &http.Client{Timeout: cfg.Timeout},
		agent:  cfg.UserAgent,
	}
}

func (m *MarketData) Name() string { return "market_data" }

func (m *MarketData) Healthcheck() types.ProviderStatus {
	if m.apiKey == "" {
		return types.ProviderStatus{OK: false, Configured: false, Message: "missing API key"}
	}
	return types.ProviderStatus{OK: true, Configured: true, Message: "OK"}
}

type dailySeriesResponse struct {
	Series map[string]map[string]string `json:"Time Series (Daily)"`
}

// Fetch pulls the daily series for up to marketTickerCap held tickers and
// emits one price-range item per ticker with data.
func (m *MarketData) Fetch(ctx context.Context, req types.ProviderRequest) (types.ProviderResponse, error) {
	resp := types.ProviderResponse{Provider: m.Name()}

	tickers := req.Tickers
	if len(tickers) > marketTickerCap {
		tickers = tickers[:marketTickerCap]
	}

	for _, symbol := range tickers {
		series, err := m.fetchSeries(ctx, symbol)
		if err != nil {
			return types.ProviderResponse{}, fmt.Errorf("fetching series for %s: %w", symbol, err)
		}
		if len(series.Series) == 0 {
			continue
		}

		low, high, ok := closeRange(series.Series)
		if !ok {
			continue
		}

		resp.Items = append(resp.Items, types.ProviderItem{
			Kind:  "price_context",
			Title: fmt.Sprintf("%s recent price activity", symbol),
			Summary: fmt.Sprintf(
				"Recent prices for %s ranged between %.2f and %.2f over the last few sessions.",
				symbol, low, high),
			URL:    "https://www.alphavantage.co/documentation/",
			Symbol: symbol,
		})
		resp.Citations = append(resp.Citations, types.SourceRecord{
			Provider: m.Name(),
			Title:    fmt.Sprintf("Daily price series for %s", symbol),
			URL:      "https://www.alphavantage.co/documentation/",
			Entity:   symbol,
		})
	}

	return resp, nil
}

func (m *MarketData) fetchSeries(ctx context.Context, symbol string) (dailySeriesResponse, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", "compact")
	params.Set("apikey", m.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, marketDataAPIURL+"?"+params.Encode(), nil)
	if err != nil {
		return dailySeriesResponse{}, fmt.Errorf("creating request: %w", err)
	}
	if m.agent != "" {
		req.Header.Set("User-Agent", m.agent)
	}

	httpResp, err := httputil.DoWithRetry(ctx, m.http, req, 0)
	if err != nil {
		return dailySeriesResponse{}, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return dailySeriesResponse{}, fmt.Errorf("market data API returned %d", httpResp.StatusCode)
	}

	var series dailySeriesResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&series); err != nil {
		return dailySeriesResponse{}, fmt.Errorf("decoding series: %w", err)
	}
	return series, nil
}

// closeRange computes min/max close over the most recent sessions.
func closeRange(series map[string]map[string]string) (low, high float64, ok bool) {
	dates := make([]string, 0, len(series))
	for d := range series {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > recentSessions {
		dates = dates[:recentSessions]
	}

	for _, d := range dates {
		raw, present := series[d]["4. close"]
		if !present {
			continue
		}
		c, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if !ok {
			low, high, ok = c, c, true
			continue
		}
		if c < low {
			low = c
		}
		if c > high {
			high = c
		}
	}
	return low, high, ok
}
