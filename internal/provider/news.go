// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/concierge-engine/internal/httputil"
	"github.com/pdiddy/concierge-engine/pkg/types"
)

// newsAPIURL is the news search endpoint. Package-level var for test
// substitution.
var newsAPIURL = "https://api.benzinga.com/api/v2/news"

const defaultNewsLimit = 5

// News searches recent coverage by query and held tickers.
type News struct {
	apiKey string
	http   *http.Client
	agent  string
}

// NewNews builds the news provider from configuration.
func NewNews(cfg types.ProviderConfig) *News {
	return &News{
		apiKey: cfg.NewsAPIKey,
		http:   &http.Client{Timeout: cfg.Timeout},
		agent:  cfg.UserAgent,
	}
}

func (n *News) Name() string { return "news" }

func (n *News) Healthcheck() types.ProviderStatus {
	if n.apiKey == "" {
		return types.ProviderStatus{OK: false, Configured: false, Message: "missing API key"}
	}
	return types.ProviderStatus{OK: true, Configured: true, Message: "OK"}
}

type newsItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Teaser  string `json:"teaser"`
	Created string `json:"created"`
	Stocks  []struct {
		Name string `json:"name"`
	} `json:"stocks"`
}

// Fetch searches news for the request query scoped to held tickers.
// Results arrive recency-sorted from the API; order is preserved.
func (n *News) Fetch(ctx context.Context, req types.ProviderRequest) (types.ProviderResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultNewsLimit
	}

	params := url.Values{}
	params.Set("token", n.apiKey)
	params.Set("pageSize", strconv.Itoa(limit))
	if req.Query != "" {
		params.Set("topics", req.Query)
	}
	if len(req.Tickers) > 0 {
		params.Set("tickers", strings.Join(req.Tickers, ","))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, newsAPIURL+"?"+params.Encode(), nil)
	if err != nil {
		return types.ProviderResponse{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if n.agent != "" {
		httpReq.Header.Set("User-Agent", n.agent)
	}

	httpResp, err := httputil.DoWithRetry(ctx, n.http, httpReq, 0)
	if err != nil {
		return types.ProviderResponse{}, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return types.ProviderResponse{}, fmt.Errorf("news API returned %d", httpResp.StatusCode)
	}

	var items []newsItem
	if err := json.NewDecoder(httpResp.Body).Decode(&items); err != nil {
		return types.ProviderResponse{}, fmt.Errorf("decoding news: %w", err)
	}

	resp := types.ProviderResponse{Provider: n.Name()}
	for _, it := range items {
		if len(resp.Items) >= limit {
			break
		}
		published := parseNewsTime(it.Created)
		symbol := ""
		if len(it.Stocks) > 0 {
			symbol = it.Stocks[0].Name
		}

		resp.Items = append(resp.Items, types.ProviderItem{
			Kind:        "news",
			Title:       it.Title,
			Summary:     it.Teaser,
			URL:         it.URL,
			PublishedAt: published,
			Symbol:      symbol,
		})
		resp.Citations = append(resp.Citations, types.SourceRecord{
			Provider:    n.Name(),
			Title:       it.Title,
			URL:         it.URL,
			PublishedAt: published,
			Entity:      symbol,
		})
	}

	return resp, nil
}

// parseNewsTime handles the RFC1123-ish timestamps the news API emits,
// falling back to RFC3339. Unparseable times degrade to nil.
func parseNewsTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
