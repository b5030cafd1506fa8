// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/concierge-engine/internal/httputil"
	"github.com/pdiddy/concierge-engine/pkg/types"
)

// analystAPIURL is the analyst insights endpoint. Package-level var for
// test substitution.
var analystAPIURL = "https://api.benzinga.com/api/v1/analyst/insights"

// Analyst fetches recent analyst commentary for held tickers. The payload
// carries no public URL, so its source records rely on the QA path's
// pseudo-URL synthesis; the insights path drops them.
type Analyst struct {
	apiKey string
	http   *http.Client
	agent  string
}

// NewAnalyst builds the analyst commentary provider from configuration.
func NewAnalyst(cfg types.ProviderConfig) *Analyst {
	return &Analyst{
		apiKey: cfg.AnalystAPIKey,
		http:   &http.Client{Timeout: cfg.Timeout},
		agent:  cfg.UserAgent,
	}
}

func (a *Analyst) Name() string { return "analyst" }

func (a *Analyst) Healthcheck() types.ProviderStatus {
	if a.apiKey == "" {
		return types.ProviderStatus{OK: false, Configured: false, Message: "missing API key"}
	}
	return types.ProviderStatus{OK: true, Configured: true, Message: "OK"}
}

type analystPayload struct {
	Insights []analystInsight `json:"analyst-insights"`
}

type analystInsight struct {
	Security struct {
		Symbol string `json:"symbol"`
	} `json:"security"`
	Symbol string `json:"symbol"`
	Firm   string `json:"firm"`
	Rating string `json:"rating"`
	Date   string `json:"date"`
}

// Fetch pulls analyst commentary for the held tickers, one item per
// insight with the symbol and firm carried as extras.
func (a *Analyst) Fetch(ctx context.Context, req types.ProviderRequest) (types.ProviderResponse, error) {
	if len(req.Tickers) == 0 {
		return types.ProviderResponse{Provider: a.Name()}, nil
	}

	symbols := append([]string(nil), req.Tickers...)
	sort.Strings(symbols)

	params := url.Values{}
	params.Set("token", a.apiKey)
	params.Set("symbols", strings.Join(dedupeStrings(symbols), ","))
	params.Set("page", "1")
	params.Set("pageSize", "10")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, analystAPIURL+"?"+params.Encode(), nil)
	if err != nil {
		return types.ProviderResponse{}, fmt.Errorf("creating request: %w", err)
	}
	if a.agent != "" {
		httpReq.Header.Set("User-Agent", a.agent)
	}

	httpResp, err := httputil.DoWithRetry(ctx, a.http, httpReq, 0)
	if err != nil {
		return types.ProviderResponse{}, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return types.ProviderResponse{}, fmt.Errorf("analyst API returned %d", httpResp.StatusCode)
	}

	var payload analystPayload
	if err := json.NewDecoder(httpResp.Body).Decode(&payload); err != nil {
		return types.ProviderResponse{}, fmt.Errorf("decoding analyst payload: %w", err)
	}

	resp := types.ProviderResponse{Provider: a.Name()}
	for _, it := range payload.Insights {
		symbol := it.Security.Symbol
		if symbol == "" {
			symbol = it.Symbol
		}
		if symbol == "" {
			continue
		}

		published := parseAnalystDate(it.Date)
		resp.Items = append(resp.Items, types.ProviderItem{
			Kind:  "analyst_context",
			Title: fmt.Sprintf("%s analyst commentary", symbol),
			Summary: fmt.Sprintf(
				"Recent analyst commentary from %s discusses outlook and expectations for %s.",
				it.Firm, symbol),
			PublishedAt: published,
			Symbol:      symbol,
		})
		resp.Citations = append(resp.Citations, types.SourceRecord{
			Provider:    a.Name(),
			Title:       fmt.Sprintf("Analyst insight for %s", symbol),
			URL:         "", // no public link in this payload
			PublishedAt: published,
			Entity:      symbol,
		})
	}

	return resp, nil
}

func parseAnalystDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
