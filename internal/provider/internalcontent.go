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

const defaultInternalLimit = 3

// InternalContent searches the in-house education content service. When no
// base URL is configured it reports itself unconfigured and is skipped.
type InternalContent struct {
	baseURL string
	apiKey  string
	http    *http.Client
	agent   string
}

// NewInternalContent builds the internal content provider from configuration.
func NewInternalContent(cfg types.ProviderConfig) *InternalContent {
	return &InternalContent{
		baseURL: strings.TrimRight(cfg.InternalContentBaseURL, "/"),
		apiKey:  cfg.InternalContentAPIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		agent:   cfg.UserAgent,
	}
}

func (ic *InternalContent) Name() string { return "internal_content" }

func (ic *InternalContent) Healthcheck() types.ProviderStatus {
	if ic.baseURL == "" {
		return types.ProviderStatus{OK: false, Configured: false, Message: "no base URL configured"}
	}
	return types.ProviderStatus{OK: true, Configured: true, Message: "OK"}
}

type internalItem struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
}

// Fetch searches internal content by free-text query.
func (ic *InternalContent) Fetch(ctx context.Context, req types.ProviderRequest) (types.ProviderResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultInternalLimit
	}

	params := url.Values{}
	params.Set("q", req.Query)
	params.Set("limit", strconv.Itoa(limit))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, ic.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return types.ProviderResponse{}, fmt.Errorf("creating request: %w", err)
	}
	if ic.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+ic.apiKey)
	}
	if ic.agent != "" {
		httpReq.Header.Set("User-Agent", ic.agent)
	}

	httpResp, err := httputil.DoWithRetry(ctx, ic.http, httpReq, 0)
	if err != nil {
		return types.ProviderResponse{}, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return types.ProviderResponse{}, fmt.Errorf("internal content API returned %d", httpResp.StatusCode)
	}

	var items []internalItem
	if err := json.NewDecoder(httpResp.Body).Decode(&items); err != nil {
		return types.ProviderResponse{}, fmt.Errorf("decoding internal content: %w", err)
	}

	resp := types.ProviderResponse{Provider: ic.Name()}
	for _, it := range items {
		if len(resp.Items) >= limit {
			break
		}
		var published *time.Time
		if t, err := time.Parse(time.RFC3339, it.PublishedAt); err == nil {
			published = &t
		}
		resp.Items = append(resp.Items, types.ProviderItem{
			Kind:        "education",
			Title:       it.Title,
			Summary:     it.Summary,
			URL:         it.URL,
			PublishedAt: published,
		})
		resp.Citations = append(resp.Citations, types.SourceRecord{
			Provider:    ic.Name(),
			Title:       it.Title,
			URL:         it.URL,
			PublishedAt: published,
		})
	}

	return resp, nil
}
