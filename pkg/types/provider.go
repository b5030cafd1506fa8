// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ProviderStatus is the result of a provider healthcheck. Providers
// reporting not-ok are skipped, never failed.
type ProviderStatus struct {
	OK         bool   `json:"ok"`
	Configured bool   `json:"configured"`
	Message    string `json:"message"`
}

// ProviderRequest carries what a provider needs to fetch data for one
// pipeline run.
type ProviderRequest struct {
	CustomerID string
	AsOf       time.Time

	// Tickers the customer holds, for symbol-scoped providers.
	Tickers []string

	// Query is free text for search-style providers (QA questions, insight
	// themes). May be empty.
	Query string

	// Limit bounds the number of items returned; zero means provider default.
	Limit int
}

// ProviderItem is a generic content chunk returned by a provider.
type ProviderItem struct {
	// Kind classifies the item: "news", "price_context", "analyst_context",
	// "education".
	Kind string `json:"kind" yaml:"kind"`

	Title       string     `json:"title" yaml:"title"`
	Summary     string     `json:"summary" yaml:"summary"`
	URL         string     `json:"url,omitempty" yaml:"url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty"`

	// Symbol is set for ticker-scoped items.
	Symbol string `json:"symbol,omitempty" yaml:"symbol,omitempty"`
}

// SourceRecord is a raw citation-shaped record attached to a provider
// response, before assembly into a Citation.
type SourceRecord struct {
	Provider    string     `json:"provider" yaml:"provider"`
	Title       string     `json:"title" yaml:"title"`
	URL         string     `json:"url" yaml:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty"`

	// Entity identifies what the record is about (usually a ticker). Used to
	// synthesize a pseudo-URL on the QA path for sources without a public
	// link.
	Entity string `json:"entity,omitempty" yaml:"entity,omitempty"`
}

// ProviderResponse is the read-only output of one provider fetch.
type ProviderResponse struct {
	Provider  string         `json:"provider" yaml:"provider"`
	Items     []ProviderItem `json:"items" yaml:"items"`
	Citations []SourceRecord `json:"citations" yaml:"citations"`
}
