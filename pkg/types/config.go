// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data model and per-stage configuration for
// the concierge engine pipeline.
package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "concierge-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LLMConfig holds settings for stages that call the model API.
type LLMConfig struct {
	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed model calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Timeout bounds each individual model call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ProviderConfig holds settings for the external data providers.
type ProviderConfig struct {
	HTTPConfig `yaml:",inline"`

	// Providers lists the provider names to consult, in registration order.
	// Fan-out results are merged in this order, never by completion time.
	Providers []string `json:"providers" yaml:"providers"`

	// MarketDataAPIKey authenticates the market snapshot provider.
	MarketDataAPIKey string `json:"market_data_api_key,omitempty" yaml:"market_data_api_key,omitempty"`

	// NewsAPIKey authenticates the news provider.
	NewsAPIKey string `json:"news_api_key,omitempty" yaml:"news_api_key,omitempty"`

	// AnalystAPIKey authenticates the analyst commentary provider.
	AnalystAPIKey string `json:"analyst_api_key,omitempty" yaml:"analyst_api_key,omitempty"`

	// InternalContentBaseURL points at the internal content service. Empty
	// means the provider reports itself unconfigured and is skipped.
	InternalContentBaseURL string `json:"internal_content_base_url,omitempty" yaml:"internal_content_base_url,omitempty"`

	// InternalContentAPIKey authenticates the internal content service.
	InternalContentAPIKey string `json:"internal_content_api_key,omitempty" yaml:"internal_content_api_key,omitempty"`
}

// InsightConfig holds settings for the insights path.
type InsightConfig struct {
	// InsightCount caps how many insights one request may emit (default 3).
	// Bundles beyond the cap are not realized at all.
	InsightCount int `json:"insight_count" yaml:"insight_count"`

	// CitationCap limits citations per signal bundle (default 5).
	CitationCap int `json:"citation_cap" yaml:"citation_cap"`

	// RequireCitations enforces that every emitted insight carries at least
	// one citation with a non-empty URL (default true).
	RequireCitations bool `json:"require_citations" yaml:"require_citations"`
}

// QAConfig holds settings for the question-answering path.
type QAConfig struct {
	// MaxNewsItems bounds news retrieval when the router does not say otherwise.
	MaxNewsItems int `json:"max_news_items" yaml:"max_news_items"`

	// MaxInternalItems bounds internal content retrieval.
	MaxInternalItems int `json:"max_internal_items" yaml:"max_internal_items"`

	// ConversationWindow is how many trailing messages of history the router
	// and synthesizer see (default 6).
	ConversationWindow int `json:"conversation_window" yaml:"conversation_window"`
}

// SessionConfig holds settings for session persistence.
type SessionConfig struct {
	// DataDir is the directory containing the session database.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// PipelineConfig groups all stage configurations. It is constructed once and
// passed into pipeline constructors explicitly; nothing reads ambient state.
type PipelineConfig struct {
	LLM      LLMConfig      `json:"llm" yaml:"llm"`
	Provider ProviderConfig `json:"provider" yaml:"provider"`
	Insight  InsightConfig  `json:"insight" yaml:"insight"`
	QA       QAConfig       `json:"qa" yaml:"qa"`
	Session  SessionConfig  `json:"session" yaml:"session"`
}

// DefaultPipelineConfig returns a PipelineConfig with working defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		LLM: LLMConfig{
			Model:      "claude-sonnet-4-5-20250929",
			MaxRetries: 3,
			Timeout:    30 * time.Second,
		},
		Provider: ProviderConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   15 * time.Second,
				UserAgent: "concierge-engine/0.1",
			},
			Providers: []string{"market_data", "news", "analyst", "internal_content"},
		},
		Insight: InsightConfig{
			InsightCount:     3,
			CitationCap:      5,
			RequireCitations: true,
		},
		QA: QAConfig{
			MaxNewsItems:       5,
			MaxInternalItems:   3,
			ConversationWindow: 6,
		},
		Session: SessionConfig{
			DataDir: "data",
		},
	}
}
