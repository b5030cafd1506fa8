// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Placement identifies the UI surface an insight request originates from.
type Placement string

const (
	PlacementDashboard   Placement = "INVESTMENT_DASHBOARD"
	PlacementPositions   Placement = "POSITIONS"
	PlacementPerformance Placement = "PERFORMANCE"
)

// Trigger identifies the user action that raised the request.
type Trigger string

const (
	TriggerAppOpen       Trigger = "APP_OPEN"
	TriggerTabView       Trigger = "TAB_VIEW"
	TriggerHoverTicker   Trigger = "HOVER_TICKER"
	TriggerDwellNoAction Trigger = "DWELL_NO_ACTION"
	TriggerRepeatView    Trigger = "REPEAT_VIEW"
)

// InsightScope marks whether an insight is about the whole portfolio or a
// single ticker.
type InsightScope string

const (
	ScopePortfolio InsightScope = "PORTFOLIO"
	ScopeTicker    InsightScope = "TICKER"
)

// InsightType classifies the emitted insight for downstream rendering.
type InsightType string

const (
	TypeGoalProgress         InsightType = "GOAL_PROGRESS"
	TypeMarketTrend          InsightType = "MARKET_TREND"
	TypePortfolioComposition InsightType = "PORTFOLIO_COMPOSITION"
)

// BundleKind names a theme of grounded facts produced by the planner.
type BundleKind string

const (
	BundleGoalPortfolio       BundleKind = "goal_portfolio"
	BundleMarketTrend         BundleKind = "market_trend"
	BundlePositionsTicker     BundleKind = "positions_ticker"
	BundlePerformance         BundleKind = "performance"
	BundleInactiveActivation  BundleKind = "inactive_activation"
	BundleEverydayPositions   BundleKind = "everyday_positions"
	BundleEverydayPerformance BundleKind = "everyday_performance"
	BundleAdvancedPositions   BundleKind = "advanced_positions"
	BundleAdvancedPerformance BundleKind = "advanced_performance"
)

// SignalBundle is a named group of natural-language facts plus the
// citations gathered for that theme. Facts are derived only from the
// normalized context and provider responses, never invented. A bundle is
// created per request, consumed immediately by the generation loop, and
// discarded. Its fact list is never empty.
type SignalBundle struct {
	Kind      BundleKind `json:"kind" yaml:"kind"`
	Facts     []string   `json:"facts" yaml:"facts"`
	Citations []Citation `json:"citations,omitempty" yaml:"citations,omitempty"`
}

// RealizedContent is the model's generation output for one bundle. It is
// produced strictly from the facts handed to the realize call.
type RealizedContent struct {
	Headline          string `json:"headline" yaml:"headline"`
	Explanation       string `json:"explanation" yaml:"explanation"`
	PersonalRelevance string `json:"personal_relevance" yaml:"personal_relevance"`
}

// Texts returns the realized strings in a fixed order for guardrail checks.
func (r RealizedContent) Texts() []string {
	return []string{r.Headline, r.Explanation, r.PersonalRelevance}
}

// Verdict is the judge's classification of realized text.
type Verdict string

const (
	VerdictPass  Verdict = "PASS"
	VerdictBlock Verdict = "BLOCK"
)

// JudgeVerdict is the compliance review result for one realized bundle.
type JudgeVerdict struct {
	Verdict Verdict `json:"verdict" yaml:"verdict"`
	Reason  string  `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Insight is the final emitted unit. It is only constructed after the
// realized text passed both the local guardrail and the model judge.
type Insight struct {
	ID                string       `json:"id" yaml:"id"`
	Type              InsightType  `json:"type" yaml:"type"`
	Headline          string       `json:"headline" yaml:"headline"`
	Explanation       string       `json:"explanation" yaml:"explanation"`
	PersonalRelevance string       `json:"personal_relevance" yaml:"personal_relevance"`
	Placement         Placement    `json:"placement" yaml:"placement"`
	Trigger           Trigger      `json:"trigger" yaml:"trigger"`
	Scope             InsightScope `json:"scope" yaml:"scope"`
	Ticker            string       `json:"ticker,omitempty" yaml:"ticker,omitempty"`

	// Priority is the generation order, zero-based.
	Priority int `json:"priority" yaml:"priority"`

	Citations []Citation `json:"citations" yaml:"citations"`
}

// Audit records what actually ran, for observability on every response.
type Audit struct {
	Model         string   `json:"model" yaml:"model"`
	ProvidersUsed []string `json:"providers_used" yaml:"providers_used"`
	TraceID       string   `json:"trace_id" yaml:"trace_id"`
}

// InsightSession is the persisted result of one insights run.
type InsightSession struct {
	SessionID  string    `json:"session_id" yaml:"session_id"`
	CustomerID string    `json:"customer_id" yaml:"customer_id"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	Insights   []Insight `json:"insights" yaml:"insights"`
	Audit      Audit     `json:"audit" yaml:"audit"`
}
