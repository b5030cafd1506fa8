// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Tier buckets a customer by total investable assets.
type Tier string

const (
	TierUnder250K    Tier = "UNDER_250K"
	TierFrom250KTo1M Tier = "FROM_250K_TO_1M"
	TierOver1M       Tier = "OVER_1M"
)

// Archetype is the coarse user segment driving which content themes are
// eligible.
type Archetype string

const (
	// ArchetypeProspect is reserved for upstream segmentation of users with
	// no funded account; normalization never assigns it.
	ArchetypeProspect Archetype = "PROSPECT"
	ArchetypeInactive Archetype = "INACTIVE"
	ArchetypeEveryday Archetype = "EVERYDAY"
	ArchetypeAdvanced Archetype = "ADVANCED"
)

// TopHolding is one of the largest positions by market value.
type TopHolding struct {
	Ticker           string  `json:"ticker" yaml:"ticker"`
	Name             string  `json:"name" yaml:"name"`
	Value            float64 `json:"value" yaml:"value"`
	Category         string  `json:"category,omitempty" yaml:"category,omitempty"`
	DividendYieldPct float64 `json:"dividend_yield_pct,omitempty" yaml:"dividend_yield_pct,omitempty"`
}

// DividendProfile summarizes income characteristics across tracked holdings.
type DividendProfile struct {
	// WeightedYieldPct is the market-value-weighted dividend yield, in
	// percent. Zero when no holdings carry value.
	WeightedYieldPct float64 `json:"weighted_yield_pct" yaml:"weighted_yield_pct"`

	HasDividends bool `json:"has_dividends" yaml:"has_dividends"`
}

// NormalizedContext is the flat fact context derived once per request from a
// profile snapshot. It is never mutated after creation; every downstream
// stage reads from it.
type NormalizedContext struct {
	CustomerID string `json:"customer_id" yaml:"customer_id"`

	// Age in whole years at the injected "now", or 0 when date of birth is
	// absent.
	Age int `json:"age,omitempty" yaml:"age,omitempty"`

	Tier      Tier      `json:"tier,omitempty" yaml:"tier,omitempty"`
	Archetype Archetype `json:"archetype" yaml:"archetype"`

	Tickers     []string     `json:"tickers" yaml:"tickers"`
	TopHoldings []TopHolding `json:"top_holdings" yaml:"top_holdings"`

	HoldingsTotalValue    float64 `json:"holdings_total_value" yaml:"holdings_total_value"`
	TotalInvestableAssets float64 `json:"total_investable_assets" yaml:"total_investable_assets"`

	Dividends DividendProfile `json:"dividend_profile" yaml:"dividend_profile"`

	InactivityFlag bool `json:"inactivity_flag" yaml:"inactivity_flag"`
	HasPositions   bool `json:"has_positions" yaml:"has_positions"`
	HoldingsCount  int  `json:"holdings_count" yaml:"holdings_count"`

	// RetirementGoalYear is 0 when no retirement goal date is recorded.
	RetirementGoalYear int `json:"retirement_goal_year,omitempty" yaml:"retirement_goal_year,omitempty"`

	// GoalProgressPct is nil when no retirement goal carries progress.
	GoalProgressPct *float64 `json:"goal_progress_pct,omitempty" yaml:"goal_progress_pct,omitempty"`

	PreferredFormat InsightFormat `json:"preferred_format,omitempty" yaml:"preferred_format,omitempty"`
}
