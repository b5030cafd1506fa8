// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ExperienceLevel is the self-reported investment experience on a profile.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
	ExperienceUnknown      ExperienceLevel = "unknown"
)

// InsightFormat is the user's preferred rendering for insight content.
type InsightFormat string

const (
	FormatText   InsightFormat = "text"
	FormatBullet InsightFormat = "bullet"
	FormatAudio  InsightFormat = "audio"
	FormatVideo  InsightFormat = "video"
)

// Identity holds the account-level fields of a profile snapshot.
type Identity struct {
	CustomerID         string          `json:"customer_id" yaml:"customer_id"`
	FullName           string          `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	DateOfBirth        *time.Time      `json:"date_of_birth,omitempty" yaml:"date_of_birth,omitempty"`
	RetirementGoalDate *time.Time      `json:"retirement_goal_date,omitempty" yaml:"retirement_goal_date,omitempty"`
	ExperienceLevel    ExperienceLevel `json:"experience_level,omitempty" yaml:"experience_level,omitempty"`
}

// WealthSummary aggregates balances across linked accounts.
type WealthSummary struct {
	AsOf                  time.Time `json:"as_of" yaml:"as_of"`
	TotalInvestableAssets float64   `json:"total_investable_assets" yaml:"total_investable_assets"`
	CheckingBalance       float64   `json:"checking_balance,omitempty" yaml:"checking_balance,omitempty"`
	SavingsBalance        float64   `json:"savings_balance,omitempty" yaml:"savings_balance,omitempty"`
	BrokerageBalance      float64   `json:"brokerage_balance,omitempty" yaml:"brokerage_balance,omitempty"`
	ExternalAccounts      int       `json:"external_accounts_linked,omitempty" yaml:"external_accounts_linked,omitempty"`
}

// Holding is one position in the profile snapshot.
type Holding struct {
	Name             string  `json:"name" yaml:"name"`
	Ticker           string  `json:"ticker,omitempty" yaml:"ticker,omitempty"`
	Category         string  `json:"category,omitempty" yaml:"category,omitempty"`
	Units            float64 `json:"units,omitempty" yaml:"units,omitempty"`
	MarketValue      float64 `json:"current_market_value" yaml:"current_market_value"`
	CostBasis        float64 `json:"cost_basis,omitempty" yaml:"cost_basis,omitempty"`
	DividendYieldPct float64 `json:"dividend_yield_pct,omitempty" yaml:"dividend_yield_pct,omitempty"`
	RecentDividends  float64 `json:"recent_dividend_payments,omitempty" yaml:"recent_dividend_payments,omitempty"`
	Reinvesting      bool    `json:"dividend_reinvestment_enabled,omitempty" yaml:"dividend_reinvestment_enabled,omitempty"`
}

// Goal is one savings goal on the profile.
type Goal struct {
	GoalType      string     `json:"goal_type" yaml:"goal_type"`
	TargetAmount  float64    `json:"target_amount,omitempty" yaml:"target_amount,omitempty"`
	ProgressPct   *float64   `json:"progress_pct,omitempty" yaml:"progress_pct,omitempty"`
	EstimatedDate *time.Time `json:"estimated_goal_date,omitempty" yaml:"estimated_goal_date,omitempty"`
}

// Activity summarizes recent account engagement.
type Activity struct {
	LastLoginAt      *time.Time `json:"last_login_at,omitempty" yaml:"last_login_at,omitempty"`
	LoginFrequency30 int        `json:"login_frequency_30d,omitempty" yaml:"login_frequency_30d,omitempty"`
	EngagementScore  float64    `json:"engagement_score,omitempty" yaml:"engagement_score,omitempty"`
}

// Preferences holds the user's content preferences.
type Preferences struct {
	PreferredFormat InsightFormat `json:"preferred_insight_format,omitempty" yaml:"preferred_insight_format,omitempty"`
}

// Profile is the raw snapshot handed to the normalizer by the profile
// source. It is treated as read-only input.
type Profile struct {
	Identity    Identity      `json:"identity" yaml:"identity"`
	Wealth      WealthSummary `json:"wealth" yaml:"wealth"`
	Holdings    []Holding     `json:"holdings" yaml:"holdings"`
	Goals       []Goal        `json:"goals" yaml:"goals"`
	Activity    Activity      `json:"activity" yaml:"activity"`
	Preferences Preferences   `json:"preferences" yaml:"preferences"`
}
