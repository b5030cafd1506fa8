// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Intent is one of the closed set of question classifications the router
// may emit.
type Intent string

const (
	IntentPortfolioRelation Intent = "portfolio_relation"
	IntentAssetDeepDive     Intent = "asset_deep_dive"
	IntentRiskExplainer     Intent = "risk_explainer"
	IntentDefinition        Intent = "definition"
	IntentRecapInsight      Intent = "recap_insight"
	IntentGenericScope      Intent = "generic_scope"
)

// ValidIntent reports whether s is a member of the closed intent set.
func ValidIntent(s Intent) bool {
	switch s {
	case IntentPortfolioRelation, IntentAssetDeepDive, IntentRiskExplainer,
		IntentDefinition, IntentRecapInsight, IntentGenericScope:
		return true
	}
	return false
}

// Entities are the things a question mentions, as extracted by the router.
type Entities struct {
	Tickers    []string `json:"tickers" yaml:"tickers"`
	AssetNames []string `json:"asset_names" yaml:"asset_names"`
	Sectors    []string `json:"sectors" yaml:"sectors"`
	Themes     []string `json:"themes" yaml:"themes"`
}

// RetrievalPlan is the router's decision of which external data sources are
// needed to answer a question.
type RetrievalPlan struct {
	Intents  []Intent `json:"intents" yaml:"intents"`
	Entities Entities `json:"entities" yaml:"entities"`

	NeedNews            bool `json:"need_news" yaml:"need_news"`
	NeedMarketData      bool `json:"need_market_data" yaml:"need_market_data"`
	NeedInternalContent bool `json:"need_internal_content" yaml:"need_internal_content"`

	Confidence Confidence `json:"confidence" yaml:"confidence"`

	// Why is one sentence for internal logs only; it never reaches users.
	Why string `json:"why,omitempty" yaml:"why,omitempty"`

	MaxNewsItems     int `json:"max_news_items,omitempty" yaml:"max_news_items,omitempty"`
	MaxInternalItems int `json:"max_internal_items,omitempty" yaml:"max_internal_items,omitempty"`
}

// HasIntent reports whether the plan includes the given intent.
func (p RetrievalPlan) HasIntent(in Intent) bool {
	for _, i := range p.Intents {
		if i == in {
			return true
		}
	}
	return false
}
