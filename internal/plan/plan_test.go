// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/concierge-engine/pkg/types"
)

func floatPtr(f float64) *float64 { return &f }

func everydayContext() types.NormalizedContext {
	return types.NormalizedContext{
		CustomerID: "cust-001",
		Archetype:  types.ArchetypeEveryday,
		Tickers:    []string{"AAPL", "VOO"},
		TopHoldings: []types.TopHolding{
			{Ticker: "VOO", Name: "Vanguard S&P 500", Value: 100_000},
			{Ticker: "AAPL", Name: "Apple Inc", Value: 60_000},
		},
		HoldingsTotalValue:    160_000,
		TotalInvestableAssets: 400_000,
		Dividends:             types.DividendProfile{WeightedYieldPct: 1.2, HasDividends: true},
		HasPositions:          true,
		HoldingsCount:         2,
		RetirementGoalYear:    2045,
		GoalProgressPct:       floatPtr(42),
	}
}

func newsResponse() types.ProviderResponse {
	return types.ProviderResponse{
		Provider: "news",
		Items: []types.ProviderItem{
			{Kind: "news", Title: "Dividend stocks in focus", Summary: "Income strategies gained attention as AAPL reported earnings."},
		},
		Citations: []types.SourceRecord{
			{Provider: "news", Title: "Dividend stocks in focus", URL: "https://example.com/div"},
		},
	}
}

func TestBundles_DashboardEveryday(t *testing.T) {
	in := Input{Context: everydayContext(), Providers: []types.ProviderResponse{newsResponse()}, CitationCap: 5}

	bundles := Bundles(types.PlacementDashboard, in)

	require.Len(t, bundles, 2)
	assert.Equal(t, types.BundleGoalPortfolio, bundles[0].Kind)
	assert.Equal(t, types.BundleMarketTrend, bundles[1].Kind)

	// Goal bundle facts come from the context alone.
	joined := strings.Join(bundles[0].Facts, " ")
	assert.Contains(t, joined, "42%")
	assert.Contains(t, joined, "2045")
	assert.Empty(t, bundles[0].Citations)

	// Market bundle carries the provider citations.
	assert.NotEmpty(t, bundles[1].Citations)
}

func TestBundles_DashboardInactiveLeadsWithActivation(t *testing.T) {
	ctx := everydayContext()
	ctx.Archetype = types.ArchetypeInactive
	in := Input{Context: ctx, CitationCap: 5}

	bundles := Bundles(types.PlacementDashboard, in)

	require.NotEmpty(t, bundles)
	assert.Equal(t, types.BundleInactiveActivation, bundles[0].Kind)
}

func TestBundles_InactiveNoPositionsStatesIt(t *testing.T) {
	ctx := types.NormalizedContext{
		CustomerID: "cust-002",
		Archetype:  types.ArchetypeInactive,
	}
	in := Input{Context: ctx, CitationCap: 5}

	bundles := Bundles(types.PlacementDashboard, in)

	require.NotEmpty(t, bundles)
	activation := bundles[0]
	require.Equal(t, types.BundleInactiveActivation, activation.Kind)
	assert.Contains(t, activation.Facts, "There are no tracked positions in the account.")
}

func TestBundles_NoEmptyFactBundles(t *testing.T) {
	// A context with nothing to say yields no bundles with zero facts,
	// whatever the placement.
	empty := types.NormalizedContext{CustomerID: "cust-003", Archetype: types.ArchetypeEveryday}
	for _, placement := range []types.Placement{
		types.PlacementDashboard, types.PlacementPositions, types.PlacementPerformance,
	} {
		bundles := Bundles(placement, Input{Context: empty, CitationCap: 5})
		for _, b := range bundles {
			assert.NotEmpty(t, b.Facts, "placement %s bundle %s", placement, b.Kind)
		}
	}
}

func TestBundles_PositionsAdvanced(t *testing.T) {
	ctx := everydayContext()
	ctx.Archetype = types.ArchetypeAdvanced
	in := Input{
		Context:     ctx,
		Providers:   []types.ProviderResponse{newsResponse()},
		FocusTicker: "AAPL",
		CitationCap: 5,
	}

	bundles := Bundles(types.PlacementPositions, in)

	require.Len(t, bundles, 2)
	assert.Equal(t, types.BundleAdvancedPositions, bundles[0].Kind)
	assert.Equal(t, types.BundlePositionsTicker, bundles[1].Kind)
	assert.NotEmpty(t, bundles[1].Citations)
}

func TestBundles_PositionsTickerMatchesByMention(t *testing.T) {
	resp := types.ProviderResponse{
		Provider: "news",
		Items: []types.ProviderItem{
			{Kind: "news", Title: "Tech roundup", Summary: "Apple supplier news moved aapl today."},
			{Kind: "news", Title: "Unrelated", Summary: "Energy sector wrap."},
		},
		Citations: []types.SourceRecord{
			{Provider: "news", Title: "Tech roundup", URL: "https://example.com/tech"},
		},
	}
	in := Input{Context: everydayContext(), Providers: []types.ProviderResponse{resp}, FocusTicker: "AAPL", CitationCap: 5}

	bundle, ok := positionsTicker(in)

	require.True(t, ok)
	require.Len(t, bundle.Facts, 1)
	assert.Contains(t, bundle.Facts[0], "aapl")
}

func TestBundles_PositionsFallsBackToDashboard(t *testing.T) {
	// Prospect on positions with no focus ticker has no positions
	// builders; the dashboard chain takes over.
	ctx := everydayContext()
	ctx.Archetype = types.ArchetypeProspect
	in := Input{Context: ctx, CitationCap: 5}

	bundles := Bundles(types.PlacementPositions, in)

	require.NotEmpty(t, bundles)
	assert.Equal(t, types.BundleGoalPortfolio, bundles[0].Kind)
}

func TestBundles_PerformanceByArchetype(t *testing.T) {
	tests := []struct {
		archetype types.Archetype
		wantFirst types.BundleKind
	}{
		{types.ArchetypeAdvanced, types.BundleAdvancedPerformance},
		{types.ArchetypeEveryday, types.BundleEverydayPerformance},
		{types.ArchetypeProspect, types.BundlePerformance},
	}
	for _, tt := range tests {
		ctx := everydayContext()
		ctx.Archetype = tt.archetype
		bundles := Bundles(types.PlacementPerformance, Input{Context: ctx, CitationCap: 5})
		require.NotEmpty(t, bundles, "archetype %s", tt.archetype)
		assert.Equal(t, tt.wantFirst, bundles[0].Kind)
	}
}

func TestMarketTrend_CitationCapApplied(t *testing.T) {
	resp := types.ProviderResponse{Provider: "news"}
	for i := 0; i < 8; i++ {
		resp.Items = append(resp.Items, types.ProviderItem{Kind: "news", Title: "Story", Summary: "dividend coverage"})
		resp.Citations = append(resp.Citations, types.SourceRecord{
			Provider: "news",
			Title:    "Story " + string(rune('a'+i)),
			URL:      "https://example.com/" + string(rune('a'+i)),
		})
	}
	in := Input{Context: everydayContext(), Providers: []types.ProviderResponse{resp}, CitationCap: 5}

	bundle, ok := marketTrend(in)

	require.True(t, ok)
	assert.Len(t, bundle.Citations, 5)
}

func TestMarketTrend_TickerMentionsAreWholeWords(t *testing.T) {
	ctx := everydayContext()
	ctx.Tickers = []string{"F", "AAPL", "VOO"}
	resp := types.ProviderResponse{
		Provider: "news",
		Items: []types.ProviderItem{
			{Kind: "news", Title: "Earnings in focus", Summary: "AAPL reported results after the close."},
			{Kind: "news", Title: "Fund flows", Summary: "Index funds keep gathering assets.", Symbol: "VOO"},
		},
		Citations: []types.SourceRecord{
			{Provider: "news", Title: "Earnings in focus", URL: "https://example.com/earnings"},
		},
	}
	in := Input{Context: ctx, Providers: []types.ProviderResponse{resp}, CitationCap: 5}

	bundle, ok := marketTrend(in)

	require.True(t, ok)
	var mentions string
	for _, f := range bundle.Facts {
		if strings.Contains(f, "Tickers referenced") {
			mentions = f
		}
	}
	require.NotEmpty(t, mentions)
	// "F" appears only inside words like "focus" and "funds", so it is not
	// a mention. AAPL is named in prose and VOO is item-symbol scoped.
	assert.NotContains(t, mentions, "F,")
	assert.Contains(t, mentions, "AAPL")
	assert.Contains(t, mentions, "VOO")
}

func TestMarketTrend_NoProviderDataMeansNoBundle(t *testing.T) {
	_, ok := marketTrend(Input{Context: everydayContext(), CitationCap: 5})
	assert.False(t, ok)
}

func TestBundles_UnknownPlacementFallsBack(t *testing.T) {
	bundles := Bundles(types.Placement("SOMETHING_NEW"), Input{Context: everydayContext(), CitationCap: 5})
	require.NotEmpty(t, bundles)
	assert.Equal(t, types.BundleGoalPortfolio, bundles[0].Kind)
}
