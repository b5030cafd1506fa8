// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan selects the themed signal bundles for an insight request.
// Selection is a fixed decision table keyed by placement and archetype so
// that a given surface and user segment always yields the same candidate
// themes, in the same order.
package plan

import "github.com/pdiddy/concierge-engine/pkg/types"

// tableKey addresses one row of the decision table.
type tableKey struct {
	Placement types.Placement
	Archetype types.Archetype
}

// decisionTable maps every placement/archetype pair to its ordered builder
// chain. Order matters: bundles are realized until the insight count is
// met, so earlier entries are the preferred themes for that surface.
var decisionTable = map[tableKey][]builder{
	// Investment dashboard: goal framing first, market color second.
	// Inactive users get the activation bundle ahead of both.
	{types.PlacementDashboard, types.ArchetypeProspect}: {goalPortfolio, marketTrend},
	{types.PlacementDashboard, types.ArchetypeInactive}: {inactiveActivation, goalPortfolio, marketTrend},
	{types.PlacementDashboard, types.ArchetypeEveryday}: {goalPortfolio, marketTrend},
	{types.PlacementDashboard, types.ArchetypeAdvanced}: {goalPortfolio, marketTrend},

	// Positions tab: archetype-specific position framing, then anything
	// providers surfaced about the focus ticker.
	{types.PlacementPositions, types.ArchetypeProspect}: {positionsTicker},
	{types.PlacementPositions, types.ArchetypeInactive}: {inactiveActivation, positionsTicker},
	{types.PlacementPositions, types.ArchetypeEveryday}: {everydayPositions, positionsTicker},
	{types.PlacementPositions, types.ArchetypeAdvanced}: {advancedPositions, positionsTicker},

	// Performance tab: audience-tuned performance framing plus market
	// color.
	{types.PlacementPerformance, types.ArchetypeProspect}: {genericPerformance, marketTrend},
	{types.PlacementPerformance, types.ArchetypeInactive}: {inactiveActivation, genericPerformance, marketTrend},
	{types.PlacementPerformance, types.ArchetypeEveryday}: {everydayPerformance, marketTrend},
	{types.PlacementPerformance, types.ArchetypeAdvanced}: {advancedPerformance, marketTrend},
}

// dashboardFallback is reused when a positions request produces nothing,
// for example a focus ticker no provider had anything on.
var dashboardFallback = []builder{goalPortfolio, marketTrend}

// Bundles runs the decision table for the given placement and archetype
// and returns every bundle whose builder produced at least one fact.
// Unknown placements fall back to the dashboard chain.
func Bundles(placement types.Placement, in Input) []types.SignalBundle {
	builders, ok := decisionTable[tableKey{placement, in.Context.Archetype}]
	if !ok {
		builders = dashboardFallback
	}

	bundles := run(builders, in)

	// A positions view with nothing to say degrades to the dashboard
	// themes rather than returning empty-handed.
	if len(bundles) == 0 && placement == types.PlacementPositions {
		bundles = run(dashboardFallback, in)
	}
	return bundles
}

func run(builders []builder, in Input) []types.SignalBundle {
	var bundles []types.SignalBundle
	for _, build := range builders {
		if b, ok := build(in); ok {
			bundles = append(bundles, b)
		}
	}
	return bundles
}
