// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts a raw profile snapshot into the flat fact
// context consumed by the planner and prompts. It is a pure function of its
// input: no I/O, no hidden clock, the caller injects "now".
package normalize

import (
	"sort"
	"time"

	"github.com/pdiddy/concierge-engine/pkg/types"
)

// inactivityWindow is how long without a login a customer counts as inactive.
const inactivityWindow = 180 * 24 * time.Hour

// topHoldingsCap bounds the top-holdings list by market value.
const topHoldingsCap = 5

// Normalize derives a NormalizedContext from a profile snapshot. Absent
// optional fields degrade to zero values; only a missing customer
// identifier is an error.
func Normalize(profile types.Profile, now time.Time) (types.NormalizedContext, error) {
	if profile.Identity.CustomerID == "" {
		return types.NormalizedContext{}, types.ErrMissingIdentifier
	}

	tickers := make([]string, 0, len(profile.Holdings))
	for _, h := range profile.Holdings {
		if h.Ticker != "" {
			tickers = append(tickers, h.Ticker)
		}
	}

	var totalValue float64
	for _, h := range profile.Holdings {
		totalValue += h.MarketValue
	}

	sorted := make([]types.Holding, len(profile.Holdings))
	copy(sorted, profile.Holdings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MarketValue > sorted[j].MarketValue
	})

	top := make([]types.TopHolding, 0, topHoldingsCap)
	for _, h := range sorted {
		if len(top) >= topHoldingsCap {
			break
		}
		top = append(top, types.TopHolding{
			Ticker:           h.Ticker,
			Name:             h.Name,
			Value:            h.MarketValue,
			Category:         h.Category,
			DividendYieldPct: h.DividendYieldPct,
		})
	}

	yield := weightedDividendYield(profile.Holdings, totalValue)

	retirementYear := 0
	if profile.Identity.RetirementGoalDate != nil {
		retirementYear = profile.Identity.RetirementGoalDate.Year()
	}

	var goalProgress *float64
	for _, g := range profile.Goals {
		if g.GoalType == "retirement" && g.ProgressPct != nil {
			p := *g.ProgressPct
			goalProgress = &p
			break
		}
	}

	inactive := inactivityFlag(profile.Activity.LastLoginAt, now)

	return types.NormalizedContext{
		CustomerID:            profile.Identity.CustomerID,
		Age:                   age(profile.Identity.DateOfBirth, now),
		Tier:                  tier(profile.Wealth.TotalInvestableAssets),
		Archetype:             archetype(profile, inactive),
		Tickers:               tickers,
		TopHoldings:           top,
		HoldingsTotalValue:    totalValue,
		TotalInvestableAssets: profile.Wealth.TotalInvestableAssets,
		Dividends: types.DividendProfile{
			WeightedYieldPct: yield,
			HasDividends:     yield > 0,
		},
		InactivityFlag:     inactive,
		HasPositions:       len(profile.Holdings) > 0,
		HoldingsCount:      len(profile.Holdings),
		RetirementGoalYear: retirementYear,
		GoalProgressPct:    goalProgress,
		PreferredFormat:    profile.Preferences.PreferredFormat,
	}, nil
}

// age returns whole years at now, flooring by month/day comparison.
func age(dob *time.Time, now time.Time) int {
	if dob == nil {
		return 0
	}
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func tier(totalAssets float64) types.Tier {
	switch {
	case totalAssets < 250_000:
		return types.TierUnder250K
	case totalAssets < 1_000_000:
		return types.TierFrom250KTo1M
	default:
		return types.TierOver1M
	}
}

// archetype segments the customer. Inactivity takes precedence over
// experience level: an advanced user gone quiet still needs re-activation
// content before advanced material.
func archetype(profile types.Profile, inactive bool) types.Archetype {
	if inactive {
		return types.ArchetypeInactive
	}
	if profile.Identity.ExperienceLevel == types.ExperienceAdvanced {
		return types.ArchetypeAdvanced
	}
	return types.ArchetypeEveryday
}

// inactivityFlag reports whether the last login is older than the
// inactivity window. A customer with no recorded login is inactive.
func inactivityFlag(lastLogin *time.Time, now time.Time) bool {
	if lastLogin == nil {
		return true
	}
	return now.Sub(*lastLogin) > inactivityWindow
}

// weightedDividendYield is sum(value * yield) / sum(value), 0 when the
// portfolio carries no value.
func weightedDividendYield(holdings []types.Holding, totalValue float64) float64 {
	if totalValue <= 0 {
		return 0
	}
	var weighted float64
	for _, h := range holdings {
		weighted += h.MarketValue * h.DividendYieldPct
	}
	return weighted / totalValue
}
