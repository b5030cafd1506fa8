// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/concierge-engine/internal/citation"
	"github.com/pdiddy/concierge-engine/pkg/types"
)

// Input is everything a bundle builder may draw facts from: the normalized
// context and the provider payloads. Builders never see the raw profile.
type Input struct {
	Context     types.NormalizedContext
	Providers   []types.ProviderResponse
	FocusTicker string
	CitationCap int
}

// builder derives one themed bundle. It returns ok=false when it has
// nothing truthful to say; a bundle with zero facts is never emitted.
type builder func(in Input) (types.SignalBundle, bool)

// goalPortfolio frames goal progress and portfolio composition from the
// user's own data. No external sources, so no citations.
func goalPortfolio(in Input) (types.SignalBundle, bool) {
	c := in.Context
	var facts []string

	if c.GoalProgressPct != nil {
		facts = append(facts, fmt.Sprintf("Retirement goal progress is %.0f%%.", *c.GoalProgressPct))
	}
	if c.RetirementGoalYear > 0 {
		facts = append(facts, fmt.Sprintf("Retirement goal year is %d.", c.RetirementGoalYear))
	}
	if c.TotalInvestableAssets > 0 {
		facts = append(facts, fmt.Sprintf("Total investable assets are approximately %.0f.", c.TotalInvestableAssets))
	}

	if len(c.TopHoldings) > 0 {
		var tickers []string
		for _, h := range c.TopHoldings {
			if h.Ticker != "" {
				tickers = append(tickers, h.Ticker)
			}
		}
		if len(tickers) > 0 {
			facts = append(facts, fmt.Sprintf("Top holdings by value include: %s.", strings.Join(tickers, ", ")))
		}
		if c.HoldingsTotalValue > 0 {
			pct := c.TopHoldings[0].Value / c.HoldingsTotalValue * 100
			facts = append(facts, fmt.Sprintf("Largest holding is about %.0f%% of tracked holdings value.", pct))
		}
	}

	if c.Dividends.HasDividends {
		facts = append(facts, fmt.Sprintf("Weighted dividend yield across tracked holdings is ~%.2f%%.", c.Dividends.WeightedYieldPct))
	}

	if len(facts) == 0 {
		return types.SignalBundle{}, false
	}
	return types.SignalBundle{Kind: types.BundleGoalPortfolio, Facts: facts}, true
}

// trendThemes maps coverage themes to the keywords that signal them.
var trendThemes = []struct {
	label    string
	keywords []string
}{
	{"dividends/income", []string{"dividend", "yield", "income"}},
	{"ETFs/index exposure", []string{"etf", "index", "s&p", "vanguard"}},
	{"earnings", []string{"earnings", "guidance", "revenue"}},
	{"rates/macro", []string{"rates", "fed", "inflation"}},
}

// tickerMention matches the ticker as a standalone word, so short symbols
// like "F" do not hit inside ordinary prose.
func tickerMention(ticker string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(ticker)) + `\b`)
}

// marketTrend aggregates news, analyst, and price-context items into one
// dynamic market bundle. Emitted only when providers returned usable facts.
func marketTrend(in Input) (types.SignalBundle, bool) {
	var facts []string
	var sources []types.SourceRecord

	var newsCount int
	var blobs []string
	for _, p := range in.Providers {
		sources = append(sources, p.Citations...)
		for _, item := range p.Items {
			switch item.Kind {
			case "news", "analyst_context":
				newsCount++
				blobs = append(blobs, strings.ToLower(item.Title+" "+item.Summary))
			}
		}
	}

	if newsCount > 0 {
		facts = append(facts, fmt.Sprintf("Providers returned %d recent items related to tickers the user holds.", newsCount))
		blob := strings.Join(blobs, " ")
		for _, theme := range trendThemes {
			for _, k := range theme.keywords {
				if strings.Contains(blob, k) {
					facts = append(facts, fmt.Sprintf("Recent coverage mentions themes around %s.", theme.label))
					break
				}
			}
		}

		symbols := make(map[string]bool)
		for _, p := range in.Providers {
			for _, item := range p.Items {
				if item.Symbol != "" {
					symbols[item.Symbol] = true
				}
			}
		}

		var mentioned []string
		for _, t := range in.Context.Tickers {
			if len(mentioned) >= 5 {
				break
			}
			if t == "" {
				continue
			}
			if symbols[t] || tickerMention(t).MatchString(blob) {
				mentioned = append(mentioned, t)
			}
		}
		if len(mentioned) > 0 {
			facts = append(facts, fmt.Sprintf("Tickers referenced in recent items include: %s.", strings.Join(mentioned, ", ")))
		}
	}

	var priceCount int
	for _, p := range in.Providers {
		for _, item := range p.Items {
			if item.Kind == "price_context" {
				priceCount++
			}
		}
	}
	if priceCount > 0 {
		facts = append(facts, fmt.Sprintf("Recent price context is available for %d held tickers.", priceCount))
		added := 0
		for _, p := range in.Providers {
			for _, item := range p.Items {
				if item.Kind == "price_context" && item.Summary != "" && added < 3 {
					facts = append(facts, item.Summary)
					added++
				}
			}
		}
	}

	if len(facts) == 0 {
		return types.SignalBundle{}, false
	}

	citations := citation.Dedupe(citation.Assemble(sources), in.CitationCap)
	return types.SignalBundle{Kind: types.BundleMarketTrend, Facts: facts, Citations: citations}, true
}

// inactiveActivation speaks to users who have gone quiet: where the
// account stands and what is (or is not) being tracked.
func inactiveActivation(in Input) (types.SignalBundle, bool) {
	c := in.Context
	facts := []string{"The account has had no logins in over six months."}

	if !c.HasPositions {
		facts = append(facts, "There are no tracked positions in the account.")
	} else {
		facts = append(facts, fmt.Sprintf("The account tracks %d positions worth approximately %.0f.", c.HoldingsCount, c.HoldingsTotalValue))
	}
	if c.GoalProgressPct != nil {
		facts = append(facts, fmt.Sprintf("Retirement goal progress stands at %.0f%% since the last visit.", *c.GoalProgressPct))
	}
	if c.RetirementGoalYear > 0 {
		facts = append(facts, fmt.Sprintf("The retirement goal year on file is %d.", c.RetirementGoalYear))
	}

	return types.SignalBundle{Kind: types.BundleInactiveActivation, Facts: facts}, true
}

// advancedPositions gives quantitative position framing for experienced
// users.
func advancedPositions(in Input) (types.SignalBundle, bool) {
	c := in.Context
	var facts []string

	if c.HoldingsCount > 0 {
		facts = append(facts, fmt.Sprintf("The portfolio tracks %d positions with a combined value of %.0f.", c.HoldingsCount, c.HoldingsTotalValue))
	}
	if len(c.TopHoldings) > 0 && c.HoldingsTotalValue > 0 {
		top := c.TopHoldings[0]
		pct := top.Value / c.HoldingsTotalValue * 100
		facts = append(facts, fmt.Sprintf("%s is the largest position at %.1f%% of tracked value.", holdingLabel(top), pct))
	}
	if c.Dividends.HasDividends {
		facts = append(facts, fmt.Sprintf("Market-value-weighted dividend yield is %.2f%%.", c.Dividends.WeightedYieldPct))
	}
	if in.FocusTicker != "" && holdsTicker(c, in.FocusTicker) {
		facts = append(facts, fmt.Sprintf("%s is among the tracked positions.", in.FocusTicker))
	}

	if len(facts) == 0 {
		return types.SignalBundle{}, false
	}
	return types.SignalBundle{Kind: types.BundleAdvancedPositions, Facts: facts}, true
}

// everydayPositions gives educational position framing for everyday users.
func everydayPositions(in Input) (types.SignalBundle, bool) {
	c := in.Context
	var facts []string

	if c.HoldingsCount > 0 {
		facts = append(facts, fmt.Sprintf("The account currently tracks %d positions.", c.HoldingsCount))
	}
	if len(c.TopHoldings) > 0 && c.HoldingsTotalValue > 0 {
		top := c.TopHoldings[0]
		pct := top.Value / c.HoldingsTotalValue * 100
		facts = append(facts, fmt.Sprintf("The largest position, %s, makes up about %.0f%% of tracked value.", holdingLabel(top), pct))
	}
	if c.Dividends.HasDividends {
		facts = append(facts, "Some tracked holdings pay dividends.")
	}
	if in.FocusTicker != "" && holdsTicker(c, in.FocusTicker) {
		facts = append(facts, fmt.Sprintf("%s is one of the tracked positions.", in.FocusTicker))
	}

	if len(facts) == 0 {
		return types.SignalBundle{}, false
	}
	return types.SignalBundle{Kind: types.BundleEverydayPositions, Facts: facts}, true
}

// positionsTicker collects provider items about the focus ticker, matching
// by symbol or text mention.
func positionsTicker(in Input) (types.SignalBundle, bool) {
	ticker := in.FocusTicker
	if ticker == "" {
		return types.SignalBundle{}, false
	}
	lower := strings.ToLower(ticker)

	var facts []string
	var sources []types.SourceRecord
	for _, p := range in.Providers {
		matched := false
		for _, item := range p.Items {
			if item.Symbol != ticker &&
				!strings.Contains(strings.ToLower(item.Title+" "+item.Summary), lower) {
				continue
			}
			matched = true
			if item.Summary != "" {
				facts = append(facts, item.Summary)
			} else if item.Title != "" {
				facts = append(facts, item.Title)
			}
		}
		if matched {
			sources = append(sources, p.Citations...)
		}
	}

	if len(facts) == 0 {
		return types.SignalBundle{}, false
	}

	citations := citation.Dedupe(citation.Assemble(sources), in.CitationCap)
	return types.SignalBundle{Kind: types.BundlePositionsTicker, Facts: facts, Citations: citations}, true
}

// performance builders frame portfolio standing for the performance tab,
// with depth varying by audience.

func advancedPerformance(in Input) (types.SignalBundle, bool) {
	facts, ok := performanceFacts(in.Context, true)
	if !ok {
		return types.SignalBundle{}, false
	}
	return types.SignalBundle{Kind: types.BundleAdvancedPerformance, Facts: facts}, true
}

func everydayPerformance(in Input) (types.SignalBundle, bool) {
	facts, ok := performanceFacts(in.Context, false)
	if !ok {
		return types.SignalBundle{}, false
	}
	return types.SignalBundle{Kind: types.BundleEverydayPerformance, Facts: facts}, true
}

func genericPerformance(in Input) (types.SignalBundle, bool) {
	facts, ok := performanceFacts(in.Context, false)
	if !ok {
		return types.SignalBundle{}, false
	}
	return types.SignalBundle{Kind: types.BundlePerformance, Facts: facts}, true
}

func performanceFacts(c types.NormalizedContext, quantitative bool) ([]string, bool) {
	var facts []string

	if c.HoldingsTotalValue > 0 {
		facts = append(facts, fmt.Sprintf("Tracked holdings are currently worth approximately %.0f.", c.HoldingsTotalValue))
	}
	if len(c.TopHoldings) > 0 && c.HoldingsTotalValue > 0 {
		top := c.TopHoldings[0]
		pct := top.Value / c.HoldingsTotalValue * 100
		if quantitative {
			facts = append(facts, fmt.Sprintf("%s accounts for %.1f%% of tracked value.", holdingLabel(top), pct))
		} else {
			facts = append(facts, fmt.Sprintf("The largest holding makes up about %.0f%% of tracked value.", pct))
		}
	}
	if c.Dividends.HasDividends {
		if quantitative {
			facts = append(facts, fmt.Sprintf("Weighted dividend yield is %.2f%% across tracked holdings.", c.Dividends.WeightedYieldPct))
		} else {
			facts = append(facts, "Part of the portfolio's return comes from dividend income.")
		}
	}
	if c.GoalProgressPct != nil {
		facts = append(facts, fmt.Sprintf("Retirement goal progress is %.0f%%.", *c.GoalProgressPct))
	}

	return facts, len(facts) > 0
}

func holdingLabel(h types.TopHolding) string {
	if h.Ticker != "" {
		return h.Ticker
	}
	return h.Name
}

func holdsTicker(c types.NormalizedContext, ticker string) bool {
	for _, t := range c.Tickers {
		if t == ticker {
			return true
		}
	}
	return false
}
