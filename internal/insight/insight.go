// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package insight runs the full insights pipeline: normalize the profile,
// hypothesize themes, fan out to providers, plan signal bundles, then
// realize and judge each bundle until the insight count is met.
package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/concierge-engine/internal/citation"
	"github.com/pdiddy/concierge-engine/internal/guardrail"
	"github.com/pdiddy/concierge-engine/internal/llm"
	"github.com/pdiddy/concierge-engine/internal/normalize"
	"github.com/pdiddy/concierge-engine/internal/plan"
	"github.com/pdiddy/concierge-engine/internal/provider"
	"github.com/pdiddy/concierge-engine/pkg/types"
)

// recentHeadlineWindow bounds the lookback when suppressing headlines the
// user was already shown.
const recentHeadlineWindow = 7 * 24 * time.Hour

// backfillCitationCap limits how many pooled citations are attached to an
// insight whose own bundle carried none.
const backfillCitationCap = 2

// SessionStore is the persistence the pipeline needs. A nil store disables
// persistence and history-based headline suppression.
type SessionStore interface {
	Save(ctx context.Context, session types.InsightSession) error
	RecentHeadlines(ctx context.Context, customerID string, since time.Time) ([]string, error)
}

// Request is one insight generation call.
type Request struct {
	Profile         types.Profile
	Placement       types.Placement
	Trigger         types.Trigger
	FocusTicker     string
	RecentHeadlines []string

	// SessionID is assigned if empty.
	SessionID string
}

// Pipeline owns the collaborators of the insights path.
type Pipeline struct {
	client   *llm.Client
	registry *provider.Registry
	guard    *guardrail.Engine
	store    SessionStore
	cfg      types.PipelineConfig
	logger   *zap.Logger

	now func() time.Time
}

// New builds an insights pipeline. store may be nil.
func New(client *llm.Client, registry *provider.Registry, store SessionStore, cfg types.PipelineConfig, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		client:   client,
		registry: registry,
		guard:    guardrail.New(),
		store:    store,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Generate runs the pipeline for one request. All insights blocked is a
// valid outcome: the returned session simply carries none. A guardrail
// violation or a realize failure on the first bundle fails the whole call.
func (p *Pipeline) Generate(ctx context.Context, req Request) (types.InsightSession, error) {
	now := p.now().UTC()
	traceID := "trace_" + uuid.NewString()
	logger := p.logger.With(zap.String("trace_id", traceID))

	nctx, err := normalize.Normalize(req.Profile, now)
	if err != nil {
		return types.InsightSession{}, fmt.Errorf("normalizing profile: %w", err)
	}
	logger.Info("profile normalized",
		zap.String("customer_id", nctx.CustomerID),
		zap.String("tier", string(nctx.Tier)),
		zap.String("archetype", string(nctx.Archetype)),
		zap.Strings("tickers", nctx.Tickers),
		zap.Bool("inactive", nctx.InactivityFlag))

	query := p.themeQuery(ctx, nctx, logger)

	providers := p.registry.Resolve(p.cfg.Provider.Providers)
	results := provider.FetchAll(ctx, providers, types.ProviderRequest{
		CustomerID: nctx.CustomerID,
		AsOf:       now,
		Tickers:    nctx.Tickers,
		Query:      query,
	}, p.cfg.Provider.Timeout, logger)
	responses := provider.Responses(results)
	logger.Info("providers done",
		zap.Int("requested", len(providers)),
		zap.Int("ok", len(responses)))

	bundles := plan.Bundles(req.Placement, plan.Input{
		Context:     nctx,
		Providers:   responses,
		FocusTicker: req.FocusTicker,
		CitationCap: p.cfg.Insight.CitationCap,
	})
	logger.Info("bundles planned", zap.Int("count", len(bundles)))

	recent := p.recentHeadlines(ctx, req, nctx.CustomerID, now, logger)
	pooled := citation.Dedupe(citation.Assemble(allSources(responses)), p.cfg.Insight.CitationCap)

	insights, err := p.realizeBundles(ctx, bundles, req, nctx, recent, pooled, logger)
	if err != nil {
		return types.InsightSession{}, err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	session := types.InsightSession{
		SessionID:  sessionID,
		CustomerID: nctx.CustomerID,
		CreatedAt:  now,
		Insights:   insights,
		Audit: types.Audit{
			Model:         p.cfg.LLM.Model,
			ProvidersUsed: okProviders(results),
			TraceID:       traceID,
		},
	}

	if p.cfg.Insight.RequireCitations {
		if err := citation.ValidateSession(session); err != nil {
			return types.InsightSession{}, err
		}
	}

	if p.store != nil {
		if err := p.store.Save(ctx, session); err != nil {
			return types.InsightSession{}, fmt.Errorf("persisting session: %w", err)
		}
	}

	logger.Info("session ready",
		zap.String("session_id", session.SessionID),
		zap.Int("insights", len(insights)))
	return session, nil
}

// realizeBundles runs the generate-judge loop. Bundles beyond the insight
// count are not realized at all; a blocked or skipped bundle frees its slot
// for the next one.
func (p *Pipeline) realizeBundles(ctx context.Context, bundles []types.SignalBundle, req Request, nctx types.NormalizedContext, recent []string, pooled []types.Citation, logger *zap.Logger) ([]types.Insight, error) {
	var insights []types.Insight

	for i, bundle := range bundles {
		if len(insights) >= p.cfg.Insight.InsightCount {
			break
		}
		logger.Info("realizing bundle",
			zap.String("kind", string(bundle.Kind)),
			zap.Int("facts", len(bundle.Facts)))

		realized, err := p.client.Realize(ctx, llm.RealizePayload{
			Facts:    bundle.Facts,
			Audience: audienceFor(nctx.Archetype),
			Style:    "educational exploration",
		})
		if err != nil {
			// The first bundle is the request's primary theme; losing
			// it fails the call. Later bundles just drop out.
			if i == 0 {
				return nil, fmt.Errorf("realizing %s bundle: %w", bundle.Kind, err)
			}
			logger.Warn("bundle skipped, realize failed",
				zap.String("kind", string(bundle.Kind)),
				zap.Error(err))
			continue
		}

		if containsHeadline(recent, realized.Headline) {
			logger.Info("bundle skipped, repeated headline",
				zap.String("kind", string(bundle.Kind)))
			continue
		}

		if err := p.guard.Enforce(realized.Texts()); err != nil {
			return nil, err
		}

		verdict, err := p.client.Judge(ctx, strings.Join(realized.Texts(), "\n"))
		if err != nil {
			logger.Warn("bundle skipped, judge failed",
				zap.String("kind", string(bundle.Kind)),
				zap.Error(err))
			continue
		}
		if verdict.Verdict != types.VerdictPass {
			logger.Warn("insight blocked by judge",
				zap.String("kind", string(bundle.Kind)),
				zap.String("reason", verdict.Reason))
			continue
		}

		scope := types.ScopePortfolio
		ticker := ""
		if req.Placement == types.PlacementPositions && req.FocusTicker != "" {
			scope = types.ScopeTicker
			ticker = req.FocusTicker
		}

		citations := bundle.Citations
		if len(citations) == 0 && p.cfg.Insight.RequireCitations {
			citations = backfill(pooled)
		}

		insights = append(insights, types.Insight{
			ID:                uuid.NewString(),
			Type:              insightTypeFor(bundle.Kind),
			Headline:          realized.Headline,
			Explanation:       realized.Explanation,
			PersonalRelevance: realized.PersonalRelevance,
			Placement:         req.Placement,
			Trigger:           req.Trigger,
			Scope:             scope,
			Ticker:            ticker,
			Priority:          len(insights),
			Citations:         citations,
		})
	}

	return insights, nil
}

// themeQuery asks the model for theme hypotheses and joins the first three
// into a provider search query. Theme failure degrades to a default query.
func (p *Pipeline) themeQuery(ctx context.Context, nctx types.NormalizedContext, logger *zap.Logger) string {
	var tops []string
	for _, h := range nctx.TopHoldings {
		tops = append(tops, h.Name)
	}

	themes, err := p.client.Themes(ctx, llm.ThemesPayload{
		Tickers:     nctx.Tickers,
		TopHoldings: tops,
		Inactive:    nctx.InactivityFlag,
	})
	if err != nil || len(themes) == 0 {
		if err != nil {
			logger.Warn("theme hypothesis failed, using default query", zap.Error(err))
		}
		return "portfolio update"
	}
	if len(themes) > 3 {
		themes = themes[:3]
	}
	return strings.Join(themes, " ")
}

// recentHeadlines merges caller-supplied headlines with persisted ones
// from the lookback window. Store failure only loses the history half.
func (p *Pipeline) recentHeadlines(ctx context.Context, req Request, customerID string, now time.Time, logger *zap.Logger) []string {
	recent := append([]string(nil), req.RecentHeadlines...)
	if p.store == nil {
		return recent
	}
	stored, err := p.store.RecentHeadlines(ctx, customerID, now.Add(-recentHeadlineWindow))
	if err != nil {
		logger.Warn("loading recent headlines failed", zap.Error(err))
		return recent
	}
	return append(recent, stored...)
}

var kindToType = map[types.BundleKind]types.InsightType{
	types.BundleGoalPortfolio:       types.TypeGoalProgress,
	types.BundleMarketTrend:         types.TypeMarketTrend,
	types.BundlePositionsTicker:     types.TypeMarketTrend,
	types.BundlePerformance:         types.TypePortfolioComposition,
	types.BundleInactiveActivation:  types.TypePortfolioComposition,
	types.BundleEverydayPositions:   types.TypePortfolioComposition,
	types.BundleEverydayPerformance: types.TypePortfolioComposition,
	types.BundleAdvancedPositions:   types.TypePortfolioComposition,
	types.BundleAdvancedPerformance: types.TypePortfolioComposition,
}

func insightTypeFor(kind types.BundleKind) types.InsightType {
	if t, ok := kindToType[kind]; ok {
		return t
	}
	return types.TypeMarketTrend
}

func audienceFor(a types.Archetype) string {
	switch a {
	case types.ArchetypeAdvanced:
		return "experienced long-term investor"
	case types.ArchetypeInactive:
		return "returning long-term investor"
	default:
		return "long-term investor"
	}
}

func containsHeadline(recent []string, headline string) bool {
	for _, h := range recent {
		if h == headline {
			return true
		}
	}
	return false
}

func allSources(responses []types.ProviderResponse) []types.SourceRecord {
	var out []types.SourceRecord
	for _, r := range responses {
		out = append(out, r.Citations...)
	}
	return out
}

func okProviders(results []provider.FetchResult) []string {
	var names []string
	for _, r := range results {
		if r.OK() {
			names = append(names, r.Provider)
		}
	}
	return names
}

func backfill(pooled []types.Citation) []types.Citation {
	if len(pooled) > backfillCitationCap {
		pooled = pooled[:backfillCitationCap]
	}
	return append([]types.Citation(nil), pooled...)
}
