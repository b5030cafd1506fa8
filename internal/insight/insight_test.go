// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package insight

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/concierge-engine/internal/llm"
	"github.com/pdiddy/concierge-engine/internal/provider"
	"github.com/pdiddy/concierge-engine/pkg/types"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// stageBackend dispatches on prompt content so tests can script each model
// stage independently of call interleaving.
type stageBackend struct {
	themes string

	realizeOut  []string
	realizeErrs []error
	judgeOut    []string
	judgeErrs   []error

	realizeCalls int
	judgeCalls   int
}

const passVerdict = `{"verdict": "PASS", "reason": ""}`

func realizedJSON(headline string) string {
	return `{"headline": "` + headline + `",
		"explanation": "An educational look at recent portfolio context.",
		"personal_relevance": "This relates to holdings in the account."}`
}

func (s *stageBackend) Complete(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "insight THEMES"):
		if s.themes == "" {
			return `{"themes": ["dividend income", "index funds"]}`, nil
		}
		return s.themes, nil

	case strings.Contains(prompt, "educational investment insights"):
		i := s.realizeCalls
		s.realizeCalls++
		if i < len(s.realizeErrs) && s.realizeErrs[i] != nil {
			return "", s.realizeErrs[i]
		}
		if i < len(s.realizeOut) {
			return s.realizeOut[i], nil
		}
		return realizedJSON("Insight headline"), nil

	case strings.Contains(prompt, "compliance reviewer"):
		i := s.judgeCalls
		s.judgeCalls++
		if i < len(s.judgeErrs) && s.judgeErrs[i] != nil {
			return "", s.judgeErrs[i]
		}
		if i < len(s.judgeOut) {
			return s.judgeOut[i], nil
		}
		return passVerdict, nil
	}
	return "", errors.New("unexpected prompt")
}

type fakeStore struct {
	saved     []types.InsightSession
	recent    []string
	recentErr error
	saveErr   error
}

func (f *fakeStore) Save(_ context.Context, s types.InsightSession) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeStore) RecentHeadlines(_ context.Context, _ string, _ time.Time) ([]string, error) {
	return f.recent, f.recentErr
}

// newsStub serves a canned news response through the provider registry.
type newsStub struct {
	resp types.ProviderResponse
}

func (n *newsStub) Name() string { return "news" }

func (n *newsStub) Healthcheck() types.ProviderStatus {
	return types.ProviderStatus{OK: true, Configured: true}
}

func (n *newsStub) Fetch(_ context.Context, _ types.ProviderRequest) (types.ProviderResponse, error) {
	return n.resp, nil
}

func testProfile() types.Profile {
	dob := time.Date(1985, 6, 20, 0, 0, 0, 0, time.UTC)
	login := fixedNow.Add(-24 * time.Hour)
	progress := 42.0
	return types.Profile{
		Identity: types.Identity{
			CustomerID:      "cust-001",
			DateOfBirth:     &dob,
			ExperienceLevel: types.ExperienceIntermediate,
		},
		Wealth: types.WealthSummary{TotalInvestableAssets: 400_000},
		Holdings: []types.Holding{
			{Name: "Apple Inc", Ticker: "AAPL", MarketValue: 60_000},
			{Name: "Vanguard S&P 500", Ticker: "VOO", MarketValue: 100_000, DividendYieldPct: 1.5},
		},
		Goals:    []types.Goal{{GoalType: "retirement", ProgressPct: &progress}},
		Activity: types.Activity{LastLoginAt: &login},
	}
}

func newsResponse() types.ProviderResponse {
	return types.ProviderResponse{
		Provider: "news",
		Items: []types.ProviderItem{
			{Kind: "news", Title: "Dividend stocks in focus",
				Summary: "Income strategies gained attention as AAPL reported earnings."},
		},
		Citations: []types.SourceRecord{
			{Provider: "news", Title: "Dividend stocks in focus", URL: "https://example.com/div"},
		},
	}
}

func testConfig() types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()
	cfg.LLM.Model = "test-model"
	cfg.LLM.MaxRetries = 0
	cfg.Provider.Providers = []string{"news"}
	cfg.Insight.InsightCount = 3
	cfg.Insight.CitationCap = 5
	cfg.Insight.RequireCitations = true
	return cfg
}

func testPipeline(backend llm.Backend, store SessionStore, cfg types.PipelineConfig) *Pipeline {
	client := llm.NewClient(backend, cfg.LLM, zap.NewNop())
	registry := provider.NewRegistry(cfg.Provider)
	registry.Register(&newsStub{resp: newsResponse()})
	p := New(client, registry, store, cfg, zap.NewNop())
	p.now = func() time.Time { return fixedNow }
	return p
}

func TestGenerate_DashboardHappyPath(t *testing.T) {
	backend := &stageBackend{realizeOut: []string{
		realizedJSON("Your retirement goal is progressing"),
		realizedJSON("Dividend payers drew attention this week"),
	}}
	store := &fakeStore{}
	p := testPipeline(backend, store, testConfig())

	session, err := p.Generate(context.Background(), Request{
		Profile:   testProfile(),
		Placement: types.PlacementDashboard,
		Trigger:   types.TriggerAppOpen,
	})
	require.NoError(t, err)

	require.Len(t, session.Insights, 2)
	assert.Equal(t, types.TypeGoalProgress, session.Insights[0].Type)
	assert.Equal(t, types.TypeMarketTrend, session.Insights[1].Type)
	assert.Equal(t, 0, session.Insights[0].Priority)
	assert.Equal(t, 1, session.Insights[1].Priority)
	assert.Equal(t, types.ScopePortfolio, session.Insights[0].Scope)
	assert.Equal(t, types.TriggerAppOpen, session.Insights[0].Trigger)

	// The goal bundle carries no citations of its own: pooled provider
	// citations are backfilled so the session passes validation.
	require.NotEmpty(t, session.Insights[0].Citations)
	assert.LessOrEqual(t, len(session.Insights[0].Citations), backfillCitationCap)
	assert.Equal(t, "https://example.com/div", session.Insights[0].Citations[0].URL)

	assert.NotEmpty(t, session.SessionID)
	assert.Equal(t, "cust-001", session.CustomerID)
	assert.True(t, session.CreatedAt.Equal(fixedNow))
	assert.Equal(t, "test-model", session.Audit.Model)
	assert.Equal(t, []string{"news"}, session.Audit.ProvidersUsed)
	assert.True(t, strings.HasPrefix(session.Audit.TraceID, "trace_"))

	require.Len(t, store.saved, 1)
	assert.Equal(t, session.SessionID, store.saved[0].SessionID)
}

func TestGenerate_KeepsCallerSessionID(t *testing.T) {
	p := testPipeline(&stageBackend{}, nil, testConfig())

	session, err := p.Generate(context.Background(), Request{
		Profile:   testProfile(),
		Placement: types.PlacementDashboard,
		Trigger:   types.TriggerAppOpen,
		SessionID: "sess-fixed",
	})
	require.NoError(t, err)
	assert.Equal(t, "sess-fixed", session.SessionID)
}

func TestGenerate_JudgeBlockSkipsBundle(t *testing.T) {
	backend := &stageBackend{
		realizeOut: []string{
			realizedJSON("Blocked headline"),
			realizedJSON("Surviving headline"),
		},
		judgeOut: []string{
			`{"verdict": "BLOCK", "reason": "reads as advice"}`,
			passVerdict,
		},
	}
	p := testPipeline(backend, &fakeStore{}, testConfig())

	session, err := p.Generate(context.Background(), Request{
		Profile:   testProfile(),
		Placement: types.PlacementDashboard,
		Trigger:   types.TriggerAppOpen,
	})
	require.NoError(t, err)

	require.Len(t, session.Insights, 1)
	assert.Equal(t, "Surviving headline", session.Insights[0].Headline)
	assert.Equal(t, 0, session.Insights[0].Priority)
}

func TestGenerate_AllBundlesBlockedYieldsEmptySession(t *testing.T) {
	blocked := `{"verdict": "BLOCK", "reason": "reads as advice"}`
	backend := &stageBackend{judgeOut: []string{blocked, blocked}}
	store := &fakeStore{}
	p := testPipeline(backend, store, testConfig())

	session, err := p.Generate(context.Background(), Request{
		Profile:   testProfile(),
		Placement: types.PlacementDashboard,
		Trigger:   types.TriggerAppOpen,
	})
	require.NoError(t, err)

	assert.Empty(t, session.Insights)
	assert.NotEmpty(t, session.SessionID)
	require.Len(t, store.saved, 1)
}

func TestGenerate_SuppressesRequestHeadlines(t *testing.T) {
	backend := &stageBackend{realizeOut: []string{
		realizedJSON("Already shown"),
		realizedJSON("Fresh headline"),
	}}
	p := testPipeline(backend, nil, testConfig())

	session, err := p.Generate(context.Background(), Request{
		Profile:         testProfile(),
		Placement:       types.PlacementDashboard,
		Trigger:         types.TriggerAppOpen,
		RecentHeadlines: []string{"Already shown"},
	})
	require.NoError(t, err)

	require.Len(t, session.Insights, 1)
	assert.Equal(t, "Fresh headline", session.Insights[0].Headline)
	// A suppressed bundle never reaches the judge.
	assert.Equal(t, 1, backend.judgeCalls)
}

func TestGenerate_SuppressesStoredHeadlines(t *testing.T) {
	backend := &stageBackend{realizeOut: []string{
		realizedJSON("Seen last week"),
		realizedJSON("Fresh headline"),
	}}
	store := &fakeStore{recent: []string{"Seen last week"}}
	p := testPipeline(backend, store, testConfig())

	session, err := p.Generate(context.Background(), Request{
		Profile:   testProfile(),
		Placement: types.PlacementDashboard,
		Trigger:   types.TriggerAppOpen,
	})
	require.NoError(t, err)

	require.Len(t, session.Insights, 1)
	assert.Equal(t, "Fresh headline", session.Insights[0].Headline)
}

func TestGenerate_StoreHistoryFailureDegrades(t *testing.T) {
	store := &fakeStore{recentErr: errors.New("db locked")}
	p := testPipeline(&stageBackend{}, store, testConfig())

	session, err := p.Generate(context.Background(), Request{
		Profile:   testProfile(),
		Placement: types.PlacementDashboard,
		Trigger:   types.TriggerAppOpen,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Insights)
}

func TestGenerate_FirstBundleRealizeFailureIsFatal(t *testing.T) {
	backend := &stageBackend{realizeErrs: []error{errors.New("model down")}}
	p := testPipeline(backend, nil, testConfig())

	_, err := p.Generate(context.Background(), Request{
		Profile:   testProfile(),
		Placement: types.PlacementDashboard,
		Trigger:   types.TriggerAppOpen,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "goal_portfolio")
}

func TestGenerate_LaterBundleRealizeFailureSkips(t *testing.T) {
	backend := &stageBackend{
		realizeOut:  []string{realizedJSON("First survives")},
		realizeErrs: []error{nil, errors.New("model down")},
	}
	p := testPipeline(backend, nil, testConfig())

	session, err := p.Generate(context.Background(), Request{
		Profile:   testProfile(),
		Placement: types.PlacementDashboard,
		Trigger:   types.TriggerAppOpen,
	})
	require.NoError(t, err)
	require.Len(t, session.Insights, 1)
	assert.Equal(t, "First survives", session.Insights[0].Headline)
}

func TestGenerate_GuardrailViolationAborts(t *testing.T) {
	backend := &stageBackend{realizeOut: []string{
		`{"headline": "You should buy more index funds",
		  "explanation": "Buying now could help.",
		  "personal_relevance": "Act on this today."}`,
	}}
	p := testPipeline(backend, nil, testConfig())

	_, err := p.Generate(context.Background(), Request{
		Profile:   testProfile(),
		Placement: types.PlacementDashboard,
		Trigger:   types.TriggerAppOpen,
	})
	require.Error(t, err)
	var perr *types.PolicyViolationError
	assert.ErrorAs(t, err, &perr)
	// The judge never sees text the guardrail rejected.
	assert.Equal(t, 0, backend.judgeCalls)
}

func TestGenerate_JudgeFailureSkipsBundle(t *testing.T) {
	backend := &stageBackend{
		realizeOut: []string{
			realizedJSON("Lost to judge outage"),
			realizedJSON("Judged and kept"),
		},
		judgeErrs: []error{errors.New("model down")},
	}
	p := testPipeline(backend, nil, testConfig())

	session, err := p.Generate(context.Background(), Request{
		Profile:   testProfile(),
		Placement: types.PlacementDashboard,
		Trigger:   types.TriggerAppOpen,
	})
	require.NoError(t, err)
	require.Len(t, session.Insights, 1)
	assert.Equal(t, "Judged and kept", session.Insights[0].Headline)
}

func TestGenerate_InsightCountCapsRealization(t *testing.T) {
	cfg := testConfig()
	cfg.Insight.InsightCount = 1
	backend := &stageBackend{}
	p := testPipeline(backend, nil, cfg)

	session, err := p.Generate(context.Background(), Request{
		Profile:   testProfile(),
		Placement: types.PlacementDashboard,
		Trigger:   types.TriggerAppOpen,
	})
	require.NoError(t, err)

	assert.Len(t, session.Insights, 1)
	// Bundles beyond the cap are never realized.
	assert.Equal(t, 1, backend.realizeCalls)
}

func TestGenerate_RequireCitationsFailsWithoutSources(t *testing.T) {
	cfg := testConfig()
	cfg.Provider.Providers = nil // no provider data, no citations to pool
	p := testPipeline(&stageBackend{}, nil, cfg)

	_, err := p.Generate(context.Background(), Request{
		Profile:   testProfile(),
		Placement: types.PlacementDashboard,
		Trigger:   types.TriggerAppOpen,
	})
	require.Error(t, err)
	var cerr *types.CitationError
	assert.ErrorAs(t, err, &cerr)
}

func TestGenerate_NoCitationRequirementAllowsBareInsights(t *testing.T) {
	cfg := testConfig()
	cfg.Provider.Providers = nil
	cfg.Insight.RequireCitations = false
	p := testPipeline(&stageBackend{}, nil, cfg)

	session, err := p.Generate(context.Background(), Request{
		Profile:   testProfile(),
		Placement: types.PlacementDashboard,
		Trigger:   types.TriggerAppOpen,
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.Insights)
	assert.Empty(t, session.Insights[0].Citations)
}

func TestGenerate_SaveFailureIsFatal(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("disk full")}
	p := testPipeline(&stageBackend{}, store, testConfig())

	_, err := p.Generate(context.Background(), Request{
		Profile:   testProfile(),
		Placement: types.PlacementDashboard,
		Trigger:   types.TriggerAppOpen,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persisting session")
}

func TestGenerate_PositionsFocusTickerScopes(t *testing.T) {
	p := testPipeline(&stageBackend{}, nil, testConfig())

	session, err := p.Generate(context.Background(), Request{
		Profile:     testProfile(),
		Placement:   types.PlacementPositions,
		Trigger:     types.TriggerHoverTicker,
		FocusTicker: "AAPL",
	})
	require.NoError(t, err)

	require.NotEmpty(t, session.Insights)
	for _, ins := range session.Insights {
		assert.Equal(t, types.ScopeTicker, ins.Scope)
		assert.Equal(t, "AAPL", ins.Ticker)
	}
}

func TestGenerate_MissingCustomerIDIsFatal(t *testing.T) {
	p := testPipeline(&stageBackend{}, nil, testConfig())

	_, err := p.Generate(context.Background(), Request{
		Profile:   types.Profile{},
		Placement: types.PlacementDashboard,
		Trigger:   types.TriggerAppOpen,
	})
	assert.ErrorIs(t, err, types.ErrMissingIdentifier)
}

func TestGenerate_ThemeFailureDegrades(t *testing.T) {
	backend := &stageBackend{themes: "not json at all"}
	p := testPipeline(backend, nil, testConfig())

	session, err := p.Generate(context.Background(), Request{
		Profile:   testProfile(),
		Placement: types.PlacementDashboard,
		Trigger:   types.TriggerAppOpen,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Insights)
}
