// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package qa answers follow-up questions about a prior insight session:
// load the session, route the question, retrieve what the plan asks for,
// synthesize an answer, then pool and validate citations.
package qa

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/concierge-engine/internal/citation"
	"github.com/pdiddy/concierge-engine/internal/guardrail"
	"github.com/pdiddy/concierge-engine/internal/llm"
	"github.com/pdiddy/concierge-engine/internal/normalize"
	"github.com/pdiddy/concierge-engine/internal/provider"
	"github.com/pdiddy/concierge-engine/internal/route"
	"github.com/pdiddy/concierge-engine/pkg/types"
)

var synthesisPromptTmpl = template.Must(template.New("qa").Parse(`You are an educational financial content generator for a wealth app concierge.
Do NOT give investment advice, recommendations, or predictions.
Do NOT fabricate facts or sources.
You must return ONLY JSON in the required schema.

If asked for advice ("should I buy/sell/allocate"):
- explain educationally, cover the risks
- include a short disclaimer

Question:
{{.Question}}

Recent conversation:
{{range .Conversation}}- {{.Role}}: {{.Content}}
{{end}}
Portfolio context:
- tickers: {{range .Tickers}}{{.}} {{end}}
- holdings tracked: {{.HoldingsCount}}
- archetype: {{.Archetype}}

Insights already shown:
{{range .Headlines}}- {{.}}
{{end}}
Retrieved facts:
{{range .Retrieved}}- [{{.Kind}}] {{.Title}}: {{.Summary}}
{{end}}
Required output JSON schema:
{
  "answer_text": "string",
  "direct_portfolio_relevance": "string or empty",
  "risks_and_considerations": ["string"],
  "claims": [
    {"claim_id": "c1", "text": "string", "type": "market_fact|news_fact|portfolio_fact|definition|explanation", "requires_citation": true}
  ],
  "confidence": "low|medium|high",
  "disclaimer": "string or empty"
}

Hard constraints:
- Keep answer_text to at most two short paragraphs
- Do not mention provider names inside answer_text
- Do not output claims that require citations unless supported by the retrieved facts or the shown insights
Return JSON only.`))

// ProfileSource loads a current profile for a customer. The QA path reads
// the profile fresh on every question so portfolio follow-ups see current
// holdings.
type ProfileSource interface {
	Load(ctx context.Context, customerID string) (types.Profile, error)
}

// SessionLoader is the session persistence read side.
type SessionLoader interface {
	Get(ctx context.Context, sessionID string) (types.InsightSession, error)
}

// Request is one follow-up question against a prior session.
type Request struct {
	SessionID    string
	Question     string
	Conversation []types.Message
}

// Pipeline owns the collaborators of the QA path.
type Pipeline struct {
	client   *llm.Client
	router   *route.Router
	registry *provider.Registry
	guard    *guardrail.Engine
	sessions SessionLoader
	profiles ProfileSource
	cfg      types.PipelineConfig
	logger   *zap.Logger

	now func() time.Time
}

// New builds a QA pipeline.
func New(client *llm.Client, registry *provider.Registry, sessions SessionLoader, profiles ProfileSource, cfg types.PipelineConfig, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		client:   client,
		router:   route.NewRouter(client, cfg.QA),
		registry: registry,
		guard:    guardrail.New(),
		sessions: sessions,
		profiles: profiles,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// synthesisResponse is the raw shape the model returns before claims are
// filtered and citations attached.
type synthesisResponse struct {
	AnswerText              string           `json:"answer_text"`
	DirectPortfolioRelation string           `json:"direct_portfolio_relevance"`
	Risks                   []string         `json:"risks_and_considerations"`
	Claims                  []types.Claim    `json:"claims"`
	Confidence              types.Confidence `json:"confidence"`
	Disclaimer              string           `json:"disclaimer"`
}

// Answer runs the QA path for one question. Unlike routing, a synthesis
// failure is fatal: there is no safe degraded answer to give a user.
func (p *Pipeline) Answer(ctx context.Context, req Request) (types.Answer, error) {
	now := p.now().UTC()
	logger := p.logger.With(zap.String("session_id", req.SessionID))

	session, err := p.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return types.Answer{}, fmt.Errorf("loading session: %w", err)
	}

	profile, err := p.profiles.Load(ctx, session.CustomerID)
	if err != nil {
		return types.Answer{}, fmt.Errorf("loading profile for %s: %w", session.CustomerID, err)
	}
	nctx, err := normalize.Normalize(profile, now)
	if err != nil {
		return types.Answer{}, fmt.Errorf("normalizing profile: %w", err)
	}

	conversation := lastN(req.Conversation, p.cfg.QA.ConversationWindow)
	headlines := sessionHeadlines(session)

	plan := p.router.Plan(ctx, route.Request{
		Question:     req.Question,
		Conversation: conversation,
		Headlines:    headlines,
		Tickers:      nctx.Tickers,
	})
	logger.Info("question routed",
		zap.Bool("need_news", plan.NeedNews),
		zap.Bool("need_market_data", plan.NeedMarketData),
		zap.Bool("need_internal", plan.NeedInternalContent),
		zap.String("confidence", string(plan.Confidence)),
		zap.String("why", plan.Why))

	retrieved := p.retrieve(ctx, plan, nctx, req.Question, now, logger)

	answer, claims, err := p.synthesize(ctx, req.Question, conversation, nctx, headlines, retrieved)
	if err != nil {
		return types.Answer{}, err
	}

	texts := append([]string{answer.AnswerText, answer.DirectPortfolioRelation}, answer.Risks...)
	if err := p.guard.Enforce(texts); err != nil {
		return types.Answer{}, err
	}

	pooled := citation.Pool(insightCitations(session), retrieved)
	pooled = citation.AttachClaims(pooled, claims)
	if err := citation.ValidateClaims(claims, pooled); err != nil {
		return types.Answer{}, err
	}
	answer.Citations = pooled

	logger.Info("answer ready",
		zap.Int("claims", len(claims)),
		zap.Int("citations", len(pooled)))
	return answer, nil
}

// retrieve executes the retrieval plan. Provider failures degrade to fewer
// retrieved facts, never to a failed answer.
func (p *Pipeline) retrieve(ctx context.Context, plan types.RetrievalPlan, nctx types.NormalizedContext, question string, now time.Time, logger *zap.Logger) []types.ProviderResponse {
	tickers := plan.Entities.Tickers
	if len(tickers) == 0 && plan.HasIntent(types.IntentPortfolioRelation) {
		tickers = nctx.Tickers
	}

	type call struct {
		name string
		req  types.ProviderRequest
	}
	var calls []call
	if plan.NeedMarketData && len(tickers) > 0 {
		calls = append(calls, call{"market_data", types.ProviderRequest{
			CustomerID: nctx.CustomerID, AsOf: now, Tickers: tickers,
		}})
	}
	if plan.NeedNews {
		calls = append(calls, call{"news", types.ProviderRequest{
			CustomerID: nctx.CustomerID, AsOf: now, Tickers: tickers,
			Query: question, Limit: plan.MaxNewsItems,
		}})
	}
	if plan.NeedInternalContent {
		calls = append(calls, call{"internal_content", types.ProviderRequest{
			CustomerID: nctx.CustomerID, AsOf: now,
			Query: question, Limit: plan.MaxInternalItems,
		}})
	}

	var responses []types.ProviderResponse
	for _, c := range calls {
		providers := p.registry.Resolve([]string{c.name})
		results := provider.FetchAll(ctx, providers, c.req, p.cfg.Provider.Timeout, logger)
		responses = append(responses, provider.Responses(results)...)
	}
	return responses
}

func (p *Pipeline) synthesize(ctx context.Context, question string, conversation []types.Message, nctx types.NormalizedContext, headlines []string, retrieved []types.ProviderResponse) (types.Answer, []types.Claim, error) {
	var items []types.ProviderItem
	for _, r := range retrieved {
		items = append(items, r.Items...)
	}

	var buf bytes.Buffer
	err := synthesisPromptTmpl.Execute(&buf, struct {
		Question      string
		Conversation  []types.Message
		Tickers       []string
		HoldingsCount int
		Archetype     types.Archetype
		Headlines     []string
		Retrieved     []types.ProviderItem
	}{question, conversation, nctx.Tickers, nctx.HoldingsCount, nctx.Archetype, headlines, items})
	if err != nil {
		return types.Answer{}, nil, fmt.Errorf("rendering synthesis prompt: %w", err)
	}

	raw, err := p.client.Complete(ctx, buf.String())
	if err != nil {
		return types.Answer{}, nil, fmt.Errorf("synthesis call: %w", err)
	}

	var resp synthesisResponse
	if err := llm.ParseObject(&resp, raw, "qa", p.logger); err != nil {
		return types.Answer{}, nil, err
	}
	if strings.TrimSpace(resp.AnswerText) == "" {
		return types.Answer{}, nil, &types.ModelOutputError{
			Stage: "qa",
			Raw:   llm.Sample(raw, 200),
			Err:   fmt.Errorf("synthesized answer has no text"),
		}
	}

	claims := sanitizeClaims(resp.Claims)

	switch resp.Confidence {
	case types.ConfidenceLow, types.ConfidenceMedium, types.ConfidenceHigh:
	default:
		resp.Confidence = types.ConfidenceMedium
	}

	answer := types.Answer{
		AnswerText:              resp.AnswerText,
		DirectPortfolioRelation: resp.DirectPortfolioRelation,
		Risks:                   resp.Risks,
		Confidence:              resp.Confidence,
		Disclaimer:              resp.Disclaimer,
	}
	return answer, claims, nil
}

// sanitizeClaims drops claims with no ID or text and normalizes unknown
// claim types to explanation.
func sanitizeClaims(claims []types.Claim) []types.Claim {
	var out []types.Claim
	for _, c := range claims {
		if c.ClaimID == "" || strings.TrimSpace(c.Text) == "" {
			continue
		}
		switch c.Type {
		case types.ClaimMarketFact, types.ClaimNewsFact, types.ClaimPortfolioFact,
			types.ClaimDefinition, types.ClaimExplanation:
		default:
			c.Type = types.ClaimExplanation
		}
		out = append(out, c)
	}
	return out
}

func sessionHeadlines(session types.InsightSession) []string {
	var out []string
	for _, ins := range session.Insights {
		if ins.Headline != "" {
			out = append(out, ins.Headline)
		}
	}
	return out
}

func insightCitations(session types.InsightSession) []types.Citation {
	var out []types.Citation
	for _, ins := range session.Insights {
		out = append(out, ins.Citations...)
	}
	return out
}

func lastN(msgs []types.Message, n int) []types.Message {
	if n <= 0 || len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
