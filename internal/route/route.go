// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package route classifies follow-up questions and decides which external
// data sources the answer needs.
package route

import (
	"bytes"
	"context"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/concierge-engine/internal/llm"
	"github.com/pdiddy/concierge-engine/pkg/types"
)

var routerPromptTmpl = template.Must(template.New("router").Parse(`You are a routing component for a wealth app content concierge.
Do NOT answer the question.
Return ONLY valid JSON matching the schema below.

Rules:
- Educational only. No advice.
- Use the provided context only.
- Prefer entities from the known portfolio entities list.
- If uncertain, set confidence to "low" and choose minimal retrieval.

Output JSON schema:
{
  "intents": ["portfolio_relation|asset_deep_dive|risk_explainer|definition|recap_insight|generic_scope"],
  "entities": {"tickers": [], "asset_names": [], "sectors": [], "themes": []},
  "need_news": false,
  "need_market_data": false,
  "need_internal_content": false,
  "confidence": "low|medium|high",
  "why": "one sentence"
}

Question:
{{.Question}}

Recent conversation:
{{range .Conversation}}- {{.Role}}: {{.Content}}
{{end}}
Insight headlines already shown to the user:
{{range .Headlines}}- {{.}}
{{end}}
Known portfolio entities (tickers):
{{range .Tickers}}- {{.}}
{{end}}
Return JSON only.`))

// Request carries everything the router conditions on.
type Request struct {
	Question     string
	Conversation []types.Message
	Headlines    []string
	Tickers      []string
}

// Router turns a question plus session context into a RetrievalPlan.
type Router struct {
	client *llm.Client
	cfg    types.QAConfig
	logger *zap.Logger
}

func NewRouter(client *llm.Client, cfg types.QAConfig) *Router {
	return &Router{client: client, cfg: cfg, logger: client.Logger()}
}

// Plan asks the model for a retrieval plan and sanitizes its output.
// Model failure is not fatal for routing: any error or unparseable reply
// degrades to a conservative plan with no retrieval.
func (r *Router) Plan(ctx context.Context, req Request) types.RetrievalPlan {
	req.Conversation = lastN(req.Conversation, r.cfg.ConversationWindow)

	var buf bytes.Buffer
	if err := routerPromptTmpl.Execute(&buf, req); err != nil {
		r.logger.Error("router prompt render failed", zap.Error(err))
		return r.fallbackPlan("prompt render failed")
	}

	raw, err := r.client.Complete(ctx, buf.String())
	if err != nil {
		r.logger.Warn("router model call failed", zap.Error(err))
		return r.fallbackPlan("model call failed")
	}

	var plan types.RetrievalPlan
	if err := llm.ParseObject(&plan, raw, "route", r.logger); err != nil {
		r.logger.Warn("router output unparseable", zap.Error(err))
		return r.fallbackPlan("unparseable router output")
	}

	return r.sanitize(plan)
}

// sanitize drops intents outside the closed set and fills defaults. A plan
// left with no valid intent becomes generic_scope.
func (r *Router) sanitize(plan types.RetrievalPlan) types.RetrievalPlan {
	var intents []types.Intent
	for _, in := range plan.Intents {
		if types.ValidIntent(in) {
			intents = append(intents, in)
		}
	}
	if len(intents) == 0 {
		intents = []types.Intent{types.IntentGenericScope}
	}
	plan.Intents = intents

	switch plan.Confidence {
	case types.ConfidenceLow, types.ConfidenceMedium, types.ConfidenceHigh:
	default:
		plan.Confidence = types.ConfidenceLow
	}

	if plan.MaxNewsItems <= 0 || plan.MaxNewsItems > r.cfg.MaxNewsItems {
		plan.MaxNewsItems = r.cfg.MaxNewsItems
	}
	if plan.MaxInternalItems <= 0 || plan.MaxInternalItems > r.cfg.MaxInternalItems {
		plan.MaxInternalItems = r.cfg.MaxInternalItems
	}

	return plan
}

// fallbackPlan is the minimal-retrieval plan used when routing itself
// fails. The question still gets answered from session context alone.
func (r *Router) fallbackPlan(why string) types.RetrievalPlan {
	return types.RetrievalPlan{
		Intents:          []types.Intent{types.IntentGenericScope},
		Confidence:       types.ConfidenceLow,
		Why:              why,
		MaxNewsItems:     r.cfg.MaxNewsItems,
		MaxInternalItems: r.cfg.MaxInternalItems,
	}
}

func lastN(msgs []types.Message, n int) []types.Message {
	if n <= 0 || len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
