// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"text/template"
)

// realizePromptTmpl turns a bundle's facts into the headline, explanation,
// and personal-relevance triple. It receives only the facts and static
// audience/style parameters, never the raw profile, to force grounding.
var realizePromptTmpl = template.Must(template.New("realize").Parse(`You are writing educational investment insights.

Rules:
- Use ONLY the provided facts.
- Treat analyst ratings and price targets as market context, not recommendations.
- Phrase any potentially advisory idea as educational exploration (no "you should", no "buy/sell", no "shift X%").
- Do NOT add new data or claims.

Return ONLY valid JSON (no markdown fences):
{
  "headline": "...",
  "explanation": "...",
  "personal_relevance": "..."
}

Audience: {{.Audience}}
Style: {{.Style}}

Facts:
{{range .Facts}}- {{.}}
{{end}}
{{- if .AllowedClaims}}
Allowed claims:
{{range .AllowedClaims}}- {{.}}
{{end}}
{{- end}}`))

// judgePromptTmpl asks the model to classify realized text as compliant or
// not, independently of the local guardrail.
var judgePromptTmpl = template.Must(template.New("judge").Parse(`You are a compliance reviewer for a financial education product.

Rules:
- Educational explanations are allowed.
- Any advice or call to action is NOT allowed.
- Even soft suggestions are NOT allowed (e.g., "consider shifting", "you may want to").
- Analyst ratings and price targets are allowed only as market context, not recommendations.

Return ONLY valid JSON (no markdown fences):
{ "verdict": "PASS" | "BLOCK", "reason": "..." }

Text:
<<<{{.Text}}>>>`))

// themesPromptTmpl proposes insight themes from a redacted context summary.
// Themes seed the news query; they carry no factual claims.
var themesPromptTmpl = template.Must(template.New("themes").Parse(`You propose insight THEMES only for a wealth app content concierge.
Do not provide advice, recommendations, or predictions.

Given this user context, propose 3-5 insight themes (no factual claims).
- Portfolio tickers: {{.Tickers}}
- Top holdings: {{.TopHoldings}}
- Goal types: {{.GoalTypes}}
- Inactivity flag: {{.Inactive}}

Return ONLY valid JSON (no markdown fences):
{
  "themes": ["..."]
}`))

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
