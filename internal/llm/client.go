// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/concierge-engine/pkg/types"
)

// Client wraps a Backend with the typed calls the pipeline makes. All
// state is per-call; a Client is safe for concurrent requests.
type Client struct {
	backend Backend
	retries int
	logger  *zap.Logger
}

// NewClient builds a Client around the given backend.
func NewClient(backend Backend, cfg types.LLMConfig, logger *zap.Logger) *Client {
	return &Client{
		backend: backend,
		retries: cfg.MaxRetries,
		logger:  logger,
	}
}

// Complete exposes the raw backend call with retry, for stages that own
// their prompts (router, QA synthesis).
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return completeWithRetry(ctx, c.backend, prompt, c.retries)
}

// Logger returns the client's logger for shared parse diagnostics.
func (c *Client) Logger() *zap.Logger { return c.logger }

// RealizePayload is the structured input to the realize call. Facts come
// from exactly one signal bundle.
type RealizePayload struct {
	Facts         []string
	AllowedClaims []string
	Audience      string
	Style         string
}

// Realize turns a bundle's facts into the realized triple. Unparseable
// output is an error; the caller decides whether it fells the bundle or
// the pipeline.
func (c *Client) Realize(ctx context.Context, payload RealizePayload) (types.RealizedContent, error) {
	prompt, err := render(realizePromptTmpl, payload)
	if err != nil {
		return types.RealizedContent{}, fmt.Errorf("rendering realize prompt: %w", err)
	}

	raw, err := c.Complete(ctx, prompt)
	if err != nil {
		return types.RealizedContent{}, fmt.Errorf("realize call: %w", err)
	}

	var content types.RealizedContent
	if err := ParseObject(&content, raw, "realize", c.logger); err != nil {
		return types.RealizedContent{}, err
	}
	if content.Headline == "" || content.Explanation == "" || content.PersonalRelevance == "" {
		return types.RealizedContent{}, &types.ModelOutputError{
			Stage: "realize",
			Raw:   Sample(raw, 200),
			Err:   fmt.Errorf("realized triple has empty fields"),
		}
	}
	return content, nil
}

// Judge classifies realized text as compliant or not. Malformed judge
// output never propagates raw text forward: empty output, non-JSON output,
// and invalid verdict shapes all degrade to BLOCK with a reason.
func (c *Client) Judge(ctx context.Context, text string) (types.JudgeVerdict, error) {
	prompt, err := render(judgePromptTmpl, struct{ Text string }{Text: text})
	if err != nil {
		return types.JudgeVerdict{}, fmt.Errorf("rendering judge prompt: %w", err)
	}

	raw, err := c.Complete(ctx, prompt)
	if err != nil {
		return types.JudgeVerdict{}, fmt.Errorf("judge call: %w", err)
	}

	if strings.TrimSpace(raw) == "" {
		return types.JudgeVerdict{Verdict: types.VerdictBlock, Reason: "empty judge output"}, nil
	}

	var verdict types.JudgeVerdict
	if err := ParseObject(&verdict, raw, "judge", c.logger); err != nil {
		return types.JudgeVerdict{
			Verdict: types.VerdictBlock,
			Reason:  "non-JSON judge output: " + Sample(raw, 120),
		}, nil
	}

	if verdict.Verdict != types.VerdictPass && verdict.Verdict != types.VerdictBlock {
		return types.JudgeVerdict{Verdict: types.VerdictBlock, Reason: "invalid verdict shape"}, nil
	}
	return verdict, nil
}

// ThemesPayload is the redacted context summary handed to the theme
// hypothesis call.
type ThemesPayload struct {
	Tickers     []string
	TopHoldings []string
	GoalTypes   []string
	Inactive    bool
}

type themesResponse struct {
	Themes []string `json:"themes"`
}

// Themes proposes 3-5 insight themes from a context summary. Callers treat
// any error as a degradation, never an abort.
func (c *Client) Themes(ctx context.Context, payload ThemesPayload) ([]string, error) {
	prompt, err := render(themesPromptTmpl, payload)
	if err != nil {
		return nil, fmt.Errorf("rendering themes prompt: %w", err)
	}

	raw, err := c.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("themes call: %w", err)
	}

	var resp themesResponse
	if err := ParseObject(&resp, raw, "themes", c.logger); err != nil {
		return nil, err
	}

	var themes []string
	for _, t := range resp.Themes {
		if s := strings.TrimSpace(t); s != "" {
			themes = append(themes, s)
		}
	}
	return themes, nil
}
