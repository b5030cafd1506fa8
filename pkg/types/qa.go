// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the follow-up conversation.
type Message struct {
	Role      Role      `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// ClaimType classifies an atomic statement in an answer.
type ClaimType string

const (
	ClaimMarketFact    ClaimType = "market_fact"
	ClaimNewsFact      ClaimType = "news_fact"
	ClaimPortfolioFact ClaimType = "portfolio_fact"
	ClaimDefinition    ClaimType = "definition"
	ClaimExplanation   ClaimType = "explanation"
)

// Claim is an atomic statement in a QA answer. A claim flagged as requiring
// citation must be satisfiable by at least one pooled citation or the whole
// answer is rejected.
type Claim struct {
	ClaimID          string    `json:"claim_id" yaml:"claim_id"`
	Text             string    `json:"text" yaml:"text"`
	Type             ClaimType `json:"type" yaml:"type"`
	RequiresCitation bool      `json:"requires_citation" yaml:"requires_citation"`
}

// Confidence labels how sure the model is about a routing decision or answer.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Answer is the final QA output: text, caveats, confidence, and the pooled
// citation set.
type Answer struct {
	AnswerText              string     `json:"answer_text" yaml:"answer_text"`
	DirectPortfolioRelation string     `json:"direct_portfolio_relevance,omitempty" yaml:"direct_portfolio_relevance,omitempty"`
	Risks                   []string   `json:"risks_and_considerations" yaml:"risks_and_considerations"`
	Citations               []Citation `json:"citations" yaml:"citations"`
	Confidence              Confidence `json:"confidence" yaml:"confidence"`
	Disclaimer              string     `json:"disclaimer,omitempty" yaml:"disclaimer,omitempty"`
}
