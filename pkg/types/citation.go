// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Citation is a structured reference backing an externally-sourced claim.
// A finalized citation always carries a non-empty URL.
type Citation struct {
	CitationID  string     `json:"citation_id" yaml:"citation_id"`
	Provider    string     `json:"provider" yaml:"provider"`
	Title       string     `json:"title" yaml:"title"`
	URL         string     `json:"url" yaml:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty"`

	// ClaimIDs lists the answer claims this citation supports. Populated on
	// the QA path only.
	ClaimIDs []string `json:"claim_ids,omitempty" yaml:"claim_ids,omitempty"`
}
