// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"sort"

	"github.com/pdiddy/concierge-engine/pkg/types"
)

// Pool merges the citations already attached to the session's insights with
// the sources retrieved for the current question. Retrieved sources go
// through the pseudo-URL path so linkless analyst and market records keep
// their provenance. The pooled set is deduplicated, order preserved:
// insight citations first, then retrieval results in provider registration
// order.
func Pool(insightCitations []types.Citation, retrieved []types.ProviderResponse) []types.Citation {
	pooled := make([]types.Citation, 0, len(insightCitations))
	pooled = append(pooled, insightCitations...)
	for _, resp := range retrieved {
		pooled = append(pooled, AssembleWithPseudoURLs(resp.Citations)...)
	}
	return Dedupe(pooled, 0)
}

// AttachClaims tags every pooled citation with the identifiers of all
// claims that require evidence. The mapping is deliberately coarse: no
// per-claim evidence search, every evidencing citation supports every
// flagged claim.
func AttachClaims(citations []types.Citation, claims []types.Claim) []types.Citation {
	var ids []string
	for _, c := range claims {
		if c.RequiresCitation {
			ids = append(ids, c.ClaimID)
		}
	}
	if len(ids) == 0 {
		return citations
	}
	sort.Strings(ids)
	out := make([]types.Citation, len(citations))
	for i, c := range citations {
		c.ClaimIDs = mergeIDs(c.ClaimIDs, ids)
		out[i] = c
	}
	return out
}

// ValidateClaims fails when any claim requiring citation has no pooled
// citation to lean on.
func ValidateClaims(claims []types.Claim, citations []types.Citation) error {
	if len(citations) > 0 {
		return nil
	}
	for _, c := range claims {
		if c.RequiresCitation {
			return &types.CitationError{
				Reason: "claim " + c.ClaimID + " requires citation but the pooled set is empty",
			}
		}
	}
	return nil
}

func mergeIDs(existing, add []string) []string {
	seen := make(map[string]bool, len(existing)+len(add))
	var out []string
	for _, s := range append(append([]string{}, existing...), add...) {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
