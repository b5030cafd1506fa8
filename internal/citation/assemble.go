// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation converts heterogeneous source records into a uniform
// citation representation, deduplicates them, attaches claim identifiers,
// and enforces that every claim requiring evidence has at least one
// citation before a response is released.
package citation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pdiddy/concierge-engine/pkg/types"
)

// Assemble converts raw source records into citations for the insights
// path. Records without a URL are dropped: insight citations must point at
// something public. Order is preserved (providers already sort by recency).
func Assemble(sources []types.SourceRecord) []types.Citation {
	out := make([]types.Citation, 0, len(sources))
	for _, s := range sources {
		if s.URL == "" {
			continue
		}
		out = append(out, fromRecord(s, s.URL))
	}
	return out
}

// AssembleWithPseudoURLs converts raw source records into citations for the
// QA path. Records without a URL (analyst commentary carries no public
// link) get a synthesized pseudo-URL encoding provider and entity, so the
// provenance survives into the answer.
func AssembleWithPseudoURLs(sources []types.SourceRecord) []types.Citation {
	out := make([]types.Citation, 0, len(sources))
	for _, s := range sources {
		url := s.URL
		if url == "" {
			url = PseudoURL(s.Provider, s.Entity)
		}
		out = append(out, fromRecord(s, url))
	}
	return out
}

// PseudoURL encodes a linkless source as provider://entity.
func PseudoURL(provider, entity string) string {
	if entity == "" {
		entity = "snapshot"
	}
	return fmt.Sprintf("%s://%s", provider, entity)
}

// Dedupe removes citations sharing (provider, title, URL), first occurrence
// winning, and caps the result. A cap of zero or less means no cap.
func Dedupe(citations []types.Citation, cap int) []types.Citation {
	type key struct{ provider, title, url string }
	seen := make(map[key]bool, len(citations))
	var out []types.Citation
	for _, c := range citations {
		k := key{c.Provider, c.Title, c.URL}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
		if cap > 0 && len(out) >= cap {
			break
		}
	}
	return out
}

func fromRecord(s types.SourceRecord, url string) types.Citation {
	return types.Citation{
		CitationID:  uuid.NewString(),
		Provider:    s.Provider,
		Title:       s.Title,
		URL:         url,
		PublishedAt: s.PublishedAt,
	}
}
