// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"fmt"

	"github.com/pdiddy/concierge-engine/pkg/types"
)

// ValidateSession enforces the release invariant on a finished insight
// session: every insight carries at least one citation and every citation
// has a non-empty URL. A violation blocks the whole session from being
// returned.
func ValidateSession(session types.InsightSession) error {
	for _, ins := range session.Insights {
		if len(ins.Citations) == 0 {
			return &types.CitationError{
				Reason: fmt.Sprintf("insight %s has no citations", ins.ID),
			}
		}
		for _, c := range ins.Citations {
			if c.URL == "" {
				return &types.CitationError{
					Reason: fmt.Sprintf("insight %s has citation %s with empty URL", ins.ID, c.CitationID),
				}
			}
		}
	}
	return nil
}
