// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingIdentifier reports a profile snapshot without a customer
// identifier. It is the only normalizer input defect treated as fatal;
// everything else degrades to zero values.
var ErrMissingIdentifier = errors.New("profile is missing a customer identifier")

// ProviderError wraps a failed external provider call. Provider-local
// failures are absorbed by the pipeline: the provider's contribution
// degrades to empty and the request continues.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ModelOutputError reports model output that could not be parsed into the
// expected structure. Whether it is fatal for the bundle or the whole
// request depends on where in the pipeline it occurs.
type ModelOutputError struct {
	// Stage names the call that produced the output: realize, judge, route,
	// synthesize, themes.
	Stage string

	// Raw is a truncated sample of the offending output for diagnostics.
	Raw string

	Err error
}

func (e *ModelOutputError) Error() string {
	return fmt.Sprintf("unparseable %s output: %v", e.Stage, e.Err)
}

func (e *ModelOutputError) Unwrap() error { return e.Err }

// PolicyViolationError reports prescriptive or advisory language caught by
// the guardrail engine. It always propagates to the caller.
type PolicyViolationError struct {
	Reasons []string
}

func (e *PolicyViolationError) Error() string {
	return "policy violation: " + strings.Join(e.Reasons, "; ")
}

// CitationError reports a claim or insight left without citation evidence
// at the final validation gate. It always propagates to the caller.
type CitationError struct {
	Reason string
}

func (e *CitationError) Error() string {
	return "citation validation: " + e.Reason
}
