// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package guardrail is the local, deterministic check for prescriptive or
// advisory language. It runs before and independently of the model judge.
// Pure, no I/O.
package guardrail

import (
	"fmt"
	"regexp"

	"github.com/pdiddy/concierge-engine/pkg/types"
)

// Rule is one named banned-language pattern.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// DefaultRules are the ordered pattern rules applied to every realized text
// and final answer.
var DefaultRules = []Rule{
	{
		Name:    "imperative trade verbs",
		Pattern: regexp.MustCompile(`(?i)\b(buy|sell|short|long)\b`),
	},
	{
		Name:    "allocation percentage phrasing",
		Pattern: regexp.MustCompile(`(?i)\b(allocate|reallocate|rebalance)\b|(?i)\b(shift|move)\s+\d+%`),
	},
	{
		Name:    "directive phrasing",
		Pattern: regexp.MustCompile(`(?i)\b(you should|we recommend|do this now|must)\b`),
	},
}

// Result reports whether the checked texts are clean, with one reason per
// matched rule occurrence.
type Result struct {
	OK      bool
	Reasons []string
}

// Engine applies an ordered rule list to candidate texts.
type Engine struct {
	rules []Rule
}

// New returns an Engine with the given rules, or DefaultRules when none are
// given.
func New(rules ...Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Engine{rules: rules}
}

// Check scans every text against every rule and collects the violations.
func (e *Engine) Check(texts []string) Result {
	var reasons []string
	for _, t := range texts {
		for _, r := range e.rules {
			if r.Pattern.MatchString(t) {
				reasons = append(reasons, fmt.Sprintf("%s: %q", r.Name, r.Pattern.FindString(t)))
			}
		}
	}
	return Result{OK: len(reasons) == 0, Reasons: reasons}
}

// Enforce returns a PolicyViolationError when any text matches a banned
// pattern.
func (e *Engine) Enforce(texts []string) error {
	res := e.Check(texts)
	if res.OK {
		return nil
	}
	return &types.PolicyViolationError{Reasons: res.Reasons}
}
