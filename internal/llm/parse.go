// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/concierge-engine/pkg/types"
)

// StripFences removes markdown code fences the model sometimes wraps JSON
// in (``` or ```json on the first line, ``` on the last).
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ParseObject normalizes raw model output and unmarshals it into dst.
// Fences are stripped first. If the text still does not parse, the
// first-'{'-to-last-'}' slice is tried as an explicit, logged degradation
// path, never a silent default. Failure returns a ModelOutputError naming
// the stage and carrying a truncated sample of the offending output.
func ParseObject(dst any, raw, stage string, logger *zap.Logger) error {
	text := StripFences(raw)

	err := json.Unmarshal([]byte(text), dst)
	if err == nil {
		return nil
	}

	if inner, ok := extractObject(text); ok {
		if innerErr := json.Unmarshal([]byte(inner), dst); innerErr == nil {
			logger.Warn("model output parsed via degraded JSON extraction",
				zap.String("stage", stage))
			return nil
		}
	}

	return &types.ModelOutputError{Stage: stage, Raw: Sample(raw, 200), Err: err}
}

// extractObject slices from the first '{' to the last '}'.
func extractObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// Sample flattens and truncates text for log fields and error payloads.
func Sample(text string, n int) string {
	t := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if len(t) <= n {
		return t
	}
	return t[:n] + "…"
}
