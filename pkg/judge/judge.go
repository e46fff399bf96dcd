// Package judge provides semantic judges for the reconciliation classifier.
//
// The Gemini judge asks a Google generative model to label a predicted value
// against its ground truth using the label vocabulary of package classify.
// Memo wraps any judge so that identical questions within one run are asked
// once.
package judge

import (
	"strings"

	"github.com/agentstation/fieldeval/pkg/classify"
)

// Backend selects how the Gemini judge authenticates.
type Backend string

// Backends.
const (
	BackendGemini Backend = "gemini" // Gemini API with an API key
	BackendVertex Backend = "vertex" // Vertex AI with a project and ADC or API key
)

// ParseBackend maps a configuration value to a Backend.
func ParseBackend(s string) (Backend, bool) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case BackendGemini, "":
		return BackendGemini, true
	case BackendVertex, "vertexai", "vertex-ai":
		return BackendVertex, true
	}
	return "", false
}

// cleanLabel reduces a model reply to a bare label: first line, trimmed,
// lower-cased, without surrounding quotes, backticks or trailing dots.
func cleanLabel(reply string) string {
	reply = strings.TrimSpace(reply)
	if i := strings.IndexAny(reply, "\r\n"); i >= 0 {
		reply = reply[:i]
	}
	reply = strings.Trim(reply, " \t`\"'*.")
	return strings.ToLower(reply)
}

// knownLabel reports whether label is part of the default vocabulary.
func knownLabel(label string) bool {
	for _, l := range classify.Labels {
		if l == label {
			return true
		}
	}
	return false
}
