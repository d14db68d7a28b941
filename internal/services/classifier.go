package services

import (
	"strings"

	"github.com/hireflow/onboarding/internal/config"
)

// Classify maps the current folder listing onto the required-document
// checklist: a key is satisfied by file when any file name contains one
// of its keyword variants, case-insensitively. A single file may match
// several keys; no exclusivity is enforced. Pure function, no state.
func Classify(requirements []config.DocumentRequirement, fileNames []string) map[string]bool {
	lowered := make([]string, len(fileNames))
	for i, name := range fileNames {
		lowered[i] = strings.ToLower(name)
	}

	result := make(map[string]bool, len(requirements))
	for _, req := range requirements {
		result[req.Key] = matchesAny(req.Keywords, lowered)
	}
	return result
}

// MatchesRequirement reports whether any file name satisfies a single
// requirement. Used for the seed-document gate.
func MatchesRequirement(req config.DocumentRequirement, fileNames []string) bool {
	lowered := make([]string, len(fileNames))
	for i, name := range fileNames {
		lowered[i] = strings.ToLower(name)
	}
	return matchesAny(req.Keywords, lowered)
}

func matchesAny(keywords []string, loweredNames []string) bool {
	for _, name := range loweredNames {
		for _, kw := range keywords {
			if strings.Contains(name, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}
