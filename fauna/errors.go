package fauna

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// UnknownParameterError reports a parameter name that does not exist for
// the species or terrain being configured.
type UnknownParameterError struct {
	Owner      string // species or terrain name
	Name       string
	Suggestion string // closest known name, if any
}

func (e *UnknownParameterError) Error() string {
	msg := fmt.Sprintf("unknown %s parameter %q", e.Owner, e.Name)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// OutOfRangeError reports a value outside the range a parameter or
// organism attribute accepts.
type OutOfRangeError struct {
	Owner  string
	Name   string
	Value  float64
	Reason string
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s %s = %v: %s", e.Owner, e.Name, e.Value, e.Reason)
}

// InvalidSpeciesError reports a species name outside the allowed set.
type InvalidSpeciesError struct {
	Name       string
	Suggestion string
}

func (e *InvalidSpeciesError) Error() string {
	msg := fmt.Sprintf("invalid species %q", e.Name)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// Suggest returns the candidate closest to name by edit distance, or ""
// when nothing is close enough to be a plausible typo.
func Suggest(name string, candidates []string) string {
	in := strings.ToLower(name)
	best := ""
	bestDist := -1
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(in, strings.ToLower(cand))
		if dist > suggestLimit(len(cand)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best = cand
			bestDist = dist
		}
	}
	return best
}

func suggestLimit(n int) int {
	switch {
	case n <= 3:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}
