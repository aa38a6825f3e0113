package kernel

import (
	"strings"

	"github.com/verdantlabs/agentcore/internal/trace"
)

// SimilarityScorer decides whether a recalled trace is close enough to a
// goal to take the heuristic path. The acceptance criterion is explicit and
// injectable rather than baked into the kernel.
type SimilarityScorer interface {
	// Score rates a candidate trace against the goal, 0 to 1.
	Score(goal string, t *trace.Trace) float64

	// Threshold is the minimum score that counts as a match.
	Threshold() float64
}

// TokenOverlapScorer scores by Jaccard overlap of lowercase goal tokens.
// Cheap and deterministic; a semantic embedding scorer can replace it
// without touching the kernel.
type TokenOverlapScorer struct {
	// MinOverlap is the acceptance threshold; DefaultMinOverlap when 0.
	MinOverlap float64
}

// DefaultMinOverlap accepts goals sharing roughly a third of their tokens.
const DefaultMinOverlap = 0.3

// Score implements SimilarityScorer.
func (s TokenOverlapScorer) Score(goal string, t *trace.Trace) float64 {
	a := tokenSet(goal)
	b := tokenSet(t.Goal)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// Threshold implements SimilarityScorer.
func (s TokenOverlapScorer) Threshold() float64 {
	if s.MinOverlap > 0 {
		return s.MinOverlap
	}
	return DefaultMinOverlap
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		tok = strings.Trim(tok, ".,;:!?'\"()")
		if tok != "" {
			set[tok] = true
		}
	}
	return set
}

// RecencyScorer accepts any recalled trace unconditionally, preserving the
// original accept-most-recent behavior for callers that want it.
type RecencyScorer struct{}

// Score implements SimilarityScorer.
func (RecencyScorer) Score(goal string, t *trace.Trace) float64 { return 1 }

// Threshold implements SimilarityScorer.
func (RecencyScorer) Threshold() float64 { return 0 }
