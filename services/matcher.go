package services

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultMatchThreshold is the cosine-distance acceptance threshold.
const DefaultMatchThreshold = 0.3

// Candidate pairs an enrolled name with its stored embedding.
type Candidate struct {
	Name      string
	Embedding []float32
}

// MatchResult reports the nearest enrolled identity for a probe embedding.
// Name is empty when no candidate fell strictly below the threshold.
// Distance is nil only when there were no candidates at all, so "closest
// match rejected" stays distinguishable from "empty store".
type MatchResult struct {
	Name     string
	Distance *float64
}

// Matcher finds the nearest stored embedding by cosine distance. Candidate
// sets are small, so a full linear scan is used; no pruning, no early exit.
type Matcher struct {
	Threshold float64
}

// NewMatcher creates a matcher with the given acceptance threshold.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	return &Matcher{Threshold: threshold}
}

// Match scans all candidates and returns the nearest one, accepted only when
// its distance is strictly below the threshold. When two candidates are
// equidistant the first in iteration order wins.
func (m *Matcher) Match(probe []float32, candidates []Candidate) MatchResult {
	if len(candidates) == 0 {
		return MatchResult{}
	}

	bestName := ""
	minDistance := math.Inf(1)
	for _, c := range candidates {
		d := CosineDistance(probe, c.Embedding)
		if d < minDistance {
			minDistance = d
			bestName = c.Name
		}
	}

	result := MatchResult{Distance: &minDistance}
	if minDistance < m.Threshold {
		result.Name = bestName
	}
	return result
}

// CosineDistance computes 1 - cosine similarity between two vectors,
// accumulating in float64. Mismatched or zero vectors get the maximum
// distance 2.0 rather than an error, so a corrupt candidate can never win.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2.0
	}

	af := toFloat64(a)
	bf := toFloat64(b)

	normA := floats.Norm(af, 2)
	normB := floats.Norm(bf, 2)
	if normA == 0 || normB == 0 {
		return 2.0
	}

	similarity := floats.Dot(af, bf) / (normA * normB)
	// clamp to [-1, 1] to absorb floating point error
	if similarity > 1 {
		similarity = 1
	}
	if similarity < -1 {
		similarity = -1
	}
	return 1 - similarity
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
