package scheduler

import "sort"

// DefaultTopK is the width of the alternative pool variant indexes cycle
// through when the caller does not set one.
const DefaultTopK = 3

// ScoredCandidate pairs a constraint-passing candidate with its priority
// score.
type ScoredCandidate struct {
	Name  string
	Score float64
}

// RankCandidates orders candidates by score descending. Ties keep their
// input order, so ranking is deterministic for identical inputs.
func RankCandidates(candidates []ScoredCandidate) []ScoredCandidate {
	ranked := make([]ScoredCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// PickVariant selects one candidate from a ranked list. Variant 0 takes the
// top candidate (the greedy baseline); higher indexes cycle deterministically
// through the best min(topK, len) alternatives, so variant i and variant
// i+topK pick the same candidate.
func PickVariant(ranked []ScoredCandidate, variantIndex, topK int) (string, bool) {
	if len(ranked) == 0 {
		return "", false
	}
	if topK < 1 {
		topK = DefaultTopK
	}
	width := topK
	if len(ranked) < width {
		width = len(ranked)
	}
	if variantIndex <= 0 {
		return ranked[0].Name, true
	}
	return ranked[variantIndex%width].Name, true
}
