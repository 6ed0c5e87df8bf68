package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankCandidates(t *testing.T) {
	input := []ScoredCandidate{
		{Name: "B", Score: 0.5},
		{Name: "A", Score: 0.9},
		{Name: "C", Score: 0.7},
	}
	ranked := RankCandidates(input)

	assert.Equal(t, "A", ranked[0].Name)
	assert.Equal(t, "C", ranked[1].Name)
	assert.Equal(t, "B", ranked[2].Name)

	// The input slice is left untouched.
	assert.Equal(t, "B", input[0].Name)
}

func TestRankCandidatesStableTies(t *testing.T) {
	input := []ScoredCandidate{
		{Name: "First", Score: 1.0},
		{Name: "Second", Score: 1.0},
		{Name: "Third", Score: 1.0},
	}
	ranked := RankCandidates(input)
	assert.Equal(t, "First", ranked[0].Name)
	assert.Equal(t, "Second", ranked[1].Name)
	assert.Equal(t, "Third", ranked[2].Name)
}

func TestPickVariant(t *testing.T) {
	ranked := []ScoredCandidate{
		{Name: "A", Score: 0.9},
		{Name: "B", Score: 0.8},
		{Name: "C", Score: 0.7},
		{Name: "D", Score: 0.6},
		{Name: "E", Score: 0.5},
	}

	cases := []struct {
		variant int
		topK    int
		want    string
	}{
		{0, 3, "A"},
		{1, 3, "B"},
		{2, 3, "C"},
		{3, 3, "A"}, // cycles back within the top 3
		{4, 3, "B"},
		{1, 10, "B"}, // topK wider than the list clamps to its length
		{5, 10, "A"},
		{0, 1, "A"},
		{7, 1, "A"}, // topK 1 always picks the greedy choice
	}
	for _, c := range cases {
		got, ok := PickVariant(ranked, c.variant, c.topK)
		assert.True(t, ok)
		assert.Equal(t, c.want, got, "variant %d topK %d", c.variant, c.topK)
	}
}

func TestPickVariantCycle(t *testing.T) {
	ranked := []ScoredCandidate{
		{Name: "A", Score: 0.9},
		{Name: "B", Score: 0.8},
		{Name: "C", Score: 0.7},
	}
	for i := 1; i < 6; i++ {
		a, _ := PickVariant(ranked, i, 3)
		b, _ := PickVariant(ranked, i+3, 3)
		assert.Equal(t, a, b, "variant %d and %d should coincide", i, i+3)
	}
}

func TestPickVariantEmpty(t *testing.T) {
	_, ok := PickVariant(nil, 0, 3)
	assert.False(t, ok)
}

func TestPickVariantDefaultTopK(t *testing.T) {
	ranked := []ScoredCandidate{
		{Name: "A", Score: 0.9},
		{Name: "B", Score: 0.8},
		{Name: "C", Score: 0.7},
		{Name: "D", Score: 0.6},
	}
	got, ok := PickVariant(ranked, 3, 0)
	assert.True(t, ok)
	assert.Equal(t, "A", got) // 3 mod DefaultTopK
}
