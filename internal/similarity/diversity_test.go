package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiversifyKeepsTopCandidate(t *testing.T) {
	scored := []Scored{
		{Profile: Profile{ID: "a"}, SimilarityScore: 0.9},
		{Profile: Profile{ID: "b"}, SimilarityScore: 0.8},
		{Profile: Profile{ID: "c"}, SimilarityScore: 0.7},
	}
	// Every pair is near-identical; the penalty still never displaces slot 0.
	out := Diversify(scored, 0.5, func(a, b *Profile) float64 { return 0.99 })
	assert.Equal(t, "a", out[0].Profile.ID)
}

func TestDiversifyPrefersDissimilarCandidates(t *testing.T) {
	scored := []Scored{
		{Profile: Profile{ID: "a"}, SimilarityScore: 0.9},
		{Profile: Profile{ID: "b"}, SimilarityScore: 0.8},
		{Profile: Profile{ID: "c"}, SimilarityScore: 0.7},
	}
	// b is a near-duplicate of a; c is unrelated.
	sim := func(x, y *Profile) float64 {
		if (x.ID == "a" && y.ID == "b") || (x.ID == "b" && y.ID == "a") {
			return 0.9
		}
		return 0.0
	}

	out := Diversify(scored, 0.3, sim)
	require.Len(t, out, 3)
	// b's marginal value 0.8 - 0.3*0.9 = 0.53 loses to c's 0.7.
	assert.Equal(t, []string{"a", "c", "b"},
		[]string{out[0].Profile.ID, out[1].Profile.ID, out[2].Profile.ID})
}

func TestDiversifyNoopWhenDisabledOrTiny(t *testing.T) {
	scored := []Scored{
		{Profile: Profile{ID: "a"}, SimilarityScore: 0.9},
		{Profile: Profile{ID: "b"}, SimilarityScore: 0.8},
	}
	out := Diversify(scored, 0.3, func(a, b *Profile) float64 { return 1 })
	assert.Equal(t, scored, out)

	three := append(scored, Scored{Profile: Profile{ID: "c"}, SimilarityScore: 0.7})
	out = Diversify(three, 0, func(a, b *Profile) float64 { return 1 })
	assert.Equal(t, three, out)
}
