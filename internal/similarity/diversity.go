package similarity

// Diversify reorders scored candidates maximal-marginal-relevance style: the
// top candidate stays at position 0, later slots prefer candidates dissimilar
// to what was already picked. Input must be sorted by similarity descending.
func Diversify(scored []Scored, penalty float64, pairSim func(a, b *Profile) float64) []Scored {
	if len(scored) <= 2 || penalty <= 0 {
		return scored
	}

	selected := make([]Scored, 0, len(scored))
	remaining := append([]Scored(nil), scored...)

	// Position 0 is the argmax of raw similarity, always.
	selected = append(selected, remaining[0])
	remaining = remaining[1:]

	for len(remaining) > 0 {
		bestIdx := 0
		bestValue := marginalValue(remaining[0], selected, penalty, pairSim)
		for i := 1; i < len(remaining); i++ {
			v := marginalValue(remaining[i], selected, penalty, pairSim)
			if v > bestValue || v == bestValue && remaining[i].Profile.ID < remaining[bestIdx].Profile.ID {
				bestIdx = i
				bestValue = v
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

func marginalValue(c Scored, selected []Scored, penalty float64, pairSim func(a, b *Profile) float64) float64 {
	maxSim := 0.0
	for i := range selected {
		if s := pairSim(&c.Profile, &selected[i].Profile); s > maxSim {
			maxSim = s
		}
	}
	return c.SimilarityScore - penalty*maxSim
}
