package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"engineer-search/internal/knowledge"
)

func TestClampLimit(t *testing.T) {
	kb := knowledge.Default()
	e := &Engine{kb: kb}

	assert.Equal(t, kb.DefaultLimit, e.clampLimit(0))
	assert.Equal(t, kb.DefaultLimit, e.clampLimit(-5))
	assert.Equal(t, 10, e.clampLimit(10))
	assert.Equal(t, kb.MaxLimit, e.clampLimit(kb.MaxLimit+50))
}

func TestRankOrdersBySimilarityThenID(t *testing.T) {
	kb := knowledge.Default()
	e := &Engine{kb: kb}
	scorer := NewScorer(kb.Similarity, testSkillGraph(t, nil), emptyDomains())

	ref := &Profile{ID: "ref", YearsExperience: 10, SkillIDs: []string{"skill_go"}}
	candidates := []Profile{
		{ID: "far", YearsExperience: 1, SkillIDs: []string{"skill_react"}},
		{ID: "b-twin", YearsExperience: 10, SkillIDs: []string{"skill_go"}},
		{ID: "a-twin", YearsExperience: 10, SkillIDs: []string{"skill_go"}},
	}

	scored := e.rank(scorer, ref, candidates)
	assert.Equal(t, "a-twin", scored[0].Profile.ID)
	assert.Equal(t, "b-twin", scored[1].Profile.ID)
	assert.Equal(t, "far", scored[2].Profile.ID)
}
