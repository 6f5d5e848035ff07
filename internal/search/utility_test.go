package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engineer-search/internal/knowledge"
)

func TestScoreNeutralWhenNoSkillsRequested(t *testing.T) {
	kb := knowledge.Default()
	crit := &ExpandedCriteria{}
	matches := []EngineerMatch{{ID: "e1", Name: "Ada", YearsExperience: 5}}

	scored := NewScorer(kb).Score(matches, crit, nil, nil)

	assert.Equal(t, 0.5, scored[0].Breakdown.RawScores["skillMatch"])
	assert.Equal(t, 0.5, scored[0].Breakdown.RawScores["confidence"])
}

func TestScoreBudgetBaselineNotSurfaced(t *testing.T) {
	kb := knowledge.Default()
	maxBudget := 100000.0
	stretch := 120000.0
	crit := &ExpandedCriteria{MaxBudget: &maxBudget, StretchBudget: &stretch}

	within := []EngineerMatch{{ID: "e1", Name: "Ada", Salary: 95000}}
	scored := NewScorer(kb).Score(within, crit, nil, nil)
	assert.Equal(t, 1.0, scored[0].Breakdown.RawScores["budgetMatch"])
	assert.NotContains(t, scored[0].Breakdown.Scores, "budgetMatch")

	band := []EngineerMatch{{ID: "e2", Name: "Grace", Salary: 110000}}
	scored = NewScorer(kb).Score(band, crit, nil, nil)
	assert.Equal(t, kb.Utility.StretchBudgetScore, scored[0].Breakdown.RawScores["budgetMatch"])
	assert.InDelta(t, kb.Utility.StretchBudgetScore*kb.Weights.Budget,
		scored[0].Breakdown.Scores["budgetMatch"], 1e-9)

	over := []EngineerMatch{{ID: "e3", Name: "Linus", Salary: 130000}}
	scored = NewScorer(kb).Score(over, crit, nil, nil)
	assert.NotContains(t, scored[0].Breakdown.RawScores, "budgetMatch")
}

func TestScoreStartTimelineDecay(t *testing.T) {
	kb := knowledge.Default()
	crit := &ExpandedCriteria{
		RequiredMaxStartTime:  "three_months",
		PreferredMaxStartTime: "two_weeks",
	}

	cases := []struct {
		timeline string
		want     float64
	}{
		{"immediate", 1.0},
		{"two_weeks", 1.0},
		{"one_month", 0.5},
		{"three_months", 0.0},
	}
	for _, tc := range cases {
		matches := []EngineerMatch{{ID: "e1", Name: "Ada", StartTimeline: tc.timeline}}
		scored := NewScorer(kb).Score(matches, crit, nil, nil)
		assert.InDelta(t, tc.want, scored[0].Breakdown.RawScores["startTimelineMatch"], 1e-9,
			"timeline %s", tc.timeline)
	}
}

func TestScoreDerivedBoostCountsFractionally(t *testing.T) {
	kb := knowledge.Default()
	crit := &ExpandedCriteria{
		DerivedSkillBoosts: map[string]float64{"skill_kubernetes": 0.6},
	}
	matches := []EngineerMatch{{
		ID: "e1", Name: "Ada",
		matchedPreferredSkillIDs: []string{"skill_kubernetes"},
	}}

	scored := NewScorer(kb).Score(matches, crit, nil, nil)

	assert.InDelta(t, 0.6, scored[0].Breakdown.RawScores["preferredSkillsMatch"], 1e-9)
	assert.Equal(t, 0.6, scored[0].Breakdown.PreferenceMatches["boost:skill_kubernetes"])
}

func TestScoreTeamFocusShare(t *testing.T) {
	kb := knowledge.Default()
	crit := &ExpandedCriteria{
		AlignedSkillIDs: []string{"skill_kubernetes", "skill_terraform", "skill_ci_cd", "skill_monitoring"},
	}
	matches := []EngineerMatch{{
		ID: "e1", Name: "Ada",
		matchedPreferredSkillIDs: []string{"skill_kubernetes", "skill_terraform"},
	}}

	scored := NewScorer(kb).Score(matches, crit, nil, nil)
	assert.InDelta(t, 0.5, scored[0].Breakdown.RawScores["teamFocusMatch"], 1e-9)
}

func TestScoreSkillCoverageWithProficiencyBonus(t *testing.T) {
	kb := knowledge.Default()
	crit := &ExpandedCriteria{}
	skills := &SkillResolution{Requirements: []ResolvedSkillRequirement{
		{OriginalSkillID: "skill_go", ExpandedSkillIDs: []string{"skill_go"}},
		{OriginalSkillID: "skill_sql", ExpandedSkillIDs: []string{"skill_sql"}},
	}}
	matches := []EngineerMatch{{
		ID: "e1", Name: "Ada",
		MatchedSkillCount: 2,
		AvgConfidence:     0.8,
		MatchedSkills: []CollectedSkill{
			{SkillID: "skill_go", ProficiencyLevel: ProficiencyExpert},
			{SkillID: "skill_sql", ProficiencyLevel: ProficiencyProficient},
		},
	}}

	scored := NewScorer(kb).Score(matches, crit, skills, nil)

	// Coverage 1.0 is already the cap; bonus cannot push it past 1.
	assert.Equal(t, 1.0, scored[0].Breakdown.RawScores["skillMatch"])
	assert.InDelta(t, 0.8, scored[0].Breakdown.RawScores["confidence"], 1e-9)
}

func TestScoreOrdering(t *testing.T) {
	kb := knowledge.Default()
	crit := &ExpandedCriteria{}
	skills := &SkillResolution{Requirements: []ResolvedSkillRequirement{
		{OriginalSkillID: "skill_go", ExpandedSkillIDs: []string{"skill_go"}},
	}}

	matches := []EngineerMatch{
		{ID: "e1", Name: "Zoe", YearsExperience: 8},
		{ID: "e2", Name: "Ada", YearsExperience: 8},
		{ID: "e3", Name: "Mae", YearsExperience: 12},
		{ID: "e4", Name: "Kim", YearsExperience: 3, MatchedSkillCount: 1,
			MatchedSkills: []CollectedSkill{{SkillID: "skill_go"}}, AvgConfidence: 0.9},
	}

	scored := NewScorer(kb).Score(matches, crit, skills, nil)

	require.Len(t, scored, 4)
	// Full coverage beats raw experience under the default weights.
	assert.Equal(t, "e4", scored[0].ID)
	// Then experience desc, then name asc on equal years.
	assert.Equal(t, "e3", scored[1].ID)
	assert.Equal(t, "Ada", scored[2].Name)
	assert.Equal(t, "Zoe", scored[3].Name)
}
