package advisor

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engineer-search/internal/search"
)

func suggestionByAction(suggestions []Suggestion, action string) *Suggestion {
	for i := range suggestions {
		if suggestions[i].Action == action {
			return &suggestions[i]
		}
	}
	return nil
}

func TestSuggestProbesConcreteRelaxations(t *testing.T) {
	// Baseline 1: salary at 100000 plus the skill. Raising the ceiling or
	// loosening the skill requirement each free up matches.
	fake := &countingFake{count: func(params map[string]any) int {
		hasSalary := has(params, "salaryCeiling")
		hasSkill := has(params, "skillGroup0")
		ceiling, _ := params["salaryCeiling"].(float64)
		learning, _ := params["learningLevelSkillIds"].([]string)
		lowered := slices.Contains(learning, "skill_go")

		switch {
		case hasSalary && hasSkill && ceiling >= 119999:
			return 6
		case hasSalary && hasSkill && lowered:
			return 3
		case hasSalary && hasSkill:
			return 1
		case hasSalary:
			return 5
		case hasSkill:
			return 4
		}
		return 10
	}}
	skills := &search.SkillResolution{Requirements: []search.ResolvedSkillRequirement{
		{OriginalIdentifier: "go", OriginalSkillID: "skill_go", OriginalSkillName: "Go",
			ExpandedSkillIDs: []string{"skill_go"}, MinProficiency: search.ProficiencyProficient},
	}}
	cnt := newCounterWithRun(fake.run, search.BucketSkills(skills.Requirements))
	constraints := []TestableConstraint{salaryConstraint(100000), skillConstraint()}

	suggestions, degraded, err := suggest(context.Background(), cnt, constraints, constraints, skills, 1)
	require.NoError(t, err)
	assert.False(t, degraded)
	require.Len(t, suggestions, 4)

	// Best first, ties by constraint id then action.
	assert.Equal(t, ActionRelax, suggestions[0].Action)
	assert.Equal(t, "maxBudget", suggestions[0].TargetField)
	assert.Equal(t, 120000.0, suggestions[0].SuggestedValue)
	assert.Equal(t, 6, suggestions[0].ResultingMatches)

	assert.Equal(t, ActionMoveToPreferred, suggestions[1].Action)
	assert.Equal(t, 5, suggestions[1].ResultingMatches)
	assert.Equal(t, ActionRemove, suggestions[2].Action)
	assert.Equal(t, 5, suggestions[2].ResultingMatches)

	lower := suggestions[3]
	assert.Equal(t, ActionLowerProficiency, lower.Action)
	assert.Equal(t, "learning", lower.SuggestedValue)
	assert.Equal(t, 3, lower.ResultingMatches)
}

func TestSuggestDropsEditsAtOrBelowBaseline(t *testing.T) {
	fake := &countingFake{count: func(map[string]any) int { return 2 }}
	cnt := newCounterWithRun(fake.run, search.ProficiencyBuckets{})
	constraints := []TestableConstraint{salaryConstraint(100000), timelineConstraint()}

	suggestions, _, err := suggest(context.Background(), cnt, constraints, constraints, nil, 2)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestSuggestTimelineExpansion(t *testing.T) {
	// Accepting three_months or later opens up matches.
	fake := &countingFake{count: func(params map[string]any) int {
		timelines, _ := params["startTimelines"].([]string)
		if len(timelines) >= 4 {
			return 7
		}
		return 0
	}}
	cnt := newCounterWithRun(fake.run, search.ProficiencyBuckets{})
	constraints := []TestableConstraint{timelineConstraint()}

	suggestions, _, err := suggest(context.Background(), cnt, constraints, constraints, nil, 0)
	require.NoError(t, err)

	// immediate -> five later cut-offs, of which three beat the baseline.
	require.Len(t, suggestions, 3)
	assert.Equal(t, "three_months", suggestions[0].SuggestedValue)
	assert.Equal(t, "requiredMaxStartTime", suggestions[0].TargetField)
	assert.Equal(t, 7, suggestions[0].ResultingMatches)
}

func TestSuggestOverridesDerivedRule(t *testing.T) {
	fake := &countingFake{count: func(params map[string]any) int {
		if has(params, "derivedSkillIds") {
			return 0
		}
		return 8
	}}
	cnt := newCounterWithRun(fake.run, search.ProficiencyBuckets{})
	derived := TestableConstraint{
		ID: "derived_scaling-requires-distributed", Field: "derivedSkills",
		Origin: OriginDerived, Description: "Scaling requires distributed systems",
		DerivedIDs: []string{"skill_distributed"}, RuleID: "scaling-requires-distributed",
	}
	constraints := []TestableConstraint{derived}

	suggestions, _, err := suggest(context.Background(), cnt, constraints, constraints, nil, 0)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, ActionOverrideRule, suggestions[0].Action)
	assert.Equal(t, "overriddenRuleIds", suggestions[0].TargetField)
	assert.Equal(t, "scaling-requires-distributed", suggestions[0].SuggestedValue)
	assert.Equal(t, 8, suggestions[0].ResultingMatches)
}

func TestTimezonePrefixRemoveVariant(t *testing.T) {
	tz := TestableConstraint{
		ID: "timezonePrefix0", Field: "timezone", Origin: OriginUser,
		Description: "timezone starts with Asia/",
		Clauses: []search.PropertyClause{{
			Field: "timezone", Clause: "e.timezone STARTS WITH $timezonePrefix0",
			ParamName: "timezonePrefix0", ParamValue: "Asia/", OrGroup: "timezone",
		}},
	}
	variants, err := variantsFor(tz, []TestableConstraint{tz, salaryConstraint(100000)},
		nil, search.ProficiencyBuckets{})
	require.NoError(t, err)
	require.Len(t, variants, 1)

	v := variants[0]
	assert.Equal(t, ActionRemove, v.suggestion.Action)
	assert.Equal(t, "requiredTimezone", v.suggestion.TargetField)
	assert.Equal(t, "timezonePrefix0", v.suggestion.ConstraintID)
	assert.Nil(t, v.suggestion.SuggestedValue)
	assert.Contains(t, v.suggestion.Description, "Asia/")

	// The probe drops only this prefix, leaving the rest of the set intact.
	require.Len(t, v.set, 1)
	assert.Equal(t, "salaryCeiling", v.set[0].ID)
}

func TestExperienceBoundsGetNoVariants(t *testing.T) {
	tc := TestableConstraint{
		ID: "minYearsExperience", Field: "yearsExperience", Origin: OriginUser,
		Clauses: []search.PropertyClause{{
			Field: "yearsExperience", Clause: "e.yearsExperience >= $minYearsExperience",
			ParamName: "minYearsExperience", ParamValue: 6,
		}},
	}
	variants, err := variantsFor(tc, []TestableConstraint{tc}, nil, search.ProficiencyBuckets{})
	require.NoError(t, err)
	assert.Empty(t, variants)
}
