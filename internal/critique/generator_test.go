package critique

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engineer-search/internal/knowledge"
	"engineer-search/internal/search"
)

func match(id string, years float64, tz string, skillIDs ...string) search.EngineerMatch {
	skills := make([]search.CollectedSkill, 0, len(skillIDs))
	for _, sid := range skillIDs {
		skills = append(skills, search.CollectedSkill{SkillID: sid, SkillName: "Name " + sid})
	}
	return search.EngineerMatch{
		ID: id, Name: id, YearsExperience: years, Timezone: tz, MatchedSkills: skills,
	}
}

func TestGenerateSupportAndOrdering(t *testing.T) {
	kb := knowledge.Default()
	matches := []search.EngineerMatch{
		match("e1", 7, "Europe/Berlin", "skill_go"),
		match("e2", 8, "Europe/London", "skill_go"),
		match("e3", 4, "America/New_York", "skill_go"),
		match("e4", 7, "Europe/Madrid", "skill_react"),
	}

	suggestions := NewGenerator(kb).Generate(matches, &search.SearchRequest{})
	require.NotEmpty(t, suggestions)

	// Support is monotonically non-increasing.
	for i := 1; i < len(suggestions); i++ {
		assert.GreaterOrEqual(t, suggestions[i-1].Support, suggestions[i].Support)
	}

	// Three of the four results are seniors in Europe.
	top := suggestions[0]
	assert.Equal(t, [2]string{"seniority", "timezone"}, top.Pair)
	assert.Equal(t, 3, top.Matching)
	assert.InDelta(t, 0.75, top.Support, 1e-9)
}

func TestGenerateAdjustmentsTargetRequestGaps(t *testing.T) {
	kb := knowledge.Default()
	matches := []search.EngineerMatch{
		match("e1", 7, "Europe/Berlin", "skill_go"),
		match("e2", 8, "Europe/London", "skill_go"),
	}

	suggestions := NewGenerator(kb).Generate(matches, &search.SearchRequest{})
	require.NotEmpty(t, suggestions)

	var seniorityTimezone *Suggestion
	for i := range suggestions {
		if suggestions[i].Pair == [2]string{"seniority", "timezone"} {
			seniorityTimezone = &suggestions[i]
		}
	}
	require.NotNil(t, seniorityTimezone)
	require.Len(t, seniorityTimezone.Adjustments, 2)
	assert.Equal(t, Adjustment{Property: "requiredSeniorityLevel", Operation: "set", Value: "senior"},
		seniorityTimezone.Adjustments[0])
	assert.Equal(t, Adjustment{Property: "requiredTimezone", Operation: "add", Value: "Europe/*"},
		seniorityTimezone.Adjustments[1])
}

func TestGenerateSkipsAlreadyActiveFilters(t *testing.T) {
	kb := knowledge.Default()
	matches := []search.EngineerMatch{
		match("e1", 7, "Europe/Berlin", "skill_go"),
		match("e2", 8, "Europe/London", "skill_go"),
	}
	req := &search.SearchRequest{
		RequiredSeniorityLevel: "senior",
		RequiredTimezone:       []string{"Europe/*"},
		RequiredSkills:         []search.SkillRequirement{{Skill: "Name skill_go"}},
	}

	// Every pair the page supports is already enforced by the request.
	assert.Empty(t, NewGenerator(kb).Generate(matches, req))
}

func TestGenerateEmptyResults(t *testing.T) {
	assert.Empty(t, NewGenerator(knowledge.Default()).Generate(nil, &search.SearchRequest{}))
}

func TestYearsToLevelPrefersHigherOverlappingLevel(t *testing.T) {
	kb := knowledge.Default()
	assert.Equal(t, "junior", yearsToLevel(1, kb))
	assert.Equal(t, "mid", yearsToLevel(3, kb))
	assert.Equal(t, "senior", yearsToLevel(9, kb))
	// Staff and principal overlap from 15 years up; principal wins.
	assert.Equal(t, "staff", yearsToLevel(12, kb))
	assert.Equal(t, "principal", yearsToLevel(20, kb))
}

func TestTopValuesFrequencyThenAlpha(t *testing.T) {
	freq := map[string]int{"b": 2, "a": 2, "c": 5, "d": 1}
	assert.Equal(t, []string{"c", "a", "b"}, topValues(freq, 3))
}
