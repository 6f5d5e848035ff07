package critique

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engineer-search/internal/knowledge"
	"engineer-search/internal/search"
)

func TestApplySetAndAddOperations(t *testing.T) {
	a := NewApplier(knowledge.Default())
	base := &search.SearchRequest{}

	result := a.Apply(base, []Adjustment{
		{Property: "requiredSeniorityLevel", Operation: "set", Value: "senior"},
		{Property: "requiredTimezone", Operation: "add", Value: "Europe/*"},
		{Property: "requiredSkills", Operation: "add", Value: "Go"},
		{Property: "maxBudget", Operation: "set", Value: 120000.0},
		{Property: "requiredMaxStartTime", Operation: "set", Value: "one_month"},
	})

	require.Empty(t, result.Failed)
	require.Len(t, result.Applied, 5)

	req := result.Request
	assert.Equal(t, "senior", req.RequiredSeniorityLevel)
	assert.Equal(t, []string{"Europe/*"}, req.RequiredTimezone)
	assert.Equal(t, []search.SkillRequirement{{Skill: "Go"}}, req.RequiredSkills)
	require.NotNil(t, req.MaxBudget)
	assert.Equal(t, 120000.0, *req.MaxBudget)
	assert.Equal(t, "one_month", req.RequiredMaxStartTime)

	// The base request stays untouched.
	assert.Empty(t, base.RequiredSeniorityLevel)
	assert.Nil(t, base.MaxBudget)
	assert.Empty(t, base.RequiredSkills)
}

func TestApplyAdjustDirections(t *testing.T) {
	a := NewApplier(knowledge.Default())
	budget := 100000.0
	base := &search.SearchRequest{
		RequiredSeniorityLevel: "mid",
		MaxBudget:              &budget,
		RequiredMaxStartTime:   "one_month",
	}

	result := a.Apply(base, []Adjustment{
		{Property: "requiredSeniorityLevel", Operation: "adjust", Direction: "up"},
		{Property: "maxBudget", Operation: "adjust", Direction: "up"},
		{Property: "requiredMaxStartTime", Operation: "adjust", Direction: "down"},
	})

	require.Empty(t, result.Failed)
	assert.Equal(t, "senior", result.Request.RequiredSeniorityLevel)
	assert.InDelta(t, 110000.0, *result.Request.MaxBudget, 1e-9)
	assert.Equal(t, "two_weeks", result.Request.RequiredMaxStartTime)
}

func TestApplyBoundsWarnButStillApply(t *testing.T) {
	a := NewApplier(knowledge.Default())
	base := &search.SearchRequest{
		RequiredSeniorityLevel: "principal",
		RequiredMaxStartTime:   "immediate",
	}

	result := a.Apply(base, []Adjustment{
		{Property: "requiredSeniorityLevel", Operation: "adjust", Direction: "up"},
		{Property: "requiredMaxStartTime", Operation: "adjust", Direction: "down"},
	})

	require.Empty(t, result.Failed)
	require.Len(t, result.Applied, 2)
	assert.NotEmpty(t, result.Applied[0].Warning)
	assert.NotEmpty(t, result.Applied[1].Warning)
	assert.Equal(t, "principal", result.Request.RequiredSeniorityLevel)
	assert.Equal(t, "immediate", result.Request.RequiredMaxStartTime)
}

func TestApplyRejectsUnknownPropertyAndOperation(t *testing.T) {
	a := NewApplier(knowledge.Default())

	result := a.Apply(&search.SearchRequest{}, []Adjustment{
		{Property: "shoeSize", Operation: "set", Value: 44},
		{Property: "requiredSkills", Operation: "set", Value: "Go"},
		{Property: "maxBudget", Operation: "adjust", Direction: "up"},
		{Property: "requiredSeniorityLevel", Operation: "set", Value: "wizard"},
	})

	assert.Empty(t, result.Applied)
	require.Len(t, result.Failed, 4)
	assert.Contains(t, result.Failed[0].Reason, "not adjustable")
	assert.Contains(t, result.Failed[1].Reason, "not supported")
	assert.Contains(t, result.Failed[2].Reason, "maxBudget is not set")
	assert.Contains(t, result.Failed[3].Reason, "unknown seniority level")
}

func TestApplyRemoveOperations(t *testing.T) {
	a := NewApplier(knowledge.Default())
	base := &search.SearchRequest{
		RequiredSeniorityLevel: "senior",
		RequiredTimezone:       []string{"Europe/*", "America/*"},
		RequiredSkills:         []search.SkillRequirement{{Skill: "Go"}, {Skill: "SQL"}},
	}

	result := a.Apply(base, []Adjustment{
		{Property: "requiredSeniorityLevel", Operation: "remove"},
		{Property: "requiredTimezone", Operation: "remove", Value: "America/*"},
		{Property: "requiredSkills", Operation: "remove", Value: "SQL"},
		{Property: "requiredSkills", Operation: "remove", Value: "Rust"},
	})

	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0].Reason, `"Rust" is not in the request`)

	req := result.Request
	assert.Empty(t, req.RequiredSeniorityLevel)
	assert.Equal(t, []string{"Europe/*"}, req.RequiredTimezone)
	assert.Equal(t, []search.SkillRequirement{{Skill: "Go"}}, req.RequiredSkills)
	// Clone isolation: the base keeps both skills.
	assert.Len(t, base.RequiredSkills, 2)
	assert.Len(t, base.RequiredTimezone, 2)
}

func TestGenerateThenApplyRoundTrip(t *testing.T) {
	kb := knowledge.Default()
	matches := []search.EngineerMatch{
		match("e1", 7, "Europe/Berlin", "skill_go"),
		match("e2", 8, "Europe/London", "skill_go"),
	}
	base := &search.SearchRequest{}

	suggestions := NewGenerator(kb).Generate(matches, base)
	require.NotEmpty(t, suggestions)

	result := NewApplier(kb).Apply(base, suggestions[0].Adjustments)
	require.Empty(t, result.Failed)
	assert.NoError(t, search.Validate(result.Request, kb))
}
