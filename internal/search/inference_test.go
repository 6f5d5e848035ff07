package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engineer-search/internal/knowledge"
)

func findConstraint(constraints []DerivedConstraint, ruleID string) *DerivedConstraint {
	for i := range constraints {
		if constraints[i].RuleID == ruleID {
			return &constraints[i]
		}
	}
	return nil
}

func TestInferenceChainsThroughDerivedSkills(t *testing.T) {
	kb := knowledge.Default()
	result := RunInference(&SearchRequest{TeamFocus: "scaling"}, kb)

	first := findConstraint(result.Constraints, "scaling-requires-distributed")
	require.NotNil(t, first)
	assert.Equal(t, knowledge.EffectFilter, first.Effect)
	assert.Empty(t, first.Provenance)

	second := findConstraint(result.Constraints, "distributed-requires-monitoring")
	require.NotNil(t, second)
	assert.Contains(t, second.Provenance, "scaling-requires-distributed")

	assert.ElementsMatch(t, []string{"skill_distributed", "skill_monitoring"}, result.RequiredSkillIDs)
	assert.Empty(t, result.Warning)
}

func TestInferenceBoostStrength(t *testing.T) {
	kb := knowledge.Default()
	result := RunInference(&SearchRequest{TeamFocus: "scaling"}, kb)

	assert.Equal(t, 0.6, result.SkillBoosts["skill_kubernetes"])
	boost := findConstraint(result.Constraints, "scaling-prefers-kubernetes")
	require.NotNil(t, boost)
	assert.Equal(t, knowledge.EffectBoost, boost.Effect)
}

func TestInferenceOverrideBreaksChain(t *testing.T) {
	kb := knowledge.Default()
	result := RunInference(&SearchRequest{
		TeamFocus:         "scaling",
		OverriddenRuleIDs: []string{"scaling-requires-distributed"},
	}, kb)

	overridden := findConstraint(result.Constraints, "scaling-requires-distributed")
	require.NotNil(t, overridden)
	require.NotNil(t, overridden.Override)
	assert.Equal(t, OverrideScopeFull, overridden.Override.OverrideScope)

	// The chained rule never fires: its trigger skill was never merged.
	assert.Nil(t, findConstraint(result.Constraints, "distributed-requires-monitoring"))
	assert.Empty(t, result.RequiredSkillIDs)
}

func TestInferenceUserSkillTriggersDependentRule(t *testing.T) {
	kb := knowledge.Default()
	result := RunInference(&SearchRequest{
		RequiredSkills: []SkillRequirement{{Skill: "skill_distributed"}},
	}, kb)

	monitoring := findConstraint(result.Constraints, "distributed-requires-monitoring")
	require.NotNil(t, monitoring)
	// User-requested trigger: no upstream rule chain.
	assert.Empty(t, monitoring.Provenance)
	assert.Equal(t, []string{"skill_monitoring"}, result.RequiredSkillIDs)
}

func TestInferenceSeniorityInOperator(t *testing.T) {
	kb := knowledge.Default()

	result := RunInference(&SearchRequest{RequiredSeniorityLevel: "staff"}, kb)
	assert.Equal(t, 0.4, result.SkillBoosts["skill_mentoring"])

	result = RunInference(&SearchRequest{RequiredSeniorityLevel: "mid"}, kb)
	assert.Zero(t, result.SkillBoosts["skill_mentoring"])
}

func TestInferenceBusinessDomainCondition(t *testing.T) {
	kb := knowledge.Default()
	result := RunInference(&SearchRequest{
		RequiredBusinessDomains: []DomainRequirement{{Domain: "domain_fintech"}},
	}, kb)

	assert.Equal(t, 0.5, result.SkillBoosts["skill_compliance"])
}

func TestInferenceRulesFireOnce(t *testing.T) {
	kb := knowledge.Default()
	result := RunInference(&SearchRequest{TeamFocus: "scaling"}, kb)

	seen := map[string]int{}
	for _, c := range result.Constraints {
		seen[c.RuleID]++
	}
	for ruleID, n := range seen {
		assert.Equal(t, 1, n, "rule %s fired more than once", ruleID)
	}
}
