package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engineer-search/internal/knowledge"
)

func issueFields(err error) []string {
	verr, ok := AsValidation(err)
	if !ok {
		return nil
	}
	fields := make([]string, 0, len(verr.Issues))
	for _, issue := range verr.Issues {
		fields = append(fields, issue.Field)
	}
	return fields
}

func TestValidateAcceptsEmptyRequest(t *testing.T) {
	kb := knowledge.Default()
	assert.NoError(t, Validate(&SearchRequest{}, kb))
}

func TestValidateStretchBudget(t *testing.T) {
	kb := knowledge.Default()
	maxBudget := 100000.0
	low := 90000.0

	err := Validate(&SearchRequest{StretchBudget: &low}, kb)
	assert.Contains(t, issueFields(err), "stretchBudget")

	err = Validate(&SearchRequest{MaxBudget: &maxBudget, StretchBudget: &low}, kb)
	assert.Contains(t, issueFields(err), "stretchBudget")

	equal := 100000.0
	assert.NoError(t, Validate(&SearchRequest{MaxBudget: &maxBudget, StretchBudget: &equal}, kb))
}

func TestValidateTimelineEnum(t *testing.T) {
	kb := knowledge.Default()

	err := Validate(&SearchRequest{RequiredMaxStartTime: "someday"}, kb)
	assert.Contains(t, issueFields(err), "requiredMaxStartTime")

	err = Validate(&SearchRequest{
		RequiredMaxStartTime:  "one_month",
		PreferredMaxStartTime: "six_months",
	}, kb)
	assert.Contains(t, issueFields(err), "preferredMaxStartTime")

	assert.NoError(t, Validate(&SearchRequest{
		RequiredMaxStartTime:  "one_month",
		PreferredMaxStartTime: "two_weeks",
	}, kb))
}

func TestValidatePaginationBounds(t *testing.T) {
	kb := knowledge.Default()
	negative := -1
	huge := kb.MaxLimit + 1

	err := Validate(&SearchRequest{Limit: &huge, Offset: &negative}, kb)
	fields := issueFields(err)
	assert.Contains(t, fields, "limit")
	assert.Contains(t, fields, "offset")
}

func TestValidateUnknownEnums(t *testing.T) {
	kb := knowledge.Default()
	err := Validate(&SearchRequest{
		RequiredSeniorityLevel: "wizard",
		TeamFocus:              "world_domination",
		RequiredSkills:         []SkillRequirement{{Skill: "go", MinProficiency: "guru"}},
	}, kb)

	fields := issueFields(err)
	assert.Contains(t, fields, "requiredSeniorityLevel")
	assert.Contains(t, fields, "teamFocus")
	assert.Contains(t, fields, "requiredSkills[0].minProficiency")
}

func TestValidateAccumulatesAllIssues(t *testing.T) {
	kb := knowledge.Default()
	minYears := -2
	err := Validate(&SearchRequest{
		RequiredMaxStartTime:    "whenever",
		RequiredSkills:          []SkillRequirement{{Skill: ""}},
		RequiredBusinessDomains: []DomainRequirement{{Domain: "fintech", MinYears: &minYears}},
	}, kb)

	verr, ok := AsValidation(err)
	require.True(t, ok)
	assert.Len(t, verr.Issues, 3)
}
