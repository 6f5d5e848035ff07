package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func browseInput(crit *ExpandedCriteria) *QueryInput {
	return &QueryInput{Crit: crit, MinConfidence: 0.5}
}

func TestBuildSearchQueryTimezoneOrGroup(t *testing.T) {
	crit := &ExpandedCriteria{
		TimezonePrefixes: []string{"Europe/", "America/New_York"},
		Limit:            20,
	}

	query, params, err := BuildSearchQuery(browseInput(crit))
	require.NoError(t, err)

	assert.Contains(t, query,
		"(e.timezone STARTS WITH $timezonePrefix0 OR e.timezone STARTS WITH $timezonePrefix1)")
	assert.Equal(t, "Europe/", params["timezonePrefix0"])
	assert.Equal(t, "America/New_York", params["timezonePrefix1"])
}

func TestBuildSearchQueryCountsBeforePagination(t *testing.T) {
	skills := &SkillResolution{
		Requirements: []ResolvedSkillRequirement{
			{OriginalIdentifier: "go", OriginalSkillID: "skill_go", ExpandedSkillIDs: []string{"skill_go"}},
		},
		LeafSkillIDs: []string{"skill_go"},
	}
	in := &QueryInput{
		Crit:          &ExpandedCriteria{Limit: 20},
		Skills:        skills,
		Buckets:       BucketSkills(skills.Requirements),
		MinConfidence: 0.5,
	}

	query, _, err := BuildSearchQuery(in)
	require.NoError(t, err)

	countAt := strings.Index(query, "size(rows) AS totalCount")
	paginateAt := strings.Index(query, "SKIP $offset LIMIT $limit")
	evidenceAt := strings.Index(query, "OPTIONAL MATCH (e)-[:HAS]->(us:UserSkill)")

	require.GreaterOrEqual(t, countAt, 0)
	require.GreaterOrEqual(t, paginateAt, 0)
	require.GreaterOrEqual(t, evidenceAt, 0)
	assert.Less(t, countAt, paginateAt)
	assert.Less(t, paginateAt, evidenceAt)
}

func TestBuildSearchQueryPerRequirementPredicates(t *testing.T) {
	skills := &SkillResolution{
		Requirements: []ResolvedSkillRequirement{
			{OriginalIdentifier: "go", OriginalSkillID: "skill_go",
				ExpandedSkillIDs: []string{"skill_go"}, MinProficiency: ProficiencyExpert},
			{OriginalIdentifier: "databases", OriginalSkillID: "skill_databases",
				ExpandedSkillIDs: []string{"skill_postgres", "skill_sql"}, MinProficiency: ProficiencyLearning},
		},
		LeafSkillIDs: []string{"skill_go", "skill_postgres", "skill_sql"},
	}
	in := &QueryInput{
		Crit:          &ExpandedCriteria{Limit: 20},
		Skills:        skills,
		Buckets:       BucketSkills(skills.Requirements),
		MinConfidence: 0.5,
	}

	query, params, err := BuildSearchQuery(in)
	require.NoError(t, err)

	assert.Contains(t, query, "$reqSkillIds0")
	assert.Contains(t, query, "$reqSkillIds1")
	assert.Equal(t, []string{"skill_go"}, params["reqSkillIds0"])
	assert.Equal(t, []string{"skill_postgres", "skill_sql"}, params["reqSkillIds1"])
	assert.Equal(t, []string{"skill_go"}, params["expertLevelSkillIds"])
	assert.Equal(t, []string{"skill_postgres", "skill_sql"}, params["learningLevelSkillIds"])
}

func TestBuildSearchQueryDerivedSkillsAtAnyProficiency(t *testing.T) {
	crit := &ExpandedCriteria{
		Limit:                   20,
		DerivedRequiredSkillIDs: []string{"skill_distributed", "skill_monitoring"},
	}

	query, params, err := BuildSearchQuery(browseInput(crit))
	require.NoError(t, err)

	assert.Contains(t, query, "ALL(derivedId IN $derivedSkillIds")
	assert.Equal(t, []string{"skill_distributed", "skill_monitoring"}, params["derivedSkillIds"])
}

func TestBuildSearchQueryRejectsEmptyExpansion(t *testing.T) {
	skills := &SkillResolution{
		Requirements: []ResolvedSkillRequirement{
			{OriginalIdentifier: "mystery", ExpandedSkillIDs: nil},
		},
	}
	in := &QueryInput{Crit: &ExpandedCriteria{Limit: 20}, Skills: skills}

	_, _, err := BuildSearchQuery(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery")
}

func TestBuildSearchQueryBrowseModeOrdering(t *testing.T) {
	query, params, err := BuildSearchQuery(browseInput(&ExpandedCriteria{Limit: 20}))
	require.NoError(t, err)

	assert.Contains(t, query, "ORDER BY e.yearsExperience DESC")
	assert.NotContains(t, query, "ORDER BY matchedSkillCount DESC")
	assert.Equal(t, int64(20), params["limit"])
	assert.Equal(t, int64(0), params["offset"])
}

func TestBuildSkillFilterCountQuery(t *testing.T) {
	clauses := []PropertyClause{
		{Field: "salary", Clause: "e.salary <= $salaryCeiling", ParamName: "salaryCeiling", ParamValue: 100000.0},
	}
	groups := [][]string{{"skill_go"}}
	buckets := ProficiencyBuckets{Expert: []string{"skill_go"}}

	query, params, err := BuildSkillFilterCountQuery(clauses, groups, []string{"skill_distributed"}, buckets)
	require.NoError(t, err)

	assert.Contains(t, query, "count(DISTINCT e) AS resultCount")
	assert.Contains(t, query, "$skillGroup0")
	assert.Contains(t, query, "ALL(derivedId IN $derivedSkillIds")
	assert.Equal(t, 100000.0, params["salaryCeiling"])
	assert.Equal(t, []string{"skill_go"}, params["skillGroup0"])
}

func TestBuildSkillFilterCountQueryRejectsEmptyGroup(t *testing.T) {
	_, _, err := BuildSkillFilterCountQuery(nil, [][]string{{}}, nil, ProficiencyBuckets{})
	require.Error(t, err)
}
