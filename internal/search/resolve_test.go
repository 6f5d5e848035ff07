package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engineer-search/internal/graph"
)

// fakeRunner answers expansion queries from a fixed identifier table.
type fakeRunner struct {
	records map[string][]graph.Record
	queries []string
}

func (f *fakeRunner) Collect(_ context.Context, query string, params map[string]any) ([]graph.Record, error) {
	f.queries = append(f.queries, query)
	id, _ := params["identifier"].(string)
	return f.records[id], nil
}

func leafList(ids ...string) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, map[string]any{"id": id, "name": "Name " + id})
	}
	return out
}

func TestResolveSkillsExpandsHierarchy(t *testing.T) {
	runner := &fakeRunner{records: map[string][]graph.Record{
		"databases": {{
			"originalId":   "skill_databases",
			"originalName": "Databases",
			"leaves":       leafList("skill_postgres", "skill_mysql", "skill_sql"),
		}},
	}}

	res, err := ResolveSkills(context.Background(), runner,
		[]SkillRequirement{{Skill: "databases", MinProficiency: ProficiencyProficient}},
		ProficiencyLearning)
	require.NoError(t, err)

	require.Len(t, res.Requirements, 1)
	req := res.Requirements[0]
	assert.Equal(t, "databases", req.OriginalIdentifier)
	assert.Equal(t, "skill_databases", req.OriginalSkillID)
	assert.Equal(t, []string{"skill_mysql", "skill_postgres", "skill_sql"}, req.ExpandedSkillIDs)
	assert.Equal(t, ProficiencyProficient, req.MinProficiency)
	assert.Equal(t, "Name skill_postgres", req.SkillIDToName["skill_postgres"])
	assert.Equal(t, []string{"skill_mysql", "skill_postgres", "skill_sql"}, res.LeafSkillIDs)
	assert.Empty(t, res.Unresolved)
}

func TestResolveSkillsDefaultProficiencyAndUnresolved(t *testing.T) {
	runner := &fakeRunner{records: map[string][]graph.Record{
		"go": {{
			"originalId":   "skill_go",
			"originalName": "Go",
			"leaves":       leafList("skill_go"),
		}},
	}}

	res, err := ResolveSkills(context.Background(), runner,
		[]SkillRequirement{{Skill: "go"}, {Skill: "underwater basket weaving"}},
		ProficiencyLearning)
	require.NoError(t, err)

	require.Len(t, res.Requirements, 1)
	assert.Equal(t, ProficiencyLearning, res.Requirements[0].MinProficiency)
	assert.Equal(t, []string{"underwater basket weaving"}, res.Unresolved)
}

func TestResolveSkillsDeduplicatesLeaves(t *testing.T) {
	runner := &fakeRunner{records: map[string][]graph.Record{
		"databases": {{
			"originalId":   "skill_databases",
			"originalName": "Databases",
			"leaves":       leafList("skill_postgres", "skill_sql"),
		}},
		"postgres": {{
			"originalId":   "skill_postgres",
			"originalName": "PostgreSQL",
			"leaves":       leafList("skill_postgres"),
		}},
	}}

	res, err := ResolveSkills(context.Background(), runner,
		[]SkillRequirement{{Skill: "databases"}, {Skill: "postgres"}},
		ProficiencyLearning)
	require.NoError(t, err)

	assert.Equal(t, []string{"skill_postgres", "skill_sql"}, res.LeafSkillIDs)
}

func TestBucketSkillsStrictestMinimumWins(t *testing.T) {
	requirements := []ResolvedSkillRequirement{
		{ExpandedSkillIDs: []string{"skill_postgres", "skill_sql"}, MinProficiency: ProficiencyLearning},
		{ExpandedSkillIDs: []string{"skill_postgres"}, MinProficiency: ProficiencyExpert},
		{ExpandedSkillIDs: []string{"skill_go"}, MinProficiency: ProficiencyProficient},
	}

	buckets := BucketSkills(requirements)
	assert.Equal(t, []string{"skill_sql"}, buckets.Learning)
	assert.Equal(t, []string{"skill_go"}, buckets.Proficient)
	assert.Equal(t, []string{"skill_postgres"}, buckets.Expert)
}

func TestResolveDomainsIncludesSelf(t *testing.T) {
	runner := &fakeRunner{records: map[string][]graph.Record{
		"fintech": {{
			"originalId": "domain_fintech",
			"subIds":     []any{"domain_fintech", "domain_payments", "domain_banking"},
		}},
	}}

	res, err := ResolveDomains(context.Background(), runner, LabelBusinessDomain,
		[]DomainRequirement{{Domain: "fintech"}})
	require.NoError(t, err)

	require.Len(t, res.Domains, 1)
	assert.Equal(t, "domain_fintech", res.Domains[0].DomainID)
	assert.Equal(t, []string{"domain_banking", "domain_fintech", "domain_payments"},
		res.Domains[0].ExpandedDomainIDs)
	assert.Contains(t, res.Domains[0].ExpandedDomainIDs, "domain_fintech")
}

func TestResolveDomainsRejectsUnknownLabel(t *testing.T) {
	_, err := ResolveDomains(context.Background(), &fakeRunner{}, "Engineer", nil)
	require.Error(t, err)
}
