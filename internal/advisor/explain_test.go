package advisor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engineer-search/internal/graph"
	"engineer-search/internal/search"
)

func TestBuildExplanationsPerConstraint(t *testing.T) {
	run := func(_ context.Context, query string, params map[string]any) ([]graph.Record, error) {
		switch {
		case strings.Contains(query, "min(e.salary)"):
			return []graph.Record{{"low": 60000.0, "high": 150000.0}}, nil
		case strings.Contains(query, "count(DISTINCT e) AS n"):
			return []graph.Record{{"n": int64(12)}}, nil
		case strings.Contains(query, "resultCount"):
			if has(params, "skillGroup0") {
				return []graph.Record{{"resultCount": int64(4)}}, nil
			}
			return []graph.Record{{"resultCount": int64(9)}}, nil
		}
		return nil, nil
	}
	cnt := newCounterWithRun(run, search.ProficiencyBuckets{Proficient: []string{"skill_go"}})

	constraints := []TestableConstraint{salaryConstraint(100000), skillConstraint()}
	explanations, degraded, err := buildExplanations(context.Background(), cnt, constraints)
	require.NoError(t, err)
	assert.False(t, degraded)
	require.Len(t, explanations, 2)

	// Output order follows constraint order regardless of probe scheduling.
	salary := explanations[0]
	assert.Equal(t, "salaryCeiling", salary.ConstraintID)
	assert.Equal(t, 9, salary.MatchesAlone)
	assert.Equal(t, "engineer salaries range from 60000 to 150000", salary.Detail)

	skill := explanations[1]
	assert.Equal(t, "user_skill_skill_go", skill.ConstraintID)
	assert.Equal(t, 4, skill.MatchesAlone)
	assert.Contains(t, skill.Detail, "12 engineers hold this skill")
	assert.Contains(t, skill.Detail, "4 meet the requirement")

	// Two count probes plus two detail queries, all charged to the budget.
	assert.Equal(t, 4, cnt.queryCount())
}

func TestBuildExplanationsTimezoneDistribution(t *testing.T) {
	run := func(_ context.Context, query string, _ map[string]any) ([]graph.Record, error) {
		if strings.Contains(query, "split(e.timezone") {
			return []graph.Record{
				{"value": "Europe", "n": int64(30)},
				{"value": "America", "n": int64(20)},
			}, nil
		}
		return []graph.Record{{"resultCount": int64(2)}}, nil
	}
	cnt := newCounterWithRun(run, search.ProficiencyBuckets{})

	tz := TestableConstraint{ID: "timezonePrefix0", Field: "timezone", Origin: OriginUser,
		Description: "timezone starts with Asia/"}
	explanations, _, err := buildExplanations(context.Background(), cnt, []TestableConstraint{tz})
	require.NoError(t, err)
	require.Len(t, explanations, 1)
	assert.Equal(t, "timezone regions in the dataset: Europe=30, America=20", explanations[0].Detail)
}

func TestBuildExplanationsDetailQueriesRespectBudget(t *testing.T) {
	run := func(_ context.Context, query string, _ map[string]any) ([]graph.Record, error) {
		if strings.Contains(query, "resultCount") {
			return []graph.Record{{"resultCount": int64(7)}}, nil
		}
		return []graph.Record{{"low": 60000.0, "high": 150000.0}}, nil
	}
	cnt := newCounterWithRun(run, search.ProficiencyBuckets{})
	cnt.queries = maxCountQueries - 1

	// The count probe takes the last budget slot; the salary detail query
	// degrades instead of running over budget.
	explanations, degraded, err := buildExplanations(context.Background(), cnt,
		[]TestableConstraint{salaryConstraint(100000)})
	require.NoError(t, err)
	assert.True(t, degraded)
	require.Len(t, explanations, 1)
	assert.Equal(t, 7, explanations[0].MatchesAlone)
	assert.Empty(t, explanations[0].Detail)
	assert.Equal(t, maxCountQueries, cnt.queryCount())
}
