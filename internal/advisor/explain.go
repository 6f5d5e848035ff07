package advisor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"engineer-search/internal/graph"
)

// ConstraintExplanation quantifies one constraint against the dataset: how
// many engineers satisfy it on its own, plus a field-specific detail drawn
// from the data.
type ConstraintExplanation struct {
	ConstraintID string `json:"constraintId"`
	Description  string `json:"description"`
	MatchesAlone int    `json:"matchesAlone"`
	Detail       string `json:"detail,omitempty"`
}

// buildExplanations probes every constraint in parallel. Budget exhaustion on
// an individual probe degrades that entry instead of failing the batch.
func buildExplanations(ctx context.Context, cnt *counter, constraints []TestableConstraint) ([]ConstraintExplanation, bool, error) {
	out := make([]ConstraintExplanation, len(constraints))
	var mu sync.Mutex
	degraded := false

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, tc := range constraints {
		g.Go(func() error {
			e := ConstraintExplanation{ConstraintID: tc.ID, Description: tc.Description}

			n, err := cnt.count(gctx, []TestableConstraint{tc})
			if err == errQueryBudget {
				mu.Lock()
				degraded = true
				mu.Unlock()
				out[i] = e
				return nil
			}
			if err != nil {
				return err
			}
			e.MatchesAlone = n

			detail, err := detailFor(gctx, cnt, tc, n)
			if err == errQueryBudget {
				mu.Lock()
				degraded = true
				mu.Unlock()
				out[i] = e
				return nil
			}
			if err != nil {
				return err
			}
			e.Detail = detail

			out[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	return out, degraded, nil
}

func detailFor(ctx context.Context, cnt *counter, tc TestableConstraint, matchesAlone int) (string, error) {
	switch tc.Field {
	case "salary":
		low, high, err := salaryRange(ctx, cnt)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("engineer salaries range from %.0f to %.0f", low, high), nil

	case "startTimeline":
		dist, err := valueDistribution(ctx, cnt, "e.startTimeline")
		if err != nil {
			return "", err
		}
		return "start timelines in the dataset: " + dist, nil

	case "timezone":
		dist, err := valueDistribution(ctx, cnt, "split(e.timezone, '/')[0]")
		if err != nil {
			return "", err
		}
		return "timezone regions in the dataset: " + dist, nil

	case "requiredSkills", "derivedSkills":
		ids := tc.SkillGroup
		if tc.isDerived() {
			ids = tc.DerivedIDs
		}
		anyLevel, err := holdersAtAnyLevel(ctx, cnt, ids)
		if err != nil {
			return "", err
		}
		if anyLevel > matchesAlone {
			return fmt.Sprintf("%d engineers hold this skill at any proficiency, %d meet the requirement", anyLevel, matchesAlone), nil
		}
		return fmt.Sprintf("%d engineers hold this skill", anyLevel), nil
	}
	return "", nil
}

func salaryRange(ctx context.Context, cnt *counter) (float64, float64, error) {
	records, err := cnt.runCounted(ctx,
		"MATCH (e:Engineer) RETURN min(e.salary) AS low, max(e.salary) AS high", nil)
	if err != nil || len(records) == 0 {
		return 0, 0, err
	}
	return graph.Float(records[0]["low"]), graph.Float(records[0]["high"]), nil
}

func valueDistribution(ctx context.Context, cnt *counter, expr string) (string, error) {
	records, err := cnt.runCounted(ctx,
		fmt.Sprintf("MATCH (e:Engineer) RETURN %s AS value, count(*) AS n ORDER BY n DESC", expr), nil)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(records))
	for _, rec := range records {
		parts = append(parts, fmt.Sprintf("%s=%d", graph.String(rec["value"]), graph.Int(rec["n"])))
	}
	return strings.Join(parts, ", "), nil
}

func holdersAtAnyLevel(ctx context.Context, cnt *counter, skillIDs []string) (int, error) {
	sorted := append([]string(nil), skillIDs...)
	sort.Strings(sorted)
	records, err := cnt.runCounted(ctx,
		`MATCH (e:Engineer)-[:HAS]->(:UserSkill)-[:FOR]->(s:Skill)
WHERE s.id IN $skillIds
RETURN count(DISTINCT e) AS n`,
		map[string]any{"skillIds": sorted})
	if err != nil || len(records) == 0 {
		return 0, err
	}
	return graph.Int(records[0]["n"]), nil
}
