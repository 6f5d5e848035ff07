package advisor

import (
	"context"
	"strings"
)

// ConflictSet is one minimal set of constraints that together leave fewer
// matches than the insufficiency threshold. Removing any single member makes
// the remainder consistent again.
type ConflictSet struct {
	ConstraintIDs []string `json:"constraintIds"`
	Description   string   `json:"description"`
}

// findConflicts locates up to maxSets minimal conflict sets via QuickXPlain,
// diversified by re-running with each found member excluded (hitting-set
// branching). Returns the sets and whether the search was cut short.
func findConflicts(ctx context.Context, cnt *counter, constraints []TestableConstraint, threshold, maxSets int) ([][]TestableConstraint, bool, error) {
	inconsistent := func(set []TestableConstraint) (bool, error) {
		n, err := cnt.count(ctx, set)
		if err != nil {
			return false, err
		}
		return n < threshold, nil
	}

	var sets [][]TestableConstraint
	seen := map[string]bool{}

	type node struct{ excluded map[string]bool }
	queue := []node{{excluded: map[string]bool{}}}

	for len(queue) > 0 && len(sets) < maxSets {
		n := queue[0]
		queue = queue[1:]

		remaining := make([]TestableConstraint, 0, len(constraints))
		for _, tc := range constraints {
			if !n.excluded[tc.ID] {
				remaining = append(remaining, tc)
			}
		}
		if len(remaining) == 0 {
			continue
		}

		inc, err := inconsistent(remaining)
		if err == errQueryBudget {
			return sets, true, nil
		}
		if err != nil {
			return nil, false, err
		}
		if !inc {
			continue
		}

		mcs, err := quickXplain(ctx, cnt, threshold, nil, nil, remaining)
		if err == errQueryBudget {
			return sets, true, nil
		}
		if err != nil {
			return nil, false, err
		}

		if key := setKey(mcs); !seen[key] {
			seen[key] = true
			sets = append(sets, mcs)
		}

		for _, member := range mcs {
			excluded := map[string]bool{member.ID: true}
			for id := range n.excluded {
				excluded[id] = true
			}
			queue = append(queue, node{excluded: excluded})
		}
	}

	return sets, false, nil
}

// quickXplain is the standard recursive minimisation: split the candidate
// constraints in half, find which half (against the accumulated background)
// still causes inconsistency, and recurse into it.
func quickXplain(ctx context.Context, cnt *counter, threshold int, background, delta, constraints []TestableConstraint) ([]TestableConstraint, error) {
	if len(delta) > 0 {
		n, err := cnt.count(ctx, background)
		if err != nil {
			return nil, err
		}
		if n < threshold {
			return []TestableConstraint{}, nil
		}
	}
	if len(constraints) == 1 {
		return constraints, nil
	}

	k := len(constraints) / 2
	c1, c2 := constraints[:k], constraints[k:]

	d2, err := quickXplain(ctx, cnt, threshold, concat(background, c1), c1, c2)
	if err != nil {
		return nil, err
	}
	d1, err := quickXplain(ctx, cnt, threshold, concat(background, d2), d2, c1)
	if err != nil {
		return nil, err
	}
	return concat(d1, d2), nil
}

func concat(a, b []TestableConstraint) []TestableConstraint {
	out := make([]TestableConstraint, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func describeConflict(set []TestableConstraint) string {
	parts := make([]string, 0, len(set))
	for _, tc := range set {
		parts = append(parts, tc.Description)
	}
	return "these constraints cannot be satisfied together: " + strings.Join(parts, "; ")
}
