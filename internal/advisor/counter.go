package advisor

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"engineer-search/internal/graph"
	"engineer-search/internal/search"
)

// maxCountQueries bounds one advisor run's consistency probes. Exceeding it
// degrades the advice rather than stalling the search response.
const maxCountQueries = 60

var errQueryBudget = errors.New("advisor: count query budget exhausted")

// queryFunc runs one graph query. The production implementation opens a fresh
// session per call so probes can run concurrently.
type queryFunc func(ctx context.Context, query string, params map[string]any) ([]graph.Record, error)

// counter runs consistency probes: it counts the engineers satisfying a
// constraint subset, reusing the main query's predicate shapes. Results are
// memoised; safe for concurrent use.
type counter struct {
	run     queryFunc
	buckets search.ProficiencyBuckets

	mu      sync.Mutex
	cache   map[string]int
	queries int
}

func newCounter(db *graph.DB, buckets search.ProficiencyBuckets) *counter {
	run := func(ctx context.Context, query string, params map[string]any) ([]graph.Record, error) {
		session := db.Session(ctx)
		defer session.Close(ctx)
		return session.Collect(ctx, query, params)
	}
	return newCounterWithRun(run, buckets)
}

func newCounterWithRun(run queryFunc, buckets search.ProficiencyBuckets) *counter {
	return &counter{run: run, buckets: buckets, cache: map[string]int{}}
}

func (c *counter) count(ctx context.Context, set []TestableConstraint) (int, error) {
	return c.countWith(ctx, set, c.buckets, "")
}

// countWith probes a subset under possibly modified proficiency buckets. salt
// distinguishes bucket variants in the cache.
func (c *counter) countWith(ctx context.Context, set []TestableConstraint, buckets search.ProficiencyBuckets, salt string) (int, error) {
	key := salt + "|" + setKey(set)

	c.mu.Lock()
	if n, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return n, nil
	}
	if c.queries >= maxCountQueries {
		c.mu.Unlock()
		return 0, errQueryBudget
	}
	c.queries++
	c.mu.Unlock()

	var clauses []search.PropertyClause
	var skillGroups [][]string
	var derivedIDs []string
	for _, tc := range set {
		clauses = append(clauses, tc.Clauses...)
		if tc.isSkill() {
			skillGroups = append(skillGroups, tc.SkillGroup)
		}
		derivedIDs = append(derivedIDs, tc.DerivedIDs...)
	}

	query, params, err := search.BuildSkillFilterCountQuery(clauses, skillGroups, derivedIDs, buckets)
	if err != nil {
		return 0, err
	}

	records, err := c.run(ctx, query, params)
	if err != nil {
		return 0, err
	}
	n := 0
	if len(records) > 0 {
		n = graph.Int(records[0]["resultCount"])
	}

	c.mu.Lock()
	c.cache[key] = n
	c.mu.Unlock()
	return n, nil
}

// runCounted charges one query against the budget before running. The
// explanation helpers go through here so queryCount reflects every graph
// round trip the advisor makes, not just the consistency probes.
func (c *counter) runCounted(ctx context.Context, query string, params map[string]any) ([]graph.Record, error) {
	c.mu.Lock()
	if c.queries >= maxCountQueries {
		c.mu.Unlock()
		return nil, errQueryBudget
	}
	c.queries++
	c.mu.Unlock()
	return c.run(ctx, query, params)
}

func (c *counter) queryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queries
}

// setKey is a canonical identity for a constraint subset.
func setKey(set []TestableConstraint) string {
	ids := make([]string, 0, len(set))
	for _, tc := range set {
		ids = append(ids, tc.ID)
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}
