package search

import (
	"context"
	"fmt"
	"log"
	"sort"

	"engineer-search/internal/graph"
)

// Domain labels the resolver may traverse. Labels are interpolated into the
// query text, so they are restricted to this closed set.
const (
	LabelBusinessDomain  = "BusinessDomain"
	LabelTechnicalDomain = "TechnicalDomain"
)

const domainExpansionQueryTemplate = `
MATCH (orig:%[1]s)
WHERE orig.id = $identifier OR toLower(orig.name) = toLower($identifier)
OPTIONAL MATCH (sub:%[1]s)-[:PART_OF*0..]->(orig)
WITH orig, collect(DISTINCT sub.id) AS subIds
RETURN orig.id AS originalId, subIds`

// DomainResolution is the expansion of a list of domain requirements.
type DomainResolution struct {
	Domains    []ResolvedDomain
	Unresolved []string
}

// FlattenIDs returns the deduplicated union of every expanded set.
func (r *DomainResolution) FlattenIDs() []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range r.Domains {
		for _, id := range d.ExpandedDomainIDs {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Strings(out)
	return out
}

// ResolveDomains expands each requirement via the domain hierarchy. The
// expanded set always includes the domain itself (PART_OF depth 0).
func ResolveDomains(ctx context.Context, runner graph.Runner, label string, requirements []DomainRequirement) (*DomainResolution, error) {
	if label != LabelBusinessDomain && label != LabelTechnicalDomain {
		return nil, fmt.Errorf("unknown domain label %q", label)
	}
	query := fmt.Sprintf(domainExpansionQueryTemplate, label)

	res := &DomainResolution{}
	for _, dr := range requirements {
		records, err := runner.Collect(ctx, query, map[string]any{"identifier": dr.Domain})
		if err != nil {
			return nil, &SearchError{Err: fmt.Errorf("domain expansion for %q: %w", dr.Domain, err)}
		}
		if len(records) == 0 {
			log.Printf("[Resolver] Unresolved %s identifier: %s", label, dr.Domain)
			res.Unresolved = append(res.Unresolved, dr.Domain)
			continue
		}

		rec := records[0]
		expanded := graph.StringSlice(rec["subIds"])
		sort.Strings(expanded)
		res.Domains = append(res.Domains, ResolvedDomain{
			DomainID:          graph.String(rec["originalId"]),
			ExpandedDomainIDs: expanded,
			MinYears:          dr.MinYears,
			PreferredMinYears: dr.PreferredMinYears,
		})
	}
	return res, nil
}
