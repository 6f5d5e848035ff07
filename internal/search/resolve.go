package search

import (
	"context"
	"fmt"
	"log"
	"sort"

	"engineer-search/internal/graph"
)

// skillExpansionQuery unions two traversals from the original node: BELONGS_TO
// at depth 1.. (role-based membership) and CHILD_OF at depth 0.. (structural
// hierarchy, so a leaf request resolves to itself). Categories never count as
// leaves.
const skillExpansionQuery = `
MATCH (orig:Skill)
WHERE orig.id = $identifier OR toLower(orig.name) = toLower($identifier)
OPTIONAL MATCH (member:Skill)-[:BELONGS_TO*1..]->(orig)
WITH orig, collect(DISTINCT member) AS members
OPTIONAL MATCH (child:Skill)-[:CHILD_OF*0..]->(orig)
WITH orig, members + collect(DISTINCT child) AS related
UNWIND related AS s
WITH orig, s
WHERE s IS NOT NULL AND s.isCategory = false
RETURN orig.id AS originalId,
       orig.name AS originalName,
       collect(DISTINCT {id: s.id, name: s.name}) AS leaves`

// SkillResolution is the output of expanding a set of skill requirements.
type SkillResolution struct {
	Requirements []ResolvedSkillRequirement
	// LeafSkillIDs is the flat deduplicated union of every expanded set.
	LeafSkillIDs []string
	// Unresolved lists identifiers whose graph node is missing.
	Unresolved []string
}

// ResolveSkills expands each requirement's identifier into its leaf-skill set.
// Requirements without an explicit proficiency get defaultMin.
func ResolveSkills(ctx context.Context, runner graph.Runner, requirements []SkillRequirement, defaultMin Proficiency) (*SkillResolution, error) {
	res := &SkillResolution{}
	seenLeaf := map[string]bool{}

	for _, sr := range requirements {
		records, err := runner.Collect(ctx, skillExpansionQuery, map[string]any{
			"identifier": sr.Skill,
		})
		if err != nil {
			return nil, &SearchError{Err: fmt.Errorf("skill expansion for %q: %w", sr.Skill, err)}
		}
		if len(records) == 0 {
			log.Printf("[Resolver] Unresolved skill identifier: %s", sr.Skill)
			res.Unresolved = append(res.Unresolved, sr.Skill)
			continue
		}

		rec := records[0]
		resolved := ResolvedSkillRequirement{
			OriginalIdentifier:      sr.Skill,
			OriginalSkillID:         graph.String(rec["originalId"]),
			OriginalSkillName:       graph.String(rec["originalName"]),
			SkillIDToName:           map[string]string{},
			MinProficiency:          sr.MinProficiency,
			PreferredMinProficiency: sr.PreferredMinProficiency,
		}
		if resolved.MinProficiency == "" {
			resolved.MinProficiency = defaultMin
		}

		for _, leaf := range graph.MapSlice(rec["leaves"]) {
			id := graph.String(leaf["id"])
			if id == "" || resolved.SkillIDToName[id] != "" {
				continue
			}
			resolved.SkillIDToName[id] = graph.String(leaf["name"])
			resolved.ExpandedSkillIDs = append(resolved.ExpandedSkillIDs, id)
			if !seenLeaf[id] {
				seenLeaf[id] = true
				res.LeafSkillIDs = append(res.LeafSkillIDs, id)
			}
		}
		sort.Strings(resolved.ExpandedSkillIDs)

		res.Requirements = append(res.Requirements, resolved)
	}

	sort.Strings(res.LeafSkillIDs)
	return res, nil
}

// ProficiencyBuckets splits every expanded leaf across the three proficiency
// buckets the query encodes. A leaf reached by multiple requirements inherits
// the strictest minimum.
type ProficiencyBuckets struct {
	Learning   []string
	Proficient []string
	Expert     []string
}

func BucketSkills(requirements []ResolvedSkillRequirement) ProficiencyBuckets {
	strictest := map[string]Proficiency{}
	for _, req := range requirements {
		for _, id := range req.ExpandedSkillIDs {
			if current, ok := strictest[id]; !ok || req.MinProficiency.Rank() > current.Rank() {
				strictest[id] = req.MinProficiency
			}
		}
	}

	var buckets ProficiencyBuckets
	ids := make([]string, 0, len(strictest))
	for id := range strictest {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		switch strictest[id] {
		case ProficiencyExpert:
			buckets.Expert = append(buckets.Expert, id)
		case ProficiencyProficient:
			buckets.Proficient = append(buckets.Proficient, id)
		default:
			buckets.Learning = append(buckets.Learning, id)
		}
	}
	return buckets
}
