package search

import (
	"engineer-search/internal/graph"
)

// ParseRecords maps raw query rows into typed engineer matches. Skill
// categorisation depends on the search mode:
//
//   - browse (no skill filter, no team focus): both skill arrays empty
//   - team-focus-only: every collected aligned skill is a match
//   - skill-filtered: direct matches passing every constraint check are
//     matched; everything else collected is unmatched-related with its
//     violation list
//
// Integer normalisation happens here: downstream code sees plain numbers only.
func ParseRecords(records []graph.Record, in *QueryInput) ([]EngineerMatch, int) {
	requiredBusiness := domainIDSet(in.RequiredBusiness)
	preferredBusiness := domainMinYears(in.PreferredBusiness)
	requiredTechnical := domainIDSet(in.RequiredTechnical)
	preferredTechnical := domainMinYears(in.PreferredTechnical)

	matches := make([]EngineerMatch, 0, len(records))
	totalCount := 0

	for _, rec := range records {
		totalCount = graph.Int(rec["totalCount"])

		m := EngineerMatch{
			ID:                       graph.String(rec["id"]),
			Name:                     graph.String(rec["name"]),
			Headline:                 graph.String(rec["headline"]),
			YearsExperience:          graph.Float(rec["yearsExperience"]),
			Timezone:                 graph.String(rec["timezone"]),
			Salary:                   graph.Float(rec["salary"]),
			StartTimeline:            graph.String(rec["startTimeline"]),
			MatchedSkills:            []CollectedSkill{},
			UnmatchedRelatedSkills:   []CollectedSkill{},
			matchedPreferredSkillIDs: graph.StringSlice(rec["matchedPreferredSkillIds"]),
		}

		collected := parseCollectedSkills(rec["allRelevantSkills"])

		switch {
		case in.SkillFilterMode():
			m.MatchedSkillCount = graph.Int(rec["matchedSkillCount"])
			m.AvgConfidence = graph.Float(rec["avgConfidence"])
			for _, sk := range collected {
				if sk.MatchType == MatchDirect && sk.MeetsProficiency && sk.MeetsConfidence {
					m.MatchedSkills = append(m.MatchedSkills, sk)
					continue
				}
				if !sk.MeetsProficiency {
					sk.ConstraintViolations = append(sk.ConstraintViolations, ViolationProficiency)
				}
				if !sk.MeetsConfidence {
					sk.ConstraintViolations = append(sk.ConstraintViolations, ViolationConfidence)
				}
				m.UnmatchedRelatedSkills = append(m.UnmatchedRelatedSkills, sk)
			}
		case len(in.Crit.AlignedSkillIDs) > 0:
			// Team-focus-only mode: everything collected is aligned.
			m.MatchedSkills = collected
			m.MatchedSkillCount = len(collected)
			m.AvgConfidence = graph.Float(rec["avgConfidence"])
		default:
			// Skill-cleared browsing: no skill evidence at all.
			m.MatchedSkillCount = 0
			m.AvgConfidence = 0
		}

		m.BusinessDomains = parseDomains(rec["businessDomains"], requiredBusiness, preferredBusiness)
		m.TechnicalDomains = parseDomains(rec["technicalDomains"], requiredTechnical, preferredTechnical)

		matches = append(matches, m)
	}

	return matches, totalCount
}

func parseCollectedSkills(v any) []CollectedSkill {
	rows := graph.MapSlice(v)
	out := make([]CollectedSkill, 0, len(rows))
	for _, row := range rows {
		out = append(out, CollectedSkill{
			SkillID:          graph.String(row["skillId"]),
			SkillName:        graph.String(row["skillName"]),
			ProficiencyLevel: Proficiency(graph.String(row["proficiencyLevel"])),
			ConfidenceScore:  graph.Float(row["confidenceScore"]),
			YearsUsed:        graph.Float(row["yearsUsed"]),
			MatchType:        graph.String(row["matchType"]),
			MeetsProficiency: graph.Bool(row["meetsProficiency"]),
			MeetsConfidence:  graph.Bool(row["meetsConfidence"]),
		})
	}
	return out
}

func parseDomains(v any, required map[string]bool, preferred map[string]*int) []MatchedDomain {
	rows := graph.MapSlice(v)
	out := make([]MatchedDomain, 0, len(rows))
	for _, row := range rows {
		d := MatchedDomain{
			DomainID:   graph.String(row["domainId"]),
			DomainName: graph.String(row["domainName"]),
			Years:      graph.Float(row["years"]),
			Source:     graph.String(row["source"]),
		}
		d.MeetsRequired = required[d.DomainID]
		if minYears, ok := preferred[d.DomainID]; ok {
			d.MeetsPreferred = minYears == nil || d.Years >= float64(*minYears)
		}
		out = append(out, d)
	}
	return out
}

// domainIDSet flattens a resolution into a membership set. The query already
// enforced min-years on required domains, so membership alone decides the flag.
func domainIDSet(res *DomainResolution) map[string]bool {
	set := map[string]bool{}
	if res == nil {
		return set
	}
	for _, id := range res.FlattenIDs() {
		set[id] = true
	}
	return set
}

// domainMinYears flattens a preferred resolution into an id -> preferred
// min-years map (nil = no years requirement).
func domainMinYears(res *DomainResolution) map[string]*int {
	out := map[string]*int{}
	if res == nil {
		return out
	}
	for _, d := range res.Domains {
		for _, id := range d.ExpandedDomainIDs {
			if existing, ok := out[id]; !ok || existing != nil && d.PreferredMinYears == nil {
				out[id] = d.PreferredMinYears
			}
		}
	}
	return out
}
