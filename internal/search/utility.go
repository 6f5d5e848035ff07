package search

import (
	"math"
	"sort"
	"strings"

	"engineer-search/internal/knowledge"
)

// Scorer applies the utility function bank: U(v) = sum of w_j * f_j(v_j) over
// the configured weights, with every f_j normalised to [0,1] before weighting.
type Scorer struct {
	kb *knowledge.Config
}

func NewScorer(kb *knowledge.Config) *Scorer {
	return &Scorer{kb: kb}
}

// Score computes utility scores and breakdowns for every match, then sorts by
// utility descending (ties: yearsExperience desc, then name asc).
func (s *Scorer) Score(matches []EngineerMatch, crit *ExpandedCriteria, skills *SkillResolution, preferred *SkillResolution) []EngineerMatch {
	for i := range matches {
		matches[i].UtilityScore, matches[i].Breakdown = s.scoreOne(&matches[i], crit, skills, preferred)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].UtilityScore != matches[j].UtilityScore {
			return matches[i].UtilityScore > matches[j].UtilityScore
		}
		if matches[i].YearsExperience != matches[j].YearsExperience {
			return matches[i].YearsExperience > matches[j].YearsExperience
		}
		return matches[i].Name < matches[j].Name
	})

	return matches
}

func (s *Scorer) scoreOne(m *EngineerMatch, crit *ExpandedCriteria, skills *SkillResolution, preferred *SkillResolution) (float64, ScoreBreakdown) {
	w := s.kb.Weights
	p := s.kb.Utility

	breakdown := ScoreBreakdown{
		Scores:            map[string]float64{},
		RawScores:         map[string]float64{},
		PreferenceMatches: map[string]float64{},
	}
	total := 0.0

	record := func(name string, raw, weight float64) {
		raw = clamp01(raw)
		weighted := raw * weight
		total += weighted
		breakdown.RawScores[name] = raw
		if weighted != 0 {
			breakdown.Scores[name] = weighted
		}
	}

	requestedSkills := 0
	if skills != nil {
		requestedSkills = len(skills.Requirements)
	}

	// skillMatch: coverage plus a mean proficiency bonus, capped at 1.
	// Neutral 0.5 when no skills were requested.
	if requestedSkills == 0 {
		record("skillMatch", 0.5, w.SkillMatch)
		record("confidence", 0.5, w.Confidence)
	} else {
		coverage := math.Min(float64(m.MatchedSkillCount)/float64(requestedSkills), 1)
		bonus := 0.0
		if len(m.MatchedSkills) > 0 {
			sum := 0.0
			for _, sk := range m.MatchedSkills {
				switch sk.ProficiencyLevel {
				case ProficiencyExpert:
					sum += p.ExpertBonus
				case ProficiencyProficient:
					sum += p.ProficientBonus
				}
			}
			bonus = sum / float64(len(m.MatchedSkills))
		}
		record("skillMatch", math.Min(coverage+bonus, 1), w.SkillMatch)

		span := p.ConfidenceMax - p.ConfidenceMin
		if span <= 0 {
			span = 1
		}
		record("confidence", (m.AvgConfidence-p.ConfidenceMin)/span, w.Confidence)
	}

	// experience: logarithmic, capped at 1.
	record("experience",
		math.Log(1+m.YearsExperience)/math.Log(1+p.MaxYearsExperience), w.Experience)

	// preferredSkillsMatch: ratio of satisfied preferred requirements, with
	// derived boost skills counting fractionally at their boost strength.
	matchedLeafSet := map[string]bool{}
	for _, id := range m.matchedPreferredSkillIDs {
		matchedLeafSet[id] = true
	}
	preferredRequested := 0.0
	preferredMatched := 0.0
	if preferred != nil {
		for _, req := range preferred.Requirements {
			preferredRequested++
			for _, id := range req.ExpandedSkillIDs {
				if matchedLeafSet[id] {
					preferredMatched++
					break
				}
			}
		}
	}
	for skillID, strength := range crit.DerivedSkillBoosts {
		preferredRequested++
		if matchedLeafSet[skillID] {
			preferredMatched += strength
			breakdown.PreferenceMatches["boost:"+skillID] = strength
		}
	}
	if preferredRequested > 0 {
		raw := math.Min(preferredMatched/preferredRequested, 1) * p.PreferredSkillsMaxMatch
		record("preferredSkillsMatch", raw, w.PreferredSkills)
		if preferredMatched > 0 {
			breakdown.PreferenceMatches["preferredSkills"] = preferredMatched
		}
	}

	// teamFocusMatch: share of aligned skills the engineer holds.
	if len(crit.AlignedSkillIDs) > 0 {
		matchedAligned := 0
		for _, id := range crit.AlignedSkillIDs {
			if matchedLeafSet[id] {
				matchedAligned++
			}
		}
		raw := math.Min(float64(matchedAligned)/float64(len(crit.AlignedSkillIDs)), 1) * p.TeamFocusMaxMatch
		record("teamFocusMatch", raw, w.TeamFocus)
		if matchedAligned > 0 {
			breakdown.PreferenceMatches["teamFocus"] = float64(matchedAligned)
		}
	}

	// relatedSkillsMatch: diminishing returns on related-but-unmatched skills.
	if count := len(m.UnmatchedRelatedSkills); count > 0 && p.RelatedSkillsMaxMatch > 0 {
		raw := (1 - math.Exp(-float64(count)/p.RelatedSkillsMaxMatch)) * p.RelatedSkillsMaxMatch
		record("relatedSkillsMatch", raw/p.RelatedSkillsMaxMatch, w.RelatedSkills)
	}

	// Preferred domain matches.
	if n := len(crit.PreferredBusinessDomains); n > 0 {
		met := countMeetsPreferred(m.BusinessDomains)
		raw := math.Min(float64(met)/float64(n), 1) * p.PreferredDomainMaxMatch
		record("preferredBusinessDomainMatch", raw, w.PreferredBusinessDomain)
		if met > 0 {
			breakdown.PreferenceMatches["preferredBusinessDomains"] = float64(met)
		}
	}
	if n := len(crit.PreferredTechnicalDomains); n > 0 {
		met := countMeetsPreferred(m.TechnicalDomains)
		raw := math.Min(float64(met)/float64(n), 1) * p.PreferredDomainMaxMatch
		record("preferredTechnicalDomainMatch", raw, w.PreferredTechnicalDomain)
		if met > 0 {
			breakdown.PreferenceMatches["preferredTechnicalDomains"] = float64(met)
		}
	}

	// startTimelineMatch: full at or before the preferred timeline, linear
	// decay to zero approaching the required one. Zero when only the required
	// timeline constrains.
	if crit.PreferredMaxStartTime != "" {
		engineerIdx := TimelineIndex(m.StartTimeline)
		preferredIdx := TimelineIndex(crit.PreferredMaxStartTime)
		requiredIdx := TimelineIndex(crit.RequiredMaxStartTime)
		raw := 0.0
		switch {
		case engineerIdx < 0:
			raw = 0
		case engineerIdx <= preferredIdx:
			raw = 1
		case requiredIdx > preferredIdx:
			raw = float64(requiredIdx-engineerIdx) / float64(requiredIdx-preferredIdx)
		}
		record("startTimelineMatch", raw, w.StartTimeline)
	}

	// preferredTimezoneMatch: position-based over the preference list.
	if len(crit.PreferredTimezones) > 0 {
		for i, tz := range crit.PreferredTimezones {
			prefix := strings.TrimSuffix(tz, "*")
			if strings.HasPrefix(m.Timezone, prefix) {
				raw := (1 - float64(i)/float64(len(crit.PreferredTimezones))) * p.PreferredTimezoneMaxMatch
				record("preferredTimezoneMatch", raw, w.PreferredTimezone)
				breakdown.PreferenceMatches["preferredTimezone"] = float64(i + 1)
				break
			}
		}
	}

	// preferredSeniorityMatch: binary on the level's minimum years.
	if crit.PreferredSeniorityLevel != "" {
		if r, ok := s.kb.SeniorityRanges[crit.PreferredSeniorityLevel]; ok {
			if m.YearsExperience >= float64(r.MinYears) {
				record("preferredSeniorityMatch", p.PreferredSeniorityMax, w.PreferredSeniority)
				breakdown.PreferenceMatches["preferredSeniority"] = 1
			}
		}
	}

	// budgetMatch: full within maxBudget (baseline, not surfaced), partial in
	// the stretch band.
	if crit.MaxBudget != nil {
		if m.Salary <= *crit.MaxBudget {
			total += 1 * w.Budget
			breakdown.RawScores["budgetMatch"] = 1
		} else if crit.StretchBudget != nil && m.Salary <= *crit.StretchBudget {
			record("budgetMatch", p.StretchBudgetScore, w.Budget)
		}
	}

	if len(breakdown.PreferenceMatches) == 0 {
		breakdown.PreferenceMatches = nil
	}
	breakdown.Total = total
	return total, breakdown
}

func countMeetsPreferred(domains []MatchedDomain) int {
	n := 0
	for _, d := range domains {
		if d.MeetsPreferred {
			n++
		}
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
