package advisor

import (
	"context"
	"fmt"
	"sort"

	"engineer-search/internal/search"
)

// Suggestion actions.
const (
	ActionRelax            = "relax"
	ActionRemove           = "remove"
	ActionLowerProficiency = "lower_proficiency"
	ActionMoveToPreferred  = "move_to_preferred"
	ActionOverrideRule     = "override_rule"
)

// Suggestion is one concrete request edit and the match count it would yield.
// SuggestedValue is null for removals.
type Suggestion struct {
	Action           string `json:"action"`
	TargetField      string `json:"targetField"`
	ConstraintID     string `json:"constraintId"`
	SuggestedValue   any    `json:"suggestedValue"`
	ResultingMatches int    `json:"resultingMatches"`
	Description      string `json:"description"`
}

// stretchFactor is how far the salary relaxation loosens the ceiling.
const stretchFactor = 1.2

// suggest generates relaxation candidates for each constraint, probes the
// resulting match counts, and keeps only edits that beat the baseline. Output
// is sorted best first, ties broken by constraint id then action for
// determinism.
func suggest(ctx context.Context, cnt *counter, constraints, candidates []TestableConstraint, skills *search.SkillResolution, baseline int) ([]Suggestion, bool, error) {
	var out []Suggestion
	degraded := false

	probe := func(set []TestableConstraint, buckets search.ProficiencyBuckets, salt string, s Suggestion) error {
		n, err := cnt.countWith(ctx, set, buckets, salt)
		if err == errQueryBudget {
			degraded = true
			return nil
		}
		if err != nil {
			return err
		}
		if n > baseline {
			s.ResultingMatches = n
			out = append(out, s)
		}
		return nil
	}

	for _, tc := range candidates {
		if degraded {
			break
		}
		variants, err := variantsFor(tc, constraints, skills, cnt.buckets)
		if err != nil {
			return nil, false, err
		}
		for _, v := range variants {
			if err := probe(v.set, v.buckets, v.salt, v.suggestion); err != nil {
				return nil, false, err
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ResultingMatches != out[j].ResultingMatches {
			return out[i].ResultingMatches > out[j].ResultingMatches
		}
		if out[i].ConstraintID != out[j].ConstraintID {
			return out[i].ConstraintID < out[j].ConstraintID
		}
		return out[i].Action < out[j].Action
	})

	return out, degraded, nil
}

type variant struct {
	set        []TestableConstraint
	buckets    search.ProficiencyBuckets
	salt       string
	suggestion Suggestion
}

func variantsFor(tc TestableConstraint, constraints []TestableConstraint, skills *search.SkillResolution, buckets search.ProficiencyBuckets) ([]variant, error) {
	switch {
	case tc.isDerived():
		return []variant{{
			set:     without(constraints, tc.ID),
			buckets: buckets,
			suggestion: Suggestion{
				Action:         ActionOverrideRule,
				TargetField:    "overriddenRuleIds",
				ConstraintID:   tc.ID,
				SuggestedValue: tc.RuleID,
				Description:    fmt.Sprintf("override inference rule %q (%s)", tc.RuleID, tc.Description),
			},
		}}, nil

	case tc.isSkill():
		return skillVariants(tc, constraints, skills, buckets), nil

	default:
		return propertyVariants(tc, constraints, buckets), nil
	}
}

func skillVariants(tc TestableConstraint, constraints []TestableConstraint, skills *search.SkillResolution, buckets search.ProficiencyBuckets) []variant {
	var out []variant

	if lowered := lowerProficiency(tc.SkillMin); lowered != "" && skills != nil {
		reqs := make([]search.ResolvedSkillRequirement, len(skills.Requirements))
		copy(reqs, skills.Requirements)
		for i := range reqs {
			if reqs[i].OriginalIdentifier == tc.OriginalIdentifier {
				reqs[i].MinProficiency = lowered
			}
		}
		out = append(out, variant{
			set:     constraints,
			buckets: search.BucketSkills(reqs),
			salt:    tc.ID + ":" + string(lowered),
			suggestion: Suggestion{
				Action:         ActionLowerProficiency,
				TargetField:    "requiredSkills",
				ConstraintID:   tc.ID,
				SuggestedValue: string(lowered),
				Description:    fmt.Sprintf("lower the minimum proficiency for %s to %s", tc.OriginalIdentifier, lowered),
			},
		})
	}

	out = append(out, variant{
		set:     without(constraints, tc.ID),
		buckets: buckets,
		suggestion: Suggestion{
			Action:         ActionMoveToPreferred,
			TargetField:    "preferredSkills",
			ConstraintID:   tc.ID,
			SuggestedValue: tc.OriginalIdentifier,
			Description:    fmt.Sprintf("make %s preferred instead of required", tc.OriginalIdentifier),
		},
	})
	out = append(out, variant{
		set:     without(constraints, tc.ID),
		buckets: buckets,
		suggestion: Suggestion{
			Action:       ActionRemove,
			TargetField:  "requiredSkills",
			ConstraintID: tc.ID,
			Description:  fmt.Sprintf("drop the %s requirement", tc.OriginalIdentifier),
		},
	})
	return out
}

func propertyVariants(tc TestableConstraint, constraints []TestableConstraint, buckets search.ProficiencyBuckets) []variant {
	switch tc.Field {
	case "salary":
		ceiling, ok := tc.Clauses[0].ParamValue.(float64)
		if !ok {
			return nil
		}
		relaxed := ceiling * stretchFactor
		replacement := tc
		replacement.Clauses = []search.PropertyClause{{
			Field:      "salary",
			Clause:     tc.Clauses[0].Clause,
			ParamName:  tc.Clauses[0].ParamName,
			ParamValue: relaxed,
		}}
		return []variant{{
			set:     replace(constraints, tc.ID, replacement),
			buckets: buckets,
			salt:    fmt.Sprintf("%s:%.0f", tc.ID, relaxed),
			suggestion: Suggestion{
				Action:         ActionRelax,
				TargetField:    "maxBudget",
				ConstraintID:   tc.ID,
				SuggestedValue: relaxed,
				Description:    fmt.Sprintf("raise the budget ceiling to %.0f", relaxed),
			},
		}}

	case "startTimeline":
		current, ok := tc.Clauses[0].ParamValue.([]string)
		if !ok || len(current) >= len(search.StartTimelineOrder) {
			return nil
		}
		var out []variant
		for idx := len(current); idx < len(search.StartTimelineOrder); idx++ {
			timeline := search.StartTimelineOrder[idx]
			replacement := tc
			replacement.Clauses = []search.PropertyClause{{
				Field:      "startTimeline",
				Clause:     tc.Clauses[0].Clause,
				ParamName:  tc.Clauses[0].ParamName,
				ParamValue: search.StartTimelineOrder[:idx+1],
			}}
			out = append(out, variant{
				set:     replace(constraints, tc.ID, replacement),
				buckets: buckets,
				salt:    tc.ID + ":" + timeline,
				suggestion: Suggestion{
					Action:         ActionRelax,
					TargetField:    "requiredMaxStartTime",
					ConstraintID:   tc.ID,
					SuggestedValue: timeline,
					Description:    fmt.Sprintf("accept engineers starting within %s", timeline),
				},
			})
		}
		return out

	case "timezone":
		return []variant{{
			set:     without(constraints, tc.ID),
			buckets: buckets,
			suggestion: Suggestion{
				Action:       ActionRemove,
				TargetField:  "requiredTimezone",
				ConstraintID: tc.ID,
				Description:  fmt.Sprintf("drop the %v timezone requirement", tc.Clauses[0].ParamValue),
			},
		}}
	}

	// Experience bounds come from the seniority table; there is no request
	// field to nudge, so they get no variants.
	return nil
}

func lowerProficiency(p search.Proficiency) search.Proficiency {
	switch p {
	case search.ProficiencyExpert:
		return search.ProficiencyProficient
	case search.ProficiencyProficient:
		return search.ProficiencyLearning
	}
	return ""
}

func without(set []TestableConstraint, id string) []TestableConstraint {
	out := make([]TestableConstraint, 0, len(set))
	for _, tc := range set {
		if tc.ID != id {
			out = append(out, tc)
		}
	}
	return out
}

func replace(set []TestableConstraint, id string, replacement TestableConstraint) []TestableConstraint {
	out := make([]TestableConstraint, 0, len(set))
	for _, tc := range set {
		if tc.ID == id {
			out = append(out, replacement)
		} else {
			out = append(out, tc)
		}
	}
	return out
}
