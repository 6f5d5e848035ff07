package advisor

import (
	"fmt"
	"strings"

	"engineer-search/internal/search"
)

// Constraint origins.
const (
	OriginUser    = "user"
	OriginDerived = "derived"
)

// TestableConstraint is one independently removable predicate of a search.
// Property constraints carry pre-rendered clauses; skill constraints carry
// their expanded id group; derived constraints carry the rule's skill ids.
type TestableConstraint struct {
	ID          string `json:"id"`
	Field       string `json:"field"`
	Description string `json:"description"`
	Origin      string `json:"origin"`

	Clauses    []search.PropertyClause `json:"-"`
	SkillGroup []string                `json:"-"`
	SkillMin   search.Proficiency      `json:"-"`
	DerivedIDs []string                `json:"-"`
	RuleID     string                  `json:"-"`

	// OriginalIdentifier is the user's skill identifier, kept for suggestions.
	OriginalIdentifier string `json:"-"`
}

func (c TestableConstraint) isSkill() bool   { return len(c.SkillGroup) > 0 }
func (c TestableConstraint) isDerived() bool { return len(c.DerivedIDs) > 0 }

// Decompose breaks expanded criteria into the advisor's testable constraint
// set. A BETWEEN range yields two constraints (its bounds relax
// independently) and timezone prefixes yield one constraint per prefix, so a
// conflict set can name the individual prefix. The clauses keep their OR
// group: prefixes that are both in a probe set still render as one OR-combined
// predicate. Order is deterministic: property constraints in clause order,
// then skill requirements, then derived filters.
func Decompose(crit *search.ExpandedCriteria, skills *search.SkillResolution) []TestableConstraint {
	var out []TestableConstraint

	for _, cl := range search.PropertyClauses(crit) {
		out = append(out, TestableConstraint{
			ID:          cl.ParamName,
			Field:       cl.Field,
			Description: describeClause(cl),
			Origin:      OriginUser,
			Clauses:     []search.PropertyClause{cl},
		})
	}

	if skills != nil {
		for _, req := range skills.Requirements {
			out = append(out, TestableConstraint{
				ID:                 "user_skill_" + req.OriginalSkillID,
				Field:              "requiredSkills",
				Description:        fmt.Sprintf("%s at %s or above", req.OriginalSkillName, req.MinProficiency),
				Origin:             OriginUser,
				SkillGroup:         req.ExpandedSkillIDs,
				SkillMin:           req.MinProficiency,
				OriginalIdentifier: req.OriginalIdentifier,
			})
		}
	}

	for _, dc := range crit.DerivedConstraints {
		if dc.Effect != "filter" || dc.Override != nil {
			continue
		}
		out = append(out, TestableConstraint{
			ID:          "derived_" + dc.RuleID,
			Field:       "derivedSkills",
			Description: dc.RuleName,
			Origin:      OriginDerived,
			DerivedIDs:  dc.SkillIDs,
			RuleID:      dc.RuleID,
		})
	}

	return out
}

func describeClause(cl search.PropertyClause) string {
	switch cl.Field {
	case "yearsExperience":
		if strings.Contains(cl.Clause, ">=") {
			return fmt.Sprintf("yearsExperience >= %v", cl.ParamValue)
		}
		return fmt.Sprintf("yearsExperience < %v", cl.ParamValue)
	case "startTimeline":
		if timelines, ok := cl.ParamValue.([]string); ok {
			return fmt.Sprintf("startTimeline in [%s]", strings.Join(timelines, ", "))
		}
	case "timezone":
		return fmt.Sprintf("timezone starts with %v", cl.ParamValue)
	case "salary":
		return fmt.Sprintf("salary <= %v", cl.ParamValue)
	}
	return cl.Field
}
