package search

import (
	"fmt"
	"strings"

	"engineer-search/internal/knowledge"
)

// ExpandedCriteria is the normalised form of a search request: concrete filter
// parameters plus the audit log of every predicate the query will enforce or
// score against, and the inference outputs.
type ExpandedCriteria struct {
	MinYearsExperience int
	MaxYearsExperience int // 0 = open-ended

	StartTimelines        []string
	RequiredMaxStartTime  string
	PreferredMaxStartTime string

	TimezonePrefixes   []string
	PreferredTimezones []string

	MaxBudget     *float64
	StretchBudget *float64
	// SalaryCeiling is the query-enforced ceiling: stretchBudget when present,
	// else maxBudget.
	SalaryCeiling *float64

	TeamFocus       string
	AlignedSkillIDs []string

	PreferredSeniorityLevel string

	Limit  int
	Offset int

	// Requirements carried through for the resolvers.
	RequiredSkills            []SkillRequirement
	PreferredSkills           []SkillRequirement
	RequiredBusinessDomains   []DomainRequirement
	PreferredBusinessDomains  []DomainRequirement
	RequiredTechnicalDomains  []DomainRequirement
	PreferredTechnicalDomains []DomainRequirement

	OverriddenRuleIDs []string

	AppliedFilters     []AppliedFilter
	AppliedPreferences []AppliedFilter
	DefaultsApplied    []string

	DerivedConstraints      []DerivedConstraint
	DerivedRequiredSkillIDs []string
	DerivedSkillBoosts      map[string]float64
	InferenceWarning        string
}

// Expand normalises a validated request into concrete filter parameters. It is
// a pure function of the request and the knowledge-base configuration; the
// inference engine runs as part of it.
func Expand(req *SearchRequest, kb *knowledge.Config) *ExpandedCriteria {
	crit := &ExpandedCriteria{
		MaxBudget:                 req.MaxBudget,
		StretchBudget:             req.StretchBudget,
		TeamFocus:                 req.TeamFocus,
		PreferredSeniorityLevel:   req.PreferredSeniorityLevel,
		PreferredMaxStartTime:     req.PreferredMaxStartTime,
		PreferredTimezones:        req.PreferredTimezone,
		RequiredSkills:            req.RequiredSkills,
		PreferredSkills:           req.PreferredSkills,
		RequiredBusinessDomains:   req.RequiredBusinessDomains,
		PreferredBusinessDomains:  req.PreferredBusinessDomains,
		RequiredTechnicalDomains:  req.RequiredTechnicalDomains,
		PreferredTechnicalDomains: req.PreferredTechnicalDomains,
		OverriddenRuleIDs:         req.OverriddenRuleIDs,
		DerivedSkillBoosts:        map[string]float64{},
		DefaultsApplied:           []string{},
	}

	// Seniority -> half-open experience range from the knowledge table.
	if req.RequiredSeniorityLevel != "" {
		r := kb.SeniorityRanges[req.RequiredSeniorityLevel]
		crit.MinYearsExperience = r.MinYears
		crit.MaxYearsExperience = r.MaxYears
		if r.MaxYears > 0 {
			crit.AppliedFilters = append(crit.AppliedFilters, AppliedFilter{
				Kind: FilterKindProperty, Field: "yearsExperience", Operator: OpBetween,
				Value: []int{r.MinYears, r.MaxYears}, Source: SourceKnowledgeBase,
			})
		} else {
			crit.AppliedFilters = append(crit.AppliedFilters, AppliedFilter{
				Kind: FilterKindProperty, Field: "yearsExperience", Operator: OpGTE,
				Value: r.MinYears, Source: SourceKnowledgeBase,
			})
		}
	}

	// Start timeline: ordered prefix of the enum up to and including the
	// required max, defaulting to the full enum.
	maxStart := req.RequiredMaxStartTime
	source := SourceUser
	if maxStart == "" {
		maxStart = StartTimelineOrder[len(StartTimelineOrder)-1]
		source = SourceKnowledgeBase
		crit.DefaultsApplied = append(crit.DefaultsApplied, "requiredMaxStartTime")
	}
	crit.RequiredMaxStartTime = maxStart
	crit.StartTimelines = StartTimelineOrder[:TimelineIndex(maxStart)+1]
	crit.AppliedFilters = append(crit.AppliedFilters, AppliedFilter{
		Kind: FilterKindProperty, Field: "startTimeline", Operator: OpIn,
		Value: crit.StartTimelines, Source: source,
	})

	// Timezone wildcards become prefixes; concrete zones are kept verbatim.
	if len(req.RequiredTimezone) > 0 {
		for _, tz := range req.RequiredTimezone {
			if strings.HasSuffix(tz, "/*") {
				crit.TimezonePrefixes = append(crit.TimezonePrefixes, strings.TrimSuffix(tz, "*"))
			} else {
				crit.TimezonePrefixes = append(crit.TimezonePrefixes, tz)
			}
		}
		crit.AppliedFilters = append(crit.AppliedFilters, AppliedFilter{
			Kind: FilterKindProperty, Field: "timezone", Operator: OpStartsWith,
			Value: crit.TimezonePrefixes, Source: SourceUser,
		})
	}

	// Budget: the query ceiling uses stretchBudget when present.
	if req.StretchBudget != nil {
		crit.SalaryCeiling = req.StretchBudget
	} else if req.MaxBudget != nil {
		crit.SalaryCeiling = req.MaxBudget
	}
	if crit.SalaryCeiling != nil {
		crit.AppliedFilters = append(crit.AppliedFilters, AppliedFilter{
			Kind: FilterKindProperty, Field: "salary", Operator: OpLTE,
			Value: *crit.SalaryCeiling, Source: SourceUser,
		})
	}

	// Team focus -> aligned skill ids; scored, never enforced.
	if req.TeamFocus != "" {
		crit.AlignedSkillIDs = kb.TeamFocusAlignments[req.TeamFocus]
		crit.AppliedPreferences = append(crit.AppliedPreferences, AppliedFilter{
			Kind: FilterKindSkill, Skills: crit.AlignedSkillIDs,
			DisplayValue: "team focus: " + req.TeamFocus, Source: SourceKnowledgeBase,
		})
	}

	// Pagination: limit clamped, defaults applied.
	crit.Limit = kb.DefaultLimit
	if req.Limit != nil {
		crit.Limit = *req.Limit
		if crit.Limit > kb.MaxLimit {
			crit.Limit = kb.MaxLimit
		}
		if crit.Limit < 0 {
			crit.Limit = 0
		}
	}
	if req.Offset != nil && *req.Offset > 0 {
		crit.Offset = *req.Offset
	}

	// User skill requirements: one audit entry per requirement.
	for _, sr := range req.RequiredSkills {
		display := sr.Skill
		if sr.MinProficiency != "" {
			display = fmt.Sprintf("%s (%s+)", sr.Skill, sr.MinProficiency)
		}
		crit.AppliedFilters = append(crit.AppliedFilters, AppliedFilter{
			Kind: FilterKindSkill, Skills: []string{sr.Skill},
			DisplayValue: display, Source: SourceUser,
		})
	}

	// Required domains are enforced; preferred ones only scored.
	appendDomainFilters(&crit.AppliedFilters, "businessDomains", req.RequiredBusinessDomains)
	appendDomainFilters(&crit.AppliedFilters, "technicalDomains", req.RequiredTechnicalDomains)
	appendDomainFilters(&crit.AppliedPreferences, "businessDomains", req.PreferredBusinessDomains)
	appendDomainFilters(&crit.AppliedPreferences, "technicalDomains", req.PreferredTechnicalDomains)

	// Preferred-side predicates are logged so the response is a faithful record
	// of everything the scorer will look at.
	for _, sr := range req.PreferredSkills {
		crit.AppliedPreferences = append(crit.AppliedPreferences, AppliedFilter{
			Kind: FilterKindSkill, Skills: []string{sr.Skill},
			DisplayValue: sr.Skill, Source: SourceUser,
		})
	}
	if len(req.PreferredTimezone) > 0 {
		crit.AppliedPreferences = append(crit.AppliedPreferences, AppliedFilter{
			Kind: FilterKindProperty, Field: "timezone", Operator: OpIn,
			Value: req.PreferredTimezone, Source: SourceUser,
		})
	}
	if req.PreferredSeniorityLevel != "" {
		crit.AppliedPreferences = append(crit.AppliedPreferences, AppliedFilter{
			Kind: FilterKindProperty, Field: "seniorityLevel", Operator: OpGTE,
			Value: req.PreferredSeniorityLevel, Source: SourceUser,
		})
	}
	if req.PreferredMaxStartTime != "" {
		crit.AppliedPreferences = append(crit.AppliedPreferences, AppliedFilter{
			Kind: FilterKindProperty, Field: "startTimeline", Operator: OpLTE,
			Value: req.PreferredMaxStartTime, Source: SourceUser,
		})
	}
	if req.MaxBudget != nil && req.StretchBudget != nil {
		crit.AppliedPreferences = append(crit.AppliedPreferences, AppliedFilter{
			Kind: FilterKindProperty, Field: "salary", Operator: OpLTE,
			Value: *req.MaxBudget, Source: SourceUser,
		})
	}

	// Forward-chaining inference over the expanded context.
	inf := RunInference(req, kb)
	crit.DerivedConstraints = inf.Constraints
	crit.DerivedRequiredSkillIDs = inf.RequiredSkillIDs
	crit.DerivedSkillBoosts = inf.SkillBoosts
	crit.InferenceWarning = inf.Warning

	for _, c := range inf.Constraints {
		if c.Override != nil {
			continue
		}
		switch c.Effect {
		case knowledge.EffectFilter:
			crit.AppliedFilters = append(crit.AppliedFilters, AppliedFilter{
				Kind: FilterKindSkill, Skills: c.SkillIDs,
				DisplayValue: c.RuleName, Source: SourceInference, RuleID: c.RuleID,
			})
		case knowledge.EffectBoost:
			crit.AppliedPreferences = append(crit.AppliedPreferences, AppliedFilter{
				Kind: FilterKindSkill, Skills: c.SkillIDs,
				DisplayValue: c.RuleName, Source: SourceInference, RuleID: c.RuleID,
			})
		}
	}

	return crit
}

func appendDomainFilters(target *[]AppliedFilter, field string, domains []DomainRequirement) {
	for _, dr := range domains {
		f := AppliedFilter{
			Kind: FilterKindProperty, Field: field, Operator: OpIn,
			Value: dr.Domain, Source: SourceUser,
		}
		if dr.MinYears != nil {
			f.DisplayValue = fmt.Sprintf("%s (%d+ years)", dr.Domain, *dr.MinYears)
		}
		*target = append(*target, f)
	}
}
