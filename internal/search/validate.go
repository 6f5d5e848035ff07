package search

import (
	"fmt"

	"engineer-search/internal/knowledge"
)

// Validate checks a request before any graph call. It accumulates every issue
// instead of stopping at the first.
func Validate(req *SearchRequest, kb *knowledge.Config) error {
	var issues []ValidationIssue

	add := func(field, msg string) {
		issues = append(issues, ValidationIssue{Field: field, Message: msg})
	}

	if req.StretchBudget != nil {
		if req.MaxBudget == nil {
			add("stretchBudget", "requires maxBudget to be set")
		} else if *req.StretchBudget < *req.MaxBudget {
			add("stretchBudget", "must be >= maxBudget")
		}
	}

	if req.RequiredMaxStartTime != "" && TimelineIndex(req.RequiredMaxStartTime) < 0 {
		add("requiredMaxStartTime", fmt.Sprintf("unknown timeline %q", req.RequiredMaxStartTime))
	}
	if req.PreferredMaxStartTime != "" {
		if TimelineIndex(req.PreferredMaxStartTime) < 0 {
			add("preferredMaxStartTime", fmt.Sprintf("unknown timeline %q", req.PreferredMaxStartTime))
		} else if req.RequiredMaxStartTime != "" &&
			TimelineIndex(req.PreferredMaxStartTime) > TimelineIndex(req.RequiredMaxStartTime) {
			add("preferredMaxStartTime", "must not be later than requiredMaxStartTime")
		}
	}

	if req.Limit != nil && (*req.Limit < 0 || *req.Limit > kb.MaxLimit) {
		add("limit", fmt.Sprintf("must be between 0 and %d", kb.MaxLimit))
	}
	if req.Offset != nil && *req.Offset < 0 {
		add("offset", "must be >= 0")
	}

	if req.RequiredSeniorityLevel != "" {
		if _, ok := kb.SeniorityRanges[req.RequiredSeniorityLevel]; !ok {
			add("requiredSeniorityLevel", fmt.Sprintf("unknown seniority level %q", req.RequiredSeniorityLevel))
		}
	}
	if req.PreferredSeniorityLevel != "" {
		if _, ok := kb.SeniorityRanges[req.PreferredSeniorityLevel]; !ok {
			add("preferredSeniorityLevel", fmt.Sprintf("unknown seniority level %q", req.PreferredSeniorityLevel))
		}
	}

	if req.TeamFocus != "" {
		if _, ok := kb.TeamFocusAlignments[req.TeamFocus]; !ok {
			add("teamFocus", fmt.Sprintf("unknown team focus %q", req.TeamFocus))
		}
	}

	validateSkills := func(field string, skills []SkillRequirement) {
		for i, sr := range skills {
			if sr.Skill == "" {
				add(fmt.Sprintf("%s[%d].skill", field, i), "must not be empty")
			}
			if sr.MinProficiency != "" && sr.MinProficiency.Rank() < 0 {
				add(fmt.Sprintf("%s[%d].minProficiency", field, i),
					fmt.Sprintf("unknown proficiency %q", sr.MinProficiency))
			}
			if sr.PreferredMinProficiency != "" && sr.PreferredMinProficiency.Rank() < 0 {
				add(fmt.Sprintf("%s[%d].preferredMinProficiency", field, i),
					fmt.Sprintf("unknown proficiency %q", sr.PreferredMinProficiency))
			}
		}
	}
	validateSkills("requiredSkills", req.RequiredSkills)
	validateSkills("preferredSkills", req.PreferredSkills)

	validateDomains := func(field string, domains []DomainRequirement) {
		for i, dr := range domains {
			if dr.Domain == "" {
				add(fmt.Sprintf("%s[%d].domain", field, i), "must not be empty")
			}
			if dr.MinYears != nil && *dr.MinYears < 0 {
				add(fmt.Sprintf("%s[%d].minYears", field, i), "must be >= 0")
			}
		}
	}
	validateDomains("requiredBusinessDomains", req.RequiredBusinessDomains)
	validateDomains("preferredBusinessDomains", req.PreferredBusinessDomains)
	validateDomains("requiredTechnicalDomains", req.RequiredTechnicalDomains)
	validateDomains("preferredTechnicalDomains", req.PreferredTechnicalDomains)

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
