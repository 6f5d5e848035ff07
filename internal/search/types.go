package search

// Proficiency levels, ordered learning < proficient < expert.
type Proficiency string

const (
	ProficiencyLearning   Proficiency = "learning"
	ProficiencyProficient Proficiency = "proficient"
	ProficiencyExpert     Proficiency = "expert"
)

// Rank returns the ordering index of a proficiency, -1 for unknown values.
func (p Proficiency) Rank() int {
	switch p {
	case ProficiencyLearning:
		return 0
	case ProficiencyProficient:
		return 1
	case ProficiencyExpert:
		return 2
	}
	return -1
}

// Stricter returns the stricter of two proficiencies. Empty values lose.
func (p Proficiency) Stricter(other Proficiency) Proficiency {
	if other.Rank() > p.Rank() {
		return other
	}
	return p
}

// StartTimelineOrder is the closed start-timeline enum, soonest first.
var StartTimelineOrder = []string{
	"immediate", "two_weeks", "one_month", "three_months", "six_months", "one_year",
}

// TimelineIndex returns the position of a timeline in the enum, -1 for unknown.
func TimelineIndex(timeline string) int {
	for i, t := range StartTimelineOrder {
		if t == timeline {
			return i
		}
	}
	return -1
}

// SkillRequirement is one user-requested skill, by id or name.
type SkillRequirement struct {
	Skill                   string      `json:"skill"`
	MinProficiency          Proficiency `json:"minProficiency,omitempty"`
	PreferredMinProficiency Proficiency `json:"preferredMinProficiency,omitempty"`
}

// DomainRequirement is one user-requested business or technical domain.
type DomainRequirement struct {
	Domain            string `json:"domain"`
	MinYears          *int   `json:"minYears,omitempty"`
	PreferredMinYears *int   `json:"preferredMinYears,omitempty"`
}

// SearchRequest is the filter-search input. All fields are optional.
type SearchRequest struct {
	RequiredSkills  []SkillRequirement `json:"requiredSkills,omitempty"`
	PreferredSkills []SkillRequirement `json:"preferredSkills,omitempty"`

	RequiredSeniorityLevel  string `json:"requiredSeniorityLevel,omitempty"`
	PreferredSeniorityLevel string `json:"preferredSeniorityLevel,omitempty"`

	RequiredTimezone  []string `json:"requiredTimezone,omitempty"`
	PreferredTimezone []string `json:"preferredTimezone,omitempty"`

	MaxBudget     *float64 `json:"maxBudget,omitempty"`
	StretchBudget *float64 `json:"stretchBudget,omitempty"`

	RequiredMaxStartTime  string `json:"requiredMaxStartTime,omitempty"`
	PreferredMaxStartTime string `json:"preferredMaxStartTime,omitempty"`

	RequiredBusinessDomains   []DomainRequirement `json:"requiredBusinessDomains,omitempty"`
	PreferredBusinessDomains  []DomainRequirement `json:"preferredBusinessDomains,omitempty"`
	RequiredTechnicalDomains  []DomainRequirement `json:"requiredTechnicalDomains,omitempty"`
	PreferredTechnicalDomains []DomainRequirement `json:"preferredTechnicalDomains,omitempty"`

	TeamFocus string `json:"teamFocus,omitempty"`

	OverriddenRuleIDs []string `json:"overriddenRuleIds,omitempty"`

	Limit  *int `json:"limit,omitempty"`
	Offset *int `json:"offset,omitempty"`
}

// Applied filter kinds, operators, and sources.
const (
	FilterKindProperty = "property"
	FilterKindSkill    = "skill"

	OpGTE        = ">="
	OpLTE        = "<="
	OpLT         = "<"
	OpIn         = "IN"
	OpBetween    = "BETWEEN"
	OpStartsWith = "STARTS WITH (any of)"

	SourceUser          = "user"
	SourceKnowledgeBase = "knowledge_base"
	SourceInference     = "inference"
)

// AppliedFilter is an audit record of one predicate the query enforces (filter)
// or scores against (preference). Tagged union on Kind: property filters carry
// Field/Operator/Value, skill filters carry Skills/DisplayValue.
type AppliedFilter struct {
	Kind         string   `json:"kind"`
	Field        string   `json:"field,omitempty"`
	Operator     string   `json:"operator,omitempty"`
	Value        any      `json:"value,omitempty"`
	Skills       []string `json:"skills,omitempty"`
	DisplayValue string   `json:"displayValue,omitempty"`
	Source       string   `json:"source"`
	RuleID       string   `json:"ruleId,omitempty"`
}

// OverrideScopeFull marks a derived constraint fully disabled by the request.
const OverrideScopeFull = "FULL"

// DerivedConstraint is the effect of one fired inference rule: either an
// additional required-skill filter or a preferred-skill boost.
type DerivedConstraint struct {
	RuleID            string          `json:"ruleId"`
	RuleName          string          `json:"ruleName"`
	Effect            string          `json:"effect"` // filter | boost
	TargetField       string          `json:"targetField"`
	SkillIDs          []string        `json:"skillIds"`
	BoostStrength     float64         `json:"boostStrength,omitempty"`
	MatchedConditions []string        `json:"matchedConditions"`
	Provenance        []string        `json:"provenance"` // chain of source rule ids
	Override          *OverrideRecord `json:"override,omitempty"`
}

type OverrideRecord struct {
	OverrideScope string `json:"overrideScope"`
}

// ResolvedSkillRequirement is the expansion of one user-requested skill. An
// engineer satisfies it iff they possess any skill in ExpandedSkillIDs at a
// proficiency >= MinProficiency.
type ResolvedSkillRequirement struct {
	OriginalIdentifier      string            `json:"originalIdentifier"`
	OriginalSkillID         string            `json:"originalSkillId"`
	OriginalSkillName       string            `json:"originalSkillName"`
	ExpandedSkillIDs        []string          `json:"expandedSkillIds"`
	SkillIDToName           map[string]string `json:"skillIdToName"`
	MinProficiency          Proficiency       `json:"minProficiency"`
	PreferredMinProficiency Proficiency       `json:"preferredMinProficiency,omitempty"`
}

// ResolvedDomain is the hierarchy expansion of one domain requirement. The
// expanded set always includes the domain itself.
type ResolvedDomain struct {
	DomainID          string   `json:"domainId"`
	ExpandedDomainIDs []string `json:"expandedDomainIds"`
	MinYears          *int     `json:"minYears,omitempty"`
	PreferredMinYears *int     `json:"preferredMinYears,omitempty"`
}

// Skill match types.
const (
	MatchDirect     = "direct"
	MatchDescendant = "descendant"
	MatchNone       = "none"
)

// Constraint violations on unmatched-related skills.
const (
	ViolationProficiency = "proficiency_below_minimum"
	ViolationConfidence  = "confidence_below_minimum"
)

// CollectedSkill is one skill gathered for an engineer by the query's
// hierarchy traversal.
type CollectedSkill struct {
	SkillID              string      `json:"skillId"`
	SkillName            string      `json:"skillName"`
	ProficiencyLevel     Proficiency `json:"proficiencyLevel"`
	ConfidenceScore      float64     `json:"confidenceScore"`
	YearsUsed            float64     `json:"yearsUsed"`
	MatchType            string      `json:"matchType"`
	MeetsProficiency     bool        `json:"meetsProficiency"`
	MeetsConfidence      bool        `json:"meetsConfidence"`
	ConstraintViolations []string    `json:"constraintViolations,omitempty"`
}

// MatchedDomain is one business or technical domain an engineer holds that
// overlaps the request's expanded domain sets.
type MatchedDomain struct {
	DomainID       string  `json:"domainId"`
	DomainName     string  `json:"domainName"`
	Years          float64 `json:"years"`
	Source         string  `json:"source,omitempty"` // explicit | inferred, technical only
	MeetsRequired  bool    `json:"meetsRequired"`
	MeetsPreferred bool    `json:"meetsPreferred"`
}

// ScoreBreakdown explains an engineer's utility score. Scores holds the
// weighted components (non-zero only); RawScores the normalised 0-1 values.
type ScoreBreakdown struct {
	Scores            map[string]float64 `json:"scores"`
	RawScores         map[string]float64 `json:"rawScores"`
	PreferenceMatches map[string]float64 `json:"preferenceMatches,omitempty"`
	Total             float64            `json:"total"`
}

// EngineerMatch is one scored result row.
type EngineerMatch struct {
	ID                     string           `json:"id"`
	Name                   string           `json:"name"`
	Headline               string           `json:"headline,omitempty"`
	YearsExperience        float64          `json:"yearsExperience"`
	Timezone               string           `json:"timezone"`
	Salary                 float64          `json:"salary"`
	StartTimeline          string           `json:"startTimeline"`
	MatchedSkills          []CollectedSkill `json:"matchedSkills"`
	UnmatchedRelatedSkills []CollectedSkill `json:"unmatchedRelatedSkills"`
	MatchedSkillCount      int              `json:"matchedSkillCount"`
	AvgConfidence          float64          `json:"avgConfidence"`
	BusinessDomains        []MatchedDomain  `json:"businessDomains,omitempty"`
	TechnicalDomains       []MatchedDomain  `json:"technicalDomains,omitempty"`
	UtilityScore           float64          `json:"utilityScore"`
	Breakdown              ScoreBreakdown   `json:"scoreBreakdown"`

	// matchedPreferredSkillIDs is scoring evidence collected by the query;
	// never serialised.
	matchedPreferredSkillIDs []string
}

// QueryMetadata is per-search observability data.
type QueryMetadata struct {
	ExecutionTimeMs           int64  `json:"executionTimeMs"`
	CandidatesBeforeDiversity int    `json:"candidatesBeforeDiversity,omitempty"`
	InferenceWarning          string `json:"inferenceWarning,omitempty"`
}

// Response is the filter-search result envelope. Advice is populated by the
// constraint advisor when the result count is below the advisor threshold; its
// concrete type is advisor.Advice, held as any to keep the advisor package a
// consumer of this one.
type Response struct {
	Matches               []EngineerMatch     `json:"matches"`
	TotalCount            int                 `json:"totalCount"`
	AppliedFilters        []AppliedFilter     `json:"appliedFilters"`
	AppliedPreferences    []AppliedFilter     `json:"appliedPreferences"`
	DefaultsApplied       []string            `json:"defaultsApplied"`
	DerivedConstraints    []DerivedConstraint `json:"derivedConstraints"`
	OverriddenRuleIDs     []string            `json:"overriddenRuleIds"`
	UnresolvedIdentifiers []string            `json:"unresolvedIdentifiers,omitempty"`
	QueryMetadata         QueryMetadata       `json:"queryMetadata"`
	Advice                any                 `json:"advice,omitempty"`
}
