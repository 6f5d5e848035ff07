package knowledge

// Rule effects.
const (
	EffectFilter = "filter"
	EffectBoost  = "boost"
)

// Condition operators.
const (
	OpEquals   = "equals"
	OpIn       = "in"
	OpContains = "contains" // set membership on multi-valued context fields
)

// Context fields rules may test. The engine resolves these against the working
// inference context; requiredSkills includes both user-requested and previously
// derived skill ids.
const (
	FieldTeamFocus      = "teamFocus"
	FieldSeniority      = "seniorityLevel"
	FieldRequiredSkills = "requiredSkills"
	FieldBusinessDomain = "businessDomains"
)

// Rule is one forward-chaining inference rule. Rules are data: the engine in
// internal/search evaluates them without knowing their content.
type Rule struct {
	ID         string
	Name       string
	Conditions []Condition
	Action     Action
}

type Condition struct {
	Field    string
	Operator string
	Value    string
}

type Action struct {
	Effect      string // filter | boost
	TargetField string
	SkillIDs    []string
	// BoostStrength in (0,1], boost rules only.
	BoostStrength float64
}

// DefaultRules is the production rule set. Chained rules (monitoring depends on
// distributed) exercise the fixpoint loop and override chain-breaking.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:   "scaling-requires-distributed",
			Name: "Scaling teams require distributed-systems experience",
			Conditions: []Condition{
				{Field: FieldTeamFocus, Operator: OpEquals, Value: "scaling"},
			},
			Action: Action{
				Effect:      EffectFilter,
				TargetField: FieldRequiredSkills,
				SkillIDs:    []string{"skill_distributed"},
			},
		},
		{
			ID:   "distributed-requires-monitoring",
			Name: "Distributed-systems work requires production monitoring",
			Conditions: []Condition{
				{Field: FieldRequiredSkills, Operator: OpContains, Value: "skill_distributed"},
			},
			Action: Action{
				Effect:      EffectFilter,
				TargetField: FieldRequiredSkills,
				SkillIDs:    []string{"skill_monitoring"},
			},
		},
		{
			ID:   "scaling-prefers-kubernetes",
			Name: "Scaling teams prefer Kubernetes experience",
			Conditions: []Condition{
				{Field: FieldTeamFocus, Operator: OpEquals, Value: "scaling"},
			},
			Action: Action{
				Effect:        EffectBoost,
				TargetField:   "preferredSkills",
				SkillIDs:      []string{"skill_kubernetes"},
				BoostStrength: 0.6,
			},
		},
		{
			ID:   "data-requires-sql",
			Name: "Data teams require SQL",
			Conditions: []Condition{
				{Field: FieldTeamFocus, Operator: OpEquals, Value: "data"},
			},
			Action: Action{
				Effect:      EffectFilter,
				TargetField: FieldRequiredSkills,
				SkillIDs:    []string{"skill_sql"},
			},
		},
		{
			ID:   "fintech-prefers-compliance",
			Name: "Fintech domain work prefers compliance familiarity",
			Conditions: []Condition{
				{Field: FieldBusinessDomain, Operator: OpContains, Value: "domain_fintech"},
			},
			Action: Action{
				Effect:        EffectBoost,
				TargetField:   "preferredSkills",
				SkillIDs:      []string{"skill_compliance"},
				BoostStrength: 0.5,
			},
		},
		{
			ID:   "principal-prefers-mentoring",
			Name: "Principal searches prefer mentoring experience",
			Conditions: []Condition{
				{Field: FieldSeniority, Operator: OpIn, Value: "staff,principal"},
			},
			Action: Action{
				Effect:        EffectBoost,
				TargetField:   "preferredSkills",
				SkillIDs:      []string{"skill_mentoring"},
				BoostStrength: 0.4,
			},
		},
	}
}
