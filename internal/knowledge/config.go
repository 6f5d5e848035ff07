package knowledge

// Config is the process-wide knowledge-base configuration: utility weights and
// parameters, the seniority table, team-focus skill alignments, the inference
// rule set, and the advisor thresholds. It is built once at startup and treated
// as immutable afterwards.
type Config struct {
	// SeniorityRanges maps a seniority level to a half-open experience range
	// [MinYears, MaxYears). MaxYears == 0 means unbounded.
	SeniorityRanges map[string]YearRange

	// TeamFocusAlignments maps a team focus to the skill ids considered aligned
	// with that focus.
	TeamFocusAlignments map[string][]string

	Weights UtilityWeights
	Utility UtilityParams

	// Rules is the forward-chaining inference rule set. The engine treats it as
	// opaque data; rule content lives in rules.go.
	Rules []Rule

	MaxInferenceIterations int

	// AdvisorThreshold: the constraint advisor runs when a search returns fewer
	// matches than this.
	AdvisorThreshold int
	// InsufficientThreshold: a constraint set is considered inconsistent when it
	// yields fewer results than this.
	InsufficientThreshold int
	// MaxConflictSets caps the number of minimal conflict sets the advisor
	// searches for before giving up with a degraded flag.
	MaxConflictSets int

	// MinConfidence is the confidence floor used when classifying collected
	// skills as qualifying.
	MinConfidence float64

	// CorrelationThreshold: skill-skill correlation edges below this strength
	// are ignored by the similarity engine.
	CorrelationThreshold float64

	Similarity SimilarityWeights
	// DiversityPenalty scales how strongly the diversity pass penalises
	// candidates similar to already-selected ones.
	DiversityPenalty float64

	// CritiquePairs drives 2-property critique generation.
	CritiquePairs [][2]string

	DefaultLimit int
	MaxLimit     int
}

type YearRange struct {
	MinYears int
	MaxYears int // 0 = open-ended
}

// UtilityWeights are the w_j factors of the utility sum. Components with weight
// zero never appear in score breakdowns.
type UtilityWeights struct {
	SkillMatch               float64
	Confidence               float64
	Experience               float64
	PreferredSkills          float64
	TeamFocus                float64
	RelatedSkills            float64
	PreferredBusinessDomain  float64
	PreferredTechnicalDomain float64
	StartTimeline            float64
	PreferredTimezone        float64
	PreferredSeniority       float64
	Budget                   float64
}

// UtilityParams are the shape parameters of the per-attribute utility functions.
type UtilityParams struct {
	MaxYearsExperience float64 // log normalisation ceiling
	ConfidenceMin      float64
	ConfidenceMax      float64
	ExpertBonus        float64
	ProficientBonus    float64

	PreferredSkillsMaxMatch   float64
	TeamFocusMaxMatch         float64
	RelatedSkillsMaxMatch     float64
	PreferredDomainMaxMatch   float64
	PreferredTimezoneMaxMatch float64
	PreferredSeniorityMax     float64

	// StretchBudgetScore is the partial budget score when salary falls between
	// maxBudget and stretchBudget.
	StretchBudgetScore float64
}

// SimilarityWeights combine the four similarity subscores.
type SimilarityWeights struct {
	Skills     float64
	Experience float64
	Domain     float64
	Timezone   float64
}

// Default returns the configuration used in production deployments.
func Default() *Config {
	return &Config{
		SeniorityRanges: map[string]YearRange{
			"junior":    {MinYears: 0, MaxYears: 3},
			"mid":       {MinYears: 3, MaxYears: 6},
			"senior":    {MinYears: 6, MaxYears: 10},
			"staff":     {MinYears: 10, MaxYears: 0},
			"principal": {MinYears: 15, MaxYears: 0},
		},
		TeamFocusAlignments: map[string][]string{
			"scaling":    {"skill_distributed", "skill_kubernetes", "skill_monitoring", "skill_load_testing"},
			"greenfield": {"skill_system_design", "skill_prototyping", "skill_product_thinking"},
			"migration":  {"skill_refactoring", "skill_terraform", "skill_ci_cd"},
			"platform":   {"skill_kubernetes", "skill_terraform", "skill_ci_cd", "skill_monitoring"},
			"data":       {"skill_python", "skill_sql", "skill_airflow", "skill_spark"},
			"product":    {"skill_react", "skill_typescript", "skill_product_thinking"},
		},
		Weights: UtilityWeights{
			SkillMatch:               0.25,
			Confidence:               0.10,
			Experience:               0.15,
			PreferredSkills:          0.10,
			TeamFocus:                0.08,
			RelatedSkills:            0.05,
			PreferredBusinessDomain:  0.07,
			PreferredTechnicalDomain: 0.07,
			StartTimeline:            0.05,
			PreferredTimezone:        0.04,
			PreferredSeniority:       0.02,
			Budget:                   0.02,
		},
		Utility: UtilityParams{
			MaxYearsExperience:        30,
			ConfidenceMin:             0.0,
			ConfidenceMax:             1.0,
			ExpertBonus:               0.10,
			ProficientBonus:           0.05,
			PreferredSkillsMaxMatch:   1.0,
			TeamFocusMaxMatch:         1.0,
			RelatedSkillsMaxMatch:     3.0,
			PreferredDomainMaxMatch:   1.0,
			PreferredTimezoneMaxMatch: 1.0,
			PreferredSeniorityMax:     1.0,
			StretchBudgetScore:        0.5,
		},
		Rules:                  DefaultRules(),
		MaxInferenceIterations: 10,
		AdvisorThreshold:       5,
		InsufficientThreshold:  3,
		MaxConflictSets:        5,
		MinConfidence:          0.5,
		CorrelationThreshold:   0.7,
		Similarity: SimilarityWeights{
			Skills:     0.45,
			Experience: 0.20,
			Domain:     0.20,
			Timezone:   0.15,
		},
		DiversityPenalty: 0.3,
		CritiquePairs: [][2]string{
			{"seniority", "timezone"},
			{"skills", "timezone"},
			{"skills", "seniority"},
		},
		DefaultLimit: 20,
		MaxLimit:     100,
	}
}
