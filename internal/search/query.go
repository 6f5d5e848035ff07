package search

import (
	"fmt"
	"strings"
)

// PropertyClause is one base property predicate, pre-rendered as a Cypher
// fragment with its parameter. Clauses sharing a non-empty OrGroup came from
// one logical predicate (timezone prefixes) and are OR-combined.
type PropertyClause struct {
	Field      string
	Clause     string
	ParamName  string
	ParamValue any
	OrGroup    string
}

// PropertyClauses renders the expanded criteria's base property predicates.
// The same list feeds the main query, the count query, and the advisor's
// per-constraint testing, so counts agree by construction.
func PropertyClauses(crit *ExpandedCriteria) []PropertyClause {
	var clauses []PropertyClause

	if crit.MinYearsExperience > 0 || crit.MaxYearsExperience > 0 {
		clauses = append(clauses, PropertyClause{
			Field:      "yearsExperience",
			Clause:     "e.yearsExperience >= $minYearsExperience",
			ParamName:  "minYearsExperience",
			ParamValue: crit.MinYearsExperience,
		})
	}
	if crit.MaxYearsExperience > 0 {
		clauses = append(clauses, PropertyClause{
			Field:      "yearsExperience",
			Clause:     "e.yearsExperience < $maxYearsExperience",
			ParamName:  "maxYearsExperience",
			ParamValue: crit.MaxYearsExperience,
		})
	}
	if len(crit.StartTimelines) > 0 {
		clauses = append(clauses, PropertyClause{
			Field:      "startTimeline",
			Clause:     "e.startTimeline IN $startTimelines",
			ParamName:  "startTimelines",
			ParamValue: crit.StartTimelines,
		})
	}
	for i, prefix := range crit.TimezonePrefixes {
		param := fmt.Sprintf("timezonePrefix%d", i)
		clauses = append(clauses, PropertyClause{
			Field:      "timezone",
			Clause:     fmt.Sprintf("e.timezone STARTS WITH $%s", param),
			ParamName:  param,
			ParamValue: prefix,
			OrGroup:    "timezone",
		})
	}
	if crit.SalaryCeiling != nil {
		clauses = append(clauses, PropertyClause{
			Field:      "salary",
			Clause:     "e.salary <= $salaryCeiling",
			ParamName:  "salaryCeiling",
			ParamValue: *crit.SalaryCeiling,
		})
	}

	return clauses
}

// renderWhere joins property clauses, OR-combining clauses that share a group.
func renderWhere(clauses []PropertyClause) []string {
	var parts []string
	grouped := map[string][]string{}
	var groupOrder []string

	for _, c := range clauses {
		if c.OrGroup == "" {
			parts = append(parts, c.Clause)
			continue
		}
		if _, seen := grouped[c.OrGroup]; !seen {
			groupOrder = append(groupOrder, c.OrGroup)
		}
		grouped[c.OrGroup] = append(grouped[c.OrGroup], c.Clause)
	}
	for _, group := range groupOrder {
		members := grouped[group]
		if len(members) == 1 {
			parts = append(parts, members[0])
		} else {
			parts = append(parts, "("+strings.Join(members, " OR ")+")")
		}
	}
	return parts
}

// proficiencyCase renders the per-skill proficiency check over the three
// buckets. skillVar and relVar name the skill node and UserSkill node in scope.
func proficiencyCase(skillVar, relVar string) string {
	return fmt.Sprintf(`CASE
      WHEN %[1]s.id IN $expertLevelSkillIds THEN %[2]s.proficiencyLevel = 'expert'
      WHEN %[1]s.id IN $proficientLevelSkillIds THEN %[2]s.proficiencyLevel IN ['proficient', 'expert']
      ELSE true
    END`, skillVar, relVar)
}

// QueryInput gathers everything the builder needs for one search.
type QueryInput struct {
	Crit    *ExpandedCriteria
	Skills  *SkillResolution
	Buckets ProficiencyBuckets

	RequiredBusiness   *DomainResolution
	PreferredBusiness  *DomainResolution
	RequiredTechnical  *DomainResolution
	PreferredTechnical *DomainResolution

	// PreferredSkillIDs is the expanded preferred set unioned with derived
	// boost skills; collected as scoring evidence, never enforced.
	PreferredSkillIDs []string

	MinConfidence float64
}

// SkillFilterMode reports whether per-requirement skill predicates apply.
func (in *QueryInput) SkillFilterMode() bool {
	return in.Skills != nil && len(in.Skills.Requirements) > 0
}

func (in *QueryInput) validate() error {
	if in.Crit == nil {
		return fmt.Errorf("query builder: nil criteria")
	}
	if in.Crit.Limit < 0 || in.Crit.Offset < 0 {
		return fmt.Errorf("query builder: negative pagination (limit=%d offset=%d)", in.Crit.Limit, in.Crit.Offset)
	}
	if in.SkillFilterMode() {
		for _, req := range in.Skills.Requirements {
			if len(req.ExpandedSkillIDs) == 0 {
				return fmt.Errorf("query builder: requirement %q expanded to zero skills", req.OriginalIdentifier)
			}
		}
	}
	return nil
}

// BuildSearchQuery produces the single round-trip query: filter, count before
// pagination, order, paginate, then collect evidence for the page only. The
// evidence stages must never run over the unpaginated result set.
func BuildSearchQuery(in *QueryInput) (string, map[string]any, error) {
	if err := in.validate(); err != nil {
		return "", nil, err
	}

	params := map[string]any{
		"offset": int64(in.Crit.Offset),
		"limit":  int64(in.Crit.Limit),
	}

	var b strings.Builder
	b.WriteString("MATCH (e:Engineer)\n")
	writeFilterPredicates(&b, params, in)

	// Qualifying-skill count drives ordering in skill-filtered mode.
	targetSkillIDs := in.collectionSkillIDs()
	params["targetSkillIds"] = targetSkillIDs
	params["expertLevelSkillIds"] = in.Buckets.Expert
	params["proficientLevelSkillIds"] = in.Buckets.Proficient
	params["learningLevelSkillIds"] = in.Buckets.Learning
	params["minConfidence"] = in.MinConfidence

	if in.SkillFilterMode() {
		b.WriteString("WITH DISTINCT e\n")
		b.WriteString("OPTIONAL MATCH (e)-[:HAS]->(qus:UserSkill)-[:FOR]->(qs:Skill)\n")
		b.WriteString("WHERE qs.id IN $targetSkillIds\n")
		b.WriteString("  AND " + proficiencyCase("qs", "qus") + "\n")
		b.WriteString("  AND qus.confidenceScore >= $minConfidence\n")
		b.WriteString("WITH e, count(DISTINCT qs.id) AS qualifyingSkillCount\n")
	} else {
		b.WriteString("WITH DISTINCT e, 0 AS qualifyingSkillCount\n")
	}

	// Count-and-paginate-early: totalCount over the full qualifying set, then
	// SKIP/LIMIT before any evidence collection.
	b.WriteString("WITH collect({e: e, qualifyingSkillCount: qualifyingSkillCount}) AS rows\n")
	b.WriteString("WITH rows, size(rows) AS totalCount\n")
	b.WriteString("UNWIND rows AS row\n")
	b.WriteString("WITH row.e AS e, row.qualifyingSkillCount AS matchedSkillCount, totalCount\n")
	if in.SkillFilterMode() {
		b.WriteString("ORDER BY matchedSkillCount DESC, e.yearsExperience DESC\n")
	} else {
		b.WriteString("ORDER BY e.yearsExperience DESC\n")
	}
	b.WriteString("SKIP $offset LIMIT $limit\n")

	// Evidence collection over the page.
	writeSkillCollection(&b, params, in)
	writePreferredCollection(&b, params, in)
	writeDomainCollection(&b, params, in)

	b.WriteString(`RETURN e.id AS id, e.name AS name, e.headline AS headline,
       e.yearsExperience AS yearsExperience, e.timezone AS timezone,
       e.salary AS salary, e.startTimeline AS startTimeline,
       allRelevantSkills, matchedSkillCount, avgConfidence,
       matchedPreferredSkillIds, businessDomains, technicalDomains, totalCount`)

	return b.String(), params, nil
}

// BuildSearchCountQuery shares the filter structure of the main query and
// returns only the qualifying-engineer count.
func BuildSearchCountQuery(in *QueryInput) (string, map[string]any, error) {
	if err := in.validate(); err != nil {
		return "", nil, err
	}

	params := map[string]any{
		"expertLevelSkillIds":     in.Buckets.Expert,
		"proficientLevelSkillIds": in.Buckets.Proficient,
		"learningLevelSkillIds":   in.Buckets.Learning,
	}

	var b strings.Builder
	b.WriteString("MATCH (e:Engineer)\n")
	writeFilterPredicates(&b, params, in)
	b.WriteString("RETURN count(DISTINCT e) AS resultCount")

	return b.String(), params, nil
}

// BuildSkillFilterCountQuery is the advisor's consistency probe: an arbitrary
// subset of property clauses plus skill requirement groups, counted with the
// same predicate shapes as the main query.
func BuildSkillFilterCountQuery(clauses []PropertyClause, skillGroups [][]string, derivedSkillIDs []string, buckets ProficiencyBuckets) (string, map[string]any, error) {
	for i, group := range skillGroups {
		if len(group) == 0 {
			return "", nil, fmt.Errorf("query builder: empty skill group at index %d", i)
		}
	}

	params := map[string]any{
		"expertLevelSkillIds":     buckets.Expert,
		"proficientLevelSkillIds": buckets.Proficient,
		"learningLevelSkillIds":   buckets.Learning,
	}

	var conditions []string
	for _, c := range clauses {
		params[c.ParamName] = c.ParamValue
	}
	conditions = append(conditions, renderWhere(clauses)...)

	for i, group := range skillGroups {
		param := fmt.Sprintf("skillGroup%d", i)
		params[param] = group
		conditions = append(conditions, fmt.Sprintf(`EXISTS {
  MATCH (e)-[:HAS]->(us%[1]d:UserSkill)-[:FOR]->(s%[1]d:Skill)
  WHERE s%[1]d.id IN $%[2]s
    AND %[3]s
}`, i, param, proficiencyCase(fmt.Sprintf("s%d", i), fmt.Sprintf("us%d", i))))
	}

	if len(derivedSkillIDs) > 0 {
		params["derivedSkillIds"] = derivedSkillIDs
		conditions = append(conditions, derivedSkillPredicate())
	}

	var b strings.Builder
	b.WriteString("MATCH (e:Engineer)\n")
	if len(conditions) > 0 {
		b.WriteString("WHERE " + strings.Join(conditions, "\n  AND ") + "\n")
	}
	b.WriteString("RETURN count(DISTINCT e) AS resultCount")

	return b.String(), params, nil
}

// writeFilterPredicates renders the WHERE block shared by the main and count
// queries: property predicates, per-requirement HAS_ANY skill predicates,
// derived-skill existence, and required-domain predicates.
func writeFilterPredicates(b *strings.Builder, params map[string]any, in *QueryInput) {
	conditions := renderWhere(PropertyClauses(in.Crit))
	for _, c := range PropertyClauses(in.Crit) {
		params[c.ParamName] = c.ParamValue
	}

	// Per-requirement skill predicates: the engineer must hold at least one
	// skill from each requirement's expanded set at its minimum proficiency.
	if in.SkillFilterMode() {
		params["expertLevelSkillIds"] = in.Buckets.Expert
		params["proficientLevelSkillIds"] = in.Buckets.Proficient
		params["learningLevelSkillIds"] = in.Buckets.Learning
		for i, req := range in.Skills.Requirements {
			param := fmt.Sprintf("reqSkillIds%d", i)
			params[param] = req.ExpandedSkillIDs
			conditions = append(conditions, fmt.Sprintf(`EXISTS {
  MATCH (e)-[:HAS]->(rus%[1]d:UserSkill)-[:FOR]->(rs%[1]d:Skill)
  WHERE rs%[1]d.id IN $%[2]s
    AND %[3]s
}`, i, param, proficiencyCase(fmt.Sprintf("rs%d", i), fmt.Sprintf("rus%d", i))))
		}
	}

	// Derived skills: existence at any proficiency, never counted for ordering.
	if len(in.Crit.DerivedRequiredSkillIDs) > 0 {
		params["derivedSkillIds"] = in.Crit.DerivedRequiredSkillIDs
		conditions = append(conditions, derivedSkillPredicate())
	}

	// Required domains.
	conditions = appendDomainPredicates(conditions, params, in.RequiredBusiness,
		"HAS_BUSINESS_DOMAIN", "BusinessDomain", "requiredBusiness")
	conditions = appendDomainPredicates(conditions, params, in.RequiredTechnical,
		"HAS_TECHNICAL_DOMAIN", "TechnicalDomain", "requiredTechnical")

	if len(conditions) > 0 {
		b.WriteString("WHERE " + strings.Join(conditions, "\n  AND ") + "\n")
	}
}

func derivedSkillPredicate() string {
	return `ALL(derivedId IN $derivedSkillIds WHERE EXISTS {
  MATCH (e)-[:HAS]->(:UserSkill)-[:FOR]->(d:Skill)
  WHERE d.id = derivedId
})`
}

func appendDomainPredicates(conditions []string, params map[string]any, res *DomainResolution, rel, label, prefix string) []string {
	if res == nil {
		return conditions
	}
	for i, dom := range res.Domains {
		idsParam := fmt.Sprintf("%sIds%d", prefix, i)
		params[idsParam] = dom.ExpandedDomainIDs
		where := fmt.Sprintf("%sd%d.id IN $%s", prefix, i, idsParam)
		if dom.MinYears != nil {
			yearsParam := fmt.Sprintf("%sMinYears%d", prefix, i)
			params[yearsParam] = *dom.MinYears
			where += fmt.Sprintf(" AND %sr%d.years >= $%s", prefix, i, yearsParam)
		}
		conditions = append(conditions, fmt.Sprintf(`EXISTS {
  MATCH (e)-[%[1]sr%[2]d:%[3]s]->(%[1]sd%[2]d:%[4]s)
  WHERE %[5]s
}`, prefix, i, rel, label, where))
	}
	return conditions
}

// collectionSkillIDs is the skill set the evidence stage traverses: the full
// expansion in skill-filtered mode, the aligned set in team-focus-only mode,
// nothing in pure browse mode.
func (in *QueryInput) collectionSkillIDs() []string {
	if in.SkillFilterMode() {
		return in.Skills.LeafSkillIDs
	}
	if len(in.Crit.AlignedSkillIDs) > 0 {
		return in.Crit.AlignedSkillIDs
	}
	return []string{}
}

func writeSkillCollection(b *strings.Builder, params map[string]any, in *QueryInput) {
	originalIDs := []string{}
	originalNames := []string{}
	if in.Skills != nil {
		for _, req := range in.Skills.Requirements {
			originalIDs = append(originalIDs, req.OriginalSkillID)
			originalNames = append(originalNames, req.OriginalSkillName)
		}
	}
	params["originalSkillIds"] = originalIDs
	params["originalSkillNames"] = originalNames

	descendantType := MatchNone
	if in.SkillFilterMode() {
		descendantType = MatchDescendant
	}

	b.WriteString("OPTIONAL MATCH (e)-[:HAS]->(us:UserSkill)-[:FOR]->(s:Skill)\n")
	b.WriteString("WHERE s.id IN $targetSkillIds\n")
	fmt.Fprintf(b, `WITH e, matchedSkillCount, totalCount,
     collect(DISTINCT CASE WHEN s IS NULL THEN null ELSE {
       skillId: s.id, skillName: s.name,
       proficiencyLevel: us.proficiencyLevel,
       confidenceScore: us.confidenceScore,
       yearsUsed: us.yearsUsed,
       matchType: CASE WHEN s.id IN $originalSkillIds OR s.name IN $originalSkillNames THEN '%s' ELSE '%s' END,
       meetsProficiency: %s,
       meetsConfidence: us.confidenceScore >= $minConfidence
     } END) AS allRelevantSkills
`, MatchDirect, descendantType, proficiencyCase("s", "us"))
	b.WriteString(`WITH e, matchedSkillCount, totalCount, allRelevantSkills,
     [sk IN allRelevantSkills WHERE sk.meetsProficiency AND sk.meetsConfidence | sk.confidenceScore] AS qualifyingConfidences
WITH e, matchedSkillCount, totalCount, allRelevantSkills,
     CASE WHEN size(qualifyingConfidences) = 0 THEN 0.0
          ELSE reduce(total = 0.0, c IN qualifyingConfidences | total + c) / size(qualifyingConfidences)
     END AS avgConfidence
`)
}

func writePreferredCollection(b *strings.Builder, params map[string]any, in *QueryInput) {
	preferred := in.PreferredSkillIDs
	if preferred == nil {
		preferred = []string{}
	}
	params["preferredSkillIds"] = preferred
	b.WriteString("OPTIONAL MATCH (e)-[:HAS]->(:UserSkill)-[:FOR]->(ps:Skill)\n")
	b.WriteString("WHERE ps.id IN $preferredSkillIds\n")
	b.WriteString(`WITH e, matchedSkillCount, totalCount, allRelevantSkills, avgConfidence,
     collect(DISTINCT ps.id) AS matchedPreferredSkillIds
`)
}

func writeDomainCollection(b *strings.Builder, params map[string]any, in *QueryInput) {
	params["businessDomainIds"] = unionDomainIDs(in.RequiredBusiness, in.PreferredBusiness)
	params["technicalDomainIds"] = unionDomainIDs(in.RequiredTechnical, in.PreferredTechnical)

	b.WriteString("OPTIONAL MATCH (e)-[hbd:HAS_BUSINESS_DOMAIN]->(bd:BusinessDomain)\n")
	b.WriteString("WHERE bd.id IN $businessDomainIds\n")
	b.WriteString(`WITH e, matchedSkillCount, totalCount, allRelevantSkills, avgConfidence, matchedPreferredSkillIds,
     collect(DISTINCT CASE WHEN bd IS NULL THEN null ELSE {
       domainId: bd.id, domainName: bd.name, years: hbd.years
     } END) AS businessDomains
`)
	b.WriteString("OPTIONAL MATCH (e)-[htd:HAS_TECHNICAL_DOMAIN]->(td:TechnicalDomain)\n")
	b.WriteString("WHERE td.id IN $technicalDomainIds\n")
	b.WriteString(`WITH e, matchedSkillCount, totalCount, allRelevantSkills, avgConfidence, matchedPreferredSkillIds, businessDomains,
     collect(DISTINCT CASE WHEN td IS NULL THEN null ELSE {
       domainId: td.id, domainName: td.name, years: htd.years, source: htd.source
     } END) AS technicalDomains
`)
}

func unionDomainIDs(resolutions ...*DomainResolution) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, res := range resolutions {
		if res == nil {
			continue
		}
		for _, id := range res.FlattenIDs() {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
