package search

import (
	"fmt"
	"hash/fnv"
	"log"
	"sort"
	"strings"

	"engineer-search/internal/knowledge"
)

// InferenceResult is the output of one forward-chaining run.
type InferenceResult struct {
	Constraints []DerivedConstraint
	// RequiredSkillIDs are the flattened, deduplicated filter-effect skills of
	// every non-overridden rule.
	RequiredSkillIDs []string
	// SkillBoosts maps skill id to the max boost strength seen across rules.
	SkillBoosts map[string]float64
	// Warning is set when the fixpoint was not reached within the iteration cap.
	Warning string
}

// inferenceContext is the working state the rules are evaluated against.
// Fields the user set explicitly seed it; filter effects merge back in as if
// user-requested so chained rules can fire.
type inferenceContext struct {
	teamFocus       string
	seniority       string
	requiredSkills  map[string]bool
	businessDomains map[string]bool

	// skillProvenance tracks, per derived skill id, the rule chain that put it
	// into the context. Used to report provenance on downstream constraints.
	skillProvenance map[string][]string
}

// RunInference forward-chains the rule set over the request until the context
// hash stops changing or the iteration cap is hit. Overridden rules still emit
// their constraint for the audit trail but contribute nothing to the context,
// which breaks any chain that depended solely on them.
func RunInference(req *SearchRequest, kb *knowledge.Config) InferenceResult {
	ctx := &inferenceContext{
		teamFocus:       req.TeamFocus,
		seniority:       req.RequiredSeniorityLevel,
		requiredSkills:  map[string]bool{},
		businessDomains: map[string]bool{},
		skillProvenance: map[string][]string{},
	}
	for _, sr := range req.RequiredSkills {
		ctx.requiredSkills[sr.Skill] = true
	}
	for _, dr := range req.RequiredBusinessDomains {
		ctx.businessDomains[dr.Domain] = true
	}

	overridden := map[string]bool{}
	for _, id := range req.OverriddenRuleIDs {
		overridden[id] = true
	}

	result := InferenceResult{SkillBoosts: map[string]float64{}}
	fired := map[string]bool{}

	prevHash := ctx.hash()
	converged := false

	for iter := 0; iter < kb.MaxInferenceIterations; iter++ {
		for _, rule := range kb.Rules {
			if fired[rule.ID] {
				continue
			}
			matched, conditions, upstream := evaluateRule(rule, ctx)
			if !matched {
				continue
			}
			fired[rule.ID] = true

			constraint := DerivedConstraint{
				RuleID:            rule.ID,
				RuleName:          rule.Name,
				Effect:            rule.Action.Effect,
				TargetField:       rule.Action.TargetField,
				SkillIDs:          append([]string(nil), rule.Action.SkillIDs...),
				BoostStrength:     rule.Action.BoostStrength,
				MatchedConditions: conditions,
				Provenance:        upstream,
			}

			if overridden[rule.ID] {
				constraint.Override = &OverrideRecord{OverrideScope: OverrideScopeFull}
				result.Constraints = append(result.Constraints, constraint)
				continue
			}
			result.Constraints = append(result.Constraints, constraint)

			switch rule.Action.Effect {
			case knowledge.EffectFilter:
				chain := append(append([]string(nil), upstream...), rule.ID)
				for _, skillID := range rule.Action.SkillIDs {
					if !ctx.requiredSkills[skillID] {
						ctx.requiredSkills[skillID] = true
						ctx.skillProvenance[skillID] = chain
					}
				}
			case knowledge.EffectBoost:
				for _, skillID := range rule.Action.SkillIDs {
					if rule.Action.BoostStrength > result.SkillBoosts[skillID] {
						result.SkillBoosts[skillID] = rule.Action.BoostStrength
					}
				}
			}
		}

		h := ctx.hash()
		if h == prevHash {
			converged = true
			break
		}
		prevHash = h
	}

	if !converged {
		result.Warning = fmt.Sprintf("inference did not reach fixpoint within %d iterations", kb.MaxInferenceIterations)
		log.Printf("[Inference] %s", result.Warning)
	}

	// Flatten filter-effect skills from non-overridden constraints.
	seen := map[string]bool{}
	for _, c := range result.Constraints {
		if c.Effect != knowledge.EffectFilter || c.Override != nil {
			continue
		}
		for _, id := range c.SkillIDs {
			if !seen[id] {
				seen[id] = true
				result.RequiredSkillIDs = append(result.RequiredSkillIDs, id)
			}
		}
	}

	return result
}

// evaluateRule reports whether every condition matches, along with the matched
// condition descriptions and the upstream rule chain the match depends on.
func evaluateRule(rule knowledge.Rule, ctx *inferenceContext) (bool, []string, []string) {
	var conditions []string
	var upstream []string

	for _, cond := range rule.Conditions {
		ok := false
		switch cond.Field {
		case knowledge.FieldTeamFocus:
			ok = matchScalar(cond, ctx.teamFocus)
		case knowledge.FieldSeniority:
			ok = matchScalar(cond, ctx.seniority)
		case knowledge.FieldRequiredSkills:
			if cond.Operator == knowledge.OpContains && ctx.requiredSkills[cond.Value] {
				ok = true
				if chain, derived := ctx.skillProvenance[cond.Value]; derived {
					upstream = mergeChains(upstream, chain)
				}
			}
		case knowledge.FieldBusinessDomain:
			ok = cond.Operator == knowledge.OpContains && ctx.businessDomains[cond.Value]
		}
		if !ok {
			return false, nil, nil
		}
		conditions = append(conditions, fmt.Sprintf("%s %s %s", cond.Field, cond.Operator, cond.Value))
	}

	return true, conditions, upstream
}

func matchScalar(cond knowledge.Condition, value string) bool {
	if value == "" {
		return false
	}
	switch cond.Operator {
	case knowledge.OpEquals:
		return value == cond.Value
	case knowledge.OpIn:
		for _, candidate := range strings.Split(cond.Value, ",") {
			if strings.TrimSpace(candidate) == value {
				return true
			}
		}
	}
	return false
}

func mergeChains(existing, chain []string) []string {
	seen := map[string]bool{}
	for _, id := range existing {
		seen[id] = true
	}
	for _, id := range chain {
		if !seen[id] {
			seen[id] = true
			existing = append(existing, id)
		}
	}
	return existing
}

// hash produces a content hash of the context for fixpoint detection.
func (c *inferenceContext) hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(c.teamFocus))
	h.Write([]byte{0})
	h.Write([]byte(c.seniority))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(sortedKeys(c.requiredSkills), ",")))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(sortedKeys(c.businessDomains), ",")))
	return h.Sum64()
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
