package critique

import (
	"fmt"
	"sort"

	"engineer-search/internal/knowledge"
	"engineer-search/internal/search"
)

// AppliedAdjustment records one successful edit; Warning is set when a bound
// was hit and the value was clamped.
type AppliedAdjustment struct {
	Adjustment Adjustment `json:"adjustment"`
	Warning    string     `json:"warning,omitempty"`
}

// FailedAdjustment records one rejected edit and why.
type FailedAdjustment struct {
	Adjustment Adjustment `json:"adjustment"`
	Reason     string     `json:"reason"`
}

// ApplyResult is the outcome of mapping adjustments over a base request.
type ApplyResult struct {
	Request *search.SearchRequest `json:"request"`
	Applied []AppliedAdjustment   `json:"applied"`
	Failed  []FailedAdjustment    `json:"failed"`
}

// Applier maps critique adjustments over requests using a fixed per-property
// operation table.
type Applier struct {
	kb *knowledge.Config
}

func NewApplier(kb *knowledge.Config) *Applier {
	return &Applier{kb: kb}
}

type applyFunc func(*Applier, *search.SearchRequest, Adjustment) (string, error)

// operationTable: property -> operation -> handler. Anything outside the
// table fails with an unsupported-operation reason.
var operationTable = map[string]map[string]applyFunc{
	"requiredSeniorityLevel": {
		"set":    (*Applier).setSeniority,
		"adjust": (*Applier).adjustSeniority,
		"remove": (*Applier).removeSeniority,
	},
	"requiredTimezone": {
		"set":    (*Applier).setTimezones,
		"add":    (*Applier).addTimezone,
		"remove": (*Applier).removeTimezone,
	},
	"requiredSkills": {
		"add":    (*Applier).addSkill,
		"remove": (*Applier).removeSkill,
	},
	"maxBudget": {
		"set":    (*Applier).setBudget,
		"adjust": (*Applier).adjustBudget,
	},
	"requiredMaxStartTime": {
		"set":    (*Applier).setStartTime,
		"adjust": (*Applier).adjustStartTime,
	},
}

// Apply clones the base request and applies each adjustment in order.
// Failures leave the request untouched for that adjustment only.
func (a *Applier) Apply(base *search.SearchRequest, adjustments []Adjustment) *ApplyResult {
	req := cloneRequest(base)
	result := &ApplyResult{Request: req, Applied: []AppliedAdjustment{}, Failed: []FailedAdjustment{}}

	for _, adj := range adjustments {
		ops, ok := operationTable[adj.Property]
		if !ok {
			result.Failed = append(result.Failed, FailedAdjustment{
				Adjustment: adj, Reason: fmt.Sprintf("property %q is not adjustable", adj.Property),
			})
			continue
		}
		fn, ok := ops[adj.Operation]
		if !ok {
			result.Failed = append(result.Failed, FailedAdjustment{
				Adjustment: adj,
				Reason:     fmt.Sprintf("operation %q is not supported for %q", adj.Operation, adj.Property),
			})
			continue
		}
		warning, err := fn(a, req, adj)
		if err != nil {
			result.Failed = append(result.Failed, FailedAdjustment{Adjustment: adj, Reason: err.Error()})
			continue
		}
		result.Applied = append(result.Applied, AppliedAdjustment{Adjustment: adj, Warning: warning})
	}

	return result
}

func (a *Applier) setSeniority(req *search.SearchRequest, adj Adjustment) (string, error) {
	level, ok := adj.Value.(string)
	if !ok {
		return "", fmt.Errorf("seniority value must be a string")
	}
	if _, known := a.kb.SeniorityRanges[level]; !known {
		return "", fmt.Errorf("unknown seniority level %q", level)
	}
	req.RequiredSeniorityLevel = level
	return "", nil
}

func (a *Applier) adjustSeniority(req *search.SearchRequest, adj Adjustment) (string, error) {
	if req.RequiredSeniorityLevel == "" {
		return "", fmt.Errorf("requiredSeniorityLevel is not set")
	}
	levels := a.orderedLevels()
	idx := -1
	for i, l := range levels {
		if l == req.RequiredSeniorityLevel {
			idx = i
		}
	}
	if idx < 0 {
		return "", fmt.Errorf("unknown seniority level %q", req.RequiredSeniorityLevel)
	}
	switch adj.Direction {
	case "up":
		if idx == len(levels)-1 {
			return fmt.Sprintf("%q is already the highest level", levels[idx]), nil
		}
		req.RequiredSeniorityLevel = levels[idx+1]
	case "down":
		if idx == 0 {
			return fmt.Sprintf("%q is already the lowest level", levels[idx]), nil
		}
		req.RequiredSeniorityLevel = levels[idx-1]
	default:
		return "", fmt.Errorf("adjust direction must be up or down")
	}
	return "", nil
}

func (a *Applier) removeSeniority(req *search.SearchRequest, _ Adjustment) (string, error) {
	req.RequiredSeniorityLevel = ""
	return "", nil
}

func (a *Applier) setTimezones(req *search.SearchRequest, adj Adjustment) (string, error) {
	zones, err := stringValues(adj.Value)
	if err != nil {
		return "", err
	}
	req.RequiredTimezone = zones
	return "", nil
}

func (a *Applier) addTimezone(req *search.SearchRequest, adj Adjustment) (string, error) {
	zone, ok := adj.Value.(string)
	if !ok {
		return "", fmt.Errorf("timezone value must be a string")
	}
	for _, tz := range req.RequiredTimezone {
		if tz == zone {
			return fmt.Sprintf("timezone %q was already required", zone), nil
		}
	}
	req.RequiredTimezone = append(req.RequiredTimezone, zone)
	return "", nil
}

func (a *Applier) removeTimezone(req *search.SearchRequest, adj Adjustment) (string, error) {
	zone, ok := adj.Value.(string)
	if !ok {
		return "", fmt.Errorf("timezone value must be a string")
	}
	for i, tz := range req.RequiredTimezone {
		if tz == zone {
			req.RequiredTimezone = append(req.RequiredTimezone[:i], req.RequiredTimezone[i+1:]...)
			return "", nil
		}
	}
	return "", fmt.Errorf("timezone %q is not in the request", zone)
}

func (a *Applier) addSkill(req *search.SearchRequest, adj Adjustment) (string, error) {
	skill, ok := adj.Value.(string)
	if !ok {
		return "", fmt.Errorf("skill value must be a string")
	}
	for _, sr := range req.RequiredSkills {
		if sr.Skill == skill {
			return fmt.Sprintf("skill %q was already required", skill), nil
		}
	}
	req.RequiredSkills = append(req.RequiredSkills, search.SkillRequirement{Skill: skill})
	return "", nil
}

func (a *Applier) removeSkill(req *search.SearchRequest, adj Adjustment) (string, error) {
	skill, ok := adj.Value.(string)
	if !ok {
		return "", fmt.Errorf("skill value must be a string")
	}
	for i, sr := range req.RequiredSkills {
		if sr.Skill == skill {
			req.RequiredSkills = append(req.RequiredSkills[:i], req.RequiredSkills[i+1:]...)
			return "", nil
		}
	}
	return "", fmt.Errorf("skill %q is not in the request", skill)
}

func (a *Applier) setBudget(req *search.SearchRequest, adj Adjustment) (string, error) {
	v, ok := floatValue(adj.Value)
	if !ok || v <= 0 {
		return "", fmt.Errorf("budget value must be a positive number")
	}
	req.MaxBudget = &v
	return "", nil
}

// budgetStep is the relative change per budget adjust.
const budgetStep = 0.1

func (a *Applier) adjustBudget(req *search.SearchRequest, adj Adjustment) (string, error) {
	if req.MaxBudget == nil {
		return "", fmt.Errorf("maxBudget is not set")
	}
	switch adj.Direction {
	case "up":
		v := *req.MaxBudget * (1 + budgetStep)
		req.MaxBudget = &v
	case "down":
		v := *req.MaxBudget * (1 - budgetStep)
		req.MaxBudget = &v
	default:
		return "", fmt.Errorf("adjust direction must be up or down")
	}
	return "", nil
}

func (a *Applier) setStartTime(req *search.SearchRequest, adj Adjustment) (string, error) {
	timeline, ok := adj.Value.(string)
	if !ok || search.TimelineIndex(timeline) < 0 {
		return "", fmt.Errorf("unknown start timeline %v", adj.Value)
	}
	req.RequiredMaxStartTime = timeline
	return "", nil
}

func (a *Applier) adjustStartTime(req *search.SearchRequest, adj Adjustment) (string, error) {
	current := req.RequiredMaxStartTime
	if current == "" {
		current = search.StartTimelineOrder[len(search.StartTimelineOrder)-1]
	}
	idx := search.TimelineIndex(current)
	switch adj.Direction {
	case "up":
		if idx == len(search.StartTimelineOrder)-1 {
			return fmt.Sprintf("%q is already the latest timeline", current), nil
		}
		req.RequiredMaxStartTime = search.StartTimelineOrder[idx+1]
	case "down":
		if idx == 0 {
			return fmt.Sprintf("%q is already the soonest timeline", current), nil
		}
		req.RequiredMaxStartTime = search.StartTimelineOrder[idx-1]
	default:
		return "", fmt.Errorf("adjust direction must be up or down")
	}
	return "", nil
}

// orderedLevels sorts seniority levels by their minimum years.
func (a *Applier) orderedLevels() []string {
	levels := make([]string, 0, len(a.kb.SeniorityRanges))
	for l := range a.kb.SeniorityRanges {
		levels = append(levels, l)
	}
	sort.Slice(levels, func(i, j int) bool {
		ri, rj := a.kb.SeniorityRanges[levels[i]], a.kb.SeniorityRanges[levels[j]]
		if ri.MinYears != rj.MinYears {
			return ri.MinYears < rj.MinYears
		}
		return levels[i] < levels[j]
	})
	return levels
}

func cloneRequest(base *search.SearchRequest) *search.SearchRequest {
	req := *base
	req.RequiredSkills = append([]search.SkillRequirement(nil), base.RequiredSkills...)
	req.PreferredSkills = append([]search.SkillRequirement(nil), base.PreferredSkills...)
	req.RequiredTimezone = append([]string(nil), base.RequiredTimezone...)
	req.PreferredTimezone = append([]string(nil), base.PreferredTimezone...)
	req.OverriddenRuleIDs = append([]string(nil), base.OverriddenRuleIDs...)
	req.RequiredBusinessDomains = append([]search.DomainRequirement(nil), base.RequiredBusinessDomains...)
	req.PreferredBusinessDomains = append([]search.DomainRequirement(nil), base.PreferredBusinessDomains...)
	req.RequiredTechnicalDomains = append([]search.DomainRequirement(nil), base.RequiredTechnicalDomains...)
	req.PreferredTechnicalDomains = append([]search.DomainRequirement(nil), base.PreferredTechnicalDomains...)
	if base.MaxBudget != nil {
		v := *base.MaxBudget
		req.MaxBudget = &v
	}
	if base.StretchBudget != nil {
		v := *base.StretchBudget
		req.StretchBudget = &v
	}
	return &req
}

func stringValues(v any) ([]string, error) {
	switch vv := v.(type) {
	case []string:
		return append([]string(nil), vv...), nil
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("timezone list must contain strings")
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return []string{vv}, nil
	}
	return nil, fmt.Errorf("timezone value must be a string or list of strings")
}

func floatValue(v any) (float64, bool) {
	switch vv := v.(type) {
	case float64:
		return vv, true
	case int:
		return float64(vv), true
	case int64:
		return float64(vv), true
	}
	return 0, false
}
