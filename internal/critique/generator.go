package critique

import (
	"fmt"
	"sort"
	"strings"

	"engineer-search/internal/knowledge"
	"engineer-search/internal/search"
)

// Adjustment is one request edit a critique proposes.
type Adjustment struct {
	Property  string `json:"property"`
	Operation string `json:"operation"` // adjust | set | add | remove
	Direction string `json:"direction,omitempty"`
	Value     any    `json:"value,omitempty"`
}

// Suggestion is one 2-property critique with its support in the current
// result set.
type Suggestion struct {
	Pair        [2]string    `json:"pair"`
	Description string       `json:"description"`
	Matching    int          `json:"matching"`
	Support     float64      `json:"support"`
	Adjustments []Adjustment `json:"adjustments"`
}

// maxValuesPerProperty caps candidate values per property to the most
// frequent ones, bounding the pair enumeration.
const maxValuesPerProperty = 3

// Generator enumerates 2-property critiques from a result page.
type Generator struct {
	kb *knowledge.Config
}

func NewGenerator(kb *knowledge.Config) *Generator {
	return &Generator{kb: kb}
}

// Generate walks the configured property pairs and, for each pair of values
// observed in the results, counts how many result engineers satisfy both.
// Suggestions are sorted by support descending, ties by description.
func (g *Generator) Generate(matches []search.EngineerMatch, req *search.SearchRequest) []Suggestion {
	if len(matches) == 0 {
		return []Suggestion{}
	}

	values := map[string][]propertyValue{
		"seniority": g.seniorityValues(matches),
		"timezone":  timezoneValues(matches),
		"skills":    skillValues(matches),
	}

	var out []Suggestion
	for _, pair := range g.kb.CritiquePairs {
		for _, va := range values[pair[0]] {
			for _, vb := range values[pair[1]] {
				matching := 0
				for i := range matches {
					if va.holds(&matches[i], g.kb) && vb.holds(&matches[i], g.kb) {
						matching++
					}
				}
				if matching == 0 {
					continue
				}
				adjustments := append(va.adjustments(req), vb.adjustments(req)...)
				if len(adjustments) == 0 {
					// Both filters already active in the request.
					continue
				}
				out = append(out, Suggestion{
					Pair:     pair,
					Matching: matching,
					Support:  float64(matching) / float64(len(matches)),
					Description: fmt.Sprintf("focus on %s and %s (%d of %d results)",
						va.label, vb.label, matching, len(matches)),
					Adjustments: adjustments,
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Support != out[j].Support {
			return out[i].Support > out[j].Support
		}
		return out[i].Description < out[j].Description
	})
	return out
}

// propertyValue is one candidate value with its membership test and the edits
// that would enforce it.
type propertyValue struct {
	label       string
	holds       func(*search.EngineerMatch, *knowledge.Config) bool
	adjustments func(*search.SearchRequest) []Adjustment
}

func (g *Generator) seniorityValues(matches []search.EngineerMatch) []propertyValue {
	freq := map[string]int{}
	for i := range matches {
		if level := yearsToLevel(matches[i].YearsExperience, g.kb); level != "" {
			freq[level]++
		}
	}
	var out []propertyValue
	for _, level := range topValues(freq, maxValuesPerProperty) {
		out = append(out, propertyValue{
			label: level + " seniority",
			holds: func(m *search.EngineerMatch, kb *knowledge.Config) bool {
				return yearsToLevel(m.YearsExperience, kb) == level
			},
			adjustments: func(req *search.SearchRequest) []Adjustment {
				if req.RequiredSeniorityLevel == level {
					return nil
				}
				return []Adjustment{{Property: "requiredSeniorityLevel", Operation: "set", Value: level}}
			},
		})
	}
	return out
}

func timezoneValues(matches []search.EngineerMatch) []propertyValue {
	freq := map[string]int{}
	for i := range matches {
		if region := tzRegion(matches[i].Timezone); region != "" {
			freq[region]++
		}
	}
	var out []propertyValue
	for _, region := range topValues(freq, maxValuesPerProperty) {
		wildcard := region + "/*"
		out = append(out, propertyValue{
			label: "the " + region + " region",
			holds: func(m *search.EngineerMatch, _ *knowledge.Config) bool {
				return tzRegion(m.Timezone) == region
			},
			adjustments: func(req *search.SearchRequest) []Adjustment {
				for _, tz := range req.RequiredTimezone {
					if tz == wildcard || tzRegion(tz) == region && !strings.Contains(tz, "*") {
						return nil
					}
				}
				return []Adjustment{{Property: "requiredTimezone", Operation: "add", Value: wildcard}}
			},
		})
	}
	return out
}

func skillValues(matches []search.EngineerMatch) []propertyValue {
	freq := map[string]int{}
	names := map[string]string{}
	for i := range matches {
		for _, sk := range matches[i].MatchedSkills {
			freq[sk.SkillID]++
			names[sk.SkillID] = sk.SkillName
		}
	}
	var out []propertyValue
	for _, skillID := range topValues(freq, maxValuesPerProperty) {
		name := names[skillID]
		out = append(out, propertyValue{
			label: name,
			holds: func(m *search.EngineerMatch, _ *knowledge.Config) bool {
				for _, sk := range m.MatchedSkills {
					if sk.SkillID == skillID {
						return true
					}
				}
				return false
			},
			adjustments: func(req *search.SearchRequest) []Adjustment {
				for _, sr := range req.RequiredSkills {
					if sr.Skill == skillID || sr.Skill == name {
						return nil
					}
				}
				return []Adjustment{{Property: "requiredSkills", Operation: "add", Value: name}}
			},
		})
	}
	return out
}

// yearsToLevel maps experience to the narrowest matching seniority level,
// preferring the higher level where ranges overlap.
func yearsToLevel(years float64, kb *knowledge.Config) string {
	best := ""
	bestMin := -1
	for level, r := range kb.SeniorityRanges {
		if years < float64(r.MinYears) {
			continue
		}
		if r.MaxYears > 0 && years >= float64(r.MaxYears) {
			continue
		}
		if r.MinYears > bestMin {
			best = level
			bestMin = r.MinYears
		}
	}
	return best
}

func tzRegion(tz string) string {
	if i := strings.Index(tz, "/"); i > 0 {
		return tz[:i]
	}
	return tz
}

// topValues returns the n most frequent keys, ties broken alphabetically.
func topValues(freq map[string]int, n int) []string {
	keys := make([]string, 0, len(freq))
	for k := range freq {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
