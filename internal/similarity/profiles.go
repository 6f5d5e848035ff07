package similarity

import (
	"context"

	"engineer-search/internal/graph"
	"engineer-search/internal/search"
)

// Profile is the slice of an engineer the similarity engine compares.
type Profile struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Headline           string   `json:"headline,omitempty"`
	YearsExperience    float64  `json:"yearsExperience"`
	Timezone           string   `json:"timezone"`
	SkillIDs           []string `json:"skillIds"`
	BusinessDomainIDs  []string `json:"businessDomainIds"`
	TechnicalDomainIDs []string `json:"technicalDomainIds"`
}

const profileQueryBody = `OPTIONAL MATCH (e)-[:HAS]->(:UserSkill)-[:FOR]->(s:Skill)
WITH e, collect(DISTINCT s.id) AS skillIds
OPTIONAL MATCH (e)-[:HAS_BUSINESS_DOMAIN]->(bd:BusinessDomain)
WITH e, skillIds, collect(DISTINCT bd.id) AS businessDomainIds
OPTIONAL MATCH (e)-[:HAS_TECHNICAL_DOMAIN]->(td:TechnicalDomain)
RETURN e.id AS id, e.name AS name, e.headline AS headline,
       e.yearsExperience AS yearsExperience, e.timezone AS timezone,
       skillIds, businessDomainIds, collect(DISTINCT td.id) AS technicalDomainIds`

// LoadProfile fetches one engineer's comparison profile.
func LoadProfile(ctx context.Context, runner graph.Runner, engineerID string) (*Profile, error) {
	records, err := runner.Collect(ctx,
		"MATCH (e:Engineer {id: $id})\n"+profileQueryBody,
		map[string]any{"id": engineerID})
	if err != nil {
		return nil, &search.SearchError{Err: err}
	}
	if len(records) == 0 {
		return nil, &search.NotFoundError{Code: "engineer_not_found", ID: engineerID}
	}
	p := parseProfile(records[0])
	return &p, nil
}

// LoadCandidates fetches every engineer except the reference.
func LoadCandidates(ctx context.Context, runner graph.Runner, excludeID string) ([]Profile, error) {
	records, err := runner.Collect(ctx,
		"MATCH (e:Engineer)\nWHERE e.id <> $excludeId\n"+profileQueryBody,
		map[string]any{"excludeId": excludeID})
	if err != nil {
		return nil, &search.SearchError{Err: err}
	}
	return parseProfiles(records), nil
}

// LoadProfilesByIDs fetches the comparison profiles for a known id set.
func LoadProfilesByIDs(ctx context.Context, runner graph.Runner, ids []string) ([]Profile, error) {
	if len(ids) == 0 {
		return []Profile{}, nil
	}
	records, err := runner.Collect(ctx,
		"MATCH (e:Engineer)\nWHERE e.id IN $ids\n"+profileQueryBody,
		map[string]any{"ids": ids})
	if err != nil {
		return nil, &search.SearchError{Err: err}
	}
	return parseProfiles(records), nil
}

func parseProfiles(records []graph.Record) []Profile {
	out := make([]Profile, 0, len(records))
	for _, rec := range records {
		out = append(out, parseProfile(rec))
	}
	return out
}

func parseProfile(rec graph.Record) Profile {
	return Profile{
		ID:                 graph.String(rec["id"]),
		Name:               graph.String(rec["name"]),
		Headline:           graph.String(rec["headline"]),
		YearsExperience:    graph.Float(rec["yearsExperience"]),
		Timezone:           graph.String(rec["timezone"]),
		SkillIDs:           graph.StringSlice(rec["skillIds"]),
		BusinessDomainIDs:  graph.StringSlice(rec["businessDomainIds"]),
		TechnicalDomainIDs: graph.StringSlice(rec["technicalDomainIds"]),
	}
}
