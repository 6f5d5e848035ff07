package similarity

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"engineer-search/internal/graph"
	"engineer-search/internal/knowledge"
	"engineer-search/internal/search"
)

// Engine answers engineer-to-engineer similarity queries over the cached
// graph snapshots.
type Engine struct {
	db     *graph.DB
	kb     *knowledge.Config
	cache  *Cache
	search *search.Service
}

func NewEngine(db *graph.DB, kb *knowledge.Config, searchSvc *search.Service) *Engine {
	return &Engine{db: db, kb: kb, cache: NewCache(db, kb), search: searchSvc}
}

// Cache exposes the snapshot cache for refresh endpoints.
func (e *Engine) Cache() *Cache { return e.cache }

// SimilarResult is the response for one similar-engineers query.
type SimilarResult struct {
	Target        Profile              `json:"target"`
	Similar       []Scored             `json:"similar"`
	QueryMetadata search.QueryMetadata `json:"queryMetadata"`
}

// SimilarEngineers finds the engineers most similar to the target, diversity
// reordered, excluding the target itself.
func (e *Engine) SimilarEngineers(ctx context.Context, engineerID string, limit int) (*SimilarResult, error) {
	started := time.Now()
	limit = e.clampLimit(limit)

	scorer, err := e.loadScorer(ctx)
	if err != nil {
		return nil, err
	}

	session := e.db.Session(ctx)
	defer session.Close(ctx)

	target, err := LoadProfile(ctx, session, engineerID)
	if err != nil {
		return nil, err
	}
	candidates, err := LoadCandidates(ctx, session, engineerID)
	if err != nil {
		return nil, err
	}

	scored := e.rank(scorer, target, candidates)
	total := len(scored)

	scored = Diversify(scored, e.kb.DiversityPenalty, scorer.PairSimilarity)
	if len(scored) > limit {
		scored = scored[:limit]
	}

	log.Printf("[Similarity] %s: %d candidates, returning %d in %dms",
		engineerID, total, len(scored), time.Since(started).Milliseconds())

	return &SimilarResult{
		Target:  *target,
		Similar: scored,
		QueryMetadata: search.QueryMetadata{
			ExecutionTimeMs:           time.Since(started).Milliseconds(),
			CandidatesBeforeDiversity: total,
		},
	}, nil
}

// FilterSimilarityRequest combines a filter search with a reference engineer.
type FilterSimilarityRequest struct {
	search.SearchRequest
	ReferenceEngineerID string `json:"referenceEngineerId"`
}

// FilterSimilarityResponse carries the filter search result with its matches
// re-ranked by similarity to the reference.
type FilterSimilarityResponse struct {
	Reference Profile          `json:"reference"`
	Ranked    []RankedMatch    `json:"ranked"`
	Search    *search.Response `json:"search"`
}

// RankedMatch pairs one filtered engineer with its similarity evidence.
type RankedMatch struct {
	Match            search.EngineerMatch `json:"match"`
	SimilarityScore  float64              `json:"similarityScore"`
	Breakdown        Breakdown            `json:"breakdown"`
	SharedSkills     []string             `json:"sharedSkills"`
	CorrelatedSkills []string             `json:"correlatedSkills"`
}

// FilterSimilarity runs the filter search, then re-ranks the returned page by
// similarity to the reference engineer.
func (e *Engine) FilterSimilarity(ctx context.Context, req *FilterSimilarityRequest) (*FilterSimilarityResponse, error) {
	if req.ReferenceEngineerID == "" {
		return nil, &search.ValidationError{Issues: []search.ValidationIssue{
			{Field: "referenceEngineerId", Message: "is required"},
		}}
	}

	resp, err := e.search.Search(ctx, &req.SearchRequest)
	if err != nil {
		return nil, err
	}

	scorer, err := e.loadScorer(ctx)
	if err != nil {
		return nil, err
	}

	session := e.db.Session(ctx)
	defer session.Close(ctx)

	reference, err := LoadProfile(ctx, session, req.ReferenceEngineerID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Matches))
	matchByID := make(map[string]search.EngineerMatch, len(resp.Matches))
	for _, m := range resp.Matches {
		if m.ID == req.ReferenceEngineerID {
			continue
		}
		ids = append(ids, m.ID)
		matchByID[m.ID] = m
	}

	profiles, err := LoadProfilesByIDs(ctx, session, ids)
	if err != nil {
		return nil, err
	}

	scored := e.rank(scorer, reference, profiles)
	ranked := make([]RankedMatch, 0, len(scored))
	for _, s := range scored {
		ranked = append(ranked, RankedMatch{
			Match:            matchByID[s.Profile.ID],
			SimilarityScore:  s.SimilarityScore,
			Breakdown:        s.Breakdown,
			SharedSkills:     s.SharedSkills,
			CorrelatedSkills: s.CorrelatedSkills,
		})
	}

	return &FilterSimilarityResponse{Reference: *reference, Ranked: ranked, Search: resp}, nil
}

// GraphStats summarises the loaded snapshots for operational visibility.
type GraphStats struct {
	Skills           int `json:"skills"`
	BusinessDomains  int `json:"businessDomains"`
	TechnicalDomains int `json:"technicalDomains"`
}

func (e *Engine) Stats(ctx context.Context) (*GraphStats, error) {
	sg, err := e.cache.SkillGraph(ctx)
	if err != nil {
		return nil, err
	}
	dg, err := e.cache.DomainGraphs(ctx)
	if err != nil {
		return nil, err
	}
	order, err := sg.g.Order()
	if err != nil {
		return nil, fmt.Errorf("skill graph order: %w", err)
	}
	return &GraphStats{
		Skills:           order,
		BusinessDomains:  len(dg.Business.nodes),
		TechnicalDomains: len(dg.Technical.nodes),
	}, nil
}

func (e *Engine) loadScorer(ctx context.Context) (*Scorer, error) {
	sg, err := e.cache.SkillGraph(ctx)
	if err != nil {
		return nil, &search.SearchError{Err: err}
	}
	dg, err := e.cache.DomainGraphs(ctx)
	if err != nil {
		return nil, &search.SearchError{Err: err}
	}
	return NewScorer(e.kb.Similarity, sg, dg), nil
}

// rank scores every candidate and sorts by similarity desc, ties by id asc.
func (e *Engine) rank(scorer *Scorer, ref *Profile, candidates []Profile) []Scored {
	scored := make([]Scored, 0, len(candidates))
	for i := range candidates {
		scored = append(scored, scorer.Score(ref, &candidates[i]))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].SimilarityScore != scored[j].SimilarityScore {
			return scored[i].SimilarityScore > scored[j].SimilarityScore
		}
		return scored[i].Profile.ID < scored[j].Profile.ID
	})
	return scored
}

func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		return e.kb.DefaultLimit
	}
	if limit > e.kb.MaxLimit {
		return e.kb.MaxLimit
	}
	return limit
}
