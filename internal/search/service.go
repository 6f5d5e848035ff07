package search

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"engineer-search/internal/graph"
	"engineer-search/internal/knowledge"
)

// Adviser produces constraint advice when a search comes back sparse. The
// concrete implementation lives in internal/advisor; the indirection keeps
// that package a consumer of this one.
type Adviser interface {
	Advise(ctx context.Context, input *AdviceInput) (any, error)
}

// AdviceInput is everything the advisor needs to re-test constraint subsets.
type AdviceInput struct {
	Request    *SearchRequest
	Crit       *ExpandedCriteria
	Skills     *SkillResolution
	Buckets    ProficiencyBuckets
	TotalCount int
}

// AuditSink records completed searches. Best-effort: implementations must not
// fail the search.
type AuditSink interface {
	RecordSearch(ctx context.Context, queryID string, req *SearchRequest, totalCount int, executionMs int64, advisorRan bool)
}

// Service sequences a filter search: expand -> resolve -> query -> parse ->
// score -> advise. Every graph session it acquires is released on every exit
// path.
type Service struct {
	db      *graph.DB
	kb      *knowledge.Config
	adviser Adviser
	audit   AuditSink
}

func NewService(db *graph.DB, kb *knowledge.Config) *Service {
	return &Service{db: db, kb: kb}
}

func (s *Service) SetAdviser(a Adviser) { s.adviser = a }
func (s *Service) SetAudit(sink AuditSink) { s.audit = sink }

// KB exposes the knowledge-base configuration to collaborating packages.
func (s *Service) KB() *knowledge.Config { return s.kb }

type resolutionSet struct {
	skills             *SkillResolution
	preferredSkills    *SkillResolution
	requiredBusiness   *DomainResolution
	preferredBusiness  *DomainResolution
	requiredTechnical  *DomainResolution
	preferredTechnical *DomainResolution
}

// Search executes one filter search end to end.
func (s *Service) Search(ctx context.Context, req *SearchRequest) (*Response, error) {
	if err := Validate(req, s.kb); err != nil {
		return nil, err
	}

	started := time.Now()
	queryID := uuid.New().String()
	crit := Expand(req, s.kb)

	resolved, err := s.resolveAll(ctx, crit)
	if err != nil {
		return nil, err
	}

	buckets := BucketSkills(resolved.skills.Requirements)

	in := &QueryInput{
		Crit:               crit,
		Skills:             resolved.skills,
		Buckets:            buckets,
		RequiredBusiness:   resolved.requiredBusiness,
		PreferredBusiness:  resolved.preferredBusiness,
		RequiredTechnical:  resolved.requiredTechnical,
		PreferredTechnical: resolved.preferredTechnical,
		PreferredSkillIDs:  s.preferredEvidenceIDs(crit, resolved.preferredSkills),
		MinConfidence:      s.kb.MinConfidence,
	}

	query, params, err := BuildSearchQuery(in)
	if err != nil {
		return nil, &SearchError{Err: err}
	}

	session := s.db.Session(ctx)
	defer session.Close(ctx)

	records, err := session.Collect(ctx, query, params)
	if err != nil {
		return nil, &SearchError{Err: err}
	}

	matches, totalCount := ParseRecords(records, in)
	matches = NewScorer(s.kb).Score(matches, crit, resolved.skills, resolved.preferredSkills)

	resp := &Response{
		Matches:            matches,
		TotalCount:         totalCount,
		AppliedFilters:     crit.AppliedFilters,
		AppliedPreferences: crit.AppliedPreferences,
		DefaultsApplied:    crit.DefaultsApplied,
		DerivedConstraints: crit.DerivedConstraints,
		OverriddenRuleIDs:  req.OverriddenRuleIDs,
		UnresolvedIdentifiers: append(append([]string(nil), resolved.skills.Unresolved...),
			resolved.preferredSkills.Unresolved...),
		QueryMetadata: QueryMetadata{InferenceWarning: crit.InferenceWarning},
	}
	if resp.OverriddenRuleIDs == nil {
		resp.OverriddenRuleIDs = []string{}
	}

	advisorRan := false
	if s.adviser != nil && totalCount < s.kb.AdvisorThreshold {
		advisorRan = true
		advice, err := s.adviser.Advise(ctx, &AdviceInput{
			Request:    req,
			Crit:       crit,
			Skills:     resolved.skills,
			Buckets:    buckets,
			TotalCount: totalCount,
		})
		if err != nil {
			// Advice is an enrichment; a failing advisor never fails the search.
			log.Printf("[Search] Advisor failed: %v", err)
		} else {
			resp.Advice = advice
		}
	}

	resp.QueryMetadata.ExecutionTimeMs = time.Since(started).Milliseconds()

	if s.audit != nil {
		s.audit.RecordSearch(ctx, queryID, req, totalCount, resp.QueryMetadata.ExecutionTimeMs, advisorRan)
	}

	log.Printf("[Search] query=%s total=%d returned=%d in %dms (advisor=%v)",
		queryID, totalCount, len(matches), resp.QueryMetadata.ExecutionTimeMs, advisorRan)

	return resp, nil
}

// resolveAll fans skill and domain resolution out in parallel. Each goroutine
// gets its own session: the driver pool is shared, sessions are not.
func (s *Service) resolveAll(ctx context.Context, crit *ExpandedCriteria) (*resolutionSet, error) {
	type skillsOut struct {
		required  *SkillResolution
		preferred *SkillResolution
		err       error
	}
	type domainsOut struct {
		required  *DomainResolution
		preferred *DomainResolution
		err       error
	}

	skillsCh := make(chan skillsOut, 1)
	businessCh := make(chan domainsOut, 1)
	technicalCh := make(chan domainsOut, 1)

	go func() {
		session := s.db.Session(ctx)
		defer session.Close(ctx)
		required, err := ResolveSkills(ctx, session, crit.RequiredSkills, ProficiencyLearning)
		if err != nil {
			skillsCh <- skillsOut{err: err}
			return
		}
		preferred, err := ResolveSkills(ctx, session, crit.PreferredSkills, ProficiencyLearning)
		skillsCh <- skillsOut{required: required, preferred: preferred, err: err}
	}()

	go func() {
		session := s.db.Session(ctx)
		defer session.Close(ctx)
		required, err := ResolveDomains(ctx, session, LabelBusinessDomain, crit.RequiredBusinessDomains)
		if err != nil {
			businessCh <- domainsOut{err: err}
			return
		}
		preferred, err := ResolveDomains(ctx, session, LabelBusinessDomain, crit.PreferredBusinessDomains)
		businessCh <- domainsOut{required: required, preferred: preferred, err: err}
	}()

	go func() {
		session := s.db.Session(ctx)
		defer session.Close(ctx)
		required, err := ResolveDomains(ctx, session, LabelTechnicalDomain, crit.RequiredTechnicalDomains)
		if err != nil {
			technicalCh <- domainsOut{err: err}
			return
		}
		preferred, err := ResolveDomains(ctx, session, LabelTechnicalDomain, crit.PreferredTechnicalDomains)
		technicalCh <- domainsOut{required: required, preferred: preferred, err: err}
	}()

	skills := <-skillsCh
	business := <-businessCh
	technical := <-technicalCh

	for _, err := range []error{skills.err, business.err, technical.err} {
		if err != nil {
			return nil, err
		}
	}

	return &resolutionSet{
		skills:             skills.required,
		preferredSkills:    skills.preferred,
		requiredBusiness:   business.required,
		preferredBusiness:  business.preferred,
		requiredTechnical:  technical.required,
		preferredTechnical: technical.preferred,
	}, nil
}

// preferredEvidenceIDs unions the preferred expansion, derived boost skills,
// and team-focus aligned skills into the evidence set the query collects.
func (s *Service) preferredEvidenceIDs(crit *ExpandedCriteria, preferred *SkillResolution) []string {
	seen := map[string]bool{}
	out := []string{}
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	if preferred != nil {
		for _, id := range preferred.LeafSkillIDs {
			add(id)
		}
	}
	for id := range crit.DerivedSkillBoosts {
		add(id)
	}
	for _, id := range crit.AlignedSkillIDs {
		add(id)
	}
	return out
}
