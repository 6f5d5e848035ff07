package similarity

import (
	"math"
	"sort"
	"strings"

	"engineer-search/internal/knowledge"
)

// Breakdown is the per-dimension similarity of one candidate.
type Breakdown struct {
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Domain     float64 `json:"domain"`
	Timezone   float64 `json:"timezone"`
	Total      float64 `json:"total"`
}

// Scored is a candidate with its similarity evidence against the reference.
type Scored struct {
	Profile          Profile   `json:"engineer"`
	SimilarityScore  float64   `json:"similarityScore"`
	Breakdown        Breakdown `json:"breakdown"`
	SharedSkills     []string  `json:"sharedSkills"`
	CorrelatedSkills []string  `json:"correlatedSkills"`
}

// Scorer computes weighted similarity over fixed graph snapshots.
type Scorer struct {
	weights knowledge.SimilarityWeights
	skills  *SkillGraph
	domains *DomainGraphs
}

func NewScorer(weights knowledge.SimilarityWeights, skills *SkillGraph, domains *DomainGraphs) *Scorer {
	return &Scorer{weights: weights, skills: skills, domains: domains}
}

// Score computes the four subscores and their weighted combination. All
// subscores land in [0,1].
func (s *Scorer) Score(ref, cand *Profile) Scored {
	skillScore, shared, correlated := s.skillSimilarity(ref, cand)

	b := Breakdown{
		Skills:     skillScore,
		Experience: experienceSimilarity(ref.YearsExperience, cand.YearsExperience),
		Domain:     s.domainSimilarity(ref, cand),
		Timezone:   timezoneSimilarity(ref.Timezone, cand.Timezone),
	}
	b.Total = b.Skills*s.weights.Skills +
		b.Experience*s.weights.Experience +
		b.Domain*s.weights.Domain +
		b.Timezone*s.weights.Timezone

	return Scored{
		Profile:          *cand,
		SimilarityScore:  b.Total,
		Breakdown:        b,
		SharedSkills:     shared,
		CorrelatedSkills: correlated,
	}
}

// PairSimilarity is the diversity pass's candidate-vs-candidate measure; it
// reuses the same subscores.
func (s *Scorer) PairSimilarity(a, b *Profile) float64 {
	return s.Score(a, b).SimilarityScore
}

// skillSimilarity: shared skills count fully; each unshared skill contributes
// its best correlation to the other side. Normalised by the larger skill set.
func (s *Scorer) skillSimilarity(ref, cand *Profile) (float64, []string, []string) {
	refSet := toSet(ref.SkillIDs)
	candSet := toSet(cand.SkillIDs)

	maxSize := len(refSet)
	if len(candSet) > maxSize {
		maxSize = len(candSet)
	}
	if maxSize == 0 {
		return 0, []string{}, []string{}
	}

	shared := []string{}
	for id := range refSet {
		if candSet[id] {
			shared = append(shared, id)
		}
	}
	sort.Strings(shared)

	correlatedSet := map[string]bool{}
	bestAcross := func(from, to map[string]bool, collect bool) float64 {
		sum := 0.0
		for a := range from {
			if to[a] {
				continue
			}
			best := 0.0
			bestOther := ""
			for b := range to {
				if from[b] {
					continue
				}
				if w := s.skills.Correlation(a, b); w > best {
					best = w
					bestOther = b
				}
			}
			sum += best
			if collect && bestOther != "" {
				correlatedSet[bestOther] = true
			}
		}
		return sum
	}

	// Symmetric: average the two directions so Score(a,b) == Score(b,a).
	correlation := (bestAcross(refSet, candSet, true) + bestAcross(candSet, refSet, false)) / 2

	score := (float64(len(shared)) + correlation) / float64(maxSize)
	return math.Min(score, 1), shared, sortedKeys(correlatedSet)
}

func experienceSimilarity(ref, cand float64) float64 {
	denom := math.Max(math.Max(ref, cand), 1)
	return 1 - math.Abs(ref-cand)/denom
}

// domainSimilarity averages the hierarchy-aware scores of the business and
// technical sides; sides where the reference has no domains are skipped.
func (s *Scorer) domainSimilarity(ref, cand *Profile) float64 {
	sum := 0.0
	sides := 0
	if len(ref.BusinessDomainIDs) > 0 {
		sum += setHierarchySimilarity(s.domains.Business, ref.BusinessDomainIDs, cand.BusinessDomainIDs)
		sides++
	}
	if len(ref.TechnicalDomainIDs) > 0 {
		sum += setHierarchySimilarity(s.domains.Technical, ref.TechnicalDomainIDs, cand.TechnicalDomainIDs)
		sides++
	}
	if sides == 0 {
		return 0
	}
	return sum / float64(sides)
}

// setHierarchySimilarity: each reference domain takes its best pairwise score
// against the candidate's domains, then the mean over reference domains.
func setHierarchySimilarity(g *DomainGraph, refIDs, candIDs []string) float64 {
	if len(candIDs) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range refIDs {
		best := 0.0
		for _, c := range candIDs {
			if v := hierarchySimilarity(g, r, c); v > best {
				best = v
			}
		}
		sum += best
	}
	return sum / float64(len(refIDs))
}

func hierarchySimilarity(g *DomainGraph, a, b string) float64 {
	if a == b {
		return 1.0
	}
	pa, pb := g.parent(a), g.parent(b)
	if pa != "" && (pa == b || pa == pb) || pb != "" && pb == a {
		return 0.7
	}
	ancestorsA := g.ancestors(a)
	for ancestor := range g.ancestors(b) {
		if ancestorsA[ancestor] {
			return 0.4
		}
	}
	if ea := g.encompassedBy(a); ea != "" && ea == g.encompassedBy(b) {
		return 0.3
	}
	return 0
}

// timezoneSimilarity: exact zone 1.0, same region 0.67, adjacent region 0.33.
func timezoneSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}
	ra, rb := tzRegion(a), tzRegion(b)
	if ra == rb {
		return 0.67
	}
	for _, adj := range adjacentRegions[ra] {
		if adj == rb {
			return 0.33
		}
	}
	return 0
}

func tzRegion(tz string) string {
	if i := strings.Index(tz, "/"); i > 0 {
		return tz[:i]
	}
	return tz
}

// adjacentRegions approximates geographic adjacency between IANA regions.
var adjacentRegions = map[string][]string{
	"America":   {"Atlantic", "Pacific"},
	"Europe":    {"Atlantic", "Africa", "Asia"},
	"Africa":    {"Europe", "Atlantic", "Indian"},
	"Asia":      {"Europe", "Australia", "Pacific", "Indian"},
	"Australia": {"Asia", "Pacific", "Indian"},
	"Atlantic":  {"America", "Europe", "Africa"},
	"Pacific":   {"America", "Asia", "Australia"},
	"Indian":    {"Africa", "Asia", "Australia"},
}

func toSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
