package advisor

import (
	"context"
	"fmt"
	"log"
	"strings"

	"engineer-search/internal/graph"
	"engineer-search/internal/knowledge"
	"engineer-search/internal/search"
)

// Narrator turns advisor findings into a prose explanation. Optional; a
// failing narrator leaves Advice.Narrative empty.
type Narrator interface {
	GenerateCompletion(ctx context.Context, prompt, systemPrompt string, maxTokens int) (string, error)
}

// Advice is the advisor's full output for one sparse search.
type Advice struct {
	Summary      string                  `json:"summary"`
	ConflictSets []ConflictSet           `json:"conflictSets"`
	Suggestions  []Suggestion            `json:"suggestions"`
	Explanations []ConstraintExplanation `json:"explanations"`
	Narrative    string                  `json:"narrative,omitempty"`
	Degraded     bool                    `json:"degraded"`
	QueryCount   int                     `json:"queryCount"`
}

// Advisor diagnoses sparse searches: it decomposes the applied constraints,
// finds minimal conflict sets, and probes concrete relaxations.
type Advisor struct {
	db       *graph.DB
	kb       *knowledge.Config
	narrator Narrator
}

func New(db *graph.DB, kb *knowledge.Config) *Advisor {
	return &Advisor{db: db, kb: kb}
}

func (a *Advisor) SetNarrator(n Narrator) { a.narrator = n }

// Advise implements search.Adviser.
func (a *Advisor) Advise(ctx context.Context, input *search.AdviceInput) (any, error) {
	constraints := Decompose(input.Crit, input.Skills)
	if len(constraints) == 0 {
		return &Advice{
			Summary:      "no relaxable constraints were applied",
			ConflictSets: []ConflictSet{},
			Suggestions:  []Suggestion{},
			Explanations: []ConstraintExplanation{},
		}, nil
	}

	cnt := newCounter(a.db, input.Buckets)
	advice := &Advice{ConflictSets: []ConflictSet{}, Suggestions: []Suggestion{}}

	// Conflict search only matters when the result is actually insufficient;
	// a merely sparse result skips straight to relaxations.
	var conflictSets [][]TestableConstraint
	if input.TotalCount < a.kb.InsufficientThreshold {
		var degraded bool
		var err error
		conflictSets, degraded, err = findConflicts(ctx, cnt, constraints, a.kb.InsufficientThreshold, a.kb.MaxConflictSets)
		if err != nil {
			return nil, fmt.Errorf("advisor conflict search: %w", err)
		}
		advice.Degraded = advice.Degraded || degraded
		for _, set := range conflictSets {
			ids := make([]string, 0, len(set))
			for _, tc := range set {
				ids = append(ids, tc.ID)
			}
			advice.ConflictSets = append(advice.ConflictSets, ConflictSet{
				ConstraintIDs: ids,
				Description:   describeConflict(set),
			})
		}
	}

	candidates := suggestionCandidates(constraints, conflictSets)
	suggestions, degraded, err := suggest(ctx, cnt, constraints, candidates, input.Skills, input.TotalCount)
	if err != nil {
		return nil, fmt.Errorf("advisor relaxation: %w", err)
	}
	advice.Degraded = advice.Degraded || degraded
	advice.Suggestions = suggestions

	explanations, degraded, err := buildExplanations(ctx, cnt, constraints)
	if err != nil {
		return nil, fmt.Errorf("advisor explanation: %w", err)
	}
	advice.Degraded = advice.Degraded || degraded
	advice.Explanations = explanations

	advice.QueryCount = cnt.queryCount()
	advice.Summary = fmt.Sprintf("%d matches under %d constraints; %d minimal conflict sets, %d suggestions",
		input.TotalCount, len(constraints), len(advice.ConflictSets), len(advice.Suggestions))

	if a.narrator != nil {
		advice.Narrative = a.narrate(ctx, input.TotalCount, advice)
	}

	log.Printf("[Advisor] %s (queries=%d degraded=%v)", advice.Summary, advice.QueryCount, advice.Degraded)
	return advice, nil
}

// suggestionCandidates are the conflict-set members when conflicts were
// found, otherwise every constraint.
func suggestionCandidates(constraints []TestableConstraint, conflictSets [][]TestableConstraint) []TestableConstraint {
	if len(conflictSets) == 0 {
		return constraints
	}
	seen := map[string]bool{}
	var out []TestableConstraint
	for _, tc := range constraints {
		for _, set := range conflictSets {
			for _, member := range set {
				if member.ID == tc.ID && !seen[tc.ID] {
					seen[tc.ID] = true
					out = append(out, tc)
				}
			}
		}
	}
	return out
}

func (a *Advisor) narrate(ctx context.Context, totalCount int, advice *Advice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A search for engineers returned %d matches.\n", totalCount)
	for _, cs := range advice.ConflictSets {
		fmt.Fprintf(&b, "Conflict: %s\n", cs.Description)
	}
	for _, s := range advice.Suggestions {
		fmt.Fprintf(&b, "Option: %s -> %d matches\n", s.Description, s.ResultingMatches)
	}
	b.WriteString("Explain in two or three sentences why the search is sparse and which relaxation to try first.")

	text, err := a.narrator.GenerateCompletion(ctx, b.String(),
		"You are a technical recruiting assistant. Be concrete and brief.", 300)
	if err != nil {
		log.Printf("[Advisor] Narrator unavailable: %v", err)
		return ""
	}
	return text
}
