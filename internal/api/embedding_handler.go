package api

import (
	"fmt"
	"net/http"
	"strings"

	"engineer-search/internal/graph"
	"engineer-search/internal/search"
	"engineer-search/internal/similarity"
)

// GenerateEmbeddingHandler refreshes one engineer's profile embedding
// @Summary Generate an engineer profile embedding
// @Description Builds a text profile from the engineer's skills and domains and stores its vector on the node
// @Tags engineers
// @Produce json
// @Param id path string true "Engineer id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /engineers/{id}/embedding [post]
func (a *API) GenerateEmbeddingHandler(w http.ResponseWriter, r *http.Request) {
	if a.llmService == nil || !a.llmService.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "LLM provider not configured"})
		return
	}
	id := r.PathValue("id")

	session := a.db.Session(r.Context())
	profile, err := similarity.LoadProfile(r.Context(), session, id)
	session.Close(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	embedding, err := a.llmService.GenerateEmbedding(r.Context(), profileText(profile))
	if err != nil {
		writeError(w, &search.SearchError{Err: err})
		return
	}

	write := a.db.WriteSession(r.Context())
	defer write.Close(r.Context())
	err = write.Write(r.Context(), `MATCH (e:Engineer {id: $id})
SET e.embedding = $embedding,
    e.embeddingModel = $model,
    e.embeddingUpdatedAt = datetime()`,
		map[string]any{
			"id":        id,
			"embedding": embedding,
			"model":     a.llmService.EmbeddingModelName(),
		})
	if err != nil {
		writeError(w, &search.SearchError{Err: err})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         id,
		"dimensions": len(embedding),
		"model":      a.llmService.EmbeddingModelName(),
	})
}

// profileText flattens a profile into the text the embedding model sees.
func profileText(p *similarity.Profile) string {
	parts := []string{p.Name}
	if p.Headline != "" {
		parts = append(parts, p.Headline)
	}
	parts = append(parts, fmt.Sprintf("%.0f years of experience", p.YearsExperience))
	if len(p.SkillIDs) > 0 {
		parts = append(parts, "Skills: "+strings.Join(p.SkillIDs, ", "))
	}
	if len(p.BusinessDomainIDs) > 0 {
		parts = append(parts, "Business domains: "+strings.Join(p.BusinessDomainIDs, ", "))
	}
	if len(p.TechnicalDomainIDs) > 0 {
		parts = append(parts, "Technical domains: "+strings.Join(p.TechnicalDomainIDs, ", "))
	}
	return strings.Join(parts, ". ")
}

// GraphStatsHandler reports dataset and snapshot sizes
// @Summary Graph statistics
// @Tags graph
// @Produce json
// @Success 200 {object} map[string]any
// @Router /graph/stats [get]
func (a *API) GraphStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := a.similarity.Stats(r.Context())
	if err != nil {
		writeError(w, &search.SearchError{Err: err})
		return
	}

	session := a.db.Session(r.Context())
	defer session.Close(r.Context())
	records, err := session.Collect(r.Context(),
		"MATCH (e:Engineer) RETURN count(e) AS engineers", nil)
	if err != nil {
		writeError(w, &search.SearchError{Err: err})
		return
	}
	engineers := 0
	if len(records) > 0 {
		engineers = graph.Int(records[0]["engineers"])
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"engineers":        engineers,
		"skills":           stats.Skills,
		"businessDomains":  stats.BusinessDomains,
		"technicalDomains": stats.TechnicalDomains,
	})
}

// RefreshGraphsHandler rebuilds the similarity graph snapshots
// @Summary Refresh similarity graph snapshots
// @Tags graph
// @Produce json
// @Success 200 {object} map[string]string
// @Router /graph/refresh [post]
func (a *API) RefreshGraphsHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.similarity.Cache().Refresh(r.Context()); err != nil {
		writeError(w, &search.SearchError{Err: err})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// RecentAuditHandler lists recent audited searches
// @Summary Recent search audit records
// @Tags audit
// @Produce json
// @Param limit query int false "Maximum rows"
// @Success 200 {array} audit.Record
// @Router /audit/recent [get]
func (a *API) RecentAuditHandler(w http.ResponseWriter, r *http.Request) {
	if a.auditStore == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "audit sink not configured"})
		return
	}
	records, err := a.auditStore.RecentSearches(r.Context(), 20)
	if err != nil {
		writeError(w, &search.SearchError{Err: err})
		return
	}
	writeJSON(w, http.StatusOK, records)
}
