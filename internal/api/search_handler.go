package api

import (
	"net/http"
	"strconv"

	"engineer-search/internal/search"
	"engineer-search/internal/similarity"
)

// FilterSearchHandler runs a constraint-aware filter search
// @Summary Search engineers by constraints
// @Description Expands skill and domain hierarchies, applies inference rules, and returns utility-scored matches
// @Tags search
// @Accept json
// @Produce json
// @Param request body search.SearchRequest true "Search constraints"
// @Success 200 {object} search.Response
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /search/filter [post]
func (a *API) FilterSearchHandler(w http.ResponseWriter, r *http.Request) {
	var req search.SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := a.search.Search(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// FilterSimilarityHandler combines a filter search with similarity re-ranking
// @Summary Filter search re-ranked by similarity to a reference engineer
// @Tags search
// @Accept json
// @Produce json
// @Param request body similarity.FilterSimilarityRequest true "Filter plus reference engineer id"
// @Success 200 {object} similarity.FilterSimilarityResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /search/filter-similarity [post]
func (a *API) FilterSimilarityHandler(w http.ResponseWriter, r *http.Request) {
	var req similarity.FilterSimilarityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := a.similarity.FilterSimilarity(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SimilarEngineersHandler finds engineers similar to a target
// @Summary Similar engineers
// @Tags engineers
// @Produce json
// @Param id path string true "Engineer id"
// @Param limit query int false "Maximum results"
// @Success 200 {object} similarity.SimilarResult
// @Failure 404 {object} map[string]string
// @Router /engineers/{id}/similar [get]
func (a *API) SimilarEngineersHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = v
	}
	resp, err := a.similarity.SimilarEngineers(r.Context(), id, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
