package api

import (
	"net/http"

	"engineer-search/internal/critique"
	"engineer-search/internal/search"
)

// CritiquesHandler generates 2-property critiques for a search
// @Summary Generate critique suggestions
// @Description Runs the filter search and derives refinement suggestions from the result page
// @Tags critiques
// @Accept json
// @Produce json
// @Param request body search.SearchRequest true "Search constraints"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /search/critiques [post]
func (a *API) CritiquesHandler(w http.ResponseWriter, r *http.Request) {
	var req search.SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := a.search.Search(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	suggestions := a.generator.Generate(resp.Matches, &req)
	writeJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
		"totalCount":  resp.TotalCount,
		"basedOn":     len(resp.Matches),
	})
}

type applyCritiqueRequest struct {
	Request     search.SearchRequest  `json:"request"`
	Adjustments []critique.Adjustment `json:"adjustments"`
}

// ApplyCritiqueHandler applies critique adjustments to a request
// @Summary Apply critique adjustments
// @Description Maps adjustments over a base request, reporting applied and failed edits
// @Tags critiques
// @Accept json
// @Produce json
// @Param request body applyCritiqueRequest true "Base request and adjustments"
// @Success 200 {object} critique.ApplyResult
// @Failure 400 {object} map[string]string
// @Router /search/critiques/apply [post]
func (a *API) ApplyCritiqueHandler(w http.ResponseWriter, r *http.Request) {
	var body applyCritiqueRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if len(body.Adjustments) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "adjustments are required"})
		return
	}
	result := a.applier.Apply(&body.Request, body.Adjustments)
	writeJSON(w, http.StatusOK, result)
}
