package api

import (
	"encoding/json"
	"log"
	"net/http"

	"engineer-search/internal/audit"
	"engineer-search/internal/critique"
	"engineer-search/internal/graph"
	"engineer-search/internal/knowledge"
	"engineer-search/internal/llm"
	"engineer-search/internal/search"
	"engineer-search/internal/similarity"
)

type API struct {
	db         *graph.DB
	kb         *knowledge.Config
	search     *search.Service
	similarity *similarity.Engine
	generator  *critique.Generator
	applier    *critique.Applier
	llmService *llm.Service
	auditStore *audit.Store
}

func NewAPI(db *graph.DB, kb *knowledge.Config, searchSvc *search.Service, simEngine *similarity.Engine, llmSvc *llm.Service, auditStore *audit.Store) *API {
	return &API{
		db:         db,
		kb:         kb,
		search:     searchSvc,
		similarity: simEngine,
		generator:  critique.NewGenerator(kb),
		applier:    critique.NewApplier(kb),
		llmService: llmSvc,
		auditStore: auditStore,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses: validation -> 400,
// unknown identifiers -> 404, graph failures -> 500 with the driver message
// in details, everything else -> an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	if v, ok := search.AsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation_failed",
			"issues": v.Issues,
		})
		return
	}
	if nf, ok := search.AsNotFound(err); ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": nf.Code,
			"id":    nf.ID,
		})
		return
	}
	if se, ok := search.AsSearch(err); ok {
		log.Printf("[API] Search error: %v", se)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "SEARCH_ERROR",
			"details": se.Err.Error(),
		})
		return
	}
	log.Printf("[API] Internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return false
	}
	return true
}
