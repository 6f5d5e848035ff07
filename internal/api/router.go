package api

import (
	"context"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation - must be registered first
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Health checks (for Railway, k8s, etc.)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/db-health", dbHealthHandler(a.db.Ping))

	// Search endpoints
	mux.HandleFunc("POST /api/search/filter", a.FilterSearchHandler)
	mux.HandleFunc("POST /api/search/filter-similarity", a.FilterSimilarityHandler)

	// Critique endpoints
	mux.HandleFunc("POST /api/search/critiques", a.CritiquesHandler)
	mux.HandleFunc("POST /api/search/critiques/apply", a.ApplyCritiqueHandler)

	// Engineer endpoints
	mux.HandleFunc("GET /api/engineers/{id}/similar", a.SimilarEngineersHandler)
	mux.HandleFunc("POST /api/engineers/{id}/embedding", a.GenerateEmbeddingHandler)

	// Graph maintenance
	mux.HandleFunc("GET /api/graph/stats", a.GraphStatsHandler)
	mux.HandleFunc("POST /api/graph/refresh", a.RefreshGraphsHandler)

	// Audit
	mux.HandleFunc("GET /api/audit/recent", a.RecentAuditHandler)

	return mux
}

// dbHealthHandler reports 200 when the graph ping succeeds, 500 otherwise.
func dbHealthHandler(ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ping(r.Context()); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "unreachable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}
