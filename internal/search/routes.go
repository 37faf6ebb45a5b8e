package search

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the comment search API. index may be nil when no
// embedding provider is configured; the route then reports the feature as
// unavailable instead of disappearing.
func RegisterRoutes(r chi.Router, index *Index) {
	r.Get("/api/search", handleSearch(index))
}

func handleSearch(index *Index) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if index == nil {
			http.Error(w, `{"error":"search is not configured (no embedding API key)"}`, http.StatusServiceUnavailable)
			return
		}

		query := r.URL.Query().Get("q")
		if query == "" {
			http.Error(w, `{"error":"q is required"}`, http.StatusBadRequest)
			return
		}

		limit := 10
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		docID := r.URL.Query().Get("doc")

		results, err := index.Search(r.Context(), query, limit, docID)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if results == nil {
			results = []Result{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)
	}
}
