package handler

import (
	"log"
	"net/http"

	"askpalestine/internal/search"
)

// maxSearchLimit caps how many results one search may request.
const maxSearchLimit = 50

// HandleSearch handles GET /api/search?q=...&limit=N. It ranks answered
// questions by similarity to the query.
func HandleSearch(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		query := r.URL.Query().Get("q")
		if query == "" {
			WriteError(w, http.StatusBadRequest, "query parameter is required")
			return
		}
		limit := queryInt(r, "limit", app.defaultLimit)
		if limit > maxSearchLimit {
			limit = maxSearchLimit
		}

		searcher, err := app.lifecycle.Searcher()
		if err != nil {
			log.Printf("[Search] initialization error: %v", err)
			WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		results, err := searcher.Search(query, limit)
		if err != nil {
			log.Printf("[Search] query error: %v", err)
			WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if results == nil {
			results = []search.Result{}
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"questions": results})
	}
}
