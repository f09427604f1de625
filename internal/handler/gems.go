package handler

import (
	"log"
	"net/http"

	"askpalestine/internal/store"
)

// HandleGems handles GET /api/gems: all gems, the same gems grouped by
// type, and the corpus totals in one response.
func HandleGems(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s, err := app.lifecycle.Store()
		if err != nil {
			log.Printf("[Gems] initialization error: %v", err)
			WriteError(w, http.StatusInternalServerError, "failed to fetch gems")
			return
		}

		allGems, err := s.GetAllGems()
		if err != nil {
			log.Printf("[Gems] query error: %v", err)
			WriteError(w, http.StatusInternalServerError, "failed to fetch gems")
			return
		}
		counts, err := s.GetTotalCounts()
		if err != nil {
			log.Printf("[Gems] counts query error: %v", err)
			WriteError(w, http.StatusInternalServerError, "failed to fetch gems")
			return
		}

		if allGems == nil {
			allGems = []store.Gem{}
		}
		gemsByType := make(map[string][]store.Gem)
		for _, gem := range allGems {
			gemsByType[gem.Type] = append(gemsByType[gem.Type], gem)
		}

		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"allGems":    allGems,
			"gemsByType": gemsByType,
			"counts":     counts,
		})
	}
}
