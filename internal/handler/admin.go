package handler

import (
	"log"
	"net/http"
)

// HandleReload handles POST /api/admin/reload: rebuild the database from
// the source tree.
func HandleReload(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := app.lifecycle.Reload(); err != nil {
			log.Printf("[Admin] reload error: %v", err)
			WriteError(w, http.StatusInternalServerError, "reload failed")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"loads":   app.lifecycle.LoadCount(),
		})
	}
}
