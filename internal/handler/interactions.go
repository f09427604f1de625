package handler

import (
	"errors"
	"log"
	"net/http"

	"askpalestine/internal/interactions"
)

// HandleInteractions handles POST /api/interactions: validate the feedback
// event and forward it to the webhook. Delivery failures are reported
// generically; only validation failures expose a reason.
func HandleInteractions(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var in interactions.Interaction
		if err := ReadJSONBody(r, &in); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := app.forwarder.Forward(in); err != nil {
			var ve *interactions.ValidationError
			if errors.As(err, &ve) {
				WriteError(w, http.StatusBadRequest, ve.Reason)
				return
			}
			log.Printf("[Interactions] forward error: %v", err)
			WriteError(w, http.StatusInternalServerError, "failed to record interaction")
			return
		}

		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success":         true,
			"interactionType": in.Type,
		})
	}
}
