package handler

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"askpalestine/internal/store"
)

// HandleVoices handles GET /api/voices (all voice profiles).
func HandleVoices(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s, err := app.lifecycle.Store()
		if err != nil {
			log.Printf("[Voices] initialization error: %v", err)
			WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		voices, err := s.GetAllVoices()
		if err != nil {
			log.Printf("[Voices] query error: %v", err)
			WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if voices == nil {
			voices = []store.Voice{}
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"voices": voices})
	}
}

// HandleVoiceByID handles GET /api/voices/{id} and
// GET /api/voices/{id}/answers.
func HandleVoiceByID(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/api/voices/")
		if rest == "" || rest == r.URL.Path {
			WriteError(w, http.StatusBadRequest, "missing voice ID")
			return
		}
		wantAnswers := false
		if strings.HasSuffix(rest, "/answers") {
			wantAnswers = true
			rest = strings.TrimSuffix(rest, "/answers")
		}
		id, err := url.PathUnescape(rest)
		if err != nil || id == "" || strings.Contains(id, "/") {
			WriteError(w, http.StatusBadRequest, "invalid voice ID")
			return
		}

		s, err := app.lifecycle.Store()
		if err != nil {
			log.Printf("[Voices] initialization error: %v", err)
			WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if wantAnswers {
			answers, err := s.GetAnswersByAuthor(id)
			if err != nil {
				log.Printf("[Voices] answers query error: %v", err)
				WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if answers == nil {
				answers = []store.AnswerWithQuestion{}
			}
			WriteJSON(w, http.StatusOK, map[string]interface{}{"answers": answers})
			return
		}

		voice, err := s.GetVoice(id)
		if err != nil {
			log.Printf("[Voices] query error: %v", err)
			WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if voice == nil {
			WriteError(w, http.StatusNotFound, "voice not found")
			return
		}
		WriteJSON(w, http.StatusOK, voice)
	}
}

// HandleGenocidalVoices handles GET /api/genocidal-voices and
// GET /api/genocidal-voices/{id}.
func HandleGenocidalVoices(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s, err := app.lifecycle.Store()
		if err != nil {
			log.Printf("[GenocidalVoices] initialization error: %v", err)
			WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rest := strings.TrimPrefix(r.URL.Path, "/api/genocidal-voices")
		rest = strings.TrimPrefix(rest, "/")
		if rest == "" {
			all, err := s.GetAllGenocidalVoices()
			if err != nil {
				log.Printf("[GenocidalVoices] query error: %v", err)
				WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if all == nil {
				all = []store.GenocidalVoice{}
			}
			WriteJSON(w, http.StatusOK, map[string]interface{}{"genocidalVoices": all})
			return
		}

		id, err := url.PathUnescape(rest)
		if err != nil || id == "" || strings.Contains(id, "/") {
			WriteError(w, http.StatusBadRequest, "invalid ID")
			return
		}
		gv, err := s.GetGenocidalVoice(id)
		if err != nil {
			log.Printf("[GenocidalVoices] query error: %v", err)
			WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if gv == nil {
			WriteError(w, http.StatusNotFound, "not found")
			return
		}
		WriteJSON(w, http.StatusOK, gv)
	}
}
