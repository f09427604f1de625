package handler

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"askpalestine/internal/store"
)

// HandleAnsweredQuestions handles GET /api/questions/answered with paging.
// sortBy=most-answers returns the first page ordered by answer count, which
// is the same ordering the pagination uses.
func HandleAnsweredQuestions(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		page := queryInt(r, "page", 1)
		limit := queryInt(r, "limit", 12)
		if r.URL.Query().Get("sortBy") == "most-answers" {
			page = 1
		}

		s, err := app.lifecycle.Store()
		if err != nil {
			log.Printf("[Questions] initialization error: %v", err)
			WriteError(w, http.StatusInternalServerError, "failed to fetch answered questions")
			return
		}
		result, err := s.GetQuestionsWithAnswersPaginated(page, limit)
		if err != nil {
			log.Printf("[Questions] answered query error: %v", err)
			WriteError(w, http.StatusInternalServerError, "failed to fetch answered questions")
			return
		}
		WriteJSON(w, http.StatusOK, result)
	}
}

// HandleUnansweredQuestions handles GET /api/questions/unanswered.
// simple=true returns a flat list instead of a page.
func HandleUnansweredQuestions(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s, err := app.lifecycle.Store()
		if err != nil {
			log.Printf("[Questions] initialization error: %v", err)
			WriteError(w, http.StatusInternalServerError, "failed to fetch unanswered questions")
			return
		}

		if r.URL.Query().Get("simple") == "true" {
			questions, err := s.GetUnansweredQuestions(queryInt(r, "limit", 12))
			if err != nil {
				log.Printf("[Questions] unanswered query error: %v", err)
				WriteError(w, http.StatusInternalServerError, "failed to fetch unanswered questions")
				return
			}
			if questions == nil {
				questions = []store.Question{}
			}
			WriteJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
			return
		}

		result, err := s.GetQuestionsWithoutAnswersPaginated(queryInt(r, "page", 1), queryInt(r, "limit", 12))
		if err != nil {
			log.Printf("[Questions] unanswered query error: %v", err)
			WriteError(w, http.StatusInternalServerError, "failed to fetch unanswered questions")
			return
		}
		WriteJSON(w, http.StatusOK, result)
	}
}

// HandleQuestionStats handles GET /api/questions/stats.
func HandleQuestionStats(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s, err := app.lifecycle.Store()
		if err != nil {
			log.Printf("[Questions] initialization error: %v", err)
			WriteError(w, http.StatusInternalServerError, "failed to fetch stats")
			return
		}
		counts, err := s.GetTotalCounts()
		if err != nil {
			log.Printf("[Questions] stats query error: %v", err)
			WriteError(w, http.StatusInternalServerError, "failed to fetch stats")
			return
		}
		WriteJSON(w, http.StatusOK, counts)
	}
}

// HandleQuestionByID handles GET /api/questions/{id} and
// GET /api/questions/{id}/answers. Question IDs may arrive URL-encoded.
func HandleQuestionByID(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/api/questions/")
		if rest == "" || rest == r.URL.Path {
			WriteError(w, http.StatusBadRequest, "missing question ID")
			return
		}
		wantAnswers := false
		if strings.HasSuffix(rest, "/answers") {
			wantAnswers = true
			rest = strings.TrimSuffix(rest, "/answers")
		}
		id, err := url.PathUnescape(rest)
		if err != nil || id == "" || strings.Contains(id, "/") {
			WriteError(w, http.StatusBadRequest, "invalid question ID")
			return
		}

		s, err := app.lifecycle.Store()
		if err != nil {
			log.Printf("[Questions] initialization error: %v", err)
			WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if wantAnswers {
			answers, err := s.GetAnswersForQuestion(id)
			if err != nil {
				log.Printf("[Questions] answers query error: %v", err)
				WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if answers == nil {
				answers = []store.AnswerWithAuthor{}
			}
			WriteJSON(w, http.StatusOK, answers)
			return
		}

		question, err := s.GetQuestion(id)
		if err != nil {
			log.Printf("[Questions] query error: %v", err)
			WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if question == nil {
			WriteError(w, http.StatusNotFound, "question not found")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"question": question})
	}
}
