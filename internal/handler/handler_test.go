package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"askpalestine/internal/embedding"
	"askpalestine/internal/interactions"
	"askpalestine/internal/lifecycle"
	"askpalestine/internal/store"
)

// newTestApp builds an App over a small fixture corpus: two voices, one
// answered and one unanswered question, a gem and a genocidal voice.
func newTestApp(t *testing.T) *App {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"voices/alice/bio.md": "Alice's bio",
		"voices/alice/metadata.json": `{"name": "Alice Amari", "professional_identity": "Historian"}`,
		"voices/bob/bio.md":   "Bob's bio",
		"questions/q1/metadata.json": `{"question_forms": ["What happened?", "What occurred?"]}`,
		"questions/q1/answers/alice/text.md": "Alice on q1",
		"questions/q1/answers/bob/text.md":   "Bob on q1",
		"questions/q2/metadata.json": `{"question_forms": ["Where is it?"]}`,
		"gems/g1/data.json": `{"name": "A Book", "type": "Book", "description": "about it"}`,
		"genocidal-voices/gv1/data.json": `{"name": "Some Official", "title": "Minister", "quotes": [{"quote": "a quote"}]}`,
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	lc := lifecycle.NewManager(
		filepath.Join(t.TempDir(), "test.db"),
		root,
		filepath.Join(t.TempDir(), "photos"),
		embedding.NewMockEmbeddingService(8),
	)
	t.Cleanup(func() { lc.Close() })

	return NewApp(lc, interactions.NewForwarder(""), 5)
}

func doRequest(t *testing.T, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rr.Body.String())
	}
}

func TestHandleSearch(t *testing.T) {
	app := newTestApp(t)
	h := HandleSearch(app)

	rr := doRequest(t, h, http.MethodGet, "/api/search?q=What+happened%3F", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Questions []struct {
			ID          string `json:"id"`
			AnswerCount int    `json:"answerCount"`
		} `json:"questions"`
	}
	decodeBody(t, rr, &resp)
	if len(resp.Questions) != 1 {
		t.Fatalf("results = %d, want 1 (only q1 is answered)", len(resp.Questions))
	}
	if resp.Questions[0].ID != "q1" || resp.Questions[0].AnswerCount != 2 {
		t.Errorf("result = %+v", resp.Questions[0])
	}
}

func TestHandleSearch_MissingQuery(t *testing.T) {
	app := newTestApp(t)
	rr := doRequest(t, HandleSearch(app), http.MethodGet, "/api/search", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestHandleSearch_MethodNotAllowed(t *testing.T) {
	app := newTestApp(t)
	rr := doRequest(t, HandleSearch(app), http.MethodPost, "/api/search?q=x", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}
}

func TestHandleAnsweredQuestions(t *testing.T) {
	app := newTestApp(t)
	rr := doRequest(t, HandleAnsweredQuestions(app), http.MethodGet, "/api/questions/answered", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var page store.PaginatedQuestionSummaries
	decodeBody(t, rr, &page)
	if page.TotalCount != 1 || len(page.Questions) != 1 {
		t.Fatalf("page = %+v", page)
	}
	if page.Questions[0].ID != "q1" || len(page.Questions[0].Authors) != 2 {
		t.Errorf("question = %+v", page.Questions[0])
	}
}

func TestHandleUnansweredQuestions(t *testing.T) {
	app := newTestApp(t)

	rr := doRequest(t, HandleUnansweredQuestions(app), http.MethodGet, "/api/questions/unanswered", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var page store.PaginatedQuestions
	decodeBody(t, rr, &page)
	if page.TotalCount != 1 || page.Questions[0].ID != "q2" {
		t.Fatalf("page = %+v", page)
	}

	// simple=true returns a flat list
	rr = doRequest(t, HandleUnansweredQuestions(app), http.MethodGet, "/api/questions/unanswered?simple=true", "")
	var simple struct {
		Questions []store.Question `json:"questions"`
	}
	decodeBody(t, rr, &simple)
	if len(simple.Questions) != 1 || simple.Questions[0].ID != "q2" {
		t.Fatalf("simple = %+v", simple)
	}
}

func TestHandleQuestionStats(t *testing.T) {
	app := newTestApp(t)
	rr := doRequest(t, HandleQuestionStats(app), http.MethodGet, "/api/questions/stats", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var counts store.Counts
	decodeBody(t, rr, &counts)
	if counts.TotalQuestions != 2 || counts.TotalVoices != 2 ||
		counts.TotalAnswers != 2 || counts.QuestionsWithAnswers != 1 {
		t.Errorf("counts = %+v", counts)
	}
}

func TestHandleQuestionByID(t *testing.T) {
	app := newTestApp(t)
	h := HandleQuestionByID(app)

	rr := doRequest(t, h, http.MethodGet, "/api/questions/q1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Question store.Question `json:"question"`
	}
	decodeBody(t, rr, &resp)
	if resp.Question.ID != "q1" || resp.Question.Question != "What happened?" {
		t.Errorf("question = %+v", resp.Question)
	}
	if len(resp.Question.QuestionForms) != 2 {
		t.Errorf("forms = %v", resp.Question.QuestionForms)
	}

	rr = doRequest(t, h, http.MethodGet, "/api/questions/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing question status = %d, want 404", rr.Code)
	}
}

func TestHandleQuestionAnswers(t *testing.T) {
	app := newTestApp(t)
	rr := doRequest(t, HandleQuestionByID(app), http.MethodGet, "/api/questions/q1/answers", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var answers []store.AnswerWithAuthor
	decodeBody(t, rr, &answers)
	if len(answers) != 2 {
		t.Fatalf("answers = %d, want 2", len(answers))
	}
	if answers[0].AuthorName == "" {
		t.Errorf("answer missing author name: %+v", answers[0])
	}
}

func TestHandleVoices(t *testing.T) {
	app := newTestApp(t)
	rr := doRequest(t, HandleVoices(app), http.MethodGet, "/api/voices", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Voices []store.Voice `json:"voices"`
	}
	decodeBody(t, rr, &resp)
	if len(resp.Voices) != 2 {
		t.Fatalf("voices = %d, want 2", len(resp.Voices))
	}
}

func TestHandleVoiceByID(t *testing.T) {
	app := newTestApp(t)
	h := HandleVoiceByID(app)

	rr := doRequest(t, h, http.MethodGet, "/api/voices/alice", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var voice store.Voice
	decodeBody(t, rr, &voice)
	if voice.Name != "Alice Amari" || voice.ProfessionalIdentity != "Historian" {
		t.Errorf("voice = %+v", voice)
	}

	rr = doRequest(t, h, http.MethodGet, "/api/voices/nobody", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing voice status = %d, want 404", rr.Code)
	}

	rr = doRequest(t, h, http.MethodGet, "/api/voices/alice/answers", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("answers status = %d", rr.Code)
	}
	var resp struct {
		Answers []store.AnswerWithQuestion `json:"answers"`
	}
	decodeBody(t, rr, &resp)
	if len(resp.Answers) != 1 || resp.Answers[0].Question != "What happened?" {
		t.Errorf("answers = %+v", resp.Answers)
	}
}

func TestHandleGems(t *testing.T) {
	app := newTestApp(t)
	rr := doRequest(t, HandleGems(app), http.MethodGet, "/api/gems", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		AllGems    []store.Gem            `json:"allGems"`
		GemsByType map[string][]store.Gem `json:"gemsByType"`
		Counts     store.Counts           `json:"counts"`
	}
	decodeBody(t, rr, &resp)
	if len(resp.AllGems) != 1 {
		t.Fatalf("gems = %d, want 1", len(resp.AllGems))
	}
	if len(resp.GemsByType["Book"]) != 1 {
		t.Errorf("gemsByType = %+v", resp.GemsByType)
	}
	if resp.Counts.TotalQuestions != 2 {
		t.Errorf("counts = %+v", resp.Counts)
	}
}

func TestHandleGenocidalVoices(t *testing.T) {
	app := newTestApp(t)
	h := HandleGenocidalVoices(app)

	rr := doRequest(t, h, http.MethodGet, "/api/genocidal-voices", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		GenocidalVoices []store.GenocidalVoice `json:"genocidalVoices"`
	}
	decodeBody(t, rr, &resp)
	if len(resp.GenocidalVoices) != 1 || resp.GenocidalVoices[0].Name != "Some Official" {
		t.Fatalf("list = %+v", resp.GenocidalVoices)
	}

	rr = doRequest(t, h, http.MethodGet, "/api/genocidal-voices/gv1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("detail status = %d", rr.Code)
	}
	var gv store.GenocidalVoice
	decodeBody(t, rr, &gv)
	if gv.Title != "Minister" || len(gv.Quotes) != 1 {
		t.Errorf("detail = %+v", gv)
	}

	rr = doRequest(t, h, http.MethodGet, "/api/genocidal-voices/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d, want 404", rr.Code)
	}
}

func TestHandleInteractions(t *testing.T) {
	app := newTestApp(t)
	h := HandleInteractions(app)

	rr := doRequest(t, h, http.MethodPost, "/api/interactions",
		`{"question": "What happened?", "interactionType": "report", "feedback": "this answer is wrong"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Success         bool   `json:"success"`
		InteractionType string `json:"interactionType"`
	}
	decodeBody(t, rr, &resp)
	if !resp.Success || resp.InteractionType != "report" {
		t.Errorf("resp = %+v", resp)
	}

	// Validation failure surfaces as 400 with a reason
	rr = doRequest(t, h, http.MethodPost, "/api/interactions",
		`{"question": "q", "interactionType": "report", "feedback": "bad"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("short feedback status = %d, want 400", rr.Code)
	}

	rr = doRequest(t, h, http.MethodPost, "/api/interactions", `{broken`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad body status = %d, want 400", rr.Code)
	}

	rr = doRequest(t, h, http.MethodGet, "/api/interactions", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d, want 405", rr.Code)
	}
}

func TestHandleReload(t *testing.T) {
	app := newTestApp(t)
	h := HandleReload(app)

	// Initialize first so the reload is counted on top of the initial load.
	if _, err := app.lifecycle.Store(); err != nil {
		t.Fatalf("Store: %v", err)
	}

	rr := doRequest(t, h, http.MethodPost, "/api/admin/reload", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
		Loads   int  `json:"loads"`
	}
	decodeBody(t, rr, &resp)
	if !resp.Success || resp.Loads != 2 {
		t.Errorf("resp = %+v", resp)
	}

	rr = doRequest(t, h, http.MethodGet, "/api/admin/reload", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d, want 405", rr.Code)
	}
}
