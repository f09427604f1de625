package search

import (
	"database/sql"
	"path/filepath"
	"testing"

	"askpalestine/internal/db"
)

// fixedEmbedder returns the same vector for every text.
type fixedEmbedder struct {
	vec []float64
}

func (f fixedEmbedder) Embed(string) ([]float64, error) {
	return f.vec, nil
}

func (f fixedEmbedder) EmbedBatch(texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func mustExec(t *testing.T, database *sql.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := database.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

// seedCorpus inserts two voices and three questions. q1 and q2 have answers,
// q3 does not. Embeddings are chosen so q1 matches the query vector {1,0}
// perfectly and q2 is orthogonal to it.
func seedCorpus(t *testing.T, database *sql.DB) {
	t.Helper()
	mustExec(t, database, `INSERT INTO voices (id, name, bio, photo, professional_identity) VALUES
		('alice', 'Alice', 'bio', '/photos/alice.png', 'Historian'),
		('bob', 'Bob', 'bio', NULL, NULL)`)
	mustExec(t, database, `INSERT INTO questions (id, question, question_forms, embedding) VALUES
		('q1', 'What is the history?', '["What is the history?"]', '[1, 0]'),
		('q2', 'Where is it?', '["Where is it?"]', '[0, 1]'),
		('q3', 'Unanswered?', '["Unanswered?"]', '[1, 0]')`)
	mustExec(t, database, `INSERT INTO answers (id, question_id, author_id, content) VALUES
		('q1-alice', 'q1', 'alice', 'answer one'),
		('q1-bob', 'q1', 'bob', 'answer two'),
		('q2-alice', 'q2', 'alice', 'answer three')`)
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	database := newTestDB(t)
	seedCorpus(t, database)

	s := NewSearcher(database, fixedEmbedder{vec: []float64{1, 0}})
	results, err := s.Search("history", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "q1" {
		t.Errorf("expected q1 first, got %s", results[0].ID)
	}
	if results[1].ID != "q2" {
		t.Errorf("expected q2 second, got %s", results[1].ID)
	}
	if results[0].Similarity <= results[1].Similarity {
		t.Errorf("scores not descending: %v then %v", results[0].Similarity, results[1].Similarity)
	}
}

func TestSearch_ExcludesUnansweredQuestions(t *testing.T) {
	database := newTestDB(t)
	seedCorpus(t, database)

	// q3's embedding matches the query exactly but it has no answers.
	s := NewSearcher(database, fixedEmbedder{vec: []float64{1, 0}})
	results, err := s.Search("anything", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range results {
		if r.ID == "q3" {
			t.Error("unanswered question q3 appeared in results")
		}
		if r.AnswerCount < 1 {
			t.Errorf("result %s has answerCount %d, want >= 1", r.ID, r.AnswerCount)
		}
	}
}

func TestSearch_RespectsLimit(t *testing.T) {
	database := newTestDB(t)
	seedCorpus(t, database)

	s := NewSearcher(database, fixedEmbedder{vec: []float64{1, 0}})
	results, err := s.Search("anything", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestSearch_DefaultLimit(t *testing.T) {
	database := newTestDB(t)
	seedCorpus(t, database)

	s := NewSearcher(database, fixedEmbedder{vec: []float64{1, 0}})
	results, err := s.Search("anything", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) > DefaultLimit {
		t.Errorf("expected at most %d results, got %d", DefaultLimit, len(results))
	}
}

func TestSearch_ResultAggregates(t *testing.T) {
	database := newTestDB(t)
	seedCorpus(t, database)

	s := NewSearcher(database, fixedEmbedder{vec: []float64{1, 0}})
	results, err := s.Search("history", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	q1 := results[0]
	if q1.AnswerCount != 2 {
		t.Errorf("q1 answerCount = %d, want 2", q1.AnswerCount)
	}
	if len(q1.Authors) != 2 {
		t.Fatalf("q1 authors = %d, want 2", len(q1.Authors))
	}
	// Authors ordered by voice id
	if q1.Authors[0].ID != "alice" || q1.Authors[1].ID != "bob" {
		t.Errorf("unexpected author order: %v", q1.Authors)
	}
	if q1.Authors[0].Photo != "/photos/alice.png" {
		t.Errorf("alice photo = %q", q1.Authors[0].Photo)
	}
	if q1.Authors[0].ProfessionalIdentity != "Historian" {
		t.Errorf("alice professional identity = %q", q1.Authors[0].ProfessionalIdentity)
	}
	if q1.Authors[1].Photo != "" {
		t.Errorf("bob photo should be empty, got %q", q1.Authors[1].Photo)
	}
}

func TestSearch_TieBrokenByIDAscending(t *testing.T) {
	database := newTestDB(t)
	mustExec(t, database, `INSERT INTO voices (id, name, bio) VALUES ('v', 'V', 'bio')`)
	// Identical embeddings make identical scores.
	mustExec(t, database, `INSERT INTO questions (id, question, question_forms, embedding) VALUES
		('qb', 'B?', '["B?"]', '[1, 1]'),
		('qa', 'A?', '["A?"]', '[1, 1]')`)
	mustExec(t, database, `INSERT INTO answers (id, question_id, author_id, content) VALUES
		('qb-v', 'qb', 'v', 'x'),
		('qa-v', 'qa', 'v', 'y')`)

	s := NewSearcher(database, fixedEmbedder{vec: []float64{1, 1}})
	results, err := s.Search("anything", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 || results[0].ID != "qa" || results[1].ID != "qb" {
		t.Errorf("expected deterministic id-ascending tie break, got %v", results)
	}
}

func TestSearch_CorruptEmbeddingScoresZero(t *testing.T) {
	database := newTestDB(t)
	mustExec(t, database, `INSERT INTO voices (id, name, bio) VALUES ('v', 'V', 'bio')`)
	mustExec(t, database, `INSERT INTO questions (id, question, question_forms, embedding) VALUES
		('q1', 'Good?', '["Good?"]', '[1, 0]'),
		('q2', 'Corrupt?', '["Corrupt?"]', 'not-json')`)
	mustExec(t, database, `INSERT INTO answers (id, question_id, author_id, content) VALUES
		('q1-v', 'q1', 'v', 'x'),
		('q2-v', 'q2', 'v', 'y')`)

	s := NewSearcher(database, fixedEmbedder{vec: []float64{1, 0}})
	results, err := s.Search("anything", 5)
	if err != nil {
		t.Fatalf("Search must not fail on a corrupt stored vector: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].ID != "q2" || results[1].Similarity != 0 {
		t.Errorf("corrupt embedding should rank last with score 0, got %v", results[1])
	}
}

func TestSearch_EmptyCorpus(t *testing.T) {
	database := newTestDB(t)
	s := NewSearcher(database, fixedEmbedder{vec: []float64{1, 0}})
	results, err := s.Search("anything", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
