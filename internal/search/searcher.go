// Package search implements semantic similarity search over the question
// corpus: the query is embedded and scored against every answered question's
// stored vector with cosine similarity.
package search

import (
	"database/sql"
	"fmt"
	"sort"

	"askpalestine/internal/embedding"
)

// Author describes a voice that answered a question, for result display.
type Author struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Photo                string `json:"photo,omitempty"`
	ProfessionalIdentity string `json:"professional_identity,omitempty"`
}

// Result is a ranked question with its display aggregates.
type Result struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	AnswerCount int      `json:"answerCount"`
	Authors     []Author `json:"authors"`
	Similarity  float64  `json:"similarity"`
}

// DefaultLimit is the result count used when the caller passes limit <= 0.
const DefaultLimit = 5

// Searcher ranks answered questions by semantic similarity to a query.
type Searcher struct {
	db               *sql.DB
	embeddingService embedding.EmbeddingService
}

// NewSearcher creates a Searcher over the given database and embedding service.
func NewSearcher(db *sql.DB, es embedding.EmbeddingService) *Searcher {
	return &Searcher{db: db, embeddingService: es}
}

// candidate is an answered question loaded for scoring.
type candidate struct {
	id          string
	question    string
	embedding   string
	answerCount int
}

// Search embeds query and returns at most limit answered questions ordered
// by descending cosine similarity, ties broken by question id ascending.
// Questions without answers never appear. Provider failures are absorbed by
// the embedding service's fallback; only store errors propagate.
func (s *Searcher) Search(query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	queryVec, err := s.embeddingService.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	candidates, err := s.loadCandidates()
	if err != nil {
		return nil, err
	}
	authors, err := s.loadAuthors()
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		vec, err := DecodeVector(c.embedding)
		if err != nil {
			// A corrupt stored vector scores 0 instead of failing the query.
			vec = nil
		}
		results = append(results, Result{
			ID:          c.id,
			Question:    c.question,
			AnswerCount: c.answerCount,
			Authors:     authors[c.id],
			Similarity:  CosineSimilarity(queryVec, vec),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// loadCandidates reads every question that has at least one answer, with its
// answer count, in id order.
func (s *Searcher) loadCandidates() ([]candidate, error) {
	rows, err := s.db.Query(`
		SELECT q.id, q.question, COALESCE(q.embedding, ''), COUNT(a.id)
		FROM questions q
		JOIN answers a ON q.id = a.question_id
		GROUP BY q.id
		ORDER BY q.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query answered questions: %w", err)
	}
	defer rows.Close()

	var candidates []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.id, &c.question, &c.embedding, &c.answerCount); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question rows: %w", err)
	}
	return candidates, nil
}

// loadAuthors reads the distinct set of answering voices per question.
func (s *Searcher) loadAuthors() (map[string][]Author, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT a.question_id, v.id, v.name,
			COALESCE(v.photo, ''), COALESCE(v.professional_identity, '')
		FROM answers a
		JOIN voices v ON a.author_id = v.id
		ORDER BY a.question_id, v.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query authors: %w", err)
	}
	defer rows.Close()

	authors := make(map[string][]Author)
	for rows.Next() {
		var questionID string
		var a Author
		if err := rows.Scan(&questionID, &a.ID, &a.Name, &a.Photo, &a.ProfessionalIdentity); err != nil {
			return nil, fmt.Errorf("failed to scan author row: %w", err)
		}
		authors[questionID] = append(authors[questionID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating author rows: %w", err)
	}
	return authors, nil
}
