// Package store provides typed read accessors over the corpus tables. All
// mutation happens in the loader; these queries serve the HTTP API.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// Store wraps the shared database handle with the corpus read queries.
type Store struct {
	db *sql.DB
}

// New creates a Store over the given database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanQuestion reads one question row including the serialized forms list.
func scanQuestion(row interface{ Scan(...interface{}) error }) (Question, error) {
	var q Question
	var forms string
	var createdAt sql.NullString
	if err := row.Scan(&q.ID, &q.Question, &forms, &createdAt); err != nil {
		return Question{}, err
	}
	if err := json.Unmarshal([]byte(forms), &q.QuestionForms); err != nil {
		// A row written by the loader always has valid forms; fall back to
		// the canonical text alone rather than failing the read.
		q.QuestionForms = []string{q.Question}
	}
	q.CreatedAt = createdAt.String
	return q, nil
}

const questionColumns = "id, question, question_forms, created_at"

// GetQuestion returns the question with the given id, or nil if absent.
func (s *Store) GetQuestion(id string) (*Question, error) {
	row := s.db.QueryRow("SELECT "+questionColumns+" FROM questions WHERE id = ?", id)
	q, err := scanQuestion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question %s: %w", id, err)
	}
	return &q, nil
}

// GetAllQuestions returns every question ordered by canonical text.
func (s *Store) GetAllQuestions() ([]Question, error) {
	return s.queryQuestions("SELECT " + questionColumns + " FROM questions ORDER BY question")
}

// GetRandomQuestions returns up to limit questions in random order.
func (s *Store) GetRandomQuestions(limit int) ([]Question, error) {
	return s.queryQuestions("SELECT "+questionColumns+" FROM questions ORDER BY RANDOM() LIMIT ?", limit)
}

// GetUnansweredQuestions returns up to limit random questions without answers.
func (s *Store) GetUnansweredQuestions(limit int) ([]Question, error) {
	return s.queryQuestions(`
		SELECT q.id, q.question, q.question_forms, q.created_at
		FROM questions q
		LEFT JOIN answers a ON q.id = a.question_id
		WHERE a.question_id IS NULL
		ORDER BY RANDOM()
		LIMIT ?`, limit)
}

func (s *Store) queryQuestions(query string, args ...interface{}) ([]Question, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// HasAnswers reports whether the question has at least one answer.
func (s *Store) HasAnswers(questionID string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM answers WHERE question_id = ?", questionID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count answers: %w", err)
	}
	return count > 0, nil
}

// GetAnswersForQuestion returns the question's answers joined with author
// display fields, ordered by answer id.
func (s *Store) GetAnswersForQuestion(questionID string) ([]AnswerWithAuthor, error) {
	rows, err := s.db.Query(`
		SELECT a.id, a.question_id, a.author_id, a.content,
			COALESCE(a.source, ''), COALESCE(a.source_type, ''), COALESCE(a.source_name, ''),
			COALESCE(a.created_at, ''),
			v.name, COALESCE(v.photo, ''), COALESCE(v.professional_identity, '')
		FROM answers a
		JOIN voices v ON a.author_id = v.id
		WHERE a.question_id = ?
		ORDER BY a.id`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	var answers []AnswerWithAuthor
	for rows.Next() {
		var a AnswerWithAuthor
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.AuthorID, &a.Content,
			&a.Source, &a.SourceType, &a.SourceName, &a.CreatedAt,
			&a.AuthorName, &a.AuthorPhoto, &a.AuthorProfessionalIdentity); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// GetAnswersByAuthor returns a voice's answers joined with the canonical
// question text, ordered by answer id.
func (s *Store) GetAnswersByAuthor(authorID string) ([]AnswerWithQuestion, error) {
	rows, err := s.db.Query(`
		SELECT a.id, a.question_id, a.author_id, a.content,
			COALESCE(a.source, ''), COALESCE(a.source_type, ''), COALESCE(a.source_name, ''),
			COALESCE(a.created_at, ''), q.question
		FROM answers a
		JOIN questions q ON a.question_id = q.id
		WHERE a.author_id = ?
		ORDER BY a.id`, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	var answers []AnswerWithQuestion
	for rows.Next() {
		var a AnswerWithQuestion
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.AuthorID, &a.Content,
			&a.Source, &a.SourceType, &a.SourceName, &a.CreatedAt, &a.Question); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// GetVoice returns the voice with the given id, or nil if absent.
func (s *Store) GetVoice(id string) (*Voice, error) {
	var v Voice
	err := s.db.QueryRow(`
		SELECT id, name, bio, COALESCE(photo, ''), COALESCE(professional_identity, '')
		FROM voices WHERE id = ?`, id).
		Scan(&v.ID, &v.Name, &v.Bio, &v.Photo, &v.ProfessionalIdentity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get voice %s: %w", id, err)
	}
	return &v, nil
}

// GetAllVoices returns every voice ordered by name.
func (s *Store) GetAllVoices() ([]Voice, error) {
	rows, err := s.db.Query(`
		SELECT id, name, bio, COALESCE(photo, ''), COALESCE(professional_identity, '')
		FROM voices ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query voices: %w", err)
	}
	defer rows.Close()

	var voices []Voice
	for rows.Next() {
		var v Voice
		if err := rows.Scan(&v.ID, &v.Name, &v.Bio, &v.Photo, &v.ProfessionalIdentity); err != nil {
			return nil, fmt.Errorf("failed to scan voice: %w", err)
		}
		voices = append(voices, v)
	}
	return voices, rows.Err()
}

// CountVoices returns the number of loaded voices. The lifecycle manager
// uses it to decide whether a persisted store still needs a corpus load.
func (s *Store) CountVoices() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM voices").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count voices: %w", err)
	}
	return count, nil
}

// GetTotalCounts returns corpus-wide totals.
func (s *Store) GetTotalCounts() (Counts, error) {
	var c Counts
	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM questions", &c.TotalQuestions},
		{"SELECT COUNT(*) FROM voices", &c.TotalVoices},
		{"SELECT COUNT(*) FROM answers", &c.TotalAnswers},
		{"SELECT COUNT(DISTINCT question_id) FROM answers", &c.QuestionsWithAnswers},
	}
	for _, q := range queries {
		if err := s.db.QueryRow(q.query).Scan(q.dest); err != nil {
			return Counts{}, fmt.Errorf("failed to count: %w", err)
		}
	}
	return c, nil
}

// GetQuestionsWithAnswersPaginated returns one page of answered questions
// with answer counts and author sets, most-answered first.
func (s *Store) GetQuestionsWithAnswersPaginated(page, limit int) (PaginatedQuestionSummaries, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}

	var totalCount int
	err := s.db.QueryRow("SELECT COUNT(DISTINCT question_id) FROM answers").Scan(&totalCount)
	if err != nil {
		return PaginatedQuestionSummaries{}, fmt.Errorf("failed to count answered questions: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT q.id, q.question, q.question_forms, q.created_at, COUNT(a.id) AS answer_count
		FROM questions q
		JOIN answers a ON q.id = a.question_id
		GROUP BY q.id
		ORDER BY answer_count DESC, q.question
		LIMIT ? OFFSET ?`, limit, (page-1)*limit)
	if err != nil {
		return PaginatedQuestionSummaries{}, fmt.Errorf("failed to query answered questions: %w", err)
	}
	defer rows.Close()

	var summaries []QuestionSummary
	for rows.Next() {
		var qs QuestionSummary
		var forms string
		var createdAt sql.NullString
		if err := rows.Scan(&qs.ID, &qs.Question.Question, &forms, &createdAt, &qs.AnswerCount); err != nil {
			return PaginatedQuestionSummaries{}, fmt.Errorf("failed to scan question: %w", err)
		}
		if err := json.Unmarshal([]byte(forms), &qs.QuestionForms); err != nil {
			qs.QuestionForms = []string{qs.Question.Question}
		}
		qs.CreatedAt = createdAt.String
		summaries = append(summaries, qs)
	}
	if err := rows.Err(); err != nil {
		return PaginatedQuestionSummaries{}, err
	}

	for i := range summaries {
		authors, err := s.questionAuthors(summaries[i].ID)
		if err != nil {
			return PaginatedQuestionSummaries{}, err
		}
		summaries[i].Authors = authors
	}

	totalPages := (totalCount + limit - 1) / limit
	return PaginatedQuestionSummaries{
		Questions:   summaries,
		TotalCount:  totalCount,
		HasMore:     page < totalPages,
		CurrentPage: page,
		TotalPages:  totalPages,
	}, nil
}

// GetQuestionsWithoutAnswersPaginated returns one page of unanswered
// questions ordered by canonical text.
func (s *Store) GetQuestionsWithoutAnswersPaginated(page, limit int) (PaginatedQuestions, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}

	var totalCount int
	err := s.db.QueryRow(`
		SELECT COUNT(q.id)
		FROM questions q
		LEFT JOIN answers a ON q.id = a.question_id
		WHERE a.question_id IS NULL`).Scan(&totalCount)
	if err != nil {
		return PaginatedQuestions{}, fmt.Errorf("failed to count unanswered questions: %w", err)
	}

	questions, err := s.queryQuestions(`
		SELECT q.id, q.question, q.question_forms, q.created_at
		FROM questions q
		LEFT JOIN answers a ON q.id = a.question_id
		WHERE a.question_id IS NULL
		ORDER BY q.question
		LIMIT ? OFFSET ?`, limit, (page-1)*limit)
	if err != nil {
		return PaginatedQuestions{}, err
	}

	totalPages := (totalCount + limit - 1) / limit
	return PaginatedQuestions{
		Questions:   questions,
		TotalCount:  totalCount,
		HasMore:     page < totalPages,
		CurrentPage: page,
		TotalPages:  totalPages,
	}, nil
}

// questionAuthors returns the distinct answering voices for a question,
// ordered by voice id.
func (s *Store) questionAuthors(questionID string) ([]Author, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT v.id, v.name, COALESCE(v.photo, ''), COALESCE(v.professional_identity, '')
		FROM answers a
		JOIN voices v ON a.author_id = v.id
		WHERE a.question_id = ?
		ORDER BY v.id`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query authors: %w", err)
	}
	defer rows.Close()

	var authors []Author
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Photo, &a.ProfessionalIdentity); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// GetAllGenocidalVoices returns every genocidal voice ordered by name.
func (s *Store) GetAllGenocidalVoices() ([]GenocidalVoice, error) {
	rows, err := s.db.Query("SELECT id, name, title, quotes FROM genocidal_voices ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query genocidal voices: %w", err)
	}
	defer rows.Close()

	var voices []GenocidalVoice
	for rows.Next() {
		v, err := scanGenocidalVoice(rows)
		if err != nil {
			return nil, err
		}
		voices = append(voices, v)
	}
	return voices, rows.Err()
}

// GetGenocidalVoice returns the genocidal voice with the given id, or nil.
func (s *Store) GetGenocidalVoice(id string) (*GenocidalVoice, error) {
	row := s.db.QueryRow("SELECT id, name, title, quotes FROM genocidal_voices WHERE id = ?", id)
	v, err := scanGenocidalVoice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func scanGenocidalVoice(row interface{ Scan(...interface{}) error }) (GenocidalVoice, error) {
	var v GenocidalVoice
	var quotes string
	if err := row.Scan(&v.ID, &v.Name, &v.Title, &quotes); err != nil {
		if err == sql.ErrNoRows {
			return GenocidalVoice{}, err
		}
		return GenocidalVoice{}, fmt.Errorf("failed to scan genocidal voice: %w", err)
	}
	if err := json.Unmarshal([]byte(quotes), &v.Quotes); err != nil {
		return GenocidalVoice{}, fmt.Errorf("failed to parse quotes for %s: %w", v.ID, err)
	}
	return v, nil
}

// GetAllGems returns every gem ordered by name.
func (s *Store) GetAllGems() ([]Gem, error) {
	rows, err := s.db.Query(`
		SELECT id, name, type, COALESCE(description, ''), COALESCE(photo, ''), COALESCE(sources, '')
		FROM gems ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query gems: %w", err)
	}
	defer rows.Close()

	var gems []Gem
	for rows.Next() {
		var g Gem
		var sources string
		if err := rows.Scan(&g.ID, &g.Name, &g.Type, &g.Description, &g.Photo, &sources); err != nil {
			return nil, fmt.Errorf("failed to scan gem: %w", err)
		}
		if sources != "" {
			if err := json.Unmarshal([]byte(sources), &g.Sources); err != nil {
				return nil, fmt.Errorf("failed to parse sources for gem %s: %w", g.ID, err)
			}
		}
		gems = append(gems, g)
	}
	return gems, rows.Err()
}
