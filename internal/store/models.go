package store

// Voice is an answer author / expert profile. Voices are created by the
// loader and immutable afterwards.
type Voice struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Bio                  string `json:"bio"`
	Photo                string `json:"photo,omitempty"`
	ProfessionalIdentity string `json:"professional_identity,omitempty"`
}

// Question is a canonical question with its alternative phrasings. The
// canonical text is always QuestionForms[0].
type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	QuestionForms []string `json:"question_forms"`
	CreatedAt     string   `json:"created_at,omitempty"`
}

// Answer is one voice's answer to a question.
type Answer struct {
	ID         string `json:"id"`
	QuestionID string `json:"questionId"`
	AuthorID   string `json:"authorId"`
	Content    string `json:"content"`
	Source     string `json:"source,omitempty"`
	SourceType string `json:"source_type,omitempty"`
	SourceName string `json:"source_name,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// AnswerWithAuthor joins an answer with its author's display fields.
type AnswerWithAuthor struct {
	Answer
	AuthorName                 string `json:"authorName"`
	AuthorPhoto                string `json:"authorPhoto,omitempty"`
	AuthorProfessionalIdentity string `json:"authorProfessionalIdentity,omitempty"`
}

// AnswerWithQuestion joins an answer with its question's canonical text.
type AnswerWithQuestion struct {
	Answer
	Question string `json:"question"`
}

// Author is the per-question author summary shown on question cards.
type Author struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Photo                string `json:"photo,omitempty"`
	ProfessionalIdentity string `json:"professional_identity,omitempty"`
}

// QuestionSummary is a question with its display aggregates.
type QuestionSummary struct {
	Question
	AnswerCount int      `json:"answerCount"`
	Authors     []Author `json:"authors"`
}

// PaginatedQuestions is one page of questions with paging metadata.
type PaginatedQuestions struct {
	Questions   []Question `json:"questions"`
	TotalCount  int        `json:"totalCount"`
	HasMore     bool       `json:"hasMore"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
}

// PaginatedQuestionSummaries is one page of answered questions with
// aggregates and paging metadata.
type PaginatedQuestionSummaries struct {
	Questions   []QuestionSummary `json:"questions"`
	TotalCount  int               `json:"totalCount"`
	HasMore     bool              `json:"hasMore"`
	CurrentPage int               `json:"currentPage"`
	TotalPages  int               `json:"totalPages"`
}

// Counts are corpus-wide totals for the stats endpoint.
type Counts struct {
	TotalQuestions       int `json:"totalQuestions"`
	TotalVoices          int `json:"totalVoices"`
	TotalAnswers         int `json:"totalAnswers"`
	QuestionsWithAnswers int `json:"questionsWithAnswers"`
}

// Quote is a sourced quotation attributed to a genocidal voice.
type Quote struct {
	Quote   string   `json:"quote"`
	Sources []string `json:"sources,omitempty"`
}

// GenocidalVoice is a documented figure with attributed quotes.
type GenocidalVoice struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Title  string  `json:"title"`
	Quotes []Quote `json:"quotes"`
}

// Gem is a typed resource entry (website, book, documentary, ...).
type Gem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Photo       string   `json:"photo,omitempty"`
	Sources     []string `json:"sources,omitempty"`
}
