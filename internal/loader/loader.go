// Package loader rebuilds the corpus database from the source tree. A load
// is a full clear-and-rebuild: scan and validate every record, embed every
// question, then replace the store contents in one transaction. Individual
// malformed records are skipped with a warning; only store or source-root
// failures abort the load.
package loader

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"askpalestine/internal/embedding"
)

// formSeparator joins all question forms into the one text that gets
// embedded, so paraphrased queries match any known phrasing.
const formSeparator = " | "

// Loader scans the source tree and rebuilds the database from it.
type Loader struct {
	db               *sql.DB
	embeddingService embedding.EmbeddingService
	sourceDir        string
	photosDir        string
}

// New creates a Loader reading from sourceDir and publishing voice photos
// into photosDir.
func New(db *sql.DB, es embedding.EmbeddingService, sourceDir, photosDir string) *Loader {
	return &Loader{
		db:               db,
		embeddingService: es,
		sourceDir:        sourceDir,
		photosDir:        photosDir,
	}
}

// In-memory records collected during the scan phase. Everything is parsed,
// validated and embedded before the store transaction opens, so the
// rebuild itself holds no network calls.
type voiceRecord struct {
	id                   string
	name                 string
	bio                  string
	photo                string
	professionalIdentity string
}

type answerRecord struct {
	id         string
	questionID string
	authorID   string
	content    string
	source     string
	sourceType string
	sourceName string
	createdAt  string
}

type questionRecord struct {
	id        string
	question  string
	formsJSON string
	embedding string
	createdAt string
	answers   []answerRecord
}

type genocidalVoiceRecord struct {
	id         string
	name       string
	title      string
	quotesJSON string
}

type gemRecord struct {
	id          string
	name        string
	gemType     string
	description string
	photo       string
	sourcesJSON string
}

type corpus struct {
	voices          []voiceRecord
	genocidalVoices []genocidalVoiceRecord
	gems            []gemRecord
	questions       []questionRecord
}

// Load rebuilds the database from the source tree. It is idempotent: the
// store always ends up reflecting exactly the current tree.
func (l *Loader) Load() error {
	if _, err := os.Stat(l.sourceDir); err != nil {
		return fmt.Errorf("cannot read source root %s: %w", l.sourceDir, err)
	}

	log.Printf("[Loader] starting corpus load from %s", l.sourceDir)

	var c corpus
	if err := l.scanVoices(&c); err != nil {
		return err
	}
	l.scanGenocidalVoices(&c)
	l.scanGems(&c)
	if err := l.scanQuestions(&c); err != nil {
		return err
	}

	if err := l.persist(&c); err != nil {
		return err
	}

	log.Printf("[Loader] corpus loaded: %d voices, %d questions, %d genocidal voices, %d gems",
		len(c.voices), len(c.questions), len(c.genocidalVoices), len(c.gems))
	return nil
}

// listSubdirs returns the sorted directory entries of dir, or nil when dir
// does not exist.
func listSubdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// scanVoices collects every voices/<id> directory with a bio.md. Voices
// must be known before answers are scanned so author references can be
// validated early.
func (l *Loader) scanVoices(c *corpus) error {
	voicesDir := filepath.Join(l.sourceDir, "voices")
	dirs, err := listSubdirs(voicesDir)
	if err != nil {
		return err
	}

	for _, id := range dirs {
		voiceDir := filepath.Join(voicesDir, id)

		bio, err := os.ReadFile(filepath.Join(voiceDir, "bio.md"))
		if err != nil {
			log.Printf("[Loader] skipping voice %s: no bio.md", id)
			continue
		}

		var meta voiceMetadata
		if err := readOptionalJSONFile(filepath.Join(voiceDir, "metadata.json"), &meta); err != nil {
			log.Printf("[Loader] bad metadata for voice %s: %v", id, err)
		}
		name := meta.Name
		if name == "" {
			name = id
		}

		photo, err := copyVoicePhoto(voiceDir, id, l.photosDir)
		if err != nil {
			return err
		}

		c.voices = append(c.voices, voiceRecord{
			id:                   id,
			name:                 name,
			bio:                  string(bio),
			photo:                photo,
			professionalIdentity: meta.ProfessionalIdentity,
		})
	}
	return nil
}

// scanGenocidalVoices collects genocidal-voices/<id>/data.json records.
// Malformed entries are skipped, never fatal.
func (l *Loader) scanGenocidalVoices(c *corpus) {
	dir := filepath.Join(l.sourceDir, "genocidal-voices")
	dirs, err := listSubdirs(dir)
	if err != nil {
		log.Printf("[Loader] skipping genocidal voices: %v", err)
		return
	}

	for _, id := range dirs {
		var data genocidalVoiceData
		if err := readJSONFile(filepath.Join(dir, id, "data.json"), &data); err != nil {
			log.Printf("[Loader] skipping genocidal voice %s: %v", id, err)
			continue
		}
		if data.Name == "" || data.Title == "" {
			log.Printf("[Loader] skipping genocidal voice %s: missing name or title", id)
			continue
		}
		quotes, err := json.Marshal(data.Quotes)
		if err != nil {
			log.Printf("[Loader] skipping genocidal voice %s: %v", id, err)
			continue
		}
		c.genocidalVoices = append(c.genocidalVoices, genocidalVoiceRecord{
			id:         id,
			name:       data.Name,
			title:      data.Title,
			quotesJSON: string(quotes),
		})
	}
}

// scanGems collects gems/<id>/data.json records. Malformed entries are
// skipped, never fatal.
func (l *Loader) scanGems(c *corpus) {
	dir := filepath.Join(l.sourceDir, "gems")
	dirs, err := listSubdirs(dir)
	if err != nil {
		log.Printf("[Loader] skipping gems: %v", err)
		return
	}

	for _, id := range dirs {
		var data gemData
		if err := readJSONFile(filepath.Join(dir, id, "data.json"), &data); err != nil {
			log.Printf("[Loader] skipping gem %s: %v", id, err)
			continue
		}
		if data.Name == "" || data.Type == "" {
			log.Printf("[Loader] skipping gem %s: missing name or type", id)
			continue
		}
		var sourcesJSON string
		if len(data.Sources) > 0 {
			b, err := json.Marshal(data.Sources)
			if err != nil {
				log.Printf("[Loader] skipping gem %s: %v", id, err)
				continue
			}
			sourcesJSON = string(b)
		}
		c.gems = append(c.gems, gemRecord{
			id:          id,
			name:        data.Name,
			gemType:     data.Type,
			description: data.Description,
			photo:       data.Photo,
			sourcesJSON: sourcesJSON,
		})
	}
}

// scanQuestions collects questions/<id> directories and their answers,
// embedding each question over all its forms. A question without a valid
// metadata.json or with an empty forms list is skipped with a warning.
func (l *Loader) scanQuestions(c *corpus) error {
	questionsDir := filepath.Join(l.sourceDir, "questions")
	dirs, err := listSubdirs(questionsDir)
	if err != nil {
		return err
	}

	knownVoices := make(map[string]bool, len(c.voices))
	for _, v := range c.voices {
		knownVoices[v.id] = true
	}

	for _, id := range dirs {
		questionDir := filepath.Join(questionsDir, id)

		var meta questionMetadata
		if err := readJSONFile(filepath.Join(questionDir, "metadata.json"), &meta); err != nil {
			log.Printf("[Loader] skipping question %s: %v", id, err)
			continue
		}
		if len(meta.QuestionForms) == 0 || meta.QuestionForms[0] == "" {
			log.Printf("[Loader] skipping question %s: no question forms in metadata", id)
			continue
		}

		createdAt, err := NormalizeDate(meta.CreatedAt)
		if err != nil {
			log.Printf("[Loader] question %s: dropping creation date: %v", id, err)
			createdAt = ""
		}

		// Embed over every known phrasing, not just the canonical one.
		vec, err := l.embeddingService.Embed(strings.Join(meta.QuestionForms, formSeparator))
		if err != nil {
			return fmt.Errorf("failed to embed question %s: %w", id, err)
		}
		embeddingJSON, err := json.Marshal(vec)
		if err != nil {
			return fmt.Errorf("failed to serialize embedding for %s: %w", id, err)
		}
		formsJSON, err := json.Marshal(meta.QuestionForms)
		if err != nil {
			return fmt.Errorf("failed to serialize question forms for %s: %w", id, err)
		}

		q := questionRecord{
			id:        id,
			question:  meta.QuestionForms[0],
			formsJSON: string(formsJSON),
			embedding: string(embeddingJSON),
			createdAt: createdAt,
		}
		l.scanAnswers(&q, questionDir, knownVoices)
		c.questions = append(c.questions, q)
	}
	return nil
}

// scanAnswers collects questions/<qid>/answers/<dir> entries for one
// question. The authoring voice is the metadata author_id when present,
// falling back to the directory name; an answer naming an unknown voice is
// skipped loudly since it indicates that voice failed to load.
func (l *Loader) scanAnswers(q *questionRecord, questionDir string, knownVoices map[string]bool) {
	answersDir := filepath.Join(questionDir, "answers")
	dirs, err := listSubdirs(answersDir)
	if err != nil {
		log.Printf("[Loader] skipping answers for %s: %v", q.id, err)
		return
	}

	for _, dir := range dirs {
		answerDir := filepath.Join(answersDir, dir)

		content, err := os.ReadFile(filepath.Join(answerDir, "text.md"))
		if err != nil {
			log.Printf("[Loader] skipping answer %s/%s: no text.md", q.id, dir)
			continue
		}

		var meta answerMetadata
		if err := readOptionalJSONFile(filepath.Join(answerDir, "metadata.json"), &meta); err != nil {
			log.Printf("[Loader] bad metadata for answer %s/%s: %v", q.id, dir, err)
		}

		authorID := meta.AuthorID
		if authorID == "" {
			authorID = dir
		}
		if !knownVoices[authorID] {
			log.Printf("[Loader] ERROR: answer %s/%s references voice %q which was not loaded; skipping answer",
				q.id, dir, authorID)
			continue
		}

		createdAt, err := NormalizeDate(meta.CreatedAt)
		if err != nil {
			log.Printf("[Loader] answer %s/%s: dropping creation date: %v", q.id, dir, err)
			createdAt = ""
		}

		q.answers = append(q.answers, answerRecord{
			id:         q.id + "-" + dir,
			questionID: q.id,
			authorID:   authorID,
			content:    string(content),
			source:     meta.Source,
			sourceType: meta.SourceType,
			sourceName: meta.SourceName,
			createdAt:  createdAt,
		})
	}
}

// persist replaces the store contents with the scanned corpus in one
// transaction: children deleted before parents, voices inserted before
// questions and answers.
func (l *Loader) persist(c *corpus) error {
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin load transaction: %w", err)
	}
	defer tx.Rollback()

	deletes := []string{
		"DELETE FROM answers",
		"DELETE FROM questions",
		"DELETE FROM voices",
		"DELETE FROM genocidal_voices",
		"DELETE FROM gems",
	}
	for _, q := range deletes {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("failed to clear table: %w", err)
		}
	}

	for _, v := range c.voices {
		_, err := tx.Exec(
			"INSERT INTO voices (id, name, bio, photo, professional_identity) VALUES (?, ?, ?, ?, ?)",
			v.id, v.name, v.bio, nullable(v.photo), nullable(v.professionalIdentity))
		if err != nil {
			return fmt.Errorf("failed to insert voice %s: %w", v.id, err)
		}
	}

	for _, gv := range c.genocidalVoices {
		_, err := tx.Exec(
			"INSERT INTO genocidal_voices (id, name, title, quotes) VALUES (?, ?, ?, ?)",
			gv.id, gv.name, gv.title, gv.quotesJSON)
		if err != nil {
			return fmt.Errorf("failed to insert genocidal voice %s: %w", gv.id, err)
		}
	}

	for _, g := range c.gems {
		_, err := tx.Exec(
			"INSERT INTO gems (id, name, type, description, photo, sources) VALUES (?, ?, ?, ?, ?, ?)",
			g.id, g.name, g.gemType, nullable(g.description), nullable(g.photo), nullable(g.sourcesJSON))
		if err != nil {
			return fmt.Errorf("failed to insert gem %s: %w", g.id, err)
		}
	}

	for _, q := range c.questions {
		_, err := tx.Exec(
			"INSERT INTO questions (id, question, question_forms, embedding, created_at) VALUES (?, ?, ?, ?, ?)",
			q.id, q.question, q.formsJSON, q.embedding, nullable(q.createdAt))
		if err != nil {
			return fmt.Errorf("failed to insert question %s: %w", q.id, err)
		}
		for _, a := range q.answers {
			_, err := tx.Exec(
				`INSERT INTO answers (id, question_id, author_id, content, source, source_type, source_name, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				a.id, a.questionID, a.authorID, a.content,
				nullable(a.source), nullable(a.sourceType), nullable(a.sourceName), nullable(a.createdAt))
			if err != nil {
				// Author references were validated during the scan; a
				// constraint failure here is a data-quality bug, but one
				// bad answer must not lose the rest of the corpus.
				log.Printf("[Loader] ERROR: failed to insert answer %s: %v", a.id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit load transaction: %w", err)
	}
	return nil
}

// nullable maps "" to NULL so optional columns stay NULL instead of empty.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
