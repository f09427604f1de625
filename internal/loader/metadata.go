package loader

import (
	"encoding/json"
	"fmt"
	"os"
)

// Metadata files are parsed into explicit structs at the load boundary so
// required fields are validated once, here, and nothing downstream handles
// loose maps.

// voiceMetadata is the optional voices/<id>/metadata.json.
type voiceMetadata struct {
	Name                 string `json:"name"`
	ProfessionalIdentity string `json:"professional_identity"`
}

// questionMetadata is the required questions/<id>/metadata.json.
// QuestionForms must be non-empty; the first form is the canonical text.
type questionMetadata struct {
	QuestionForms []string `json:"question_forms"`
	CreatedAt     string   `json:"created_at"`
}

// answerMetadata is the optional answers/<dir>/metadata.json. AuthorID
// overrides the legacy convention of naming the answer directory after the
// authoring voice.
type answerMetadata struct {
	AuthorID   string `json:"author_id"`
	Source     string `json:"source"`
	SourceType string `json:"source_type"`
	SourceName string `json:"source_name"`
	CreatedAt  string `json:"created_at"`
}

// genocidalVoiceData is genocidal-voices/<id>/data.json.
type genocidalVoiceData struct {
	Name   string      `json:"name"`
	Title  string      `json:"title"`
	Quotes []quoteData `json:"quotes"`
}

// quoteData is one attributed quotation with its sources.
type quoteData struct {
	Quote   string   `json:"quote"`
	Sources []string `json:"sources"`
}

// gemData is gems/<id>/data.json.
type gemData struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Photo       string   `json:"photo"`
	Sources     []string `json:"sources"`
}

// readJSONFile parses path into v. Returns os.ErrNotExist-wrapped errors for
// missing files so callers can distinguish absent from malformed.
func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return nil
}

// readOptionalJSONFile parses path into v if it exists. A missing file is
// not an error; a malformed one is.
func readOptionalJSONFile(path string, v interface{}) error {
	err := readJSONFile(path, v)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
