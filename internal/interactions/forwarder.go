// Package interactions validates user feedback events and forwards them to
// an external webhook. Nothing is stored locally; the webhook is the system
// of record for feedback.
package interactions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	// TypeReport flags an answer as problematic; TypeSuggestedAnswer
	// proposes new answer text for a question.
	TypeReport          = "report"
	TypeSuggestedAnswer = "suggested_answer"

	minReportFeedbackLen  = 5
	maxReportFeedbackLen  = 2000
	minSuggestedAnswerLen = 10

	maxQuestionLen = 500
	maxAnswerLen   = 1000

	sourceName = "askpalestine-web"
)

// Interaction is one feedback event as submitted by a client.
type Interaction struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Feedback string `json:"feedback"`
	Type     string `json:"interactionType"`
}

// ValidationError reports client input that fails validation, as opposed to
// a delivery failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// webhookPayload is the wire format sent to the webhook.
type webhookPayload struct {
	Question        string `json:"question"`
	Answer          string `json:"answer"`
	Feedback        string `json:"feedback"`
	Timestamp       string `json:"timestamp"`
	Source          string `json:"source"`
	InteractionType string `json:"interactionType"`
}

// Forwarder delivers validated interactions to the configured webhook.
type Forwarder struct {
	webhookURL string
	client     *http.Client
}

// NewForwarder creates a Forwarder. An empty webhookURL disables delivery:
// interactions are still validated but only logged.
func NewForwarder(webhookURL string) *Forwarder {
	return &Forwarder{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Validate checks an interaction against the per-type rules. A missing type
// is tolerated with a log line; typed interactions must meet their length
// bounds.
func Validate(in Interaction) error {
	if in.Question == "" {
		return &ValidationError{Reason: "question is required"}
	}

	switch in.Type {
	case "":
		log.Printf("[Interactions] interaction submitted without a type")
	case TypeReport:
		feedback := strings.TrimSpace(in.Feedback)
		if len(feedback) < minReportFeedbackLen {
			return &ValidationError{Reason: "report feedback too short"}
		}
		if len(feedback) > maxReportFeedbackLen {
			return &ValidationError{Reason: "report feedback too long"}
		}
	case TypeSuggestedAnswer:
		if len(strings.TrimSpace(in.Answer)) < minSuggestedAnswerLen {
			return &ValidationError{Reason: "suggested answer too short"}
		}
	}
	return nil
}

// Forward validates the interaction and posts it to the webhook. Question
// and answer text are truncated before leaving the service.
func (f *Forwarder) Forward(in Interaction) error {
	if err := Validate(in); err != nil {
		return err
	}

	feedback := in.Feedback
	if in.Type == TypeReport {
		feedback = strings.TrimSpace(feedback)
	}
	payload := webhookPayload{
		Question:        truncate(in.Question, maxQuestionLen),
		Answer:          truncate(in.Answer, maxAnswerLen),
		Feedback:        feedback,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		Source:          sourceName,
		InteractionType: in.Type,
	}

	if f.webhookURL == "" {
		log.Printf("[Interactions] no webhook configured, dropping %s interaction", in.Type)
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize interaction: %w", err)
	}

	resp, err := f.client.Post(f.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to deliver interaction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
	return nil
}

// truncate limits s to max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
