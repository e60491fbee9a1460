package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// AnswerValue is the response recorded against a single assessment question.
type AnswerValue string

const (
	AnswerYes     AnswerValue = "Yes"
	AnswerPartial AnswerValue = "Partial"
	AnswerNo      AnswerValue = "No"
	AnswerNA      AnswerValue = "N/A"
)

// ParseAnswerValue normalizes a raw answer string into an AnswerValue.
// Matching is case-insensitive and tolerates "NA"/"n/a" for AnswerNA.
func ParseAnswerValue(s string) (AnswerValue, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y":
		return AnswerYes, nil
	case "partial":
		return AnswerPartial, nil
	case "no", "n":
		return AnswerNo, nil
	case "n/a", "na", "not applicable":
		return AnswerNA, nil
	}
	return "", eris.Errorf("model: unrecognized answer value %q", s)
}

// ScoreValue returns the numeric contribution of an answer. N/A has no
// inherent numeric value; its treatment depends on the scoring config, so
// the second return reports whether the value is usable directly.
func (v AnswerValue) ScoreValue() (float64, bool) {
	switch v {
	case AnswerYes:
		return 1.0, true
	case AnswerPartial:
		return 0.5, true
	case AnswerNo:
		return 0.0, true
	}
	return 0, false
}

// Answer is a single recorded response within an assessment. The scoring
// core only ever reads answers; the answering subsystem owns mutation.
// Answers to questions that fall out of the applicable set are marked
// inactive rather than deleted, preserving audit history.
type Answer struct {
	AssessmentID string      `json:"assessment_id"`
	QuestionID   string      `json:"question_id"`
	Value        AnswerValue `json:"value"`
	Active       bool        `json:"active"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
