// Package feedback holds the append-only ledger of user corrections and the
// statistics derived from it.
package feedback

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/docsort/internal/scoring"
)

var (
	ErrNotFound          = errors.New("classification not found")
	ErrDuplicate         = errors.New("feedback already recorded for classification")
	ErrInvalidConfidence = errors.New("invalid user confidence")
)

// Confidence is the user's certainty in a correction.
type Confidence string

const (
	Low    Confidence = "low"
	Medium Confidence = "medium"
	High   Confidence = "high"
)

// ParseConfidence accepts low, medium or high. Empty input means medium.
func ParseConfidence(s string) (Confidence, error) {
	switch c := Confidence(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return Medium, nil
	case Low, Medium, High:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidConfidence, s)
}

// Event is a user correction of a past classification.
type Event struct {
	ID               uuid.UUID     `json:"id"`
	ClassificationID uuid.UUID     `json:"classification_id"`
	CorrectedClass   scoring.Class `json:"corrected_class"`
	UserConfidence   Confidence    `json:"user_confidence"`
	Reason           string        `json:"reason,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Entry is an event joined with the prediction it corrects, captured when
// the event was appended.
type Entry struct {
	Event
	Predicted scoring.Class  `json:"predicted"`
	Scores    scoring.Scores `json:"scores"`
}

// Correct reports whether the prediction matched the correction.
func (e Entry) Correct() bool {
	return e.Predicted == e.CorrectedClass
}

// Prediction is what a resolver reports about a classification.
type Prediction struct {
	Class  scoring.Class
	Scores scoring.Scores
}

// Resolver looks up the prediction behind a classification id.
type Resolver interface {
	Resolve(id uuid.UUID) (Prediction, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(id uuid.UUID) (Prediction, bool)

func (f ResolverFunc) Resolve(id uuid.UUID) (Prediction, bool) {
	return f(id)
}
