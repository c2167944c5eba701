package classifications

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/docsort/internal/feedback"
	"github.com/JaimeStill/docsort/internal/learning"
	"github.com/JaimeStill/docsort/internal/scoring"
	"github.com/JaimeStill/docsort/pkg/handlers"
)

// Domain errors for classification operations. The ledger reports the
// same conditions for feedback.
var (
	ErrNotFound  = feedback.ErrNotFound
	ErrDuplicate = feedback.ErrDuplicate
	ErrInvalidID = errors.New("invalid classification id")
)

// MapHTTPStatus maps classification domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, scoring.ErrInvalidSignal),
		errors.Is(err, scoring.ErrInvalidClass),
		errors.Is(err, feedback.ErrInvalidConfidence),
		errors.Is(err, handlers.ErrEmptyBody),
		errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, learning.ErrVersionUnavailable):
		return http.StatusGone
	}
	return http.StatusInternalServerError
}
