package learning

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/docsort/internal/scoring"
	"github.com/JaimeStill/docsort/pkg/storage"
)

var (
	ErrInsufficientData   = errors.New("insufficient feedback data")
	ErrVersionUnavailable = errors.New("configuration version unavailable")
)

// MapHTTPStatus maps learning domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, scoring.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrVersionUnavailable):
		return http.StatusGone
	default:
		return storage.MapHTTPStatus(err)
	}
}
