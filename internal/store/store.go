// Package store provides the persistence backends behind
// classifications.Store: a PostgreSQL store, a decorator that archives
// configuration snapshots to blob storage, and a decorator that moves
// writes off the request path.
package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable indicates the backend could not accept the operation.
// Callers log it and continue in memory.
var ErrUnavailable = errors.New("store unavailable")

// Backend names the primary persistence backend.
type Backend string

const (
	Memory   Backend = "memory"
	Postgres Backend = "postgres"
)

// ParseBackend accepts memory or postgres, case-insensitive.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case Memory, Postgres:
		return b, nil
	}
	return "", fmt.Errorf("unknown store backend %q", s)
}
