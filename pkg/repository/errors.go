package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes mapped by MapError.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// MapError replaces driver errors with caller sentinels. Missing rows and
// dangling foreign keys become notFound, unique violations become
// duplicate. Anything else passes through.
func MapError(err, notFound, duplicate error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return duplicate
		case codeForeignKeyViolation:
			return notFound
		}
	}
	return err
}
