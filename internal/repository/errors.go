package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Common repository errors
var (
	// ErrProjectNotFound is returned when a project is not found
	ErrProjectNotFound = errors.New("project not found")

	// ErrSectionNotFound is returned when a section is not found
	ErrSectionNotFound = errors.New("section not found")

	// ErrTaskNotFound is returned when a task is not found
	ErrTaskNotFound = errors.New("task not found")
)

const foreignKeyViolation = "23503"

// isForeignKeyViolation reports whether err is a PostgreSQL FK violation,
// i.e. an insert referencing a parent row that does not exist.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}
