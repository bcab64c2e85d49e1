package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// conns holds the primary connection and the one list queries read from.
type conns struct {
	db   *gorm.DB
	read *gorm.DB
}

func newConns(db *gorm.DB, read []*gorm.DB) conns {
	c := conns{db: db, read: db}
	if len(read) > 0 && read[0] != nil {
		c.read = read[0]
	}
	return c
}

// DuplicateError reports a unique constraint violation on Field.
type DuplicateError struct {
	Field string
	Err   error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s: %v", e.Field, e.Err)
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

// isForeignKeyError reports a reference to a row that does not exist.
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

// uniqueViolationColumn guesses which of columns a unique violation was raised for.
func uniqueViolationColumn(err error, columns ...string) string {
	hint := strings.ToLower(err.Error())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		hint = strings.ToLower(pgErr.ConstraintName + " " + pgErr.Detail)
	}
	for _, col := range columns {
		if strings.Contains(hint, col) {
			return col
		}
	}
	return ""
}

// likePattern builds a case-insensitive substring pattern with LIKE metacharacters escaped.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
