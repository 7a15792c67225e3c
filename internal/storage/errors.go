// ABOUTME: Classification of constraint violations reported by the database engine.
// ABOUTME: Understands pgx PgError codes and modernc SQLite result codes.
package storage

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ConstraintKind names the declared constraint a write violated.
type ConstraintKind string

const (
	ConstraintNone       ConstraintKind = ""
	ConstraintNotNull    ConstraintKind = "not null"
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintForeignKey ConstraintKind = "foreign key"
	ConstraintCheck      ConstraintKind = "check"
	ConstraintLength     ConstraintKind = "length"
)

// PostgreSQL SQLSTATE codes.
const (
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgStringTooLong       = "22001"
)

// ClassifyConstraint reports which kind of constraint err violated, or
// ConstraintNone when err is not a constraint violation.
func ClassifyConstraint(err error) ConstraintKind {
	if err == nil {
		return ConstraintNone
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgNotNullViolation:
			return ConstraintNotNull
		case pgForeignKeyViolation:
			return ConstraintForeignKey
		case pgUniqueViolation:
			return ConstraintUnique
		case pgStringTooLong:
			return ConstraintLength
		case pgCheckViolation:
			if isLengthCheck(pgErr.ConstraintName) {
				return ConstraintLength
			}
			return ConstraintCheck
		}
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return ConstraintNotNull
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ConstraintUnique
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return ConstraintForeignKey
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			// The message names the check, e.g.
			// "CHECK constraint failed: chk_exercise_name_len".
			if isLengthCheck(sqliteErr.Error()) {
				return ConstraintLength
			}
			return ConstraintCheck
		}
		return ConstraintNone
	}

	// Errors that crossed a boundary as text keep only the message.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return ConstraintNotNull
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return ConstraintUnique
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ConstraintForeignKey
	case strings.Contains(msg, "CHECK constraint failed"):
		if isLengthCheck(msg) {
			return ConstraintLength
		}
		return ConstraintCheck
	}
	return ConstraintNone
}

// IsConstraintViolation reports whether err is any declared-constraint violation.
func IsConstraintViolation(err error) bool {
	return ClassifyConstraint(err) != ConstraintNone
}

// Length checks are all named chk_<table>_<column>_len.
func isLengthCheck(s string) bool {
	return strings.Contains(s, "_len")
}
