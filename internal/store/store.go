// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all postcms entities.
// Each store struct wraps a *sql.DB and exposes typed query methods. Lookups
// return (nil, nil) when a row does not exist; writes report constraint
// violations through the sentinel errors below.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned by writes that target a row that no longer exists.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateSlug means another row claimed the slug first.
	ErrDuplicateSlug = errors.New("duplicate slug")

	// ErrDuplicateEmail means a user with the same email exists.
	ErrDuplicateEmail = errors.New("duplicate email")

	// ErrInvalidReference means a foreign key points at a missing row.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrInUse means the row is still referenced and cannot be deleted.
	ErrInUse = errors.New("still referenced")
)

// PostgreSQL error codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(...any) error
}

// violates reports whether err is a PostgreSQL error with the given code,
// optionally restricted to one constraint name.
func violates(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
