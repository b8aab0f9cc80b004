// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

// Package postgres implements the ownership repositories using PostgreSQL.
//
// Owner-checked inserts use a single INSERT ... SELECT ... WHERE EXISTS
// statement, so existence check and write are atomic: a concurrently
// deleted owner can never acquire a resource.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repositories use. pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isForeignKeyViolation reports whether err is a PostgreSQL foreign key
// violation. The WHERE EXISTS guard makes this rare, but an owner deleted
// between statement planning and execution still surfaces here.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
