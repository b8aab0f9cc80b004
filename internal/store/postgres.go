// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

// Package store provides PostgreSQL connectivity and schema management.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// ErrUnavailable is returned when the database cannot be reached after
// the connection retries are exhausted. Wrapped with an oops code at the
// return site; callers match with errors.Is.
var ErrUnavailable = errors.New("database unavailable")

// Connection retry tuning. Fibonacci backoff starting at 500ms, capped at
// five attempts, covers the usual postgres-still-starting window without
// hanging a misconfigured deployment.
const (
	connectBaseDelay  = 500 * time.Millisecond
	connectMaxRetries = 5
)

// Connect opens a pgx connection pool and verifies it with a ping,
// retrying transient failures with fibonacci backoff.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("STORE_CONFIG_INVALID").
			With("operation", "parse database url").
			Wrap(err)
	}

	backoff := retry.WithMaxRetries(connectMaxRetries, retry.NewFibonacci(connectBaseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("STORE_UNAVAILABLE").
			With("operation", "ping database").
			Wrapf(ErrUnavailable, "database unreachable: %v", err)
	}

	return pool, nil
}
