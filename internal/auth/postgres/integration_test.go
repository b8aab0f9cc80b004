// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

//go:build integration

package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlot/openlot/internal/auth"
	"github.com/openlot/openlot/internal/auth/postgres"
	"github.com/openlot/openlot/internal/store"
)

// testPool is the shared database pool for integration tests. Nil when
// TEST_DATABASE_URL is not set; tests skip in that case.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	migrator, err := store.NewMigrator(url)
	if err != nil {
		panic("failed to create migrator: " + err.Error())
	}
	if err := migrator.Up(); err != nil {
		panic("failed to run migrations: " + err.Error())
	}
	_ = migrator.Close()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		panic("failed to create pool: " + err.Error())
	}
	testPool = pool

	code := m.Run()
	pool.Close()
	os.Exit(code)
}

func integrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
	return testPool
}

func TestAccountRepository_Integration(t *testing.T) {
	ctx := context.Background()
	pool := integrationPool(t)
	repo := postgres.NewAccountRepository(pool)

	cleanup := func(username string) {
		t.Cleanup(func() {
			_, _ = pool.Exec(ctx, `DELETE FROM accounts WHERE LOWER(username) = LOWER($1)`, username)
		})
	}

	t.Run("create and fetch round trip", func(t *testing.T) {
		cleanup("it_alice")
		account := &auth.Account{
			Username:     "it_alice",
			Email:        "it_alice@example.com",
			PasswordHash: "$argon2id$digest",
		}
		require.NoError(t, repo.Create(ctx, account))
		assert.Positive(t, account.ID)
		assert.False(t, account.CreatedAt.IsZero())

		stored, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "it_alice", stored.Username)
		assert.Equal(t, "$argon2id$digest", stored.PasswordHash)
	})

	t.Run("username lookup is case-insensitive", func(t *testing.T) {
		cleanup("it_bob")
		account := &auth.Account{Username: "it_bob", PasswordHash: "h"}
		require.NoError(t, repo.Create(ctx, account))

		stored, err := repo.GetByUsername(ctx, "IT_BOB")
		require.NoError(t, err)
		assert.Equal(t, account.ID, stored.ID)
	})

	t.Run("duplicate username rejected regardless of case", func(t *testing.T) {
		cleanup("it_carol")
		require.NoError(t, repo.Create(ctx, &auth.Account{Username: "it_carol", PasswordHash: "h"}))

		err := repo.Create(ctx, &auth.Account{Username: "IT_Carol", PasswordHash: "h"})
		assert.ErrorIs(t, err, auth.ErrDuplicateName)
	})

	t.Run("update password", func(t *testing.T) {
		cleanup("it_dave")
		account := &auth.Account{Username: "it_dave", PasswordHash: "old"}
		require.NoError(t, repo.Create(ctx, account))

		require.NoError(t, repo.UpdatePassword(ctx, account.ID, "new"))

		stored, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "new", stored.PasswordHash)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := repo.GetByID(ctx, -1)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}
