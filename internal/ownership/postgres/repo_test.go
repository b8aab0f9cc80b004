// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlot/openlot/internal/ownership"
	"github.com/openlot/openlot/internal/ownership/postgres"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		mock.Close()
	})
	return mock
}

func TestWalletRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("existing owner gets the wallet", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewWalletRepository(mock)

		mock.ExpectQuery(`INSERT INTO wallets`).
			WithArgs(int64(1), 50.0).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(10)))

		wallet := &ownership.Wallet{OwnerID: 1, Balance: 50.0}
		err := repo.Create(ctx, wallet)
		require.NoError(t, err)
		assert.Equal(t, int64(10), wallet.ID)
	})

	t.Run("missing owner writes nothing", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewWalletRepository(mock)

		// The WHERE EXISTS guard filters the insert; no row comes back.
		mock.ExpectQuery(`INSERT INTO wallets`).
			WithArgs(int64(9999), 50.0).
			WillReturnRows(pgxmock.NewRows([]string{"id"}))

		err := repo.Create(ctx, &ownership.Wallet{OwnerID: 9999, Balance: 50.0})
		assert.ErrorIs(t, err, ownership.ErrOwnerNotFound)
	})

	t.Run("owner deleted mid-flight maps to the same error", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewWalletRepository(mock)

		mock.ExpectQuery(`INSERT INTO wallets`).
			WithArgs(int64(1), 50.0).
			WillReturnError(&pgconn.PgError{Code: "23503"})

		err := repo.Create(ctx, &ownership.Wallet{OwnerID: 1, Balance: 50.0})
		assert.ErrorIs(t, err, ownership.ErrOwnerNotFound)
	})
}

func TestWalletRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("returns wallet", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewWalletRepository(mock)

		mock.ExpectQuery(`SELECT id, owner_id, balance`).
			WithArgs(int64(10)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "balance"}).
				AddRow(int64(10), int64(1), 50.0))

		wallet, err := repo.Get(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), wallet.OwnerID)
	})

	t.Run("missing wallet maps to sentinel", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewWalletRepository(mock)

		mock.ExpectQuery(`SELECT id, owner_id, balance`).
			WithArgs(int64(99)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "balance"}))

		_, err := repo.Get(ctx, 99)
		assert.ErrorIs(t, err, ownership.ErrNotFound)
	})
}

func TestWalletRepository_ListByOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("owner with no wallets gets empty slice", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewWalletRepository(mock)

		mock.ExpectQuery(`SELECT id, owner_id, balance`).
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "balance"}))

		wallets, err := repo.ListByOwner(ctx, 1)
		require.NoError(t, err)
		assert.NotNil(t, wallets)
		assert.Empty(t, wallets)
	})

	t.Run("wallets come back in id order", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewWalletRepository(mock)

		mock.ExpectQuery(`SELECT id, owner_id, balance`).
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "balance"}).
				AddRow(int64(10), int64(1), 50.0).
				AddRow(int64(11), int64(1), 0.0))

		wallets, err := repo.ListByOwner(ctx, 1)
		require.NoError(t, err)
		require.Len(t, wallets, 2)
		assert.Less(t, wallets[0].ID, wallets[1].ID)
	})
}

func TestCardRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create stores the sealed number", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewCardRepository(mock)

		mock.ExpectQuery(`INSERT INTO cards`).
			WithArgs(int64(1), "c2VhbGVk").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(20)))

		card := &ownership.Card{OwnerID: 1, Number: "c2VhbGVk"}
		err := repo.Create(ctx, card)
		require.NoError(t, err)
		assert.Equal(t, int64(20), card.ID)
	})

	t.Run("missing owner writes nothing", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewCardRepository(mock)

		mock.ExpectQuery(`INSERT INTO cards`).
			WithArgs(int64(9999), "c2VhbGVk").
			WillReturnRows(pgxmock.NewRows([]string{"id"}))

		err := repo.Create(ctx, &ownership.Card{OwnerID: 9999, Number: "c2VhbGVk"})
		assert.ErrorIs(t, err, ownership.ErrOwnerNotFound)
	})

	t.Run("get returns the sealed number untouched", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewCardRepository(mock)

		mock.ExpectQuery(`SELECT id, owner_id, number_sealed`).
			WithArgs(int64(20)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "number_sealed"}).
				AddRow(int64(20), int64(1), "c2VhbGVk"))

		card, err := repo.Get(ctx, 20)
		require.NoError(t, err)
		assert.Equal(t, "c2VhbGVk", card.Number)
	})

	t.Run("missing card maps to sentinel", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewCardRepository(mock)

		mock.ExpectQuery(`SELECT id, owner_id, number_sealed`).
			WithArgs(int64(99)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "number_sealed"}))

		_, err := repo.Get(ctx, 99)
		assert.ErrorIs(t, err, ownership.ErrNotFound)
	})
}

func TestCarRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create assigns id", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewCarRepository(mock)

		mock.ExpectQuery(`INSERT INTO cars`).
			WithArgs(int64(1), "AB-123-CD").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(30)))

		car := &ownership.Car{OwnerID: 1, Plate: "AB-123-CD"}
		err := repo.Create(ctx, car)
		require.NoError(t, err)
		assert.Equal(t, int64(30), car.ID)
	})

	t.Run("missing owner writes nothing", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewCarRepository(mock)

		mock.ExpectQuery(`INSERT INTO cars`).
			WithArgs(int64(9999), "AB-123-CD").
			WillReturnRows(pgxmock.NewRows([]string{"id"}))

		err := repo.Create(ctx, &ownership.Car{OwnerID: 9999, Plate: "AB-123-CD"})
		assert.ErrorIs(t, err, ownership.ErrOwnerNotFound)
	})

	t.Run("list by owner", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewCarRepository(mock)

		mock.ExpectQuery(`SELECT id, owner_id, plate`).
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "plate"}).
				AddRow(int64(30), int64(1), "AB-123-CD"))

		cars, err := repo.ListByOwner(ctx, 1)
		require.NoError(t, err)
		require.Len(t, cars, 1)
		assert.Equal(t, "AB-123-CD", cars[0].Plate)
	})
}

func TestParkingEventRepository_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("existing car gets a database timestamp", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewParkingEventRepository(mock)

		now := time.Now()
		mock.ExpectQuery(`INSERT INTO parking_events`).
			WithArgs(int64(30)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "occurred_at"}).
				AddRow(int64(1), now))

		event, err := repo.Append(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, int64(30), event.CarID)
		assert.Equal(t, now, event.Timestamp)
	})

	t.Run("missing car writes nothing", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewParkingEventRepository(mock)

		mock.ExpectQuery(`INSERT INTO parking_events`).
			WithArgs(int64(9999)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "occurred_at"}))

		_, err := repo.Append(ctx, 9999)
		assert.ErrorIs(t, err, ownership.ErrOwnerNotFound)
	})

	t.Run("database error is wrapped", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewParkingEventRepository(mock)

		mock.ExpectQuery(`INSERT INTO parking_events`).
			WithArgs(int64(30)).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.Append(ctx, 30)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ownership.ErrOwnerNotFound)
	})
}

func TestParkingEventRepository_ListByCar(t *testing.T) {
	ctx := context.Background()

	t.Run("events come back in insertion order", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewParkingEventRepository(mock)

		base := time.Now()
		mock.ExpectQuery(`SELECT id, car_id, occurred_at`).
			WithArgs(int64(30)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "car_id", "occurred_at"}).
				AddRow(int64(1), int64(30), base).
				AddRow(int64(2), int64(30), base.Add(time.Minute)).
				AddRow(int64(3), int64(30), base.Add(2*time.Minute)))

		events, err := repo.ListByCar(ctx, 30)
		require.NoError(t, err)
		require.Len(t, events, 3)
		for i := 1; i < len(events); i++ {
			assert.Greater(t, events[i].ID, events[i-1].ID)
		}
	})

	t.Run("no events yields empty slice", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewParkingEventRepository(mock)

		mock.ExpectQuery(`SELECT id, car_id, occurred_at`).
			WithArgs(int64(30)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "car_id", "occurred_at"}))

		events, err := repo.ListByCar(ctx, 30)
		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})
}
